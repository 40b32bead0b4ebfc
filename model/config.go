package model

import "time"

// Config mirrors config.yaml. Every key can be overridden from the environment,
// e.g. BOT_TOKEN or CHANNELS_PUBLISH.
type Config struct {
	Bot        Bot        `mapstructure:"bot"`
	Channels   Channels   `mapstructure:"channels"`
	Access     Access     `mapstructure:"access"`
	Policy     Policy     `mapstructure:"policy"`
	Caption    Caption    `mapstructure:"caption"`
	Database   Database   `mapstructure:"database"`
	Health     Health     `mapstructure:"health"`
	Log        Log        `mapstructure:"log"`
	Moderation Moderation `mapstructure:"moderation"`
}

// Bot holds the Discord credentials and the guild the bot serves.
type Bot struct {
	Token   string `mapstructure:"token"`
	GuildID string `mapstructure:"guild_id"`
}

// Channels lists the channel ids the pipeline reads from and writes to.
type Channels struct {
	// Submissions is where users post ads. Empty means direct messages only.
	Submissions string `mapstructure:"submissions"`
	Publish     string `mapstructure:"publish"`
	Moderation  string `mapstructure:"moderation"`
	Rejected    string `mapstructure:"rejected"`
	Log         string `mapstructure:"log"`
}

// Access configures admission control.
type Access struct {
	OperatorID int64         `mapstructure:"operator_id"`
	Cooldown   time.Duration `mapstructure:"cooldown"`
	// RequiredRoleID, when set, must be held by the author in the bot's guild.
	RequiredRoleID  string `mapstructure:"required_role_id"`
	CheckMembership bool   `mapstructure:"check_membership"`
}

// Policy configures the content policy engine.
type Policy struct {
	MaxLength            int               `mapstructure:"max_length"`
	ForbiddenTerms       []string          `mapstructure:"forbidden_terms"`
	RequiredGroups       []TermGroup       `mapstructure:"required_groups"`
	AllowedCharacters    string            `mapstructure:"allowed_characters"`
	MissingKeywordAction string            `mapstructure:"missing_keyword_action"`
	Transliteration      map[string]string `mapstructure:"transliteration"`
}

// TermGroup is a set of synonymous keywords rendered as a single hashtag.
type TermGroup struct {
	Tag   string   `mapstructure:"tag"`
	Terms []string `mapstructure:"terms"`
}

// Caption configures how published ads are rendered.
type Caption struct {
	MaxLength    int      `mapstructure:"max_length"`
	ContactURL   string   `mapstructure:"contact_url"`
	ContactLabel string   `mapstructure:"contact_label"`
	PriceMarkers []string `mapstructure:"price_markers"`
}

// Database selects the access store backend. An empty driver keeps state in memory.
type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Health configures the liveness endpoints.
type Health struct {
	HTTPAddr string `mapstructure:"http_addr"`
	GRPCAddr string `mapstructure:"grpc_addr"`
}

// Log configures slog output.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// ChannelLevel is the minimum level mirrored to Channels.Log.
	ChannelLevel string `mapstructure:"channel_level"`
}

// Moderation configures who may resolve tickets.
type Moderation struct {
	// ModeratorIDs restricts decisions to these users. Empty allows anyone who can see
	// the moderation channel.
	ModeratorIDs []int64 `mapstructure:"moderator_ids"`
}
