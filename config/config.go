package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/theConCreator/OnyxShopbot/caption"
	"github.com/theConCreator/OnyxShopbot/model"
)

// Load reads the YAML file at path (optional when empty) and applies environment
// overrides. Nested keys map to env names with "_", e.g. ACCESS_COOLDOWN=90m.
func Load(path string) (*model.Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.guild_id", "")

	v.SetDefault("channels.submissions", "")
	v.SetDefault("channels.publish", "")
	v.SetDefault("channels.moderation", "")
	v.SetDefault("channels.rejected", "")
	v.SetDefault("channels.log", "")

	v.SetDefault("access.operator_id", 0)
	v.SetDefault("access.cooldown", 2*time.Hour)
	v.SetDefault("access.required_role_id", "")
	v.SetDefault("access.check_membership", true)

	v.SetDefault("policy.max_length", 100)
	v.SetDefault("policy.forbidden_terms", []string{})
	v.SetDefault("policy.allowed_characters", "")
	v.SetDefault("policy.missing_keyword_action", "review")

	v.SetDefault("caption.max_length", caption.DefaultMaxLength)
	v.SetDefault("caption.contact_url", caption.DefaultContactURL)
	v.SetDefault("caption.contact_label", caption.DefaultContactLabel)
	v.SetDefault("caption.price_markers", caption.DefaultPriceMarkers)

	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "")

	v.SetDefault("health.http_addr", ":8080")
	v.SetDefault("health.grpc_addr", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.channel_level", "warn")

	v.SetDefault("moderation.moderator_ids", []int64{})
}
