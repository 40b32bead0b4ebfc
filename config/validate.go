package config

import (
	"errors"
	"fmt"

	"github.com/theConCreator/OnyxShopbot/caption"
	"github.com/theConCreator/OnyxShopbot/model"
)

// Validate checks business rules on a decoded configuration.
func Validate(c *model.Config) error {
	if c.Bot.Token == "" {
		return errors.New("bot.token is required")
	}
	if c.Channels.Publish == "" || c.Channels.Moderation == "" || c.Channels.Rejected == "" {
		return errors.New("channels.publish, channels.moderation and channels.rejected are required")
	}
	if c.Access.OperatorID <= 0 {
		return fmt.Errorf("access.operator_id must be > 0 (got %d)", c.Access.OperatorID)
	}
	if c.Access.Cooldown < 0 {
		return fmt.Errorf("access.cooldown must be >= 0 (got %s)", c.Access.Cooldown)
	}
	if (c.Access.CheckMembership || c.Access.RequiredRoleID != "") && c.Bot.GuildID == "" {
		return errors.New("bot.guild_id is required for membership checks")
	}
	if c.Policy.MaxLength <= 0 {
		return fmt.Errorf("policy.max_length must be > 0 (got %d)", c.Policy.MaxLength)
	}
	switch c.Policy.MissingKeywordAction {
	case "review", "block":
	default:
		return fmt.Errorf("policy.missing_keyword_action must be review or block (got %q)", c.Policy.MissingKeywordAction)
	}
	for i, g := range c.Policy.RequiredGroups {
		if g.Tag == "" {
			return fmt.Errorf("policy.required_groups[%d]: tag is required", i)
		}
		if len(g.Terms) == 0 {
			return fmt.Errorf("policy.required_groups[%d] (%s): at least one term is required", i, g.Tag)
		}
	}
	if c.Caption.MaxLength <= 0 {
		return fmt.Errorf("caption.max_length must be > 0 (got %d)", c.Caption.MaxLength)
	}
	if err := caption.ValidateContactURL(c.Caption.ContactURL); err != nil {
		return fmt.Errorf("caption.contact_url: %w", err)
	}
	switch c.Database.Driver {
	case "", "memory":
	case "sqlite3", "postgres", "redis":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	return nil
}
