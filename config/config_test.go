package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theConCreator/OnyxShopbot/model"
)

const validYAML = `
bot:
  token: "test-token"
  guild_id: "1000"
channels:
  submissions: "2000"
  publish: "2001"
  moderation: "2002"
  rejected: "2003"
access:
  operator_id: 42
  cooldown: 90m
  required_role_id: "3000"
policy:
  max_length: 120
  forbidden_terms: ["реклама", "казино"]
  missing_keyword_action: block
  transliteration:
    a: "а"
    o: "о"
  required_groups:
    - tag: продажа
      terms: ["продаю", "продам"]
    - tag: nft
      terms: ["nft", "подарок"]
moderation:
  moderator_ids: [7, 8]
`

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Load(writeYAML(t, validYAML))
	require.NoError(t, err)

	assert.Equal("test-token", cfg.Bot.Token)
	assert.Equal("2001", cfg.Channels.Publish)
	assert.Equal(int64(42), cfg.Access.OperatorID)
	assert.Equal(90*time.Minute, cfg.Access.Cooldown)
	assert.True(cfg.Access.CheckMembership)
	assert.Equal(120, cfg.Policy.MaxLength)
	assert.Equal([]string{"реклама", "казино"}, cfg.Policy.ForbiddenTerms)
	assert.Equal("block", cfg.Policy.MissingKeywordAction)
	assert.Equal("а", cfg.Policy.Transliteration["a"])
	require.Len(t, cfg.Policy.RequiredGroups, 2)
	assert.Equal("продажа", cfg.Policy.RequiredGroups[0].Tag)
	assert.Equal([]string{"nft", "подарок"}, cfg.Policy.RequiredGroups[1].Terms)
	assert.Equal([]int64{7, 8}, cfg.Moderation.ModeratorIDs)

	// defaults
	assert.Equal(2000, cfg.Caption.MaxLength)
	assert.Equal("https://discord.com/users/%d", cfg.Caption.ContactURL)
	assert.Equal(":8080", cfg.Health.HTTPAddr)
	assert.Equal("info", cfg.Log.Level)
	assert.Empty(cfg.Database.Driver)
}

func TestLoadEnvOverrides(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("ACCESS_COOLDOWN", "1h")
	t.Setenv("POLICY_MAX_LENGTH", "80")
	t.Setenv("POLICY_FORBIDDEN_TERMS", "спам,скам")

	cfg, err := Load(writeYAML(t, validYAML))
	require.NoError(t, err)

	assert.Equal("env-token", cfg.Bot.Token)
	assert.Equal(time.Hour, cfg.Access.Cooldown)
	assert.Equal(80, cfg.Policy.MaxLength)
	assert.Equal([]string{"спам", "скам"}, cfg.Policy.ForbiddenTerms)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *model.Config){
		"no token":       func(c *model.Config) { c.Bot.Token = "" },
		"bad action":     func(c *model.Config) { c.Policy.MissingKeywordAction = "drop" },
		"zero length":    func(c *model.Config) { c.Policy.MaxLength = 0 },
		"no operator":    func(c *model.Config) { c.Access.OperatorID = 0 },
		"neg cooldown":   func(c *model.Config) { c.Access.Cooldown = -time.Second },
		"bad driver":     func(c *model.Config) { c.Database.Driver = "mysql" },
		"dsn missing":    func(c *model.Config) { c.Database.Driver = "redis" },
		"no publish":     func(c *model.Config) { c.Channels.Publish = "" },
		"guild required": func(c *model.Config) { c.Bot.GuildID = "" },
		"caption limit":  func(c *model.Config) { c.Caption.MaxLength = 0 },
		"contact no id":  func(c *model.Config) { c.Caption.ContactURL = "https://t.me/shop" },
		"untagged group": func(c *model.Config) { c.Policy.RequiredGroups[0].Tag = "" },
		"empty group":    func(c *model.Config) { c.Policy.RequiredGroups[1].Terms = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeYAML(t, validYAML))
			require.NoError(t, err)
			require.NoError(t, Validate(cfg))

			mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}
