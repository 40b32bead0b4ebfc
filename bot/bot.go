// Package bot owns the Discord session and implements the pipeline's outbound actions
// on top of it.
package bot

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/theConCreator/OnyxShopbot/command"
)

type Bot struct {
	Session *discordgo.Session

	guildID    string
	log        *slog.Logger
	registered []*discordgo.ApplicationCommand
}

// New creates a session for token. Nothing is opened until Start.
func New(token, guildID string, log *slog.Logger) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	return &Bot{Session: dg, guildID: guildID, log: log.With("component", "bot")}, nil
}

// Start registers the event handlers, opens the gateway connection and creates the
// slash commands in the configured guild.
func (b *Bot) Start(handlers ...interface{}) error {
	registerEventHandlers(b.Session, handlers...)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("opening discord connection: %w", err)
	}
	b.log.Info("connected to discord", "user", b.Session.State.User.Username)

	if b.guildID == "" {
		b.log.Warn("no guild configured, slash commands are not registered")
		return nil
	}
	for _, cmd := range command.AllCommands {
		created, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, b.guildID, cmd)
		if err != nil {
			return fmt.Errorf("creating command %q: %w", cmd.Name, err)
		}
		b.registered = append(b.registered, created)
	}
	return nil
}

// Stop removes the commands created by Start and closes the session.
func (b *Bot) Stop() error {
	for _, cmd := range b.registered {
		if err := b.Session.ApplicationCommandDelete(b.Session.State.User.ID, b.guildID, cmd.ID); err != nil {
			b.log.Warn("cannot delete command", "command", cmd.Name, "err", err)
		}
	}
	b.registered = nil
	return b.Session.Close()
}
