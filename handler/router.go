// Package handler turns Discord gateway events into pipeline calls.
package handler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/theConCreator/OnyxShopbot/bot"
	"github.com/theConCreator/OnyxShopbot/command/def"
	"github.com/theConCreator/OnyxShopbot/model"
	"github.com/theConCreator/OnyxShopbot/pipeline"
)

type InteractionFunc func(s *discordgo.Session, i *discordgo.InteractionCreate)

type Handler struct {
	router   *pipeline.Router
	channels model.Channels
	log      *slog.Logger
	timeout  time.Duration
	now      func() time.Time

	commandHandlers   map[string]InteractionFunc
	componentHandlers map[string]InteractionFunc
}

// New builds a Handler with the ban, unban, cooldown and moderation button handlers
// registered.
func New(router *pipeline.Router, channels model.Channels, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		router:            router,
		channels:          channels,
		log:               log.With("component", "handler"),
		timeout:           30 * time.Second,
		now:               time.Now,
		commandHandlers:   make(map[string]InteractionFunc),
		componentHandlers: make(map[string]InteractionFunc),
	}
	h.AddCommandHandler(def.BanCommand.Name, h.banCommandHandler)
	h.AddCommandHandler(def.UnbanCommand.Name, h.unbanCommandHandler)
	h.AddCommandHandler(def.CooldownCommand.Name, h.cooldownCommandHandler)
	h.AddComponentHandler(bot.DecisionPrefix, h.decisionHandler)
	return h
}

// AddCommandHandler registers a handler for a slash command.
func (h *Handler) AddCommandHandler(name string, handler InteractionFunc) {
	h.commandHandlers[name] = handler
}

// AddComponentHandler registers a handler for a message component. The key is the part
// of the custom id before the first colon.
func (h *Handler) AddComponentHandler(prefix string, handler InteractionFunc) {
	h.componentHandlers[prefix] = handler
}

// OnInteractionCreate is the main interaction router.
func (h *Handler) OnInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if handler, ok := h.commandHandlers[i.ApplicationCommandData().Name]; ok {
			handler(s, i)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		handlerKey, _, _ := strings.Cut(customID, ":")

		if handler, ok := h.componentHandlers[handlerKey]; ok {
			handler(s, i)
		}
	}
}
