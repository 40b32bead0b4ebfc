package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/theConCreator/OnyxShopbot/access"
	"github.com/theConCreator/OnyxShopbot/bot"
	"github.com/theConCreator/OnyxShopbot/pipeline"
)

func stringPtr(s string) *string { return &s }

// interactionUser returns the invoking user for both guild and direct-message
// interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func interactionUserID(i *discordgo.InteractionCreate) (int64, bool) {
	u := interactionUser(i)
	if u == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(u.ID, 10, 64)
	return id, err == nil
}

func (h *Handler) deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		h.log.Warn("cannot acknowledge interaction", "err", err)
		return false
	}
	return true
}

func (h *Handler) editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: stringPtr(text)}); err != nil {
		h.log.Warn("cannot edit interaction response", "err", err)
	}
}

// decisionHandler handles the approve and reject buttons of a moderation message.
func (h *Handler) decisionHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.deferEphemeral(s, i) {
		return
	}
	ev, ok := DecisionFromInteraction(i)
	if !ok {
		h.editResponse(s, i, "❌ Не удалось распознать решение.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	res, err := h.router.HandleDecision(ctx, ev)
	log := h.log.With("ticket", ev.TicketID, "moderator", ev.ModeratorID, "status", res.Status.String())
	if err != nil {
		log.Warn("decision applied with errors", "err", err)
	} else {
		log.Info("decision handled")
	}
	h.editResponse(s, i, res.Message)
}

// DecisionFromInteraction extracts a decision event from a moderation button press.
// Unknown decision kinds and malformed ticket ids are left for the pipeline to reject.
func DecisionFromInteraction(i *discordgo.InteractionCreate) (pipeline.DecisionEvent, bool) {
	if i.Type != discordgo.InteractionMessageComponent {
		return pipeline.DecisionEvent{}, false
	}
	decision, ticketID, ok := bot.ParseDecisionCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return pipeline.DecisionEvent{}, false
	}
	moderatorID, ok := interactionUserID(i)
	if !ok {
		return pipeline.DecisionEvent{}, false
	}
	return pipeline.DecisionEvent{TicketID: ticketID, Decision: decision, ModeratorID: moderatorID}, true
}

func (h *Handler) banCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.setBanned(s, i, true)
}

func (h *Handler) unbanCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.setBanned(s, i, false)
}

func (h *Handler) setBanned(s *discordgo.Session, i *discordgo.InteractionCreate, banned bool) {
	if !h.deferEphemeral(s, i) {
		return
	}
	callerID, ok := interactionUserID(i)
	if !ok {
		h.editResponse(s, i, "❌ Не удалось определить пользователя.")
		return
	}
	target, ok := targetUserID(s, i)
	if !ok {
		h.editResponse(s, i, "❌ Укажите пользователя.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	var err error
	if banned {
		err = h.router.Ban(ctx, callerID, target)
	} else {
		err = h.router.Unban(ctx, callerID, target)
	}
	switch {
	case errors.Is(err, access.ErrNotOperator):
		h.editResponse(s, i, "⛔ Команда доступна только оператору.")
	case err != nil:
		h.log.Error("cannot update ban list", "target", target, "banned", banned, "err", err)
		h.editResponse(s, i, "❌ Не удалось обновить список блокировок.")
	case banned:
		h.editResponse(s, i, fmt.Sprintf("✅ Пользователь <@%d> заблокирован.", target))
	default:
		h.editResponse(s, i, fmt.Sprintf("✅ Пользователь <@%d> разблокирован.", target))
	}
}

func targetUserID(s *discordgo.Session, i *discordgo.InteractionCreate) (int64, bool) {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name != "user" {
			continue
		}
		u := opt.UserValue(s)
		if u == nil {
			return 0, false
		}
		id, err := strconv.ParseInt(u.ID, 10, 64)
		return id, err == nil
	}
	return 0, false
}

func (h *Handler) cooldownCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.deferEphemeral(s, i) {
		return
	}
	userID, ok := interactionUserID(i)
	if !ok {
		h.editResponse(s, i, "❌ Не удалось определить пользователя.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	left, err := h.router.Remaining(ctx, userID)
	if err != nil {
		h.log.Error("cannot read cooldown", "user", userID, "err", err)
		h.editResponse(s, i, "❌ Сервис временно недоступен.")
		return
	}
	if left <= 0 {
		h.editResponse(s, i, "✅ Можно публиковать объявление.")
		return
	}
	h.editResponse(s, i, "⏳ Следующее объявление можно опубликовать через "+pipeline.FormatWait(left)+".")
}
