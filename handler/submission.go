package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/theConCreator/OnyxShopbot/model"
	"github.com/theConCreator/OnyxShopbot/pipeline"
)

// OnMessageCreate feeds messages from the submission channel and direct messages into
// the pipeline.
func (h *Handler) OnMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	sub, ok := SubmissionFromMessage(m.Message, h.channels.Submissions, h.now())
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	out, err := h.router.HandleSubmission(ctx, sub)
	log := h.log.With("submission", sub.ID, "user", sub.Author.UserID, "state", out.State.String(), "reason", out.Reason)
	switch {
	case errors.Is(err, pipeline.ErrTransport):
		log.Warn("submission routed with delivery errors", "err", err)
	case err != nil:
		log.Error("submission failed", "err", err)
	default:
		log.Info("submission routed")
	}
}

// SubmissionFromMessage converts a Discord message into a submission. Messages from
// bots and from channels other than submissionsChannel are ignored; direct messages are
// always accepted. The first image attachment makes the submission a photo; any other
// attachment yields a text submission with media that the pipeline rejects as malformed.
func SubmissionFromMessage(m *discordgo.Message, submissionsChannel string, now time.Time) (*model.Submission, bool) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return nil, false
	}
	if m.GuildID != "" && (submissionsChannel == "" || m.ChannelID != submissionsChannel) {
		return nil, false
	}
	userID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		return nil, false
	}

	author := model.Author{UserID: userID, Handle: m.Author.Username}
	at := now
	if !m.Timestamp.IsZero() {
		at = m.Timestamp
	}
	if img := firstImage(m.Attachments); img != nil {
		return model.NewPhotoSubmission(m.ID, author, m.Content, img.URL, m.ChannelID, at), true
	}
	sub := model.NewTextSubmission(m.ID, author, m.Content, m.ChannelID, at)
	if len(m.Attachments) > 0 && m.Attachments[0] != nil {
		// Non-image files are carried along so validation rejects the message visibly.
		sub.MediaRef = m.Attachments[0].URL
		return sub, true
	}
	if strings.TrimSpace(m.Content) == "" {
		return nil, false
	}
	return sub, true
}

func firstImage(attachments []*discordgo.MessageAttachment) *discordgo.MessageAttachment {
	for _, a := range attachments {
		if a == nil || a.URL == "" {
			continue
		}
		if strings.HasPrefix(a.ContentType, "image/") || (a.ContentType == "" && a.Width > 0) {
			return a
		}
	}
	return nil
}
