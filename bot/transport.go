package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bwmarrin/discordgo"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/theConCreator/OnyxShopbot/caption"
	"github.com/theConCreator/OnyxShopbot/model"
)

// ErrUnknownTicket is returned when the moderation message of a ticket is no longer
// cached, e.g. after a restart.
var ErrUnknownTicket = errors.New("moderation message not found")

const moderationCacheSize = 4096

type messageRef struct {
	channelID string
	messageID string
}

// Transport implements the pipeline's outbound actions with a discordgo session.
type Transport struct {
	s        *discordgo.Session
	channels model.Channels
	log      *slog.Logger

	// ticket id -> moderation message
	moderation *lru.Cache[string, messageRef]
}

func NewTransport(s *discordgo.Session, channels model.Channels, log *slog.Logger) (*Transport, error) {
	if log == nil {
		log = slog.Default()
	}
	cache, err := lru.New[string, messageRef](moderationCacheSize)
	if err != nil {
		return nil, err
	}
	return &Transport{
		s:          s,
		channels:   channels,
		log:        log.With("component", "transport"),
		moderation: cache,
	}, nil
}

// ReplyToAuthor answers in the channel the submission came from, or in a direct message
// when the origin is unknown.
func (t *Transport) ReplyToAuthor(ctx context.Context, sub *model.Submission, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	channelID := sub.Origin
	if channelID == "" {
		ch, err := t.s.UserChannelCreate(strconv.FormatInt(sub.Author.UserID, 10))
		if err != nil {
			return fmt.Errorf("opening dm with %d: %w", sub.Author.UserID, err)
		}
		channelID = ch.ID
	}
	_, err := t.s.ChannelMessageSendComplex(channelID, buildReply(sub, text))
	return err
}

func (t *Transport) PublishToChannel(ctx context.Context, sub *model.Submission, c caption.Caption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := t.s.ChannelMessageSendComplex(t.channels.Publish, buildPublishMessage(sub, c))
	if err != nil {
		return err
	}
	t.log.Debug("published", "submission", sub.ID, "message", msg.ID)
	return nil
}

func (t *Transport) ForwardToModeration(ctx context.Context, ticket *model.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := t.s.ChannelMessageSendComplex(t.channels.Moderation, buildModerationMessage(ticket))
	if err != nil {
		return err
	}
	t.moderation.Add(ticket.ID, messageRef{channelID: msg.ChannelID, messageID: msg.ID})
	return nil
}

func (t *Transport) ForwardToRejectedArchive(ctx context.Context, sub *model.Submission, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.s.ChannelMessageSendComplex(t.channels.Rejected, buildRejectedMessage(sub, reason))
	return err
}

// EditModerationMessage replaces the buttons of a ticket's moderation message with text.
func (t *Transport) EditModerationMessage(ctx context.Context, ticketID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ref, ok := t.moderation.Get(ticketID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTicket, ticketID)
	}
	components := []discordgo.MessageComponent{}
	_, err := t.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    ref.channelID,
		ID:         ref.messageID,
		Content:    &text,
		Components: &components,
	})
	if err != nil {
		return err
	}
	t.moderation.Remove(ticketID)
	return nil
}

// LogSender mirrors log lines to channelID.
func LogSender(s *discordgo.Session, channelID string) func(ctx context.Context, text string) error {
	return func(ctx context.Context, text string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := s.ChannelMessageSend(channelID, formatLogLine(text))
		return err
	}
}
