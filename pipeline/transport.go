package pipeline

import (
	"context"

	"github.com/theConCreator/OnyxShopbot/caption"
	"github.com/theConCreator/OnyxShopbot/model"
)

// Transport performs the outbound actions on the messaging platform. Calls may block on
// the network; the Router never holds a lock while calling them.
type Transport interface {
	ReplyToAuthor(ctx context.Context, sub *model.Submission, text string) error
	PublishToChannel(ctx context.Context, sub *model.Submission, c caption.Caption) error
	ForwardToModeration(ctx context.Context, t *model.Ticket) error
	ForwardToRejectedArchive(ctx context.Context, sub *model.Submission, reason string) error
	EditModerationMessage(ctx context.Context, ticketID, text string) error
}
