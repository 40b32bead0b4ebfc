// Package pipeline routes every inbound submission to exactly one of three outcomes:
// published, rejected, or queued for a moderator. Queued submissions reach a terminal
// outcome through HandleDecision.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/theConCreator/OnyxShopbot/access"
	"github.com/theConCreator/OnyxShopbot/caption"
	"github.com/theConCreator/OnyxShopbot/metrics"
	"github.com/theConCreator/OnyxShopbot/model"
	"github.com/theConCreator/OnyxShopbot/moderation"
	"github.com/theConCreator/OnyxShopbot/policy"
)

// ErrTransport wraps failures of outbound calls. State committed before the failure is
// kept.
var ErrTransport = errors.New("transport failure")

// State is where a submission ended up after one pipeline pass.
type State int

const (
	Published State = iota
	Rejected
	Queued
)

func (s State) String() string {
	switch s {
	case Published:
		return "published"
	case Rejected:
		return "rejected"
	case Queued:
		return "queued"
	default:
		return "unknown"
	}
}

const (
	ReasonMalformed   = "malformed"
	ReasonUnavailable = "unavailable"
	ReasonModerator   = "moderator"
)

type Outcome struct {
	State  State
	Reason string
	// TicketID is set for Queued outcomes.
	TicketID string
	// Remaining is set for cooldown rejections.
	Remaining time.Duration
}

// DecisionEvent is a moderator pressing approve or reject on a ticket.
type DecisionEvent struct {
	TicketID    string
	Decision    string
	ModeratorID int64
}

type DecisionStatus int

const (
	DecisionApplied DecisionStatus = iota
	DecisionAlreadyHandled
	DecisionUnrecognized
	DecisionForbidden
	// DecisionDeferred means the author is still cooling down; the ticket stays pending.
	DecisionDeferred
)

func (s DecisionStatus) String() string {
	switch s {
	case DecisionApplied:
		return "applied"
	case DecisionAlreadyHandled:
		return "already-handled"
	case DecisionUnrecognized:
		return "unrecognized"
	case DecisionForbidden:
		return "forbidden"
	case DecisionDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// DecisionResult is reported back to the moderator who made the decision.
type DecisionResult struct {
	Status DecisionStatus
	// Outcome is the terminal state of the submission for applied decisions.
	Outcome Outcome
	Message string
}

type Deps struct {
	Access    *access.Controller
	Policy    *policy.Engine
	Queue     *moderation.Queue
	Composer  *caption.Composer
	Transport Transport
	Logger    *slog.Logger
	// ModeratorIDs restricts who may decide on tickets. The operator is always allowed.
	ModeratorIDs []int64
	Now          func() time.Time
}

type Router struct {
	access     *access.Controller
	policy     *policy.Engine
	queue      *moderation.Queue
	composer   *caption.Composer
	transport  Transport
	log        *slog.Logger
	moderators []int64
	now        func() time.Time
}

func New(d Deps) *Router {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Router{
		access:     d.Access,
		policy:     d.Policy,
		queue:      d.Queue,
		composer:   d.Composer,
		transport:  d.Transport,
		log:        d.Logger,
		moderators: d.ModeratorIDs,
		now:        d.Now,
	}
}

// HandleSubmission runs admission, policy and routing for one inbound submission. The
// returned error only reports failed outbound calls or store errors; the Outcome is
// always meaningful.
func (r *Router) HandleSubmission(ctx context.Context, sub *model.Submission) (Outcome, error) {
	log := r.log.With("submission", sub.ID, "user", sub.Author.UserID, "kind", sub.Kind)

	if err := sub.Validate(); err != nil {
		log.Warn("malformed submission", "err", err)
		out := r.finish(Outcome{State: Rejected, Reason: ReasonMalformed})
		return out, r.reply(ctx, sub, msgMalformed)
	}

	adm, err := r.access.CheckAdmission(ctx, sub.Author.UserID)
	if err != nil {
		log.Error("admission check failed", "err", err)
		out := r.finish(Outcome{State: Rejected, Reason: ReasonUnavailable})
		return out, errors.Join(err, r.reply(ctx, sub, msgUnavailable))
	}
	if !adm.Admitted {
		log.Info("submission denied", "reason", adm.Reason, "remaining", adm.Remaining)
		metrics.AccessDeniedTotal.WithLabelValues(adm.Reason).Inc()
		out := r.finish(Outcome{State: Rejected, Reason: adm.Reason, Remaining: adm.Remaining})
		return out, r.reply(ctx, sub, denialText(adm))
	}

	if sub.Price == "" {
		sub.Price = r.composer.ExtractPrice(sub.Body)
	}

	v := r.policy.Evaluate(sub.Body)
	metrics.PolicyVerdictsTotal.WithLabelValues(v.Kind.String(), v.Reason).Inc()
	log.Debug("policy verdict", "verdict", v.Kind, "reason", v.Reason, "groups", v.Groups)

	switch v.Kind {
	case policy.Block:
		out := r.finish(Outcome{State: Rejected, Reason: v.Reason})
		return out, errors.Join(
			r.reply(ctx, sub, blockText(v.Reason)),
			r.call("forward_rejected", r.transport.ForwardToRejectedArchive(ctx, sub, v.Reason)),
		)

	case policy.NeedsReview:
		t := r.queue.Enqueue(sub, v.Groups)
		metrics.ModerationPending.Set(float64(r.queue.Pending()))
		log.Info("submission queued", "ticket", t.ID, "reason", v.Reason)
		out := r.finish(Outcome{State: Queued, Reason: v.Reason, TicketID: t.ID})
		// the ticket stays pending even if the forward fails
		return out, errors.Join(
			r.call("forward_moderation", r.transport.ForwardToModeration(ctx, t)),
			r.reply(ctx, sub, msgQueued),
		)

	default:
		out, committed, err := r.publish(ctx, sub, v.Groups)
		if err != nil || !committed {
			return r.finish(out), err
		}
		return r.finish(out), r.reply(ctx, sub, msgPublished)
	}
}

// publish commits the author's cooldown and then posts the caption. The commit comes
// first, so a failed send still counts against the cooldown and an ad is published at
// most once. committed is false when another publication won the cooldown race.
func (r *Router) publish(ctx context.Context, sub *model.Submission, groups []string) (Outcome, bool, error) {
	adm, err := r.access.RecordPublish(ctx, sub.Author.UserID, r.now())
	if err != nil {
		r.log.Error("recording publish failed", "submission", sub.ID, "err", err)
		return Outcome{State: Rejected, Reason: ReasonUnavailable}, false, err
	}
	if !adm.Admitted {
		metrics.AccessDeniedTotal.WithLabelValues(adm.Reason).Inc()
		out := Outcome{State: Rejected, Reason: adm.Reason, Remaining: adm.Remaining}
		return out, false, r.reply(ctx, sub, denialText(adm))
	}

	c := r.composer.Compose(sub, groups)
	if err := r.call("publish", r.transport.PublishToChannel(ctx, sub, c)); err != nil {
		r.log.Error("publish failed after commit", "submission", sub.ID, "err", err)
		return Outcome{State: Published}, true, errors.Join(err, r.reply(ctx, sub, msgPublishFailed))
	}
	r.log.Info("submission published", "submission", sub.ID, "user", sub.Author.UserID)
	return Outcome{State: Published}, true, nil
}

// HandleDecision applies a moderator decision to a pending ticket. Each ticket is
// resolved at most once; repeated or late decisions report AlreadyHandled.
func (r *Router) HandleDecision(ctx context.Context, ev DecisionEvent) (DecisionResult, error) {
	res, err := r.handleDecision(ctx, ev)
	metrics.ModerationDecisionsTotal.WithLabelValues(res.Status.String()).Inc()
	return res, err
}

func (r *Router) handleDecision(ctx context.Context, ev DecisionEvent) (DecisionResult, error) {
	log := r.log.With("ticket", ev.TicketID, "moderator", ev.ModeratorID, "decision", ev.Decision)

	decision, ok := model.ParseDecision(ev.Decision)
	if _, err := uuid.Parse(ev.TicketID); err != nil || !ok {
		log.Warn("unrecognized decision")
		return DecisionResult{Status: DecisionUnrecognized, Message: msgUnrecognized}, nil
	}
	if !r.canModerate(ev.ModeratorID) {
		log.Warn("decision from non-moderator")
		return DecisionResult{Status: DecisionForbidden, Message: msgForbidden}, nil
	}

	if decision == model.DecisionApprove {
		if res, deferred, err := r.checkApproval(ctx, ev.TicketID); deferred {
			return res, err
		}
	}

	t, ok := r.queue.Resolve(ev.TicketID)
	if !ok {
		return DecisionResult{Status: DecisionAlreadyHandled, Message: msgAlreadyHandled}, nil
	}
	metrics.ModerationPending.Set(float64(r.queue.Pending()))
	sub := t.Submission

	if decision == model.DecisionReject {
		log.Info("ticket rejected")
		out := r.finish(Outcome{State: Rejected, Reason: ReasonModerator})
		err := errors.Join(
			r.call("forward_rejected", r.transport.ForwardToRejectedArchive(ctx, sub, ReasonModerator)),
			r.call("edit_moderation", r.transport.EditModerationMessage(ctx, t.ID, fmt.Sprintf("❌ Отклонено модератором <@%d>", ev.ModeratorID))),
			r.reply(ctx, sub, msgRejectedByMod),
		)
		return DecisionResult{Status: DecisionApplied, Outcome: out, Message: "Объявление отклонено."}, err
	}

	adm, err := r.access.RecordPublish(ctx, sub.Author.UserID, r.now())
	if err != nil || !adm.Admitted {
		// lost the cooldown race after the pre-check
		if !r.queue.Restore(t) {
			log.Error("cannot restore ticket, id taken")
		}
		metrics.ModerationPending.Set(float64(r.queue.Pending()))
		if err != nil {
			log.Error("recording publish failed", "err", err)
			return DecisionResult{Status: DecisionDeferred, Message: msgUnavailable}, err
		}
		log.Info("approval deferred, author cooling down", "remaining", adm.Remaining)
		return DecisionResult{Status: DecisionDeferred, Message: deferText(adm.Remaining)}, nil
	}

	log.Info("ticket approved")
	out := r.finish(Outcome{State: Published})
	c := r.composer.Compose(sub, t.Groups)
	if err := r.call("publish", r.transport.PublishToChannel(ctx, sub, c)); err != nil {
		log.Error("publish failed after commit", "err", err)
		return DecisionResult{Status: DecisionApplied, Outcome: out, Message: msgPublishFailed}, err
	}
	err = errors.Join(
		r.call("edit_moderation", r.transport.EditModerationMessage(ctx, t.ID, fmt.Sprintf("✅ Одобрено модератором <@%d>", ev.ModeratorID))),
		r.reply(ctx, sub, msgApproved),
	)
	return DecisionResult{Status: DecisionApplied, Outcome: out, Message: "Объявление опубликовано."}, err
}

// checkApproval defers an approval while the author is cooling down, leaving the ticket
// pending so other decisions on it still apply. deferred is false when the approval may
// go ahead.
func (r *Router) checkApproval(ctx context.Context, ticketID string) (DecisionResult, bool, error) {
	t, ok := r.queue.Get(ticketID)
	if !ok {
		return DecisionResult{Status: DecisionAlreadyHandled, Message: msgAlreadyHandled}, true, nil
	}
	left, err := r.access.Remaining(ctx, t.Submission.Author.UserID)
	if err != nil {
		r.log.Error("reading cooldown failed", "ticket", ticketID, "err", err)
		return DecisionResult{Status: DecisionDeferred, Message: msgUnavailable}, true, err
	}
	if left <= 0 {
		return DecisionResult{}, false, nil
	}
	// a concurrent decision may have resolved the ticket while the store was read
	if _, ok := r.queue.Get(ticketID); !ok {
		return DecisionResult{Status: DecisionAlreadyHandled, Message: msgAlreadyHandled}, true, nil
	}
	r.log.Info("approval deferred, author cooling down", "ticket", ticketID, "remaining", left)
	return DecisionResult{Status: DecisionDeferred, Message: deferText(left)}, true, nil
}

func (r *Router) canModerate(userID int64) bool {
	if r.access.IsOperator(userID) {
		return true
	}
	return len(r.moderators) == 0 || slices.Contains(r.moderators, userID)
}

// Ban puts target on the ban list on behalf of callerID.
func (r *Router) Ban(ctx context.Context, callerID, target int64) error {
	if err := r.access.Ban(ctx, callerID, target); err != nil {
		return err
	}
	r.log.Info("user banned", "user", target, "by", callerID)
	return nil
}

// Unban removes target from the ban list on behalf of callerID.
func (r *Router) Unban(ctx context.Context, callerID, target int64) error {
	if err := r.access.Unban(ctx, callerID, target); err != nil {
		return err
	}
	r.log.Info("user unbanned", "user", target, "by", callerID)
	return nil
}

func (r *Router) finish(out Outcome) Outcome {
	metrics.SubmissionsTotal.WithLabelValues(out.State.String()).Inc()
	return out
}

func (r *Router) reply(ctx context.Context, sub *model.Submission, text string) error {
	return r.call("reply", r.transport.ReplyToAuthor(ctx, sub, text))
}

// call tags a failed outbound call with ErrTransport and counts it.
func (r *Router) call(action string, err error) error {
	if err == nil {
		return nil
	}
	metrics.TransportFailuresTotal.WithLabelValues(action).Inc()
	r.log.Warn("outbound call failed", "action", action, "err", err)
	return fmt.Errorf("%s: %w: %w", action, ErrTransport, err)
}

// Remaining reports how long userID still has to wait before the next publication.
func (r *Router) Remaining(ctx context.Context, userID int64) (time.Duration, error) {
	return r.access.Remaining(ctx, userID)
}
