// Package access gates who may submit ads: the ban list, the membership requirement and
// the cooldown between two publications of the same user.
package access

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

const (
	ReasonBanned        = "banned"
	ReasonNotSubscribed = "not-subscribed"
	ReasonCooldown      = "cooldown"
)

var ErrNotOperator = errors.New("caller is not the operator")

// MembershipChecker asks the messaging platform whether a user belongs to the required
// channel. Calls may block on the network.
type MembershipChecker interface {
	IsMember(ctx context.Context, userID int64) (bool, error)
}

// Admission is the result of an access check. Remaining is set for cooldown denials.
type Admission struct {
	Admitted  bool
	Reason    string
	Remaining time.Duration
}

func admitted() Admission { return Admission{Admitted: true} }

func denied(reason string) Admission { return Admission{Reason: reason} }

type Options struct {
	Cooldown   time.Duration
	OperatorID int64
	// Now defaults to time.Now.
	Now func() time.Time
}

type Controller struct {
	store      Store
	membership MembershipChecker
	cooldown   time.Duration
	operatorID int64
	now        func() time.Time

	locks *xsync.MapOf[int64, *sync.Mutex]
}

// New builds a Controller. A nil membership checker admits everyone.
func New(store Store, membership MembershipChecker, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		store:      store,
		membership: membership,
		cooldown:   opts.Cooldown,
		operatorID: opts.OperatorID,
		now:        opts.Now,
		locks:      xsync.NewMapOf[int64, *sync.Mutex](),
	}
}

func (c *Controller) lock(userID int64) func() {
	mu, _ := c.locks.LoadOrStore(userID, &sync.Mutex{})
	mu.Lock()
	return mu.Unlock
}

// CheckAdmission reports whether userID may submit right now. It is a read-only check;
// RecordPublish re-validates the cooldown atomically before committing.
func (c *Controller) CheckAdmission(ctx context.Context, userID int64) (Admission, error) {
	st, err := c.store.Get(ctx, userID)
	if err != nil {
		return Admission{}, fmt.Errorf("loading access state for %d: %w", userID, err)
	}
	if st.Banned {
		return denied(ReasonBanned), nil
	}

	if c.membership != nil {
		ok, err := c.membership.IsMember(ctx, userID)
		if err != nil {
			return Admission{}, fmt.Errorf("checking membership of %d: %w", userID, err)
		}
		if !ok {
			return denied(ReasonNotSubscribed), nil
		}
	}

	if rem := c.remaining(st.LastPublishedAt, c.now()); rem > 0 {
		return Admission{Reason: ReasonCooldown, Remaining: rem}, nil
	}
	return admitted(), nil
}

// RecordPublish starts the cooldown of userID at the given time. It is the commit point
// of every publication: when another publication of the same user landed inside the
// window it returns a cooldown denial and writes nothing.
func (c *Controller) RecordPublish(ctx context.Context, userID int64, at time.Time) (Admission, error) {
	unlock := c.lock(userID)
	defer unlock()

	st, err := c.store.Get(ctx, userID)
	if err != nil {
		return Admission{}, fmt.Errorf("loading access state for %d: %w", userID, err)
	}
	if rem := c.remaining(st.LastPublishedAt, at); rem > 0 {
		return Admission{Reason: ReasonCooldown, Remaining: rem}, nil
	}
	if err := c.store.SetLastPublished(ctx, userID, at); err != nil {
		return Admission{}, fmt.Errorf("recording publish for %d: %w", userID, err)
	}
	return admitted(), nil
}

// Remaining returns how long userID still has to wait, zero when free to publish.
func (c *Controller) Remaining(ctx context.Context, userID int64) (time.Duration, error) {
	st, err := c.store.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	return c.remaining(st.LastPublishedAt, c.now()), nil
}

func (c *Controller) remaining(last, now time.Time) time.Duration {
	if last.IsZero() || c.cooldown <= 0 {
		return 0
	}
	if elapsed := now.Sub(last); elapsed < c.cooldown {
		return c.cooldown - elapsed
	}
	return 0
}

// IsOperator reports whether userID is the configured operator.
func (c *Controller) IsOperator(userID int64) bool {
	return c.operatorID != 0 && userID == c.operatorID
}

// Ban adds target to the ban list. Only the operator may call it.
func (c *Controller) Ban(ctx context.Context, callerID, target int64) error {
	return c.setBanned(ctx, callerID, target, true)
}

// Unban removes target from the ban list. Only the operator may call it.
func (c *Controller) Unban(ctx context.Context, callerID, target int64) error {
	return c.setBanned(ctx, callerID, target, false)
}

func (c *Controller) setBanned(ctx context.Context, callerID, target int64, banned bool) error {
	if !c.IsOperator(callerID) {
		return ErrNotOperator
	}
	unlock := c.lock(target)
	defer unlock()

	if err := c.store.SetBanned(ctx, target, banned); err != nil {
		return fmt.Errorf("updating ban state of %d: %w", target, err)
	}
	return nil
}
