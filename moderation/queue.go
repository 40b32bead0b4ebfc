// Package moderation holds submissions that wait for a moderator decision.
package moderation

import (
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/theConCreator/OnyxShopbot/model"
)

// Queue maps ticket ids to pending tickets. There is no ordering between tickets;
// moderators resolve them in any order.
type Queue struct {
	tickets *xsync.MapOf[string, *model.Ticket]
	now     func() time.Time
}

func NewQueue() *Queue {
	return &Queue{
		tickets: xsync.NewMapOf[string, *model.Ticket](),
		now:     time.Now,
	}
}

// Enqueue stores sub as a new pending ticket and returns it.
func (q *Queue) Enqueue(sub *model.Submission, groups []string) *model.Ticket {
	t := &model.Ticket{
		Submission: sub,
		State:      model.TicketPending,
		Groups:     groups,
		CreatedAt:  q.now(),
	}
	for {
		t.ID = uuid.New().String()
		if _, loaded := q.tickets.LoadOrStore(t.ID, t); !loaded {
			return t
		}
	}
}

// Resolve removes the ticket and hands it to the caller. Only the first call for an id
// succeeds; later calls and unknown ids return false and change nothing.
func (q *Queue) Resolve(id string) (*model.Ticket, bool) {
	t, ok := q.tickets.LoadAndDelete(id)
	if !ok {
		return nil, false
	}
	t.State = model.TicketResolved
	return t, true
}

// Restore puts a resolved ticket back under its id, for decisions that could not be
// carried out. It reports false and leaves t untouched when the id is taken.
func (q *Queue) Restore(t *model.Ticket) bool {
	prev := t.State
	t.State = model.TicketPending
	if _, loaded := q.tickets.LoadOrStore(t.ID, t); loaded {
		// t never made it into the map, so it is still ours to reset
		t.State = prev
		return false
	}
	return true
}

// Get returns a pending ticket without resolving it.
func (q *Queue) Get(id string) (*model.Ticket, bool) {
	return q.tickets.Load(id)
}

// Pending returns the number of tickets awaiting a decision.
func (q *Queue) Pending() int {
	return q.tickets.Size()
}
