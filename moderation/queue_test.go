package moderation

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/theConCreator/OnyxShopbot/model"
)

func testSubmission(id string) *model.Submission {
	return model.NewTextSubmission(id, model.Author{UserID: 7}, "просто текст", "chan", time.Now())
}

func TestQueueResolveOnce(t *testing.T) {
	assert := assert.New(t)
	q := NewQueue()

	tk := q.Enqueue(testSubmission("m1"), []string{"nft"})
	assert.NotEmpty(tk.ID)
	assert.Equal(model.TicketPending, tk.State)
	assert.Equal(1, q.Pending())

	got, ok := q.Get(tk.ID)
	assert.True(ok)
	assert.Same(tk, got)

	got, ok = q.Resolve(tk.ID)
	assert.True(ok)
	assert.Equal("m1", got.Submission.ID)
	assert.Equal(model.TicketResolved, got.State)
	assert.Equal([]string{"nft"}, got.Groups)
	assert.Equal(0, q.Pending())

	_, ok = q.Resolve(tk.ID)
	assert.False(ok)
	_, ok = q.Resolve("unknown")
	assert.False(ok)
	assert.Equal(0, q.Pending())
}

func TestQueueUniqueIDs(t *testing.T) {
	q := NewQueue()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tk := q.Enqueue(testSubmission("m"), nil)
		assert.False(t, seen[tk.ID])
		seen[tk.ID] = true
	}
	assert.Equal(t, 1000, q.Pending())
}

func TestQueueConcurrentResolve(t *testing.T) {
	assert := assert.New(t)
	q := NewQueue()
	tk := q.Enqueue(testSubmission("m1"), nil)

	var wg sync.WaitGroup
	var wins atomic.Int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := q.Resolve(tk.ID); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(int32(1), wins.Load())
}

func TestQueueRestore(t *testing.T) {
	assert := assert.New(t)
	q := NewQueue()
	tk := q.Enqueue(testSubmission("m1"), nil)

	got, ok := q.Resolve(tk.ID)
	assert.True(ok)
	assert.True(q.Restore(got))
	assert.Equal(model.TicketPending, got.State)
	assert.False(q.Restore(got))

	_, ok = q.Resolve(tk.ID)
	assert.True(ok)
}

func TestQueueRestoreTakenIDKeepsState(t *testing.T) {
	assert := assert.New(t)
	q := NewQueue()
	tk := q.Enqueue(testSubmission("m1"), nil)

	stale := &model.Ticket{ID: tk.ID, Submission: tk.Submission, State: model.TicketResolved}
	assert.False(q.Restore(stale))
	assert.Equal(model.TicketResolved, stale.State)

	got, ok := q.Get(tk.ID)
	assert.True(ok)
	assert.Same(tk, got)
}
