package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Sender posts a rendered log line to a chat channel.
type Sender func(ctx context.Context, text string) error

// ChannelHandler passes every record to the wrapped handler and mirrors records at or
// above Level to a chat channel. Delivery happens on a background goroutine through a
// bounded buffer; records are dropped when the buffer is full. Delivery failures go to
// stderr, never back into slog.
type ChannelHandler struct {
	next  slog.Handler
	level slog.Leveler
	attrs []slog.Attr
	group string
	out   *channelSink
}

type channelSink struct {
	send    Sender
	queue   chan string
	done    chan struct{}
	limiter *rate.Limiter

	mu     sync.RWMutex
	closed bool
}

const channelBuffer = 64

// At most five messages per five seconds to one channel.
var channelRate = rate.Every(time.Second)

const channelBurst = 5

// NewChannelHandler starts the delivery goroutine. Call Close to stop it.
func NewChannelHandler(next slog.Handler, level slog.Leveler, send Sender) *ChannelHandler {
	sink := &channelSink{
		send:    send,
		queue:   make(chan string, channelBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(channelRate, channelBurst),
	}
	go sink.run()
	return &ChannelHandler{next: next, level: level, out: sink}
}

func (s *channelSink) run() {
	defer close(s.done)
	for text := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.limiter.Wait(ctx); err != nil {
			cancel()
			fmt.Fprintf(os.Stderr, "log channel delivery skipped: %v\n", err)
			continue
		}
		if err := s.send(ctx, text); err != nil {
			fmt.Fprintf(os.Stderr, "log channel delivery failed: %v\n", err)
		}
		cancel()
	}
}

func (s *channelSink) offer(text string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- text:
	default:
	}
}

func (h *ChannelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level) || level >= h.level.Level()
}

func (h *ChannelHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level.Level() {
		h.out.offer(h.format(r))
	}
	if h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *ChannelHandler) format(r slog.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s - %s", r.Time.Format(time.DateTime), r.Level, r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	prefix := ""
	if h.group != "" {
		prefix = h.group + "."
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s%s=%v", prefix, a.Key, a.Value)
		return true
	})
	return b.String()
}

func (h *ChannelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.next = h.next.WithAttrs(attrs)
	c.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		c.attrs = append(c.attrs, a)
	}
	return &c
}

func (h *ChannelHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.next = h.next.WithGroup(name)
	if c.group != "" {
		c.group += "." + name
	} else {
		c.group = name
	}
	return &c
}

// Close stops accepting records and waits for queued ones to be delivered.
func (h *ChannelHandler) Close() {
	h.out.mu.Lock()
	if !h.out.closed {
		h.out.closed = true
		close(h.out.queue)
	}
	h.out.mu.Unlock()
	<-h.out.done
}
