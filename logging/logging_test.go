package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theConCreator/OnyxShopbot/model"
)

func TestParseLevel(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(slog.LevelWarn, ParseLevel(" warn "))
	assert.Equal(slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(slog.LevelError, ParseLevel("error"))
	assert.Equal(slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(model.Log{Level: "info", Format: "json"}, &buf)

	logger.Debug("hidden")
	logger.Info("shown", "user", 42)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"user":42`)
}

type capture struct {
	mu    sync.Mutex
	lines []string
	err   error
}

func (c *capture) send(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, text)
	return c.err
}

func TestChannelHandler(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	c := &capture{}
	h := NewChannelHandler(base, slog.LevelWarn, c.send)
	logger := slog.New(h).With("component", "pipeline")

	logger.Info("routine")
	logger.WithGroup("publish").Warn("send failed", "err", "timeout")
	logger.Error("broken")
	h.Close()

	// both go to the wrapped handler
	assert.Contains(buf.String(), "routine")
	assert.Contains(buf.String(), "broken")

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Len(c.lines, 2)
	assert.Contains(c.lines[0], "WARN - send failed")
	assert.Contains(c.lines[0], "component=pipeline")
	assert.Contains(c.lines[0], "publish.err=timeout")
	assert.Contains(c.lines[1], "ERROR - broken")

	// records after Close are dropped without panicking
	logger.Error("late")
	assert.Len(c.lines, 2)
}

func TestChannelHandlerSendErrors(t *testing.T) {
	c := &capture{err: errors.New("discord down")}
	h := NewChannelHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), slog.LevelError, c.send)
	slog.New(h).Error("first")
	h.Close()
	h.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Len(t, c.lines, 1)
	assert.True(t, strings.HasSuffix(c.lines[0], "first"))
}
