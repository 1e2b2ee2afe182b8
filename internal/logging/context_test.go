package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", EditorID(ctx))
	assert.Equal(t, "", NodeID(ctx))
	assert.Equal(t, "", Gesture(ctx))

	ctx = WithEditorID(ctx, "ed-1")
	ctx = WithNodeID(ctx, "n3.1")
	ctx = WithGesture(ctx, "drawing")

	assert.Equal(t, "ed-1", EditorID(ctx))
	assert.Equal(t, "n3.1", NodeID(ctx))
	assert.Equal(t, "drawing", Gesture(ctx))
}

func TestLogWith(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := WithGesture(WithEditorID(context.Background(), "ed-abc"), "moving")
	LogWith(ctx, logger).Info("drag")

	output := buf.String()
	assert.Contains(t, output, "editor_id=ed-abc")
	assert.Contains(t, output, "gesture=moving")
	assert.NotContains(t, output, "node_id")
}

func TestCorrelationHandler(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewCorrelationHandler(inner))

	ctx := WithNodeID(WithEditorID(context.Background(), "ed-auto"), "n0.1")
	logger.InfoContext(ctx, "auto inject")

	output := buf.String()
	assert.Contains(t, output, `"editor_id":"ed-auto"`)
	assert.Contains(t, output, `"node_id":"n0.1"`)
	assert.NotContains(t, output, "gesture")
}

func TestCorrelationHandlerEmptyContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCorrelationHandler(slog.NewJSONHandler(&buf, nil)))

	logger.InfoContext(context.Background(), "bare log")

	output := buf.String()
	assert.NotContains(t, output, "editor_id")
	assert.Contains(t, output, "bare log")
}

func TestCorrelationHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	handler := NewCorrelationHandler(slog.NewJSONHandler(&buf, nil))
	logger := slog.New(handler.WithAttrs([]slog.Attr{slog.String("component", "canvas")}).WithGroup("g"))

	logger.InfoContext(WithEditorID(context.Background(), "ed-grp"), "grouped", "key", "val")

	output := buf.String()
	assert.Contains(t, output, `"component":"canvas"`)
	assert.Contains(t, output, "ed-grp")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "json")
	ctx := WithEditorID(context.Background(), "ed-9")

	logger.InfoContext(ctx, "hidden")
	logger.WarnContext(ctx, "shown")

	output := buf.String()
	assert.NotContains(t, output, "hidden")
	assert.Contains(t, output, `"msg":"shown"`)
	assert.Contains(t, output, `"editor_id":"ed-9"`)

	buf.Reset()
	New(&buf, "info", "text").Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}
