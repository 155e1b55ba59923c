// pkg/render/renderer_test.go
package render

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/opd-ai/go-rigid2d/pkg/collision"
	"github.com/opd-ai/go-rigid2d/pkg/logging"
	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

func TestNullRenderer_LogsCalls(t *testing.T) {
	var buf bytes.Buffer
	r := NewNullRenderer(logging.NewLoggerWithWriter(&buf, slog.LevelDebug))

	var _ Renderer = r
	r.Clear()
	r.DrawCollider(collision.NewCollider(7, physics.NewCircle(1), nil))
	r.DrawCollider(nil)
	r.Present()

	output := buf.String()
	for _, expected := range []string{"Clear called", "DrawCollider called", "nil collider", "Present called", "circle"} {
		if !strings.Contains(output, expected) {
			t.Errorf("Expected log to contain '%s', got: %s", expected, output)
		}
	}
}

func TestNullRenderer_NilLogger(t *testing.T) {
	if r := NewNullRenderer(nil); r.logger == nil {
		t.Error("Expected a default logger, got nil")
	}
}
