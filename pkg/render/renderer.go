// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-rigid2d/pkg/collision"
	"github.com/opd-ai/go-rigid2d/pkg/logging"
)

// Renderer draws colliders for debugging
type Renderer interface {
	Clear()
	DrawCollider(c *collision.Collider)
	Present()
}

// DrawDetector draws every active collider of d in sweep order
func DrawDetector(r Renderer, d *collision.Detector) {
	r.Clear()
	for _, c := range d.Active() {
		r.DrawCollider(c)
	}
	r.Present()
}

// NullRenderer is a Renderer that only logs at debug level.
type NullRenderer struct {
	logger *logging.Logger
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullRenderer{logger: logger}
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(context.Background(), "Clear called")
}

// Present implements Renderer.
func (d *NullRenderer) Present() {
	d.logger.Debug(context.Background(), "Present called")
}

// DrawCollider implements Renderer.
func (d *NullRenderer) DrawCollider(c *collision.Collider) {
	ctx := context.Background()
	if c == nil {
		d.logger.Debug(ctx, "DrawCollider called with nil collider")
		return
	}
	d.logger.Debug(ctx, "DrawCollider called",
		"owner", uint64(c.Owner),
		"shape", c.Shape.Kind.String(),
		"trigger", c.Trigger,
	)
}
