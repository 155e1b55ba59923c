// pkg/render/terminal.go
package render

import (
	"bufio"
	"io"
	"math"
	"os"
	"strings"

	"github.com/opd-ai/go-rigid2d/pkg/collision"
	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

// Glyphs used by the terminal renderer
const (
	GlyphBox     = '#'
	GlyphCircle  = 'o'
	GlyphTrigger = '+'
)

// TerminalRenderer provides a simple ASCII-based rendering for terminals.
// World +y points down the screen.
type TerminalRenderer struct {
	width     int
	height    int
	buffer    [][]rune
	scale     float64
	centerPos physics.Vector2D
	out       io.Writer

	// ClearScreen emits an ANSI clear before each frame
	ClearScreen bool
}

// NewTerminalRenderer creates a new terminal renderer with the specified
// dimensions. scale is world units per cell.
func NewTerminalRenderer(width, height int, scale float64) *TerminalRenderer {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if scale <= 0 || math.IsNaN(scale) {
		scale = 1
	}
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}

	r := &TerminalRenderer{
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
		out:    os.Stdout,
	}
	r.Clear()
	return r
}

// SetOutput redirects frames to w
func (r *TerminalRenderer) SetOutput(w io.Writer) {
	r.out = w
}

// SetCenter sets the center position of the view
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// cellCenter is the world position of the middle of cell (x, y)
func (r *TerminalRenderer) cellCenter(x, y int) physics.Vector2D {
	return physics.Vector2D{
		X: (float64(x)+0.5-float64(r.width)/2)*r.scale + r.centerPos.X,
		Y: (float64(y)+0.5-float64(r.height)/2)*r.scale + r.centerPos.Y,
	}
}

// worldToScreen converts world coordinates to screen coordinates
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	screenX := int(math.Floor((pos.X-r.centerPos.X)/r.scale + float64(r.width)/2))
	screenY := int(math.Floor((pos.Y-r.centerPos.Y)/r.scale + float64(r.height)/2))
	return screenX, screenY
}

func (r *TerminalRenderer) inBounds(x, y int) bool {
	return x >= 0 && x < r.width && y >= 0 && y < r.height
}

// Clear implements Renderer
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
}

// DrawCollider fills every cell whose center lies inside the collider's
// world shape. Shapes smaller than a cell still mark their center cell.
func (r *TerminalRenderer) DrawCollider(c *collision.Collider) {
	if c == nil {
		return
	}
	pose := c.Pose()
	glyph := GlyphBox
	if c.Shape.Kind == physics.ShapeCircle {
		glyph = GlyphCircle
	}
	if c.Trigger {
		glyph = GlyphTrigger
	}

	inside := func(p physics.Vector2D) bool {
		if c.Shape.Kind == physics.ShapeCircle {
			circle := physics.WorldCircle(pose, c.Shape)
			return p.Sub(circle.Center).LengthSquared() <= circle.Radius*circle.Radius
		}
		box := physics.WorldBox(pose, c.Shape)
		local := p.Sub(box.Center).Rotate(-box.Angle)
		return math.Abs(local.X) <= box.Half.X && math.Abs(local.Y) <= box.Half.Y
	}

	bounds := c.AABB()
	x0, y0 := r.worldToScreen(bounds.Min())
	x1, y1 := r.worldToScreen(bounds.Max())
	for y := max(y0, 0); y <= min(y1, r.height-1); y++ {
		for x := max(x0, 0); x <= min(x1, r.width-1); x++ {
			if inside(r.cellCenter(x, y)) {
				r.buffer[y][x] = glyph
			}
		}
	}

	if x, y := r.worldToScreen(physics.WorldCenter(pose, c.Shape)); r.inBounds(x, y) {
		r.buffer[y][x] = glyph
	}
}

// Present writes the buffer inside a border
func (r *TerminalRenderer) Present() {
	w := bufio.NewWriter(r.out)
	defer w.Flush()

	if r.ClearScreen {
		w.WriteString("\033[H\033[2J")
	}

	border := "+" + strings.Repeat("-", r.width) + "+\n"
	w.WriteString(border)
	for y := range r.buffer {
		w.WriteByte('|')
		w.WriteString(string(r.buffer[y]))
		w.WriteString("|\n")
	}
	w.WriteString(border)
}
