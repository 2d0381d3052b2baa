// pkg/render/renderer.go
package render

import (
	"context"
	"io"

	"github.com/opd-ai/go-physics2d/pkg/logging"
	"github.com/opd-ai/go-physics2d/pkg/physics"
)

// Renderer is a debug drawer that can be cleared and flushed once per
// frame.
type Renderer interface {
	physics.DebugDrawer
	Clear()
	Present(w io.Writer) error
}

// NullRenderer counts debug geometry and logs it instead of drawing.
type NullRenderer struct {
	logger *logging.Logger
	lines  int
	points int
}

// NewNullRenderer creates a new NullRenderer with structured logging.
// A nil logger uses logging.NewLogger.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullRenderer{logger: logger}
}

// DrawLine implements physics.DebugDrawer.
func (d *NullRenderer) DrawLine(a, b physics.Vector2D) {
	d.lines++
}

// DrawPoint implements physics.DebugDrawer.
func (d *NullRenderer) DrawPoint(p physics.Vector2D) {
	d.points++
}

// Counts returns the lines and points drawn since the last Clear.
func (d *NullRenderer) Counts() (lines, points int) {
	return d.lines, d.points
}

// Clear resets the counters.
func (d *NullRenderer) Clear() {
	d.lines, d.points = 0, 0
}

// Present logs the counters and writes nothing.
func (d *NullRenderer) Present(io.Writer) error {
	d.logger.Debug(context.Background(), "Present called",
		"lines", d.lines,
		"points", d.points,
	)
	return nil
}

var (
	_ Renderer = (*NullRenderer)(nil)
	_ Renderer = (*TerminalRenderer)(nil)
)
