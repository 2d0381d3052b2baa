// pkg/render/terminal.go
package render

import (
	"bufio"
	"io"
	"math"
	"strings"

	"github.com/opd-ai/go-physics2d/pkg/physics"
)

// Glyphs used by the terminal renderer.
const (
	GlyphEmpty = ' '
	GlyphLine  = '#'
	GlyphPoint = 'o'
)

// TerminalRenderer rasterises engine debug geometry into an ASCII grid.
// World Y points up; row 0 is the top of the view.
type TerminalRenderer struct {
	width     int
	height    int
	buffer    [][]rune
	scale     float64
	centerPos physics.Vector2D

	// ClearScreen makes Present emit an ANSI clear sequence first.
	ClearScreen bool
}

// NewTerminalRenderer creates a new terminal renderer with the specified
// dimensions. scale is the number of world units per character cell.
func NewTerminalRenderer(width, height int, scale float64) *TerminalRenderer {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if scale <= 0 {
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
	}
	r.Clear()
	return r
}

// SetCenter sets the world position shown in the middle of the view
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// worldToScreen converts world coordinates to a column and row
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	col := math.Floor((pos.X-r.centerPos.X)/r.scale + float64(r.width)/2)
	row := math.Floor(float64(r.height)/2 - (pos.Y-r.centerPos.Y)/r.scale)
	return clampInt(col), clampInt(row)
}

// clampInt converts f to an int, keeping far off-screen and non-finite
// values representable.
func clampInt(f float64) int {
	const limit = 1 << 20
	switch {
	case math.IsNaN(f):
		return -limit
	case f > limit:
		return limit
	case f < -limit:
		return -limit
	}
	return int(f)
}

func (r *TerminalRenderer) inBounds(x, y int) bool {
	return x >= 0 && x < r.width && y >= 0 && y < r.height
}

func (r *TerminalRenderer) plot(x, y int, glyph rune) {
	if !r.inBounds(x, y) {
		return
	}
	if glyph == GlyphLine && r.buffer[y][x] == GlyphPoint {
		return
	}
	r.buffer[y][x] = glyph
}

// Clear blanks the grid.
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = GlyphEmpty
		}
	}
}

// DrawPoint implements physics.DebugDrawer. Points are never overwritten
// by lines.
func (r *TerminalRenderer) DrawPoint(p physics.Vector2D) {
	x, y := r.worldToScreen(p)
	r.plot(x, y, GlyphPoint)
}

// DrawLine implements physics.DebugDrawer using Bresenham's algorithm.
func (r *TerminalRenderer) DrawLine(a, b physics.Vector2D) {
	x0, y0 := r.worldToScreen(a)
	x1, y1 := r.worldToScreen(b)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		r.plot(x0, y0, GlyphLine)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Present writes the grid, framed by a border, to w.
func (r *TerminalRenderer) Present(w io.Writer) error {
	out := bufio.NewWriter(w)

	if r.ClearScreen {
		out.WriteString("\033[H\033[2J")
	}

	border := "+" + strings.Repeat("-", r.width) + "+\n"
	out.WriteString(border)
	for y := range r.buffer {
		out.WriteByte('|')
		out.WriteString(string(r.buffer[y]))
		out.WriteString("|\n")
	}
	out.WriteString(border)

	return out.Flush()
}

var _ physics.DebugDrawer = (*TerminalRenderer)(nil)
