package capture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"
)

var ErrNoInk = errors.New("signature is empty")

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SignaturePad accumulates free-hand strokes on a fixed-size surface.
type SignaturePad struct {
	mu      sync.Mutex
	width   int
	height  int
	strokes [][]Point
	drawing bool
}

func NewSignaturePad(width, height int) *SignaturePad {
	return &SignaturePad{width: width, height: height}
}

// Begin starts a stroke at (x, y). Points off the surface are pinned to
// its edge; non-finite points are ignored.
func (p *SignaturePad) Begin(x, y float64) {
	pt, ok := p.clamp(x, y)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.strokes = append(p.strokes, []Point{pt})
	p.drawing = true
}

// LineTo extends the current stroke. It is ignored outside a stroke.
func (p *SignaturePad) LineTo(x, y float64) {
	pt, ok := p.clamp(x, y)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.drawing {
		return
	}
	last := len(p.strokes) - 1
	p.strokes[last] = append(p.strokes[last], pt)
}

func (p *SignaturePad) clamp(x, y float64) (Point, bool) {
	if !finite(x) || !finite(y) {
		return Point{}, false
	}
	return Point{
		X: math.Min(math.Max(x, 0), float64(p.width-1)),
		Y: math.Min(math.Max(y, 0), float64(p.height-1)),
	}, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (p *SignaturePad) End() {
	p.mu.Lock()
	p.drawing = false
	p.mu.Unlock()
}

// HasInk is true once any stroke has begun.
func (p *SignaturePad) HasInk() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.strokes) > 0
}

// Clear blanks the surface; the pad stays usable.
func (p *SignaturePad) Clear() {
	p.mu.Lock()
	p.strokes = nil
	p.drawing = false
	p.mu.Unlock()
}

// Snapshot rasterizes the surface to a single PNG.
func (p *SignaturePad) Snapshot() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.strokes) == 0 {
		return nil, ErrNoInk
	}

	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	ink := color.RGBA{A: 0xff}
	for _, stroke := range p.strokes {
		if len(stroke) == 1 {
			dot(img, stroke[0], ink)
			continue
		}
		for i := 1; i < len(stroke); i++ {
			line(img, stroke[i-1], stroke[i], ink)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode signature: %w", err)
	}
	return buf.Bytes(), nil
}

// line draws a two-pixel wide segment with Bresenham stepping.
func line(img *image.RGBA, a, b Point, c color.RGBA) {
	x0, y0 := int(a.X), int(a.Y)
	x1, y1 := int(b.X), int(b.Y)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		dot(img, Point{X: float64(x0), Y: float64(y0)}, c)
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

func dot(img *image.RGBA, p Point, c color.RGBA) {
	x, y := int(p.X), int(p.Y)
	for ox := 0; ox < 2; ox++ {
		for oy := 0; oy < 2; oy++ {
			if image.Pt(x+ox, y+oy).In(img.Rect) {
				img.SetRGBA(x+ox, y+oy, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// StrokeFile is the JSON export of a digitizer session.
type StrokeFile struct {
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Strokes [][]Point `json:"strokes"`
}

// LoadSignaturePad replays a stroke file onto a new pad.
func LoadSignaturePad(r io.Reader) (*SignaturePad, error) {
	var f StrokeFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to read strokes: %w", err)
	}
	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", f.Width, f.Height)
	}

	for i, stroke := range f.Strokes {
		for _, pt := range stroke {
			if !finite(pt.X) || !finite(pt.Y) {
				return nil, fmt.Errorf("stroke %d has a non-finite point", i)
			}
		}
	}

	pad := NewSignaturePad(f.Width, f.Height)
	for _, stroke := range f.Strokes {
		if len(stroke) == 0 {
			continue
		}
		pad.Begin(stroke[0].X, stroke[0].Y)
		for _, pt := range stroke[1:] {
			pad.LineTo(pt.X, pt.Y)
		}
		pad.End()
	}
	return pad, nil
}
