package pdf

import (
	"strconv"
	"strings"
)

// FontStyle selects a member of the registered family
type FontStyle string

const (
	Regular FontStyle = ""
	Bold    FontStyle = "B"
	Italic  FontStyle = "I"
)

// Color represents an RGB color
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	White = Color{R: 255, G: 255, B: 255}
	Black = Color{}
)

// HexColor parses "#rrggbb". Malformed input yields black.
func HexColor(hex string) Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return Black
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Black
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}
}

// Rect is an axis-aligned rectangle with its origin at the bottom-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Right() float64 { return r.X + r.W }
func (r Rect) Top() float64   { return r.Y + r.H }

// Inset shrinks r by the given amounts on each side.
func (r Rect) Inset(left, top, right, bottom float64) Rect {
	return Rect{X: r.X + left, Y: r.Y + bottom, W: r.W - left - right, H: r.H - top - bottom}
}

// StrictlyContains reports whether o lies inside r without touching its edges.
func (r Rect) StrictlyContains(o Rect) bool {
	return o.X > r.X && o.Y > r.Y && o.Right() < r.Right() && o.Top() < r.Top()
}

// FitRect scales an iw×ih image to fit inside box, keeping its aspect ratio,
// and centres it.
func FitRect(box Rect, iw, ih float64) Rect {
	if iw <= 0 || ih <= 0 || box.W <= 0 || box.H <= 0 {
		return box
	}
	scale := box.W / iw
	if s := box.H / ih; s < scale {
		scale = s
	}
	w, h := iw*scale, ih*scale
	return Rect{X: box.X + (box.W-w)/2, Y: box.Y + (box.H-h)/2, W: w, H: h}
}

// Image is decoded asset data in a format gofpdf can embed.
type Image struct {
	Name   string
	Type   string // PNG, JPG or GIF
	Data   []byte
	Width  int
	Height int
}
