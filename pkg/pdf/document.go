package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// A4Landscape is the sheet every certificate template is printed on.
var A4Landscape = Size{Width: 841.89, Height: 595.27}

// Size is a page size in points
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DocumentOptions carries document metadata
type DocumentOptions struct {
	Title        string
	Author       string
	Creator      string
	CreationDate time.Time // zero means now
}

// ImageDraw controls how an image is placed inside its box
type ImageDraw struct {
	PreserveAspect bool    // fit inside the box, centred
	Alpha          float64 // 0 or 1 means opaque
}

// Document is a single gofpdf page addressed with a bottom-left origin.
type Document struct {
	pdf    *gofpdf.Fpdf
	size   Size
	family string
	tr     func(string) string
	images map[string]bool
}

// Size returns the page size
func (d *Document) Size() Size {
	return d.size
}

// Measure returns the rendered width of text in the given style.
func (d *Document) Measure(text string, style FontStyle, size float64) float64 {
	d.pdf.SetFont(d.family, string(style), size)
	return d.pdf.GetStringWidth(d.tr(text))
}

// FillRect paints r without a border
func (d *Document) FillRect(r Rect, fill Color) {
	d.pdf.SetFillColor(fill.R, fill.G, fill.B)
	d.pdf.Rect(r.X, d.flip(r.Top()), r.W, r.H, "F")
}

// BorderedRect paints r and strokes its outline
func (d *Document) BorderedRect(r Rect, fill, stroke Color, lineWidth float64) {
	d.pdf.SetFillColor(fill.R, fill.G, fill.B)
	d.pdf.SetDrawColor(stroke.R, stroke.G, stroke.B)
	d.pdf.SetLineWidth(lineWidth)
	d.pdf.Rect(r.X, d.flip(r.Top()), r.W, r.H, "FD")
}

// Line strokes a straight segment
func (d *Document) Line(x1, y1, x2, y2 float64, c Color, lineWidth float64) {
	d.pdf.SetDrawColor(c.R, c.G, c.B)
	d.pdf.SetLineWidth(lineWidth)
	d.pdf.Line(x1, d.flip(y1), x2, d.flip(y2))
}

// Text draws a single line with its baseline at y.
func (d *Document) Text(x, y float64, text string, style FontStyle, size float64, c Color) {
	d.pdf.SetFont(d.family, string(style), size)
	d.pdf.SetTextColor(c.R, c.G, c.B)
	d.pdf.Text(x, d.flip(y), d.tr(text))
}

// Image draws img inside box. An image gofpdf cannot embed is reported as
// an error and leaves the document usable.
func (d *Document) Image(img *Image, box Rect, opts ImageDraw) error {
	if img == nil {
		return errors.New("nil image")
	}

	options := gofpdf.ImageOptions{ImageType: img.Type}
	if !d.images[img.Name] {
		d.pdf.RegisterImageOptionsReader(img.Name, options, bytes.NewReader(img.Data))
		if err := d.pdf.Error(); err != nil {
			d.pdf.ClearError()
			return fmt.Errorf("failed to register image %s: %w", img.Name, err)
		}
		d.images[img.Name] = true
	}

	target := box
	if opts.PreserveAspect {
		target = FitRect(box, float64(img.Width), float64(img.Height))
	}

	translucent := opts.Alpha > 0 && opts.Alpha < 1
	if translucent {
		d.pdf.SetAlpha(opts.Alpha, "Normal")
	}
	d.pdf.ImageOptions(img.Name, target.X, d.flip(target.Top()), target.W, target.H, false, options, 0, "")
	if translucent {
		d.pdf.SetAlpha(1, "Normal")
	}
	return nil
}

// Clip runs fn with drawing restricted to r.
func (d *Document) Clip(r Rect, fn func()) {
	d.pdf.ClipRect(r.X, d.flip(r.Top()), r.W, r.H, false)
	defer d.pdf.ClipEnd()
	fn()
}

// Output writes the finished document to w
func (d *Document) Output(w io.Writer) error {
	return d.pdf.Output(w)
}

// SaveAs writes the document to path. The file appears only once it is
// complete; on failure nothing is left at path.
func (d *Document) SaveAs(path string) error {
	if err := d.pdf.Error(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".certgen-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := d.pdf.Output(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move pdf into place: %w", err)
	}
	return nil
}

func (d *Document) flip(y float64) float64 {
	return d.size.Height - y
}
