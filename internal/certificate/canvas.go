package certificate

import (
	"context"
	"io"

	"certgen/certificate-backend/pkg/pdf"
)

// Canvas is the drawing surface the layout writes to. Coordinates use a
// bottom-left origin in points.
type Canvas interface {
	Size() pdf.Size
	Measure(text string, style pdf.FontStyle, size float64) float64
	FillRect(r pdf.Rect, fill pdf.Color)
	BorderedRect(r pdf.Rect, fill, stroke pdf.Color, lineWidth float64)
	Line(x1, y1, x2, y2 float64, c pdf.Color, lineWidth float64)
	Text(x, y float64, text string, style pdf.FontStyle, size float64, c pdf.Color)
	Image(img *pdf.Image, box pdf.Rect, opts pdf.ImageDraw) error
	Clip(r pdf.Rect, fn func())
}

// Page is a Canvas that can be sealed
type Page interface {
	Canvas
	Output(w io.Writer) error
	SaveAs(path string) error
}

// PageFactory opens pages and owns the registered fonts.
type PageFactory interface {
	NewPage(size pdf.Size, opts pdf.DocumentOptions) Page
	FontError() error
}

// AssetLoader resolves image references
type AssetLoader interface {
	Load(ctx context.Context, ref string) (*pdf.Image, error)
}

// AssetPaths are the fixed decoration images
type AssetPaths struct {
	Watermark string `json:"watermark"`
	Logo      string `json:"logo"`
	Frame     string `json:"frame"`
}

// DefaultAssetPaths matches the layout of the images/ directory
func DefaultAssetPaths() AssetPaths {
	return AssetPaths{
		Watermark: "images/1717996420665_backImage.png",
		Logo:      "images/1717996285387_rainlogo.png",
		Frame:     "images/1717996469308_frame.png",
	}
}

type pdfPages struct {
	gen *pdf.Generator
}

// PDFPages adapts a pdf.Generator to PageFactory.
func PDFPages(gen *pdf.Generator) PageFactory {
	return pdfPages{gen: gen}
}

func (p pdfPages) NewPage(size pdf.Size, opts pdf.DocumentOptions) Page {
	return p.gen.NewDocument(size, opts)
}

func (p pdfPages) FontError() error {
	return p.gen.FontError()
}
