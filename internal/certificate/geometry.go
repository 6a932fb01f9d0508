package certificate

import (
	"math"

	"certgen/certificate-backend/pkg/pdf"
)

// PageGeometry holds the rectangles derived from a template
type PageGeometry struct {
	Page      pdf.Rect
	Container pdf.Rect
	Content   pdf.Rect

	// BodyFloor is the lowest y a body line may reach. It sits above the
	// bottom padding boundary by the footer reserve, and never so low that
	// the footer would leave the container.
	//
	// Body text therefore stops about three 25pt lines earlier than a page
	// that truncates at the padding boundary itself. Such a page instead
	// pulls the signature back up over the date once the body runs long.
	// Here the cursor never moves up, so the room is kept free in advance
	// and the footer keeps its gaps.
	BodyFloor float64
	// Start is the cursor position before the first block
	Start float64
}

// NewPageGeometry derives the geometry of t.
func NewPageGeometry(t TemplateSpec) PageGeometry {
	page := pdf.Rect{W: t.Sheet.Width - t.PageDelta.Width, H: t.Sheet.Height - t.PageDelta.Height}
	container := page.Inset(t.Margins.Left, t.Margins.Top, t.Margins.Right, t.Margins.Bottom)
	content := pdf.Rect{
		X: container.X + t.ContentInsetLeft,
		Y: container.Y + t.Padding,
		W: container.W - 2*t.Padding - t.FrameReserve,
		H: container.H - 2*t.Padding,
	}

	floor := math.Max(content.Y+t.FooterReserve, container.Y+t.footerDescent())

	return PageGeometry{
		Page:      page,
		Container: container,
		Content:   content,
		BodyFloor: floor,
		Start:     container.Top() - t.Padding - t.TopOffset,
	}
}

// Valid reports whether content ⊂ container ⊂ page strictly.
func (g PageGeometry) Valid() bool {
	return g.Page.StrictlyContains(g.Container) && g.Container.StrictlyContains(g.Content)
}
