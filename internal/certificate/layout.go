package certificate

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"certgen/certificate-backend/pkg/pdf"
)

// Block names recorded in the cursor trace
const (
	BlockLogo        = "logo"
	BlockTitle       = "title"
	BlockSubtitle    = "subtitle"
	BlockName        = "name"
	BlockUnderline   = "underline"
	BlockBody        = "body"
	BlockDate        = "date"
	BlockSignature   = "signature"
	BlockIssuerName  = "issuer_name"
	BlockIssuerTitle = "issuer_title"
)

// resolvedAssets are the images loaded for one render; nil means skipped.
type resolvedAssets struct {
	watermark *pdf.Image
	logo      *pdf.Image
	frame     *pdf.Image
	signature *pdf.Image
	remoteSig bool
}

// layout draws one certificate onto a canvas in a single top-to-bottom pass.
type layout struct {
	spec   TemplateSpec
	geo    PageGeometry
	canvas Canvas
	cursor *Cursor
	req    Request
	assets resolvedAssets
	result *Result
	logger *zap.Logger
}

func newLayout(spec TemplateSpec, canvas Canvas, req Request, res resolvedAssets, result *Result, logger *zap.Logger) *layout {
	geo := NewPageGeometry(spec)
	return &layout{
		spec:   spec,
		geo:    geo,
		canvas: canvas,
		cursor: NewCursor(geo.Start),
		req:    req,
		assets: res,
		result: result,
		logger: logger,
	}
}

func (l *layout) run() {
	l.drawBackground()
	l.drawBorders()
	l.drawTextBlocks()
	l.drawFrame()
	l.result.Trace = l.cursor.Trace()
}

func (l *layout) drawBackground() {
	t, g := l.spec, l.geo

	l.canvas.FillRect(g.Page, t.Background)
	l.canvas.BorderedRect(g.Container, t.ContainerFill, t.BorderColor, t.BorderWidth)

	if l.assets.watermark == nil {
		return
	}
	w, h := g.Container.W*t.WatermarkScale, g.Container.H*t.WatermarkScale
	box := pdf.Rect{
		X: g.Container.X + (g.Container.W-w)/2,
		Y: g.Container.Y + (g.Container.H-h)/2,
		W: w,
		H: h,
	}
	l.drawImage(l.assets.watermark, box, pdf.ImageDraw{PreserveAspect: true, Alpha: t.WatermarkAlpha})
}

// drawBorders strokes only the left and top edges of the inner region.
func (l *layout) drawBorders() {
	c, t := l.geo.Container, l.spec
	l.canvas.Line(c.X, c.Y, c.X, c.Top(), t.BorderColor, t.BorderWidth)
	l.canvas.Line(c.X, c.Top(), c.Right(), c.Top(), t.BorderColor, t.BorderWidth)
}

func (l *layout) drawTextBlocks() {
	l.drawLogo()
	l.drawTitle()
	l.drawSubtitle()
	nameWidth := l.drawName()
	l.drawUnderline(nameWidth)
	l.drawBody()
	l.drawDate()
	l.drawSignatureBlock()
}

// drawLogo places the logo where the description block is expected to
// start, using a constant offset rather than the real position.
func (l *layout) drawLogo() {
	t, content := l.spec, l.geo.Content
	y := l.cursor.Place(BlockLogo)

	if l.assets.logo != nil {
		x := content.X
		if t.HonorLogoPlacement {
			switch l.req.LogoPlacement {
			case LogoRight:
				x = content.Right() - t.LogoSize
			case LogoCenter:
				x = content.X + (content.W-t.LogoSize)/2
			}
		}
		box := pdf.Rect{X: x, Y: y - t.LogoOffset, W: t.LogoSize, H: t.LogoSize}
		l.drawImage(l.assets.logo, box, pdf.ImageDraw{PreserveAspect: true})
	}

	l.cursor.Advance(t.AfterLogoGap)
}

func (l *layout) drawTitle() {
	t := l.spec
	l.cursor.Advance(t.TitleMarginTop)
	y := l.cursor.Place(BlockTitle)
	l.canvas.Text(l.geo.Content.X, y, UpperTitle(l.req.CourseTitle), pdf.Bold, t.TitleSize, t.TitleColor)
	l.cursor.Advance(t.AfterTitleGap)
}

func (l *layout) drawSubtitle() {
	t := l.spec
	y := l.cursor.Place(BlockSubtitle)
	budget := l.geo.Content.W * t.SubtitleWidthRatio
	text := FitWidth(l.req.CourseSubtitle, budget, l.measurer(pdf.Bold, t.SubtitleSize))
	if text != "" {
		l.canvas.Text(l.geo.Content.X, y, text, pdf.Bold, t.SubtitleSize, pdf.Black)
	}
	l.cursor.Advance(t.AfterSubtitleGap)
}

// drawName returns the regular-style width used for the underline.
func (l *layout) drawName() float64 {
	t := l.spec
	y := l.cursor.Place(BlockName)
	budget := l.geo.Content.W * t.NameWidthRatio
	name := FitWidth(CapitalizeWords(l.req.RecipientName), budget, l.measurer(t.NameStyle, t.NameSize))
	if name != "" {
		l.canvas.Text(l.geo.Content.X, y, name, t.NameStyle, t.NameSize, t.NameColor)
	}
	l.cursor.Advance(t.AfterNameGap)
	return l.canvas.Measure(name, pdf.Regular, t.NameSize)
}

// drawUnderline is deliberately wider than the name it sits under.
func (l *layout) drawUnderline(nameWidth float64) {
	t, x := l.spec, l.geo.Content.X
	y := l.cursor.Place(BlockUnderline) - t.UnderlineDrop
	l.canvas.Line(x, y, x+nameWidth*t.UnderlineFactor, y, t.NameColor, t.UnderlineWidth)
	l.cursor.Advance(t.AfterUnderlineGap)
}

func (l *layout) drawBody() {
	t := l.spec
	lines := WrapWords(l.req.BodyText, l.geo.Content.W*t.BodyWidthRatio, l.measurer(pdf.Regular, t.BodySize))

	l.cursor.Place(BlockBody)
	for i, line := range lines {
		if !l.cursor.Fits(t.LineHeight, l.geo.BodyFloor) {
			l.result.LinesDropped = len(lines) - i
			l.result.Warnings = append(l.result.Warnings, Warning{
				Kind: ErrOverflowTruncation,
				Err:  fmt.Errorf("%w: %d of %d lines dropped", ErrOverflowTruncation, len(lines)-i, len(lines)),
			})
			l.logger.Warn("Body text truncated",
				zap.Int("lines_drawn", i),
				zap.Int("lines_dropped", len(lines)-i))
			break
		}
		l.canvas.Text(l.geo.Content.X, l.cursor.Y(), line, pdf.Regular, t.BodySize, pdf.Black)
		l.cursor.Advance(t.LineHeight)
		l.result.LinesDrawn++
	}

	l.cursor.Advance(t.AfterBodyGap)
}

func (l *layout) drawDate() {
	t := l.spec
	y := l.cursor.Place(BlockDate)
	text := t.DateLabel + l.req.Date
	if t.DateLetterSpacing {
		text = LetterSpace(text)
	}
	l.canvas.Text(l.geo.Content.X, y, text, pdf.Bold, t.DateSize, pdf.Black)
	l.cursor.Advance(t.AfterDateGap)
}

// drawSignatureBlock places the optional signature image and the issuer
// lines under it.
func (l *layout) drawSignatureBlock() {
	t, x := l.spec, l.geo.Content.X
	sigLeft := x - t.SignatureInsetLeft
	y := l.cursor.Place(BlockSignature)

	if l.assets.signature != nil {
		slot := t.LocalSignature
		if l.assets.remoteSig {
			slot = t.RemoteSignature
		}
		box := pdf.Rect{X: sigLeft, Y: y - slot.Drop, W: slot.Width, H: slot.Height}
		l.drawImage(l.assets.signature, box, pdf.ImageDraw{PreserveAspect: true})
	}

	l.cursor.Advance(t.IssuerDrop)
	l.drawIssuerLine(BlockIssuerName, l.req.IssuerName, pdf.Bold, sigLeft)
	l.cursor.Advance(t.IssuerTitleGap)
	l.drawIssuerLine(BlockIssuerTitle, l.req.IssuerTitle, pdf.Regular, sigLeft)
}

func (l *layout) drawIssuerLine(block, text string, style pdf.FontStyle, sigLeft float64) {
	t := l.spec
	y := l.cursor.Place(block)
	if text == "" {
		return
	}
	if t.IssuerLetterSpacing {
		text = LetterSpace(text)
	}
	x := l.geo.Content.X
	if t.IssuerCentered {
		// lines wider than the slot start at its left edge
		x = math.Max(sigLeft, sigLeft+(t.SignatureSlotWidth-l.canvas.Measure(text, style, t.IssuerSize))/2)
	}
	l.canvas.Text(x, y, text, style, t.IssuerSize, pdf.Black)
}

// drawFrame composites the decorative frame against the right edge of the
// container, clipped so it never crosses the border.
func (l *layout) drawFrame() {
	if l.assets.frame == nil {
		return
	}
	t, c := l.spec, l.geo.Container
	h := c.H
	w := h * t.FrameAspect
	box := pdf.Rect{X: c.Right() - w - t.FrameOffsetRight, Y: c.Y, W: w, H: h}
	l.canvas.Clip(c, func() {
		l.drawImage(l.assets.frame, box, pdf.ImageDraw{PreserveAspect: true})
	})
}

func (l *layout) drawImage(img *pdf.Image, box pdf.Rect, opts pdf.ImageDraw) {
	if err := l.canvas.Image(img, box, opts); err != nil {
		l.result.Warnings = append(l.result.Warnings, Warning{Kind: ErrAssetUnavailable, Asset: img.Name, Err: err})
		l.logger.Warn("Failed to draw image", zap.String("asset", img.Name), zap.Error(err))
	}
}

func (l *layout) measurer(style pdf.FontStyle, size float64) func(string) float64 {
	return func(s string) float64 {
		return l.canvas.Measure(s, style, size)
	}
}
