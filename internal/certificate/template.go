package certificate

import (
	"sort"

	"certgen/certificate-backend/pkg/pdf"
)

// Template variant names
const (
	TemplateBorderedInset = "bordered-inset"
	TemplateCompactInset  = "compact-inset"
	TemplateFullBleed     = "full-bleed"

	DefaultTemplate = TemplateBorderedInset
)

// Margins are independent insets of the container from the page edge
type Margins struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// SignatureSlot is the box a signature image is fitted into, placed
// relative to the signature baseline.
type SignatureSlot struct {
	Drop   float64 // distance from the baseline down to the slot bottom
	Width  float64
	Height float64
}

// TemplateSpec carries every constant of one certificate layout. All
// variants share the same layout routine.
type TemplateSpec struct {
	Name string

	Sheet     pdf.Size // physical page
	PageDelta pdf.Size // subtracted from the sheet before layout
	Margins   Margins

	Background     pdf.Color
	ContainerFill  pdf.Color
	BorderColor    pdf.Color
	BorderWidth    float64
	WatermarkScale float64
	WatermarkAlpha float64

	Padding          float64 // top and bottom padding inside the container
	ContentInsetLeft float64
	FrameReserve     float64 // width kept free for the decorative frame
	TopOffset        float64

	LogoSize           float64
	LogoOffset         float64 // expected distance from the cursor to the description block
	HonorLogoPlacement bool
	AfterLogoGap       float64

	TitleMarginTop float64
	TitleSize      float64
	TitleColor     pdf.Color
	AfterTitleGap  float64

	SubtitleSize       float64
	SubtitleWidthRatio float64
	AfterSubtitleGap   float64

	NameSize       float64
	NameStyle      pdf.FontStyle
	NameColor      pdf.Color
	NameWidthRatio float64
	AfterNameGap   float64

	UnderlineDrop     float64
	UnderlineFactor   float64
	UnderlineWidth    float64
	AfterUnderlineGap float64

	BodySize       float64
	BodyWidthRatio float64
	LineHeight     float64
	FooterReserve  float64 // body gap, date gap and the signature's clearance above the bottom padding
	AfterBodyGap   float64

	DateSize          float64
	DateLabel         string
	DateLetterSpacing bool
	AfterDateGap      float64

	SignatureInsetLeft float64
	RemoteSignature    SignatureSlot
	LocalSignature     SignatureSlot
	SignatureSlotWidth float64

	IssuerSize          float64
	IssuerDrop          float64 // from the signature baseline to the issuer name
	IssuerTitleGap      float64
	IssuerCentered      bool
	IssuerLetterSpacing bool

	FrameAspect      float64 // frame width as a fraction of its height
	FrameOffsetRight float64
}

// footerDescent is how far the date, signature and issuer lines reach below
// the cursor left by the body text.
func (t TemplateSpec) footerDescent() float64 {
	return t.AfterBodyGap + t.AfterDateGap + t.IssuerDrop + t.IssuerTitleGap
}

var (
	orange   = pdf.HexColor("#f05d24")
	navy     = pdf.HexColor("#0d2344")
	hairline = pdf.HexColor("#edeef1")
)

func borderedInset() TemplateSpec {
	return TemplateSpec{
		Name:      TemplateBorderedInset,
		Sheet:     pdf.A4Landscape,
		PageDelta: pdf.Size{Width: 0, Height: 30},
		Margins:   Margins{Left: 60, Top: 31, Right: 50, Bottom: 100},

		Background:     pdf.White,
		ContainerFill:  pdf.White,
		BorderColor:    hairline,
		BorderWidth:    2,
		WatermarkScale: 0.8,
		WatermarkAlpha: 0.08,

		Padding:          25,
		ContentInsetLeft: 30,
		FrameReserve:     100,
		TopOffset:        10,

		LogoSize:     85,
		LogoOffset:   60,
		AfterLogoGap: 60,

		TitleMarginTop: 18,
		TitleSize:      30,
		TitleColor:     orange,
		AfterTitleGap:  25,

		SubtitleSize:       13.5,
		SubtitleWidthRatio: 0.4,
		AfterSubtitleGap:   40,

		NameSize:       30,
		NameStyle:      pdf.Italic,
		NameColor:      navy,
		NameWidthRatio: 0.6,
		AfterNameGap:   10,

		UnderlineDrop:     6,
		UnderlineFactor:   2.3,
		UnderlineWidth:    1,
		AfterUnderlineGap: 35,

		BodySize:       11,
		BodyWidthRatio: 0.95,
		LineHeight:     25,
		FooterReserve:  85,
		AfterBodyGap:   5,

		DateSize:     10,
		DateLabel:    "Date : ",
		AfterDateGap: 20,

		SignatureInsetLeft: 10,
		RemoteSignature:    SignatureSlot{Drop: 40, Width: 90, Height: 50},
		LocalSignature:     SignatureSlot{Drop: 30, Width: 120, Height: 40},
		SignatureSlotWidth: 120,

		IssuerSize:     10,
		IssuerDrop:     50,
		IssuerTitleGap: 16,

		FrameAspect: 0.25,
	}
}

func compactInset() TemplateSpec {
	t := borderedInset()
	t.Name = TemplateCompactInset
	t.PageDelta = pdf.Size{Width: 0, Height: 20}
	t.Margins = Margins{Left: 40, Top: 40, Right: 40, Bottom: 60}
	t.Background = pdf.HexColor("#f7f6f2")
	t.Padding = 22
	t.ContentInsetLeft = 28
	t.FrameReserve = 90
	t.TopOffset = 8
	t.LogoSize = 90
	t.LogoOffset = 58
	t.AfterLogoGap = 58
	t.TitleMarginTop = 16
	t.TitleSize = 28
	t.AfterTitleGap = 24
	t.SubtitleSize = 13
	t.AfterSubtitleGap = 38
	t.NameSize = 28
	t.NameStyle = pdf.Regular
	t.UnderlineFactor = 2.2
	t.AfterUnderlineGap = 32
	t.DateLetterSpacing = true
	t.IssuerCentered = true
	t.IssuerLetterSpacing = true
	t.FrameOffsetRight = 12
	return t
}

func fullBleed() TemplateSpec {
	t := borderedInset()
	t.Name = TemplateFullBleed
	t.PageDelta = pdf.Size{}
	t.Margins = Margins{Left: 20, Top: 20, Right: 20, Bottom: 20}
	t.Padding = 30
	t.ContentInsetLeft = 40
	t.FrameReserve = 110
	t.LogoSize = 100
	t.HonorLogoPlacement = true
	t.AfterLogoGap = 70
	t.TitleSize = 32
	t.NameSize = 32
	t.UnderlineFactor = 2.2
	return t
}

var templates = map[string]TemplateSpec{
	TemplateBorderedInset: borderedInset(),
	TemplateCompactInset:  compactInset(),
	TemplateFullBleed:     fullBleed(),
}

// TemplateByName returns the named variant
func TemplateByName(name string) (TemplateSpec, bool) {
	t, ok := templates[name]
	return t, ok
}

// Templates lists every variant sorted by name
func Templates() []TemplateSpec {
	out := make([]TemplateSpec, 0, len(templates))
	for _, t := range templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
