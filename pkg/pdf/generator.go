package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/sfnt"
)

// FallbackFamily is the core serif family used when the bundled fonts
// cannot be registered.
const FallbackFamily = "Times"

// ErrFontRegistration is returned by FontError when the bundled family
// could not be loaded and the generator switched to FallbackFamily.
var ErrFontRegistration = errors.New("font registration failed")

// FontConfig locates the bundled font family
type FontConfig struct {
	Family  string `json:"family"`
	Dir     string `json:"dir"`
	Regular string `json:"regular"`
	Bold    string `json:"bold"`
	Italic  string `json:"italic,omitempty"` // optional, regular is reused when empty
}

// DefaultFontConfig returns the EB Garamond family shipped under font/
func DefaultFontConfig() FontConfig {
	return FontConfig{
		Family:  "EBGaramond",
		Dir:     "font",
		Regular: "EBGaramond-Regular.ttf",
		Bold:    "EBGaramond-Bold.ttf",
		Italic:  "EBGaramond-Italic.ttf",
	}
}

// Generator owns the font set shared by every document it creates. Fonts
// are read and validated once; documents only register the cached bytes.
type Generator struct {
	family  string
	fonts   map[FontStyle][]byte
	fontErr error
}

// NewGenerator loads the font family described by cfg. It never fails:
// missing or corrupt font files switch the generator to FallbackFamily and
// the cause is kept for FontError.
func NewGenerator(cfg FontConfig) *Generator {
	fonts, err := loadFonts(cfg)
	if err != nil {
		return &Generator{
			family:  FallbackFamily,
			fontErr: fmt.Errorf("%w: %v", ErrFontRegistration, err),
		}
	}
	return &Generator{family: cfg.Family, fonts: fonts}
}

// NewFallbackGenerator returns a generator that only uses FallbackFamily.
func NewFallbackGenerator() *Generator {
	return &Generator{family: FallbackFamily}
}

// Family returns the font family name documents draw with
func (g *Generator) Family() string {
	return g.family
}

// FontsFallback reports whether the built-in family replaced the bundled one.
func (g *Generator) FontsFallback() bool {
	return g.fonts == nil
}

// FontError returns the reason the bundled family was rejected, if any.
func (g *Generator) FontError() error {
	return g.fontErr
}

// NewDocument opens a single page of the given size. Coordinates passed to
// the returned Document use a bottom-left origin in points.
func (g *Generator) NewDocument(size Size, opts DocumentOptions) *Document {
	// gofpdf swaps Wd/Ht for landscape pages
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: size.Height, Ht: size.Width},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)

	tr := func(s string) string { return s }
	if g.fonts == nil {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	} else {
		// gofpdf writes into the font buffer while subsetting, so each
		// document gets its own copy.
		for _, style := range []FontStyle{Regular, Bold, Italic} {
			pdf.AddUTF8FontFromBytes(g.family, string(style), bytes.Clone(g.fonts[style]))
		}
	}

	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}
	if opts.Creator != "" {
		pdf.SetCreator(opts.Creator, true)
	}
	if !opts.CreationDate.IsZero() {
		pdf.SetCatalogSort(true)
		pdf.SetCreationDate(opts.CreationDate)
	}

	pdf.AddPage()

	return &Document{
		pdf:    pdf,
		size:   size,
		family: g.family,
		tr:     tr,
		images: make(map[string]bool),
	}
}

func loadFonts(cfg FontConfig) (map[FontStyle][]byte, error) {
	if cfg.Family == "" || cfg.Regular == "" || cfg.Bold == "" {
		return nil, errors.New("font family, regular and bold files are required")
	}

	regular, err := readFont(cfg.Dir, cfg.Regular)
	if err != nil {
		return nil, err
	}
	bold, err := readFont(cfg.Dir, cfg.Bold)
	if err != nil {
		return nil, err
	}

	italic := regular
	if cfg.Italic != "" {
		if italic, err = readFont(cfg.Dir, cfg.Italic); err != nil {
			return nil, err
		}
	}

	fonts := map[FontStyle][]byte{
		Regular: regular,
		Bold:    bold,
		Italic:  italic,
	}
	if err := checkRegistration(cfg.Family, fonts); err != nil {
		return nil, err
	}
	return fonts, nil
}

// checkRegistration registers every style on a scratch document. sfnt
// accepts CFF-flavoured OpenType that gofpdf's UTF-8 loader rejects, and
// gofpdf only reports the rejection once the font is selected.
func checkRegistration(family string, fonts map[FontStyle][]byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gofpdf could not load font %s: %v", family, r)
		}
	}()

	scratch := gofpdf.New("L", "pt", "A4", "")
	scratch.AddPage()
	for _, style := range []FontStyle{Regular, Bold, Italic} {
		scratch.AddUTF8FontFromBytes(family, string(style), bytes.Clone(fonts[style]))
		scratch.SetFont(family, string(style), 12)
		if err := scratch.Error(); err != nil {
			return fmt.Errorf("gofpdf could not load font %s %q: %w", family, style, err)
		}
	}
	return nil
}

func readFont(dir, name string) ([]byte, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", path, err)
	}
	if _, err := sfnt.Parse(data); err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return data, nil
}
