package certificate

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/mock"

	"certgen/certificate-backend/internal/assets"
	"certgen/certificate-backend/pkg/pdf"
)

type op struct {
	Kind    string
	Text    string
	X, Y    float64
	X2, Y2  float64
	Style   pdf.FontStyle
	Size    float64
	Box     pdf.Rect
	Image   string
	Alpha   float64
	Clipped bool
}

// recordingPage measures every rune as half an em.
type recordingPage struct {
	size       pdf.Size
	ops        []op
	clipping   bool
	failImages map[string]bool
}

func measure(text string, size float64) float64 {
	return float64(utf8.RuneCountInString(text)) * size * 0.45
}

func (p *recordingPage) Size() pdf.Size { return p.size }

func (p *recordingPage) Measure(text string, style pdf.FontStyle, size float64) float64 {
	return measure(text, size)
}

func (p *recordingPage) FillRect(r pdf.Rect, fill pdf.Color) {
	p.ops = append(p.ops, op{Kind: "fill", Box: r})
}

func (p *recordingPage) BorderedRect(r pdf.Rect, fill, stroke pdf.Color, lineWidth float64) {
	p.ops = append(p.ops, op{Kind: "rect", Box: r, Size: lineWidth})
}

func (p *recordingPage) Line(x1, y1, x2, y2 float64, c pdf.Color, lineWidth float64) {
	p.ops = append(p.ops, op{Kind: "line", X: x1, Y: y1, X2: x2, Y2: y2, Size: lineWidth})
}

func (p *recordingPage) Text(x, y float64, text string, style pdf.FontStyle, size float64, c pdf.Color) {
	p.ops = append(p.ops, op{Kind: "text", X: x, Y: y, Text: text, Style: style, Size: size})
}

func (p *recordingPage) Image(img *pdf.Image, box pdf.Rect, opts pdf.ImageDraw) error {
	if p.failImages[img.Name] {
		return errors.New("cannot embed")
	}
	p.ops = append(p.ops, op{Kind: "image", Image: img.Name, Box: box, Alpha: opts.Alpha, Clipped: p.clipping})
	return nil
}

func (p *recordingPage) Clip(r pdf.Rect, fn func()) {
	p.clipping = true
	defer func() { p.clipping = false }()
	fn()
}

func (p *recordingPage) Output(w io.Writer) error {
	_, err := io.WriteString(w, "%PDF-1.3 recorded")
	return err
}

func (p *recordingPage) SaveAs(path string) error {
	return os.WriteFile(path, []byte("%PDF-1.3 recorded"), 0o644)
}

func (p *recordingPage) texts() []op {
	var out []op
	for _, o := range p.ops {
		if o.Kind == "text" {
			out = append(out, o)
		}
	}
	return out
}

func (p *recordingPage) images() []op {
	var out []op
	for _, o := range p.ops {
		if o.Kind == "image" {
			out = append(out, o)
		}
	}
	return out
}

func (p *recordingPage) textAt(size float64, style pdf.FontStyle) []op {
	var out []op
	for _, o := range p.texts() {
		if o.Size == size && o.Style == style {
			out = append(out, o)
		}
	}
	return out
}

type recordingPages struct {
	pages      []*recordingPage
	fontErr    error
	failImages map[string]bool
}

func (f *recordingPages) NewPage(size pdf.Size, opts pdf.DocumentOptions) Page {
	p := &recordingPage{size: size, failImages: f.failImages}
	f.pages = append(f.pages, p)
	return p
}

func (f *recordingPages) FontError() error { return f.fontErr }

func (f *recordingPages) last() *recordingPage { return f.pages[len(f.pages)-1] }

// stubLoader serves images by reference; anything unknown is unavailable.
type stubLoader struct {
	images map[string]*pdf.Image
	errs   map[string]error
}

func (s *stubLoader) Load(ctx context.Context, ref string) (*pdf.Image, error) {
	if err, ok := s.errs[ref]; ok {
		return nil, err
	}
	if img, ok := s.images[ref]; ok {
		return img, nil
	}
	return nil, assets.ErrUnavailable
}

func img(name string, w, h int) *pdf.Image {
	return &pdf.Image{Name: name, Type: "PNG", Width: w, Height: h}
}

var testPaths = AssetPaths{
	Watermark: "images/back.png",
	Logo:      "images/logo.png",
	Frame:     "images/frame.png",
}

func allAssets() *stubLoader {
	images := make(map[string]*pdf.Image)
	for _, i := range []*pdf.Image{
		img(testPaths.Watermark, 800, 500),
		img(testPaths.Logo, 64, 64),
		img(testPaths.Frame, 100, 400),
		img("images/sign.png", 240, 80),
		img(remoteSignature, 180, 100),
	} {
		images[i.Name] = i
	}
	return &stubLoader{images: images}
}

const remoteSignature = "https://cdn.example.com/sign.png"

const sampleBody = "has successfully completed WorkTRADE, an online training module on the Prevention of Insider Trading in India covering the Securities and Exchange Board of India (SEBI) Regulations. By completing this training module, you have demonstrated your dedication to upholding ethical standards in the financial markets and preventing the misuse of confidential information. Your commitment to compliance and integrity is commendable."

func sampleRequest() Request {
	return Request{
		CourseTitle:    "Certificate of Completion",
		CourseSubtitle: "Welcome!",
		RecipientName:  "sachin kumar",
		BodyText:       sampleBody,
		Date:           "09-09-2023",
		SignatureImage: "images/sign.png",
		IssuerName:     "Antony Alex",
		IssuerTitle:    "CEO - Rainmaker",
	}
}

func longBody(words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = "integrity"
	}
	return strings.Join(parts, " ")
}

// MockS3Client is a mock implementation of storage.S3Client
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) Upload(ctx context.Context, bucket, key string, body io.Reader) error {
	args := m.Called(ctx, bucket, key, body)
	return args.Error(0)
}

func (m *MockS3Client) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockS3Client) Delete(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockS3Client) GetPresignedURL(ctx context.Context, bucket, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, expiration)
	return args.String(0), args.Error(1)
}
