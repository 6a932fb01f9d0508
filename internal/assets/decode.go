package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"certgen/certificate-backend/pkg/pdf"
)

// Decode sniffs data and returns it in a form gofpdf can embed. PNG, JPEG
// and GIF pass through; WebP, BMP, TIFF and PNGs gofpdf rejects (16-bit or
// interlaced) are re-encoded as 8-bit PNG.
func Decode(name string, data []byte) (*pdf.Image, error) {
	mt := mimetype.Detect(data)

	var typ string
	switch {
	case mt.Is("image/png"):
		typ = "PNG"
		if needsPNGRewrite(data) {
			return transcode(name, data)
		}
	case mt.Is("image/jpeg"):
		typ = "JPG"
	case mt.Is("image/gif"):
		typ = "GIF"
	case mt.Is("image/webp"), mt.Is("image/bmp"), mt.Is("image/tiff"):
		return transcode(name, data)
	default:
		return nil, fmt.Errorf("%w: %s: unsupported type %s", ErrUnavailable, name, mt.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, name, err)
	}

	return &pdf.Image{Name: name, Type: typ, Data: data, Width: cfg.Width, Height: cfg.Height}, nil
}

func transcode(name string, data []byte) (*pdf.Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, name, err)
	}

	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, name, err)
	}

	return &pdf.Image{Name: name, Type: "PNG", Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// needsPNGRewrite inspects the IHDR chunk for features gofpdf cannot embed.
func needsPNGRewrite(data []byte) bool {
	// signature(8) length(4) "IHDR"(4) width(4) height(4) depth(1) color(1) compression(1) filter(1) interlace(1)
	if len(data) < 29 || string(data[12:16]) != "IHDR" {
		return false
	}
	depth, interlace := data[24], data[28]
	return depth == 16 || interlace != 0
}
