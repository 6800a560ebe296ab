// Package signature crops the signature block of a PDF page into a PNG for
// embedding in the report.
package signature

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"math"

	"github.com/gen2brain/go-fitz"
	"github.com/rotisserie/eris"

	"github.com/sells-group/residential-checks/internal/config"
)

// Region is a page rectangle in page-size fractions. A negative Page counts
// from the end, so -1 is the last page.
type Region struct {
	Page           int
	X0, Y0, X1, Y1 float64
}

// RegionFrom converts a configured region.
func RegionFrom(c config.RegionConfig) Region {
	return Region{Page: c.Page, X0: c.X0, Y0: c.Y0, X1: c.X1, Y1: c.Y1}
}

// Cropper renders a region of a document page as PNG bytes.
type Cropper interface {
	Crop(ctx context.Context, path string, r Region) ([]byte, error)
}

// FitzCropper rasterises pages with MuPDF.
type FitzCropper struct {
	dpi float64
}

// NewFitzCropper creates a cropper rendering at dpi (150 when <= 0).
func NewFitzCropper(dpi float64) *FitzCropper {
	if dpi <= 0 {
		dpi = 150
	}
	return &FitzCropper{dpi: dpi}
}

// Crop implements Cropper.
func (c *FitzCropper) Crop(ctx context.Context, path string, r Region) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, eris.Wrap(err, "signature: open document")
	}
	defer doc.Close() //nolint:errcheck

	page, err := ResolvePage(r.Page, doc.NumPage())
	if err != nil {
		return nil, err
	}

	img, err := doc.ImageDPI(page, c.dpi)
	if err != nil {
		return nil, eris.Wrapf(err, "signature: render page %d", page+1)
	}
	return CropImage(img, r)
}

// ResolvePage maps a possibly negative page number onto [0, n).
func ResolvePage(page, n int) (int, error) {
	if n <= 0 {
		return 0, eris.New("signature: document has no pages")
	}
	if page < 0 {
		page += n
	}
	if page < 0 || page >= n {
		return 0, eris.Errorf("signature: page %d out of range (%d pages)", page, n)
	}
	return page, nil
}

// PixelRect scales r onto bounds.
func PixelRect(bounds image.Rectangle, r Region) image.Rectangle {
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	return image.Rect(
		bounds.Min.X+int(math.Round(r.X0*w)),
		bounds.Min.Y+int(math.Round(r.Y0*h)),
		bounds.Min.X+int(math.Round(r.X1*w)),
		bounds.Min.Y+int(math.Round(r.Y1*h)),
	).Intersect(bounds)
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// CropImage cuts r out of img and encodes it as PNG.
func CropImage(img image.Image, r Region) ([]byte, error) {
	rect := PixelRect(img.Bounds(), r)
	if rect.Empty() {
		return nil, eris.New("signature: empty crop region")
	}

	si, ok := img.(subImager)
	if !ok {
		return nil, eris.New("signature: image does not support cropping")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, si.SubImage(rect)); err != nil {
		return nil, eris.Wrap(err, "signature: encode png")
	}
	return buf.Bytes(), nil
}
