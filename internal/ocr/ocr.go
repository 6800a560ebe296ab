// Package ocr turns project documents into raw text. PDFs are read through
// their text layer first; scanned PDFs and images fall back to tesseract.
package ocr

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/residential-checks/internal/config"
)

// ErrNoText is returned when neither the text layer nor OCR yields anything.
// Callers treat it as an empty document, not a failure.
var ErrNoText = eris.New("ocr: no text extracted")

// Extractor extracts text content from document files.
type Extractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// ImageExtensions are OCR'd directly without a text-layer attempt.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".tif", ".tiff"}

// IsImage reports whether path has an image extension.
func IsImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ImageExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// NewExtractor creates the layered extractor described by cfg. A nil runner
// executes the real binaries.
func NewExtractor(cfg config.OCRConfig, runner Runner) (Extractor, error) {
	if runner == nil {
		runner = ExecRunner{}
	}

	var text Extractor
	switch cfg.Provider {
	case "pdftotext", "":
		text = NewPdfToText(cfg.PdfToTextPath, runner, cfg.MaxPages)
	case "native":
		text = NewNativePDF(cfg.MaxPages)
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}

	return NewLayered(text, NewTesseract(cfg, runner), cfg.MinTextChars,
		time.Duration(cfg.TimeoutSecs)*time.Second), nil
}
