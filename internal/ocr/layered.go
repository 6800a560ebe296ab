package ocr

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Layered tries the PDF text layer first and falls back to OCR when the
// layer yields fewer than minChars visible characters. Images go straight to
// OCR.
type Layered struct {
	text     Extractor
	ocr      *Tesseract
	minChars int
	timeout  time.Duration
}

// NewLayered creates a Layered extractor. A zero timeout means no per-file
// deadline.
func NewLayered(text Extractor, ocr *Tesseract, minChars int, timeout time.Duration) *Layered {
	return &Layered{text: text, ocr: ocr, minChars: minChars, timeout: timeout}
}

// ExtractText returns normalized text for a PDF or image. It returns ErrNoText
// when every source comes back empty.
func (l *Layered) ExtractText(ctx context.Context, path string) (string, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	if IsImage(path) {
		txt, err := l.ocr.OCRImage(ctx, path)
		if err != nil {
			return "", err
		}
		return nonEmpty(Normalize(txt))
	}

	layer, layerErr := l.text.ExtractText(ctx, path)
	layer = Normalize(layer)
	if layerErr == nil && Yield(layer) >= l.minChars {
		return layer, nil
	}

	log := zap.L().With(zap.String("file", path))
	if layerErr != nil {
		log.Warn("ocr: text layer failed, falling back to OCR", zap.Error(layerErr))
	} else {
		log.Debug("ocr: text layer too small, falling back to OCR",
			zap.Int("chars", Yield(layer)), zap.Int("min_chars", l.minChars))
	}

	scanned, ocrErr := l.ocr.OCRPDF(ctx, path)
	if ocrErr != nil {
		if layerErr == nil && layer != "" {
			log.Warn("ocr: OCR failed, keeping small text layer", zap.Error(ocrErr))
			return layer, nil
		}
		if layerErr != nil {
			return "", eris.Wrapf(ocrErr, "ocr: text layer failed (%v) and OCR failed", layerErr)
		}
		return "", ocrErr
	}

	scanned = Normalize(scanned)
	if Yield(scanned) < Yield(layer) {
		return layer, nil
	}
	return nonEmpty(scanned)
}

func nonEmpty(s string) (string, error) {
	if Yield(s) == 0 {
		return "", ErrNoText
	}
	return s, nil
}
