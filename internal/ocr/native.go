package ocr

import (
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// NativePDF reads the PDF text layer in process with ledongthuc/pdf.
type NativePDF struct {
	maxPages int
}

// NewNativePDF creates a NativePDF extractor. maxPages <= 0 reads every page.
func NewNativePDF(maxPages int) *NativePDF {
	return &NativePDF{maxPages: maxPages}
}

// ExtractText returns the plain text of every page, pages separated by a
// form feed line.
func (n *NativePDF) ExtractText(ctx context.Context, pdfPath string) (text string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = eris.Errorf("ocr: parse PDF %s: %v", pdfPath, r)
		}
	}()

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", eris.Wrapf(err, "ocr: open PDF %s", pdfPath)
	}
	defer f.Close() //nolint:errcheck

	pages := r.NumPage()
	if n.maxPages > 0 && pages > n.maxPages {
		pages = n.maxPages
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "ocr: native extract")
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			zap.L().Debug("ocr: skipping unreadable page",
				zap.String("file", pdfPath), zap.Int("page", i), zap.Error(err))
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(pageBreak)
		}
		sb.WriteString(txt)
	}

	return sb.String(), nil
}
