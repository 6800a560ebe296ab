package ocr

import (
	"context"
	"strconv"

	"github.com/rotisserie/eris"
)

// PdfToText extracts the text layer of PDFs using the pdftotext CLI tool.
type PdfToText struct {
	binPath  string
	runner   Runner
	maxPages int
}

// NewPdfToText creates a PdfToText extractor. If binPath is empty, "pdftotext" is used.
func NewPdfToText(binPath string, runner Runner, maxPages int) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PdfToText{binPath: binPath, runner: runner, maxPages: maxPages}
}

// ExtractText runs pdftotext -layout on the given PDF and returns stdout.
func (p *PdfToText) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	args := []string{"-layout", "-enc", "UTF-8"}
	if p.maxPages > 0 {
		args = append(args, "-l", strconv.Itoa(p.maxPages))
	}
	args = append(args, pdfPath, "-")

	out, stderr, err := p.runner.Run(ctx, p.binPath, args...)
	if err != nil {
		return "", eris.Wrapf(err, "ocr: pdftotext failed for %s: %s", pdfPath, string(stderr))
	}

	return string(out), nil
}
