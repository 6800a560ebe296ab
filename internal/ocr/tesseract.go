package ocr

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/residential-checks/internal/config"
)

const pageBreak = "\n\f\n"

// Tesseract OCRs images directly and PDFs after rasterising them with
// pdftoppm.
type Tesseract struct {
	runner      Runner
	pdftoppm    string
	tesseract   string
	lang        string
	tessdataDir string
	dpi         int
	maxPages    int
}

// NewTesseract builds a Tesseract from the OCR config, filling defaults for
// empty values.
func NewTesseract(cfg config.OCRConfig, runner Runner) *Tesseract {
	t := &Tesseract{
		runner:      runner,
		pdftoppm:    cfg.PdfToPPMPath,
		tesseract:   cfg.TesseractPath,
		lang:        cfg.TesseractLang,
		tessdataDir: cfg.TessdataDir,
		dpi:         cfg.DPI,
		maxPages:    cfg.MaxPages,
	}
	if t.runner == nil {
		t.runner = ExecRunner{}
	}
	if t.pdftoppm == "" {
		t.pdftoppm = "pdftoppm"
	}
	if t.tesseract == "" {
		t.tesseract = "tesseract"
	}
	if t.lang == "" {
		t.lang = "spa"
	}
	if t.dpi <= 0 {
		t.dpi = 300
	}
	return t
}

// OCRImage runs tesseract on one image and returns stdout.
func (t *Tesseract) OCRImage(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", t.lang}
	if t.tessdataDir != "" {
		args = append(args, "--tessdata-dir", t.tessdataDir)
	}

	out, stderr, err := t.runner.Run(ctx, t.tesseract, args...)
	if err != nil {
		return "", eris.Wrapf(err, "ocr: tesseract failed for %s: %s", path, string(stderr))
	}
	return string(out), nil
}

// OCRPDF rasterises every page into a temp dir and OCRs them in order.
// Pages that fail are skipped; it errors only when no page succeeds.
func (t *Tesseract) OCRPDF(ctx context.Context, path string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "checks-ocr-*")
	if err != nil {
		return "", eris.Wrap(err, "ocr: create temp dir")
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			zap.L().Warn("ocr: remove temp dir", zap.String("dir", tmpDir), zap.Error(err))
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", strconv.Itoa(t.dpi), "-png"}
	if t.maxPages > 0 {
		args = append(args, "-l", strconv.Itoa(t.maxPages))
	}
	args = append(args, path, prefix)

	if _, stderr, err := t.runner.Run(ctx, t.pdftoppm, args...); err != nil {
		return "", eris.Wrapf(err, "ocr: pdftoppm failed for %s: %s", path, string(stderr))
	}

	// pdftoppm zero-pads page numbers to a common width, so a lexical sort
	// keeps page order.
	images, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(images)
	if t.maxPages > 0 && len(images) > t.maxPages {
		images = images[:t.maxPages]
	}
	if len(images) == 0 {
		return "", eris.Errorf("ocr: pdftoppm rendered no pages for %s", path)
	}

	var sb strings.Builder
	var ok int
	for _, img := range images {
		txt, err := t.OCRImage(ctx, img)
		if err != nil {
			zap.L().Warn("ocr: page OCR failed", zap.String("file", path),
				zap.String("page", filepath.Base(img)), zap.Error(err))
			continue
		}
		ok++
		if sb.Len() > 0 {
			sb.WriteString(pageBreak)
		}
		sb.WriteString(txt)
	}
	if ok == 0 {
		return "", eris.Errorf("ocr: every page failed OCR for %s", path)
	}

	return sb.String(), nil
}
