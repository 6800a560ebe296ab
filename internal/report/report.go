// Package report lays the extracted and decided values out in the "Checks"
// workbook.
package report

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sells-group/residential-checks/internal/arbiter"
	"github.com/sells-group/residential-checks/internal/config"
	"github.com/sells-group/residential-checks/internal/model"
	"github.com/sells-group/residential-checks/internal/signature"
)

// DefaultSheetName is used when no sheet name is configured.
const DefaultSheetName = "Checks"

// Layout of the sheet. Rows and columns are one based.
const (
	fileRow      = 2
	headerRow    = 3
	firstDataRow = 4
	infoCol      = 2 // B
	firstKindCol = 3 // C
)

// signatureRowKey is the layout row that receives the signature crops.
const signatureRowKey = "homeowner_signatures"

const signatureRowHeight = 90

// kindHeaders are the legacy column titles, one per document kind.
var kindHeaders = map[model.DocumentKind]string{
	model.KindContract:             "E1-1-1 CONTRATO CESION AHORROS",
	model.KindDatasheet:            "E1-3-1 FICHA RES020 010",
	model.KindSelfDeclaration:      "E1-3-2 DECLARACION RESPONSABLE",
	model.KindInvoice:              "E1-3-3 FACTURA",
	model.KindPhotoReport:          "E1-3-4 INFORME FOTOGRAFICO",
	model.KindInstallerCertificate: "E1-3-5 CERTIFICADO INSTALADOR",
	model.KindEnergyEfficiencyCert: "E1-3-6-1\nCEE FINAL",
	model.KindRegistry:             "E1-3-6-2 REGISTRO CEE",
	model.KindNationalID:           "E1-4-1 \nDNI",
	model.KindCalculationSheet:     "E1-4-2 CALCULO UI RTOTAL",
}

// KindHeader returns the column title for kind.
func KindHeader(kind model.DocumentKind) string {
	return kindHeaders[kind]
}

// KindColumn returns the one-based column of kind, or 0 for KindUnknown.
func KindColumn(kind model.DocumentKind) int {
	for i, k := range model.AllDocumentKinds() {
		if k == kind {
			return firstKindCol + i
		}
	}
	return 0
}

// DecidedColumn is the one-based column of the decided values.
func DecidedColumn() int {
	return firstKindCol + len(model.AllDocumentKinds())
}

// Assembler writes the report workbook.
type Assembler struct {
	sheetName string
	cropper   signature.Cropper
	regions   map[model.DocumentKind]signature.Region
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithSignatures embeds crops of the configured regions. Region keys are
// document kinds; unknown keys are ignored.
func WithSignatures(c signature.Cropper, regions map[string]config.RegionConfig) Option {
	return func(a *Assembler) {
		a.cropper = c
		a.regions = make(map[model.DocumentKind]signature.Region, len(regions))
		for name, r := range regions {
			kind, ok := model.ParseDocumentKind(name)
			if !ok {
				zap.L().Warn("report: ignoring signature region for unknown kind", zap.String("kind", name))
				continue
			}
			a.regions[kind] = signature.RegionFrom(r)
		}
	}
}

// New creates an Assembler writing to sheetName (DefaultSheetName when
// empty).
func New(sheetName string, opts ...Option) *Assembler {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	a := &Assembler{sheetName: sheetName}
	for _, o := range opts {
		o(a)
	}
	return a
}

// DefaultOutputPath returns {outDir}/{project}_Checks.xlsx.
func DefaultOutputPath(outDir, project string) string {
	return filepath.Join(outDir, project+"_Checks.xlsx")
}

// WriteFile writes the workbook to path, creating parent directories.
func (a *Assembler) WriteFile(ctx context.Context, path string, c model.Corpus, res arbiter.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "report: create output directory")
	}
	out, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "report: create output file")
	}
	if err := a.Write(ctx, out, c, res); err != nil {
		out.Close() //nolint:errcheck
		return err
	}
	if err := out.Close(); err != nil {
		return eris.Wrap(err, "report: close output file")
	}
	zap.L().Info("report: written", zap.String("path", path))
	return nil
}

// Write renders the workbook to w.
func (a *Assembler) Write(ctx context.Context, w io.Writer, c model.Corpus, res arbiter.Result) error {
	f, err := a.Build(ctx, c, res)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "report: write workbook")
	}
	return nil
}

// Build lays out the workbook in memory.
func (a *Assembler) Build(ctx context.Context, c model.Corpus, res arbiter.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", a.sheetName); err != nil {
		f.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "report: name sheet")
	}

	s := &sheetWriter{f: f, sheet: a.sheetName}
	if err := s.init(); err != nil {
		f.Close() //nolint:errcheck
		return nil, err
	}

	s.headers()
	s.files(c)
	signatureRow := s.rows(res)

	if a.cropper != nil && signatureRow > 0 {
		a.embedSignatures(ctx, s, c, signatureRow)
	}

	if s.err != nil {
		f.Close() //nolint:errcheck
		return nil, eris.Wrap(s.err, "report: lay out sheet")
	}
	return f, nil
}

func (a *Assembler) embedSignatures(ctx context.Context, s *sheetWriter, c model.Corpus, row int) {
	for _, kind := range model.AllDocumentKinds() {
		region, ok := a.regions[kind]
		if !ok {
			continue
		}
		doc, ok := c.Get(kind)
		if !ok || doc.Failed() || !strings.EqualFold(filepath.Ext(doc.Path), ".pdf") {
			continue
		}

		log := zap.L().With(zap.String("kind", kind.String()), zap.String("file", doc.Path))
		png, err := a.cropper.Crop(ctx, doc.Path, region)
		if err != nil {
			log.Warn("report: signature crop failed", zap.Error(err))
			continue
		}

		cell := cellName(KindColumn(kind), row)
		err = s.f.AddPictureFromBytes(s.sheet, cell, &excelize.Picture{
			Extension: ".png",
			File:      png,
			Format: &excelize.GraphicOptions{
				AltText:         "Signature " + kind.String(),
				AutoFit:         true,
				LockAspectRatio: true,
			},
		})
		if err != nil {
			log.Warn("report: embed signature failed", zap.Error(err))
			continue
		}
		if err := s.f.SetRowHeight(s.sheet, row, signatureRowHeight); err != nil {
			log.Warn("report: set signature row height", zap.Error(err))
		}
	}
}

// sheetWriter accumulates the first layout error so the layout code reads
// straight through.
type sheetWriter struct {
	f       *excelize.File
	sheet   string
	header  int
	section int
	err     error
}

func (s *sheetWriter) init() error {
	var err error
	s.header, err = s.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
	if err != nil {
		return eris.Wrap(err, "report: header style")
	}
	s.section, err = s.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return eris.Wrap(err, "report: section style")
	}
	return nil
}

func (s *sheetWriter) set(col, row int, v string) {
	if s.err != nil {
		return
	}
	s.err = s.f.SetCellStr(s.sheet, cellName(col, row), v)
}

func (s *sheetWriter) style(fromCol, toCol, row, style int) {
	if s.err != nil {
		return
	}
	s.err = s.f.SetCellStyle(s.sheet, cellName(fromCol, row), cellName(toCol, row), style)
}

func (s *sheetWriter) width(from, to string, w float64) {
	if s.err != nil {
		return
	}
	s.err = s.f.SetColWidth(s.sheet, from, to, w)
}

func (s *sheetWriter) headers() {
	last := DecidedColumn()
	s.set(infoCol, headerRow, "Info")
	for _, kind := range model.AllDocumentKinds() {
		s.set(KindColumn(kind), headerRow, KindHeader(kind))
	}
	s.set(last, headerRow, "Decided")
	s.style(infoCol, last, headerRow, s.header)

	s.width("A", "A", 5)
	s.width("B", "B", 30)
	s.width("C", columnName(last), 35)
}

// files records which file fed each column, or its error marker.
func (s *sheetWriter) files(c model.Corpus) {
	s.set(infoCol, fileRow, "File")
	for _, doc := range c.Documents() {
		v := filepath.Base(doc.Path)
		if doc.Failed() {
			v = "ERROR: " + doc.Err
		}
		s.set(KindColumn(doc.Kind), fileRow, v)
	}
}

// rows writes one row per decision and returns the signature row, or 0.
func (s *sheetWriter) rows(res arbiter.Result) int {
	row := firstDataRow
	section := ""
	signatureRow := 0
	for _, d := range res.Decisions {
		if d.Section != section {
			section = d.Section
			s.set(1, row, section)
			s.style(1, 1, row, s.section)
		}
		if d.Key == signatureRowKey {
			signatureRow = row
		}

		s.set(infoCol, row, d.Label)
		written := make(map[model.DocumentKind]bool)
		for _, at := range d.Attempts {
			v, ok := at.Value.Get()
			if !ok || written[at.Source] {
				continue
			}
			col := KindColumn(at.Source)
			if col == 0 {
				continue
			}
			s.set(col, row, v)
			written[at.Source] = true
		}
		s.set(DecidedColumn(), row, d.Value)
		row++
	}
	return signatureRow
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func columnName(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}
