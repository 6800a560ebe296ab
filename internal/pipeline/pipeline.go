// Package pipeline turns a project folder into an immutable corpus of
// extracted documents and the arbitrated report values.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/residential-checks/internal/arbiter"
	"github.com/sells-group/residential-checks/internal/classify"
	"github.com/sells-group/residential-checks/internal/extract"
	"github.com/sells-group/residential-checks/internal/metrics"
	"github.com/sells-group/residential-checks/internal/model"
	"github.com/sells-group/residential-checks/internal/ocr"
	"github.com/sells-group/residential-checks/internal/sheet"
)

// ProgressFunc is called after each document with the number done so far.
type ProgressFunc func(done, total int, path string)

// Pipeline runs classification, extraction and arbitration for one project
// at a time. Documents are processed sequentially.
type Pipeline struct {
	text       ocr.Extractor
	classifier *classify.Classifier
	resolver   *arbiter.Resolver
	metrics    *metrics.Metrics
	progress   ProgressFunc
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics records per-document and per-run metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// New creates a Pipeline. A nil classifier uses the default rule table.
func New(text ocr.Extractor, classifier *classify.Classifier, resolver *arbiter.Resolver, opts ...Option) *Pipeline {
	if classifier == nil {
		classifier = classify.New()
	}
	p := &Pipeline{
		text:       text,
		classifier: classifier,
		resolver:   resolver,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Result is the outcome of one project run.
type Result struct {
	RunID     uuid.UUID             `json:"run_id"`
	Project   string                `json:"project"`
	Root      string                `json:"root"`
	Files     []classify.Classified `json:"files"`
	Unknown   []string              `json:"unknown,omitempty"`
	Corpus    model.Corpus          `json:"documents"`
	Decisions arbiter.Result        `json:"decisions"`
	Duration  time.Duration         `json:"-"`
}

// Value returns the decided value for a report key.
func (r *Result) Value(key string) string {
	return r.Decisions.Value(key)
}

// Run processes every document under root. Only setup problems (missing
// root, walk errors, cancellation) are returned as errors; per-document
// failures become error markers in the corpus.
func (p *Pipeline) Run(ctx context.Context, root string) (res *Result, err error) {
	start := time.Now()
	runID := uuid.New()
	log := zap.L().With(zap.String("run_id", runID.String()), zap.String("root", root))
	defer func() { p.metrics.ObserveRun(time.Since(start), err) }()

	info, err := os.Stat(root)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: stat input folder")
	}
	if !info.IsDir() {
		return nil, eris.Errorf("pipeline: %s is not a directory", root)
	}

	paths, err := Discover(root)
	if err != nil {
		return nil, err
	}
	known, unknown := p.classifier.ClassifyAll(paths)
	p.metrics.AddUnknownFiles(len(unknown))
	log.Info("pipeline: starting run",
		zap.Int("files", len(paths)),
		zap.Int("classified", len(known)),
		zap.Int("unknown", len(unknown)),
	)

	corpus := p.ProcessAll(ctx, known)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, eris.Wrap(ctxErr, "pipeline: run cancelled")
	}

	decisions := p.resolver.Resolve(corpus)
	p.metrics.ObserveDecisions(decisions.Decided, decisions.Total)

	res = &Result{
		RunID:     runID,
		Project:   ProjectName(root),
		Root:      root,
		Files:     known,
		Unknown:   unknown,
		Corpus:    corpus,
		Decisions: decisions,
		Duration:  time.Since(start),
	}
	log.Info("pipeline: run complete",
		zap.Int("documents", corpus.Len()),
		zap.Int("failures", len(corpus.Failures())),
		zap.Int("fields_decided", decisions.Decided),
		zap.Int("fields_total", decisions.Total),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// ProcessAll extracts every file in order and folds the results into a
// corpus. It stops early, returning what it has, when ctx is cancelled.
func (p *Pipeline) ProcessAll(ctx context.Context, files []classify.Classified) model.Corpus {
	docs := make([]model.ExtractedDocument, 0, len(files))
	for i, f := range files {
		if ctx.Err() != nil {
			zap.L().Warn("pipeline: cancelled, skipping remaining documents",
				zap.Int("remaining", len(files)-i))
			break
		}
		docs = append(docs, p.Process(ctx, f))
		if p.progress != nil {
			p.progress(i+1, len(files), f.Path)
		}
	}
	return model.NewCorpus(docs...)
}

// Process extracts one classified file. It never fails: errors and panics
// become the document's error marker.
func (p *Pipeline) Process(ctx context.Context, f classify.Classified) (doc model.ExtractedDocument) {
	log := zap.L().With(zap.String("file", f.Path), zap.String("kind", f.Kind.String()))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline: extraction panicked", zap.Any("panic", r))
			doc = model.FailedDocument(f.Kind, f.Path, eris.Errorf("pipeline: panic: %v", r))
		}
		p.metrics.ObserveDocument(f.Kind.String(), time.Since(start), doc.PresentCount(), doc.Failed())
	}()

	fields, err := p.fields(ctx, f)
	if err != nil {
		log.Warn("pipeline: document failed", zap.Error(err))
		return model.FailedDocument(f.Kind, f.Path, err)
	}

	doc = model.ExtractedDocument{Kind: f.Kind, Path: f.Path, Fields: fields}
	log.Debug("pipeline: document extracted",
		zap.Int("fields_present", doc.PresentCount()),
		zap.Int("fields_total", len(fields)),
	)
	return doc
}

// ExtractFile extracts a single file outside a project run. KindUnknown
// classifies the path first.
func (p *Pipeline) ExtractFile(ctx context.Context, path string, kind model.DocumentKind) (model.ExtractedDocument, error) {
	if kind == model.KindUnknown || kind == "" {
		kind = p.classifier.Classify(path)
		if kind == model.KindUnknown {
			return model.ExtractedDocument{}, eris.Errorf("pipeline: cannot classify %s", filepath.Base(path))
		}
	}
	if _, err := os.Stat(path); err != nil {
		return model.ExtractedDocument{}, eris.Wrap(err, "pipeline: stat file")
	}
	return p.Process(ctx, classify.Classified{Path: path, Kind: kind}), nil
}

func (p *Pipeline) fields(ctx context.Context, f classify.Classified) (map[model.FieldName]model.Value, error) {
	if f.Kind.IsSpreadsheet() {
		g, err := sheet.Read(f.Path, sheet.Options{})
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: read calculation sheet")
		}
		return extract.CalculationSheet(g), nil
	}

	catalog, ok := extract.CatalogFor(f.Kind)
	if !ok {
		return nil, eris.Errorf("pipeline: no extractor for kind %q", f.Kind)
	}

	text, err := p.text.ExtractText(ctx, f.Path)
	if err != nil {
		if !eris.Is(err, ocr.ErrNoText) {
			return nil, eris.Wrap(err, "pipeline: extract text")
		}
		zap.L().Warn("pipeline: no text in document", zap.String("file", f.Path))
		text = ""
	}
	return catalog.Extract(text), nil
}
