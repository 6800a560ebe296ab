package main

import (
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sells-group/residential-checks/internal/arbiter"
	"github.com/sells-group/residential-checks/internal/classify"
	"github.com/sells-group/residential-checks/internal/config"
	"github.com/sells-group/residential-checks/internal/metrics"
	"github.com/sells-group/residential-checks/internal/ocr"
	"github.com/sells-group/residential-checks/internal/pipeline"
	"github.com/sells-group/residential-checks/internal/report"
	"github.com/sells-group/residential-checks/internal/signature"
)

// checksEnv holds the initialized dependencies shared by run and serve.
type checksEnv struct {
	Pipeline  *pipeline.Pipeline
	Assembler *report.Assembler
	Resolver  *arbiter.Resolver
	Metrics   *metrics.Metrics
}

// envOptions tweaks initPipeline for a single command.
type envOptions struct {
	text       ocr.Extractor
	signatures bool
	pipeline   []pipeline.Option
}

// loadResolver builds the arbitrator from the configured layout and floor.
func loadResolver(c *config.Config) (*arbiter.Resolver, error) {
	var (
		specs []arbiter.FieldSpec
		err   error
	)
	if c.Arbiter.FieldsFile != "" {
		specs, err = arbiter.LoadFieldSpecs(c.Arbiter.FieldsFile)
	} else {
		specs, err = arbiter.DefaultFieldSpecs()
	}
	if err != nil {
		return nil, eris.Wrap(err, "load field layout")
	}
	r := arbiter.NewResolver(specs, decimal.NewFromInt(c.Arbiter.EnergySavingsFloor))
	zap.L().Info("arbiter: layout loaded",
		zap.Int("fields", len(r.Specs())),
		zap.Strings("sections", arbiter.Sections(r.Specs())),
		zap.String("energy_savings_floor", r.Floor().String()),
	)
	return r, nil
}

// initPipeline wires the text extractor, classifier, arbitrator, metrics
// and report assembler from c.
func initPipeline(c *config.Config, opts envOptions) (*checksEnv, error) {
	resolver, err := loadResolver(c)
	if err != nil {
		return nil, err
	}

	text := opts.text
	if text == nil {
		text, err = ocr.NewExtractor(c.OCR, nil)
		if err != nil {
			return nil, eris.Wrap(err, "init text extractor")
		}
	}

	m := metrics.New()
	pipeOpts := append([]pipeline.Option{pipeline.WithMetrics(m)}, opts.pipeline...)

	var reportOpts []report.Option
	if opts.signatures && c.Report.Signatures.Enabled {
		reportOpts = append(reportOpts, report.WithSignatures(
			signature.NewFitzCropper(c.Report.Signatures.DPI),
			c.Report.Signatures.Regions,
		))
	}

	return &checksEnv{
		Pipeline:  pipeline.New(text, classify.New(), resolver, pipeOpts...),
		Assembler: report.New(c.Report.SheetName, reportOpts...),
		Resolver:  resolver,
		Metrics:   m,
	}, nil
}
