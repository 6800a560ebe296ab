package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/residential-checks/internal/model"
	"github.com/sells-group/residential-checks/internal/pipeline"
	"github.com/sells-group/residential-checks/internal/report"
)

var (
	runProgress     bool
	runNoSignatures bool
)

var runCmd = &cobra.Command{
	Use:   "run <input_folder> [output_path]",
	Short: "Build the Checks workbook for one project folder",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("run"); err != nil {
			return err
		}

		opts := envOptions{signatures: !runNoSignatures}
		var bar *progressbar.ProgressBar
		if runProgress {
			opts.pipeline = append(opts.pipeline, pipeline.WithProgress(func(done, total int, path string) {
				if bar == nil {
					bar = newProgressBar(cmd.ErrOrStderr(), total)
				}
				bar.Describe(filepath.Base(path))
				_ = bar.Set(done)
			}))
		}

		env, err := initPipeline(cfg, opts)
		if err != nil {
			return err
		}

		root := args[0]
		res, err := env.Pipeline.Run(ctx, root)
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			return eris.Wrap(err, "run pipeline")
		}

		output := report.DefaultOutputPath(cfg.Report.OutputDir, res.Project)
		if len(args) == 2 {
			output = args[1]
		}
		if err := env.Assembler.WriteFile(ctx, output, res.Corpus, res.Decisions); err != nil {
			return eris.Wrap(err, "write report")
		}

		zap.L().Info("run complete",
			zap.String("project", res.Project),
			zap.String("output", output),
			zap.Int("fields_decided", res.Decisions.Decided),
		)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summarize(res, output))
	},
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
	)
}

// failure describes a document that could not be parsed.
type failure struct {
	Kind  model.DocumentKind `json:"kind"`
	Path  string             `json:"path"`
	Error string             `json:"error"`
}

// runSummary is printed to stdout after a run.
type runSummary struct {
	RunID         string    `json:"run_id"`
	Project       string    `json:"project"`
	Output        string    `json:"output"`
	Documents     int       `json:"documents"`
	Failures      []failure `json:"failures,omitempty"`
	Unknown       []string  `json:"unknown,omitempty"`
	FieldsDecided int       `json:"fields_decided"`
	FieldsTotal   int       `json:"fields_total"`
	Homeowner     string    `json:"homeowner"`
	EnergySavings string    `json:"energy_savings"`
	DurationMS    int64     `json:"duration_ms"`
}

func summarize(res *pipeline.Result, output string) runSummary {
	s := runSummary{
		RunID:         res.RunID.String(),
		Project:       res.Project,
		Output:        output,
		Documents:     res.Corpus.Len(),
		Unknown:       res.Unknown,
		FieldsDecided: res.Decisions.Decided,
		FieldsTotal:   res.Decisions.Total,
		Homeowner:     res.Value("homeowner_name"),
		EnergySavings: res.Value("energy_savings"),
		DurationMS:    res.Duration.Milliseconds(),
	}
	for _, d := range res.Corpus.Failures() {
		s.Failures = append(s.Failures, failure{Kind: d.Kind, Path: d.Path, Error: d.Err})
	}
	return s
}

func init() {
	runCmd.Flags().BoolVar(&runProgress, "progress", false, "show a progress bar on stderr")
	runCmd.Flags().BoolVar(&runNoSignatures, "no-signatures", false, "skip signature crops in the report")
	rootCmd.AddCommand(runCmd)
}
