package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/sells-group/residential-checks/internal/classify"
	"github.com/sells-group/residential-checks/internal/pipeline"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <input_folder>",
	Short: "List the document kind of every file in a project folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := pipeline.Discover(args[0])
		if err != nil {
			return err
		}
		known, unknown := classify.New().ClassifyAll(paths)

		out := struct {
			Files   []classify.Classified `json:"files"`
			Unknown []string              `json:"unknown"`
		}{Files: known, Unknown: unknown}
		if out.Files == nil {
			out.Files = []classify.Classified{}
		}
		if out.Unknown == nil {
			out.Unknown = []string{}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
