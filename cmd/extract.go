package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/residential-checks/internal/model"
)

var extractKind string

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract the fields of a single document and print them as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := model.KindUnknown
		if extractKind != "" {
			k, ok := model.ParseDocumentKind(extractKind)
			if !ok {
				return eris.Errorf("unknown kind %q", extractKind)
			}
			kind = k
		}

		env, err := initPipeline(cfg, envOptions{})
		if err != nil {
			return err
		}

		doc, err := env.Pipeline.ExtractFile(cmd.Context(), args[0], kind)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractKind, "kind", "", "force the document kind instead of classifying the file name")
	rootCmd.AddCommand(extractCmd)
}
