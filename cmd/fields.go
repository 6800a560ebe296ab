package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/residential-checks/internal/arbiter"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Print the active report-field layout as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, err := loadResolver(cfg)
		if err != nil {
			return err
		}
		data, err := arbiter.MarshalFieldSpecs(resolver.Specs())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
