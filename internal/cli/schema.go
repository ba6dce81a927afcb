package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roboco-io/docxinspect/internal/report"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the structured table analysis",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), string(report.TableAnalysisSchema))
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
