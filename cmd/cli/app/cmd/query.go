package cmd

import (
	"os"

	"kgen/cmd/cli/app"

	"github.com/spf13/cobra"
)

var queryTarget string

func init() {
	queryCmd.Flags().StringVarP(&queryTarget, "target", "t", "", "Deployment target to synthesize for")
	queryCmd.RegisterFlagCompletionFunc("target", TargetCompletion)
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query <jsonpath>",
	Short: "Evaluates a JSONPath expression against the synthesized resources",
	Example: `  kgen query '$.spec.template.spec.containers[*].image'
  kgen query '$.metadata.labels' --target kind`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, err := app.InjectQueryCommandHandler()
		if err != nil {
			return err
		}

		return handler.Handle(os.Stdout, *configPath, queryTarget, args[0])
	},
}
