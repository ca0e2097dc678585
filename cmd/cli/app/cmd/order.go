package cmd

import (
	"os"

	"kgen/cmd/cli/app"
	"kgen/internal/cli/output"

	"github.com/spf13/cobra"
)

var orderTarget string

func init() {
	orderCmd.Flags().StringVarP(&orderTarget, "target", "t", "", "Deployment target to synthesize for")
	orderCmd.RegisterFlagCompletionFunc("target", TargetCompletion)
	rootCmd.AddCommand(orderCmd)
}

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Shows the order configurators and decorators are applied in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, err := app.InjectOrderCommandHandler()
		if err != nil {
			return err
		}

		return handler.Handle(os.Stdout, *configPath, orderTarget, output.NewLogger(*verbose))
	},
}
