package cmd

import (
	"os"

	"kgen/cmd/cli/app"

	"github.com/spf13/cobra"
)

var targetsOverride string

func init() {
	targetsCmd.Flags().StringVarP(&targetsOverride, "target", "t", "", "Deployment target to mark as selected")
	rootCmd.AddCommand(targetsCmd)
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Lists the deployment targets",
	Long:  `Lists every registered deployment target with its priority and whether the configuration makes it eligible. The target a run would use is marked with '*'.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, err := app.InjectTargetsCommandHandler()
		if err != nil {
			return err
		}

		return handler.Handle(os.Stdout, *configPath, targetsOverride)
	},
}
