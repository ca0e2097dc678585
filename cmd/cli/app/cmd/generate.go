package cmd

import (
	"os"

	"kgen/cmd/cli/app"
	"kgen/internal/cli/output"
	"kgen/internal/core/handler"

	"github.com/spf13/cobra"
)

var generateOptions handler.GenerateOptions

func init() {
	flags := generateCmd.Flags()
	flags.StringVarP(&generateOptions.Target, "target", "t", "", "Deployment target to synthesize for")
	flags.BoolVar(&generateOptions.All, "all", false, "Synthesize every eligible target")
	flags.StringVarP(&generateOptions.OutputDir, "output-dir", "o", "", "Directory manifests are written to")
	flags.StringVarP(&generateOptions.Format, "format", "f", "", "Output format: yaml, json or helm")
	flags.BoolVar(&generateOptions.DryRun, "dry-run", false, "Print manifests instead of writing them")
	flags.StringVar(&generateOptions.ImageGroup, "image-group", "", "Image group used when the configuration sets none")
	flags.StringVar(&generateOptions.ImageRegistry, "image-registry", "", "Image registry used when the configuration sets none")
	generateCmd.MarkFlagsMutuallyExclusive("target", "all")
	generateCmd.RegisterFlagCompletionFunc("target", TargetCompletion)
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generates manifests for the selected deployment target",
	Long: `Synthesizes the project configuration into manifests and writes them to the
output directory as <target>.yml, <target>.json or a Helm chart under <target>/.
With --all every eligible target is synthesized in an independent run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, err := app.InjectGenerateCommandHandler()
		if err != nil {
			return err
		}

		opts := generateOptions
		opts.ConfigPath = *configPath
		opts.Logger = output.NewLogger(*verbose)
		return handler.Handle(cmd.Context(), os.Stdout, opts)
	},
}
