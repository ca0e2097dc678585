package cmd

import (
	"os"

	"kgen/internal/cli/output"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
)

var rootCmd = &cobra.Command{
	Use:   "kgen",
	Short: "Synthesizes Kubernetes manifests from a project configuration",
	Long: `kgen turns a declarative project configuration into deployment manifests for
Kubernetes, OpenShift, Knative, Minikube and Kind.

Configuration is read from kgen.yaml (or kgen.toml) in the working directory. Run
'kgen initialize' to create a sample configuration file.

Common workflows:
  kgen generate                 Write manifests for the selected target
  kgen generate --all           Write manifests for every eligible target
  kgen targets                  Show which target a run would use
  kgen order                    Show the order decorators are applied in
  kgen query '$.spec.replicas'  Query the synthesized resources`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	configPath = rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the project configuration (default kgen.yaml)")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Trace synthesis phases to stderr")
	if err := rootCmd.Execute(); err != nil {
		output.PrintError(err)
		os.Exit(1)
	}
}
