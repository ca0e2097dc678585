package cmd

import (
	"kgen/internal/core/target"

	"github.com/spf13/cobra"
)

// TargetCompletion completes --target with the registered target names.
func TargetCompletion(
	cmd *cobra.Command,
	args []string,
	toComplete string,
) ([]cobra.Completion, cobra.ShellCompDirective) {
	var names []cobra.Completion
	for _, entry := range target.Entries() {
		names = append(names, entry.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
