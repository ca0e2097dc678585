package handler

import (
	"fmt"
	"io"
	"text/tabwriter"

	"kgen/internal/core"
	"kgen/internal/core/synth"
	"kgen/internal/ports"
)

type TargetsCommandHandler struct {
	configRepository core.ConfigRepository
	kubeContext      ports.KubeContext
}

func ProvideTargetsCommandHandler(configRepository core.ConfigRepository, kubeContext ports.KubeContext) TargetsCommandHandler {
	return TargetsCommandHandler{
		configRepository: configRepository,
		kubeContext:      kubeContext,
	}
}

// Handle prints every registered target with its priority and eligibility. The
// target a run would use is marked with '*'. The current kubeconfig context is
// printed first when there is one.
func (h *TargetsCommandHandler) Handle(out io.Writer, configPath, override string) error {
	config, err := h.configRepository.LoadConfig(configPath)
	if err != nil {
		return err
	}
	statuses, err := synth.Targets(*config, override)
	if err != nil {
		return err
	}

	if name, err := h.kubeContext.CurrentContext(); err == nil {
		fmt.Fprintf(out, "Context: %s\n\n", name)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tTARGET\tKIND\tPRIORITY\tELIGIBLE")
	for _, s := range statuses {
		marker := ""
		if s.Selected {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\n", marker, s.Name, s.Kind, s.Priority, s.Eligible)
	}
	return w.Flush()
}
