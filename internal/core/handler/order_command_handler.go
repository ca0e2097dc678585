package handler

import (
	"fmt"
	"io"

	"kgen/internal/core"
	"kgen/internal/core/synth"

	"github.com/go-logr/logr"
)

type OrderCommandHandler struct {
	configRepository core.ConfigRepository
	engine           *synth.Engine
}

func ProvideOrderCommandHandler(configRepository core.ConfigRepository, engine *synth.Engine) OrderCommandHandler {
	return OrderCommandHandler{
		configRepository: configRepository,
		engine:           engine,
	}
}

// Handle runs a synthesis and prints the order configurators and decorators were
// applied in, with the number of resources each decorator visited.
func (h *OrderCommandHandler) Handle(out io.Writer, configPath, targetName string, logger logr.Logger) error {
	config, err := h.configRepository.LoadConfig(configPath)
	if err != nil {
		return err
	}
	result, err := h.engine.WithLogger(logger).Synthesize(*config, synth.Options{Target: targetName})
	if err != nil {
		return err
	}

	printOrder(out, result)
	return nil
}

func printOrder(out io.Writer, result *synth.Result) {
	fmt.Fprintf(out, "target: %s\n", result.Target.Name)
	fmt.Fprintln(out, "configurators:")
	for i, tag := range result.ConfiguratorOrder {
		fmt.Fprintf(out, "  %d. %s\n", i+1, tag)
	}
	fmt.Fprintln(out, "decorators:")
	for i, step := range result.DecoratorOrder {
		suffix := ""
		if step.Visited == 0 {
			suffix = " (skipped)"
		}
		fmt.Fprintf(out, "  %d. %s %s%s\n", i+1, step.Tag, step.Target, suffix)
	}
}
