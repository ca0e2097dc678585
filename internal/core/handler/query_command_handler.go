package handler

import (
	"fmt"
	"io"

	"kgen/internal/core"
	"kgen/internal/core/synth"

	"github.com/ohler55/ojg/oj"
)

type QueryCommandHandler struct {
	configRepository core.ConfigRepository
	engine           *synth.Engine
}

func ProvideQueryCommandHandler(configRepository core.ConfigRepository, engine *synth.Engine) QueryCommandHandler {
	return QueryCommandHandler{
		configRepository: configRepository,
		engine:           engine,
	}
}

// Handle synthesizes the selected target and prints every match of the JSONPath
// expression, one line per match, prefixed with the resource it came from.
func (h *QueryCommandHandler) Handle(out io.Writer, configPath, targetName, expression string) error {
	config, err := h.configRepository.LoadConfig(configPath)
	if err != nil {
		return err
	}
	result, err := h.engine.Synthesize(*config, synth.Options{Target: targetName})
	if err != nil {
		return err
	}

	for _, r := range result.Model.All() {
		matches, err := r.Query(expression)
		if err != nil {
			return err
		}
		for _, match := range matches {
			fmt.Fprintf(out, "%s: %s\n", r, oj.JSON(match, &oj.Options{Sort: true}))
		}
	}
	return nil
}
