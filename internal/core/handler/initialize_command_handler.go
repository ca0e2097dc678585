package handler

import (
	"fmt"

	"kgen/internal/cli/output"
	"kgen/internal/core"
)

type InitializeCommandHandler struct {
	configRepository core.ConfigRepository
}

func ProvideInitializeCommandHandler(
	configRepository core.ConfigRepository,
) InitializeCommandHandler {
	return InitializeCommandHandler{
		configRepository: configRepository,
	}
}

func (h *InitializeCommandHandler) Handle(configPath string) error {
	if configPath == "" {
		configPath = core.DefaultConfigPath
	}
	if err := h.configRepository.InitConfig(configPath); err != nil {
		return err
	}
	output.PrintSuccess(fmt.Sprintf("Created %s", configPath))
	return nil
}
