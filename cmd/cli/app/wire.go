//go:build wireinject
// +build wireinject

package app

import (
	"kgen/internal/adapters/command_runner"
	"kgen/internal/adapters/filesystem"
	"kgen/internal/adapters/keyring"
	"kgen/internal/adapters/kube_context"
	"kgen/internal/adapters/kustomize"
	"kgen/internal/adapters/manifest_encoder"
	"kgen/internal/adapters/templater"
	"kgen/internal/core"
	"kgen/internal/core/handler"
	"kgen/internal/core/synth"
	"kgen/internal/ports"

	"github.com/google/wire"
)

var Adapter = wire.NewSet(
	command_runner.ProvideOsCommandRunner,
	wire.Bind(new(ports.CommandRunner), new(*command_runner.OsCommandRunner)),
	kustomize.ProvideKustomizeClient,
	wire.Bind(new(ports.KustomizeClient), new(*kustomize.Client)),
	filesystem.ProvideOsFileSystem,
	wire.Bind(new(ports.FileSystem), new(*filesystem.OsFileSystem)),
	keyring.ProvideZalandoKeyring,
	templater.ProvideTextTemplater,
	kube_context.ProvideKubeConfig,
	wire.Bind(new(ports.KubeContext), new(*kube_context.KubeConfig)),
	manifest_encoder.ProvideManifestEncoder,
	wire.Bind(new(ports.ManifestEncoder), new(*manifest_encoder.Encoder)),
)

// CoreSet provides domain/core dependencies
var CoreSet = wire.NewSet(
	core.ProvideFileSystemConfigRepository,
	wire.Bind(new(core.ConfigRepository), new(*core.FileSystemConfigRepository)),
	core.ProvideChartWrapper,
	core.ProvideManifestWriter,
	synth.ProvideEngine,
)

// CommandHandlerSet combines all sets needed for command handlers
var CommandHandlerSet = wire.NewSet(
	Adapter,
	CoreSet,
)

func InjectGenerateCommandHandler() (handler.GenerateCommandHandler, error) {
	wire.Build(
		CommandHandlerSet,
		handler.ProvideGenerateCommandHandler,
	)
	return handler.GenerateCommandHandler{}, nil
}

func InjectTargetsCommandHandler() (handler.TargetsCommandHandler, error) {
	wire.Build(
		CommandHandlerSet,
		handler.ProvideTargetsCommandHandler,
	)
	return handler.TargetsCommandHandler{}, nil
}

func InjectOrderCommandHandler() (handler.OrderCommandHandler, error) {
	wire.Build(
		CommandHandlerSet,
		handler.ProvideOrderCommandHandler,
	)
	return handler.OrderCommandHandler{}, nil
}

func InjectQueryCommandHandler() (handler.QueryCommandHandler, error) {
	wire.Build(
		CommandHandlerSet,
		handler.ProvideQueryCommandHandler,
	)
	return handler.QueryCommandHandler{}, nil
}

func InjectInitializeCommandHandler() (handler.InitializeCommandHandler, error) {
	wire.Build(
		CommandHandlerSet,
		handler.ProvideInitializeCommandHandler,
	)
	return handler.InitializeCommandHandler{}, nil
}
