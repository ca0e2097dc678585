package handler

import (
	"testing"

	"kgen/internal/adapters/manifest_encoder"
	"kgen/internal/adapters/templater"
	"kgen/internal/core"
	"kgen/internal/core/domain"
	"kgen/internal/core/synth"
	"kgen/internal/testutil"
)

const configPath = "kgen.yaml"

type fixture struct {
	configRepository *testutil.MockConfigRepository
	kustomize        *testutil.MockKustomizeClient
	fs               *testutil.TestFileSystem
	engine           *synth.Engine
	writer           *core.ManifestWriter
}

func newFixture(t *testing.T, config domain.Config) *fixture {
	config.ApplyDefaults()
	f := &fixture{
		configRepository: new(testutil.MockConfigRepository),
		kustomize:        new(testutil.MockKustomizeClient),
		fs:               testutil.NewTestFileSystem(t),
		engine:           synth.ProvideEngine(templater.ProvideTextTemplater(), new(testutil.MockKeyring), new(testutil.MockKubeContext)),
	}
	f.writer = core.ProvideManifestWriter(manifest_encoder.ProvideManifestEncoder(), f.kustomize, core.ProvideChartWrapper(f.fs), f.fs)
	f.configRepository.On("LoadConfig", configPath).Return(&config, nil)
	return f
}

func projectConfig(targets ...string) domain.Config {
	return domain.Config{
		Name:              "web",
		Version:           "1.0",
		DeploymentTargets: targets,
		Ports: map[string]domain.PortConfig{
			"http": {ContainerPort: 8080},
		},
	}
}
