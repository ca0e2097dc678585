package core

import (
	"fmt"
	"path/filepath"

	"kgen/internal/core/domain"
	"kgen/internal/core/resource"
	"kgen/internal/core/synth"
	"kgen/internal/ports"
)

const kustomizeWorkDir = ".kustomize"

// Emission is the rendered output of one run.
type Emission struct {
	Target  string
	Format  string
	Path    string
	Content []byte
}

// ManifestWriter renders a synthesis result, applies post-render patches and
// writes it to the output directory.
type ManifestWriter struct {
	encoder      ports.ManifestEncoder
	kustomize    ports.KustomizeClient
	chartWrapper *ChartWrapper
	fileSystem   ports.FileSystem
}

func ProvideManifestWriter(
	encoder ports.ManifestEncoder,
	kustomize ports.KustomizeClient,
	chartWrapper *ChartWrapper,
	fileSystem ports.FileSystem,
) *ManifestWriter {
	return &ManifestWriter{
		encoder:      encoder,
		kustomize:    kustomize,
		chartWrapper: chartWrapper,
		fileSystem:   fileSystem,
	}
}

// Render encodes the sealed model in format after applying the configured patches.
func (w *ManifestWriter) Render(result *synth.Result, directory, format string) ([]byte, error) {
	docs := result.Model.Documents()

	if len(result.Config.Patches) > 0 {
		stream, err := w.encoder.Encode(docs, "yaml")
		if err != nil {
			return nil, err
		}
		workDir := filepath.Join(directory, kustomizeWorkDir, result.Target.Name)
		patched, err := w.kustomize.Apply(stream, patchesFor(result.Model, result.Config.Patches), workDir)
		if err != nil {
			return nil, fmt.Errorf("failed to apply patches: %w", err)
		}
		if docs, err = w.encoder.DecodeYAML(patched); err != nil {
			return nil, fmt.Errorf("failed to read patched manifests: %w", err)
		}
	}

	return w.encoder.Encode(docs, format)
}

// Write renders result and stores it as <dir>/<target>.yml, <dir>/<target>.json or
// a Helm chart under <dir>/<target>. With dryRun nothing is written.
func (w *ManifestWriter) Write(result *synth.Result, output domain.OutputConfig, dryRun bool) (Emission, error) {
	directory, format := output.Directory, output.Format
	if directory == "" {
		directory = domain.DefaultOutputDir
	}
	if format == "" {
		format = "yaml"
	}

	content, err := w.Render(result, directory, format)
	if err != nil {
		return Emission{}, err
	}
	emission := Emission{
		Target:  result.Target.Name,
		Format:  format,
		Path:    outputPath(directory, result.Target.Name, format),
		Content: content,
	}
	if dryRun {
		return emission, nil
	}

	if format == "helm" {
		if err := w.chartWrapper.Cleanup(directory, result.Target.Name); err != nil {
			return Emission{}, err
		}
		path, err := w.chartWrapper.Generate(ChartConfig{
			Directory:  directory,
			Target:     result.Target.Name,
			Name:       result.Config.Name,
			AppVersion: result.Config.Version,
			Manifests:  content,
		})
		if err != nil {
			return Emission{}, err
		}
		emission.Path = path
		return emission, nil
	}

	if err := w.fileSystem.WriteFile(emission.Path, content, ports.ReadAllWriteOwner); err != nil {
		return Emission{}, fmt.Errorf("failed to write %s: %w", emission.Path, err)
	}
	return emission, nil
}

func outputPath(directory, target, format string) string {
	switch format {
	case "json":
		return filepath.Join(directory, target+".json")
	case "helm":
		return filepath.Join(directory, target)
	default:
		return filepath.Join(directory, target+".yml")
	}
}

// patchesFor converts configured patches, taking each target's apiVersion from the
// model so kinds shared by several groups resolve to the emitted one.
func patchesFor(model *resource.Model, configs []domain.PatchConfig) []ports.Patch {
	patches := make([]ports.Patch, 0, len(configs))
	for _, pc := range configs {
		target := ports.PatchTarget{Kind: pc.Target.Kind, Name: pc.Target.Name}
		if matches := model.Select(resource.Selector{Kind: pc.Target.Kind, Name: pc.Target.Name}); len(matches) > 0 {
			target.APIVersion = matches[0].APIVersion()
		}

		ops := make([]ports.PatchOperation, 0, len(pc.Operations))
		for _, op := range pc.Operations {
			ops = append(ops, ports.PatchOperation{Op: op.Op, Path: op.Path, Value: op.Value})
		}
		patches = append(patches, ports.Patch{Target: target, Operations: ops})
	}
	return patches
}
