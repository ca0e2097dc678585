package handler

import (
	"context"
	"fmt"
	"io"
	"slices"

	"kgen/internal/cli/output"
	"kgen/internal/core"
	"kgen/internal/core/domain"
	"kgen/internal/core/synth"
	"kgen/internal/core/target"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// GenerateOptions are the flags of 'kgen generate'.
type GenerateOptions struct {
	ConfigPath    string
	Target        string
	All           bool
	OutputDir     string
	Format        string
	DryRun        bool
	ImageGroup    string
	ImageRegistry string
	Logger        logr.Logger
}

type GenerateCommandHandler struct {
	configRepository core.ConfigRepository
	engine           *synth.Engine
	manifestWriter   *core.ManifestWriter
}

func ProvideGenerateCommandHandler(
	configRepository core.ConfigRepository,
	engine *synth.Engine,
	manifestWriter *core.ManifestWriter,
) GenerateCommandHandler {
	return GenerateCommandHandler{
		configRepository: configRepository,
		engine:           engine,
		manifestWriter:   manifestWriter,
	}
}

// Handle runs one synthesis for the selected target, or with All one independent
// run per eligible target. Dry runs print the manifests to out.
func (h *GenerateCommandHandler) Handle(ctx context.Context, out io.Writer, opts GenerateOptions) error {
	config, err := h.configRepository.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	targets := []string{opts.Target}
	if opts.All {
		targets = eligibleTargets(*config)
		if len(targets) == 0 {
			return fmt.Errorf("no registered target is listed in deploymentTargets")
		}
	}

	outputConfig := config.Output
	if opts.OutputDir != "" {
		outputConfig.Directory = opts.OutputDir
	}
	if opts.Format != "" {
		outputConfig.Format = opts.Format
	}

	engine := h.engine.WithLogger(opts.Logger)
	emissions := make([]core.Emission, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := engine.Synthesize(*config, synth.Options{
				Target:        name,
				ImageGroup:    opts.ImageGroup,
				ImageRegistry: opts.ImageRegistry,
			})
			if err != nil {
				if name == "" {
					return err
				}
				return fmt.Errorf("target %s: %w", name, err)
			}
			emission, err := h.manifestWriter.Write(result, outputConfig, opts.DryRun)
			if err != nil {
				return fmt.Errorf("target %s: %w", result.Target.Name, err)
			}
			emissions[i] = emission
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, emission := range emissions {
		if opts.DryRun {
			fmt.Fprintf(out, "# %s\n", emission.Target)
			if _, err := out.Write(emission.Content); err != nil {
				return err
			}
			continue
		}
		output.PrintSuccess(fmt.Sprintf("Generated %s manifests: %s", emission.Target, emission.Path))
	}
	return nil
}

// eligibleTargets returns the registered targets listed in deploymentTargets, in
// registration order.
func eligibleTargets(config domain.Config) []string {
	var names []string
	for _, entry := range target.Entries() {
		if slices.Contains(config.DeploymentTargets, entry.Name) {
			names = append(names, entry.Name)
		}
	}
	return names
}
