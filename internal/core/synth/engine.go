// Package synth runs a synthesis: it selects the deployment target, configures the
// project, creates the baseline resources and applies the planned decorators in
// resolved order.
package synth

import (
	"slices"

	"kgen/internal/core/configurator"
	"kgen/internal/core/decorator"
	"kgen/internal/core/domain"
	"kgen/internal/core/ordering"
	"kgen/internal/core/resource"
	"kgen/internal/core/target"
	"kgen/internal/ports"

	"github.com/go-logr/logr"
)

// Options adjust a single run.
type Options struct {
	// Target overrides the configured deployTarget.
	Target string
	// ImageGroup and ImageRegistry are used when the configuration leaves them empty.
	ImageGroup    string
	ImageRegistry string

	ExtraConfigurators []configurator.Configurator
	ExtraDecorators    []decorator.Decorator
}

// Step records one applied decorator.
type Step struct {
	Tag     string
	Target  string
	Visited int
}

// Result is the outcome of a successful run. Model is sealed.
type Result struct {
	Target            target.Entry
	Config            domain.Config
	Model             *resource.Model
	Capabilities      Capabilities
	ConfiguratorOrder []string
	DecoratorOrder    []Step
	// Skipped lists the decorators whose target was absent.
	Skipped []Step
}

type Engine struct {
	logger      logr.Logger
	templater   ports.Templater
	keyring     ports.Keyring
	kubeContext ports.KubeContext
}

func ProvideEngine(templater ports.Templater, keyring ports.Keyring, kubeContext ports.KubeContext) *Engine {
	return &Engine{
		logger:      logr.Discard(),
		templater:   templater,
		keyring:     keyring,
		kubeContext: kubeContext,
	}
}

// WithLogger returns a copy of e that traces its phases to logger.
func (e *Engine) WithLogger(logger logr.Logger) *Engine {
	out := *e
	out.logger = logger
	return &out
}

func (e *Engine) configurators(entry target.Entry, opts Options) []configurator.Configurator {
	return []configurator.Configurator{
		configurator.NewResolveSecretValuesConfigurator(e.keyring),
		configurator.NewApplyNamespaceFromContextConfigurator(e.kubeContext),
		configurator.ApplyImageGroupConfigurator{Group: opts.ImageGroup},
		configurator.ApplyImageRegistryConfigurator{Registry: opts.ImageRegistry},
		configurator.ApplyS2IImageConfigurator{Target: entry.Name},
		configurator.NewApplyImageNameConfigurator(e.templater),
	}
}

// Synthesize builds the resource model for cfg. cfg itself is never modified.
// Any failure aborts the run and no partial result is returned.
func (e *Engine) Synthesize(cfg domain.Config, opts Options) (*Result, error) {
	final := cfg.Clone()
	final.ApplyDefaults()
	if err := final.Validate(); err != nil {
		return nil, err
	}

	entry, err := target.Selection(final, opts.Target)
	if err != nil {
		return nil, err
	}
	log := e.logger.WithValues("project", final.Name, "target", entry.Name)
	log.V(1).Info("target selected", "kind", entry.Kind, "priority", entry.Priority)

	configurators, err := ordering.Resolve(append(e.configurators(entry, opts), opts.ExtraConfigurators...))
	if err != nil {
		return nil, err
	}
	configuratorOrder := ordering.Tags(configurators)
	log.V(1).Info("configurators resolved", "order", configuratorOrder)
	for _, c := range configurators {
		if err := c.Configure(&final); err != nil {
			return nil, err
		}
	}
	log.V(1).Info("image resolved", "reference", final.Image.Reference)

	planned, err := Plan(final, entry)
	if err != nil {
		return nil, err
	}

	model := resource.NewModel()
	if err := target.Baseline(model, final, entry); err != nil {
		return nil, err
	}
	log.V(1).Info("baseline created", "resources", model.Len())

	decorators, err := ordering.Resolve(append(planned, opts.ExtraDecorators...))
	if err != nil {
		return nil, err
	}
	log.V(1).Info("decorators resolved", "count", len(decorators))

	result := &Result{
		Target:            entry,
		ConfiguratorOrder: configuratorOrder,
	}
	for _, d := range decorators {
		visited, err := decorator.Apply(model, d)
		if err != nil {
			return nil, err
		}
		step := Step{Tag: d.Tag(), Target: d.Target().String(), Visited: visited}
		result.DecoratorOrder = append(result.DecoratorOrder, step)
		if visited == 0 {
			log.V(1).Info("decorator skipped", "decorator", step.Tag, "selector", step.Target)
			result.Skipped = append(result.Skipped, step)
			continue
		}
		log.V(2).Info("decorator applied", "decorator", step.Tag, "selector", step.Target, "visited", visited)
	}

	model.Seal()
	for _, c := range entry.Capabilities {
		result.Capabilities.Set(c)
	}
	result.Config = final
	result.Model = model
	log.V(1).Info("synthesis complete", "resources", model.Len(), "skipped", len(result.Skipped))
	return result, nil
}

// TargetStatus describes a registered target relative to one configuration.
type TargetStatus struct {
	target.Entry
	Eligible bool
	Selected bool
}

// Targets lists every registered target with its eligibility under cfg and marks
// the one a run with override would select.
func Targets(cfg domain.Config, override string) ([]TargetStatus, error) {
	c := cfg.Clone()
	c.ApplyDefaults()
	selected, err := target.Selection(c, override)
	if err != nil {
		return nil, err
	}
	var out []TargetStatus
	for _, entry := range target.Entries() {
		out = append(out, TargetStatus{
			Entry:    entry,
			Eligible: slices.Contains(c.DeploymentTargets, entry.Name),
			Selected: entry.Name == selected.Name,
		})
	}
	return out, nil
}
