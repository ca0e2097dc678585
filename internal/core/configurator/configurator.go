// Package configurator holds the operations that finalise the project
// configuration before any resource is created.
package configurator

import (
	"fmt"
	"strings"

	"kgen/internal/core/domain"
	"kgen/internal/core/ordering"
	"kgen/internal/ports"
)

const (
	ApplyImageGroupTag           = "ApplyImageGroupConfigurator"
	ApplyImageRegistryTag        = "ApplyImageRegistryConfigurator"
	ApplyS2IImageTag             = "ApplyS2IImageConfigurator"
	ApplyImageNameTag            = "ApplyImageNameConfigurator"
	ApplyNamespaceFromContextTag = "ApplyNamespaceFromContextConfigurator"
	ResolveSecretValuesTag       = "ResolveSecretValuesConfigurator"
)

// OpenShiftInternalRegistry is the in-cluster registry S2I builds push to.
const OpenShiftInternalRegistry = "image-registry.openshift-image-registry.svc:5000"

// Configurator mutates the configuration record. It runs once per synthesis,
// in the order resolved from its ordering metadata.
type Configurator interface {
	ordering.Operation
	Configure(cfg *domain.Config) error
}

// ApplyImageGroupConfigurator sets the image group when the project leaves it empty.
type ApplyImageGroupConfigurator struct {
	Group string
}

func (c ApplyImageGroupConfigurator) Tag() string                 { return ApplyImageGroupTag }
func (c ApplyImageGroupConfigurator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (c ApplyImageGroupConfigurator) Configure(cfg *domain.Config) error {
	if cfg.Image.Group == "" && c.Group != "" {
		cfg.Image.Group = strings.ToLower(c.Group)
	}
	return nil
}

// ApplyImageRegistryConfigurator sets the image registry when the project leaves
// it empty and strips any URL scheme or trailing slash from the result.
type ApplyImageRegistryConfigurator struct {
	Registry string
}

func (c ApplyImageRegistryConfigurator) Tag() string                 { return ApplyImageRegistryTag }
func (c ApplyImageRegistryConfigurator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (c ApplyImageRegistryConfigurator) Configure(cfg *domain.Config) error {
	if cfg.Image.Registry == "" {
		cfg.Image.Registry = c.Registry
	}
	registry := cfg.Image.Registry
	registry = strings.TrimPrefix(registry, "https://")
	registry = strings.TrimPrefix(registry, "http://")
	cfg.Image.Registry = strings.TrimSuffix(registry, "/")
	return nil
}

// ApplyS2IImageConfigurator points the image at the OpenShift internal registry
// for source-to-image builds. The group becomes the namespace, or the project
// name when no namespace is set.
type ApplyS2IImageConfigurator struct {
	Target string
}

func (c ApplyS2IImageConfigurator) Tag() string { return ApplyS2IImageTag }

func (c ApplyS2IImageConfigurator) Ordering() ordering.Ordering {
	return ordering.Ordering{
		Supersedes: []string{ApplyImageRegistryTag, ApplyImageGroupTag},
	}
}

func (c ApplyS2IImageConfigurator) Configure(cfg *domain.Config) error {
	if c.Target != "openshift" || !cfg.Build.S2I {
		return nil
	}
	cfg.Image.Registry = OpenShiftInternalRegistry
	if cfg.Namespace != "" {
		cfg.Image.Group = cfg.Namespace
	} else {
		cfg.Image.Group = cfg.Name
	}
	return nil
}

// ApplyImageNameConfigurator renders image.format into the final image reference.
type ApplyImageNameConfigurator struct {
	templater ports.Templater
}

func NewApplyImageNameConfigurator(templater ports.Templater) ApplyImageNameConfigurator {
	return ApplyImageNameConfigurator{templater: templater}
}

func (c ApplyImageNameConfigurator) Tag() string { return ApplyImageNameTag }

func (c ApplyImageNameConfigurator) Ordering() ordering.Ordering {
	return ordering.Ordering{
		After: []string{ApplyImageGroupTag, ApplyImageRegistryTag, ApplyS2IImageTag},
	}
}

func (c ApplyImageNameConfigurator) Configure(cfg *domain.Config) error {
	format := cfg.Image.Format
	if format == "" {
		format = domain.DefaultImageFormat
	}
	name := cfg.Image.Name
	if name == "" {
		name = cfg.Name
	}
	tag := cfg.Image.Tag
	if tag == "" {
		tag = domain.DefaultVersion
	}
	values := map[string]interface{}{
		"Registry": cfg.Image.Registry,
		"Group":    cfg.Image.Group,
		"Name":     name,
		"Tag":      tag,
	}
	reference, err := c.templater.Render(format, "image", values)
	if err != nil {
		return domain.NewConfigurationError("image.format", "%v", err)
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return domain.NewConfigurationError("image.format", "renders an empty image reference")
	}
	cfg.Image.Reference = reference
	return nil
}

// ApplyNamespaceFromContextConfigurator copies the namespace of the current
// kubeconfig context into the project when namespaceFromContext is set and no
// namespace is configured.
type ApplyNamespaceFromContextConfigurator struct {
	kubeContext ports.KubeContext
}

func NewApplyNamespaceFromContextConfigurator(kubeContext ports.KubeContext) ApplyNamespaceFromContextConfigurator {
	return ApplyNamespaceFromContextConfigurator{kubeContext: kubeContext}
}

func (c ApplyNamespaceFromContextConfigurator) Tag() string { return ApplyNamespaceFromContextTag }

func (c ApplyNamespaceFromContextConfigurator) Ordering() ordering.Ordering {
	return ordering.Ordering{Before: []string{ApplyS2IImageTag}}
}

func (c ApplyNamespaceFromContextConfigurator) Configure(cfg *domain.Config) error {
	if !cfg.NamespaceFromContext || cfg.Namespace != "" {
		return nil
	}
	namespace, err := c.kubeContext.CurrentNamespace()
	if err != nil {
		return domain.NewConfigurationError("namespaceFromContext", "failed to read kubeconfig: %v", err)
	}
	cfg.Namespace = namespace
	return nil
}

// KeyringPrefix marks secret values that are read from the OS keyring.
const KeyringPrefix = "keyring:"

// ResolveSecretValuesConfigurator replaces keyring references in secret data with
// the stored values.
type ResolveSecretValuesConfigurator struct {
	keyring ports.Keyring
}

func NewResolveSecretValuesConfigurator(keyring ports.Keyring) ResolveSecretValuesConfigurator {
	return ResolveSecretValuesConfigurator{keyring: keyring}
}

func (c ResolveSecretValuesConfigurator) Tag() string                 { return ResolveSecretValuesTag }
func (c ResolveSecretValuesConfigurator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (c ResolveSecretValuesConfigurator) Configure(cfg *domain.Config) error {
	for _, name := range domain.SortedKeys(cfg.Secrets) {
		secret := cfg.Secrets[name]
		for _, key := range domain.SortedKeys(secret.Data) {
			value := secret.Data[key]
			if !strings.HasPrefix(value, KeyringPrefix) {
				continue
			}
			field := fmt.Sprintf("secrets.%s.data.%s", name, key)
			entry := strings.TrimPrefix(value, KeyringPrefix)
			if entry == "" {
				return domain.NewConfigurationError(field, "empty keyring entry")
			}
			exists, err := c.keyring.HasKey(entry)
			if err != nil {
				return domain.NewConfigurationError(field, "failed to read keyring: %v", err)
			}
			if !exists {
				return domain.NewConfigurationError(field, "keyring entry '%s' not found", entry)
			}
			resolved, err := c.keyring.GetKey(entry)
			if err != nil {
				return domain.NewConfigurationError(field, "failed to read keyring entry '%s': %v", entry, err)
			}
			secret.Data[key] = resolved
		}
	}
	return nil
}
