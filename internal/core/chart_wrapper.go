package core

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"kgen/internal/ports"

	"gopkg.in/yaml.v3"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// ChartConfig describes a Helm chart that carries rendered manifests verbatim.
type ChartConfig struct {
	Directory  string
	Target     string
	Name       string
	AppVersion string
	Manifests  []byte
}

type chartMetadata struct {
	APIVersion  string            `yaml:"apiVersion"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Type        string            `yaml:"type"`
	Version     string            `yaml:"version"`
	AppVersion  string            `yaml:"appVersion"`
	Annotations map[string]string `yaml:"annotations,omitempty"`
}

// ChartWrapper writes Helm charts around synthesized manifests.
type ChartWrapper struct {
	fileSystem ports.FileSystem
}

func ProvideChartWrapper(fileSystem ports.FileSystem) *ChartWrapper {
	return &ChartWrapper{
		fileSystem: fileSystem,
	}
}

// Generate writes <dir>/<target>/Chart.yaml and templates/manifests.yaml and
// returns the chart directory.
func (c *ChartWrapper) Generate(config ChartConfig) (string, error) {
	safeTarget := sanitizeName(config.Target)
	if safeTarget == "" {
		return "", fmt.Errorf("invalid target name: %s", config.Target)
	}
	safeName := sanitizeName(config.Name)
	if safeName == "" {
		return "", fmt.Errorf("invalid chart name: %s", config.Name)
	}

	basePath := filepath.Join(config.Directory, safeTarget)
	templatesPath := filepath.Join(basePath, "templates")
	if err := c.fileSystem.MkdirAll(templatesPath, ports.ReadWriteExecute); err != nil {
		return "", fmt.Errorf("failed to create chart directory: %w", err)
	}

	chartYaml, err := generateChartYaml(safeName, safeTarget, config.AppVersion)
	if err != nil {
		return "", err
	}
	if err := c.fileSystem.WriteFile(filepath.Join(basePath, "Chart.yaml"), chartYaml, ports.ReadAllWriteOwner); err != nil {
		return "", fmt.Errorf("failed to write Chart.yaml: %w", err)
	}
	if err := c.fileSystem.WriteFile(filepath.Join(templatesPath, "manifests.yaml"), config.Manifests, ports.ReadAllWriteOwner); err != nil {
		return "", fmt.Errorf("failed to write manifests: %w", err)
	}
	return basePath, nil
}

// Cleanup removes the chart written for target.
func (c *ChartWrapper) Cleanup(directory, target string) error {
	safeTarget := sanitizeName(target)
	if safeTarget == "" {
		return fmt.Errorf("invalid target name: %s", target)
	}
	if err := c.fileSystem.RemoveAll(filepath.Join(directory, safeTarget)); err != nil {
		return fmt.Errorf("failed to remove chart directory: %w", err)
	}
	return nil
}

func generateChartYaml(name, target, appVersion string) ([]byte, error) {
	if appVersion == "" {
		appVersion = "1.0.0"
	}
	data, err := yaml.Marshal(chartMetadata{
		APIVersion:  "v2",
		Name:        name,
		Description: fmt.Sprintf("%s manifests for %s generated by kgen", name, target),
		Type:        "application",
		Version:     "1.0.0",
		AppVersion:  appVersion,
		Annotations: map[string]string{"kgen.io/target": target},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Chart.yaml: %w", err)
	}
	return data, nil
}

// sanitizeName strips everything but alphanumerics, dashes and underscores.
// Returns "" if nothing valid is left.
func sanitizeName(name string) string {
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", "")
	}
	name = unsafeNameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "-_")
}
