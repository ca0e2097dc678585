package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kgen/internal/core/domain"
	"kgen/internal/ports"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "kgen.yaml"

type ConfigRepository interface {
	LoadConfig(path string) (*domain.Config, error)
	ConfigExists(path string) (bool, error)
	InitConfig(path string) error
}

type FileSystemConfigRepository struct {
	fileService ports.FileSystem
	configs     map[string]*domain.Config
}

func ProvideFileSystemConfigRepository(fileService ports.FileSystem) *FileSystemConfigRepository {
	return &FileSystemConfigRepository{
		fileService: fileService,
		configs:     make(map[string]*domain.Config),
	}
}

// LoadConfig reads the project configuration at path, overlays it on its import,
// applies defaults and validates the result. Results are cached per path.
func (c *FileSystemConfigRepository) LoadConfig(path string) (*domain.Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	if config, ok := c.configs[path]; ok {
		return config, nil
	}

	data, err := c.fileService.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	values, err := decodeConfigValues(path, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if importPath, ok := values["import"].(string); ok && importPath != "" {
		values = overlayImport(resolveImportPath(importPath, path), values)
	}

	config, err := toConfig(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c.configs[path] = config
	return config, nil
}

func (c *FileSystemConfigRepository) ConfigExists(path string) (bool, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	return c.fileService.FileExists(path)
}

// InitConfig writes the sample configuration to path in the format its extension
// names. An existing file is never overwritten.
func (c *FileSystemConfigRepository) InitConfig(path string) error {
	if path == "" {
		path = DefaultConfigPath
	}
	fileExists, err := c.fileService.FileExists(path)
	if err != nil {
		return err
	}
	if fileExists {
		return fmt.Errorf("configuration file already exists at %s", path)
	}

	data, err := encodeConfig(path, domain.CreateDefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	return c.fileService.WriteFile(path, data, ports.ReadAllWriteOwner)
}

// overlayImport reads the base file named by import and merges values over it.
// An unreadable base is reported and skipped.
func overlayImport(importPath string, values map[string]interface{}) map[string]interface{} {
	// Imports may live anywhere, e.g. a shared directory outside the project.
	data, err := os.ReadFile(importPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARN: failed to read import file %s: %v\n", importPath, err)
		return values
	}
	base, err := decodeConfigValues(importPath, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARN: failed to parse configuration file %s: %v\n", importPath, err)
		return values
	}
	return mergeConfigValues(base, values)
}

// mergeConfigValues overlays overlay on base. Nested mappings merge key by key;
// every other value in overlay replaces the one in base.
func mergeConfigValues(base, overlay map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		overlayMap, overlayIsMap := v.(map[string]interface{})
		baseMap, baseIsMap := out[k].(map[string]interface{})
		if overlayIsMap && baseIsMap {
			out[k] = mergeConfigValues(baseMap, overlayMap)
			continue
		}
		out[k] = v
	}
	return out
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func decodeConfigValues(path string, data []byte) (map[string]interface{}, error) {
	values := make(map[string]interface{})
	if isTOML(path) {
		if err := toml.Unmarshal(data, &values); err != nil {
			return nil, err
		}
		return values, nil
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// toConfig normalises a generic value tree into the typed record through YAML,
// so YAML and TOML files share one set of field tags.
func toConfig(values map[string]interface{}) (*domain.Config, error) {
	data, err := yaml.Marshal(values)
	if err != nil {
		return nil, err
	}
	var config domain.Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func encodeConfig(path string, config domain.Config) ([]byte, error) {
	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, err
	}
	if !isTOML(path) {
		return data, nil
	}

	values := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(values); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// resolveImportPath expands ~ and resolves relative imports against the directory
// of the importing file.
func resolveImportPath(importPath, configPath string) string {
	if strings.HasPrefix(importPath, "~/") || strings.HasPrefix(importPath, "~\\") || importPath == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			return expandImportPath(importPath, home)
		}
	}
	if filepath.IsAbs(importPath) {
		return importPath
	}
	return filepath.Join(filepath.Dir(configPath), importPath)
}

func expandImportPath(path string, home string) string {
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~\\") {
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		return home
	}
	return path
}
