package kustomize

import (
	"fmt"
	"path/filepath"
	"strings"

	"kgen/internal/core/resource"
	"kgen/internal/ports"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

var _ ports.KustomizeClient = (*Client)(nil)

const resourcesFile = "resources.yaml"

// Kustomization is the kustomization.yaml written to the work directory.
type Kustomization struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Resources  []string `yaml:"resources"`
	Patches    []Patch  `yaml:"patches,omitempty"`
}

// Patch is a kustomize patch entry. Exactly one of Path and Patch is set.
type Patch struct {
	Path   string `yaml:"path,omitempty"`
	Patch  string `yaml:"patch,omitempty"`
	Target Target `yaml:"target"`
}

// PatchFile is a strategic merge patch written next to the kustomization.
type PatchFile struct {
	Filename string
	Content  []byte
}

// Target selects the resources a kustomize patch applies to.
type Target struct {
	Group   string `yaml:"group,omitempty"`
	Version string `yaml:"version,omitempty"`
	Kind    string `yaml:"kind,omitempty"`
	Name    string `yaml:"name,omitempty"`
}

// PatchOperation is an RFC 6902 operation in an inline JSON patch.
type PatchOperation struct {
	Op    string      `yaml:"op"`
	Path  string      `yaml:"path"`
	Value interface{} `yaml:"value,omitempty"`
}

// Client implements ports.KustomizeClient with the kubectl kustomize CLI.
type Client struct {
	commandRunner ports.CommandRunner
	fileSystem    ports.FileSystem
}

func ProvideKustomizeClient(commandRunner ports.CommandRunner, fileSystem ports.FileSystem) *Client {
	return &Client{
		commandRunner: commandRunner,
		fileSystem:    fileSystem,
	}
}

func (c *Client) Apply(manifests []byte, patches []ports.Patch, workDir string) ([]byte, error) {
	if len(patches) == 0 {
		return manifests, nil
	}

	if err := c.fileSystem.MkdirAll(workDir, ports.ReadWriteExecute); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	if err := c.fileSystem.WriteFile(filepath.Join(workDir, resourcesFile), manifests, ports.ReadWrite); err != nil {
		return nil, fmt.Errorf("failed to write resources: %w", err)
	}

	kustomization, patchFiles, err := buildKustomization(patches)
	if err != nil {
		return nil, fmt.Errorf("failed to build kustomization: %w", err)
	}
	for _, pf := range patchFiles {
		if err := c.fileSystem.WriteFile(filepath.Join(workDir, pf.Filename), pf.Content, ports.ReadWrite); err != nil {
			return nil, fmt.Errorf("failed to write patch file %s: %w", pf.Filename, err)
		}
	}

	kustomizationYAML, err := yaml.Marshal(kustomization)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal kustomization: %w", err)
	}
	if err := c.fileSystem.WriteFile(filepath.Join(workDir, "kustomization.yaml"), kustomizationYAML, ports.ReadWrite); err != nil {
		return nil, fmt.Errorf("failed to write kustomization.yaml: %w", err)
	}

	output, err := c.commandRunner.Run("kubectl", "kustomize", workDir)
	if err != nil {
		return nil, fmt.Errorf("kubectl kustomize failed: %w, output: %s", err, string(output))
	}
	return output, nil
}

// buildKustomization turns patches into a kustomization. "add" operations become
// strategic merge patch files so that missing parent maps are created; "replace"
// and "remove" operations are kept as one inline JSON patch per target.
func buildKustomization(patches []ports.Patch) (Kustomization, []PatchFile, error) {
	kustomization := Kustomization{
		APIVersion: "kustomize.config.k8s.io/v1beta1",
		Kind:       "Kustomization",
		Resources:  []string{resourcesFile},
	}

	var patchFiles []PatchFile
	for i, p := range patches {
		target, err := kustomizeTarget(p.Target)
		if err != nil {
			return Kustomization{}, nil, err
		}

		var jsonPatchOps []PatchOperation
		for j, op := range p.Operations {
			if op.Op != "add" {
				patchOp := PatchOperation{Op: op.Op, Path: op.Path}
				if op.Op != "remove" {
					patchOp.Value = op.Value
				}
				jsonPatchOps = append(jsonPatchOps, patchOp)
				continue
			}

			content, err := buildStrategicMergePatch(p.Target, op)
			if err != nil {
				return Kustomization{}, nil, fmt.Errorf("failed to build strategic merge patch for %s: %w", p.Target.Kind, err)
			}
			filename := fmt.Sprintf("patch-%d-%d-%s.yaml", i, j, patchNameFromPath(op.Path))
			patchFiles = append(patchFiles, PatchFile{Filename: filename, Content: content})
			kustomization.Patches = append(kustomization.Patches, Patch{Path: filename, Target: target})
		}

		if len(jsonPatchOps) > 0 {
			opsYAML, err := yaml.Marshal(jsonPatchOps)
			if err != nil {
				return Kustomization{}, nil, fmt.Errorf("failed to marshal JSON patch operations: %w", err)
			}
			kustomization.Patches = append(kustomization.Patches, Patch{Patch: string(opsYAML), Target: target})
		}
	}

	return kustomization, patchFiles, nil
}

func apiVersion(target ports.PatchTarget) string {
	if target.APIVersion != "" {
		return target.APIVersion
	}
	return resource.APIVersionForKind(target.Kind)
}

func kustomizeTarget(target ports.PatchTarget) (Target, error) {
	gv, err := schema.ParseGroupVersion(apiVersion(target))
	if err != nil {
		return Target{}, fmt.Errorf("invalid apiVersion for patch target %s: %w", target.Kind, err)
	}
	out := Target{Kind: target.Kind, Name: target.Name}
	if target.APIVersion != "" {
		out.Group = gv.Group
		out.Version = gv.Version
	}
	return out, nil
}

// buildStrategicMergePatch nests op.Value under the JSON pointer op.Path in a
// document carrying the apiVersion, kind and name kustomize needs to parse it.
func buildStrategicMergePatch(target ports.PatchTarget, op ports.PatchOperation) ([]byte, error) {
	parts := strings.Split(strings.TrimPrefix(op.Path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("patch path '%s' has no segments", op.Path)
	}

	name := target.Name
	if name == "" {
		// Matched by the patch target, not by name.
		name = "placeholder"
	}
	result := map[string]interface{}{
		"apiVersion": apiVersion(target),
		"kind":       target.Kind,
		"metadata":   map[string]interface{}{"name": name},
	}

	current := result
	for i, part := range parts {
		part = unescapeJSONPointer(part)
		if i == len(parts)-1 {
			current[part] = op.Value
			break
		}
		next, ok := current[part].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			current[part] = next
		}
		current = next
	}

	patchYAML, err := yaml.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal strategic merge patch: %w", err)
	}
	return patchYAML, nil
}

// unescapeJSONPointer decodes RFC 6901 escapes: ~1 first, then ~0.
func unescapeJSONPointer(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

// patchNameFromPath derives a kebab-case file name from the last pointer segment,
// e.g. "/metadata/annotations/kubectl.kubernetes.io~1restartedAt" -> "restarted-at".
func patchNameFromPath(path string) string {
	parts := strings.Split(path, "/")
	last := unescapeJSONPointer(parts[len(parts)-1])
	if idx := strings.LastIndex(last, "/"); idx != -1 {
		last = last[idx+1:]
	}
	if last == "" {
		return "patch"
	}

	var result strings.Builder
	for i, r := range last {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('-')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
