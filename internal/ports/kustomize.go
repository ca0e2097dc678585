package ports

// KustomizeClient applies kustomize patches to rendered manifests.
type KustomizeClient interface {
	// Apply takes a multi-document YAML stream and applies patches, returning the
	// patched stream. The kustomization is written to workDir and left there for
	// inspection.
	Apply(manifests []byte, patches []Patch, workDir string) ([]byte, error)
}

// Patch is a set of JSON patch operations applied to the resources matching Target.
type Patch struct {
	Target     PatchTarget
	Operations []PatchOperation
}

// PatchTarget selects the resources a patch applies to.
type PatchTarget struct {
	// APIVersion disambiguates kinds that exist in several groups. Optional.
	APIVersion string
	Kind       string
	// Name is optional; empty matches every resource of Kind.
	Name string
}

// PatchOperation is a single JSON patch operation.
type PatchOperation struct {
	Op    string      // "add", "replace", "remove"
	Path  string      // JSON pointer path
	Value interface{} // Value for add/replace
}
