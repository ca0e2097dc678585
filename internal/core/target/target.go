// Package target lists the deployment targets kgen can synthesize for and builds
// the baseline resources of each.
package target

import (
	"errors"
	"slices"

	"kgen/internal/core/domain"
	"kgen/internal/core/resource"
)

const (
	Kubernetes = "kubernetes"
	OpenShift  = "openshift"
	Knative    = "knative"
	Minikube   = "minikube"
	Kind       = "kind"
)

// PreventImplicitImagePush tells image build tooling not to push the built image,
// because the target cluster reads images from the local daemon.
const PreventImplicitImagePush = "prevent-implicit-image-push"

// Entry is one deployment target: the primary workload kind and the priority used
// when several targets are eligible.
type Entry struct {
	Name         string
	Kind         string
	APIVersion   string
	Priority     int
	Capabilities []string
}

var (
	errUnknownTarget = errors.New("no such deployment target")
	errNoneEligible  = errors.New("no eligible deployment target")
)

var entries = []Entry{
	{Name: Kubernetes, Kind: "Deployment", APIVersion: "apps/v1", Priority: 10},
	{Name: OpenShift, Kind: "DeploymentConfig", APIVersion: resource.GroupOpenShift + "/v1", Priority: 10},
	{Name: Knative, Kind: "Service", APIVersion: resource.GroupKnative + "/v1", Priority: 10},
	{Name: Minikube, Kind: "Deployment", APIVersion: "apps/v1", Priority: 20, Capabilities: []string{PreventImplicitImagePush}},
	{Name: Kind, Kind: "Deployment", APIVersion: "apps/v1", Priority: 20, Capabilities: []string{PreventImplicitImagePush}},
}

// Entries returns the registered targets in declaration order.
func Entries() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Lookup returns the registered entry called name.
func Lookup(all []Entry, name string) (Entry, bool) {
	i := slices.IndexFunc(all, func(e Entry) bool { return e.Name == name })
	if i < 0 {
		return Entry{}, false
	}
	return all[i], true
}

// Select picks the target for a run. An explicit name wins and must be registered.
// Otherwise the eligible entry with the highest priority is chosen; ties go to the
// entry listed first in eligible.
func Select(all []Entry, eligible []string, explicit string) (Entry, error) {
	if explicit != "" {
		e, ok := Lookup(all, explicit)
		if !ok {
			return Entry{}, &domain.TargetResolutionError{Name: explicit, Err: errUnknownTarget}
		}
		return e, nil
	}

	var selected *Entry
	for _, name := range eligible {
		e, ok := Lookup(all, name)
		if !ok {
			return Entry{}, &domain.TargetResolutionError{Name: name, Err: errUnknownTarget}
		}
		if selected == nil || e.Priority > selected.Priority {
			selected = &e
		}
	}
	if selected == nil {
		return Entry{}, &domain.TargetResolutionError{Err: errNoneEligible}
	}
	return *selected, nil
}

// Selection resolves the target for cfg, with override taking precedence over
// the configured deployTarget.
func Selection(cfg domain.Config, override string) (Entry, error) {
	explicit := override
	if explicit == "" && cfg.DeployTarget != nil {
		explicit = *cfg.DeployTarget
	}
	return Select(Entries(), cfg.DeploymentTargets, explicit)
}

// IsKnative reports whether e synthesizes a Knative Service.
func (e Entry) IsKnative() bool {
	return e.APIVersion == resource.GroupKnative+"/v1"
}

// IsOpenShift reports whether e synthesizes an OpenShift DeploymentConfig.
func (e Entry) IsOpenShift() bool {
	return e.Kind == "DeploymentConfig"
}

// LocalCluster reports whether e deploys to a developer-local cluster.
func (e Entry) LocalCluster() bool {
	return slices.Contains(e.Capabilities, PreventImplicitImagePush)
}
