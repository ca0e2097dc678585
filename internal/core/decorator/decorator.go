// Package decorator holds the operations that mutate the resource model once the
// baseline resources exist.
//
// A decorator names the resources it applies to with a resource.Selector and
// declares its position relative to other decorator tags. Apply visits every
// selected resource; a selector that matches nothing is a no-op unless it is
// marked Required.
package decorator

import (
	"errors"

	"kgen/internal/core/domain"
	"kgen/internal/core/ordering"
	"kgen/internal/core/resource"
)

const (
	AddLabelTag                   = "AddLabelDecorator"
	AddAnnotationTag              = "AddAnnotationDecorator"
	AddToSelectorTag              = "AddToSelectorDecorator"
	RemoveFromSelectorTag         = "RemoveFromSelectorDecorator"
	ApplyNamespaceTag             = "ApplyNamespaceDecorator"
	ApplyReplicasTag              = "ApplyReplicasDecorator"
	ApplyAutoscalerMinReplicasTag = "ApplyAutoscalerMinReplicasDecorator"
	ApplyImageTag                 = "ApplyImageDecorator"
	ApplyImagePullPolicyTag       = "ApplyImagePullPolicyDecorator"
	AddImagePullSecretTag         = "AddImagePullSecretDecorator"
	AddEnvVarTag                  = "AddEnvVarDecorator"
	AddPortTag                    = "AddPortDecorator"
	AddServicePortTag             = "AddServicePortDecorator"
	AddVolumeTag                  = "AddVolumeDecorator"
	AddMountTag                   = "AddMountDecorator"
	AddHostAliasTag               = "AddHostAliasDecorator"
	ApplyNodeSelectorTag          = "ApplyNodeSelectorDecorator"
	AddInitContainerTag           = "AddInitContainerDecorator"
	AddSidecarTag                 = "AddSidecarDecorator"
	ApplyServiceAccountTag        = "ApplyServiceAccountDecorator"
	ApplyProbeTag                 = "ApplyProbeDecorator"
	ApplyResourcesTag             = "ApplyResourcesDecorator"
	ApplyServiceTypeTag           = "ApplyServiceTypeDecorator"
	ApplyKnativeAutoscalingTag    = "ApplyKnativeAutoscalingDecorator"
	ApplyHPABehaviorTag           = "ApplyHPABehaviorDecorator"
)

var errTargetMissing = errors.New("target resource does not exist")

// Decorator mutates the resources selected by Target.
type Decorator interface {
	ordering.Operation
	Target() resource.Selector
	Visit(r *resource.Resource) error
}

// Scope is embedded by decorators to carry their selector.
type Scope struct {
	Selector resource.Selector
}

func (s Scope) Target() resource.Selector { return s.Selector }

// On scopes a decorator to kind/name. Empty values match anything.
func On(kind, name string) Scope {
	return Scope{Selector: resource.Selector{Kind: kind, Name: name}}
}

// RequiredOn is On for decorators whose target must exist.
func RequiredOn(kind, name string) Scope {
	return Scope{Selector: resource.Selector{Kind: kind, Name: name, Required: true}}
}

// Apply runs d against every resource it selects and returns how many it visited.
// Errors from Visit are reported as domain.ApplicationError unless they already
// carry a domain error kind.
func Apply(model *resource.Model, d Decorator) (int, error) {
	selector := d.Target()
	targets := model.Select(selector)
	if len(targets) == 0 {
		if selector.Required {
			return 0, &domain.ApplicationError{Operation: d.Tag(), Resource: selector.String(), Err: errTargetMissing}
		}
		return 0, nil
	}
	for _, r := range targets {
		if err := d.Visit(r); err != nil {
			if domain.IsConfigurationError(err) || domain.IsApplicationError(err) {
				return 0, err
			}
			return 0, &domain.ApplicationError{Operation: d.Tag(), Resource: r.String(), Err: err}
		}
	}
	return len(targets), nil
}

func containerName(r *resource.Resource, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	containers := r.Containers()
	if len(containers) == 0 {
		return "", resource.ErrContainerNotFound
	}
	return containers[0], nil
}

var (
	_ Decorator = ApplyKnativeAutoscalingDecorator{}
	_ Decorator = ApplyHPABehaviorDecorator{}
	_ Decorator = AddLabelDecorator{}
	_ Decorator = AddAnnotationDecorator{}
	_ Decorator = AddToSelectorDecorator{}
	_ Decorator = RemoveFromSelectorDecorator{}
	_ Decorator = ApplyNamespaceDecorator{}
	_ Decorator = AddServicePortDecorator{}
	_ Decorator = ApplyServiceTypeDecorator{}
	_ Decorator = ApplyReplicasDecorator{}
	_ Decorator = ApplyAutoscalerMinReplicasDecorator{}
	_ Decorator = ApplyImageDecorator{}
	_ Decorator = ApplyImagePullPolicyDecorator{}
	_ Decorator = AddImagePullSecretDecorator{}
	_ Decorator = AddEnvVarDecorator{}
	_ Decorator = AddPortDecorator{}
	_ Decorator = AddVolumeDecorator{}
	_ Decorator = AddMountDecorator{}
	_ Decorator = AddHostAliasDecorator{}
	_ Decorator = ApplyNodeSelectorDecorator{}
	_ Decorator = AddInitContainerDecorator{}
	_ Decorator = AddSidecarDecorator{}
	_ Decorator = ApplyServiceAccountDecorator{}
	_ Decorator = ApplyProbeDecorator{}
	_ Decorator = ApplyResourcesDecorator{}
)
