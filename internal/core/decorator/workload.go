package decorator

import (
	"fmt"

	"kgen/internal/core/ordering"
	"kgen/internal/core/resource"

	corev1 "k8s.io/api/core/v1"
)

// ApplyReplicasDecorator sets spec.replicas on workloads that have one.
type ApplyReplicasDecorator struct {
	Scope
	Replicas int32
}

func (d ApplyReplicasDecorator) Tag() string                 { return ApplyReplicasTag }
func (d ApplyReplicasDecorator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (d ApplyReplicasDecorator) Visit(r *resource.Resource) error {
	if !r.HasReplicas() {
		return nil
	}
	return r.SetReplicas(d.Replicas)
}

// ApplyAutoscalerMinReplicasDecorator starts an autoscaled workload at the
// autoscaler floor. It supersedes ApplyReplicasDecorator.
type ApplyAutoscalerMinReplicasDecorator struct {
	Scope
	MinReplicas int32
}

func (d ApplyAutoscalerMinReplicasDecorator) Tag() string { return ApplyAutoscalerMinReplicasTag }

func (d ApplyAutoscalerMinReplicasDecorator) Ordering() ordering.Ordering {
	return ordering.Ordering{Supersedes: []string{ApplyReplicasTag}}
}

func (d ApplyAutoscalerMinReplicasDecorator) Visit(r *resource.Resource) error {
	if !r.HasReplicas() {
		return nil
	}
	return r.SetReplicas(d.MinReplicas)
}

// ApplyImageDecorator sets the image of a container, creating the container if needed.
type ApplyImageDecorator struct {
	Scope
	Container string
	Image     string
}

func (d ApplyImageDecorator) Tag() string                 { return ApplyImageTag }
func (d ApplyImageDecorator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (d ApplyImageDecorator) Visit(r *resource.Resource) error {
	if !r.IsWorkload() {
		return nil
	}
	name := d.Container
	if name == "" {
		name = r.Name()
	}
	if _, ok := r.Container(name); !ok {
		return r.UpsertContainer(corev1.Container{Name: name, Image: d.Image})
	}
	return r.SetContainerImage(name, d.Image)
}

// ApplyImagePullPolicyDecorator sets the pull policy of an existing container.
// A missing container is an error.
type ApplyImagePullPolicyDecorator struct {
	Scope
	Container string
	Policy    corev1.PullPolicy
}

func (d ApplyImagePullPolicyDecorator) Tag() string { return ApplyImagePullPolicyTag }

func (d ApplyImagePullPolicyDecorator) Ordering() ordering.Ordering {
	return ordering.Ordering{After: []string{ApplyImageTag}}
}

func (d ApplyImagePullPolicyDecorator) Visit(r *resource.Resource) error {
	if !r.IsWorkload() {
		return nil
	}
	name, err := containerName(r, d.Container)
	if err != nil {
		return err
	}
	return r.SetContainerPullPolicy(name, d.Policy)
}

type AddImagePullSecretDecorator struct {
	Scope
	Name string
}

func (d AddImagePullSecretDecorator) Tag() string                 { return AddImagePullSecretTag }
func (d AddImagePullSecretDecorator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (d AddImagePullSecretDecorator) Visit(r *resource.Resource) error {
	if !r.IsWorkload() {
		return nil
	}
	return r.AddImagePullSecret(d.Name)
}

// AddEnvVarDecorator adds or replaces an environment variable. An empty Container
// targets the primary container.
type AddEnvVarDecorator struct {
	Scope
	Container string
	Env       corev1.EnvVar
}

func (d AddEnvVarDecorator) Tag() string { return AddEnvVarTag }

func (d AddEnvVarDecorator) Ordering() ordering.Ordering {
	return ordering.Ordering{After: []string{ApplyImageTag}}
}

func (d AddEnvVarDecorator) Visit(r *resource.Resource) error {
	if !r.IsWorkload() {
		return nil
	}
	name, err := containerName(r, d.Container)
	if err != nil {
		return err
	}
	return r.AddEnvVar(name, d.Env)
}

type AddPortDecorator struct {
	Scope
	Container string
	Port      corev1.ContainerPort
}

func (d AddPortDecorator) Tag() string { return AddPortTag }

func (d AddPortDecorator) Ordering() ordering.Ordering {
	return ordering.Ordering{After: []string{ApplyImageTag}}
}

func (d AddPortDecorator) Visit(r *resource.Resource) error {
	if !r.IsWorkload() {
		return nil
	}
	name, err := containerName(r, d.Container)
	if err != nil {
		return err
	}
	return r.AddContainerPort(name, d.Port)
}

type AddVolumeDecorator struct {
	Scope
	Volume corev1.Volume
}

func (d AddVolumeDecorator) Tag() string                 { return AddVolumeTag }
func (d AddVolumeDecorator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (d AddVolumeDecorator) Visit(r *resource.Resource) error {
	if !r.IsWorkload() {
		return nil
	}
	return r.AddVolume(d.Volume)
}

// AddMountDecorator mounts a volume into a container. It runs after the volumes
// have been added.
type AddMountDecorator struct {
	Scope
	Container string
	Mount     corev1.VolumeMount
}

func (d AddMountDecorator) Tag() string { return AddMountTag }

func (d AddMountDecorator) Ordering() ordering.Ordering {
	return ordering.Ordering{After: []string{AddVolumeTag, ApplyImageTag}}
}

func (d AddMountDecorator) Visit(r *resource.Resource) error {
	if !r.IsWorkload() {
		return nil
	}
	name, err := containerName(r, d.Container)
	if err != nil {
		return err
	}
	return r.AddVolumeMount(name, d.Mount)
}

type AddHostAliasDecorator struct {
	Scope
	Alias corev1.HostAlias
}

func (d AddHostAliasDecorator) Tag() string                 { return AddHostAliasTag }
func (d AddHostAliasDecorator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (d AddHostAliasDecorator) Visit(r *resource.Resource) error {
	if !r.IsWorkload() {
		return nil
	}
	return r.AddHostAlias(d.Alias)
}

type ApplyNodeSelectorDecorator struct {
	Scope
	Key   string
	Value string
}

func (d ApplyNodeSelectorDecorator) Tag() string                 { return ApplyNodeSelectorTag }
func (d ApplyNodeSelectorDecorator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (d ApplyNodeSelectorDecorator) Visit(r *resource.Resource) error {
	if !r.IsWorkload() {
		return nil
	}
	return r.SetNodeSelector(d.Key, d.Value)
}

type AddInitContainerDecorator struct {
	Scope
	Container corev1.Container
}

func (d AddInitContainerDecorator) Tag() string                 { return AddInitContainerTag }
func (d AddInitContainerDecorator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (d AddInitContainerDecorator) Visit(r *resource.Resource) error {
	if !r.IsWorkload() {
		return nil
	}
	if _, ok := r.Container(d.Container.Name); ok {
		return fmt.Errorf("%w: %s", resource.ErrContainerExists, d.Container.Name)
	}
	return r.UpsertInitContainer(d.Container)
}

// AddSidecarDecorator appends a container after the primary one.
type AddSidecarDecorator struct {
	Scope
	Container corev1.Container
}

func (d AddSidecarDecorator) Tag() string { return AddSidecarTag }

func (d AddSidecarDecorator) Ordering() ordering.Ordering {
	return ordering.Ordering{After: []string{ApplyImageTag}}
}

func (d AddSidecarDecorator) Visit(r *resource.Resource) error {
	if !r.IsWorkload() {
		return nil
	}
	if _, ok := r.Container(d.Container.Name); ok {
		return fmt.Errorf("%w: %s", resource.ErrContainerExists, d.Container.Name)
	}
	return r.UpsertContainer(d.Container)
}

type ApplyServiceAccountDecorator struct {
	Scope
	ServiceAccount string
}

func (d ApplyServiceAccountDecorator) Tag() string                 { return ApplyServiceAccountTag }
func (d ApplyServiceAccountDecorator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (d ApplyServiceAccountDecorator) Visit(r *resource.Resource) error {
	if !r.IsWorkload() {
		return nil
	}
	return r.SetServiceAccount(d.ServiceAccount)
}

type ApplyProbeDecorator struct {
	Scope
	Container string
	Kind      resource.ProbeKind
	Probe     corev1.Probe
}

func (d ApplyProbeDecorator) Tag() string { return ApplyProbeTag }

func (d ApplyProbeDecorator) Ordering() ordering.Ordering {
	return ordering.Ordering{After: []string{ApplyImageTag, AddPortTag}}
}

func (d ApplyProbeDecorator) Visit(r *resource.Resource) error {
	if !r.IsWorkload() {
		return nil
	}
	name, err := containerName(r, d.Container)
	if err != nil {
		return err
	}
	return r.SetProbe(name, d.Kind, d.Probe)
}

type ApplyResourcesDecorator struct {
	Scope
	Container string
	Resources corev1.ResourceRequirements
}

func (d ApplyResourcesDecorator) Tag() string { return ApplyResourcesTag }

func (d ApplyResourcesDecorator) Ordering() ordering.Ordering {
	return ordering.Ordering{After: []string{ApplyImageTag}}
}

func (d ApplyResourcesDecorator) Visit(r *resource.Resource) error {
	if !r.IsWorkload() {
		return nil
	}
	name, err := containerName(r, d.Container)
	if err != nil {
		return err
	}
	return r.SetResources(name, d.Resources)
}
