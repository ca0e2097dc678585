package synth

import (
	"kgen/internal/core/decorator"
	"kgen/internal/core/domain"
	"kgen/internal/core/fragment"
	"kgen/internal/core/resource"
	"kgen/internal/core/target"

	corev1 "k8s.io/api/core/v1"
)

const (
	NameLabel      = "app.kubernetes.io/name"
	VersionLabel   = "app.kubernetes.io/version"
	PartOfLabel    = "app.kubernetes.io/part-of"
	ManagedByLabel = "app.kubernetes.io/managed-by"
	ManagedBy      = "kgen"
)

var serviceTypes = []corev1.ServiceType{
	corev1.ServiceTypeClusterIP,
	corev1.ServiceTypeNodePort,
	corev1.ServiceTypeLoadBalancer,
	corev1.ServiceTypeExternalName,
}

// Plan maps a configured project onto the decorators that shape the baseline
// resources of e. The returned slice is in registration order; callers resolve it
// before applying.
func Plan(cfg domain.Config, e target.Entry) ([]decorator.Decorator, error) {
	set, err := fragment.ConvertAll(cfg)
	if err != nil {
		return nil, err
	}

	var out []decorator.Decorator
	add := func(d ...decorator.Decorator) { out = append(out, d...) }

	all := decorator.On("", "")
	project := decorator.On("", cfg.Name)
	workload := decorator.On(e.Kind, cfg.Name)
	primary := cfg.Name

	add(decorator.AddLabelDecorator{Scope: all, Key: NameLabel, Value: cfg.Name})
	add(decorator.AddLabelDecorator{Scope: all, Key: VersionLabel, Value: cfg.Version})
	if cfg.PartOf != "" {
		add(decorator.AddLabelDecorator{Scope: all, Key: PartOfLabel, Value: cfg.PartOf})
	}
	add(decorator.AddLabelDecorator{Scope: all, Key: ManagedByLabel, Value: ManagedBy})
	for _, key := range domain.SortedKeys(cfg.Labels) {
		add(decorator.AddLabelDecorator{Scope: all, Key: key, Value: cfg.Labels[key]})
	}
	for _, key := range domain.SortedKeys(cfg.Annotations) {
		add(decorator.AddAnnotationDecorator{Scope: all, Key: key, Value: cfg.Annotations[key]})
	}

	// Selectors are immutable on most workloads, so the version is kept out of them.
	add(decorator.AddToSelectorDecorator{Scope: project, Key: NameLabel, Value: cfg.Name})
	add(decorator.AddToSelectorDecorator{Scope: project, Key: VersionLabel, Value: cfg.Version})
	add(decorator.RemoveFromSelectorDecorator{Scope: project, Key: VersionLabel})

	if cfg.Namespace != "" {
		add(decorator.ApplyNamespaceDecorator{Scope: all, Namespace: cfg.Namespace})
	}

	add(decorator.ApplyImageDecorator{Scope: decorator.RequiredOn(e.Kind, cfg.Name), Container: primary, Image: cfg.Image.Reference})
	if policy := pullPolicy(cfg, e); policy != "" {
		add(decorator.ApplyImagePullPolicyDecorator{Scope: decorator.RequiredOn(e.Kind, cfg.Name), Container: primary, Policy: policy})
	}
	for _, name := range cfg.Image.PullSecrets {
		add(decorator.AddImagePullSecretDecorator{Scope: workload, Name: name})
	}

	if !e.IsKnative() {
		if cfg.Replicas != nil {
			add(decorator.ApplyReplicasDecorator{Scope: workload, Replicas: *cfg.Replicas})
		}
		if cfg.Autoscaling.Enabled && cfg.Autoscaling.MinReplicas != nil {
			add(decorator.ApplyAutoscalerMinReplicasDecorator{Scope: workload, MinReplicas: *cfg.Autoscaling.MinReplicas})
		}
		if cfg.Autoscaling.Enabled && (cfg.Autoscaling.ScaleUp != nil || cfg.Autoscaling.ScaleDown != nil) {
			add(decorator.ApplyHPABehaviorDecorator{
				Scope:     decorator.On("HorizontalPodAutoscaler", cfg.Name),
				ScaleUp:   cfg.Autoscaling.ScaleUp,
				ScaleDown: cfg.Autoscaling.ScaleDown,
			})
		}
	} else if k := cfg.Knative; k.AutoScalerClass != "" || k.Metric != "" || k.Target != nil || k.MinScale != nil || k.MaxScale != nil {
		add(decorator.ApplyKnativeAutoscalingDecorator{
			Scope:             workload,
			Class:             k.AutoScalerClass,
			Metric:            k.Metric,
			ConcurrencyTarget: k.Target,
			MinScale:          k.MinScale,
			MaxScale:          k.MaxScale,
		})
	}

	for _, env := range set.Env {
		add(decorator.AddEnvVarDecorator{Scope: workload, Container: primary, Env: env})
	}
	for _, port := range set.Ports {
		add(decorator.AddPortDecorator{Scope: workload, Container: primary, Port: port})
	}
	if len(set.ServicePorts) > 0 && !e.IsKnative() {
		service := decorator.On("Service", cfg.Name)
		for _, port := range set.ServicePorts {
			add(decorator.AddServicePortDecorator{Scope: service, Port: port})
		}
		st, err := serviceType(cfg, e)
		if err != nil {
			return nil, err
		}
		add(decorator.ApplyServiceTypeDecorator{Scope: service, Type: st})
	}

	for _, volume := range set.Volumes {
		add(decorator.AddVolumeDecorator{Scope: workload, Volume: volume})
	}
	for _, mount := range set.Mounts {
		add(decorator.AddMountDecorator{Scope: workload, Container: primary, Mount: mount})
	}
	for _, alias := range set.HostAliases {
		add(decorator.AddHostAliasDecorator{Scope: workload, Alias: alias})
	}
	for _, key := range domain.SortedKeys(set.NodeSelector) {
		add(decorator.ApplyNodeSelectorDecorator{Scope: workload, Key: key, Value: set.NodeSelector[key]})
	}
	for _, c := range set.InitContainers {
		add(decorator.AddInitContainerDecorator{Scope: workload, Container: c})
	}
	for _, c := range set.Sidecars {
		add(decorator.AddSidecarDecorator{Scope: workload, Container: c})
	}

	if account := target.ServiceAccountName(cfg); account != "" {
		add(decorator.ApplyServiceAccountDecorator{Scope: workload, ServiceAccount: account})
	}
	for _, kind := range domain.SortedKeys(set.Probes) {
		add(decorator.ApplyProbeDecorator{Scope: workload, Container: primary, Kind: resource.ProbeKind(kind), Probe: set.Probes[kind]})
	}
	if len(set.Resources.Limits) > 0 || len(set.Resources.Requests) > 0 {
		add(decorator.ApplyResourcesDecorator{Scope: workload, Container: primary, Resources: set.Resources})
	}

	return out, nil
}

// pullPolicy returns the configured pull policy. Local clusters load images into
// the node directly, so they default to IfNotPresent.
func pullPolicy(cfg domain.Config, e target.Entry) corev1.PullPolicy {
	if cfg.Image.PullPolicy != "" {
		return corev1.PullPolicy(cfg.Image.PullPolicy)
	}
	if e.LocalCluster() {
		return corev1.PullIfNotPresent
	}
	return ""
}

func serviceType(cfg domain.Config, e target.Entry) (corev1.ServiceType, error) {
	if cfg.ServiceType == "" {
		if e.LocalCluster() {
			return corev1.ServiceTypeNodePort, nil
		}
		return corev1.ServiceTypeClusterIP, nil
	}
	for _, t := range serviceTypes {
		if string(t) == cfg.ServiceType {
			return t, nil
		}
	}
	return "", domain.NewConfigurationError("serviceType", "unsupported service type '%s'", cfg.ServiceType)
}
