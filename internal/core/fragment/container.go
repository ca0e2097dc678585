package fragment

import (
	"fmt"

	"kgen/internal/core/domain"

	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/intstr"
)

// Mount converts a mount record. The map key names the volume being mounted.
func Mount(name string, cfg domain.MountConfig) (corev1.VolumeMount, error) {
	if cfg.Path == "" {
		return corev1.VolumeMount{}, domain.NewConfigurationError("mounts."+name+".path", "must not be empty")
	}
	return corev1.VolumeMount{
		Name:      name,
		MountPath: cfg.Path,
		SubPath:   cfg.SubPath,
		ReadOnly:  cfg.ReadOnly,
	}, nil
}

func protocol(p domain.Protocol) corev1.Protocol {
	if p == "" {
		return corev1.ProtocolTCP
	}
	return corev1.Protocol(p)
}

func Port(name string, cfg domain.PortConfig) (corev1.ContainerPort, error) {
	field := "ports." + name
	if cfg.ContainerPort <= 0 {
		return corev1.ContainerPort{}, domain.NewConfigurationError(field+".containerPort", "must be set")
	}
	if cfg.Protocol != "" && !cfg.Protocol.Valid() {
		return corev1.ContainerPort{}, domain.NewConfigurationError(field+".protocol", "unsupported protocol '%s'", cfg.Protocol)
	}
	return corev1.ContainerPort{
		Name:          name,
		ContainerPort: cfg.ContainerPort,
		HostPort:      cfg.HostPort,
		Protocol:      protocol(cfg.Protocol),
	}, nil
}

// ServicePort converts a port record into the port a Service exposes for it.
func ServicePort(name string, cfg domain.PortConfig) (corev1.ServicePort, error) {
	cp, err := Port(name, cfg)
	if err != nil {
		return corev1.ServicePort{}, err
	}
	return corev1.ServicePort{
		Name:       name,
		Port:       cp.ContainerPort,
		TargetPort: intstr.FromInt32(cp.ContainerPort),
		Protocol:   cp.Protocol,
		NodePort:   cfg.NodePort,
	}, nil
}

func HostAlias(name string, cfg domain.HostAliasConfig) (corev1.HostAlias, error) {
	if cfg.IP == "" {
		return corev1.HostAlias{}, domain.NewConfigurationError("hostAliases."+name+".ip", "must not be empty")
	}
	if len(cfg.Hostnames) == 0 {
		return corev1.HostAlias{}, domain.NewConfigurationError("hostAliases."+name+".hostnames", "must not be empty")
	}
	return corev1.HostAlias{
		IP:        cfg.IP,
		Hostnames: append([]string(nil), cfg.Hostnames...),
	}, nil
}

func NodeSelector(cfg domain.NodeSelectorConfig) (map[string]string, error) {
	if cfg.Key == "" {
		return nil, domain.NewConfigurationError("nodeSelector.key", "must not be empty")
	}
	return map[string]string{cfg.Key: cfg.Value}, nil
}

// EnvVar converts an environment record. Exactly one source is used, in the order
// value, secret, configMap, field.
func EnvVar(name string, cfg domain.EnvConfig) (corev1.EnvVar, error) {
	field := "env." + name
	switch {
	case cfg.Secret != "":
		if cfg.Key == "" {
			return corev1.EnvVar{}, domain.NewConfigurationError(field+".key", "required with secret")
		}
		return corev1.EnvVar{
			Name: name,
			ValueFrom: &corev1.EnvVarSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: cfg.Secret},
					Key:                  cfg.Key,
				},
			},
		}, nil
	case cfg.ConfigMap != "":
		if cfg.Key == "" {
			return corev1.EnvVar{}, domain.NewConfigurationError(field+".key", "required with configMap")
		}
		return corev1.EnvVar{
			Name: name,
			ValueFrom: &corev1.EnvVarSource{
				ConfigMapKeyRef: &corev1.ConfigMapKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: cfg.ConfigMap},
					Key:                  cfg.Key,
				},
			},
		}, nil
	case cfg.Field != "":
		return corev1.EnvVar{
			Name: name,
			ValueFrom: &corev1.EnvVarSource{
				FieldRef: &corev1.ObjectFieldSelector{FieldPath: cfg.Field},
			},
		}, nil
	}
	return corev1.EnvVar{Name: name, Value: cfg.Value}, nil
}

// Container converts an init container or sidecar record.
func Container(name string, cfg domain.ContainerConfig) (corev1.Container, error) {
	if cfg.Image == "" {
		return corev1.Container{}, domain.NewConfigurationError(fmt.Sprintf("containers.%s.image", name), "must not be empty")
	}
	c := corev1.Container{
		Name:            name,
		Image:           cfg.Image,
		Command:         append([]string(nil), cfg.Command...),
		Args:            append([]string(nil), cfg.Args...),
		WorkingDir:      cfg.WorkingDir,
		ImagePullPolicy: corev1.PullPolicy(cfg.ImagePullPolicy),
	}
	for _, key := range domain.SortedKeys(cfg.Env) {
		env, err := EnvVar(key, cfg.Env[key])
		if err != nil {
			return corev1.Container{}, err
		}
		c.Env = append(c.Env, env)
	}
	for _, key := range domain.SortedKeys(cfg.Ports) {
		port, err := Port(key, cfg.Ports[key])
		if err != nil {
			return corev1.Container{}, err
		}
		c.Ports = append(c.Ports, port)
	}
	for _, key := range domain.SortedKeys(cfg.Mounts) {
		mount, err := Mount(key, cfg.Mounts[key])
		if err != nil {
			return corev1.Container{}, err
		}
		c.VolumeMounts = append(c.VolumeMounts, mount)
	}
	return c, nil
}

// Probe converts a probe record. An HTTP path wins over an exec action, which
// wins over a TCP socket.
func Probe(field string, cfg domain.ProbeConfig) (corev1.Probe, error) {
	probe := corev1.Probe{
		InitialDelaySeconds: cfg.InitialDelaySeconds,
		PeriodSeconds:       cfg.PeriodSeconds,
		TimeoutSeconds:      cfg.TimeoutSeconds,
		SuccessThreshold:    cfg.SuccessThreshold,
		FailureThreshold:    cfg.FailureThreshold,
	}
	switch {
	case cfg.HTTPActionPath != "":
		if cfg.Port == "" {
			return corev1.Probe{}, domain.NewConfigurationError(field+".port", "required with httpActionPath")
		}
		probe.HTTPGet = &corev1.HTTPGetAction{
			Path: cfg.HTTPActionPath,
			Port: intstr.Parse(cfg.Port),
		}
	case len(cfg.ExecAction) > 0:
		probe.Exec = &corev1.ExecAction{Command: append([]string(nil), cfg.ExecAction...)}
	case cfg.TCPSocketPort > 0:
		probe.TCPSocket = &corev1.TCPSocketAction{Port: intstr.FromInt32(cfg.TCPSocketPort)}
	default:
		return corev1.Probe{}, domain.NewConfigurationError(field, "one of httpActionPath, execAction or tcpSocketPort is required")
	}
	return probe, nil
}

func Resources(cfg domain.ResourcesConfig) (corev1.ResourceRequirements, error) {
	limits, err := resourceList("resources.limits", cfg.Limits)
	if err != nil {
		return corev1.ResourceRequirements{}, err
	}
	requests, err := resourceList("resources.requests", cfg.Requests)
	if err != nil {
		return corev1.ResourceRequirements{}, err
	}
	return corev1.ResourceRequirements{Limits: limits, Requests: requests}, nil
}

func resourceList(field string, cfg domain.ResourceListConfig) (corev1.ResourceList, error) {
	list := corev1.ResourceList{}
	for _, entry := range []struct {
		name  corev1.ResourceName
		value string
	}{
		{corev1.ResourceCPU, cfg.CPU},
		{corev1.ResourceMemory, cfg.Memory},
	} {
		name, value := entry.name, entry.value
		if value == "" {
			continue
		}
		q, err := resource.ParseQuantity(value)
		if err != nil {
			return nil, domain.NewConfigurationError(fmt.Sprintf("%s.%s", field, name), "invalid quantity '%s'", value)
		}
		list[name] = q
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list, nil
}

func PolicyRule(field string, cfg domain.PolicyRuleConfig) (rbacv1.PolicyRule, error) {
	if len(cfg.Verbs) == 0 {
		return rbacv1.PolicyRule{}, domain.NewConfigurationError(field+".verbs", "must not be empty")
	}
	return rbacv1.PolicyRule{
		APIGroups:     append([]string(nil), cfg.APIGroups...),
		Resources:     append([]string(nil), cfg.Resources...),
		ResourceNames: append([]string(nil), cfg.ResourceNames...),
		Verbs:         append([]string(nil), cfg.Verbs...),
	}, nil
}
