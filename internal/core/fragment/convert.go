package fragment

import (
	"kgen/internal/core/domain"

	"golang.org/x/sync/errgroup"
	corev1 "k8s.io/api/core/v1"
)

// Set holds every fragment derived from one configuration.
type Set struct {
	Volumes        []corev1.Volume
	Mounts         []corev1.VolumeMount
	Ports          []corev1.ContainerPort
	ServicePorts   []corev1.ServicePort
	Env            []corev1.EnvVar
	HostAliases    []corev1.HostAlias
	InitContainers []corev1.Container
	Sidecars       []corev1.Container
	NodeSelector   map[string]string
	Resources      corev1.ResourceRequirements
	Probes         map[string]corev1.Probe
}

// ConvertAll converts every fragment of cfg. The independent groups are converted
// concurrently; each writes only its own field of the result. When several groups
// fail, the error of the earliest group is returned.
func ConvertAll(cfg domain.Config) (*Set, error) {
	set := &Set{}
	groups := []func() error{
		func() error {
			volumes, err := Volumes(cfg)
			set.Volumes = volumes
			return err
		},
		func() error {
			for _, name := range domain.SortedKeys(cfg.Mounts) {
				m, err := Mount(name, cfg.Mounts[name])
				if err != nil {
					return err
				}
				set.Mounts = append(set.Mounts, m)
			}
			return nil
		},
		func() error {
			for _, name := range domain.SortedKeys(cfg.Ports) {
				p, err := Port(name, cfg.Ports[name])
				if err != nil {
					return err
				}
				sp, err := ServicePort(name, cfg.Ports[name])
				if err != nil {
					return err
				}
				set.Ports = append(set.Ports, p)
				set.ServicePorts = append(set.ServicePorts, sp)
			}
			return nil
		},
		func() error {
			for _, name := range domain.SortedKeys(cfg.Env) {
				e, err := EnvVar(name, cfg.Env[name])
				if err != nil {
					return err
				}
				set.Env = append(set.Env, e)
			}
			return nil
		},
		func() error {
			for _, name := range domain.SortedKeys(cfg.HostAliases) {
				h, err := HostAlias(name, cfg.HostAliases[name])
				if err != nil {
					return err
				}
				set.HostAliases = append(set.HostAliases, h)
			}
			return nil
		},
		func() error {
			for _, name := range domain.SortedKeys(cfg.InitContainers) {
				c, err := Container(name, cfg.InitContainers[name])
				if err != nil {
					return err
				}
				set.InitContainers = append(set.InitContainers, c)
			}
			for _, name := range domain.SortedKeys(cfg.Sidecars) {
				c, err := Container(name, cfg.Sidecars[name])
				if err != nil {
					return err
				}
				set.Sidecars = append(set.Sidecars, c)
			}
			return nil
		},
		func() error {
			if cfg.NodeSelector != nil {
				ns, err := NodeSelector(*cfg.NodeSelector)
				if err != nil {
					return err
				}
				set.NodeSelector = ns
			}
			r, err := Resources(cfg.Resources)
			set.Resources = r
			return err
		},
		func() error {
			probes := map[string]*domain.ProbeConfig{
				"livenessProbe":  cfg.LivenessProbe,
				"readinessProbe": cfg.ReadinessProbe,
				"startupProbe":   cfg.StartupProbe,
			}
			set.Probes = make(map[string]corev1.Probe)
			for _, field := range domain.SortedKeys(probes) {
				if probes[field] == nil {
					continue
				}
				p, err := Probe(field, *probes[field])
				if err != nil {
					return err
				}
				set.Probes[field] = p
			}
			return nil
		},
	}

	errs := make([]error, len(groups))
	var g errgroup.Group
	for i, group := range groups {
		g.Go(func() error {
			errs[i] = group()
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return set, nil
}
