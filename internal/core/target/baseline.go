package target

import (
	"fmt"

	"kgen/internal/core/domain"
	"kgen/internal/core/fragment"
	"kgen/internal/core/resource"

	autoscalingv2 "k8s.io/api/autoscaling/v2"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/utils/ptr"
)

// ServiceAccountName returns the service account the workload runs as, or "" when
// the project needs none. Roles without an explicit account get one named after
// the project.
func ServiceAccountName(cfg domain.Config) string {
	if cfg.RBAC.ServiceAccount != "" {
		return cfg.RBAC.ServiceAccount
	}
	if len(cfg.RBAC.Roles) > 0 {
		return cfg.Name
	}
	return ""
}

// Baseline creates the resources of one run: the primary workload of e plus the
// auxiliary resources cfg asks for. Fields that decorators own (labels, image,
// replicas, volumes) are left empty.
func Baseline(model *resource.Model, cfg domain.Config, e Entry) error {
	workload := model.Create(e.APIVersion, e.Kind, cfg.Name)
	if err := workload.UpsertContainer(corev1.Container{Name: cfg.Name}); err != nil {
		return err
	}
	if e.IsOpenShift() {
		triggers := []interface{}{map[string]interface{}{"type": "ConfigChange"}}
		if err := workload.SetField(triggers, "spec", "triggers"); err != nil {
			return err
		}
	}

	if len(cfg.Ports) > 0 && !e.IsKnative() {
		service := model.GetOrCreate("Service", cfg.Name)
		if err := service.SetField(string(corev1.ServiceTypeClusterIP), "spec", "type"); err != nil {
			return err
		}
	}

	if cfg.Ingress.Expose && !e.IsOpenShift() && !e.IsKnative() {
		if err := ingress(model, cfg); err != nil {
			return err
		}
	}
	if cfg.Route.Expose && e.IsOpenShift() {
		if err := route(model, cfg); err != nil {
			return err
		}
	}
	if cfg.Autoscaling.Enabled && !e.IsKnative() {
		if err := horizontalPodAutoscaler(model, cfg, e); err != nil {
			return err
		}
	}
	if err := rbac(model, cfg); err != nil {
		return err
	}
	return secrets(model, cfg)
}

// exposedPort returns the port name a route or ingress forwards to.
func exposedPort(cfg domain.Config, configured string) (string, error) {
	if configured != "" {
		if _, ok := cfg.Ports[configured]; !ok {
			return "", fmt.Errorf("target port '%s' is not a configured port", configured)
		}
		return configured, nil
	}
	names := domain.SortedKeys(cfg.Ports)
	if len(names) == 0 {
		return "", fmt.Errorf("no port to expose")
	}
	if _, ok := cfg.Ports["http"]; ok {
		return "http", nil
	}
	return names[0], nil
}

func ingress(model *resource.Model, cfg domain.Config) error {
	port, err := exposedPort(cfg, cfg.Ingress.TargetPort)
	if err != nil {
		return domain.NewConfigurationError("ingress.targetPort", "%v", err)
	}
	pathType := networkingv1.PathTypePrefix
	path := cfg.Ports[port].Path
	if path == "" {
		path = "/"
	}
	spec := networkingv1.IngressSpec{
		Rules: []networkingv1.IngressRule{{
			Host: cfg.Ingress.Host,
			IngressRuleValue: networkingv1.IngressRuleValue{
				HTTP: &networkingv1.HTTPIngressRuleValue{
					Paths: []networkingv1.HTTPIngressPath{{
						Path:     path,
						PathType: &pathType,
						Backend: networkingv1.IngressBackend{
							Service: &networkingv1.IngressServiceBackend{
								Name: cfg.Name,
								Port: networkingv1.ServiceBackendPort{Name: port},
							},
						},
					}},
				},
			},
		}},
	}
	if cfg.Ingress.IngressClassName != "" {
		spec.IngressClassName = ptr.To(cfg.Ingress.IngressClassName)
	}
	for _, secretName := range domain.SortedKeys(cfg.Ingress.TLS) {
		spec.TLS = append(spec.TLS, networkingv1.IngressTLS{
			SecretName: secretName,
			Hosts:      cfg.Ingress.TLS[secretName].Hosts,
		})
	}
	return model.GetOrCreate("Ingress", cfg.Name).SetField(spec, "spec")
}

func route(model *resource.Model, cfg domain.Config) error {
	port, err := exposedPort(cfg, cfg.Route.TargetPort)
	if err != nil {
		return domain.NewConfigurationError("route.targetPort", "%v", err)
	}
	spec := map[string]interface{}{
		"to": map[string]interface{}{
			"kind": "Service",
			"name": cfg.Name,
		},
		"port": map[string]interface{}{
			"targetPort": port,
		},
	}
	if cfg.Route.Host != "" {
		spec["host"] = cfg.Route.Host
	}
	if path := cfg.Ports[port].Path; path != "" {
		spec["path"] = path
	}
	return model.GetOrCreate("Route", cfg.Name).SetField(spec, "spec")
}

func utilizationMetric(name corev1.ResourceName, target int32) autoscalingv2.MetricSpec {
	return autoscalingv2.MetricSpec{
		Type: autoscalingv2.ResourceMetricSourceType,
		Resource: &autoscalingv2.ResourceMetricSource{
			Name: name,
			Target: autoscalingv2.MetricTarget{
				Type:               autoscalingv2.UtilizationMetricType,
				AverageUtilization: ptr.To(target),
			},
		},
	}
}

func horizontalPodAutoscaler(model *resource.Model, cfg domain.Config, e Entry) error {
	spec := autoscalingv2.HorizontalPodAutoscalerSpec{
		ScaleTargetRef: autoscalingv2.CrossVersionObjectReference{
			APIVersion: e.APIVersion,
			Kind:       e.Kind,
			Name:       cfg.Name,
		},
		MinReplicas: cfg.Autoscaling.MinReplicas,
		MaxReplicas: cfg.Autoscaling.MaxReplicas,
	}
	if cfg.Autoscaling.TargetCPUUtilization != nil {
		spec.Metrics = append(spec.Metrics, utilizationMetric(corev1.ResourceCPU, *cfg.Autoscaling.TargetCPUUtilization))
	}
	if cfg.Autoscaling.TargetMemoryUtilization != nil {
		spec.Metrics = append(spec.Metrics, utilizationMetric(corev1.ResourceMemory, *cfg.Autoscaling.TargetMemoryUtilization))
	}
	return model.GetOrCreate("HorizontalPodAutoscaler", cfg.Name).SetField(spec, "spec")
}

func rbac(model *resource.Model, cfg domain.Config) error {
	account := ServiceAccountName(cfg)
	if account == "" {
		return nil
	}
	model.GetOrCreate("ServiceAccount", account)

	for _, name := range domain.SortedKeys(cfg.RBAC.Roles) {
		role := cfg.RBAC.Roles[name]
		rules := make([]rbacv1.PolicyRule, 0, len(role.Rules))
		for i, r := range role.Rules {
			rule, err := fragment.PolicyRule(fmt.Sprintf("rbac.roles.%s.rules[%d]", name, i), r)
			if err != nil {
				return err
			}
			rules = append(rules, rule)
		}

		roleKind, bindingKind := "Role", "RoleBinding"
		if role.ClusterWide {
			roleKind, bindingKind = "ClusterRole", "ClusterRoleBinding"
		}
		if err := model.GetOrCreate(roleKind, name).SetField(rules, "rules"); err != nil {
			return err
		}

		binding := model.GetOrCreate(bindingKind, fmt.Sprintf("%s-%s", account, name))
		subjects := []rbacv1.Subject{{Kind: rbacv1.ServiceAccountKind, Name: account, Namespace: cfg.Namespace}}
		if err := binding.SetField(subjects, "subjects"); err != nil {
			return err
		}
		roleRef := rbacv1.RoleRef{APIGroup: rbacv1.GroupName, Kind: roleKind, Name: name}
		if err := binding.SetField(roleRef, "roleRef"); err != nil {
			return err
		}
	}
	return nil
}

func secrets(model *resource.Model, cfg domain.Config) error {
	for _, name := range domain.SortedKeys(cfg.Secrets) {
		s := cfg.Secrets[name]
		secretType := s.Type
		if secretType == "" {
			secretType = string(corev1.SecretTypeOpaque)
		}
		secret := model.GetOrCreate("Secret", name)
		if err := secret.SetField(secretType, "type"); err != nil {
			return err
		}
		if err := secret.SetField(s.Data, "stringData"); err != nil {
			return err
		}
	}
	return nil
}
