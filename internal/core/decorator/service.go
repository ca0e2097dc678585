package decorator

import (
	"kgen/internal/core/ordering"
	"kgen/internal/core/resource"

	corev1 "k8s.io/api/core/v1"
)

func isCoreService(r *resource.Resource) bool {
	return r.Kind() == "Service" && r.APIVersion() == "v1"
}

// AddServicePortDecorator adds or replaces a port of a core Service.
type AddServicePortDecorator struct {
	Scope
	Port corev1.ServicePort
}

func (d AddServicePortDecorator) Tag() string                 { return AddServicePortTag }
func (d AddServicePortDecorator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (d AddServicePortDecorator) Visit(r *resource.Resource) error {
	if !isCoreService(r) {
		return nil
	}
	return r.AddServicePort(d.Port)
}

// ApplyServiceTypeDecorator sets spec.type of a core Service. Node ports are
// dropped unless the type allocates them.
type ApplyServiceTypeDecorator struct {
	Scope
	Type corev1.ServiceType
}

func (d ApplyServiceTypeDecorator) Tag() string { return ApplyServiceTypeTag }

func (d ApplyServiceTypeDecorator) Ordering() ordering.Ordering {
	return ordering.Ordering{After: []string{AddServicePortTag}}
}

func (d ApplyServiceTypeDecorator) Visit(r *resource.Resource) error {
	if !isCoreService(r) {
		return nil
	}
	if err := r.SetField(string(d.Type), "spec", "type"); err != nil {
		return err
	}
	if d.Type == corev1.ServiceTypeNodePort || d.Type == corev1.ServiceTypeLoadBalancer {
		return nil
	}
	value, ok := r.Field("spec", "ports")
	if !ok {
		return nil
	}
	ports, _ := value.([]interface{})
	for _, p := range ports {
		if port, ok := p.(map[string]interface{}); ok {
			delete(port, "nodePort")
		}
	}
	return r.SetField(ports, "spec", "ports")
}
