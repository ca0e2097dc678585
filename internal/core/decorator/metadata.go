package decorator

import (
	"kgen/internal/core/ordering"
	"kgen/internal/core/resource"
)

// AddLabelDecorator adds a label to the resource and, on workloads, to the pod template.
type AddLabelDecorator struct {
	Scope
	Key   string
	Value string
}

func (d AddLabelDecorator) Tag() string                 { return AddLabelTag }
func (d AddLabelDecorator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (d AddLabelDecorator) Visit(r *resource.Resource) error {
	if err := r.AddLabel(d.Key, d.Value); err != nil {
		return err
	}
	if r.IsWorkload() {
		return r.AddPodTemplateLabel(d.Key, d.Value)
	}
	return nil
}

// AddAnnotationDecorator adds an annotation to the resource metadata.
type AddAnnotationDecorator struct {
	Scope
	Key   string
	Value string
}

func (d AddAnnotationDecorator) Tag() string                 { return AddAnnotationTag }
func (d AddAnnotationDecorator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (d AddAnnotationDecorator) Visit(r *resource.Resource) error {
	return r.AddAnnotation(d.Key, d.Value)
}

// AddToSelectorDecorator adds a label to the selector of workloads and Services.
// Resources without a selector are left alone.
type AddToSelectorDecorator struct {
	Scope
	Key   string
	Value string
}

func (d AddToSelectorDecorator) Tag() string                 { return AddToSelectorTag }
func (d AddToSelectorDecorator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (d AddToSelectorDecorator) Visit(r *resource.Resource) error {
	if _, err := r.SelectorPath(); err != nil {
		return nil
	}
	if r.IsWorkload() {
		if err := r.AddPodTemplateLabel(d.Key, d.Value); err != nil {
			return err
		}
	}
	return r.AddSelectorLabel(d.Key, d.Value)
}

// RemoveFromSelectorDecorator strips a label from the selector, leaving the
// resource and pod template labels in place.
type RemoveFromSelectorDecorator struct {
	Scope
	Key string
}

func (d RemoveFromSelectorDecorator) Tag() string { return RemoveFromSelectorTag }

func (d RemoveFromSelectorDecorator) Ordering() ordering.Ordering {
	return ordering.Ordering{After: []string{AddLabelTag, AddToSelectorTag}}
}

func (d RemoveFromSelectorDecorator) Visit(r *resource.Resource) error {
	if _, err := r.SelectorPath(); err != nil {
		return nil
	}
	return r.RemoveSelectorLabel(d.Key)
}

// ApplyNamespaceDecorator sets the namespace of namespaced resources.
type ApplyNamespaceDecorator struct {
	Scope
	Namespace string
}

func (d ApplyNamespaceDecorator) Tag() string                 { return ApplyNamespaceTag }
func (d ApplyNamespaceDecorator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (d ApplyNamespaceDecorator) Visit(r *resource.Resource) error {
	if resource.ClusterScoped(r.Kind()) {
		return nil
	}
	return r.SetNamespace(d.Namespace)
}
