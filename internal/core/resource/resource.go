package resource

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/ohler55/ojg/jp"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/sets"
)

var (
	ErrNotWorkload       = errors.New("resource has no pod template")
	ErrNoReplicas        = errors.New("resource kind has no replica count")
	ErrNoSelector        = errors.New("resource kind has no label selector")
	ErrContainerNotFound = errors.New("container not found")
	ErrContainerExists   = errors.New("container already exists")
)

// ProbeKind names the container field a probe is written to.
type ProbeKind string

const (
	LivenessProbe  ProbeKind = "livenessProbe"
	ReadinessProbe ProbeKind = "readinessProbe"
	StartupProbe   ProbeKind = "startupProbe"
)

type Resource struct {
	obj   *unstructured.Unstructured
	model *Model
}

func (r *Resource) Kind() string       { return r.obj.GetKind() }
func (r *Resource) Name() string       { return r.obj.GetName() }
func (r *Resource) APIVersion() string { return r.obj.GetAPIVersion() }
func (r *Resource) Namespace() string  { return r.obj.GetNamespace() }
func (r *Resource) Key() Key           { return Key{Kind: r.Kind(), Name: r.Name()} }
func (r *Resource) String() string     { return r.Key().String() }

func (r *Resource) Labels() map[string]string      { return r.obj.GetLabels() }
func (r *Resource) Annotations() map[string]string { return r.obj.GetAnnotations() }

// Object returns a deep copy of the underlying document.
func (r *Resource) Object() map[string]interface{} {
	return deepCopy(r.obj.Object)
}

// Field returns a copy of the value at fields.
func (r *Resource) Field(fields ...string) (interface{}, bool) {
	v, found, err := unstructured.NestedFieldCopy(r.obj.Object, fields...)
	if err != nil || !found {
		return nil, false
	}
	return v, true
}

// Query evaluates a JSONPath expression against the document.
func (r *Resource) Query(path string) ([]interface{}, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", path, err)
	}
	return x.Get(r.obj.Object), nil
}

func (r *Resource) groupKind() schema.GroupKind {
	gv, err := schema.ParseGroupVersion(r.APIVersion())
	if err != nil {
		return schema.GroupKind{Kind: r.Kind()}
	}
	return schema.GroupKind{Group: gv.Group, Kind: r.Kind()}
}

// IsWorkload reports whether the resource carries a pod template.
func (r *Resource) IsWorkload() bool {
	_, ok := workloads[r.groupKind()]
	return ok
}

// HasReplicas reports whether the resource kind has a spec.replicas field.
func (r *Resource) HasReplicas() bool {
	return workloads[r.groupKind()].replicas
}

// PodSpecPath returns the path of the pod spec, or nil if the resource is not a workload.
func (r *Resource) PodSpecPath() []string {
	w, ok := workloads[r.groupKind()]
	if !ok {
		return nil
	}
	return join(w.podTemplate, "spec")
}

func (r *Resource) writable() error {
	if r.model != nil && r.model.sealed {
		return ErrSealed
	}
	return nil
}

func (r *Resource) SetAPIVersion(apiVersion string) error {
	if err := r.writable(); err != nil {
		return err
	}
	r.obj.SetAPIVersion(apiVersion)
	return nil
}

func (r *Resource) SetNamespace(namespace string) error {
	if err := r.writable(); err != nil {
		return err
	}
	r.obj.SetNamespace(namespace)
	return nil
}

func (r *Resource) AddLabel(key, value string) error {
	return r.setStringMapEntry(key, value, "metadata", "labels")
}

func (r *Resource) RemoveLabel(key string) error {
	return r.RemoveField("metadata", "labels", key)
}

func (r *Resource) AddAnnotation(key, value string) error {
	return r.setStringMapEntry(key, value, "metadata", "annotations")
}

func (r *Resource) AddPodTemplateLabel(key, value string) error {
	path, err := r.podTemplatePath()
	if err != nil {
		return err
	}
	return r.setStringMapEntry(key, value, join(path, "metadata", "labels")...)
}

func (r *Resource) AddPodTemplateAnnotation(key, value string) error {
	path, err := r.podTemplatePath()
	if err != nil {
		return err
	}
	return r.setStringMapEntry(key, value, join(path, "metadata", "annotations")...)
}

// SelectorPath returns the label selector path of a workload or Service.
func (r *Resource) SelectorPath() ([]string, error) {
	if r.Kind() == "Service" && r.groupKind().Group == "" {
		return []string{"spec", "selector"}, nil
	}
	w, ok := workloads[r.groupKind()]
	if !ok || w.selector == nil {
		return nil, ErrNoSelector
	}
	return w.selector, nil
}

func (r *Resource) AddSelectorLabel(key, value string) error {
	path, err := r.SelectorPath()
	if err != nil {
		return err
	}
	return r.setStringMapEntry(key, value, path...)
}

func (r *Resource) RemoveSelectorLabel(key string) error {
	path, err := r.SelectorPath()
	if err != nil {
		return err
	}
	return r.RemoveField(join(path, key)...)
}

// SelectorLabels returns the current selector, or nil if there is none.
func (r *Resource) SelectorLabels() map[string]string {
	path, err := r.SelectorPath()
	if err != nil {
		return nil
	}
	labels, _, _ := unstructured.NestedStringMap(r.obj.Object, path...)
	return labels
}

func (r *Resource) SetReplicas(replicas int32) error {
	if !r.HasReplicas() {
		return ErrNoReplicas
	}
	return r.SetField(int64(replicas), "spec", "replicas")
}

// Replicas returns spec.replicas and whether it is set.
func (r *Resource) Replicas() (int32, bool) {
	v, found, err := unstructured.NestedInt64(r.obj.Object, "spec", "replicas")
	if err != nil || !found {
		return 0, false
	}
	return int32(v), true
}

// SetField writes value at fields. Typed values (structs, typed maps and slices)
// are converted to their unstructured form first.
func (r *Resource) SetField(value interface{}, fields ...string) error {
	if err := r.writable(); err != nil {
		return err
	}
	normalized, err := toUnstructured(value)
	if err != nil {
		return fmt.Errorf("converting value for %v: %w", fields, err)
	}
	return unstructured.SetNestedField(r.obj.Object, normalized, fields...)
}

func (r *Resource) RemoveField(fields ...string) error {
	if err := r.writable(); err != nil {
		return err
	}
	unstructured.RemoveNestedField(r.obj.Object, fields...)
	return nil
}

func (r *Resource) UpsertContainer(container corev1.Container) error {
	return r.upsertPodSpecEntry(container, "name", "containers")
}

func (r *Resource) UpsertInitContainer(container corev1.Container) error {
	return r.upsertPodSpecEntry(container, "name", "initContainers")
}

func (r *Resource) AddVolume(volume corev1.Volume) error {
	return r.upsertPodSpecEntry(volume, "name", "volumes")
}

// AddHostAlias adds alias, merging its hostnames into an existing entry for the
// same IP.
func (r *Resource) AddHostAlias(alias corev1.HostAlias) error {
	path, err := r.podSpecPath()
	if err != nil {
		return err
	}
	existing, _, err := unstructured.NestedSlice(r.obj.Object, join(path, "hostAliases")...)
	if err != nil {
		return err
	}
	if i := indexByKey(existing, "ip", alias.IP); i >= 0 {
		entry, _ := existing[i].(map[string]interface{})
		hostnames, _, _ := unstructured.NestedStringSlice(entry, "hostnames")
		alias.Hostnames = mergeStrings(hostnames, alias.Hostnames)
	}
	return r.upsertPodSpecEntry(alias, "ip", "hostAliases")
}

// mergeStrings appends the values of add missing from base, keeping order.
func mergeStrings(base, add []string) []string {
	out := append([]string{}, base...)
	seen := sets.New(base...)
	for _, v := range add {
		if !seen.Has(v) {
			seen.Insert(v)
			out = append(out, v)
		}
	}
	return out
}

func (r *Resource) AddImagePullSecret(name string) error {
	return r.upsertPodSpecEntry(corev1.LocalObjectReference{Name: name}, "name", "imagePullSecrets")
}

func (r *Resource) SetNodeSelector(key, value string) error {
	path, err := r.podSpecPath()
	if err != nil {
		return err
	}
	return r.setStringMapEntry(key, value, join(path, "nodeSelector")...)
}

func (r *Resource) SetServiceAccount(name string) error {
	path, err := r.podSpecPath()
	if err != nil {
		return err
	}
	return r.SetField(name, join(path, "serviceAccountName")...)
}

// Containers returns the names of the main containers in order.
func (r *Resource) Containers() []string {
	path, err := r.podSpecPath()
	if err != nil {
		return nil
	}
	list, _, _ := unstructured.NestedSlice(r.obj.Object, join(path, "containers")...)
	var names []string
	for _, item := range list {
		if m, ok := item.(map[string]interface{}); ok {
			if name, ok := m["name"].(string); ok {
				names = append(names, name)
			}
		}
	}
	return names
}

// Container returns a copy of the named main container.
func (r *Resource) Container(name string) (map[string]interface{}, bool) {
	path, err := r.podSpecPath()
	if err != nil {
		return nil, false
	}
	list, _, _ := unstructured.NestedSlice(r.obj.Object, join(path, "containers")...)
	if i := indexByKey(list, "name", name); i >= 0 {
		return list[i].(map[string]interface{}), true
	}
	return nil, false
}

func (r *Resource) SetContainerImage(container, image string) error {
	return r.updateContainer(container, func(c map[string]interface{}) error {
		c["image"] = image
		return nil
	})
}

func (r *Resource) SetContainerPullPolicy(container string, policy corev1.PullPolicy) error {
	return r.updateContainer(container, func(c map[string]interface{}) error {
		c["imagePullPolicy"] = string(policy)
		return nil
	})
}

func (r *Resource) AddVolumeMount(container string, mount corev1.VolumeMount) error {
	return r.upsertContainerEntry(container, mount, "mountPath", "volumeMounts")
}

func (r *Resource) AddContainerPort(container string, port corev1.ContainerPort) error {
	return r.upsertContainerEntry(container, port, "name", "ports")
}

func (r *Resource) AddEnvVar(container string, env corev1.EnvVar) error {
	return r.upsertContainerEntry(container, env, "name", "env")
}

func (r *Resource) SetProbe(container string, kind ProbeKind, probe corev1.Probe) error {
	value, err := toUnstructured(probe)
	if err != nil {
		return err
	}
	return r.updateContainer(container, func(c map[string]interface{}) error {
		c[string(kind)] = value
		return nil
	})
}

func (r *Resource) SetResources(container string, resources corev1.ResourceRequirements) error {
	value, err := toUnstructured(resources)
	if err != nil {
		return err
	}
	return r.updateContainer(container, func(c map[string]interface{}) error {
		c["resources"] = value
		return nil
	})
}

// AddServicePort adds or replaces a port of a core Service by name.
func (r *Resource) AddServicePort(port corev1.ServicePort) error {
	return r.upsertEntry(port, "name", "spec", "ports")
}

func (r *Resource) podTemplatePath() ([]string, error) {
	w, ok := workloads[r.groupKind()]
	if !ok {
		return nil, ErrNotWorkload
	}
	return w.podTemplate, nil
}

func (r *Resource) podSpecPath() ([]string, error) {
	path := r.PodSpecPath()
	if path == nil {
		return nil, ErrNotWorkload
	}
	return path, nil
}

func (r *Resource) setStringMapEntry(key, value string, fields ...string) error {
	if err := r.writable(); err != nil {
		return err
	}
	m, _, err := unstructured.NestedMap(r.obj.Object, fields...)
	if err != nil {
		return err
	}
	if m == nil {
		m = map[string]interface{}{}
	}
	m[key] = value
	return unstructured.SetNestedMap(r.obj.Object, m, fields...)
}

func (r *Resource) upsertPodSpecEntry(entry interface{}, key string, field string) error {
	path, err := r.podSpecPath()
	if err != nil {
		return err
	}
	return r.upsertEntry(entry, key, join(path, field)...)
}

// upsertEntry replaces the list item whose key matches entry's key, or appends
// entry when there is none.
func (r *Resource) upsertEntry(entry interface{}, key string, fields ...string) error {
	if err := r.writable(); err != nil {
		return err
	}
	value, err := toUnstructured(entry)
	if err != nil {
		return err
	}
	item, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("list entry for %v is not an object", fields)
	}
	list, _, err := unstructured.NestedSlice(r.obj.Object, fields...)
	if err != nil {
		return err
	}
	list = upsert(list, key, item)
	return unstructured.SetNestedSlice(r.obj.Object, list, fields...)
}

func (r *Resource) upsertContainerEntry(container string, entry interface{}, key string, field string) error {
	value, err := toUnstructured(entry)
	if err != nil {
		return err
	}
	item, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("container %s entry is not an object", field)
	}
	return r.updateContainer(container, func(c map[string]interface{}) error {
		list, _ := c[field].([]interface{})
		c[field] = upsert(list, key, item)
		return nil
	})
}

func (r *Resource) updateContainer(name string, update func(c map[string]interface{}) error) error {
	if err := r.writable(); err != nil {
		return err
	}
	path, err := r.podSpecPath()
	if err != nil {
		return err
	}
	fields := join(path, "containers")
	list, _, err := unstructured.NestedSlice(r.obj.Object, fields...)
	if err != nil {
		return err
	}
	i := indexByKey(list, "name", name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrContainerNotFound, name)
	}
	container := list[i].(map[string]interface{})
	if err := update(container); err != nil {
		return err
	}
	list[i] = container
	return unstructured.SetNestedSlice(r.obj.Object, list, fields...)
}

func upsert(list []interface{}, key string, item map[string]interface{}) []interface{} {
	if i := indexByKey(list, key, item[key]); i >= 0 {
		list[i] = item
		return list
	}
	return append(list, item)
}

func indexByKey(list []interface{}, key string, value interface{}) int {
	for i, existing := range list {
		m, ok := existing.(map[string]interface{})
		if !ok {
			continue
		}
		if v, ok := m[key]; ok && v == value {
			return i
		}
	}
	return -1
}

// toUnstructured converts value into the JSON-compatible types unstructured
// documents hold.
func toUnstructured(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case nil, string, bool, int64, float64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float32:
		return float64(v), nil
	case map[string]string:
		out := make(map[string]interface{}, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, nil
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			converted, err := toUnstructured(item)
			if err != nil {
				return nil, err
			}
			out[k] = converted
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			converted, err := toUnstructured(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
	case reflect.Slice:
		out := make([]interface{}, rv.Len())
		for i := range out {
			converted, err := toUnstructured(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case reflect.String:
		return rv.String(), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	return runtime.DefaultUnstructuredConverter.ToUnstructured(ptr.Interface())
}
