// Package resource holds the in-memory model that decorators mutate.
//
// Every resource is addressed by (kind, name) and backed by an unstructured
// document. Decorators change it through named accessors (labels, replicas,
// containers, volumes) instead of editing the tree directly, so two decorators
// that write the same logical field always write the same path.
package resource

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

// ErrSealed is returned by mutating accessors once the model has been emitted.
var ErrSealed = errors.New("resource model is sealed")

type Key struct {
	Kind string
	Name string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Kind, k.Name)
}

// Selector picks resources from a Model. An empty Kind or Name matches anything.
// Required marks selectors whose decorator must find at least one resource.
type Selector struct {
	Kind     string
	Name     string
	Required bool
}

func (s Selector) Matches(r *Resource) bool {
	if s.Kind != "" && s.Kind != r.Kind() {
		return false
	}
	if s.Name != "" && s.Name != r.Name() {
		return false
	}
	return true
}

func (s Selector) String() string {
	kind, name := s.Kind, s.Name
	if kind == "" {
		kind = "*"
	}
	if name == "" {
		name = "*"
	}
	return fmt.Sprintf("%s/%s", kind, name)
}

// Model is the set of resources produced by one synthesis run. It is not safe
// for concurrent use; each run owns its own Model.
type Model struct {
	resources map[Key]*Resource
	order     []Key
	sealed    bool
}

func NewModel() *Model {
	return &Model{
		resources: make(map[Key]*Resource),
	}
}

func (m *Model) Get(kind, name string) *Resource {
	return m.resources[Key{Kind: kind, Name: name}]
}

// GetOrCreate returns the resource for (kind, name), creating it with the default
// apiVersion for kind if it does not exist yet. Repeated calls return the same
// handle. Creating a resource in a sealed model panics.
func (m *Model) GetOrCreate(kind, name string) *Resource {
	return m.Create(APIVersionForKind(kind), kind, name)
}

// Create is GetOrCreate with an explicit apiVersion. The apiVersion is only used
// when the resource does not exist yet.
func (m *Model) Create(apiVersion, kind, name string) *Resource {
	key := Key{Kind: kind, Name: name}
	if r, ok := m.resources[key]; ok {
		return r
	}
	if m.sealed {
		panic(fmt.Sprintf("creating %s in a sealed resource model", key))
	}

	obj := &unstructured.Unstructured{Object: map[string]interface{}{}}
	obj.SetAPIVersion(apiVersion)
	obj.SetKind(kind)
	obj.SetName(name)

	r := &Resource{obj: obj, model: m}
	m.resources[key] = r
	m.order = append(m.order, key)
	return r
}

// All returns every resource in creation order.
func (m *Model) All() []*Resource {
	out := make([]*Resource, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, m.resources[key])
	}
	return out
}

// Select returns the resources matching s in creation order.
func (m *Model) Select(s Selector) []*Resource {
	if s.Kind != "" && s.Name != "" {
		if r := m.Get(s.Kind, s.Name); r != nil {
			return []*Resource{r}
		}
		return nil
	}
	var out []*Resource
	for _, key := range m.order {
		if r := m.resources[key]; s.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *Model) Len() int {
	return len(m.order)
}

// Seal makes the model read-only.
func (m *Model) Seal() {
	m.sealed = true
}

func (m *Model) Sealed() bool {
	return m.sealed
}

// Documents returns deep copies of every resource document in creation order.
func (m *Model) Documents() []map[string]interface{} {
	docs := make([]map[string]interface{}, 0, len(m.order))
	for _, r := range m.All() {
		docs = append(docs, r.Object())
	}
	return docs
}

func deepCopy(obj map[string]interface{}) map[string]interface{} {
	return runtime.DeepCopyJSON(obj)
}
