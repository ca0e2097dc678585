package ordering

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Vertex is a node of a DirectedAcyclicGraph. Order is the tie-breaker used when
// several vertices are ready at the same time; lower values come first.
type Vertex[K comparable] struct {
	ID        K
	Order     int
	DependsOn map[K]struct{}
}

// DirectedAcyclicGraph keeps dependencies between vertices and refuses edges that
// would close a cycle.
type DirectedAcyclicGraph[K comparable] struct {
	Vertices map[K]*Vertex[K]
}

func NewDirectedAcyclicGraph[K comparable]() *DirectedAcyclicGraph[K] {
	return &DirectedAcyclicGraph[K]{
		Vertices: make(map[K]*Vertex[K]),
	}
}

// CycleError is returned when a dependency would make the graph cyclic.
// Cycle starts and ends with the same vertex.
type CycleError[K comparable] struct {
	Cycle []K
}

func (e *CycleError[K]) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, k := range e.Cycle {
		parts[i] = fmt.Sprint(k)
	}
	return fmt.Sprintf("graph contains a cycle: %s", strings.Join(parts, " -> "))
}

// AsCycleError returns err as a *CycleError[K], or nil if it is not one.
func AsCycleError[K comparable](err error) *CycleError[K] {
	var ce *CycleError[K]
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

func (d *DirectedAcyclicGraph[K]) AddVertex(id K, order int) error {
	if _, exists := d.Vertices[id]; exists {
		return fmt.Errorf("vertex %v already exists", id)
	}
	d.Vertices[id] = &Vertex[K]{
		ID:        id,
		Order:     order,
		DependsOn: make(map[K]struct{}),
	}
	return nil
}

// AddDependencies records that id must come after every vertex in deps.
// The graph is left unchanged when an error is returned.
func (d *DirectedAcyclicGraph[K]) AddDependencies(id K, deps []K) error {
	vertex, ok := d.Vertices[id]
	if !ok {
		return fmt.Errorf("vertex %v not found", id)
	}

	var added []K
	for _, dep := range deps {
		if dep == id {
			return fmt.Errorf("vertex %v cannot depend on itself", id)
		}
		if _, ok := d.Vertices[dep]; !ok {
			return fmt.Errorf("dependency %v of vertex %v not found", dep, id)
		}
		if _, exists := vertex.DependsOn[dep]; !exists {
			vertex.DependsOn[dep] = struct{}{}
			added = append(added, dep)
		}
	}

	if cycle := d.findCycle(); cycle != nil {
		for _, dep := range added {
			delete(vertex.DependsOn, dep)
		}
		return &CycleError[K]{Cycle: cycle}
	}
	return nil
}

func (d *DirectedAcyclicGraph[K]) hasCycle() (bool, []K) {
	cycle := d.findCycle()
	return cycle != nil, cycle
}

// sortedIDs returns vertex ids by Order so traversals are reproducible.
func (d *DirectedAcyclicGraph[K]) sortedIDs() []K {
	ids := make([]K, 0, len(d.Vertices))
	for id := range d.Vertices {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b K) int {
		return d.Vertices[a].Order - d.Vertices[b].Order
	})
	return ids
}

func (d *DirectedAcyclicGraph[K]) findCycle() []K {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[K]int, len(d.Vertices))
	var stack []K

	var visit func(id K) []K
	visit = func(id K) []K {
		state[id] = visiting
		stack = append(stack, id)

		deps := make([]K, 0, len(d.Vertices[id].DependsOn))
		for dep := range d.Vertices[id].DependsOn {
			deps = append(deps, dep)
		}
		slices.SortFunc(deps, func(a, b K) int {
			return d.Vertices[a].Order - d.Vertices[b].Order
		})

		for _, dep := range deps {
			switch state[dep] {
			case visiting:
				start := slices.Index(stack, dep)
				cycle := slices.Clone(stack[start:])
				// stack follows DependsOn edges; reverse it so the cycle reads in
				// execution order (dependency first).
				slices.Reverse(cycle)
				return append(cycle, cycle[0])
			case unvisited:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = done
		return nil
	}

	for _, id := range d.sortedIDs() {
		if state[id] == unvisited {
			if cycle := visit(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// TopologicalSort returns the vertices so that every vertex follows its
// dependencies. Among the vertices whose dependencies are satisfied, the one with
// the lowest Order is emitted first.
func (d *DirectedAcyclicGraph[K]) TopologicalSort() ([]K, error) {
	if cycle := d.findCycle(); cycle != nil {
		return nil, &CycleError[K]{Cycle: cycle}
	}

	remaining := make(map[K]int, len(d.Vertices))
	dependents := make(map[K][]K, len(d.Vertices))
	for id, v := range d.Vertices {
		remaining[id] = len(v.DependsOn)
		for dep := range v.DependsOn {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var ready []K
	for _, id := range d.sortedIDs() {
		if remaining[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]K, 0, len(d.Vertices))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, dependent := range dependents[next] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				ready = d.insertByOrder(ready, dependent)
			}
		}
	}

	return order, nil
}

func (d *DirectedAcyclicGraph[K]) insertByOrder(ready []K, id K) []K {
	order := d.Vertices[id].Order
	i, _ := slices.BinarySearchFunc(ready, order, func(k K, target int) int {
		return d.Vertices[k].Order - target
	})
	return slices.Insert(ready, i, id)
}
