// Package ordering computes the application order of mutation operations.
//
// Operations declare constraints against operation tags rather than against
// instances: "run before every ApplyReplicasDecorator" holds for all instances of
// that tag, whatever resource they target. Supersession is expressed as an
// ordering too: an operation that supersedes another runs after it, so its
// write is the one left in the field they share.
package ordering

import (
	"errors"
	"fmt"
	"slices"

	"kgen/internal/core/domain"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Ordering is the declared position of an operation relative to other operation tags.
type Ordering struct {
	Before     []string
	After      []string
	Supersedes []string
}

// Operation is anything the resolver can order.
type Operation interface {
	Tag() string
	Ordering() Ordering
}

var errConflictingConstraints = errors.New("operation must run both before and after")

// Resolve returns ops in an order that satisfies every declared constraint.
// Operations with no relation between them keep their registration order.
func Resolve[T Operation](ops []T) ([]T, error) {
	graph := NewDirectedAcyclicGraph[int]()
	byTag := make(map[string][]int)
	for i, op := range ops {
		if err := graph.AddVertex(i, i); err != nil {
			return nil, err
		}
		byTag[op.Tag()] = append(byTag[op.Tag()], i)
	}

	deps := make(map[int]sets.Set[int], len(ops))
	addEdge := func(first, then int) {
		if deps[then] == nil {
			deps[then] = sets.New[int]()
		}
		deps[then].Insert(first)
	}

	for i, op := range ops {
		tag := op.Tag()
		o := op.Ordering()

		before := sets.New(o.Before...)
		runsAfter := sets.New(o.After...).Insert(o.Supersedes...)
		if conflict := before.Intersection(runsAfter); conflict.Len() > 0 {
			other := sets.List(conflict)[0]
			return nil, &domain.OrderingError{
				Tags: []string{tag, other, tag},
				Err:  fmt.Errorf("%w '%s'", errConflictingConstraints, other),
			}
		}

		for _, other := range sets.List(before) {
			if other == tag {
				continue
			}
			for _, j := range byTag[other] {
				addEdge(i, j)
			}
		}
		for _, other := range sets.List(runsAfter) {
			if other == tag {
				continue
			}
			for _, j := range byTag[other] {
				addEdge(j, i)
			}
		}
	}

	for i := range ops {
		if deps[i] == nil {
			continue
		}
		if err := graph.AddDependencies(i, sets.List(deps[i])); err != nil {
			if ce := AsCycleError[int](err); ce != nil {
				return nil, &domain.OrderingError{
					Tags: cycleTags(ops, ce.Cycle),
					Err:  errors.New("constraints form a cycle"),
				}
			}
			return nil, err
		}
	}

	order, err := graph.TopologicalSort()
	if err != nil {
		return nil, err
	}

	resolved := make([]T, len(order))
	for i, idx := range order {
		resolved[i] = ops[idx]
	}
	return resolved, nil
}

// Tags returns the tags of ops in order.
func Tags[T Operation](ops []T) []string {
	tags := make([]string, len(ops))
	for i, op := range ops {
		tags[i] = op.Tag()
	}
	return tags
}

func cycleTags[T Operation](ops []T, cycle []int) []string {
	var tags []string
	for _, idx := range cycle[:len(cycle)-1] {
		tag := ops[idx].Tag()
		if !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	return append(tags, tags[0])
}
