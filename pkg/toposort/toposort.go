// Package toposort orders named computations by their declared
// dependencies. It backs transform pipelines, where one derived variable
// may read the output of another and cycles are a user error.
package toposort

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrCycle is returned when the dependency graph is not a DAG.
var ErrCycle = errors.New("dependency cycle")

// Graph is a small directed dependency graph over string names. Nodes are
// added explicitly; edges may reference nodes never added, which sort
// treats as free (already satisfied) dependencies.
type Graph struct {
	nodes map[string][]string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: map[string][]string{}}
}

// AddNode registers name with no dependencies. Re-adding is a no-op.
func (g *Graph) AddNode(name string) {
	if _, ok := g.nodes[name]; !ok {
		g.nodes[name] = nil
	}
}

// AddEdge declares that name depends on dep: dep sorts before name.
func (g *Graph) AddEdge(name, dep string) {
	g.AddNode(name)
	g.nodes[name] = append(g.nodes[name], dep)
}

// Len reports the number of registered nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Sort returns the registered names in dependency order. Ties break by
// name, so the order is deterministic regardless of insertion order.
func (g *Graph) Sort() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)

	state := map[string]int{}
	order := make([]string, 0, len(g.nodes))

	var visit func(name string) error

	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w through %q", ErrCycle, name)
		}

		state[name] = visiting

		for _, dep := range g.nodes[name] {
			if _, known := g.nodes[dep]; !known {
				continue
			}

			if err := visit(dep); err != nil {
				return err
			}
		}

		state[name] = done
		order = append(order, name)

		return nil
	}

	for _, name := range slices.Sorted(maps.Keys(g.nodes)) {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	return order, nil
}
