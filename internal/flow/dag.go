package flow

import (
	"errors"
	"fmt"
	"sync"
)

// ErrCycle is returned when the connections between cards form a cycle.
var ErrCycle = errors.New("cycle detected")

// Graph is a DAG of card ids. All operations on the graph are
// concurrency-safe.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*vertex
	// order records insertion order; topological ties are broken by it.
	order []string
}

type vertex struct {
	id    string
	index int
	// deps holds the vertices this one depends on (predecessors).
	deps map[string]*vertex
	// dependents holds the vertices that depend on this one (successors).
	dependents map[string]*vertex
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*vertex)}
}

// AddNode adds a vertex. Adding an existing id does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &vertex{
		id:         id,
		index:      len(g.order),
		deps:       make(map[string]*vertex),
		dependents: make(map[string]*vertex),
	}
	g.order = append(g.order, id)
}

// AddEdge records that toID depends on fromID.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	from, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	to, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}
	to.deps[fromID] = from
	from.dependents[toID] = to
	return nil
}

// Dependencies returns the ids id depends on, in insertion order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	v, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return g.sorted(v.deps), nil
}

// Dependents returns the ids that depend on id, in insertion order.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	v, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return g.sorted(v.dependents), nil
}

func (g *Graph) sorted(set map[string]*vertex) []string {
	out := make([]string, 0, len(set))
	for _, id := range g.order {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// DetectCycles returns an error wrapping ErrCycle naming a vertex on the
// first cycle found.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// permanent: fully visited; temporary: on the current DFS path.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(v *vertex) error
	visit = func(v *vertex) error {
		if permanent[v.id] {
			return nil
		}
		if temporary[v.id] {
			return fmt.Errorf("%w involving node '%s'", ErrCycle, v.id)
		}
		temporary[v.id] = true
		for _, id := range g.sorted(v.dependents) {
			if err := visit(g.nodes[id]); err != nil {
				return err
			}
		}
		delete(temporary, v.id)
		permanent[v.id] = true
		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}
	return nil
}

// TopologicalOrder returns every id such that each comes after all of its
// dependencies. Among ids that are ready at the same time the one added
// first goes first.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	pending := make(map[string]int, len(g.nodes))
	for id, v := range g.nodes {
		pending[id] = len(v.deps)
	}

	out := make([]string, 0, len(g.order))
	done := make(map[string]bool, len(g.order))
	for len(out) < len(g.order) {
		next := ""
		for _, id := range g.order {
			if !done[id] && pending[id] == 0 {
				next = id
				break
			}
		}
		if next == "" {
			return nil, fmt.Errorf("%w: %d nodes cannot be ordered", ErrCycle, len(g.order)-len(out))
		}
		done[next] = true
		out = append(out, next)
		for id := range g.nodes[next].dependents {
			pending[id]--
		}
	}
	return out, nil
}
