package dag

import (
	"container/heap"
	"errors"

	"github.com/vk/taskgrid/internal/task"
)

// New creates a graph over tasks. Nothing is validated yet. If two tasks
// share a name the first one wins; the registry prevents that case.
func New(tasks []*task.Task) *Graph {
	g := &Graph{nodes: make(map[string]*node, len(tasks))}
	for _, t := range tasks {
		if _, exists := g.nodes[t.Key()]; exists {
			continue
		}
		n := &node{task: t, deps: t.Dependencies()}
		g.nodes[t.Key()] = n
		g.ordered = append(g.ordered, n)
	}
	return g
}

// Resolve returns the targets and everything they transitively depend on,
// dependencies first. Repeated or differently cased targets are collapsed.
func (g *Graph) Resolve(targets ...string) ([]*task.Task, error) {
	if len(targets) == 0 {
		return nil, errors.New("no targets to resolve")
	}

	roots := make([]*node, 0, len(targets))
	seen := make(map[*node]struct{}, len(targets))
	for _, name := range targets {
		n, ok := g.nodes[task.Key(name)]
		if !ok {
			return nil, &UnknownTaskError{Name: name}
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		roots = append(roots, n)
	}

	colors := make(map[*node]color)
	var reachable []*node
	for _, root := range roots {
		if err := g.visit(root, colors, &reachable); err != nil {
			return nil, err
		}
	}
	return g.order(reachable), nil
}

// Validate checks every task in the graph, not just those reachable from a
// target.
func (g *Graph) Validate() error {
	colors := make(map[*node]color)
	var all []*node
	for _, n := range g.ordered {
		if err := g.visit(n, colors, &all); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of tasks in the graph.
func (g *Graph) Len() int { return len(g.ordered) }

// visit runs an iterative depth-first search from root. Nodes turn black in
// post-order and are appended to out.
func (g *Graph) visit(root *node, colors map[*node]color, out *[]*node) error {
	if colors[root] != white {
		return nil
	}

	type frame struct {
		n    *node
		next int
	}
	stack := []frame{{n: root}}
	colors[root] = gray

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.n.deps) {
			colors[top.n] = black
			*out = append(*out, top.n)
			stack = stack[:len(stack)-1]
			continue
		}

		depName := top.n.deps[top.next]
		top.next++

		dep, ok := g.nodes[task.Key(depName)]
		if !ok {
			return &UnknownTaskError{Name: depName, RequiredBy: top.n.task.Name()}
		}

		switch colors[dep] {
		case gray:
			var chain []string
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].n == dep {
					for _, f := range stack[i:] {
						chain = append(chain, f.n.task.Name())
					}
					break
				}
			}
			chain = append(chain, dep.task.Name())
			return &CyclicDependencyError{Chain: chain}
		case white:
			colors[dep] = gray
			stack = append(stack, frame{n: dep})
		}
	}
	return nil
}

// order sorts an acyclic, dependency-closed set of nodes topologically,
// preferring the earliest registered node whenever several are ready.
func (g *Graph) order(nodes []*node) []*task.Task {
	pending := make(map[*node]int, len(nodes))
	dependents := make(map[*node][]*node, len(nodes))
	for _, n := range nodes {
		unique := make(map[*node]struct{}, len(n.deps))
		for _, name := range n.deps {
			dep := g.nodes[task.Key(name)]
			if _, dup := unique[dep]; dup {
				continue
			}
			unique[dep] = struct{}{}
			dependents[dep] = append(dependents[dep], n)
		}
		pending[n] = len(unique)
	}

	ready := &readyQueue{}
	for _, n := range nodes {
		if pending[n] == 0 {
			heap.Push(ready, n)
		}
	}

	out := make([]*task.Task, 0, len(nodes))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(*node)
		out = append(out, n.task)
		for _, d := range dependents[n] {
			pending[d]--
			if pending[d] == 0 {
				heap.Push(ready, d)
			}
		}
	}
	return out
}

// readyQueue is a min-heap of nodes ordered by registration index.
type readyQueue []*node

func (q readyQueue) Len() int           { return len(q) }
func (q readyQueue) Less(i, j int) bool { return q[i].task.Index() < q[j].task.Index() }
func (q readyQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *readyQueue) Push(x any) { *q = append(*q, x.(*node)) }

func (q *readyQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	*q = old[:len(old)-1]
	return n
}
