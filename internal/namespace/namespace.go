// Package namespace tracks the names claimed inside an enclosing collection,
// such as the nodes of a job or the jobs of a repository, and reports
// collisions.
package namespace

import (
	"fmt"
	"sort"
	"sync"
)

// NameCollisionError reports a name claimed twice in the same namespace.
type NameCollisionError struct {
	Namespace string
	Name      string
	// Kind is the kind of the unit that tried to claim the name; Existing is
	// the kind of the unit that already holds it.
	Kind     string
	Existing string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("%s: cannot add %s %q: name already taken by %s", e.Namespace, e.Kind, e.Name, e.Existing)
}

// Namespace is a set of unique names. It is safe for concurrent use.
type Namespace struct {
	scope string

	mu    sync.Mutex
	names map[string]string
}

// New returns an empty namespace; scope labels it in errors, e.g.
// `job "etl"`.
func New(scope string) *Namespace {
	return &Namespace{scope: scope, names: make(map[string]string)}
}

// Claim reserves name for a unit of the given kind. Names are never altered
// to avoid a collision.
func (n *Namespace) Claim(name, kind string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if existing, ok := n.names[name]; ok {
		return &NameCollisionError{Namespace: n.scope, Name: name, Kind: kind, Existing: existing}
	}
	n.names[name] = kind
	return nil
}

// Has reports whether name was claimed.
func (n *Namespace) Has(name string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.names[name]
	return ok
}

// Names returns every claimed name in sorted order.
func (n *Namespace) Names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	names := make([]string, 0, len(n.names))
	for name := range n.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
