package rule

import (
	"fmt"
	"sync"

	"github.com/treegrep/treegrep/pkg/match"
	"github.com/treegrep/treegrep/pkg/tree"
)

// Registry resolves referent rule ids. Local entries are scoped to one rule
// file; global entries are shared across a loading session. Entries are
// append-only and validated at insertion: a duplicate id or a rule that can
// reach itself through referent edges is rejected before it becomes visible,
// so lookups never re-check. The registry must outlive every Referent that
// points at it; insertion and lookup may run concurrently.
type Registry struct {
	mu     sync.RWMutex
	local  map[string]Rule
	global map[string]Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		local:  map[string]Rule{},
		global: map[string]Rule{},
	}
}

// InsertLocal registers a file-scoped utility rule.
func (reg *Registry) InsertLocal(id string, r Rule) error {
	return reg.insert(id, r, reg.local)
}

// InsertGlobal registers a session-wide utility rule.
func (reg *Registry) InsertGlobal(id string, r Rule) error {
	return reg.insert(id, r, reg.global)
}

func (reg *Registry) insert(id string, r Rule, table map[string]Rule) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := table[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateRule, id)
	}

	if reg.reaches(r, id, map[string]bool{}) {
		return fmt.Errorf("%w: %q", ErrCyclicRule, id)
	}

	table[id] = r

	return nil
}

// reaches reports whether r can reach the id being inserted through referent
// edges, looking through composite and relational wrappers. Entries already
// in the registry are acyclic among themselves, so any new cycle must pass
// through the new id.
func (reg *Registry) reaches(r Rule, id string, visited map[string]bool) bool {
	if ref, ok := r.(*Referent); ok {
		if ref.id == id {
			return true
		}

		if visited[ref.id] {
			return false
		}

		visited[ref.id] = true

		if resolved, ok := reg.lookupLocked(ref.id); ok {
			return reg.reaches(resolved, id, visited)
		}

		return false
	}

	for _, child := range r.Children() {
		if reg.reaches(child, id, visited) {
			return true
		}
	}

	return false
}

func (reg *Registry) lookupLocked(id string) (Rule, bool) {
	if r, ok := reg.local[id]; ok {
		return r, true
	}

	r, ok := reg.global[id]

	return r, ok
}

// Lookup resolves an id against local entries first, then global.
func (reg *Registry) Lookup(id string) (Rule, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return reg.lookupLocked(id)
}

// Verify reports whether id resolves, for validating rule documents before
// any matching starts.
func (reg *Registry) Verify(id string) error {
	if _, ok := reg.Lookup(id); !ok {
		return fmt.Errorf("%w: %q", ErrUndefinedUtil, id)
	}

	return nil
}

// Referent defers to a named rule resolved against the registry at use time.
// Construction never fails; an id that never gets registered simply matches
// nothing, and Registry.Verify catches it during loading.
type Referent struct {
	id  string
	reg *Registry
}

// NewReferent builds the reference.
func NewReferent(id string, reg *Registry) *Referent {
	return &Referent{id: id, reg: reg}
}

// ID returns the referenced rule id.
func (r *Referent) ID() string {
	return r.id
}

// MatchWithEnv implements Matcher.
func (r *Referent) MatchWithEnv(node *tree.Node, env *match.MetaVarEnv) *tree.Node {
	resolved, ok := r.reg.Lookup(r.id)
	if !ok {
		return nil
	}

	return resolved.MatchWithEnv(node, env)
}

// PotentialKinds implements Matcher. Resolution is deferred, so kinds come
// from the current registry entry when one exists.
func (r *Referent) PotentialKinds() *match.KindSet {
	resolved, ok := r.reg.Lookup(r.id)
	if !ok {
		return nil
	}

	return resolved.PotentialKinds()
}

// Children implements Rule. The resolved rule is reached through the
// registry, not through child edges.
func (r *Referent) Children() []Rule {
	return nil
}
