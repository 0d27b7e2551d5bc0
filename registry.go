package actor

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ehrlich-b/actorcore/internal/constants"
)

// registry is the bounded name->ActorId table. Names are borrowed, not
// copied: callers must keep the string alive for the registration's
// lifetime (typically a package-level constant).
type registry struct {
	byName map[string]ActorId
	owned  map[ActorId][]string // names to drop when an actor dies

	// reverseCache is a logging-only amenity (never on the
	// registration/lookup correctness path): a bounded id->name cache so
	// repeated debug log lines don't linearly rescan `owned`.
	reverseCache *lru.Cache[ActorId, string]
}

func newRegistry() *registry {
	cache, _ := lru.New[ActorId, string](constants.MaxRegistryEntries)
	return &registry{
		byName:       make(map[string]ActorId),
		owned:        make(map[ActorId][]string),
		reverseCache: cache,
	}
}

// Register binds name to owner. Fails INVALID on duplicate, NOMEM at
// capacity.
func (r *registry) Register(name string, owner ActorId) Status {
	if name == "" {
		return status(INVALID, "register: empty name")
	}
	if _, exists := r.byName[name]; exists {
		return status(INVALID, "register: name already exists")
	}
	if len(r.byName) >= constants.MaxRegistryEntries {
		return status(NOMEM, "register: registry full")
	}
	r.byName[name] = owner
	r.owned[owner] = append(r.owned[owner], name)
	r.reverseCache.Add(owner, name)
	return StatusOK
}

// Whereis resolves name to its registered actor, if any.
func (r *registry) Whereis(name string) (ActorId, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// NameOf is a best-effort, logging-only reverse lookup backed by the LRU
// cache; it is not authoritative (an actor with multiple names may report
// only its most recently registered one).
func (r *registry) NameOf(id ActorId) (string, bool) {
	return r.reverseCache.Get(id)
}

// Unregister removes name, provided caller owns it.
func (r *registry) Unregister(name string, caller ActorId) Status {
	owner, ok := r.byName[name]
	if !ok {
		return status(INVALID, "unregister: name not registered")
	}
	if owner != caller {
		return status(INVALID, "unregister: caller does not own name")
	}
	r.removeOne(name, owner)
	return StatusOK
}

func (r *registry) removeOne(name string, owner ActorId) {
	delete(r.byName, name)
	names := r.owned[owner]
	for i, n := range names {
		if n == name {
			r.owned[owner] = append(names[:i], names[i+1:]...)
			break
		}
	}
	if len(r.owned[owner]) == 0 {
		delete(r.owned, owner)
	}
}

// RemoveOwnedBy drops every entry id owns, on actor death.
func (r *registry) RemoveOwnedBy(id ActorId) {
	for _, name := range append([]string(nil), r.owned[id]...) {
		delete(r.byName, name)
	}
	delete(r.owned, id)
}
