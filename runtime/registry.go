// Package runtime owns the live-connection machinery: the session registry,
// per-connection sessions and the broadcast fan-out. It contains no business
// rules beyond delivery; membership decisions live in the services layer.
package runtime

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"

	"github.com/daviderandino/ruggine/contract"
)

// shardCount trades memory for contention: groups hash onto independent
// locks so unrelated chat groups never serialize on each other.
const shardCount = 32

// Registry is the single source of truth for "who is currently listening".
// It maps a group to the ordered set of live sinks registered for it.
// Registration order is preserved so a broadcast snapshot visits sessions
// in the order they joined.
type Registry struct {
	shards [shardCount]registryShard
}

type registryShard struct {
	mu     sync.RWMutex
	groups map[uuid.UUID][]*Registration
}

// Registration is the non-owning handle the registry keeps for one session.
// It is removed exactly once on teardown.
type Registration struct {
	GroupID uuid.UUID
	sink    contract.Sink
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].groups = make(map[uuid.UUID][]*Registration)
	}
	return r
}

func (r *Registry) shard(groupID uuid.UUID) *registryShard {
	h := fnv.New32a()
	h.Write(groupID[:])
	return &r.shards[h.Sum32()%shardCount]
}

// Register subscribes a sink to a group and returns its handle.
// Registering the same sink twice without an intervening Unregister is an
// internal-consistency fault and panics rather than corrupting the set.
func (r *Registry) Register(groupID uuid.UUID, sink contract.Sink) *Registration {
	s := r.shard(groupID)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, reg := range s.groups[groupID] {
		if reg.sink == sink {
			panic(fmt.Sprintf("registry: sink registered twice for group %s", groupID))
		}
	}
	reg := &Registration{GroupID: groupID, sink: sink}
	s.groups[groupID] = append(s.groups[groupID], reg)
	return reg
}

// Unregister removes a registration. Unknown handles are ignored so teardown
// racing a group-wide cleanup stays safe. Empty group entries are dropped to
// avoid leaking map slots for dead groups.
func (r *Registry) Unregister(reg *Registration) {
	if reg == nil {
		return
	}
	s := r.shard(reg.GroupID)
	s.mu.Lock()
	defer s.mu.Unlock()

	regs := s.groups[reg.GroupID]
	for i, candidate := range regs {
		if candidate == reg {
			s.groups[reg.GroupID] = append(regs[:i:i], regs[i+1:]...)
			break
		}
	}
	if len(s.groups[reg.GroupID]) == 0 {
		delete(s.groups, reg.GroupID)
	}
}

// Snapshot returns a point-in-time copy of the group's sinks in registration
// order. Sessions registered afterwards are not part of a broadcast already
// in flight; sessions removed afterwards may still see one best-effort
// delivery attempt, which no-ops once the session is closed.
func (r *Registry) Snapshot(groupID uuid.UUID) []contract.Sink {
	s := r.shard(groupID)
	s.mu.RLock()
	defer s.mu.RUnlock()

	regs := s.groups[groupID]
	if len(regs) == 0 {
		return nil
	}
	sinks := make([]contract.Sink, len(regs))
	for i, reg := range regs {
		sinks[i] = reg.sink
	}
	return sinks
}
