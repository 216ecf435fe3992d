package engine

import (
	"errors"

	"github.com/soypat/ctcp/internal"
)

var (
	errRegistryFull = errors.New("engine: registry has no room for new connections")
)

// entry is one slot in a Registry. A nil Conn marks an empty, reusable slot;
// entries are tombstoned in place rather than shifted, so iteration over
// Tick can tolerate a connection removing itself mid-pass.
type entry struct {
	conn *Connection
	key  uint64
}

// Registry holds every live Connection keyed by an opaque uint64 (typically
// derived from a 4-tuple or session id by the caller), and drives them
// collectively with Tick. It uses a fixed-capacity, tombstone-compacted
// slice: one slot per connection.
type Registry struct {
	entries []entry
}

// NewRegistry creates a Registry with room for maxConns connections before a
// compaction is required to free tombstoned slots.
func NewRegistry(maxConns int) *Registry {
	return &Registry{entries: make([]entry, 0, maxConns)}
}

// Add registers conn under key. It fails if key is already registered, or if
// the registry is full and compaction frees no room.
func (r *Registry) Add(key uint64, conn *Connection) error {
	if r.lookup(key) != nil {
		return errors.New("engine: key already registered")
	}
	if cap(r.entries) == len(r.entries) {
		r.compact()
		if cap(r.entries) == len(r.entries) {
			return errRegistryFull
		}
	}
	r.entries = append(r.entries, entry{conn: conn, key: key})
	return nil
}

// Remove tombstones the entry for key, if present. Safe to call while Tick
// is iterating, since the slot is cleared in place rather than shifted.
func (r *Registry) Remove(key uint64) {
	for i := range r.entries {
		if r.entries[i].conn != nil && r.entries[i].key == key {
			r.entries[i] = entry{}
			return
		}
	}
}

// Lookup returns the connection registered under key, or nil.
func (r *Registry) Lookup(key uint64) *Connection { return r.lookup(key) }

func (r *Registry) lookup(key uint64) *Connection {
	for i := range r.entries {
		if r.entries[i].conn != nil && r.entries[i].key == key {
			return r.entries[i].conn
		}
	}
	return nil
}

// Len reports the number of live (non-tombstoned) entries.
func (r *Registry) Len() int {
	n := 0
	for i := range r.entries {
		if r.entries[i].conn != nil {
			n++
		}
	}
	return n
}

// Tick drives OnTick on every live connection and then drops any that have
// reached CLOSED, compacting their slots. It snapshots the slice length
// before iterating so an entry removed mid-pass (via [Registry.Remove]) is
// tolerated rather than causing a skipped or re-visited entry.
func (r *Registry) Tick() {
	n := len(r.entries)
	for i := 0; i < n; i++ {
		e := &r.entries[i]
		if e.conn == nil {
			continue
		}
		e.conn.OnTick()
		if e.conn.State() == StateClosed {
			*e = entry{}
		}
	}
	r.compact()
}

// compact removes tombstoned slots in place, preserving relative order of
// the remaining entries.
func (r *Registry) compact() {
	r.entries = internal.DeleteZeroed(r.entries)
}
