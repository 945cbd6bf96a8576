// Package memview implements a per-holder address-space view over a shared
// page pool: a flat 65536-slot lookup cache translating the upper 16 bits
// of an address straight to a page pointer, refreshed across pool structural
// changes via the pagepool.Holder barrier.
package memview

import (
	"fmt"

	"mipsvm/internal/pagepool"
)

// ErrUnmapped is returned when the target address has no backing page and
// the access may not create one: always by the Opt-suffixed variants, and by
// the other Load/Store methods when the view is not configured to auto-grow.
var ErrUnmapped = fmt.Errorf("memview: address not mapped")

// View is one holder's window onto a pagepool.Pool. It satisfies
// pagepool.Holder so the pool can notify it across structural barriers.
type View struct {
	pool      *pagepool.Pool
	cache     [65536]*pagepool.Page
	autoGrow  bool
	locked    bool
}

// New creates a view over pool and registers it as a holder. If autoGrow is
// true, stores (and loads, via the Opt-suffixed fallible API excluded) to
// unmapped addresses transparently create the backing page; otherwise
// unmapped access returns ErrUnmapped.
func New(pool *pagepool.Pool, autoGrow bool) *View {
	v := &View{pool: pool, autoGrow: autoGrow}
	pool.RegisterHolder(v)
	v.rebuild(pool.Snapshot())
	return v
}

// Close unregisters the view from its pool.
func (v *View) Close() {
	v.pool.UnregisterHolder(v)
}

// Lock implements pagepool.Holder. Passive holders drop their whole cache so
// the next access rebuilds it from the pool's current mapping; this
// implementation simply defers the rebuild to Unlock since the cache is
// only read between barriers, never during one.
func (v *View) Lock(initiator bool) error {
	v.locked = true
	return nil
}

// Unlock implements pagepool.Holder, rebuilding the cache from the supplied
// post-mutation snapshot. It must not call back into the pool (Lookup,
// Snapshot, ...): Unlock runs while the pool's internal lock is still held
// by the barrier that invoked it, and that lock is not reentrant.
func (v *View) Unlock(initiator bool, snapshot pagepool.Snapshot) error {
	v.locked = false
	v.rebuild(snapshot)
	return nil
}

func (v *View) rebuild(snapshot pagepool.Snapshot) {
	for i := range v.cache {
		v.cache[i] = nil
	}
	for i, idx := range snapshot.Indices {
		v.cache[idx] = snapshot.Pages[i]
	}
}

// page returns the page backing addr, creating it through the pool (running
// a barrier) if autoGrow is set and none exists yet.
func (v *View) page(addr uint32) (*pagepool.Page, error) {
	idx := uint16(addr >> 16)
	if p := v.cache[idx]; p != nil {
		return p, nil
	}
	if !v.autoGrow {
		return nil, ErrUnmapped
	}
	if err := v.pool.Create(idx, v); err != nil {
		return nil, err
	}
	return v.cache[idx], nil
}
