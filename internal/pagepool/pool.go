package pagepool

import (
	"fmt"
	"sort"
	"sync"
)

// Holder is anything that caches pointers into the pool's pages and must be
// notified before and after a structural change (a page being created or
// removed) so it can drop or rebuild those caches.
//
// Lock is called once per holder before the pool mutates pool/indexMapping;
// Unlock once per holder afterwards, handed a Snapshot of the post-mutation
// mapping. initiator is true only for the holder that triggered the
// barrier — passive holders receive false. Both calls run with the pool's
// internal lock held, so a Holder must rebuild from the supplied Snapshot
// rather than calling back into Lookup or any other pool method.
type Holder interface {
	Lock(initiator bool) error
	Unlock(initiator bool, snapshot Snapshot) error
}

// Snapshot is the pool's page mapping at the moment a barrier fires: sorted
// page indices parallel to their pages. It is only valid for the duration
// of the Unlock call it is passed to — a Holder must copy anything it needs
// out of it rather than retaining the Snapshot itself.
type Snapshot struct {
	Indices []uint16
	Pages   []*Page
}

// Pool owns the set of live pages and the sorted mapping from page index
// (the top 16 bits of an address) to slot in pool. Structural changes
// (Create/Remove/RemoveAll) run under mu and fire the barrier protocol
// against every registered holder; Lookup and Snapshot also take mu, so
// they never observe a mutation in progress.
type Pool struct {
	mu           sync.Mutex
	pool         []*Page
	indexMapping []uint16 // sorted page indices, parallel to pool
	holders      []Holder
}

// New creates an empty page pool.
func New() *Pool {
	return &Pool{}
}

// RegisterHolder adds a holder to the pool's barrier participant list.
func (p *Pool) RegisterHolder(h Holder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.holders = append(p.holders, h)
}

// UnregisterHolder removes a holder previously added with RegisterHolder.
func (p *Pool) UnregisterHolder(h Holder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.holders {
		if existing == h {
			p.holders = append(p.holders[:i], p.holders[i+1:]...)
			return
		}
	}
}

// Lookup returns the page for the given page index (addr>>16), or nil if no
// page is mapped there. It runs in O(log N) via binary search over the
// sorted indexMapping.
func (p *Pool) Lookup(pageIndex uint16) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lookupLocked(pageIndex)
}

func (p *Pool) lookupLocked(pageIndex uint16) *Page {
	i := sort.Search(len(p.indexMapping), func(i int) bool {
		return p.indexMapping[i] >= pageIndex
	})
	if i < len(p.indexMapping) && p.indexMapping[i] == pageIndex {
		return p.pool[i]
	}
	return nil
}

// Snapshot returns the pool's current page mapping, for a holder's initial
// cache fill (e.g. when it first registers, before any barrier has fired).
func (p *Pool) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Pool) snapshotLocked() Snapshot {
	return Snapshot{Indices: p.indexMapping, Pages: p.pool}
}

// Create allocates and maps a new page at pageIndex if one is not already
// present, running the barrier around the mutation. It is a no-op if a page
// is already mapped there. initiator, if non-nil, must be a registered
// holder and is the one that triggered this structural change (typically
// the memory view servicing the faulting access); it receives
// initiator=true in its Lock/Unlock calls, every other holder receives
// false.
func (p *Pool) Create(pageIndex uint16, initiator Holder) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lookupLocked(pageIndex) != nil {
		return nil
	}

	insertAt := sort.Search(len(p.indexMapping), func(i int) bool {
		return p.indexMapping[i] >= pageIndex
	})

	return p.withBarrier(initiator, func() {
		p.indexMapping = append(p.indexMapping, 0)
		copy(p.indexMapping[insertAt+1:], p.indexMapping[insertAt:])
		p.indexMapping[insertAt] = pageIndex

		p.pool = append(p.pool, nil)
		copy(p.pool[insertAt+1:], p.pool[insertAt:])
		p.pool[insertAt] = newPage()
	})
}

// Remove unmaps the page at pageIndex, if one exists, running the barrier
// around the mutation.
func (p *Pool) Remove(pageIndex uint16, initiator Holder) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	at := sort.Search(len(p.indexMapping), func(i int) bool {
		return p.indexMapping[i] >= pageIndex
	})
	if at >= len(p.indexMapping) || p.indexMapping[at] != pageIndex {
		return nil
	}

	return p.withBarrier(initiator, func() {
		p.indexMapping = append(p.indexMapping[:at], p.indexMapping[at+1:]...)
		p.pool = append(p.pool[:at], p.pool[at+1:]...)
	})
}

// RemoveAll unmaps every page, running the barrier once around the whole
// operation.
func (p *Pool) RemoveAll(initiator Holder) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pool) == 0 {
		return nil
	}
	return p.withBarrier(initiator, func() {
		p.pool = nil
		p.indexMapping = nil
	})
}

// withBarrier runs mutate() between a Lock/Unlock round trip across every
// registered holder, in prepare -> mutate -> finalize order. If any Lock
// call fails the mutation is skipped and already-locked holders are rolled
// back via Unlock before the error is returned.
func (p *Pool) withBarrier(initiator Holder, mutate func()) error {
	locked := make([]Holder, 0, len(p.holders))
	for _, h := range p.holders {
		if err := h.Lock(h == initiator); err != nil {
			rollback := p.snapshotLocked()
			for i := len(locked) - 1; i >= 0; i-- {
				_ = locked[i].Unlock(false, rollback)
			}
			return fmt.Errorf("pagepool: barrier lock failed: %w", err)
		}
		locked = append(locked, h)
	}

	mutate()

	snap := p.snapshotLocked()
	for _, h := range p.holders {
		if err := h.Unlock(h == initiator, snap); err != nil {
			return fmt.Errorf("pagepool: barrier unlock failed: %w", err)
		}
	}
	return nil
}
