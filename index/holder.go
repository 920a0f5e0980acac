package index

import (
	"sync/atomic"
)

// Holder publishes the current Index to concurrent readers. Rebuilding
// the networks means building a new Index and storing it; readers see
// either the old or the new one.
type Holder struct {
	current atomic.Pointer[Index]
}

// NewHolder returns a Holder serving idx, which may be nil.
func NewHolder(idx *Index) *Holder {
	h := &Holder{}
	h.current.Store(idx)
	return h
}

// Load returns the current index, possibly nil.
func (h *Holder) Load() *Index {
	return h.current.Load()
}

// Store replaces the current index and returns the previous one.
func (h *Holder) Store(idx *Index) *Index {
	return h.current.Swap(idx)
}

// Contains queries the current index. Without an index every address
// is treated as non-local.
func (h *Holder) Contains(address string) bool {
	return h.current.Load().Contains(address)
}
