package resolver

import (
	"sync"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/domain"
)

// AddressBook maps area id to address. Entries are only ever added or replaced.
type AddressBook struct {
	mu    sync.RWMutex
	items map[string]domain.Address
}

func NewAddressBook() *AddressBook {
	return &AddressBook{items: make(map[string]domain.Address)}
}

func (b *AddressBook) Put(a domain.Address) {
	b.mu.Lock()
	b.items[a.ID] = a
	b.mu.Unlock()
}

func (b *AddressBook) Get(id string) (domain.Address, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	a, ok := b.items[id]
	return a, ok
}

func (b *AddressBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// Snapshot returns a copy safe to read without the lock.
func (b *AddressBook) Snapshot() map[string]domain.Address {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]domain.Address, len(b.items))
	for k, v := range b.items {
		out[k] = v
	}
	return out
}
