package address

import (
	"sync"

	"github.com/google/uuid"
)

// Book is one user's in-memory address collection. Persistence is an
// external collaborator's concern; the book lives for the server session.
//
// Invariant: at most one address has IsDefault set. Making a new address the
// default clears the flag on every other entry first.
type Book struct {
	mu        sync.RWMutex
	addresses []Address
	selected  string
}

// NewBook creates an empty address book.
func NewBook() *Book {
	return &Book{}
}

// List returns the addresses in insertion order.
func (b *Book) List() []Address {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Address, len(b.addresses))
	copy(out, b.addresses)
	return out
}

// Add validates the candidate, assigns it an id, and inserts it. When the
// candidate is marked default, every existing default is cleared before the
// insert so the single-default invariant holds.
func (b *Book) Add(candidate Address) (Address, error) {
	if err := candidate.Validate(); err != nil {
		return Address{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	candidate.ID = uuid.New().String()
	if candidate.IsDefault {
		for i := range b.addresses {
			b.addresses[i].IsDefault = false
		}
	}
	b.addresses = append(b.addresses, candidate)
	return candidate, nil
}

// Select points the book at the address with the given id. An absent id is
// a silent no-op: this is a UI guard, not a data-integrity concern.
func (b *Book) Select(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.addresses {
		if a.ID == id {
			b.selected = id
			return
		}
	}
}

// Get returns the address with the given id.
func (b *Book) Get(id string) (Address, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, a := range b.addresses {
		if a.ID == id {
			return a, true
		}
	}
	return Address{}, false
}

// Default returns the address a fresh checkout session should start with:
// the selected one if still present, else the default-flagged one, else the
// first in insertion order. ErrEmptyBook when there are none.
func (b *Book) Default() (Address, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.addresses) == 0 {
		return Address{}, ErrEmptyBook
	}
	if b.selected != "" {
		for _, a := range b.addresses {
			if a.ID == b.selected {
				return a, nil
			}
		}
	}
	for _, a := range b.addresses {
		if a.IsDefault {
			return a, nil
		}
	}
	return b.addresses[0], nil
}

// Registry hands out one Book per user, creating it on first use.
type Registry struct {
	mu    sync.Mutex
	books map[string]*Book
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{books: make(map[string]*Book)}
}

// BookFor returns the user's address book, creating it if needed.
func (r *Registry) BookFor(userID string) *Book {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[userID]
	if !ok {
		b = NewBook()
		r.books[userID] = b
	}
	return b
}
