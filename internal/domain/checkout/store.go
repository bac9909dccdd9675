package checkout

import (
	"sync"
)

// Store keeps the single live session per user. Starting a new checkout
// replaces whatever session was live before; concurrent checkouts for the
// same user are not modeled.
type Store struct {
	mu     sync.RWMutex
	byUser map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{byUser: make(map[string]*Session)}
}

// Put installs sess as the user's live session, replacing any previous one.
func (st *Store) Put(sess *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.byUser[sess.UserID] = sess
}

// Get returns the user's live session, or nil when none exists.
func (st *Store) Get(userID string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.byUser[userID]
}

// Delete discards the user's live session. Deleting an absent session is a
// no-op.
func (st *Store) Delete(userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.byUser, userID)
}
