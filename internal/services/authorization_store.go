package services

import (
	"strings"
	"sync"
	"time"
)

// Authorization is the server-held record of a verified signature. Records
// are never mutated; a later authorization for the same user replaces the
// earlier one wholesale.
type Authorization struct {
	UserAddress string        `json:"user_address"`
	Signature   []byte        `json:"-"`
	Message     PermitMessage `json:"message"`
	ReceivedAt  time.Time     `json:"received_at"`
}

// Deadline returns the signed expiry as wall-clock time.
func (a *Authorization) Deadline() time.Time {
	return time.Unix(int64(a.Message.Value.Deadline), 0)
}

// AuthorizationStore holds the most recent verified authorization per user
// address. Implementations must make Put/Get/Remove atomic per key; there is
// no cross-key ordering requirement and no persistence guarantee.
type AuthorizationStore interface {
	Put(auth Authorization)
	Get(userAddress string) (Authorization, bool)
	Remove(userAddress string)
}

// evictionGrace is how long an expired record stays readable after its
// deadline. Within the grace window the orchestrator can still report
// PermitExpired with the overrun; past it the record is dropped.
const evictionGrace = 24 * time.Hour

// memoryAuthorizationStore is the in-process store. A restart clears it;
// clients re-request a challenge after one.
type memoryAuthorizationStore struct {
	mu      sync.RWMutex
	byOwner map[string]Authorization
	now     func() time.Time
}

// NewMemoryAuthorizationStore creates an empty in-memory store.
func NewMemoryAuthorizationStore() AuthorizationStore {
	return &memoryAuthorizationStore{
		byOwner: make(map[string]Authorization),
		now:     time.Now,
	}
}

func (s *memoryAuthorizationStore) Put(auth Authorization) {
	key := storeKey(auth.UserAddress)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byOwner[key] = auth
}

func (s *memoryAuthorizationStore) Get(userAddress string) (Authorization, bool) {
	key := storeKey(userAddress)

	s.mu.RLock()
	auth, ok := s.byOwner[key]
	s.mu.RUnlock()
	if !ok {
		return Authorization{}, false
	}

	// Lazy eviction keeps the map bounded without a janitor goroutine.
	if s.now().After(auth.Deadline().Add(evictionGrace)) {
		s.mu.Lock()
		// Re-check under the write lock; a fresher record may have landed.
		if current, stillThere := s.byOwner[key]; stillThere && current.ReceivedAt.Equal(auth.ReceivedAt) {
			delete(s.byOwner, key)
		}
		s.mu.Unlock()
		return Authorization{}, false
	}

	return auth, true
}

func (s *memoryAuthorizationStore) Remove(userAddress string) {
	key := storeKey(userAddress)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byOwner, key)
}

func storeKey(userAddress string) string {
	return strings.ToLower(userAddress)
}
