package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/api-sage/bank-viewer/src/internal/domain"
)

const (
	defaultOAuthStateTTL      = 15 * time.Minute
	defaultOAuthStateCapacity = 1024
)

// OAuthStateRepository holds at most capacity pending states. When full, the
// oldest issued state is evicted.
type OAuthStateRepository struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	now      func() time.Time
	entries  map[string]domain.OAuthState
	// order lists keys by issue time; it may still hold keys already consumed.
	order []string
}

func NewOAuthStateRepository(ttl time.Duration) *OAuthStateRepository {
	return NewOAuthStateRepositoryWithCapacity(ttl, defaultOAuthStateCapacity)
}

func NewOAuthStateRepositoryWithCapacity(ttl time.Duration, capacity int) *OAuthStateRepository {
	if ttl <= 0 {
		ttl = defaultOAuthStateTTL
	}
	if capacity <= 0 {
		capacity = defaultOAuthStateCapacity
	}
	return &OAuthStateRepository{
		ttl:      ttl,
		capacity: capacity,
		now:      func() time.Time { return time.Now().UTC() },
		entries:  make(map[string]domain.OAuthState, capacity),
	}
}

func (r *OAuthStateRepository) Save(_ context.Context, state domain.OAuthState) error {
	value := strings.TrimSpace(state.Value)
	if value == "" {
		return fmt.Errorf("oauth state value is required")
	}
	state.Value = value

	now := r.now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	if state.ExpiresAt.IsZero() {
		state.ExpiresAt = state.CreatedAt.Add(r.ttl)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[value]; !exists {
		r.order = append(r.order, value)
	}
	r.entries[value] = state
	r.evictLocked(now)

	return nil
}

// evictLocked drops expired states from the front of the queue and then the
// oldest states until the map is back within capacity.
func (r *OAuthStateRepository) evictLocked(now time.Time) {
	for len(r.order) > 0 {
		key := r.order[0]
		entry, ok := r.entries[key]
		switch {
		case !ok:
		case len(r.entries) > r.capacity, now.After(entry.ExpiresAt):
			delete(r.entries, key)
		default:
			return
		}
		r.order[0] = ""
		r.order = r.order[1:]
	}
}

// Consume removes the state so a value can only be redeemed once.
func (r *OAuthStateRepository) Consume(_ context.Context, value string) (domain.OAuthState, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.OAuthState{}, domain.ErrInvalidState
	}

	r.mu.Lock()
	state, ok := r.entries[value]
	if ok {
		delete(r.entries, value)
		r.compactLocked()
	}
	r.mu.Unlock()

	if !ok {
		return domain.OAuthState{}, domain.ErrInvalidState
	}
	if r.now().After(state.ExpiresAt) {
		return domain.OAuthState{}, fmt.Errorf("oauth state expired at %s: %w", state.ExpiresAt.Format(time.RFC3339), domain.ErrInvalidState)
	}

	return state, nil
}

// compactLocked rebuilds the queue once consumed keys make up most of it.
func (r *OAuthStateRepository) compactLocked() {
	if len(r.order) <= 2*r.capacity {
		return
	}
	order := make([]string, 0, len(r.entries))
	for _, key := range r.order {
		if _, ok := r.entries[key]; ok {
			order = append(order, key)
		}
	}
	r.order = order
}
