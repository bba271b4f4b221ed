package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/api-sage/bank-viewer/src/internal/domain"
)

const defaultAuditCapacity = 50

// ExchangeAuditRepository keeps the most recent exchange audits in memory.
// Used when no database is configured.
type ExchangeAuditRepository struct {
	mu       sync.Mutex
	capacity int
	audits   []domain.ExchangeAudit
}

func NewExchangeAuditRepository(capacity int) *ExchangeAuditRepository {
	if capacity <= 0 {
		capacity = defaultAuditCapacity
	}
	return &ExchangeAuditRepository{capacity: capacity}
}

func (r *ExchangeAuditRepository) Create(_ context.Context, audit domain.ExchangeAudit) (domain.ExchangeAudit, error) {
	if audit.ID == "" {
		audit.ID = uuid.NewString()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.audits = append(r.audits, audit)
	if over := len(r.audits) - r.capacity; over > 0 {
		r.audits = append([]domain.ExchangeAudit(nil), r.audits[over:]...)
	}
	return audit, nil
}

func (r *ExchangeAuditRepository) ListRecent(_ context.Context, limit int) ([]domain.ExchangeAudit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.audits) {
		limit = len(r.audits)
	}
	out := make([]domain.ExchangeAudit, 0, limit)
	for i := len(r.audits) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.audits[i])
	}
	return out, nil
}
