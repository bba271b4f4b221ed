package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/api-sage/bank-viewer/src/internal/domain"
)

type ExchangeAuditRepository struct {
	db *sql.DB
}

func NewExchangeAuditRepository(db *sql.DB) *ExchangeAuditRepository {
	return &ExchangeAuditRepository{db: db}
}

func (r *ExchangeAuditRepository) Create(ctx context.Context, audit domain.ExchangeAudit) (domain.ExchangeAudit, error) {
	const query = `
INSERT INTO oauth_exchange_audits (
	id,
	outcome,
	error_kind,
	token_type,
	token_fingerprint,
	provider_user_id
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`

	if audit.ID == "" {
		audit.ID = uuid.NewString()
	}

	var createdAt time.Time
	if err := r.db.QueryRowContext(
		ctx,
		query,
		audit.ID,
		audit.Outcome,
		audit.ErrorKind,
		audit.TokenType,
		audit.TokenFingerprint,
		audit.ProviderUserID,
	).Scan(&createdAt); err != nil {
		return domain.ExchangeAudit{}, fmt.Errorf("create exchange audit: %w", err)
	}

	audit.CreatedAt = createdAt
	return audit, nil
}

func (r *ExchangeAuditRepository) ListRecent(ctx context.Context, limit int) ([]domain.ExchangeAudit, error) {
	const query = `
SELECT id, outcome, error_kind, token_type, token_fingerprint, provider_user_id, created_at
FROM oauth_exchange_audits
ORDER BY created_at DESC
LIMIT $1`

	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list exchange audits: %w", err)
	}
	defer rows.Close()

	audits := make([]domain.ExchangeAudit, 0, limit)
	for rows.Next() {
		var audit domain.ExchangeAudit
		if err := rows.Scan(
			&audit.ID,
			&audit.Outcome,
			&audit.ErrorKind,
			&audit.TokenType,
			&audit.TokenFingerprint,
			&audit.ProviderUserID,
			&audit.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan exchange audit: %w", err)
		}
		audits = append(audits, audit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchange audits: %w", err)
	}

	return audits, nil
}
