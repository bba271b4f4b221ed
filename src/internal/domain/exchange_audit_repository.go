package domain

import "context"

type ExchangeAuditRepository interface {
	Create(ctx context.Context, audit ExchangeAudit) (ExchangeAudit, error)
	ListRecent(ctx context.Context, limit int) ([]ExchangeAudit, error)
}
