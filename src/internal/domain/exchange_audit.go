package domain

import "time"

type ExchangeOutcome string

const (
	ExchangeOutcomeSucceeded ExchangeOutcome = "SUCCEEDED"
	ExchangeOutcomeRejected  ExchangeOutcome = "REJECTED"
	ExchangeOutcomeFailed    ExchangeOutcome = "FAILED"
)

type ExchangeAudit struct {
	ID               string
	Outcome          ExchangeOutcome
	ErrorKind        string
	TokenType        string
	TokenFingerprint string
	ProviderUserID   string
	CreatedAt        time.Time
}
