package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID          string
	Description string
	Amount      int64 // minor currency units
	Currency    string
	Category    string
	Merchant    string
	Created     time.Time
}

// DisplayAmount renders Amount in major units with two decimals, 1234 -> "12.34".
func (t Transaction) DisplayAmount() string {
	return decimal.New(t.Amount, -2).StringFixed(2)
}
