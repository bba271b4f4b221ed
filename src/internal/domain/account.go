package domain

import "time"

type Account struct {
	ID          string
	Type        string
	Description string
	Closed      bool
	Created     time.Time
}
