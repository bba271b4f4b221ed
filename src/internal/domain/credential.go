package domain

import (
	"strings"
	"time"
)

type Credential struct {
	TokenType   string
	AccessToken string
	UserID      string
	ExpiresAt   time.Time
}

func (c Credential) Valid() bool {
	return strings.TrimSpace(c.AccessToken) != ""
}

// Authorization is the value sent in the Authorization header of provider calls.
func (c Credential) Authorization() string {
	tokenType := strings.TrimSpace(c.TokenType)
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return tokenType + " " + strings.TrimSpace(c.AccessToken)
}
