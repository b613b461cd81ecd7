package handler

import (
	"time"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
)

// Token is the bearer token returned by the account endpoints.
type Token struct {
	Access    string    `json:"access"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueToken signs a new bearer token for u.
func IssueToken(issuer *auth.TokenIssuer, u *models.User) (*Token, error) {
	signed, claims, err := issuer.Issue(u)
	if err != nil {
		return nil, err
	}

	return &Token{
		Access:    signed,
		TokenType: "Bearer",
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
