// Package session tracks which bearer token sessions have been ended by a logout.
//
// A revoked token is recorded under its jti in a fiber.Storage backend until the token
// would have expired anyway, so the storage never grows beyond the live token population.
package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrEmptyTokenID is returned when a token without jti is revoked.
var ErrEmptyTokenID = errors.New("token id can not be empty")

// Data is the revocation record of a token.
type Data struct {
	UserID    uint64    `json:"user_id"`
	RevokedAt time.Time `json:"revoked_at"`
}

// Revocations is the store of revoked token ids.
type Revocations struct {
	storage fiber.Storage
	now     func() time.Time
}

// New creates a revocation store on top of storage.
func New(storage fiber.Storage) *Revocations {
	if storage == nil {
		panic("storage is nil")
	}

	return &Revocations{storage: storage, now: time.Now}
}

// Revoke records tokenID as revoked for exp. An exp of zero keeps the record forever.
func (r *Revocations) Revoke(tokenID string, userID uint64, exp time.Duration) error {
	if tokenID == "" {
		return ErrEmptyTokenID
	}

	out, err := json.Marshal(Data{UserID: userID, RevokedAt: r.now().UTC()})
	if err != nil {
		return err
	}

	return r.storage.Set(tokenID, out, exp)
}

// Read returns the revocation record of tokenID, or nil when the token is not revoked.
func (r *Revocations) Read(tokenID string) (*Data, error) {
	if tokenID == "" {
		return nil, nil
	}

	raw, err := r.storage.Get(tokenID)
	if err != nil || len(raw) == 0 {
		return nil, err
	}

	var d Data
	if err = json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}

	return &d, nil
}

// IsRevoked reports whether tokenID has been revoked.
func (r *Revocations) IsRevoked(tokenID string) (bool, error) {
	d, err := r.Read(tokenID)

	return d != nil, err
}
