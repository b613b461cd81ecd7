package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadesk/pharmadesk/internal/db/controller/revocation"
	"github.com/pharmadesk/pharmadesk/internal/db/dbtest"
)

func TestRevocations(t *testing.T) {
	store, err := revocation.New(dbtest.New(t))
	require.NoError(t, err)

	r := New(store)
	r.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	revoked, err := r.IsRevoked("jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke("jti-1", 7, time.Hour))

	revoked, err = r.IsRevoked("jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	d, err := r.Read("jti-1")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, uint64(7), d.UserID)
	assert.Equal(t, r.now(), d.RevokedAt)

	revoked, err = r.IsRevoked("")
	require.NoError(t, err)
	assert.False(t, revoked)

	assert.ErrorIs(t, r.Revoke("", 7, time.Hour), ErrEmptyTokenID)
}

func TestNewPanicsWithoutStorage(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}
