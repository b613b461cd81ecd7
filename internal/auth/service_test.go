package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadesk/pharmadesk/internal/db/dbtest"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
)

// fakeChecker answers from in-memory maps and counts the calls it receives.
type fakeChecker struct {
	roles map[uint64][]string
	codes map[uint64][]string
	err   error

	permissionCalls int
}

func (f *fakeChecker) HasRoleNamed(_ context.Context, userID uint64, name string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}

	for _, r := range f.roles[userID] {
		if r == name {
			return true, nil
		}
	}

	return false, nil
}

func (f *fakeChecker) HasPermissionCode(_ context.Context, userID uint64, code string) (bool, error) {
	f.permissionCalls++

	for _, c := range f.codes[userID] {
		if c == code {
			return true, nil
		}
	}

	return false, nil
}

func (f *fakeChecker) PermissionCodes(_ context.Context, userID uint64) ([]string, error) {
	return f.codes[userID], nil
}

func principal(id uint64) *Principal {
	return &Principal{ID: id, Username: "u", Authenticated: true}
}

func TestAuthorizeWithChecker(t *testing.T) {
	ctx := context.Background()

	checker := &fakeChecker{
		roles: map[uint64][]string{1: {models.RoleAdmin}, 2: {"uploader"}},
		codes: map[uint64][]string{2: {"offers.upload"}},
	}
	svc := NewServiceWithChecker(checker)

	t.Run("anonymous is denied", func(t *testing.T) {
		ok, err := svc.Authorize(ctx, nil, "offers.upload")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = svc.Authorize(ctx, &Principal{ID: 2}, "offers.upload")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("admin bypass skips the code lookup", func(t *testing.T) {
		before := checker.permissionCalls

		ok, err := svc.Authorize(ctx, principal(1), "anything.at.all")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, before, checker.permissionCalls)
	})

	t.Run("granted code", func(t *testing.T) {
		ok, err := svc.Authorize(ctx, principal(2), "offers.upload")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.Authorize(ctx, principal(2), "inventory.delete")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("storage error is not a denial", func(t *testing.T) {
		failing := NewServiceWithChecker(&fakeChecker{err: errors.New("db down")})

		_, err := failing.Authorize(ctx, principal(2), "offers.upload")
		assert.Error(t, err)
	})
}

func TestAuthorizeWithDatabase(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	svc := NewService(db)

	upload := dbtest.CreatePermission(t, db, "offers.upload", models.ActionCreate)
	read := dbtest.CreatePermission(t, db, "inventory.read", models.ActionRead)
	dbtest.CreatePermission(t, db, "inventory.delete", models.ActionDelete)

	admin := dbtest.CreateRole(t, db, models.RoleAdmin, true)
	uploader := dbtest.CreateRole(t, db, "uploader", false)
	reader := dbtest.CreateRole(t, db, "reader", false)
	dbtest.Grant(t, db, uploader, upload)
	dbtest.Grant(t, db, reader, read)

	u1 := dbtest.CreateUser(t, db, "u1")
	u2 := dbtest.CreateUser(t, db, "u2")
	u3 := dbtest.CreateUser(t, db, "u3")
	u4 := dbtest.CreateUser(t, db, "u4")
	dbtest.Assign(t, db, u1, admin)
	dbtest.Assign(t, db, u2, uploader)
	dbtest.Assign(t, db, u4, uploader)
	dbtest.Assign(t, db, u4, reader)

	// the display label must not influence decisions
	require.NoError(t, db.Model(u3).Update("role", models.RoleAdmin).Error)

	tests := []struct {
		name string
		user *models.User
		code string
		want bool
	}{
		{"admin has codes that are not in the catalog", u1, "not.in.catalog", true},
		{"admin has catalog codes without links", u1, "inventory.delete", true},
		{"role grants code", u2, "offers.upload", true},
		{"role does not grant code", u2, "inventory.read", false},
		{"no roles and admin label", u3, "offers.upload", false},
		{"union of roles first", u4, "offers.upload", true},
		{"union of roles second", u4, "inventory.read", true},
		{"union does not invent codes", u4, "inventory.delete", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authorize(ctx, PrincipalFromUser(tt.user), tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("helpers", func(t *testing.T) {
		isAdmin, err := svc.IsAdmin(ctx, PrincipalFromUser(u1))
		require.NoError(t, err)
		assert.True(t, isAdmin)

		isAdmin, err = svc.IsAdmin(ctx, PrincipalFromUser(u3))
		require.NoError(t, err)
		assert.False(t, isAdmin)

		isAdmin, err = svc.IsAdmin(ctx, nil)
		require.NoError(t, err)
		assert.False(t, isAdmin)

		codes, err := svc.UserPermissions(ctx, PrincipalFromUser(u4))
		require.NoError(t, err)
		assert.Equal(t, []string{"inventory.read", "offers.upload"}, codes)

		codes, err = svc.UserPermissions(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, codes)
	})
}
