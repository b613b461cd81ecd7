package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadesk/pharmadesk/internal/apperr"
	"github.com/pharmadesk/pharmadesk/internal/db/dbtest"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
)

func TestCreate(t *testing.T) {
	db := dbtest.New(t)

	u, err := Create(db, Input{Username: " alice ", Email: "alice@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.Active)
	assert.Equal(t, models.RolePharmacist, u.Role)
	assert.NotEqual(t, "s3cret", u.Password)
	assert.True(t, u.VerifyPassword("s3cret"))
	assert.False(t, u.VerifyPassword("wrong"))

	_, err = Create(db, Input{Username: "alice"})
	require.ErrorIs(t, err, ErrUsernameExists)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = Create(db, Input{})
	assert.ErrorIs(t, err, ErrUsernameEmpty)

	_, err = Create(nil, Input{Username: "bob"})
	assert.Error(t, err)
}

func TestUpdateProfile(t *testing.T) {
	db := dbtest.New(t)
	created := dbtest.CreateUser(t, db, "carol")

	email := " carol@pharmacy.test "
	phone := "+3312345678"

	u, err := UpdateProfile(db, created.ID, Profile{Email: &email, PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, "carol@pharmacy.test", u.Email)
	assert.Equal(t, phone, u.PhoneNumber)
	assert.Equal(t, "carol", u.Username)

	empty := ""
	u, err = UpdateProfile(db, created.ID, Profile{PhoneNumber: &empty})
	require.NoError(t, err)
	assert.Empty(t, u.PhoneNumber)
	assert.Equal(t, "carol@pharmacy.test", u.Email)

	u, err = UpdateProfile(db, created.ID, Profile{})
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = UpdateProfile(db, 404, Profile{Email: &email})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGet(t *testing.T) {
	db := dbtest.New(t)
	created := dbtest.CreateUser(t, db, "bob")

	u, err := GetByID(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)

	u, err = GetByUsername(db, "bob")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = GetByID(db, 404)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = GetByUsername(db, "nobody")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteKeepsAssignmentsMadeByUser(t *testing.T) {
	db := dbtest.New(t)

	boss := dbtest.CreateUser(t, db, "boss")
	clerk := dbtest.CreateUser(t, db, "clerk")
	r := dbtest.CreateRole(t, db, "cashier", false)

	require.NoError(t, db.Create(&models.UserRole{UserID: clerk.ID, RoleID: r.ID, AssignedBy: &boss.ID}).Error)
	dbtest.Assign(t, db, boss, r)

	require.NoError(t, Delete(db, boss.ID))

	var links []models.UserRole
	require.NoError(t, db.Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, clerk.ID, links[0].UserID)
	assert.Nil(t, links[0].AssignedBy)

	assert.ErrorIs(t, Delete(db, boss.ID), ErrUserNotFound)
}
