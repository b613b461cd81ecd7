package register

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/user"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/userrole"
	"github.com/pharmadesk/pharmadesk/internal/db/dbtest"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
	"github.com/pharmadesk/pharmadesk/internal/web/handler/handlertest"
)

func setup(t *testing.T) (*fiber.App, *gorm.DB, *models.User) {
	t.Helper()

	db := dbtest.New(t)

	adminRole := dbtest.CreateRole(t, db, models.RoleAdmin, true)
	dbtest.CreateRole(t, db, models.RolePharmacist, true)

	root := dbtest.CreateUser(t, db, "root")
	dbtest.Assign(t, db, root, adminRole)

	clerk := dbtest.CreateUser(t, db, "clerk")

	issuer, err := auth.NewTokenIssuer("test-secret", time.Hour, "")
	require.NoError(t, err)

	app := handlertest.NewApp(root, clerk)

	var s Service
	s.Init(app, &config.Config{}, db, auth.NewService(db), issuer)

	return app, db, root
}

func request(username string) Request {
	return Request{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "s3cr3t-pass",
		Password2: "s3cr3t-pass",
		FirstName: "Test",
	}
}

func TestRegister(t *testing.T) {
	app, db, _ := setup(t)

	resp := handlertest.Do(t, app, "", http.MethodPost, Path, request("dana"))
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))

	var out Response
	resp.Decode(t, &out)
	assert.Equal(t, "User registered successfully", out.Message)
	assert.Equal(t, []string{models.RolePharmacist}, out.User.Roles)
	assert.Equal(t, models.RolePharmacist, out.User.Role)
	require.NotNil(t, out.Token)
	assert.NotEmpty(t, out.Token.Access)

	u, err := user.GetByUsername(db, "dana")
	require.NoError(t, err)
	assert.True(t, u.VerifyPassword("s3cr3t-pass"))

	t.Run("duplicate username", func(t *testing.T) {
		resp := handlertest.Do(t, app, "", http.MethodPost, Path, request("dana"))
		assert.Equal(t, http.StatusConflict, resp.Status)
	})

	t.Run("password mismatch", func(t *testing.T) {
		req := request("eve")
		req.Password2 = "different"

		resp := handlertest.Do(t, app, "", http.MethodPost, Path, req)
		require.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Equal(t, "eqfield", resp.Map(t)["fields"].(map[string]any)["Password2"])

		_, err := user.GetByUsername(db, "eve")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestRegisterAdmin(t *testing.T) {
	app, db, root := setup(t)

	resp := handlertest.Do(t, app, "", http.MethodPost, AdminPath, request("frank"))
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = handlertest.Do(t, app, "clerk", http.MethodPost, AdminPath, request("frank"))
	assert.Equal(t, http.StatusForbidden, resp.Status)

	_, err := user.GetByUsername(db, "frank")
	require.ErrorIs(t, err, user.ErrUserNotFound)

	resp = handlertest.Do(t, app, "root", http.MethodPost, AdminPath, request("frank"))
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))

	var out Response
	resp.Decode(t, &out)
	assert.Equal(t, "Admin user registered successfully", out.Message)
	assert.Equal(t, models.RoleAdmin, out.User.Role)
	assert.Equal(t, []string{models.RoleAdmin}, out.User.Roles)

	var link models.UserRole
	require.NoError(t, db.Where("user_id = ?", out.User.ID).First(&link).Error)
	require.NotNil(t, link.AssignedBy)
	assert.Equal(t, root.ID, *link.AssignedBy)

	names, err := userrole.RoleNames(db, out.User.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleAdmin}, names)
}
