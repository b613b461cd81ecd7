package assignment

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/db/controller/userrole"
	"github.com/pharmadesk/pharmadesk/internal/db/dbtest"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
	"github.com/pharmadesk/pharmadesk/internal/web/handler/handlertest"
)

func rolesPath(userID uint64, suffix string) string {
	return strings.Replace(Path, ":id", strconv.FormatUint(userID, 10), 1) + suffix
}

func TestAssignAndRemove(t *testing.T) {
	db := dbtest.New(t)

	admin := dbtest.CreateRole(t, db, models.RoleAdmin, true)
	pharmacist := dbtest.CreateRole(t, db, models.RolePharmacist, true)
	stock := dbtest.CreateRole(t, db, "stock", false)

	root := dbtest.CreateUser(t, db, "root")
	dbtest.Assign(t, db, root, admin)

	clerk := dbtest.CreateUser(t, db, "clerk")
	dbtest.Assign(t, db, clerk, pharmacist)

	target := dbtest.CreateUser(t, db, "target")

	app := handlertest.NewApp(root, clerk)

	var s Service
	s.Init(app, &config.Config{}, db, auth.NewService(db))

	t.Run("denied for non admin", func(t *testing.T) {
		resp := handlertest.Do(t, app, "clerk", http.MethodPost, rolesPath(target.ID, ""),
			map[string]any{"role_ids": []uint{admin.ID}})
		assert.Equal(t, http.StatusForbidden, resp.Status)

		roles, err := userrole.Roles(db, target.ID)
		require.NoError(t, err)
		assert.Empty(t, roles)
	})

	t.Run("assign records assigner and label", func(t *testing.T) {
		resp := handlertest.Do(t, app, "root", http.MethodPost, rolesPath(target.ID, ""),
			map[string]any{"role_ids": []uint{admin.ID, stock.ID}})
		require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))

		var out struct {
			Message string                 `json:"message"`
			User    userrole.UserWithRoles `json:"user"`
		}
		resp.Decode(t, &out)
		assert.Equal(t, "Roles assigned successfully", out.Message)
		assert.Equal(t, models.RoleAdmin, out.User.Role)
		assert.Len(t, out.User.Roles, 2)

		var link models.UserRole
		require.NoError(t, db.Where("user_id = ? AND role_id = ?", target.ID, stock.ID).First(&link).Error)
		require.NotNil(t, link.AssignedBy)
		assert.Equal(t, root.ID, *link.AssignedBy)
	})

	t.Run("unknown role ids", func(t *testing.T) {
		resp := handlertest.Do(t, app, "root", http.MethodPost, rolesPath(target.ID, ""),
			map[string]any{"role_ids": []uint{pharmacist.ID, 99}})
		require.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Equal(t, []any{float64(99)}, resp.Map(t)["invalid_ids"])

		names, err := userrole.RoleNames(db, target.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{models.RoleAdmin, "stock"}, names)
	})

	t.Run("get", func(t *testing.T) {
		resp := handlertest.Do(t, app, "root", http.MethodGet, rolesPath(target.ID, ""), nil)
		require.Equal(t, http.StatusOK, resp.Status)

		var u userrole.UserWithRoles
		resp.Decode(t, &u)
		assert.Equal(t, "target", u.Username)
		assert.Len(t, u.Roles, 2)

		resp = handlertest.Do(t, app, "root", http.MethodGet, rolesPath(404, ""), nil)
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})

	t.Run("remove", func(t *testing.T) {
		resp := handlertest.Do(t, app, "root", http.MethodDelete, rolesPath(target.ID, fmt.Sprintf("/%d", admin.ID)), nil)
		require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
		assert.Equal(t, "Role admin removed from user target", resp.Map(t)["message"])

		var reloaded models.User
		require.NoError(t, db.First(&reloaded, target.ID).Error)
		assert.Equal(t, models.RolePharmacist, reloaded.Role)

		resp = handlertest.Do(t, app, "root", http.MethodDelete, rolesPath(target.ID, fmt.Sprintf("/%d", admin.ID)), nil)
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "user does not have this role", resp.Map(t)["error"])

		resp = handlertest.Do(t, app, "root", http.MethodDelete, rolesPath(target.ID, "/999"), nil)
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})
}

func TestPrivilegedRolesNeedAdmin(t *testing.T) {
	db := dbtest.New(t)

	admin := dbtest.CreateRole(t, db, models.RoleAdmin, true)
	stock := dbtest.CreateRole(t, db, "stock", false)

	createAdmin := dbtest.CreatePermission(t, db, auth.PermCreateAdmin, models.ActionCreate)
	hr := dbtest.CreateRole(t, db, "hr", false)
	dbtest.Grant(t, db, hr, createAdmin)

	delegate := dbtest.CreateRole(t, db, "delegate", false)
	dbtest.Grant(t, db, delegate, dbtest.CreatePermission(t, db, auth.PermRBACAssignmentsUpdate, models.ActionUpdate))

	root := dbtest.CreateUser(t, db, "root")
	dbtest.Assign(t, db, root, admin)

	hd := dbtest.CreateUser(t, db, "hd")
	dbtest.Assign(t, db, hd, delegate)

	app := handlertest.NewApp(root, hd)

	var s Service
	s.Init(app, &config.Config{}, db, auth.NewService(db))

	svc := auth.NewService(db)

	canCreateAdmin := func() bool {
		allowed, err := svc.Authorize(context.Background(), auth.PrincipalFromUser(hd), auth.PermCreateAdmin)
		require.NoError(t, err)

		return allowed
	}

	t.Run("self grant of admin is denied", func(t *testing.T) {
		resp := handlertest.Do(t, app, "hd", http.MethodPost, rolesPath(hd.ID, ""),
			map[string]any{"role_ids": []uint{delegate.ID, admin.ID}})
		assert.Equal(t, http.StatusForbidden, resp.Status)
		assert.Equal(t, ErrPrivilegedRole.Message, resp.Map(t)["error"])
		assert.False(t, canCreateAdmin())
	})

	t.Run("role granting create_admin is denied", func(t *testing.T) {
		resp := handlertest.Do(t, app, "hd", http.MethodPost, rolesPath(hd.ID, ""),
			map[string]any{"role_ids": []uint{delegate.ID, hr.ID}})
		assert.Equal(t, http.StatusForbidden, resp.Status)
		assert.False(t, canCreateAdmin())
	})

	t.Run("removing admin is denied", func(t *testing.T) {
		resp := handlertest.Do(t, app, "hd", http.MethodDelete, rolesPath(root.ID, fmt.Sprintf("/%d", admin.ID)), nil)
		assert.Equal(t, http.StatusForbidden, resp.Status)

		names, err := userrole.RoleNames(db, root.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{models.RoleAdmin}, names)

		resp = handlertest.Do(t, app, "hd", http.MethodPost, rolesPath(root.ID, ""),
			map[string]any{"role_ids": []uint{stock.ID}})
		assert.Equal(t, http.StatusForbidden, resp.Status)
	})

	t.Run("ordinary roles are allowed", func(t *testing.T) {
		resp := handlertest.Do(t, app, "hd", http.MethodPost, rolesPath(hd.ID, ""),
			map[string]any{"role_ids": []uint{delegate.ID, stock.ID}})
		require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))

		names, err := userrole.RoleNames(db, hd.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"stock", "delegate"}, names)
	})

	t.Run("admin may grant privileged roles", func(t *testing.T) {
		resp := handlertest.Do(t, app, "root", http.MethodPost, rolesPath(hd.ID, ""),
			map[string]any{"role_ids": []uint{delegate.ID, hr.ID}})
		require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
		assert.True(t, canCreateAdmin())
	})
}
