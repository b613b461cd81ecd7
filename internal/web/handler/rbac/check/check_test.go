package check

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/config"
	"github.com/pharmadesk/pharmadesk/internal/db/dbtest"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
	"github.com/pharmadesk/pharmadesk/internal/web/handler/handlertest"
)

func TestGet(t *testing.T) {
	db := dbtest.New(t)

	update := dbtest.CreatePermission(t, db, "inventory.update", models.ActionUpdate)
	dbtest.CreatePermission(t, db, "inventory.delete", models.ActionDelete)

	manager := dbtest.CreateRole(t, db, "manager", false)
	dbtest.Grant(t, db, manager, update)

	admin := dbtest.CreateRole(t, db, models.RoleAdmin, true)

	u1 := dbtest.CreateUser(t, db, "u1")
	dbtest.Assign(t, db, u1, admin)

	u2 := dbtest.CreateUser(t, db, "u2")
	dbtest.Assign(t, db, u2, manager)

	u3 := dbtest.CreateUser(t, db, "u3")

	// a stale admin label grants nothing
	require.NoError(t, db.Model(u3).Update("role", models.RoleAdmin).Error)

	app := handlertest.NewApp(u1, u2, u3)

	var s Service
	s.Init(app, &config.Config{}, db, auth.NewService(db))

	tests := []struct {
		name string
		as   string
		code string
		want bool
	}{
		{"granted through role", "u2", "inventory.update", true},
		{"not granted", "u2", "inventory.delete", false},
		{"no roles", "u3", "inventory.update", false},
		{"admin bypass", "u1", "inventory.delete", true},
		{"admin bypass for unknown code", "u1", "does.not.exist", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := handlertest.Do(t, app, tt.as, http.MethodGet, Path+"?code="+tt.code, nil)
			require.Equal(t, http.StatusOK, resp.Status)

			var out Result
			resp.Decode(t, &out)
			assert.Equal(t, tt.code, out.Permission)
			assert.Equal(t, tt.want, out.HasPermission)
		})
	}

	t.Run("missing code", func(t *testing.T) {
		resp := handlertest.Do(t, app, "u2", http.MethodGet, Path, nil)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Equal(t, "Permission code required", resp.Map(t)["error"])
	})

	t.Run("anonymous", func(t *testing.T) {
		resp := handlertest.Do(t, app, "", http.MethodGet, Path+"?code=inventory.update", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
	})
}
