package handler

import (
	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/db/controller/userrole"
	"github.com/pharmadesk/pharmadesk/internal/db/models"
)

// Account is the public view of a user returned by the account endpoints.
type Account struct {
	models.User
	Roles []string `json:"roles"`
}

// LoadAccount returns the public view of u with the names of the roles it holds.
func LoadAccount(db *gorm.DB, u *models.User) (*Account, error) {
	names, err := userrole.RoleNames(db, u.ID)
	if err != nil {
		return nil, err
	}

	return &Account{User: *u, Roles: names}, nil
}
