package auth

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/pharmadesk/pharmadesk/internal/db/models"
)

const (
	decisionAllow = "allow"
	decisionDeny  = "deny"
	decisionError = "error"
)

var decisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pharmadesk",
	Name:      "authorization_decisions_total",
	Help:      "Number of authorization decisions by outcome.",
}, []string{"decision"})

// Checker answers the two questions the authorization engine asks about a user.
type Checker interface {
	// HasRoleNamed reports whether the user holds a role with the given name.
	HasRoleNamed(ctx context.Context, userID uint64, name string) (bool, error)
	// HasPermissionCode reports whether any role held by the user grants the code.
	HasPermissionCode(ctx context.Context, userID uint64, code string) (bool, error)
	// PermissionCodes returns the union of codes granted by the user's roles.
	PermissionCodes(ctx context.Context, userID uint64) ([]string, error)
}

// DBChecker implements Checker on the user_roles and role_permissions tables.
type DBChecker struct {
	db *gorm.DB
}

// NewDBChecker creates a Checker reading from db.
func NewDBChecker(db *gorm.DB) *DBChecker {
	return &DBChecker{db: db}
}

// HasRoleNamed implements Checker.
func (c *DBChecker) HasRoleNamed(ctx context.Context, userID uint64, name string) (bool, error) {
	var count int64

	err := c.db.WithContext(ctx).Table("user_roles").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ? AND roles.name = ?", userID, name).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role membership: %w", err)
	}

	return count > 0, nil
}

// HasPermissionCode implements Checker.
func (c *DBChecker) HasPermissionCode(ctx context.Context, userID uint64, code string) (bool, error) {
	var count int64

	err := c.db.WithContext(ctx).Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ? AND permissions.code = ?", userID, code).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role permission: %w", err)
	}

	return count > 0, nil
}

// PermissionCodes implements Checker.
func (c *DBChecker) PermissionCodes(ctx context.Context, userID uint64) ([]string, error) {
	codes := []string{}

	err := c.db.WithContext(ctx).Table("permissions").
		Distinct("permissions.code").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Order("permissions.code ASC").
		Pluck("permissions.code", &codes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}

	return codes, nil
}

// Service is the authorization engine. Every permission check in the application goes
// through Authorize.
type Service struct {
	checker Checker
}

// NewService creates a new auth service reading grants from db.
func NewService(db *gorm.DB) *Service {
	return NewServiceWithChecker(NewDBChecker(db))
}

// NewServiceWithChecker creates a new auth service on top of an arbitrary Checker.
func NewServiceWithChecker(checker Checker) *Service {
	return &Service{checker: checker}
}

// Authorize decides whether principal may perform the operation guarded by code.
//
// Anonymous principals are always denied. Holders of the admin role are always allowed.
// Everyone else is allowed when one of their roles grants code. A missing grant is
// reported as (false, nil); an error means the grants could not be read.
func (s *Service) Authorize(ctx context.Context, principal *Principal, code string) (bool, error) {
	if principal == nil || !principal.Authenticated {
		decisions.WithLabelValues(decisionDeny).Inc()
		return false, nil
	}

	allowed, err := s.authorize(ctx, principal.ID, code)

	switch {
	case err != nil:
		decisions.WithLabelValues(decisionError).Inc()
	case allowed:
		decisions.WithLabelValues(decisionAllow).Inc()
	default:
		decisions.WithLabelValues(decisionDeny).Inc()
	}

	return allowed, err
}

func (s *Service) authorize(ctx context.Context, userID uint64, code string) (bool, error) {
	admin, err := s.checker.HasRoleNamed(ctx, userID, models.RoleAdmin)
	if err != nil {
		return false, err
	}

	if admin {
		return true, nil
	}

	return s.checker.HasPermissionCode(ctx, userID, code)
}

// IsAdmin reports whether the principal holds the admin role.
func (s *Service) IsAdmin(ctx context.Context, principal *Principal) (bool, error) {
	if principal == nil || !principal.Authenticated {
		return false, nil
	}

	return s.checker.HasRoleNamed(ctx, principal.ID, models.RoleAdmin)
}

// UserPermissions returns the permission codes granted to the principal through its roles,
// sorted and without duplicates. The admin bypass is not expanded into codes.
func (s *Service) UserPermissions(ctx context.Context, principal *Principal) ([]string, error) {
	if principal == nil || !principal.Authenticated {
		return []string{}, nil
	}

	return s.checker.PermissionCodes(ctx, principal.ID)
}
