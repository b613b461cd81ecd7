// Package controller holds helpers shared by the RBAC controllers.
package controller

import (
	"errors"

	"gorm.io/gorm"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// ID is the set of identifier types used by the models.
type ID interface {
	~uint | ~uint64
}

// Unique returns ids without duplicates, keeping the first occurrence order.
func Unique[T ID](ids []T) []T {
	seen := make(map[T]struct{}, len(ids))
	out := make([]T, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

// Missing returns every id of ids that has no row in the table of model.
func Missing[T ID](db *gorm.DB, model any, ids []T) ([]uint64, error) {
	ids = Unique(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	var found []T
	if err := db.Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	present := make(map[T]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}

	var missing []uint64

	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, uint64(id))
		}
	}

	return missing, nil
}
