package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"conflict", Conflictf("role %q already exists", "x"), http.StatusConflict},
		{"validation", Invalid("unknown ids", []uint64{7}), http.StatusBadRequest},
		{"not found", NotFoundf("role not found"), http.StatusNotFound},
		{"denied", Deniedf("cannot delete system role"), http.StatusForbidden},
		{"unauthenticated", Unauthenticatedf("no token"), http.StatusUnauthorized},
		{"wrapped", fmt.Errorf("load: %w", NotFoundf("gone")), http.StatusNotFound},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestInvalidIDs(t *testing.T) {
	err := fmt.Errorf("assign: %w", Invalid("one or more permission ids are invalid", []uint64{3, 9}))

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []uint64{3, 9}, InvalidIDs(err))
	assert.Nil(t, InvalidIDs(fmt.Errorf("plain")))
	assert.Equal(t, "one or more permission ids are invalid: [3 9]", Invalid("one or more permission ids are invalid", []uint64{3, 9}).Error())
}
