package controller_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/library_service/internal/controller"
	"github.com/Freeeeeet/library_service/internal/errs"
)

func Test_StatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not_found", fmt.Errorf("book not found: %w", errs.ErrNotFound), http.StatusNotFound},
		{"invalid_state", fmt.Errorf("request already approved: %w", errs.ErrInvalidState), http.StatusConflict},
		{"out_of_stock", fmt.Errorf("approve: %w", errs.ErrOutOfStock), http.StatusConflict},
		{"insufficient_credits", errs.ErrInsufficientCredits, http.StatusConflict},
		{"conflict", fmt.Errorf("create member: %w", errs.ErrConflict), http.StatusConflict},
		{"validation", fmt.Errorf("isbn must be 13 digits: %w", errs.ErrValidation), http.StatusBadRequest},
		{"unauthorized", errs.ErrUnauthorized, http.StatusForbidden},
		{"unavailable", fmt.Errorf("begin transaction: %w", errs.ErrUnavailable), http.StatusServiceUnavailable},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, controller.StatusFromError(tc.err))
		})
	}
}
