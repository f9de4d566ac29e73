package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("vehicle 4: %w", ErrNotFound), http.StatusNotFound},
		{ErrSelfAction, http.StatusForbidden},
		{ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("approve: %w", ErrInvalidTransition), http.StatusConflict},
		{ErrDuplicate, http.StatusConflict},
		{ErrNotConfigured, http.StatusServiceUnavailable},
		{ErrUpstream, http.StatusBadGateway},
		{ErrBadRequest, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), "%v", tc.err)
	}
}
