package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", New(InvalidArgument, "bad"), http.StatusBadRequest},
		{"already exists", New(AlreadyExists, "dup"), http.StatusBadRequest},
		{"unauthorized", New(Unauthorized, "nope"), http.StatusUnauthorized},
		{"forbidden", New(Forbidden, "nope"), http.StatusForbidden},
		{"not found", New(NotFound, "gone"), http.StatusNotFound},
		{"upstream", New(Upstream, "model down"), http.StatusInternalServerError},
		{"internal", New(Internal, "oops"), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", New(NotFound, "gone")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, New(NotFound, "History not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"History not found"}`, rec.Body.String())
}

func TestWriteHidesUnclassifiedDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, errors.New("pg: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", New(NotFound, "gone"))
	assert.True(t, IsKind(err, NotFound))
	assert.False(t, IsKind(err, Forbidden))
	assert.False(t, IsKind(errors.New("plain"), NotFound))
}
