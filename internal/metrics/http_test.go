package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"static path unchanged", "/api/quote", "/api/quote"},
		{
			"booking id collapsed",
			"/api/admin/bookings/2b1c3f7e-9d4a-4c2b-8e1f-0a5b6c7d8e9f/reprice",
			"/api/admin/bookings/{id}/reprice",
		},
		{
			"every id segment collapsed",
			"/a/2b1c3f7e-9d4a-4c2b-8e1f-0a5b6c7d8e9f/b/6f1e2d3c-4b5a-4978-8aff-000000000000",
			"/a/{id}/b/{id}",
		},
		{
			"non-uuid segment left alone",
			"/api/admin/bookings/not-a-uuid/audit",
			"/api/admin/bookings/not-a-uuid/audit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, routeLabel(tt.path))
		})
	}
}

func TestStatusRecorder(t *testing.T) {
	t.Run("captures explicit status", func(t *testing.T) {
		rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
		rec.WriteHeader(http.StatusConflict)
		assert.Equal(t, http.StatusConflict, rec.status)
	})

	t.Run("second WriteHeader does not overwrite", func(t *testing.T) {
		rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
		rec.WriteHeader(http.StatusNotFound)
		rec.WriteHeader(http.StatusOK)
		assert.Equal(t, http.StatusNotFound, rec.status)
	})

	t.Run("implicit 200 on bare write", func(t *testing.T) {
		rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
		_, err := rec.Write([]byte("ok"))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.status)
	})
}
