package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAPIKey(t *testing.T) {
	keys := []string{"dispatch-key", "ops-key"}

	tests := []struct {
		name       string
		key        string
		wantStatus int
	}{
		{name: "first key", key: "dispatch-key", wantStatus: http.StatusOK},
		{name: "second key", key: "ops-key", wantStatus: http.StatusOK},
		{name: "missing key", key: "", wantStatus: http.StatusUnauthorized},
		{name: "unknown key", key: "other", wantStatus: http.StatusUnauthorized},
		{name: "case differs", key: "DISPATCH-KEY", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodDelete, "/internal/agents/a", nil)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h := ValidateAPIKey(keys)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})

			require.NoError(t, h(c))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
