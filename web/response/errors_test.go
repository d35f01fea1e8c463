package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xcono/slimrest/builder"
	"github.com/xcono/slimrest/web/database"
)

func TestWriteStoreError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		details string
	}{
		{
			name:   "parse error",
			err:    &builder.ParseError{Param: "order", Reason: "invalid direction"},
			status: http.StatusBadRequest,
			code:   "bad_request",
		},
		{
			name:   "no row",
			err:    fmt.Errorf("find: %w", database.ErrNoRow),
			status: http.StatusNotFound,
			code:   "not_found",
		},
		{
			name:   "configuration error",
			err:    &database.ConfigurationError{Field: "where", Err: database.ErrEmptyCondition},
			status: http.StatusBadRequest,
			code:   "bad_request",
		},
		{
			name: "connection error hides connection details",
			err: &database.ConnectionError{
				Driver: database.DriverMySQL, Host: "db", Port: 3306, Database: "shop", Username: "app",
				Err: errors.New("connection refused"),
			},
			status:  http.StatusServiceUnavailable,
			code:    "service_unavailable",
			details: "",
		},
		{
			name:    "query error hides driver text",
			err:     &database.QueryError{Op: "exec", Query: "INSERT INTO shop_users", Err: errors.New("Duplicate entry 'a' for key 'shop_users.email'")},
			status:  http.StatusInternalServerError,
			code:    "internal_server_error",
			details: "The database rejected the statement",
		},
		{
			name:   "anything else",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			code:   "internal_server_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/users", nil)

			WriteStoreError(w, r, "select", tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
			if tt.details != "" {
				assert.Equal(t, tt.details, body.Details)
			}
			assert.NotContains(t, w.Body.String(), "shop")
		})
	}
}

func TestWriteNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	WriteNoContent(w, 42)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "42", w.Header().Get("X-Total-Count"))
	assert.Empty(t, w.Body.String())
}
