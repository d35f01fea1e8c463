package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/xcono/slimrest/builder"
	"github.com/xcono/slimrest/web/database"
	"github.com/zeromicro/go-zero/core/logx"
)

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, statusCode int, message, details string) {
	WriteJSON(w, statusCode, Response{
		Error:   message,
		Code:    code(statusCode),
		Details: details,
	})
}

func code(statusCode int) string {
	return strings.ToLower(strings.ReplaceAll(http.StatusText(statusCode), " ", "_"))
}

// WriteBadRequest writes a 400 Bad Request error
func WriteBadRequest(w http.ResponseWriter, message, details string) {
	WriteError(w, http.StatusBadRequest, message, details)
}

// WriteParseError writes a 400 for malformed query strings and bodies
func WriteParseError(w http.ResponseWriter, details string) {
	WriteBadRequest(w, "Invalid request", details)
}

// WriteNotFound writes a 404 Not Found error
func WriteNotFound(w http.ResponseWriter, message, details string) {
	WriteError(w, http.StatusNotFound, message, details)
}

// WriteMethodNotAllowed writes a 405 Method Not Allowed error
func WriteMethodNotAllowed(w http.ResponseWriter, method string) {
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed",
		fmt.Sprintf("Method %s not supported", method))
}

// WriteStoreError maps an error returned while serving operation to a status code.
// Connection details and driver messages are logged, never sent to the client.
func WriteStoreError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	var (
		parseErr *builder.ParseError
		cfgErr   *database.ConfigurationError
		connErr  *database.ConnectionError
		queryErr *database.QueryError
	)

	switch {
	case errors.As(err, &parseErr):
		WriteParseError(w, parseErr.Error())
	case errors.Is(err, database.ErrNoRow):
		WriteNotFound(w, "Not found", "No record matched the request")
	case errors.As(err, &cfgErr):
		WriteBadRequest(w, fmt.Sprintf("Invalid %s request", operation), cfgErr.Error())
	case errors.As(err, &connErr):
		logx.WithContext(r.Context()).Errorf("%s: %v", operation, err)
		WriteError(w, http.StatusServiceUnavailable, "Database unavailable", "")
	case errors.As(err, &queryErr):
		logx.WithContext(r.Context()).Errorf("%s: %v", operation, err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Database %s failed", operation), "The database rejected the statement")
	default:
		logx.WithContext(r.Context()).Errorf("%s: %v", operation, err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("%s failed", operation), "")
	}
}
