package response

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Response is the error envelope; successful responses encode their payload directly
type Response struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// WriteJSON writes v with the given status
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a 200 OK response
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a 201 Created response
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

// WriteNoContent writes a 204 No Content response carrying the affected row count
func WriteNoContent(w http.ResponseWriter, count int64) {
	w.Header().Set("X-Total-Count", strconv.FormatInt(count, 10))
	w.WriteHeader(http.StatusNoContent)
}
