package handlers

import (
	"net/http"

	"github.com/xcono/slimrest/web/response"
)

// InsertHandler handles POST requests for data insertion
type InsertHandler struct{}

// NewInsertHandler creates a new INSERT handler
func NewInsertHandler() *InsertHandler {
	return &InsertHandler{}
}

// Handle inserts the JSON object of the body and answers with its new id
func (h *InsertHandler) Handle(w http.ResponseWriter, r *http.Request, res *Resource) {
	data, err := decodeFields(r)
	if err != nil {
		response.WriteStoreError(w, r, "insert", err)
		return
	}

	if data.Len() == 0 {
		response.WriteBadRequest(w, "No data provided", "Request body must contain data to insert")
		return
	}

	id, err := res.store.Insert(r.Context(), res.Table, data)
	if err != nil {
		response.WriteStoreError(w, r, "insert", err)
		return
	}

	response.WriteCreated(w, map[string]any{res.Key: id})
}
