package handlers

import (
	"net/http"

	"github.com/xcono/slimrest/web/response"
)

// UpdateHandler handles PATCH requests for data updates
type UpdateHandler struct{}

// NewUpdateHandler creates a new UPDATE handler
func NewUpdateHandler() *UpdateHandler {
	return &UpdateHandler{}
}

// Handle handles PATCH requests
func (h *UpdateHandler) Handle(w http.ResponseWriter, r *http.Request, res *Resource, id string) {
	updates, err := decodeFields(r)
	if err != nil {
		response.WriteStoreError(w, r, "update", err)
		return
	}

	if updates.Len() == 0 {
		response.WriteBadRequest(w, "No data provided", "Request body must contain data to update")
		return
	}

	where, err := conditions(r, res, id)
	if err != nil {
		response.WriteStoreError(w, r, "update", err)
		return
	}

	// full-table updates are never issued from HTTP
	if where.Len() == 0 {
		response.WriteBadRequest(w, "Filters required", "PATCH requests must target an id or include at least one filter")
		return
	}

	rowsAffected, err := res.store.Update(r.Context(), res.Table, updates, where)
	if err != nil {
		response.WriteStoreError(w, r, "update", err)
		return
	}

	if rowsAffected == 0 {
		response.WriteNotFound(w, "No rows matched the filter criteria", "No records were updated")
		return
	}

	response.WriteNoContent(w, rowsAffected)
}
