package handlers

import (
	"net/http"
	"strconv"

	"github.com/xcono/slimrest/builder"
	"github.com/xcono/slimrest/web/database"
	"github.com/xcono/slimrest/web/response"
)

// DeleteHandler handles DELETE requests
type DeleteHandler struct{}

// NewDeleteHandler creates a new DELETE handler
func NewDeleteHandler() *DeleteHandler {
	return &DeleteHandler{}
}

// Handle removes the row with the given id, or up to limit rows matching the
// query string filters. limit defaults to database.DefaultDeleteLimit; 0 lifts it.
func (h *DeleteHandler) Handle(w http.ResponseWriter, r *http.Request, res *Resource, id string) {
	where, err := conditions(r, res, id)
	if err != nil {
		response.WriteStoreError(w, r, "delete", err)
		return
	}

	if where.Len() == 0 {
		response.WriteBadRequest(w, "Filters required", "DELETE requests must target an id or include at least one filter")
		return
	}

	limit := database.DefaultDeleteLimit
	if raw := r.URL.Query().Get(builder.ParamLimit); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			response.WriteParseError(w, "limit must be a non-negative integer")
			return
		}
	}

	rowsAffected, err := res.store.Delete(r.Context(), res.Table, where, limit)
	if err != nil {
		response.WriteStoreError(w, r, "delete", err)
		return
	}

	if rowsAffected == 0 {
		response.WriteNotFound(w, "No rows matched the filter criteria", "No records were deleted")
		return
	}

	response.WriteNoContent(w, rowsAffected)
}
