package handlers

import (
	"net/http"

	"github.com/samber/lo"
	"github.com/xcono/slimrest/builder"
	"github.com/xcono/slimrest/web/database"
	"github.com/xcono/slimrest/web/response"
)

// SelectHandler handles GET requests for data retrieval
type SelectHandler struct{}

// NewSelectHandler creates a new SELECT handler
func NewSelectHandler() *SelectHandler {
	return &SelectHandler{}
}

// List serves a page of rows
func (h *SelectHandler) List(w http.ResponseWriter, r *http.Request, res *Resource) {
	page, err := res.query.ExecuteList(r.Context(), res.Table, r.URL.Query(), res.PageSize)
	if err != nil {
		response.WriteStoreError(w, r, "select", err)
		return
	}

	page.Data = hide(page.Data, res.Hidden)
	response.WriteSuccess(w, page)
}

// Find serves the row whose key equals id
func (h *SelectHandler) Find(w http.ResponseWriter, r *http.Request, res *Resource, id string) {
	record, err := res.query.ExecuteFind(r.Context(), res.Table, res.Key, builder.ParseValue(id), r.URL.Query())
	if err != nil {
		response.WriteStoreError(w, r, "select", err)
		return
	}

	response.WriteSuccess(w, lo.OmitByKeys(record, res.Hidden))
}

// hide strips hidden columns from every record
func hide(records []database.Record, hidden []string) []database.Record {
	if len(hidden) == 0 {
		return records
	}
	return lo.Map(records, func(r database.Record, _ int) database.Record {
		return lo.OmitByKeys(r, hidden)
	})
}
