package handlers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/xcono/slimrest/schema"
	"github.com/xcono/slimrest/web/database"
	"github.com/xcono/slimrest/web/query"
	"github.com/xcono/slimrest/web/response"
)

// Resource is a table exposed under /{Name}
type Resource struct {
	Name     string
	Table    string
	Key      string
	Hidden   []string
	PageSize int

	store *database.Store
	query *query.Executor
}

// NewResource binds a configured schema to the store of its service
func NewResource(name string, sch schema.Schema, store *database.Store) *Resource {
	return &Resource{
		Name:     name,
		Table:    sch.TableName(name),
		Key:      sch.KeyColumn(),
		Hidden:   sch.Hidden,
		PageSize: sch.PageSize,
		store:    store,
		query:    query.NewExecutor(store),
	}
}

// About is served on GET /
type About struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Resources []string `json:"resources"`
}

// Router handles request routing and delegates to appropriate handlers
type Router struct {
	about     About
	resources map[string]*Resource

	selectHandler *SelectHandler
	insertHandler *InsertHandler
	updateHandler *UpdateHandler
	deleteHandler *DeleteHandler
}

// NewRouter creates a new request router
func NewRouter(name, version string, resources ...*Resource) *Router {
	byName := lo.KeyBy(resources, func(r *Resource) string { return r.Name })

	names := lo.Keys(byName)
	sort.Strings(names)

	return &Router{
		about:         About{Name: name, Version: version, Resources: names},
		resources:     byName,
		selectHandler: NewSelectHandler(),
		insertHandler: NewInsertHandler(),
		updateHandler: NewUpdateHandler(),
		deleteHandler: NewDeleteHandler(),
	}
}

// ServeHTTP routes /, /ping, /{resource} and /{resource}/{id}
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := strings.Trim(req.URL.Path, "/")
	if path == "" {
		r.handleAbout(w, req)
		return
	}
	if path == "ping" {
		r.handlePing(w, req)
		return
	}

	parts := strings.Split(path, "/")
	if len(parts) > 2 {
		response.WriteNotFound(w, "Not found", "Unknown path "+req.URL.Path)
		return
	}

	res, ok := r.resources[parts[0]]
	if !ok {
		response.WriteNotFound(w, "Unknown resource", "No resource named "+parts[0])
		return
	}

	id := ""
	if len(parts) == 2 {
		id = parts[1]
	}

	switch req.Method {
	case http.MethodGet:
		if id != "" {
			r.selectHandler.Find(w, req, res, id)
		} else {
			r.selectHandler.List(w, req, res)
		}
	case http.MethodPost:
		if id != "" {
			response.WriteMethodNotAllowed(w, req.Method)
			return
		}
		r.insertHandler.Handle(w, req, res)
	case http.MethodPatch:
		r.updateHandler.Handle(w, req, res, id)
	case http.MethodDelete:
		r.deleteHandler.Handle(w, req, res, id)
	default:
		// PUT is not supported: updates are partial
		response.WriteMethodNotAllowed(w, req.Method)
	}
}

func (r *Router) handleAbout(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		response.WriteMethodNotAllowed(w, req.Method)
		return
	}
	response.WriteSuccess(w, r.about)
}

func (r *Router) handlePing(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		response.WriteMethodNotAllowed(w, req.Method)
		return
	}
	response.WriteSuccess(w, map[string]any{
		"message": "pong",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
