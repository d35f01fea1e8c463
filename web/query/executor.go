package query

import (
	"context"
	"net/url"

	"github.com/xcono/slimrest/builder"
	"github.com/xcono/slimrest/web/database"
	"github.com/xcono/slimrest/web/pagination"
)

// Page is one page of a list request
type Page struct {
	Meta pagination.Summary `json:"meta"`
	Data []database.Record  `json:"data"`
}

// Executor handles query execution
type Executor struct {
	store   *database.Store
	builder *builder.QueryBuilder
}

// NewExecutor creates a new query executor
func NewExecutor(store *database.Store) *Executor {
	return &Executor{
		store:   store,
		builder: builder.NewQueryBuilder(store.Flavor()),
	}
}

// ExecuteList counts the rows matching params, then fetches the requested page.
// pageSize is used when params carry no page_size.
func (e *Executor) ExecuteList(ctx context.Context, table string, params url.Values, pageSize int) (*Page, error) {
	q, err := e.builder.ParseURLParams(table, params)
	if err != nil {
		return nil, err
	}
	if q.PageSize < 1 {
		q.PageSize = pageSize
	}

	total, err := e.store.CountRows(ctx, table, q.Filters)
	if err != nil {
		return nil, err
	}

	p := pagination.New(q.Page, q.PageSize, int(total))
	page := &Page{Meta: p.Summary(), Data: []database.Record{}}
	if total == 0 {
		return page, nil
	}

	sql, args := e.builder.BuildSelect(q, p.PageSize(), p.Offset())
	page.Data, err = e.store.FetchAll(ctx, sql, database.Positional(args))
	if err != nil {
		return nil, err
	}
	return page, nil
}

// ExecuteFind returns the row of table whose key equals id, or database.ErrNoRow
func (e *Executor) ExecuteFind(ctx context.Context, table, key string, id any, params url.Values) (database.Record, error) {
	var columns []string
	if sel := params.Get(builder.ParamSelect); sel != "" {
		q, err := e.builder.ParseURLParams(table, url.Values{builder.ParamSelect: {sel}})
		if err != nil {
			return nil, err
		}
		columns = q.Select
	}

	sql, args := e.builder.BuildFind(table, key, id, columns)
	return e.store.FetchSingle(ctx, sql, database.Positional(args))
}
