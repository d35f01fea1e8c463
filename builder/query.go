package builder

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/huandu/go-sqlbuilder"
	"github.com/xcono/slimrest/web/database"
)

// OpEQ is the only filter operator accepted in query strings
const OpEQ = "eq"

// Operators recognized in query strings but not supported
var unsupportedOps = []string{"neq", "gt", "gte", "lt", "lte", "like", "ilike", "in", "is", "not"}

// Reserved query parameters; everything else is an equality filter
const (
	ParamSelect   = "select"
	ParamOrder    = "order"
	ParamPage     = "page"
	ParamPageSize = "page_size"
	ParamLimit    = "limit"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name can be interpolated as a column name
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// ParseError is returned for malformed query strings and request bodies
type ParseError struct {
	Param  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %s", e.Param, e.Reason)
}

// ListQuery is a parsed GET /{resource} request
type ListQuery struct {
	Table    string
	Select   []string
	Filters  *database.Fields
	Order    []string
	Page     int
	PageSize int
}

// QueryBuilder renders list and lookup queries for one SQL flavor
type QueryBuilder struct {
	flavor sqlbuilder.Flavor
}

// NewQueryBuilder creates a new query builder
func NewQueryBuilder(flavor sqlbuilder.Flavor) *QueryBuilder {
	return &QueryBuilder{flavor: flavor}
}

// ParseURLParams parses list query parameters
func (b *QueryBuilder) ParseURLParams(table string, params url.Values) (*ListQuery, error) {
	query := &ListQuery{Table: table}

	if selectParam := params.Get(ParamSelect); selectParam != "" {
		columns, err := parseColumns(ParamSelect, selectParam)
		if err != nil {
			return nil, err
		}
		query.Select = columns
	}

	filters, err := ParseFilters(params)
	if err != nil {
		return nil, err
	}
	query.Filters = filters

	if orderParam := params.Get(ParamOrder); orderParam != "" {
		order, err := parseOrder(orderParam)
		if err != nil {
			return nil, err
		}
		query.Order = order
	}

	if query.Page, err = parseInt(params, ParamPage); err != nil {
		return nil, err
	}
	if query.PageSize, err = parseInt(params, ParamPageSize); err != nil {
		return nil, err
	}

	return query, nil
}

// ParseFilters turns every non-reserved parameter into an equality condition.
// Keys are sorted so the rendered SQL is deterministic.
func ParseFilters(params url.Values) (*database.Fields, error) {
	keys := make([]string, 0, len(params))
	for key, values := range params {
		if len(values) == 0 || values[0] == "" {
			continue
		}
		switch key {
		case ParamSelect, ParamOrder, ParamPage, ParamPageSize, ParamLimit:
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	filters := database.NewFields()
	for _, key := range keys {
		if !ValidIdentifier(key) {
			return nil, &ParseError{Param: key, Reason: "invalid column name"}
		}
		value, err := parseFilterValue(key, params.Get(key))
		if err != nil {
			return nil, err
		}
		filters.Set(key, value)
	}
	return filters, nil
}

// parseFilterValue accepts "value" and "eq.value"
func parseFilterValue(key, raw string) (any, error) {
	if op, rest, ok := strings.Cut(raw, "."); ok {
		if op == OpEQ {
			return ParseValue(rest), nil
		}
		for _, unsupported := range unsupportedOps {
			if op == unsupported {
				return nil, &ParseError{Param: key, Reason: "unsupported operator " + op}
			}
		}
	}
	return ParseValue(raw), nil
}

// ParseValue converts integral strings to int64 and keeps everything else as text
func ParseValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

func parseColumns(param, raw string) ([]string, error) {
	var columns []string
	for _, col := range strings.Split(raw, ",") {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		if col != "*" && !ValidIdentifier(col) {
			return nil, &ParseError{Param: param, Reason: "invalid column name " + strconv.Quote(col)}
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// parseOrder accepts col, col.asc and col.desc separated by commas
func parseOrder(raw string) ([]string, error) {
	var order []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		column, direction, _ := strings.Cut(part, ".")
		if !ValidIdentifier(column) {
			return nil, &ParseError{Param: ParamOrder, Reason: "invalid column name " + strconv.Quote(column)}
		}

		switch strings.ToUpper(direction) {
		case "":
			order = append(order, column)
		case "ASC", "DESC":
			order = append(order, column+" "+strings.ToUpper(direction))
		default:
			return nil, &ParseError{Param: ParamOrder, Reason: "invalid direction " + strconv.Quote(direction)}
		}
	}
	return order, nil
}

func parseInt(params url.Values, param string) (int, error) {
	raw := params.Get(param)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ParseError{Param: param, Reason: "not an integer"}
	}
	return n, nil
}

// BuildSelect renders q with a LIMIT/OFFSET window
func (b *QueryBuilder) BuildSelect(q *ListQuery, limit, offset int) (string, []any) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(selectColumns(q.Select)...).From(q.Table)

	if q.Filters != nil && q.Filters.Len() > 0 {
		sb.Where(database.Equalities(&sb.Cond, q.Filters)...)
	}
	if len(q.Order) > 0 {
		sb.OrderBy(q.Order...)
	}
	if limit > 0 {
		sb.Limit(limit).Offset(offset)
	}

	return sb.BuildWithFlavor(b.flavor)
}

// BuildFind renders a lookup of a single row by key
func (b *QueryBuilder) BuildFind(table, key string, id any, columns []string) (string, []any) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(selectColumns(columns)...).From(table).Where(sb.Equal(key, id))
	return sb.BuildWithFlavor(b.flavor)
}

func selectColumns(columns []string) []string {
	if len(columns) == 0 {
		return []string{"*"}
	}
	return columns
}
