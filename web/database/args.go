package database

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Fields is a column to value mapping that keeps insertion order.
type Fields = orderedmap.OrderedMap[string, any]

// NewFields builds Fields from alternating column, value pairs.
// A trailing column without a value is bound to NULL.
func NewFields(pairs ...any) *Fields {
	f := orderedmap.New[string, any]()
	for i := 0; i < len(pairs); i += 2 {
		col, _ := pairs[i].(string)
		var val any
		if i+1 < len(pairs) {
			val = pairs[i+1]
		}
		f.Set(col, val)
	}
	return f
}

// Args is the argument set of a statement: Positional or Named.
type Args interface {
	Len() int
	bind(query string, d Dialect) (string, []any, error)
}

// Positional arguments are bound to placeholders left to right.
type Positional []any

// Len returns the number of arguments.
func (p Positional) Len() int { return len(p) }

func (p Positional) bind(query string, _ Dialect) (string, []any, error) {
	values := make([]any, len(p))
	for i, v := range p {
		values[i] = bindValue(v)
	}
	return query, values, nil
}

// Named arguments are bound to :name placeholders. A PostgreSQL cast is written
// as usual, :id::text; the :: is kept out of placeholder parsing.
type Named map[string]any

// castMark stands in for :: while the named query is compiled.
const castMark = "\x00"

// Len returns the number of arguments.
func (n Named) Len() int { return len(n) }

func (n Named) bind(query string, d Dialect) (string, []any, error) {
	values := make(map[string]interface{}, len(n))
	for k, v := range n {
		values[k] = bindValue(v)
	}

	casts := strings.Contains(query, "::") && !strings.Contains(query, castMark)
	if casts {
		query = strings.ReplaceAll(query, "::", castMark)
	}

	q, args, err := sqlx.Named(query, values)
	if err != nil {
		return "", nil, err
	}

	q = sqlx.Rebind(d.BindType, q)
	if casts {
		q = strings.ReplaceAll(q, castMark, "::")
	}
	return q, args, nil
}

// bindValue gives every integer kind the int64 representation drivers bind as an
// integer. Other values keep their natural type.
func bindValue(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return uintValue(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return uintValue(x)
	case json.Number:
		return numberValue(x)
	default:
		return v
	}
}

// numberValue binds integers as int64 and fractions as float64. Integers out of
// the int64 range are bound as their decimal text so no digit is lost.
func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if !strings.ContainsAny(n.String(), ".eE") {
		return n.String()
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func uintValue(u uint64) any {
	if u > math.MaxInt64 {
		return u
	}
	return int64(u)
}

// ClassifyArgs infers the argument kind of a decoded mapping. The mapping is
// positional iff its keys are exactly "0", "1", ... "n-1" in that order.
//
// A single entry keyed "0" is ambiguous and classifies as positional; callers
// that know their placeholders should build Positional or Named directly.
func ClassifyArgs(m *Fields) Args {
	if m == nil || m.Len() == 0 {
		return Positional{}
	}

	positional := make(Positional, 0, m.Len())
	i := 0
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key != strconv.Itoa(i) {
			named := make(Named, m.Len())
			for p := m.Oldest(); p != nil; p = p.Next() {
				named[p.Key] = p.Value
			}
			return named
		}
		positional = append(positional, pair.Value)
		i++
	}
	return positional
}

// columnsAndValues splits Fields in insertion order.
func columnsAndValues(f *Fields) ([]string, []any) {
	if f == nil {
		return nil, nil
	}
	cols := make([]string, 0, f.Len())
	vals := make([]any, 0, f.Len())
	for pair := f.Oldest(); pair != nil; pair = pair.Next() {
		cols = append(cols, pair.Key)
		vals = append(vals, pair.Value)
	}
	return cols, vals
}
