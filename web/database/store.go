package database

import (
	"context"
	"fmt"
	"strconv"

	"github.com/huandu/go-sqlbuilder"
)

// DefaultDeleteLimit is the row cap Delete callers pass unless they mean otherwise.
const DefaultDeleteLimit = 1

// Store exposes table oriented verbs on top of an Executor.
//
// Table and column names are interpolated as given. They must be trusted,
// developer supplied identifiers; only values are bound.
type Store struct {
	exec *Executor
}

// NewStore creates a store running its statements on exec
func NewStore(exec *Executor) *Store {
	return &Store{exec: exec}
}

// Open creates a store with its own lazily connected executor
func Open(cfg ConnectionConfig) *Store {
	return NewStore(NewExecutor(cfg))
}

// Executor returns the underlying executor
func (s *Store) Executor() *Executor {
	return s.exec
}

// Flavor returns the go-sqlbuilder flavor statements are rendered in
func (s *Store) Flavor() sqlbuilder.Flavor {
	return s.exec.Dialect().Flavor
}

// FetchAll runs query and returns every row.
func (s *Store) FetchAll(ctx context.Context, query string, args Args) ([]Record, error) {
	cur, err := s.exec.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return cur.FetchAll()
}

// FetchSingle runs query and returns its first row, or ErrNoRow.
func (s *Store) FetchSingle(ctx context.Context, query string, args Args) (Record, error) {
	cur, err := s.exec.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return cur.Fetch()
}

// Count runs query and returns the number of rows it affected or returned.
// It is not a COUNT(*) aggregate; see CountRows for that.
func (s *Store) Count(ctx context.Context, query string, args Args) (int64, error) {
	cur, err := s.exec.Run(ctx, query, args)
	if err != nil {
		return 0, err
	}
	return cur.RowCount()
}

// CountRows returns SELECT COUNT(*) of the rows matching where. A nil or empty
// where counts the whole table.
func (s *Store) CountRows(ctx context.Context, table string, where *Fields) (int64, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(sb.As("COUNT(*)", "total")).From(table)
	if where != nil && where.Len() > 0 {
		sb.Where(Equalities(&sb.Cond, where)...)
	}

	query, args := sb.BuildWithFlavor(s.Flavor())
	record, err := s.FetchSingle(ctx, query, Positional(args))
	if err != nil {
		return 0, err
	}
	return toInt64(record["total"])
}

// Insert adds one row and returns its generated key. Columns are written in the
// insertion order of data.
func (s *Store) Insert(ctx context.Context, table string, data *Fields) (int64, error) {
	cols, vals := columnsAndValues(data)
	if len(cols) == 0 {
		return 0, &ConfigurationError{Field: "data", Err: ErrEmptyFields}
	}

	ib := sqlbuilder.NewInsertBuilder()
	ib.InsertInto(table).Cols(cols...).Values(vals...)

	query, args := ib.BuildWithFlavor(s.Flavor())
	cur, err := s.exec.Exec(ctx, query, Positional(args))
	if err != nil {
		return 0, err
	}

	if !s.exec.Dialect().ResultInsertID {
		cur.Close()
		return s.LastInsertID(ctx)
	}
	return cur.LastInsertID()
}

// Update sets data on the rows matching every where equality and returns the
// number of modified rows. Data values are bound before where values.
func (s *Store) Update(ctx context.Context, table string, data, where *Fields) (int64, error) {
	cols, vals := columnsAndValues(data)
	if len(cols) == 0 {
		return 0, &ConfigurationError{Field: "data", Err: ErrEmptyFields}
	}
	if where == nil || where.Len() == 0 {
		return 0, &ConfigurationError{Field: "where", Err: ErrEmptyCondition}
	}

	ub := sqlbuilder.NewUpdateBuilder()
	ub.Update(table)

	assignments := make([]string, 0, len(cols))
	for i, col := range cols {
		assignments = append(assignments, ub.Assign(col, vals[i]))
	}
	ub.Set(assignments...)
	ub.Where(Equalities(&ub.Cond, where)...)

	query, args := ub.BuildWithFlavor(s.Flavor())
	return s.affected(ctx, query, Positional(args))
}

// Delete removes the rows matching every where equality, at most limit of them
// when limit > 0 and the dialect supports DELETE ... LIMIT.
func (s *Store) Delete(ctx context.Context, table string, where *Fields, limit int) (int64, error) {
	if where == nil || where.Len() == 0 {
		return 0, &ConfigurationError{Field: "where", Err: ErrEmptyCondition}
	}

	dlb := sqlbuilder.NewDeleteBuilder()
	dlb.DeleteFrom(table)
	dlb.Where(Equalities(&dlb.Cond, where)...)
	if limit > 0 && s.exec.Dialect().DeleteLimit {
		dlb.Limit(limit)
	}

	query, args := dlb.BuildWithFlavor(s.Flavor())
	return s.affected(ctx, query, Positional(args))
}

// GetByID returns the row whose key column equals id, or ErrNoRow.
func (s *Store) GetByID(ctx context.Context, table, key string, id any) (Record, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("*").From(table).Where(sb.Equal(key, id))

	query, args := sb.BuildWithFlavor(s.Flavor())
	return s.FetchSingle(ctx, query, Positional(args))
}

// DeleteByID removes the rows whose key column equals id.
func (s *Store) DeleteByID(ctx context.Context, table, key string, id any) (int64, error) {
	return s.Delete(ctx, table, NewFields(key, id), 0)
}

// DeleteByIDs removes the rows whose column value is one of ids.
func (s *Store) DeleteByIDs(ctx context.Context, table, column string, ids ...any) (int64, error) {
	if len(ids) == 0 {
		return 0, &ConfigurationError{Field: "ids", Err: ErrEmptyCondition}
	}

	dlb := sqlbuilder.NewDeleteBuilder()
	dlb.DeleteFrom(table)
	dlb.Where(dlb.In(column, ids...))

	query, args := dlb.BuildWithFlavor(s.Flavor())
	return s.affected(ctx, query, Positional(args))
}

// DeleteAll removes every row of table. Use it instead of Delete when that is
// really the intent.
func (s *Store) DeleteAll(ctx context.Context, table string) (int64, error) {
	return s.affected(ctx, "DELETE FROM "+table, nil)
}

// Truncate empties table. SQLite has no TRUNCATE and gets a DELETE instead.
func (s *Store) Truncate(ctx context.Context, table string) (int64, error) {
	if s.exec.Dialect().Name == DriverSQLite {
		return s.DeleteAll(ctx, table)
	}
	return s.affected(ctx, "TRUNCATE TABLE "+table, nil)
}

// Raw runs a statement without arguments and discards its result.
func (s *Store) Raw(ctx context.Context, query string) error {
	cur, err := s.exec.Run(ctx, query, nil)
	if err != nil {
		return err
	}
	return cur.Close()
}

// LastInsertID asks the database for the last key generated on the connection.
// It is only meaningful right after an insert.
func (s *Store) LastInsertID(ctx context.Context) (int64, error) {
	query := s.exec.Dialect().LastInsertIDQuery
	record, err := s.FetchSingle(ctx, query, nil)
	if err != nil {
		return 0, err
	}
	for _, v := range record {
		return toInt64(v)
	}
	return 0, queryError("last insert id", query, ErrNoRow)
}

// affected execs query and returns the number of rows it changed.
func (s *Store) affected(ctx context.Context, query string, args Args) (int64, error) {
	cur, err := s.exec.Exec(ctx, query, args)
	if err != nil {
		return 0, err
	}
	return cur.RowCount()
}

// Close closes the underlying executor
func (s *Store) Close() error {
	return s.exec.Close()
}

// Equalities renders col = ? conditions in insertion order; the builder joins them with AND.
func Equalities(cond *sqlbuilder.Cond, where *Fields) []string {
	exprs := make([]string, 0, where.Len())
	for pair := where.Oldest(); pair != nil; pair = pair.Next() {
		exprs = append(exprs, cond.Equal(pair.Key, pair.Value))
	}
	return exprs
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	default:
		return 0, fmt.Errorf("database: cannot read %T as an integer", v)
	}
}
