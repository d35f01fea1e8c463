package database

import (
	"context"
	"database/sql"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/zeromicro/go-zero/core/logx"
)

type connState int

const (
	stateUnconnected connState = iota
	stateConnected
	stateClosed
)

// rowKeywords lead statements that produce a result set.
var rowKeywords = []string{"SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH", "VALUES", "PRAGMA", "TABLE"}

var returningClause = regexp.MustCompile(`(?i)\bRETURNING\b`)

// Executor owns the single connection of one database and runs statements on it.
//
// The connection is opened lazily by the first Connect or Run and kept until Close.
// The pool is capped at one open connection, so concurrent callers are serialized
// by database/sql.
type Executor struct {
	cfg     ConnectionConfig
	dialect Dialect
	scanner *Scanner

	mu    sync.Mutex
	state connState
	db    *sql.DB
}

// NewExecutor creates an unconnected executor. The config is validated on Connect.
func NewExecutor(cfg ConnectionConfig) *Executor {
	cfg = cfg.WithDefaults()
	d, _ := LookupDialect(cfg.Driver)

	return &Executor{
		cfg:     cfg,
		dialect: d,
		scanner: NewScanner(),
	}
}

// NewExecutorWithDB adopts an already opened database. The executor starts connected.
func NewExecutorWithDB(db *sql.DB, driver string) *Executor {
	cfg := ConnectionConfig{Driver: driver}.WithDefaults()
	d, ok := LookupDialect(cfg.Driver)
	if !ok {
		d = dialects[DefaultDriver]
	}

	return &Executor{
		cfg:     cfg,
		dialect: d,
		scanner: NewScanner(),
		state:   stateConnected,
		db:      db,
	}
}

// Dialect returns the dialect of the configured driver
func (e *Executor) Dialect() Dialect {
	return e.dialect
}

// Config returns the connection settings with defaults applied
func (e *Executor) Config() ConnectionConfig {
	return e.cfg
}

// Connect establishes the connection. Calling it again is a no-op.
func (e *Executor) Connect(ctx context.Context) error {
	_, err := e.conn(ctx)
	return err
}

func (e *Executor) conn(ctx context.Context) (*sql.DB, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case stateConnected:
		return e.db, nil
	case stateClosed:
		return nil, ErrClosed
	}

	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := e.cfg.open()
	if err != nil {
		return nil, e.connectionError(err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, e.connectionError(err)
	}

	e.db = db
	e.state = stateConnected

	logx.WithContext(ctx).Infof("database: connected to %s database %q at %s:%d",
		e.cfg.Driver, e.cfg.Database, e.cfg.Host, e.cfg.Port)
	return db, nil
}

func (e *Executor) connectionError(err error) error {
	return &ConnectionError{
		Driver:   e.cfg.Driver,
		Host:     e.cfg.Host,
		Port:     e.cfg.Port,
		Database: e.cfg.Database,
		Username: e.cfg.Username,
		Err:      err,
		password: e.cfg.Password,
	}
}

// runMode selects between a query, returning a result set, and an exec.
type runMode int

const (
	modeDetect runMode = iota
	modeQuery
	modeExec
)

// Run executes a statement and returns its cursor. The caller must consume or
// Close the cursor to release the connection.
//
// Without arguments the statement is sent as is; otherwise it is prepared and the
// arguments are bound according to their kind. Whether the statement returns rows
// is read from its leading keyword and a RETURNING clause, ignoring comments and
// quoted text. Use Query or Exec when the caller already knows.
func (e *Executor) Run(ctx context.Context, query string, args Args) (*Cursor, error) {
	return e.run(ctx, query, args, modeDetect)
}

// Query runs a statement that returns a result set.
func (e *Executor) Query(ctx context.Context, query string, args Args) (*Cursor, error) {
	return e.run(ctx, query, args, modeQuery)
}

// Exec runs a statement for its effect; the cursor reports affected rows and the
// generated id.
func (e *Executor) Exec(ctx context.Context, query string, args Args) (*Cursor, error) {
	return e.run(ctx, query, args, modeExec)
}

func (e *Executor) run(ctx context.Context, query string, args Args, mode runMode) (*Cursor, error) {
	db, err := e.conn(ctx)
	if err != nil {
		return nil, err
	}

	argc := 0
	if args != nil {
		argc = args.Len()
	}

	start := time.Now()
	defer func() {
		logx.WithContext(ctx).WithDuration(time.Since(start)).Debugf("sql=%s argc=%d", query, argc)
	}()

	if mode == modeDetect {
		mode = modeExec
		if returnsRows(query) {
			mode = modeQuery
		}
	}

	if argc == 0 {
		return e.direct(ctx, db, query, mode)
	}
	return e.prepared(ctx, db, query, args, mode)
}

func (e *Executor) direct(ctx context.Context, db *sql.DB, query string, mode runMode) (*Cursor, error) {
	if mode == modeQuery {
		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			return nil, queryError("query", query, err)
		}
		return &Cursor{query: query, rows: rows, scanner: e.scanner}, nil
	}

	res, err := db.ExecContext(ctx, query)
	if err != nil {
		return nil, queryError("exec", query, err)
	}
	return &Cursor{query: query, result: res, scanner: e.scanner}, nil
}

func (e *Executor) prepared(ctx context.Context, db *sql.DB, query string, args Args, mode runMode) (*Cursor, error) {
	bound, values, err := args.bind(query, e.dialect)
	if err != nil {
		return nil, queryError("bind", query, err)
	}

	stmt, err := db.PrepareContext(ctx, bound)
	if err != nil {
		return nil, queryError("prepare", bound, err)
	}

	if mode == modeQuery {
		rows, err := stmt.QueryContext(ctx, values...)
		if err != nil {
			stmt.Close()
			return nil, queryError("query", bound, err)
		}
		return &Cursor{query: bound, stmt: stmt, rows: rows, scanner: e.scanner}, nil
	}

	res, err := stmt.ExecContext(ctx, values...)
	stmt.Close()
	if err != nil {
		return nil, queryError("exec", bound, err)
	}
	return &Cursor{query: bound, result: res, scanner: e.scanner}, nil
}

// Close releases the connection. The executor cannot be reused afterwards.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	db := e.db
	e.db = nil
	e.state = stateClosed

	if db == nil {
		return nil
	}
	return db.Close()
}

func returnsRows(query string) bool {
	q := strings.TrimLeft(stripSQL(query), " \t\r\n(")
	word := q
	if i := strings.IndexFunc(q, func(r rune) bool { return unicode.IsSpace(r) || r == '*' || r == '(' }); i >= 0 {
		word = q[:i]
	}
	if slices.Contains(rowKeywords, strings.ToUpper(word)) {
		return true
	}
	return returningClause.MatchString(q)
}

// stripSQL blanks out comments and quoted strings or identifiers, leaving only
// the keywords of query.
func stripSQL(query string) string {
	var b strings.Builder
	b.Grow(len(query))

	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				return b.String()
			}
			i += end
			b.WriteByte('\n')
		case c == '/' && i+1 < len(query) && query[i+1] == '*':
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 3
			b.WriteByte(' ')
		case c == '\'' || c == '"' || c == '`':
			// a doubled quote is an escaped quote and stays inside the literal
			j := i + 1
			for j < len(query) {
				if query[j] == c {
					if j+1 < len(query) && query[j+1] == c {
						j += 2
						continue
					}
					break
				}
				if query[j] == '\\' && c == '\'' {
					j++
				}
				j++
			}
			i = j
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
