package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoRow is returned by FetchSingle and Cursor.Fetch when nothing matched.
	// It is an empty result, not a failure.
	ErrNoRow = fmt.Errorf("database: no row found: %w", sql.ErrNoRows)

	// ErrEmptyCondition rejects UPDATE/DELETE statements without a WHERE condition.
	ErrEmptyCondition = errors.New("empty condition would affect every row")

	// ErrEmptyFields rejects INSERT/UPDATE statements without any column.
	ErrEmptyFields = errors.New("no column values given")

	// ErrMissingField is reported when a required connection setting is absent.
	ErrMissingField = errors.New("is required")

	// ErrClosed is returned by an Executor after Close.
	ErrClosed = errors.New("database: executor is closed")
)

// ConfigurationError reports an unusable configuration or call precondition.
// It is always raised before anything is sent to the database.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("database: configuration error: %s %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ConnectionError reports a failed connection attempt.
type ConnectionError struct {
	Driver   string
	Host     string
	Port     int
	Database string
	Username string
	// Err is the driver error; its text is included in Error() with the password scrubbed.
	Err      error
	password string
}

func (e *ConnectionError) Error() string {
	msg := e.Err.Error()
	if e.password != "" {
		msg = strings.ReplaceAll(msg, e.password, "****")
	}
	return fmt.Sprintf("database: failed to connect to %s database %q at %s:%d as %q: %s",
		e.Driver, e.Database, e.Host, e.Port, e.Username, msg)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// QueryError wraps a prepare, bind or execute failure.
type QueryError struct {
	// Op is one of "bind", "prepare", "query", "exec", "scan".
	Op    string
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("database: %s failed: %v (query: %s)", e.Op, e.Err, e.Query)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func queryError(op, query string, err error) error {
	if err == nil {
		return nil
	}
	return &QueryError{Op: op, Query: query, Err: err}
}
