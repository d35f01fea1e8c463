package database

import (
	"database/sql"
	"errors"
)

// Cursor is the outcome of a Run: either an open result set or an exec result.
type Cursor struct {
	query   string
	stmt    *sql.Stmt
	rows    *sql.Rows
	result  sql.Result
	scanner *Scanner
}

// FetchAll returns every row and closes the cursor.
// Statements without a result set yield an empty slice.
func (c *Cursor) FetchAll() ([]Record, error) {
	defer c.Close()

	if c.rows == nil {
		return []Record{}, nil
	}

	records, err := c.scanner.ScanRows(c.rows)
	if err != nil {
		return nil, queryError("scan", c.query, err)
	}
	return records, nil
}

// Fetch returns the first row and closes the cursor. It returns ErrNoRow when
// the statement produced no row.
func (c *Cursor) Fetch() (Record, error) {
	defer c.Close()

	if c.rows == nil {
		return nil, ErrNoRow
	}

	record, ok, err := c.scanner.ScanRow(c.rows)
	if err != nil {
		return nil, queryError("scan", c.query, err)
	}
	if !ok {
		return nil, ErrNoRow
	}
	return record, nil
}

// RowCount returns the rows affected by an exec, or the rows returned by a query.
// It closes the cursor.
func (c *Cursor) RowCount() (int64, error) {
	defer c.Close()

	if c.result != nil {
		n, err := c.result.RowsAffected()
		return n, queryError("rows affected", c.query, err)
	}

	n, err := c.scanner.CountRows(c.rows)
	return n, queryError("scan", c.query, err)
}

// LastInsertID returns the key generated by an INSERT exec.
func (c *Cursor) LastInsertID() (int64, error) {
	defer c.Close()

	if c.result == nil {
		return 0, queryError("last insert id", c.query, errors.New("statement returned a result set"))
	}
	id, err := c.result.LastInsertId()
	return id, queryError("last insert id", c.query, err)
}

// Close releases the result set and the prepared statement. It is safe to call twice.
func (c *Cursor) Close() error {
	var err error
	if c.rows != nil {
		err = c.rows.Close()
	}
	if c.stmt != nil {
		if cerr := c.stmt.Close(); err == nil {
			err = cerr
		}
		c.stmt = nil
	}
	return err
}
