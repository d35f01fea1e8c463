package database

import (
	"database/sql"
)

// Record is one result row keyed by column name.
type Record map[string]any

// Scanner converts result sets into Records
type Scanner struct{}

// NewScanner creates a new result scanner
func NewScanner() *Scanner {
	return &Scanner{}
}

// ScanRows scans every remaining row. The result is never nil.
func (s *Scanner) ScanRows(rows *sql.Rows) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := []Record{}
	for rows.Next() {
		record, err := s.scanRow(rows, columns)
		if err != nil {
			return nil, err
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// ScanRow scans the next row, reporting false when the set is exhausted.
func (s *Scanner) ScanRow(rows *sql.Rows) (Record, bool, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, false, err
	}

	if !rows.Next() {
		return nil, false, rows.Err()
	}

	record, err := s.scanRow(rows, columns)
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

func (s *Scanner) scanRow(rows *sql.Rows, columns []string) (Record, error) {
	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range columns {
		valuePtrs[i] = &values[i]
	}

	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, err
	}

	record := make(Record, len(columns))
	for i, col := range columns {
		// text columns arrive as []byte from most drivers
		if b, ok := values[i].([]byte); ok {
			record[col] = string(b)
		} else {
			record[col] = values[i]
		}
	}
	return record, nil
}

// CountRows drains the result set and returns how many rows it held
func (s *Scanner) CountRows(rows *sql.Rows) (int64, error) {
	var count int64
	for rows.Next() {
		count++
	}
	return count, rows.Err()
}
