package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xcono/slimrest/web/database"
)

type (
	Database interface {
		Tables(ctx context.Context, tables ...string) ([]Table, error)
	}

	Table struct {
		Name    string   `json:"name"`
		Columns []Column `json:"columns"`
		Indexes []Index  `json:"indexes"`
	}

	Column struct {
		Name          string `json:"name"`
		Type          string `json:"type"`
		Nullable      bool   `json:"nullable"`
		Default       string `json:"default"`
		Comment       string `json:"comment"`
		AutoIncrement bool   `json:"autoIncrement"`
		PrimaryKey    bool   `json:"primaryKey"`
		ForeignKey    bool   `json:"foreignKey"`
		UniqueKey     bool   `json:"uniqueKey"`
	}

	Index struct {
		Name    string   `json:"name"`
		Columns []string `json:"columns"`
		Unique  bool     `json:"unique"`
	}
)

const (
	allTablesQuery = `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`

	columnsQuery = `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_DEFAULT, COLUMN_COMMENT, COLUMN_KEY, EXTRA
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`

	indexesQuery = `SELECT INDEX_NAME, COLUMN_NAME, NON_UNIQUE
		FROM INFORMATION_SCHEMA.STATISTICS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX`
)

// MySQL reads table metadata from information_schema
type MySQL struct {
	store *database.Store
}

// NewMySQL creates a new MySQL database instance
func NewMySQL(store *database.Store) *MySQL {
	return &MySQL{store: store}
}

// Tables loads table information:
// - columns from `information_schema.columns`
// - indexes from `information_schema.statistics`
func (d *MySQL) Tables(ctx context.Context, tables ...string) ([]Table, error) {
	record, err := d.store.FetchSingle(ctx, "SELECT DATABASE() AS name", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve database name: %w", err)
	}
	dbName := text(record["name"])

	if len(tables) == 0 {
		tables, err = d.allTables(ctx, dbName)
		if err != nil {
			return nil, fmt.Errorf("failed to get all tables: %w", err)
		}
	}

	result := make([]Table, 0, len(tables))
	for _, name := range tables {
		table, err := d.table(ctx, dbName, name)
		if err != nil {
			return nil, fmt.Errorf("failed to get info for table %s: %w", name, err)
		}
		result = append(result, table)
	}

	return result, nil
}

func (d *MySQL) allTables(ctx context.Context, dbName string) ([]string, error) {
	records, err := d.store.FetchAll(ctx, allTablesQuery, database.Positional{dbName})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, text(r["TABLE_NAME"]))
	}
	return names, nil
}

func (d *MySQL) table(ctx context.Context, dbName, name string) (Table, error) {
	columns, err := d.columns(ctx, dbName, name)
	if err != nil {
		return Table{}, err
	}

	indexes, err := d.indexes(ctx, dbName, name)
	if err != nil {
		return Table{}, err
	}

	return Table{Name: name, Columns: columns, Indexes: indexes}, nil
}

func (d *MySQL) columns(ctx context.Context, dbName, table string) ([]Column, error) {
	records, err := d.store.FetchAll(ctx, columnsQuery, database.Positional{dbName, table})
	if err != nil {
		return nil, err
	}

	columns := make([]Column, 0, len(records))
	for _, r := range records {
		key := text(r["COLUMN_KEY"])
		columns = append(columns, Column{
			Name:          text(r["COLUMN_NAME"]),
			Type:          text(r["DATA_TYPE"]),
			Nullable:      text(r["IS_NULLABLE"]) == "YES",
			Default:       text(r["COLUMN_DEFAULT"]),
			Comment:       text(r["COLUMN_COMMENT"]),
			AutoIncrement: strings.Contains(text(r["EXTRA"]), "auto_increment"),
			PrimaryKey:    key == "PRI",
			ForeignKey:    key == "MUL",
			UniqueKey:     key == "UNI",
		})
	}
	return columns, nil
}

func (d *MySQL) indexes(ctx context.Context, dbName, table string) ([]Index, error) {
	records, err := d.store.FetchAll(ctx, indexesQuery, database.Positional{dbName, table})
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*Index)
	for _, r := range records {
		name := text(r["INDEX_NAME"])
		// primary key is reported on the column
		if name == "PRIMARY" {
			continue
		}

		idx, ok := byName[name]
		if !ok {
			idx = &Index{Name: name, Columns: []string{}, Unique: text(r["NON_UNIQUE"]) == "0"}
			byName[name] = idx
		}
		idx.Columns = append(idx.Columns, text(r["COLUMN_NAME"]))
	}

	indexes := make([]Index, 0, len(byName))
	for _, idx := range byName {
		indexes = append(indexes, *idx)
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i].Name < indexes[j].Name })

	return indexes, nil
}

func text(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
