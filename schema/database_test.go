package schema

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xcono/slimrest/web/database"
)

func TestMySQL_Tables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DATABASE() AS name")).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("shop"))

	mock.ExpectPrepare("FROM INFORMATION_SCHEMA.COLUMNS").
		ExpectQuery().
		WithArgs("shop", "users").
		WillReturnRows(sqlmock.NewRows([]string{
			"COLUMN_NAME", "DATA_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT", "COLUMN_COMMENT", "COLUMN_KEY", "EXTRA",
		}).
			AddRow("id", "int", "NO", nil, "", "PRI", "auto_increment").
			AddRow("email", "varchar", "NO", nil, "login", "UNI", "").
			AddRow("status", "tinyint", "YES", []byte("1"), "", "", ""))

	mock.ExpectPrepare("FROM INFORMATION_SCHEMA.STATISTICS").
		ExpectQuery().
		WithArgs("shop", "users").
		WillReturnRows(sqlmock.NewRows([]string{"INDEX_NAME", "COLUMN_NAME", "NON_UNIQUE"}).
			AddRow("PRIMARY", "id", 0).
			AddRow("idx_status_email", "status", 1).
			AddRow("idx_status_email", "email", 1).
			AddRow("email", "email", 0))

	store := database.NewStore(database.NewExecutorWithDB(db, database.DriverMySQL))
	tables, err := NewMySQL(store).Tables(context.Background(), "users")
	require.NoError(t, err)
	require.Len(t, tables, 1)

	users := tables[0]
	assert.Equal(t, "users", users.Name)
	require.Len(t, users.Columns, 3)

	assert.Equal(t, Column{Name: "id", Type: "int", AutoIncrement: true, PrimaryKey: true}, users.Columns[0])
	assert.Equal(t, Column{Name: "email", Type: "varchar", Comment: "login", UniqueKey: true}, users.Columns[1])
	assert.Equal(t, Column{Name: "status", Type: "tinyint", Nullable: true, Default: "1"}, users.Columns[2])

	assert.Equal(t, []Index{
		{Name: "email", Columns: []string{"email"}, Unique: true},
		{Name: "idx_status_email", Columns: []string{"status", "email"}, Unique: false},
	}, users.Indexes)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQL_AllTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DATABASE() AS name")).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("shop"))
	mock.ExpectPrepare("FROM INFORMATION_SCHEMA.TABLES").
		ExpectQuery().
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("orders"))
	mock.ExpectPrepare("FROM INFORMATION_SCHEMA.COLUMNS").
		ExpectQuery().
		WithArgs("shop", "orders").
		WillReturnRows(sqlmock.NewRows([]string{
			"COLUMN_NAME", "DATA_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT", "COLUMN_COMMENT", "COLUMN_KEY", "EXTRA",
		}).AddRow("id", "bigint", "NO", nil, "", "PRI", "auto_increment"))
	mock.ExpectPrepare("FROM INFORMATION_SCHEMA.STATISTICS").
		ExpectQuery().
		WithArgs("shop", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"INDEX_NAME", "COLUMN_NAME", "NON_UNIQUE"}))

	store := database.NewStore(database.NewExecutorWithDB(db, database.DriverMySQL))
	tables, err := NewMySQL(store).Tables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "orders", tables[0].Name)
	assert.Empty(t, tables[0].Indexes)

	assert.NoError(t, mock.ExpectationsWereMet())
}
