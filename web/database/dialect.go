package database

import (
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
)

// Dialect describes what differs between the supported drivers.
type Dialect struct {
	// Name is the database/sql driver name.
	Name string
	// Flavor is used to render generated statements.
	Flavor sqlbuilder.Flavor
	// BindType is the sqlx bind style named arguments are rebound to.
	BindType int
	// DefaultPort is used when the config leaves the port empty.
	DefaultPort int
	// LastInsertIDQuery returns the last generated key of the current connection.
	LastInsertIDQuery string
	// ResultInsertID reports whether sql.Result.LastInsertId is supported.
	ResultInsertID bool
	// DeleteLimit reports whether DELETE ... LIMIT n is accepted.
	DeleteLimit bool
	// DefaultOptions are driver options applied unless the config overrides them.
	DefaultOptions map[string]string
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

var dialects = map[string]Dialect{
	DriverMySQL: {
		Name:              DriverMySQL,
		Flavor:            sqlbuilder.MySQL,
		BindType:          sqlx.QUESTION,
		DefaultPort:       3306,
		LastInsertIDQuery: "SELECT LAST_INSERT_ID()",
		ResultInsertID:    true,
		DeleteLimit:       true,
		DefaultOptions: map[string]string{
			// prepared statements are sent to the server, never interpolated client side
			"interpolateParams": "false",
		},
	},
	DriverPostgres: {
		Name:              DriverPostgres,
		Flavor:            sqlbuilder.PostgreSQL,
		BindType:          sqlx.DOLLAR,
		DefaultPort:       5432,
		LastInsertIDQuery: "SELECT lastval()",
		DefaultOptions: map[string]string{
			"sslmode": "disable",
		},
	},
	DriverSQLite: {
		Name:              DriverSQLite,
		Flavor:            sqlbuilder.SQLite,
		BindType:          sqlx.QUESTION,
		LastInsertIDQuery: "SELECT last_insert_rowid()",
		ResultInsertID:    true,
		DefaultOptions:    map[string]string{},
	},
}

// LookupDialect returns the dialect registered for a driver name.
func LookupDialect(driver string) (Dialect, bool) {
	d, ok := dialects[driver]
	return d, ok
}
