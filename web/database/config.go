package database

import (
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	// sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

const (
	DefaultDriver  = DriverMySQL
	DefaultHost    = "localhost"
	DefaultCharset = "utf8mb4"
)

// ConnectionConfig holds everything needed to reach one database.
// It is read once at startup and never mutated afterwards.
type ConnectionConfig struct {
	Driver   string `json:"driver,optional"`
	Host     string `json:"host,optional"`
	Port     int    `json:"port,optional"`
	Database string `json:"database,optional"`
	Username string `json:"username,optional"`
	Password string `json:"password,optional"`
	Charset  string `json:"charset,optional"`
	// Options are passed verbatim to the driver DSN.
	Options map[string]string `json:"options,optional"`
}

// WithDefaults fills empty optional settings.
func (c ConnectionConfig) WithDefaults() ConnectionConfig {
	if c.Driver == "" {
		c.Driver = DefaultDriver
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		if d, ok := LookupDialect(c.Driver); ok {
			c.Port = d.DefaultPort
		}
	}
	if c.Charset == "" {
		c.Charset = DefaultCharset
	}
	return c
}

// Validate checks the required settings.
func (c ConnectionConfig) Validate() error {
	if _, ok := LookupDialect(c.Driver); !ok {
		return &ConfigurationError{Field: "driver", Err: fmt.Errorf("%q is not supported", c.Driver)}
	}
	if c.Database == "" {
		return &ConfigurationError{Field: "database", Err: ErrMissingField}
	}
	// sqlite has no users
	if c.Username == "" && c.Driver != DriverSQLite {
		return &ConfigurationError{Field: "username", Err: ErrMissingField}
	}
	return nil
}

// driverOptions merges the dialect defaults with the configured options.
func (c ConnectionConfig) driverOptions(d Dialect) url.Values {
	params := url.Values{}
	for k, v := range d.DefaultOptions {
		params.Set(k, v)
	}
	for k, v := range c.Options {
		params.Set(k, v)
	}
	return params
}

// MySQLConfig builds the go-sql-driver configuration.
func (c ConnectionConfig) MySQLConfig() (*mysql.Config, error) {
	d, _ := LookupDialect(DriverMySQL)

	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	cfg.DBName = c.Database

	params := c.driverOptions(d)
	if params.Get("charset") == "" {
		params.Set("charset", c.Charset)
	}

	// round trip through ParseDSN so that options are interpreted by the driver itself
	dsn := cfg.FormatDSN()
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return mysql.ParseDSN(dsn + sep + params.Encode())
}

// PostgresDSN builds the lib/pq connection URL.
func (c ConnectionConfig) PostgresDSN() string {
	d, _ := LookupDialect(DriverPostgres)
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: c.driverOptions(d).Encode(),
	}
	return u.String()
}

// SQLiteDSN builds the go-sqlite3 file URI.
func (c ConnectionConfig) SQLiteDSN() string {
	d, _ := LookupDialect(DriverSQLite)
	dsn := "file:" + c.Database
	if params := c.driverOptions(d); len(params) > 0 {
		dsn += "?" + params.Encode()
	}
	return dsn
}

// open creates the *sql.DB without touching the network.
func (c ConnectionConfig) open() (*sql.DB, error) {
	switch c.Driver {
	case DriverMySQL:
		cfg, err := c.MySQLConfig()
		if err != nil {
			return nil, err
		}
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, err
		}
		return sql.OpenDB(connector), nil
	case DriverPostgres:
		connector, err := pq.NewConnector(c.PostgresDSN())
		if err != nil {
			return nil, err
		}
		return sql.OpenDB(connector), nil
	default:
		return sql.Open(c.Driver, c.SQLiteDSN())
	}
}
