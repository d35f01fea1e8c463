package containers

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/xcono/slimrest/web/database"
)

const (
	testDatabase = "slimrest"
	testUser     = "testuser"
	testPassword = "testpass"
)

// loopbackOnly publishes port on 127.0.0.1 with a random host port
func loopbackOnly(port nat.Port) func(hostConfig *container.HostConfig) {
	return func(hostConfig *container.HostConfig) {
		hostConfig.PortBindings = nat.PortMap{
			port: []nat.PortBinding{
				{
					HostIP:   "127.0.0.1",
					HostPort: "",
				},
			},
		}
	}
}

// connectionConfig reads the mapped address of c
func connectionConfig(ctx context.Context, c testcontainers.Container, driver string, port nat.Port) (database.ConnectionConfig, error) {
	mappedPort, err := c.MappedPort(ctx, port)
	if err != nil {
		return database.ConnectionConfig{}, fmt.Errorf("failed to get %s mapped port: %w", driver, err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		return database.ConnectionConfig{}, fmt.Errorf("failed to get %s host: %w", driver, err)
	}

	return database.ConnectionConfig{
		Driver:   driver,
		Host:     host,
		Port:     mappedPort.Int(),
		Database: testDatabase,
		Username: testUser,
		Password: testPassword,
	}, nil
}

// SetupMySQL creates and starts a MySQL container with the test database
func SetupMySQL(ctx context.Context) (testcontainers.Container, database.ConnectionConfig, error) {
	migrationPath, err := filepath.Abs("migrations/my/users.sql")
	if err != nil {
		return nil, database.ConnectionConfig{}, fmt.Errorf("failed to get migration file path: %w", err)
	}

	c, err := mysql.Run(ctx, "mysql:8.4",
		mysql.WithDatabase(testDatabase),
		mysql.WithUsername(testUser),
		mysql.WithPassword(testPassword),
		mysql.WithScripts(migrationPath),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("ready for connections"),
				// the init server runs without networking
				wait.ForListeningPort("3306/tcp"),
			).WithDeadline(90*time.Second),
		),
		testcontainers.WithHostConfigModifier(loopbackOnly("3306/tcp")),
	)
	if err != nil {
		return nil, database.ConnectionConfig{}, fmt.Errorf("failed to start MySQL container: %w", err)
	}

	cfg, err := connectionConfig(ctx, c, database.DriverMySQL, "3306/tcp")
	if err != nil {
		return c, cfg, err
	}
	cfg.Options = map[string]string{"parseTime": "true"}
	return c, cfg, nil
}

// SetupPostgres creates and starts a PostgreSQL container with the test database
func SetupPostgres(ctx context.Context) (testcontainers.Container, database.ConnectionConfig, error) {
	migrationPath, err := filepath.Abs("migrations/pg/users.sql")
	if err != nil {
		return nil, database.ConnectionConfig{}, fmt.Errorf("failed to get migration file path: %w", err)
	}

	c, err := postgres.Run(ctx, "postgres:17.5",
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUser),
		postgres.WithPassword(testPassword),
		postgres.WithInitScripts(migrationPath),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
		testcontainers.WithHostConfigModifier(loopbackOnly("5432/tcp")),
	)
	if err != nil {
		return nil, database.ConnectionConfig{}, fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}

	cfg, err := connectionConfig(ctx, c, database.DriverPostgres, "5432/tcp")
	return c, cfg, err
}

// Terminate stops c, ignoring a nil container
func Terminate(c testcontainers.Container) error {
	if c == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return c.Terminate(ctx)
}
