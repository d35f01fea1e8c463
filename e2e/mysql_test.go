package e2e_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/xcono/slimrest/e2e/containers"
	"github.com/xcono/slimrest/schema"
	"github.com/xcono/slimrest/web/database"
)

func TestMySQL(t *testing.T) {
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, cfg, err := containers.SetupMySQL(ctx)
	defer func() {
		if err := containers.Terminate(container); err != nil {
			t.Logf("Warning: Failed to cleanup MySQL container: %v", err)
		}
	}()
	require.NoError(t, err)

	t.Run("store", func(t *testing.T) {
		store := database.Open(cfg)
		defer store.Close()

		testStoreVerbs(t, store)
	})

	t.Run("delete limit", func(t *testing.T) {
		store := database.Open(cfg)
		defer store.Close()

		// three engineers match, the default limit removes one
		n, err := store.Delete(ctx, "users", database.NewFields("department", "Engineering"), database.DefaultDeleteLimit)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		left, err := store.CountRows(ctx, "users", database.NewFields("department", "Engineering"))
		require.NoError(t, err)
		assert.Equal(t, int64(2), left)

		_, err = store.Insert(ctx, "users", database.NewFields("name", "Alice", "age", 25, "department", "Engineering"))
		require.NoError(t, err)
	})

	t.Run("inspect", func(t *testing.T) {
		store := database.Open(cfg)
		defer store.Close()

		tables, err := schema.NewMySQL(store).Tables(ctx, "users")
		require.NoError(t, err)
		require.Len(t, tables, 1)

		users := tables[0]
		require.NotEmpty(t, users.Columns)
		assert.Equal(t, "id", users.Columns[0].Name)
		assert.True(t, users.Columns[0].PrimaryKey)
		assert.True(t, users.Columns[0].AutoIncrement)

		names := make([]string, 0, len(users.Indexes))
		for _, idx := range users.Indexes {
			names = append(names, idx.Name)
		}
		assert.Contains(t, names, "idx_department")
		assert.Contains(t, names, "email")
	})

	t.Run("http", func(t *testing.T) {
		testHTTP(t, cfg)
	})

	t.Run("connection error hides password", func(t *testing.T) {
		bad := cfg
		bad.Password = "wrong-" + cfg.Password

		err := database.NewExecutor(bad).Connect(ctx)
		var connErr *database.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.NotContains(t, err.Error(), bad.Password)
	})
}
