package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xcono/slimrest/web/database"
	"github.com/zeromicro/go-zero/core/conf"
)

const sampleConfig = `
name: slimrest
port: 8080
log:
  mode: console
  level: info
services:
  shop:
    database:
      driver: mysql
      host: db
      database: shop
      username: app
      password: secret
      options:
        parseTime: "true"
    schemas:
      users:
        key: user_id
        hidden: [password]
        page_size: 25
      orders:
        table: shop_orders
`

func TestConfig_Load(t *testing.T) {
	var c Config
	require.NoError(t, conf.LoadFromYamlBytes([]byte(sampleConfig), &c))

	assert.Equal(t, "slimrest", c.Name)
	assert.Equal(t, "1.0.0", c.Version)
	assert.Equal(t, "0.0.0.0", c.Host)
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, "0.0.0.0:8080", c.Addr())

	shop := c.Services["shop"]
	assert.Equal(t, database.DriverMySQL, shop.Database.Driver)
	assert.Equal(t, "db", shop.Database.Host)
	assert.Equal(t, "true", shop.Database.Options["parseTime"])

	users := shop.Schemas["users"]
	assert.Equal(t, "users", users.TableName("users"))
	assert.Equal(t, "user_id", users.KeyColumn())
	assert.Equal(t, []string{"password"}, users.Hidden)
	assert.Equal(t, 25, users.PageSize)

	orders := shop.Schemas["orders"]
	assert.Equal(t, "shop_orders", orders.TableName("orders"))
	assert.Equal(t, DefaultKey, orders.KeyColumn())
	assert.ElementsMatch(t, []string{"users", "shop_orders"}, shop.TableNames())

	require.NoError(t, c.Validate())

	resources := c.Resources()
	require.Len(t, resources, 2)
	assert.Equal(t, "shop", resources["orders"].Service)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Services: Services{
				"shop": {
					Database: database.ConnectionConfig{Database: "shop", Username: "app"},
					Schemas:  Schemas{"users": {}},
				},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{
			name:   "no services",
			mutate: func(c *Config) { c.Services = nil },
			errMsg: "at least one service",
		},
		{
			name: "no schemas",
			mutate: func(c *Config) {
				svc := c.Services["shop"]
				svc.Schemas = nil
				c.Services["shop"] = svc
			},
			errMsg: "at least one schema",
		},
		{
			name: "missing database name",
			mutate: func(c *Config) {
				svc := c.Services["shop"]
				svc.Database.Database = ""
				c.Services["shop"] = svc
			},
			errMsg: "database",
		},
		{
			name: "duplicate resource across services",
			mutate: func(c *Config) {
				c.Services["crm"] = Service{
					Database: database.ConnectionConfig{Driver: database.DriverSQLite, Database: ":memory:"},
					Schemas:  Schemas{"users": {}},
				}
			},
			errMsg: "resource users is defined by services crm and shop",
		},
		{
			name: "invalid hidden column",
			mutate: func(c *Config) {
				c.Services["shop"].Schemas["users"] = Schema{Hidden: []string{"pass word"}}
			},
			errMsg: "invalid identifier",
		},
		{
			name: "negative page size",
			mutate: func(c *Config) {
				c.Services["shop"].Schemas["users"] = Schema{PageSize: -1}
			},
			errMsg: "page_size",
		},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)

			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
