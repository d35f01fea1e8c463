package schema

import "github.com/xcono/slimrest/web/database"

// DefaultKey is the primary key column assumed when a schema names none
const DefaultKey = "id"

type (

	// Services is a named map of database services.
	Services map[string]Service

	// Service isolates access to one database.
	Service struct {
		// Database is the connection to open for the service.
		Database database.ConnectionConfig `json:"database"`
		// Schemas is a named map used for defining exposed resources.
		Schemas Schemas `json:"schemas,optional"`
	}

	// Schemas is a named map used for defining schemas
	Schemas map[string]Schema

	// Schema describes one table exposed as a REST resource
	Schema struct {
		// Table name in the database. Defaults to the resource name.
		Table string `json:"table,optional"`
		// Key is the primary key column used by /{resource}/{id} routes.
		Key string `json:"key,optional"`
		// Hidden columns are stripped from every response.
		// Typically: pass, password, hash, token, secret.
		Hidden []string `json:"hidden,optional"`
		// PageSize is the default page size of list requests.
		PageSize int `json:"page_size,optional"`
	}
)

// TableName returns the table backing resource name
func (s Schema) TableName(name string) string {
	if s.Table != "" {
		return s.Table
	}
	return name
}

// KeyColumn returns the primary key column
func (s Schema) KeyColumn() string {
	if s.Key != "" {
		return s.Key
	}
	return DefaultKey
}

// TableNames returns the tables behind every schema of the service
func (s Service) TableNames() []string {
	names := make([]string, 0, len(s.Schemas))
	for name, sch := range s.Schemas {
		names = append(names, sch.TableName(name))
	}
	return names
}
