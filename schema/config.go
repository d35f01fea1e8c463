package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/xcono/slimrest/builder"
	"github.com/zeromicro/go-zero/core/logx"
)

// Config is the service configuration loaded from config.yaml
type Config struct {
	Name     string       `json:"name,default=slimrest"`
	Version  string       `json:"version,default=1.0.0"`
	Host     string       `json:"host,default=0.0.0.0"`
	Port     int          `json:"port,default=3002"`
	Log      logx.LogConf `json:"log,optional"`
	Services Services     `json:"services"`
}

// Resource is a schema bound to the service that owns it
type Resource struct {
	Name    string
	Service string
	Schema  Schema
}

// Validate checks the configuration before anything is opened
func (c Config) Validate() error {
	if len(c.Services) == 0 {
		return errors.New("config: at least one service is required")
	}

	owners := make(map[string]string)
	for _, serviceName := range c.ServiceNames() {
		svc := c.Services[serviceName]

		if err := svc.Database.WithDefaults().Validate(); err != nil {
			return fmt.Errorf("config: service %s: %w", serviceName, err)
		}
		if len(svc.Schemas) == 0 {
			return fmt.Errorf("config: service %s: at least one schema is required", serviceName)
		}

		for name, sch := range svc.Schemas {
			if owner, ok := owners[name]; ok {
				return fmt.Errorf("config: resource %s is defined by services %s and %s", name, owner, serviceName)
			}
			owners[name] = serviceName

			if err := sch.validate(name); err != nil {
				return fmt.Errorf("config: service %s: %w", serviceName, err)
			}
		}
	}

	return nil
}

func (s Schema) validate(name string) error {
	for _, ident := range append([]string{name, s.TableName(name), s.KeyColumn()}, s.Hidden...) {
		if !builder.ValidIdentifier(ident) {
			return fmt.Errorf("resource %s: invalid identifier %q", name, ident)
		}
	}
	if s.PageSize < 0 {
		return fmt.Errorf("resource %s: page_size must not be negative", name)
	}
	return nil
}

// ServiceNames returns the service names in lexical order
func (c Config) ServiceNames() []string {
	names := make([]string, 0, len(c.Services))
	for name := range c.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resources flattens every schema of every service, keyed by resource name
func (c Config) Resources() map[string]Resource {
	resources := make(map[string]Resource)
	for serviceName, svc := range c.Services {
		for name, sch := range svc.Schemas {
			resources[name] = Resource{Name: name, Service: serviceName, Schema: sch}
		}
	}
	return resources
}

// Addr returns the listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
