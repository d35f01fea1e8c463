package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"
	"github.com/xcono/slimrest/schema"
	"github.com/xcono/slimrest/web"
	"github.com/xcono/slimrest/web/database"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
)

func main() {
	var c schema.Config

	app := &cli.App{
		Name:  "slimrest",
		Usage: "REST over MySQL, PostgreSQL and SQLite tables",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"f"},
				Value:   "config.yaml",
				Usage:   "the config file",
			},
		},
		Before: func(cmd *cli.Context) error {
			if err := conf.Load(cmd.String("config"), &c); err != nil {
				return err
			}
			logx.MustSetup(c.Log)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "Start serving all services",
				Action: func(cmd *cli.Context) error {
					ctx, stop := signal.NotifyContext(cmd.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					return web.StartServer(ctx, c) //blocking call
				},
			},
			{
				Name:      "inspect",
				Usage:     "Print the tables of a MySQL service as JSON",
				ArgsUsage: "<service>",
				Action: func(cmd *cli.Context) error {
					store, serviceConfig, err := openService(c, cmd.Args().First())
					if err != nil {
						return err
					}
					defer store.Close()

					// information_schema layout is MySQL specific
					if driver := serviceConfig.Database.WithDefaults().Driver; driver != database.DriverMySQL {
						return fmt.Errorf("inspect supports mysql services only, %s uses %s", cmd.Args().First(), driver)
					}

					tables, err := schema.NewMySQL(store).Tables(cmd.Context, serviceConfig.TableNames()...)
					if err != nil {
						return err
					}

					// pretty print tables as json
					jsonData, err := json.MarshalIndent(tables, "", "  ")
					if err != nil {
						return err
					}
					fmt.Println(string(jsonData))

					return nil
				},
			},
			{
				Name:      "ping",
				Usage:     "Check that a service database is reachable",
				ArgsUsage: "<service>",
				Action: func(cmd *cli.Context) error {
					store, _, err := openService(c, cmd.Args().First())
					if err != nil {
						return err
					}
					defer store.Close()

					if err := store.Executor().Connect(cmd.Context); err != nil {
						return err
					}
					fmt.Printf("%s: ok\n", cmd.Args().First())
					return nil
				},
			},
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		logx.Error(err)
		logx.Close()
		os.Exit(1)
	}
}

func openService(c schema.Config, name string) (*database.Store, schema.Service, error) {
	serviceConfig, ok := c.Services[name]
	if !ok {
		return nil, schema.Service{}, fmt.Errorf("unknown service %q", name)
	}
	return database.Open(serviceConfig.Database.WithDefaults()), serviceConfig, nil
}
