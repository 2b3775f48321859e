// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/poiesic/crudstrategy"
	"github.com/poiesic/crudstrategy/config"
	"github.com/poiesic/crudstrategy/core"
	"github.com/poiesic/crudstrategy/server"
	"github.com/poiesic/crudstrategy/storage"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	serveFlags := settingsFlags()
	configFlags := append(settingsFlags(), &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (yaml, toml)",
		Value:   string(config.FormatYAML),
	})

	seedFlags := append(settingsFlags(),
		&cli.StringFlag{
			Name:  "src",
			Usage: "File of full names, one per line (built-in sample names if empty)",
		},
		&cli.StringFlag{
			Name:    "kind",
			Aliases: []string{"k"},
			Usage:   "Record kind to create (users, accounts)",
			Value:   core.UserKind.Table,
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of concurrent creates (0 for half the CPUs)",
		},
	)

	return &cli.App{
		Name:    config.AppName,
		Usage:   "Serve users and accounts from a CSV file or an SQLite database",
		Version: crudstrategy.Version,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server",
				Flags:  serveFlags,
				Before: loadSettings(serveFlags),
				Action: serveCommand,
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration",
				Flags:  configFlags,
				Before: loadSettings(configFlags),
				Action: configCommand,
			},
			{
				Name:   "seed",
				Usage:  "Create records from a list of full names",
				Flags:  seedFlags,
				Before: loadSettings(seedFlags),
				Action: seedCommand,
			},
		},
	}
}

// settingsFlags returns the flags backing config.Config. Each one can also be
// set from the environment or from the config file.
func settingsFlags() []cli.Flag {
	defaults := config.Default()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML or TOML config file",
			Value:   config.DefaultPath(),
			EnvVars: []string{config.EnvVar("config")},
		},
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "Set logging level (debug, info, warn, error)",
			Value:   defaults.LogLevel,
			EnvVars: []string{config.EnvVar("log-level")},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "address",
			Aliases: []string{"a"},
			Usage:   "Address to listen on",
			Value:   defaults.Address,
			EnvVars: []string{config.EnvVar("address")},
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Port to listen on",
			Value:   defaults.Port,
			EnvVars: []string{config.EnvVar("port")},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Storage backend (csv, sqlite)",
			Value:   defaults.Backend,
			EnvVars: []string{config.EnvVar("backend")},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "storage-path",
			Aliases: []string{"s"},
			Usage:   "Path to the CSV base file or SQLite database (empty for the backend default)",
			Value:   defaults.StoragePath,
			EnvVars: []string{config.EnvVar("storage-path")},
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "templates",
			Aliases: []string{"t"},
			Usage:   "Glob of HTML templates overriding the built-in pages",
			Value:   defaults.Templates,
			EnvVars: []string{config.EnvVar("templates")},
		}),
	}
}

// loadSettings fills unset flags from the config file, then sets up logging.
func loadSettings(flags []cli.Flag) cli.BeforeFunc {
	load := altsrc.InitInputSourceWithContext(flags, func(c *cli.Context) (altsrc.InputSourceContext, error) {
		return config.InputSource(c.String("config"), c.IsSet("config"))
	})
	return func(c *cli.Context) error {
		if err := load(c); err != nil {
			return err
		}
		return setupLogger(c)
	}
}

func setupLogger(c *cli.Context) error {
	level, err := config.ParseLogLevel(c.String("log-level"))
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func settingsFromContext(c *cli.Context) config.Config {
	return config.Config{
		LogLevel:    c.String("log-level"),
		Address:     c.String("address"),
		Port:        c.Int("port"),
		Backend:     c.String("backend"),
		StoragePath: c.String("storage-path"),
		Templates:   c.String("templates"),
	}
}

func serveCommand(c *cli.Context) error {
	cfg := settingsFromContext(c)
	if err := cfg.Validate(); err != nil {
		return err
	}
	backend, err := storage.ParseBackend(cfg.Backend)
	if err != nil {
		return err
	}

	db, err := crudstrategy.NewDatabase(backend, cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer db.Close()

	srv, err := server.New(db.Users(), db.Accounts(),
		server.WithBackend(backend.String()),
		server.WithVersion(crudstrategy.Version),
		server.WithTemplateGlob(cfg.Templates),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting server", "version", crudstrategy.Version, "addr", cfg.Addr())
	return srv.ListenAndServe(ctx, cfg.Addr())
}

func configCommand(c *cli.Context) error {
	format, err := config.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	return config.Write(c.App.Writer, settingsFromContext(c), format)
}
