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
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/quaero"
	"github.com/poiesic/quaero/config"
	"github.com/urfave/cli/v2"
)

// openEngine is replaced in tests.
var openEngine = func(ctx context.Context, cfg *config.Config) (*quaero.Engine, error) {
	return quaero.Open(ctx, cfg)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "quaero",
		Usage: "Index documents and ask questions about them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   "quaero.yaml",
				EnvVars: []string{"QUAERO_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file if it exists",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Directory for the local database (overrides the config file)",
			},
		},
		Before: func(c *cli.Context) error {
			if err := setupLogger(c); err != nil {
				return err
			}
			return loadEnvFile(c.String("env-file"))
		},
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Index files or every supported file under directories",
				ArgsUsage: "<path>...",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Document ID for a single file (default: derived from the path)",
					},
				},
			},
			{
				Name:      "query",
				Aliases:   []string{"ask"},
				Usage:     "Answer a question from the indexed documents",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags:     append(queryFlags(), &cli.BoolFlag{Name: "sources", Usage: "Print the sources", Value: true}),
			},
			{
				Name:   "chat",
				Usage:  "Ask questions interactively, keeping conversation history",
				Action: chatCommand,
				Flags:  queryFlags(),
			},
			{
				Name:      "search",
				Usage:     "Show the passages retrieved for a query without generating an answer",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "top-k", Aliases: []string{"k"}, Usage: "Maximum number of passages (default: from config)"},
					&cli.BoolFlag{Name: "explain", Usage: "Show how each retrieval stage filtered the results"},
				},
			},
			{
				Name:   "list",
				Usage:  "List indexed documents",
				Action: listCommand,
			},
			{
				Name:      "status",
				Usage:     "Show the ingestion state of documents",
				ArgsUsage: "[document-id]",
				Action:    statusCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete a document and its passages",
				ArgsUsage: "<document-id>",
				Action:    deleteCommand,
			},
			{
				Name:   "stats",
				Usage:  "Show vector store statistics",
				Action: statsCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed every stored passage with the configured embedding model",
				Action: reindexCommand,
			},
			{
				Name:      "watch",
				Usage:     "Index directories and keep them in sync until interrupted",
				ArgsUsage: "<dir>...",
				Action:    watchCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "scan", Usage: "Index existing files before watching", Value: true},
				},
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration",
				Action: configCommand,
			},
		},
	}
}

func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "User whose history is used", Value: "default"},
		&cli.IntFlag{Name: "top-k", Aliases: []string{"k"}, Usage: "Maximum number of passages (default: from config)"},
		&cli.Float64Flag{Name: "temperature", Aliases: []string{"t"}, Usage: "Sampling temperature in [0, 2] (default: from config)", Value: -1},
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// loadEnvFile loads path into the environment. Variables already set win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if dir := c.String("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	return cfg, nil
}

func withEngine(c *cli.Context, fn func(engine *quaero.Engine) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := openEngine(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()
	return fn(engine)
}
