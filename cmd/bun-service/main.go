/*
 * Copyright 2026 romakot321.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/romakot321/bun-service/database"
)

var (
	flagURL     string
	flagConfig  string
	flagEnvFile string
)

func main() {
	root := &cobra.Command{
		Use:           "bun-service",
		Short:         "Database utilities for bun-service applications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagURL, "url", "", "database connection URL (overrides config and environment)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML connection config")
	root.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "dotenv file with database settings")

	root.AddCommand(initDBCmd(), healthCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func initDBCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the declared schema directly against the configured database",
		Long: "Creates tables for all registered entities, bypassing migration tooling. " +
			"With --reset, existing tables are dropped first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := resolveEngine()
			if err != nil {
				return err
			}
			defer func() { _ = engine.Close() }()
			if reset {
				return engine.ResetSchema(cmd.Context())
			}
			return engine.CreateSchema(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop existing tables before creating the schema")
	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Run one health check round against the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := resolveEngine()
			if err != nil {
				return err
			}
			defer func() { _ = engine.Close() }()

			status := engine.HealthCheck(cmd.Context())
			out, _ := json.MarshalIndent(status, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if !status.Healthy {
				return fmt.Errorf("database is not healthy: %s", status.LastError)
			}
			return nil
		},
	}
}

func resolveEngine() (*database.Engine, error) {
	// Missing .env file is fine, explicit settings take over.
	_ = godotenv.Load(flagEnvFile)

	switch {
	case flagURL != "":
		return database.EngineFromURL(flagURL)
	case flagConfig != "":
		cfg, err := database.LoadConfig(flagConfig)
		if err != nil {
			return nil, err
		}
		return database.NewEngine(cfg)
	default:
		return database.EngineFromEnv()
	}
}
