// Package cmd provides command-line interface functionality for the codemeta application.
/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"codemeta/internal/adapter/outbound/repository"
	"codemeta/internal/application/common/logging"
	"codemeta/internal/application/common/slogger"
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// schemaStatements are applied in order inside a single transaction.
//
//nolint:gochecknoglobals // immutable migration statement list
var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS codemeta`,
	`CREATE TABLE IF NOT EXISTS codemeta.documented_items (
		id UUID PRIMARY KEY,
		file_path TEXT NOT NULL,
		language TEXT NOT NULL,
		item_kind TEXT NOT NULL,
		item_name TEXT NOT NULL DEFAULT '',
		start_byte BIGINT NOT NULL,
		end_byte BIGINT NOT NULL,
		documentation TEXT,
		attributes JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documented_items_file_path
		ON codemeta.documented_items (file_path)`,
	`CREATE INDEX IF NOT EXISTS idx_documented_items_language
		ON codemeta.documented_items (language)`,
}

// newMigrateCmd creates and returns the migrate command.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Run database migrations to set up or update the database schema.

This command creates the schema, tables and indexes required for storing
extracted documented items. All statements run inside a single transaction,
so a failed migration leaves the database unchanged.

Configuration for database connection is loaded from config files and environment variables.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMigrate()
		},
	}
}

// runMigrate applies the schema statements inside one transaction.
func runMigrate() error {
	cfg := GetConfig()
	ctx, _ := logging.EnsureCorrelationID(context.Background())

	dbPool, err := setupDatabaseConnection(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database connection pool: %w", err)
	}
	defer dbPool.Close()

	manager := repository.NewTransactionManager(dbPool)
	err = manager.WithTransaction(ctx, func(txCtx context.Context) error {
		querier := repository.GetQueryInterface(txCtx, dbPool)
		for _, stmt := range schemaStatements {
			if _, err := querier.Exec(txCtx, stmt); err != nil {
				return fmt.Errorf("failed to apply migration statement: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slogger.Info(ctx, "Database migration completed", slogger.Fields{
		"statements": len(schemaStatements),
	})
	return nil
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newMigrateCmd())
}
