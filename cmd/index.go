// Package cmd provides command-line interface functionality for the codemeta application.
/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"codemeta/internal/adapter/outbound/filefilter"
	"codemeta/internal/adapter/outbound/messaging"
	"codemeta/internal/adapter/outbound/repository"
	"codemeta/internal/application/common/logging"
	"codemeta/internal/application/common/slogger"
	"codemeta/internal/application/service"
	"codemeta/internal/config"
	"codemeta/internal/port/outbound"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// newIndexCmd creates and returns the index command.
func newIndexCmd() *cobra.Command {
	var store bool
	var publish bool

	cmd := &cobra.Command{
		Use:   "index [directory]",
		Short: "Index documented items from a source directory",
		Long: `Index documented items from every recognized source file under a directory.

The index command:
- Walks the directory tree and extracts attribute and documentation metadata
- Runs extractions concurrently with configurable parallelism
- Optionally replaces stored items per file in PostgreSQL (--store)
- Optionally publishes file-indexed events to NATS JetStream (--publish)

Configuration is loaded from config files and environment variables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runIndex(args[0], store, publish)
		},
	}

	cmd.Flags().BoolVar(&store, "store", false, "Store extracted items in PostgreSQL")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish file-indexed events to NATS")

	return cmd
}

// runIndex wires the index service and runs it against the directory.
func runIndex(dirPath string, store, publish bool) error {
	cfg := GetConfig()

	// One correlation ID spans the whole run: every log line and every
	// published event carries it.
	ctx, _ := logging.EnsureCorrelationID(context.Background())

	slogger.Info(ctx, "Starting index run", slogger.Fields{
		"directory":   dirPath,
		"store":       store,
		"publish":     publish,
		"concurrency": cfg.Extractor.Concurrency,
	})

	extraction, err := buildExtractionService(ctx)
	if err != nil {
		return err
	}

	var itemRepository outbound.DocumentedItemRepository
	if store {
		dbPool, err := setupDatabaseConnection(cfg)
		if err != nil {
			return fmt.Errorf("failed to create database connection pool: %w", err)
		}
		defer dbPool.Close()

		if !repository.NewDatabaseHealthChecker(dbPool).IsHealthy(ctx) {
			return errors.New("database is not healthy")
		}

		itemRepository = repository.NewPostgreSQLDocumentedItemRepository(dbPool)
	}

	var eventPublisher outbound.MessagePublisher
	if publish {
		publisher, err := setupEventPublisher(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = publisher.Disconnect(ctx) }()

		eventPublisher = publisher
	}

	indexService := service.NewIndexService(
		extraction,
		itemRepository,
		eventPublisher,
		filefilter.NewFilter(),
		cfg.Extractor.Concurrency,
	)

	report, err := indexService.IndexDirectory(ctx, dirPath)
	if err != nil {
		return err
	}

	return writeIndexReport(report)
}

// setupDatabaseConnection initializes the database connection with defaults.
func setupDatabaseConnection(cfg *config.Config) (*pgxpool.Pool, error) {
	dbConfig := repository.DatabaseConfig{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		Database:       cfg.Database.Name,
		Username:       cfg.Database.User,
		Password:       cfg.Database.Password,
		Schema:         cfg.Database.Schema,
		MaxConnections: cfg.Database.MaxConnections,
		SSLMode:        cfg.Database.SSLMode,
	}

	// Set defaults if not configured
	if dbConfig.Schema == "" {
		dbConfig.Schema = "codemeta"
	}
	if dbConfig.MaxConnections == 0 {
		dbConfig.MaxConnections = 10
	}
	if dbConfig.SSLMode == "" {
		dbConfig.SSLMode = "disable"
	}

	return repository.NewDatabaseConnection(dbConfig)
}

// setupEventPublisher connects to NATS and provisions the stream.
func setupEventPublisher(ctx context.Context, cfg *config.Config) (*messaging.NATSEventPublisher, error) {
	publisher, err := messaging.NewNATSEventPublisher(cfg.NATS)
	if err != nil {
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}

	if err := publisher.Connect(ctx); err != nil {
		return nil, err
	}

	if err := publisher.EnsureStream(); err != nil {
		_ = publisher.Disconnect(ctx)
		return nil, err
	}

	return publisher, nil
}

// writeIndexReport prints the index report as JSON to stdout.
func writeIndexReport(report *service.IndexReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, _ = os.Stdout.Write(data)
	_, _ = os.Stdout.WriteString("\n")

	if len(report.Failures) > 0 {
		return fmt.Errorf("%d of %d files failed to index", len(report.Failures), report.FilesSeen)
	}
	return nil
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newIndexCmd())
}
