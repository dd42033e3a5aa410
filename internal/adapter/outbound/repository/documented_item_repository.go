package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"codemeta/internal/application/common/slogger"
	"codemeta/internal/domain/entity"
	"codemeta/internal/domain/valueobject"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SQL query constants to avoid repetition
const (
	documentedItemFields = `
		id, file_path, language, item_kind, item_name, start_byte, end_byte,
		documentation, attributes, created_at, updated_at`
	documentedItemsTable = "codemeta.documented_items"

	insertDocumentedItemQuery = `
		INSERT INTO codemeta.documented_items (
			id, file_path, language, item_kind, item_name, start_byte, end_byte,
			documentation, attributes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
)

// metaItemRecord is the row-level JSON form of one attribute meta item.
type metaItemRecord struct {
	Key         string  `json:"key"`
	HasEquals   bool    `json:"has_equals"`
	HasArgList  bool    `json:"has_arg_list"`
	StringValue *string `json:"string_value,omitempty"`
}

// encodeAttributes serializes attribute meta items for the jsonb column.
func encodeAttributes(items []valueobject.MetaItem) ([]byte, error) {
	records := make([]metaItemRecord, 0, len(items))
	for _, item := range items {
		record := metaItemRecord{
			Key:        item.Key(),
			HasEquals:  item.HasEquals(),
			HasArgList: item.HasArgList(),
		}
		if value, ok := item.StringValue(); ok {
			record.StringValue = &value
		}
		records = append(records, record)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attributes: %w", err)
	}
	return data, nil
}

// decodeAttributes restores attribute meta items from the jsonb column.
func decodeAttributes(data []byte) ([]valueobject.MetaItem, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var records []metaItemRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode attributes: %w", err)
	}

	items := make([]valueobject.MetaItem, 0, len(records))
	for _, record := range records {
		item, err := valueobject.NewMetaItem(record.Key, record.HasEquals, record.HasArgList)
		if err != nil {
			return nil, fmt.Errorf("failed to restore attribute %q: %w", record.Key, err)
		}
		if record.StringValue != nil {
			item, err = item.WithStringValue(*record.StringValue)
			if err != nil {
				return nil, fmt.Errorf("failed to restore attribute value for %q: %w", record.Key, err)
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// restoreLanguage rebuilds a language value from its stored name. Well-known
// languages come back with their extension lists intact.
func restoreLanguage(name string) (valueobject.Language, error) {
	if name == valueobject.LanguageRust {
		return valueobject.Rust, nil
	}
	return valueobject.NewLanguage(name)
}

// PostgreSQLDocumentedItemRepository implements the DocumentedItemRepository interface
type PostgreSQLDocumentedItemRepository struct {
	pool *pgxpool.Pool
}

// NewPostgreSQLDocumentedItemRepository creates a new PostgreSQL documented item repository
func NewPostgreSQLDocumentedItemRepository(pool *pgxpool.Pool) *PostgreSQLDocumentedItemRepository {
	return &PostgreSQLDocumentedItemRepository{
		pool: pool,
	}
}

// Save saves a documented item to the database
func (r *PostgreSQLDocumentedItemRepository) Save(ctx context.Context, item *entity.DocumentedItem) error {
	if item == nil {
		return ErrInvalidArgument
	}

	attributes, err := encodeAttributes(item.Attributes())
	if err != nil {
		return err
	}

	qi := GetQueryInterface(ctx, r.pool)
	_, err = qi.Exec(ctx, insertDocumentedItemQuery,
		item.ID(),
		item.FilePath(),
		item.Language().Name(),
		item.Kind(),
		item.Name(),
		int64(item.StartByte()),
		int64(item.EndByte()),
		item.Documentation(),
		attributes,
		item.CreatedAt(),
		item.UpdatedAt(),
	)
	if err != nil {
		return WrapError(err, "save documented item")
	}

	return nil
}

// SaveBatch saves documented items in a single transaction
func (r *PostgreSQLDocumentedItemRepository) SaveBatch(ctx context.Context, items []*entity.DocumentedItem) error {
	if len(items) == 0 {
		return nil
	}

	// Validate and encode every row before opening the transaction.
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		if item == nil {
			return ErrInvalidArgument
		}

		attributes, err := encodeAttributes(item.Attributes())
		if err != nil {
			return err
		}

		rows = append(rows, []any{
			item.ID(),
			item.FilePath(),
			item.Language().Name(),
			item.Kind(),
			item.Name(),
			int64(item.StartByte()),
			int64(item.EndByte()),
			item.Documentation(),
			attributes,
			item.CreatedAt(),
			item.UpdatedAt(),
		})
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		slogger.Error(ctx, "Failed to begin transaction for batch item save", slogger.Field("error", err.Error()))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slogger.Warn(ctx, "Failed to rollback transaction", slogger.Field("error", err.Error()))
		}
	}()

	for i, row := range rows {
		if _, err := tx.Exec(ctx, insertDocumentedItemQuery, row...); err != nil {
			slogger.Error(ctx, "Failed to save documented item in batch", slogger.Fields{
				"item_id":   items[i].ID().String(),
				"file_path": items[i].FilePath(),
				"item_kind": items[i].Kind(),
				"error":     err.Error(),
			})
			return WrapError(err, "save documented item in batch")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		slogger.Error(ctx, "Failed to commit batch item save", slogger.Fields2(
			"item_count", len(items),
			"error", err.Error(),
		))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slogger.Debug(ctx, "Batch documented items saved", slogger.Field(
		"item_count", len(items),
	))

	return nil
}

// DeleteByFilePath deletes all documented items recorded for a file and
// returns the number of deleted rows
func (r *PostgreSQLDocumentedItemRepository) DeleteByFilePath(ctx context.Context, filePath string) (int64, error) {
	if filePath == "" {
		return 0, ErrInvalidArgument
	}

	query := `DELETE FROM ` + documentedItemsTable + ` WHERE file_path = $1`

	qi := GetQueryInterface(ctx, r.pool)
	result, err := qi.Exec(ctx, query, filePath)
	if err != nil {
		return 0, WrapError(err, "delete documented items")
	}

	return result.RowsAffected(), nil
}

// FindByFilePath finds all documented items recorded for a file, ordered by
// their position in the source
func (r *PostgreSQLDocumentedItemRepository) FindByFilePath(
	ctx context.Context,
	filePath string,
) ([]*entity.DocumentedItem, error) {
	if filePath == "" {
		return nil, ErrInvalidArgument
	}

	query := `SELECT ` + documentedItemFields + `
		FROM ` + documentedItemsTable + `
		WHERE file_path = $1
		ORDER BY start_byte ASC`

	qi := GetQueryInterface(ctx, r.pool)
	rows, err := qi.Query(ctx, query, filePath)
	if err != nil {
		return nil, WrapError(err, "query documented items")
	}
	defer rows.Close()

	var items []*entity.DocumentedItem
	for rows.Next() {
		item, err := r.scanDocumentedItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, WrapError(err, "iterate documented item rows")
	}

	return items, nil
}

// CountByLanguage counts the documented items stored for a language
func (r *PostgreSQLDocumentedItemRepository) CountByLanguage(ctx context.Context, language string) (int64, error) {
	if language == "" {
		return 0, ErrInvalidArgument
	}

	query := `SELECT COUNT(*) FROM ` + documentedItemsTable + ` WHERE language = $1`

	qi := GetQueryInterface(ctx, r.pool)

	var count int64
	if err := qi.QueryRow(ctx, query, language).Scan(&count); err != nil {
		return 0, WrapError(err, "count documented items")
	}

	return count, nil
}

// scanDocumentedItem is a helper function to convert a database row to a
// DocumentedItem entity
func (r *PostgreSQLDocumentedItemRepository) scanDocumentedItem(rows pgx.Rows) (*entity.DocumentedItem, error) {
	var id uuid.UUID
	var filePath, languageName, kind, name string
	var startByte, endByte int64
	var documentation *string
	var attributesData []byte
	var createdAt, updatedAt time.Time

	err := rows.Scan(
		&id, &filePath, &languageName, &kind, &name, &startByte, &endByte,
		&documentation, &attributesData, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, WrapError(err, "scan documented item row")
	}

	language, err := restoreLanguage(languageName)
	if err != nil {
		return nil, fmt.Errorf("invalid language in row: %w", err)
	}

	attributes, err := decodeAttributes(attributesData)
	if err != nil {
		return nil, err
	}

	return entity.RestoreDocumentedItem(
		id, filePath, language, kind, name,
		uint32(startByte), uint32(endByte),
		documentation, attributes,
		createdAt, updatedAt,
	), nil
}
