package outbound

import (
	"context"

	"codemeta/internal/domain/entity"
)

// DocumentedItemRepository defines the outbound port for documented item
// persistence.
type DocumentedItemRepository interface {
	Save(ctx context.Context, item *entity.DocumentedItem) error
	SaveBatch(ctx context.Context, items []*entity.DocumentedItem) error
	DeleteByFilePath(ctx context.Context, filePath string) (int64, error)
	FindByFilePath(ctx context.Context, filePath string) ([]*entity.DocumentedItem, error)
	CountByLanguage(ctx context.Context, language string) (int64, error)
}
