package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codemeta/internal/application/common/slogger"
	"codemeta/internal/domain/entity"
	"codemeta/internal/domain/valueobject"
	"codemeta/internal/port/outbound"
)

// Extraction stages reported on error metrics.
const (
	extractionStageParse    = "parse"
	extractionStageDiscover = "discover"
	extractionStageExtract  = "extract"
)

// FileExtraction is the result of extracting one source file: every
// discovered declaration with its documentation and attribute metadata.
type FileExtraction struct {
	FilePath string
	Language valueobject.Language
	Items    []*entity.DocumentedItem
	Duration time.Duration
}

// ItemCount returns the number of extracted items.
func (f *FileExtraction) ItemCount() int {
	return len(f.Items)
}

// DocumentedCount returns the number of items carrying documentation.
func (f *FileExtraction) DocumentedCount() int {
	count := 0
	for _, item := range f.Items {
		if item.IsDocumented() {
			count++
		}
	}
	return count
}

// ExtractionService turns source files into documented item collections:
// parse, discover declarations, then reconstruct documentation and read
// attributes per declaration.
type ExtractionService struct {
	parser    outbound.SourceParser
	extractor outbound.AnnotationExtractor
	metrics   ExtractionMetrics
}

// NewExtractionService creates a new ExtractionService. The metrics sink is
// optional; parser and extractor are required.
func NewExtractionService(
	parser outbound.SourceParser,
	extractor outbound.AnnotationExtractor,
	metrics ExtractionMetrics,
) *ExtractionService {
	if parser == nil {
		panic("parser cannot be nil")
	}
	if extractor == nil {
		panic("extractor cannot be nil")
	}
	return &ExtractionService{
		parser:    parser,
		extractor: extractor,
		metrics:   metrics,
	}
}

// Language returns the language this service extracts.
func (s *ExtractionService) Language() valueobject.Language {
	return s.extractor.GetSupportedLanguage()
}

// ExtractFile parses the file at filePath and extracts its documented items.
// Unsupported files fail with outbound.ErrUnsupportedFile.
func (s *ExtractionService) ExtractFile(ctx context.Context, filePath string) (*FileExtraction, error) {
	start := time.Now()

	tree, err := s.parser.ParseFile(ctx, filePath)
	if err != nil {
		s.recordError(ctx, extractionStageParse)
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}

	return s.extract(ctx, tree, filePath, start)
}

// ExtractSource parses in-memory source code and extracts its documented
// items. filePath labels the resulting items and must not be empty.
func (s *ExtractionService) ExtractSource(
	ctx context.Context,
	filePath string,
	source []byte,
) (*FileExtraction, error) {
	if filePath == "" {
		return nil, errors.New("file path cannot be empty")
	}
	start := time.Now()

	tree, err := s.parser.ParseSource(ctx, s.Language(), source)
	if err != nil {
		s.recordError(ctx, extractionStageParse)
		return nil, fmt.Errorf("failed to parse source for %s: %w", filePath, err)
	}

	return s.extract(ctx, tree, filePath, start)
}

func (s *ExtractionService) extract(
	ctx context.Context,
	tree *valueobject.ParseTree,
	filePath string,
	start time.Time,
) (*FileExtraction, error) {
	defer func() { _ = tree.Cleanup(ctx) }()

	declarations, err := s.extractor.DiscoverDeclarations(ctx, tree)
	if err != nil {
		s.recordError(ctx, extractionStageDiscover)
		return nil, fmt.Errorf("failed to discover declarations in %s: %w", filePath, err)
	}

	language := s.Language()
	items := make([]*entity.DocumentedItem, 0, len(declarations))
	for _, declaration := range declarations {
		item, err := s.extractDeclaration(ctx, tree, filePath, language, declaration)
		if err != nil {
			s.recordError(ctx, extractionStageExtract)
			return nil, fmt.Errorf("failed to extract %s %q in %s: %w",
				declaration.Kind, declaration.Name, filePath, err)
		}
		items = append(items, item)
	}

	extraction := &FileExtraction{
		FilePath: filePath,
		Language: language,
		Items:    items,
		Duration: time.Since(start),
	}

	if s.metrics != nil {
		s.metrics.RecordFileExtracted(
			ctx,
			language.Name(),
			extraction.ItemCount(),
			extraction.DocumentedCount(),
			extraction.Duration,
		)
	}

	slogger.Info(ctx, "Extracted documented items from file", slogger.Fields{
		"file_path":        filePath,
		"language":         language.Name(),
		"item_count":       extraction.ItemCount(),
		"documented_count": extraction.DocumentedCount(),
		"duration":         extraction.Duration.String(),
	})

	return extraction, nil
}

func (s *ExtractionService) extractDeclaration(
	ctx context.Context,
	tree *valueobject.ParseTree,
	filePath string,
	language valueobject.Language,
	declaration outbound.SourceDeclaration,
) (*entity.DocumentedItem, error) {
	docs, err := s.extractor.Documentation(ctx, tree, declaration.Node)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct documentation: %w", err)
	}

	query, err := s.extractor.QueryAttributes(ctx, tree, declaration.Node)
	if err != nil {
		return nil, fmt.Errorf("failed to read attributes: %w", err)
	}

	var documentation *string
	if docs != "" {
		documentation = &docs
	}

	item, err := entity.NewDocumentedItem(
		filePath,
		language,
		declaration.Kind,
		declaration.Name,
		declaration.StartByte,
		declaration.EndByte,
		documentation,
		query.Items(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create documented item: %w", err)
	}
	return item, nil
}

func (s *ExtractionService) recordError(ctx context.Context, stage string) {
	if s.metrics != nil {
		s.metrics.RecordExtractionError(ctx, s.Language().Name(), stage)
	}
}
