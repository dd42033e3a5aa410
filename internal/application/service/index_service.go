package service

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"codemeta/internal/application/common/slogger"
	"codemeta/internal/port/outbound"
)

// IndexFailure records a file that could not be indexed.
type IndexFailure struct {
	FilePath string `json:"file_path"`
	Reason   string `json:"reason"`
}

// IndexReport summarizes one directory indexing run.
type IndexReport struct {
	FilesSeen    int            `json:"files_seen"`
	FilesIndexed int            `json:"files_indexed"`
	ItemCount    int            `json:"item_count"`
	Failures     []IndexFailure `json:"failures,omitempty"`
}

// IndexService walks a directory tree, extracts documented items from every
// supported source file, and optionally persists the results and publishes
// file-indexed events. Repository, publisher, and filter are all optional so
// the service can run extract-only over an unfiltered tree.
type IndexService struct {
	extraction  *ExtractionService
	repository  outbound.DocumentedItemRepository
	publisher   outbound.MessagePublisher
	filter      outbound.FileFilter
	concurrency int
}

// NewIndexService creates a new IndexService. The extraction service is
// required; repository, publisher, and filter may be nil. Concurrency below
// 1 is raised to 1.
func NewIndexService(
	extraction *ExtractionService,
	repository outbound.DocumentedItemRepository,
	publisher outbound.MessagePublisher,
	filter outbound.FileFilter,
	concurrency int,
) *IndexService {
	if extraction == nil {
		panic("extraction service cannot be nil")
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &IndexService{
		extraction:  extraction,
		repository:  repository,
		publisher:   publisher,
		filter:      filter,
		concurrency: concurrency,
	}
}

// IndexDirectory indexes every supported source file under dirPath. Per-file
// failures are collected in the report rather than aborting the run; the
// returned error is reserved for directory scanning and cancellation.
func (s *IndexService) IndexDirectory(ctx context.Context, dirPath string) (*IndexReport, error) {
	files, err := s.collectSourceFiles(ctx, dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dirPath, err)
	}

	report := &IndexReport{FilesSeen: len(files)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, filePath := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			extraction, err := s.indexFile(gctx, filePath)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failures = append(report.Failures, IndexFailure{
					FilePath: filePath,
					Reason:   err.Error(),
				})
				return nil
			}
			report.FilesIndexed++
			report.ItemCount += extraction.ItemCount()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("indexing aborted: %w", err)
	}

	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].FilePath < report.Failures[j].FilePath
	})

	slogger.Info(ctx, "Indexed directory", slogger.Fields{
		"dir_path":      dirPath,
		"files_seen":    report.FilesSeen,
		"files_indexed": report.FilesIndexed,
		"item_count":    report.ItemCount,
		"failure_count": len(report.Failures),
	})

	return report, nil
}

func (s *IndexService) indexFile(ctx context.Context, filePath string) (*FileExtraction, error) {
	extraction, err := s.extraction.ExtractFile(ctx, filePath)
	if err != nil {
		return nil, err
	}

	if s.repository != nil {
		if _, err := s.repository.DeleteByFilePath(ctx, filePath); err != nil {
			return nil, fmt.Errorf("failed to clear previous items for %s: %w", filePath, err)
		}
		if err := s.repository.SaveBatch(ctx, extraction.Items); err != nil {
			return nil, fmt.Errorf("failed to store items for %s: %w", filePath, err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishFileIndexed(ctx, filePath, extraction.Language, extraction.ItemCount()); err != nil {
			return nil, fmt.Errorf("failed to publish indexed event for %s: %w", filePath, err)
		}
	}

	return extraction, nil
}

// collectSourceFiles walks dirPath and returns the sorted paths of files
// whose extension belongs to the extraction language. Hidden directories are
// skipped, and the file filter prunes whatever the tree's ignore rules cover.
func (s *IndexService) collectSourceFiles(ctx context.Context, dirPath string) ([]string, error) {
	language := s.extraction.Language()

	var files []string
	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dirPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if s.filter != nil && path != dirPath {
				descend, filterErr := s.filter.ShouldIndexDir(ctx, dirPath, path)
				if filterErr != nil {
					return filterErr
				}
				if !descend {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !language.HasExtension(filepath.Ext(path)) {
			return nil
		}
		if s.filter != nil {
			index, filterErr := s.filter.ShouldIndexFile(ctx, dirPath, path)
			if filterErr != nil {
				return filterErr
			}
			if !index {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
