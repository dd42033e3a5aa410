package filefilter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"codemeta/internal/port/outbound"
)

// Filter implements outbound.FileFilter using the gitignore rules of the
// tree being indexed. Parsed patterns are cached per root directory so a
// directory walk reads .gitignore only once.
type Filter struct {
	parser  *GitignoreParser
	matcher *GitignoreMatcher

	patternCache map[string][]outbound.GitignorePattern
	cacheMutex   sync.RWMutex
}

// NewFilter creates a new file filter instance.
func NewFilter() *Filter {
	return &Filter{
		parser:       NewGitignoreParser(),
		matcher:      NewGitignoreMatcher(),
		patternCache: make(map[string][]outbound.GitignorePattern),
	}
}

// LoadPatterns loads the gitignore patterns that apply under rootDir. A
// missing .gitignore yields no patterns rather than an error.
func (f *Filter) LoadPatterns(ctx context.Context, rootDir string) ([]outbound.GitignorePattern, error) {
	f.cacheMutex.RLock()
	patterns, cached := f.patternCache[rootDir]
	f.cacheMutex.RUnlock()
	if cached {
		return patterns, nil
	}

	patterns, err := f.parser.LoadPatterns(ctx, rootDir)
	if err != nil {
		return nil, err
	}

	f.cacheMutex.Lock()
	f.patternCache[rootDir] = patterns
	f.cacheMutex.Unlock()

	return patterns, nil
}

// ShouldIndexFile reports whether the file at filePath should be indexed.
func (f *Filter) ShouldIndexFile(ctx context.Context, rootDir, filePath string) (bool, error) {
	return f.shouldIndex(ctx, rootDir, filePath)
}

// ShouldIndexDir reports whether an index walk should descend into dirPath.
func (f *Filter) ShouldIndexDir(ctx context.Context, rootDir, dirPath string) (bool, error) {
	return f.shouldIndex(ctx, rootDir, dirPath)
}

func (f *Filter) shouldIndex(ctx context.Context, rootDir, path string) (bool, error) {
	relPath, err := filepath.Rel(rootDir, path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve %s against root %s: %w", path, rootDir, err)
	}
	relPath = filepath.ToSlash(relPath)
	if relPath == "." {
		return true, nil
	}

	// Git metadata is never indexable.
	for _, segment := range strings.Split(relPath, "/") {
		if segment == ".git" {
			return false, nil
		}
	}

	patterns, err := f.LoadPatterns(ctx, rootDir)
	if err != nil {
		return false, err
	}

	return !f.isIgnored(patterns, relPath), nil
}

// isIgnored applies patterns in file order. The last matching pattern wins,
// with negation patterns re-including a previously excluded path.
func (f *Filter) isIgnored(patterns []outbound.GitignorePattern, relPath string) bool {
	ignored := false
	for _, pattern := range patterns {
		if f.matcher.MatchPattern(pattern.Pattern, relPath) {
			ignored = !pattern.IsNegation
		}
	}
	return ignored
}
