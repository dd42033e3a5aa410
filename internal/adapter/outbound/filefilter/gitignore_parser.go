package filefilter

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"codemeta/internal/port/outbound"
)

// GitignoreParser handles parsing of .gitignore files.
type GitignoreParser struct{}

// NewGitignoreParser creates a new gitignore parser instance.
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadPatterns loads gitignore patterns from the root of the directory tree.
// A tree without a .gitignore file yields no patterns, not an error.
func (p *GitignoreParser) LoadPatterns(_ context.Context, rootDir string) ([]outbound.GitignorePattern, error) {
	gitignorePath := filepath.Join(rootDir, ".gitignore")
	patterns, err := p.parseGitignoreFile(gitignorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return patterns, nil
}

// parseGitignoreFile parses a single .gitignore file and returns its patterns.
func (p *GitignoreParser) parseGitignoreFile(filePath string) ([]outbound.GitignorePattern, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var patterns []outbound.GitignorePattern
	scanner := bufio.NewScanner(file)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())

		// Blank lines and comments carry no pattern.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		patterns = append(patterns, p.parsePattern(line, filePath, lineNumber))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return patterns, nil
}

// parsePattern parses a single gitignore pattern line.
func (p *GitignoreParser) parsePattern(line, sourceFile string, lineNumber int) outbound.GitignorePattern {
	pattern := outbound.GitignorePattern{
		SourceFile: sourceFile,
		LineNumber: lineNumber,
	}

	if strings.HasPrefix(line, "!") {
		pattern.IsNegation = true
		pattern.Pattern = line[1:]
	} else {
		pattern.Pattern = line
	}

	if strings.HasSuffix(pattern.Pattern, "/") {
		pattern.IsDirectory = true
	}

	return pattern
}
