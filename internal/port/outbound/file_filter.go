package outbound

import "context"

// GitignorePattern is a single parsed rule from a .gitignore file.
type GitignorePattern struct {
	Pattern     string `json:"pattern"`
	IsNegation  bool   `json:"is_negation"`
	IsDirectory bool   `json:"is_directory"`
	SourceFile  string `json:"source_file"`
	LineNumber  int    `json:"line_number"`
}

// FileFilter decides which paths a directory indexing run should visit.
// Implementations load ignore rules from the tree being indexed and apply
// them to paths relative to the index root.
type FileFilter interface {
	// LoadPatterns loads the ignore patterns that apply under rootDir.
	LoadPatterns(ctx context.Context, rootDir string) ([]GitignorePattern, error)

	// ShouldIndexFile reports whether the file at filePath, located under
	// rootDir, should be indexed.
	ShouldIndexFile(ctx context.Context, rootDir, filePath string) (bool, error)

	// ShouldIndexDir reports whether an index walk should descend into
	// dirPath. Returning false prunes the whole subtree.
	ShouldIndexDir(ctx context.Context, rootDir, dirPath string) (bool, error)
}
