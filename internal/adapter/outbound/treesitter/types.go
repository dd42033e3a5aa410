package treesitter

import (
	"context"
	"time"

	"codemeta/internal/domain/valueobject"

	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// ParseTree represents a tree-sitter parse tree for the adapter layer.
type ParseTree struct {
	Language       string            `json:"language"`
	RootNode       *ParseNode        `json:"root_node"`
	Source         string            `json:"source"`
	CreatedAt      time.Time         `json:"created_at"`
	TreeSitterTree *tree_sitter.Tree `json:"-"` // Raw tree-sitter tree (not serialized)
}

// Close releases the native tree-sitter tree if it is still attached. Callers
// that hand the tree off to a domain ParseTree must not call Close afterwards;
// ownership moves with the handoff.
func (t *ParseTree) Close() {
	if t != nil && t.TreeSitterTree != nil {
		t.TreeSitterTree.Close()
		t.TreeSitterTree = nil
	}
}

// ParseNode represents a node in the tree-sitter parse tree.
type ParseNode struct {
	Type       string       `json:"type"`
	StartByte  uint32       `json:"start_byte"`
	EndByte    uint32       `json:"end_byte"`
	StartPoint Point        `json:"start_point"`
	EndPoint   Point        `json:"end_point"`
	Children   []*ParseNode `json:"children"`
	IsNamed    bool         `json:"is_named"`
	IsError    bool         `json:"is_error"`
	IsMissing  bool         `json:"is_missing"`
}

// Point represents a position in the source code.
type Point struct {
	Row    uint32 `json:"row"`
	Column uint32 `json:"column"`
}

// ParseResult represents the result of a parsing operation.
type ParseResult struct {
	Success    bool               `json:"success"`
	ParseTree  *ParseTree         `json:"parse_tree,omitempty"`
	Errors     []ParseError       `json:"errors,omitempty"`
	Duration   time.Duration      `json:"duration"`
	Statistics *ParsingStatistics `json:"statistics,omitempty"`
}

// ParseOptions configures parsing behavior. Zero values select defaults.
type ParseOptions struct {
	MaxSourceSize int64         `json:"max_source_size"`
	Timeout       time.Duration `json:"timeout"`
	FilePath      string        `json:"file_path,omitempty"`
}

// ParseError represents a parsing error.
type ParseError struct {
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	StartByte  uint32    `json:"start_byte,omitempty"`
	EndByte    uint32    `json:"end_byte,omitempty"`
	StartPoint *Point    `json:"start_point,omitempty"`
	EndPoint   *Point    `json:"end_point,omitempty"`
	Severity   string    `json:"severity"`
	Timestamp  time.Time `json:"timestamp"`
}

// ParsingStatistics contains statistics about the parsing operation.
type ParsingStatistics struct {
	TotalNodes     uint32        `json:"total_nodes"`
	ErrorNodes     uint32        `json:"error_nodes"`
	MissingNodes   uint32        `json:"missing_nodes"`
	MaxDepth       uint32        `json:"max_depth"`
	ParseDuration  time.Duration `json:"parse_duration"`
	BytesProcessed uint64        `json:"bytes_processed"`
	LinesProcessed uint32        `json:"lines_processed"`
}

// TreeSitterParser defines the interface for language parsers.
type TreeSitterParser interface {
	// ParseSource parses source code and returns a parse result.
	ParseSource(
		ctx context.Context,
		language valueobject.Language,
		source []byte,
		options ParseOptions,
	) (*ParseResult, error)

	// GetSupportedLanguage returns the language this parser handles.
	GetSupportedLanguage() valueobject.Language
}
