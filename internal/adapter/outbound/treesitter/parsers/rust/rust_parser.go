package rustparser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	forest "github.com/alexaandru/go-sitter-forest"
	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"

	"codemeta/internal/adapter/outbound/treesitter"
	parsererrors "codemeta/internal/adapter/outbound/treesitter/errors"
	"codemeta/internal/application/common/slogger"
	"codemeta/internal/domain/valueobject"
)

// maxReportedSyntaxErrors caps the syntax errors listed on a parse result.
const maxReportedSyntaxErrors = 10

// init registers the Rust parser with the treesitter registry to avoid import cycles.
func init() {
	treesitter.RegisterParser(valueobject.LanguageRust, func() (treesitter.TreeSitterParser, error) {
		return NewRustParser()
	})
}

// RustParser parses Rust source code with the bundled tree-sitter grammar.
type RustParser struct {
	supportedLanguage valueobject.Language
}

// NewRustParser creates a Rust parser instance.
func NewRustParser() (treesitter.TreeSitterParser, error) {
	return &RustParser{supportedLanguage: valueobject.Rust}, nil
}

// GetSupportedLanguage returns the language this parser handles.
func (p *RustParser) GetSupportedLanguage() valueobject.Language {
	return p.supportedLanguage
}

// ParseSource parses Rust source code into an adapter parse tree. The native
// tree-sitter tree stays attached to the result so downstream conversion can
// keep node references; ownership of it passes to the caller.
func (p *RustParser) ParseSource(
	ctx context.Context,
	language valueobject.Language,
	source []byte,
	options treesitter.ParseOptions,
) (*treesitter.ParseResult, error) {
	start := time.Now()

	if !strings.EqualFold(language.Name(), p.supportedLanguage.Name()) {
		return nil, parsererrors.NewLanguageError(
			language.Name(),
			fmt.Sprintf("rust parser cannot parse %s source", language.Name()),
		)
	}
	if err := validateSource(source, options); err != nil {
		return nil, err
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = treesitter.DefaultParseTimeout
	}
	parseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	grammar := forest.GetLanguage("rust")
	if grammar == nil {
		return nil, parsererrors.NewTreeSitterError("rust grammar is not available")
	}

	parser := tree_sitter.NewParser()
	if parser == nil {
		return nil, parsererrors.NewTreeSitterError("failed to create tree-sitter parser")
	}
	if !parser.SetLanguage(grammar) {
		return nil, parsererrors.NewTreeSitterError("failed to set rust grammar on parser")
	}

	tree, err := parser.ParseString(parseCtx, nil, source)
	if err != nil {
		if timeoutErr := parsererrors.TimeoutFromContext(parseCtx, "parse rust source"); timeoutErr != nil {
			return nil, timeoutErr.WithCause(err)
		}
		return nil, parsererrors.NewTreeSitterError("failed to parse rust source").WithCause(err)
	}
	if tree == nil {
		return nil, parsererrors.NewTreeSitterError("rust parse produced no tree")
	}

	stats := &treesitter.TreeConversionStats{}
	rootNode := treesitter.ConvertNativeNode(tree.RootNode(), 0, stats)
	if rootNode == nil {
		tree.Close()
		return nil, parsererrors.NewTreeSitterError("rust parse produced no root node")
	}

	duration := time.Since(start)
	result := &treesitter.ParseResult{
		Success: true,
		ParseTree: &treesitter.ParseTree{
			Language:       p.supportedLanguage.Name(),
			RootNode:       rootNode,
			Source:         string(source),
			CreatedAt:      time.Now(),
			TreeSitterTree: tree,
		},
		Errors:   collectSyntaxErrors(rootNode),
		Duration: duration,
		Statistics: &treesitter.ParsingStatistics{
			TotalNodes:     valueobject.ClampToUint32(stats.TotalNodes),
			ErrorNodes:     valueobject.ClampToUint32(stats.ErrorNodes),
			MissingNodes:   valueobject.ClampToUint32(stats.MissingNodes),
			MaxDepth:       valueobject.ClampToUint32(stats.MaxDepth),
			ParseDuration:  duration,
			BytesProcessed: uint64(len(source)),
			LinesProcessed: valueobject.ClampToUint32(strings.Count(string(source), "\n") + 1),
		},
	}

	slogger.Debug(ctx, "Parsed rust source", slogger.Fields{
		"file_path":      options.FilePath,
		"source_bytes":   len(source),
		"total_nodes":    stats.TotalNodes,
		"error_nodes":    stats.ErrorNodes,
		"parse_duration": duration.String(),
	})

	return result, nil
}

// validateSource rejects input the parser cannot handle before any
// tree-sitter work happens.
func validateSource(source []byte, options treesitter.ParseOptions) error {
	if len(source) == 0 {
		return errors.New("source code cannot be empty")
	}

	maxSize := options.MaxSourceSize
	if maxSize <= 0 {
		maxSize = treesitter.DefaultMaxSourceSize
	}
	if int64(len(source)) > maxSize {
		return parsererrors.NewResourceLimitError(
			fmt.Sprintf("source size %d exceeds maximum %d bytes", len(source), maxSize),
		).WithSourceLength(len(source))
	}

	if !utf8.Valid(source) {
		return parsererrors.NewEncodingError("source is not valid UTF-8")
	}

	return nil
}

// collectSyntaxErrors lists the error and missing nodes of a parsed tree,
// capped at maxReportedSyntaxErrors entries.
func collectSyntaxErrors(root *treesitter.ParseNode) []treesitter.ParseError {
	var parseErrors []treesitter.ParseError
	appendSyntaxErrors(root, &parseErrors)
	return parseErrors
}

func appendSyntaxErrors(node *treesitter.ParseNode, out *[]treesitter.ParseError) {
	if node == nil || len(*out) >= maxReportedSyntaxErrors {
		return
	}

	switch {
	case node.IsError:
		*out = append(*out, newSyntaxParseError("syntax_error", "syntax error", node))
	case node.IsMissing:
		*out = append(*out, newSyntaxParseError("missing_node", "missing "+node.Type, node))
	}

	for _, child := range node.Children {
		appendSyntaxErrors(child, out)
	}
}

func newSyntaxParseError(errorType, message string, node *treesitter.ParseNode) treesitter.ParseError {
	startPoint := node.StartPoint
	endPoint := node.EndPoint
	return treesitter.ParseError{
		Type:       errorType,
		Message:    message,
		StartByte:  node.StartByte,
		EndByte:    node.EndByte,
		StartPoint: &startPoint,
		EndPoint:   &endPoint,
		Severity:   "error",
		Timestamp:  time.Now(),
	}
}
