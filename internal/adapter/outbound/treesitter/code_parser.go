package treesitter

import (
	"context"
	"fmt"
	"os"
	"time"

	"codemeta/internal/application/common/slogger"
	"codemeta/internal/domain/valueobject"
	"codemeta/internal/port/outbound"
)

// SourceParserOptions bounds the work a single parse may do. Zero values
// select the adapter defaults.
type SourceParserOptions struct {
	MaxSourceSize int64
	ParseTimeout  time.Duration
}

// TreeSitterSourceParser implements outbound.SourceParser on top of the
// parser registry and the adapter-to-domain bridge.
type TreeSitterSourceParser struct {
	factory *ParserFactoryImpl
	options SourceParserOptions
}

// NewTreeSitterSourceParser creates a SourceParser backed by the registered
// tree-sitter parsers.
func NewTreeSitterSourceParser(
	ctx context.Context,
	options SourceParserOptions,
) (*TreeSitterSourceParser, error) {
	factory, err := NewTreeSitterParserFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create parser factory: %w", err)
	}

	return &TreeSitterSourceParser{
		factory: factory,
		options: options,
	}, nil
}

// ParseFile reads one source file, detects its language from the path, and
// parses it into a domain tree. Files with unrecognized or unregistered
// languages fail with outbound.ErrUnsupportedFile.
func (p *TreeSitterSourceParser) ParseFile(
	ctx context.Context,
	filePath string,
) (*valueobject.ParseTree, error) {
	language, err := DetectLanguageFromFilePath(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect language of %s: %w", filePath, err)
	}
	if language.IsUnknown() || !p.factory.IsLanguageSupported(ctx, language) {
		return nil, fmt.Errorf("%w: %s", outbound.ErrUnsupportedFile, filePath)
	}

	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	return p.parse(ctx, language, source, filePath)
}

// ParseSource parses in-memory source code of the given language into a
// domain tree.
func (p *TreeSitterSourceParser) ParseSource(
	ctx context.Context,
	language valueobject.Language,
	source []byte,
) (*valueobject.ParseTree, error) {
	return p.parse(ctx, language, source, "")
}

func (p *TreeSitterSourceParser) parse(
	ctx context.Context,
	language valueobject.Language,
	source []byte,
	filePath string,
) (*valueobject.ParseTree, error) {
	parser, err := p.factory.CreateParser(ctx, language)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s parser: %w", language.Name(), err)
	}

	result, err := parser.ParseSource(ctx, language, source, ParseOptions{
		MaxSourceSize: p.options.MaxSourceSize,
		Timeout:       p.options.ParseTimeout,
		FilePath:      filePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s source: %w", language.Name(), err)
	}
	if !result.Success || result.ParseTree == nil {
		return nil, fmt.Errorf("%s parse produced no tree", language.Name())
	}

	domainTree, err := ConvertPortParseTreeToDomain(ctx, result.ParseTree, result.Duration)
	if err != nil {
		result.ParseTree.Close()
		return nil, fmt.Errorf("failed to convert parse tree: %w", err)
	}

	if len(result.Errors) > 0 {
		slogger.Debug(ctx, "Parse tree contains syntax errors", slogger.Fields{
			"language":     language.Name(),
			"file_path":    filePath,
			"error_count":  len(result.Errors),
			"source_bytes": len(source),
		})
	}

	return domainTree, nil
}
