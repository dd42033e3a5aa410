package outbound

import (
	"context"

	"codemeta/internal/domain/valueobject"
)

// AnnotationExtractor defines the outbound port for extracting attribute and
// documentation metadata from parsed source declarations.
//
// All operations are read-only derivations over the parse tree: absence of
// attributes, documentation or capability is an empty result, never an error.
// Errors are reserved for invalid input such as a nil tree or node.
type AnnotationExtractor interface {
	// DiscoverDeclarations enumerates the declaration nodes in the tree that
	// can own attributes or documentation, in source order.
	DiscoverDeclarations(ctx context.Context, tree *valueobject.ParseTree) ([]SourceDeclaration, error)

	// AllAttributes returns the attribute nodes attached to the owner:
	// outer attributes in source order followed by inner attributes in
	// source order.
	AllAttributes(
		ctx context.Context,
		tree *valueobject.ParseTree,
		owner *valueobject.ParseNode,
	) ([]*valueobject.ParseNode, error)

	// QueryAttributes parses the owner's attributes into an immutable
	// snapshot supporting marker and string-value queries.
	QueryAttributes(
		ctx context.Context,
		tree *valueobject.ParseTree,
		owner *valueobject.ParseNode,
	) (valueobject.AttributeQuery, error)

	// Documentation reconstructs the owner's documentation text from doc
	// comments and doc attributes in lexical order. The result is possibly
	// empty; an owner with no documentation sources yields the empty string.
	Documentation(
		ctx context.Context,
		tree *valueobject.ParseTree,
		owner *valueobject.ParseNode,
	) (string, error)

	// GetSupportedLanguage returns the language this extractor understands.
	GetSupportedLanguage() valueobject.Language
}

// SourceDeclaration describes one declaration found in a source file.
type SourceDeclaration struct {
	Node          *valueobject.ParseNode `json:"-"`
	Kind          string                 `json:"kind"`
	Name          string                 `json:"name,omitempty"`
	StartByte     uint32                 `json:"start_byte"`
	EndByte       uint32                 `json:"end_byte"`
	StartPosition valueobject.Position   `json:"start_position"`
	EndPosition   valueobject.Position   `json:"end_position"`
}
