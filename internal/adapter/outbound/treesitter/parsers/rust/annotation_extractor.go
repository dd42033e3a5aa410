package rustparser

import (
	"context"
	"errors"

	"codemeta/internal/application/common/slogger"
	"codemeta/internal/domain/valueobject"
	"codemeta/internal/port/outbound"
)

// declarationKinds lists node kinds surfaced by declaration discovery. The
// source file itself is included so that crate level documentation is
// extracted like any other item's.
//
//nolint:gochecknoglobals // immutable lookup table shared by all queries
var declarationKinds = map[string]bool{
	"source_file":              true,
	"function_item":            true,
	"function_signature_item":  true,
	"struct_item":              true,
	"enum_item":                true,
	"enum_variant":             true,
	"union_item":               true,
	"mod_item":                 true,
	"trait_item":               true,
	"impl_item":                true,
	"const_item":               true,
	"static_item":              true,
	"type_item":                true,
	"associated_type":          true,
	"macro_definition":         true,
	"use_declaration":          true,
	"extern_crate_declaration": true,
	"foreign_mod_item":         true,
	"field_declaration":        true,
}

// RustAnnotationExtractor answers attribute and documentation queries over
// parsed Rust declarations. Every operation re-derives its answer from the
// tree, so results always reflect the tree as currently parsed.
type RustAnnotationExtractor struct {
	language valueobject.Language
}

// NewRustAnnotationExtractor creates an annotation extractor for Rust parse
// trees.
func NewRustAnnotationExtractor() *RustAnnotationExtractor {
	return &RustAnnotationExtractor{language: valueobject.Rust}
}

// GetSupportedLanguage returns the language this extractor understands.
func (e *RustAnnotationExtractor) GetSupportedLanguage() valueobject.Language {
	return e.language
}

// DiscoverDeclarations walks the parse tree in document order and returns
// every node that represents a declaration, including declarations nested in
// other declarations.
func (e *RustAnnotationExtractor) DiscoverDeclarations(
	ctx context.Context,
	tree *valueobject.ParseTree,
) ([]outbound.SourceDeclaration, error) {
	if tree == nil {
		return nil, errors.New("parse tree cannot be nil")
	}

	var declarations []outbound.SourceDeclaration
	collectDeclarations(tree, tree.RootNode(), &declarations)

	slogger.Debug(ctx, "Discovered declarations in parse tree", slogger.Fields{
		"language":          e.language.Name(),
		"declaration_count": len(declarations),
	})

	return declarations, nil
}

// AllAttributes returns the owner's outer attribute nodes followed by its
// inner attribute nodes, each half in source order. Owners without attributes
// or without either capability yield an empty list.
func (e *RustAnnotationExtractor) AllAttributes(
	_ context.Context,
	tree *valueobject.ParseTree,
	owner *valueobject.ParseNode,
) ([]*valueobject.ParseNode, error) {
	if tree == nil {
		return nil, errors.New("parse tree cannot be nil")
	}
	if owner == nil {
		return nil, errors.New("owner node cannot be nil")
	}
	return collectAllAttributes(tree, owner), nil
}

// QueryAttributes builds an immutable snapshot of the owner's attribute list
// answering marker and string-value queries.
func (e *RustAnnotationExtractor) QueryAttributes(
	_ context.Context,
	tree *valueobject.ParseTree,
	owner *valueobject.ParseNode,
) (valueobject.AttributeQuery, error) {
	if tree == nil {
		return valueobject.AttributeQuery{}, errors.New("parse tree cannot be nil")
	}
	if owner == nil {
		return valueobject.AttributeQuery{}, errors.New("owner node cannot be nil")
	}
	return queryAttributesFor(tree, owner), nil
}

// Documentation reconstructs the owner's documentation text. The result is
// the empty string for owners without documentation; callers distinguish
// undocumented items by emptiness.
func (e *RustAnnotationExtractor) Documentation(
	_ context.Context,
	tree *valueobject.ParseTree,
	owner *valueobject.ParseNode,
) (string, error) {
	if tree == nil {
		return "", errors.New("parse tree cannot be nil")
	}
	if owner == nil {
		return "", errors.New("owner node cannot be nil")
	}
	return documentationFor(tree, owner), nil
}

func collectDeclarations(
	tree *valueobject.ParseTree,
	node *valueobject.ParseNode,
	out *[]outbound.SourceDeclaration,
) {
	if node == nil {
		return
	}

	if declarationKinds[node.Type] {
		*out = append(*out, outbound.SourceDeclaration{
			Node:          node,
			Kind:          node.Type,
			Name:          declarationName(tree, node),
			StartByte:     node.StartByte,
			EndByte:       node.EndByte,
			StartPosition: node.StartPos,
			EndPosition:   node.EndPos,
		})
	}

	for _, child := range node.Children {
		collectDeclarations(tree, child, out)
	}
}

// declarationName resolves the display name of a declaration. Impl blocks
// have no name field and use their implemented type instead; declarations
// without any name resolve to the empty string.
func declarationName(tree *valueobject.ParseTree, node *valueobject.ParseNode) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return tree.GetNodeText(nameNode)
	}
	if node.Type == "impl_item" {
		if typeNode := node.ChildByFieldName("type"); typeNode != nil {
			return tree.GetNodeText(typeNode)
		}
	}
	return ""
}
