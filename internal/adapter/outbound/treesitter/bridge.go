package treesitter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codemeta/internal/domain/valueobject"
)

// ConvertPortParseTreeToDomain converts an adapter ParseTree into the domain
// representation. When the adapter tree still carries the native tree-sitter
// tree, the domain tree is rebuilt from the native nodes so that every domain
// node keeps its tree-sitter reference and field-based child lookups remain
// available. Ownership of the native tree passes to the domain tree, which
// releases it on Cleanup.
func ConvertPortParseTreeToDomain(
	ctx context.Context,
	portTree *ParseTree,
	parseDuration time.Duration,
) (*valueobject.ParseTree, error) {
	if portTree == nil {
		return nil, errors.New("adapter parse tree cannot be nil")
	}

	language, err := resolveLanguageName(portTree.Language)
	if err != nil {
		return nil, fmt.Errorf("invalid language %s: %w", portTree.Language, err)
	}

	var (
		domainRoot *valueobject.ParseNode
		nodeCount  int
		maxDepth   int
	)

	if portTree.TreeSitterTree != nil {
		domainRoot, nodeCount, maxDepth = convertNativeNodeToDomain(portTree.TreeSitterTree.RootNode(), 0)
	} else {
		domainRoot, err = convertPortNodeToDomain(portTree.RootNode)
		if err != nil {
			return nil, fmt.Errorf("failed to convert root node: %w", err)
		}
		nodeCount, maxDepth = countPortNodes(portTree.RootNode, 0)
	}
	if domainRoot == nil {
		return nil, errors.New("adapter parse tree has no root node")
	}

	metadata, err := valueobject.NewParseMetadata(parseDuration, "go-tree-sitter-bare", "1.0.0")
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata: %w", err)
	}
	metadata.NodeCount = nodeCount
	metadata.MaxDepth = maxDepth

	domainTree, err := valueobject.NewParseTree(ctx, language, domainRoot, []byte(portTree.Source), metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to create domain parse tree: %w", err)
	}

	if portTree.TreeSitterTree != nil {
		domainTree.SetTreeSitterTree(portTree.TreeSitterTree)
	}

	return domainTree, nil
}

// convertPortNodeToDomain converts an adapter ParseNode to a domain ParseNode.
// Nodes converted this way carry no native tree-sitter reference.
func convertPortNodeToDomain(portNode *ParseNode) (*valueobject.ParseNode, error) {
	if portNode == nil {
		return nil, errors.New("adapter node cannot be nil")
	}

	var domainChildren []*valueobject.ParseNode
	for _, child := range portNode.Children {
		domainChild, err := convertPortNodeToDomain(child)
		if err != nil {
			return nil, fmt.Errorf("failed to convert child node: %w", err)
		}
		domainChildren = append(domainChildren, domainChild)
	}

	domainNode := &valueobject.ParseNode{
		Type:      portNode.Type,
		StartByte: portNode.StartByte,
		EndByte:   portNode.EndByte,
		StartPos: valueobject.Position{
			Row:    portNode.StartPoint.Row,
			Column: portNode.StartPoint.Column,
		},
		EndPos: valueobject.Position{
			Row:    portNode.EndPoint.Row,
			Column: portNode.EndPoint.Column,
		},
		Children: domainChildren,
	}

	return domainNode, nil
}

// countPortNodes returns node count and maximum depth of an adapter subtree.
func countPortNodes(node *ParseNode, depth int) (int, int) {
	if node == nil {
		return 0, depth
	}

	count := 1
	maxDepth := depth
	for _, child := range node.Children {
		childCount, childDepth := countPortNodes(child, depth+1)
		count += childCount
		if childDepth > maxDepth {
			maxDepth = childDepth
		}
	}
	return count, maxDepth
}

// resolveLanguageName resolves a language name to its well-known instance
// when one exists, falling back to a bare Language value object.
func resolveLanguageName(name string) (valueobject.Language, error) {
	if lang := valueobject.GetLanguageByName(name); lang != nil {
		return *lang, nil
	}
	return valueobject.NewLanguage(name)
}

// DetectLanguageFromFilePath detects the source language from a file path
// extension. Unrecognized extensions yield the Unknown language without an
// error so that directory walkers can skip unsupported files.
func DetectLanguageFromFilePath(filePath string) (valueobject.Language, error) {
	if filePath == "" {
		return valueobject.Language{}, errors.New("empty file path")
	}

	switch strings.ToLower(getFileExtension(filePath)) {
	case RustExtension:
		return valueobject.Rust, nil
	default:
		return valueobject.NewLanguage(valueobject.LanguageUnknown)
	}
}

// getFileExtension extracts the file extension from a path.
func getFileExtension(filePath string) string {
	for i := len(filePath) - 1; i >= 0; i-- {
		if filePath[i] == '.' {
			return filePath[i+1:]
		}
		if filePath[i] == '/' || filePath[i] == '\\' {
			break
		}
	}
	return ""
}
