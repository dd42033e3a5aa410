package valueobject

import (
	"codemeta/internal/application/common/slogger"
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// ParseTree represents an immutable tree-sitter parse tree as a value object.
// It owns a snapshot of the parsed source and borrows the underlying
// tree-sitter tree for field access and native error detection.
type ParseTree struct {
	language       Language
	rootNode       *ParseNode
	source         []byte
	metadata       ParseMetadata
	createdAt      time.Time
	isCleanedUp    bool
	mu             sync.RWMutex
	treeSitterTree *tree_sitter.Tree
}

// ParseNode represents a node in the parse tree. Children are ordered by
// source position and include anonymous token nodes such as punctuation.
type ParseNode struct {
	Type      string
	StartByte uint32
	EndByte   uint32
	StartPos  Position
	EndPos    Position
	Children  []*ParseNode
	tsNode    *tree_sitter.Node
}

// Position represents a row/column position in source code.
type Position struct {
	Row    uint32
	Column uint32
}

// ParseMetadata contains metadata about the parse operation.
type ParseMetadata struct {
	ParseDuration     time.Duration
	TreeSitterVersion string
	GrammarVersion    string
	NodeCount         int
	MaxDepth          int
	ErrorCount        int
}

// NewParseTree creates a new ParseTree value object with validation.
func NewParseTree(
	ctx context.Context,
	language Language,
	rootNode *ParseNode,
	source []byte,
	metadata ParseMetadata,
) (*ParseTree, error) {
	if rootNode == nil {
		slogger.Error(ctx, "Failed to create ParseTree: root node is nil", slogger.Fields{
			"language":      language.Name(),
			"source_length": len(source),
		})
		return nil, errors.New("root node cannot be nil")
	}

	if len(source) == 0 {
		slogger.Error(ctx, "Failed to create ParseTree: empty source code", slogger.Fields{
			"language": language.Name(),
		})
		return nil, errors.New("source code cannot be empty")
	}

	if int64(rootNode.EndByte) > int64(len(source)) {
		slogger.Error(ctx, "Failed to create ParseTree: root node end byte exceeds source length", slogger.Fields{
			"language":      language.Name(),
			"source_length": len(source),
			"root_end_byte": rootNode.EndByte,
		})
		return nil, errors.New("root node end byte exceeds source length")
	}

	pt := &ParseTree{
		language:    language,
		rootNode:    rootNode,
		source:      source,
		metadata:    metadata,
		createdAt:   time.Now(),
		isCleanedUp: false,
	}

	slogger.Debug(ctx, "ParseTree created", slogger.Fields{
		"language":       language.Name(),
		"node_count":     metadata.NodeCount,
		"max_depth":      metadata.MaxDepth,
		"source_length":  len(source),
		"parse_duration": metadata.ParseDuration.String(),
	})

	return pt, nil
}

// NewParseMetadata creates a new ParseMetadata value object.
func NewParseMetadata(duration time.Duration, treeSitterVersion, grammarVersion string) (ParseMetadata, error) {
	if duration < 0 {
		return ParseMetadata{}, errors.New("parse duration cannot be negative")
	}

	return ParseMetadata{
		ParseDuration:     duration,
		TreeSitterVersion: treeSitterVersion,
		GrammarVersion:    grammarVersion,
		NodeCount:         0,
		MaxDepth:          0,
	}, nil
}

// SetTreeSitterTree sets the tree-sitter tree reference for native error
// detection and cleanup.
func (pt *ParseTree) SetTreeSitterTree(tree *tree_sitter.Tree) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.treeSitterTree = tree
}

// Language returns the language of the parse tree.
func (pt *ParseTree) Language() Language {
	return pt.language
}

// RootNode returns the root node of the parse tree.
func (pt *ParseTree) RootNode() *ParseNode {
	return pt.rootNode
}

// Source returns the source code of the parse tree.
func (pt *ParseTree) Source() []byte {
	return pt.source
}

// Metadata returns the metadata of the parse tree.
func (pt *ParseTree) Metadata() ParseMetadata {
	return pt.metadata
}

// CreatedAt returns when the parse tree was created.
func (pt *ParseTree) CreatedAt() time.Time {
	return pt.createdAt
}

// IsCleanedUp returns whether the parse tree has been cleaned up.
func (pt *ParseTree) IsCleanedUp() bool {
	return pt.isCleanedUp
}

// GetNodesByType returns all nodes of a specific type in document order.
func (pt *ParseTree) GetNodesByType(nodeType string) []*ParseNode {
	if pt.isCleanedUp {
		return []*ParseNode{}
	}

	var result []*ParseNode
	pt.collectNodesByType(pt.rootNode, nodeType, &result)
	return result
}

func (pt *ParseTree) collectNodesByType(node *ParseNode, nodeType string, result *[]*ParseNode) {
	if node == nil {
		return
	}

	if node.Type == nodeType {
		*result = append(*result, node)
	}

	for _, child := range node.Children {
		pt.collectNodesByType(child, nodeType, result)
	}
}

// GetParentNode returns the direct parent of the given node, or nil when the
// node is the root or does not belong to this tree. Lookup descends only into
// children whose span contains the target, so cost is bounded by tree depth.
func (pt *ParseTree) GetParentNode(target *ParseNode) *ParseNode {
	if pt.isCleanedUp || target == nil || pt.rootNode == nil || target == pt.rootNode {
		return nil
	}
	return findParentNode(pt.rootNode, target)
}

func findParentNode(current, target *ParseNode) *ParseNode {
	for _, child := range current.Children {
		if child == nil {
			continue
		}
		if child == target {
			return current
		}
		if child.StartByte <= target.StartByte && target.EndByte <= child.EndByte {
			if parent := findParentNode(child, target); parent != nil {
				return parent
			}
		}
	}
	return nil
}

// SanitizeContent removes null bytes (0x00) from content to ensure
// PostgreSQL UTF-8 compatibility. Null bytes may appear in binary files
// mistaken for source; everything else is preserved as-is.
func SanitizeContent(content string) string {
	if !strings.Contains(content, "\x00") {
		return content
	}
	return strings.ReplaceAll(content, "\x00", "")
}

// GetNodeText returns the text content of a node with null byte sanitization.
func (pt *ParseTree) GetNodeText(node *ParseNode) string {
	if pt.isCleanedUp || node == nil {
		return ""
	}

	if tsNode := node.TreeSitterNode(); tsNode != nil && !tsNode.IsNull() {
		return SanitizeContent(tsNode.Content(pt.source))
	}

	if int64(node.EndByte) > int64(len(pt.source)) || node.StartByte > node.EndByte {
		return ""
	}

	return SanitizeContent(string(pt.source[node.StartByte:node.EndByte]))
}

// GetTreeDepth returns the maximum depth of the parse tree.
func (pt *ParseTree) GetTreeDepth() int {
	if pt.isCleanedUp {
		return 0
	}
	return pt.calculateDepth(pt.rootNode, 1)
}

func (pt *ParseTree) calculateDepth(node *ParseNode, currentDepth int) int {
	if node == nil {
		return currentDepth - 1
	}

	maxDepth := currentDepth
	for _, child := range node.Children {
		childDepth := pt.calculateDepth(child, currentDepth+1)
		if childDepth > maxDepth {
			maxDepth = childDepth
		}
	}

	return maxDepth
}

// GetTotalNodeCount returns the total number of nodes in the tree.
func (pt *ParseTree) GetTotalNodeCount() int {
	if pt.isCleanedUp {
		return 0
	}
	return pt.countNodes(pt.rootNode)
}

func (pt *ParseTree) countNodes(node *ParseNode) int {
	if node == nil {
		return 0
	}

	count := 1
	for _, child := range node.Children {
		count += pt.countNodes(child)
	}

	return count
}

// HasSyntaxErrors checks whether the parse tree contains syntax errors,
// preferring tree-sitter's native error detection when available.
func (pt *ParseTree) HasSyntaxErrors() (bool, error) {
	if pt.isCleanedUp {
		return false, errors.New("parse tree has been cleaned up")
	}

	if pt.treeSitterTree != nil {
		rootTSNode := pt.treeSitterTree.RootNode()
		if !rootTSNode.IsNull() {
			return rootTSNode.HasError(), nil
		}
	}

	return pt.hasErrorNodes(pt.rootNode), nil
}

func (pt *ParseTree) hasErrorNodes(node *ParseNode) bool {
	if node == nil {
		return false
	}

	if tsNode := node.TreeSitterNode(); tsNode != nil && !tsNode.IsNull() {
		if tsNode.HasError() || tsNode.IsError() || tsNode.IsMissing() {
			return true
		}
	} else if node.Type == "ERROR" || node.Type == "MISSING" {
		return true
	}

	for _, child := range node.Children {
		if pt.hasErrorNodes(child) {
			return true
		}
	}

	return false
}

// Cleanup releases the underlying tree-sitter resources. The tree must not
// be queried afterwards; query methods return empty results once cleaned up.
func (pt *ParseTree) Cleanup(ctx context.Context) error {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if pt.isCleanedUp {
		return nil
	}

	slogger.Debug(ctx, "Cleaning up ParseTree resources", slogger.Fields{
		"language":   pt.language.Name(),
		"node_count": pt.metadata.NodeCount,
	})

	if pt.treeSitterTree != nil {
		pt.treeSitterTree.Close()
		pt.treeSitterTree = nil
	}

	pt.isCleanedUp = true
	pt.rootNode = nil
	pt.source = nil

	return nil
}

// NewParseNodeWithTreeSitter creates a new ParseNode carrying a tree-sitter
// node reference for field and content access.
func NewParseNodeWithTreeSitter(
	nodeType string,
	startByte, endByte uint32,
	startPos, endPos Position,
	children []*ParseNode,
	tsNode tree_sitter.Node,
) (*ParseNode, error) {
	return &ParseNode{
		Type:      nodeType,
		StartByte: startByte,
		EndByte:   endByte,
		StartPos:  startPos,
		EndPos:    endPos,
		Children:  children,
		tsNode:    &tsNode,
	}, nil
}

// HasTreeSitterNode returns true if this ParseNode wraps a tree-sitter node.
func (pn *ParseNode) HasTreeSitterNode() bool {
	return pn != nil && pn.tsNode != nil
}

// TreeSitterNode returns the tree-sitter node reference if available.
func (pn *ParseNode) TreeSitterNode() *tree_sitter.Node {
	if pn == nil || pn.tsNode == nil {
		return nil
	}
	return pn.tsNode
}

// IsErrorNode checks if a node represents a parse error.
func (pn *ParseNode) IsErrorNode() bool {
	return pn != nil && pn.Type == "ERROR"
}

// ChildByFieldName returns a child node by its grammar field name.
// Field access requires the tree-sitter node reference; without it there is
// no reliable way to recover grammar fields and nil is returned.
func (pn *ParseNode) ChildByFieldName(fieldName string) *ParseNode {
	if pn == nil || fieldName == "" || pn.tsNode == nil {
		return nil
	}

	childTSNode := pn.tsNode.ChildByFieldName(fieldName)
	if childTSNode.IsNull() {
		return nil
	}

	childStartByte := childTSNode.StartByte()
	childEndByte := childTSNode.EndByte()
	if childStartByte > uint(MaxUint32) || childEndByte > uint(MaxUint32) {
		return nil
	}

	// ParseNode wraps tree-sitter nodes, so the matching child is found by span.
	for _, child := range pn.Children {
		if child != nil && child.StartByte == uint32(childStartByte) &&
			child.EndByte == uint32(childEndByte) {
			return child
		}
	}

	return nil
}
