package treesitter

import (
	"codemeta/internal/domain/valueobject"

	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// TreeConversionStats accumulates structural counters while walking a native
// tree-sitter tree.
type TreeConversionStats struct {
	TotalNodes   int
	ErrorNodes   int
	MissingNodes int
	MaxDepth     int
}

// ConvertNativeNode converts a native tree-sitter node into the adapter
// representation recursively, accumulating statistics along the way. Language
// parsers use this to build their parse results.
func ConvertNativeNode(node tree_sitter.Node, depth int, stats *TreeConversionStats) *ParseNode {
	if node.IsNull() {
		return nil
	}

	parseNode := &ParseNode{
		Type:      node.Type(),
		StartByte: safeUintToUint32(node.StartByte()),
		EndByte:   safeUintToUint32(node.EndByte()),
		StartPoint: Point{
			Row:    safeUintToUint32(node.StartPoint().Row),
			Column: safeUintToUint32(node.StartPoint().Column),
		},
		EndPoint: Point{
			Row:    safeUintToUint32(node.EndPoint().Row),
			Column: safeUintToUint32(node.EndPoint().Column),
		},
		Children:  []*ParseNode{},
		IsNamed:   node.IsNamed(),
		IsError:   node.IsError(),
		IsMissing: node.IsMissing(),
	}

	stats.TotalNodes++
	if parseNode.IsError {
		stats.ErrorNodes++
	}
	if parseNode.IsMissing {
		stats.MissingNodes++
	}
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	childCount := int(node.ChildCount())
	for i := range childCount {
		child := ConvertNativeNode(node.Child(uint32(i)), depth+1, stats)
		if child != nil {
			parseNode.Children = append(parseNode.Children, child)
		}
	}

	return parseNode
}

// convertNativeNodeToDomain converts a native tree-sitter node into a domain
// ParseNode recursively, keeping a reference to the native node so that
// field-based child lookups stay available downstream. Returns the converted
// node together with the subtree node count and maximum depth.
func convertNativeNodeToDomain(node tree_sitter.Node, depth int) (*valueobject.ParseNode, int, int) {
	if node.IsNull() {
		return nil, 0, depth
	}

	nodeCount := 1
	maxDepth := depth

	children := []*valueobject.ParseNode{}
	childCount := int(node.ChildCount())
	for i := range childCount {
		childNode, childNodes, childMax := convertNativeNodeToDomain(node.Child(uint32(i)), depth+1)
		if childNode != nil {
			children = append(children, childNode)
			nodeCount += childNodes
			if childMax > maxDepth {
				maxDepth = childMax
			}
		}
	}

	parseNode, err := valueobject.NewParseNodeWithTreeSitter(
		node.Type(),
		safeUintToUint32(node.StartByte()),
		safeUintToUint32(node.EndByte()),
		valueobject.Position{
			Row:    safeUintToUint32(node.StartPoint().Row),
			Column: safeUintToUint32(node.StartPoint().Column),
		},
		valueobject.Position{
			Row:    safeUintToUint32(node.EndPoint().Row),
			Column: safeUintToUint32(node.EndPoint().Column),
		},
		children,
		node,
	)
	if err != nil {
		return nil, 0, depth
	}

	return parseNode, nodeCount, maxDepth
}

// safeUintToUint32 safely converts uint to uint32 with bounds checking.
func safeUintToUint32(val uint) uint32 {
	if val > uint(^uint32(0)) {
		return ^uint32(0) // Return max uint32 if overflow
	}
	return uint32(val)
}
