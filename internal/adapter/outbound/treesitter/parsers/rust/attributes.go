package rustparser

import (
	"codemeta/internal/domain/valueobject"
)

// outerAttributeOwners lists node kinds that carry outer attributes and doc
// comments as leading siblings inside their parent.
//
//nolint:gochecknoglobals // immutable lookup table shared by all queries
var outerAttributeOwners = map[string]bool{
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
	"macro_invocation":         true,
	"use_declaration":          true,
	"extern_crate_declaration": true,
	"foreign_mod_item":         true,
	"field_declaration":        true,
	"let_declaration":          true,
	"parameter":                true,
}

// innerAttributeOwners lists node kinds whose body block accepts inner
// attributes and inner doc comments as leading children. Trait bodies do not
// accept inner attributes.
//
//nolint:gochecknoglobals // immutable lookup table shared by all queries
var innerAttributeOwners = map[string]bool{
	"source_file":      true,
	"function_item":    true,
	"mod_item":         true,
	"impl_item":        true,
	"foreign_mod_item": true,
}

// attributePathKinds lists node kinds that can open an attribute path, whose
// text becomes the meta-item key.
//
//nolint:gochecknoglobals // immutable lookup table shared by all queries
var attributePathKinds = map[string]bool{
	"identifier":        true,
	"scoped_identifier": true,
	"crate":             true,
	"super":             true,
	"self":              true,
	"metavariable":      true,
}

// hasOuterCapability reports whether the node kind carries outer attributes.
func hasOuterCapability(kind string) bool {
	return outerAttributeOwners[kind]
}

// hasInnerCapability reports whether the node kind carries inner attributes.
func hasInnerCapability(kind string) bool {
	return innerAttributeOwners[kind]
}

// isLeadingRunMember reports whether a node kind belongs to the contiguous
// leading material of a declaration. Comments never end the run; they are
// skipped by consumers that do not care about them.
func isLeadingRunMember(kind string) bool {
	return kind == "attribute_item" || kind == "line_comment" || kind == "block_comment"
}

// isInnerRunMember reports the same for the leading children of a body block,
// where attributes use the inner form.
func isInnerRunMember(kind string) bool {
	return kind == "inner_attribute_item" || kind == "line_comment" || kind == "block_comment"
}

// leadingOuterRun returns the contiguous run of attribute and comment
// siblings immediately preceding the owner, in source order. The run ends,
// walking backwards, at the first sibling that is none of attribute, comment
// or whitespace; whitespace never surfaces as a tree-sitter node, so only the
// first two matter here.
func leadingOuterRun(tree *valueobject.ParseTree, owner *valueobject.ParseNode) []*valueobject.ParseNode {
	if tree == nil || owner == nil || !hasOuterCapability(owner.Type) {
		return nil
	}

	parent := tree.GetParentNode(owner)
	if parent == nil {
		return nil
	}

	idx := childIndex(parent, owner)
	if idx <= 0 {
		return nil
	}

	start := idx
	for start > 0 && parent.Children[start-1] != nil && isLeadingRunMember(parent.Children[start-1].Type) {
		start--
	}

	return parent.Children[start:idx]
}

// innerAttributeBody resolves the block whose leading children hold the
// owner's inner attributes, or nil when the owner kind has no such block. A
// source file is its own body.
func innerAttributeBody(owner *valueobject.ParseNode) *valueobject.ParseNode {
	if owner == nil || !hasInnerCapability(owner.Type) {
		return nil
	}
	if owner.Type == "source_file" {
		return owner
	}

	if body := owner.ChildByFieldName("body"); body != nil {
		return body
	}
	for _, child := range owner.Children {
		if child != nil && (child.Type == "block" || child.Type == "declaration_list") {
			return child
		}
	}
	return nil
}

// leadingInnerRun returns the run of inner attribute and comment children at
// the start of the owner's body block, in source order. The opening delimiter
// is skipped; the run ends at the first child that is neither an inner
// attribute nor a comment.
func leadingInnerRun(owner *valueobject.ParseNode) []*valueobject.ParseNode {
	body := innerAttributeBody(owner)
	if body == nil {
		return nil
	}

	var run []*valueobject.ParseNode
	for i, child := range body.Children {
		if child == nil {
			continue
		}
		if i == 0 && child.Type == "{" {
			continue
		}
		if !isInnerRunMember(child.Type) {
			break
		}
		run = append(run, child)
	}
	return run
}

// collectOuterAttributes returns the owner's outer attribute nodes in source
// order. Owners without outer capability contribute nothing.
func collectOuterAttributes(tree *valueobject.ParseTree, owner *valueobject.ParseNode) []*valueobject.ParseNode {
	var attrs []*valueobject.ParseNode
	for _, node := range leadingOuterRun(tree, owner) {
		if node != nil && node.Type == "attribute_item" {
			attrs = append(attrs, node)
		}
	}
	return attrs
}

// collectInnerAttributes returns the owner's inner attribute nodes in source
// order. Owners without inner capability contribute nothing.
func collectInnerAttributes(owner *valueobject.ParseNode) []*valueobject.ParseNode {
	var attrs []*valueobject.ParseNode
	for _, node := range leadingInnerRun(owner) {
		if node != nil && node.Type == "inner_attribute_item" {
			attrs = append(attrs, node)
		}
	}
	return attrs
}

// collectAllAttributes returns the owner's outer attributes followed by its
// inner attributes, each half in source order.
func collectAllAttributes(tree *valueobject.ParseTree, owner *valueobject.ParseNode) []*valueobject.ParseNode {
	attrs := collectOuterAttributes(tree, owner)
	return append(attrs, collectInnerAttributes(owner)...)
}

// attributeMetaItem reads the meta-item inside an attribute_item or
// inner_attribute_item node: the key path, whether a value is assigned with
// an equals sign, whether a parenthesized argument list follows, and the
// decoded string value when one is present. ok is false when the node holds
// no meta-item at all.
func attributeMetaItem(
	tree *valueobject.ParseTree,
	attrItem *valueobject.ParseNode,
) (valueobject.MetaItem, bool) {
	if tree == nil || attrItem == nil {
		return valueobject.MetaItem{}, false
	}

	var attr *valueobject.ParseNode
	for _, child := range attrItem.Children {
		if child != nil && child.Type == "attribute" {
			attr = child
			break
		}
	}
	if attr == nil {
		return valueobject.MetaItem{}, false
	}

	var (
		key        string
		hasEquals  bool
		hasArgList bool
		valueNode  *valueobject.ParseNode
	)

	for i, child := range attr.Children {
		if child == nil {
			continue
		}
		switch {
		case key == "" && attributePathKinds[child.Type]:
			key = tree.GetNodeText(child)
		case child.Type == "=":
			hasEquals = true
			if i+1 < len(attr.Children) {
				valueNode = attr.Children[i+1]
			}
		case child.Type == "token_tree":
			hasArgList = true
		}
	}

	if key == "" {
		return valueobject.MetaItem{}, false
	}

	item, err := valueobject.NewMetaItem(key, hasEquals, hasArgList)
	if err != nil {
		return valueobject.MetaItem{}, false
	}

	if hasEquals && valueNode != nil {
		if value, ok := resolveStringLiteral(tree, valueNode); ok {
			if withValue, err := item.WithStringValue(value); err == nil {
				item = withValue
			}
		}
	}

	return item, true
}

// queryAttributesFor builds an immutable attribute query snapshot over the
// owner's full ordered attribute list.
func queryAttributesFor(tree *valueobject.ParseTree, owner *valueobject.ParseNode) valueobject.AttributeQuery {
	attrNodes := collectAllAttributes(tree, owner)
	items := make([]valueobject.MetaItem, 0, len(attrNodes))
	for _, node := range attrNodes {
		if item, ok := attributeMetaItem(tree, node); ok {
			items = append(items, item)
		}
	}
	return valueobject.NewAttributeQuery(items)
}

// childIndex returns the position of child among parent's children, matched
// by identity, or -1 when absent.
func childIndex(parent, child *valueobject.ParseNode) int {
	for i, c := range parent.Children {
		if c == child {
			return i
		}
	}
	return -1
}
