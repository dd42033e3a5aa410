package rustparser

import (
	"strings"

	"codemeta/internal/domain/valueobject"
)

// documentationFor reconstructs the documentation text of a declaration by
// merging doc comments and doc attributes in lexical order: outer material
// first, then inner material from the body block, one line per contributing
// element, newline-joined. Owners without documentation sources yield the
// empty string.
func documentationFor(tree *valueobject.ParseTree, owner *valueobject.ParseNode) string {
	lines := outerDocLines(tree, owner)
	lines = append(lines, innerDocLines(tree, owner)...)
	return strings.Join(lines, "\n")
}

// outerDocLines walks the owner's leading siblings in source order and
// collects one line per outer doc comment and per doc attribute. Ordinary
// comments and whitespace contribute nothing but do not end the walk; block
// doc comments are unsupported and skipped the same way.
func outerDocLines(tree *valueobject.ParseTree, owner *valueobject.ParseNode) []string {
	var lines []string
	for _, node := range leadingOuterRun(tree, owner) {
		if node == nil {
			continue
		}
		switch node.Type {
		case "attribute_item":
			if text, ok := docAttributeText(tree, node); ok {
				lines = append(lines, text)
			}
		case "line_comment":
			if text, ok := outerDocCommentText(tree.GetNodeText(node)); ok {
				lines = append(lines, text)
			}
		}
	}
	return lines
}

// innerDocLines walks the leading children of the owner's body block and
// collects one line per inner doc comment and per inner doc attribute.
func innerDocLines(tree *valueobject.ParseTree, owner *valueobject.ParseNode) []string {
	var lines []string
	for _, node := range leadingInnerRun(owner) {
		if node == nil {
			continue
		}
		switch node.Type {
		case "inner_attribute_item":
			if text, ok := docAttributeText(tree, node); ok {
				lines = append(lines, text)
			}
		case "line_comment":
			if text, ok := innerDocCommentText(tree.GetNodeText(node)); ok {
				lines = append(lines, text)
			}
		}
	}
	return lines
}

// docAttributeText returns the string value of a doc attribute such as
// #[doc = "..."]. An attribute with another key, or a doc key without a
// resolvable string value, contributes nothing.
func docAttributeText(tree *valueobject.ParseTree, attrItem *valueobject.ParseNode) (string, bool) {
	item, ok := attributeMetaItem(tree, attrItem)
	if !ok || item.Key() != "doc" {
		return "", false
	}
	return item.StringValue()
}

// outerDocCommentText strips the /// marker of an outer doc comment and
// trims the remainder. Comments with four or more slashes are ordinary
// comments, not documentation.
func outerDocCommentText(text string) (string, bool) {
	if !strings.HasPrefix(text, "///") || strings.HasPrefix(text, "////") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(text, "///")), true
}

// innerDocCommentText strips the //! marker of an inner doc comment and
// trims the remainder.
func innerDocCommentText(text string) (string, bool) {
	if !strings.HasPrefix(text, "//!") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(text, "//!")), true
}
