package valueobject

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFunctionTree constructs a hand-made tree for `fn main() {}` without a
// native tree-sitter backing, exercising the byte-slice fallbacks.
func buildFunctionTree(t *testing.T) (*ParseTree, []byte) {
	t.Helper()

	source := []byte("fn main() {}")
	block := &ParseNode{Type: "block", StartByte: 10, EndByte: 12}
	fn := &ParseNode{
		Type:      "function_item",
		StartByte: 0,
		EndByte:   12,
		Children: []*ParseNode{
			{Type: "fn", StartByte: 0, EndByte: 2},
			{Type: "identifier", StartByte: 3, EndByte: 7},
			{Type: "parameters", StartByte: 7, EndByte: 9},
			block,
		},
	}
	root := &ParseNode{
		Type:      "source_file",
		StartByte: 0,
		EndByte:   12,
		Children:  []*ParseNode{fn},
	}

	metadata, err := NewParseMetadata(5*time.Millisecond, "0.25.0", "1.0.0")
	require.NoError(t, err)

	tree, err := NewParseTree(context.Background(), Rust, root, source, metadata)
	require.NoError(t, err)
	return tree, source
}

func TestNewParseTree(t *testing.T) {
	validRoot := &ParseNode{Type: "source_file", StartByte: 0, EndByte: 2}

	tests := []struct {
		name     string
		rootNode *ParseNode
		source   []byte
		wantErr  string
	}{
		{
			name:     "valid tree",
			rootNode: validRoot,
			source:   []byte("fn"),
		},
		{
			name:     "nil root node",
			rootNode: nil,
			source:   []byte("fn"),
			wantErr:  "root node cannot be nil",
		},
		{
			name:     "empty source",
			rootNode: validRoot,
			source:   nil,
			wantErr:  "source code cannot be empty",
		},
		{
			name:     "root span exceeds source",
			rootNode: &ParseNode{Type: "source_file", StartByte: 0, EndByte: 99},
			source:   []byte("fn"),
			wantErr:  "root node end byte exceeds source length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := NewParseTree(context.Background(), Rust, tt.rootNode, tt.source, ParseMetadata{})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, Rust.Name(), tree.Language().Name())
			assert.Same(t, tt.rootNode, tree.RootNode())
			assert.Equal(t, tt.source, tree.Source())
			assert.False(t, tree.IsCleanedUp())
			assert.WithinDuration(t, time.Now(), tree.CreatedAt(), time.Minute)
		})
	}
}

func TestNewParseMetadata(t *testing.T) {
	metadata, err := NewParseMetadata(10*time.Millisecond, "0.25.0", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, metadata.ParseDuration)
	assert.Equal(t, "0.25.0", metadata.TreeSitterVersion)
	assert.Equal(t, "1.0.0", metadata.GrammarVersion)

	_, err = NewParseMetadata(-time.Millisecond, "0.25.0", "1.0.0")
	require.Error(t, err)
}

func TestGetNodesByType(t *testing.T) {
	tree, _ := buildFunctionTree(t)

	functions := tree.GetNodesByType("function_item")
	require.Len(t, functions, 1)
	assert.Equal(t, "function_item", functions[0].Type)

	identifiers := tree.GetNodesByType("identifier")
	require.Len(t, identifiers, 1)
	assert.Equal(t, uint32(3), identifiers[0].StartByte)

	assert.Empty(t, tree.GetNodesByType("struct_item"))
}

func TestGetNodeText(t *testing.T) {
	tree, _ := buildFunctionTree(t)

	identifier := tree.GetNodesByType("identifier")[0]
	assert.Equal(t, "main", tree.GetNodeText(identifier))

	root := tree.RootNode()
	assert.Equal(t, "fn main() {}", tree.GetNodeText(root))

	assert.Empty(t, tree.GetNodeText(nil))

	outOfBounds := &ParseNode{Type: "identifier", StartByte: 5, EndByte: 99}
	assert.Empty(t, tree.GetNodeText(outOfBounds))

	inverted := &ParseNode{Type: "identifier", StartByte: 7, EndByte: 3}
	assert.Empty(t, tree.GetNodeText(inverted))
}

func TestSanitizeContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "clean content untouched", content: "fn main() {}", want: "fn main() {}"},
		{name: "null bytes stripped", content: "fn\x00 main\x00()", want: "fn main()"},
		{name: "empty content", content: "", want: ""},
		{name: "only null bytes", content: "\x00\x00", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeContent(tt.content))
		})
	}
}

func TestGetTreeDepthAndNodeCount(t *testing.T) {
	tree, _ := buildFunctionTree(t)

	// source_file -> function_item -> tokens.
	assert.Equal(t, 3, tree.GetTreeDepth())
	assert.Equal(t, 6, tree.GetTotalNodeCount())
}

func TestHasSyntaxErrors(t *testing.T) {
	t.Run("clean tree", func(t *testing.T) {
		tree, _ := buildFunctionTree(t)
		hasErrors, err := tree.HasSyntaxErrors()
		require.NoError(t, err)
		assert.False(t, hasErrors)
	})

	t.Run("tree containing an ERROR node", func(t *testing.T) {
		root := &ParseNode{
			Type:      "source_file",
			StartByte: 0,
			EndByte:   5,
			Children: []*ParseNode{
				{Type: "ERROR", StartByte: 0, EndByte: 5},
			},
		}
		tree, err := NewParseTree(context.Background(), Rust, root, []byte("fn fn"), ParseMetadata{})
		require.NoError(t, err)

		hasErrors, err := tree.HasSyntaxErrors()
		require.NoError(t, err)
		assert.True(t, hasErrors)
	})

	t.Run("cleaned up tree refuses the query", func(t *testing.T) {
		tree, _ := buildFunctionTree(t)
		require.NoError(t, tree.Cleanup(context.Background()))

		_, err := tree.HasSyntaxErrors()
		require.Error(t, err)
	})
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	tree, _ := buildFunctionTree(t)

	require.NoError(t, tree.Cleanup(ctx))
	assert.True(t, tree.IsCleanedUp())

	// Queries degrade to empty results rather than panicking.
	assert.Empty(t, tree.GetNodesByType("function_item"))
	assert.Empty(t, tree.GetNodeText(&ParseNode{Type: "identifier", StartByte: 0, EndByte: 2}))
	assert.Zero(t, tree.GetTreeDepth())
	assert.Zero(t, tree.GetTotalNodeCount())

	// Cleanup is idempotent.
	require.NoError(t, tree.Cleanup(ctx))
}

func TestParseNodeIsErrorNode(t *testing.T) {
	assert.True(t, (&ParseNode{Type: "ERROR"}).IsErrorNode())
	assert.False(t, (&ParseNode{Type: "source_file"}).IsErrorNode())

	var nilNode *ParseNode
	assert.False(t, nilNode.IsErrorNode())
}

func TestParseNodeTreeSitterAccess(t *testing.T) {
	node := &ParseNode{Type: "function_item", StartByte: 0, EndByte: 12}

	assert.False(t, node.HasTreeSitterNode())
	assert.Nil(t, node.TreeSitterNode())

	// Field lookup needs the native node reference.
	assert.Nil(t, node.ChildByFieldName("body"))
	assert.Nil(t, node.ChildByFieldName(""))

	var nilNode *ParseNode
	assert.False(t, nilNode.HasTreeSitterNode())
	assert.Nil(t, nilNode.ChildByFieldName("body"))
}

func TestGetParentNode(t *testing.T) {
	tree, _ := buildFunctionTree(t)

	root := tree.RootNode()
	fn := tree.GetNodesByType("function_item")[0]
	block := tree.GetNodesByType("block")[0]
	identifier := tree.GetNodesByType("identifier")[0]

	assert.Nil(t, tree.GetParentNode(root))
	assert.Same(t, root, tree.GetParentNode(fn))
	assert.Same(t, fn, tree.GetParentNode(block))
	assert.Same(t, fn, tree.GetParentNode(identifier))

	// Matching is by identity, not by span.
	foreign := &ParseNode{Type: "block", StartByte: 10, EndByte: 12}
	assert.Nil(t, tree.GetParentNode(foreign))

	assert.Nil(t, tree.GetParentNode(nil))

	require.NoError(t, tree.Cleanup(context.Background()))
	assert.Nil(t, tree.GetParentNode(fn))
}
