package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMetaItem(t *testing.T, key string, hasEquals, hasArgList bool) MetaItem {
	t.Helper()
	item, err := NewMetaItem(key, hasEquals, hasArgList)
	require.NoError(t, err)
	return item
}

func mustMetaItemWithValue(t *testing.T, key, value string) MetaItem {
	t.Helper()
	item, err := NewMetaItem(key, true, false)
	require.NoError(t, err)
	item, err = item.WithStringValue(value)
	require.NoError(t, err)
	return item
}

func TestAttributeQueryHasAtomAttribute(t *testing.T) {
	tests := []struct {
		name  string
		items []MetaItem
		query string
		want  bool
	}{
		{
			name:  "empty snapshot",
			items: nil,
			query: "inline",
			want:  false,
		},
		{
			name: "bare marker matches",
			items: []MetaItem{
				mustMetaItem(t, "inline", false, false),
			},
			query: "inline",
			want:  true,
		},
		{
			name: "different key does not match",
			items: []MetaItem{
				mustMetaItem(t, "inline", false, false),
			},
			query: "deprecated",
			want:  false,
		},
		{
			name: "value assignment form does not match",
			items: []MetaItem{
				mustMetaItemWithValue(t, "deprecated", "use the new one"),
			},
			query: "deprecated",
			want:  false,
		},
		{
			name: "argument list form does not match",
			items: []MetaItem{
				mustMetaItem(t, "cfg", false, true),
			},
			query: "cfg",
			want:  false,
		},
		{
			name: "atom found among non-atoms with the same key",
			items: []MetaItem{
				mustMetaItem(t, "deprecated", false, true),
				mustMetaItem(t, "deprecated", false, false),
			},
			query: "deprecated",
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := NewAttributeQuery(tt.items)
			assert.Equal(t, tt.want, query.HasAtomAttribute(tt.query))
		})
	}
}

func TestAttributeQueryLookupStringValue(t *testing.T) {
	tests := []struct {
		name      string
		items     []MetaItem
		key       string
		wantValue string
		wantFound bool
	}{
		{
			name:      "no attributes",
			items:     nil,
			key:       "path",
			wantFound: false,
		},
		{
			name: "single match returns its value",
			items: []MetaItem{
				mustMetaItemWithValue(t, "path", "src/lib.rs"),
			},
			key:       "path",
			wantValue: "src/lib.rs",
			wantFound: true,
		},
		{
			name: "single match among unrelated keys",
			items: []MetaItem{
				mustMetaItem(t, "inline", false, false),
				mustMetaItemWithValue(t, "path", "src/lib.rs"),
				mustMetaItem(t, "cfg", false, true),
			},
			key:       "path",
			wantValue: "src/lib.rs",
			wantFound: true,
		},
		{
			name: "duplicate resolvable values yield nothing",
			items: []MetaItem{
				mustMetaItemWithValue(t, "path", "a.rs"),
				mustMetaItemWithValue(t, "path", "b.rs"),
			},
			key:       "path",
			wantFound: false,
		},
		{
			name: "same key without resolvable value is not a match",
			items: []MetaItem{
				mustMetaItem(t, "path", true, false),
				mustMetaItemWithValue(t, "path", "a.rs"),
			},
			key:       "path",
			wantValue: "a.rs",
			wantFound: true,
		},
		{
			name: "argument list form is not a match",
			items: []MetaItem{
				mustMetaItem(t, "path", false, true),
			},
			key:       "path",
			wantFound: false,
		},
		{
			name: "empty string value still counts as the unique match",
			items: []MetaItem{
				mustMetaItemWithValue(t, "doc", ""),
			},
			key:       "doc",
			wantValue: "",
			wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := NewAttributeQuery(tt.items)
			value, found := query.LookupStringValue(tt.key)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestAttributeQuerySnapshotIsolation(t *testing.T) {
	items := []MetaItem{
		mustMetaItem(t, "inline", false, false),
	}
	query := NewAttributeQuery(items)

	// Mutating the source slice after construction must not leak in.
	items[0] = mustMetaItem(t, "deprecated", false, false)
	assert.True(t, query.HasAtomAttribute("inline"))
	assert.False(t, query.HasAtomAttribute("deprecated"))

	// Mutating a returned copy must not reach the snapshot either.
	out := query.Items()
	require.Len(t, out, 1)
	out[0] = mustMetaItem(t, "deprecated", false, false)
	assert.True(t, query.HasAtomAttribute("inline"))
}

func TestAttributeQueryLen(t *testing.T) {
	assert.Equal(t, 0, NewAttributeQuery(nil).Len())

	query := NewAttributeQuery([]MetaItem{
		mustMetaItem(t, "inline", false, false),
		mustMetaItem(t, "cfg", false, true),
	})
	assert.Equal(t, 2, query.Len())
}
