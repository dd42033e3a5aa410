package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codemeta/internal/domain/entity"
	"codemeta/internal/domain/valueobject"
)

// Validation must reject bad input before any pool access, so these tests run
// against a repository with no live connection.
func TestDocumentedItemRepository_InputValidation(t *testing.T) {
	repo := NewPostgreSQLDocumentedItemRepository(nil)
	ctx := context.Background()

	t.Run("save nil item", func(t *testing.T) {
		err := repo.Save(ctx, nil)
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("save batch empty slice is a no-op", func(t *testing.T) {
		require.NoError(t, repo.SaveBatch(ctx, nil))
	})

	t.Run("save batch rejects nil element", func(t *testing.T) {
		err := repo.SaveBatch(ctx, []*entity.DocumentedItem{nil})
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("delete empty file path", func(t *testing.T) {
		deleted, err := repo.DeleteByFilePath(ctx, "")
		require.ErrorIs(t, err, ErrInvalidArgument)
		assert.Zero(t, deleted)
	})

	t.Run("find empty file path", func(t *testing.T) {
		items, err := repo.FindByFilePath(ctx, "")
		require.ErrorIs(t, err, ErrInvalidArgument)
		assert.Nil(t, items)
	})

	t.Run("count empty language", func(t *testing.T) {
		count, err := repo.CountByLanguage(ctx, "")
		require.ErrorIs(t, err, ErrInvalidArgument)
		assert.Zero(t, count)
	})
}

func TestAttributeCodec_RoundTrip(t *testing.T) {
	marker, err := valueobject.NewMetaItem("inline", false, false)
	require.NoError(t, err)

	derive, err := valueobject.NewMetaItem("derive", false, true)
	require.NoError(t, err)

	doc, err := valueobject.NewMetaItem("doc", true, false)
	require.NoError(t, err)
	doc, err = doc.WithStringValue("Builds the parser.")
	require.NoError(t, err)

	since, err := valueobject.NewMetaItem("since", true, false)
	require.NoError(t, err)

	encoded, err := encodeAttributes([]valueobject.MetaItem{marker, derive, doc, since})
	require.NoError(t, err)

	decoded, err := decodeAttributes(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 4)

	assert.True(t, decoded[0].Equal(marker))
	assert.True(t, decoded[1].Equal(derive))
	assert.True(t, decoded[2].Equal(doc))
	assert.True(t, decoded[3].Equal(since))

	value, ok := decoded[2].StringValue()
	require.True(t, ok)
	assert.Equal(t, "Builds the parser.", value)

	_, ok = decoded[3].StringValue()
	assert.False(t, ok, "unresolved value attribute must stay unresolved")
}

func TestAttributeCodec_EmptyInputs(t *testing.T) {
	encoded, err := encodeAttributes(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(encoded))

	decoded, err := decodeAttributes(nil)
	require.NoError(t, err)
	assert.Nil(t, decoded)

	decoded, err = decodeAttributes([]byte("[]"))
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestAttributeCodec_RejectsMalformedData(t *testing.T) {
	_, err := decodeAttributes([]byte("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode attributes")
}

func TestRestoreLanguage(t *testing.T) {
	rust, err := restoreLanguage(valueobject.LanguageRust)
	require.NoError(t, err)
	assert.Equal(t, valueobject.LanguageRust, rust.Name())
	assert.True(t, rust.HasExtension(".rs"))

	other, err := restoreLanguage("Go")
	require.NoError(t, err)
	assert.Equal(t, "Go", other.Name())

	_, err = restoreLanguage("")
	require.Error(t, err)
}
