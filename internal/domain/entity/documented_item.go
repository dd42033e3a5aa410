package entity

import (
	"time"

	"codemeta/internal/domain/valueobject"

	"github.com/google/uuid"
)

// DocumentedItem represents a source declaration together with the metadata
// extracted for it: its attributes in lexical order and the documentation
// text reconstructed from doc comments and doc attributes.
type DocumentedItem struct {
	id            uuid.UUID
	filePath      string
	language      valueobject.Language
	kind          string
	name          string
	startByte     uint32
	endByte       uint32
	documentation *string
	attributes    []valueobject.MetaItem
	createdAt     time.Time
	updatedAt     time.Time
}

// NewDocumentedItem creates a new DocumentedItem entity.
func NewDocumentedItem(
	filePath string,
	language valueobject.Language,
	kind string,
	name string,
	startByte, endByte uint32,
	documentation *string,
	attributes []valueobject.MetaItem,
) (*DocumentedItem, error) {
	if filePath == "" {
		return nil, NewDomainError("file path cannot be empty", "EMPTY_FILE_PATH")
	}
	if kind == "" {
		return nil, NewDomainError("item kind cannot be empty", "EMPTY_ITEM_KIND")
	}
	if endByte < startByte {
		return nil, NewDomainError("item span end precedes its start", "INVALID_SPAN")
	}

	now := time.Now()
	return &DocumentedItem{
		id:            uuid.New(),
		filePath:      filePath,
		language:      language,
		kind:          kind,
		name:          name,
		startByte:     startByte,
		endByte:       endByte,
		documentation: documentation,
		attributes:    copyAttributes(attributes),
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// RestoreDocumentedItem creates a DocumentedItem entity from stored data.
func RestoreDocumentedItem(
	id uuid.UUID,
	filePath string,
	language valueobject.Language,
	kind string,
	name string,
	startByte, endByte uint32,
	documentation *string,
	attributes []valueobject.MetaItem,
	createdAt time.Time,
	updatedAt time.Time,
) *DocumentedItem {
	return &DocumentedItem{
		id:            id,
		filePath:      filePath,
		language:      language,
		kind:          kind,
		name:          name,
		startByte:     startByte,
		endByte:       endByte,
		documentation: documentation,
		attributes:    copyAttributes(attributes),
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func copyAttributes(attributes []valueobject.MetaItem) []valueobject.MetaItem {
	if len(attributes) == 0 {
		return nil
	}
	copied := make([]valueobject.MetaItem, len(attributes))
	copy(copied, attributes)
	return copied
}

// ID returns the item ID.
func (d *DocumentedItem) ID() uuid.UUID {
	return d.id
}

// FilePath returns the path of the source file the item was extracted from.
func (d *DocumentedItem) FilePath() string {
	return d.filePath
}

// Language returns the source language of the item.
func (d *DocumentedItem) Language() valueobject.Language {
	return d.language
}

// Kind returns the syntactic kind of the declaration, such as function_item.
func (d *DocumentedItem) Kind() string {
	return d.kind
}

// Name returns the declared name, which may be empty for anonymous items.
func (d *DocumentedItem) Name() string {
	return d.name
}

// StartByte returns the byte offset where the declaration begins.
func (d *DocumentedItem) StartByte() uint32 {
	return d.startByte
}

// EndByte returns the byte offset just past the declaration.
func (d *DocumentedItem) EndByte() uint32 {
	return d.endByte
}

// Documentation returns the reconstructed documentation text, or nil when the
// item has none. An empty string is a real, empty documentation block and is
// distinct from nil.
func (d *DocumentedItem) Documentation() *string {
	return d.documentation
}

// IsDocumented returns true when the item carries documentation text.
func (d *DocumentedItem) IsDocumented() bool {
	return d.documentation != nil
}

// Attributes returns a copy of the item's attributes in lexical order.
func (d *DocumentedItem) Attributes() []valueobject.MetaItem {
	return copyAttributes(d.attributes)
}

// AttributeQuery returns a query snapshot over the item's attributes.
func (d *DocumentedItem) AttributeQuery() valueobject.AttributeQuery {
	return valueobject.NewAttributeQuery(d.attributes)
}

// CreatedAt returns the creation timestamp.
func (d *DocumentedItem) CreatedAt() time.Time {
	return d.createdAt
}

// UpdatedAt returns the last update timestamp.
func (d *DocumentedItem) UpdatedAt() time.Time {
	return d.updatedAt
}

// UpdateDocumentation replaces the documentation text.
func (d *DocumentedItem) UpdateDocumentation(documentation *string) {
	d.documentation = documentation
	d.updatedAt = time.Now()
}

// Equal compares two DocumentedItem entities.
func (d *DocumentedItem) Equal(other *DocumentedItem) bool {
	if other == nil {
		return false
	}
	return d.id == other.id
}
