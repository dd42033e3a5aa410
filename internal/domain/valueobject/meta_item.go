package valueobject

import (
	"errors"
	"fmt"
	"strings"
)

// MetaItem is a read view over the meta-item of one attribute: its key path,
// whether the attribute binds a value with `=`, whether it carries a
// parenthesized argument list, and the resolved string value when one exists.
// Invariant: a string value can only be present on an item with hasEquals set;
// the `=` form with a non-string right-hand side yields no value.
type MetaItem struct {
	key        string
	hasEquals  bool
	hasArgList bool
	value      string
	hasValue   bool
}

// NewMetaItem creates a MetaItem for an attribute key with its syntactic form.
func NewMetaItem(key string, hasEquals, hasArgList bool) (MetaItem, error) {
	normalizedKey := strings.TrimSpace(key)
	if normalizedKey == "" {
		return MetaItem{}, errors.New("meta item key cannot be empty")
	}

	return MetaItem{
		key:        normalizedKey,
		hasEquals:  hasEquals,
		hasArgList: hasArgList,
	}, nil
}

// WithStringValue returns a copy of the item carrying a resolved string value.
// It fails on items without the `=` form, preserving the invariant that only
// value-bound attributes can resolve to a string.
func (m MetaItem) WithStringValue(value string) (MetaItem, error) {
	if !m.hasEquals {
		return MetaItem{}, fmt.Errorf("meta item %q has no value assignment", m.key)
	}

	item := m
	item.value = value
	item.hasValue = true
	return item, nil
}

// Key returns the attribute key path text.
func (m MetaItem) Key() string {
	return m.key
}

// HasEquals returns true for the `key = value` attribute form.
func (m MetaItem) HasEquals() bool {
	return m.hasEquals
}

// HasArgList returns true for the `key(...)` attribute form.
func (m MetaItem) HasArgList() bool {
	return m.hasArgList
}

// StringValue returns the resolved string literal value, if any.
func (m MetaItem) StringValue() (string, bool) {
	if !m.hasValue {
		return "", false
	}
	return m.value, true
}

// IsAtom returns true for a bare marker attribute: a key with no value
// assignment and no argument list, such as `#[inline]`.
func (m MetaItem) IsAtom() bool {
	return !m.hasEquals && !m.hasArgList
}

// String returns a compact representation for logging.
func (m MetaItem) String() string {
	switch {
	case m.hasValue:
		return fmt.Sprintf("%s = %q", m.key, m.value)
	case m.hasEquals:
		return m.key + " = ?"
	case m.hasArgList:
		return m.key + "(...)"
	default:
		return m.key
	}
}

// Equal compares two MetaItem instances for equality.
func (m MetaItem) Equal(other MetaItem) bool {
	return m.key == other.key &&
		m.hasEquals == other.hasEquals &&
		m.hasArgList == other.hasArgList &&
		m.hasValue == other.hasValue &&
		m.value == other.value
}
