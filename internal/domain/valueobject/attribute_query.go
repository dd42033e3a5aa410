package valueobject

// AttributeQuery is an immutable snapshot of one declaration's full ordered
// attribute list, outer attributes first, then inner. It answers targeted
// queries without re-walking the tree; construct a fresh snapshot after any
// tree mutation.
type AttributeQuery struct {
	items []MetaItem
}

// NewAttributeQuery builds a query snapshot from collected meta items.
// The item slice is copied; later changes to the argument do not leak in.
func NewAttributeQuery(items []MetaItem) AttributeQuery {
	snapshot := make([]MetaItem, len(items))
	copy(snapshot, items)
	return AttributeQuery{items: snapshot}
}

// Items returns a copy of the ordered meta items in the snapshot.
func (q AttributeQuery) Items() []MetaItem {
	items := make([]MetaItem, len(q.items))
	copy(items, q.items)
	return items
}

// Len returns the number of attributes in the snapshot.
func (q AttributeQuery) Len() int {
	return len(q.items)
}

// HasAtomAttribute reports whether some attribute carries the given key as a
// bare marker: no value assignment and no argument list. `#[inline]` matches
// "inline"; `#[cfg(test)]` and `#[doc = "..."]` do not match their keys.
func (q AttributeQuery) HasAtomAttribute(name string) bool {
	for _, item := range q.items {
		if item.Key() == name && item.IsAtom() {
			return true
		}
	}
	return false
}

// LookupStringValue returns the string value of the unique attribute with the
// given key and a resolvable string literal. Zero matches yield nothing, and
// so do two or more: duplicate keys have no unambiguous answer, so callers
// get no value rather than an arbitrary pick.
func (q AttributeQuery) LookupStringValue(key string) (string, bool) {
	var (
		found string
		count int
	)

	for _, item := range q.items {
		if item.Key() != key {
			continue
		}
		value, ok := item.StringValue()
		if !ok {
			continue
		}
		count++
		if count > 1 {
			return "", false
		}
		found = value
	}

	if count != 1 {
		return "", false
	}
	return found, true
}
