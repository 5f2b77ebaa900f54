package models

// Group represents a named collection of priced line items.
type Group struct {
	// ID is the monotonically increasing identifier assigned by the store
	// at creation. Ids are never reused, even across deletes (groups are
	// never deleted).
	ID uint64

	// Owner is the user id of the creator. Immutable after creation; only
	// the owner may edit the group's item list.
	Owner string

	// Name is the display name of the group (e.g. "Ski Trip", "Flat 4B").
	// Informational only; no invariant depends on it.
	Name string

	// ItemCount is the number of items currently defined for the group.
	ItemCount uint32

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Item represents one payable line item inside a group.
// Items are addressed by (group id, index); the index is stable until the
// owner replaces the item list.
type Item struct {
	// Index is the item's position within its group, in [0, ItemCount).
	Index uint32

	// Name is the item's label. Duplicates across items are permitted and
	// meaningful: two items named "apple" are distinct line items.
	Name string

	// Price is the item's cost in minor currency units.
	Price uint64

	// Paid reports whether the item has been settled.
	Paid bool

	// PaidBy is the identity that settled the item. Meaningful only when
	// Paid is true.
	PaidBy string
}

// ItemInput is the caller-supplied (name, price) pair for creating or
// replacing an item.
type ItemInput struct {
	Name  string
	Price uint64
}

// ZipItems pairs parallel name and price slices into ItemInputs.
// Returns ErrArityMismatch when the slices differ in length and ErrEmptySet
// when they are empty; every group mutation runs through these two checks.
func ZipItems(names []string, prices []uint64) ([]ItemInput, error) {
	if len(names) != len(prices) {
		return nil, ErrArityMismatch
	}
	if len(names) == 0 {
		return nil, ErrEmptySet
	}
	items := make([]ItemInput, len(names))
	for i := range names {
		items[i] = ItemInput{Name: names[i], Price: prices[i]}
	}
	return items, nil
}
