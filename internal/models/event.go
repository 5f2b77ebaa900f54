package models

// Event kinds written to the append-only notification log.
const (
	EventGroupCreated = "group_created"
	EventGroupEdited  = "group_edited"
	EventItemsPaid    = "items_paid"
)

// Event is one append-only notification record. Events are written for
// off-core indexing and observability; the core never reads them back and
// never branches on whether a sink is attached.
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string

	// Kind is one of the Event* constants.
	Kind string

	// GroupID is the group the event refers to.
	GroupID uint64

	// Actor is the identity that triggered the event: the owner for group
	// mutations, the payer for settlements.
	Actor string

	// Payload is a JSON document with the kind-specific fields (item names
	// and prices, settled item indices, total amount).
	Payload string

	// CreatedAt is the Unix timestamp when the event was recorded.
	CreatedAt int64
}
