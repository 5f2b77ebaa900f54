package models

import "errors"

// Ledger error taxonomy. Every check fails the whole enclosing operation
// immediately; no partial application, no automatic retry.
var (
	// ErrArityMismatch is returned when item names and prices differ in length.
	ErrArityMismatch = errors.New("item names and prices differ in length")

	// ErrEmptySet is returned when a group mutation supplies zero items.
	ErrEmptySet = errors.New("item list is empty")

	// ErrNotOwner is returned when a caller other than the group owner
	// attempts an edit.
	ErrNotOwner = errors.New("caller is not the group owner")

	// ErrCannotEditPaidItem is returned when an edit would overwrite or drop
	// an item that is already paid.
	ErrCannotEditPaidItem = errors.New("cannot edit a paid item")

	// ErrNoItemsSelected is returned when a payment selects zero items.
	ErrNoItemsSelected = errors.New("no items selected")

	// ErrItemNotFound is returned when a selected item index does not exist
	// in the group.
	ErrItemNotFound = errors.New("item does not exist")

	// ErrAlreadyPaid is returned when a selected item is already settled.
	ErrAlreadyPaid = errors.New("item already paid")

	// ErrAmountMismatch is returned when the offered amount does not exactly
	// equal the sum of the selected items' prices.
	ErrAmountMismatch = errors.New("amount does not match selected item total")

	// ErrInsufficientOrMismatchedBalance is returned when the funding token
	// refuses a direct-payment transfer.
	ErrInsufficientOrMismatchedBalance = errors.New("token transfer refused")

	// ErrGroupNotFound is returned by GetGroup for a group id that was never
	// created. Note that GetGroupItems deliberately does not raise it: an
	// unknown group and an empty group both yield empty item slices.
	ErrGroupNotFound = errors.New("group not found")

	// ErrRelayAuthenticationFailed is returned when the external authority
	// rejects an attested message or reports an unsuccessful mint.
	ErrRelayAuthenticationFailed = errors.New("message authentication failed")
)
