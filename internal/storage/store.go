// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/chaintab/chaintab/internal/models"
)

// Store defines the interface for ledger storage operations. Each mutating
// method is atomic: it either applies every write it describes or none of
// them. The invariant checks (owner, paid, exact amount) run inside the same
// transaction as the writes so no interleaving can separate validation from
// mutation.
//
// The abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the ledger rules built on top.
type Store interface {
	// CreateGroup persists a new group with its full item set and assigns
	// the next group id. Group ids strictly increase and are never reused.
	// The group.ID, group.ItemCount and group.CreatedAt fields are
	// populated by the store.
	CreateGroup(ctx context.Context, group *models.Group, items []models.ItemInput) error

	// GetGroup retrieves a group's metadata.
	// Returns models.ErrGroupNotFound for an id that was never assigned.
	GetGroup(ctx context.Context, groupID uint64) (*models.Group, error)

	// GetGroupItems returns the group's items ordered by index. A group
	// with zero items and a group that was never created both yield an
	// empty slice: absence and emptiness are indistinguishable here, which
	// callers must treat as part of the contract.
	GetGroupItems(ctx context.Context, groupID uint64) ([]models.Item, error)

	// ReplaceGroupItems rewrites the group's item list wholesale. The
	// caller must be the group owner. The edit is rejected as a whole if
	// any existing item is already paid: a paid item can be neither
	// overwritten nor dropped by shrinking the list.
	ReplaceGroupItems(ctx context.Context, groupID uint64, caller string, items []models.ItemInput) error

	// ValidateSettlement runs the settlement checks for the selection
	// without mutating anything: every selected item must exist and be
	// unpaid, and amount must exactly equal the sum of their prices.
	// Used to stage a settlement before a side-effecting external call.
	ValidateSettlement(ctx context.Context, groupID uint64, itemIDs []uint32, amount uint64) error

	// SettleItems marks the selected items paid by payer after re-running
	// the same checks as ValidateSettlement inside the transaction.
	// Validation of every item completes before any item is marked, so a
	// failure on a later item leaves the whole batch unpaid.
	SettleItems(ctx context.Context, groupID uint64, payer string, itemIDs []uint32, amount uint64) error

	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) when no
	// such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by id. Returns (nil, nil) when no such
	// user exists.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// AppendEvent writes one notification record to the append-only event
	// log. The core never reads events back.
	AppendEvent(ctx context.Context, event *models.Event) error

	// Close releases any resources held by the store.
	Close() error
}
