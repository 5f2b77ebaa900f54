// Package ledger implements the group and settlement rules on top of the
// store. Mutating operations serialize on one mutex so the validate-all,
// then mutate-all settlement pattern never interleaves with another writer;
// within a call, the store's transaction makes each mutation all-or-nothing.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chaintab/chaintab/internal/authority"
	"github.com/chaintab/chaintab/internal/events"
	"github.com/chaintab/chaintab/internal/models"
	"github.com/chaintab/chaintab/internal/storage"
)

// AuthenticateFunc performs the external authenticate-and-mint call between
// the staged validation and the settlement write.
type AuthenticateFunc func(ctx context.Context) (bool, error)

// Ledger holds the group/item state machine and its settlement engine.
type Ledger struct {
	mu       sync.Mutex
	store    storage.Store
	token    authority.Token
	treasury string
	sink     events.Sink
}

// New creates a Ledger. treasury is the account direct payments are
// transferred into; sink may be nil.
func New(store storage.Store, token authority.Token, treasury string, sink events.Sink) *Ledger {
	return &Ledger{
		store:    store,
		token:    token,
		treasury: treasury,
		sink:     events.OrNop(sink),
	}
}

// CreateGroup creates a group with its full item set and returns it with the
// assigned id. names and prices must be parallel and non-empty.
func (l *Ledger) CreateGroup(ctx context.Context, owner, name string, names []string, prices []uint64) (*models.Group, error) {
	items, err := models.ZipItems(names, prices)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	group := &models.Group{Owner: owner, Name: name}
	if err := l.store.CreateGroup(ctx, group, items); err != nil {
		return nil, err
	}

	created, err := l.store.GetGroupItems(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	l.sink.GroupCreated(ctx, group, created)

	slog.Info("Group created", "group_id", group.ID, "owner", owner, "item_count", len(items))
	return group, nil
}

// EditGroup replaces the group's item list wholesale. Only the owner may
// edit, and no paid item may be overwritten or dropped.
func (l *Ledger) EditGroup(ctx context.Context, caller string, groupID uint64, names []string, prices []uint64) error {
	items, err := models.ZipItems(names, prices)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.ReplaceGroupItems(ctx, groupID, caller, items); err != nil {
		return err
	}

	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	edited, err := l.store.GetGroupItems(ctx, groupID)
	if err != nil {
		return err
	}
	l.sink.GroupEdited(ctx, group, edited)

	slog.Info("Group edited", "group_id", groupID, "item_count", len(items))
	return nil
}

// GetGroup retrieves a group's metadata.
func (l *Ledger) GetGroup(ctx context.Context, groupID uint64) (*models.Group, error) {
	return l.store.GetGroup(ctx, groupID)
}

// GetGroupItems returns the group's items. A never-created group id yields
// an empty slice, identical to a group with zero items.
func (l *Ledger) GetGroupItems(ctx context.Context, groupID uint64) ([]models.Item, error) {
	return l.store.GetGroupItems(ctx, groupID)
}

// PayForItems settles the selected items with the payer's own funds. The
// settlement is staged first, then the token transfer runs, then the staged
// settlement is applied; a transfer the token refuses never touches the
// ledger, and a selection that cannot settle never moves funds.
func (l *Ledger) PayForItems(ctx context.Context, payer string, groupID uint64, itemIDs []uint32, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.ValidateSettlement(ctx, groupID, itemIDs, amount); err != nil {
		return err
	}

	ok, err := l.token.TransferFrom(ctx, payer, l.treasury, amount)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrInsufficientOrMismatchedBalance, err)
	}
	if !ok {
		return models.ErrInsufficientOrMismatchedBalance
	}

	if err := l.settle(ctx, payer, groupID, itemIDs, amount); err != nil {
		// The transfer already committed externally; the ledger stayed
		// untouched. The caller holds funds in the treasury against an
		// unsettled selection and must resubmit.
		slog.Error("settlement failed after token transfer",
			"group_id", groupID, "payer", payer, "amount", amount, "error", err)
		return err
	}
	return nil
}

// SettleAuthenticated stages the settlement, runs the external
// authenticate-and-mint call, and applies the staged settlement, all under
// the ledger's mutation lock, so nothing can pay the selection between the
// staging and the write. A failed or false authentication aborts the whole
// call before any ledger change.
//
// The mint performed by the authority is outside this core's control and is
// not rolled back if the final write fails; that failure mode is limited to
// storage errors since the staged validation already passed under the lock.
func (l *Ledger) SettleAuthenticated(ctx context.Context, payer string, groupID uint64, itemIDs []uint32, amount uint64, authenticate AuthenticateFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.ValidateSettlement(ctx, groupID, itemIDs, amount); err != nil {
		return err
	}

	ok, err := authenticate(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrRelayAuthenticationFailed, err)
	}
	if !ok {
		return models.ErrRelayAuthenticationFailed
	}

	if err := l.settle(ctx, payer, groupID, itemIDs, amount); err != nil {
		slog.Error("settlement failed after authenticated mint",
			"group_id", groupID, "payer", payer, "amount", amount, "error", err)
		return err
	}
	return nil
}

// settle applies the settlement and emits the notification. Callers hold mu.
func (l *Ledger) settle(ctx context.Context, payer string, groupID uint64, itemIDs []uint32, amount uint64) error {
	if err := l.store.SettleItems(ctx, groupID, payer, itemIDs, amount); err != nil {
		return err
	}
	l.sink.ItemsPaid(ctx, groupID, payer, itemIDs, amount)
	slog.Info("Items settled", "group_id", groupID, "payer", payer, "item_ids", itemIDs, "amount", amount)
	return nil
}
