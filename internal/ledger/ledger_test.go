package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chaintab/chaintab/internal/models"
	"github.com/chaintab/chaintab/internal/storage/sqlite"
)

// fakeToken records transfer calls and answers with a canned result.
type fakeToken struct {
	ok        bool
	err       error
	transfers []transfer
}

type transfer struct {
	from, to string
	amount   uint64
}

func (f *fakeToken) BalanceOf(ctx context.Context, account string) (uint64, error) {
	return 0, nil
}

func (f *fakeToken) TransferFrom(ctx context.Context, from, to string, amount uint64) (bool, error) {
	f.transfers = append(f.transfers, transfer{from, to, amount})
	return f.ok, f.err
}

// recordingSink captures notifications for assertions.
type recordingSink struct {
	created []uint64
	edited  []uint64
	paid    []paidEvent
}

type paidEvent struct {
	groupID uint64
	payer   string
	itemIDs []uint32
	total   uint64
}

func (r *recordingSink) GroupCreated(_ context.Context, g *models.Group, _ []models.Item) {
	r.created = append(r.created, g.ID)
}

func (r *recordingSink) GroupEdited(_ context.Context, g *models.Group, _ []models.Item) {
	r.edited = append(r.edited, g.ID)
}

func (r *recordingSink) ItemsPaid(_ context.Context, groupID uint64, payer string, itemIDs []uint32, total uint64) {
	r.paid = append(r.paid, paidEvent{groupID, payer, itemIDs, total})
}

func newTestLedger(t *testing.T) (*Ledger, *fakeToken, *recordingSink) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "chaintab-ledger-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	token := &fakeToken{ok: true}
	sink := &recordingSink{}
	return New(store, token, "treasury", sink), token, sink
}

var (
	groceryNames  = []string{"apple", "apple", "banana"}
	groceryPrices = []uint64{100, 100, 250}
)

func TestCreateGroup(t *testing.T) {
	l, _, sink := newTestLedger(t)
	ctx := context.Background()

	t.Run("creates items unpaid with matching count", func(t *testing.T) {
		group, err := l.CreateGroup(ctx, "alice", "Groceries", groceryNames, groceryPrices)
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ItemCount != 3 {
			t.Errorf("ItemCount: got %d, want 3", group.ItemCount)
		}
		items, err := l.GetGroupItems(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroupItems failed: %v", err)
		}
		for _, item := range items {
			if item.Paid {
				t.Errorf("item %d created paid", item.Index)
			}
		}
		if len(sink.created) != 1 || sink.created[0] != group.ID {
			t.Errorf("expected one GroupCreated notification for %d, got %v", group.ID, sink.created)
		}
	})

	t.Run("arity mismatch fails and does not consume an id", func(t *testing.T) {
		before, err := l.CreateGroup(ctx, "alice", "Before", groceryNames, groceryPrices)
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		_, err = l.CreateGroup(ctx, "alice", "Broken", []string{"a", "b"}, []uint64{1, 2, 3})
		if !errors.Is(err, models.ErrArityMismatch) {
			t.Errorf("expected ErrArityMismatch, got %v", err)
		}

		after, err := l.CreateGroup(ctx, "alice", "After", groceryNames, groceryPrices)
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if after.ID != before.ID+1 {
			t.Errorf("failed create consumed an id: %d then %d", before.ID, after.ID)
		}
	})

	t.Run("empty item set fails", func(t *testing.T) {
		_, err := l.CreateGroup(ctx, "alice", "Empty", nil, nil)
		if !errors.Is(err, models.ErrEmptySet) {
			t.Errorf("expected ErrEmptySet, got %v", err)
		}
	})
}

func TestEditGroup(t *testing.T) {
	l, _, sink := newTestLedger(t)
	ctx := context.Background()

	group, err := l.CreateGroup(ctx, "alice", "Groceries", groceryNames, groceryPrices)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("non-owner never mutates state", func(t *testing.T) {
		err := l.EditGroup(ctx, "mallory", group.ID, []string{"x"}, []uint64{1})
		if !errors.Is(err, models.ErrNotOwner) {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
		items, _ := l.GetGroupItems(ctx, group.ID)
		if len(items) != 3 {
			t.Errorf("items mutated: %+v", items)
		}
	})

	t.Run("owner edit emits notification", func(t *testing.T) {
		err := l.EditGroup(ctx, "alice", group.ID, []string{"cherry"}, []uint64{500})
		if err != nil {
			t.Fatalf("EditGroup failed: %v", err)
		}
		if len(sink.edited) != 1 || sink.edited[0] != group.ID {
			t.Errorf("expected one GroupEdited notification, got %v", sink.edited)
		}
	})

	t.Run("arity mismatch is rejected before the store", func(t *testing.T) {
		err := l.EditGroup(ctx, "alice", group.ID, []string{"a"}, []uint64{1, 2})
		if !errors.Is(err, models.ErrArityMismatch) {
			t.Errorf("expected ErrArityMismatch, got %v", err)
		}
	})
}

func TestPayForItems(t *testing.T) {
	ctx := context.Background()

	t.Run("exact amount transfers then settles", func(t *testing.T) {
		l, token, sink := newTestLedger(t)
		group, _ := l.CreateGroup(ctx, "alice", "Groceries", groceryNames, groceryPrices)

		if err := l.PayForItems(ctx, "bob", group.ID, []uint32{0, 2}, 350); err != nil {
			t.Fatalf("PayForItems failed: %v", err)
		}

		if len(token.transfers) != 1 {
			t.Fatalf("expected one transfer, got %d", len(token.transfers))
		}
		got := token.transfers[0]
		if got.from != "bob" || got.to != "treasury" || got.amount != 350 {
			t.Errorf("unexpected transfer: %+v", got)
		}

		items, _ := l.GetGroupItems(ctx, group.ID)
		if !items[0].Paid || items[1].Paid || !items[2].Paid {
			t.Errorf("unexpected paid flags: %+v", items)
		}
		if items[0].PaidBy != "bob" {
			t.Errorf("paidBy: got %q, want bob", items[0].PaidBy)
		}
		if len(sink.paid) != 1 || sink.paid[0].total != 350 {
			t.Errorf("expected one ItemsPaid notification, got %+v", sink.paid)
		}
	})

	t.Run("remaining item settles independently, repeats fail", func(t *testing.T) {
		l, _, _ := newTestLedger(t)
		group, _ := l.CreateGroup(ctx, "alice", "Groceries", groceryNames, groceryPrices)

		if err := l.PayForItems(ctx, "bob", group.ID, []uint32{0, 2}, 350); err != nil {
			t.Fatalf("first payment failed: %v", err)
		}
		if err := l.PayForItems(ctx, "carol", group.ID, []uint32{1}, 100); err != nil {
			t.Fatalf("second payment failed: %v", err)
		}

		if err := l.PayForItems(ctx, "bob", group.ID, []uint32{0, 2}, 350); !errors.Is(err, models.ErrAlreadyPaid) {
			t.Errorf("expected ErrAlreadyPaid, got %v", err)
		}
		if err := l.PayForItems(ctx, "carol", group.ID, []uint32{1}, 100); !errors.Is(err, models.ErrAlreadyPaid) {
			t.Errorf("expected ErrAlreadyPaid, got %v", err)
		}
	})

	t.Run("invalid selection never calls the token", func(t *testing.T) {
		l, token, _ := newTestLedger(t)
		group, _ := l.CreateGroup(ctx, "alice", "Groceries", groceryNames, groceryPrices)

		if err := l.PayForItems(ctx, "bob", group.ID, []uint32{0}, 101); !errors.Is(err, models.ErrAmountMismatch) {
			t.Errorf("expected ErrAmountMismatch, got %v", err)
		}
		if err := l.PayForItems(ctx, "bob", group.ID, nil, 0); !errors.Is(err, models.ErrNoItemsSelected) {
			t.Errorf("expected ErrNoItemsSelected, got %v", err)
		}
		if len(token.transfers) != 0 {
			t.Errorf("token called for invalid selections: %+v", token.transfers)
		}
	})

	t.Run("refused transfer leaves the ledger untouched", func(t *testing.T) {
		l, token, sink := newTestLedger(t)
		token.ok = false
		group, _ := l.CreateGroup(ctx, "alice", "Groceries", groceryNames, groceryPrices)

		err := l.PayForItems(ctx, "bob", group.ID, []uint32{0}, 100)
		if !errors.Is(err, models.ErrInsufficientOrMismatchedBalance) {
			t.Errorf("expected ErrInsufficientOrMismatchedBalance, got %v", err)
		}
		items, _ := l.GetGroupItems(ctx, group.ID)
		if items[0].Paid {
			t.Error("item paid despite refused transfer")
		}
		if len(sink.paid) != 0 {
			t.Errorf("ItemsPaid emitted despite refused transfer: %+v", sink.paid)
		}
	})
}

func TestSettleAuthenticated(t *testing.T) {
	ctx := context.Background()

	t.Run("successful authentication settles", func(t *testing.T) {
		l, _, sink := newTestLedger(t)
		group, _ := l.CreateGroup(ctx, "alice", "Groceries", groceryNames, groceryPrices)

		var authCalls int
		err := l.SettleAuthenticated(ctx, "cctp:feed", group.ID, []uint32{0, 2}, 350, func(context.Context) (bool, error) {
			authCalls++
			return true, nil
		})
		if err != nil {
			t.Fatalf("SettleAuthenticated failed: %v", err)
		}
		if authCalls != 1 {
			t.Errorf("authenticate calls: got %d, want 1", authCalls)
		}
		items, _ := l.GetGroupItems(ctx, group.ID)
		if items[0].PaidBy != "cctp:feed" {
			t.Errorf("paidBy: got %q", items[0].PaidBy)
		}
		if len(sink.paid) != 1 {
			t.Errorf("expected one ItemsPaid notification, got %+v", sink.paid)
		}
	})

	t.Run("false authentication aborts before settlement", func(t *testing.T) {
		l, _, _ := newTestLedger(t)
		group, _ := l.CreateGroup(ctx, "alice", "Groceries", groceryNames, groceryPrices)

		err := l.SettleAuthenticated(ctx, "cctp:feed", group.ID, []uint32{0}, 100, func(context.Context) (bool, error) {
			return false, nil
		})
		if !errors.Is(err, models.ErrRelayAuthenticationFailed) {
			t.Errorf("expected ErrRelayAuthenticationFailed, got %v", err)
		}
		items, _ := l.GetGroupItems(ctx, group.ID)
		if items[0].Paid {
			t.Error("item paid despite failed authentication")
		}
	})

	t.Run("staged validation failure skips authentication", func(t *testing.T) {
		l, _, _ := newTestLedger(t)
		group, _ := l.CreateGroup(ctx, "alice", "Groceries", groceryNames, groceryPrices)

		var authCalls int
		err := l.SettleAuthenticated(ctx, "cctp:feed", group.ID, []uint32{0}, 999, func(context.Context) (bool, error) {
			authCalls++
			return true, nil
		})
		if !errors.Is(err, models.ErrAmountMismatch) {
			t.Errorf("expected ErrAmountMismatch, got %v", err)
		}
		if authCalls != 0 {
			t.Errorf("authority invoked %d times for an unsettleable selection", authCalls)
		}
	})
}
