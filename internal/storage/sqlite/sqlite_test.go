package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chaintab/chaintab/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "chaintab-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func mustCreateGroup(t *testing.T, store *SQLiteStore, owner string, items []models.ItemInput) *models.Group {
	t.Helper()
	group := &models.Group{Owner: owner, Name: "Groceries"}
	if err := store.CreateGroup(context.Background(), group, items); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

var groceries = []models.ItemInput{
	{Name: "apple", Price: 100},
	{Name: "apple", Price: 100},
	{Name: "banana", Price: 250},
}

func TestSQLiteStoreGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup assigns id and writes items unpaid", func(t *testing.T) {
		group := mustCreateGroup(t, store, "alice", groceries)

		if group.ID == 0 {
			t.Error("Expected group ID to be assigned")
		}
		if group.ItemCount != 3 {
			t.Errorf("ItemCount: got %d, want 3", group.ItemCount)
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		items, err := store.GetGroupItems(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroupItems failed: %v", err)
		}
		if len(items) != 3 {
			t.Fatalf("items: got %d, want 3", len(items))
		}
		for _, item := range items {
			if item.Paid {
				t.Errorf("item %d created paid", item.Index)
			}
		}
		// duplicate names stay distinct line items
		if items[0].Name != "apple" || items[1].Name != "apple" {
			t.Error("expected two distinct apple items")
		}
	})

	t.Run("group ids strictly increase", func(t *testing.T) {
		first := mustCreateGroup(t, store, "alice", groceries)
		second := mustCreateGroup(t, store, "bob", groceries)
		if second.ID <= first.ID {
			t.Errorf("ids not increasing: %d then %d", first.ID, second.ID)
		}
	})

	t.Run("GetGroup returns ErrGroupNotFound for unknown id", func(t *testing.T) {
		if _, err := store.GetGroup(ctx, 9999); !errors.Is(err, models.ErrGroupNotFound) {
			t.Errorf("expected ErrGroupNotFound, got %v", err)
		}
	})

	t.Run("GetGroupItems on unknown group is empty, not an error", func(t *testing.T) {
		items, err := store.GetGroupItems(ctx, 9999)
		if err != nil {
			t.Fatalf("GetGroupItems failed: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("items: got %d, want 0", len(items))
		}
	})
}

func TestSQLiteStoreReplaceGroupItems(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("owner rewrites name and price arrays wholesale", func(t *testing.T) {
		group := mustCreateGroup(t, store, "alice", groceries)

		replacement := []models.ItemInput{{Name: "cherry", Price: 500}}
		if err := store.ReplaceGroupItems(ctx, group.ID, "alice", replacement); err != nil {
			t.Fatalf("ReplaceGroupItems failed: %v", err)
		}

		items, err := store.GetGroupItems(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroupItems failed: %v", err)
		}
		if len(items) != 1 || items[0].Name != "cherry" || items[0].Price != 500 {
			t.Errorf("unexpected items after edit: %+v", items)
		}

		meta, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if meta.ItemCount != 1 {
			t.Errorf("ItemCount: got %d, want 1", meta.ItemCount)
		}
	})

	t.Run("non-owner is rejected and state is untouched", func(t *testing.T) {
		group := mustCreateGroup(t, store, "alice", groceries)

		err := store.ReplaceGroupItems(ctx, group.ID, "mallory", []models.ItemInput{{Name: "x", Price: 1}})
		if !errors.Is(err, models.ErrNotOwner) {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}

		items, _ := store.GetGroupItems(ctx, group.ID)
		if len(items) != 3 {
			t.Errorf("items mutated by rejected edit: %+v", items)
		}
	})

	t.Run("edit touching a paid item is rejected as a whole", func(t *testing.T) {
		group := mustCreateGroup(t, store, "alice", groceries)
		if err := store.SettleItems(ctx, group.ID, "bob", []uint32{1}, 100); err != nil {
			t.Fatalf("SettleItems failed: %v", err)
		}

		err := store.ReplaceGroupItems(ctx, group.ID, "alice", []models.ItemInput{
			{Name: "apple", Price: 100},
			{Name: "pear", Price: 120},
			{Name: "banana", Price: 250},
		})
		if !errors.Is(err, models.ErrCannotEditPaidItem) {
			t.Errorf("expected ErrCannotEditPaidItem, got %v", err)
		}

		items, _ := store.GetGroupItems(ctx, group.ID)
		if items[1].Name != "apple" || !items[1].Paid {
			t.Error("rejected edit mutated state")
		}
	})

	t.Run("shrinking below a paid index is rejected", func(t *testing.T) {
		group := mustCreateGroup(t, store, "alice", groceries)
		if err := store.SettleItems(ctx, group.ID, "bob", []uint32{2}, 250); err != nil {
			t.Fatalf("SettleItems failed: %v", err)
		}

		// new list of length 2 would drop paid index 2
		err := store.ReplaceGroupItems(ctx, group.ID, "alice", []models.ItemInput{
			{Name: "apple", Price: 100},
			{Name: "apple", Price: 100},
		})
		if !errors.Is(err, models.ErrCannotEditPaidItem) {
			t.Errorf("expected ErrCannotEditPaidItem, got %v", err)
		}
	})

	t.Run("edit of unknown group fails", func(t *testing.T) {
		err := store.ReplaceGroupItems(ctx, 9999, "alice", []models.ItemInput{{Name: "x", Price: 1}})
		if !errors.Is(err, models.ErrGroupNotFound) {
			t.Errorf("expected ErrGroupNotFound, got %v", err)
		}
	})
}

func TestSQLiteStoreSettleItems(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("exact amount settles the batch", func(t *testing.T) {
		group := mustCreateGroup(t, store, "alice", groceries)

		if err := store.SettleItems(ctx, group.ID, "bob", []uint32{0, 2}, 350); err != nil {
			t.Fatalf("SettleItems failed: %v", err)
		}

		items, _ := store.GetGroupItems(ctx, group.ID)
		if !items[0].Paid || items[0].PaidBy != "bob" {
			t.Errorf("item 0: %+v", items[0])
		}
		if items[1].Paid {
			t.Error("item 1 should stay unpaid")
		}
		if !items[2].Paid || items[2].PaidBy != "bob" {
			t.Errorf("item 2: %+v", items[2])
		}
	})

	t.Run("off-by-one amounts fail", func(t *testing.T) {
		group := mustCreateGroup(t, store, "alice", groceries)

		for _, amount := range []uint64{349, 351} {
			err := store.SettleItems(ctx, group.ID, "bob", []uint32{0, 2}, amount)
			if !errors.Is(err, models.ErrAmountMismatch) {
				t.Errorf("amount %d: expected ErrAmountMismatch, got %v", amount, err)
			}
		}
		items, _ := store.GetGroupItems(ctx, group.ID)
		for _, item := range items {
			if item.Paid {
				t.Errorf("item %d paid by failed settlement", item.Index)
			}
		}
	})

	t.Run("a failing item leaves the whole batch unpaid", func(t *testing.T) {
		group := mustCreateGroup(t, store, "alice", groceries)
		if err := store.SettleItems(ctx, group.ID, "bob", []uint32{2}, 250); err != nil {
			t.Fatalf("SettleItems failed: %v", err)
		}

		// index 0 is valid, index 2 is already paid
		err := store.SettleItems(ctx, group.ID, "carol", []uint32{0, 2}, 350)
		if !errors.Is(err, models.ErrAlreadyPaid) {
			t.Errorf("expected ErrAlreadyPaid, got %v", err)
		}

		items, _ := store.GetGroupItems(ctx, group.ID)
		if items[0].Paid {
			t.Error("item 0 paid despite batch failure")
		}
		if items[2].PaidBy != "bob" {
			t.Errorf("item 2 payer overwritten: %q", items[2].PaidBy)
		}
	})

	t.Run("settling twice fails the second time with identical state", func(t *testing.T) {
		group := mustCreateGroup(t, store, "alice", groceries)
		if err := store.SettleItems(ctx, group.ID, "bob", []uint32{0, 2}, 350); err != nil {
			t.Fatalf("SettleItems failed: %v", err)
		}
		before, _ := store.GetGroupItems(ctx, group.ID)

		err := store.SettleItems(ctx, group.ID, "bob", []uint32{0, 2}, 350)
		if !errors.Is(err, models.ErrAlreadyPaid) {
			t.Errorf("expected ErrAlreadyPaid, got %v", err)
		}

		after, _ := store.GetGroupItems(ctx, group.ID)
		for i := range before {
			if before[i] != after[i] {
				t.Errorf("item %d changed: %+v -> %+v", i, before[i], after[i])
			}
		}
	})

	t.Run("unknown item index fails", func(t *testing.T) {
		group := mustCreateGroup(t, store, "alice", groceries)
		err := store.SettleItems(ctx, group.ID, "bob", []uint32{7}, 100)
		if !errors.Is(err, models.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("empty selection fails", func(t *testing.T) {
		group := mustCreateGroup(t, store, "alice", groceries)
		err := store.SettleItems(ctx, group.ID, "bob", nil, 0)
		if !errors.Is(err, models.ErrNoItemsSelected) {
			t.Errorf("expected ErrNoItemsSelected, got %v", err)
		}
	})

	t.Run("ValidateSettlement mirrors SettleItems without mutating", func(t *testing.T) {
		group := mustCreateGroup(t, store, "alice", groceries)

		if err := store.ValidateSettlement(ctx, group.ID, []uint32{0, 2}, 350); err != nil {
			t.Fatalf("ValidateSettlement failed: %v", err)
		}
		items, _ := store.GetGroupItems(ctx, group.ID)
		for _, item := range items {
			if item.Paid {
				t.Errorf("ValidateSettlement mutated item %d", item.Index)
			}
		}

		if err := store.ValidateSettlement(ctx, group.ID, []uint32{0, 2}, 300); !errors.Is(err, models.ErrAmountMismatch) {
			t.Errorf("expected ErrAmountMismatch, got %v", err)
		}
	})
}
