package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chaintab/chaintab/internal/models"
)

// CreateGroup persists a new group and its items in one transaction.
// The assigned group id comes from AUTOINCREMENT, so ids strictly increase
// and a rolled-back creation never hands its id to a later group.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group, items []models.ItemInput) error {
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	group.ItemCount = uint32(len(items))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO groups (owner, name, item_count, created_at) VALUES (?, ?, ?, ?)",
		group.Owner, group.Name, group.ItemCount, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read group id: %w", err)
	}
	group.ID = uint64(id)

	for i, item := range items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO items (group_id, idx, name, price, paid) VALUES (?, ?, ?, ?, 0)",
			group.ID, i, item.Name, int64(item.Price),
		)
		if err != nil {
			return fmt.Errorf("failed to insert item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group's metadata by id.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID uint64) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, owner, name, item_count, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Owner, &group.Name, &group.ItemCount, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// GetGroupItems returns the group's items ordered by index. An unknown group
// id yields an empty slice, indistinguishable from a group with no items.
func (s *SQLiteStore) GetGroupItems(ctx context.Context, groupID uint64) ([]models.Item, error) {
	return loadItems(ctx, s.db, groupID)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadItems(ctx context.Context, q queryer, groupID uint64) ([]models.Item, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT idx, name, price, paid, paid_by FROM items WHERE group_id = ? ORDER BY idx",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var (
			item   models.Item
			price  int64
			paidBy sql.NullString
		)
		if err := rows.Scan(&item.Index, &item.Name, &price, &item.Paid, &paidBy); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Price = uint64(price)
		if paidBy.Valid {
			item.PaidBy = paidBy.String
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// ReplaceGroupItems rewrites the item list wholesale. Only the owner may
// edit, and the edit is all-or-nothing: any paid item in the group, whether
// it would be overwritten or dropped by a shorter list, rejects the edit.
func (s *SQLiteStore) ReplaceGroupItems(ctx context.Context, groupID uint64, caller string, items []models.ItemInput) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, "SELECT owner FROM groups WHERE id = ?", groupID).Scan(&owner)
	if err == sql.ErrNoRows {
		return models.ErrGroupNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get group owner: %w", err)
	}
	if owner != caller {
		return models.ErrNotOwner
	}

	existing, err := loadItems(ctx, tx, groupID)
	if err != nil {
		return err
	}
	for _, item := range existing {
		if item.Paid {
			return fmt.Errorf("item %d: %w", item.Index, models.ErrCannotEditPaidItem)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE group_id = ?", groupID); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	for i, item := range items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO items (group_id, idx, name, price, paid) VALUES (?, ?, ?, ?, 0)",
			groupID, i, item.Name, int64(item.Price),
		)
		if err != nil {
			return fmt.Errorf("failed to insert item %d: %w", i, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE groups SET item_count = ? WHERE id = ?", len(items), groupID,
	); err != nil {
		return fmt.Errorf("failed to update item count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// validateSelection checks every selected index against the current item
// snapshot and returns the selection's total price. Duplicate indices are
// validated and summed per occurrence; the exact-amount check then rejects
// any duplicate the caller did not knowingly pay twice for.
func validateSelection(items []models.Item, itemIDs []uint32, amount uint64) (uint64, error) {
	if len(itemIDs) == 0 {
		return 0, models.ErrNoItemsSelected
	}
	byIndex := make(map[uint32]models.Item, len(items))
	for _, item := range items {
		byIndex[item.Index] = item
	}
	var total uint64
	for _, id := range itemIDs {
		item, ok := byIndex[id]
		if !ok {
			return 0, fmt.Errorf("item %d: %w", id, models.ErrItemNotFound)
		}
		if item.Paid {
			return 0, fmt.Errorf("item %d: %w", id, models.ErrAlreadyPaid)
		}
		total += item.Price
	}
	if total != amount {
		return 0, fmt.Errorf("selected total %d, offered %d: %w", total, amount, models.ErrAmountMismatch)
	}
	return total, nil
}

// ValidateSettlement runs the settlement checks without mutating anything.
func (s *SQLiteStore) ValidateSettlement(ctx context.Context, groupID uint64, itemIDs []uint32, amount uint64) error {
	items, err := loadItems(ctx, s.db, groupID)
	if err != nil {
		return err
	}
	_, err = validateSelection(items, itemIDs, amount)
	return err
}

// SettleItems marks the selection paid by payer. The full selection is
// validated against the in-transaction snapshot before any row is updated,
// so a failure on any item leaves every item unpaid.
func (s *SQLiteStore) SettleItems(ctx context.Context, groupID uint64, payer string, itemIDs []uint32, amount uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	items, err := loadItems(ctx, tx, groupID)
	if err != nil {
		return err
	}
	if _, err := validateSelection(items, itemIDs, amount); err != nil {
		return err
	}

	for _, id := range itemIDs {
		_, err = tx.ExecContext(ctx,
			"UPDATE items SET paid = 1, paid_by = ? WHERE group_id = ? AND idx = ?",
			payer, groupID, id,
		)
		if err != nil {
			return fmt.Errorf("failed to mark item %d paid: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
