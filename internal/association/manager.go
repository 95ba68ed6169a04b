package association

import (
	"context"
	"fmt"
	"time"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Manager struct {
	db  *gorm.DB
	now func() time.Time
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{
		db:  db,
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Add inserts the (owner, target) link and bumps the target's counter in one
// transaction. An existing link is reported as DuplicateAssociation and leaves
// the counter alone. The composite primary key arbitrates concurrent adds.
func (m *Manager) Add(ctx context.Context, link Link, ownerID, targetID uuid.UUID) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return m.AddTx(tx, link, ownerID, targetID)
	})
}

// AddTx is Add inside a caller-owned transaction.
func (m *Manager) AddTx(tx *gorm.DB, link Link, ownerID, targetID uuid.UUID) error {
	if err := ensureExists(tx, link.OwnerTable, link.OwnerEntity, ownerID); err != nil {
		return err
	}
	if err := ensureExists(tx, link.TargetTable, link.TargetEntity, targetID); err != nil {
		return err
	}

	result := tx.Exec(
		"INSERT INTO "+link.Table+" ("+link.OwnerColumn+", "+link.TargetColumn+", created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING",
		ownerID, targetID, m.now(),
	)
	if result.Error != nil {
		if apperr.IsUniqueViolation(result.Error) {
			return apperr.DuplicateAssociation(link.DuplicateMessage)
		}
		return fmt.Errorf("insert %s: %w", link.Table, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.DuplicateAssociation(link.DuplicateMessage)
	}

	if link.CounterColumn == "" {
		return nil
	}
	return tx.Table(link.TargetTable).
		Where("id = ?", targetID).
		UpdateColumn(link.CounterColumn, gorm.Expr(link.CounterColumn+" + 1")).Error
}

// Remove deletes the (owner, target) link and decrements the target's counter
// in one transaction. The decrement is guarded so the counter never drops
// below zero.
func (m *Manager) Remove(ctx context.Context, link Link, ownerID, targetID uuid.UUID) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return m.RemoveTx(tx, link, ownerID, targetID)
	})
}

// RemoveTx is Remove inside a caller-owned transaction.
func (m *Manager) RemoveTx(tx *gorm.DB, link Link, ownerID, targetID uuid.UUID) error {
	if err := ensureExists(tx, link.OwnerTable, link.OwnerEntity, ownerID); err != nil {
		return err
	}
	if err := ensureExists(tx, link.TargetTable, link.TargetEntity, targetID); err != nil {
		return err
	}

	result := tx.Exec(
		"DELETE FROM "+link.Table+" WHERE "+link.OwnerColumn+" = ? AND "+link.TargetColumn+" = ?",
		ownerID, targetID,
	)
	if result.Error != nil {
		return fmt.Errorf("delete %s: %w", link.Table, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.AssociationNotFound(link.MissingMessage)
	}

	if link.CounterColumn == "" {
		return nil
	}
	return decrement(tx, link.TargetTable, link.CounterColumn, targetID)
}

// DetachOwner removes every link of owner and decrements each target's counter.
// Used when the owner row itself is being deleted.
func (m *Manager) DetachOwner(tx *gorm.DB, link Link, ownerID uuid.UUID) error {
	var targets []uuid.UUID
	if err := tx.Table(link.Table).
		Where(link.OwnerColumn+" = ?", ownerID).
		Pluck(link.TargetColumn, &targets).Error; err != nil {
		return fmt.Errorf("list %s: %w", link.Table, err)
	}
	if len(targets) == 0 {
		return nil
	}
	if err := tx.Exec("DELETE FROM "+link.Table+" WHERE "+link.OwnerColumn+" = ?", ownerID).Error; err != nil {
		return fmt.Errorf("delete %s: %w", link.Table, err)
	}
	if link.CounterColumn == "" {
		return nil
	}
	for _, id := range targets {
		if err := decrement(tx, link.TargetTable, link.CounterColumn, id); err != nil {
			return err
		}
	}
	return nil
}

// DetachTarget removes every link pointing at target. Counters live on the
// target, so nothing else needs adjusting.
func (m *Manager) DetachTarget(tx *gorm.DB, link Link, targetID uuid.UUID) error {
	if err := tx.Exec("DELETE FROM "+link.Table+" WHERE "+link.TargetColumn+" = ?", targetID).Error; err != nil {
		return fmt.Errorf("delete %s: %w", link.Table, err)
	}
	return nil
}

// Recount rewrites every counter from the live association rows. The link
// rows are the source of truth.
func (m *Manager) Recount(ctx context.Context) (int64, error) {
	var touched int64
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, link := range Counters {
			result := tx.Exec(
				"UPDATE " + link.TargetTable + " SET " + link.CounterColumn + " = (SELECT COUNT(*) FROM " + link.Table +
					" WHERE " + link.Table + "." + link.TargetColumn + " = " + link.TargetTable + ".id)",
			)
			if result.Error != nil {
				return fmt.Errorf("recount %s.%s: %w", link.TargetTable, link.CounterColumn, result.Error)
			}
			touched += result.RowsAffected
		}
		return nil
	})
	return touched, err
}

func decrement(tx *gorm.DB, table, column string, id uuid.UUID) error {
	return tx.Table(table).
		Where("id = ? AND "+column+" > 0", id).
		UpdateColumn(column, gorm.Expr(column+" - 1")).Error
}

func ensureExists(tx *gorm.DB, table, entity string, id uuid.UUID) error {
	if table == "" {
		return nil
	}
	var count int64
	if err := tx.Table(table).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("lookup %s: %w", table, err)
	}
	if count == 0 {
		return apperr.NotFound(entity)
	}
	return nil
}
