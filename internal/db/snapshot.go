package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"catalogconsole/internal/models"
)

// SnapshotRepository persists the last fetched catalog so a restarted console
// can show stale data while the backend is unreachable.
type SnapshotRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, now: time.Now}
}

// Replace swaps the stored snapshot for products in one transaction.
func (r *SnapshotRepository) Replace(ctx context.Context, products []models.Product) error {
	fetchedAt := r.now()
	rows := make([]models.SnapshotRow, 0, len(products))
	for i, p := range products {
		rows = append(rows, models.NewSnapshotRow(p, i, fetchedAt))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.SnapshotRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	return errors.Wrap(err, "replace catalog snapshot")
}

// Load returns the stored snapshot in server order.
func (r *SnapshotRepository) Load(ctx context.Context) ([]models.Product, error) {
	var rows []models.SnapshotRow
	if err := r.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load catalog snapshot")
	}
	out := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Product())
	}
	return out, nil
}
