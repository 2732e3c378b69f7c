package models

import "time"

// SnapshotRow is a row of catalog_snapshot, the last product list fetched from the backend.
type SnapshotRow struct {
	ProductID   int64   `gorm:"primaryKey;autoIncrement:false"`
	Position    int     `gorm:"not null;index"` // server order
	Name        string  `gorm:"not null"`
	Category    string  `gorm:"type:varchar(32)"`
	Size        string  `gorm:"type:varchar(16)"`
	Price       float64 `gorm:"not null"`
	Quantity    int     `gorm:"not null"`
	Image       string
	Priority    int    `gorm:"not null"`
	Description string `gorm:"type:text"`
	FetchedAt   time.Time
}

func (SnapshotRow) TableName() string {
	return "catalog_snapshot"
}

// NewSnapshotRow maps p at position pos.
func NewSnapshotRow(p Product, pos int, fetchedAt time.Time) SnapshotRow {
	return SnapshotRow{
		ProductID:   p.ID,
		Position:    pos,
		Name:        p.Name,
		Category:    string(p.Category),
		Size:        string(p.Size),
		Price:       p.Price,
		Quantity:    p.Quantity,
		Image:       p.Image,
		Priority:    p.Priority,
		Description: p.Description,
		FetchedAt:   fetchedAt,
	}
}

func (r SnapshotRow) Product() Product {
	return Product{
		ID:          r.ProductID,
		Name:        r.Name,
		Category:    Category(r.Category),
		Size:        Size(r.Size),
		Price:       r.Price,
		Quantity:    r.Quantity,
		Image:       r.Image,
		Priority:    r.Priority,
		Description: r.Description,
	}
}
