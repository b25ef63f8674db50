package models

import "time"

// Table status values.
const (
	TableAvailable   = "available"
	TableOccupied    = "occupied"
	TableMaintenance = "maintenance"
)

// TableCapacity is the fixed seating capacity of every table. It is derived,
// never stored per table.
const TableCapacity = 4

type Table struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	RestaurantID uint        `gorm:"not null;uniqueIndex:idx_restaurant_number" json:"restaurant_id"`
	Restaurant   *Restaurant `gorm:"foreignKey:RestaurantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"restaurant,omitempty"`
	Number       int         `gorm:"not null;uniqueIndex:idx_restaurant_number" json:"number"`
	Status       string      `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	Active       bool        `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null" json:"updated_at"`
}

// Capacity returns the fixed per-table seating capacity.
func (t *Table) Capacity() int {
	return TableCapacity
}

// IsReservable reports whether the table may take part in an allocation.
func (t *Table) IsReservable() bool {
	return t.Active && t.Status == TableAvailable
}

func ValidTableStatus(status string) bool {
	switch status {
	case TableAvailable, TableOccupied, TableMaintenance:
		return true
	}
	return false
}
