package models

import "time"

// MaintenanceLog records manual table status changes (occupied/maintenance
// toggles done by staff, independent of reservation links).
type MaintenanceLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TableID    uint      `gorm:"not null;index" json:"table_id"`
	Table      *Table    `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"table,omitempty"`
	UserID     uint      `gorm:"not null" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user,omitempty"`
	FromStatus string    `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus   string    `gorm:"type:varchar(20);not null" json:"to_status"`
	Notes      string    `gorm:"type:varchar(255)" json:"notes"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}
