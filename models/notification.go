package models

import "time"

// Notification types.
const (
	NotificationConfirmation = "confirmation"
	NotificationCancellation = "cancellation"
	NotificationReminder     = "reminder"
	NotificationUpdate       = "update"
)

type Notification struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	UserID        uint         `gorm:"not null;index:idx_user_read" json:"user_id"`
	User          *User        `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	ReservationID uint         `gorm:"not null;index" json:"reservation_id"`
	Reservation   *Reservation `gorm:"foreignKey:ReservationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"reservation,omitempty"`
	Type          string       `gorm:"type:varchar(20);not null;default:'confirmation'" json:"type"`
	Title         string       `gorm:"type:varchar(200);not null" json:"title"`
	Message       string       `gorm:"type:text;not null" json:"message"`
	Read          bool         `gorm:"not null;default:false;index:idx_user_read" json:"read"`
	ReadAt        *time.Time   `json:"read_at,omitempty"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
}
