package models

import "time"

// Reservation lifecycle statuses.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationConcluded = "concluded"
)

// Reservation is a request to occupy one or more tables at a restaurant for
// a given date and time. A reservation may be made by a registered user or
// as a guest; guests carry only the contact fields.
type Reservation struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Code         string      `gorm:"type:varchar(36);uniqueIndex;not null" json:"code"`
	RestaurantID uint        `gorm:"not null;index:idx_restaurant_slot" json:"restaurant_id"`
	Restaurant   *Restaurant `gorm:"foreignKey:RestaurantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"restaurant,omitempty"`
	UserID       *uint       `gorm:"index" json:"user_id,omitempty"`
	User         *User       `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"user,omitempty"`

	// Zero-padded YYYY-MM-DD / HH:MM so SQL range comparisons stay
	// lexicographic across mysql and sqlite.
	ReservationDate string `gorm:"type:varchar(10);not null;index:idx_restaurant_slot" json:"reservation_date"`
	ReservationTime string `gorm:"type:varchar(5);not null;index:idx_restaurant_slot" json:"reservation_time"`

	PartySize     int    `gorm:"not null" json:"party_size"`
	CustomerName  string `gorm:"type:varchar(200);not null" json:"customer_name"`
	CustomerPhone string `gorm:"type:varchar(20);not null" json:"customer_phone"`
	CustomerEmail string `gorm:"type:varchar(255)" json:"customer_email"`
	Notes         string `gorm:"type:text" json:"notes"`

	Status    string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// The reservation owns its table links; they die with it.
	Tables []ReservationTable `gorm:"foreignKey:ReservationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"tables,omitempty"`
}

// IsTerminal reports whether no further parameter mutation is permitted.
func (r *Reservation) IsTerminal() bool {
	return r.Status == ReservationCancelled || r.Status == ReservationConcluded
}

// ReservationTable links one reservation to one table. It is the ground
// truth for which tables a reservation holds; tables carry no back pointer.
type ReservationTable struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReservationID uint      `gorm:"not null;uniqueIndex:idx_reservation_table" json:"reservation_id"`
	TableID       uint      `gorm:"not null;uniqueIndex:idx_reservation_table" json:"table_id"`
	Table         *Table    `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"table,omitempty"`
	LinkedAt      time.Time `gorm:"not null;autoCreateTime" json:"linked_at"`
}
