package models

import "time"

type Restaurant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(150);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Address     string    `gorm:"type:varchar(255);not null" json:"address"`
	City        string    `gorm:"type:varchar(100);not null" json:"city"`
	State       string    `gorm:"type:varchar(2);not null" json:"state"`
	PostalCode  string    `gorm:"type:varchar(10)" json:"postal_code"`
	Phone       string    `gorm:"type:varchar(20)" json:"phone"`
	Email       string    `gorm:"type:varchar(255);unique;not null" json:"email"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	Owner       *User     `gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"owner,omitempty"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`

	// Deleting a restaurant cascades to its tables and reservations.
	Tables       []Table       `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"tables,omitempty"`
	Reservations []Reservation `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// RestaurantStaff links a user to a restaurant as staff or secondary admin.
// A user is linked to a given restaurant at most once.
type RestaurantStaff struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	RestaurantID uint        `gorm:"not null;uniqueIndex:idx_restaurant_user" json:"restaurant_id"`
	Restaurant   *Restaurant `gorm:"foreignKey:RestaurantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"restaurant,omitempty"`
	UserID       uint        `gorm:"not null;uniqueIndex:idx_restaurant_user" json:"user_id"`
	User         *User       `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	Role         string      `gorm:"type:varchar(50);not null;default:'staff'" json:"role"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
}
