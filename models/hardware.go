package models

import "time"

type HardwareStatus string

const (
	HardwareRented      HardwareStatus = "Rented"
	HardwareAvailable   HardwareStatus = "Available"
	HardwareUnavailable HardwareStatus = "Unavailable"
)

func (s HardwareStatus) Valid() bool {
	switch s {
	case HardwareRented, HardwareAvailable, HardwareUnavailable:
		return true
	}
	return false
}

type Hardware struct {
	ID           uint           `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Name         string         `json:"name" db:"name" gorm:"type:text;not null"`
	Description  string         `json:"description" db:"description" gorm:"type:text;not null"`
	SerialNumber string         `json:"serial_number" db:"serial_number" gorm:"type:text;not null"`
	Status       HardwareStatus `json:"status" db:"status" gorm:"type:varchar(20);not null;default:'Unavailable'"`

	// IsRented is filled by queries from open rentals and is never stored.
	IsRented bool `json:"is_rented" gorm:"->;-:migration"`
}

func (Hardware) TableName() string {
	return "hardwares"
}

// HardwareRental is open while ReturnDate is nil.
type HardwareRental struct {
	ID         uint       `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	UserID     uint       `json:"user_id" db:"user_id" gorm:"not null;index"`
	User       User       `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	HardwareID uint       `json:"hardware_id" db:"hardware_id" gorm:"not null;index"`
	Hardware   Hardware   `json:"hardware" gorm:"foreignKey:HardwareID;constraint:OnDelete:CASCADE"`
	RentalDate time.Time  `json:"rental_date" db:"rental_date" gorm:"not null"`
	ReturnDate *time.Time `json:"return_date" db:"return_date" gorm:"index"`
	File       *string    `json:"file" db:"file" gorm:"type:varchar(255)"`
}

func (r HardwareRental) IsOpen() bool {
	return r.ReturnDate == nil
}
