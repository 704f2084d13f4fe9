package dto

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skni-kod/kolo-rest-api/models"
)

type Hardware struct {
	ID           uint                  `json:"id"`
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	SerialNumber string                `json:"serial_number"`
	Status       models.HardwareStatus `json:"status"`
	IsRented     bool                  `json:"is_rented"`
}

// NewHardware reports a status that agrees with IsRented, which is derived from open rentals.
func NewHardware(h models.Hardware) Hardware {
	status := h.Status
	switch {
	case h.IsRented && status != models.HardwareRented:
		log.Warn().Uint("hardwareID", h.ID).Str("stored", string(status)).Msg("hardware has an open rental but is not marked rented")
		status = models.HardwareRented
	case !h.IsRented && status == models.HardwareRented:
		log.Warn().Uint("hardwareID", h.ID).Msg("hardware is marked rented without an open rental")
		status = models.HardwareAvailable
	}
	return Hardware{
		ID:           h.ID,
		Name:         h.Name,
		Description:  h.Description,
		SerialNumber: h.SerialNumber,
		Status:       status,
		IsRented:     h.IsRented,
	}
}

func NewHardwares(items []models.Hardware) []Hardware {
	out := make([]Hardware, 0, len(items))
	for _, h := range items {
		out = append(out, NewHardware(h))
	}
	return out
}

type HardwareWrite struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description" validate:"required"`
	SerialNumber string `json:"serial_number" validate:"required"`
	Status       string `json:"status" validate:"omitempty,oneof=Rented Available Unavailable"`
}

func HardwareWriteFrom(h models.Hardware) HardwareWrite {
	return HardwareWrite{
		Name:         h.Name,
		Description:  h.Description,
		SerialNumber: h.SerialNumber,
		Status:       string(h.Status),
	}
}

func (p HardwareWrite) Apply(h *models.Hardware) {
	h.Name = p.Name
	h.Description = p.Description
	h.SerialNumber = p.SerialNumber
	if p.Status != "" {
		h.Status = models.HardwareStatus(p.Status)
	} else if h.Status == "" {
		h.Status = models.HardwareUnavailable
	}
}

type HardwareRental struct {
	ID         uint       `json:"id"`
	RentalDate time.Time  `json:"rental_date"`
	ReturnDate *time.Time `json:"return_date"`
	User       ShortUser  `json:"user"`
	Hardware   Hardware   `json:"hardware"`
	File       *string    `json:"file"`
}

func NewHardwareRental(r models.HardwareRental) HardwareRental {
	return HardwareRental{
		ID:         r.ID,
		RentalDate: r.RentalDate,
		ReturnDate: r.ReturnDate,
		User:       NewShortUser(r.User),
		Hardware:   NewHardware(r.Hardware),
		File:       r.File,
	}
}

func NewHardwareRentals(rentals []models.HardwareRental) []HardwareRental {
	out := make([]HardwareRental, 0, len(rentals))
	for _, r := range rentals {
		out = append(out, NewHardwareRental(r))
	}
	return out
}

// HardwareRentalWrite leaves the renter to the caller when User is zero.
type HardwareRentalWrite struct {
	User       uint       `json:"user"`
	Hardware   uint       `json:"hardware" validate:"required"`
	RentalDate *time.Time `json:"rental_date"`
	ReturnDate *time.Time `json:"return_date"`
	File       *string    `json:"file" validate:"omitempty,max=255"`
}

func HardwareRentalWriteFrom(r models.HardwareRental) HardwareRentalWrite {
	rented := r.RentalDate
	return HardwareRentalWrite{
		User:       r.UserID,
		Hardware:   r.HardwareID,
		RentalDate: &rented,
		ReturnDate: r.ReturnDate,
		File:       r.File,
	}
}

func (p HardwareRentalWrite) check() map[string]string {
	if p.RentalDate != nil && p.ReturnDate != nil && p.ReturnDate.Before(*p.RentalDate) {
		return map[string]string{"return_date": "Return date cannot be earlier than the rental date."}
	}
	return nil
}

func (p HardwareRentalWrite) Apply(r *models.HardwareRental) {
	r.UserID = p.User
	r.HardwareID = p.Hardware
	r.ReturnDate = p.ReturnDate
	r.File = p.File
	if p.RentalDate != nil {
		r.RentalDate = *p.RentalDate
	} else if r.RentalDate.IsZero() {
		r.RentalDate = time.Now().UTC()
	}
}
