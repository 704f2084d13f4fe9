package database

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skni-kod/kolo-rest-api/errs"
	"github.com/skni-kod/kolo-rest-api/models"
)

const isRentedColumn = "EXISTS (SELECT 1 FROM hardware_rentals hr WHERE hr.hardware_id = hardwares.id AND hr.return_date IS NULL) AS is_rented"

// withRented selects hardware together with the rental state derived from open rentals.
func withRented(q *gorm.DB) *gorm.DB {
	return q.Select("hardwares.*, " + isRentedColumn)
}

type HardwareRepo struct {
	db *gorm.DB
}

func NewHardwareRepo(db *gorm.DB) *HardwareRepo {
	return &HardwareRepo{db}
}

func (r *HardwareRepo) FindAll(ctx context.Context, page Page) ([]models.Hardware, int64, error) {
	var items []models.Hardware
	total, err := listPage(r.db.WithContext(ctx).Model(&models.Hardware{}), page, "id", &items, withRented)
	return items, total, err
}

func (r *HardwareRepo) FindByID(ctx context.Context, id uint) (*models.Hardware, error) {
	var item models.Hardware
	if err := withRented(r.db.WithContext(ctx).Model(&models.Hardware{})).Where("hardwares.id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Add creates the hardware and aligns its stored status with the open rentals.
func (r *HardwareRepo) Add(ctx context.Context, item *models.Hardware) error {
	if item.Status == "" {
		item.Status = models.HardwareUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return syncHardwareStatus(tx, item.ID)
	})
}

// Update saves the hardware. A stored status contradicting the open rentals is corrected in the same transaction.
func (r *HardwareRepo) Update(ctx context.Context, item *models.Hardware) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(item).Select("name", "description", "serial_number", "status").Updates(item).Error
		if err != nil {
			return err
		}
		return syncHardwareStatus(tx, item.ID)
	})
}

// Delete removes the hardware and its rental history.
func (r *HardwareRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Hardware
		if err := tx.Select("id").First(&item, id).Error; err != nil {
			return err
		}
		if err := tx.Where("hardware_id = ?", id).Delete(&models.HardwareRental{}).Error; err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
}

// syncHardwareStatus stores Rented while an open rental exists and Available once it is returned.
// Unavailable hardware without an open rental stays Unavailable.
func syncHardwareStatus(tx *gorm.DB, hardwareID uint) error {
	var item models.Hardware
	if err := withRented(tx.Model(&models.Hardware{})).Where("hardwares.id = ?", hardwareID).First(&item).Error; err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}

	status := item.Status
	switch {
	case item.IsRented:
		status = models.HardwareRented
	case item.Status == models.HardwareRented:
		status = models.HardwareAvailable
	}
	if status == item.Status {
		return nil
	}
	return tx.Model(&models.Hardware{}).Where("id = ?", hardwareID).Update("status", string(status)).Error
}

type HardwareRentalRepo struct {
	db *gorm.DB
}

func NewHardwareRentalRepo(db *gorm.DB) *HardwareRentalRepo {
	return &HardwareRentalRepo{db}
}

func preloadRental(q *gorm.DB) *gorm.DB {
	return preloadShortUser("User.")(q).Preload("Hardware", withRented)
}

func (r *HardwareRentalRepo) FindAll(ctx context.Context, page Page) ([]models.HardwareRental, int64, error) {
	var rentals []models.HardwareRental
	total, err := listPage(r.db.WithContext(ctx).Model(&models.HardwareRental{}), page, "id", &rentals, preloadRental)
	return rentals, total, err
}

func (r *HardwareRentalRepo) FindByID(ctx context.Context, id uint) (*models.HardwareRental, error) {
	var rental models.HardwareRental
	if err := preloadRental(r.db.WithContext(ctx)).First(&rental, id).Error; err != nil {
		return nil, err
	}
	return &rental, nil
}

// Add records a rental. Hardware can have at most one open rental.
func (r *HardwareRentalRepo) Add(ctx context.Context, rental *models.HardwareRental) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRentalRefs(tx, rental); err != nil {
			return err
		}
		if rental.IsOpen() {
			if err := ensureNoOpenRental(tx, rental.HardwareID, 0); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Create(rental).Error; err != nil {
			return err
		}
		return syncHardwareStatus(tx, rental.HardwareID)
	})
}

// Update saves the rental and resynchronizes the status of the previous and the current hardware.
func (r *HardwareRentalRepo) Update(ctx context.Context, rental *models.HardwareRental) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var previous models.HardwareRental
		if err := tx.Select("id", "hardware_id").First(&previous, rental.ID).Error; err != nil {
			return err
		}
		if err := checkRentalRefs(tx, rental); err != nil {
			return err
		}
		if rental.IsOpen() {
			if err := ensureNoOpenRental(tx, rental.HardwareID, rental.ID); err != nil {
				return err
			}
		}
		err := tx.Model(rental).Omit(clause.Associations).
			Select("user_id", "hardware_id", "rental_date", "return_date", "file").
			Updates(rental).Error
		if err != nil {
			return err
		}
		if previous.HardwareID != rental.HardwareID {
			if err := syncHardwareStatus(tx, previous.HardwareID); err != nil {
				return err
			}
		}
		return syncHardwareStatus(tx, rental.HardwareID)
	})
}

// Return closes an open rental at the given time.
func (r *HardwareRentalRepo) Return(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rental models.HardwareRental
		if err := tx.First(&rental, id).Error; err != nil {
			return err
		}
		if !rental.IsOpen() {
			return errs.NewConflictError("rental already returned")
		}
		if err := tx.Model(&rental).Update("return_date", at).Error; err != nil {
			return err
		}
		return syncHardwareStatus(tx, rental.HardwareID)
	})
}

func (r *HardwareRentalRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rental models.HardwareRental
		if err := tx.Select("id", "hardware_id").First(&rental, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&rental).Error; err != nil {
			return err
		}
		return syncHardwareStatus(tx, rental.HardwareID)
	})
}

func checkRentalRefs(tx *gorm.DB, rental *models.HardwareRental) error {
	if err := mustExist[models.User](tx, rental.UserID, "user"); err != nil {
		return err
	}
	return mustExist[models.Hardware](tx, rental.HardwareID, "hardware")
}

func ensureNoOpenRental(tx *gorm.DB, hardwareID, exceptRentalID uint) error {
	var count int64
	err := tx.Model(&models.HardwareRental{}).
		Where("hardware_id = ? AND return_date IS NULL AND id <> ?", hardwareID, exceptRentalID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return errs.NewConflictError("hardware is already rented")
	}
	return nil
}
