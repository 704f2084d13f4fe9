package database

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skni-kod/kolo-rest-api/models"
)

type SocialAccountRepo struct {
	db *gorm.DB
}

func NewSocialAccountRepo(db *gorm.DB) *SocialAccountRepo {
	return &SocialAccountRepo{db}
}

func (r *SocialAccountRepo) FindByUser(ctx context.Context, userID uint) ([]models.SocialAccount, error) {
	var accounts []models.SocialAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&accounts).Error
	return accounts, err
}

func (r *SocialAccountRepo) FindByProviderUID(ctx context.Context, provider, uid string) (*models.SocialAccount, error) {
	var account models.SocialAccount
	err := r.db.WithContext(ctx).Where("provider = ? AND uid = ?", provider, uid).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *SocialAccountRepo) FindByID(ctx context.Context, id uint) (*models.SocialAccount, error) {
	var account models.SocialAccount
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// Upsert stores the account, refreshing extra data and last login when it is already connected.
func (r *SocialAccountRepo) Upsert(ctx context.Context, account *models.SocialAccount) error {
	account.LastLogin = time.Now().UTC()
	return r.db.WithContext(ctx).Omit("User").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"extra_data", "last_login"}),
	}).Create(account).Error
}

// CreateUserWithAccount registers a new local user, its profile and the social account atomically.
func (r *SocialAccountRepo) CreateUserWithAccount(ctx context.Context, user *models.User, account *models.SocialAccount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUserWithProfile(tx, user); err != nil {
			return err
		}
		account.UserID = user.ID
		account.LastLogin = time.Now().UTC()
		return tx.Omit("User").Create(account).Error
	})
}

func (r *SocialAccountRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.SocialAccount{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *SocialAccountRepo) CountForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SocialAccount{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
