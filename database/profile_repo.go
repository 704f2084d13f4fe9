package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/skni-kod/kolo-rest-api/models"
)

type ProfileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{db}
}

func preloadProfile(q *gorm.DB) *gorm.DB {
	return q.Preload("User.Groups.Permissions").Preload("User.Profile").Preload("Links").Preload("ProfileLinks")
}

func (r *ProfileRepo) FindAll(ctx context.Context, page Page) ([]models.Profile, int64, error) {
	var profiles []models.Profile
	total, err := listPage(r.db.WithContext(ctx).Model(&models.Profile{}), page, "id", &profiles, preloadProfile)
	return profiles, total, err
}

func (r *ProfileRepo) FindByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := preloadProfile(r.db.WithContext(ctx)).First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepo) FindByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := preloadProfile(r.db.WithContext(ctx)).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update saves the editable profile columns. The owning user never changes.
func (r *ProfileRepo) Update(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Model(profile).
		Select("description", "avatar", "index_number").
		Updates(profile).Error
}

// Delete removes the profile together with its user, since neither exists without the other.
func (r *ProfileRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := tx.Select("id", "user_id").First(&profile, id).Error; err != nil {
			return err
		}
		return deleteUser(tx, profile.UserID)
	})
}

type ProfileLinkRepo struct {
	simpleRepo[models.ProfileLink]
}

func NewProfileLinkRepo(db *gorm.DB) *ProfileLinkRepo {
	return &ProfileLinkRepo{simpleRepo[models.ProfileLink]{db}}
}

// FindByProfile lists the links of one profile.
func (r *ProfileLinkRepo) FindByProfile(ctx context.Context, profileID uint) ([]models.ProfileLink, error) {
	var links []models.ProfileLink
	err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Order("id").Find(&links).Error
	return links, err
}

// OwnerID returns the id of the user owning the profile.
func (r *ProfileLinkRepo) OwnerID(ctx context.Context, profileID uint) (uint, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&profile, profileID).Error; err != nil {
		return 0, err
	}
	return profile.UserID, nil
}
