package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skni-kod/kolo-rest-api/models"
)

type SponsorRepo struct {
	simpleRepo[models.Sponsor]
}

func NewSponsorRepo(db *gorm.DB) *SponsorRepo {
	return &SponsorRepo{simpleRepo[models.Sponsor]{db}}
}

type FooterLinkRepo struct {
	simpleRepo[models.FooterLink]
}

func NewFooterLinkRepo(db *gorm.DB) *FooterLinkRepo {
	return &FooterLinkRepo{simpleRepo[models.FooterLink]{db}}
}

type PreferenceRepo struct {
	db *gorm.DB
}

func NewPreferenceRepo(db *gorm.DB) *PreferenceRepo {
	return &PreferenceRepo{db}
}

// FindAll returns every stored preference override.
func (r *PreferenceRepo) FindAll(ctx context.Context) ([]models.Preference, error) {
	var prefs []models.Preference
	err := r.db.WithContext(ctx).Order("section, name").Find(&prefs).Error
	return prefs, err
}

func (r *PreferenceRepo) Find(ctx context.Context, section, name string) (*models.Preference, error) {
	var pref models.Preference
	err := r.db.WithContext(ctx).Where("section = ? AND name = ?", section, name).First(&pref).Error
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// Set stores the value of a preference, creating the row on first write.
func (r *PreferenceRepo) Set(ctx context.Context, pref *models.Preference) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "section"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(pref).Error
}
