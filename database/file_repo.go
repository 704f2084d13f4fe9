package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skni-kod/kolo-rest-api/models"
)

type FileRepo struct {
	db *gorm.DB
}

func NewFileRepo(db *gorm.DB) *FileRepo {
	return &FileRepo{db}
}

func preloadFile(q *gorm.DB) *gorm.DB {
	q = q.
		Preload("Profile.User.Groups.Permissions").
		Preload("Profile.User.Profile").
		Preload("Profile.Links").
		Preload("Profile.ProfileLinks")
	return preloadArticle("Article.")(q)
}

func (r *FileRepo) FindAll(ctx context.Context, page Page) ([]models.File, int64, error) {
	var files []models.File
	total, err := listPage(r.db.WithContext(ctx).Model(&models.File{}), page, "id", &files, preloadFile)
	return files, total, err
}

func (r *FileRepo) FindByID(ctx context.Context, id uint) (*models.File, error) {
	var file models.File
	if err := preloadFile(r.db.WithContext(ctx)).First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *FileRepo) Add(ctx context.Context, file *models.File) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkFileRefs(tx, file); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(file).Error
	})
}

func (r *FileRepo) Update(ctx context.Context, file *models.File) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkFileRefs(tx, file); err != nil {
			return err
		}
		return tx.Model(file).Omit(clause.Associations).
			Select("creation_date", "profile_id", "article_id").
			Updates(file).Error
	})
}

func checkFileRefs(tx *gorm.DB, file *models.File) error {
	if err := mustExist[models.Profile](tx, file.ProfileID, "user"); err != nil {
		return err
	}
	return mustExist[models.Article](tx, file.ArticleID, "article")
}

func (r *FileRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.File{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
