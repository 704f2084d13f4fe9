package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/skni-kod/kolo-rest-api/models"
)

type TagRepo struct {
	simpleRepo[models.Tag]
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{simpleRepo[models.Tag]{db}}
}

// Delete removes the tag and detaches it from every article.
func (r *TagRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		if err := tx.First(&tag, id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM article_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
}

type GalleryRepo struct {
	simpleRepo[models.Gallery]
}

func NewGalleryRepo(db *gorm.DB) *GalleryRepo {
	return &GalleryRepo{simpleRepo[models.Gallery]{db}}
}

// FindAll lists images, optionally only those attached to one article.
func (r *GalleryRepo) FindAll(ctx context.Context, articleID *uint, page Page) ([]models.Gallery, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Gallery{})
	if articleID != nil {
		q = q.Where("galleries.id IN (SELECT gallery_id FROM article_gallery WHERE article_id = ?)", *articleID)
	}
	var items []models.Gallery
	total, err := listPage(q, page, "id", &items)
	return items, total, err
}

// Delete removes the image and detaches it from articles, projects and sections.
func (r *GalleryRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Gallery
		if err := tx.First(&item, id).Error; err != nil {
			return err
		}
		for _, stmt := range []string{
			"DELETE FROM article_gallery WHERE gallery_id = ?",
			"DELETE FROM project_gallery WHERE gallery_id = ?",
			"DELETE FROM section_gallery WHERE gallery_id = ?",
		} {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&item).Error
	})
}
