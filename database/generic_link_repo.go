package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/skni-kod/kolo-rest-api/errs"
	"github.com/skni-kod/kolo-rest-api/models"
)

type GenericLinkRepo struct {
	simpleRepo[models.GenericLink]
}

func NewGenericLinkRepo(db *gorm.DB) *GenericLinkRepo {
	return &GenericLinkRepo{simpleRepo[models.GenericLink]{db}}
}

// TargetExists reports whether (kind, id) names a stored entity.
// Unknown kinds are a validation error.
func (r *GenericLinkRepo) TargetExists(ctx context.Context, kind models.LinkKind, id uint) (bool, error) {
	var model any
	switch kind {
	case models.LinkKindArticle:
		model = &models.Article{}
	case models.LinkKindProfile:
		model = &models.Profile{}
	case models.LinkKindProject:
		model = &models.Project{}
	default:
		return false, errs.NewInvalidFieldError("content_type", fmt.Sprintf("unsupported content type %q", kind))
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindFor lists the links attached to one entity.
func (r *GenericLinkRepo) FindFor(ctx context.Context, kind models.LinkKind, id uint) ([]models.GenericLink, error) {
	var links []models.GenericLink
	err := r.db.WithContext(ctx).
		Where("content_type = ? AND object_id = ?", string(kind), id).
		Order("id").
		Find(&links).Error
	return links, err
}

func deleteLinksFor(tx *gorm.DB, kind models.LinkKind, id uint) error {
	return tx.Where("content_type = ? AND object_id = ?", string(kind), id).Delete(&models.GenericLink{}).Error
}
