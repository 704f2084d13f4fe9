package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/skni-kod/kolo-rest-api/models"
)

type GroupRepo struct {
	db *gorm.DB
}

func NewGroupRepo(db *gorm.DB) *GroupRepo {
	return &GroupRepo{db}
}

func (r *GroupRepo) FindAll(ctx context.Context, page Page) ([]models.Group, int64, error) {
	var groups []models.Group
	total, err := listPage(r.db.WithContext(ctx).Model(&models.Group{}), page, "id", &groups, func(q *gorm.DB) *gorm.DB {
		return q.Preload("Permissions")
	})
	return groups, total, err
}

func (r *GroupRepo) FindByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Preload("Permissions").First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// Add inserts the group with its permission codenames.
func (r *GroupRepo) Add(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// Update renames the group and, when codenames is set, replaces its permissions.
func (r *GroupRepo) Update(ctx context.Context, group *models.Group, codenames *[]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(group).Omit("Permissions").Update("name", group.Name).Error; err != nil {
			return err
		}
		if codenames == nil {
			return nil
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.GroupPermission{}).Error; err != nil {
			return err
		}
		perms := make([]models.GroupPermission, 0, len(*codenames))
		seen := make(map[string]bool, len(*codenames))
		for _, c := range *codenames {
			if seen[c] {
				continue
			}
			seen[c] = true
			perms = append(perms, models.GroupPermission{GroupID: group.ID, Codename: c})
		}
		if len(perms) > 0 {
			if err := tx.Create(&perms).Error; err != nil {
				return err
			}
		}
		group.Permissions = perms
		return nil
	})
}

func (r *GroupRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_groups WHERE group_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupPermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
}
