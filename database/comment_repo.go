package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skni-kod/kolo-rest-api/models"
)

const commentOrder = "creation_date DESC, id DESC"

type CommentFilter struct {
	ArticleID *uint
	ProjectID *uint
}

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

var preloadCommentUser = preloadShortUser("User.")

func (r *CommentRepo) FindAll(ctx context.Context, filter CommentFilter, page Page) ([]models.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Comment{})
	if filter.ArticleID != nil {
		q = q.Where("article_id = ?", *filter.ArticleID)
	}
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	var comments []models.Comment
	total, err := listPage(q, page, commentOrder, &comments, preloadCommentUser)
	return comments, total, err
}

func (r *CommentRepo) FindByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := preloadCommentUser(r.db.WithContext(ctx)).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Children returns the direct replies of every parent, newest first.
func (r *CommentRepo) Children(ctx context.Context, parentIDs []uint, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	if len(parentIDs) == 0 {
		return comments, nil
	}
	q := preloadCommentUser(r.db.WithContext(ctx)).Where("parent_id IN ?", parentIDs).Order(commentOrder)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&comments).Error
	return comments, err
}

func (r *CommentRepo) Add(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

// Update saves the text and the placement of the comment. The author never changes.
func (r *CommentRepo) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Model(comment).Omit(clause.Associations).
		Select("text", "creation_date", "article_id", "project_id", "parent_id").
		Updates(comment).Error
}

// Delete removes the comment and every reply below it.
func (r *CommentRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Select("id").First(&comment, id).Error; err != nil {
			return err
		}
		return deleteCommentTrees(tx, []uint{id})
	})
}

// IsDescendant reports whether candidate lies in the reply tree below root.
func (r *CommentRepo) IsDescendant(ctx context.Context, root, candidate uint) (bool, error) {
	levels, err := collectCommentTree(r.db.WithContext(ctx), []uint{root})
	if err != nil {
		return false, err
	}
	for _, level := range levels[1:] {
		for _, id := range level {
			if id == candidate {
				return true, nil
			}
		}
	}
	return false, nil
}

// collectCommentTree walks replies breadth first and returns the ids level by level, roots first.
func collectCommentTree(tx *gorm.DB, roots []uint) ([][]uint, error) {
	seen := make(map[uint]bool, len(roots))
	level := make([]uint, 0, len(roots))
	for _, id := range roots {
		if !seen[id] {
			seen[id] = true
			level = append(level, id)
		}
	}

	var levels [][]uint
	for len(level) > 0 {
		levels = append(levels, level)
		var children []uint
		if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", level).Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		next := make([]uint, 0, len(children))
		for _, id := range children {
			if !seen[id] {
				seen[id] = true
				next = append(next, id)
			}
		}
		level = next
	}
	return levels, nil
}

// deleteCommentTrees deletes the given comments and all their replies, deepest level first.
func deleteCommentTrees(tx *gorm.DB, roots []uint) error {
	if len(roots) == 0 {
		return nil
	}
	levels, err := collectCommentTree(tx, roots)
	if err != nil {
		return err
	}
	for i := len(levels) - 1; i >= 0; i-- {
		if err := tx.Where("id IN ?", levels[i]).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
	}
	return nil
}
