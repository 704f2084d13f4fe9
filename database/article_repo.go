package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skni-kod/kolo-rest-api/models"
)

// ArticleFilter narrows the article list. Set criteria are combined with AND.
type ArticleFilter struct {
	TagID      *uint
	TagName    string
	AuthorID   *uint
	AuthorName string
	Group      models.ArticleGroup
}

// ArticleRefs carries the many-to-many identifiers of an article write.
// A nil slice leaves that association as stored.
type ArticleRefs struct {
	Authors *[]uint
	Tags    *[]uint
	Gallery *[]uint
}

// unpublished articles sort after published ones on every dialect
const articleOrder = "CASE WHEN publication_date IS NULL THEN 1 ELSE 0 END, publication_date DESC, id DESC"

type ArticleRepo struct {
	db *gorm.DB
}

func NewArticleRepo(db *gorm.DB) *ArticleRepo {
	return &ArticleRepo{db}
}

func preloadArticle(prefix string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.
			Preload(prefix + "Creator.Profile.Links").
			Preload(prefix + "Authors.Profile.Links").
			Preload(prefix + "Tags").
			Preload(prefix + "Gallery").
			Preload(prefix + "Links")
	}
}

func (f ArticleFilter) scope(q *gorm.DB) *gorm.DB {
	if f.TagID != nil {
		q = q.Where("articles.id IN (SELECT article_id FROM article_tags WHERE tag_id = ?)", *f.TagID)
	}
	if f.TagName != "" {
		q = q.Where("articles.id IN (SELECT at.article_id FROM article_tags at JOIN tags t ON t.id = at.tag_id WHERE t.name = ?)", f.TagName)
	}
	if f.AuthorID != nil {
		q = q.Where("articles.id IN (SELECT article_id FROM article_authors WHERE user_id = ?)", *f.AuthorID)
	}
	if f.AuthorName != "" {
		q = q.Where("articles.id IN (SELECT aa.article_id FROM article_authors aa JOIN users u ON u.id = aa.user_id WHERE u.username = ?)", f.AuthorName)
	}
	if f.Group != "" {
		q = q.Where("articles.article_group = ?", string(f.Group))
	}
	return q
}

// FindAll returns the matching articles, latest publication first.
func (r *ArticleRepo) FindAll(ctx context.Context, filter ArticleFilter, page Page) ([]models.Article, int64, error) {
	var articles []models.Article
	q := filter.scope(r.db.WithContext(ctx).Model(&models.Article{}))
	total, err := listPage(q, page, articleOrder, &articles, preloadArticle(""))
	return articles, total, err
}

func (r *ArticleRepo) FindByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	if err := preloadArticle("")(r.db.WithContext(ctx)).First(&article, id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// CommentCounts returns the number of comments per article id.
func (r *ArticleRepo) CommentCounts(ctx context.Context, articleIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(articleIDs))
	if len(articleIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		ArticleID uint
		Total     int64
	}
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("article_id, COUNT(*) AS total").
		Where("article_id IN ?", articleIDs).
		Group("article_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ArticleID] = row.Total
	}
	return counts, nil
}

// Add inserts the article and its associations in one transaction.
func (r *ArticleRepo) Add(ctx context.Context, article *models.Article, refs ArticleRefs) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist[models.User](tx, article.CreatorID, "creator"); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(article).Error; err != nil {
			return err
		}
		return r.replaceRefs(tx, article, refs)
	})
}

// Update saves every scalar column and the associations named in refs.
func (r *ArticleRepo) Update(ctx context.Context, article *models.Article, refs ArticleRefs) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist[models.User](tx, article.CreatorID, "creator"); err != nil {
			return err
		}
		err := tx.Model(article).Omit(clause.Associations).
			Select("title", "alias", "text", "article_group", "creation_date", "publication_date", "creator_id").
			Updates(article).Error
		if err != nil {
			return err
		}
		return r.replaceRefs(tx, article, refs)
	})
}

func (r *ArticleRepo) replaceRefs(tx *gorm.DB, article *models.Article, refs ArticleRefs) error {
	if err := replaceMany[models.User](tx, article, "Authors", "authors", refs.Authors); err != nil {
		return err
	}
	if err := replaceMany[models.Tag](tx, article, "Tags", "tags", refs.Tags); err != nil {
		return err
	}
	return replaceMany[models.Gallery](tx, article, "Gallery", "gallery", refs.Gallery)
}

// Delete removes the article with its comments, files, links and associations.
func (r *ArticleRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteArticle(tx, id)
	})
}

func deleteArticle(tx *gorm.DB, id uint) error {
	var article models.Article
	if err := tx.Select("id").First(&article, id).Error; err != nil {
		return err
	}

	var commentIDs []uint
	if err := tx.Model(&models.Comment{}).Where("article_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if err := deleteCommentTrees(tx, commentIDs); err != nil {
		return err
	}
	if err := tx.Where("article_id = ?", id).Delete(&models.File{}).Error; err != nil {
		return err
	}
	if err := deleteLinksFor(tx, models.LinkKindArticle, id); err != nil {
		return err
	}
	for _, stmt := range []string{
		"DELETE FROM article_authors WHERE article_id = ?",
		"DELETE FROM article_tags WHERE article_id = ?",
		"DELETE FROM article_gallery WHERE article_id = ?",
	} {
		if err := tx.Exec(stmt, id).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&article).Error
}
