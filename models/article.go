package models

import "time"

type ArticleGroup string

const (
	ArticleGroupNews    ArticleGroup = "News"
	ArticleGroupArticle ArticleGroup = "Article"
)

// Article is a news item or a long-form article.
type Article struct {
	ID              uint          `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Title           string        `json:"title" db:"title" gorm:"type:varchar(100);not null"`
	Alias           string        `json:"alias" db:"alias" gorm:"type:varchar(100);not null"`
	Text            string        `json:"text" db:"text" gorm:"type:text;not null"`
	Group           ArticleGroup  `json:"group" db:"article_group" gorm:"column:article_group;type:varchar(10);not null;index"`
	CreationDate    time.Time     `json:"creation_date" db:"creation_date" gorm:"not null"`
	PublicationDate *time.Time    `json:"publication_date" db:"publication_date" gorm:"index"`
	CreatorID       uint          `json:"creator_id" db:"creator_id" gorm:"not null;index"`
	Creator         User          `json:"creator" gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
	Authors         []User        `json:"authors,omitempty" gorm:"many2many:article_authors;constraint:OnDelete:CASCADE"`
	Tags            []Tag         `json:"tags,omitempty" gorm:"many2many:article_tags;constraint:OnDelete:CASCADE"`
	Gallery         []Gallery     `json:"gallery,omitempty" gorm:"many2many:article_gallery;constraint:OnDelete:CASCADE"`
	Links           []GenericLink `json:"links,omitempty" gorm:"polymorphicType:ContentType;polymorphicId:ObjectID;polymorphicValue:article"`
}

type Tag struct {
	ID   uint   `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" db:"name" gorm:"type:varchar(50);not null"`
}

// Gallery is a single image with its display flags.
type Gallery struct {
	ID                  uint   `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	GalleryName         string `json:"gallery_name" db:"gallery_name" gorm:"type:varchar(100);not null"`
	Image               string `json:"image" db:"image" gorm:"type:varchar(255);not null"`
	ThumbnailVisibility bool   `json:"thumbnail_visibility" db:"thumbnail_visibility" gorm:"not null;default:false"`
	TextVisibility      bool   `json:"text_visibility" db:"text_visibility" gorm:"not null;default:false"`
	GalleryVisibility   bool   `json:"gallery_visibility" db:"gallery_visibility" gorm:"not null;default:false"`
}

func (Gallery) TableName() string {
	return "galleries"
}

// Comment belongs to exactly one of an article or a project and may reply to another comment.
type Comment struct {
	ID           uint      `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Text         string    `json:"text" db:"text" gorm:"type:text;not null"`
	CreationDate time.Time `json:"creation_date" db:"creation_date" gorm:"not null;index"`
	ArticleID    *uint     `json:"article" db:"article_id" gorm:"index"`
	Article      *Article  `json:"-" gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`
	ProjectID    *uint     `json:"project" db:"project_id" gorm:"index"`
	Project      *Project  `json:"-" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	ParentID     *uint     `json:"parent" db:"parent_id" gorm:"index"`
	Parent       *Comment  `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	UserID       uint      `json:"user_id" db:"user_id" gorm:"not null;index"`
	User         User      `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// File records a document attached to an article by a profile.
type File struct {
	ID           uint      `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	CreationDate time.Time `json:"creation_date" db:"creation_date" gorm:"not null"`
	ProfileID    uint      `json:"profile_id" db:"profile_id" gorm:"not null;index"`
	Profile      Profile   `json:"user" gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	ArticleID    uint      `json:"article_id" db:"article_id" gorm:"not null;index"`
	Article      Article   `json:"article" gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`
}
