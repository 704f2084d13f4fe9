package dto

import (
	"time"

	"github.com/skni-kod/kolo-rest-api/models"
)

type Tag struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func NewTag(t models.Tag) Tag {
	return Tag{ID: t.ID, Name: t.Name}
}

func NewTags(tags []models.Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, NewTag(t))
	}
	return out
}

type TagWrite struct {
	Name string `json:"name" validate:"required,max=50"`
}

func TagWriteFrom(t models.Tag) TagWrite {
	return TagWrite{Name: t.Name}
}

func (p TagWrite) Apply(t *models.Tag) {
	t.Name = p.Name
}

type Gallery struct {
	ID                  uint   `json:"id"`
	GalleryName         string `json:"gallery_name"`
	Image               string `json:"image"`
	ThumbnailVisibility bool   `json:"thumbnail_visibility"`
	TextVisibility      bool   `json:"text_visibility"`
	GalleryVisibility   bool   `json:"gallery_visibility"`
}

func NewGallery(g models.Gallery) Gallery {
	return Gallery{
		ID:                  g.ID,
		GalleryName:         g.GalleryName,
		Image:               g.Image,
		ThumbnailVisibility: g.ThumbnailVisibility,
		TextVisibility:      g.TextVisibility,
		GalleryVisibility:   g.GalleryVisibility,
	}
}

func NewGalleries(items []models.Gallery) []Gallery {
	out := make([]Gallery, 0, len(items))
	for _, g := range items {
		out = append(out, NewGallery(g))
	}
	return out
}

type GalleryWrite struct {
	GalleryName         string `json:"gallery_name" validate:"required,max=100"`
	Image               string `json:"image" validate:"required,max=255"`
	ThumbnailVisibility bool   `json:"thumbnail_visibility"`
	TextVisibility      bool   `json:"text_visibility"`
	GalleryVisibility   bool   `json:"gallery_visibility"`
}

func GalleryWriteFrom(g models.Gallery) GalleryWrite {
	return GalleryWrite{
		GalleryName:         g.GalleryName,
		Image:               g.Image,
		ThumbnailVisibility: g.ThumbnailVisibility,
		TextVisibility:      g.TextVisibility,
		GalleryVisibility:   g.GalleryVisibility,
	}
}

func (p GalleryWrite) Apply(g *models.Gallery) {
	g.GalleryName = p.GalleryName
	g.Image = p.Image
	g.ThumbnailVisibility = p.ThumbnailVisibility
	g.TextVisibility = p.TextVisibility
	g.GalleryVisibility = p.GalleryVisibility
}

type Article struct {
	ID              uint                `json:"id"`
	Alias           string              `json:"alias"`
	Title           string              `json:"title"`
	Text            string              `json:"text"`
	CreationDate    time.Time           `json:"creation_date"`
	Group           models.ArticleGroup `json:"group"`
	PublicationDate *time.Time          `json:"publication_date"`
	Creator         ShortUser           `json:"creator"`
	Authors         []ShortUser         `json:"authors"`
	Tags            []Tag               `json:"tags"`
	CommentsNumber  int64               `json:"comments_number"`
	Gallery         []Gallery           `json:"gallery"`
	Links           []GenericLink       `json:"links"`
}

func NewArticle(a models.Article, commentsNumber int64) Article {
	return Article{
		ID:              a.ID,
		Alias:           a.Alias,
		Title:           a.Title,
		Text:            a.Text,
		CreationDate:    a.CreationDate,
		Group:           a.Group,
		PublicationDate: a.PublicationDate,
		Creator:         NewShortUser(a.Creator),
		Authors:         NewShortUsers(a.Authors),
		Tags:            NewTags(a.Tags),
		CommentsNumber:  commentsNumber,
		Gallery:         NewGalleries(a.Gallery),
		Links:           NewGenericLinks(a.Links),
	}
}

// NewArticles maps articles with the comment count of each id taken from counts.
func NewArticles(articles []models.Article, counts map[uint]int64) []Article {
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		out = append(out, NewArticle(a, counts[a.ID]))
	}
	return out
}

// ArticleWrite references related rows by id. A nil list leaves that relation as it is.
type ArticleWrite struct {
	Title           string     `json:"title" validate:"required,max=100"`
	Alias           string     `json:"alias" validate:"required,max=100"`
	Text            string     `json:"text" validate:"required"`
	Group           string     `json:"group" validate:"required,oneof=News Article"`
	CreationDate    *time.Time `json:"creation_date"`
	PublicationDate *time.Time `json:"publication_date"`
	Creator         uint       `json:"creator"`
	Authors         *[]uint    `json:"authors,omitempty"`
	Tags            *[]uint    `json:"tags,omitempty"`
	Gallery         *[]uint    `json:"gallery,omitempty"`
}

func ArticleWriteFrom(a models.Article) ArticleWrite {
	created := a.CreationDate
	return ArticleWrite{
		Title:           a.Title,
		Alias:           a.Alias,
		Text:            a.Text,
		Group:           string(a.Group),
		CreationDate:    &created,
		PublicationDate: a.PublicationDate,
		Creator:         a.CreatorID,
	}
}

// Apply copies the scalar fields. An unset creation date keeps the stored one, or now for new rows.
func (p ArticleWrite) Apply(a *models.Article) {
	a.Title = p.Title
	a.Alias = p.Alias
	a.Text = p.Text
	a.Group = models.ArticleGroup(p.Group)
	a.PublicationDate = p.PublicationDate
	a.CreatorID = p.Creator
	if p.CreationDate != nil {
		a.CreationDate = *p.CreationDate
	} else if a.CreationDate.IsZero() {
		a.CreationDate = time.Now().UTC()
	}
}

// Comment is a node of a comment tree. Children are newest first.
type Comment struct {
	ID           uint      `json:"id"`
	Text         string    `json:"text"`
	CreationDate time.Time `json:"creation_date"`
	Article      *uint     `json:"article"`
	Project      *uint     `json:"project"`
	Parent       *uint     `json:"parent"`
	User         ShortUser `json:"user"`
	Children     []Comment `json:"children"`
}

func NewComment(c models.Comment) Comment {
	return Comment{
		ID:           c.ID,
		Text:         c.Text,
		CreationDate: c.CreationDate,
		Article:      c.ArticleID,
		Project:      c.ProjectID,
		Parent:       c.ParentID,
		User:         NewShortUser(c.User),
		Children:     []Comment{},
	}
}

type CommentWrite struct {
	Text    string `json:"text" validate:"required"`
	Article *uint  `json:"article"`
	Project *uint  `json:"project"`
	Parent  *uint  `json:"parent"`
}

func CommentWriteFrom(c models.Comment) CommentWrite {
	return CommentWrite{Text: c.Text, Article: c.ArticleID, Project: c.ProjectID, Parent: c.ParentID}
}

// check enforces that a comment is attached to exactly one of an article or a project.
func (p CommentWrite) check() map[string]string {
	if (p.Article == nil) == (p.Project == nil) {
		return map[string]string{"non_field_errors": "Exactly one of article or project must be set."}
	}
	return nil
}

func (p CommentWrite) Apply(c *models.Comment) {
	c.Text = p.Text
	c.ArticleID = p.Article
	c.ProjectID = p.Project
	c.ParentID = p.Parent
}

type File struct {
	ID           uint      `json:"id"`
	CreationDate time.Time `json:"creation_date"`
	User         Profile   `json:"user"`
	Article      Article   `json:"article"`
}

func NewFile(f models.File, commentsNumber int64) File {
	return File{
		ID:           f.ID,
		CreationDate: f.CreationDate,
		User:         NewProfile(f.Profile),
		Article:      NewArticle(f.Article, commentsNumber),
	}
}

func NewFiles(files []models.File, counts map[uint]int64) []File {
	out := make([]File, 0, len(files))
	for _, f := range files {
		out = append(out, NewFile(f, counts[f.ArticleID]))
	}
	return out
}

// FileWrite names the uploading profile as "user", like the read side.
type FileWrite struct {
	User    uint `json:"user" validate:"required"`
	Article uint `json:"article" validate:"required"`
}

func FileWriteFrom(f models.File) FileWrite {
	return FileWrite{User: f.ProfileID, Article: f.ArticleID}
}

func (p FileWrite) Apply(f *models.File) {
	f.ProfileID = p.User
	f.ArticleID = p.Article
	if f.CreationDate.IsZero() {
		f.CreationDate = time.Now().UTC()
	}
}
