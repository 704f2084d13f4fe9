package models

type LinkType string

const (
	LinkTypeGithub    LinkType = "GITHUB"
	LinkTypeGitlab    LinkType = "GITLAB"
	LinkTypeBitbucket LinkType = "BITBUCKET"
	LinkTypeBlog      LinkType = "BLOG"
	LinkTypePortfolio LinkType = "PORTFOLIO"
	LinkTypeOther     LinkType = "OTHER"
)

// LinkKind names the entity a GenericLink points at.
type LinkKind string

const (
	LinkKindArticle LinkKind = "article"
	LinkKindProfile LinkKind = "profile"
	LinkKindProject LinkKind = "project"
)

var LinkKinds = []LinkKind{LinkKindArticle, LinkKindProfile, LinkKindProject}

func (k LinkKind) Valid() bool {
	for _, known := range LinkKinds {
		if k == known {
			return true
		}
	}
	return false
}

// GenericLink is an external link attached to an article, a profile or a project.
// (ContentType, ObjectID) identifies the owner.
type GenericLink struct {
	ID          uint     `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Link        string   `json:"link" db:"link" gorm:"type:varchar(200);not null"`
	LinkType    LinkType `json:"link_type" db:"link_type" gorm:"type:varchar(100);not null"`
	ContentType LinkKind `json:"content_type" db:"content_type" gorm:"type:varchar(30);not null;index:idx_link_owner"`
	ObjectID    uint     `json:"object_id" db:"object_id" gorm:"not null;index:idx_link_owner"`
}
