package dto

import "github.com/skni-kod/kolo-rest-api/models"

// GenericLink is the compact link embedded in articles, projects and profiles.
type GenericLink struct {
	ID       uint            `json:"id"`
	Link     string          `json:"link"`
	LinkType models.LinkType `json:"link_type"`
}

func NewGenericLinks(links []models.GenericLink) []GenericLink {
	out := make([]GenericLink, 0, len(links))
	for _, l := range links {
		out = append(out, GenericLink{ID: l.ID, Link: l.Link, LinkType: l.LinkType})
	}
	return out
}

// GenericLinkDetail names its owner and carries the owner's representation.
type GenericLinkDetail struct {
	ID           uint            `json:"id"`
	Link         string          `json:"link"`
	LinkType     models.LinkType `json:"link_type"`
	ContentType  models.LinkKind `json:"content_type"`
	ObjectID     uint            `json:"object_id"`
	LinkedObject any             `json:"linked_object"`
}

func NewGenericLinkDetail(l models.GenericLink, linked any) GenericLinkDetail {
	return GenericLinkDetail{
		ID:           l.ID,
		Link:         l.Link,
		LinkType:     l.LinkType,
		ContentType:  l.ContentType,
		ObjectID:     l.ObjectID,
		LinkedObject: linked,
	}
}

type GenericLinkWrite struct {
	Link        string `json:"link" validate:"required,url,max=200"`
	LinkType    string `json:"link_type" validate:"required,oneof=GITHUB GITLAB BITBUCKET BLOG PORTFOLIO OTHER"`
	ContentType string `json:"content_type" validate:"required"`
	ObjectID    uint   `json:"object_id" validate:"required"`
}

func GenericLinkWriteFrom(l models.GenericLink) GenericLinkWrite {
	return GenericLinkWrite{
		Link:        l.Link,
		LinkType:    string(l.LinkType),
		ContentType: string(l.ContentType),
		ObjectID:    l.ObjectID,
	}
}

func (p GenericLinkWrite) check() map[string]string {
	if p.ContentType != "" && !models.LinkKind(p.ContentType).Valid() {
		return map[string]string{"content_type": "\"" + p.ContentType + "\" is not a valid choice."}
	}
	return nil
}

func (p GenericLinkWrite) Apply(l *models.GenericLink) {
	l.Link = p.Link
	l.LinkType = models.LinkType(p.LinkType)
	l.ContentType = models.LinkKind(p.ContentType)
	l.ObjectID = p.ObjectID
}

type ProfileLink struct {
	ID       uint            `json:"id"`
	Link     string          `json:"link"`
	LinkType models.LinkType `json:"link_type"`
	Profile  uint            `json:"profile"`
}

func NewProfileLink(l models.ProfileLink) ProfileLink {
	return ProfileLink{ID: l.ID, Link: l.Link, LinkType: l.LinkType, Profile: l.ProfileID}
}

func NewProfileLinks(links []models.ProfileLink) []ProfileLink {
	out := make([]ProfileLink, 0, len(links))
	for _, l := range links {
		out = append(out, NewProfileLink(l))
	}
	return out
}

type ProfileLinkWrite struct {
	Link     string `json:"link" validate:"required,url,max=200"`
	LinkType string `json:"link_type" validate:"omitempty,oneof=GITHUB GITLAB BITBUCKET BLOG PORTFOLIO OTHER"`
	Profile  uint   `json:"profile" validate:"required"`
}

func ProfileLinkWriteFrom(l models.ProfileLink) ProfileLinkWrite {
	return ProfileLinkWrite{Link: l.Link, LinkType: string(l.LinkType), Profile: l.ProfileID}
}

func (p ProfileLinkWrite) Apply(l *models.ProfileLink) {
	l.Link = p.Link
	l.LinkType = models.LinkType(p.LinkType)
	if l.LinkType == "" {
		l.LinkType = models.LinkTypeOther
	}
	l.ProfileID = p.Profile
}
