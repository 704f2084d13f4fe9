package dto

import (
	"encoding/json"

	"github.com/skni-kod/kolo-rest-api/models"
)

type Sponsor struct {
	ID   uint    `json:"id"`
	Name string  `json:"name"`
	Logo string  `json:"logo"`
	URL  *string `json:"url"`
}

func NewSponsor(s models.Sponsor) Sponsor {
	return Sponsor{ID: s.ID, Name: s.Name, Logo: s.Logo, URL: s.URL}
}

func NewSponsors(items []models.Sponsor) []Sponsor {
	out := make([]Sponsor, 0, len(items))
	for _, s := range items {
		out = append(out, NewSponsor(s))
	}
	return out
}

type SponsorWrite struct {
	Name string  `json:"name" validate:"required,max=60"`
	Logo string  `json:"logo" validate:"required,max=255"`
	URL  *string `json:"url" validate:"omitempty,url,max=200"`
}

func SponsorWriteFrom(s models.Sponsor) SponsorWrite {
	return SponsorWrite{Name: s.Name, Logo: s.Logo, URL: s.URL}
}

func (p SponsorWrite) Apply(s *models.Sponsor) {
	s.Name = p.Name
	s.Logo = p.Logo
	s.URL = p.URL
}

type FooterLink struct {
	ID    uint   `json:"id"`
	Link  string `json:"link"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func NewFooterLink(l models.FooterLink) FooterLink {
	return FooterLink{ID: l.ID, Link: l.Link, Title: l.Title, Icon: l.Icon, Color: l.Color}
}

func NewFooterLinks(items []models.FooterLink) []FooterLink {
	out := make([]FooterLink, 0, len(items))
	for _, l := range items {
		out = append(out, NewFooterLink(l))
	}
	return out
}

type FooterLinkWrite struct {
	Link  string `json:"link" validate:"required,url,max=200"`
	Title string `json:"title" validate:"required,max=128"`
	Icon  string `json:"icon" validate:"required,max=64"`
	Color string `json:"color" validate:"required,max=64"`
}

func FooterLinkWriteFrom(l models.FooterLink) FooterLinkWrite {
	return FooterLinkWrite{Link: l.Link, Title: l.Title, Icon: l.Icon, Color: l.Color}
}

func (p FooterLinkWrite) Apply(l *models.FooterLink) {
	l.Link = p.Link
	l.Title = p.Title
	l.Icon = p.Icon
	l.Color = p.Color
}

// Preference is a registered global preference with its current value.
type Preference struct {
	Section    string `json:"section"`
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	Default    any    `json:"default"`
	Value      any    `json:"value"`
}

type PreferenceWrite struct {
	Value json.RawMessage `json:"value" validate:"required"`
}
