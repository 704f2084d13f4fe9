package dto

import (
	"time"

	"github.com/skni-kod/kolo-rest-api/models"
)

type Section struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsVisible   bool      `json:"isVisible"`
	Icon        *string   `json:"icon"`
	Gallery     []Gallery `json:"gallery"`
}

func NewSection(s models.Section) Section {
	return Section{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		IsVisible:   s.IsVisible,
		Icon:        s.Icon,
		Gallery:     NewGalleries(s.Gallery),
	}
}

func NewSections(sections []models.Section) []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		out = append(out, NewSection(s))
	}
	return out
}

type SectionWrite struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	IsVisible   bool    `json:"isVisible"`
	Icon        *string `json:"icon"`
	Gallery     *[]uint `json:"gallery,omitempty"`
}

func SectionWriteFrom(s models.Section) SectionWrite {
	return SectionWrite{Name: s.Name, Description: s.Description, IsVisible: s.IsVisible, Icon: s.Icon}
}

func (p SectionWrite) Apply(s *models.Section) {
	s.Name = p.Name
	s.Description = p.Description
	s.IsVisible = p.IsVisible
	s.Icon = p.Icon
}

type Project struct {
	ID              uint          `json:"id"`
	Title           string        `json:"title"`
	Text            string        `json:"text"`
	CreationDate    time.Time     `json:"creation_date"`
	PublicationDate *time.Time    `json:"publication_date"`
	Creator         ShortUser     `json:"creator"`
	Section         *Section      `json:"section"`
	Authors         []ShortUser   `json:"authors"`
	Gallery         []Gallery     `json:"gallery"`
	Links           []GenericLink `json:"links"`
}

func NewProject(p models.Project) Project {
	out := Project{
		ID:              p.ID,
		Title:           p.Title,
		Text:            p.Text,
		CreationDate:    p.CreationDate,
		PublicationDate: p.PublicationDate,
		Creator:         NewShortUser(p.Creator),
		Authors:         NewShortUsers(p.Authors),
		Gallery:         NewGalleries(p.Gallery),
		Links:           NewGenericLinks(p.Links),
	}
	if p.Section != nil {
		s := NewSection(*p.Section)
		out.Section = &s
	}
	return out
}

func NewProjects(projects []models.Project) []Project {
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		out = append(out, NewProject(p))
	}
	return out
}

type ProjectWrite struct {
	Title           string     `json:"title" validate:"required,max=100"`
	Text            string     `json:"text" validate:"required"`
	CreationDate    *time.Time `json:"creation_date"`
	PublicationDate *time.Time `json:"publication_date"`
	Creator         uint       `json:"creator"`
	Section         *uint      `json:"section"`
	Authors         *[]uint    `json:"authors,omitempty"`
	Gallery         *[]uint    `json:"gallery,omitempty"`
}

func ProjectWriteFrom(p models.Project) ProjectWrite {
	created := p.CreationDate
	return ProjectWrite{
		Title:           p.Title,
		Text:            p.Text,
		CreationDate:    &created,
		PublicationDate: p.PublicationDate,
		Creator:         p.CreatorID,
		Section:         p.SectionID,
	}
}

func (p ProjectWrite) Apply(project *models.Project) {
	project.Title = p.Title
	project.Text = p.Text
	project.PublicationDate = p.PublicationDate
	project.CreatorID = p.Creator
	project.SectionID = p.Section
	if p.CreationDate != nil {
		project.CreationDate = *p.CreationDate
	} else if project.CreationDate.IsZero() {
		project.CreationDate = time.Now().UTC()
	}
}
