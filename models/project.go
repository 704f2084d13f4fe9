package models

import "time"

// Project is a member project, optionally grouped under a Section.
type Project struct {
	ID              uint          `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Title           string        `json:"title" db:"title" gorm:"type:varchar(100);not null"`
	Text            string        `json:"text" db:"text" gorm:"type:text;not null"`
	CreationDate    time.Time     `json:"creation_date" db:"creation_date" gorm:"not null"`
	PublicationDate *time.Time    `json:"publication_date" db:"publication_date"`
	CreatorID       uint          `json:"creator_id" db:"creator_id" gorm:"not null;index"`
	Creator         User          `json:"creator" gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
	SectionID       *uint         `json:"section_id" db:"section_id" gorm:"index"`
	Section         *Section      `json:"section" gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE"`
	Authors         []User        `json:"authors,omitempty" gorm:"many2many:project_authors;constraint:OnDelete:CASCADE"`
	Gallery         []Gallery     `json:"gallery,omitempty" gorm:"many2many:project_gallery;constraint:OnDelete:CASCADE"`
	Links           []GenericLink `json:"links,omitempty" gorm:"polymorphicType:ContentType;polymorphicId:ObjectID;polymorphicValue:project"`
}

type Section struct {
	ID          uint      `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" db:"name" gorm:"type:text;not null"`
	Description string    `json:"description" db:"description" gorm:"type:text;not null"`
	IsVisible   bool      `json:"isVisible" db:"is_visible" gorm:"not null;default:false"`
	Icon        *string   `json:"icon" db:"icon" gorm:"type:text"`
	Gallery     []Gallery `json:"gallery,omitempty" gorm:"many2many:section_gallery;constraint:OnDelete:CASCADE"`
}
