package models

import "gorm.io/datatypes"

type Sponsor struct {
	ID   uint    `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Name string  `json:"name" db:"name" gorm:"type:varchar(60);not null"`
	URL  *string `json:"url" db:"url" gorm:"column:url;type:varchar(200)"`
	Logo string  `json:"logo" db:"logo" gorm:"type:varchar(255);not null"`
}

type FooterLink struct {
	ID    uint   `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Link  string `json:"link" db:"link" gorm:"type:varchar(200);not null"`
	Title string `json:"title" db:"title" gorm:"type:varchar(128);not null"`
	Icon  string `json:"icon" db:"icon" gorm:"type:varchar(64);not null"`
	Color string `json:"color" db:"color" gorm:"type:varchar(64);not null"`
}

// Preference stores an overridden value of a registered global preference.
// Preferences without a row report their registered default.
type Preference struct {
	ID      uint           `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Section string         `json:"section" db:"section" gorm:"type:varchar(150);not null;uniqueIndex:idx_pref_key"`
	Name    string         `json:"name" db:"name" gorm:"type:varchar(150);not null;uniqueIndex:idx_pref_key"`
	Value   datatypes.JSON `json:"value" db:"value"`
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Group{},
		&GroupPermission{},
		&User{},
		&Profile{},
		&ProfileLink{},
		&SocialAccount{},
		&GenericLink{},
		&Tag{},
		&Gallery{},
		&Article{},
		&Section{},
		&Project{},
		&Comment{},
		&File{},
		&Hardware{},
		&HardwareRental{},
		&Sponsor{},
		&FooterLink{},
		&Preference{},
	}
}
