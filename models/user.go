package models

import (
	"time"

	"gorm.io/datatypes"
)

// User is an account of the site. Every user owns exactly one Profile.
type User struct {
	ID          uint       `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Username    string     `json:"username" db:"username" gorm:"type:varchar(150);not null;uniqueIndex"`
	Email       string     `json:"email" db:"email" gorm:"type:varchar(254);not null;default:''"`
	Password    string     `json:"-" db:"password" gorm:"type:varchar(128);not null"`
	FirstName   string     `json:"first_name" db:"first_name" gorm:"type:varchar(150);not null;default:''"`
	LastName    string     `json:"last_name" db:"last_name" gorm:"type:varchar(150);not null;default:''"`
	IsStaff     bool       `json:"is_staff" db:"is_staff" gorm:"not null;default:false"`
	IsSuperuser bool       `json:"is_superuser" db:"is_superuser" gorm:"not null;default:false"`
	IsActive    bool       `json:"is_active" db:"is_active" gorm:"not null;default:true"`
	DateJoined  time.Time  `json:"date_joined" db:"date_joined" gorm:"not null;autoCreateTime"`
	LastLogin   *time.Time `json:"last_login,omitempty" db:"last_login"`
	Groups      []Group    `json:"groups,omitempty" gorm:"many2many:user_groups;constraint:OnDelete:CASCADE"`
	Profile     *Profile   `json:"profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// IsAdmin reports whether the user bypasses model permissions.
func (u *User) IsAdmin() bool {
	return u != nil && (u.IsStaff || u.IsSuperuser)
}

// HasPerm reports whether the user holds the codename through one of its groups.
// Staff members hold every permission.
func (u *User) HasPerm(codename string) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	for _, g := range u.Groups {
		for _, p := range g.Permissions {
			if p.Codename == codename {
				return true
			}
		}
	}
	return false
}

type Group struct {
	ID          uint              `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Name        string            `json:"name" db:"name" gorm:"type:varchar(150);not null;uniqueIndex"`
	Permissions []GroupPermission `json:"permissions,omitempty" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
}

// GroupPermission grants a model permission codename such as "add_article" to a group.
type GroupPermission struct {
	ID       uint   `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	GroupID  uint   `json:"group_id" db:"group_id" gorm:"not null;uniqueIndex:idx_group_codename"`
	Codename string `json:"codename" db:"codename" gorm:"type:varchar(100);not null;uniqueIndex:idx_group_codename"`
}

type Profile struct {
	ID           uint          `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	UserID       uint          `json:"user_id" db:"user_id" gorm:"not null;uniqueIndex"`
	User         *User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Description  *string       `json:"description" db:"description" gorm:"type:text"`
	Avatar       *string       `json:"avatar" db:"avatar" gorm:"type:varchar(255)"`
	IndexNumber  *string       `json:"index_number" db:"index_number" gorm:"type:varchar(6)"`
	Links        []GenericLink `json:"links,omitempty" gorm:"polymorphicType:ContentType;polymorphicId:ObjectID;polymorphicValue:profile"`
	ProfileLinks []ProfileLink `json:"profile_links,omitempty" gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
}

type ProfileLink struct {
	ID        uint     `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Link      string   `json:"link" db:"link" gorm:"type:varchar(200);not null"`
	LinkType  LinkType `json:"link_type" db:"link_type" gorm:"type:varchar(100);not null;default:'OTHER'"`
	ProfileID uint     `json:"profile_id" db:"profile_id" gorm:"not null;index"`
}

// SocialAccount connects a local user to an account at an OAuth provider.
type SocialAccount struct {
	ID         uint           `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	UserID     uint           `json:"user_id" db:"user_id" gorm:"not null;index"`
	User       *User          `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Provider   string         `json:"provider" db:"provider" gorm:"type:varchar(30);not null;uniqueIndex:idx_provider_uid"`
	UID        string         `json:"uid" db:"uid" gorm:"type:varchar(191);not null;uniqueIndex:idx_provider_uid"`
	ExtraData  datatypes.JSON `json:"extra_data" db:"extra_data"`
	DateJoined time.Time      `json:"date_joined" db:"date_joined" gorm:"not null;autoCreateTime"`
	LastLogin  time.Time      `json:"last_login" db:"last_login" gorm:"not null"`
}
