package dto

import (
	"time"

	"github.com/skni-kod/kolo-rest-api/models"
)

// ShortProfile is the profile part embedded in ShortUser.
type ShortProfile struct {
	ID          uint          `json:"id"`
	Description *string       `json:"description"`
	Links       []GenericLink `json:"links"`
	IndexNumber *string       `json:"index_number"`
}

// ShortUser is the compact user shown as creator, author or renter.
type ShortUser struct {
	ID        uint          `json:"id"`
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Profile   *ShortProfile `json:"profile"`
}

func NewShortUser(u models.User) ShortUser {
	out := ShortUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	if u.Profile != nil {
		out.Profile = &ShortProfile{
			ID:          u.Profile.ID,
			Description: u.Profile.Description,
			Links:       NewGenericLinks(u.Profile.Links),
			IndexNumber: u.Profile.IndexNumber,
		}
	}
	return out
}

func NewShortUsers(users []models.User) []ShortUser {
	out := make([]ShortUser, 0, len(users))
	for _, u := range users {
		out = append(out, NewShortUser(u))
	}
	return out
}

// User is the full account representation with the permission table of the user.
type User struct {
	ID          uint            `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	Groups      []uint          `json:"groups"`
	Profile     *uint           `json:"profile"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	IsAdminUser bool            `json:"is_admin_user"`
	Permissions map[string]bool `json:"permissions"`
}

func NewUser(u models.User) User {
	groups := make([]uint, 0, len(u.Groups))
	for _, g := range u.Groups {
		groups = append(groups, g.ID)
	}
	perms := make(map[string]bool)
	for _, codename := range models.AllCodenames() {
		perms[codename] = u.HasPerm(codename)
	}
	out := User{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Groups:      groups,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsAdminUser: u.IsAdmin(),
		Permissions: perms,
	}
	if u.Profile != nil {
		id := u.Profile.ID
		out.Profile = &id
	}
	return out
}

func NewUsers(users []models.User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, NewUser(u))
	}
	return out
}

// UserWrite creates or updates an account. Password is plain text and never read back.
type UserWrite struct {
	Username  string  `json:"username" validate:"required,max=150"`
	Email     string  `json:"email" validate:"omitempty,email,max=254"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	FirstName string  `json:"first_name" validate:"max=150"`
	LastName  string  `json:"last_name" validate:"max=150"`
	Groups    *[]uint `json:"groups,omitempty"`
}

// UserWriteFrom seeds a partial update with the stored values.
func UserWriteFrom(u models.User) UserWrite {
	return UserWrite{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func (p UserWrite) check() map[string]string {
	if !validUsername(p.Username) {
		return map[string]string{"username": "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."}
	}
	return nil
}

func (p UserWrite) Apply(u *models.User) {
	u.Username = p.Username
	u.Email = p.Email
	u.FirstName = p.FirstName
	u.LastName = p.LastName
}

func validUsername(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '@' || r == '.' || r == '+' || r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

type Login struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

type TokenRefresh struct {
	Refresh string `json:"refresh" validate:"required"`
}

type TokenVerify struct {
	Token string `json:"token" validate:"required"`
}

type Registration struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
	Password1 string `json:"password1" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
}

func (p Registration) check() map[string]string {
	fields := map[string]string{}
	if !validUsername(p.Username) {
		fields["username"] = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}
	if p.Password1 != p.Password2 {
		fields["non_field_errors"] = "The two password fields didn't match."
	}
	return fields
}

type PasswordChange struct {
	OldPassword  string `json:"old_password" validate:"required"`
	NewPassword1 string `json:"new_password1" validate:"required"`
	NewPassword2 string `json:"new_password2" validate:"required"`
}

func (p PasswordChange) check() map[string]string {
	if p.NewPassword1 != p.NewPassword2 {
		return map[string]string{"new_password2": "The two password fields didn't match."}
	}
	return nil
}

// TokenPair answers the plain token endpoints.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginResult answers login, registration and social login.
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type Group struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

func NewGroup(g models.Group) Group {
	perms := make([]string, 0, len(g.Permissions))
	for _, p := range g.Permissions {
		perms = append(perms, p.Codename)
	}
	return Group{ID: g.ID, Name: g.Name, Permissions: perms}
}

func NewGroups(groups []models.Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, NewGroup(g))
	}
	return out
}

type GroupWrite struct {
	Name        string    `json:"name" validate:"required,max=150"`
	Permissions *[]string `json:"permissions,omitempty"`
}

func GroupWriteFrom(g models.Group) GroupWrite {
	return GroupWrite{Name: g.Name}
}

func (p GroupWrite) check() map[string]string {
	if p.Permissions == nil {
		return nil
	}
	for _, codename := range *p.Permissions {
		if !models.IsKnownCodename(codename) {
			return map[string]string{"permissions": "Unknown permission \"" + codename + "\"."}
		}
	}
	return nil
}

type Profile struct {
	ID           uint          `json:"id"`
	User         *User         `json:"user"`
	Description  *string       `json:"description"`
	Avatar       *string       `json:"avatar"`
	IndexNumber  *string       `json:"index_number"`
	Links        []GenericLink `json:"links"`
	ProfileLinks []ProfileLink `json:"profile_links"`
}

func NewProfile(p models.Profile) Profile {
	out := Profile{
		ID:           p.ID,
		Description:  p.Description,
		Avatar:       p.Avatar,
		IndexNumber:  p.IndexNumber,
		Links:        NewGenericLinks(p.Links),
		ProfileLinks: NewProfileLinks(p.ProfileLinks),
	}
	if p.User != nil {
		u := NewUser(*p.User)
		out.User = &u
	}
	return out
}

func NewProfiles(profiles []models.Profile) []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, NewProfile(p))
	}
	return out
}

// ProfileWrite edits the profile columns. The owning user is fixed.
type ProfileWrite struct {
	Description *string `json:"description"`
	Avatar      *string `json:"avatar" validate:"omitempty,max=255"`
	IndexNumber *string `json:"index_number" validate:"omitempty,max=6,numeric"`
}

func ProfileWriteFrom(p models.Profile) ProfileWrite {
	return ProfileWrite{Description: p.Description, Avatar: p.Avatar, IndexNumber: p.IndexNumber}
}

func (p ProfileWrite) Apply(profile *models.Profile) {
	profile.Description = p.Description
	profile.Avatar = p.Avatar
	profile.IndexNumber = p.IndexNumber
}

type SocialAccount struct {
	ID         uint      `json:"id"`
	Provider   string    `json:"provider"`
	UID        string    `json:"uid"`
	LastLogin  time.Time `json:"last_login"`
	DateJoined time.Time `json:"date_joined"`
}

func NewSocialAccounts(accounts []models.SocialAccount) []SocialAccount {
	out := make([]SocialAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, SocialAccount{
			ID:         a.ID,
			Provider:   a.Provider,
			UID:        a.UID,
			LastLogin:  a.LastLogin,
			DateJoined: a.DateJoined,
		})
	}
	return out
}

// SocialLogin carries either an OAuth code or a provider access token.
type SocialLogin struct {
	Code        string `json:"code" validate:"required_without=AccessToken"`
	AccessToken string `json:"access_token"`
}
