package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/skni-kod/kolo-rest-api/models"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

func preloadUser(q *gorm.DB) *gorm.DB {
	return q.Preload("Groups.Permissions").Preload("Profile")
}

// preloadShortUser loads what the compact user representation shows.
func preloadShortUser(prefix string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Preload(prefix + "Profile.Links")
	}
}

// FindAll returns users, newest first.
func (r *UserRepo) FindAll(ctx context.Context, page Page) ([]models.User, int64, error) {
	var users []models.User
	total, err := listPage(r.db.WithContext(ctx).Model(&models.User{}), page, "date_joined DESC, id DESC", &users, preloadUser)
	return users, total, err
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := preloadUser(r.db.WithContext(ctx)).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := preloadUser(r.db.WithContext(ctx)).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := preloadUser(r.db.WithContext(ctx)).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameTaken reports whether another user already uses the username.
func (r *UserRepo) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&count).Error
	return count > 0, err
}

// CreateWithProfile inserts the user and its empty profile in one transaction.
// Groups named by groupIDs are attached in the same transaction.
func (r *UserRepo) CreateWithProfile(ctx context.Context, user *models.User, groupIDs *[]uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUserWithProfile(tx, user); err != nil {
			return err
		}
		return replaceMany[models.Group](tx, user, "Groups", "groups", groupIDs)
	})
}

func createUserWithProfile(tx *gorm.DB, user *models.User) error {
	groups := user.Groups
	user.Groups = nil
	user.Profile = nil
	if user.DateJoined.IsZero() {
		user.DateJoined = time.Now().UTC()
	}
	if err := tx.Omit("Groups", "Profile").Create(user).Error; err != nil {
		return err
	}

	profile := &models.Profile{UserID: user.ID}
	if err := tx.Omit("User").Create(profile).Error; err != nil {
		return err
	}
	user.Profile = profile

	if len(groups) > 0 {
		if err := tx.Model(user).Association("Groups").Append(groups); err != nil {
			return err
		}
		user.Groups = groups
	}
	return nil
}

// Update saves the scalar columns of the user; groups are replaced only when groupIDs is set
// and the password only when passwordHash is not empty.
func (r *UserRepo) Update(ctx context.Context, user *models.User, groupIDs *[]uint, passwordHash string) error {
	columns := []string{"username", "email", "first_name", "last_name", "is_staff", "is_active"}
	if passwordHash != "" {
		user.Password = passwordHash
		columns = append(columns, "password")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Select(columns).Updates(user).Error; err != nil {
			return err
		}
		return replaceMany[models.Group](tx, user, "Groups", "groups", groupIDs)
	})
}

func (r *UserRepo) SetPassword(ctx context.Context, id uint, hash string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash).Error
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", time.Now().UTC()).Error
}

// Delete removes the user with everything owned by the user or its profile.
func (r *UserRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteUser(tx, id)
	})
}

func deleteUser(tx *gorm.DB, id uint) error {
	var user models.User
	if err := tx.Select("id").First(&user, id).Error; err != nil {
		return err
	}

	var profileIDs []uint
	if err := tx.Model(&models.Profile{}).Where("user_id = ?", id).Pluck("id", &profileIDs).Error; err != nil {
		return err
	}
	if len(profileIDs) > 0 {
		if err := tx.Where("content_type = ? AND object_id IN ?", string(models.LinkKindProfile), profileIDs).Delete(&models.GenericLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id IN ?", profileIDs).Delete(&models.ProfileLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id IN ?", profileIDs).Delete(&models.File{}).Error; err != nil {
			return err
		}
	}

	var articleIDs []uint
	if err := tx.Model(&models.Article{}).Where("creator_id = ?", id).Pluck("id", &articleIDs).Error; err != nil {
		return err
	}
	for _, articleID := range articleIDs {
		if err := deleteArticle(tx, articleID); err != nil {
			return err
		}
	}
	var projectIDs []uint
	if err := tx.Model(&models.Project{}).Where("creator_id = ?", id).Pluck("id", &projectIDs).Error; err != nil {
		return err
	}
	for _, projectID := range projectIDs {
		if err := deleteProject(tx, projectID); err != nil {
			return err
		}
	}

	var commentIDs []uint
	if err := tx.Model(&models.Comment{}).Where("user_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if err := deleteCommentTrees(tx, commentIDs); err != nil {
		return err
	}

	var rentedHardware []uint
	if err := tx.Model(&models.HardwareRental{}).Where("user_id = ?", id).Distinct().Pluck("hardware_id", &rentedHardware).Error; err != nil {
		return err
	}
	if err := tx.Where("user_id = ?", id).Delete(&models.HardwareRental{}).Error; err != nil {
		return err
	}
	for _, hardwareID := range rentedHardware {
		if err := syncHardwareStatus(tx, hardwareID); err != nil {
			return err
		}
	}

	if err := tx.Where("user_id = ?", id).Delete(&models.SocialAccount{}).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM article_authors WHERE user_id = ?", id).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM project_authors WHERE user_id = ?", id).Error; err != nil {
		return err
	}
	if err := tx.Model(&user).Association("Groups").Clear(); err != nil {
		return err
	}
	if err := tx.Where("user_id = ?", id).Delete(&models.Profile{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.User{}, id).Error
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
