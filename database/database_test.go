package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skni-kod/kolo-rest-api/errs"
	"github.com/skni-kod/kolo-rest-api/models"
)

func newTestDB(t *testing.T) (*gorm.DB, Database) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := OpenSQLite(dsn, nil)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db, New(db)
}

func createUser(t *testing.T, d Database, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "!"}
	require.NoError(t, d.UserRepo().CreateWithProfile(context.Background(), user, nil))
	return user
}

func createArticle(t *testing.T, d Database, creator uint, title string, published *time.Time, refs ArticleRefs) *models.Article {
	t.Helper()
	article := &models.Article{
		Title:           title,
		Alias:           title,
		Text:            "text",
		Group:           models.ArticleGroupNews,
		CreationDate:    time.Now().UTC(),
		PublicationDate: published,
		CreatorID:       creator,
	}
	require.NoError(t, d.ArticleRepo().Add(context.Background(), article, refs))
	return article
}

func ids(n ...uint) *[]uint {
	return &n
}

func TestUserRepo_CreateWithProfile(t *testing.T) {
	ctx := context.Background()
	_, d := newTestDB(t)

	group := &models.Group{Name: "editors"}
	require.NoError(t, d.GroupRepo().Add(ctx, group))

	user := &models.User{Username: "ada", Email: "ada@example.com", Password: "!"}
	require.NoError(t, d.UserRepo().CreateWithProfile(ctx, user, ids(group.ID)))

	profile, err := d.ProfileRepo().FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.UserID)

	loaded, err := d.UserRepo().FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Groups, 1)
	assert.Equal(t, "editors", loaded.Groups[0].Name)
	assert.False(t, loaded.DateJoined.IsZero())
}

func TestUserRepo_CreateWithProfile_UnknownGroup(t *testing.T) {
	_, d := newTestDB(t)

	user := &models.User{Username: "ada", Password: "!"}
	err := d.UserRepo().CreateWithProfile(context.Background(), user, ids(99))
	require.Error(t, err)
	assert.True(t, errs.IsValidationError(err))

	_, err = d.UserRepo().FindByUsername(context.Background(), "ada")
	assert.True(t, IsNotFound(err), "user must not survive a failed create")
}

func TestUserRepo_UsernameTaken(t *testing.T) {
	ctx := context.Background()
	_, d := newTestDB(t)
	ada := createUser(t, d, "ada")

	taken, err := d.UserRepo().UsernameTaken(ctx, "ada", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = d.UserRepo().UsernameTaken(ctx, "ada", ada.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUserRepo_DeleteRemovesOwnedRows(t *testing.T) {
	ctx := context.Background()
	db, d := newTestDB(t)
	ada := createUser(t, d, "ada")
	bob := createUser(t, d, "bob")

	article := createArticle(t, d, ada.ID, "owned", nil, ArticleRefs{})
	foreign := createArticle(t, d, bob.ID, "foreign", nil, ArticleRefs{Authors: ids(ada.ID)})
	comment := &models.Comment{Text: "hi", CreationDate: time.Now().UTC(), ArticleID: &foreign.ID, UserID: ada.ID}
	require.NoError(t, d.CommentRepo().Add(ctx, comment))

	require.NoError(t, d.UserRepo().Delete(ctx, ada.ID))

	_, err := d.ArticleRepo().FindByID(ctx, article.ID)
	assert.True(t, IsNotFound(err))
	_, err = d.CommentRepo().FindByID(ctx, comment.ID)
	assert.True(t, IsNotFound(err))

	var profiles int64
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", ada.ID).Count(&profiles).Error)
	assert.Zero(t, profiles)

	kept, err := d.ArticleRepo().FindByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Empty(t, kept.Authors)
}

func TestArticleRepo_FindAllOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	_, d := newTestDB(t)
	ada := createUser(t, d, "ada")

	python := &models.Tag{Name: "python"}
	golang := &models.Tag{Name: "go"}
	require.NoError(t, d.TagRepo().Add(ctx, python))
	require.NoError(t, d.TagRepo().Add(ctx, golang))

	older := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	draft := createArticle(t, d, ada.ID, "draft", nil, ArticleRefs{Tags: ids(python.ID)})
	first := createArticle(t, d, ada.ID, "first", &older, ArticleRefs{Tags: ids(python.ID, golang.ID)})
	second := createArticle(t, d, ada.ID, "second", &newer, ArticleRefs{Tags: ids(golang.ID)})

	all, total, err := d.ArticleRepo().FindAll(ctx, ArticleFilter{}, Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{second.ID, first.ID, draft.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})

	byTag, _, err := d.ArticleRepo().FindAll(ctx, ArticleFilter{TagName: "python"}, Page{})
	require.NoError(t, err)
	require.Len(t, byTag, 2)
	assert.Equal(t, first.ID, byTag[0].ID)
	assert.Equal(t, draft.ID, byTag[1].ID)

	both, _, err := d.ArticleRepo().FindAll(ctx, ArticleFilter{TagID: &golang.ID, TagName: "python"}, Page{})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, first.ID, both[0].ID)
	assert.Len(t, both[0].Tags, 2)
}

func TestArticleRepo_FindAllPaged(t *testing.T) {
	ctx := context.Background()
	_, d := newTestDB(t)
	ada := createUser(t, d, "ada")
	for i := 0; i < 12; i++ {
		published := time.Date(2020, 1, i+1, 0, 0, 0, 0, time.UTC)
		createArticle(t, d, ada.ID, fmt.Sprintf("article-%d", i), &published, ArticleRefs{})
	}

	page, total, err := d.ArticleRepo().FindAll(ctx, ArticleFilter{}, Page{Limit: 5, Offset: 10, Enabled: true})
	require.NoError(t, err)
	assert.EqualValues(t, 12, total)
	require.Len(t, page, 2)
	assert.Equal(t, "article-1", page[0].Title)
	assert.Equal(t, "article-0", page[1].Title)
}

func TestArticleRepo_UpdateKeepsUnsetRefs(t *testing.T) {
	ctx := context.Background()
	_, d := newTestDB(t)
	ada := createUser(t, d, "ada")
	tag := &models.Tag{Name: "go"}
	require.NoError(t, d.TagRepo().Add(ctx, tag))
	article := createArticle(t, d, ada.ID, "a", nil, ArticleRefs{Tags: ids(tag.ID), Authors: ids(ada.ID)})

	article.Title = "renamed"
	require.NoError(t, d.ArticleRepo().Update(ctx, article, ArticleRefs{Authors: ids()}))

	loaded, err := d.ArticleRepo().FindByID(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", loaded.Title)
	assert.Len(t, loaded.Tags, 1)
	assert.Empty(t, loaded.Authors)
}

func TestArticleRepo_DeleteCascadesComments(t *testing.T) {
	ctx := context.Background()
	db, d := newTestDB(t)
	ada := createUser(t, d, "ada")
	article := createArticle(t, d, ada.ID, "a", nil, ArticleRefs{})

	root := &models.Comment{Text: "root", CreationDate: time.Now().UTC(), ArticleID: &article.ID, UserID: ada.ID}
	require.NoError(t, d.CommentRepo().Add(ctx, root))
	reply := &models.Comment{Text: "reply", CreationDate: time.Now().UTC(), ArticleID: &article.ID, ParentID: &root.ID, UserID: ada.ID}
	require.NoError(t, d.CommentRepo().Add(ctx, reply))
	link := &models.GenericLink{Link: "https://example.com", LinkType: models.LinkTypeOther, ContentType: models.LinkKindArticle, ObjectID: article.ID}
	require.NoError(t, d.GenericLinkRepo().Add(ctx, link))

	counts, err := d.ArticleRepo().CommentCounts(ctx, []uint{article.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[article.ID])

	require.NoError(t, d.ArticleRepo().Delete(ctx, article.ID))

	var comments, links int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, db.Model(&models.GenericLink{}).Count(&links).Error)
	assert.Zero(t, comments)
	assert.Zero(t, links)

	err = d.ArticleRepo().Delete(ctx, article.ID)
	assert.True(t, IsNotFound(err))
}

func TestCommentRepo_TreeQueries(t *testing.T) {
	ctx := context.Background()
	_, d := newTestDB(t)
	ada := createUser(t, d, "ada")
	article := createArticle(t, d, ada.ID, "a", nil, ArticleRefs{})

	add := func(parent *uint) *models.Comment {
		c := &models.Comment{Text: "c", CreationDate: time.Now().UTC(), ArticleID: &article.ID, ParentID: parent, UserID: ada.ID}
		require.NoError(t, d.CommentRepo().Add(ctx, c))
		return c
	}
	root := add(nil)
	child := add(&root.ID)
	grandchild := add(&child.ID)
	other := add(nil)

	deep, err := d.CommentRepo().IsDescendant(ctx, root.ID, grandchild.ID)
	require.NoError(t, err)
	assert.True(t, deep)

	unrelated, err := d.CommentRepo().IsDescendant(ctx, root.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, unrelated)

	self, err := d.CommentRepo().IsDescendant(ctx, root.ID, root.ID)
	require.NoError(t, err)
	assert.False(t, self)

	children, err := d.CommentRepo().Children(ctx, []uint{root.ID, child.ID}, 0)
	require.NoError(t, err)
	assert.Len(t, children, 2)

	require.NoError(t, d.CommentRepo().Delete(ctx, child.ID))
	_, err = d.CommentRepo().FindByID(ctx, grandchild.ID)
	assert.True(t, IsNotFound(err))
	_, err = d.CommentRepo().FindByID(ctx, root.ID)
	assert.NoError(t, err)
}

func TestHardwareRentalRepo_StatusFollowsRentals(t *testing.T) {
	ctx := context.Background()
	_, d := newTestDB(t)
	ada := createUser(t, d, "ada")

	item := &models.Hardware{Name: "Raspberry Pi", Description: "4B", SerialNumber: "RPI-1", Status: models.HardwareAvailable}
	require.NoError(t, d.HardwareRepo().Add(ctx, item))

	rental := &models.HardwareRental{UserID: ada.ID, HardwareID: item.ID, RentalDate: time.Now().UTC()}
	require.NoError(t, d.HardwareRentalRepo().Add(ctx, rental))

	loaded, err := d.HardwareRepo().FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsRented)
	assert.Equal(t, models.HardwareRented, loaded.Status)

	second := &models.HardwareRental{UserID: ada.ID, HardwareID: item.ID, RentalDate: time.Now().UTC()}
	err = d.HardwareRentalRepo().Add(ctx, second)
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))

	require.NoError(t, d.HardwareRentalRepo().Return(ctx, rental.ID, time.Now().UTC()))
	loaded, err = d.HardwareRepo().FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, loaded.IsRented)
	assert.Equal(t, models.HardwareAvailable, loaded.Status)

	err = d.HardwareRentalRepo().Return(ctx, rental.ID, time.Now().UTC())
	assert.True(t, errs.IsConflict(err))

	all, _, err := d.HardwareRepo().FindAll(ctx, Page{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsRented)
}

func TestHardwareRentalRepo_UnknownRefs(t *testing.T) {
	_, d := newTestDB(t)
	ada := createUser(t, d, "ada")

	err := d.HardwareRentalRepo().Add(context.Background(), &models.HardwareRental{UserID: ada.ID, HardwareID: 42, RentalDate: time.Now().UTC()})
	require.Error(t, err)
	assert.True(t, errs.IsValidationError(err))
}

func TestGenericLinkRepo_TargetExists(t *testing.T) {
	ctx := context.Background()
	_, d := newTestDB(t)
	ada := createUser(t, d, "ada")

	exists, err := d.GenericLinkRepo().TargetExists(ctx, models.LinkKindProfile, ada.Profile.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = d.GenericLinkRepo().TargetExists(ctx, models.LinkKindProject, 7)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = d.GenericLinkRepo().TargetExists(ctx, models.LinkKind("sponsor"), 1)
	assert.True(t, errs.IsValidationError(err))
}

func TestProfileRepo_DeleteRemovesUser(t *testing.T) {
	ctx := context.Background()
	_, d := newTestDB(t)
	ada := createUser(t, d, "ada")
	require.NoError(t, d.ProfileLinkRepo().Add(ctx, &models.ProfileLink{Link: "https://github.com/ada", LinkType: models.LinkTypeGithub, ProfileID: ada.Profile.ID}))

	owner, err := d.ProfileLinkRepo().OwnerID(ctx, ada.Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, ada.ID, owner)

	require.NoError(t, d.ProfileRepo().Delete(ctx, ada.Profile.ID))
	_, err = d.UserRepo().FindByID(ctx, ada.ID)
	assert.True(t, IsNotFound(err))
	links, err := d.ProfileLinkRepo().FindByProfile(ctx, ada.Profile.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestSectionRepo_DeleteRemovesProjects(t *testing.T) {
	ctx := context.Background()
	_, d := newTestDB(t)
	ada := createUser(t, d, "ada")

	section := &models.Section{Name: "AI", Description: "machine learning"}
	require.NoError(t, d.SectionRepo().Add(ctx, section, nil))
	project := &models.Project{Title: "p", Text: "t", CreationDate: time.Now().UTC(), CreatorID: ada.ID, SectionID: &section.ID}
	require.NoError(t, d.ProjectRepo().Add(ctx, project, ProjectRefs{Authors: ids(ada.ID)}))

	loaded, err := d.ProjectRepo().FindByID(ctx, project.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Section)
	assert.Equal(t, "AI", loaded.Section.Name)
	assert.Len(t, loaded.Authors, 1)

	require.NoError(t, d.SectionRepo().Delete(ctx, section.ID))
	_, err = d.ProjectRepo().FindByID(ctx, project.ID)
	assert.True(t, IsNotFound(err))
}

func TestGroupRepo_UpdateReplacesPermissions(t *testing.T) {
	ctx := context.Background()
	_, d := newTestDB(t)

	group := &models.Group{Name: "hardware"}
	require.NoError(t, d.GroupRepo().Add(ctx, group))
	codenames := []string{"add_hardware", "add_hardware", "change_hardware"}
	require.NoError(t, d.GroupRepo().Update(ctx, group, &codenames))

	loaded, err := d.GroupRepo().FindByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Permissions, 2)

	loaded.Name = "renamed"
	require.NoError(t, d.GroupRepo().Update(ctx, loaded, nil))
	loaded, err = d.GroupRepo().FindByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", loaded.Name)
	assert.Len(t, loaded.Permissions, 2)
}

func TestPreferenceRepo_SetUpserts(t *testing.T) {
	ctx := context.Background()
	_, d := newTestDB(t)

	require.NoError(t, d.PreferenceRepo().Set(ctx, &models.Preference{Section: "general", Name: "title", Value: []byte(`"A"`)}))
	require.NoError(t, d.PreferenceRepo().Set(ctx, &models.Preference{Section: "general", Name: "title", Value: []byte(`"B"`)}))

	all, err := d.PreferenceRepo().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.JSONEq(t, `"B"`, string(all[0].Value))
}

func TestSocialAccountRepo_CreateUserWithAccount(t *testing.T) {
	ctx := context.Background()
	_, d := newTestDB(t)

	user := &models.User{Username: "octocat", Password: "!"}
	account := &models.SocialAccount{Provider: "github", UID: "583231", ExtraData: []byte(`{"login":"octocat"}`)}
	require.NoError(t, d.SocialAccountRepo().CreateUserWithAccount(ctx, user, account))

	found, err := d.SocialAccountRepo().FindByProviderUID(ctx, "github", "583231")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.UserID)

	found.ExtraData = []byte(`{"login":"octocat","name":"Mona"}`)
	require.NoError(t, d.SocialAccountRepo().Upsert(ctx, &models.SocialAccount{
		UserID: user.ID, Provider: "github", UID: "583231", ExtraData: found.ExtraData,
	}))
	count, err := d.SocialAccountRepo().CountForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, err = d.ProfileRepo().FindByUserID(ctx, user.ID)
	assert.NoError(t, err)
}

func TestPing(t *testing.T) {
	_, d := newTestDB(t)
	assert.NoError(t, d.Ping(context.Background()))
}

func TestUserRepo_UpdateWithPassword(t *testing.T) {
	ctx := context.Background()
	db, d := newTestDB(t)
	ada := createUser(t, d, "ada")

	ada.FirstName = "Ada"
	require.NoError(t, d.UserRepo().Update(ctx, ada, nil, ""))
	var stored models.User
	require.NoError(t, db.First(&stored, ada.ID).Error)
	assert.Equal(t, "Ada", stored.FirstName)
	assert.Equal(t, "!", stored.Password)

	ada.LastName = "Lovelace"
	require.NoError(t, d.UserRepo().Update(ctx, ada, nil, "$2a$10$hash"))
	require.NoError(t, db.First(&stored, ada.ID).Error)
	assert.Equal(t, "Lovelace", stored.LastName)
	assert.Equal(t, "$2a$10$hash", stored.Password)
}

func TestHardwareRepo_AddSyncsStatus(t *testing.T) {
	ctx := context.Background()
	db, d := newTestDB(t)

	item := &models.Hardware{Name: "Oscilloscope", Description: "Rigol", SerialNumber: "OSC-1", Status: models.HardwareRented}
	require.NoError(t, d.HardwareRepo().Add(ctx, item))

	var stored models.Hardware
	require.NoError(t, db.First(&stored, item.ID).Error)
	assert.Equal(t, models.HardwareAvailable, stored.Status)
}
