package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skni-kod/kolo-rest-api/config"
	"github.com/skni-kod/kolo-rest-api/dto"
	"github.com/skni-kod/kolo-rest-api/models"
)

func (e *testEnv) createArticle(token, title string, extra map[string]any) dto.Article {
	e.t.Helper()
	body := map[string]any{"title": title, "alias": title, "text": "body of " + title, "group": "News"}
	for k, v := range extra {
		body[k] = v
	}
	rec := e.do(http.MethodPost, "/api/articles", token, body)
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.Article](e.t, rec)
}

func TestUsers_CreateAlsoCreatesProfile(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("admin", true)

	rec := e.do(http.MethodPost, "/api/users", e.token(admin), map[string]any{
		"username": "ada",
		"email":    "ada@example.com",
		"password": "analytical-engine",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[dto.User](t, rec)
	require.NotNil(t, created.Profile)

	rec = e.do(http.MethodGet, fmt.Sprintf("/api/profiles/%d", *created.Profile), e.token(admin), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decode[dto.Profile](t, rec)
	require.NotNil(t, profile.User)
	assert.Equal(t, "ada", profile.User.Username)

	rec = e.do(http.MethodPost, "/api/users", e.token(admin), map[string]any{"username": "ada", "password": "analytical-engine"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsers_CreateRequiresStaff(t *testing.T) {
	e := newTestEnv(t)
	ada := e.user("ada", false)

	rec := e.do(http.MethodPost, "/api/users", e.token(ada), map[string]any{"username": "bob", "password": "analytical-engine"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPost, "/api/users", "", map[string]any{"username": "bob", "password": "analytical-engine"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsers_OwnerOrAdmin(t *testing.T) {
	e := newTestEnv(t)
	ada := e.user("ada", false)
	bob := e.user("bob", false)
	admin := e.user("admin", true)
	path := fmt.Sprintf("/api/users/%d", ada.ID)
	body := map[string]any{"username": "ada", "first_name": "Ada"}

	rec := e.do(http.MethodPut, path, e.token(bob), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPut, path, "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodPut, path, e.token(ada), body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Ada", decode[dto.User](t, rec).FirstName)

	rec = e.do(http.MethodPatch, path, e.token(admin), map[string]any{"last_name": "Lovelace"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[dto.User](t, rec)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, "Lovelace", updated.LastName)
}

func TestUsers_GroupsNeedStaff(t *testing.T) {
	e := newTestEnv(t)
	ada := e.user("ada", false)
	admin := e.user("admin", true, "add_article")
	path := fmt.Sprintf("/api/users/%d", ada.ID)

	var groupID uint
	require.NoError(t, e.gormDB.Model(&models.Group{}).Where("name = ?", "admin-perms").Pluck("id", &groupID).Error)

	rec := e.do(http.MethodPatch, path, e.token(ada), map[string]any{"groups": []uint{groupID}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPatch, path, e.token(admin), map[string]any{"groups": []uint{groupID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[dto.User](t, rec)
	assert.Equal(t, []uint{groupID}, updated.Groups)
	assert.True(t, updated.Permissions["add_article"])
}

func TestUsers_RejectedPasswordWritesNothing(t *testing.T) {
	e := newTestEnv(t)
	ada := e.user("ada", false)
	path := fmt.Sprintf("/api/users/%d", ada.ID)

	rec := e.do(http.MethodPut, path, e.token(ada), map[string]any{"username": "renamed", "first_name": "Changed", "password": "12345678"})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"password"`)

	rec = e.do(http.MethodPatch, "/rest-auth/user", e.token(ada), map[string]any{"last_name": "Changed", "password": "short"})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var stored models.User
	require.NoError(t, e.gormDB.First(&stored, ada.ID).Error)
	assert.Equal(t, "ada", stored.Username)
	assert.Empty(t, stored.FirstName)
	assert.Empty(t, stored.LastName)

	rec = e.do(http.MethodPatch, path, e.token(ada), map[string]any{"first_name": "Ada", "password": "difference-engine"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Ada", decode[dto.User](t, rec).FirstName)

	rec = e.do(http.MethodPost, "/obtain-token", "", map[string]any{"username": "ada", "password": testPassword})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = e.do(http.MethodPost, "/obtain-token", "", map[string]any{"username": "ada", "password": "difference-engine"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestArticles_WriteNeedsModelPermission(t *testing.T) {
	e := newTestEnv(t)
	reader := e.user("reader", false)
	editor := e.user("editor", false, "add_article", "delete_article")
	body := map[string]any{"title": "t", "alias": "t", "text": "x", "group": "News"}

	rec := e.do(http.MethodPost, "/api/articles", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodPost, "/api/articles", e.token(reader), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	created := e.createArticle(e.token(editor), "hello", nil)
	assert.Equal(t, editor.ID, created.Creator.ID)
	assert.Zero(t, created.CommentsNumber)

	rec = e.do(http.MethodPut, fmt.Sprintf("/api/articles/%d", created.ID), e.token(editor), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodGet, fmt.Sprintf("/api/articles/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestArticles_FilterOrderAndPaging(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("admin", true)
	token := e.token(admin)

	rec := e.do(http.MethodPost, "/api/tags", token, map[string]any{"name": "go"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tag := decode[dto.Tag](t, rec)

	for i := 0; i < 12; i++ {
		extra := map[string]any{"publication_date": fmt.Sprintf("2020-01-%02dT00:00:00Z", i+1)}
		if i%2 == 0 {
			extra["tags"] = []uint{tag.ID}
		}
		e.createArticle(token, fmt.Sprintf("article-%d", i), extra)
	}
	e.createArticle(token, "draft", nil)

	rec = e.do(http.MethodGet, "/api/articles", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]dto.Article](t, rec)
	require.Len(t, all, 13)
	assert.Equal(t, "article-11", all[0].Title)
	assert.Equal(t, "draft", all[12].Title)

	rec = e.do(http.MethodGet, fmt.Sprintf("/api/articles?tag=%d", tag.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tagged := decode[[]dto.Article](t, rec)
	require.Len(t, tagged, 6)
	assert.Equal(t, "article-10", tagged[0].Title)

	rec = e.do(http.MethodGet, "/api/articles?tagname=go&limit=5&offset=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[ListResponse[dto.Article]](t, rec)
	assert.EqualValues(t, 6, page.Count)
	require.Len(t, page.Results, 1)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)

	rec = e.do(http.MethodGet, "/api/articles?limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[ListResponse[dto.Article]](t, rec)
	assert.EqualValues(t, 13, first.Count)
	assert.Len(t, first.Results, 5)
	require.NotNil(t, first.Next)
	assert.Contains(t, *first.Next, "offset=5")
	assert.Nil(t, first.Previous)

	rec = e.do(http.MethodGet, "/api/articles?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodGet, "/api/articles?limit=-3", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodGet, "/api/articles?offset=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComments_ExactlyOneTarget(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("admin", true)
	ada := e.user("ada", false)
	article := e.createArticle(e.token(admin), "a", nil)

	rec := e.do(http.MethodPost, "/api/projects", e.token(admin), map[string]any{"title": "p", "text": "t"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project := decode[dto.Project](t, rec)

	rec = e.do(http.MethodPost, "/api/comments", e.token(ada), map[string]any{"text": "both", "article": article.ID, "project": project.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/api/comments", e.token(ada), map[string]any{"text": "neither"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/api/comments", "", map[string]any{"text": "anon", "article": article.ID})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodPost, "/api/comments", e.token(ada), map[string]any{"text": "root", "article": article.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	root := decode[dto.Comment](t, rec)
	assert.Equal(t, ada.ID, root.User.ID)

	rec = e.do(http.MethodPost, "/api/comments", e.token(ada), map[string]any{"text": "wrong place", "project": project.ID, "parent": root.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/api/comments", e.token(admin), map[string]any{"text": "reply", "article": article.ID, "parent": root.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(http.MethodGet, fmt.Sprintf("/api/comments/%d", root.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tree := decode[dto.Comment](t, rec)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "reply", tree.Children[0].Text)

	rec = e.do(http.MethodGet, fmt.Sprintf("/api/articles/%d", article.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode[dto.Article](t, rec).CommentsNumber)
}

func (e *testEnv) comment(token string, body map[string]any) dto.Comment {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/comments", token, body)
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.Comment](e.t, rec)
}

func TestComments_TreeDepthAndOrder(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("admin", true)
	token := e.token(admin)
	article := e.createArticle(token, "a", nil)

	root := e.comment(token, map[string]any{"text": "root", "article": article.ID})
	parent := root.ID
	for i := 1; i <= 15; i++ {
		parent = e.comment(token, map[string]any{"text": fmt.Sprintf("level %d", i), "article": article.ID, "parent": parent}).ID
	}
	for i := 1; i <= 3; i++ {
		e.comment(token, map[string]any{"text": fmt.Sprintf("sibling %d", i), "article": article.ID, "parent": root.ID})
	}

	rec := e.do(http.MethodGet, fmt.Sprintf("/api/comments/%d", root.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tree := decode[dto.Comment](t, rec)

	texts := make([]string, 0, len(tree.Children))
	for _, c := range tree.Children {
		texts = append(texts, c.Text)
	}
	assert.Equal(t, []string{"sibling 3", "sibling 2", "sibling 1", "level 1"}, texts)

	depth := 0
	node := tree.Children[len(tree.Children)-1]
	for {
		depth++
		if len(node.Children) == 0 {
			break
		}
		node = node.Children[0]
	}
	assert.Equal(t, 10, depth)
	assert.Equal(t, "level 10", node.Text)
}

func TestComments_TreeNodeCap(t *testing.T) {
	e := newTestEnv(t, func(cfg *config.Config) { cfg.CommentTreeMaxNodes = 4 })
	admin := e.user("admin", true)
	token := e.token(admin)
	article := e.createArticle(token, "a", nil)

	root := e.comment(token, map[string]any{"text": "root", "article": article.ID})
	first := e.comment(token, map[string]any{"text": "reply 1", "article": article.ID, "parent": root.ID})
	for i := 2; i <= 6; i++ {
		e.comment(token, map[string]any{"text": fmt.Sprintf("reply %d", i), "article": article.ID, "parent": root.ID})
	}
	e.comment(token, map[string]any{"text": "nested", "article": article.ID, "parent": first.ID})

	rec := e.do(http.MethodGet, fmt.Sprintf("/api/comments/%d", root.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tree := decode[dto.Comment](t, rec)

	var count func(c dto.Comment) int
	count = func(c dto.Comment) int {
		n := len(c.Children)
		for _, child := range c.Children {
			n += count(child)
		}
		return n
	}
	assert.Equal(t, 4, count(tree))
	require.Len(t, tree.Children, 4)
	assert.Equal(t, "reply 6", tree.Children[0].Text)
}

func TestComments_OnlyAuthorOrAdminChanges(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("admin", true)
	ada := e.user("ada", false)
	bob := e.user("bob", false)
	article := e.createArticle(e.token(admin), "a", nil)

	rec := e.do(http.MethodPost, "/api/comments", e.token(ada), map[string]any{"text": "mine", "article": article.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	comment := decode[dto.Comment](t, rec)
	path := fmt.Sprintf("/api/comments/%d", comment.ID)

	rec = e.do(http.MethodPatch, path, e.token(bob), map[string]any{"text": "hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPatch, path, e.token(ada), map[string]any{"text": "edited"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "edited", decode[dto.Comment](t, rec).Text)

	rec = e.do(http.MethodPatch, path, e.token(ada), map[string]any{"parent": comment.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodDelete, path, e.token(admin), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestArticles_DeleteRemovesComments(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("admin", true)
	article := e.createArticle(e.token(admin), "a", nil)

	rec := e.do(http.MethodPost, "/api/comments", e.token(admin), map[string]any{"text": "c", "article": article.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	comment := decode[dto.Comment](t, rec)

	rec = e.do(http.MethodDelete, fmt.Sprintf("/api/articles/%d", article.ID), e.token(admin), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(http.MethodGet, fmt.Sprintf("/api/comments/%d", comment.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(http.MethodGet, fmt.Sprintf("/api/articles/%d", article.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHardware_RentalLifecycle(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("admin", true)
	ada := e.user("ada", false)
	token := e.token(admin)

	rec := e.do(http.MethodPost, "/api/hardwares", token, map[string]any{
		"name": "Arduino", "description": "Uno R3", "serial_number": "ARD-1", "status": "Available",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	hw := decode[dto.Hardware](t, rec)
	assert.False(t, hw.IsRented)

	rec = e.do(http.MethodGet, "/api/hardware_rentals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodPost, "/api/hardware_rentals", e.token(ada), map[string]any{"hardware": hw.ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPost, "/api/hardware_rentals", token, map[string]any{"hardware": hw.ID, "user": ada.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rental := decode[dto.HardwareRental](t, rec)
	assert.Equal(t, ada.ID, rental.User.ID)
	assert.Nil(t, rental.ReturnDate)

	rec = e.do(http.MethodGet, fmt.Sprintf("/api/hardwares/%d", hw.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hw = decode[dto.Hardware](t, rec)
	assert.True(t, hw.IsRented)
	assert.Equal(t, models.HardwareRented, hw.Status)

	rec = e.do(http.MethodPost, "/api/hardware_rentals", token, map[string]any{"hardware": hw.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(http.MethodPost, fmt.Sprintf("/api/hardware_rentals/%d/return", rental.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, decode[dto.HardwareRental](t, rec).ReturnDate)

	rec = e.do(http.MethodGet, "/api/hardwares", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]dto.Hardware](t, rec)
	require.Len(t, items, 1)
	assert.False(t, items[0].IsRented)
	assert.Equal(t, models.HardwareAvailable, items[0].Status)
}

func TestHardware_CreateStoresSyncedStatus(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("admin", true)

	rec := e.do(http.MethodPost, "/api/hardwares", e.token(admin), map[string]any{
		"name": "Multimeter", "description": "Fluke", "serial_number": "MM-1", "status": "Rented",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	hw := decode[dto.Hardware](t, rec)
	assert.False(t, hw.IsRented)
	assert.Equal(t, models.HardwareAvailable, hw.Status)

	var stored models.Hardware
	require.NoError(t, e.gormDB.First(&stored, hw.ID).Error)
	assert.Equal(t, models.HardwareAvailable, stored.Status)
}

func TestSponsors_PutRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("admin", true)
	token := e.token(admin)

	rec := e.do(http.MethodPost, "/api/sponsors", token, map[string]any{"name": "ACME", "logo": "sponsor_logo/acme.png"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[dto.Sponsor](t, rec)

	path := fmt.Sprintf("/api/sponsors/%d", created.ID)
	rec = e.do(http.MethodPut, path, token, created)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, created, decode[dto.Sponsor](t, rec))

	rec = e.do(http.MethodPost, "/api/sponsors", token, map[string]any{"name": "No logo"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenericLinks_ResolveOwner(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("admin", true)
	ada := e.user("ada", false)
	token := e.token(admin)

	rec := e.do(http.MethodPost, "/api/generic_links", token, map[string]any{
		"link": "https://github.com/ada", "link_type": "GITHUB", "content_type": "profile", "object_id": ada.Profile.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	link := decode[dto.GenericLinkDetail](t, rec)
	assert.Equal(t, models.LinkKindProfile, link.ContentType)
	assert.NotNil(t, link.LinkedObject)

	rec = e.do(http.MethodPost, "/api/generic_links", token, map[string]any{
		"link": "https://example.com", "link_type": "OTHER", "content_type": "project", "object_id": 404,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodGet, fmt.Sprintf("/api/profiles/%d", ada.Profile.ID), e.token(ada), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[dto.Profile](t, rec)
	require.Len(t, profile.Links, 1)
	assert.Equal(t, "https://github.com/ada", profile.Links[0].Link)
}

func TestProfileLinks_OwnerOnly(t *testing.T) {
	e := newTestEnv(t)
	ada := e.user("ada", false)
	bob := e.user("bob", false)
	body := map[string]any{"link": "https://ada.dev", "link_type": "BLOG", "profile": ada.Profile.ID}

	rec := e.do(http.MethodPost, "/api/profile_links", e.token(bob), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPost, "/api/profile_links", e.token(ada), body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(http.MethodGet, "/api/profile_links", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]dto.ProfileLink](t, rec), 1)
}

func TestPreferences(t *testing.T) {
	e := newTestEnv(t)
	admin := e.user("admin", true)
	ada := e.user("ada", false)
	path := "/api/preferences/global/general__default_page_color"

	rec := e.do(http.MethodGet, "/api/preferences/global", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	prefs := decode[[]dto.Preference](t, rec)
	assert.Len(t, prefs, len(globalPreferences))

	rec = e.do(http.MethodPut, path, e.token(ada), map[string]any{"value": "accent"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodPut, path, e.token(admin), map[string]any{"value": "plaid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPut, path, e.token(admin), map[string]any{"value": "accent"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pref := decode[dto.Preference](t, rec)
	assert.Equal(t, "accent", pref.Value)
	assert.Equal(t, "primary", pref.Default)

	rec = e.do(http.MethodGet, "/api/preferences/global/general__missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuth_TokenFlow(t *testing.T) {
	e := newTestEnv(t)
	e.user("ada", false)

	rec := e.do(http.MethodPost, "/obtain-token", "", map[string]any{"username": "ada", "password": "wrong-password"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/obtain-token", "", map[string]any{"username": "ada", "password": testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	pair := decode[dto.TokenPair](t, rec)

	rec = e.do(http.MethodGet, "/rest-auth/user", pair.Access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada", decode[dto.User](t, rec).Username)

	rec = e.do(http.MethodGet, "/rest-auth/user", pair.Refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodPost, "/refresh-token", "", map[string]any{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[map[string]string](t, rec)["access"])

	rec = e.do(http.MethodPost, "/verify-token", "", map[string]any{"token": pair.Refresh})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodPost, "/rest-auth/login", "", map[string]any{"email": "ada@example.com", "password": testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ada", decode[dto.LoginResult](t, rec).User.Username)
}

func TestAuth_RegisterAndChangePassword(t *testing.T) {
	e := newTestEnv(t)
	body := map[string]any{
		"username": "grace", "email": "grace@example.com",
		"password1": "cobol-compiler", "password2": "cobol-compiler",
		"first_name": "Grace", "last_name": "Hopper",
	}

	rec := e.do(http.MethodPost, "/rest-auth/registration", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decode[dto.LoginResult](t, rec)
	require.NotNil(t, result.User.Profile)

	rec = e.do(http.MethodPost, "/rest-auth/registration", "", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/rest-auth/password/change", result.AccessToken, map[string]any{
		"old_password": "not-it", "new_password1": "flow-matic-1", "new_password2": "flow-matic-1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/rest-auth/password/change", result.AccessToken, map[string]any{
		"old_password": "cobol-compiler", "new_password1": "flow-matic-1", "new_password2": "flow-matic-1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(http.MethodPost, "/obtain-token", "", map[string]any{"username": "grace", "password": "flow-matic-1"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_GithubDisabled(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, "/rest-auth/github", "", map[string]any{"code": "abc"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMedia_Upload(t *testing.T) {
	e := newTestEnv(t)
	ada := e.user("ada", false)

	upload := func(token, dir string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("dir", dir))
		part, err := mw.CreateFormFile("file", "avatar.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("png"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/media", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, upload("", "avatars").Code)
	assert.Equal(t, http.StatusBadRequest, upload(e.token(ada), "etc").Code)

	rec := upload(e.token(ada), "avatars")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "/media/avatars/")
}
