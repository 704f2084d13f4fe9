package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/skni-kod/kolo-rest-api/errs"
	"github.com/skni-kod/kolo-rest-api/models"
)

func withPerms(id uint, codenames ...string) *models.User {
	perms := make([]models.GroupPermission, 0, len(codenames))
	for _, c := range codenames {
		perms = append(perms, models.GroupPermission{Codename: c})
	}
	return &models.User{ID: id, Groups: []models.Group{{Name: "g", Permissions: perms}}}
}

func TestPermissions(t *testing.T) {
	staff := &models.User{ID: 1, IsStaff: true}
	editor := withPerms(2, "add_article", "change_article")
	plain := withPerms(3)

	tests := []struct {
		name   string
		perm   Permission
		method string
		user   *models.User
		status int
	}{
		{"allow any anonymous", AllowAny(), http.MethodPost, nil, 0},
		{"authenticated anonymous", Authenticated(), http.MethodGet, nil, http.StatusUnauthorized},
		{"authenticated user", Authenticated(), http.MethodPost, plain, 0},
		{"admin only plain user", AdminOnly(), http.MethodGet, plain, http.StatusForbidden},
		{"admin only staff", AdminOnly(), http.MethodDelete, staff, 0},
		{"admin or read only anonymous read", AdminOrReadOnly(), http.MethodGet, nil, 0},
		{"admin or read only anonymous write", AdminOrReadOnly(), http.MethodPost, nil, http.StatusUnauthorized},
		{"model perms anonymous read", ModelPermsOrAnonReadOnly("article"), http.MethodGet, nil, 0},
		{"model perms granted add", ModelPermsOrAnonReadOnly("article"), http.MethodPost, editor, 0},
		{"model perms granted change", ModelPermsOrAnonReadOnly("article"), http.MethodPatch, editor, 0},
		{"model perms missing delete", ModelPermsOrAnonReadOnly("article"), http.MethodDelete, editor, http.StatusForbidden},
		{"model perms other model", ModelPermsOrAnonReadOnly("tag"), http.MethodPost, editor, http.StatusForbidden},
		{"model perms staff bypass", ModelPermsOrAnonReadOnly("tag"), http.MethodPost, staff, 0},
		{"strict model perms anonymous read", ModelPerms("hardwarerental"), http.MethodGet, nil, http.StatusUnauthorized},
		{"strict model perms user read", ModelPerms("hardwarerental"), http.MethodGet, plain, 0},
		{"owner for user anonymous read", OwnerOrAdminForUser(), http.MethodGet, nil, http.StatusUnauthorized},
		{"owner for comment anonymous read", OwnerOrAdminForComment(), http.MethodGet, nil, 0},
		{"owner for comment anonymous write", OwnerOrAdminForComment(), http.MethodPost, nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			err := tt.perm.HasPermission(req, tt.user)
			if tt.status == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.status, errs.StatusCode(err))
		})
	}
}

func TestOwnerOrAdmin_ObjectPermission(t *testing.T) {
	owner := &models.User{ID: 7}
	other := &models.User{ID: 8}
	staff := &models.User{ID: 9, IsSuperuser: true}
	put := httptest.NewRequest(http.MethodPut, "/", nil)
	get := httptest.NewRequest(http.MethodGet, "/", nil)

	forUser := OwnerOrAdminForUser()
	assert.NoError(t, forUser.HasObjectPermission(put, owner, 7))
	assert.NoError(t, forUser.HasObjectPermission(put, staff, 7))
	assert.True(t, errs.IsForbidden(forUser.HasObjectPermission(put, other, 7)))
	assert.True(t, errs.IsForbidden(forUser.HasObjectPermission(get, other, 7)))

	forComment := OwnerOrAdminForComment()
	assert.NoError(t, forComment.HasObjectPermission(get, nil, 7))
	assert.True(t, errs.IsForbidden(forComment.HasObjectPermission(put, other, 7)))
}

func TestRoute_PanicsWithoutPermission(t *testing.T) {
	assert.Panics(t, func() {
		route(nil, http.MethodGet, "/", nil, func(http.ResponseWriter, *http.Request) {})
	})
}

func TestResponder_WriteError(t *testing.T) {
	responder := NewResponder(zerolog.Nop())

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", errs.NewInvalidFieldError("name", "This field may not be blank."), http.StatusBadRequest, `"name":"This field may not be blank."`},
		{"not found", errs.NewNotFound("article"), http.StatusNotFound, `"article not found"`},
		{"unavailable hides cause", errs.NewServiceUnavailableError("database", errors.New("dial tcp: secret-host")), http.StatusServiceUnavailable, `"Service Unavailable"`},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, `"Internal Server Error"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			responder.WriteError(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
			assert.NotContains(t, rec.Body.String(), "secret-host")
		})
	}
}
