package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/skni-kod/kolo-rest-api/errs"
	"github.com/skni-kod/kolo-rest-api/models"
)

// Permission decides whether a request may reach a handler and, for owned
// objects, whether the user may act on the object owned by ownerID.
type Permission interface {
	HasPermission(r *http.Request, user *models.User) error
	HasObjectPermission(r *http.Request, user *models.User, ownerID uint) error
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func actionFor(method string) string {
	switch method {
	case http.MethodPost:
		return models.ActionAdd
	case http.MethodPut, http.MethodPatch:
		return models.ActionChange
	case http.MethodDelete:
		return models.ActionDelete
	}
	return models.ActionView
}

func notAuthenticated() error {
	return errs.NewMissingTokenError()
}

func notAllowed() error {
	return errs.NewForbiddenError("You do not have permission to perform this action.")
}

type allowAny struct{}

func (allowAny) HasPermission(*http.Request, *models.User) error             { return nil }
func (allowAny) HasObjectPermission(*http.Request, *models.User, uint) error { return nil }

// AllowAny opens an endpoint to anonymous requests.
func AllowAny() Permission { return allowAny{} }

type authenticated struct{}

func (authenticated) HasPermission(_ *http.Request, user *models.User) error {
	if user == nil {
		return notAuthenticated()
	}
	return nil
}

func (authenticated) HasObjectPermission(*http.Request, *models.User, uint) error { return nil }

func Authenticated() Permission { return authenticated{} }

type adminOnly struct {
	readOnlyOpen bool
}

func (p adminOnly) HasPermission(r *http.Request, user *models.User) error {
	if p.readOnlyOpen && isSafeMethod(r.Method) {
		return nil
	}
	if user == nil {
		return notAuthenticated()
	}
	if !user.IsAdmin() {
		return notAllowed()
	}
	return nil
}

func (p adminOnly) HasObjectPermission(r *http.Request, user *models.User, _ uint) error {
	return p.HasPermission(r, user)
}

// AdminOnly restricts every method to staff.
func AdminOnly() Permission { return adminOnly{} }

// AdminOrReadOnly lets anyone read and staff write.
func AdminOrReadOnly() Permission { return adminOnly{readOnlyOpen: true} }

type modelPerms struct {
	model    string
	anonRead bool
}

func (p modelPerms) HasPermission(r *http.Request, user *models.User) error {
	if p.anonRead && isSafeMethod(r.Method) {
		return nil
	}
	if user == nil {
		return notAuthenticated()
	}
	if isSafeMethod(r.Method) {
		return nil
	}
	if !user.HasPerm(models.Codename(actionFor(r.Method), p.model)) {
		return notAllowed()
	}
	return nil
}

func (modelPerms) HasObjectPermission(*http.Request, *models.User, uint) error { return nil }

// ModelPermsOrAnonReadOnly lets anyone read and requires the model permission
// matching the method for writes, e.g. change_article for PUT.
func ModelPermsOrAnonReadOnly(model string) Permission {
	return modelPerms{model: model, anonRead: true}
}

// ModelPerms requires authentication for reads and the model permission for writes.
func ModelPerms(model string) Permission {
	return modelPerms{model: model}
}

type ownerOrAdmin struct {
	readOnlyOpen bool
}

func (p ownerOrAdmin) HasPermission(r *http.Request, user *models.User) error {
	if p.readOnlyOpen && isSafeMethod(r.Method) {
		return nil
	}
	if user == nil {
		return notAuthenticated()
	}
	return nil
}

func (p ownerOrAdmin) HasObjectPermission(r *http.Request, user *models.User, ownerID uint) error {
	if p.readOnlyOpen && isSafeMethod(r.Method) {
		return nil
	}
	if user == nil {
		return notAuthenticated()
	}
	if user.IsAdmin() || user.ID == ownerID {
		return nil
	}
	return notAllowed()
}

// OwnerOrAdminForUser limits an account resource to its owner and staff, reads included.
func OwnerOrAdminForUser() Permission { return ownerOrAdmin{} }

// OwnerOrAdminForComment lets anyone read, any user create and only the author or staff change.
func OwnerOrAdminForComment() Permission { return ownerOrAdmin{readOnlyOpen: true} }

// route registers h behind perm. Every endpoint names its permission explicitly.
func route(r chi.Router, method, pattern string, perm Permission, h http.HandlerFunc) {
	if perm == nil {
		panic(fmt.Sprintf("route %s %s registered without a permission", method, pattern))
	}
	responder := NewResponder(log.With().Str("handlerName", "permissions").Logger())
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if err := perm.HasPermission(req, ctxGetUser(req.Context())); err != nil {
			responder.WriteError(w, err)
			return
		}
		h(w, req.WithContext(ctxWithPermission(req.Context(), perm)))
	}))
}

// checkObjectPermission applies the route permission to an object owned by ownerID.
func checkObjectPermission(r *http.Request, ownerID uint) error {
	perm := ctxGetPermission(r.Context())
	if perm == nil {
		return errs.NewInternalError("no permission attached to route")
	}
	return perm.HasObjectPermission(r, ctxGetUser(r.Context()), ownerID)
}
