package api

import (
	"context"
	"net/http"

	"github.com/skni-kod/kolo-rest-api/auth"
	"github.com/skni-kod/kolo-rest-api/database"
	"github.com/skni-kod/kolo-rest-api/dto"
	"github.com/skni-kod/kolo-rest-api/errs"
	"github.com/skni-kod/kolo-rest-api/models"
)

const usernameTakenMessage = "A user with that username already exists."

type userHandler struct {
	handlerBase
	users *database.UserRepo
	pager pager
}

func newUserHandler(deps handlerDeps) userHandler {
	return userHandler{
		handlerBase: newHandlerBase("userHandler", deps),
		users:       deps.db.UserRepo(),
		pager:       deps.pager,
	}
}

func (h userHandler) listUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.pager.parse(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		users, total, err := h.users.FindAll(r.Context(), page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "users", err))
			return
		}
		writeList(h.responder, w, r, page, total, dto.NewUsers(users))
	}
}

// createUser registers an account with its profile. The password is always hashed here.
func (h userHandler) createUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.UserWrite{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if payload.Password == nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}
		hash, err := hashNewPassword("password", *payload.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.ensureUsernameFree(r.Context(), payload.Username, 0); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user := models.User{Password: hash, IsActive: true}
		payload.Apply(&user)
		if err := h.users.CreateWithProfile(r.Context(), &user, payload.Groups); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "user", err))
			return
		}
		h.logger.Info().Uint("userID", user.ID).Msg("user created")

		created, err := h.users.FindByID(r.Context(), user.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		h.responder.WriteCreated(w, dto.NewUser(*created))
	}
}

func (h userHandler) getUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.loadOwned(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, dto.NewUser(*user))
	}
}

func (h userHandler) updateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.loadOwned(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		updated, err := h.applyUpdate(w, r, user)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, dto.NewUser(*updated))
	}
}

func (h userHandler) deleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.loadOwned(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.users.Delete(r.Context(), user.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "user", err))
			return
		}
		h.logger.Info().Uint("userID", user.ID).Msg("user deleted")
		h.responder.WriteNoContent(w)
	}
}

// loadOwned finds the user of the {id} path and applies the object permission.
func (h userHandler) loadOwned(r *http.Request) (*models.User, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		return nil, wrapDatabaseError("find", "user", err)
	}
	if err := checkObjectPermission(r, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// applyUpdate handles PUT and PATCH of an account. Only staff may change group membership.
func (h userHandler) applyUpdate(w http.ResponseWriter, r *http.Request, user *models.User) (*models.User, error) {
	payload, err := bindWrite(w, r, dto.UserWriteFrom(*user))
	if err != nil {
		return nil, err
	}
	if payload.Groups != nil && !ctxGetUser(r.Context()).IsAdmin() {
		return nil, errs.NewForbiddenError("Only staff can change group membership.")
	}
	if err := h.ensureUsernameFree(r.Context(), payload.Username, user.ID); err != nil {
		return nil, err
	}
	var hash string
	if payload.Password != nil {
		if hash, err = hashNewPassword("password", *payload.Password); err != nil {
			return nil, err
		}
	}

	payload.Apply(user)
	if err := h.users.Update(r.Context(), user, payload.Groups, hash); err != nil {
		return nil, wrapDatabaseError("update", "user", err)
	}

	updated, err := h.users.FindByID(r.Context(), user.ID)
	if err != nil {
		return nil, wrapDatabaseError("find", "user", err)
	}
	return updated, nil
}

func (h userHandler) ensureUsernameFree(ctx context.Context, username string, exceptID uint) error {
	taken, err := h.users.UsernameTaken(ctx, username, exceptID)
	if err != nil {
		return wrapDatabaseError("check", "username", err)
	}
	if taken {
		return errs.NewInvalidFieldError("username", usernameTakenMessage)
	}
	return nil
}

// hashNewPassword applies the password rules and hashes the plain text.
func hashNewPassword(field, password string) (string, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return "", errs.NewInvalidFieldError(field, err.Error())
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", errs.NewInvalidFieldError(field, err.Error())
	}
	return hash, nil
}

type groupHandler struct {
	handlerBase
	groups *database.GroupRepo
	pager  pager
}

func newGroupHandler(deps handlerDeps) groupHandler {
	return groupHandler{
		handlerBase: newHandlerBase("groupHandler", deps),
		groups:      deps.db.GroupRepo(),
		pager:       deps.pager,
	}
}

func (h groupHandler) listGroups() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.pager.parse(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		groups, total, err := h.groups.FindAll(r.Context(), page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "groups", err))
			return
		}
		writeList(h.responder, w, r, page, total, dto.NewGroups(groups))
	}
}

func (h groupHandler) getGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		group, err := h.groups.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "group", err))
			return
		}
		h.responder.WriteJSON(w, dto.NewGroup(*group))
	}
}

func (h groupHandler) createGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.GroupWrite{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		group := models.Group{Name: payload.Name}
		if err := h.groups.Add(r.Context(), &group); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "group", err))
			return
		}
		if payload.Permissions != nil {
			if err := h.groups.Update(r.Context(), &group, payload.Permissions); err != nil {
				h.responder.WriteError(w, wrapDatabaseError("update", "group", err))
				return
			}
		}
		h.responder.WriteCreated(w, dto.NewGroup(group))
	}
}

func (h groupHandler) updateGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		group, err := h.groups.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "group", err))
			return
		}
		payload, err := bindWrite(w, r, dto.GroupWriteFrom(*group))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		group.Name = payload.Name
		if err := h.groups.Update(r.Context(), group, payload.Permissions); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "group", err))
			return
		}
		updated, err := h.groups.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "group", err))
			return
		}
		h.responder.WriteJSON(w, dto.NewGroup(*updated))
	}
}

func (h groupHandler) deleteGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.groups.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "group", err))
			return
		}
		h.responder.WriteNoContent(w)
	}
}

type profileHandler struct {
	handlerBase
	profiles *database.ProfileRepo
	pager    pager
}

func newProfileHandler(deps handlerDeps) profileHandler {
	return profileHandler{
		handlerBase: newHandlerBase("profileHandler", deps),
		profiles:    deps.db.ProfileRepo(),
		pager:       deps.pager,
	}
}

func (h profileHandler) listProfiles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.pager.parse(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		profiles, total, err := h.profiles.FindAll(r.Context(), page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "profiles", err))
			return
		}
		writeList(h.responder, w, r, page, total, dto.NewProfiles(profiles))
	}
}

func (h profileHandler) loadOwned(r *http.Request) (*models.Profile, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	profile, err := h.profiles.FindByID(r.Context(), id)
	if err != nil {
		return nil, wrapDatabaseError("find", "profile", err)
	}
	if err := checkObjectPermission(r, profile.UserID); err != nil {
		return nil, err
	}
	return profile, nil
}

func (h profileHandler) getProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := h.loadOwned(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, dto.NewProfile(*profile))
	}
}

func (h profileHandler) updateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := h.loadOwned(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		payload, err := bindWrite(w, r, dto.ProfileWriteFrom(*profile))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		payload.Apply(profile)
		if err := h.profiles.Update(r.Context(), profile); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "profile", err))
			return
		}
		updated, err := h.profiles.FindByID(r.Context(), profile.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "profile", err))
			return
		}
		h.responder.WriteJSON(w, dto.NewProfile(*updated))
	}
}

// deleteProfile removes the profile and its user, which cannot exist apart.
func (h profileHandler) deleteProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := h.loadOwned(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.profiles.Delete(r.Context(), profile.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "profile", err))
			return
		}
		h.logger.Info().Uint("profileID", profile.ID).Uint("userID", profile.UserID).Msg("profile and user deleted")
		h.responder.WriteNoContent(w)
	}
}

type profileLinkHandler struct {
	handlerBase
	links *database.ProfileLinkRepo
	pager pager
}

func newProfileLinkHandler(deps handlerDeps) profileLinkHandler {
	return profileLinkHandler{
		handlerBase: newHandlerBase("profileLinkHandler", deps),
		links:       deps.db.ProfileLinkRepo(),
		pager:       deps.pager,
	}
}

func (h profileLinkHandler) listLinks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.pager.parse(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		links, total, err := h.links.FindAll(r.Context(), page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "profile links", err))
			return
		}
		writeList(h.responder, w, r, page, total, dto.NewProfileLinks(links))
	}
}

func (h profileLinkHandler) getLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		link, err := h.links.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "profile link", err))
			return
		}
		h.responder.WriteJSON(w, dto.NewProfileLink(*link))
	}
}

// checkProfileOwner applies the object permission to the user owning profileID.
func (h profileLinkHandler) checkProfileOwner(r *http.Request, profileID uint) error {
	ownerID, err := h.links.OwnerID(r.Context(), profileID)
	if err != nil {
		if database.IsNotFound(err) {
			return errs.NewInvalidFieldError("profile", "Invalid pk \""+uintString(profileID)+"\" - object does not exist.")
		}
		return wrapDatabaseError("find", "profile", err)
	}
	return checkObjectPermission(r, ownerID)
}

func (h profileLinkHandler) createLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.ProfileLinkWrite{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.checkProfileOwner(r, payload.Profile); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var link models.ProfileLink
		payload.Apply(&link)
		if err := h.links.Add(r.Context(), &link); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "profile link", err))
			return
		}
		h.responder.WriteCreated(w, dto.NewProfileLink(link))
	}
}

func (h profileLinkHandler) updateLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		link, err := h.links.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "profile link", err))
			return
		}
		if err := h.checkProfileOwner(r, link.ProfileID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		payload, err := bindWrite(w, r, dto.ProfileLinkWriteFrom(*link))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		// moving a link to another profile needs ownership of that profile too
		if payload.Profile != link.ProfileID {
			if err := h.checkProfileOwner(r, payload.Profile); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		}
		payload.Apply(link)
		if err := h.links.Update(r.Context(), link); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "profile link", err))
			return
		}
		h.responder.WriteJSON(w, dto.NewProfileLink(*link))
	}
}

func (h profileLinkHandler) deleteLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		link, err := h.links.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "profile link", err))
			return
		}
		if err := h.checkProfileOwner(r, link.ProfileID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.links.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "profile link", err))
			return
		}
		h.responder.WriteNoContent(w)
	}
}
