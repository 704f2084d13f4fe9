package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// crudRoutes are the handlers of one collection. A nil handler leaves the method unrouted.
type crudRoutes struct {
	list, create, get, update, delete http.HandlerFunc
}

// resource mounts the collection at path and its items at path/{id}, all behind perm.
func resource(r chi.Router, path string, perm Permission, h crudRoutes) {
	item := path + "/{id}"
	if h.list != nil {
		route(r, http.MethodGet, path, perm, h.list)
	}
	if h.create != nil {
		route(r, http.MethodPost, path, perm, h.create)
	}
	if h.get != nil {
		route(r, http.MethodGet, item, perm, h.get)
	}
	if h.update != nil {
		route(r, http.MethodPut, item, perm, h.update)
		route(r, http.MethodPatch, item, perm, h.update)
	}
	if h.delete != nil {
		route(r, http.MethodDelete, item, perm, h.delete)
	}
}

func crud[M, W, R any](h crudHandler[M, W, R]) crudRoutes {
	return crudRoutes{list: h.list(), create: h.create(), get: h.get(), update: h.update(), delete: h.delete()}
}

// setupResourceRoutes mounts the /api resources.
func setupResourceRoutes(r chi.Router, h *routeHandlers) {
	r.Route("/api", func(r chi.Router) {
		resource(r, "/articles", ModelPermsOrAnonReadOnly("article"), crudRoutes{
			list:   h.articleHandler.listArticles(),
			create: h.articleHandler.createArticle(),
			get:    h.articleHandler.getArticle(),
			update: h.articleHandler.updateArticle(),
			delete: h.articleHandler.deleteArticle(),
		})
		resource(r, "/comments", OwnerOrAdminForComment(), crudRoutes{
			list:   h.commentHandler.listComments(),
			create: h.commentHandler.createComment(),
			get:    h.commentHandler.getComment(),
			update: h.commentHandler.updateComment(),
			delete: h.commentHandler.deleteComment(),
		})
		resource(r, "/tags", ModelPermsOrAnonReadOnly("tag"), crud(h.tagHandler))
		resource(r, "/files", ModelPermsOrAnonReadOnly("file"), crudRoutes{
			list:   h.fileHandler.listFiles(),
			create: h.fileHandler.createFile(),
			get:    h.fileHandler.getFile(),
			update: h.fileHandler.updateFile(),
			delete: h.fileHandler.deleteFile(),
		})
		gallery := crud(h.galleryHandler.crudHandler)
		gallery.list = h.galleryHandler.list()
		resource(r, "/gallery", ModelPermsOrAnonReadOnly("gallery"), gallery)
		resource(r, "/hardwares", ModelPermsOrAnonReadOnly("hardware"), crud(h.hardwareHandler))

		rentalPerm := ModelPerms("hardwarerental")
		resource(r, "/hardware_rentals", rentalPerm, crudRoutes{
			list:   h.rentalHandler.listRentals(),
			create: h.rentalHandler.createRental(),
			get:    h.rentalHandler.getRental(),
			update: h.rentalHandler.updateRental(),
			delete: h.rentalHandler.deleteRental(),
		})
		route(r, http.MethodPost, "/hardware_rentals/{id}/return", rentalPerm, h.rentalHandler.returnRental())

		resource(r, "/section", ModelPermsOrAnonReadOnly("section"), crudRoutes{
			list:   h.sectionHandler.listSections(),
			create: h.sectionHandler.createSection(),
			get:    h.sectionHandler.getSection(),
			update: h.sectionHandler.updateSection(),
			delete: h.sectionHandler.deleteSection(),
		})
		resource(r, "/projects", ModelPermsOrAnonReadOnly("project"), crudRoutes{
			list:   h.projectHandler.listProjects(),
			create: h.projectHandler.createProject(),
			get:    h.projectHandler.getProject(),
			update: h.projectHandler.updateProject(),
			delete: h.projectHandler.deleteProject(),
		})
		resource(r, "/sponsors", ModelPermsOrAnonReadOnly("sponsor"), crud(h.sponsorHandler))
		resource(r, "/footer_links", ModelPermsOrAnonReadOnly("footerlink"), crud(h.footerLinkHandler))
		resource(r, "/generic_links", ModelPermsOrAnonReadOnly("genericlink"), crudRoutes{
			list:   h.genericLinkHandler.listLinks(),
			create: h.genericLinkHandler.createLink(),
			get:    h.genericLinkHandler.getLink(),
			update: h.genericLinkHandler.updateLink(),
			delete: h.genericLinkHandler.deleteLink(),
		})

		// profile links are public to read; writes are checked against the profile owner
		route(r, http.MethodGet, "/profile_links", AllowAny(), h.profileLinkHandler.listLinks())
		route(r, http.MethodGet, "/profile_links/{id}", AllowAny(), h.profileLinkHandler.getLink())
		resource(r, "/profile_links", OwnerOrAdminForUser(), crudRoutes{
			create: h.profileLinkHandler.createLink(),
			update: h.profileLinkHandler.updateLink(),
			delete: h.profileLinkHandler.deleteLink(),
		})

		// profiles are created with their user and never on their own
		route(r, http.MethodGet, "/profiles", AdminOrReadOnly(), h.profileHandler.listProfiles())
		resource(r, "/profiles", OwnerOrAdminForUser(), crudRoutes{
			get:    h.profileHandler.getProfile(),
			update: h.profileHandler.updateProfile(),
			delete: h.profileHandler.deleteProfile(),
		})

		resource(r, "/users", AdminOrReadOnly(), crudRoutes{
			list:   h.userHandler.listUsers(),
			create: h.userHandler.createUser(),
		})
		resource(r, "/users", OwnerOrAdminForUser(), crudRoutes{
			get:    h.userHandler.getUser(),
			update: h.userHandler.updateUser(),
			delete: h.userHandler.deleteUser(),
		})

		resource(r, "/groups", AdminOnly(), crudRoutes{
			list:   h.groupHandler.listGroups(),
			create: h.groupHandler.createGroup(),
			get:    h.groupHandler.getGroup(),
			update: h.groupHandler.updateGroup(),
			delete: h.groupHandler.deleteGroup(),
		})

		route(r, http.MethodGet, "/preferences/global", AdminOrReadOnly(), h.preferenceHandler.listPreferences())
		route(r, http.MethodGet, "/preferences/global/{identifier}", AdminOrReadOnly(), h.preferenceHandler.getPreference())
		route(r, http.MethodPut, "/preferences/global/{identifier}", AdminOrReadOnly(), h.preferenceHandler.updatePreference())
		route(r, http.MethodPatch, "/preferences/global/{identifier}", AdminOrReadOnly(), h.preferenceHandler.updatePreference())

		route(r, http.MethodPost, "/media", Authenticated(), h.mediaHandler.upload())
	})
}

// setupAuthRoutes mounts token, account and social login endpoints.
func setupAuthRoutes(r chi.Router, h *routeHandlers) {
	a := h.authHandler

	route(r, http.MethodPost, "/obtain-token", AllowAny(), a.obtainToken())
	route(r, http.MethodPost, "/refresh-token", AllowAny(), a.refreshToken())
	route(r, http.MethodPost, "/verify-token", AllowAny(), a.verifyToken())

	r.Route("/rest-auth", func(r chi.Router) {
		route(r, http.MethodPost, "/login", AllowAny(), a.login())
		route(r, http.MethodPost, "/logout", AllowAny(), a.logout())
		route(r, http.MethodGet, "/user", Authenticated(), a.currentUser())
		route(r, http.MethodPut, "/user", Authenticated(), a.updateCurrentUser())
		route(r, http.MethodPatch, "/user", Authenticated(), a.updateCurrentUser())
		route(r, http.MethodPost, "/password/change", Authenticated(), a.changePassword())
		route(r, http.MethodPost, "/registration", AllowAny(), a.register())
		route(r, http.MethodPost, "/github", AllowAny(), a.githubLogin())
		route(r, http.MethodPost, "/github/connect", Authenticated(), a.githubConnect())
	})

	route(r, http.MethodGet, "/socialaccounts", Authenticated(), a.listSocialAccounts())
	route(r, http.MethodPost, "/socialaccounts/{id}/disconnect", Authenticated(), a.disconnectSocialAccount())

	route(r, http.MethodGet, "/healthz", AllowAny(), h.healthHandler.healthz())
}
