package api

import (
	"time"

	"github.com/skni-kod/kolo-rest-api/auth"
	"github.com/skni-kod/kolo-rest-api/config"
	"github.com/skni-kod/kolo-rest-api/database"
	"github.com/skni-kod/kolo-rest-api/services"
	"github.com/skni-kod/kolo-rest-api/storage"
)

// handlerDeps carries what handlers are built from.
type handlerDeps struct {
	db      database.Database
	cfg     *config.Config
	jwt     *auth.JWTService
	github  *services.GithubClient
	storage storage.Storage
	pager   pager
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps handlerDeps) *routeHandlers {
	users := newUserHandler(deps)
	return &routeHandlers{
		authHandler:        newAuthHandler(deps, users),
		userHandler:        users,
		groupHandler:       newGroupHandler(deps),
		profileHandler:     newProfileHandler(deps),
		profileLinkHandler: newProfileLinkHandler(deps),
		genericLinkHandler: newGenericLinkHandler(deps),
		articleHandler:     newArticleHandler(deps),
		commentHandler:     newCommentHandler(deps),
		tagHandler:         newTagHandler(deps),
		galleryHandler:     newGalleryHandler(deps),
		fileHandler:        newFileHandler(deps),
		hardwareHandler:    newHardwareHandler(deps),
		rentalHandler:      newRentalHandler(deps),
		projectHandler:     newProjectHandler(deps),
		sectionHandler:     newSectionHandler(deps),
		sponsorHandler:     newSponsorHandler(deps),
		footerLinkHandler:  newFooterLinkHandler(deps),
		preferenceHandler:  newPreferenceHandler(deps),
		mediaHandler:       newMediaHandler(deps),
		healthHandler:      newHealthHandler(deps),
	}
}
