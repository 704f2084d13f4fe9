package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler        authHandler
	userHandler        userHandler
	groupHandler       groupHandler
	profileHandler     profileHandler
	profileLinkHandler profileLinkHandler
	genericLinkHandler genericLinkHandler
	articleHandler     articleHandler
	commentHandler     commentHandler
	tagHandler         tagHandler
	galleryHandler     galleryHandler
	fileHandler        fileHandler
	hardwareHandler    hardwareHandler
	rentalHandler      rentalHandler
	projectHandler     projectHandler
	sectionHandler     sectionHandler
	sponsorHandler     sponsorHandler
	footerLinkHandler  footerLinkHandler
	preferenceHandler  preferenceHandler
	mediaHandler       mediaHandler
	healthHandler      healthHandler
}

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Status  string            `json:"status"`
	Field   string            `json:"field,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details string            `json:"details,omitempty"`
}

// ListResponse is the envelope of a paginated list.
type ListResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
