package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/skni-kod/kolo-rest-api/database"
	"github.com/skni-kod/kolo-rest-api/dto"
	"github.com/skni-kod/kolo-rest-api/errs"
	"github.com/skni-kod/kolo-rest-api/models"
	"github.com/skni-kod/kolo-rest-api/storage"
)

type (
	tagHandler        = crudHandler[models.Tag, dto.TagWrite, dto.Tag]
	sponsorHandler    = crudHandler[models.Sponsor, dto.SponsorWrite, dto.Sponsor]
	footerLinkHandler = crudHandler[models.FooterLink, dto.FooterLinkWrite, dto.FooterLink]
)

func newTagHandler(deps handlerDeps) tagHandler {
	return newCRUDHandler[models.Tag, dto.TagWrite, dto.Tag](
		"tagHandler", "tag", deps, deps.db.TagRepo(),
		dto.NewTag, dto.TagWriteFrom, dto.TagWrite.Apply)
}

func newSponsorHandler(deps handlerDeps) sponsorHandler {
	return newCRUDHandler[models.Sponsor, dto.SponsorWrite, dto.Sponsor](
		"sponsorHandler", "sponsor", deps, deps.db.SponsorRepo(),
		dto.NewSponsor, dto.SponsorWriteFrom, dto.SponsorWrite.Apply)
}

func newFooterLinkHandler(deps handlerDeps) footerLinkHandler {
	return newCRUDHandler[models.FooterLink, dto.FooterLinkWrite, dto.FooterLink](
		"footerLinkHandler", "footer link", deps, deps.db.FooterLinkRepo(),
		dto.NewFooterLink, dto.FooterLinkWriteFrom, dto.FooterLinkWrite.Apply)
}

// preferenceDef registers a global preference with its default and the check of new values.
type preferenceDef struct {
	section string
	name    string
	def     any
	parse   func(raw json.RawMessage) (any, error)
}

func (d preferenceDef) identifier() string {
	return d.section + "__" + d.name
}

var pageColors = []string{"primary", "secondary", "accent", "success", "warning", "error", "info"}

func parseString(raw json.RawMessage) (any, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.New("Enter a valid string.")
	}
	return s, nil
}

func parseBool(raw json.RawMessage) (any, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, errors.New("Must be a valid boolean.")
	}
	return b, nil
}

func parsePositiveInt(raw json.RawMessage) (any, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err != nil || n < 1 {
		return nil, errors.New("Enter a whole number greater than zero.")
	}
	return n, nil
}

func parseChoice(choices []string) func(json.RawMessage) (any, error) {
	return func(raw json.RawMessage) (any, error) {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			for _, c := range choices {
				if c == s {
					return s, nil
				}
			}
		}
		return nil, errors.New("Select a valid choice. " + strings.Trim(string(raw), "\"") + " is not one of the available choices.")
	}
}

var globalPreferences = []preferenceDef{
	{section: "general", name: "title", def: "Studenckie Koło Naukowe Informatyków \"KOD\"", parse: parseString},
	{section: "general", name: "registration_mode", def: false, parse: parseBool},
	{section: "general", name: "default_items_on_page", def: 5, parse: parsePositiveInt},
	{section: "general", name: "default_page_color", def: "primary", parse: parseChoice(pageColors)},
}

func findPreference(identifier string) (preferenceDef, bool) {
	for _, def := range globalPreferences {
		if def.identifier() == identifier {
			return def, true
		}
	}
	return preferenceDef{}, false
}

type preferenceHandler struct {
	handlerBase
	prefs *database.PreferenceRepo
}

func newPreferenceHandler(deps handlerDeps) preferenceHandler {
	return preferenceHandler{
		handlerBase: newHandlerBase("preferenceHandler", deps),
		prefs:       deps.db.PreferenceRepo(),
	}
}

// view reports def with the stored value, or the default when none is stored or it no longer parses.
func (h preferenceHandler) view(def preferenceDef, stored *models.Preference) dto.Preference {
	out := dto.Preference{
		Section:    def.section,
		Name:       def.name,
		Identifier: def.identifier(),
		Default:    def.def,
		Value:      def.def,
	}
	if stored != nil && len(stored.Value) > 0 {
		value, err := def.parse(json.RawMessage(stored.Value))
		if err != nil {
			h.logger.Warn().Str("preference", def.identifier()).Msg("stored preference value is invalid, using default")
			return out
		}
		out.Value = value
	}
	return out
}

func (h preferenceHandler) listPreferences() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stored, err := h.prefs.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "preferences", err))
			return
		}
		byKey := make(map[string]*models.Preference, len(stored))
		for i := range stored {
			byKey[stored[i].Section+"__"+stored[i].Name] = &stored[i]
		}
		out := make([]dto.Preference, 0, len(globalPreferences))
		for _, def := range globalPreferences {
			out = append(out, h.view(def, byKey[def.identifier()]))
		}
		h.responder.WriteJSON(w, out)
	}
}

func (h preferenceHandler) lookup(r *http.Request) (preferenceDef, *models.Preference, error) {
	def, ok := findPreference(chi.URLParam(r, "identifier"))
	if !ok {
		return def, nil, errs.NewNotFoundError("Not found")
	}
	stored, err := h.prefs.Find(r.Context(), def.section, def.name)
	if err != nil {
		if database.IsNotFound(err) {
			return def, nil, nil
		}
		return def, nil, wrapDatabaseError("find", "preference", err)
	}
	return def, stored, nil
}

func (h preferenceHandler) getPreference() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, stored, err := h.lookup(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, h.view(def, stored))
	}
}

func (h preferenceHandler) updatePreference() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, _, err := h.lookup(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		payload, err := bindWrite(w, r, dto.PreferenceWrite{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		value, err := def.parse(payload.Value)
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("value", err.Error()))
			return
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("value", err.Error()))
			return
		}
		pref := models.Preference{Section: def.section, Name: def.name, Value: encoded}
		if err := h.prefs.Set(r.Context(), &pref); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "preference", err))
			return
		}
		h.logger.Info().Str("preference", def.identifier()).Msg("preference updated")
		h.responder.WriteJSON(w, h.view(def, &pref))
	}
}

const maxUploadSize int64 = 10 << 20

// mediaDirs are the upload directories media may be stored under.
var mediaDirs = map[string]bool{
	"avatars":         true,
	"gallery":         true,
	"hardware_rental": true,
	"sponsor_logo":    true,
	"files":           true,
}

type mediaHandler struct {
	handlerBase
	storage storage.Storage
}

func newMediaHandler(deps handlerDeps) mediaHandler {
	return mediaHandler{
		handlerBase: newHandlerBase("mediaHandler", deps),
		storage:     deps.storage,
	}
}

// upload stores the multipart "file" part under "dir" and answers its stored path and URL.
func (h mediaHandler) upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(maxUploadSize))
				return
			}
			h.responder.WriteError(w, errs.NewBadRequestError("Expected a multipart form upload"))
			return
		}
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}

		dir := r.FormValue("dir")
		if dir == "" {
			dir = "files"
		}
		if !mediaDirs[dir] {
			h.responder.WriteError(w, errs.NewInvalidFieldError("dir", "\""+dir+"\" is not a valid choice."))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("file"))
			return
		}
		defer file.Close()

		stored, err := h.storage.Save(r.Context(), dir, header.Filename, file, header.Header.Get("Content-Type"))
		if err != nil {
			h.responder.WriteError(w, errs.NewStorageUploadError("media storage", err))
			return
		}
		h.logger.Info().
			Str("path", stored.Path).
			Int64("size", header.Size).
			Uint("userID", currentUserID(r)).
			Msg("media uploaded")
		h.responder.WriteCreated(w, stored)
	}
}

type healthHandler struct {
	handlerBase
	db database.Database
}

func newHealthHandler(deps handlerDeps) healthHandler {
	return healthHandler{
		handlerBase: newHandlerBase("healthHandler", deps),
		db:          deps.db,
	}
}

func (h healthHandler) healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.db.Ping(r.Context()); err != nil {
			h.responder.WriteError(w, errs.NewServiceUnavailableError("database", err))
			return
		}
		h.responder.WriteJSON(w, map[string]string{"status": "ok"})
	}
}
