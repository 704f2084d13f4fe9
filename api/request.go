package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/skni-kod/kolo-rest-api/database"
	"github.com/skni-kod/kolo-rest-api/dto"
	"github.com/skni-kod/kolo-rest-api/errs"
)

const maxBodySize int64 = 1 << 20

// decodeJSON reads the request body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var maxErr *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &maxErr):
		return errs.NewMaxBodySizeExceededError(maxBodySize)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return errs.NewInvalidFieldError(typeErr.Field, "Incorrect type. Expected "+typeErr.Type.String()+".")
	default:
		return errs.NewInvalidJSONError(err)
	}
}

// bindWrite decodes and validates a write payload. PATCH requests start from
// seed so that only the fields present in the body change.
func bindWrite[W any](w http.ResponseWriter, r *http.Request, seed W) (W, error) {
	var payload W
	if r.Method == http.MethodPatch {
		payload = seed
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		return payload, err
	}
	return payload, dto.Validate(&payload)
}

// pathID parses the {id} URL parameter. Anything but a positive integer is not found.
func pathID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errs.NewNotFoundError("Not found")
	}
	return uint(id), nil
}

// queryID parses an optional positive integer query parameter.
func queryID(r *http.Request, name string) (*uint, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, errs.NewInvalidFieldError(name, "Enter a whole number.")
	}
	v := uint(id)
	return &v, nil
}

// pager turns limit and offset query parameters into a database.Page.
type pager struct {
	defaultLimit int
	maxLimit     int
}

func (p pager) parse(r *http.Request) (database.Page, error) {
	q := r.URL.Query()
	rawLimit, rawOffset := q.Get("limit"), q.Get("offset")
	if rawLimit == "" && rawOffset == "" {
		return database.Page{}, nil
	}

	page := database.Page{Limit: p.defaultLimit, Enabled: true}
	if rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit < 0 {
			return page, errs.NewInvalidFieldError("limit", "Enter a whole number.")
		}
		if limit > 0 {
			page.Limit = limit
		}
	}
	if page.Limit > p.maxLimit {
		page.Limit = p.maxLimit
	}
	if rawOffset != "" {
		offset, err := strconv.Atoi(rawOffset)
		if err != nil || offset < 0 {
			return page, errs.NewInvalidFieldError("offset", "Enter a whole number.")
		}
		page.Offset = offset
	}
	return page, nil
}

// writeList answers a bare array, or the count/next/previous envelope when paging was requested.
func writeList[T any](responder Responder, w http.ResponseWriter, r *http.Request, page database.Page, total int64, items []T) {
	if items == nil {
		items = []T{}
	}
	if !page.Enabled {
		responder.WriteJSON(w, items)
		return
	}

	resp := ListResponse[T]{Count: total, Results: items}
	if int64(page.Offset+page.Limit) < total {
		next := pageURL(r, page.Limit, page.Offset+page.Limit)
		resp.Next = &next
	}
	if page.Offset > 0 {
		prevOffset := page.Offset - page.Limit
		if prevOffset < 0 {
			prevOffset = 0
		}
		prev := pageURL(r, page.Limit, prevOffset)
		resp.Previous = &prev
	}
	responder.WriteJSON(w, resp)
}

func pageURL(r *http.Request, limit, offset int) string {
	u := url.URL{
		Scheme: "http",
		Host:   r.Host,
		Path:   r.URL.Path,
	}
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	q := r.URL.Query()
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

// currentUserID returns the id of the authenticated user, or 0 for anonymous requests.
func currentUserID(r *http.Request) uint {
	if user := ctxGetUser(r.Context()); user != nil {
		return user.ID
	}
	return 0
}
