package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/skni-kod/kolo-rest-api/database"
)

// handlerBase carries the logger and responder every handler owns.
type handlerBase struct {
	responder Responder
	logger    zerolog.Logger
}

func newHandlerBase(name string, deps handlerDeps) handlerBase {
	logger := log.With().Str("handlerName", name).Logger()
	return handlerBase{
		responder: NewResponder(logger).WithWebhook(deps.cfg.ErrorWebhookURL),
		logger:    logger,
	}
}

// crudRepo is the repository shape of entities without owners or filters.
type crudRepo[M any] interface {
	FindAll(ctx context.Context, page database.Page) ([]M, int64, error)
	FindByID(ctx context.Context, id uint) (*M, error)
	Add(ctx context.Context, item *M) error
	Update(ctx context.Context, item *M) error
	Delete(ctx context.Context, id uint) error
}

// crudHandler serves list, detail, create, update and delete for entity M
// written as W and read as R.
type crudHandler[M any, W any, R any] struct {
	handlerBase
	entity    string
	repo      crudRepo[M]
	pager     pager
	toRead    func(M) R
	writeFrom func(M) W
	apply     func(W, *M)
}

func newCRUDHandler[M any, W any, R any](
	name, entity string,
	deps handlerDeps,
	repo crudRepo[M],
	toRead func(M) R,
	writeFrom func(M) W,
	apply func(W, *M),
) crudHandler[M, W, R] {
	return crudHandler[M, W, R]{
		handlerBase: newHandlerBase(name, deps),
		entity:      entity,
		repo:        repo,
		pager:       deps.pager,
		toRead:      toRead,
		writeFrom:   writeFrom,
		apply:       apply,
	}
}

func (h crudHandler[M, W, R]) mapAll(items []M) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, h.toRead(item))
	}
	return out
}

func (h crudHandler[M, W, R]) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.pager.parse(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		items, total, err := h.repo.FindAll(r.Context(), page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", h.entity, err))
			return
		}
		writeList(h.responder, w, r, page, total, h.mapAll(items))
	}
}

func (h crudHandler[M, W, R]) get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		item, err := h.repo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", h.entity, err))
			return
		}
		h.responder.WriteJSON(w, h.toRead(*item))
	}
}

func (h crudHandler[M, W, R]) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var zero W
		payload, err := bindWrite(w, r, zero)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var item M
		h.apply(payload, &item)
		if err := h.repo.Add(r.Context(), &item); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", h.entity, err))
			return
		}
		h.logger.Info().Str("entity", h.entity).Msg("created")
		h.responder.WriteCreated(w, h.toRead(item))
	}
}

// update serves PUT and PATCH. PATCH starts from the stored values.
func (h crudHandler[M, W, R]) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		item, err := h.repo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", h.entity, err))
			return
		}
		payload, err := bindWrite(w, r, h.writeFrom(*item))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.apply(payload, item)
		if err := h.repo.Update(r.Context(), item); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", h.entity, err))
			return
		}
		updated, err := h.repo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", h.entity, err))
			return
		}
		h.responder.WriteJSON(w, h.toRead(*updated))
	}
}

func (h crudHandler[M, W, R]) delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.repo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", h.entity, err))
			return
		}
		h.responder.WriteNoContent(w)
	}
}
