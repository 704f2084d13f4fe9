package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/skni-kod/kolo-rest-api/database"
	"github.com/skni-kod/kolo-rest-api/dto"
	"github.com/skni-kod/kolo-rest-api/errs"
	"github.com/skni-kod/kolo-rest-api/models"
)

// linkedObjectResolver fetches and serializes the owner of a generic link.
type linkedObjectResolver func(ctx context.Context, id uint) (any, error)

type genericLinkHandler struct {
	handlerBase
	links     *database.GenericLinkRepo
	pager     pager
	resolvers map[models.LinkKind]linkedObjectResolver
}

func newGenericLinkHandler(deps handlerDeps) genericLinkHandler {
	articles := deps.db.ArticleRepo()
	profiles := deps.db.ProfileRepo()
	projects := deps.db.ProjectRepo()

	return genericLinkHandler{
		handlerBase: newHandlerBase("genericLinkHandler", deps),
		links:       deps.db.GenericLinkRepo(),
		pager:       deps.pager,
		resolvers: map[models.LinkKind]linkedObjectResolver{
			models.LinkKindArticle: func(ctx context.Context, id uint) (any, error) {
				article, err := articles.FindByID(ctx, id)
				if err != nil {
					return nil, err
				}
				counts, err := articles.CommentCounts(ctx, []uint{id})
				if err != nil {
					return nil, err
				}
				return dto.NewArticle(*article, counts[id]), nil
			},
			models.LinkKindProfile: func(ctx context.Context, id uint) (any, error) {
				profile, err := profiles.FindByID(ctx, id)
				if err != nil {
					return nil, err
				}
				return dto.NewProfile(*profile), nil
			},
			models.LinkKindProject: func(ctx context.Context, id uint) (any, error) {
				project, err := projects.FindByID(ctx, id)
				if err != nil {
					return nil, err
				}
				return dto.NewProject(*project), nil
			},
		},
	}
}

// detail resolves the owner of link. A stored kind without a resolver is a programming error.
func (h genericLinkHandler) detail(ctx context.Context, link models.GenericLink) (dto.GenericLinkDetail, error) {
	resolve, ok := h.resolvers[link.ContentType]
	if !ok {
		h.logger.Error().Uint("linkID", link.ID).Str("contentType", string(link.ContentType)).Msg("generic link has an unknown content type")
		return dto.GenericLinkDetail{}, errs.NewInternalErrorWithCause(
			"Failed to resolve linked object",
			fmt.Errorf("no resolver for content type %q", link.ContentType),
		)
	}
	linked, err := resolve(ctx, link.ObjectID)
	if err != nil {
		if database.IsNotFound(err) {
			// the owner was removed without its links; report the link alone
			h.logger.Warn().Uint("linkID", link.ID).Msg("generic link points at a missing object")
			return dto.NewGenericLinkDetail(link, nil), nil
		}
		return dto.GenericLinkDetail{}, wrapDatabaseError("find", string(link.ContentType), err)
	}
	return dto.NewGenericLinkDetail(link, linked), nil
}

func (h genericLinkHandler) listLinks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.pager.parse(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		links, total, err := h.links.FindAll(r.Context(), page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "generic links", err))
			return
		}
		out := make([]dto.GenericLinkDetail, 0, len(links))
		for _, link := range links {
			item, err := h.detail(r.Context(), link)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			out = append(out, item)
		}
		writeList(h.responder, w, r, page, total, out)
	}
}

func (h genericLinkHandler) writeLink(w http.ResponseWriter, r *http.Request, link models.GenericLink, status int) {
	out, err := h.detail(r.Context(), link)
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	h.responder.WriteJSONStatus(w, status, out)
}

func (h genericLinkHandler) getLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		link, err := h.links.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "generic link", err))
			return
		}
		h.writeLink(w, r, *link, http.StatusOK)
	}
}

func (h genericLinkHandler) checkTarget(ctx context.Context, p dto.GenericLinkWrite) error {
	exists, err := h.links.TargetExists(ctx, models.LinkKind(p.ContentType), p.ObjectID)
	if err != nil {
		return wrapDatabaseError("find", p.ContentType, err)
	}
	if !exists {
		return errs.NewInvalidFieldError("object_id", "Invalid pk \""+uintString(p.ObjectID)+"\" - object does not exist.")
	}
	return nil
}

func (h genericLinkHandler) createLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.GenericLinkWrite{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.checkTarget(r.Context(), payload); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var link models.GenericLink
		payload.Apply(&link)
		if err := h.links.Add(r.Context(), &link); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "generic link", err))
			return
		}
		h.writeLink(w, r, link, http.StatusCreated)
	}
}

func (h genericLinkHandler) updateLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		link, err := h.links.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "generic link", err))
			return
		}
		payload, err := bindWrite(w, r, dto.GenericLinkWriteFrom(*link))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.checkTarget(r.Context(), payload); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		payload.Apply(link)
		if err := h.links.Update(r.Context(), link); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "generic link", err))
			return
		}
		h.writeLink(w, r, *link, http.StatusOK)
	}
}

func (h genericLinkHandler) deleteLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.links.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "generic link", err))
			return
		}
		h.responder.WriteNoContent(w)
	}
}
