package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/skni-kod/kolo-rest-api/database"
	"github.com/skni-kod/kolo-rest-api/dto"
	"github.com/skni-kod/kolo-rest-api/errs"
	"github.com/skni-kod/kolo-rest-api/models"
)

type articleHandler struct {
	handlerBase
	articles *database.ArticleRepo
	pager    pager
}

func newArticleHandler(deps handlerDeps) articleHandler {
	return articleHandler{
		handlerBase: newHandlerBase("articleHandler", deps),
		articles:    deps.db.ArticleRepo(),
		pager:       deps.pager,
	}
}

func articleFilterFrom(r *http.Request) (database.ArticleFilter, error) {
	q := r.URL.Query()
	filter := database.ArticleFilter{
		TagName:    strings.TrimSpace(q.Get("tagname")),
		AuthorName: strings.TrimSpace(q.Get("authorname")),
		Group:      models.ArticleGroup(strings.TrimSpace(q.Get("group"))),
	}
	var err error
	if filter.TagID, err = queryID(r, "tag"); err != nil {
		return filter, err
	}
	if filter.AuthorID, err = queryID(r, "author"); err != nil {
		return filter, err
	}
	return filter, nil
}

// render serializes articles with their comment counts.
func (h articleHandler) render(ctx context.Context, articles []models.Article) ([]dto.Article, error) {
	ids := make([]uint, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}
	counts, err := h.articles.CommentCounts(ctx, ids)
	if err != nil {
		return nil, wrapDatabaseError("count", "comments", err)
	}
	return dto.NewArticles(articles, counts), nil
}

func (h articleHandler) renderOne(ctx context.Context, id uint) (dto.Article, error) {
	article, err := h.articles.FindByID(ctx, id)
	if err != nil {
		return dto.Article{}, wrapDatabaseError("find", "article", err)
	}
	out, err := h.render(ctx, []models.Article{*article})
	if err != nil {
		return dto.Article{}, err
	}
	return out[0], nil
}

func (h articleHandler) listArticles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := articleFilterFrom(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		page, err := h.pager.parse(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		articles, total, err := h.articles.FindAll(r.Context(), filter, page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "articles", err))
			return
		}
		out, err := h.render(r.Context(), articles)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		writeList(h.responder, w, r, page, total, out)
	}
}

func (h articleHandler) getArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		out, err := h.renderOne(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, out)
	}
}

// createArticle stores a new article. The creator defaults to the requesting user.
func (h articleHandler) createArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.ArticleWrite{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if payload.Creator == 0 {
			payload.Creator = currentUserID(r)
		}
		var article models.Article
		payload.Apply(&article)
		refs := database.ArticleRefs{Authors: payload.Authors, Tags: payload.Tags, Gallery: payload.Gallery}
		if err := h.articles.Add(r.Context(), &article, refs); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "article", err))
			return
		}
		h.logger.Info().Uint("articleID", article.ID).Msg("article created")

		out, err := h.renderOne(r.Context(), article.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, out)
	}
}

func (h articleHandler) updateArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		article, err := h.articles.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "article", err))
			return
		}
		payload, err := bindWrite(w, r, dto.ArticleWriteFrom(*article))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if payload.Creator == 0 {
			payload.Creator = article.CreatorID
		}
		payload.Apply(article)
		refs := database.ArticleRefs{Authors: payload.Authors, Tags: payload.Tags, Gallery: payload.Gallery}
		if err := h.articles.Update(r.Context(), article, refs); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "article", err))
			return
		}
		out, err := h.renderOne(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, out)
	}
}

// deleteArticle removes the article with everything attached to it.
func (h articleHandler) deleteArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.articles.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "article", err))
			return
		}
		h.logger.Info().Uint("articleID", id).Msg("article deleted")
		h.responder.WriteNoContent(w)
	}
}

type commentHandler struct {
	handlerBase
	comments *database.CommentRepo
	articles *database.ArticleRepo
	projects *database.ProjectRepo
	pager    pager
	maxDepth int
	maxNodes int
}

func newCommentHandler(deps handlerDeps) commentHandler {
	return commentHandler{
		handlerBase: newHandlerBase("commentHandler", deps),
		comments:    deps.db.CommentRepo(),
		articles:    deps.db.ArticleRepo(),
		projects:    deps.db.ProjectRepo(),
		pager:       deps.pager,
		maxDepth:    deps.cfg.CommentTreeMaxDepth,
		maxNodes:    deps.cfg.CommentTreeMaxNodes,
	}
}

func (h commentHandler) listComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter database.CommentFilter
		var err error
		if filter.ArticleID, err = queryID(r, "article"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if filter.ProjectID, err = queryID(r, "project"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		page, err := h.pager.parse(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		comments, total, err := h.comments.FindAll(r.Context(), filter, page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "comments", err))
			return
		}
		out := make([]dto.Comment, 0, len(comments))
		for _, c := range comments {
			out = append(out, dto.NewComment(c))
		}
		writeList(h.responder, w, r, page, total, out)
	}
}

// tree loads the replies below root breadth first, bounded by depth and node count.
func (h commentHandler) tree(ctx context.Context, root models.Comment) (dto.Comment, error) {
	byParent := make(map[uint][]models.Comment)
	seen := map[uint]bool{root.ID: true}
	frontier := []uint{root.ID}
	remaining := h.maxNodes

	for depth := 0; depth < h.maxDepth && len(frontier) > 0 && remaining > 0; depth++ {
		children, err := h.comments.Children(ctx, frontier, remaining)
		if err != nil {
			return dto.Comment{}, wrapDatabaseError("find", "replies", err)
		}
		remaining -= len(children)
		next := make([]uint, 0, len(children))
		for _, c := range children {
			if seen[c.ID] || c.ParentID == nil {
				continue
			}
			seen[c.ID] = true
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
			next = append(next, c.ID)
		}
		frontier = next
	}

	var build func(c models.Comment) dto.Comment
	build = func(c models.Comment) dto.Comment {
		node := dto.NewComment(c)
		for _, child := range byParent[c.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}
	return build(root), nil
}

func (h commentHandler) getComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		comment, err := h.comments.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "comment", err))
			return
		}
		out, err := h.tree(r.Context(), *comment)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, out)
	}
}

// checkPlacement verifies the target of the comment exists and that a parent sits under the same target.
func (h commentHandler) checkPlacement(ctx context.Context, p dto.CommentWrite, self uint) error {
	if p.Article != nil {
		if _, err := h.articles.FindByID(ctx, *p.Article); err != nil {
			if database.IsNotFound(err) {
				return errs.NewInvalidFieldError("article", "Invalid pk \""+uintString(*p.Article)+"\" - object does not exist.")
			}
			return wrapDatabaseError("find", "article", err)
		}
	}
	if p.Project != nil {
		if _, err := h.projects.FindByID(ctx, *p.Project); err != nil {
			if database.IsNotFound(err) {
				return errs.NewInvalidFieldError("project", "Invalid pk \""+uintString(*p.Project)+"\" - object does not exist.")
			}
			return wrapDatabaseError("find", "project", err)
		}
	}
	if p.Parent == nil {
		return nil
	}

	parent, err := h.comments.FindByID(ctx, *p.Parent)
	if err != nil {
		if database.IsNotFound(err) {
			return errs.NewInvalidFieldError("parent", "Invalid pk \""+uintString(*p.Parent)+"\" - object does not exist.")
		}
		return wrapDatabaseError("find", "parent comment", err)
	}
	if !sameRef(parent.ArticleID, p.Article) || !sameRef(parent.ProjectID, p.Project) {
		return errs.NewInvalidFieldError("parent", "Parent comment belongs to a different article or project.")
	}
	if self == 0 {
		return nil
	}
	if parent.ID == self {
		return errs.NewInvalidFieldError("parent", "A comment cannot reply to itself.")
	}
	below, err := h.comments.IsDescendant(ctx, self, parent.ID)
	if err != nil {
		return wrapDatabaseError("check", "comment tree", err)
	}
	if below {
		return errs.NewInvalidFieldError("parent", "A comment cannot reply to one of its own replies.")
	}
	return nil
}

func sameRef(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (h commentHandler) createComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.CommentWrite{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.checkPlacement(r.Context(), payload, 0); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		comment := models.Comment{UserID: currentUserID(r), CreationDate: nowUTC()}
		payload.Apply(&comment)
		if err := h.comments.Add(r.Context(), &comment); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "comment", err))
			return
		}
		created, err := h.comments.FindByID(r.Context(), comment.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "comment", err))
			return
		}
		h.responder.WriteCreated(w, dto.NewComment(*created))
	}
}

func (h commentHandler) loadOwned(r *http.Request) (*models.Comment, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	comment, err := h.comments.FindByID(r.Context(), id)
	if err != nil {
		return nil, wrapDatabaseError("find", "comment", err)
	}
	if err := checkObjectPermission(r, comment.UserID); err != nil {
		return nil, err
	}
	return comment, nil
}

func (h commentHandler) updateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comment, err := h.loadOwned(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		payload, err := bindWrite(w, r, dto.CommentWriteFrom(*comment))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.checkPlacement(r.Context(), payload, comment.ID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		payload.Apply(comment)
		if err := h.comments.Update(r.Context(), comment); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "comment", err))
			return
		}
		out, err := h.tree(r.Context(), *comment)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, out)
	}
}

// deleteComment removes the comment with all of its replies.
func (h commentHandler) deleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comment, err := h.loadOwned(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.comments.Delete(r.Context(), comment.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "comment", err))
			return
		}
		h.responder.WriteNoContent(w)
	}
}

// galleryRepo narrows GalleryRepo to the unfiltered list of crudRepo.
type galleryRepo struct {
	*database.GalleryRepo
}

func (r galleryRepo) FindAll(ctx context.Context, page database.Page) ([]models.Gallery, int64, error) {
	return r.GalleryRepo.FindAll(ctx, nil, page)
}

type galleryHandler struct {
	crudHandler[models.Gallery, dto.GalleryWrite, dto.Gallery]
	gallery *database.GalleryRepo
}

func newGalleryHandler(deps handlerDeps) galleryHandler {
	repo := deps.db.GalleryRepo()
	return galleryHandler{
		crudHandler: newCRUDHandler[models.Gallery, dto.GalleryWrite, dto.Gallery]("galleryHandler", "gallery", deps, galleryRepo{repo},
			dto.NewGallery, dto.GalleryWriteFrom, dto.GalleryWrite.Apply),
		gallery: repo,
	}
}

// list accepts ?article= to show only the images of one article.
func (h galleryHandler) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		articleID, err := queryID(r, "article")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		page, err := h.pager.parse(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		items, total, err := h.gallery.FindAll(r.Context(), articleID, page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "gallery", err))
			return
		}
		writeList(h.responder, w, r, page, total, dto.NewGalleries(items))
	}
}

type fileHandler struct {
	handlerBase
	files    *database.FileRepo
	articles *database.ArticleRepo
	pager    pager
}

func newFileHandler(deps handlerDeps) fileHandler {
	return fileHandler{
		handlerBase: newHandlerBase("fileHandler", deps),
		files:       deps.db.FileRepo(),
		articles:    deps.db.ArticleRepo(),
		pager:       deps.pager,
	}
}

func (h fileHandler) render(ctx context.Context, files []models.File) ([]dto.File, error) {
	ids := make([]uint, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ArticleID)
	}
	counts, err := h.articles.CommentCounts(ctx, ids)
	if err != nil {
		return nil, wrapDatabaseError("count", "comments", err)
	}
	return dto.NewFiles(files, counts), nil
}

func (h fileHandler) renderOne(ctx context.Context, id uint) (dto.File, error) {
	file, err := h.files.FindByID(ctx, id)
	if err != nil {
		return dto.File{}, wrapDatabaseError("find", "file", err)
	}
	out, err := h.render(ctx, []models.File{*file})
	if err != nil {
		return dto.File{}, err
	}
	return out[0], nil
}

func (h fileHandler) listFiles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.pager.parse(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		files, total, err := h.files.FindAll(r.Context(), page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "files", err))
			return
		}
		out, err := h.render(r.Context(), files)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		writeList(h.responder, w, r, page, total, out)
	}
}

func (h fileHandler) getFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		out, err := h.renderOne(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, out)
	}
}

func (h fileHandler) createFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.FileWrite{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var file models.File
		payload.Apply(&file)
		if err := h.files.Add(r.Context(), &file); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "file", err))
			return
		}
		out, err := h.renderOne(r.Context(), file.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, out)
	}
}

func (h fileHandler) updateFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		file, err := h.files.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "file", err))
			return
		}
		payload, err := bindWrite(w, r, dto.FileWriteFrom(*file))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		payload.Apply(file)
		if err := h.files.Update(r.Context(), file); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "file", err))
			return
		}
		out, err := h.renderOne(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, out)
	}
}

func (h fileHandler) deleteFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.files.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "file", err))
			return
		}
		h.responder.WriteNoContent(w)
	}
}
