package api

import (
	"net/http"

	"github.com/skni-kod/kolo-rest-api/database"
	"github.com/skni-kod/kolo-rest-api/dto"
	"github.com/skni-kod/kolo-rest-api/models"
)

type projectHandler struct {
	handlerBase
	projects *database.ProjectRepo
	pager    pager
}

func newProjectHandler(deps handlerDeps) projectHandler {
	return projectHandler{
		handlerBase: newHandlerBase("projectHandler", deps),
		projects:    deps.db.ProjectRepo(),
		pager:       deps.pager,
	}
}

func (h projectHandler) listProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.pager.parse(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		projects, total, err := h.projects.FindAll(r.Context(), page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "projects", err))
			return
		}
		writeList(h.responder, w, r, page, total, dto.NewProjects(projects))
	}
}

func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		project, err := h.projects.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		h.responder.WriteJSON(w, dto.NewProject(*project))
	}
}

func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.ProjectWrite{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if payload.Creator == 0 {
			payload.Creator = currentUserID(r)
		}
		var project models.Project
		payload.Apply(&project)
		refs := database.ProjectRefs{Authors: payload.Authors, Gallery: payload.Gallery}
		if err := h.projects.Add(r.Context(), &project, refs); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "project", err))
			return
		}
		h.logger.Info().Uint("projectID", project.ID).Msg("project created")

		created, err := h.projects.FindByID(r.Context(), project.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		h.responder.WriteCreated(w, dto.NewProject(*created))
	}
}

func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		project, err := h.projects.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		payload, err := bindWrite(w, r, dto.ProjectWriteFrom(*project))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if payload.Creator == 0 {
			payload.Creator = project.CreatorID
		}
		payload.Apply(project)
		// the preloaded section would otherwise be saved back over section_id
		project.Section = nil
		refs := database.ProjectRefs{Authors: payload.Authors, Gallery: payload.Gallery}
		if err := h.projects.Update(r.Context(), project, refs); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "project", err))
			return
		}
		updated, err := h.projects.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		h.responder.WriteJSON(w, dto.NewProject(*updated))
	}
}

// deleteProject removes the project with its comments and links.
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.projects.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "project", err))
			return
		}
		h.logger.Info().Uint("projectID", id).Msg("project deleted")
		h.responder.WriteNoContent(w)
	}
}

type sectionHandler struct {
	handlerBase
	sections *database.SectionRepo
	pager    pager
}

func newSectionHandler(deps handlerDeps) sectionHandler {
	return sectionHandler{
		handlerBase: newHandlerBase("sectionHandler", deps),
		sections:    deps.db.SectionRepo(),
		pager:       deps.pager,
	}
}

func (h sectionHandler) listSections() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.pager.parse(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		sections, total, err := h.sections.FindAll(r.Context(), page)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "sections", err))
			return
		}
		writeList(h.responder, w, r, page, total, dto.NewSections(sections))
	}
}

func (h sectionHandler) getSection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		section, err := h.sections.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "section", err))
			return
		}
		h.responder.WriteJSON(w, dto.NewSection(*section))
	}
}

func (h sectionHandler) createSection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.SectionWrite{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var section models.Section
		payload.Apply(&section)
		if err := h.sections.Add(r.Context(), &section, payload.Gallery); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "section", err))
			return
		}
		created, err := h.sections.FindByID(r.Context(), section.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "section", err))
			return
		}
		h.responder.WriteCreated(w, dto.NewSection(*created))
	}
}

func (h sectionHandler) updateSection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		section, err := h.sections.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "section", err))
			return
		}
		payload, err := bindWrite(w, r, dto.SectionWriteFrom(*section))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		payload.Apply(section)
		if err := h.sections.Update(r.Context(), section, payload.Gallery); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "section", err))
			return
		}
		updated, err := h.sections.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "section", err))
			return
		}
		h.responder.WriteJSON(w, dto.NewSection(*updated))
	}
}

// deleteSection removes the section together with the projects filed under it.
func (h sectionHandler) deleteSection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.sections.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "section", err))
			return
		}
		h.responder.WriteNoContent(w)
	}
}
