package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skni-kod/kolo-rest-api/models"
)

// ProjectRefs carries the many-to-many identifiers of a project write.
// A nil slice leaves that association as stored.
type ProjectRefs struct {
	Authors *[]uint
	Gallery *[]uint
}

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

func preloadProject(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Creator.Profile.Links").
		Preload("Authors.Profile.Links").
		Preload("Section.Gallery").
		Preload("Gallery").
		Preload("Links")
}

// FindAll returns projects, newest first.
func (r *ProjectRepo) FindAll(ctx context.Context, page Page) ([]models.Project, int64, error) {
	var projects []models.Project
	total, err := listPage(r.db.WithContext(ctx).Model(&models.Project{}), page, "id DESC", &projects, preloadProject)
	return projects, total, err
}

func (r *ProjectRepo) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := preloadProject(r.db.WithContext(ctx)).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepo) Add(ctx context.Context, project *models.Project, refs ProjectRefs) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkProjectRefs(tx, project); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(project).Error; err != nil {
			return err
		}
		return r.replaceRefs(tx, project, refs)
	})
}

func (r *ProjectRepo) Update(ctx context.Context, project *models.Project, refs ProjectRefs) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkProjectRefs(tx, project); err != nil {
			return err
		}
		err := tx.Model(project).Omit(clause.Associations).
			Select("title", "text", "creation_date", "publication_date", "creator_id", "section_id").
			Updates(project).Error
		if err != nil {
			return err
		}
		return r.replaceRefs(tx, project, refs)
	})
}

func (r *ProjectRepo) replaceRefs(tx *gorm.DB, project *models.Project, refs ProjectRefs) error {
	if err := replaceMany[models.User](tx, project, "Authors", "authors", refs.Authors); err != nil {
		return err
	}
	return replaceMany[models.Gallery](tx, project, "Gallery", "gallery", refs.Gallery)
}

func checkProjectRefs(tx *gorm.DB, project *models.Project) error {
	if err := mustExist[models.User](tx, project.CreatorID, "creator"); err != nil {
		return err
	}
	if project.SectionID != nil {
		return mustExist[models.Section](tx, *project.SectionID, "section")
	}
	return nil
}

// Delete removes the project with its comments, links and associations.
func (r *ProjectRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteProject(tx, id)
	})
}

func deleteProject(tx *gorm.DB, id uint) error {
	var project models.Project
	if err := tx.Select("id").First(&project, id).Error; err != nil {
		return err
	}

	var commentIDs []uint
	if err := tx.Model(&models.Comment{}).Where("project_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if err := deleteCommentTrees(tx, commentIDs); err != nil {
		return err
	}
	if err := deleteLinksFor(tx, models.LinkKindProject, id); err != nil {
		return err
	}
	for _, stmt := range []string{
		"DELETE FROM project_authors WHERE project_id = ?",
		"DELETE FROM project_gallery WHERE project_id = ?",
	} {
		if err := tx.Exec(stmt, id).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&project).Error
}

type SectionRepo struct {
	db *gorm.DB
}

func NewSectionRepo(db *gorm.DB) *SectionRepo {
	return &SectionRepo{db}
}

func (r *SectionRepo) FindAll(ctx context.Context, page Page) ([]models.Section, int64, error) {
	var sections []models.Section
	total, err := listPage(r.db.WithContext(ctx).Model(&models.Section{}), page, "id", &sections, func(q *gorm.DB) *gorm.DB {
		return q.Preload("Gallery")
	})
	return sections, total, err
}

func (r *SectionRepo) FindByID(ctx context.Context, id uint) (*models.Section, error) {
	var section models.Section
	if err := r.db.WithContext(ctx).Preload("Gallery").First(&section, id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *SectionRepo) Add(ctx context.Context, section *models.Section, gallery *[]uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(section).Error; err != nil {
			return err
		}
		return replaceMany[models.Gallery](tx, section, "Gallery", "gallery", gallery)
	})
}

func (r *SectionRepo) Update(ctx context.Context, section *models.Section, gallery *[]uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(section).Omit(clause.Associations).
			Select("name", "description", "is_visible", "icon").
			Updates(section).Error
		if err != nil {
			return err
		}
		return replaceMany[models.Gallery](tx, section, "Gallery", "gallery", gallery)
	})
}

// Delete removes the section and every project filed under it.
func (r *SectionRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var section models.Section
		if err := tx.Select("id").First(&section, id).Error; err != nil {
			return err
		}
		var projectIDs []uint
		if err := tx.Model(&models.Project{}).Where("section_id = ?", id).Pluck("id", &projectIDs).Error; err != nil {
			return err
		}
		for _, projectID := range projectIDs {
			if err := deleteProject(tx, projectID); err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM section_gallery WHERE section_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&section).Error
	})
}
