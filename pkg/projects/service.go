package projects

import (
	"context"
	"database/sql"

	"github.com/kindlewood/studio/pkg/errcodes"
	"github.com/kindlewood/studio/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// RetrieveOwnedProject returns the project if principal owns it. Projects
// that exist but belong to someone else are reported as not found.
func (svc *Service) RetrieveOwnedProject(ctx context.Context, principal models.Principal, id int) (*models.Project, error) {
	project := &models.Project{}
	err := svc.db.NewSelect().
		Model(project).
		Where("p.id = ?", id).
		Where("p.user_id = ?", principal.UserID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Project")
		}
		return nil, errors.WithStack(err)
	}
	return project, nil
}

// RetrieveProject looks a project up without an ownership check. It backs
// the public status endpoints.
func (svc *Service) RetrieveProject(ctx context.Context, id int) (*models.Project, error) {
	project := &models.Project{}
	err := svc.db.NewSelect().
		Model(project).
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Project")
		}
		return nil, errors.WithStack(err)
	}
	return project, nil
}

type ListProjectsOptions struct {
	Limit  *int
	Offset *int
}

func (svc *Service) ListOwnedProjects(ctx context.Context, principal models.Principal, opts ListProjectsOptions) ([]*models.Project, int, error) {
	var projects []*models.Project
	q := svc.db.NewSelect().
		Model(&projects).
		Where("p.user_id = ?", principal.UserID).
		Order("p.updated_at DESC", "p.id DESC")
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return projects, total, nil
}

// ListScenes returns the project's scenes ordered by scene number, with their
// generated images.
func (svc *Service) ListScenes(ctx context.Context, projectID int) ([]*models.Scene, error) {
	scenes := make([]*models.Scene, 0)
	err := svc.db.NewSelect().
		Model(&scenes).
		Relation("Images", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("gi.id ASC")
		}).
		Where("s.project_id = ?", projectID).
		Order("s.scene_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return scenes, nil
}

func (svc *Service) ListQuizQuestions(ctx context.Context, projectID int) ([]*models.QuizQuestion, error) {
	questions := make([]*models.QuizQuestion, 0)
	err := svc.db.NewSelect().
		Model(&questions).
		Where("qq.project_id = ?", projectID).
		Order("qq.question_order ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return questions, nil
}

func (svc *Service) CountQuizQuestions(ctx context.Context, projectID int) (int, error) {
	count, err := svc.db.NewSelect().
		Model((*models.QuizQuestion)(nil)).
		Where("qq.project_id = ?", projectID).
		Count(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return count, nil
}

// ListAudioPages returns the project's audio pages ordered by page number.
// pageTypes narrows the result when given.
func (svc *Service) ListAudioPages(ctx context.Context, projectID int, pageTypes ...string) ([]*models.AudioPage, error) {
	pages := make([]*models.AudioPage, 0)
	q := svc.db.NewSelect().
		Model(&pages).
		Where("ap.project_id = ?", projectID).
		Order("ap.page_number ASC", "ap.id ASC")
	if len(pageTypes) > 0 {
		q = q.Where("ap.page_type IN (?)", bun.In(pageTypes))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return pages, nil
}
