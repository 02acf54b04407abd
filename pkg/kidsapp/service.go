package kidsapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/kindlewood/studio/pkg/childprofiles"
	"github.com/kindlewood/studio/pkg/errcodes"
	"github.com/kindlewood/studio/pkg/models"
	"github.com/kindlewood/studio/pkg/projects"
	"github.com/kindlewood/studio/pkg/publications"
	"github.com/kindlewood/studio/pkg/readiness"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type Service struct {
	projectService      *projects.Service
	childProfileService *childprofiles.Service
	publicationService  *publications.Service
	readinessService    *readiness.Service
}

func NewService(db *bun.DB) *Service {
	return &Service{
		projectService:      projects.NewService(db),
		childProfileService: childprofiles.NewService(db),
		publicationService:  publications.NewService(db),
		readinessService:    readiness.NewService(db),
	}
}

type PublishOptions struct {
	ChildProfileIDs []int
	Category        *string
}

type PublishResult struct {
	Publication       *models.Publication
	Targets           []*Target
	PublishedTo       []string
	HasQuiz           bool
	QuizQuestionCount int
}

// Target is an active publication target with its child's name resolved.
type Target struct {
	*models.PublicationTarget
	Name string `json:"name"`
}

// Publish makes the project available in the Kids App for the given child
// profiles. Every profile has to belong to principal and the story has to
// pass the readiness gate; otherwise nothing is written.
func (svc *Service) Publish(ctx context.Context, principal models.Principal, projectID int, opts PublishOptions) (*PublishResult, error) {
	log := logger.FromContext(ctx)

	project, err := svc.projectService.RetrieveOwnedProject(ctx, principal, projectID)
	if err != nil {
		return nil, err
	}

	if err := svc.childProfileService.VerifyOwnership(ctx, principal, opts.ChildProfileIDs); err != nil {
		return nil, err
	}

	report, err := svc.readinessService.CheckPublishReadiness(ctx, principal, project.ID)
	if err != nil {
		return nil, err
	}
	if err := report.Err(); err != nil {
		return nil, err
	}

	pub, targets, err := svc.publicationService.UpsertKidsAppPublication(ctx, principal, project.ID, publications.KidsAppOptions{
		Category:        opts.Category,
		ChildProfileIDs: opts.ChildProfileIDs,
	})
	if err != nil {
		return nil, err
	}

	resolved, err := svc.resolveTargets(ctx, targets)
	if err != nil {
		return nil, err
	}

	quizCount, err := svc.projectService.CountQuizQuestions(ctx, project.ID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Only the profiles named in this request, in request order.
	names, err := svc.childProfileService.ResolveNames(ctx, opts.ChildProfileIDs)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	publishedTo := make([]string, 0, len(names))
	seen := map[int]bool{}
	for _, id := range opts.ChildProfileIDs {
		if name, ok := names[id]; ok && !seen[id] {
			publishedTo = append(publishedTo, name)
			seen[id] = true
		}
	}

	log.Info("published to kids app", logger.Data{
		"publication_id": pub.ID,
		"project_id":     project.ID,
		"targets":        len(resolved),
	})

	return &PublishResult{
		Publication:       pub,
		Targets:           resolved,
		PublishedTo:       publishedTo,
		HasQuiz:           quizCount > 0,
		QuizQuestionCount: quizCount,
	}, nil
}

func (svc *Service) resolveTargets(ctx context.Context, targets []*models.PublicationTarget) ([]*Target, error) {
	ids := make([]int, 0, len(targets))
	for _, t := range targets {
		ids = append(ids, t.TargetID)
	}
	names, err := svc.childProfileService.ResolveNames(ctx, ids)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resolved := make([]*Target, 0, len(targets))
	for _, t := range targets {
		resolved = append(resolved, &Target{PublicationTarget: t, Name: names[t.TargetID]})
	}
	return resolved, nil
}

type Status struct {
	IsPublished bool                `json:"is_published"`
	Publication *models.Publication `json:"publication,omitempty"`
	Targets     []*Target           `json:"targets"`
}

// Status reports whether the project is live in the Kids App and for whom.
// A project that was never published, or was unpublished, gets the
// not-published shape rather than an error.
func (svc *Service) Status(ctx context.Context, projectID int) (*Status, error) {
	notPublished := &Status{Targets: []*Target{}}

	pub, err := svc.publicationService.Retrieve(ctx, projectID, models.PlatformKindlewoodApp)
	if err != nil {
		var e *errcodes.Error
		if errors.As(err, &e) && e.Code == "not_found" {
			return notPublished, nil
		}
		return nil, err
	}
	if !pub.IsPublic() {
		return notPublished, nil
	}

	targets, err := svc.publicationService.ListActiveTargets(ctx, pub.ID)
	if err != nil {
		return nil, err
	}
	resolved, err := svc.resolveTargets(ctx, targets)
	if err != nil {
		return nil, err
	}

	return &Status{
		IsPublished: true,
		Publication: pub,
		Targets:     resolved,
	}, nil
}

func (svc *Service) Unpublish(ctx context.Context, principal models.Principal, projectID int) (*models.Publication, error) {
	return svc.publicationService.Unpublish(ctx, principal, projectID, models.PlatformKindlewoodApp)
}

// publishedMessage is the confirmation shown after publishing.
func publishedMessage(title string, names []string) string {
	switch len(names) {
	case 0:
		return fmt.Sprintf("%q is now in the Kids App.", title)
	case 1:
		return fmt.Sprintf("%q is now in %s's Kids App library.", title, names[0])
	}
	return fmt.Sprintf("%q is now in the Kids App libraries of %s and %s.", title, strings.Join(names[:len(names)-1], ", "), names[len(names)-1])
}
