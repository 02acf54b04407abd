package spotify

import (
	"context"
	"fmt"
	"time"

	"github.com/kindlewood/studio/pkg/audiocompile"
	"github.com/kindlewood/studio/pkg/config"
	"github.com/kindlewood/studio/pkg/errcodes"
	"github.com/kindlewood/studio/pkg/metrics"
	"github.com/kindlewood/studio/pkg/models"
	"github.com/kindlewood/studio/pkg/projects"
	"github.com/kindlewood/studio/pkg/publications"
	"github.com/kindlewood/studio/pkg/readiness"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

const (
	msgCompileTimeout = "Audio compilation timed out. Please try publishing again."
	msgFeedFailed     = "Failed to add the episode to the podcast feed."
	msgPublishFailed  = "Failed to publish the story to Spotify."
)

// Compiler is the part of audiocompile.Compiler the publisher needs.
type Compiler interface {
	CompileAudiobook(ctx context.Context, projectID, publicationID int) (*audiocompile.Result, error)
}

type Service struct {
	projectService     *projects.Service
	publicationService *publications.Service
	readinessService   *readiness.Service
	compiler           Compiler
	feed               *FeedBuilder
	compileTimeout     time.Duration
}

func NewService(db *bun.DB, cfg *config.Config, compiler Compiler) *Service {
	return &Service{
		projectService:     projects.NewService(db),
		publicationService: publications.NewService(db),
		readinessService:   readiness.NewService(db),
		compiler:           compiler,
		feed:               NewFeedBuilder(cfg),
		compileTimeout:     cfg.CompileTimeout,
	}
}

type PublishResult struct {
	Publication *models.Publication
	Compilation *audiocompile.Result
}

// Publish compiles the project's narration into one episode and adds it to
// the podcast feed. It blocks until the episode is in the feed or the
// attempt has failed; failures after the publication was claimed are
// recorded on the row and returned as a compilation failure.
func (svc *Service) Publish(ctx context.Context, principal models.Principal, projectID int) (*PublishResult, error) {
	log := logger.FromContext(ctx)

	project, err := svc.projectService.RetrieveOwnedProject(ctx, principal, projectID)
	if err != nil {
		return nil, err
	}

	has, required, err := svc.readinessService.AudioCoverage(ctx, project.ID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if has < required {
		return nil, errcodes.IncompleteContent(
			fmt.Sprintf("Story audio is incomplete: %d of %d narrations are ready.", has, required),
			map[string]int{"has_audio": has, "required": required},
		)
	}

	pub, err := svc.publicationService.BeginCompilation(ctx, principal, project.ID)
	if err != nil {
		return nil, err
	}
	log = log.Root(logger.Data{"publication_id": pub.ID, "project_id": project.ID})
	ctx = log.WithContext(ctx)

	started := time.Now()
	compileCtx, cancel := context.WithTimeout(ctx, svc.compileTimeout)
	result, err := svc.compiler.CompileAudiobook(compileCtx, project.ID, pub.ID)
	timedOut := errors.Is(compileCtx.Err(), context.DeadlineExceeded)
	cancel()
	if err != nil {
		if timedOut {
			return nil, svc.fail(ctx, pub, err, msgCompileTimeout)
		}
		return nil, svc.fail(ctx, pub, err, msgPublishFailed)
	}
	metrics.Compiled(time.Since(started), result.FileSize)

	err = svc.publicationService.RecordCompilation(ctx, pub.ID, result.CompiledAudioURL, result.Duration, result.FileSize)
	if err != nil {
		return nil, svc.fail(ctx, pub, err, msgPublishFailed)
	}

	if err := svc.checkFeed(ctx, pub.ID); err != nil {
		return nil, svc.fail(ctx, pub, err, msgFeedFailed)
	}

	if err := svc.publicationService.MarkPublished(ctx, pub.ID); err != nil {
		return nil, svc.fail(ctx, pub, err, msgPublishFailed)
	}

	pub, err = svc.publicationService.RetrieveByID(ctx, pub.ID)
	if err != nil {
		return nil, err
	}

	log.Info("published to spotify feed", logger.Data{
		"guid":        pub.GUID,
		"duration_ms": result.Duration.Milliseconds(),
		"size":        result.FileSize,
	})

	return &PublishResult{Publication: pub, Compilation: result}, nil
}

// checkFeed renders the feed as it will look once the publication is
// published and makes sure a podcast client can find the episode in it.
func (svc *Service) checkFeed(ctx context.Context, publicationID int) error {
	pub, err := svc.publicationService.RetrieveByID(ctx, publicationID)
	if err != nil {
		return err
	}
	pubs, err := svc.publicationService.ListFeedPublications(ctx)
	if err != nil {
		return err
	}
	data, err := svc.feed.Render(append([]*models.Publication{pub}, pubs...))
	if err != nil {
		return err
	}
	return verifyFeedItem(data, pub.GUID)
}

// fail records the failure on the publication and returns the error shown to
// the caller. Compilation errors carry their own user-facing message;
// anything else gets fallback.
func (svc *Service) fail(ctx context.Context, pub *models.Publication, cause error, fallback string) error {
	log := logger.FromContext(ctx)

	msg := fallback
	var ce *audiocompile.CompilationError
	if errors.As(cause, &ce) && fallback != msgCompileTimeout {
		msg = ce.Message
	}

	// The request may already be cancelled; the failure still has to land.
	if err := svc.publicationService.MarkFailed(context.WithoutCancel(ctx), pub.ID, msg); err != nil {
		log.Err(err).Error("failed to mark publication failed")
	}
	log.Err(cause).Warn("spotify publish failed", logger.Data{"message": msg})

	return errcodes.CompilationFailed(msg)
}

func (svc *Service) Status(ctx context.Context, projectID int) (*models.Publication, error) {
	return svc.publicationService.Retrieve(ctx, projectID, models.PlatformSpotify)
}

func (svc *Service) MarkLive(ctx context.Context, principal models.Principal, projectID int, episodeURL *string) (*models.Publication, error) {
	return svc.publicationService.MarkLive(ctx, principal, projectID, episodeURL)
}

func (svc *Service) Unpublish(ctx context.Context, principal models.Principal, projectID int) (*models.Publication, error) {
	pub, err := svc.publicationService.Unpublish(ctx, principal, projectID, models.PlatformSpotify)
	if err != nil {
		return nil, err
	}
	metrics.Unpublished(models.PlatformSpotify)
	return pub, nil
}

// Feed renders the public podcast feed.
func (svc *Service) Feed(ctx context.Context) ([]byte, error) {
	pubs, err := svc.publicationService.ListFeedPublications(ctx)
	if err != nil {
		return nil, err
	}
	return svc.feed.Render(pubs)
}
