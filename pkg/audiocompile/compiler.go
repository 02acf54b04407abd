package audiocompile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/kindlewood/studio/pkg/blobstore"
	"github.com/kindlewood/studio/pkg/models"
	"github.com/kindlewood/studio/pkg/projects"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/tcolgate/mp3"
	"github.com/uptrace/bun"
)

const (
	mimeMP3 = "audio/mpeg"
	// maxSegmentSize bounds a single narration download.
	maxSegmentSize = 64 << 20
)

type Result struct {
	CompiledAudioURL string
	Key              string
	Duration         time.Duration
	FileSize         int64
}

type segment struct {
	label string // "cover" or "scene N", used in error messages
	url   string
}

// Compiler joins a project's narration into one MP3 audiobook.
type Compiler struct {
	projectService *projects.Service
	store          blobstore.Store
	fetcher        SegmentFetcher
}

func NewCompiler(db *bun.DB, store blobstore.Store, fetcher SegmentFetcher) *Compiler {
	return &Compiler{
		projectService: projects.NewService(db),
		store:          store,
		fetcher:        fetcher,
	}
}

// ObjectKey is where the audiobook for a publication is stored. Recompiling
// overwrites it.
func ObjectKey(projectID, publicationID int) string {
	return fmt.Sprintf("projects/%d/audiobook/%d.mp3", projectID, publicationID)
}

// CompileAudiobook concatenates the cover narration and every scene's
// narration (in scene order) frame by frame, uploads the result and returns
// where it lives. Failures are *CompilationError.
func (c *Compiler) CompileAudiobook(ctx context.Context, projectID, publicationID int) (*Result, error) {
	log := logger.FromContext(ctx)

	segments, err := c.segments(ctx, projectID)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "audiobook-*.mp3")
	if err != nil {
		return nil, compilationError(errors.WithStack(err), "Failed to prepare the audiobook file.")
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	var total time.Duration
	var size int64
	for _, seg := range segments {
		d, n, err := c.appendSegment(ctx, tmp, seg)
		if err != nil {
			return nil, err
		}
		total += d
		size += n
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, compilationError(errors.WithStack(err), "Failed to prepare the audiobook file.")
	}

	key := ObjectKey(projectID, publicationID)
	obj, err := c.store.Put(ctx, key, tmp, mimeMP3)
	if err != nil {
		return nil, compilationError(err, "Failed to upload the compiled audiobook.")
	}

	log.Info("compiled audiobook", logger.Data{
		"project_id":     projectID,
		"publication_id": publicationID,
		"segments":       len(segments),
		"duration_ms":    total.Milliseconds(),
		"size":           obj.Size,
	})

	return &Result{
		CompiledAudioURL: obj.URL,
		Key:              key,
		Duration:         total,
		FileSize:         size,
	}, nil
}

// segments lists the narration in playback order: cover first, then scenes
// by scene number. The first narrated page wins when a scene has several.
func (c *Compiler) segments(ctx context.Context, projectID int) ([]segment, error) {
	scenes, err := c.projectService.ListScenes(ctx, projectID)
	if err != nil {
		return nil, compilationError(err, "Failed to load the story's scenes.")
	}
	pages, err := c.projectService.ListAudioPages(ctx, projectID, models.AudioPageTypeCover, models.AudioPageTypeScene)
	if err != nil {
		return nil, compilationError(err, "Failed to load the story's audio.")
	}

	var cover *models.AudioPage
	byScene := map[int]*models.AudioPage{}
	for _, p := range pages {
		if !p.HasAudio() {
			continue
		}
		switch {
		case p.PageType == models.AudioPageTypeCover && cover == nil:
			cover = p
		case p.PageType == models.AudioPageTypeScene && p.SceneID != nil:
			if _, ok := byScene[*p.SceneID]; !ok {
				byScene[*p.SceneID] = p
			}
		}
	}

	if cover == nil {
		return nil, compilationError(nil, "Missing audio for the cover")
	}
	segments := []segment{{label: "the cover", url: *cover.AudioURL}}
	for _, s := range scenes {
		p, ok := byScene[s.ID]
		if !ok {
			return nil, compilationError(nil, fmt.Sprintf("Missing audio for scene %d", s.SceneNumber))
		}
		segments = append(segments, segment{label: fmt.Sprintf("scene %d", s.SceneNumber), url: *p.AudioURL})
	}
	return segments, nil
}

func (c *Compiler) appendSegment(ctx context.Context, w io.Writer, seg segment) (time.Duration, int64, error) {
	data, err := c.download(ctx, seg)
	if err != nil {
		return 0, 0, err
	}

	if mt := mimetype.Detect(data); !mt.Is(mimeMP3) {
		return 0, 0, compilationError(nil, fmt.Sprintf("Audio for %s is not an MP3 file (detected %s)", seg.label, mt.String()))
	}

	dec := mp3.NewDecoder(bytes.NewReader(data))
	var (
		frame    mp3.Frame
		skipped  int
		duration time.Duration
		written  int64
		frames   int
	)
	for {
		err := dec.Decode(&frame, &skipped)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// A truncated trailing frame is dropped.
			break
		}
		if err != nil {
			return 0, 0, compilationError(err, fmt.Sprintf("Audio for %s could not be decoded", seg.label))
		}

		n, err := io.Copy(w, frame.Reader())
		if err != nil {
			return 0, 0, compilationError(errors.WithStack(err), "Failed to write the audiobook file.")
		}
		written += n
		duration += frame.Duration()
		frames++
	}

	if frames == 0 {
		return 0, 0, compilationError(nil, fmt.Sprintf("Audio for %s contains no MP3 frames", seg.label))
	}
	return duration, written, nil
}

func (c *Compiler) download(ctx context.Context, seg segment) ([]byte, error) {
	rc, err := c.fetcher.Fetch(ctx, seg.url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, compilationError(ctxErr, "Audio compilation timed out")
		}
		return nil, compilationError(err, fmt.Sprintf("Failed to download audio for %s", seg.label))
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxSegmentSize+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, compilationError(ctxErr, "Audio compilation timed out")
		}
		return nil, compilationError(errors.WithStack(err), fmt.Sprintf("Failed to download audio for %s", seg.label))
	}
	if len(data) > maxSegmentSize {
		return nil, compilationError(nil, fmt.Sprintf("Audio for %s is too large", seg.label))
	}
	return data, nil
}
