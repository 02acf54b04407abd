package readiness

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kindlewood/studio/pkg/errcodes"
)

// QuizAudioMissing describes the quiz narration that's absent. It's only set
// on a report when the project has quiz questions.
type QuizAudioMissing struct {
	Transition          bool  `json:"transition"`
	DuplicateTransition bool  `json:"duplicate_transition"`
	Questions           []int `json:"questions"` // question_order values
	DuplicateQuestions  []int `json:"duplicate_questions"`
}

func (q *QuizAudioMissing) empty() bool {
	return !q.Transition && !q.DuplicateTransition && len(q.Questions) == 0 && len(q.DuplicateQuestions) == 0
}

// Report is the outcome of a readiness check. Scene lists hold scene numbers
// in ascending order.
type Report struct {
	Ready                    bool              `json:"ready"`
	MissingScenes            []int             `json:"missing_scenes"`
	ScenesWithoutImages      []int             `json:"scenes_without_images"`
	ScenesWithoutAudio       []int             `json:"scenes_without_audio"`
	ScenesWithDuplicateAudio []int             `json:"scenes_with_duplicate_audio"`
	QuizAudioMissing         *QuizAudioMissing `json:"quiz_audio_missing,omitempty"`
}

func (r *Report) finalize() {
	union := map[int]struct{}{}
	for _, set := range [][]int{r.ScenesWithoutImages, r.ScenesWithoutAudio, r.ScenesWithDuplicateAudio} {
		for _, n := range set {
			union[n] = struct{}{}
		}
	}
	r.MissingScenes = make([]int, 0, len(union))
	for n := range union {
		r.MissingScenes = append(r.MissingScenes, n)
	}
	sort.Ints(r.MissingScenes)

	if r.QuizAudioMissing != nil && r.QuizAudioMissing.empty() {
		r.QuizAudioMissing = nil
	}
	r.Ready = len(r.MissingScenes) == 0 && r.QuizAudioMissing == nil
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Err returns nil for a ready report, and otherwise an IncompleteContent
// error whose message names every missing scene and question.
func (r *Report) Err() error {
	if r.Ready {
		return nil
	}

	var problems []string
	if n := len(r.ScenesWithoutImages); n > 0 {
		problems = append(problems, fmt.Sprintf("%s %s %s an image", plural(n, "scene", "scenes"), joinInts(r.ScenesWithoutImages), plural(n, "needs", "need")))
	}
	if n := len(r.ScenesWithoutAudio); n > 0 {
		problems = append(problems, fmt.Sprintf("%s %s %s narration audio", plural(n, "scene", "scenes"), joinInts(r.ScenesWithoutAudio), plural(n, "needs", "need")))
	}
	if n := len(r.ScenesWithDuplicateAudio); n > 0 {
		problems = append(problems, fmt.Sprintf("%s %s %s more than one narration audio", plural(n, "scene", "scenes"), joinInts(r.ScenesWithDuplicateAudio), plural(n, "has", "have")))
	}
	if q := r.QuizAudioMissing; q != nil {
		if q.Transition {
			problems = append(problems, "the quiz transition needs audio")
		}
		if q.DuplicateTransition {
			problems = append(problems, "the quiz transition has more than one audio")
		}
		if n := len(q.Questions); n > 0 {
			problems = append(problems, fmt.Sprintf("quiz %s %s %s audio", plural(n, "question", "questions"), joinInts(q.Questions), plural(n, "needs", "need")))
		}
		if n := len(q.DuplicateQuestions); n > 0 {
			problems = append(problems, fmt.Sprintf("quiz %s %s %s more than one audio", plural(n, "question", "questions"), joinInts(q.DuplicateQuestions), plural(n, "has", "have")))
		}
	}

	return errcodes.IncompleteContent("Story is not ready to publish: "+strings.Join(problems, "; ")+".", r)
}
