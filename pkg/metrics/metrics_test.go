package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kindlewood/studio/pkg/errcodes"
	"github.com/labstack/echo/v4"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue sums the counter family name across label sets matching
// labels.
func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := Registry.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			if matchLabels(m.GetLabel(), labels) {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func matchLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	found := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok {
			if v != pair.GetValue() {
				return false
			}
			found++
		}
	}
	return found == len(want)
}

func TestPublishAttempt(t *testing.T) {
	labels := map[string]string{"platform": "spotify", "outcome": OutcomeConflict}
	before := counterValue(t, "kindlewood_publish_attempts_total", labels)
	PublishAttempt("spotify", OutcomeConflict)
	assert.Equal(t, before+1, counterValue(t, "kindlewood_publish_attempts_total", labels))
}

func TestCompiled(t *testing.T) {
	before := counterValue(t, "kindlewood_compiled_audio_bytes_total", nil)
	Compiled(1500*time.Millisecond, 4096)
	assert.Equal(t, before+4096, counterValue(t, "kindlewood_compiled_audio_bytes_total", nil))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Outcome(nil))
	assert.Equal(t, OutcomeIncomplete, Outcome(errcodes.IncompleteContent("Story is incomplete.", nil)))
	assert.Equal(t, OutcomeConflict, Outcome(fmt.Errorf("publish: %w", errcodes.Conflict("In progress."))))
	assert.Equal(t, OutcomeFailed, Outcome(errcodes.CompilationFailed("Missing audio for scene 3")))
	assert.Equal(t, OutcomeFailed, Outcome(errors.New("boom")))
}

func TestRegisterRoutes(t *testing.T) {
	e := echo.New()
	RegisterRoutes(e)
	StaleCompilationsFailed(2)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kindlewood_stale_compilations_total")
}
