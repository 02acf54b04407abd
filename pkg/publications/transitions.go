package publications

import (
	"sort"

	"github.com/kindlewood/studio/pkg/models"
)

// statusNone is the "from" state of a publication that doesn't exist yet.
const statusNone = ""

// transitions lists, per platform, the statuses each status may move to.
// Spotify publications compile before they're published and only go live
// once the platform confirms it; Kids App publications go live directly and
// may be re-published in place to refresh their metadata and targets. An
// unpublished Spotify episode stays unpublished.
var transitions = map[string]map[string][]string{
	models.PlatformSpotify: {
		statusNone:                        {models.PublicationStatusCompiling},
		models.PublicationStatusCompiling: {models.PublicationStatusPublished, models.PublicationStatusFailed},
		models.PublicationStatusFailed:    {models.PublicationStatusCompiling},
		models.PublicationStatusPublished: {models.PublicationStatusLive, models.PublicationStatusUnpublished},
		models.PublicationStatusLive:      {models.PublicationStatusUnpublished},
	},
	models.PlatformKindlewoodApp: {
		statusNone:                          {models.PublicationStatusLive},
		models.PublicationStatusLive:        {models.PublicationStatusLive, models.PublicationStatusUnpublished},
		models.PublicationStatusUnpublished: {models.PublicationStatusLive},
	},
}

// CanTransition reports whether a publication on platform may move from one
// status to another. Use "" as from for a publication that doesn't exist.
func CanTransition(platform, from, to string) bool {
	for _, next := range transitions[platform][from] {
		if next == to {
			return true
		}
	}
	return false
}

// sourcesOf returns the existing statuses that may move to "to", sorted.
// They become the status guard of the conditional UPDATE that performs the
// transition.
func sourcesOf(platform, to string) []string {
	sources := make([]string, 0)
	for from, nexts := range transitions[platform] {
		if from == statusNone {
			continue
		}
		for _, next := range nexts {
			if next == to {
				sources = append(sources, from)
				break
			}
		}
	}
	sort.Strings(sources)
	return sources
}
