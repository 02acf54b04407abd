package spotify

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/kindlewood/studio/pkg/config"
	"github.com/kindlewood/studio/pkg/htmlutil"
	"github.com/kindlewood/studio/pkg/models"
	"github.com/mmcdole/gofeed"
	"github.com/pkg/errors"
)

const (
	itunesNamespace = "http://www.itunes.com/dtds/podcast-1.0.dtd"
	feedContentType = "application/rss+xml; charset=utf-8"
	feedPath        = "/spotify/feed.xml"

	// Spotify truncates episode descriptions past this length.
	maxDescriptionRunes = 4000
)

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	ITunes  string     `xml:"xmlns:itunes,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title          string          `xml:"title"`
	Link           string          `xml:"link"`
	Description    string          `xml:"description"`
	Language       string          `xml:"language"`
	LastBuildDate  string          `xml:"lastBuildDate,omitempty"`
	ITunesAuthor   string          `xml:"itunes:author"`
	ITunesSummary  string          `xml:"itunes:summary"`
	ITunesExplicit string          `xml:"itunes:explicit"`
	ITunesType     string          `xml:"itunes:type"`
	ITunesImage    *itunesImage    `xml:"itunes:image,omitempty"`
	ITunesCategory *itunesCategory `xml:"itunes:category,omitempty"`
	Items          []rssItem       `xml:"item"`
}

type itunesImage struct {
	Href string `xml:"href,attr"`
}

type itunesCategory struct {
	Text string `xml:"text,attr"`
}

type rssItem struct {
	Title          string       `xml:"title"`
	Description    string       `xml:"description"`
	Enclosure      rssEnclosure `xml:"enclosure"`
	GUID           rssGUID      `xml:"guid"`
	PubDate        string       `xml:"pubDate"`
	ITunesDuration string       `xml:"itunes:duration,omitempty"`
	ITunesExplicit string       `xml:"itunes:explicit"`
	ITunesImage    *itunesImage `xml:"itunes:image,omitempty"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// FeedBuilder renders the podcast RSS feed Spotify ingests.
type FeedBuilder struct {
	cfg *config.Config
}

func NewFeedBuilder(cfg *config.Config) *FeedBuilder {
	return &FeedBuilder{cfg: cfg}
}

// formatDuration renders seconds as HH:MM:SS for itunes:duration.
func formatDuration(seconds float64) string {
	total := int(seconds + 0.5)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func describe(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	if text := htmlutil.Summary(*s, maxDescriptionRunes); text != "" {
		return text
	}
	return fallback
}

// Render builds the feed from pubs in the order given. Publications without
// compiled audio are skipped since they have nothing to enclose.
func (b *FeedBuilder) Render(pubs []*models.Publication) ([]byte, error) {
	channel := rssChannel{
		Title:          b.cfg.FeedTitle,
		Link:           b.cfg.PublicBaseURL,
		Description:    b.cfg.FeedDescription,
		Language:       b.cfg.FeedLanguage,
		ITunesAuthor:   b.cfg.FeedAuthor,
		ITunesSummary:  b.cfg.FeedDescription,
		ITunesExplicit: "false",
		ITunesType:     "episodic",
		ITunesCategory: &itunesCategory{Text: "Kids & Family"},
		Items:          make([]rssItem, 0, len(pubs)),
	}
	if b.cfg.FeedImageURL != "" {
		channel.ITunesImage = &itunesImage{Href: b.cfg.FeedImageURL}
	}

	var lastBuild time.Time
	for _, pub := range pubs {
		if pub.CompiledAudioURL == nil {
			continue
		}
		item := rssItem{
			Title:       pub.Title,
			Description: describe(pub.Description, pub.Title),
			Enclosure: rssEnclosure{
				URL:  *pub.CompiledAudioURL,
				Type: "audio/mpeg",
			},
			GUID:           rssGUID{Value: pub.GUID},
			ITunesExplicit: "false",
		}
		if pub.CompiledAudioFileSize != nil {
			item.Enclosure.Length = *pub.CompiledAudioFileSize
		}
		if pub.CompiledAudioDurationSeconds != nil {
			item.ITunesDuration = formatDuration(*pub.CompiledAudioDurationSeconds)
		}
		if pub.CoverImageURL != nil {
			item.ITunesImage = &itunesImage{Href: *pub.CoverImageURL}
		}

		published := pub.UpdatedAt
		if pub.PublishedAt != nil {
			published = *pub.PublishedAt
		} else if pub.CompiledAt != nil {
			published = *pub.CompiledAt
		}
		item.PubDate = published.UTC().Format(time.RFC1123Z)
		if published.After(lastBuild) {
			lastBuild = published
		}

		channel.Items = append(channel.Items, item)
	}
	if !lastBuild.IsZero() {
		channel.LastBuildDate = lastBuild.UTC().Format(time.RFC1123Z)
	}

	feed := rssFeed{
		Version: "2.0",
		ITunes:  itunesNamespace,
		Channel: channel,
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(feed); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

// verifyFeedItem parses a rendered feed the way a podcast client would and
// checks that the item with guid is there and playable.
func verifyFeedItem(data []byte, guid string) error {
	feed, err := gofeed.NewParser().ParseString(string(data))
	if err != nil {
		return errors.Wrap(err, "rendered feed doesn't parse")
	}
	for _, item := range feed.Items {
		if item.GUID != guid {
			continue
		}
		if len(item.Enclosures) == 0 || item.Enclosures[0].URL == "" {
			return errors.Errorf("feed item %s has no enclosure", guid)
		}
		return nil
	}
	return errors.Errorf("feed item %s is missing", guid)
}
