// Package feeds serializes the news RSS channel and the calendar iCal
// feed. Both are hand-assembled: the RSS date format carries a literal
// EST zone label inherited from the original feed that standard feed
// builders would "correct".
package feeds

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/observatory-hq/observatory/internal/models"
	"github.com/yuin/goldmark"
)

// rssPubDateLayout is deliberately zone-less; the literal " EST" suffix
// is appended as-is. Consumers have depended on this exact shape.
const rssPubDateLayout = "Mon, 02 Jan 2006 15:04:05"

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// RenderNewsRSS builds the news channel. Story bodies are markdown and
// are rendered to HTML for the item description.
func RenderNewsRSS(stories []models.NewsStory, baseURL string) ([]byte, error) {
	items := make([]rssItem, 0, len(stories))
	for _, story := range stories {
		var rendered bytes.Buffer
		if err := goldmark.Convert([]byte(story.Description), &rendered); err != nil {
			return nil, fmt.Errorf("render story %d markdown: %w", story.ID, err)
		}

		link := fmt.Sprintf("%s/news/%d", baseURL, story.ID)
		items = append(items, rssItem{
			Title:       story.Title,
			Link:        link,
			Description: rendered.String(),
			GUID:        rssGUID{Value: link, IsPermaLink: true},
			PubDate:     story.HappenedAt.Format(rssPubDateLayout) + " EST",
		})
	}

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       "Observatory News",
			Link:        baseURL,
			Description: "News from the open-source program",
			Items:       items,
		},
	}

	serialized, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal rss feed: %w", err)
	}
	return append([]byte(xml.Header), serialized...), nil
}
