package feeds

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// Item is a single feed entry normalized from RSS or Atom.
type Item struct {
	FeedURL   string
	ID        string
	Title     string
	Link      string
	Published time.Time
}

// Key returns the dedup key for the item: a SHA-1 over the feed URL
// and the entry's identifying fields. The key is stable across polls
// as long as the entry itself does not change.
func (it Item) Key() string {
	sum := sha1.Sum([]byte(it.FeedURL + "\n" + it.ID + "\n" + it.Link + "\n" + it.Title))
	return hex.EncodeToString(sum[:])
}

type rssDocument struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	GUID    string `xml:"guid"`
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

type atomDocument struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string     `xml:"id"`
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// Parse decodes an RSS 2.0 or Atom document into normalized items.
// The document type is detected from the root element.
func Parse(feedURL string, body []byte) ([]Item, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, fmt.Errorf("parse feed %s: empty document", feedURL)
	}

	var rss rssDocument
	if err := xml.Unmarshal(body, &rss); err == nil && rss.XMLName.Local == "rss" {
		return fromRSS(feedURL, rss), nil
	}

	var atom atomDocument
	if err := xml.Unmarshal(body, &atom); err == nil && atom.XMLName.Local == "feed" {
		return fromAtom(feedURL, atom), nil
	}

	return nil, fmt.Errorf("parse feed %s: unrecognized document", feedURL)
}

func fromRSS(feedURL string, doc rssDocument) []Item {
	items := make([]Item, 0, len(doc.Channel.Items))
	for _, entry := range doc.Channel.Items {
		item := Item{
			FeedURL:   feedURL,
			ID:        strings.TrimSpace(entry.GUID),
			Title:     strings.TrimSpace(entry.Title),
			Link:      strings.TrimSpace(entry.Link),
			Published: parseTime(entry.PubDate),
		}
		if item.ID == "" {
			item.ID = item.Link
		}
		if item.ID == "" && item.Title == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

func fromAtom(feedURL string, doc atomDocument) []Item {
	items := make([]Item, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		published := entry.Published
		if published == "" {
			published = entry.Updated
		}
		item := Item{
			FeedURL:   feedURL,
			ID:        strings.TrimSpace(entry.ID),
			Title:     strings.TrimSpace(entry.Title),
			Link:      atomAlternate(entry.Links),
			Published: parseTime(published),
		}
		if item.ID == "" {
			item.ID = item.Link
		}
		if item.ID == "" && item.Title == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

func atomAlternate(links []atomLink) string {
	for _, link := range links {
		if link.Rel == "" || link.Rel == "alternate" {
			return strings.TrimSpace(link.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}

var timeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
