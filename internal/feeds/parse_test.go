package feeds_test

import (
	"testing"
	"time"

	"pimo/internal/feeds"
)

const rssSample = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example</title>
    <item>
      <guid>tag:example.org,2026:1</guid>
      <title>First post</title>
      <link>https://example.org/1</link>
      <pubDate>Mon, 24 Aug 2026 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>No guid</title>
      <link>https://example.org/2</link>
    </item>
  </channel>
</rss>`

const atomSample = `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example</title>
  <entry>
    <id>urn:uuid:abc</id>
    <title>Atom entry</title>
    <link rel="alternate" href="https://example.org/atom/1"/>
    <link rel="self" href="https://example.org/atom/1.xml"/>
    <published>2026-08-24T12:30:00Z</published>
  </entry>
  <entry>
    <id>urn:uuid:def</id>
    <title>Updated only</title>
    <link href="https://example.org/atom/2"/>
    <updated>2026-08-25T08:00:00Z</updated>
  </entry>
</feed>`

func TestParseRSS(t *testing.T) {
	items, err := feeds.Parse("https://example.org/rss", []byte(rssSample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	first := items[0]
	if first.ID != "tag:example.org,2026:1" || first.Title != "First post" || first.Link != "https://example.org/1" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	want := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	if !first.Published.Equal(want) {
		t.Fatalf("expected published %v, got %v", want, first.Published)
	}
	if items[1].ID != "https://example.org/2" {
		t.Fatalf("expected link fallback for missing guid, got %q", items[1].ID)
	}
}

func TestParseAtom(t *testing.T) {
	items, err := feeds.Parse("https://example.org/atom", []byte(atomSample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Link != "https://example.org/atom/1" {
		t.Fatalf("expected alternate link, got %q", items[0].Link)
	}
	wantUpdated := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	if !items[1].Published.Equal(wantUpdated) {
		t.Fatalf("expected updated fallback %v, got %v", wantUpdated, items[1].Published)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := feeds.Parse("https://example.org/x", []byte("not xml at all")); err == nil {
		t.Fatal("expected error for non-XML body")
	}
	if _, err := feeds.Parse("https://example.org/x", []byte("   ")); err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestItemKeyStable(t *testing.T) {
	a := feeds.Item{FeedURL: "https://example.org/rss", ID: "1", Title: "t", Link: "l"}
	b := feeds.Item{FeedURL: "https://example.org/rss", ID: "1", Title: "t", Link: "l"}
	if a.Key() != b.Key() {
		t.Fatal("identical items must share a key")
	}
	c := feeds.Item{FeedURL: "https://other.org/rss", ID: "1", Title: "t", Link: "l"}
	if a.Key() == c.Key() {
		t.Fatal("items from different feeds must not collide")
	}
	if len(a.Key()) != 40 {
		t.Fatalf("expected 40-char hex key, got %q", a.Key())
	}
}
