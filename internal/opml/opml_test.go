package opml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlattensGroups(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<opml version="2.0">
  <head><title>Subscriptions</title></head>
  <body>
    <outline text="Tech" title="Tech">
      <outline text="Go Blog" type="rss" xmlUrl="https://go.dev/blog/feed.atom" htmlUrl="https://go.dev/blog"/>
      <outline text="" title="HN" type="rss" xmlUrl="https://news.ycombinator.com/rss"/>
    </outline>
    <outline type="rss" xmlUrl="https://example.com/feed.xml"/>
  </body>
</opml>`

	entries, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, FeedEntry{Title: "Go Blog", URL: "https://go.dev/blog/feed.atom"}, entries[0])
	assert.Equal(t, FeedEntry{Title: "HN", URL: "https://news.ycombinator.com/rss"}, entries[1])
	// No title or text falls back to the URL.
	assert.Equal(t, FeedEntry{Title: "https://example.com/feed.xml", URL: "https://example.com/feed.xml"}, entries[2])
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse(strings.NewReader("not xml"))
	assert.Error(t, err)
}

func TestExportRoundTrip(t *testing.T) {
	entries := []FeedEntry{
		{Title: "Go Blog", URL: "https://go.dev/blog/feed.atom"},
		{Title: "HN", URL: "https://news.ycombinator.com/rss"},
	}

	out, err := Export("My Feeds", entries)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<title>My Feeds</title>`)
	assert.Contains(t, string(out), `xmlUrl="https://go.dev/blog/feed.atom"`)

	parsed, err := Parse(strings.NewReader(string(out)))
	require.NoError(t, err)
	assert.Equal(t, entries, parsed)
}
