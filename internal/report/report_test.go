package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/bryan-buckman/newsdesk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsRowsFiltersByWindow(t *testing.T) {
	articles := []model.Article{
		{Title: "In range", Source: model.Source{Name: "Wire"}, URL: "https://a/1", PublishedAt: "2025-06-05T10:00:00Z"},
		{Title: "Too old", URL: "https://a/2", PublishedAt: "2025-05-01T10:00:00Z"},
		{Title: "Too new", URL: "https://a/3", PublishedAt: "2025-07-01T10:00:00Z"},
		{Title: "Bad timestamp", URL: "https://a/4", PublishedAt: "yesterday"},
	}

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
	rows := NewsRows(articles, start, end)

	require.Len(t, rows, 1)
	assert.Equal(t, "In range", rows[0].Title)
	assert.Equal(t, "Wire", rows[0].Source)
	assert.Equal(t, "2025-06-05", rows[0].PublishedAt)
}

func TestActivityRowsMergeAndSort(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 6, d, 12, 0, 0, 0, time.UTC) }

	rows := ActivityRows(
		[]model.Bookmark{{ArticleTitle: "B", ArticleURL: "https://a/b", CollectionName: "Work", CreatedAt: day(2)}},
		[]model.Favorite{{ArticleTitle: "F", ArticleURL: "https://a/f", CreatedAt: day(5)}},
		[]model.Comment{{Content: "C", ArticleURL: "https://a/c", CreatedAt: day(3)}},
	)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Favorite", "Comment", "Bookmark"},
		[]string{rows[0].Type, rows[1].Type, rows[2].Type})
	assert.Equal(t, "Work", rows[2].Collection)
	assert.Equal(t, "2025-06-05", rows[0].Date)
}

func TestActivityRowsNilSections(t *testing.T) {
	rows := ActivityRows(nil, []model.Favorite{{ArticleTitle: "Only", CreatedAt: time.Now()}}, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, "Favorite", rows[0].Type)
}

func TestWriteNewsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteNewsCSV(&buf, []NewsRow{
		{Title: `Quote "inside"`, Source: "Wire, Inc", PublishedAt: "2025-06-05", URL: "https://a/1"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "title,source,publishedAt,url\n")
	// csv quoting for embedded quotes and commas
	assert.Contains(t, out, `"Quote ""inside""","Wire, Inc",2025-06-05,https://a/1`)
}

func TestWriteActivityCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteActivityCSV(&buf, []ActivityRow{
		{Type: "Bookmark", Title: "T", Collection: "Default", Date: "2025-06-05", URL: "https://a/1"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "type,title,content,collection,date,url\n")
	assert.Contains(t, buf.String(), "Bookmark,T,,Default,2025-06-05,https://a/1")
}

func TestWriteNewsHTMLEscapes(t *testing.T) {
	var buf bytes.Buffer
	err := WriteNewsHTML(&buf, "News Report", []NewsRow{
		{Title: "<script>alert(1)</script>", Source: "Wire", PublishedAt: "2025-06-05", URL: "https://a/1"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<h1>News Report</h1>")
	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
}

func TestFileNames(t *testing.T) {
	now := time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "news_report_united_states_technology_2025-06-05.csv", NewsFileName("us", "technology", "csv", now))
	assert.Equal(t, "news_report_unknown_all_2025-06-05.html", NewsFileName("zz", "all", "html", now))
	assert.Equal(t, "user_activity_report_2025-06-05.csv", ActivityFileName("csv", now))
}
