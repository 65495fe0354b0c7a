// Package report assembles news and user-activity reports as CSV or HTML.
package report

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/bryan-buckman/newsdesk/internal/model"
	"github.com/bryan-buckman/newsdesk/internal/news"
)

const dateLayout = "2006-01-02"

// NewsRow is one line of a news report.
type NewsRow struct {
	Title       string
	Source      string
	PublishedAt string
	URL         string
}

// NewsRows filters articles to the [start, end] publication window and
// converts them to report rows. Articles with unparseable timestamps are
// skipped.
func NewsRows(articles []model.Article, start, end time.Time) []NewsRow {
	var rows []NewsRow
	for _, a := range articles {
		published, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			continue
		}
		if published.Before(start) || published.After(end) {
			continue
		}
		rows = append(rows, NewsRow{
			Title:       a.Title,
			Source:      a.Source.Name,
			PublishedAt: published.Format(dateLayout),
			URL:         a.URL,
		})
	}
	return rows
}

// ActivityRow is one line of a user activity report. Fields that do not
// apply to a row type are left empty.
type ActivityRow struct {
	Type       string
	Title      string
	Content    string
	Collection string
	Date       string
	URL        string

	when time.Time
}

// ActivityRows merges bookmarks, favorites and comments into a single
// newest-first row list. Callers pass nil for sections they excluded.
func ActivityRows(bookmarks []model.Bookmark, favorites []model.Favorite, comments []model.Comment) []ActivityRow {
	var rows []ActivityRow
	for _, b := range bookmarks {
		rows = append(rows, ActivityRow{
			Type:       "Bookmark",
			Title:      b.ArticleTitle,
			Collection: b.CollectionName,
			Date:       b.CreatedAt.Format(dateLayout),
			URL:        b.ArticleURL,
			when:       b.CreatedAt,
		})
	}
	for _, f := range favorites {
		rows = append(rows, ActivityRow{
			Type:  "Favorite",
			Title: f.ArticleTitle,
			Date:  f.CreatedAt.Format(dateLayout),
			URL:   f.ArticleURL,
			when:  f.CreatedAt,
		})
	}
	for _, c := range comments {
		rows = append(rows, ActivityRow{
			Type:    "Comment",
			Content: c.Content,
			Date:    c.CreatedAt.Format(dateLayout),
			URL:     c.ArticleURL,
			when:    c.CreatedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].when.After(rows[j].when) })
	return rows
}

// WriteNewsCSV serializes news rows.
func WriteNewsCSV(w io.Writer, rows []NewsRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"title", "source", "publishedAt", "url"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Title, r.Source, r.PublishedAt, r.URL}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteActivityCSV serializes activity rows.
func WriteActivityCSV(w io.Writer, rows []ActivityRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"type", "title", "content", "collection", "date", "url"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Type, r.Title, r.Content, r.Collection, r.Date, r.URL}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var htmlTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<table border="1" cellpadding="4" cellspacing="0">
<tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
</body>
</html>
`))

type htmlData struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// WriteNewsHTML renders news rows as a standalone HTML table.
func WriteNewsHTML(w io.Writer, title string, rows []NewsRow) error {
	data := htmlData{Title: title, Headers: []string{"Title", "Source", "Published", "URL"}}
	for _, r := range rows {
		data.Rows = append(data.Rows, []string{r.Title, r.Source, r.PublishedAt, r.URL})
	}
	return htmlTmpl.Execute(w, data)
}

// WriteActivityHTML renders activity rows as a standalone HTML table.
func WriteActivityHTML(w io.Writer, title string, rows []ActivityRow) error {
	data := htmlData{Title: title, Headers: []string{"Type", "Title", "Content", "Collection", "Date", "URL"}}
	for _, r := range rows {
		data.Rows = append(data.Rows, []string{r.Type, r.Title, r.Content, r.Collection, r.Date, r.URL})
	}
	return htmlTmpl.Execute(w, data)
}

// NewsFileName builds the download name for a news report.
func NewsFileName(country, category, ext string, now time.Time) string {
	countryName := strings.ToLower(strings.ReplaceAll(news.CountryName(country), " ", "_"))
	return fmt.Sprintf("news_report_%s_%s_%s.%s", countryName, category, now.Format(dateLayout), ext)
}

// ActivityFileName builds the download name for an activity report.
func ActivityFileName(ext string, now time.Time) string {
	return fmt.Sprintf("user_activity_report_%s.%s", now.Format(dateLayout), ext)
}
