package news

import (
	"fmt"
	"net/url"
	"time"

	"github.com/bryan-buckman/newsdesk/internal/model"
)

// mockPageSize is the default batch size on the fallback path.
const mockPageSize = 10

const (
	mockSourceName  = "Demo News"
	mockAuthor      = "Demo Author"
	mockDescription = "This is mock content because the NEWS_API_KEY is not configured. " +
		"Please add your News API key to the environment variables."
	mockContent = "This is mock content generated because the NEWS_API_KEY environment " +
		"variable is not set. To see real news, please add your News API key to the " +
		"environment variables."
)

// titlePools holds display titles per category. Unknown categories fall
// back to the general pool.
var titlePools = map[string][]string{
	"general":       {"World News", "Daily Updates", "Breaking News"},
	"business":      {"Market Trends", "Business Insights", "Economic Updates"},
	"technology":    {"Tech Innovations", "Digital Trends", "Tech News"},
	"entertainment": {"Celebrity News", "Entertainment Weekly", "Movie Reviews"},
	"sports":        {"Sports Updates", "Game Results", "Athletic Achievements"},
	"science":       {"Scientific Discoveries", "Research News", "Innovation Highlights"},
	"health":        {"Health Tips", "Medical Research", "Wellness News"},
}

// mockArticles synthesizes a batch of placeholder articles from the
// request params. The batch shape is fully determined by the params;
// title choice within the category pool is randomized per call.
// Timestamps step back one hour per index so index 0 is the most recent.
func (c *Client) mockArticles(p Params) []model.Article {
	category := defaultStr(p.Category, "general")
	pageSize := defaultInt(p.PageSize, mockPageSize)

	titles, ok := titlePools[category]
	if !ok {
		titles = titlePools["general"]
	}

	now := c.now()
	sourceID := model.MockSourceID
	author := mockAuthor
	description := mockDescription
	content := mockContent
	image := "/placeholder.svg?height=200&width=300&text=" + url.QueryEscape(category)

	articles := make([]model.Article, 0, pageSize)
	for i := 0; i < pageSize; i++ {
		title := titles[c.intn(len(titles))]
		if p.Query != "" {
			title = title + ": " + p.Query
		}
		articles = append(articles, model.Article{
			Source:      model.Source{ID: &sourceID, Name: mockSourceName},
			Author:      &author,
			Title:       fmt.Sprintf("%s %d", title, i+1),
			Description: &description,
			URL:         "#",
			URLToImage:  &image,
			PublishedAt: now.Add(-time.Duration(i) * time.Hour).UTC().Format(time.RFC3339),
			Content:     &content,
		})
	}
	return articles
}
