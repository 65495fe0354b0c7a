package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bryan-buckman/newsdesk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(apiKey string) *Client {
	c := NewClient(apiKey)
	c.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	c.intn = func(n int) int { return 0 }
	return c
}

func TestTopHeadlinesSuccess(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"status":"ok","totalResults":1,"articles":[
			{"source":{"id":"abc","name":"ABC"},"title":"Real headline","url":"https://example.com/a","publishedAt":"2025-06-01T10:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	c := testClient("key")
	c.BaseURL = srv.URL

	res := c.TopHeadlines(context.Background(), Params{Category: "technology", Country: "gb"})

	require.False(t, res.Degraded)
	require.Len(t, res.Articles, 1)
	assert.Equal(t, "Real headline", res.Articles[0].Title)
	assert.False(t, res.Articles[0].IsMock())

	assert.Equal(t, "gb", gotQuery["country"][0])
	assert.Equal(t, "technology", gotQuery["category"][0])
	assert.Equal(t, "20", gotQuery["pageSize"][0])
	assert.Equal(t, "1", gotQuery["page"][0])
}

func TestTopHeadlinesAllCategoryOmitsFilter(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"status":"ok","articles":[]}`))
	}))
	defer srv.Close()

	c := testClient("key")
	c.BaseURL = srv.URL

	res := c.TopHeadlines(context.Background(), Params{Category: "all"})

	require.False(t, res.Degraded)
	_, hasCategory := gotQuery["category"]
	assert.False(t, hasCategory)
}

func TestTopHeadlinesEmptyBodyIsNotDegraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","totalResults":0}`))
	}))
	defer srv.Close()

	c := testClient("key")
	c.BaseURL = srv.URL

	res := c.TopHeadlines(context.Background(), Params{})

	assert.False(t, res.Degraded)
	require.NotNil(t, res.Articles)
	assert.Empty(t, res.Articles)
}

func TestTopHeadlinesMissingKeyDegrades(t *testing.T) {
	c := testClient("")

	res := c.TopHeadlines(context.Background(), Params{Category: "sports"})

	assert.True(t, res.Degraded)
	assert.Equal(t, ReasonMissingKey, res.Reason)
	require.Len(t, res.Articles, 10)
	for _, a := range res.Articles {
		assert.True(t, a.IsMock())
		assert.Equal(t, "#", a.URL)
	}
}

func TestTopHeadlinesUpstreamErrorDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"error","code":"apiKeyInvalid"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient("bad-key")
	c.BaseURL = srv.URL

	res := c.TopHeadlines(context.Background(), Params{})

	assert.True(t, res.Degraded)
	assert.Equal(t, ReasonUpstreamStatus, res.Reason)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.NotEmpty(t, res.Articles)
}

func TestTopHeadlinesTransportErrorDegrades(t *testing.T) {
	c := testClient("key")
	// Nothing listens here.
	c.BaseURL = "http://127.0.0.1:1"

	res := c.TopHeadlines(context.Background(), Params{})

	assert.True(t, res.Degraded)
	assert.Equal(t, ReasonTransport, res.Reason)
	assert.NotEmpty(t, res.Articles)
}

func TestTopHeadlinesBadJSONDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := testClient("key")
	c.BaseURL = srv.URL

	res := c.TopHeadlines(context.Background(), Params{})

	assert.True(t, res.Degraded)
	assert.Equal(t, ReasonTransport, res.Reason)
}

func TestSearchEmptyQueryReturnsEmpty(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := testClient("key")
	c.BaseURL = srv.URL

	res := c.Search(context.Background(), Params{Query: ""})

	assert.False(t, called, "empty query must not hit the provider")
	assert.False(t, res.Degraded)
	require.NotNil(t, res.Articles)
	assert.Empty(t, res.Articles)
}

func TestSearchFallbackUsesGeneralPool(t *testing.T) {
	c := testClient("")

	res := c.Search(context.Background(), Params{Query: "golang", Category: "sports"})

	require.True(t, res.Degraded)
	require.NotEmpty(t, res.Articles)
	// Fallback search ignores the requested category.
	assert.Equal(t, "World News: golang 1", res.Articles[0].Title)
	img := res.Articles[0].URLToImage
	require.NotNil(t, img)
	assert.Contains(t, *img, "text=general")
}

func TestSearchSuccess(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"status":"ok","articles":[{"source":{"id":null,"name":"Wire"},"title":"Hit","url":"https://example.com/hit","publishedAt":"2025-06-01T09:00:00Z"}]}`))
	}))
	defer srv.Close()

	c := testClient("key")
	c.BaseURL = srv.URL

	res := c.Search(context.Background(), Params{Query: "golang", PageSize: 5, Page: 2})

	require.False(t, res.Degraded)
	require.Len(t, res.Articles, 1)
	assert.Equal(t, "golang", gotQuery["q"][0])
	assert.Equal(t, "5", gotQuery["pageSize"][0])
	assert.Equal(t, "2", gotQuery["page"][0])
	_, hasCountry := gotQuery["country"]
	assert.False(t, hasCountry, "search must not send a country filter")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "no news API key is configured", Result{Reason: ReasonMissingKey}.Describe())
	assert.Equal(t, "the news provider returned HTTP 500", Result{Reason: ReasonUpstreamStatus, Status: 500}.Describe())
	assert.Equal(t, "the news provider could not be reached", Result{Reason: ReasonTransport}.Describe())
	assert.Equal(t, "", Result{}.Describe())
}

func TestIsMock(t *testing.T) {
	id := model.MockSourceID
	assert.True(t, model.Article{Source: model.Source{ID: &id}}.IsMock())
	other := "bbc-news"
	assert.False(t, model.Article{Source: model.Source{ID: &other}}.IsMock())
	assert.False(t, model.Article{}.IsMock())
}
