// Package fetcher downloads the remote feed and maps its items to posts.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"postkeeper/internal/model"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads and parses the remote post feed.
type Fetcher struct {
	client HTTPClient
	url    string
	now    func() time.Time
}

// New creates a Fetcher for the given feed URL.
func New(client HTTPClient, url string) *Fetcher {
	return &Fetcher{
		client: client,
		url:    url,
		now:    time.Now,
	}
}

// Fetch downloads the feed and returns its items as candidate posts.
// Items without a link are dropped: the link is the natural key and a post
// cannot be stored without one.
func (f *Fetcher) Fetch(ctx context.Context) ([]model.Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "postkeeper/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var posts []model.Post
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		posts = append(posts, f.toPost(item))
	}
	return posts, nil
}

func (f *Fetcher) toPost(item *gofeed.Item) model.Post {
	return model.Post{
		Link:       item.Link,
		Title:      item.Title,
		PubDate:    f.itemDate(item),
		Categories: uniqueCategories(item.Categories),
		Authors:    itemAuthors(item),
	}
}

// itemDate picks the publication date, falling back to the updated date and
// finally to the fetch time for feeds that carry neither.
func (f *Fetcher) itemDate(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return f.now().UTC()
}

// uniqueCategories drops duplicate and empty category names, keeping the
// feed's order for the rest.
func uniqueCategories(names []string) []string {
	var out []string
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func itemAuthors(item *gofeed.Item) []string {
	var out []string
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			out = append(out, a.Name)
		}
	}
	if len(out) == 0 && item.Author != nil && item.Author.Name != "" {
		out = append(out, item.Author.Name)
	}
	return out
}
