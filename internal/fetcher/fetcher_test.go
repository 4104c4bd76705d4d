package fetcher

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"postkeeper/internal/model"
)

type mockTransport struct {
	body       string
	statusCode int
	err        error
}

func (m *mockTransport) Do(_ *http.Request) (*http.Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/sample.xml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(data)
}

func TestFetch(t *testing.T) {
	xml := loadFixture(t)

	tests := []struct {
		name      string
		transport *mockTransport
		wantCount int
		wantErr   bool
	}{
		{
			name:      "successful fetch",
			transport: &mockTransport{body: xml, statusCode: 200},
			wantCount: 5,
		},
		{
			name:      "http error status",
			transport: &mockTransport{body: "not found", statusCode: 404},
			wantErr:   true,
		},
		{
			name:      "network error",
			transport: &mockTransport{err: io.ErrUnexpectedEOF},
			wantErr:   true,
		},
		{
			name:      "invalid xml",
			transport: &mockTransport{body: "not xml at all", statusCode: 200},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.transport, "https://news.example.com/feed")
			posts, err := f.Fetch(context.Background())

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.wantCount, len(posts)); diff != "" {
				t.Errorf("post count mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchMapsItems(t *testing.T) {
	xml := loadFixture(t)
	f := New(&mockTransport{body: xml, statusCode: 200}, "https://news.example.com/feed")

	posts, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(posts) == 0 {
		t.Fatal("expected posts")
	}

	want := model.Post{
		Link:       "https://news.example.com/posts/queueing-theory",
		Title:      "Queueing Theory in Practice",
		PubDate:    time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC),
		Categories: []string{"go", "performance"},
		Authors:    []string{"Alice Moran"},
	}
	if diff := cmp.Diff(want, posts[0]); diff != "" {
		t.Errorf("first post mismatch (-want +got):\n%s", diff)
	}

	// Flags start unset so that archived/favourite/seen semantics stay
	// untouched until the user acts.
	for _, p := range posts {
		if p.Active != model.FlagUnset || p.Favourite != model.FlagUnset || p.Seen != model.FlagUnset {
			t.Errorf("post %s has pre-set flags: active=%v favourite=%v seen=%v",
				p.Link, p.Active, p.Favourite, p.Seen)
		}
	}
}

func TestFetchSkipsItemsWithoutLink(t *testing.T) {
	xml := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>t</title>
<item><title>No link here</title></item>
<item><title>Has link</title><link>https://example.com/ok</link>
<pubDate>Tue, 10 Jun 2025 10:00:00 +0000</pubDate></item>
</channel></rss>`

	f := New(&mockTransport{body: xml, statusCode: 200}, "https://example.com/feed")
	posts, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(posts) != 1 || posts[0].Link != "https://example.com/ok" {
		t.Fatalf("expected only the linked item, got %+v", posts)
	}
}

func TestFetchDateFallback(t *testing.T) {
	xml := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>t</title>
<item><title>Undated</title><link>https://example.com/undated</link></item>
</channel></rss>`

	fixed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	f := New(&mockTransport{body: xml, statusCode: 200}, "https://example.com/feed")
	f.now = func() time.Time { return fixed }

	posts, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	if diff := cmp.Diff(fixed, posts[0].PubDate); diff != "" {
		t.Errorf("pub date fallback mismatch (-want +got):\n%s", diff)
	}
}
