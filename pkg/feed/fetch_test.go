package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

const tinyFeed = `<rss version="2.0"><channel><title>served</title></channel></rss>`

func intPtr(v int) *int { return &v }

func TestParseURLFollowsOneRedirectByDefault(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Redirect(w, r, srv.URL+"/final", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(tinyFeed))
	})

	f, err := NewParser(Options{}).ParseURL(context.Background(), srv.URL+"/feed")
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	if f.Title != "served" {
		t.Fatalf("title = %q", f.Title)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 requests, got %d", hits.Load())
	}
}

func TestParseURLRedirectsDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	p := NewParser(Options{MaxRedirects: intPtr(0)})
	_, err := p.ParseURL(context.Background(), srv.URL)
	if !errors.Is(err, ErrRedirectsDisabled) {
		t.Fatalf("expected ErrRedirectsDisabled, got %v", err)
	}
}

func TestParseURLTooManyRedirects(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/b", http.StatusFound)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/c", http.StatusFound)
	})
	mux.HandleFunc("/c", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tinyFeed))
	})

	// Default bound is one hop; the second redirect exceeds it.
	_, err := NewParser(Options{}).ParseURL(context.Background(), srv.URL+"/a")
	if !errors.Is(err, ErrTooManyRedirects) {
		t.Fatalf("expected ErrTooManyRedirects, got %v", err)
	}

	// Raising the bound makes the same chain succeed.
	f, err := NewParser(Options{MaxRedirects: intPtr(2)}).ParseURL(context.Background(), srv.URL+"/a")
	if err != nil {
		t.Fatalf("ParseURL with raised bound: %v", err)
	}
	if f.Title != "served" {
		t.Fatalf("title = %q", f.Title)
	}
}

func TestParseURLRelativeRedirectResolved(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/moved")
		w.WriteHeader(http.StatusMovedPermanently)
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tinyFeed))
	})

	f, err := NewParser(Options{}).ParseURL(context.Background(), srv.URL+"/feed")
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	if f.Title != "served" {
		t.Fatalf("title = %q", f.Title)
	}
}

func TestParseURLRedirectWithoutLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMovedPermanently)
	}))
	defer srv.Close()

	_, err := NewParser(Options{}).ParseURL(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "no location") {
		t.Fatalf("expected terminal no-location error, got %v", err)
	}
}

func TestParseURLNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone fishing", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewParser(Options{}).ParseURL(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "status 503") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestParseURLRejectsNonHTTPSchemes(t *testing.T) {
	_, err := NewParser(Options{}).ParseURL(context.Background(), "ftp://example.com/feed.xml")
	if err == nil || !strings.Contains(err.Error(), "scheme") {
		t.Fatalf("expected scheme error, got %v", err)
	}
}

func TestParseURLSendsConfiguredHeaders(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(tinyFeed))
	}))
	defer srv.Close()

	p := NewParser(Options{Headers: map[string]string{"User-Agent": "feedwatch/1.0"}})
	if _, err := p.ParseURL(context.Background(), srv.URL); err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	if gotUA != "feedwatch/1.0" {
		t.Fatalf("user-agent = %q", gotUA)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	if err := os.WriteFile(path, []byte(tinyFeed), 0o600); err != nil {
		t.Fatalf("write temp feed: %v", err)
	}
	f, err := NewParser(Options{}).ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if f.Title != "served" {
		t.Fatalf("title = %q", f.Title)
	}

	if _, err := NewParser(Options{}).ParseFile(filepath.Join(t.TempDir(), "missing.xml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
