package sources

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeTempFile(t, "sources.yaml", `
sources:
  - id: example
    name: Example Feed
    url: https://example.com/rss.xml
    request_delay_ms: 250
    scrape: true
    custom_fields:
      item:
        - source: wordCount
          dest: words
    config:
      user_agent: feedwatch/1.0
  - id: second
    name: Second
    url: http://second.example/feed
    max_redirects: 0
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	all := reg.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(all))
	}

	s, ok := reg.ByID("example")
	if !ok {
		t.Fatalf("ByID example not found")
	}
	if s.RequestDelay() != 250*time.Millisecond {
		t.Fatalf("request delay = %v", s.RequestDelay())
	}
	if !s.Scrape {
		t.Fatalf("scrape flag lost")
	}
	if len(s.CustomFields.Item) != 1 || s.CustomFields.Item[0].Dest != "words" {
		t.Fatalf("custom fields = %+v", s.CustomFields)
	}

	second, _ := reg.ByID("second")
	if second.MaxRedirects == nil || *second.MaxRedirects != 0 {
		t.Fatalf("max_redirects 0 must survive as an explicit zero, got %v", second.MaxRedirects)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeTempFile(t, "sources.json", `{
  "sources": [
    {"id": "one", "name": "One", "url": "https://one.example/feed"}
  ]
}`)
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if _, ok := reg.ByID("one"); !ok {
		t.Fatalf("json source not loaded")
	}
}

func TestLoadRegistryRejectsDuplicates(t *testing.T) {
	path := writeTempFile(t, "sources.yaml", `
sources:
  - id: dup
    name: A
    url: https://a.example/
  - id: dup
    name: B
    url: https://b.example/
`)
	if _, err := LoadRegistry(path); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestLoadRegistryValidation(t *testing.T) {
	cases := map[string]string{
		"missing id":   "sources:\n  - name: A\n    url: https://a.example/\n",
		"missing name": "sources:\n  - id: a\n    url: https://a.example/\n",
		"missing url":  "sources:\n  - id: a\n    name: A\n",
		"bad scheme":   "sources:\n  - id: a\n    name: A\n    url: gopher://a.example/\n",
		"empty file":   "sources: []\n",
	}
	for label, content := range cases {
		path := writeTempFile(t, "sources.yaml", content)
		if _, err := LoadRegistry(path); err == nil {
			t.Fatalf("%s: expected error", label)
		}
	}
}

func TestParserOptionsCarriesSourceSettings(t *testing.T) {
	maxRedirects := 3
	s := Source{
		ID:           "x",
		MaxRedirects: &maxRedirects,
		Config: map[string]any{
			"user_agent": "feedwatch/1.0",
			"accept":     "application/rss+xml",
		},
	}
	opts := s.ParserOptions()
	if opts.MaxRedirects == nil || *opts.MaxRedirects != 3 {
		t.Fatalf("max redirects = %v", opts.MaxRedirects)
	}
	if opts.Headers["User-Agent"] != "feedwatch/1.0" {
		t.Fatalf("headers = %v", opts.Headers)
	}
	if opts.Headers["Accept"] != "application/rss+xml" {
		t.Fatalf("headers = %v", opts.Headers)
	}
}

func TestConfigStringFallback(t *testing.T) {
	s := Source{Config: map[string]any{"user_agent": "  ", "num": 7}}
	if got := ConfigString(s, "user_agent", "fallback"); got != "fallback" {
		t.Fatalf("blank value should fall back, got %q", got)
	}
	if got := ConfigString(s, "num", "fallback"); got != "fallback" {
		t.Fatalf("non-string value should fall back, got %q", got)
	}
	if got := ConfigString(Source{}, "anything", "fallback"); got != "fallback" {
		t.Fatalf("nil config should fall back, got %q", got)
	}
}
