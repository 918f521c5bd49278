package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// ParseURL fetches the feed over HTTP(S) and normalizes it. Redirects are
// followed manually up to the configured bound; transport errors are
// returned without retrying.
func (p *Parser) ParseURL(ctx context.Context, feedURL string) (*Feed, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	body, err := p.fetch(ctx, feedURL, 0)
	if err != nil {
		return nil, err
	}
	return p.ParseString(body)
}

// ParseFile reads the feed from a local path and normalizes it.
func (p *Parser) ParseFile(path string) (*Feed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed file: %w", err)
	}
	return p.ParseString(string(raw))
}

// fetch performs one GET and recurses on redirect responses with an
// incremented counter. A 3xx without a Location header is terminal.
func (p *Parser) fetch(ctx context.Context, feedURL string, redirects int) (string, error) {
	resp, err := p.client.Get(ctx, feedURL, p.opts.Headers)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", feedURL, err)
	}

	code := resp.StatusCode()
	if code >= 300 && code < 400 {
		loc := resp.Header("Location")
		if loc == "" {
			return "", fmt.Errorf("fetch %s: status %d with no location", feedURL, code)
		}
		max := p.maxRedirects()
		if max == 0 {
			return "", fmt.Errorf("fetch %s: %w", feedURL, ErrRedirectsDisabled)
		}
		if redirects >= max {
			return "", fmt.Errorf("fetch %s: %w", feedURL, ErrTooManyRedirects)
		}
		next, err := resolveLocation(feedURL, loc)
		if err != nil {
			return "", fmt.Errorf("fetch %s: %w", feedURL, err)
		}
		return p.fetch(ctx, next, redirects+1)
	}

	body := resp.Body()
	if code != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d body: %s", feedURL, code, responseSnippet(body))
	}
	return string(body), nil
}

func resolveLocation(base, location string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	l, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse redirect location: %w", err)
	}
	return b.ResolveReference(l).String(), nil
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
