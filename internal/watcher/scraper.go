package watcher

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/DimitriGilbert/rss-to-json-feed/internal/logger"
	"github.com/DimitriGilbert/rss-to-json-feed/pkg/feed"
	"github.com/DimitriGilbert/rss-to-json-feed/pkg/httpclient"
	"github.com/DimitriGilbert/rss-to-json-feed/pkg/sources"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB

	scraperTimeout = 10 * time.Second

	imageFieldKey = "image"
)

// Scraper fetches item pages and fills missing metadata from OG tags. It only
// fills gaps; values already present on the item are never overwritten.
type Scraper struct {
	client httpclient.Client
	log    logger.Logger
}

// NewScraper constructs a scraper with the provided HTTP client (or default).
func NewScraper(client httpclient.Client, log logger.Logger) *Scraper {
	if client == nil {
		client = httpclient.NewRestyClient(scraperTimeout)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Scraper{client: client, log: log}
}

// Enrich iterates items, fetching each page (with throttling) and merging OG metadata.
func (s *Scraper) Enrich(ctx context.Context, src sources.Source, items []feed.Item) []feed.Item {
	delay := src.RequestDelay()
	// seed output with originals so we can return what we have on abort
	out := append([]feed.Item(nil), items...)

	for i, item := range items {
		select {
		case <-ctx.Done():
			return out[:i]
		default:
		}

		if item.URL == "" || !needsMeta(item) {
			continue
		}

		enriched, err := s.fetchAndFill(ctx, src, item)
		if err != nil {
			s.log.WarnObj("item metadata scrape failed", "metadata_error", map[string]any{
				"source_id": src.ID,
				"url":       item.URL,
				"error":     err.Error(),
			})
			out[i] = item
		} else {
			out[i] = enriched
		}

		if delay > 0 && i < len(items)-1 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out[:i+1]
			case <-timer.C:
			}
		}
	}

	return out
}

func needsMeta(item feed.Item) bool {
	return item.Title == "" || item.Summary == "" || item.Fields[imageFieldKey] == ""
}

func (s *Scraper) fetchAndFill(ctx context.Context, src sources.Source, item feed.Item) (feed.Item, error) {
	headers := sources.Headers(src)

	resp, err := s.client.Get(ctx, item.URL, headers)
	if err != nil {
		return item, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != 200 {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return item, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return item, err
	}

	updated := item
	if updated.Title == "" {
		updated.Title = meta.Title
	}
	if updated.Summary == "" {
		updated.Summary = meta.Description
	}
	if updated.Fields[imageFieldKey] == "" && meta.ImageURL != "" {
		// Items share their Fields map with the parsed feed; copy before writing.
		fields := make(map[string]string, len(updated.Fields)+1)
		for k, v := range updated.Fields {
			fields[k] = v
		}
		fields[imageFieldKey] = resolveURL(meta.ImageURL, item.URL)
		updated.Fields = fields
	}
	return updated, nil
}

func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	pm := pageMeta{}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	pm.Title = firstNonEmpty(
		extract(`meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	pm.Description = firstNonEmpty(
		extract(`meta[property="og:description"]`),
		extract(`meta[name="description"]`),
	)
	pm.ImageURL = extract(`meta[property="og:image"]`)

	return pm, nil
}

type pageMeta struct {
	Title       string
	Description string
	ImageURL    string
}

// resolveURL resolves a possibly relative reference against the page URL.
func resolveURL(ref, page string) string {
	if ref == "" {
		return ""
	}
	base, err := url.Parse(page)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(r).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
