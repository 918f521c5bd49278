package watcher

import (
	"context"

	"github.com/DimitriGilbert/rss-to-json-feed/pkg/feed"
	"github.com/DimitriGilbert/rss-to-json-feed/pkg/publishers"
	"github.com/DimitriGilbert/rss-to-json-feed/pkg/sources"
)

// ItemScraper enriches parsed items with page metadata (e.g., OG tags).
type ItemScraper interface {
	Enrich(ctx context.Context, src sources.Source, items []feed.Item) []feed.Item
}

// EventPublisher publishes normalized items downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// FetchFunc resolves one source into its normalized feed.
type FetchFunc func(ctx context.Context, src sources.Source) (*feed.Feed, error)
