package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/DimitriGilbert/rss-to-json-feed/internal/logger"
	"github.com/DimitriGilbert/rss-to-json-feed/internal/storage"
	"github.com/DimitriGilbert/rss-to-json-feed/pkg/feed"
	"github.com/DimitriGilbert/rss-to-json-feed/pkg/publishers"
	"github.com/DimitriGilbert/rss-to-json-feed/pkg/sources"
)

// Service coordinates one watch pass across all configured sources: fetch and
// normalize each feed, enrich items where the source opts in, drop items the
// store has already seen, and publish the rest.
type Service struct {
	fetch   FetchFunc
	scraper ItemScraper
	sink    EventPublisher
	log     logger.Logger
	store   storage.Store
}

// NewService wires a watcher service with the default parser-backed fetcher.
func NewService(sink EventPublisher, log logger.Logger, store storage.Store) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		fetch:   defaultFetch,
		scraper: NewScraper(nil, log),
		sink:    sink,
		log:     log,
		store:   store,
	}
}

func defaultFetch(ctx context.Context, src sources.Source) (*feed.Feed, error) {
	return feed.NewParser(src.ParserOptions()).ParseURL(ctx, src.URL)
}

// Run executes one watch pass for all given sources.
func (s *Service) Run(ctx context.Context, srcs []sources.Source) error {
	if s == nil || s.fetch == nil {
		return fmt.Errorf("watcher service is not initialized")
	}
	if len(srcs) == 0 {
		return fmt.Errorf("no sources configured for watching")
	}

	errs := make([]error, 0, len(srcs))
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.runSource(ctx, src); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("source watch failed", "source_error", map[string]any{
				"source_id": src.ID,
				"error":     err.Error(),
			})
		}
	}
	return errors.Join(errs...)
}

func (s *Service) runSource(ctx context.Context, src sources.Source) error {
	f, err := s.fetch(ctx, src)
	if err != nil {
		return fmt.Errorf("fetch source %s: %w", src.ID, err)
	}

	items := f.Items
	if src.Scrape && s.scraper != nil {
		items = s.scraper.Enrich(ctx, src, items)
	}

	published := 0
	skipped := 0
	for _, item := range items {
		key := itemKey(src.ID, item)

		seen, err := s.seenItem(key)
		if err != nil {
			s.log.WarnObj("seen lookup failed; publishing anyway", "storage_error", map[string]any{
				"source_id": src.ID,
				"item_id":   item.ID,
				"error":     err.Error(),
			})
		}
		if seen {
			skipped++
			continue
		}

		evt := publishers.NewEvent(src.ID, src.Name, f.Title, item)
		if s.sink != nil {
			if _, err := s.sink.Publish(ctx, evt); err != nil {
				return fmt.Errorf("publish item from source %s: %w", src.ID, err)
			}
		}
		published++

		if err := s.markItem(key); err != nil {
			s.log.WarnObj("seen mark failed", "storage_error", map[string]any{
				"source_id": src.ID,
				"item_id":   item.ID,
				"error":     err.Error(),
			})
		}
	}

	s.log.InfoObj("source watch completed", "source_result", map[string]any{
		"source_id":       src.ID,
		"items_parsed":    len(items),
		"items_published": published,
		"items_skipped":   skipped,
	})
	return nil
}

func (s *Service) seenItem(key string) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	return s.store.SeenItem(key)
}

func (s *Service) markItem(key string) error {
	if s.store == nil {
		return nil
	}
	return s.store.MarkItem(key)
}

// itemKey derives a stable dedup key for an item. Feeds without ids fall back
// to the item URL, then title, scoped by source so two sources carrying the
// same story do not collide.
func itemKey(sourceID string, item feed.Item) string {
	base := item.ID
	if base == "" {
		base = item.URL
	}
	if base == "" {
		base = item.Title
	}
	sum := sha256.Sum256([]byte(sourceID + "\x00" + base))
	return hex.EncodeToString(sum[:])
}
