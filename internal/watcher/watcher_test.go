package watcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/DimitriGilbert/rss-to-json-feed/internal/logger"
	"github.com/DimitriGilbert/rss-to-json-feed/pkg/feed"
	"github.com/DimitriGilbert/rss-to-json-feed/pkg/publishers"
	"github.com/DimitriGilbert/rss-to-json-feed/pkg/sources"
)

func nopLog() logger.Logger { return logger.NopLogger{} }

// fakeSink records published events and can inject errors.
type fakeSink struct {
	mu      sync.Mutex
	events  []publishers.Event
	errOnID string
}

func (f *fakeSink) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if evt.Item.ID == f.errOnID {
		return 0, errors.New("boom")
	}
	return 1, nil
}

// fakeStore tracks seen keys in memory.
type fakeStore struct {
	mu      sync.Mutex
	seen    map[string]bool
	lookups int
	failAll bool
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) SeenItem(key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.failAll {
		return false, errors.New("lookup failed")
	}
	return f.seen[key], nil
}

func (f *fakeStore) MarkItem(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	f.seen[key] = true
	return nil
}

// fakeScraper tags every title so enrichment is observable.
type fakeScraper struct {
	prefix string
}

func (f fakeScraper) Enrich(_ context.Context, _ sources.Source, items []feed.Item) []feed.Item {
	out := make([]feed.Item, len(items))
	for i, it := range items {
		it.Title = f.prefix + it.Title
		out[i] = it
	}
	return out
}

func staticFetch(f *feed.Feed, err error) FetchFunc {
	return func(context.Context, sources.Source) (*feed.Feed, error) {
		return f, err
	}
}

func TestServicePublishesFreshItemsOnly(t *testing.T) {
	src := sources.Source{ID: "s1", Name: "Source1", Scrape: true}
	parsed := &feed.Feed{
		Title: "F",
		Items: []feed.Item{
			{ID: "a1", Title: "old"},
			{ID: "a2", Title: "new"},
		},
	}

	store := &fakeStore{seen: map[string]bool{itemKey("s1", feed.Item{ID: "a1"}): true}}
	sink := &fakeSink{}

	svc := &Service{
		fetch:   staticFetch(parsed, nil),
		scraper: fakeScraper{prefix: "enriched-"},
		sink:    sink,
		log:     nopLog(),
		store:   store,
	}

	if err := svc.Run(context.Background(), []sources.Source{src}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(sink.events))
	}
	evt := sink.events[0]
	if evt.Item.ID != "a2" || evt.Item.Title != "enriched-new" {
		t.Fatalf("unexpected item %+v", evt.Item)
	}
	if evt.SourceID != "s1" || evt.FeedTitle != "F" {
		t.Fatalf("unexpected event metadata %+v", evt)
	}
	if !store.seen[itemKey("s1", feed.Item{ID: "a2"})] {
		t.Fatalf("MarkItem not called for fresh item")
	}
}

func TestServiceScraperOnlyForOptedInSources(t *testing.T) {
	parsed := &feed.Feed{Items: []feed.Item{{ID: "a1", Title: "plain"}}}
	sink := &fakeSink{}

	svc := &Service{
		fetch:   staticFetch(parsed, nil),
		scraper: fakeScraper{prefix: "enriched-"},
		sink:    sink,
		log:     nopLog(),
		store:   &fakeStore{},
	}

	src := sources.Source{ID: "s1", Name: "Source1"} // Scrape left false
	if err := svc.Run(context.Background(), []sources.Source{src}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sink.events[0].Item.Title != "plain" {
		t.Fatalf("scraper ran for a source that did not opt in: %+v", sink.events[0].Item)
	}
}

func TestServiceAggregatesSourceErrors(t *testing.T) {
	svc := &Service{
		fetch: staticFetch(nil, errors.New("connection refused")),
		log:   nopLog(),
	}

	err := svc.Run(context.Background(), []sources.Source{{ID: "down"}})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error naming the failed source, got %v", err)
	}
}

func TestServicePublishErrorStopsSource(t *testing.T) {
	parsed := &feed.Feed{Items: []feed.Item{{ID: "bad"}, {ID: "after"}}}
	sink := &fakeSink{errOnID: "bad"}

	svc := &Service{
		fetch: staticFetch(parsed, nil),
		sink:  sink,
		log:   nopLog(),
		store: &fakeStore{},
	}

	err := svc.Run(context.Background(), []sources.Source{{ID: "s1"}})
	if err == nil {
		t.Fatalf("expected publish error to surface")
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected publishing to stop after the failure, got %d events", len(sink.events))
	}
}

func TestServiceStoreLookupFailurePublishesAnyway(t *testing.T) {
	parsed := &feed.Feed{Items: []feed.Item{{ID: "a1"}}}
	sink := &fakeSink{}

	svc := &Service{
		fetch: staticFetch(parsed, nil),
		sink:  sink,
		log:   nopLog(),
		store: &fakeStore{failAll: true},
	}

	if err := svc.Run(context.Background(), []sources.Source{{ID: "s1"}}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sink.events) != 1 {
		t.Fatalf("a broken store must not drop items, got %d events", len(sink.events))
	}
}

func TestServiceRejectsEmptySourceList(t *testing.T) {
	svc := NewService(nil, nil, nil)
	if err := svc.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error when sources list empty")
	}
}

func TestItemKeyFallsBackThroughIdentity(t *testing.T) {
	withID := itemKey("s", feed.Item{ID: "x", URL: "http://a/", Title: "t"})
	withURL := itemKey("s", feed.Item{URL: "http://a/", Title: "t"})
	withTitle := itemKey("s", feed.Item{Title: "t"})
	if withID == withURL || withURL == withTitle || withID == withTitle {
		t.Fatalf("identity tiers should produce distinct keys")
	}
	if itemKey("s1", feed.Item{ID: "x"}) == itemKey("s2", feed.Item{ID: "x"}) {
		t.Fatalf("keys must be scoped by source")
	}
	if itemKey("s", feed.Item{ID: "x"}) != itemKey("s", feed.Item{ID: "x"}) {
		t.Fatalf("keys must be stable")
	}
}
