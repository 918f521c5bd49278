package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage tracks which feed items the watcher has already published,
// so a poll loop only emits each item once. The parser itself never touches
// this; dedup is strictly a watcher concern.

// Store tracks published item IDs.
type Store interface {
	Close() error
	SeenItem(id string) (bool, error)
	MarkItem(id string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	ItemTTL         time.Duration
	CleanupInterval time.Duration
}

const (
	defaultItemTTL         = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ItemTTL <= 0 {
		opts.ItemTTL = defaultItemTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                  { return nil }
func (noopStore) SeenItem(string) (bool, error) { return false, nil }
func (noopStore) MarkItem(string) error         { return nil }
