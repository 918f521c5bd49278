package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/DimitriGilbert/rss-to-json-feed/pkg/feed"
)

// Package sources loads the watcher's feed source registry (YAML/JSON).

// Source is one configured feed subscription.
type Source struct {
	ID             string            `json:"id" yaml:"id"`
	Name           string            `json:"name" yaml:"name"`
	URL            string            `json:"url" yaml:"url"`
	RequestDelayMs int               `json:"request_delay_ms" yaml:"request_delay_ms"`
	MaxRedirects   *int              `json:"max_redirects" yaml:"max_redirects"`
	Scrape         bool              `json:"scrape" yaml:"scrape"`
	CustomFields   feed.CustomFields `json:"custom_fields" yaml:"custom_fields"`
	Config         map[string]any    `json:"config" yaml:"config"`
}

type sourcesFile struct {
	Sources []Source `json:"sources" yaml:"sources"`
}

// Registry materializes source definitions loaded from a config file.
type Registry struct {
	mu      sync.RWMutex
	sources []Source
	idx     map[string]Source
}

var defaultRequestDelayMs = 500

// LoadRegistry loads the source registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	parsed, err := parseSourcesFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	reg := &Registry{
		sources: make([]Source, len(parsed.Sources)),
		idx:     make(map[string]Source, len(parsed.Sources)),
	}

	for i := range parsed.Sources {
		s := sanitizeSource(parsed.Sources[i])
		if err := validateSource(s); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, exists := reg.idx[s.ID]; exists {
			return nil, fmt.Errorf("duplicate source id %q", s.ID)
		}
		reg.sources[i] = s
		reg.idx[s.ID] = s
	}

	return reg, nil
}

func parseSourcesFile(data []byte, ext string) (sourcesFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yamlUnmarshal},
		{name: "yaml", ext: ".yml", fn: yamlUnmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var parsed sourcesFile
		if err := d.fn(data, &parsed); err == nil {
			return parsed, nil
		}
	}

	return sourcesFile{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

func yamlUnmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

func sanitizeSource(s Source) Source {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.URL = strings.TrimSpace(s.URL)

	if s.Config == nil {
		s.Config = map[string]any{}
	}
	if s.RequestDelayMs <= 0 {
		s.RequestDelayMs = defaultRequestDelayMs
	}

	return s
}

func validateSource(s Source) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required for source %q", s.ID)
	}
	if s.URL == "" {
		return fmt.Errorf("url is required for source %q", s.ID)
	}
	if !strings.HasPrefix(s.URL, "http://") && !strings.HasPrefix(s.URL, "https://") {
		return fmt.Errorf("url for source %q must be http(s)", s.ID)
	}
	return nil
}

// All returns a copy of the loaded sources.
func (r *Registry) All() []Source {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// ByID returns the source entry for the given id, if loaded.
func (r *Registry) ByID(id string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Source{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.idx[id]
	return s, ok
}

// RequestDelay returns the per-item throttle duration for the source.
func (s Source) RequestDelay() time.Duration {
	if s.RequestDelayMs <= 0 {
		return time.Duration(defaultRequestDelayMs) * time.Millisecond
	}
	return time.Duration(s.RequestDelayMs) * time.Millisecond
}

// ParserOptions builds the parser options for this source.
func (s Source) ParserOptions() feed.Options {
	return feed.Options{
		CustomFields: s.CustomFields,
		MaxRedirects: s.MaxRedirects,
		Headers:      Headers(s),
	}
}
