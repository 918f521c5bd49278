package feed

import "encoding/json"

// Version is the fixed version tag carried by every canonical feed.
const Version = "https://jsonfeed.org/version/1"

// Feed is the canonical, dialect-agnostic result of a parse. Items is always
// present (possibly empty); optional fields are omitted from the JSON output
// when absent. Fields holds the values copied by the built-in and
// caller-declared field declarations and is merged into the JSON object,
// never clobbering the typed keys.
type Feed struct {
	Version     string            `json:"version"`
	Title       string            `json:"title,omitempty"`
	HomePageURL string            `json:"home_page_url,omitempty"`
	FeedURL     string            `json:"feed_url,omitempty"`
	Podcast     *Podcast          `json:"podcast,omitempty"`
	Items       []Item            `json:"items"`
	Fields      map[string]string `json:"-"`
}

// Item is one normalized feed entry.
type Item struct {
	ID            string            `json:"id,omitempty"`
	Title         string            `json:"title,omitempty"`
	URL           string            `json:"url,omitempty"`
	DatePublished string            `json:"date_published,omitempty"`
	Author        *Author           `json:"author,omitempty"`
	ContentHTML   string            `json:"content_html,omitempty"`
	Summary       string            `json:"summary,omitempty"`
	Enclosure     map[string]string `json:"enclosure,omitempty"`
	Attachments   map[string]string `json:"attachments,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	Podcast       *Podcast          `json:"podcast,omitempty"`
	Fields        map[string]string `json:"-"`
}

// Author carries the entry author's name.
type Author struct {
	Name string `json:"name,omitempty"`
}

// Podcast is the iTunes-namespace metadata overlaid on RSS 2.0 feeds and
// their items.
type Podcast struct {
	Owner  *PodcastOwner     `json:"owner,omitempty"`
	Image  string            `json:"image,omitempty"`
	Fields map[string]string `json:"-"`
}

// PodcastOwner identifies the podcast owner.
type PodcastOwner struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func newFeed() *Feed {
	return &Feed{
		Version: Version,
		Items:   []Item{},
		Fields:  map[string]string{},
	}
}

func (f *Feed) MarshalJSON() ([]byte, error) {
	type alias Feed
	return marshalWithFields((*alias)(f), f.Fields)
}

func (i Item) MarshalJSON() ([]byte, error) {
	type alias Item
	return marshalWithFields(alias(i), i.Fields)
}

func (p *Podcast) MarshalJSON() ([]byte, error) {
	type alias Podcast
	return marshalWithFields((*alias)(p), p.Fields)
}

// marshalWithFields merges mapper-copied fields into the marshalled object.
// Typed keys win on collision. encoding/json sorts map keys, so identical
// inputs always render identical bytes.
func marshalWithFields(v any, fields map[string]string) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return raw, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	for key, val := range fields {
		if _, taken := obj[key]; taken {
			continue
		}
		enc, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		obj[key] = enc
	}
	return json.Marshal(obj)
}
