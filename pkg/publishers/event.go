package publishers

import (
	"time"

	"github.com/DimitriGilbert/rss-to-json-feed/pkg/feed"
)

// Event represents the payload published downstream: one normalized item
// from one configured source.
type Event struct {
	SourceID    string    `json:"source_id"`
	SourceName  string    `json:"source_name"`
	FeedTitle   string    `json:"feed_title,omitempty"`
	Item        feed.Item `json:"item"`
	CollectedAt time.Time `json:"collected_at"`
}

// NewEvent constructs an Event for the given source + item.
func NewEvent(sourceID, sourceName, feedTitle string, item feed.Item) Event {
	return Event{
		SourceID:    sourceID,
		SourceName:  sourceName,
		FeedTitle:   feedTitle,
		Item:        item,
		CollectedAt: time.Now().UTC(),
	}
}
