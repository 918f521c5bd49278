package publishers

import "context"

// logPublisher writes every event to the structured log, mostly useful for
// local runs and debugging publisher fanout.
type logPublisher struct {
	id  string
	typ string
	log Logger
}

func newLogPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	return &logPublisher{
		id:  cfg.ID,
		typ: TypeLog,
		log: ensureLogger(log),
	}, nil
}

func (l *logPublisher) ID() string   { return l.id }
func (l *logPublisher) Type() string { return l.typ }

func (l *logPublisher) Publish(_ context.Context, evt Event) error {
	l.log.InfoObj("event published", "event", map[string]any{
		"source_id": evt.SourceID,
		"item_id":   evt.Item.ID,
		"title":     evt.Item.Title,
		"url":       evt.Item.URL,
	})
	return nil
}
