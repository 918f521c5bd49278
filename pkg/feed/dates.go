package feed

import (
	"strings"
	"time"
)

// timeWireFormat always renders a numeric UTC offset, never the Z shorthand.
const timeWireFormat = "2006-01-02T15:04:05-07:00"

// dateLayouts are the source encodings feeds use in the wild, tried in order.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02",
}

// normalizeDate parses value with the accepted layouts and renders the wire
// format. With toUTC set the instant is converted to UTC (Atom dates);
// otherwise the offset embedded in the string is kept (RSS dates).
func normalizeDate(value string, toUTC bool) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if toUTC {
			t = t.UTC()
		}
		return t.Format(timeWireFormat), nil
	}
	return "", &DateParseError{Value: value}
}
