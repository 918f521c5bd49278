package feed

import (
	"strings"
	"time"

	"github.com/DimitriGilbert/rss-to-json-feed/pkg/httpclient"
	"github.com/DimitriGilbert/rss-to-json-feed/pkg/xmltree"
)

// Package feed normalizes Atom, RSS 1.0 and RSS 2.0 documents (including
// iTunes podcast extensions) into one canonical JSON-Feed-style model.

const (
	// DefaultMaxRedirects bounds redirect following when Options leaves
	// MaxRedirects unset.
	DefaultMaxRedirects = 1

	defaultTimeout = 15 * time.Second
)

// Options configures a Parser. The zero value is usable.
type Options struct {
	// CustomFields declares extra feed/item fields appended after the
	// built-in declaration tables.
	CustomFields CustomFields

	// MaxRedirects is the number of redirects ParseURL follows. Nil means
	// DefaultMaxRedirects; 0 treats any redirect response as a terminal
	// error.
	MaxRedirects *int

	// Headers are sent with every fetch.
	Headers map[string]string

	// Timeout bounds each HTTP request made by ParseURL.
	Timeout time.Duration

	// Client overrides the HTTP client; it must not follow redirects
	// itself. Nil selects the default manual-redirect client.
	Client httpclient.Client
}

// Parser normalizes feed documents. It holds no per-parse state and is safe
// for concurrent use; every call works on a fresh document tree.
type Parser struct {
	opts   Options
	client httpclient.Client
}

// NewParser builds a parser with the given options.
func NewParser(opts Options) *Parser {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = httpclient.NewManualRedirectClient(timeout)
	}
	return &Parser{opts: opts, client: client}
}

// ParseString normalizes a literal XML document. Decoder syntax errors are
// returned as-is; a document matching no dialect signature returns
// ErrUnrecognizedFormat.
func (p *Parser) ParseString(data string) (*Feed, error) {
	doc, err := xmltree.Decode(data)
	if err != nil {
		return nil, err
	}

	// First signature wins; an rss element whose version does not start
	// with "2" falls through.
	switch {
	case doc.First("feed") != nil:
		return p.buildAtomFeed(doc.First("feed"))
	case isRSS2(doc.First("rss")):
		return p.buildRSS2Feed(doc.First("rss"))
	case doc.First("rdf:RDF") != nil:
		return p.buildRSS1Feed(doc.First("rdf:RDF"))
	default:
		return nil, ErrUnrecognizedFormat
	}
}

func isRSS2(rss *xmltree.Node) bool {
	return rss != nil && strings.HasPrefix(rss.Attr("version"), "2")
}

func (p *Parser) maxRedirects() int {
	if p.opts.MaxRedirects == nil {
		return DefaultMaxRedirects
	}
	if *p.opts.MaxRedirects < 0 {
		return 0
	}
	return *p.opts.MaxRedirects
}
