package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/DimitriGilbert/rss-to-json-feed/pkg/feed"
)

// feed2json parses a single feed (URL, file, or stdin) and prints the
// canonical JSON document to stdout.

type options struct {
	File         string   `short:"f" long:"file" description:"parse a local feed file instead of fetching a URL"`
	MaxRedirects *int     `short:"r" long:"max-redirects" description:"redirects to follow when fetching (0 disables redirects)"`
	Timeout      int      `short:"t" long:"timeout" default:"15" description:"HTTP timeout in seconds"`
	Pretty       bool     `short:"p" long:"pretty" description:"indent the JSON output"`
	FeedFields   []string `long:"feed-field" description:"extra channel field to copy, as NAME or SOURCE=DEST (repeatable)"`
	ItemFields   []string `long:"item-field" description:"extra item field to copy, as NAME or SOURCE=DEST (repeatable)"`

	Args struct {
		URL string `positional-arg-name:"url" description:"feed URL to fetch; omit with --file or to read stdin"`
	} `positional-args:"yes"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "feed2json: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return nil
		}
		os.Exit(2)
	}

	parser := feed.NewParser(feed.Options{
		CustomFields: feed.CustomFields{
			Feed: parseFieldDecls(opts.FeedFields),
			Item: parseFieldDecls(opts.ItemFields),
		},
		MaxRedirects: opts.MaxRedirects,
		Timeout:      time.Duration(opts.Timeout) * time.Second,
	})

	result, err := parse(parser, opts)
	if err != nil {
		return err
	}

	out, err := encode(result, opts.Pretty)
	if err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}

	fmt.Println(string(out))
	return nil
}

func parse(parser *feed.Parser, opts options) (*feed.Feed, error) {
	switch {
	case opts.File != "" && opts.Args.URL != "":
		return nil, fmt.Errorf("pass either a url or --file, not both")
	case opts.File != "":
		return parser.ParseFile(opts.File)
	case opts.Args.URL != "":
		return parser.ParseURL(context.Background(), opts.Args.URL)
	default:
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		if len(raw) == 0 {
			return nil, fmt.Errorf("no url, no --file, and empty stdin")
		}
		return parser.ParseString(string(raw))
	}
}

func parseFieldDecls(raw []string) []feed.FieldDecl {
	var decls []feed.FieldDecl
	for _, r := range raw {
		source, dest, found := strings.Cut(r, "=")
		if !found {
			decls = append(decls, feed.Decl(source))
			continue
		}
		decls = append(decls, feed.Renamed(source, dest))
	}
	return decls
}

func encode(f *feed.Feed, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(f, "", "  ")
	}
	return json.Marshal(f)
}
