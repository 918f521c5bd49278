package feed

import "github.com/DimitriGilbert/rss-to-json-feed/pkg/xmltree"

// buildRSS1Feed unwraps the rdf:RDF root: its single channel is the feed
// context, its top-level item sequence (siblings of the channel, not nested
// inside it) is the item list. RSS 1.0 never receives the podcast overlay.
func (p *Parser) buildRSS1Feed(rdf *xmltree.Node) (*Feed, error) {
	return p.buildRSS(rdf.First("channel"), rdf.All("item"))
}

// buildRSS2Feed normalizes an rss 2.x document and, when the root declares
// the itunes namespace, overlays the podcast metadata.
func (p *Parser) buildRSS2Feed(rss *xmltree.Node) (*Feed, error) {
	channel := rss.First("channel")
	items := channel.All("item")

	f, err := p.buildRSS(channel, items)
	if err != nil {
		return nil, err
	}

	// A literal atom:link on the channel overrides whatever the shared
	// normalizer resolved.
	if l := channel.First("atom:link"); l != nil && l.Attr("href") != "" {
		f.FeedURL = l.Attr("href")
	}

	if rss.Attr("xmlns:itunes") != "" {
		if err := p.decoratePodcast(f, channel, items); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// buildRSS is shared by RSS 1.0 and RSS 2.0. The channel title is required;
// everything else is optional.
func (p *Parser) buildRSS(channel *xmltree.Node, rawItems []*xmltree.Node) (*Feed, error) {
	f := newFeed()

	if l := atomSelfLink(channel); l != "" {
		f.FeedURL = l
	} else if about := channel.Attr("rdf:about"); about != "" {
		f.FeedURL = about
	}

	t := channel.First("title")
	if t == nil {
		return nil, ErrMissingTitle
	}
	f.Title = t.Text

	if l := channel.First("link"); l != nil {
		f.HomePageURL = l.Text
	}

	feedDecls := append(append([]FieldDecl{}, rssFeedFields...), p.opts.CustomFields.Feed...)
	mapFields(channel, f.Fields, feedDecls)

	itemDecls := append(append([]FieldDecl{}, rssItemFields...), p.opts.CustomFields.Item...)
	for _, raw := range rawItems {
		f.Items = append(f.Items, p.buildRSSItem(raw, itemDecls))
	}
	return f, nil
}

// buildRSSItem derives one canonical item. Derivation order matters: the
// enclosure and description come first, an unparseable date is dropped
// rather than failing the item, and the declared field copies run last.
func (p *Parser) buildRSSItem(raw *xmltree.Node, decls []FieldDecl) Item {
	it := Item{Fields: map[string]string{}}

	if e := raw.First("enclosure"); e != nil && e.HasAttrs() {
		attrs := make(map[string]string, len(e.Attrs))
		for k, v := range e.Attrs {
			attrs[k] = v
		}
		it.Enclosure = attrs
		it.Attachments = attrs
	}

	if d := raw.First("description"); d != nil {
		it.ContentHTML = renderContent(d)
		it.Summary = snippet(it.ContentHTML)
	}

	if t := raw.First("title"); t != nil {
		it.Title = t.Text
	}
	if l := raw.First("link"); l != nil {
		it.URL = l.Text
	}

	// guid text only; no isPermaLink inference, no link/title fallback.
	if g := raw.First("guid"); g != nil {
		it.ID = g.Text
	}

	for _, c := range raw.All("category") {
		it.Tags = append(it.Tags, c.Text)
	}

	if v := firstPresent(raw, "dc:date", "dcterms:issued", "pubDate"); v != "" {
		if ts, err := normalizeDate(v, false); err == nil {
			it.DatePublished = ts
		}
	}

	mapFields(raw, it.Fields, decls)
	return it
}

// atomSelfLink finds the channel's atom-namespaced self link.
func atomSelfLink(channel *xmltree.Node) string {
	for _, l := range channel.All("atom:link") {
		if l.Attr("rel") == "self" && l.Attr("href") != "" {
			return l.Attr("href")
		}
	}
	return ""
}
