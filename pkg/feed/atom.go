package feed

import "github.com/DimitriGilbert/rss-to-json-feed/pkg/xmltree"

// buildAtomFeed normalizes an Atom document. The first and second feed-level
// links map positionally to home_page_url and feed_url (rel attributes are
// not consulted). An unparseable entry date aborts the whole parse; Atom
// entries get no summary, enclosure or tags.
func (p *Parser) buildAtomFeed(root *xmltree.Node) (*Feed, error) {
	f := newFeed()

	links := root.All("link")
	if len(links) > 0 {
		f.HomePageURL = links[0].Attr("href")
	}
	if len(links) > 1 {
		f.FeedURL = links[1].Attr("href")
	}
	if t := root.First("title"); t != nil {
		f.Title = t.Text
	}

	for _, entry := range root.All("entry") {
		item, err := p.buildAtomItem(entry)
		if err != nil {
			return nil, err
		}
		f.Items = append(f.Items, item)
	}
	return f, nil
}

func (p *Parser) buildAtomItem(entry *xmltree.Node) (Item, error) {
	it := Item{Fields: map[string]string{}}

	if t := entry.First("title"); t != nil {
		it.Title = t.Text
	}
	if l := entry.First("link"); l != nil {
		it.URL = l.Attr("href")
	}
	if u := entry.First("updated"); u != nil {
		ts, err := normalizeDate(u.Text, true)
		if err != nil {
			return Item{}, err
		}
		it.DatePublished = ts
	}
	if a := entry.First("author"); a != nil {
		if n := a.First("name"); n != nil {
			it.Author = &Author{Name: n.Text}
		}
	}
	if c := entry.First("content"); c != nil {
		it.ContentHTML = renderContent(c)
	}
	if id := entry.First("id"); id != nil {
		it.ID = id.Text
	}
	return it, nil
}
