package feed

import (
	"fmt"

	"github.com/DimitriGilbert/rss-to-json-feed/pkg/xmltree"
)

var podcastFeedFields = []FieldDecl{
	Renamed("itunes:author", "author"),
	Renamed("itunes:subtitle", "subtitle"),
	Renamed("itunes:summary", "summary"),
	Renamed("itunes:explicit", "explicit"),
}

var podcastItemFields = []FieldDecl{
	Renamed("itunes:author", "author"),
	Renamed("itunes:subtitle", "subtitle"),
	Renamed("itunes:summary", "summary"),
	Renamed("itunes:explicit", "explicit"),
	Renamed("itunes:duration", "duration"),
	Renamed("itunes:image", "image"),
}

// decoratePodcast overlays itunes metadata onto an already-normalized RSS
// 2.0 feed. Item sub-blocks attach by position into the normalized item
// sequence, so the raw and normalized sequences must align exactly; a
// mismatch fails loudly instead of misattributing metadata.
func (p *Parser) decoratePodcast(f *Feed, channel *xmltree.Node, rawItems []*xmltree.Node) error {
	pod := &Podcast{Fields: map[string]string{}}

	if owner := channel.First("itunes:owner"); owner != nil {
		po := &PodcastOwner{}
		if n := owner.First("itunes:name"); n != nil {
			po.Name = n.Text
		}
		if e := owner.First("itunes:email"); e != nil {
			po.Email = e.Text
		}
		pod.Owner = po
		if img := channel.First("itunes:image"); img != nil {
			pod.Image = img.Attr("href")
		}
	}

	mapFields(channel, pod.Fields, podcastFeedFields)
	f.Podcast = pod

	if len(rawItems) != len(f.Items) {
		return fmt.Errorf("podcast overlay: %d raw items but %d normalized items", len(rawItems), len(f.Items))
	}
	for i, raw := range rawItems {
		ip := &Podcast{Fields: map[string]string{}}
		mapFields(raw, ip.Fields, podcastItemFields)
		if img := raw.First("itunes:image"); img != nil {
			ip.Image = img.Attr("href")
		}
		f.Items[i].Podcast = ip
	}
	return nil
}
