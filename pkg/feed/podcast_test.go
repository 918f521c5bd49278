package feed

import (
	"strings"
	"testing"

	"github.com/DimitriGilbert/rss-to-json-feed/pkg/xmltree"
)

const podcastSample = `<?xml version="1.0"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>All About Everything</title>
    <link>http://www.example.com/podcasts</link>
    <itunes:author>John Doe</itunes:author>
    <itunes:subtitle>A show about everything</itunes:subtitle>
    <itunes:owner>
      <itunes:name>John Doe</itunes:name>
      <itunes:email>john.doe@example.com</itunes:email>
    </itunes:owner>
    <itunes:image href="http://example.com/podcasts/everything/AllAboutEverything.jpg"/>
    <item>
      <title>Shake Shake Shake Your Spices</title>
      <itunes:author>John Doe</itunes:author>
      <itunes:duration>07:04</itunes:duration>
      <itunes:image href="http://example.com/ep1.jpg"/>
    </item>
    <item>
      <title>Socket Wrench Shootout</title>
      <itunes:duration>04:34</itunes:duration>
    </item>
  </channel>
</rss>`

func TestPodcastOverlayOnFeed(t *testing.T) {
	f, err := NewParser(Options{}).ParseString(podcastSample)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if f.Podcast == nil {
		t.Fatalf("expected podcast overlay")
	}
	if f.Podcast.Owner == nil || f.Podcast.Owner.Name != "John Doe" || f.Podcast.Owner.Email != "john.doe@example.com" {
		t.Fatalf("owner = %+v", f.Podcast.Owner)
	}
	if f.Podcast.Image != "http://example.com/podcasts/everything/AllAboutEverything.jpg" {
		t.Fatalf("image = %q", f.Podcast.Image)
	}
	if f.Podcast.Fields["author"] != "John Doe" {
		t.Fatalf("author field = %q", f.Podcast.Fields["author"])
	}
	if f.Podcast.Fields["subtitle"] != "A show about everything" {
		t.Fatalf("subtitle field = %q", f.Podcast.Fields["subtitle"])
	}
}

func TestPodcastOverlayAlignsItemsByPosition(t *testing.T) {
	f, err := NewParser(Options{}).ParseString(podcastSample)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(f.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(f.Items))
	}
	first := f.Items[0].Podcast
	if first == nil || first.Fields["duration"] != "07:04" {
		t.Fatalf("first item podcast = %+v", first)
	}
	if first.Image != "http://example.com/ep1.jpg" {
		t.Fatalf("first item image = %q", first.Image)
	}
	second := f.Items[1].Podcast
	if second == nil || second.Fields["duration"] != "04:34" {
		t.Fatalf("second item podcast = %+v", second)
	}
	if second.Image != "" {
		t.Fatalf("second item should have no image, got %q", second.Image)
	}
}

func TestPodcastImageRequiresOwner(t *testing.T) {
	doc := `<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
	  <channel>
	    <title>t</title>
	    <itunes:image href="http://example.com/cover.jpg"/>
	  </channel>
	</rss>`
	f, err := NewParser(Options{}).ParseString(doc)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if f.Podcast == nil {
		t.Fatalf("expected podcast overlay")
	}
	if f.Podcast.Owner != nil {
		t.Fatalf("expected no owner, got %+v", f.Podcast.Owner)
	}
	if f.Podcast.Image != "" {
		t.Fatalf("image must stay empty without an owner, got %q", f.Podcast.Image)
	}
}

func TestNoPodcastWithoutItunesNamespace(t *testing.T) {
	doc := `<rss version="2.0"><channel><title>t</title><item><title>i</title></item></channel></rss>`
	f, err := NewParser(Options{}).ParseString(doc)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if f.Podcast != nil {
		t.Fatalf("expected no podcast block")
	}
	if f.Items[0].Podcast != nil {
		t.Fatalf("expected no item podcast block")
	}
}

func TestPodcastOverlayEveryItemGetsBlock(t *testing.T) {
	doc := `<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
	  <channel>
	    <title>t</title>
	    <item><title>plain item, no itunes children</title></item>
	  </channel>
	</rss>`
	f, err := NewParser(Options{}).ParseString(doc)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	p := f.Items[0].Podcast
	if p == nil {
		t.Fatalf("overlayed feeds attach a podcast block to every item")
	}
	if len(p.Fields) != 0 || p.Image != "" {
		t.Fatalf("expected empty block, got %+v", p)
	}
}

func TestPodcastOverlayLengthMismatchFailsLoudly(t *testing.T) {
	doc, err := xmltree.Decode(`<channel><title>t</title></channel>`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	f := newFeed()
	raw := []*xmltree.Node{{Name: "item"}}

	err = NewParser(Options{}).decoratePodcast(f, doc.First("channel"), raw)
	if err == nil || !strings.Contains(err.Error(), "podcast overlay") {
		t.Fatalf("expected alignment error, got %v", err)
	}
}

func TestPodcastBlocksSerializedUnderPodcastKey(t *testing.T) {
	f, err := NewParser(Options{}).ParseString(podcastSample)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	raw, err := f.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	s := string(raw)
	if !strings.Contains(s, `"podcast":{`) {
		t.Fatalf("missing podcast key: %s", s)
	}
	if !strings.Contains(s, `"duration":"07:04"`) {
		t.Fatalf("item podcast fields missing: %s", s)
	}
}
