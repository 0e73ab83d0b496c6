package detector

import (
	"testing"

	"ContentDigest/internal/domain"
)

func TestMatchVideoURLPlatforms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		url      string
		platform domain.Platform
		id       string
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", domain.PlatformYouTube, "dQw4w9WgXcQ"},
		{"youtube watch extra params", "https://www.youtube.com/watch?app=desktop&v=dQw4w9WgXcQ&t=42", domain.PlatformYouTube, "dQw4w9WgXcQ"},
		{"youtube short link", "https://youtu.be/abc123XYZ9", domain.PlatformYouTube, "abc123XYZ9"},
		{"youtube embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", domain.PlatformYouTube, "dQw4w9WgXcQ"},
		{"youtube nocookie", "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", domain.PlatformYouTube, "dQw4w9WgXcQ"},
		{"protocol relative", "//www.youtube.com/embed/dQw4w9WgXcQ", domain.PlatformYouTube, "dQw4w9WgXcQ"},
		{"vimeo page", "https://vimeo.com/76979871", domain.PlatformVimeo, "76979871"},
		{"vimeo player", "https://player.vimeo.com/video/76979871", domain.PlatformVimeo, "76979871"},
		{"loom share", "https://www.loom.com/share/0281766fa2d04bb788eaf19e65135184", domain.PlatformLoom, "0281766fa2d04bb788eaf19e65135184"},
		{"loom embed", "https://www.loom.com/embed/0281766fa2d04bb788eaf19e65135184", domain.PlatformLoom, "0281766fa2d04bb788eaf19e65135184"},
		{"wistia iframe", "https://fast.wistia.net/embed/iframe/avk9twrrbn", domain.PlatformWistia, "avk9twrrbn"},
		{"wistia medias", "https://support.wistia.com/medias/avk9twrrbn", domain.PlatformWistia, "avk9twrrbn"},
		{"dailymotion video", "https://www.dailymotion.com/video/x8k2j1p", domain.PlatformDailymotion, "x8k2j1p"},
		{"dailymotion short", "https://dai.ly/x8k2j1p", domain.PlatformDailymotion, "x8k2j1p"},
	}

	for _, tc := range cases {
		cand, ok := matchVideoURL(tc.url, domain.DiscoveryIframeEmbed)
		if !ok {
			t.Fatalf("%s: expected a match for %s", tc.name, tc.url)
		}
		if cand.Platform != tc.platform {
			t.Errorf("%s: platform = %s, want %s", tc.name, cand.Platform, tc.platform)
		}
		if cand.ID != tc.id {
			t.Errorf("%s: id = %q, want %q", tc.name, cand.ID, tc.id)
		}
		if cand.Kind != domain.MediaVideo {
			t.Errorf("%s: kind = %s, want video", tc.name, cand.Kind)
		}
	}
}

func TestMatchVideoURLRejectsLookalikes(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://example.com/blog/wistia-review",
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"https://notyoutube.company.com/watch?v=dQw4w9WgXcQ",
		"https://example.com/?next=youtube.com/watch%3Fv=dQw4w9WgXcQ",
		"https://example.com/article-about-vimeo.com/123",
		"/relative/path/only",
		"",
	}
	for _, u := range urls {
		if cand, ok := matchVideoURL(u, domain.DiscoveryIframeEmbed); ok {
			t.Errorf("expected no match for %q, got %s/%s", u, cand.Platform, cand.ID)
		}
	}
}

func TestMatchAudioURLPlatforms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url      string
		platform domain.Platform
	}{
		{"https://open.spotify.com/episode/4rOoJ6Egrf8K2IrywzwOMk", domain.PlatformSpotify},
		{"https://open.spotify.com/embed/episode/4rOoJ6Egrf8K2IrywzwOMk", domain.PlatformSpotify},
		{"https://w.soundcloud.com/player/?url=https%3A//api.soundcloud.com/tracks/13158665", domain.PlatformSoundCloud},
		{"https://soundcloud.com/forss/flickermood", domain.PlatformSoundCloud},
		{"https://podcasts.apple.com/us/podcast/the-daily/id1200361736", domain.PlatformApplePodcasts},
		{"https://anchor.fm/emma-chamberlain/episodes/advice-e1vjvst", domain.PlatformAnchor},
		{"https://player.simplecast.com/1a2b3c4d-5e6f-7a8b-9c0d-1e2f3a4b5c6d", domain.PlatformSimplecast},
	}
	for _, tc := range cases {
		cand, ok := matchAudioURL(tc.url, domain.DiscoveryIframeEmbed)
		if !ok {
			t.Fatalf("expected a match for %s", tc.url)
		}
		if cand.Platform != tc.platform {
			t.Errorf("%s: platform = %s, want %s", tc.url, cand.Platform, tc.platform)
		}
		if cand.Kind != domain.MediaAudio {
			t.Errorf("%s: kind = %s, want audio", tc.url, cand.Kind)
		}
	}
}

func TestDirectFileKindPathOnly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url  string
		kind domain.MediaKind
		ok   bool
	}{
		{"https://cdn.example.com/file.mp3", domain.MediaAudio, true},
		{"https://cdn.example.com/FILE.MP3?tracking=1", domain.MediaAudio, true},
		{"https://cdn.example.com/audio%20file.mp3", domain.MediaAudio, true},
		{"https://cdn.example.com/episode.m4a#t=30", domain.MediaAudio, true},
		{"https://cdn.example.com/clip.mp4", domain.MediaVideo, true},
		{"https://cdn.example.com/clip.WebM", domain.MediaVideo, true},
		{"relative/path/episode.ogg", domain.MediaAudio, true},
		{"https://example.com/file.mp3.html", "", false},
		{"https://example.com/page?file=song.mp3", "", false},
		{"https://example.com/mp3-collection/", "", false},
		{"https://example.com/archive.tar.gz", "", false},
	}
	for _, tc := range cases {
		kind, ok := directFileKind(tc.url)
		if ok != tc.ok {
			t.Fatalf("%s: matched = %v, want %v", tc.url, ok, tc.ok)
		}
		if ok && kind != tc.kind {
			t.Errorf("%s: kind = %s, want %s", tc.url, kind, tc.kind)
		}
	}
}

func TestCandidateURLTemplates(t *testing.T) {
	t.Parallel()

	cand, ok := matchVideoURL("https://youtu.be/dQw4w9WgXcQ", domain.DiscoveryMainBodyLink)
	if !ok {
		t.Fatal("expected a match")
	}
	if cand.CanonicalURL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("canonical = %s", cand.CanonicalURL)
	}
	if cand.EmbedURL != "https://www.youtube.com/embed/dQw4w9WgXcQ" {
		t.Errorf("embed = %s", cand.EmbedURL)
	}
	if cand.Trusted() {
		t.Error("main-body link must not be trusted")
	}

	iframe, _ := matchVideoURL("https://player.vimeo.com/video/76979871", domain.DiscoveryIframeEmbed)
	if !iframe.Trusted() {
		t.Error("iframe embed must be trusted")
	}
}

func TestScanMatchesOrdersByPosition(t *testing.T) {
	t.Parallel()

	blob := `var config = {"second": "https://vimeo.com/1111", "first": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"};`
	matches := scanMatches(blob, videoPatterns, domain.DiscoveryHTMLReference)
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].Platform != domain.PlatformVimeo {
		t.Errorf("first match = %s, want vimeo (earlier in text)", matches[0].Platform)
	}
	if matches[1].Platform != domain.PlatformYouTube {
		t.Errorf("second match = %s, want youtube", matches[1].Platform)
	}
}
