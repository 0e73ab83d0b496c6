package detector

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	"ContentDigest/internal/domain"
)

// platformPattern describes the URL grammar of one hosting platform. Domains
// are matched against the URL host, never against the whole string, so a
// platform name buried in an unrelated path does not count. Expressions are
// tried in order; their first capture group is the media id.
type platformPattern struct {
	platform    domain.Platform
	kind        domain.MediaKind
	domains     []string
	expressions []*regexp.Regexp
	canonical   string
	embed       string
}

var videoPatterns = []platformPattern{
	{
		platform: domain.PlatformYouTube,
		kind:     domain.MediaVideo,
		domains:  []string{"youtube.com", "youtube-nocookie.com", "youtu.be"},
		expressions: []*regexp.Regexp{
			regexp.MustCompile(`youtube(?:-nocookie)?\.com/watch\?(?:[^"'\s]*&)?v=([A-Za-z0-9_-]{6,})`),
			regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{6,})`),
			regexp.MustCompile(`youtube(?:-nocookie)?\.com/embed/([A-Za-z0-9_-]{6,})`),
			regexp.MustCompile(`youtube(?:-nocookie)?\.com/shorts/([A-Za-z0-9_-]{6,})`),
			regexp.MustCompile(`youtube\.com/live/([A-Za-z0-9_-]{6,})`),
		},
		canonical: "https://www.youtube.com/watch?v=%s",
		embed:     "https://www.youtube.com/embed/%s",
	},
	{
		platform: domain.PlatformVimeo,
		kind:     domain.MediaVideo,
		domains:  []string{"vimeo.com"},
		expressions: []*regexp.Regexp{
			regexp.MustCompile(`player\.vimeo\.com/video/(\d+)`),
			regexp.MustCompile(`vimeo\.com/(\d+)`),
		},
		canonical: "https://vimeo.com/%s",
		embed:     "https://player.vimeo.com/video/%s",
	},
	{
		platform: domain.PlatformLoom,
		kind:     domain.MediaVideo,
		domains:  []string{"loom.com"},
		expressions: []*regexp.Regexp{
			regexp.MustCompile(`loom\.com/share/([A-Fa-f0-9]{16,})`),
			regexp.MustCompile(`loom\.com/embed/([A-Fa-f0-9]{16,})`),
			regexp.MustCompile(`loom\.com/v/([A-Fa-f0-9]{16,})`),
		},
		canonical: "https://www.loom.com/share/%s",
		embed:     "https://www.loom.com/embed/%s",
	},
	{
		platform: domain.PlatformWistia,
		kind:     domain.MediaVideo,
		domains:  []string{"wistia.com", "wistia.net", "wi.st"},
		expressions: []*regexp.Regexp{
			regexp.MustCompile(`(?:wistia\.com|wistia\.net|wi\.st)/embed/iframe/([A-Za-z0-9]+)`),
			regexp.MustCompile(`(?:wistia\.com|wistia\.net|wi\.st)/embed/medias/([A-Za-z0-9]+)`),
			regexp.MustCompile(`(?:wistia\.com|wistia\.net|wi\.st)/medias/([A-Za-z0-9]+)`),
		},
		canonical: "https://fast.wistia.net/embed/iframe/%s",
		embed:     "https://fast.wistia.net/embed/iframe/%s",
	},
	{
		platform: domain.PlatformDailymotion,
		kind:     domain.MediaVideo,
		domains:  []string{"dailymotion.com", "dai.ly"},
		expressions: []*regexp.Regexp{
			regexp.MustCompile(`dailymotion\.com/embed/video/([A-Za-z0-9]+)`),
			regexp.MustCompile(`dailymotion\.com/video/([A-Za-z0-9]+)`),
			regexp.MustCompile(`dai\.ly/([A-Za-z0-9]+)`),
		},
		canonical: "https://www.dailymotion.com/video/%s",
		embed:     "https://www.dailymotion.com/embed/video/%s",
	},
}

var audioPatterns = []platformPattern{
	{
		platform: domain.PlatformSpotify,
		kind:     domain.MediaAudio,
		domains:  []string{"spotify.com"},
		expressions: []*regexp.Regexp{
			regexp.MustCompile(`open\.spotify\.com/(?:embed/)?(?:episode|show|track)/([A-Za-z0-9]+)`),
		},
	},
	{
		platform: domain.PlatformSoundCloud,
		kind:     domain.MediaAudio,
		domains:  []string{"soundcloud.com"},
		expressions: []*regexp.Regexp{
			regexp.MustCompile(`w\.soundcloud\.com/player/?\?[^"'\s<>]+`),
			regexp.MustCompile(`soundcloud\.com/([\w-]+/[\w-]+)`),
		},
		canonical: "https://soundcloud.com/%s",
	},
	{
		platform: domain.PlatformApplePodcasts,
		kind:     domain.MediaAudio,
		domains:  []string{"podcasts.apple.com"},
		expressions: []*regexp.Regexp{
			regexp.MustCompile(`podcasts\.apple\.com/[a-z]{2}/podcast/[^"'\s<>]*?id(\d+)`),
		},
	},
	{
		platform: domain.PlatformAnchor,
		kind:     domain.MediaAudio,
		domains:  []string{"anchor.fm"},
		expressions: []*regexp.Regexp{
			regexp.MustCompile(`anchor\.fm/[\w-]+/(?:embed/)?episodes/([\w-]+)`),
		},
	},
	{
		platform: domain.PlatformSimplecast,
		kind:     domain.MediaAudio,
		domains:  []string{"simplecast.com"},
		expressions: []*regexp.Regexp{
			regexp.MustCompile(`player\.simplecast\.com/([A-Za-z0-9-]+)`),
			regexp.MustCompile(`[\w-]+\.simplecast\.com/episodes/([\w-]+)`),
		},
		embed: "https://player.simplecast.com/%s",
	},
}

var videoFileExts = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {}, ".webm": {},
	".flv": {}, ".wmv": {}, ".m4v": {}, ".mpg": {}, ".mpeg": {},
}

var audioFileExts = map[string]struct{}{
	".mp3": {}, ".wav": {}, ".m4a": {}, ".aac": {}, ".ogg": {},
	".flac": {}, ".wma": {}, ".opus": {},
}

// directFileKind reports whether the URL points straight at a media file.
// Only the URL path decides: query strings, fragments and letter case never
// change the outcome, and the extension must sit on the terminal path
// segment, so "file.mp3.html" stays a web page.
func directFileKind(raw string) (domain.MediaKind, bool) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	p := parsed.Path
	if p == "" {
		p = parsed.Opaque
	}
	if decoded, decErr := url.PathUnescape(p); decErr == nil {
		p = decoded
	}
	ext := strings.ToLower(path.Ext(p))
	if _, ok := videoFileExts[ext]; ok {
		return domain.MediaVideo, true
	}
	if _, ok := audioFileExts[ext]; ok {
		return domain.MediaAudio, true
	}
	return "", false
}

// directFileCandidate wraps a raw media file URL.
func directFileCandidate(raw string, disc domain.DiscoveryContext) (domain.MediaCandidate, bool) {
	kind, ok := directFileKind(raw)
	if !ok {
		return domain.MediaCandidate{}, false
	}
	return domain.MediaCandidate{
		Platform:         domain.PlatformDirectFile,
		Kind:             kind,
		CanonicalURL:     strings.TrimSpace(raw),
		Discovery:        disc,
		RequiresDownload: true,
	}, true
}

// htmlAudioCandidate wraps a native <audio> source, which is always a raw
// file behind a player the browser renders itself.
func htmlAudioCandidate(src string) domain.MediaCandidate {
	return domain.MediaCandidate{
		Platform:         domain.PlatformHTMLAudio,
		Kind:             domain.MediaAudio,
		CanonicalURL:     src,
		Discovery:        domain.DiscoveryHTMLReference,
		RequiresDownload: true,
	}
}

// html5VideoCandidate wraps a native <video> source.
func html5VideoCandidate(src string) domain.MediaCandidate {
	return domain.MediaCandidate{
		Platform:         domain.PlatformHTML5Video,
		Kind:             domain.MediaVideo,
		CanonicalURL:     src,
		Discovery:        domain.DiscoveryHTMLReference,
		RequiresDownload: true,
	}
}

// wistiaCandidate builds a candidate from a bare media id; async embeds carry
// the id in a div class, not in a URL.
func wistiaCandidate(id string, disc domain.DiscoveryContext) domain.MediaCandidate {
	return domain.MediaCandidate{
		Platform:     domain.PlatformWistia,
		Kind:         domain.MediaVideo,
		ID:           id,
		CanonicalURL: fmt.Sprintf("https://fast.wistia.net/embed/iframe/%s", id),
		EmbedURL:     fmt.Sprintf("https://fast.wistia.net/embed/iframe/%s", id),
		Discovery:    disc,
	}
}

func matchVideoURL(raw string, disc domain.DiscoveryContext) (domain.MediaCandidate, bool) {
	return matchPlatform(raw, videoPatterns, disc)
}

func matchAudioURL(raw string, disc domain.DiscoveryContext) (domain.MediaCandidate, bool) {
	return matchPlatform(raw, audioPatterns, disc)
}

// matchPlatform resolves a single URL against a pattern table. The URL must
// parse and its host must belong to the platform before any expression runs.
func matchPlatform(raw string, pats []platformPattern, disc domain.DiscoveryContext) (domain.MediaCandidate, bool) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "//") {
		trimmed = "https:" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Hostname() == "" {
		return domain.MediaCandidate{}, false
	}
	for _, p := range pats {
		if !hostMatches(parsed.Hostname(), p.domains) {
			continue
		}
		for _, expr := range p.expressions {
			m := expr.FindStringSubmatch(trimmed)
			if m == nil {
				continue
			}
			id := ""
			if len(m) > 1 {
				id = m[1]
			}
			return p.candidate(id, trimmed, disc), true
		}
	}
	return domain.MediaCandidate{}, false
}

func hostMatches(host string, domains []string) bool {
	host = strings.ToLower(host)
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func (p platformPattern) candidate(id, raw string, disc domain.DiscoveryContext) domain.MediaCandidate {
	c := domain.MediaCandidate{
		Platform:     p.platform,
		Kind:         p.kind,
		ID:           id,
		CanonicalURL: raw,
		Discovery:    disc,
	}
	if id != "" && p.canonical != "" {
		c.CanonicalURL = fmt.Sprintf(p.canonical, id)
	}
	if id != "" && p.embed != "" {
		c.EmbedURL = fmt.Sprintf(p.embed, id)
	}
	if c.CanonicalURL != "" && !strings.HasPrefix(c.CanonicalURL, "http") {
		c.CanonicalURL = "https://" + strings.TrimPrefix(c.CanonicalURL, "//")
	}
	return c
}

// candidateKey identifies a candidate across discovery paths so duplicates
// collapse regardless of how the URL was written.
func candidateKey(c domain.MediaCandidate) string {
	if c.ID != "" {
		return string(c.Platform) + "/" + c.ID
	}
	return string(c.Platform) + "/" + c.CanonicalURL
}

// scanMatches finds every platform URL inside raw text, ordered by position,
// one entry per distinct candidate. Used when URLs live in script payloads
// rather than on DOM nodes.
func scanMatches(text string, pats []platformPattern, disc domain.DiscoveryContext) []domain.MediaCandidate {
	type positioned struct {
		pos  int
		cand domain.MediaCandidate
	}
	var found []positioned
	earliest := map[string]int{}

	for _, p := range pats {
		for _, expr := range p.expressions {
			for _, loc := range expr.FindAllStringSubmatchIndex(text, -1) {
				id := ""
				if len(loc) > 3 && loc[2] >= 0 {
					id = text[loc[2]:loc[3]]
				}
				cand := p.candidate(id, text[loc[0]:loc[1]], disc)
				key := candidateKey(cand)
				if prev, seen := earliest[key]; seen && prev <= loc[0] {
					continue
				}
				earliest[key] = loc[0]
				found = append(found, positioned{pos: loc[0], cand: cand})
			}
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	out := make([]domain.MediaCandidate, 0, len(found))
	seen := map[string]struct{}{}
	for _, f := range found {
		key := candidateKey(f.cand)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f.cand)
	}
	return out
}
