package domain

import "time"

// Platform identifies where a media candidate is hosted.
type Platform string

const (
	PlatformYouTube       Platform = "youtube"
	PlatformVimeo         Platform = "vimeo"
	PlatformLoom          Platform = "loom"
	PlatformWistia        Platform = "wistia"
	PlatformDailymotion   Platform = "dailymotion"
	PlatformSpotify       Platform = "spotify"
	PlatformSoundCloud    Platform = "soundcloud"
	PlatformApplePodcasts Platform = "apple_podcasts"
	PlatformAnchor        Platform = "anchor"
	PlatformSimplecast    Platform = "simplecast"
	PlatformHTML5Video    Platform = "html5_video"
	PlatformHTMLAudio     Platform = "html_audio"
	PlatformDirectFile    Platform = "direct_file"
	PlatformGeneric       Platform = "generic"
)

// MediaKind splits candidates into the two classes the pipeline treats
// differently.
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

// DiscoveryContext records how a candidate was found on the page.
type DiscoveryContext string

const (
	DiscoveryIframeEmbed     DiscoveryContext = "iframe_embed"
	DiscoveryAsyncEmbed      DiscoveryContext = "async_embed"
	DiscoveryScriptReference DiscoveryContext = "script_reference"
	DiscoveryMainBodyLink    DiscoveryContext = "main_body_link"
	DiscoveryHTMLReference   DiscoveryContext = "html_reference"
	DiscoveryDirectURL       DiscoveryContext = "direct_url"
	DiscoveryDirectFile      DiscoveryContext = "direct_file"
)

// MediaCandidate is one piece of playable media discovered on an article page.
type MediaCandidate struct {
	Platform         Platform         `json:"platform"`
	Kind             MediaKind        `json:"kind"`
	ID               string           `json:"id,omitempty"`
	CanonicalURL     string           `json:"canonical_url"`
	EmbedURL         string           `json:"embed_url,omitempty"`
	Discovery        DiscoveryContext `json:"discovery"`
	RequiresDownload bool             `json:"requires_download"`
}

// Trusted reports whether the discovery context alone justifies accepting the
// candidate without cross-checking it against the article. Only candidates
// lifted from main-body links need validation.
func (m MediaCandidate) Trusted() bool {
	return m.Discovery != DiscoveryMainBodyLink
}

// ContentKind is the single discriminant of a classification. The three
// accessors below derive from it, so a page can never be video and audio at
// the same time.
type ContentKind string

const (
	ContentVideo    ContentKind = "video"
	ContentAudio    ContentKind = "audio"
	ContentTextOnly ContentKind = "text_only"
)

// ContentClassification is the engine's answer for one page.
type ContentClassification struct {
	Kind            ContentKind      `json:"kind"`
	VideoCandidates []MediaCandidate `json:"video_candidates,omitempty"`
	AudioCandidates []MediaCandidate `json:"audio_candidates,omitempty"`
}

// NewVideoClassification wraps the single winning video candidate. The video
// list never holds more than one entry.
func NewVideoClassification(c MediaCandidate) ContentClassification {
	return ContentClassification{Kind: ContentVideo, VideoCandidates: []MediaCandidate{c}}
}

// NewAudioClassification keeps every plausible audio source. An empty list
// degrades to text-only.
func NewAudioClassification(cs []MediaCandidate) ContentClassification {
	if len(cs) == 0 {
		return NewTextClassification()
	}
	return ContentClassification{Kind: ContentAudio, AudioCandidates: cs}
}

// NewTextClassification marks a page with no playable media.
func NewTextClassification() ContentClassification {
	return ContentClassification{Kind: ContentTextOnly}
}

func (c ContentClassification) HasVideo() bool   { return c.Kind == ContentVideo }
func (c ContentClassification) HasAudio() bool   { return c.Kind == ContentAudio }
func (c ContentClassification) IsTextOnly() bool { return c.Kind == ContentTextOnly }

// PrimaryCandidate returns the candidate downstream stages should act on.
func (c ContentClassification) PrimaryCandidate() (MediaCandidate, bool) {
	switch {
	case len(c.VideoCandidates) > 0:
		return c.VideoCandidates[0], true
	case len(c.AudioCandidates) > 0:
		return c.AudioCandidates[0], true
	}
	return MediaCandidate{}, false
}

// VerdictReason explains why a validation accepted or rejected a candidate.
type VerdictReason string

const (
	ReasonStrongTitleMatch   VerdictReason = "strong_title_match"
	ReasonTitlePlusDateMatch VerdictReason = "title_plus_date_match"
	ReasonNoMatch            VerdictReason = "no_match"
	ReasonFetchError         VerdictReason = "fetch_error"
)

// ValidationVerdict is the outcome of cross-checking a link-discovered video
// against the article that linked it. DateDeltaDays is meaningful only when
// DateKnown is set.
type ValidationVerdict struct {
	Accepted        bool
	Reason          VerdictReason
	TitleSimilarity float64
	DateDeltaDays   int
	DateKnown       bool
}

// Transcript is the spoken-word text recovered for a media candidate, or the
// readable text of a plain article.
type Transcript struct {
	Text     string
	Segments []TranscriptSegment
	Source   string
	Language string
}

// TranscriptSegment is one timed cue.
type TranscriptSegment struct {
	Start time.Duration
	Text  string
}

// Timestamped reports whether the transcript carries cue timings.
func (t Transcript) Timestamped() bool { return len(t.Segments) > 0 }
