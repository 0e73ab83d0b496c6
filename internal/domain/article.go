package domain

import "time"

// Article is a core entity describing a fetched source page.
type Article struct {
	URL         string
	Title       string
	SiteName    string
	PublishedAt time.Time
	FetchedAt   time.Time
}

// ProcessingStatus enumerates pipeline milestones.
type ProcessingStatus string

const (
	StatusClassified  ProcessingStatus = "classified"
	StatusTranscribed ProcessingStatus = "transcribed"
	StatusSummarized  ProcessingStatus = "summarized"
	StatusDelivered   ProcessingStatus = "delivered"
)

// SummaryRecord persisted to Postgres for deduplication and audit.
type SummaryRecord struct {
	Article          Article
	ContentKind      ContentKind
	Platform         Platform
	MediaID          string
	TranscriptSource string
	Summary          string
	Provider         string
	Status           ProcessingStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
