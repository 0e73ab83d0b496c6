package domain

import "time"

// JobStatus enumerates queue states.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job is one queued summarization request, produced by the inbox watcher.
// NotBefore defers a retried job; the zero value means runnable now.
type Job struct {
	ID           string    `json:"id"`
	SourceFile   string    `json:"source_file"`
	URL          string    `json:"url"`
	CustomPrompt string    `json:"custom_prompt,omitempty"`
	Status       JobStatus `json:"status"`
	Retries      int       `json:"retries"`
	LastError    string    `json:"last_error,omitempty"`
	NotBefore    time.Time `json:"not_before"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
