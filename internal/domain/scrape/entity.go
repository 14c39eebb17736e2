package scrape

import (
	"time"

	"github.com/google/uuid"
)

// SourceResult is the outcome of one source within a session. A failed
// source keeps Success false and the cause in Error; the session as a whole
// is unaffected.
type SourceResult struct {
	SourceName string        `json:"source_name"`
	Category   string        `json:"category"`
	JobsFound  int           `json:"jobs_found"`
	JobsSaved  int           `json:"jobs_saved"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Session is one coordinated scraping run across all source categories.
// JobsFound counts raw postings before deduplication, JobsSaved after.
type Session struct {
	ID          string         `json:"id"`
	FocusAreas  []string       `json:"focus_areas"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	TotalFound  int            `json:"total_found"`
	TotalSaved  int            `json:"total_saved"`
	Success     bool           `json:"success"`
	Sources     []SourceResult `json:"sources"`
}

// NewSessionID builds a sortable session identifier such as
// search_20260830_142501_3fa85f64.
func NewSessionID(t time.Time) string {
	return "search_" + t.UTC().Format("20060102_150405") + "_" + uuid.NewString()[:8]
}
