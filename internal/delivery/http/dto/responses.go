package dto

import (
	"time"

	"jobscout/internal/domain/job"
	"jobscout/internal/domain/scrape"
)

type LoginResponse struct {
	Token string `json:"token"`
}

type JobResponse struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location,omitempty"`
	Description     string   `json:"description,omitempty"`
	SalaryMin       *int     `json:"salary_min,omitempty"`
	SalaryMax       *int     `json:"salary_max,omitempty"`
	SalaryPeriod    string   `json:"salary_period,omitempty"`
	JobType         string   `json:"job_type,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	Remote          bool     `json:"remote"`
	CompanySize     string   `json:"company_size,omitempty"`
	Technologies    []string `json:"technologies,omitempty"`
	SourceName      string   `json:"source_name"`
	SourceURL       string   `json:"source_url"`
	PostedAt        string   `json:"posted_at,omitempty"`
	FirstSeenAt     string   `json:"first_seen_at,omitempty"`
}

func FromPosting(p job.Posting) JobResponse {
	out := JobResponse{
		ID:           p.ID.String(),
		Title:        p.Title,
		Company:      p.Company,
		SalaryMin:    p.SalaryMin,
		SalaryMax:    p.SalaryMax,
		SalaryPeriod: p.SalaryPeriod,
		Remote:       p.Remote,
		Technologies: p.Technologies,
		SourceName:   p.SourceName,
		SourceURL:    p.SourceURL,
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.JobType != nil {
		out.JobType = *p.JobType
	}
	if p.ExperienceLevel != nil {
		out.ExperienceLevel = *p.ExperienceLevel
	}
	if p.CompanySize != nil {
		out.CompanySize = *p.CompanySize
	}
	if p.PostedAt != nil && !p.PostedAt.IsZero() {
		out.PostedAt = p.PostedAt.UTC().Format(time.RFC3339)
	}
	if !p.FirstSeenAt.IsZero() {
		out.FirstSeenAt = p.FirstSeenAt.UTC().Format(time.RFC3339)
	}
	return out
}

func FromPostings(items []job.Posting) []JobResponse {
	out := make([]JobResponse, 0, len(items))
	for _, p := range items {
		out = append(out, FromPosting(p))
	}
	return out
}

type SourceResultResponse struct {
	SourceName string  `json:"source_name"`
	Category   string  `json:"category"`
	JobsFound  int     `json:"jobs_found"`
	JobsSaved  int     `json:"jobs_saved"`
	Success    bool    `json:"success"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

type SessionResponse struct {
	ID          string                 `json:"id"`
	FocusAreas  []string               `json:"focus_areas"`
	StartedAt   string                 `json:"started_at"`
	CompletedAt string                 `json:"completed_at,omitempty"`
	TotalFound  int                    `json:"total_found"`
	TotalSaved  int                    `json:"total_saved"`
	Success     bool                   `json:"success"`
	Sources     []SourceResultResponse `json:"sources"`
}

func FromSession(s scrape.Session) SessionResponse {
	out := SessionResponse{
		ID:         s.ID,
		FocusAreas: s.FocusAreas,
		StartedAt:  s.StartedAt.UTC().Format(time.RFC3339),
		TotalFound: s.TotalFound,
		TotalSaved: s.TotalSaved,
		Success:    s.Success,
		Sources:    make([]SourceResultResponse, 0, len(s.Sources)),
	}
	if !s.CompletedAt.IsZero() {
		out.CompletedAt = s.CompletedAt.UTC().Format(time.RFC3339)
	}
	for _, r := range s.Sources {
		out.Sources = append(out.Sources, SourceResultResponse{
			SourceName: r.SourceName,
			Category:   r.Category,
			JobsFound:  r.JobsFound,
			JobsSaved:  r.JobsSaved,
			Success:    r.Success,
			Error:      r.Error,
			DurationMS: float64(r.Duration) / 1e6,
		})
	}
	return out
}

func FromSessions(items []scrape.Session) []SessionResponse {
	out := make([]SessionResponse, 0, len(items))
	for _, s := range items {
		out = append(out, FromSession(s))
	}
	return out
}
