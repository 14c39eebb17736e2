package dto

import (
	"time"

	"jobscout/internal/domain/preferences"
	"jobscout/internal/repository"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ScrapeRunRequest struct {
	FocusAreas   []string `json:"focus_areas"`
	PriorityOnly bool     `json:"priority_only"`
}

// RankRequest carries the caller's matching preferences plus an optional
// filter over the active postings. Every field is optional; an empty body
// ranks everything with the server defaults.
type RankRequest struct {
	RequiredKeywords  []string           `json:"required_keywords"`
	PreferredKeywords []string           `json:"preferred_keywords"`
	ExcludedKeywords  []string           `json:"excluded_keywords"`
	KeywordWeights    map[string]float64 `json:"keyword_weights"`

	PreferredLocations []string `json:"preferred_locations"`
	RemoteAcceptable   *bool    `json:"remote_acceptable"`

	MinSalary *int `json:"min_salary"`
	MaxSalary *int `json:"max_salary"`

	ExperienceLevels []string `json:"experience_levels"`

	PreferredCompanyTypes []string `json:"preferred_company_types"`
	ExcludedCompanies     []string `json:"excluded_companies"`

	PreferredTechnologies []string `json:"preferred_technologies"`

	JobTypes []string `json:"job_types"`

	RankingWeights map[string]float64 `json:"ranking_weights"`

	Filter *RankFilter `json:"filter"`
}

type RankFilter struct {
	Company          string `json:"company"`
	SourceName       string `json:"source_name"`
	JobType          string `json:"job_type"`
	RemoteOnly       bool   `json:"remote_only"`
	PostedWithinDays int    `json:"posted_within_days"`
	Limit            int    `json:"limit"`
	Offset           int    `json:"offset"`
}

// Preferences converts the request into the domain shape. A request with no
// preference fields at all returns nil so the engine uses its defaults.
func (r RankRequest) Preferences() *preferences.Preferences {
	if r.empty() {
		return nil
	}
	p := preferences.Preferences{
		RequiredKeywords:      r.RequiredKeywords,
		PreferredKeywords:     r.PreferredKeywords,
		ExcludedKeywords:      r.ExcludedKeywords,
		KeywordWeights:        r.KeywordWeights,
		PreferredLocations:    r.PreferredLocations,
		RemoteAcceptable:      true,
		MinSalary:             r.MinSalary,
		MaxSalary:             r.MaxSalary,
		ExperienceLevels:      r.ExperienceLevels,
		PreferredCompanyTypes: r.PreferredCompanyTypes,
		ExcludedCompanies:     r.ExcludedCompanies,
		PreferredTechnologies: r.PreferredTechnologies,
		JobTypes:              r.JobTypes,
		RankingWeights:        r.RankingWeights,
	}
	if r.RemoteAcceptable != nil {
		p.RemoteAcceptable = *r.RemoteAcceptable
	}
	return &p
}

func (r RankRequest) empty() bool {
	return len(r.RequiredKeywords) == 0 &&
		len(r.PreferredKeywords) == 0 &&
		len(r.ExcludedKeywords) == 0 &&
		len(r.KeywordWeights) == 0 &&
		len(r.PreferredLocations) == 0 &&
		r.RemoteAcceptable == nil &&
		r.MinSalary == nil &&
		r.MaxSalary == nil &&
		len(r.ExperienceLevels) == 0 &&
		len(r.PreferredCompanyTypes) == 0 &&
		len(r.ExcludedCompanies) == 0 &&
		len(r.PreferredTechnologies) == 0 &&
		len(r.JobTypes) == 0 &&
		len(r.RankingWeights) == 0
}

// JobFilter converts the optional filter, resolving posted_within_days
// against the current clock.
func (r RankRequest) JobFilter(now time.Time) repository.JobFilter {
	if r.Filter == nil {
		return repository.JobFilter{}
	}
	return r.Filter.toRepo(now)
}

func (f RankFilter) toRepo(now time.Time) repository.JobFilter {
	out := repository.JobFilter{
		Company:    f.Company,
		SourceName: f.SourceName,
		JobType:    f.JobType,
		RemoteOnly: f.RemoteOnly,
		Limit:      f.Limit,
		Offset:     f.Offset,
	}
	if f.PostedWithinDays > 0 {
		cutoff := now.UTC().AddDate(0, 0, -f.PostedWithinDays)
		out.PostedAfter = &cutoff
	}
	return out
}
