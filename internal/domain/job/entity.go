package job

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("job not found")

const (
	SalaryPeriodAnnual = "annual"
	SalaryPeriodHourly = "hourly"
)

const (
	TypeFullTime   = "full-time"
	TypePartTime   = "part-time"
	TypeContract   = "contract"
	TypeInternship = "internship"
)

const (
	LevelEntry  = "entry"
	LevelMid    = "mid"
	LevelSenior = "senior"
	LevelLead   = "lead"
)

// Posting is the canonical job record every source adapter produces.
// Adapters never hand back ad hoc shapes to the coordinator.
type Posting struct {
	ID              uuid.UUID
	Title           string
	Company         string
	Location        *string
	Description     *string
	SalaryMin       *int
	SalaryMax       *int
	SalaryPeriod    string
	JobType         *string
	ExperienceLevel *string
	Remote          bool
	CompanySize     *string
	Technologies    []string
	SourceName      string
	SourceURL       string
	ExternalID      *string
	PostedAt        *time.Time
	FirstSeenAt     time.Time
}

// fingerprintDescLen bounds how much of the description participates in
// identity, so trailing boilerplate edits do not split one opportunity
// into two records.
const fingerprintDescLen = 200

// Fingerprint identifies one opportunity across sources. Two postings with
// equal fingerprints are the same job regardless of where they were scraped.
func (p Posting) Fingerprint() string {
	title := strings.ToLower(strings.TrimSpace(p.Title))
	company := strings.ToLower(strings.TrimSpace(p.Company))

	location := ""
	if p.Location != nil {
		location = strings.ToLower(strings.TrimSpace(*p.Location))
	}

	desc := ""
	if p.Description != nil {
		desc = *p.Description
		if len(desc) > fingerprintDescLen {
			desc = desc[:fingerprintDescLen]
		}
		desc = strings.ToLower(strings.TrimSpace(desc))
	}

	h := sha256.Sum256([]byte(title + "|" + company + "|" + location + "|" + desc))
	return hex.EncodeToString(h[:])
}

func (p Posting) LocationOrEmpty() string {
	if p.Location == nil {
		return ""
	}
	return strings.TrimSpace(*p.Location)
}

func (p Posting) DescriptionOrEmpty() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// Merge folds metadata from a duplicate sighting of the same opportunity
// into the receiver. Identity fields are never touched.
func (p *Posting) Merge(dup Posting) {
	if p == nil {
		return
	}
	if p.PostedAt == nil && dup.PostedAt != nil {
		t := *dup.PostedAt
		p.PostedAt = &t
	}
	if p.SalaryMin == nil && dup.SalaryMin != nil {
		v := *dup.SalaryMin
		p.SalaryMin = &v
	}
	if p.SalaryMax == nil && dup.SalaryMax != nil {
		v := *dup.SalaryMax
		p.SalaryMax = &v
	}
	if p.ExperienceLevel == nil && dup.ExperienceLevel != nil {
		s := *dup.ExperienceLevel
		p.ExperienceLevel = &s
	}
	if len(p.Technologies) == 0 && len(dup.Technologies) > 0 {
		p.Technologies = append([]string(nil), dup.Technologies...)
	}
}

func StrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func IntPtr(v int) *int {
	return &v
}
