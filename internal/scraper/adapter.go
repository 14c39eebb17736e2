package scraper

import (
	"context"
	"fmt"

	"jobscout/internal/domain/job"
)

// Source categories, in the fixed order coordination phases run them.
const (
	CategoryGitHub   = "github"
	CategoryExternal = "external_website"
	CategoryAPI      = "api"
	CategoryCompany  = "company_direct"
)

// Focus area tags gating which phases and search terms apply.
const (
	FocusAll        = "all"
	FocusInternship = "internship"
	FocusNewGrad    = "new-grad"
	FocusH1B        = "h1b"
	FocusRemote     = "remote"
)

// Source is the single interface every acquisition adapter satisfies.
// A nil, nil return means success with nothing found; errors are reserved
// for transport or parse failure. The focus set narrows what the adapter
// looks for; empty means everything.
type Source interface {
	Name() string
	Category() string
	Fetch(ctx context.Context, focus []string) ([]job.Posting, error)
}

// Prioritized is implemented by company-direct sources that belong to the
// curated priority subset. Runs flagged priority-only skip the rest.
type Prioritized interface {
	HighPriority() bool
}

// AdapterError wraps a source's transport/parse failure so the coordinator
// can attribute it without losing the cause.
type AdapterError struct {
	Source string
	Err    error
}

func (e *AdapterError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("adapter %s: %v", e.Source, e.Err)
}

func (e *AdapterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FocusApplies reports whether any requested focus tag is in wanted, with
// "all" (or an empty request) matching everything.
func FocusApplies(requested []string, wanted ...string) bool {
	if len(requested) == 0 {
		return true
	}
	for _, tag := range requested {
		if tag == "" || tag == FocusAll {
			return true
		}
		for _, w := range wanted {
			if tag == w {
				return true
			}
		}
	}
	return false
}

// HasFocus reports whether the request names one specific tag, treating an
// empty request or "all" as not naming it.
func HasFocus(requested []string, tag string) bool {
	for _, t := range requested {
		if t == tag {
			return true
		}
	}
	return false
}
