package scraper

// ATS platforms with a recognizable posting structure.
const (
	ATSGreenhouse = "greenhouse"
	ATSLever      = "lever"
	ATSWorkday    = "workday"
	ATSCustom     = "custom"
)

// CompanyTarget describes one company careers source: which ATS hosts it,
// where its board lives, and the selectors the generic scraper falls back to
// for custom portals.
type CompanyTarget struct {
	Key        string
	Name       string
	CareersURL string
	ATS        string
	BoardSlug  string

	// Selectors for the generic scraper (custom ATS only).
	LinkSelector     string
	TitleSelector    string
	LocationSelector string
	BodySelector     string

	Keywords          []string
	Locations         []string
	CompanySize       string
	HighPriority      bool
	InternshipProgram bool
}

// CompanyTargets is the curated table of direct company sources phase four
// iterates. Ordering is intentional: higher-signal boards first.
var CompanyTargets = []CompanyTarget{
	{
		Key:               "stripe",
		Name:              "Stripe",
		CareersURL:        "https://stripe.com/jobs",
		ATS:               ATSGreenhouse,
		BoardSlug:         "stripe",
		Keywords:          []string{"software engineer", "intern", "backend", "infrastructure"},
		Locations:         []string{"San Francisco", "New York", "Remote"},
		CompanySize:       "enterprise",
		HighPriority:      true,
		InternshipProgram: true,
	},
	{
		Key:               "databricks",
		Name:              "Databricks",
		CareersURL:        "https://databricks.com/company/careers",
		ATS:               ATSGreenhouse,
		BoardSlug:         "databricks",
		Keywords:          []string{"software engineer", "intern", "distributed systems"},
		Locations:         []string{"San Francisco", "Seattle"},
		CompanySize:       "enterprise",
		HighPriority:      true,
		InternshipProgram: true,
	},
	{
		Key:          "figma",
		Name:         "Figma",
		CareersURL:   "https://figma.com/careers",
		ATS:          ATSGreenhouse,
		BoardSlug:    "figma",
		Keywords:     []string{"software engineer", "frontend", "intern"},
		Locations:    []string{"San Francisco", "New York", "Remote"},
		CompanySize:  "mid-size",
		HighPriority: true,
	},
	{
		Key:               "plaid",
		Name:              "Plaid",
		CareersURL:        "https://plaid.com/careers",
		ATS:               ATSLever,
		BoardSlug:         "plaid",
		Keywords:          []string{"software engineer", "intern", "api"},
		Locations:         []string{"San Francisco", "New York", "Remote"},
		CompanySize:       "mid-size",
		InternshipProgram: true,
	},
	{
		Key:         "ramp",
		Name:        "Ramp",
		CareersURL:  "https://ramp.com/careers",
		ATS:         ATSLever,
		BoardSlug:   "ramp",
		Keywords:    []string{"software engineer", "backend", "new grad"},
		Locations:   []string{"New York", "Remote"},
		CompanySize: "startup",
	},
	{
		Key:               "nvidia",
		Name:              "NVIDIA",
		CareersURL:        "https://nvidia.wd5.myworkdayjobs.com/NVIDIAExternalCareerSite",
		ATS:               ATSWorkday,
		Keywords:          []string{"software engineer", "intern", "cuda", "systems"},
		Locations:         []string{"Santa Clara", "Austin", "Remote"},
		CompanySize:       "enterprise",
		HighPriority:      true,
		InternshipProgram: true,
	},
	{
		Key:              "google",
		Name:             "Google",
		CareersURL:       "https://careers.google.com/jobs/results/",
		ATS:              ATSCustom,
		LinkSelector:     "a[href*='jobs/results']",
		TitleSelector:    "h2",
		LocationSelector: "span.location",
		BodySelector:     "main",
		Keywords:         []string{"software engineer", "intern", "new grad", "swe"},
		Locations:        []string{"Mountain View", "San Francisco", "Seattle", "New York"},
		CompanySize:      "enterprise",
		HighPriority:     true,
	},
	{
		Key:              "netflix",
		Name:             "Netflix",
		CareersURL:       "https://jobs.netflix.com/search",
		ATS:              ATSCustom,
		LinkSelector:     "a[href*='/jobs/']",
		TitleSelector:    "h1",
		LocationSelector: "span[data-testid='location']",
		BodySelector:     "main",
		Keywords:         []string{"software engineer", "backend"},
		Locations:        []string{"Los Gatos", "Remote"},
		CompanySize:      "enterprise",
	},
}

func HighPriorityCompanies() []CompanyTarget {
	out := make([]CompanyTarget, 0, len(CompanyTargets))
	for _, c := range CompanyTargets {
		if c.HighPriority {
			out = append(out, c)
		}
	}
	return out
}

func InternshipFocusedCompanies() []CompanyTarget {
	out := make([]CompanyTarget, 0, len(CompanyTargets))
	for _, c := range CompanyTargets {
		if c.InternshipProgram {
			out = append(out, c)
		}
	}
	return out
}
