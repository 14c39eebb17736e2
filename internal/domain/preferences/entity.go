package preferences

import "strings"

// Factor names recognized in RankingWeights. A missing entry weighs 0.
const (
	FactorKeywords   = "keywords"
	FactorLocation   = "location"
	FactorSalary     = "salary"
	FactorExperience = "experience"
	FactorCompany    = "company"
	FactorFreshness  = "freshness"
)

// Preferences captures one user's matching criteria. RankingWeights need not
// sum to 1; the engine applies them directly and clamps the final score.
type Preferences struct {
	RequiredKeywords  []string
	PreferredKeywords []string
	ExcludedKeywords  []string
	KeywordWeights    map[string]float64

	PreferredLocations []string
	RemoteAcceptable   bool

	MinSalary *int
	MaxSalary *int

	ExperienceLevels []string

	PreferredCompanyTypes []string
	ExcludedCompanies     []string

	PreferredTechnologies []string

	JobTypes []string

	RankingWeights map[string]float64
}

// KeywordWeight returns the declared weight for a preferred keyword,
// defaulting to 1.0.
func (p Preferences) KeywordWeight(keyword string) float64 {
	if p.KeywordWeights == nil {
		return 1.0
	}
	w, ok := p.KeywordWeights[strings.ToLower(strings.TrimSpace(keyword))]
	if !ok {
		return 1.0
	}
	return w
}

func (p Preferences) Weight(factor string) float64 {
	if p.RankingWeights == nil {
		return 0
	}
	return p.RankingWeights[factor]
}

// Internship returns preferences tuned for CS internship hunting, mirroring
// the defaults the product ships with.
func Internship() Preferences {
	return Preferences{
		RequiredKeywords:  []string{"intern", "internship", "student"},
		PreferredKeywords: []string{"software", "developer", "engineer", "programming", "python", "java", "javascript"},
		ExcludedKeywords:  []string{"senior", "lead", "manager", "director"},
		KeywordWeights: map[string]float64{
			"python":     0.9,
			"java":       0.8,
			"javascript": 0.8,
			"react":      0.7,
			"sql":        0.6,
			"git":        0.5,
		},
		PreferredLocations:    []string{"Remote", "New York", "San Francisco", "Seattle", "Austin"},
		RemoteAcceptable:      true,
		MinSalary:             intPtr(15),
		MaxSalary:             intPtr(40),
		ExperienceLevels:      []string{"entry"},
		PreferredCompanyTypes: []string{"startup", "mid-size", "enterprise"},
		PreferredTechnologies: []string{"python", "javascript", "sql", "git"},
		JobTypes:              []string{"internship", "part-time"},
		RankingWeights: map[string]float64{
			FactorKeywords:   0.35,
			FactorLocation:   0.20,
			FactorSalary:     0.15,
			FactorExperience: 0.15,
			FactorCompany:    0.10,
			FactorFreshness:  0.05,
		},
	}
}

// FullTime returns preferences tuned for early-career full-time roles.
func FullTime() Preferences {
	return Preferences{
		RequiredKeywords:  []string{"software", "developer", "engineer"},
		PreferredKeywords: []string{"python", "java", "javascript", "react", "sql", "aws", "docker"},
		ExcludedKeywords:  []string{"intern", "internship"},
		KeywordWeights: map[string]float64{
			"python":     1.0,
			"javascript": 0.9,
			"react":      0.8,
			"aws":        0.9,
			"docker":     0.7,
			"kubernetes": 0.8,
			"sql":        0.6,
		},
		PreferredLocations:    []string{"Remote", "San Francisco", "New York", "Seattle", "Austin", "Boston"},
		RemoteAcceptable:      true,
		MinSalary:             intPtr(70000),
		MaxSalary:             intPtr(180000),
		ExperienceLevels:      []string{"entry", "mid"},
		PreferredCompanyTypes: []string{"startup", "mid-size", "enterprise"},
		PreferredTechnologies: []string{"python", "javascript", "sql", "aws", "docker", "git"},
		JobTypes:              []string{"full-time"},
		RankingWeights: map[string]float64{
			FactorKeywords:   0.30,
			FactorLocation:   0.20,
			FactorSalary:     0.25,
			FactorExperience: 0.15,
			FactorCompany:    0.05,
			FactorFreshness:  0.05,
		},
	}
}

func intPtr(v int) *int {
	return &v
}
