package ranking

import "jobscout/internal/domain/preferences"

// explain builds the per-factor, human-readable tier text from fixed score
// buckets. The wording is part of the product contract for notifications.
func explain(keyword, location, salary, experience, company, freshness float64) map[string]string {
	out := make(map[string]string, 6)

	switch {
	case keyword > 0.8:
		out[preferences.FactorKeywords] = "Excellent match for required and preferred keywords"
	case keyword > 0.6:
		out[preferences.FactorKeywords] = "Good keyword match with some preferred technologies"
	case keyword > 0.4:
		out[preferences.FactorKeywords] = "Moderate keyword match, missing some preferred skills"
	default:
		out[preferences.FactorKeywords] = "Poor keyword match or contains excluded terms"
	}

	switch {
	case location > 0.9:
		out[preferences.FactorLocation] = "Perfect location match or remote work available"
	case location > 0.6:
		out[preferences.FactorLocation] = "Good location match in preferred area"
	case location > 0.3:
		out[preferences.FactorLocation] = "Acceptable location but not ideal"
	default:
		out[preferences.FactorLocation] = "Location doesn't match preferences"
	}

	switch {
	case salary > 0.8:
		out[preferences.FactorSalary] = "Salary range aligns well with expectations"
	case salary > 0.6:
		out[preferences.FactorSalary] = "Salary partially meets requirements"
	case salary > 0.3:
		out[preferences.FactorSalary] = "Salary information missing or below expectations"
	default:
		out[preferences.FactorSalary] = "Salary significantly below requirements"
	}

	switch {
	case experience > 0.8:
		out[preferences.FactorExperience] = "Experience requirements match your level perfectly"
	case experience > 0.6:
		out[preferences.FactorExperience] = "Experience requirements are close to your level"
	default:
		out[preferences.FactorExperience] = "Experience requirements don't align well"
	}

	switch {
	case company == 0.0:
		out[preferences.FactorCompany] = "Company is in your exclusion list"
	case company > 0.8:
		out[preferences.FactorCompany] = "Company type matches your preferences"
	default:
		out[preferences.FactorCompany] = "Neutral company rating"
	}

	switch {
	case freshness > 0.8:
		out[preferences.FactorFreshness] = "Recently posted job (within a week)"
	case freshness > 0.5:
		out[preferences.FactorFreshness] = "Moderately fresh posting"
	default:
		out[preferences.FactorFreshness] = "Older job posting"
	}

	return out
}
