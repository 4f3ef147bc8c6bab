package advisor

import (
	"fmt"
	"math"
	"sort"

	"pycm/internal/coupling"
)

// Analyze partitions the project's modules into problematic and stable
// sets, generates recommendations, and summarizes overall health. It is
// pure: the input metric is never mutated.
func Analyze(project *coupling.ProjectMetric, settings Settings) *Result {
	result := &Result{
		Project:            project,
		ProblematicModules: []coupling.CouplingMetric{},
		StableModules:      []coupling.CouplingMetric{},
		Recommendations:    []Recommendation{},
	}

	if project.ModuleCount == 0 {
		result.Summary = Summary{OverallHealth: "unknown", CategoryDistribution: map[string]int{}}
		return result
	}

	for _, m := range project.ModuleMetrics {
		if isProblematic(m, settings) {
			result.ProblematicModules = append(result.ProblematicModules, m)
		}
		if isStable(m, settings) {
			result.StableModules = append(result.StableModules, m)
		}
		if rec, ok := recommend(m, settings); ok {
			result.Recommendations = append(result.Recommendations, rec)
		}
	}

	// Stable sort: ties keep per-module evaluation order.
	sort.SliceStable(result.Recommendations, func(i, j int) bool {
		return priorityRank[result.Recommendations[i].Priority] < priorityRank[result.Recommendations[j].Priority]
	})

	result.Summary = summarize(project, len(result.ProblematicModules), len(result.StableModules))
	return result
}

// isProblematic flags a module when any risk condition holds.
func isProblematic(m coupling.CouplingMetric, s Settings) bool {
	if m.Instability > s.InstabilityThresholdHigh {
		return true
	}
	if m.AfferentCoupling > s.CouplingThresholdHigh || m.EfferentCoupling > s.CouplingThresholdHigh {
		return true
	}
	if m.LinesOfCode > s.LinesThresholdLarge && m.EfferentCoupling > 3 {
		return true
	}
	// Isolated modules sit at distance 1 by definition; they are treated
	// as maximally stable rather than risky.
	return m.AfferentCoupling+m.EfferentCoupling > 0 && m.DistanceFromMainSequence > 0.5
}

// isStable requires low instability, at least two dependents and few
// outgoing dependencies. This is stricter than the "stable" category: an
// isolated module is categorically stable but not a stable-set member.
func isStable(m coupling.CouplingMetric, s Settings) bool {
	return m.Instability < s.InstabilityThresholdLow &&
		m.AfferentCoupling >= 2 &&
		m.EfferentCoupling <= 3
}

// recommend applies the rule chain in precedence order; the first
// matching rule produces the module's only recommendation.
func recommend(m coupling.CouplingMetric, s Settings) (Recommendation, bool) {
	switch {
	case m.Instability > s.InstabilityThresholdHigh:
		return recommendForInstability(m, s), true
	case m.EfferentCoupling > s.CouplingThresholdHigh:
		return recommendForCoupling(m), true
	case m.LinesOfCode > s.LinesThresholdLarge && m.EfferentCoupling > 3:
		return recommendForSize(m), true
	case m.DistanceFromMainSequence > 0.5 &&
		(m.Category == coupling.CategoryPainful || m.Category == coupling.CategoryUseless):
		return recommendForDistance(m), true
	}
	return Recommendation{}, false
}

func recommendForInstability(m coupling.CouplingMetric, s Settings) Recommendation {
	if m.EfferentCoupling > s.CouplingThresholdHigh {
		return Recommendation{
			ModulePath: m.ModulePath,
			Priority:   PriorityHigh,
			Category:   CategoryCoupling,
			Recommendations: []string{
				"Reduce the number of outgoing dependencies",
				"Consider applying dependency injection",
				"Consider splitting the module",
			},
			Rationale: fmt.Sprintf("efferent coupling is high (%d) and the module is unstable", m.EfferentCoupling),
		}
	}
	return Recommendation{
		ModulePath: m.ModulePath,
		Priority:   PriorityMedium,
		Category:   CategoryInstability,
		Recommendations: []string{
			"Encourage more modules to depend on this one",
			"Consider stabilizing the module interface",
		},
		Rationale: fmt.Sprintf("instability is high (%.2f) but the dependency count is reasonable", m.Instability),
	}
}

func recommendForCoupling(m coupling.CouplingMetric) Recommendation {
	priority := PriorityMedium
	if m.EfferentCoupling > 8 {
		priority = PriorityHigh
	}
	return Recommendation{
		ModulePath: m.ModulePath,
		Priority:   priority,
		Category:   CategoryCoupling,
		Recommendations: []string{
			"Separate responsibilities across smaller modules",
			"Consider introducing a facade",
			"Review the outgoing dependency list",
		},
		Rationale: fmt.Sprintf("efferent coupling is too high (%d)", m.EfferentCoupling),
	}
}

func recommendForSize(m coupling.CouplingMetric) Recommendation {
	return Recommendation{
		ModulePath: m.ModulePath,
		Priority:   PriorityMedium,
		Category:   CategorySize,
		Recommendations: []string{
			"The file is too large; consider splitting it",
			"Apply the single responsibility principle",
		},
		Rationale: fmt.Sprintf("file is large (%d lines) and carries many dependencies", m.LinesOfCode),
	}
}

func recommendForDistance(m coupling.CouplingMetric) Recommendation {
	if m.Category == coupling.CategoryPainful {
		return Recommendation{
			ModulePath: m.ModulePath,
			Priority:   PriorityMedium,
			Category:   CategoryDependency,
			Recommendations: []string{
				"Lower abstractness or raise instability",
				"Consider moving toward concrete implementations",
			},
			Rationale: "too far from the main sequence (painful zone)",
		}
	}
	return Recommendation{
		ModulePath: m.ModulePath,
		Priority:   PriorityLow,
		Category:   CategoryDependency,
		Recommendations: []string{
			"Reconsider whether this module is needed",
			"Consider merging it into a neighboring module",
		},
		Rationale: "too far from the main sequence (useless zone)",
	}
}

// summarize computes the ratio statistics and the health label.
func summarize(project *coupling.ProjectMetric, problematicCount, stableCount int) Summary {
	total := project.ModuleCount

	distribution := make(map[string]int)
	for _, m := range project.ModuleMetrics {
		distribution[string(m.Category)]++
	}

	return Summary{
		TotalModules:         total,
		ProblematicModules:   problematicCount,
		StableModules:        stableCount,
		ProblematicRatio:     round3(float64(problematicCount) / float64(total)),
		StableRatio:          round3(float64(stableCount) / float64(total)),
		OverallHealth:        healthLabel(total, problematicCount, stableCount),
		AverageInstability:   round3(project.AverageInstability),
		DependencyDensity:    round3(project.DependencyDensity),
		CategoryDistribution: distribution,
		MaxAfferentCoupling:  project.MaxAfferentCoupling,
		MaxEfferentCoupling:  project.MaxEfferentCoupling,
	}
}

// healthLabel grades the project: problematic ratio dominates, then the
// stable ratio upgrades good to excellent.
func healthLabel(total, problematic, stable int) string {
	switch {
	case total == 0:
		return "unknown"
	case float64(problematic)/float64(total) > 0.3:
		return "poor"
	case float64(problematic)/float64(total) > 0.1:
		return "fair"
	case float64(stable)/float64(total) > 0.2:
		return "good"
	default:
		return "excellent"
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
