package advisor

import "fmt"

// Insights derives qualitative call-outs from an analysis result. The
// strings are for display only and carry no structural contract.
func Insights(result *Result) []string {
	insights := make([]string, 0, 6)
	summary := result.Summary
	project := result.Project

	switch summary.OverallHealth {
	case "excellent":
		insights = append(insights, "Project coupling is in excellent shape")
	case "good":
		insights = append(insights, "Project coupling is good")
	case "fair":
		insights = append(insights, "Project coupling has room for improvement")
	case "poor":
		insights = append(insights, "Project coupling has serious problems")
	}

	if summary.ProblematicRatio > 0.2 {
		insights = append(insights, fmt.Sprintf(
			"%.1f%% of modules are problematic; consider refactoring them", summary.ProblematicRatio*100))
	}

	if project.DependencyDensity > 0.3 {
		insights = append(insights, fmt.Sprintf(
			"Dependency density is too high (%.2f); consider loosening inter-module coupling", project.DependencyDensity))
	}

	if project.AverageInstability > 0.7 {
		insights = append(insights, fmt.Sprintf(
			"Average instability is too high (%.2f); consider designing stable interfaces", project.AverageInstability))
	}

	if summary.StableRatio > 0.3 {
		insights = append(insights, fmt.Sprintf(
			"%.1f%% of modules are stable; they can serve as core building blocks", summary.StableRatio*100))
	}

	highPriority := 0
	for _, rec := range result.Recommendations {
		if rec.Priority == PriorityHigh {
			highPriority++
		}
	}
	if highPriority > 0 {
		insights = append(insights, fmt.Sprintf("%d high priority improvement items found", highPriority))
	}

	return insights
}
