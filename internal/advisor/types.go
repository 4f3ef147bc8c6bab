// Package advisor classifies modules into problematic and stable sets
// and synthesizes ranked remediation guidance from coupling metrics.
package advisor

import "pycm/internal/coupling"

// Priority orders recommendations.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// RecommendationCategory names the rule family that produced a
// recommendation.
type RecommendationCategory string

const (
	CategoryInstability RecommendationCategory = "instability"
	CategoryCoupling    RecommendationCategory = "coupling"
	CategorySize        RecommendationCategory = "size"
	CategoryDependency  RecommendationCategory = "dependency"
)

// Recommendation is remediation guidance for one module. Each module
// receives at most one recommendation; the first matching rule wins.
type Recommendation struct {
	ModulePath      string                 `json:"modulePath"`
	Priority        Priority               `json:"priority"`
	Category        RecommendationCategory `json:"category"`
	Recommendations []string               `json:"recommendations"`
	Rationale       string                 `json:"rationale"`
}

// Settings holds the classification thresholds.
type Settings struct {
	InstabilityThresholdHigh float64
	InstabilityThresholdLow  float64
	CouplingThresholdHigh    int
	LinesThresholdLarge      int
}

// DefaultSettings returns the reference thresholds.
func DefaultSettings() Settings {
	return Settings{
		InstabilityThresholdHigh: 0.8,
		InstabilityThresholdLow:  0.2,
		CouplingThresholdHigh:    5,
		LinesThresholdLarge:      200,
	}
}

// Summary aggregates the classification outcome.
type Summary struct {
	TotalModules         int            `json:"totalModules"`
	ProblematicModules   int            `json:"problematicModules"`
	StableModules        int            `json:"stableModules"`
	ProblematicRatio     float64        `json:"problematicRatio"`
	StableRatio          float64        `json:"stableRatio"`
	OverallHealth        string         `json:"overallHealth"`
	AverageInstability   float64        `json:"averageInstability"`
	DependencyDensity    float64        `json:"dependencyDensity"`
	CategoryDistribution map[string]int `json:"categoryDistribution"`
	MaxAfferentCoupling  int            `json:"maxAfferentCoupling"`
	MaxEfferentCoupling  int            `json:"maxEfferentCoupling"`
}

// Result is the terminal, read-only product of one analysis run.
type Result struct {
	Project            *coupling.ProjectMetric   `json:"project"`
	ProblematicModules []coupling.CouplingMetric `json:"problematicModules"`
	StableModules      []coupling.CouplingMetric `json:"stableModules"`
	Recommendations    []Recommendation          `json:"recommendations"`
	Summary            Summary                   `json:"summary"`
}
