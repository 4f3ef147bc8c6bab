// Package coupling builds the project dependency store and computes
// structural coupling metrics: afferent/efferent coupling, instability,
// and distance from the main sequence.
package coupling

import "math"

// Category partitions modules by instability and abstractness.
type Category string

const (
	// CategoryStable marks stable, concrete modules.
	CategoryStable Category = "stable"
	// CategoryUnstable marks unstable, abstract modules.
	CategoryUnstable Category = "unstable"
	// CategoryPainful marks stable, abstract modules that resist change.
	CategoryPainful Category = "painful"
	// CategoryUseless marks unstable, concrete modules.
	CategoryUseless Category = "useless"
)

// CouplingMetric holds the computed coupling metrics for one module.
// Derived fields are fixed at construction; a metric is never recomputed
// within a run.
type CouplingMetric struct {
	ModulePath       string  `json:"modulePath"`
	AfferentCoupling int     `json:"afferentCoupling"`
	EfferentCoupling int     `json:"efferentCoupling"`
	Instability      float64 `json:"instability"`
	// Abstractness is reserved for interface-ratio analysis and is
	// always 0 for now.
	Abstractness             float64  `json:"abstractness"`
	LinesOfCode              int      `json:"linesOfCode"`
	DistanceFromMainSequence float64  `json:"distanceFromMainSequence"`
	Category                 Category `json:"category"`
}

// NewCouplingMetric derives instability, distance and category from the
// raw coupling counts. Isolated modules (Ca+Ce == 0) are treated as
// maximally stable by convention.
func NewCouplingMetric(modulePath string, afferent, efferent, linesOfCode int) CouplingMetric {
	instability := 0.0
	if total := afferent + efferent; total > 0 {
		instability = float64(efferent) / float64(total)
	}

	const abstractness = 0.0

	return CouplingMetric{
		ModulePath:               modulePath,
		AfferentCoupling:         afferent,
		EfferentCoupling:         efferent,
		Instability:              instability,
		Abstractness:             abstractness,
		LinesOfCode:              linesOfCode,
		DistanceFromMainSequence: math.Abs(abstractness + instability - 1),
		Category:                 categorize(instability, abstractness),
	}
}

// categorize places a module in one of the four quadrants. The boundary
// is inclusive on the high side only, so the partition is total and
// exclusive.
func categorize(instability, abstractness float64) Category {
	switch {
	case instability < 0.5 && abstractness < 0.5:
		return CategoryStable
	case instability >= 0.5 && abstractness >= 0.5:
		return CategoryUnstable
	case instability < 0.5 && abstractness >= 0.5:
		return CategoryPainful
	default:
		return CategoryUseless
	}
}

// ProjectMetric aggregates per-module metrics into project statistics.
type ProjectMetric struct {
	ProjectPath               string           `json:"projectPath"`
	ModuleCount               int              `json:"moduleCount"`
	TotalInternalDependencies int              `json:"totalInternalDependencies"`
	AverageInstability        float64          `json:"averageInstability"`
	MaxAfferentCoupling       int              `json:"maxAfferentCoupling"`
	MaxEfferentCoupling       int              `json:"maxEfferentCoupling"`
	DependencyDensity         float64          `json:"dependencyDensity"`
	ModuleMetrics             []CouplingMetric `json:"moduleMetrics"`
}

// dependencyDensity is total dependencies over the maximum possible
// edge count; defined as 0 for projects of at most one module.
func dependencyDensity(totalDependencies, moduleCount int) float64 {
	if moduleCount <= 1 {
		return 0.0
	}
	return float64(totalDependencies) / float64(moduleCount*(moduleCount-1))
}
