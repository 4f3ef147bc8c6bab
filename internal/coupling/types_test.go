package coupling

import (
	"math"
	"testing"
)

func TestNewCouplingMetric(t *testing.T) {
	tests := []struct {
		name            string
		afferent        int
		efferent        int
		wantInstability float64
		wantDistance    float64
		wantCategory    Category
	}{
		{"isolated module", 0, 0, 0.0, 1.0, CategoryStable},
		{"pure provider", 3, 0, 0.0, 1.0, CategoryStable},
		{"pure consumer", 0, 4, 1.0, 0.0, CategoryUseless},
		{"balanced", 1, 1, 0.5, 0.5, CategoryUseless},
		{"mostly stable", 4, 1, 0.2, 0.8, CategoryStable},
		{"mostly unstable", 1, 9, 0.9, 0.1, CategoryUseless},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewCouplingMetric("mod.py", tt.afferent, tt.efferent, 10)

			if math.Abs(m.Instability-tt.wantInstability) > 1e-9 {
				t.Errorf("Instability = %v, want %v", m.Instability, tt.wantInstability)
			}
			if math.Abs(m.DistanceFromMainSequence-tt.wantDistance) > 1e-9 {
				t.Errorf("DistanceFromMainSequence = %v, want %v", m.DistanceFromMainSequence, tt.wantDistance)
			}
			if m.Category != tt.wantCategory {
				t.Errorf("Category = %v, want %v", m.Category, tt.wantCategory)
			}
			if m.Abstractness != 0.0 {
				t.Errorf("Abstractness = %v, want 0", m.Abstractness)
			}
			if m.Instability < 0 || m.Instability > 1 {
				t.Errorf("Instability %v outside [0,1]", m.Instability)
			}
		})
	}
}

func TestCategorizePartition(t *testing.T) {
	// Every instability/abstractness pair lands in exactly one category.
	values := []float64{0.0, 0.25, 0.49, 0.5, 0.51, 0.75, 1.0}
	for _, i := range values {
		for _, a := range values {
			got := categorize(i, a)
			switch got {
			case CategoryStable, CategoryUnstable, CategoryPainful, CategoryUseless:
			default:
				t.Fatalf("categorize(%v, %v) = %q, not a known category", i, a, got)
			}
		}
	}

	// Boundary is inclusive on the high side.
	if got := categorize(0.5, 0.0); got != CategoryUseless {
		t.Errorf("categorize(0.5, 0) = %v, want %v", got, CategoryUseless)
	}
	if got := categorize(0.5, 0.5); got != CategoryUnstable {
		t.Errorf("categorize(0.5, 0.5) = %v, want %v", got, CategoryUnstable)
	}
}

func TestDependencyDensity(t *testing.T) {
	tests := []struct {
		name         string
		dependencies int
		modules      int
		want         float64
	}{
		{"empty project", 0, 0, 0.0},
		{"single module", 3, 1, 0.0},
		{"two modules one edge", 1, 2, 0.5},
		{"two modules mutual", 2, 2, 1.0},
		{"sparse", 2, 4, 2.0 / 12.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dependencyDensity(tt.dependencies, tt.modules)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("dependencyDensity(%d, %d) = %v, want %v", tt.dependencies, tt.modules, got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("density %v outside [0,1]", got)
			}
		})
	}
}
