package coupling

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"pycm/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func analyzeProject(t *testing.T, files map[string]string) (*Analyzer, *ProjectMetric) {
	t.Helper()
	root := writeProject(t, files)
	analyzer := NewAnalyzer(root, testLogger())
	project, err := analyzer.Analyze(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	return analyzer, project
}

func metricFor(t *testing.T, project *ProjectMetric, path string) CouplingMetric {
	t.Helper()
	for _, m := range project.ModuleMetrics {
		if m.ModulePath == path {
			return m
		}
	}
	t.Fatalf("no metric for %q", path)
	return CouplingMetric{}
}

func TestAnalyzeSingleDependency(t *testing.T) {
	_, project := analyzeProject(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "x = 1\n",
	})

	if project.ModuleCount != 2 {
		t.Fatalf("ModuleCount = %d, want 2", project.ModuleCount)
	}

	a := metricFor(t, project, "a.py")
	if a.EfferentCoupling != 1 || a.AfferentCoupling != 0 {
		t.Errorf("a: Ca/Ce = %d/%d, want 0/1", a.AfferentCoupling, a.EfferentCoupling)
	}
	if a.Instability != 1.0 {
		t.Errorf("a: Instability = %v, want 1", a.Instability)
	}

	b := metricFor(t, project, "b.py")
	if b.AfferentCoupling != 1 || b.EfferentCoupling != 0 {
		t.Errorf("b: Ca/Ce = %d/%d, want 1/0", b.AfferentCoupling, b.EfferentCoupling)
	}
	if b.Instability != 0.0 {
		t.Errorf("b: Instability = %v, want 0", b.Instability)
	}

	if project.TotalInternalDependencies != 1 {
		t.Errorf("TotalInternalDependencies = %d, want 1", project.TotalInternalDependencies)
	}
	if math.Abs(project.DependencyDensity-0.5) > 1e-9 {
		t.Errorf("DependencyDensity = %v, want 0.5", project.DependencyDensity)
	}
}

func TestAnalyzeMutualDependency(t *testing.T) {
	_, project := analyzeProject(t, map[string]string{
		"a.py": "import b\n",
		"b.py": "import a\n",
	})

	for _, path := range []string{"a.py", "b.py"} {
		m := metricFor(t, project, path)
		if m.AfferentCoupling != 1 || m.EfferentCoupling != 1 {
			t.Errorf("%s: Ca/Ce = %d/%d, want 1/1", path, m.AfferentCoupling, m.EfferentCoupling)
		}
		if m.Instability != 0.5 {
			t.Errorf("%s: Instability = %v, want 0.5", path, m.Instability)
		}
	}

	if math.Abs(project.DependencyDensity-1.0) > 1e-9 {
		t.Errorf("DependencyDensity = %v, want 1.0", project.DependencyDensity)
	}
}

func TestAnalyzeDuplicateImportsCountOnce(t *testing.T) {
	_, project := analyzeProject(t, map[string]string{
		"a.py": "import b\nimport b\nfrom b import thing\n",
		"b.py": "x = 1\n",
	})

	a := metricFor(t, project, "a.py")
	if a.EfferentCoupling != 1 {
		t.Errorf("Ce = %d, want 1 (imports deduplicated per target)", a.EfferentCoupling)
	}
	b := metricFor(t, project, "b.py")
	if b.AfferentCoupling != 1 {
		t.Errorf("Ca = %d, want 1 (one importer counted once)", b.AfferentCoupling)
	}
}

func TestAnalyzeIsolatedModule(t *testing.T) {
	_, project := analyzeProject(t, map[string]string{
		"alone.py": "import os\nimport sys\n",
	})

	m := metricFor(t, project, "alone.py")
	if m.AfferentCoupling != 0 || m.EfferentCoupling != 0 {
		t.Errorf("Ca/Ce = %d/%d, want 0/0 (external imports ignored)", m.AfferentCoupling, m.EfferentCoupling)
	}
	if m.Instability != 0.0 {
		t.Errorf("Instability = %v, want 0 for isolated module", m.Instability)
	}
	if m.Category != CategoryStable {
		t.Errorf("Category = %v, want %v", m.Category, CategoryStable)
	}
	if project.DependencyDensity != 0.0 {
		t.Errorf("DependencyDensity = %v, want 0 for single module", project.DependencyDensity)
	}
}

func TestAnalyzeEmptyProject(t *testing.T) {
	root := t.TempDir()
	analyzer := NewAnalyzer(root, testLogger())
	project, err := analyzer.Analyze(context.Background(), Options{})
	if err != nil {
		t.Fatalf("empty project must be a successful result, got %v", err)
	}
	if project.ModuleCount != 0 || len(project.ModuleMetrics) != 0 {
		t.Errorf("ModuleCount = %d, want 0", project.ModuleCount)
	}
	if project.ProjectPath != root {
		t.Errorf("ProjectPath = %q, want %q", project.ProjectPath, root)
	}
}

func TestAnalyzePackageImports(t *testing.T) {
	_, project := analyzeProject(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/util.py":     "x = 1\n",
		"main.py":         "from pkg import util\nimport pkg.util\n",
	})

	main := metricFor(t, project, "main.py")
	if main.EfferentCoupling != 2 {
		t.Errorf("main: Ce = %d, want 2 (pkg and pkg.util)", main.EfferentCoupling)
	}

	util := metricFor(t, project, "pkg/util.py")
	if util.AfferentCoupling != 1 {
		t.Errorf("pkg/util: Ca = %d, want 1", util.AfferentCoupling)
	}
	pkg := metricFor(t, project, "pkg/__init__.py")
	if pkg.AfferentCoupling != 1 {
		t.Errorf("pkg/__init__: Ca = %d, want 1", pkg.AfferentCoupling)
	}
}

func TestAnalyzeHighCouplingModule(t *testing.T) {
	files := map[string]string{}
	imports := ""
	for i := 1; i <= 9; i++ {
		name := fmt.Sprintf("m%d", i)
		files[name+".py"] = "x = 1\n"
		imports += "import " + name + "\n"
	}
	files["hub.py"] = imports
	files["caller.py"] = "import hub\n"

	_, project := analyzeProject(t, files)

	hub := metricFor(t, project, "hub.py")
	if hub.EfferentCoupling != 9 || hub.AfferentCoupling != 1 {
		t.Errorf("hub: Ca/Ce = %d/%d, want 1/9", hub.AfferentCoupling, hub.EfferentCoupling)
	}
	if math.Abs(hub.Instability-0.9) > 1e-9 {
		t.Errorf("hub: Instability = %v, want 0.9", hub.Instability)
	}
	if project.MaxEfferentCoupling != 9 {
		t.Errorf("MaxEfferentCoupling = %d, want 9", project.MaxEfferentCoupling)
	}
}

func TestAnalyzeDeterministicOrder(t *testing.T) {
	files := map[string]string{
		"c.py": "import a\n",
		"a.py": "import b\n",
		"b.py": "x = 1\n",
	}

	_, project := analyzeProject(t, files)
	want := []string{"a.py", "b.py", "c.py"}
	for i, m := range project.ModuleMetrics {
		if m.ModulePath != want[i] {
			t.Fatalf("ModuleMetrics[%d] = %q, want %q (sorted by path)", i, m.ModulePath, want[i])
		}
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	files := map[string]string{
		"a.py": "import b\nimport c\n",
		"b.py": "import c\n",
		"c.py": "x = 1\n",
	}
	root := writeProject(t, files)

	first, err := NewAnalyzer(root, testLogger()).Analyze(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewAnalyzer(root, testLogger()).Analyze(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("two runs over the same tree differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAnalyzeCancelledContext(t *testing.T) {
	root := writeProject(t, map[string]string{"a.py": "import b\n", "b.py": ""})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	project, err := NewAnalyzer(root, testLogger()).Analyze(ctx, Options{})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if project != nil {
		t.Errorf("cancelled run must not return partial results, got %+v", project)
	}
}

func TestAnalyzeExcludePatterns(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.py":                     "x = 1\n",
		"tests/test_a.py":          "import a\n",
		"__pycache__/a.cpython.py": "",
	})

	analyzer := NewAnalyzer(root, testLogger())
	project, err := analyzer.Analyze(context.Background(), Options{
		ExcludePatterns: []string{"__pycache__", "tests"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if project.ModuleCount != 1 {
		t.Fatalf("ModuleCount = %d, want 1", project.ModuleCount)
	}
	if project.ModuleMetrics[0].ModulePath != "a.py" {
		t.Errorf("kept %q, want a.py", project.ModuleMetrics[0].ModulePath)
	}
}

func TestDependencyGraph(t *testing.T) {
	analyzer, _ := analyzeProject(t, map[string]string{
		"a.py": "import c\nimport b\n",
		"b.py": "x = 1\n",
		"c.py": "x = 1\n",
	})

	graph := analyzer.DependencyGraph()
	if len(graph) != 3 {
		t.Fatalf("graph has %d nodes, want 3", len(graph))
	}
	if got := graph["a.py"]; !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("graph[a.py] = %v, want [b c] (sorted)", got)
	}
	if got := graph["b.py"]; len(got) != 0 {
		t.Errorf("graph[b.py] = %v, want empty", got)
	}
}

func TestAnalyzeInstabilityRange(t *testing.T) {
	_, project := analyzeProject(t, map[string]string{
		"a.py": "import b\nimport c\n",
		"b.py": "import c\n",
		"c.py": "x = 1\n",
		"d.py": "import a\n",
	})

	for _, m := range project.ModuleMetrics {
		if m.Instability < 0 || m.Instability > 1 {
			t.Errorf("%s: Instability %v outside [0,1]", m.ModulePath, m.Instability)
		}
		want := math.Abs(m.Abstractness + m.Instability - 1)
		if math.Abs(m.DistanceFromMainSequence-want) > 1e-9 {
			t.Errorf("%s: Distance = %v, want %v", m.ModulePath, m.DistanceFromMainSequence, want)
		}
	}
	if project.DependencyDensity < 0 || project.DependencyDensity > 1 {
		t.Errorf("DependencyDensity %v outside [0,1]", project.DependencyDensity)
	}
}
