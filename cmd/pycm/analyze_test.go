package main

import (
	"reflect"
	"strings"
	"testing"

	"pycm/internal/coupling"
	pycmerrors "pycm/internal/errors"
)

func TestResolveColumns(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []string
		wantErr bool
	}{
		{"empty selects all", "", canonicalColumns, false},
		{"subset", "module_path,instability", []string{"module_path", "instability"}, false},
		{"whitespace tolerated", " module_path , category ", []string{"module_path", "category"}, false},
		{"unknown column", "module_path,bogus", nil, true},
		{"only separators", ",,", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveColumns(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveColumns(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if err != nil {
				if code := pycmerrors.CodeOf(err); code != pycmerrors.InvalidInput {
					t.Errorf("error code = %q, want %q", code, pycmerrors.InvalidInput)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("resolveColumns(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestValidateSortAndFilter(t *testing.T) {
	if err := validateSort("instability"); err != nil {
		t.Errorf("validateSort(instability) = %v", err)
	}
	if err := validateSort("bogus"); err == nil {
		t.Error("validateSort(bogus) must fail")
	}
	for _, f := range []string{"all", "stable", "unstable", "high-coupling"} {
		if err := validateFilter(f); err != nil {
			t.Errorf("validateFilter(%q) = %v", f, err)
		}
	}
	if err := validateFilter("broken"); err == nil {
		t.Error("validateFilter(broken) must fail")
	}
}

func TestMatchesFilter(t *testing.T) {
	stable := coupling.NewCouplingMetric("s.py", 9, 1, 10)   // I = 0.1
	unstable := coupling.NewCouplingMetric("u.py", 1, 9, 10) // I = 0.9
	coupled := coupling.NewCouplingMetric("c.py", 7, 3, 10)  // Ca = 7

	tests := []struct {
		name   string
		m      coupling.CouplingMetric
		filter string
		want   bool
	}{
		{"all passes everything", unstable, "all", true},
		{"stable passes low instability", stable, "stable", true},
		{"stable rejects unstable", unstable, "stable", false},
		{"unstable passes high instability", unstable, "unstable", true},
		{"unstable rejects stable", stable, "unstable", false},
		{"high-coupling on afferent", coupled, "high-coupling", true},
		{"high-coupling on efferent", unstable, "high-coupling", true},
		{"high-coupling rejects modest", stable, "high-coupling", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchesFilter(tt.m, tt.filter, 0.8, 5)
			if got != tt.want {
				t.Errorf("matchesFilter(%s, %q) = %v, want %v", tt.m.ModulePath, tt.filter, got, tt.want)
			}
		})
	}
}

func TestProjectRowsSortAndLimit(t *testing.T) {
	metrics := []coupling.CouplingMetric{
		coupling.NewCouplingMetric("a.py", 1, 1, 10), // I = 0.5
		coupling.NewCouplingMetric("b.py", 1, 9, 10), // I = 0.9
		coupling.NewCouplingMetric("c.py", 9, 1, 10), // I = 0.1
	}

	rows := projectRows(metrics, "all", 0.8, 5, "instability", true, 2)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (limit applied)", len(rows))
	}
	if rows[0].ModulePath != "b.py" || rows[1].ModulePath != "a.py" {
		t.Errorf("descending instability order = [%s %s], want [b.py a.py]",
			rows[0].ModulePath, rows[1].ModulePath)
	}

	rows = projectRows(metrics, "all", 0.8, 5, "module_path", false, 0)
	want := []string{"a.py", "b.py", "c.py"}
	for i, row := range rows {
		if row.ModulePath != want[i] {
			t.Errorf("rows[%d] = %s, want %s", i, row.ModulePath, want[i])
		}
	}
}

func TestProjectRowsFilter(t *testing.T) {
	metrics := []coupling.CouplingMetric{
		coupling.NewCouplingMetric("a.py", 9, 1, 10), // I = 0.1
		coupling.NewCouplingMetric("b.py", 1, 9, 10), // I = 0.9
	}

	rows := projectRows(metrics, "unstable", 0.8, 5, "instability", true, 0)
	if len(rows) != 1 || rows[0].ModulePath != "b.py" {
		t.Errorf("unstable filter = %v, want [b.py]", rows)
	}
}

func TestFormatCSV(t *testing.T) {
	resp := &AnalyzeResponseCLI{
		ProjectPath: "/proj",
		ModuleCount: 1,
		Columns:     []string{"module_path", "efferent_coupling", "category"},
		Modules: []moduleRow{
			{ModulePath: "a.py", EfferentCoupling: 3, Category: "useless"},
		},
	}

	out, err := FormatResponse(resp, FormatCSV)
	if err != nil {
		t.Fatalf("FormatResponse failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "module_path,efferent_coupling,category" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "a.py,3,useless" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestFormatHumanEmptyProject(t *testing.T) {
	resp := &AnalyzeResponseCLI{ProjectPath: "/proj", Columns: canonicalColumns}

	out, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No Python modules found") {
		t.Errorf("empty project output = %q", out)
	}
}

func TestFormatUnsupported(t *testing.T) {
	if _, err := FormatResponse(&AnalyzeResponseCLI{}, OutputFormat("xml")); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestRenderDot(t *testing.T) {
	resp := &GraphResponseCLI{
		ProjectPath: "/proj",
		Nodes:       []string{"a.py", "b.py"},
		Graph: map[string][]string{
			"a.py": {"b"},
			"b.py": {},
		},
	}

	out := renderDot(resp)
	if !strings.HasPrefix(out, "digraph dependencies {") {
		t.Errorf("dot output = %q", out)
	}
	if !strings.Contains(out, `"a.py" -> "b";`) {
		t.Errorf("missing edge in %q", out)
	}
}
