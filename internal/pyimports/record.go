// Package pyimports parses Python syntax trees and extracts import
// declarations, classifying each as internal or external to the project.
package pyimports

// ModuleRecord captures the import surface of one source file. Records
// are created once during extraction and never mutated afterwards; the
// dependency store owns them keyed by ModulePath.
type ModuleRecord struct {
	// ModulePath is the project-relative, slash-separated file path.
	ModulePath string `json:"modulePath"`
	// ImportedNames lists every raw imported name in document order,
	// duplicates allowed, for display completeness. "from X import Y"
	// contributes both X and X.Y.
	ImportedNames []string `json:"importedNames"`
	// InternalImports lists deduplicated project-internal module-level
	// imports in first-seen order. Only module-level names land here;
	// "from X import Y" contributes X alone.
	InternalImports []string `json:"internalImports"`
	// ExternalImports lists deduplicated external module-level imports
	// in first-seen order.
	ExternalImports []string `json:"externalImports"`
	// LinesOfCode is the non-blank line count.
	LinesOfCode int `json:"linesOfCode"`

	internalSeen map[string]bool
	externalSeen map[string]bool
}

func newModuleRecord(modulePath string, linesOfCode int) *ModuleRecord {
	return &ModuleRecord{
		ModulePath:      modulePath,
		ImportedNames:   []string{},
		InternalImports: []string{},
		ExternalImports: []string{},
		LinesOfCode:     linesOfCode,
		internalSeen:    make(map[string]bool),
		externalSeen:    make(map[string]bool),
	}
}

// addRaw records a name for display only.
func (r *ModuleRecord) addRaw(name string) {
	r.ImportedNames = append(r.ImportedNames, name)
}

// classify files a module-level name into the internal or external set.
func (r *ModuleRecord) classify(name string, kind ImportKind) {
	switch kind {
	case Internal:
		if !r.internalSeen[name] {
			r.internalSeen[name] = true
			r.InternalImports = append(r.InternalImports, name)
		}
	case External:
		if !r.externalSeen[name] {
			r.externalSeen[name] = true
			r.ExternalImports = append(r.ExternalImports, name)
		}
	}
}
