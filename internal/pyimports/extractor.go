package pyimports

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	pycmerrors "pycm/internal/errors"
)

// Extractor parses Python source and extracts import declarations.
// An Extractor owns a single tree-sitter parser and must not be shared
// across goroutines; create one per worker.
type Extractor struct {
	projectRoot string
	rootPackage string
	parser      *sitter.Parser
}

// NewExtractor creates an extractor for a project root. The root package
// name (the root directory's base name) anchors internal-import matching.
func NewExtractor(projectRoot string) *Extractor {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	return &Extractor{
		projectRoot: projectRoot,
		rootPackage: filepath.Base(projectRoot),
		parser:      parser,
	}
}

// ExtractFile reads and extracts one file. Unreadable or non-UTF-8 files
// yield an UNREADABLE_FILE error; callers exclude such files entirely.
func (e *Extractor) ExtractFile(ctx context.Context, relPath, absPath string) (*ModuleRecord, error) {
	source, err := os.ReadFile(absPath)
	if err != nil {
		return nil, pycmerrors.Wrap(pycmerrors.UnreadableFile, "failed to read "+relPath, err)
	}
	if !utf8.Valid(source) {
		return nil, pycmerrors.New(pycmerrors.UnreadableFile, "not valid UTF-8: "+relPath)
	}
	return e.ExtractSource(ctx, relPath, source)
}

// ExtractSource extracts import declarations from source. Files with
// syntax errors produce a record with the correct line count but empty
// import sets; they still count as modules with zero coupling.
func (e *Extractor) ExtractSource(ctx context.Context, relPath string, source []byte) (*ModuleRecord, error) {
	record := newModuleRecord(relPath, countNonBlankLines(source))

	tree, err := e.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, pycmerrors.Wrap(pycmerrors.AnalysisFailed, "parser failure on "+relPath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		// Tree-sitter flags syntax errors on the tree rather than
		// returning them; treat the file as unparsable.
		return record, nil
	}

	e.walk(root, source, record)
	return record, nil
}

// walk visits every import declaration in document order.
func (e *Extractor) walk(node *sitter.Node, source []byte, record *ModuleRecord) {
	switch node.Type() {
	case "import_statement":
		e.visitImport(node, source, record)
		return
	case "import_from_statement":
		e.visitImportFrom(node, source, record)
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		e.walk(node.NamedChild(i), source, record)
	}
}

// visitImport handles "import a.b, c as d".
func (e *Extractor) visitImport(node *sitter.Node, source []byte, record *ModuleRecord) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		name := importedName(node.NamedChild(i), source)
		if name == "" {
			continue
		}
		record.addRaw(name)
		record.classify(name, e.Classify(name))
	}
}

// visitImportFrom handles "from X import a, b as c". Both X and X.a are
// recorded as raw imported names; only the module part X participates in
// classification.
func (e *Extractor) visitImportFrom(node *sitter.Node, source []byte, record *ModuleRecord) {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return
	}
	module := moduleNode.Content(source)
	if module == "" {
		return
	}

	kind := e.Classify(module)
	record.addRaw(module)
	record.classify(module, kind)

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		// Node wrappers are re-created per call, so the module child is
		// recognized by position rather than identity.
		if child.StartByte() == moduleNode.StartByte() && child.EndByte() == moduleNode.EndByte() {
			continue
		}
		if child.Type() == "wildcard_import" {
			continue
		}
		name := importedName(child, source)
		if name == "" {
			continue
		}
		// The dotted X.Y form is display-only; the module part already
		// carries the classification.
		record.addRaw(joinModule(module, name))
	}
}

// importedName resolves a dotted_name or aliased_import node to the
// imported module path, ignoring any "as" alias.
func importedName(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "dotted_name":
		return node.Content(source)
	case "aliased_import":
		if name := node.ChildByFieldName("name"); name != nil {
			return name.Content(source)
		}
	}
	return ""
}

// joinModule composes "from X import Y" into a raw X.Y name. Relative
// modules already end in a dot when no submodule is named.
func joinModule(module, name string) string {
	if strings.HasSuffix(module, ".") {
		return module + name
	}
	return module + "." + name
}

// ImportKind distinguishes internal from external imports.
type ImportKind int

const (
	// Internal marks imports that resolve inside the project.
	Internal ImportKind = iota
	// External marks everything else.
	External
)

// Classify applies the classification rules in order, first match wins:
// relative-import syntax, root-package prefix, on-disk resolution under
// the project root, otherwise external. The heuristic cannot see through
// re-exports or aliases; such imports may classify external.
func (e *Extractor) Classify(name string) ImportKind {
	if strings.HasPrefix(name, ".") {
		return Internal
	}

	if name == e.rootPackage || strings.HasPrefix(name, e.rootPackage+".") {
		return Internal
	}

	candidate := filepath.Join(e.projectRoot, strings.ReplaceAll(name, ".", string(filepath.Separator)))
	if fileExists(candidate+".py") || fileExists(filepath.Join(candidate, "__init__.py")) {
		return Internal
	}

	return External
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// countNonBlankLines counts lines containing at least one non-whitespace
// character.
func countNonBlankLines(source []byte) int {
	count := 0
	for _, line := range strings.Split(string(source), "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
