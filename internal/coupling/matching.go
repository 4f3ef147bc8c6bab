package coupling

import "strings"

// NormalizeModuleIdentifier converts a file path or import name into a
// canonical dotted identifier: trailing ".py" and "/__init__" are
// stripped, path separators become dots. Idempotent.
func NormalizeModuleIdentifier(id string) string {
	id = strings.TrimSuffix(id, ".py")
	id = strings.TrimSuffix(id, "/__init__")
	return strings.ReplaceAll(id, "/", ".")
}

// modulesMatch reports whether a normalized imported name refers to the
// normalized target module. True when the identifiers are equal, when one
// is a dotted prefix of the other (package importing a submodule or vice
// versa), or, as a fallback, when the import with its leading path
// segment stripped equals the target. The last rule covers imports
// phrased one level above the project root.
//
// The predicate is a heuristic: re-exported or aliased imports and
// namespace packages can produce false negatives.
func modulesMatch(imported, target string) bool {
	if imported == target {
		return true
	}

	if strings.HasPrefix(target, imported+".") {
		return true
	}
	if strings.HasPrefix(imported, target+".") {
		return true
	}

	importedParts := strings.Split(imported, ".")
	if len(importedParts) >= 2 {
		if strings.Join(importedParts[1:], ".") == target {
			return true
		}
	}

	return false
}
