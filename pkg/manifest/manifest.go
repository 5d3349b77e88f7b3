// Package manifest parses Cargo-style manifest documents and locates them
// in filesystem trees.
//
// The parser reads the TOML subset that dependency extraction needs: the
// [package] name field, [dependencies] tables (including target-namespaced
// variants like [target.'cfg(unix)'.dependencies]), and inline dependency
// tables ([dependencies.<name>]). It scans line by line so a malformed line
// never poisons the declarations around it.
package manifest

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Manifest is one parsed manifest document.
type Manifest struct {
	Name         string   // [package] name, empty when the document has none
	Dependencies []string // declaration order, deduplicated
}

// Parse extracts the package name and direct dependency names from one
// manifest document.
//
// Dependency names come from three header forms:
//   - [dependencies], and any table whose name ends with ".dependencies":
//     every "key = value" line until the next header declares the key
//   - [dependencies.<name>] / [<anything>.dependencies.<name>]: the header
//     itself declares <name> and opens no block
//
// The returned order is declaration order with later duplicates dropped.
// Blank lines, comment lines and malformed lines (no '=') are skipped.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	seen := make(map[string]bool)

	// Section state: which table the scanner is currently inside.
	inPackage := false
	inDependencies := false
	nameFound := false

	add := func(dep string) {
		if dep == "" || seen[dep] {
			return
		}
		seen[dep] = true
		m.Dependencies = append(m.Dependencies, dep)
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Any bracketed header ends the current section.
		if strings.HasPrefix(line, "[") {
			content := headerContent(line)
			inPackage = false
			inDependencies = false

			switch {
			case content == "package":
				inPackage = true
			case isDependencyTable(content):
				inDependencies = true
			default:
				if dep, ok := inlineDependency(content); ok {
					add(dep)
				}
			}
			continue
		}

		key, value, ok := splitKeyValue(line)
		if !ok {
			// Malformed line, skipped by contract.
			continue
		}

		switch {
		case inPackage:
			// Only the first name field counts.
			if key == "name" && !nameFound {
				m.Name = trimQuotes(value)
				nameFound = true
			}
		case inDependencies:
			add(trimQuotes(key))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return m, nil
}

// ParseFile opens and parses the manifest at path.
func ParseFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// headerContent returns the text between the brackets of a header line.
// A header without a closing bracket yields everything after '['.
func headerContent(line string) string {
	content := strings.TrimPrefix(line, "[")
	if idx := strings.Index(content, "]"); idx != -1 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}

// isDependencyTable reports whether a header opens a dependency block.
// Only the exact table name "dependencies" counts; dev-dependencies and
// build-dependencies are out of scope.
func isDependencyTable(content string) bool {
	return content == "dependencies" || strings.HasSuffix(content, ".dependencies")
}

// inlineDependency extracts <name> from "dependencies.<name>" or
// "<anything>.dependencies.<name>" headers. Deeper tables such as
// "dependencies.<name>.features" declare nothing.
func inlineDependency(content string) (string, bool) {
	var rest string
	if strings.HasPrefix(content, "dependencies.") {
		rest = content[len("dependencies."):]
	} else if idx := strings.Index(content, ".dependencies."); idx != -1 {
		rest = content[idx+len(".dependencies."):]
	} else {
		return "", false
	}

	name := trimQuotes(strings.TrimSpace(rest))
	if name == "" || strings.Contains(name, ".") {
		return "", false
	}
	return name, true
}

// splitKeyValue splits a "key = value" line at the first '='.
func splitKeyValue(line string) (key, value string, ok bool) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", "", false
	}
	return key, value, true
}

// trimQuotes strips one layer of surrounding quote characters and any
// trailing inline comment.
func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		switch {
		case strings.HasPrefix(s, `"`):
			if end := strings.Index(s[1:], `"`); end != -1 {
				return s[1 : end+1]
			}
		case strings.HasPrefix(s, `'`):
			if end := strings.Index(s[1:], `'`); end != -1 {
				return s[1 : end+1]
			}
		}
	}
	// Unquoted value: cut a trailing comment if present.
	if idx := strings.Index(s, "#"); idx != -1 {
		s = strings.TrimSpace(s[:idx])
	}
	return strings.Trim(s, `"'`)
}
