// # internal/parser/registry.go
package parser

import (
	"path/filepath"
	"sort"
	"strings"
)

// LanguageSpec describes one supported language: how files map to it and
// whether scanning is on by default. Config can flip Enabled per language.
type LanguageSpec struct {
	Name             string
	Extensions       []string
	TestFileSuffixes []string
	Enabled          bool
}

// DefaultRegistry returns the built-in language table. Markup languages are
// off by default; they only matter for asset-reference graphs.
func DefaultRegistry() map[string]LanguageSpec {
	return map[string]LanguageSpec{
		"go": {
			Name:             "go",
			Extensions:       []string{".go"},
			TestFileSuffixes: []string{"_test.go"},
			Enabled:          true,
		},
		"python": {
			Name:             "python",
			Extensions:       []string{".py"},
			TestFileSuffixes: []string{"_test.py"},
			Enabled:          true,
		},
		"javascript": {
			Name:       "javascript",
			Extensions: []string{".js", ".mjs", ".cjs", ".jsx"},
			Enabled:    true,
		},
		"typescript": {
			Name:       "typescript",
			Extensions: []string{".ts", ".mts", ".cts"},
			Enabled:    true,
		},
		"tsx": {
			Name:       "tsx",
			Extensions: []string{".tsx"},
			Enabled:    true,
		},
		"rust": {
			Name:       "rust",
			Extensions: []string{".rs"},
			Enabled:    true,
		},
		"java": {
			Name:       "java",
			Extensions: []string{".java"},
			Enabled:    true,
		},
		"html": {
			Name:       "html",
			Extensions: []string{".html", ".htm"},
			Enabled:    false,
		},
		"css": {
			Name:       "css",
			Extensions: []string{".css"},
			Enabled:    false,
		},
	}
}

// BuildRegistry applies per-language enable overrides from config on top of
// the defaults. Unknown language names are ignored.
func BuildRegistry(enabled map[string]bool) map[string]LanguageSpec {
	registry := DefaultRegistry()
	for name, on := range enabled {
		spec, ok := registry[name]
		if !ok {
			continue
		}
		spec.Enabled = on
		registry[name] = spec
	}
	return registry
}

// LanguageForPath maps a file path to its registry language, or "" when the
// file is not scannable.
func LanguageForPath(registry map[string]LanguageSpec, path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	for _, name := range sortedLanguages(registry) {
		spec := registry[name]
		if !spec.Enabled {
			continue
		}
		for _, e := range spec.Extensions {
			if e == ext {
				return spec.Name
			}
		}
	}
	return ""
}

// IsTestFile reports whether the base name matches a language's test-file
// convention, regardless of that language being enabled.
func IsTestFile(registry map[string]LanguageSpec, path string) bool {
	base := filepath.Base(path)
	for _, spec := range registry {
		for _, suffix := range spec.TestFileSuffixes {
			if strings.HasSuffix(base, suffix) {
				return true
			}
		}
	}
	return false
}

func sortedLanguages(registry map[string]LanguageSpec) []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
