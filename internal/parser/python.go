// # internal/parser/python.go
package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type PythonExtractor struct{}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "python",
		ParsedAt: time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement":      e.extractImport,
		"import_from_statement": e.extractFromImport,
	})
	engine.Walk(ctx, root)

	return file, nil
}

func (e *PythonExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)

		switch child.Kind() {
		case "dotted_name", "identifier":
			module := ctx.Text(child)
			ctx.File.Imports = append(ctx.File.Imports, Import{
				Module:    module,
				RawImport: module,
				Location:  ctx.Location(child),
			})
		case "aliased_import":
			var module, alias string
			for j := uint(0); j < child.ChildCount(); j++ {
				sub := child.Child(j)
				if sub.Kind() == "dotted_name" || sub.Kind() == "identifier" {
					if module == "" {
						module = ctx.Text(sub)
					} else {
						alias = ctx.Text(sub)
					}
				}
			}
			if module == "" {
				continue
			}
			ctx.File.Imports = append(ctx.File.Imports, Import{
				Module:    module,
				RawImport: module,
				Alias:     alias,
				Location:  ctx.Location(child),
			})
		}
	}
}

func (e *PythonExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node) {
	var module, raw string
	isRelative := false

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)

		switch child.Kind() {
		case "relative_import":
			// Keep the leading dots in RawImport; the resolver counts
			// them to climb package levels.
			isRelative = true
			raw = ctx.Text(child)
			module = strings.TrimLeft(raw, ".")
		case "dotted_name", "identifier":
			// First name before the import keyword is the module; the
			// item list after it is irrelevant to the graph.
			if module == "" && !isRelative {
				module = ctx.Text(child)
			}
		}
	}
	if raw == "" {
		raw = module
	}

	ctx.File.Imports = append(ctx.File.Imports, Import{
		Module:     module,
		RawImport:  raw,
		IsRelative: isRelative,
		Location:   ctx.Location(node),
	})
}
