// # internal/parser/golang.go
package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type GoExtractor struct{}

func (e *GoExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "go",
		ParsedAt: time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"package_clause": e.extractPackage,
		"import_spec":    e.extractImportSpec,
	})
	engine.Walk(ctx, root)

	return file, nil
}

func (e *GoExtractor) extractPackage(ctx *ExtractionContext, node *sitter.Node) {
	if name := ctx.ChildText(node, "package_identifier"); name != "" {
		ctx.File.PackageName = name
	}
}

func (e *GoExtractor) extractImportSpec(ctx *ExtractionContext, node *sitter.Node) {
	var alias, path string

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "package_identifier", "blank_identifier", "dot":
			alias = ctx.Text(child)
		case "interpreted_string_literal", "raw_string_literal":
			path = strings.Trim(ctx.Text(child), "\"`")
		}
	}

	if path == "" {
		return
	}

	ctx.File.Imports = append(ctx.File.Imports, Import{
		Module:    path,
		RawImport: path,
		Alias:     alias,
		Location:  ctx.Location(node),
	})
}
