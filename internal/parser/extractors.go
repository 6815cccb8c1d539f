// # internal/parser/extractors.go
//
// Import extractors for the script and JVM-adjacent languages. All of them
// share the node-handler walk engine; each only has to know which node
// kinds carry import information for its grammar.
package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// scriptExtractor covers javascript, typescript, and tsx, which share the
// same import statement shape.
type scriptExtractor struct {
	language string
}

func newScriptExtractor(language string) *scriptExtractor {
	return &scriptExtractor{language: language}
}

func (e *scriptExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: e.language,
		ParsedAt: time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement": e.extractImport,
		"call_expression":  e.extractRequire,
	})
	engine.Walk(ctx, root)

	return file, nil
}

func (e *scriptExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) {
	module := trimQuoted(ctx.Text(node.ChildByFieldName("source")))
	if module == "" {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child.Kind() == "string" {
				module = trimQuoted(ctx.Text(child))
				break
			}
		}
	}
	if module == "" {
		return
	}

	alias := ""
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil || alias != "" {
			return
		}
		if n.Kind() == "identifier" && n.Parent() != nil && n.Parent().Kind() == "import_clause" {
			alias = ctx.Text(n)
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)

	ctx.File.Imports = append(ctx.File.Imports, Import{
		Module:     module,
		RawImport:  module,
		Alias:      alias,
		IsRelative: strings.HasPrefix(module, "."),
		Location:   ctx.Location(node),
	})
}

// extractRequire catches CommonJS require("...") calls.
func (e *scriptExtractor) extractRequire(ctx *ExtractionContext, node *sitter.Node) {
	fn := node.ChildByFieldName("function")
	if fn == nil || ctx.Text(fn) != "require" {
		return
	}

	args := node.ChildByFieldName("arguments")
	if args == nil {
		return
	}
	for i := uint(0); i < args.ChildCount(); i++ {
		arg := args.Child(i)
		if arg.Kind() != "string" {
			continue
		}
		module := trimQuoted(ctx.Text(arg))
		if module == "" {
			return
		}
		ctx.File.Imports = append(ctx.File.Imports, Import{
			Module:     module,
			RawImport:  module,
			IsRelative: strings.HasPrefix(module, "."),
			Location:   ctx.Location(node),
		})
		return
	}
}

type RustExtractor struct{}

func (e *RustExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "rust",
		ParsedAt: time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"use_declaration": e.extractUse,
	})
	engine.Walk(ctx, root)

	return file, nil
}

func (e *RustExtractor) extractUse(ctx *ExtractionContext, node *sitter.Node) {
	raw := strings.TrimSpace(ctx.Text(node))
	raw = strings.TrimPrefix(raw, "use")
	raw = strings.TrimSpace(strings.TrimSuffix(raw, ";"))
	if raw == "" {
		return
	}

	for _, item := range splitAndTrim(raw, ",") {
		entry := strings.TrimSpace(strings.Trim(item, "{}"))
		if entry == "" {
			continue
		}
		module := entry
		alias := ""
		if strings.Contains(entry, " as ") {
			parts := splitAndTrim(entry, " as ")
			if len(parts) >= 2 {
				module = parts[0]
				alias = parts[len(parts)-1]
			}
		}
		ctx.File.Imports = append(ctx.File.Imports, Import{
			Module:    module,
			RawImport: entry,
			Alias:     alias,
			Location:  ctx.Location(node),
		})
	}
}

type JavaExtractor struct{}

func (e *JavaExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "java",
		ParsedAt: time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"package_declaration": e.extractPackage,
		"import_declaration":  e.extractImport,
	})
	engine.Walk(ctx, root)

	return file, nil
}

func (e *JavaExtractor) extractPackage(ctx *ExtractionContext, node *sitter.Node) {
	name := strings.TrimSpace(strings.TrimPrefix(ctx.Text(node), "package"))
	ctx.File.PackageName = strings.TrimSpace(strings.TrimSuffix(name, ";"))
}

func (e *JavaExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) {
	raw := strings.TrimSpace(ctx.Text(node))
	raw = strings.TrimPrefix(raw, "import")
	raw = strings.TrimSpace(strings.TrimSuffix(raw, ";"))
	if raw == "" {
		return
	}

	module := strings.TrimSpace(strings.TrimPrefix(raw, "static "))
	ctx.File.Imports = append(ctx.File.Imports, Import{
		Module:    module,
		RawImport: raw,
		Location:  ctx.Location(node),
	})
}

// HTMLExtractor records script src and stylesheet href references as
// imports, so asset graphs can participate in cycle detection.
type HTMLExtractor struct{}

func (e *HTMLExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "html",
		ParsedAt: time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"start_tag":        e.extractTag,
		"self_closing_tag": e.extractTag,
	})
	engine.Walk(ctx, root)

	return file, nil
}

func (e *HTMLExtractor) extractTag(ctx *ExtractionContext, node *sitter.Node) {
	tag := strings.ToLower(strings.TrimSpace(ctx.ChildText(node, "tag_name")))
	if tag != "script" && tag != "link" {
		return
	}
	want := "src"
	if tag == "link" {
		want = "href"
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		attr := node.Child(i)
		if attr.Kind() != "attribute" {
			continue
		}

		name := ""
		value := ""
		for j := uint(0); j < attr.ChildCount(); j++ {
			part := attr.Child(j)
			switch part.Kind() {
			case "attribute_name":
				name = strings.ToLower(strings.TrimSpace(ctx.Text(part)))
			case "quoted_attribute_value", "attribute_value":
				value = trimQuoted(ctx.Text(part))
			}
		}

		if name == want && value != "" {
			ctx.File.Imports = append(ctx.File.Imports, Import{
				Module:    value,
				RawImport: value,
				Location:  ctx.Location(attr),
			})
		}
	}
}

type CSSExtractor struct{}

func (e *CSSExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "css",
		ParsedAt: time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement": e.extractImport,
	})
	engine.Walk(ctx, root)

	return file, nil
}

func (e *CSSExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) {
	module := ""
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "string_value" || child.Kind() == "call_expression" {
			module = trimQuoted(strings.TrimSuffix(strings.TrimPrefix(ctx.Text(child), "url("), ")"))
			break
		}
	}
	if module == "" {
		return
	}

	ctx.File.Imports = append(ctx.File.Imports, Import{
		Module:    module,
		RawImport: module,
		Location:  ctx.Location(node),
	})
}
