// # internal/parser/parser.go
package parser

import (
	"errors"
	"fmt"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"depscan/internal/shared/observability"
)

type Parser struct {
	loader     *GrammarLoader
	extractors map[string]Extractor // language -> extractor
}

type Extractor interface {
	Extract(node *sitter.Node, source []byte, filePath string) (*File, error)
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		extractors: make(map[string]Extractor),
	}
	for lang := range loader.Registry() {
		if extractor, ok := DefaultExtractor(lang); ok {
			p.extractors[lang] = extractor
		}
	}
	return p
}

// Registry exposes the loader's language table for path filtering.
func (p *Parser) Registry() map[string]LanguageSpec {
	return p.loader.Registry()
}

// ParseFile parses one source file and extracts its import profile.
func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	lang := LanguageForPath(p.loader.Registry(), path)
	if lang == "" {
		return nil, errors.New("unsupported language")
	}

	grammar := p.loader.Language(lang)
	if grammar == nil {
		return nil, fmt.Errorf("grammar not loaded: %s", lang)
	}

	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, fmt.Errorf("no extractor for: %s", lang)
	}

	start := time.Now()
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.New("parse failed")
	}
	defer tree.Close()

	file, err := extractor.Extract(tree.RootNode(), content, path)
	if err != nil {
		return nil, err
	}

	observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	return file, nil
}

// DefaultExtractor returns the built-in extractor for a language.
func DefaultExtractor(lang string) (Extractor, bool) {
	switch lang {
	case "go":
		return &GoExtractor{}, true
	case "python":
		return &PythonExtractor{}, true
	case "javascript":
		return newScriptExtractor("javascript"), true
	case "typescript":
		return newScriptExtractor("typescript"), true
	case "tsx":
		return newScriptExtractor("tsx"), true
	case "rust":
		return &RustExtractor{}, true
	case "java":
		return &JavaExtractor{}, true
	case "html":
		return &HTMLExtractor{}, true
	case "css":
		return &CSSExtractor{}, true
	default:
		return nil, false
	}
}
