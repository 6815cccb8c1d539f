// # internal/parser/types.go
package parser

import "time"

// File is the import profile of one parsed source file. The scanner only
// cares about who imports whom, so definitions and references extracted by
// richer tools are deliberately absent.
type File struct {
	Path        string
	Language    string
	Module      string // fully qualified module id, set by the resolver step
	PackageName string // local package/module name
	Imports     []Import
	ParsedAt    time.Time
}

type Import struct {
	Module     string // imported module as written, resolved later
	RawImport  string // original import text
	Alias      string
	IsRelative bool // relative to the importing file (./x, ../x, from . import)
	Location   Location
}

type Location struct {
	File   string
	Line   int
	Column int
}
