package commonast

import "bytes"

// Location identifies a point in a file. Line is 1-based, Column 0-based.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Symbol is a named declaration site within one file.
//
// The same name may be declared more than once (partial classes, overloads);
// every declaration is attached to the single symbol in source order, so
// Declarations is never empty. Usages is always empty: cross-file resolution
// is not implemented.
type Symbol struct {
	Name         string     `json:"name"`
	Kind         NodeKind   `json:"kind"`
	Location     Location   `json:"location"`
	Declarations []*Node    `json:"-"`
	Usages       []Location `json:"usages"`
}

// DiagnosticSeverity grades a parse diagnostic.
type DiagnosticSeverity string

const (
	DiagnosticError   DiagnosticSeverity = "error"
	DiagnosticWarning DiagnosticSeverity = "warning"
)

// Diagnostic reports a syntax problem found while parsing.
type Diagnostic struct {
	Message  string             `json:"message"`
	Line     int                `json:"line"`
	Column   int                `json:"column"`
	Severity DiagnosticSeverity `json:"severity"`
}

// ParseResult is the output of one adapter parse. It is built fresh for every
// call and never cached.
type ParseResult struct {
	FilePath    string             `json:"file_path"`
	Language    string             `json:"language"`
	RootNode    *Node              `json:"root"`
	Symbols     map[string]*Symbol `json:"symbols"`
	Diagnostics []Diagnostic       `json:"diagnostics"`

	// Degraded is true when the adapter could not produce a real tree.
	Degraded bool `json:"degraded"`
}

// AddSymbol records a declaration under its name, creating the symbol on
// first sight.
func (r *ParseResult) AddSymbol(file string, decl *Node) {
	if decl == nil || decl.Name == "" {
		return
	}
	if r.Symbols == nil {
		r.Symbols = make(map[string]*Symbol)
	}
	if existing, ok := r.Symbols[decl.Name]; ok {
		existing.Declarations = append(existing.Declarations, decl)
		return
	}
	r.Symbols[decl.Name] = &Symbol{
		Name: decl.Name,
		Kind: decl.Kind,
		Location: Location{
			File:   file,
			Line:   decl.StartLine,
			Column: decl.StartColumn,
		},
		Declarations: []*Node{decl},
		Usages:       []Location{},
	}
}

// Degraded returns the fallback result used when parsing fails: an Unknown
// root spanning the whole text, no symbols and no diagnostics.
func Degraded(path, language string, text []byte) *ParseResult {
	lines := bytes.Count(text, []byte{'\n'})
	lastLineStart := bytes.LastIndexByte(text, '\n') + 1
	return &ParseResult{
		FilePath: path,
		Language: language,
		RootNode: &Node{
			Kind:          KindUnknown,
			StartPosition: 0,
			EndPosition:   len(text),
			StartLine:     1,
			StartColumn:   0,
			EndLine:       lines + 1,
			EndColumn:     len(text) - lastLineStart,
			Text:          string(text),
		},
		Symbols:     map[string]*Symbol{},
		Diagnostics: []Diagnostic{},
		Degraded:    true,
	}
}
