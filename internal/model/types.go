// Package model defines the intermediate representation for parsed
// declarations and the resolved mock entities derived from them.
package model

import "sort"

// DeclKind represents the category of a declaration.
type DeclKind string

const (
	KindProtocol DeclKind = "protocol"
	KindClass    DeclKind = "class"
)

// MemberKind represents the shape of a declaration member.
type MemberKind string

const (
	MemberVariable MemberKind = "variable"
	MemberMethod   MemberKind = "method"
)

// Entity represents one parsed protocol or class declaration. It is built
// once by the parser backend and never mutated after ingestion.
type Entity struct {
	Name        string   // Declared name (e.g. "SessionProviding")
	Kind        DeclKind // protocol or class
	Access      string   // Access modifier as written ("" for internal)
	Inherits    []string // Declared ancestor names, in source order
	Members     []Member // Ordered member list
	Annotated   bool     // Declaration opted in to mock generation
	Path        string   // Source file path
	Offset      int      // Byte offset of the declaration start
	PreResolved bool     // Came from a previously generated mock artifact
}

// Param represents a single method parameter.
type Param struct {
	Label string // External label ("_" for none)
	Name  string // Internal name
	Type  string // Raw type signature text
}

// Member represents one variable or method of a declaration. The Kind tag
// selects which fields are meaningful; rendering dispatches exhaustively
// over it. Mutable only while the parser builds it.
type Member struct {
	Kind   MemberKind
	Name   string
	Type   string // Variable type, or method return type ("" for Void)
	Access string // Access modifier as written ("" for internal)
	Static bool
	Throws bool    // Methods only
	Params []Param // Methods only

	// RxSubject names a custom backing-subject kind for a reactive
	// property, taken from the annotation's override arguments.
	RxSubject string

	// Verbatim carries the member's original text when it was sourced
	// from a pre-resolved mock artifact. Non-empty Verbatim bypasses
	// template dispatch entirely. VerbatimOwner is the mock class name
	// the text was written inside, so occurrences can be rewritten when
	// the enclosing declaration is renamed.
	Verbatim      string
	VerbatimOwner string

	// RequiresOverride is set by the resolver when the member shadows an
	// ancestor's member and the enclosing declaration is a class.
	RequiresOverride bool

	Path   string // File the member was declared in
	Offset int    // Byte offset of the member start
	Length int    // Byte length of the member text
}

// ImportMap maps a source file path to the set of module names it imports.
// Entries are unioned, never overwritten: multiple declarations can share
// one file, and a file can be ingested from more than one input source.
type ImportMap struct {
	byPath map[string]map[string]struct{}
}

// NewImportMap returns an empty ImportMap.
func NewImportMap() *ImportMap {
	return &ImportMap{byPath: make(map[string]map[string]struct{})}
}

// Add unions the given module names into the entry for path.
func (im *ImportMap) Add(path string, modules ...string) {
	set, ok := im.byPath[path]
	if !ok {
		set = make(map[string]struct{})
		im.byPath[path] = set
	}
	for _, m := range modules {
		if m != "" {
			set[m] = struct{}{}
		}
	}
}

// Imports returns the sorted module names imported by path.
func (im *ImportMap) Imports(path string) []string {
	set, ok := im.byPath[path]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of files with recorded imports.
func (im *ImportMap) Len() int { return len(im.byPath) }

// ResolvedEntity is the canonical, inheritance-flattened view of one
// annotated declaration: the final member list plus the import set its
// rendering requires. Created by the resolver, consumed once by rendering.
type ResolvedEntity struct {
	Name    string
	Kind    DeclKind
	Access  string // Declared access modifier ("" for internal)
	Members []Member
	Imports []string // Sorted union over every contributing file
	Path    string
	Offset  int
}

// MockName returns the name of the generated mock class.
func (r *ResolvedEntity) MockName() string { return r.Name + "Mock" }

// RenderedCandidate pairs a rendered mock text block with the original
// declaration's position, so final output ordering is independent of the
// completion order of concurrent rendering.
type RenderedCandidate struct {
	Text   string
	Offset int
	Path   string // Tie breaker when offsets collide across files
	Name   string // Final tie breaker
}

// SortCandidates orders candidates by declaration byte offset ascending,
// breaking ties by path and then name.
func SortCandidates(cands []RenderedCandidate) {
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Offset != b.Offset {
			return a.Offset < b.Offset
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Name < b.Name
	})
}
