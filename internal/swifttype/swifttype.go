// Package swifttype parses type signature strings into structured
// descriptors and synthesizes default-value expressions for them.
package swifttype

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Optionality describes how a type handles absence.
type Optionality int

const (
	Plain Optionality = iota
	Optional
	ImplicitlyUnwrapped
)

// SubjectKind identifies a recognized reactive backing-subject type.
type SubjectKind string

const (
	PublishSubject  SubjectKind = "PublishSubject"
	BehaviorSubject SubjectKind = "BehaviorSubject"
	ReplaySubject   SubjectKind = "ReplaySubject"
)

// subjectKinds is the closed set of recognized subject type names.
var subjectKinds = map[string]SubjectKind{
	string(PublishSubject):  PublishSubject,
	string(BehaviorSubject): BehaviorSubject,
	string(ReplaySubject):   ReplaySubject,
}

// ParseSubjectKind returns the SubjectKind named by s, if any.
func ParseSubjectKind(s string) (SubjectKind, bool) {
	k, ok := subjectKinds[strings.TrimSpace(s)]
	return k, ok
}

// Descriptor is an immutable description of one type signature string.
type Descriptor struct {
	Raw         string      // Signature as written
	Base        string      // Base name with optionality and generics stripped
	Optionality Optionality
	GenericArgs []string    // Top-level generic arguments, in order
	Subject     SubjectKind // Set when Base is a recognized subject type
	Observable  bool        // Base is the observable stream type
}

// Parse parses a type signature string. It recognizes optional suffixes
// (?, !), generic argument lists, collection literals ([T], [K: V]) and the
// reactive stream shapes (Observable plus the three subject kinds).
func Parse(raw string) (Descriptor, error) {
	d := Descriptor{Raw: raw}
	s := strings.TrimSpace(raw)
	if s == "" {
		return d, errors.New("empty type signature")
	}

	switch {
	case strings.HasSuffix(s, "?"):
		d.Optionality = Optional
		s = strings.TrimSpace(strings.TrimSuffix(s, "?"))
	case strings.HasSuffix(s, "!"):
		d.Optionality = ImplicitlyUnwrapped
		s = strings.TrimSpace(strings.TrimSuffix(s, "!"))
	}
	if s == "" {
		return d, errors.Newf("bare optionality marker in %q", raw)
	}

	if strings.HasSuffix(s, ">") {
		open := strings.Index(s, "<")
		if open <= 0 {
			return d, errors.Newf("unbalanced generic arguments in %q", raw)
		}
		args, err := splitTopLevel(s[open+1 : len(s)-1])
		if err != nil {
			return d, errors.Wrapf(err, "generic arguments of %q", raw)
		}
		d.Base = strings.TrimSpace(s[:open])
		d.GenericArgs = args
	} else {
		if strings.Count(s, "<") != strings.Count(s, ">") ||
			strings.Count(s, "[") != strings.Count(s, "]") ||
			strings.Count(s, "(") != strings.Count(s, ")") {
			return d, errors.Newf("unbalanced brackets in %q", raw)
		}
		d.Base = s
	}

	if k, ok := subjectKinds[d.Base]; ok {
		d.Subject = k
	}
	d.Observable = d.Base == "Observable"
	return d, nil
}

// splitTopLevel splits a comma-separated list, ignoring commas nested in
// brackets of any kind.
func splitTopLevel(s string) ([]string, error) {
	var args []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '<', '[', '(':
			depth++
		case '>', ']', ')':
			depth--
			if depth < 0 {
				return nil, errors.Newf("unbalanced brackets in %q", s)
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errors.Newf("unbalanced brackets in %q", s)
	}
	last := strings.TrimSpace(s[start:])
	if last == "" {
		return nil, errors.Newf("empty generic argument in %q", s)
	}
	args = append(args, last)
	return args, nil
}

// IsReactive reports whether the type follows the observable stream or
// backing-subject pattern.
func (d Descriptor) IsReactive() bool {
	return d.Observable || d.Subject != ""
}

// ElementType returns the stream element type for reactive shapes. Falls
// back to "Any" when the generic argument list is empty, which keeps the
// generated subject declarations compilable.
func (d Descriptor) ElementType() string {
	if len(d.GenericArgs) > 0 {
		return d.GenericArgs[0]
	}
	return "Any"
}

// IsCollectionLiteral reports whether the base is an array or dictionary
// literal type ([T] or [K: V]).
func (d Descriptor) IsCollectionLiteral() bool {
	return strings.HasPrefix(d.Base, "[") && strings.HasSuffix(d.Base, "]")
}

// isDictionaryLiteral reports whether the base is [K: V]. The colon search
// must skip nested brackets so that [[Int: String]] stays an array.
func (d Descriptor) isDictionaryLiteral() bool {
	if !d.IsCollectionLiteral() {
		return false
	}
	depth := 0
	for _, r := range d.Base[1 : len(d.Base)-1] {
		switch r {
		case '[', '<', '(':
			depth++
		case ']', '>', ')':
			depth--
		case ':':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}
