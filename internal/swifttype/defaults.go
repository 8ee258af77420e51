package swifttype

import "fmt"

// DefaultValues returns the built-in type-name to default-value table.
// User-supplied overrides from the defaults file are merged on top.
func DefaultValues() map[string]string {
	return map[string]string{
		"Int":          "0",
		"Int8":         "0",
		"Int16":        "0",
		"Int32":        "0",
		"Int64":        "0",
		"UInt":         "0",
		"UInt8":        "0",
		"UInt16":       "0",
		"UInt32":       "0",
		"UInt64":       "0",
		"Double":       "0.0",
		"Float":        "0.0",
		"CGFloat":      "0.0",
		"TimeInterval": "0.0",
		"String":       `""`,
		"Character":    `" "`,
		"Bool":         "false",
		"Data":         "Data()",
		"Date":         "Date()",
		"Void":         "()",
	}
}

// Table resolves default-value expressions for descriptors. It is
// constructed once after ingestion and treated as read-only by rendering.
type Table struct {
	values map[string]string // Type name -> default expression
	mocks  map[string]string // Mocked declaration name -> constructor
}

// NewTable builds a Table from the built-in defaults, optional user
// overrides, and the set of declaration names known to have mocks. A
// property typed as a mocked declaration defaults to constructing its mock.
func NewTable(overrides map[string]string, mockNames []string) *Table {
	t := &Table{
		values: DefaultValues(),
		mocks:  make(map[string]string, len(mockNames)),
	}
	for k, v := range overrides {
		t.values[k] = v
	}
	for _, name := range mockNames {
		t.mocks[name] = name + "Mock()"
	}
	return t
}

// DefaultValue synthesizes a default-value expression for the descriptor.
// The synthesis is pure and total over the recognized grammar; the second
// return value is false when the shape is not recognized and the caller
// must fall back to an explicit placeholder.
func (t *Table) DefaultValue(d Descriptor) (string, bool) {
	if d.Optionality == Optional || d.Optionality == ImplicitlyUnwrapped {
		return "nil", true
	}
	if d.IsCollectionLiteral() {
		if d.isDictionaryLiteral() {
			return "[:]", true
		}
		return "[]", true
	}
	if v, ok := t.values[d.Raw]; ok {
		return v, true
	}
	if v, ok := t.values[d.Base]; ok && len(d.GenericArgs) == 0 {
		return v, true
	}
	switch d.Base {
	case "Array", "Set":
		return "[]", true
	case "Dictionary":
		return "[:]", true
	}
	if d.Observable || d.Subject == PublishSubject {
		return fmt.Sprintf("PublishSubject<%s>()", d.ElementType()), true
	}
	switch d.Subject {
	case BehaviorSubject, ReplaySubject:
		return t.SubjectExpr(d.Subject, d.ElementType())
	}
	if v, ok := t.mocks[d.Base]; ok && len(d.GenericArgs) == 0 {
		return v, true
	}
	return "", false
}

// SubjectExpr returns the initializer expression for a backing subject of
// the given kind over elem. BehaviorSubject needs a seed value; when none
// can be synthesized the second return value is false.
func (t *Table) SubjectExpr(kind SubjectKind, elem string) (string, bool) {
	switch kind {
	case BehaviorSubject:
		ed, err := Parse(elem)
		if err != nil {
			return "", false
		}
		seed, ok := t.DefaultValue(ed)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("BehaviorSubject<%s>(value: %s)", elem, seed), true
	case ReplaySubject:
		return fmt.Sprintf("ReplaySubject<%s>.create(bufferSize: 1)", elem), true
	default:
		return fmt.Sprintf("PublishSubject<%s>()", elem), true
	}
}
