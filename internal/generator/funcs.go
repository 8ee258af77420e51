package generator

import (
	"strings"
	"text/template"

	"swiftmock/internal/model"
	"swiftmock/internal/swifttype"
)

// templateFuncs returns custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"join":  strings.Join,
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"trim":  strings.TrimSpace,
	}
}

// accessPrefix maps a declared access level to the prefix carried by
// generated members. open narrows to public: the mock is final output, not
// a subclassing point.
func accessPrefix(access string) string {
	switch access {
	case "public", "open":
		return "public "
	default:
		return ""
	}
}

func staticPrefix(static bool) string {
	if static {
		return "static "
	}
	return ""
}

// varPrefix combines the override, access and static markers for a
// member's accessor line.
func varPrefix(m model.Member) string {
	var b strings.Builder
	if m.RequiresOverride {
		b.WriteString("override ")
	}
	b.WriteString(accessPrefix(m.Access))
	b.WriteString(staticPrefix(m.Static))
	return b.String()
}

// countPrefix is the prefix for synthesized call-count slots; they follow
// the member's static scope but stay write-protected.
func countPrefix(m model.Member) string {
	return "private(set) " + staticPrefix(m.Static)
}

// boxedType is the type of the private backing slot in the wrapped form.
// Already-optional types keep their own absence handling; everything else
// is implicitly unwrapped so the slot can start empty.
func boxedType(d swifttype.Descriptor) string {
	if d.Optionality == swifttype.Optional || d.Optionality == swifttype.ImplicitlyUnwrapped {
		return d.Raw
	}
	return d.Raw + "!"
}

// paramList rebuilds a parameter list as declared.
func paramList(params []model.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.Label != "" && p.Label != p.Name {
			parts[i] = p.Label + " " + p.Name + ": " + p.Type
		} else {
			parts[i] = p.Name + ": " + p.Type
		}
	}
	return strings.Join(parts, ", ")
}

// paramTypes is the handler closure's parameter type list.
func paramTypes(params []model.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Type
	}
	return strings.Join(parts, ", ")
}

// tupleType is the element type of the argument-capture history: the bare
// type for a single parameter, a tuple for several.
func tupleType(params []model.Param) string {
	if len(params) == 1 {
		return params[0].Type
	}
	return "(" + paramTypes(params) + ")"
}

// argTuple is the expression appended to the capture history.
func argTuple(params []model.Param) string {
	names := argNames(params)
	if len(params) == 1 {
		return names
	}
	return "(" + names + ")"
}

// argNames is the comma-separated internal parameter names.
func argNames(params []model.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name
	}
	return strings.Join(parts, ", ")
}
