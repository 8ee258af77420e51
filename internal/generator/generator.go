// Package generator renders resolved entities into mock-implementation
// text blocks via template dispatch over member shape.
package generator

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"swiftmock/internal/model"
	"swiftmock/internal/swifttype"
)

// Renderer converts resolved entities into rendered candidates. It holds
// only read-only state and is safe for concurrent rendering.
type Renderer struct {
	tmpl        *template.Template
	table       *swifttype.Table
	log         *zap.SugaredLogger
	concurrency int
}

// New creates a Renderer over the read-only default-value table.
func New(table *swifttype.Table, concurrency int, log *zap.SugaredLogger) (*Renderer, error) {
	root := template.New("mock").Funcs(templateFuncs())
	for name, text := range map[string]string{
		"header":      headerTmpl,
		"varInline":   varInlineTmpl,
		"varBoxed":    varBoxedTmpl,
		"varRx":       varRxTmpl,
		"varRxCustom": varRxCustomTmpl,
		"method":      methodTmpl,
		"placeholder": placeholderTmpl,
	} {
		if _, err := root.New(name).Parse(text); err != nil {
			return nil, errors.Wrapf(err, "parsing template %q", name)
		}
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Renderer{tmpl: root, table: table, log: log, concurrency: concurrency}, nil
}

// RenderAll renders entities in parallel into an unordered candidate
// buffer; assembly restores deterministic ordering. A member that fails to
// render is logged and replaced by a placeholder, never fatal.
func (r *Renderer) RenderAll(ctx context.Context, entities []*model.ResolvedEntity) []model.RenderedCandidate {
	results := make(chan model.RenderedCandidate, len(entities))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, e := range entities {
		e := e
		g.Go(func() error {
			results <- r.Render(e)
			return nil
		})
	}
	_ = g.Wait() // Render units never return errors; they degrade per member.
	close(results)

	cands := make([]model.RenderedCandidate, 0, len(entities))
	for c := range results {
		cands = append(cands, c)
	}
	return cands
}

// Render produces the mock text block for one resolved entity, tagged with
// the original declaration's byte offset.
func (r *Renderer) Render(e *model.ResolvedEntity) model.RenderedCandidate {
	var b strings.Builder
	r.exec(&b, "header", map[string]any{
		"AccessPrefix": accessPrefix(entityAccess(e)),
		"MockName":     e.MockName(),
		"Name":         e.Name,
		"EmitInit":     e.Kind == model.KindProtocol,
	})
	for _, m := range e.Members {
		r.renderMember(&b, e, m)
	}
	b.WriteString(footer)
	return model.RenderedCandidate{Text: b.String(), Offset: e.Offset, Path: e.Path, Name: e.Name}
}

// entityAccess is the declaration's own access level when it carries one.
// Otherwise it falls back to the members: a mock exposing any public
// member must itself be public.
func entityAccess(e *model.ResolvedEntity) string {
	if e.Access != "" {
		return e.Access
	}
	for _, m := range e.Members {
		if m.Access == "public" || m.Access == "open" {
			return "public"
		}
	}
	return ""
}

// renderMember dispatches on member shape.
func (r *Renderer) renderMember(b *strings.Builder, e *model.ResolvedEntity, m model.Member) {
	switch {
	case m.Verbatim != "":
		r.renderVerbatim(b, e, m)
	case m.Kind == model.MemberMethod:
		r.renderMethod(b, m)
	default:
		r.renderVariable(b, m)
	}
}

// renderVerbatim reproduces a pre-resolved member byte-for-byte, rewriting
// the original mock class name when the enclosing declaration differs.
func (r *Renderer) renderVerbatim(b *strings.Builder, e *model.ResolvedEntity, m model.Member) {
	text := m.Verbatim
	if m.VerbatimOwner != "" && m.VerbatimOwner != e.MockName() {
		text = strings.ReplaceAll(text, m.VerbatimOwner, e.MockName())
	}
	b.WriteString("\n")
	b.WriteString(text)
	b.WriteString("\n")
}

func (r *Renderer) renderVariable(b *strings.Builder, m model.Member) {
	desc, err := swifttype.Parse(m.Type)
	if err != nil {
		r.log.Warnw("unparsable member type, rendering placeholder",
			"member", m.Name, "type", m.Type, "error", err)
		r.exec(b, "placeholder", map[string]any{"Name": m.Name, "Type": m.Type})
		return
	}

	base := map[string]any{
		"Name":         m.Name,
		"Type":         m.Type,
		"CountPrefix":  countPrefix(m),
		"VarPrefix":    varPrefix(m),
		"StaticPrefix": staticPrefix(m.Static),
	}

	if m.RxSubject != "" {
		kind, _ := swifttype.ParseSubjectKind(m.RxSubject)
		elem := desc.ElementType()
		decl := varPrefix(m) + "var " + m.Name + "Subject"
		if expr, ok := r.table.SubjectExpr(kind, elem); ok {
			decl += " = " + expr
		} else {
			decl += fmt.Sprintf(": %s<%s>!", kind, elem)
		}
		base["SubjectDecl"] = decl
		r.exec(b, "varRxCustom", base)
		return
	}

	if desc.IsReactive() {
		base["Elem"] = desc.ElementType()
		r.exec(b, "varRx", base)
		return
	}

	if def, ok := r.table.DefaultValue(desc); ok && !m.Static {
		base["Default"] = def
		r.exec(b, "varInline", base)
		return
	}
	base["BoxedType"] = boxedType(desc)
	r.exec(b, "varBoxed", base)
}

func (r *Renderer) renderMethod(b *strings.Builder, m model.Member) {
	data := map[string]any{
		"Name":         m.Name,
		"CountPrefix":  countPrefix(m),
		"VarPrefix":    varPrefix(m),
		"FuncPrefix":   varPrefix(m),
		"Throws":       m.Throws,
		"HasParams":    len(m.Params) > 0,
		"ParamList":    paramList(m.Params),
		"ParamTypes":   paramTypes(m.Params),
		"TupleType":    tupleType(m.Params),
		"ArgTuple":     argTuple(m.Params),
		"ArgNames":     argNames(m.Params),
		"Return":       m.Type,
		"ReturnOrVoid": m.Type,
	}
	if m.Type == "" {
		data["ReturnOrVoid"] = "Void"
	} else {
		data["Fallback"] = r.returnFallback(m)
	}
	r.exec(b, "method", data)
}

// returnFallback synthesizes the statement executed when no handler has
// been injected: a return of the default value, or a bare fatalError call
// when no default exists (Never never converts under an explicit return).
func (r *Renderer) returnFallback(m model.Member) string {
	desc, err := swifttype.Parse(m.Type)
	if err == nil {
		if def, ok := r.table.DefaultValue(desc); ok {
			return "return " + def
		}
	}
	r.log.Warnw("no synthesizable default for return type, rendering placeholder",
		"member", m.Name, "type", m.Type)
	return fmt.Sprintf("fatalError(%q)", m.Name+" requires a manual value: set "+m.Name+"Handler")
}

func (r *Renderer) exec(b *strings.Builder, name string, data any) {
	if err := r.tmpl.ExecuteTemplate(b, name, data); err != nil {
		// Templates are compiled at construction; execution can only fail
		// on writer errors, which strings.Builder never produces.
		r.log.Errorw("template execution failed", "template", name, "error", err)
	}
}
