// Package resolve merges each annotated declaration with its transitive
// ancestors into one canonical ResolvedEntity: members deduplicated with
// descendant precedence, override markers computed, and the import
// requirements of every contributing file unioned.
package resolve

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"swiftmock/internal/ingest"
	"swiftmock/internal/model"
)

// ErrInheritanceCycle marks resolution failures caused by an ancestor
// chain revisiting a name already on the resolution stack.
var ErrInheritanceCycle = errors.New("inheritance cycle")

// Resolver flattens annotated declarations against the ingestion maps.
type Resolver struct {
	decls   map[string]*model.Entity
	mocks   map[string]*model.Entity
	imports *model.ImportMap
	log     *zap.SugaredLogger
}

// New creates a Resolver over an ingestion result.
func New(res *ingest.Result, log *zap.SugaredLogger) *Resolver {
	return &Resolver{decls: res.Decls, mocks: res.Mocks, imports: res.Imports, log: log}
}

// ResolveAll resolves every annotated declaration. A declaration whose
// ancestor chain is cyclic is reported and dropped; the rest still
// resolve. Declarations without the annotation are never resolved on
// their own; they exist only to serve as ancestors.
func (r *Resolver) ResolveAll(annotated map[string]*model.Entity) []*model.ResolvedEntity {
	names := make([]string, 0, len(annotated))
	for name := range annotated {
		names = append(names, name)
	}
	sort.Strings(names)

	resolved := make([]*model.ResolvedEntity, 0, len(names))
	for _, name := range names {
		re, err := r.Resolve(annotated[name])
		if err != nil {
			r.log.Errorw("resolution failed", "entity", name, "error", err)
			continue
		}
		resolved = append(resolved, re)
	}
	return resolved
}

// Resolve flattens one annotated declaration.
func (r *Resolver) Resolve(e *model.Entity) (*model.ResolvedEntity, error) {
	stack := map[string]bool{}
	var members []model.Member
	paths := map[string]struct{}{}
	if err := r.collect(e, stack, &members, paths); err != nil {
		return nil, err
	}

	members = r.dedupe(members, e.Kind)

	importSet := map[string]struct{}{}
	for path := range paths {
		for _, m := range r.imports.Imports(path) {
			importSet[m] = struct{}{}
		}
	}
	imports := make([]string, 0, len(importSet))
	for m := range importSet {
		imports = append(imports, m)
	}
	sort.Strings(imports)

	return &model.ResolvedEntity{
		Name:    e.Name,
		Kind:    e.Kind,
		Access:  e.Access,
		Members: members,
		Imports: imports,
		Path:    e.Path,
		Offset:  e.Offset,
	}, nil
}

// collect walks the ancestor list depth-first, appending the entity's own
// members before its ancestors' so that first-seen order encodes
// descendant precedence.
func (r *Resolver) collect(e *model.Entity, stack map[string]bool, members *[]model.Member, paths map[string]struct{}) error {
	if stack[e.Name] {
		return errors.Wrapf(ErrInheritanceCycle, "ancestor %q revisited", e.Name)
	}
	stack[e.Name] = true
	defer delete(stack, e.Name)

	*members = append(*members, e.Members...)
	paths[e.Path] = struct{}{}

	for _, name := range e.Inherits {
		ancestor, ok := r.lookupAncestor(name)
		if !ok {
			// External conformances (AnyObject, Codable, ...) contribute
			// no members.
			r.log.Debugw("ancestor not found, skipping", "entity", e.Name, "ancestor", name)
			continue
		}
		if err := r.collect(ancestor, stack, members, paths); err != nil {
			return errors.Wrapf(err, "via ancestor %q of %q", name, e.Name)
		}
	}
	return nil
}

// lookupAncestor consults same-module declarations before pre-resolved
// upstream artifacts; local source wins when both define the name.
func (r *Resolver) lookupAncestor(name string) (*model.Entity, bool) {
	if e, ok := r.decls[name]; ok {
		return e, true
	}
	e, ok := r.mocks[name]
	return e, ok
}

// dedupe keeps one member per name (case-sensitive), preserving first-seen
// order. A survivor that shadowed an ancestor copy is marked as requiring
// an override marker only when the enclosing declaration is a class. When
// the dropped copy is a verbatim artifact member, the artifact's helper
// members for the same name are dropped too, since the descendant's
// rendering will re-synthesize them.
func (r *Resolver) dedupe(members []model.Member, kind model.DeclKind) []model.Member {
	index := map[string]int{}
	dropHelpers := map[string]string{} // base name -> verbatim owner
	out := make([]model.Member, 0, len(members))
	for _, m := range members {
		if i, seen := index[m.Name]; seen {
			if kind == model.KindClass {
				out[i].RequiresOverride = true
			}
			if m.Verbatim != "" && out[i].Verbatim == "" {
				dropHelpers[m.Name] = m.VerbatimOwner
			}
			continue
		}
		index[m.Name] = len(out)
		out = append(out, m)
	}
	if len(dropHelpers) == 0 {
		return out
	}
	kept := out[:0]
	for _, m := range out {
		if m.Verbatim != "" && isHelperOfAny(m.Name, m.VerbatimOwner, dropHelpers) {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

// helperSuffixes are the synthesized companion names a rendered member
// carries alongside its accessor.
var helperSuffixes = []string{
	"SetCallCount", "CallCount", "Handler", "ArgValues", "Error",
	"PublishSubject", "BehaviorSubject", "ReplaySubject", "Subject",
	"SubjectSetCallCount",
}

func isHelperOfAny(name, owner string, dropped map[string]string) bool {
	for base, droppedOwner := range dropped {
		if owner != droppedOwner {
			continue
		}
		if name == "_"+base {
			return true
		}
		if rest, ok := strings.CutPrefix(name, base); ok {
			for _, suffix := range helperSuffixes {
				if rest == suffix {
					return true
				}
			}
		}
	}
	return false
}
