// Package scan implements the built-in parser backend: a line- and
// brace-tracking scanner that extracts declaration shape (names,
// inheritance lists, members, imports, byte offsets) without building a
// full syntax tree.
package scan

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"swiftmock/internal/model"
	"swiftmock/internal/parser"
	"swiftmock/internal/swifttype"
)

func init() {
	parser.Register("scan", func(log *zap.SugaredLogger) parser.Backend {
		return New(WithLogger(log))
	})
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the diagnostics logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Scanner) {
		if log != nil {
			s.log = log
		}
	}
}

// Scanner is safe for concurrent use; each Parse call keeps its own state.
type Scanner struct {
	log *zap.SugaredLogger
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	importRe = regexp.MustCompile(`^\s*(@testable\s+)?import\s+([A-Za-z_][A-Za-z0-9_.]*)`)
	declRe   = regexp.MustCompile(`^\s*(?:(open|public|internal|fileprivate|private)\s+)?(?:final\s+)?(protocol|class)\s+([A-Za-z_][A-Za-z0-9_]*)\s*(?::\s*([^{]+?))?\s*\{`)
	varRe    = regexp.MustCompile(`^\s*(?:@objc\s+)?(?:(open|public|internal|fileprivate|private)(?:\(set\))?\s+)?(static\s+)?(?:weak\s+)?var\s+([A-Za-z_][A-Za-z0-9_]*)\s*(?::\s*([^{=\n]+))?`)
	// funcRe matches only through the opening parenthesis; the parameter
	// list is extracted separately with bracket-depth tracking, since
	// closure-typed parameters nest parentheses.
	funcRe     = regexp.MustCompile(`^\s*(?:@objc\s+)?(?:@discardableResult\s+)?(?:(open|public|internal|fileprivate|private)\s+)?(static\s+)?func\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	funcTailRe = regexp.MustCompile(`^\s*(throws\s*)?(?:->\s*([^{]+?))?\s*(\{.*)?$`)
)

// ParseSource parses a source file into declaration models.
func (s *Scanner) ParseSource(ctx context.Context, path string, opts parser.Options) (*parser.FileResult, error) {
	return s.parse(ctx, path, opts, false)
}

// ParseMock parses a previously generated mock artifact. Members carry
// their original text span for verbatim reuse, and entities are keyed by
// the declaration they mock rather than the mock class name.
func (s *Scanner) ParseMock(ctx context.Context, path string, opts parser.Options) (*parser.FileResult, error) {
	return s.parse(ctx, path, opts, true)
}

// pending holds annotation state scanned ahead of a declaration.
type pending struct {
	annotated bool
	malformed bool
	rx        map[string]string
}

func (s *Scanner) parse(ctx context.Context, path string, opts parser.Options, mock bool) (*parser.FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	src := string(data)

	result := &parser.FileResult{Path: path}
	var (
		cur   *model.Entity
		owner string // Declared name as written, before mock renaming
		depth int
		pend  pending
	)

	for offset := 0; offset < len(src); {
		end := strings.IndexByte(src[offset:], '\n')
		var next int
		if end < 0 {
			end = len(src)
			next = end
		} else {
			end = offset + end
			next = end + 1
		}
		line := src[offset:end]

		switch {
		case depth == 0:
			if m := importRe.FindStringSubmatch(line); m != nil {
				result.Imports = append(result.Imports, m[2])
				pend = pending{}
				break
			}
			if opts.Annotation != "" && strings.Contains(line, opts.Annotation) && isComment(line) {
				pend = s.parseAnnotation(path, line, opts.Annotation)
				break
			}
			if m := declRe.FindStringSubmatch(line); m != nil {
				kind := model.DeclKind(m[2])
				if !opts.WantsKind(kind) {
					pend = pending{}
					depth += braceDelta(line)
					break
				}
				cur = &model.Entity{
					Name:        m[3],
					Kind:        kind,
					Access:      m[1],
					Inherits:    splitInherits(m[4]),
					Annotated:   pend.annotated && !pend.malformed,
					Path:        path,
					Offset:      offset,
					PreResolved: mock,
				}
				owner = m[3]
				if mock {
					// Key the artifact by the declaration it mocks; its
					// inheritance was already flattened upstream.
					cur.Name = strings.TrimSuffix(cur.Name, "Mock")
					cur.Inherits = nil
				}
				depth += braceDelta(line)
				if depth == 0 {
					// Single-line declaration body.
					result.Entities = append(result.Entities, cur)
					cur = nil
					pend = pending{}
				}
				break
			}
			// Unrelated top-level code detaches a pending annotation; only
			// comments and blank lines may sit between the marker and its
			// declaration.
			if strings.TrimSpace(line) != "" && !isComment(line) {
				pend = pending{}
			}
		case depth == 1 && cur != nil:
			consumed := s.scanMember(src, offset, next, line, cur, owner, mock, pend.rx)
			if consumed > next {
				// Member body spanned multiple lines; skip past it.
				next = consumed
				break
			}
			depth += braceDelta(line)
			if depth == 0 {
				result.Entities = append(result.Entities, cur)
				cur = nil
				pend = pending{}
			}
		default:
			depth += braceDelta(line)
			if depth == 0 && cur != nil {
				result.Entities = append(result.Entities, cur)
				cur = nil
				pend = pending{}
			}
		}

		offset = next
	}
	if cur != nil {
		s.log.Warnw("unterminated declaration", "file", path, "entity", cur.Name)
	}
	return result, nil
}

// scanMember tries to parse one member starting at the current line. It
// returns the byte offset just past the member (for multi-line bodies), or
// 0 when the line is not a member start.
func (s *Scanner) scanMember(src string, offset, next int, line string, e *model.Entity, owner string, mock bool, rx map[string]string) int {
	if m := funcRe.FindStringSubmatchIndex(line); m != nil {
		openParen := m[1] - 1
		closeParen := matchingParen(line, openParen)
		if closeParen < 0 {
			s.log.Warnw("unsupported multi-line function signature, skipping member",
				"file", e.Path, "signature", strings.TrimSpace(line))
			return 0
		}
		tail := funcTailRe.FindStringSubmatch(line[closeParen+1:])
		if tail == nil {
			s.log.Warnw("unrecognized function signature tail, skipping member",
				"file", e.Path, "signature", strings.TrimSpace(line))
			return 0
		}
		member := model.Member{
			Kind:   model.MemberMethod,
			Name:   group(line, m, 3),
			Access: group(line, m, 1),
			Static: group(line, m, 2) != "",
			Throws: tail[1] != "",
			Type:   strings.TrimSpace(tail[2]),
			Params: parseParams(line[openParen+1 : closeParen]),
			Path:   e.Path,
			Offset: offset,
		}
		endOff := next
		if tail[3] != "" && braceDelta(line) > 0 {
			endOff = skipBlock(src, offset, next)
		}
		member.Length = endOff - offset
		if mock {
			member.Verbatim = strings.TrimRight(src[offset:endOff], "\n")
			member.VerbatimOwner = owner
		}
		e.Members = append(e.Members, member)
		return endOff
	}
	if m := varRe.FindStringSubmatch(line); m != nil {
		member := model.Member{
			Kind:   model.MemberVariable,
			Name:   m[3],
			Access: m[1],
			Static: m[2] != "",
			Type:   strings.TrimSpace(m[4]),
			Path:   e.Path,
			Offset: offset,
		}
		if kind, ok := rx[member.Name]; ok {
			member.RxSubject = kind
		}
		endOff := next
		if openDepth := braceDelta(line); openDepth > 0 {
			endOff = skipBlock(src, offset, next)
		}
		member.Length = endOff - offset
		if mock {
			member.Verbatim = strings.TrimRight(src[offset:endOff], "\n")
			member.VerbatimOwner = owner
		}
		e.Members = append(e.Members, member)
		return endOff
	}
	return 0
}

// skipBlock advances past a brace-balanced block that opens on the line
// [offset, next) and returns the offset just past the line on which the
// block closes.
func skipBlock(src string, offset, next int) int {
	depth := braceDelta(src[offset:min(next, len(src))])
	pos := next
	for depth > 0 && pos < len(src) {
		end := strings.IndexByte(src[pos:], '\n')
		var lineEnd int
		if end < 0 {
			lineEnd = len(src)
		} else {
			lineEnd = pos + end
		}
		depth += braceDelta(src[pos:lineEnd])
		if lineEnd >= len(src) {
			return len(src)
		}
		pos = lineEnd + 1
	}
	return pos
}

// parseAnnotation parses the marker and its optional argument list, e.g.
// "/// @mockable(rx: feed = BehaviorSubject; state = ReplaySubject)".
// A malformed argument list demotes the declaration to non-annotated.
func (s *Scanner) parseAnnotation(path, line, marker string) pending {
	rest := line[strings.Index(line, marker)+len(marker):]
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "(") {
		return pending{annotated: true}
	}
	closing := strings.LastIndex(rest, ")")
	if closing < 0 {
		s.log.Warnw("malformed annotation: unbalanced arguments, treating declaration as non-annotated",
			"file", path, "annotation", strings.TrimSpace(line))
		return pending{malformed: true}
	}
	args := rest[1:closing]
	body, ok := strings.CutPrefix(strings.TrimSpace(args), "rx:")
	if !ok {
		s.log.Warnw("malformed annotation: unknown argument key, treating declaration as non-annotated",
			"file", path, "annotation", strings.TrimSpace(line))
		return pending{malformed: true}
	}
	rx := make(map[string]string)
	for _, pair := range strings.Split(body, ";") {
		name, kind, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		k, known := swifttype.ParseSubjectKind(kind)
		if !found || name == "" || !known {
			s.log.Warnw("malformed annotation: bad rx override, treating declaration as non-annotated",
				"file", path, "annotation", strings.TrimSpace(line))
			return pending{malformed: true}
		}
		rx[name] = string(k)
	}
	return pending{annotated: true, rx: rx}
}

// parseParams splits a parameter list into labeled parameters.
func parseParams(list string) []model.Param {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil
	}
	var params []model.Param
	for _, raw := range splitTopLevel(list) {
		name, typ, found := cutTopLevel(raw, ':')
		if !found {
			continue
		}
		p := model.Param{Type: strings.TrimSpace(typ)}
		fields := strings.Fields(strings.TrimSpace(name))
		switch len(fields) {
		case 1:
			p.Name = fields[0]
		case 2:
			p.Label = fields[0]
			p.Name = fields[1]
		default:
			continue
		}
		params = append(params, p)
	}
	return params
}

// splitTopLevel splits on commas outside any bracket nesting.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '<', '[', '(':
			depth++
		case '>', ']', ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}

// cutTopLevel cuts s at the first occurrence of sep outside brackets.
func cutTopLevel(s string, sep rune) (before, after string, found bool) {
	depth := 0
	for i, r := range s {
		switch r {
		case '<', '[', '(':
			depth++
		case '>', ']', ')':
			depth--
		default:
			if r == sep && depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return s, "", false
}

// matchingParen returns the index of the parenthesis closing the one at
// open, or -1 when it does not close on this line.
func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// group extracts one submatch from a FindStringSubmatchIndex result.
func group(s string, idx []int, n int) string {
	if idx[2*n] < 0 {
		return ""
	}
	return s[idx[2*n]:idx[2*n+1]]
}

func splitInherits(list string) []string {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil
	}
	var inherits []string
	for _, name := range splitTopLevel(list) {
		if name != "" {
			inherits = append(inherits, name)
		}
	}
	return inherits
}

func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "//")
}

// braceDelta counts opening minus closing braces on a line, ignoring
// braces inside line comments and string literals.
func braceDelta(line string) int {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	delta := 0
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			if i == 0 || line[i-1] != '\\' {
				inString = !inString
			}
		case '{':
			if !inString {
				delta++
			}
		case '}':
			if !inString {
				delta--
			}
		}
	}
	return delta
}
