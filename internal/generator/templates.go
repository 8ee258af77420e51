package generator

// Member-shape templates. Each renders one text block of the mock class;
// the surrounding header/footer comes from headerTmpl/footer. All dynamic
// prefixes (override, access, static) are computed by the renderer so the
// templates stay declarative.

const headerTmpl = `{{.AccessPrefix}}class {{.MockName}}: {{.Name}} {
{{- if .EmitInit}}
    init() { }
{{end}}`

const footer = "}\n"

// varInlineTmpl is the simple form: an instance-scoped stored property
// with a synthesizable default, observed on write.
const varInlineTmpl = `
    {{.CountPrefix}}var {{.Name}}SetCallCount = 0
    {{.VarPrefix}}var {{.Name}}: {{.Type}} = {{.Default}} { didSet { {{.Name}}SetCallCount += 1 } }
`

// varBoxedTmpl is the wrapped form used for static members and members
// without a synthesizable default: a backing slot observed on write plus a
// public accessor pair.
const varBoxedTmpl = `
    {{.CountPrefix}}var {{.Name}}SetCallCount = 0
    private {{.StaticPrefix}}var _{{.Name}}: {{.BoxedType}} { didSet { {{.Name}}SetCallCount += 1 } }
    {{.VarPrefix}}var {{.Name}}: {{.Type}} {
        get { return _{{.Name}} }
        set { _{{.Name}} = newValue }
    }
`

// varRxTmpl scaffolds a recognized reactive-stream property with the three
// backing subjects; get and set delegate through the injected holder.
const varRxTmpl = `
    {{.CountPrefix}}var {{.Name}}SubjectSetCallCount = 0
    {{.VarPrefix}}var {{.Name}}PublishSubject = PublishSubject<{{.Elem}}>()
    {{.VarPrefix}}var {{.Name}}BehaviorSubject: BehaviorSubject<{{.Elem}}>!
    {{.VarPrefix}}var {{.Name}}ReplaySubject = ReplaySubject<{{.Elem}}>.create(bufferSize: 1)
    private {{.StaticPrefix}}var _{{.Name}}: {{.Type}}?
    {{.VarPrefix}}var {{.Name}}: {{.Type}} {
        get { return _{{.Name}} ?? {{.Name}}PublishSubject }
        set { {{.Name}}SubjectSetCallCount += 1; _{{.Name}} = newValue }
    }
`

// varRxCustomTmpl is used when the annotation designates a custom backing
// subject: an explicitly injected value wins over the subject.
const varRxCustomTmpl = `
    {{.CountPrefix}}var {{.Name}}SubjectSetCallCount = 0
    {{.SubjectDecl}}
    private {{.StaticPrefix}}var _{{.Name}}: {{.Type}}?
    {{.VarPrefix}}var {{.Name}}: {{.Type}} {
        get { return _{{.Name}} ?? {{.Name}}Subject }
        set { {{.Name}}SubjectSetCallCount += 1; _{{.Name}} = newValue }
    }
`

const methodTmpl = `
    {{.CountPrefix}}var {{.Name}}CallCount = 0
{{- if .HasParams}}
    {{.VarPrefix}}var {{.Name}}ArgValues = [{{.TupleType}}]()
{{- end}}
    {{.VarPrefix}}var {{.Name}}Handler: (({{.ParamTypes}}){{if .Throws}} throws{{end}} -> {{.ReturnOrVoid}})?
{{- if .Throws}}
    {{.VarPrefix}}var {{.Name}}Error: Error?
{{- end}}
    {{.FuncPrefix}}func {{.Name}}({{.ParamList}}){{if .Throws}} throws{{end}}{{if .Return}} -> {{.Return}}{{end}} {
        {{.Name}}CallCount += 1
{{- if .HasParams}}
        {{.Name}}ArgValues.append({{.ArgTuple}})
{{- end}}
{{- if .Throws}}
        if let {{.Name}}Error = {{.Name}}Error {
            throw {{.Name}}Error
        }
{{- end}}
        if let {{.Name}}Handler = {{.Name}}Handler {
            {{if .Return}}return {{end}}{{if .Throws}}try {{end}}{{.Name}}Handler({{.ArgNames}})
        }
{{- if .Return}}
        {{.Fallback}}
{{- end}}
    }
`

// placeholderTmpl marks a member whose type could not be parsed; the
// warning is logged alongside.
const placeholderTmpl = `
    // {{.Name}} requires a manual value: type "{{.Type}}" could not be parsed
`
