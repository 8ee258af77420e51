package swifttype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Descriptor
	}{
		{
			name: "plain",
			raw:  "Int",
			want: Descriptor{Raw: "Int", Base: "Int"},
		},
		{
			name: "optional",
			raw:  "String?",
			want: Descriptor{Raw: "String?", Base: "String", Optionality: Optional},
		},
		{
			name: "implicitly unwrapped",
			raw:  "Session!",
			want: Descriptor{Raw: "Session!", Base: "Session", Optionality: ImplicitlyUnwrapped},
		},
		{
			name: "generic",
			raw:  "Result<Int, Error>",
			want: Descriptor{Raw: "Result<Int, Error>", Base: "Result", GenericArgs: []string{"Int", "Error"}},
		},
		{
			name: "observable",
			raw:  "Observable<Int>",
			want: Descriptor{Raw: "Observable<Int>", Base: "Observable", GenericArgs: []string{"Int"}, Observable: true},
		},
		{
			name: "behavior subject",
			raw:  "BehaviorSubject<String>",
			want: Descriptor{Raw: "BehaviorSubject<String>", Base: "BehaviorSubject", GenericArgs: []string{"String"}, Subject: BehaviorSubject},
		},
		{
			name: "nested generic args",
			raw:  "Observable<[String: Int]>",
			want: Descriptor{Raw: "Observable<[String: Int]>", Base: "Observable", GenericArgs: []string{"[String: Int]"}, Observable: true},
		},
		{
			name: "optional generic",
			raw:  "Observable<Int>?",
			want: Descriptor{Raw: "Observable<Int>?", Base: "Observable", GenericArgs: []string{"Int"}, Optionality: Optional, Observable: true},
		},
		{
			name: "array literal",
			raw:  "[Int]",
			want: Descriptor{Raw: "[Int]", Base: "[Int]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, raw := range []string{"", "  ", "?", "<Int>", "Result<Int", "Foo((", "Result<Int,>"} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			assert.Error(t, err)
		})
	}
}

func TestIsReactive(t *testing.T) {
	obs, err := Parse("Observable<Int>")
	require.NoError(t, err)
	assert.True(t, obs.IsReactive())
	assert.Equal(t, "Int", obs.ElementType())

	plain, err := Parse("Int")
	require.NoError(t, err)
	assert.False(t, plain.IsReactive())
	assert.Equal(t, "Any", plain.ElementType())
}

func TestDefaultValue(t *testing.T) {
	table := NewTable(nil, []string{"SessionProviding"})
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"Int", "0", true},
		{"UInt64", "0", true},
		{"Double", "0.0", true},
		{"String", `""`, true},
		{"Bool", "false", true},
		{"Int?", "nil", true},
		{"Session!", "nil", true},
		{"[Int]", "[]", true},
		{"[String: Int]", "[:]", true},
		{"[[Int: String]]", "[]", true},
		{"Set<Int>", "[]", true},
		{"Dictionary<String, Int>", "[:]", true},
		{"Observable<Int>", "PublishSubject<Int>()", true},
		{"PublishSubject<Int>", "PublishSubject<Int>()", true},
		{"BehaviorSubject<Int>", "BehaviorSubject<Int>(value: 0)", true},
		{"ReplaySubject<Int>", "ReplaySubject<Int>.create(bufferSize: 1)", true},
		{"SessionProviding", "SessionProvidingMock()", true},
		{"SomeUnknownType", "", false},
		{"BehaviorSubject<SomeUnknownType>", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			d, err := Parse(tt.raw)
			require.NoError(t, err)
			got, ok := table.DefaultValue(d)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultValueOverrides(t *testing.T) {
	table := NewTable(map[string]string{"URL": `URL(fileURLWithPath: "")`, "Int": "42"}, nil)

	d, err := Parse("URL")
	require.NoError(t, err)
	got, ok := table.DefaultValue(d)
	require.True(t, ok)
	assert.Equal(t, `URL(fileURLWithPath: "")`, got)

	d, err = Parse("Int")
	require.NoError(t, err)
	got, ok = table.DefaultValue(d)
	require.True(t, ok)
	assert.Equal(t, "42", got, "user override wins over the built-in table")
}

func TestSubjectExpr(t *testing.T) {
	table := NewTable(nil, nil)

	expr, ok := table.SubjectExpr(PublishSubject, "Int")
	require.True(t, ok)
	assert.Equal(t, "PublishSubject<Int>()", expr)

	expr, ok = table.SubjectExpr(BehaviorSubject, "String")
	require.True(t, ok)
	assert.Equal(t, `BehaviorSubject<String>(value: "")`, expr)

	expr, ok = table.SubjectExpr(ReplaySubject, "Int")
	require.True(t, ok)
	assert.Equal(t, "ReplaySubject<Int>.create(bufferSize: 1)", expr)

	_, ok = table.SubjectExpr(BehaviorSubject, "Mystery")
	assert.False(t, ok, "behavior subject needs a synthesizable seed")
}
