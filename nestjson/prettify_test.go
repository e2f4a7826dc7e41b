package nestjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

var (
	sampleJSON       = "{\"count\":2,\"message\":\"ok\",\"payload\":\"{\\\"bar\\\":{\\\"list\\\":\\\"[10,20]\\\",\\\"nested\\\":\\\"{\\\\\\\"inner\\\\\\\":true}\\\"},\\\"foo\\\":1}\"}"
	expectedNoColors = `{
  "count": 2,
  "message": "ok",
  "payload": {
    "bar": {
      "list": [
        10,
        20
      ],
      "nested": {
        "inner": true
      }
    },
    "foo": 1
  }
}`
)

func TestPrettify_Examples(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"plain string", "hello", `"hello"`},
		{"number string", "42", `42`},
		{"empty string", "", `""`},
		{"whitespace string", "  ", `"  "`},
		{"object", `{"a":1}`, "{\n  \"a\": 1\n}"},
		{"nested object string", `{"a":"{\"b\":2}"}`, "{\n  \"a\": {\n    \"b\": 2\n  }\n}"},
		{"array string value", `{"list":"[1,\"x\"]"}`, "{\n  \"list\": [\n    1,\n    \"x\"\n  ]\n}"},
		{"double encoded", `"{\"a\":1}"`, "{\n  \"a\": 1\n}"},
		{"bool string", "true", `true`},
		{"null string", "null", `null`},
		{"empty containers", `{"o":{},"a":[]}`, "{\n  \"o\": {},\n  \"a\": []\n}"},
		{"broken json stays text", `{"a":`, `"{\"a\":"`},
		{"trailing data stays text", `{"a":1} x`, `"{\"a\":1} x"`},
		{"html is not escaped", `"<a&b>"`, `"<a&b>"`},
		{"control characters", "{\"s\":\"line\\nnext\\u0001\"}", "{\n  \"s\": \"line\\nnext\\u0001\"\n}"},
		{"nil", nil, `null`},
		{"go int", 7, `7`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Prettify(tt.in)
			if got != tt.want {
				t.Fatalf("Prettify(%#v)\nexpected:\n%s\nactual:\n%s", tt.in, tt.want, got)
			}
		})
	}
}

func TestPrettify_UnwrapsNestedJSON(t *testing.T) {
	if got := Prettify(sampleJSON); got != expectedNoColors {
		t.Fatalf("unexpected output\nexpected:\n%q\nactual:\n%q", expectedNoColors, got)
	}
	if strings.ContainsRune(Prettify(sampleJSON), '\u001b') {
		t.Fatalf("Prettify must not emit escape sequences")
	}
}

func TestPrettify_PreservesKeyOrder(t *testing.T) {
	in := `{"zeta":1,"alpha":"{\"y\":1,\"b\":2,\"x\":3}","10":true,"2":false}`
	want := `{
  "zeta": 1,
  "alpha": {
    "y": 1,
    "b": 2,
    "x": 3
  },
  "10": true,
  "2": false
}`
	if got := Prettify(in); got != want {
		t.Fatalf("key order not preserved\nexpected:\n%s\nactual:\n%s", want, got)
	}
}

func TestPrettify_DuplicateKeysKeepFirstPosition(t *testing.T) {
	got := Prettify(`{"a":1,"b":2,"a":3}`)
	want := "{\n  \"a\": 3,\n  \"b\": 2\n}"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPrettify_NumberLiteralsVerbatim(t *testing.T) {
	got := Prettify(`[1.50,-0,1e3,12345678901234567890]`)
	want := "[\n  1.50,\n  -0,\n  1e3,\n  12345678901234567890\n]"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPrettify_PlainValuesMatchIndent(t *testing.T) {
	inputs := []any{
		map[string]any{"b": []any{1, "two", nil}, "a": map[string]any{"c": false}},
		[]string{"x", "y"},
		struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		}{"n", 3},
	}
	for _, in := range inputs {
		want, err := json.MarshalIndent(in, "", "  ")
		if err != nil {
			t.Fatalf("MarshalIndent: %v", err)
		}
		if got := Prettify(in); got != string(want) {
			t.Fatalf("Prettify(%#v)\nexpected:\n%s\nactual:\n%s", in, want, got)
		}
	}
}

type bindingResponse struct {
	DriverName  string `json:"driverName"`
	Path        string `json:"path"`
	AccountInfo string `json:"accountInfo"`
}

func TestPrettify_StructFieldHoldingJSON(t *testing.T) {
	resp := bindingResponse{
		DriverName:  "upi",
		Path:        "/units/alice/upi",
		AccountInfo: `{"name":"alice","amount":"100"}`,
	}
	want := `{
  "driverName": "upi",
  "path": "/units/alice/upi",
  "accountInfo": {
    "name": "alice",
    "amount": 100
  }
}`
	if got := Prettify(resp); got != want {
		t.Fatalf("unexpected output\nexpected:\n%s\nactual:\n%s", want, got)
	}
}

func TestPrettify_ValueInput(t *testing.T) {
	v := Object(
		Member{Key: "k", Value: String(`[true]`)},
		Member{Key: "n", Value: Null()},
	)
	want := "{\n  \"k\": [\n    true\n  ],\n  \"n\": null\n}"
	if got := Prettify(v); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := Prettify(&v); got != want {
		t.Fatalf("pointer input: expected %q, got %q", want, got)
	}
}

func TestPrettify_RawMessage(t *testing.T) {
	raw := json.RawMessage(`{"x":"[1]"}`)
	want := "{\n  \"x\": [\n    1\n  ]\n}"
	if got := Prettify(raw); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPrettify_UnexpectedFailureYieldsSentinel(t *testing.T) {
	inputs := []any{
		make(chan int),
		func() {},
		math.NaN(),
		map[string]any{"bad": math.Inf(1)},
	}
	for _, in := range inputs {
		if got := Prettify(in); got != InvalidJSON {
			t.Fatalf("Prettify(%T) = %q, want %q", in, got, InvalidJSON)
		}
		if _, err := PrettifyE(in); err == nil {
			t.Fatalf("PrettifyE(%T) expected error", in)
		}
	}
}

type panicMarshaler struct{}

func (panicMarshaler) MarshalJSON() ([]byte, error) {
	panic("boom")
}

type failingMarshaler struct{}

func (failingMarshaler) MarshalJSON() ([]byte, error) {
	return nil, errors.New("no")
}

func TestPrettify_PanicsAndErrorsDoNotEscape(t *testing.T) {
	if got := Prettify(panicMarshaler{}); got != InvalidJSON {
		t.Fatalf("expected sentinel for panicking marshaler, got %q", got)
	}
	if got := Prettify(failingMarshaler{}); got != InvalidJSON {
		t.Fatalf("expected sentinel for failing marshaler, got %q", got)
	}
}

func TestPrettify_SentinelTextIsDistinguishable(t *testing.T) {
	got, err := PrettifyE(InvalidJSON)
	if err != nil {
		t.Fatalf("PrettifyE: %v", err)
	}
	if got != `"Invalid JSON"` {
		t.Fatalf("expected quoted sentinel text, got %q", got)
	}
	if got == InvalidJSON {
		t.Fatalf("plain text must never collide with the failure sentinel")
	}
}

func TestPrettify_NonJSONStringsNeverFail(t *testing.T) {
	inputs := []string{"hello world", "{oops}", "[1,", "tru", "'single'", "\x00", "01", "1 2"}
	for _, in := range inputs {
		got, err := PrettifyE(in)
		if err != nil {
			t.Fatalf("PrettifyE(%q): %v", in, err)
		}
		want := string(appendQuoted(nil, in))
		if got != want {
			t.Fatalf("PrettifyE(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrettify_Deterministic(t *testing.T) {
	first := Prettify(sampleJSON)
	for i := 0; i < 10; i++ {
		if got := Prettify(sampleJSON); got != first {
			t.Fatalf("run %d differs:\n%s\nvs\n%s", i, got, first)
		}
	}
}

func TestPretty_NoUnwrapKeepsInnerStrings(t *testing.T) {
	opts := *DefaultOptions
	opts.NoUnwrap = true
	out, err := Pretty(`{"a":"{\"b\":2}"}`, &opts, NoColorPalette())
	if err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}
	want := "{\n  \"a\": \"{\\\"b\\\":2}\"\n}"
	if string(out) != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestPretty_PrefixAndIndent(t *testing.T) {
	opts := Options{Prefix: "> ", Indent: "\t"}
	out, err := Pretty(`{"a":[1]}`, &opts, NoColorPalette())
	if err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}
	want := "> {\n> \t\"a\": [\n> \t\t1\n> \t]\n> }"
	if string(out) != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestPrettyTo_ColoredOutput(t *testing.T) {
	pal, err := ResolvePalette("jq", true)
	if err != nil {
		t.Fatalf("ResolvePalette: %v", err)
	}
	var buf bytes.Buffer
	if err := PrettyTo(&buf, `{"k":"v"}`, DefaultOptions, pal); err != nil {
		t.Fatalf("PrettyTo failed: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, pal.Key+`"k"`) {
		t.Fatalf("expected key styled with palette, got %q", got)
	}
	if !strings.Contains(got, pal.String+`"v"`) {
		t.Fatalf("expected string styled with palette, got %q", got)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Fatalf("expected trailing newline, got %q", got)
	}
}

func TestPrettyStream_MultipleDocuments(t *testing.T) {
	in := strings.NewReader("{\"a\":\"[1]\"}\n\"x\"\n")
	var buf bytes.Buffer
	if err := PrettyStream(&buf, in, DefaultOptions, NoColorPalette()); err != nil {
		t.Fatalf("PrettyStream failed: %v", err)
	}
	want := "{\n  \"a\": [\n    1\n  ]\n}\n\"x\"\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestPrettyStream_PlainTextInput(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyStream(&buf, strings.NewReader("not json\n"), DefaultOptions, NoColorPalette()); err != nil {
		t.Fatalf("PrettyStream failed: %v", err)
	}
	if buf.String() != "\"not json\"\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestResolvePalette(t *testing.T) {
	if _, err := ResolvePalette("nope", true); err == nil {
		t.Fatalf("expected error for unknown palette")
	}
	pal, err := ResolvePalette("tokyo-night", false)
	if err != nil {
		t.Fatalf("ResolvePalette: %v", err)
	}
	if pal != NoColorPalette() {
		t.Fatalf("expected no-color palette when color disabled")
	}
	pal, err = ResolvePalette(" None ", true)
	if err != nil || pal != NoColorPalette() {
		t.Fatalf("expected none palette, got %+v, %v", pal, err)
	}
	names := PaletteNames()
	if names[0] > names[len(names)-1] {
		t.Fatalf("palette names not sorted: %v", names)
	}
}
