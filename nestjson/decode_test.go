package nestjson

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var valueCmp = cmp.AllowUnexported(Value{})

func TestTryParse(t *testing.T) {
	tests := []struct {
		in   string
		want Value
		ok   bool
	}{
		{in: "42", want: Number("42"), ok: true},
		{in: " true ", want: Bool(true), ok: true},
		{in: "null", want: Null(), ok: true},
		{in: `"s"`, want: String("s"), ok: true},
		{in: "[]", want: Array(), ok: true},
		{in: "{}", want: Object(), ok: true},
		{in: `{"b":[1,{"c":null}],"a":"x"}`, want: Object(
			Member{Key: "b", Value: Array(Number("1"), Object(Member{Key: "c", Value: Null()}))},
			Member{Key: "a", Value: String("x")},
		), ok: true},
		{in: ""},
		{in: "hello"},
		{in: "[1,]"},
		{in: `{"a":1,}`},
		{in: `{"a" 1}`},
		{in: "[1] [2]"},
		{in: "}"},
		{in: "NaN"},
	}
	for _, tt := range tests {
		got, ok := TryParse(tt.in)
		if ok != tt.ok {
			t.Fatalf("TryParse(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
		if !ok {
			continue
		}
		if diff := cmp.Diff(tt.want, got, valueCmp); diff != "" {
			t.Fatalf("TryParse(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestDecode_RejectsTooDeep(t *testing.T) {
	in := strings.Repeat("[", maxDecodeDepth+1) + strings.Repeat("]", maxDecodeDepth+1)
	if _, err := Decode([]byte(in)); !errors.Is(err, errTooDeep) {
		t.Fatalf("expected errTooDeep, got %v", err)
	}
	if got := Prettify(in); got != `"`+in+`"` {
		t.Fatalf("over-deep text should render as a string leaf")
	}
}

func TestDecode_TruncatedInput(t *testing.T) {
	_, err := Decode([]byte(`{"a":[1,2`))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestDecodeAll(t *testing.T) {
	docs, err := DecodeAll(strings.NewReader("{\"a\":1}\n[2]\n\"s\" 3"))
	if err != nil {
		t.Fatalf("DecodeAll failed: %v", err)
	}
	want := []Value{
		Object(Member{Key: "a", Value: Number("1")}),
		Array(Number("2")),
		String("s"),
		Number("3"),
	}
	if diff := cmp.Diff(want, docs, valueCmp); diff != "" {
		t.Fatalf("DecodeAll mismatch (-want +got):\n%s", diff)
	}
	if _, err := DecodeAll(strings.NewReader("[1] {")); err == nil {
		t.Fatalf("expected error for truncated stream")
	}
}

func TestValue_JSONRoundTripKeepsOrder(t *testing.T) {
	src := `{"z":{"y":[1,"two",false,null]},"a":"{\"k\":1}"}`
	var v Value
	if err := json.Unmarshal([]byte(src), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != src {
		t.Fatalf("expected %s, got %s", src, out)
	}

	wrapped, err := json.Marshal(struct {
		Result Value `json:"result"`
	}{Unwrap(v)})
	if err != nil {
		t.Fatalf("Marshal wrapper: %v", err)
	}
	const want = `{"result":{"z":{"y":[1,"two",false,null]},"a":{"k":1}}}`
	if string(wrapped) != want {
		t.Fatalf("expected %s, got %s", want, wrapped)
	}
}

func TestValue_Accessors(t *testing.T) {
	v, ok := TryParse(`{"name":"units","tags":["a","b"],"on":true}`)
	if !ok {
		t.Fatalf("TryParse failed")
	}
	if v.Kind() != KindObject || v.Len() != 3 {
		t.Fatalf("unexpected kind/len: %s/%d", v.Kind(), v.Len())
	}
	name, ok := v.Get("name")
	if !ok || name.Text() != "units" {
		t.Fatalf("Get(name) = %v, %v", name, ok)
	}
	tags, _ := v.Get("tags")
	if tags.Kind() != KindArray || len(tags.Elems()) != 2 || tags.Elems()[1].Text() != "b" {
		t.Fatalf("unexpected tags %#v", tags)
	}
	on, _ := v.Get("on")
	if !on.Truth() {
		t.Fatalf("expected on to be true")
	}
	if _, ok := v.Get("missing"); ok {
		t.Fatalf("expected missing key")
	}
	if !Null().IsNull() || Number("1").Len() != 0 {
		t.Fatalf("scalar accessors broken")
	}
}

func TestUnwrap_DoesNotMutateInput(t *testing.T) {
	in := Array(String(`{"a":1}`), String("plain"))
	out := Unwrap(in)
	if in.Elems()[0].Kind() != KindString {
		t.Fatalf("input was mutated")
	}
	if out.Elems()[0].Kind() != KindObject || out.Elems()[1].Kind() != KindString {
		t.Fatalf("unexpected unwrap result %#v", out)
	}
}

func TestUnwrap_MultipleLayers(t *testing.T) {
	layer := `{"deep":true}`
	for i := 0; i < 5; i++ {
		b, _ := json.Marshal(layer)
		layer = string(b)
	}
	got := Unwrap(String(layer))
	want := Object(Member{Key: "deep", Value: Bool(true)})
	if diff := cmp.Diff(want, got, valueCmp); diff != "" {
		t.Fatalf("Unwrap mismatch (-want +got):\n%s", diff)
	}
}
