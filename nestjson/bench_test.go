package nestjson

import (
	"io"
	"testing"
)

const benchDocString = `{
  "str": "hello \"world\" \\ / \b \f \n \r \t",
  "unicode": "snowman ☃",
  "empty_obj": {},
  "empty_arr": [],
  "int": 123,
  "neg": -45,
  "float": 3.14159,
  "exp": 1.23e+4,
  "bools": [true, false],
  "nil": null,
  "arr": [1, "two", {"three":3}, [4,5]],
  "obj": {"a":1, "b":{"c":[{"d":"e"}]}},
  "json_str_obj": "{\"x\":1,\"y\":[true,false,null],\"z\":{\"k\":\"v\"}}",
  "json_str_arr": " [1, 2, {\"a\":\"b\"}] ",
  "json_str_invalid": "{oops}",
  "json_str_deep": "{\"inner\":\"{\\\"deep\\\":[1,2]}\"}"
}`

var benchPrettySink string

func BenchmarkPrettify(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(benchDocString)))
	for i := 0; i < b.N; i++ {
		benchPrettySink = Prettify(benchDocString)
	}
}

func BenchmarkPrettifyParallel(b *testing.B) {
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if Prettify(benchDocString) == InvalidJSON {
				b.Error("unexpected sentinel")
			}
		}
	})
}

func BenchmarkCompactTo(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := CompactTo(io.Discard, benchDocString, DefaultOptions); err != nil {
			b.Fatal(err)
		}
	}
}

func TestPrettify_BenchDocument(t *testing.T) {
	out, err := PrettifyE(benchDocString)
	if err != nil {
		t.Fatalf("PrettifyE: %v", err)
	}
	v, ok := TryParse(out)
	if !ok {
		t.Fatalf("output does not parse: %s", out)
	}
	deep, _ := v.Get("json_str_deep")
	inner, _ := deep.Get("inner")
	list, _ := inner.Get("deep")
	if list.Kind() != KindArray || list.Len() != 2 {
		t.Fatalf("expected nested list to be decoded, got %s", out)
	}
	invalid, _ := v.Get("json_str_invalid")
	if invalid.Kind() != KindString || invalid.Text() != "{oops}" {
		t.Fatalf("invalid JSON string must stay a string, got %#v", invalid)
	}
	arr, _ := v.Get("json_str_arr")
	if arr.Kind() != KindArray || arr.Len() != 3 {
		t.Fatalf("padded array string must decode, got %#v", arr)
	}
}
