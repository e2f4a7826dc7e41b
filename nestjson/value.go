package nestjson

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a decoded JSON value. The zero Value is null.
//
// Objects keep their members in the order they were decoded, so rendering a
// Value reproduces the key order of its source.
type Value struct {
	kind    Kind
	text    string
	boolean bool
	elems   []Value
	members []Member
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Number returns a number holding the JSON literal lit. The literal is not
// validated; it is emitted verbatim when rendering.
func Number(lit string) Value { return Value{kind: KindNumber, text: lit} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Array returns an array of the given elements.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, elems: elems}
}

// Object returns an object with the given members in order. Duplicate keys
// are kept as given; use an ObjectBuilder to merge them.
func Object(members ...Member) Value {
	if members == nil {
		members = []Member{}
	}
	return Value{kind: KindObject, members: members}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the contents of a string or the literal of a number. It is
// empty for other kinds.
func (v Value) Text() string { return v.text }

// Truth returns the boolean held by v, false for other kinds.
func (v Value) Truth() bool { return v.boolean }

// Elems returns the elements of an array. The slice is shared with v.
func (v Value) Elems() []Value { return v.elems }

// Members returns the members of an object. The slice is shared with v.
func (v Value) Members() []Member { return v.members }

// Len returns the number of elements or members, or zero for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.elems)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// Get returns the value stored under key in an object.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// ObjectBuilder assembles an object where a repeated key replaces the
// earlier value but keeps its original position.
type ObjectBuilder struct {
	members []Member
	index   map[string]int
}

// Set adds or replaces key.
func (b *ObjectBuilder) Set(key string, v Value) {
	if i, ok := b.index[key]; ok {
		b.members[i].Value = v
		return
	}
	if b.index == nil {
		b.index = make(map[string]int)
	}
	b.index[key] = len(b.members)
	b.members = append(b.members, Member{Key: key, Value: v})
}

// Value returns the object built so far.
func (b *ObjectBuilder) Value() Value {
	return Object(b.members...)
}
