package nestjson

// Unwrap replaces every string in v that parses as JSON with the parsed
// value, repeating until no string parses. Arrays keep their length and
// order, objects keep their keys and order, and other scalars pass through.
//
// Every parse strictly shortens the strings it produces, so the repetition
// always terminates.
func Unwrap(v Value) Value {
	switch v.kind {
	case KindString:
		if parsed, ok := TryParse(v.text); ok {
			return Unwrap(parsed)
		}
		return v
	case KindArray:
		elems := make([]Value, len(v.elems))
		for i, e := range v.elems {
			elems[i] = Unwrap(e)
		}
		return Array(elems...)
	case KindObject:
		members := make([]Member, len(v.members))
		for i, m := range v.members {
			members[i] = Member{Key: m.Key, Value: Unwrap(m.Value)}
		}
		return Object(members...)
	default:
		return v
	}
}
