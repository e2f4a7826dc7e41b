// Package nestjson renders JSON for people, decoding JSON that has been
// stored inside string values along the way.
//
// Backend responses often carry a field whose value is itself a JSON
// document encoded as a string, sometimes several layers deep. Prettify
// decodes every such layer and indents the result with two spaces, keeping
// object keys in the order they were found:
//
//	out := nestjson.Prettify(`{"a":"{\"b\":2}"}`)
//	// {
//	//   "a": {
//	//     "b": 2
//	//   }
//	// }
//
// Strings that are not JSON stay strings, so Prettify("hello") renders
// "hello" with quotes. Prettify never fails; an unexpected error renders as
// InvalidJSON. Use PrettifyE to receive the error instead.
//
// Colored output for terminals:
//
//	pal, err := nestjson.ResolvePalette("tokyo-night", true)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := nestjson.PrettyTo(os.Stdout, resp, nestjson.DefaultOptions, pal); err != nil {
//		log.Fatal(err)
//	}
package nestjson
