package nestjson

import (
	"bytes"
	"unicode/utf8"

	"pkt.systems/unitsctl/internal/ansi"
)

// formatter renders a Value tree into buf. With compact set it emits no
// whitespace at all.
type formatter struct {
	buf     *bytes.Buffer
	pal     ColorPalette
	prefix  string
	indent  string
	compact bool
	scratch []byte
}

func (f *formatter) reset(buf *bytes.Buffer, pal ColorPalette, opts *Options, compact bool) {
	f.buf = buf
	f.pal = pal
	f.compact = compact
	if opts != nil {
		f.prefix = opts.Prefix
		f.indent = opts.Indent
	} else {
		f.prefix = ""
		f.indent = ""
	}
}

func (f *formatter) clear() {
	f.buf = nil
	f.pal = ColorPalette{}
	f.prefix = ""
	f.indent = ""
	f.compact = false
	if cap(f.scratch) > maxScratchCap {
		f.scratch = nil
	} else {
		f.scratch = f.scratch[:0]
	}
}

func (f *formatter) writeStyled(style string, s string) {
	if style != "" {
		f.buf.WriteString(style)
	}
	f.buf.WriteString(s)
	if style != "" {
		f.buf.WriteString(ansi.Reset)
	}
}

func (f *formatter) writeStyledByte(style string, b byte) {
	if style != "" {
		f.buf.WriteString(style)
	}
	f.buf.WriteByte(b)
	if style != "" {
		f.buf.WriteString(ansi.Reset)
	}
}

func (f *formatter) writeIndent(depth int) {
	if f.prefix != "" {
		f.buf.WriteString(f.prefix)
	}
	for i := 0; i < depth; i++ {
		f.buf.WriteString(f.indent)
	}
}

func (f *formatter) newline(depth int) {
	if f.compact {
		return
	}
	f.buf.WriteByte('\n')
	f.writeIndent(depth)
}

func (f *formatter) writeQuoted(style string, s string) {
	f.scratch = appendQuoted(f.scratch[:0], s)
	if style != "" {
		f.buf.WriteString(style)
	}
	f.buf.Write(f.scratch)
	if style != "" {
		f.buf.WriteString(ansi.Reset)
	}
}

func (f *formatter) value(v Value, depth int) {
	switch v.kind {
	case KindNull:
		f.writeStyled(f.pal.Null, "null")
	case KindBool:
		if v.boolean {
			f.writeStyled(f.pal.True, "true")
		} else {
			f.writeStyled(f.pal.False, "false")
		}
	case KindNumber:
		f.writeStyled(f.pal.Number, v.text)
	case KindString:
		f.writeQuoted(f.pal.String, v.text)
	case KindArray:
		f.writeStyledByte(f.pal.Brackets, '[')
		if len(v.elems) == 0 {
			f.writeStyledByte(f.pal.Brackets, ']')
			return
		}
		for i, e := range v.elems {
			if i > 0 {
				f.writeStyledByte(f.pal.Punctuation, ',')
			}
			f.newline(depth + 1)
			f.value(e, depth+1)
		}
		f.newline(depth)
		f.writeStyledByte(f.pal.Brackets, ']')
	case KindObject:
		f.writeStyledByte(f.pal.Brackets, '{')
		if len(v.members) == 0 {
			f.writeStyledByte(f.pal.Brackets, '}')
			return
		}
		for i, m := range v.members {
			if i > 0 {
				f.writeStyledByte(f.pal.Punctuation, ',')
			}
			f.newline(depth + 1)
			f.writeQuoted(f.pal.Key, m.Key)
			f.writeStyledByte(f.pal.Punctuation, ':')
			if !f.compact {
				f.buf.WriteByte(' ')
			}
			f.value(m.Value, depth+1)
		}
		f.newline(depth)
		f.writeStyledByte(f.pal.Brackets, '}')
	}
}

// appendQuoted appends s as a JSON string literal. Only the quote, the
// backslash and control characters are escaped; other runes, including
// '<', '>' and '&', are written as is. Invalid UTF-8 is replaced with
// U+FFFD.
func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				dst = append(dst, "\ufffd"...)
			} else {
				dst = append(dst, s[i:i+size]...)
			}
			i += size
			continue
		}
		switch c {
		case '\\', '"':
			dst = append(dst, '\\', c)
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			if c < 0x20 {
				dst = append(dst, '\\', 'u', '0', '0', hexDigit(c>>4), hexDigit(c&0x0f))
			} else {
				dst = append(dst, c)
			}
		}
		i++
	}
	return append(dst, '"')
}

func hexDigit(v byte) byte {
	if v < 10 {
		return '0' + v
	}
	return 'a' + (v - 10)
}
