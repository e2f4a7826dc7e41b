package nestjson

import (
	"bytes"
	"sync"
)

const maxScratchCap = 64 * 1024

var formatterPool = sync.Pool{
	New: func() any {
		return &formatter{}
	},
}

var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

func acquireFormatter(buf *bytes.Buffer, pal ColorPalette, opts *Options, compact bool) *formatter {
	f := formatterPool.Get().(*formatter)
	f.reset(buf, pal, opts, compact)
	return f
}

func releaseFormatter(f *formatter) {
	if f == nil {
		return
	}
	f.clear()
	formatterPool.Put(f)
}

func acquireBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func releaseBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxScratchCap {
		return
	}
	bufferPool.Put(buf)
}
