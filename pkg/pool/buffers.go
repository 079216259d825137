// Package pool reuses render buffers to reduce allocations on hot paths.
package pool

import (
	"bytes"
	"sync"
)

// MaxRetained is the largest buffer capacity returned to the pool.
const MaxRetained = 64 * 1024

var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// GetBuffer retrieves an empty buffer from the pool.
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool. Buffers that grew beyond
// MaxRetained are dropped.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > MaxRetained {
		return
	}
	bufferPool.Put(buf)
}
