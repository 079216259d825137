package pool

import (
	"bytes"
	"testing"
)

func TestGetBufferIsEmpty(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("leftover")
	PutBuffer(buf)

	again := GetBuffer()
	if again.Len() != 0 {
		t.Errorf("Expected empty buffer, got %q", again.String())
	}
	PutBuffer(again)
}

func TestPutBufferIgnoresNilAndLarge(t *testing.T) {
	PutBuffer(nil)

	large := bytes.NewBuffer(make([]byte, 0, MaxRetained+1))
	PutBuffer(large)
}
