package state

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/gabrielmiguelok/tabkit/pkg/tabbable"
)

// Leading marker byte of every encoded payload.
const (
	markerPlain byte = 0
	markerGzip  byte = 1
)

// MsgPackSerializer uses MessagePack for compact serialization. Payloads at
// or above CompressionThreshold bytes are gzip-compressed.
type MsgPackSerializer struct {
	UseCompression       bool
	CompressionThreshold int
}

// NewMsgPackSerializer creates a serializer that compresses payloads of 1KB or more.
func NewMsgPackSerializer() *MsgPackSerializer {
	return &MsgPackSerializer{
		UseCompression:       true,
		CompressionThreshold: 1024,
	}
}

// Marshal serializes a value to bytes.
func (s *MsgPackSerializer) Marshal(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, err
	}

	if s.UseCompression && len(data) >= s.CompressionThreshold {
		compressed, err := compress(data)
		if err == nil {
			return append([]byte{markerGzip}, compressed...), nil
		}
	}

	return append([]byte{markerPlain}, data...), nil
}

// Unmarshal deserializes bytes produced by Marshal.
func (s *MsgPackSerializer) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return ErrInvalidData
	}

	payload := data[1:]
	switch data[0] {
	case markerPlain:
	case markerGzip:
		decompressed, err := decompress(payload)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		payload = decompressed
	default:
		return fmt.Errorf("%w: unknown marker %d", ErrInvalidData, data[0])
	}

	return msgpack.Unmarshal(payload, v)
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)

	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	return io.ReadAll(gz)
}

// ConfigCodec encodes panel configurations.
type ConfigCodec struct {
	inner *MsgPackSerializer
}

// NewConfigCodec creates a new codec.
func NewConfigCodec() *ConfigCodec {
	return &ConfigCodec{inner: NewMsgPackSerializer()}
}

// Encode serializes cfg.
func (c *ConfigCodec) Encode(cfg tabbable.Config) ([]byte, error) {
	return c.inner.Marshal(cfg)
}

// Decode deserializes a Config produced by Encode.
func (c *ConfigCodec) Decode(data []byte) (tabbable.Config, error) {
	var cfg tabbable.Config
	if err := c.inner.Unmarshal(data, &cfg); err != nil {
		return tabbable.Config{}, err
	}
	return cfg, nil
}
