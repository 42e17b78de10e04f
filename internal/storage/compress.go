package storage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression names the algorithm applied on top of a codec's output.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// zstd encoders and decoders are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("storage: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("storage: zstd decoder initialization failed: " + err.Error())
	}
}

func ParseCompression(name string) (Compression, error) {
	switch c := Compression(name); c {
	case "":
		return CompressionNone, nil
	case CompressionNone, CompressionZstd, CompressionLZ4:
		return c, nil
	}

	return "", fmt.Errorf("unknown storage compression %q", name)
}

// Compress wraps codec so that written documents are compressed with comp.
// Reading recognises zstd and LZ4 frames whatever comp is, so switching the
// setting never strands an existing snapshot.
func Compress(codec Codec, comp Compression) Codec {
	return compressed{codec: codec, comp: comp}
}

type compressed struct {
	codec Codec
	comp  Compression
}

func (c compressed) Name() string {
	if c.comp == CompressionNone {
		return c.codec.Name()
	}

	return c.codec.Name() + "+" + string(c.comp)
}

func (c compressed) Marshal(doc Document) ([]byte, error) {
	raw, err := c.codec.Marshal(doc)
	if err != nil {
		return nil, err
	}

	switch c.comp {
	case CompressionZstd:
		return zstdEncoder.EncodeAll(raw, nil), nil
	case CompressionLZ4:
		return compressLZ4(raw)
	}

	return raw, nil
}

func (c compressed) Unmarshal(data []byte, doc *Document) error {
	raw, err := decompress(data)
	if err != nil {
		return err
	}

	return c.codec.Unmarshal(raw, doc)
}

func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := lz4.NewWriter(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		raw, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}

		return raw, nil
	case bytes.HasPrefix(data, lz4Magic):
		raw, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}

		return raw, nil
	}

	return data, nil
}
