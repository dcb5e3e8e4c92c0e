// Package codec wraps CBOR encoding with fixed, deterministic options and
// an optional zstd frame for on-disk payloads.
package codec

import (
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	// Untyped maps decode as map[string]any so decoded records can be
	// indexed by column name.
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v as deterministic CBOR.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// NewEncoder returns a streaming CBOR encoder writing to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a streaming CBOR decoder reading from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}

// WriteCompressed encodes v as CBOR inside a zstd frame.
func WriteCompressed(w io.Writer, v any) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := NewEncoder(zw).Encode(v); err != nil {
		_ = zw.Close()
		return fmt.Errorf("cbor encode: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("zstd close: %w", err)
	}
	return nil
}

// ReadCompressed decodes a zstd-framed CBOR value from r into v.
func ReadCompressed(r io.Reader, v any) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	if err := NewDecoder(zr).Decode(v); err != nil {
		return fmt.Errorf("cbor decode: %w", err)
	}
	return nil
}
