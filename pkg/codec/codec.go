package codec

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-msgpack/v2/codec"
)

// ErrUnknownCodec is returned by ByName for an unsupported name.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// Codec converts values to bytes and back.
type Codec interface {
	// Name returns the configuration name of the codec.
	Name() string
	// Marshal encodes v.
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes data into the value pointed to by v.
	Unmarshal(data []byte, v any) error
}

// Default returns the MessagePack codec.
func Default() Codec {
	return MsgPack()
}

// ByName returns the codec registered under name.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "msgpack", "messagepack":
		return MsgPack(), nil
	case "json":
		return JSON(), nil
	case "gob":
		return Gob(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// --------------------------------------------------------------------------
// MessagePack
// --------------------------------------------------------------------------

type msgpackCodec struct {
	handle *codec.MsgpackHandle
}

// MsgPack returns a MessagePack codec.
func MsgPack() Codec {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	return &msgpackCodec{handle: h}
}

func (c *msgpackCodec) Name() string { return "msgpack" }

func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, c.handle).Encode(v); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	return codec.NewDecoderBytes(data, c.handle).Decode(v)
}

// --------------------------------------------------------------------------
// JSON
// --------------------------------------------------------------------------

type jsonCodec struct{}

// JSON returns a codec backed by encoding/json.
func JSON() Codec {
	return jsonCodec{}
}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// --------------------------------------------------------------------------
// gob
// --------------------------------------------------------------------------

type gobCodec struct{}

// Gob returns a codec backed by encoding/gob. Each value is encoded with its
// own type description.
func Gob() Codec {
	return gobCodec{}
}

func (gobCodec) Name() string { return "gob" }

func (gobCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
