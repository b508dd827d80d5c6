// Package wire holds small encode/decode helpers shared by the hand-maintained
// message types under proto/rpc/v1 and proto/rpc/webrtc/v1. Those packages
// stand in for protoc-gen-go output (the .proto schemas themselves are out of
// scope for this module, consumed elsewhere as generated stubs); this package
// keeps their wire-format bookkeeping in one place instead of duplicating the
// protowire calls in every message's Marshal/Unmarshal.
package wire

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/encoding/protowire"
)

// Codec adapts Message's hand-written Marshal/Unmarshal to grpc's
// encoding.Codec interface so generated-style clients can force it per call
// via grpc.ForceCodec, instead of overriding the global "proto" codec that
// encoding/proto registers for every other protobuf user in the process.
type Codec struct{}

func (Codec) Name() string { return "viamwire" }

func (Codec) Marshal(v interface{}) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("wire: %T does not implement wire.Message", v)
	}
	return m.Marshal()
}

func (Codec) Unmarshal(data []byte, v interface{}) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("wire: %T does not implement wire.Message", v)
	}
	return m.Unmarshal(data)
}

// Message is implemented by every hand-maintained type in proto/rpc/... and
// proto/rpc/webrtc/.... It is the interface the wire codec (Codec above)
// marshals and unmarshals through instead of
// the full google.golang.org/protobuf/proto.Message reflection surface.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// Submessage is implemented by nested message types so AppendMessageField can
// embed them without every caller hand-rolling the length-delimited wrapper.
type Submessage interface {
	Marshal() ([]byte, error)
}

func AppendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func AppendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func AppendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func AppendUint64(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func AppendUint32(b []byte, num protowire.Number, v uint32) []byte {
	return AppendUint64(b, num, uint64(v))
}

// AppendMessageField appends msg as a length-delimited submessage field, or
// nothing if msg is nil (including a typed nil pointer).
func AppendMessageField(b []byte, num protowire.Number, msg Submessage) ([]byte, error) {
	if msg == nil {
		return b, nil
	}
	if v := reflect.ValueOf(msg); v.Kind() == reflect.Ptr && v.IsNil() {
		return b, nil
	}
	inner, err := msg.Marshal()
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner), nil
}

// Field is one decoded (number, wire type, raw value) tuple produced by
// Walk, already advanced past in the source buffer.
type Field struct {
	Num  protowire.Number
	Type protowire.Type
	// Raw is the literal payload (without the length prefix) for BytesType
	// fields; it is nil for VarintType fields.
	Raw []byte
	// Varint holds the decoded value for VarintType fields.
	Varint uint64
}

// Walk decodes b field-by-field, invoking fn for each varint and
// length-delimited field; fixed32, fixed64 and group fields are skipped
// without calling fn. It stops at the first error either from decoding or
// from fn itself.
func Walk(b []byte, fn func(Field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("wire: invalid tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("wire: invalid varint for field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			if err := fn(Field{Num: num, Type: typ, Varint: v}); err != nil {
				return err
			}
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("wire: invalid bytes for field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			if err := fn(Field{Num: num, Type: typ, Raw: v}); err != nil {
				return err
			}
		case protowire.Fixed32Type:
			_, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return fmt.Errorf("wire: invalid fixed32 for field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		case protowire.Fixed64Type:
			_, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return fmt.Errorf("wire: invalid fixed64 for field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("wire: invalid field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}

func String(f Field) string {
	return string(f.Raw)
}

func Bool(f Field) bool {
	return protowire.DecodeBool(f.Varint)
}
