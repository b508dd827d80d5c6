// Package webrtcpb contains the wire messages for the WebRTC signalling
// service (proto.rpc.webrtc.v1.SignalingService) and the data-channel
// Request/Response envelope multiplexed over it. As with proto/rpc/v1, these
// are hand-maintained stand-ins for protoc-gen-go output; the .proto schema
// itself is out of scope for this module (spec.md §1).
package webrtcpb

import (
	statuspb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"

	"go.viam.com/rpc/proto/wire"
)

// Stream identifies one logical multiplexed call by a monotonically
// increasing id.
type Stream struct {
	ID uint64
}

func (s *Stream) Marshal() ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	var b []byte
	b = wire.AppendUint64(b, 1, s.ID)
	return b, nil
}

func (s *Stream) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		if f.Num == 1 {
			s.ID = f.Varint
		}
		return nil
	})
}

// Strings is a repeated-string value, used as the value type of Metadata.
type Strings struct {
	Values []string
}

func (s *Strings) Marshal() ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	var b []byte
	for _, v := range s.Values {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, v)
	}
	return b, nil
}

func (s *Strings) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		if f.Num == 1 {
			s.Values = append(s.Values, wire.String(f))
		}
		return nil
	})
}

// Metadata mirrors gRPC metadata.MD: a map of header name to repeated values.
type Metadata struct {
	MD map[string]*Strings
}

func (m *Metadata) Marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	var b []byte
	for k, v := range m.MD {
		entry, err := marshalMapEntry(k, v)
		if err != nil {
			return nil, err
		}
		b = wire.AppendBytes(b, 1, entry)
	}
	return b, nil
}

func marshalMapEntry(k string, v *Strings) ([]byte, error) {
	var b []byte
	b = wire.AppendString(b, 1, k)
	var err error
	if b, err = wire.AppendMessageField(b, 2, v); err != nil {
		return nil, err
	}
	return b, nil
}

func (m *Metadata) Unmarshal(b []byte) error {
	m.MD = map[string]*Strings{}
	return wire.Walk(b, func(f wire.Field) error {
		if f.Num != 1 {
			return nil
		}
		var key string
		val := &Strings{}
		if err := wire.Walk(f.Raw, func(ef wire.Field) error {
			switch ef.Num {
			case 1:
				key = wire.String(ef)
			case 2:
				return val.Unmarshal(ef.Raw)
			}
			return nil
		}); err != nil {
			return err
		}
		m.MD[key] = val
		return nil
	})
}

// RequestHeaders is the first frame sent for a multiplexed stream.
type RequestHeaders struct {
	Method   string
	Metadata *Metadata
	Timeout  *durationpb.Duration
}

func (r *RequestHeaders) Marshal() ([]byte, error) {
	var b []byte
	b = wire.AppendString(b, 1, r.Method)
	var err error
	if b, err = wire.AppendMessageField(b, 2, r.Metadata); err != nil {
		return nil, err
	}
	if r.Timeout != nil {
		inner, err := proto.Marshal(r.Timeout)
		if err != nil {
			return nil, err
		}
		b = wire.AppendBytes(b, 3, inner)
	}
	return b, nil
}

func (r *RequestHeaders) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		switch f.Num {
		case 1:
			r.Method = wire.String(f)
		case 2:
			r.Metadata = &Metadata{}
			return r.Metadata.Unmarshal(f.Raw)
		case 3:
			r.Timeout = &durationpb.Duration{}
			return proto.Unmarshal(f.Raw, r.Timeout)
		}
		return nil
	})
}

// PacketMessage is one fragment of a gRPC message payload, bounded by
// MaxPacketDataSize.
type PacketMessage struct {
	Eom  bool
	Data []byte
}

// MaxPacketDataSize is the maximum payload carried by a single PacketMessage,
// leaving headroom for data-channel/SCTP/ICE framing overhead.
const MaxPacketDataSize = 16373

func (p *PacketMessage) Marshal() ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	var b []byte
	b = wire.AppendBool(b, 1, p.Eom)
	b = wire.AppendBytes(b, 2, p.Data)
	return b, nil
}

func (p *PacketMessage) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		switch f.Num {
		case 1:
			p.Eom = wire.Bool(f)
		case 2:
			p.Data = append([]byte(nil), f.Raw...)
		}
		return nil
	})
}

// RequestMessage carries one outbound packet of a stream's body.
type RequestMessage struct {
	HasMessage    bool
	Eos           bool
	PacketMessage *PacketMessage
}

func (m *RequestMessage) Marshal() ([]byte, error) {
	var b []byte
	b = wire.AppendBool(b, 1, m.HasMessage)
	b = wire.AppendBool(b, 2, m.Eos)
	var err error
	if b, err = wire.AppendMessageField(b, 3, m.PacketMessage); err != nil {
		return nil, err
	}
	return b, nil
}

func (m *RequestMessage) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		switch f.Num {
		case 1:
			m.HasMessage = wire.Bool(f)
		case 2:
			m.Eos = wire.Bool(f)
		case 3:
			m.PacketMessage = &PacketMessage{}
			return m.PacketMessage.Unmarshal(f.Raw)
		}
		return nil
	})
}

// Request is the client->server envelope multiplexed over the data channel.
type Request struct {
	Stream  *Stream
	Headers *RequestHeaders
	Message *RequestMessage
}

func (r *Request) Marshal() ([]byte, error) {
	var b []byte
	var err error
	if b, err = wire.AppendMessageField(b, 1, r.Stream); err != nil {
		return nil, err
	}
	if r.Headers != nil {
		if b, err = wire.AppendMessageField(b, 2, r.Headers); err != nil {
			return nil, err
		}
	}
	if r.Message != nil {
		if b, err = wire.AppendMessageField(b, 3, r.Message); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (r *Request) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		switch f.Num {
		case 1:
			r.Stream = &Stream{}
			return r.Stream.Unmarshal(f.Raw)
		case 2:
			r.Headers = &RequestHeaders{}
			return r.Headers.Unmarshal(f.Raw)
		case 3:
			r.Message = &RequestMessage{}
			return r.Message.Unmarshal(f.Raw)
		}
		return nil
	})
}

// ResponseHeaders carries server->client metadata for a stream.
type ResponseHeaders struct {
	Metadata *Metadata
}

func (h *ResponseHeaders) Marshal() ([]byte, error) {
	var b []byte
	var err error
	if b, err = wire.AppendMessageField(b, 1, h.Metadata); err != nil {
		return nil, err
	}
	return b, nil
}

func (h *ResponseHeaders) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		if f.Num == 1 {
			h.Metadata = &Metadata{}
			return h.Metadata.Unmarshal(f.Raw)
		}
		return nil
	})
}

// ResponseMessage carries one inbound packet of a stream's body.
type ResponseMessage struct {
	PacketMessage *PacketMessage
}

func (m *ResponseMessage) Marshal() ([]byte, error) {
	var b []byte
	var err error
	if b, err = wire.AppendMessageField(b, 1, m.PacketMessage); err != nil {
		return nil, err
	}
	return b, nil
}

func (m *ResponseMessage) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		if f.Num == 1 {
			m.PacketMessage = &PacketMessage{}
			return m.PacketMessage.Unmarshal(f.Raw)
		}
		return nil
	})
}

// ResponseTrailers terminates a stream with a final status and metadata.
type ResponseTrailers struct {
	Status   *statuspb.Status
	Metadata *Metadata
}

func (t *ResponseTrailers) Marshal() ([]byte, error) {
	var b []byte
	if t.Status != nil {
		inner, err := proto.Marshal(t.Status)
		if err != nil {
			return nil, err
		}
		b = wire.AppendBytes(b, 1, inner)
	}
	var err error
	if b, err = wire.AppendMessageField(b, 2, t.Metadata); err != nil {
		return nil, err
	}
	return b, nil
}

func (t *ResponseTrailers) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		switch f.Num {
		case 1:
			t.Status = &statuspb.Status{}
			return proto.Unmarshal(f.Raw, t.Status)
		case 2:
			t.Metadata = &Metadata{}
			return t.Metadata.Unmarshal(f.Raw)
		}
		return nil
	})
}

// Response is the server->client envelope multiplexed over the data channel.
type Response struct {
	Stream   *Stream
	Headers  *ResponseHeaders
	Message  *ResponseMessage
	Trailers *ResponseTrailers
}

func (r *Response) Marshal() ([]byte, error) {
	var b []byte
	var err error
	if b, err = wire.AppendMessageField(b, 1, r.Stream); err != nil {
		return nil, err
	}
	switch {
	case r.Headers != nil:
		if b, err = wire.AppendMessageField(b, 2, r.Headers); err != nil {
			return nil, err
		}
	case r.Message != nil:
		if b, err = wire.AppendMessageField(b, 3, r.Message); err != nil {
			return nil, err
		}
	case r.Trailers != nil:
		if b, err = wire.AppendMessageField(b, 4, r.Trailers); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (r *Response) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		switch f.Num {
		case 1:
			r.Stream = &Stream{}
			return r.Stream.Unmarshal(f.Raw)
		case 2:
			r.Headers = &ResponseHeaders{}
			return r.Headers.Unmarshal(f.Raw)
		case 3:
			r.Message = &ResponseMessage{}
			return r.Message.Unmarshal(f.Raw)
		case 4:
			r.Trailers = &ResponseTrailers{}
			return r.Trailers.Unmarshal(f.Raw)
		}
		return nil
	})
}
