package rpc

import (
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	webrtcpb "go.viam.com/rpc/proto/rpc/webrtc/v1"
)

// clientStream wraps a baseStream with the two one-shot flags and dispatch
// logic that drive it through Headers -> zero-or-more Message -> Trailers,
// rejecting any frame sequence that violates that order.
type clientStream struct {
	base             *baseStream
	headersReceived  atomic.Bool
	trailersReceived atomic.Bool
}

func newClientStream(base *baseStream) *clientStream {
	return &clientStream{base: base}
}

// onResponse dispatches one decoded inbound Response frame. It reports
// whether the stream should be removed from the owning channel's table
// (true once Trailers arrives).
func (s *clientStream) onResponse(resp *webrtcpb.Response) (removeFromTable bool, err error) {
	switch {
	case resp.Headers != nil:
		return false, s.onHeaders(resp.Headers)
	case resp.Message != nil:
		return false, s.onMessage(resp.Message)
	case resp.Trailers != nil:
		s.onTrailers(resp.Trailers)
		return true, nil
	default:
		// An envelope with no populated oneof arm carries no stream
		// progress; nothing to do.
		return false, nil
	}
}

func (s *clientStream) onHeaders(headers *webrtcpb.ResponseHeaders) error {
	if s.headersReceived.Swap(true) {
		err := errors.Wrap(ErrProtocolViolation, "headers received more than once")
		s.base.closeWithRecvError(err)
		return err
	}
	s.base.body.setHeaders(metadataFromProto(headers.Metadata))
	return nil
}

func (s *clientStream) onMessage(msg *webrtcpb.ResponseMessage) error {
	if !s.headersReceived.Load() {
		err := errors.Wrap(ErrProtocolViolation, "message received before headers")
		s.base.closeWithRecvError(err)
		return err
	}
	frame := s.base.appendPacket(msg.PacketMessage)
	if frame != nil {
		s.base.body.pushMessage(frame)
	}
	return nil
}

func (s *clientStream) onTrailers(trailers *webrtcpb.ResponseTrailers) {
	if s.trailersReceived.Swap(true) {
		return
	}
	md := metadataFromProto(trailers.Metadata)
	code := codes.OK
	msg := ""
	if trailers.Status != nil {
		code = codes.Code(trailers.Status.Code)
		msg = trailers.Status.Message
	}
	if md == nil {
		md = metadata.MD{}
	}
	s.base.body.closeWithTrailers(md, status.New(code, msg))
}

func metadataFromProto(md *webrtcpb.Metadata) metadata.MD {
	if md == nil {
		return metadata.MD{}
	}
	out := metadata.MD{}
	for k, v := range md.MD {
		if v == nil {
			continue
		}
		out[k] = append(out[k], v.Values...)
	}
	return out
}

func metadataToProto(md metadata.MD) *webrtcpb.Metadata {
	out := &webrtcpb.Metadata{MD: map[string]*webrtcpb.Strings{}}
	for k, v := range md {
		out.MD[k] = &webrtcpb.Strings{Values: append([]string(nil), v...)}
	}
	return out
}
