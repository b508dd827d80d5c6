package rpc

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/proto"
)

// ClientConn is the polymorphic call surface every Dial result satisfies,
// whether the underlying transport is a direct grpc.ClientConn or a WebRTC
// data channel multiplexer. It is grpc.ClientConnInterface plus Close,
// matching how the rest of this ecosystem already treats *grpc.ClientConn as
// the canonical "thing you can Invoke/NewStream on" rather than inventing a
// parallel abstraction.
type ClientConn interface {
	grpc.ClientConnInterface
	Close() error
}

// directClientConn is the ClientConn backing ordinary TCP+TLS dials: it
// forwards everything to the real grpc.ClientConn, asserting no WebRTC
// substitution occurred.
type directClientConn struct {
	*grpc.ClientConn
}

func (c *directClientConn) Close() error {
	return c.ClientConn.Close()
}

// webrtcClientConn is the ClientConn backing a negotiated WebRTC data
// channel: Invoke and NewStream translate grpc's call shape into the
// Headers/Message/Trailers envelope multiplexed by clientChannel.
type webrtcClientConn struct {
	channel *clientChannel
}

var _ ClientConn = (*webrtcClientConn)(nil)

func (c *webrtcClientConn) Close() error {
	return c.channel.close()
}

// Invoke implements a unary call: the request is marshaled and framed as a
// single gRPC message with eos asserted, sent alongside headers, and the
// single reply message is unmarshaled from the first inbound frame.
func (c *webrtcClientConn) Invoke(ctx context.Context, method string, args, reply interface{}, opts ...grpc.CallOption) error {
	reqMsg, ok := args.(proto.Message)
	if !ok {
		return errors.Errorf("rpc: webrtc transport requires a proto.Message request, got %T", args)
	}
	replyMsg, ok := reply.(proto.Message)
	if !ok {
		return errors.Errorf("rpc: webrtc transport requires a proto.Message reply, got %T", reply)
	}

	streamID, body, err := c.channel.newStream()
	if err != nil {
		return err
	}

	md, _ := metadata.FromOutgoingContext(ctx)
	timeoutMillis := timeoutMillisFromContext(ctx)
	if err := c.channel.writeHeaders(streamID, requestHeadersFor(method, md, timeoutMillis)); err != nil {
		return err
	}

	payload, err := proto.Marshal(reqMsg)
	if err != nil {
		return errors.Wrap(err, "error marshaling request")
	}
	frame := composeGRPCFrame(payload)
	if err := c.channel.writeMessage(streamID, true, frame); err != nil {
		return err
	}

	if _, err := body.header(ctx); err != nil {
		return err
	}

	frame, err, ok = body.recv(ctx)
	if err != nil {
		return err
	}
	if ok {
		if len(frame) < 5 {
			return ErrFramingShort
		}
		if err := proto.Unmarshal(frame[5:], replyMsg); err != nil {
			return errors.Wrap(err, "error unmarshaling response")
		}
	}

	// Drain until trailers close the body, surfacing any non-OK status.
	for {
		_, err, ok = body.recv(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// NewStream implements streaming calls: headers go out immediately, and the
// returned grpc.ClientStream translates SendMsg/RecvMsg/CloseSend into
// writeMessage/writeHalfClose/body.recv calls on the underlying stream.
func (c *webrtcClientConn) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	streamID, body, err := c.channel.newStream()
	if err != nil {
		return nil, err
	}

	md, _ := metadata.FromOutgoingContext(ctx)
	timeoutMillis := timeoutMillisFromContext(ctx)
	if err := c.channel.writeHeaders(streamID, requestHeadersFor(method, md, timeoutMillis)); err != nil {
		return nil, err
	}

	return &webrtcCallStream{
		ctx:      ctx,
		channel:  c.channel,
		streamID: streamID,
		body:     body,
		desc:     desc,
	}, nil
}

// webrtcCallStream is the caller-facing grpc.ClientStream for a WebRTC
// multiplexed call.
type webrtcCallStream struct {
	ctx      context.Context
	channel  *clientChannel
	streamID uint64
	body     *pendingBody
	desc     *grpc.StreamDesc
}

var _ grpc.ClientStream = (*webrtcCallStream)(nil)

func (s *webrtcCallStream) Header() (metadata.MD, error) {
	return s.body.header(s.ctx)
}

func (s *webrtcCallStream) Trailer() metadata.MD {
	return s.body.trailers
}

// CloseSend signals end-of-stream without bundling it onto a data frame,
// since a streaming caller's SendMsg calls arrive one gRPC message at a time
// and never concatenate multiple frames into one buffer.
func (s *webrtcCallStream) CloseSend() error {
	return s.channel.writeHalfClose(s.streamID)
}

func (s *webrtcCallStream) Context() context.Context {
	return s.ctx
}

func (s *webrtcCallStream) SendMsg(m interface{}) error {
	msg, ok := m.(proto.Message)
	if !ok {
		return errors.Errorf("rpc: webrtc transport requires a proto.Message, got %T", m)
	}
	payload, err := proto.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "error marshaling message")
	}
	return s.channel.writeMessage(s.streamID, false, composeGRPCFrame(payload))
}

func (s *webrtcCallStream) RecvMsg(m interface{}) error {
	msg, ok := m.(proto.Message)
	if !ok {
		return errors.Errorf("rpc: webrtc transport requires a proto.Message, got %T", m)
	}
	frame, err, ok := s.body.recv(s.ctx)
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	if len(frame) < 5 {
		return ErrFramingShort
	}
	return proto.Unmarshal(frame[5:], msg)
}

// timeoutMillisFromContext reports the remaining deadline on ctx in
// milliseconds, or 0 if ctx carries no deadline.
func timeoutMillisFromContext(ctx context.Context) int64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	remaining := int64(deadline.Sub(time.Now()))
	if remaining <= 0 {
		return 0
	}
	return remaining / int64(1e6)
}
