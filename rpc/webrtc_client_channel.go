package rpc

import (
	"math"
	"sync"

	"github.com/pion/webrtc/v3"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"google.golang.org/grpc/metadata"

	"go.viam.com/rpc/logging"
	webrtcpb "go.viam.com/rpc/proto/rpc/webrtc/v1"
)

// maxConcurrentStreams bounds how many streams a single clientChannel will
// multiplex at once. One underlying data channel backs every stream, so an
// unbounded table would let a caller that leaks streams (never draining a
// body to completion) exhaust memory; newStream refuses to allocate past
// this point instead.
const maxConcurrentStreams = 4096

// clientChannel is the client-side gRPC-over-data-channel multiplexer: it
// owns the base channel, allocates stream ids, keeps stream-id -> clientStream
// (and the paired pendingBody) tables, dispatches inbound datagrams, and
// serializes outbound headers/messages with fragmentation.
type clientChannel struct {
	logger    logging.Logger
	base      *baseChannel
	streamIDs atomic.Uint64
	streamsMu sync.Mutex
	streams   map[uint64]*clientStream
	bodies    map[uint64]*pendingBody
	// sendFunc transmits one marshaled Request datagram. It defaults to
	// base.dataChannel.Send; tests substitute a fake to observe outbound
	// frames without a real peer connection.
	sendFunc func([]byte) error
}

func newClientChannel(logger logging.Logger, peerConn *webrtc.PeerConnection, dataChannel *webrtc.DataChannel) *clientChannel {
	cc := &clientChannel{
		logger:   logger,
		base:     newBaseChannel(logger, peerConn, dataChannel),
		streams:  map[uint64]*clientStream{},
		bodies:   map[uint64]*pendingBody{},
		sendFunc: dataChannel.Send,
	}
	dataChannel.OnMessage(func(msg webrtc.DataChannelMessage) {
		if err := cc.onChannelMessage(msg.Data); err != nil {
			cc.logger.Errorw("error handling inbound data channel message", "error", err)
		}
	})
	return cc
}

// newStream allocates a strictly-increasing stream id, registers its
// clientStream and pendingBody in the channel's tables, and returns both the
// id and the body the caller will eventually drain. It fails with
// resourceExhaustedStatus(ErrStreamsExhausted) once maxConcurrentStreams
// streams are live at once, or once the id counter is exhausted; a stream
// leaves the table when its trailers arrive or when it is closed for a
// protocol violation (see onChannelMessage/removeStream), so the table
// limit only triggers if live streams accumulate without reaching either.
func (cc *clientChannel) newStream() (uint64, *pendingBody, error) {
	cc.streamsMu.Lock()
	if len(cc.streams) >= maxConcurrentStreams || cc.streamIDs.Load() == math.MaxUint64 {
		cc.streamsMu.Unlock()
		return 0, nil, resourceExhaustedStatus(ErrStreamsExhausted)
	}

	id := cc.streamIDs.Inc() - 1
	body := newPendingBody()
	base := newBaseStream(id, body)
	stream := newClientStream(base)

	cc.streams[id] = stream
	cc.bodies[id] = body
	cc.streamsMu.Unlock()

	return id, body, nil
}

func (cc *clientChannel) lookupStream(id uint64) *clientStream {
	cc.streamsMu.Lock()
	defer cc.streamsMu.Unlock()
	return cc.streams[id]
}

func (cc *clientChannel) removeStream(id uint64) {
	cc.streamsMu.Lock()
	delete(cc.streams, id)
	delete(cc.bodies, id)
	cc.streamsMu.Unlock()
}

func (cc *clientChannel) closeStreamWithRecvError(id uint64, err error) {
	cc.streamsMu.Lock()
	stream, ok := cc.streams[id]
	delete(cc.streams, id)
	delete(cc.bodies, id)
	cc.streamsMu.Unlock()
	if !ok {
		cc.logger.Errorw("attempted to close stream that was not found", "stream_id", id)
		return
	}
	stream.base.closeWithRecvError(err)
}

func (cc *clientChannel) onChannelMessage(data []byte) error {
	resp := &webrtcpb.Response{}
	if err := resp.Unmarshal(data); err != nil {
		return errors.Wrap(err, "error decoding inbound response")
	}
	if resp.Stream == nil {
		cc.logger.Errorw("no stream associated with response: discarding", "response", resp)
		return nil
	}
	id := resp.Stream.ID

	cc.streamsMu.Lock()
	stream, ok := cc.streams[id]
	cc.streamsMu.Unlock()
	if !ok {
		cc.logger.Errorw("no stream found for id: discarding response", "stream_id", id)
		return nil
	}

	remove, err := stream.onResponse(resp)
	if remove || err != nil {
		cc.removeStream(id)
	}
	return err
}

// writeHeaders sends a single Headers frame for stream as one data-channel
// datagram.
func (cc *clientChannel) writeHeaders(streamID uint64, headers *webrtcpb.RequestHeaders) error {
	req := &webrtcpb.Request{
		Stream:  &webrtcpb.Stream{ID: streamID},
		Headers: headers,
	}
	return cc.send(req)
}

// writeMessage fragments and transmits data (one or more concatenated
// length-prefixed gRPC frames of the form [compressed:1][length:4][payload])
// as a sequence of Message frames, including the was_a_stream heuristic: if
// data contains more than one concatenated gRPC frame, EOS is asserted on
// the last emitted packet even if the caller didn't request it, because a
// caller that bundles a client-streaming request into one buffer has no
// other way to signal it's done.
func (cc *clientChannel) writeMessage(streamID uint64, eos bool, data []byte) error {
	if len(data) < 5 {
		return ErrFramingShort
	}
	hasMessage := len(data) > 0

	firstLen := readUint32BE(data[1:5])
	wasAStream := uint64(firstLen)+5 < uint64(len(data))

	for {
		if len(data) < 5 {
			return ErrFramingShort
		}
		nextMessageLength := readUint32BE(data[1:5])
		data = data[5:]

		for {
			split := min3(maxPacketDataSize(), len(data), int(nextMessageLength))
			toSend := data[:split]
			remaining := data[split:]
			nextMessageLength -= uint32(split)

			eomNow := nextMessageLength == 0 || len(remaining) == 0
			eosNow := false
			if len(remaining) == 0 {
				eosNow = eos || wasAStream
			}

			req := &webrtcpb.Request{
				Stream: &webrtcpb.Stream{ID: streamID},
				Message: &webrtcpb.RequestMessage{
					HasMessage: hasMessage,
					Eos:        eosNow,
					PacketMessage: &webrtcpb.PacketMessage{
						Eom:  eomNow,
						Data: toSend,
					},
				},
			}
			if err := cc.send(req); err != nil {
				return err
			}

			data = remaining
			if nextMessageLength == 0 {
				break
			}
		}
		if len(data) == 0 {
			break
		}
	}
	return nil
}

// writeHalfClose sends a single zero-payload, EOS-marked Message frame. It
// is how streaming CloseSend() signals end-of-stream when the caller's final
// SendMsg (if any) already went out through writeMessage with eos=false:
// unlike the Invoke path, individual streaming SendMsg calls never bundle
// EOS, so half-close is always its own frame. This sidesteps the
// was_a_stream heuristic entirely, which Go's ClientStream doesn't need
// since it already separates SendMsg from CloseSend.
func (cc *clientChannel) writeHalfClose(streamID uint64) error {
	return cc.send(&webrtcpb.Request{
		Stream: &webrtcpb.Stream{ID: streamID},
		Message: &webrtcpb.RequestMessage{
			HasMessage: false,
			Eos:        true,
			PacketMessage: &webrtcpb.PacketMessage{
				Eom: true,
			},
		},
	})
}

func maxPacketDataSize() int {
	return webrtcpb.MaxPacketDataSize
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func readUint32BE(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func (cc *clientChannel) send(req *webrtcpb.Request) error {
	if cc.base.isClosed() {
		return ErrChannelClosed
	}
	data, err := req.Marshal()
	if err != nil {
		return errors.Wrap(err, "error encoding outbound request")
	}
	return cc.sendFunc(data)
}

func (cc *clientChannel) close() error {
	return cc.base.close()
}

// requestHeadersFor builds the RequestHeaders for a unary/streaming call,
// translating outgoing gRPC metadata and an optional per-call deadline.
func requestHeadersFor(method string, md metadata.MD, timeoutMillis int64) *webrtcpb.RequestHeaders {
	headers := &webrtcpb.RequestHeaders{
		Method:   method,
		Metadata: metadataToProto(md),
	}
	if timeoutMillis > 0 {
		headers.Timeout = durationFromMillis(timeoutMillis)
	}
	return headers
}
