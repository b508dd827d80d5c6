package rpc

import (
	"go.uber.org/atomic"

	webrtcpb "go.viam.com/rpc/proto/rpc/webrtc/v1"
)

// baseStream is the per-logical-stream state shared by client (and, in a
// full implementation, server) streams: an id, the sink feeding the caller's
// response body, a reassembly buffer for fragmented messages, and a closed
// flag with an optional terminal error.
type baseStream struct {
	id           uint64
	body         *pendingBody
	packetBuffer []byte
	closed       atomic.Bool
	closedReason atomic.Error
}

func newBaseStream(id uint64, body *pendingBody) *baseStream {
	return &baseStream{id: id, body: body}
}

// closeWithRecvError marks the stream closed with err and propagates a
// synthetic unknown status to the body's consumer. It is used for stream
// protocol violations.
func (s *baseStream) closeWithRecvError(err error) {
	if s.closed.Swap(true) {
		return
	}
	s.closedReason.Store(err)
	s.body.closeWithError(unknownStatus(err))
}

func (s *baseStream) isClosed() bool {
	return s.closed.Load()
}

// appendPacket buffers one inbound packet fragment, returning the composed
// gRPC frame (5-byte header + accumulated payload) once eom is true.
func (s *baseStream) appendPacket(pkt *webrtcpb.PacketMessage) []byte {
	if pkt == nil {
		return nil
	}
	if len(pkt.Data) > 0 {
		s.packetBuffer = append(s.packetBuffer, pkt.Data...)
	}
	if !pkt.Eom {
		return nil
	}
	frame := composeGRPCFrame(s.packetBuffer)
	s.packetBuffer = nil
	return frame
}

// composeGRPCFrame prepends the standard 5-byte gRPC frame header
// (uncompressed, big-endian length) to payload.
func composeGRPCFrame(payload []byte) []byte {
	frame := make([]byte, 5+len(payload))
	frame[0] = 0
	putUint32BE(frame[1:5], uint32(len(payload)))
	copy(frame[5:], payload)
	return frame
}

func putUint32BE(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
