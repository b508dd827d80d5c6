package rpc

import (
	"context"
	"testing"

	"go.viam.com/test"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.viam.com/rpc/logging"
	webrtcpb "go.viam.com/rpc/proto/rpc/webrtc/v1"
)

// newTestClientChannel returns a clientChannel with no real peer connection,
// capturing every outbound Request it would have sent over the data channel.
func newTestClientChannel(t *testing.T) (*clientChannel, *[]*webrtcpb.Request) {
	t.Helper()
	var sent []*webrtcpb.Request
	cc := &clientChannel{
		logger:  logging.NewTestLogger(t),
		base:    &baseChannel{logger: logging.NewTestLogger(t)},
		streams: map[uint64]*clientStream{},
		bodies:  map[uint64]*pendingBody{},
	}
	cc.sendFunc = func(data []byte) error {
		req := &webrtcpb.Request{}
		if err := req.Unmarshal(data); err != nil {
			return err
		}
		sent = append(sent, req)
		return nil
	}
	return cc, &sent
}

func grpcFrame(payload []byte) []byte {
	return composeGRPCFrame(payload)
}

func TestWriteMessageSingleFrame(t *testing.T) {
	cc, sent := newTestClientChannel(t)
	payload := []byte("hello")
	frame := grpcFrame(payload)

	err := cc.writeMessage(7, true, frame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(*sent), test.ShouldEqual, 1)

	msg := (*sent)[0].Message
	test.That(t, msg, test.ShouldNotBeNil)
	test.That(t, msg.HasMessage, test.ShouldBeTrue)
	test.That(t, msg.Eos, test.ShouldBeTrue)
	test.That(t, msg.PacketMessage.Eom, test.ShouldBeTrue)
	test.That(t, msg.PacketMessage.Data, test.ShouldResemble, payload)
}

func TestWriteMessageShortInputFails(t *testing.T) {
	cc, sent := newTestClientChannel(t)

	for _, data := range [][]byte{nil, {}, {0}, {0, 0}, {0, 0, 0, 0}} {
		err := cc.writeMessage(1, false, data)
		test.That(t, err, test.ShouldEqual, ErrFramingShort)
	}
	test.That(t, len(*sent), test.ShouldEqual, 0)
}

func TestWriteMessageConcatenatedFramesAssertEOS(t *testing.T) {
	cc, sent := newTestClientChannel(t)

	data := append(grpcFrame([]byte("first")), grpcFrame([]byte("second"))...)
	err := cc.writeMessage(3, false, data)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(*sent), test.ShouldEqual, 2)

	first := (*sent)[0].Message
	test.That(t, first.PacketMessage.Data, test.ShouldResemble, []byte("first"))
	test.That(t, first.Eos, test.ShouldBeFalse)

	second := (*sent)[1].Message
	test.That(t, second.PacketMessage.Data, test.ShouldResemble, []byte("second"))
	// The caller bundled two gRPC frames into one buffer without requesting
	// eos: the was_a_stream heuristic still asserts it on the last packet,
	// since a caller that concatenates client-streaming messages has no
	// other way to signal completion.
	test.That(t, second.Eos, test.ShouldBeTrue)
}

func TestWriteMessageFragmentsAtMaxPacketSize(t *testing.T) {
	cc, sent := newTestClientChannel(t)

	payload := make([]byte, 40000)
	for i := range payload {
		payload[i] = byte(i)
	}
	frame := grpcFrame(payload)

	err := cc.writeMessage(9, true, frame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(*sent), test.ShouldEqual, 3)

	wantSizes := []int{16373, 16373, 40000 - 2*16373}
	var reassembled []byte
	for i, req := range *sent {
		pkt := req.Message.PacketMessage
		test.That(t, len(pkt.Data), test.ShouldEqual, wantSizes[i])
		reassembled = append(reassembled, pkt.Data...)
		isLast := i == len(*sent)-1
		test.That(t, pkt.Eom, test.ShouldEqual, isLast)
		test.That(t, req.Message.Eos, test.ShouldEqual, isLast)
	}
	test.That(t, reassembled, test.ShouldResemble, payload)
}

func TestWriteMessageExactBoundary(t *testing.T) {
	cc, sent := newTestClientChannel(t)

	payload := make([]byte, 16373)
	err := cc.writeMessage(1, true, grpcFrame(payload))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(*sent), test.ShouldEqual, 1)
	test.That(t, (*sent)[0].Message.PacketMessage.Eom, test.ShouldBeTrue)

	cc2, sent2 := newTestClientChannel(t)
	payload2 := make([]byte, 16374)
	err = cc2.writeMessage(1, true, grpcFrame(payload2))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(*sent2), test.ShouldEqual, 2)
	test.That(t, len((*sent2)[0].Message.PacketMessage.Data), test.ShouldEqual, 16373)
	test.That(t, len((*sent2)[1].Message.PacketMessage.Data), test.ShouldEqual, 1)
}

func TestWriteHalfClose(t *testing.T) {
	cc, sent := newTestClientChannel(t)

	err := cc.writeHalfClose(42)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(*sent), test.ShouldEqual, 1)

	req := (*sent)[0]
	test.That(t, req.Stream.ID, test.ShouldEqual, uint64(42))
	test.That(t, req.Message.HasMessage, test.ShouldBeFalse)
	test.That(t, req.Message.Eos, test.ShouldBeTrue)
	test.That(t, req.Message.PacketMessage.Eom, test.ShouldBeTrue)
}

func TestWriteAfterCloseFails(t *testing.T) {
	cc, _ := newTestClientChannel(t)
	cc.base.closed.Store(true)

	err := cc.writeHalfClose(1)
	test.That(t, err, test.ShouldEqual, ErrChannelClosed)
}

func TestNewStreamAllocatesIncreasingIDs(t *testing.T) {
	cc, _ := newTestClientChannel(t)

	id1, body1, err := cc.newStream()
	test.That(t, err, test.ShouldBeNil)
	id2, body2, err := cc.newStream()
	test.That(t, err, test.ShouldBeNil)

	test.That(t, id2, test.ShouldEqual, id1+1)
	test.That(t, cc.lookupStream(id1), test.ShouldNotBeNil)
	test.That(t, cc.lookupStream(id2), test.ShouldNotBeNil)
	test.That(t, body1, test.ShouldNotBeNil)
	test.That(t, body2, test.ShouldNotBeNil)

	cc.removeStream(id1)
	test.That(t, cc.lookupStream(id1), test.ShouldBeNil)
}

func TestNewStreamFailsWhenTableFull(t *testing.T) {
	cc, _ := newTestClientChannel(t)
	for i := 0; i < maxConcurrentStreams; i++ {
		_, _, err := cc.newStream()
		test.That(t, err, test.ShouldBeNil)
	}

	_, body, err := cc.newStream()
	test.That(t, body, test.ShouldBeNil)
	test.That(t, err, test.ShouldNotBeNil)
	st, ok := status.FromError(err)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, st.Code(), test.ShouldEqual, codes.ResourceExhausted)

	id := cc.streamIDs.Load()
	cc.removeStream(id - 1)
	_, _, err = cc.newStream()
	test.That(t, err, test.ShouldBeNil)
}

func TestOnChannelMessageDispatchesToStream(t *testing.T) {
	cc, _ := newTestClientChannel(t)
	id, body, err := cc.newStream()
	test.That(t, err, test.ShouldBeNil)

	headersResp := &webrtcpb.Response{
		Stream:  &webrtcpb.Stream{ID: id},
		Headers: &webrtcpb.ResponseHeaders{Metadata: &webrtcpb.Metadata{MD: map[string]*webrtcpb.Strings{}}},
	}
	data, err := headersResp.Marshal()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cc.onChannelMessage(data), test.ShouldBeNil)

	_, err = body.header(context.Background())
	test.That(t, err, test.ShouldBeNil)

	trailersResp := &webrtcpb.Response{
		Stream:   &webrtcpb.Stream{ID: id},
		Trailers: &webrtcpb.ResponseTrailers{},
	}
	data, err = trailersResp.Marshal()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cc.onChannelMessage(data), test.ShouldBeNil)

	// Trailers removes the stream from the table.
	test.That(t, cc.lookupStream(id), test.ShouldBeNil)
}
