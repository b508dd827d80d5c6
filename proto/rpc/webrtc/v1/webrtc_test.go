package webrtcpb

import (
	"testing"

	"go.viam.com/test"
)

func TestPacketMessageRoundTrip(t *testing.T) {
	orig := &PacketMessage{Eom: true, Data: []byte("hello world")}
	data, err := orig.Marshal()
	test.That(t, err, test.ShouldBeNil)

	got := &PacketMessage{}
	test.That(t, got.Unmarshal(data), test.ShouldBeNil)
	test.That(t, got.Eom, test.ShouldEqual, orig.Eom)
	test.That(t, got.Data, test.ShouldResemble, orig.Data)
}

func TestMetadataRoundTrip(t *testing.T) {
	orig := &Metadata{MD: map[string]*Strings{
		"authorization": {Values: []string{"Bearer abc"}},
		"x-multi":       {Values: []string{"a", "b", "c"}},
	}}
	data, err := orig.Marshal()
	test.That(t, err, test.ShouldBeNil)

	got := &Metadata{}
	test.That(t, got.Unmarshal(data), test.ShouldBeNil)
	test.That(t, got.MD["authorization"].Values, test.ShouldResemble, []string{"Bearer abc"})
	test.That(t, got.MD["x-multi"].Values, test.ShouldResemble, []string{"a", "b", "c"})
}

func TestRequestHeadersRoundTrip(t *testing.T) {
	orig := &RequestHeaders{
		Method:   "/some.Service/Method",
		Metadata: &Metadata{MD: map[string]*Strings{"k": {Values: []string{"v"}}}},
	}
	data, err := orig.Marshal()
	test.That(t, err, test.ShouldBeNil)

	got := &RequestHeaders{}
	test.That(t, got.Unmarshal(data), test.ShouldBeNil)
	test.That(t, got.Method, test.ShouldEqual, orig.Method)
	test.That(t, got.Metadata.MD["k"].Values, test.ShouldResemble, []string{"v"})
}

func TestRequestOneofRoundTrip(t *testing.T) {
	orig := &Request{
		Stream: &Stream{ID: 42},
		Message: &RequestMessage{
			HasMessage:    true,
			Eos:           true,
			PacketMessage: &PacketMessage{Eom: true, Data: []byte("x")},
		},
	}
	data, err := orig.Marshal()
	test.That(t, err, test.ShouldBeNil)

	got := &Request{}
	test.That(t, got.Unmarshal(data), test.ShouldBeNil)
	test.That(t, got.Stream.ID, test.ShouldEqual, uint64(42))
	test.That(t, got.Headers, test.ShouldBeNil)
	test.That(t, got.Message.HasMessage, test.ShouldBeTrue)
	test.That(t, got.Message.PacketMessage.Data, test.ShouldResemble, []byte("x"))
}

func TestResponseOneofIsMutuallyExclusive(t *testing.T) {
	orig := &Response{
		Stream:   &Stream{ID: 1},
		Trailers: &ResponseTrailers{Metadata: &Metadata{MD: map[string]*Strings{}}},
	}
	data, err := orig.Marshal()
	test.That(t, err, test.ShouldBeNil)

	got := &Response{}
	test.That(t, got.Unmarshal(data), test.ShouldBeNil)
	test.That(t, got.Headers, test.ShouldBeNil)
	test.That(t, got.Message, test.ShouldBeNil)
	test.That(t, got.Trailers, test.ShouldNotBeNil)
}
