package rpc

import (
	"testing"

	"github.com/pion/webrtc/v3"
	"go.viam.com/test"
)

func TestEncodeDecodeSDPRoundTrip(t *testing.T) {
	desc := webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  "v=0\r\no=- 0 0 IN IP4 127.0.0.1\r\n",
	}

	encoded, err := encodeSDP(desc)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, encoded, test.ShouldNotEqual, "")

	decoded, err := decodeSDP(encoded)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, decoded, test.ShouldResemble, desc)
}

func TestDecodeSDPInvalidBase64(t *testing.T) {
	_, err := decodeSDP("not valid base64!!!")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDecodeSDPInvalidJSON(t *testing.T) {
	// base64("not json") decodes fine but fails JSON unmarshaling.
	_, err := decodeSDP("bm90IGpzb24=")
	test.That(t, err, test.ShouldNotBeNil)
}
