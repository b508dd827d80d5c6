package rpc

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pion/webrtc/v3"
	"github.com/pkg/errors"
)

// encodeSDP serializes an SDP session description the way the signalling
// protocol expects it on the wire: JSON, then base64.
func encodeSDP(desc webrtc.SessionDescription) (string, error) {
	b, err := json.Marshal(desc)
	if err != nil {
		return "", errors.Wrap(err, "error marshaling session description")
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// decodeSDP is encodeSDP's inverse.
func decodeSDP(encoded string) (webrtc.SessionDescription, error) {
	var desc webrtc.SessionDescription
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return desc, errors.Wrap(err, "error decoding base64 session description")
	}
	if err := json.Unmarshal(b, &desc); err != nil {
		return desc, errors.Wrap(err, "error unmarshaling session description")
	}
	return desc, nil
}
