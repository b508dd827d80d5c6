package rpc

import (
	"github.com/pion/webrtc/v3"
	"github.com/pkg/errors"

	"go.viam.com/rpc/logging"
	webrtcpb "go.viam.com/rpc/proto/rpc/webrtc/v1"
)

// mergeWebRTCConfig combines the caller's locally configured ICE servers
// with any additional servers the signalling server advertised via
// OptionalWebRTCConfig. Server-provided servers are appended after the
// caller's own, so an explicit local TURN server is always tried first.
func mergeWebRTCConfig(local webrtc.Configuration, additional *webrtcpb.WebRTCConfig) webrtc.Configuration {
	if additional == nil {
		return local
	}
	merged := local
	merged.ICEServers = append([]webrtc.ICEServer(nil), local.ICEServers...)
	for _, s := range additional.AdditionalICEServers {
		merged.ICEServers = append(merged.ICEServers, webrtc.ICEServer{
			URLs:       s.URLs,
			Username:   s.Username,
			Credential: s.Credential,
		})
	}
	return merged
}

// newPeerConnectionForClient constructs a PeerConnection and its single
// ordered, reliable data channel ("data", matching the signalling protocol's
// fixed channel label), ready for offer creation. The channel is negotiated
// out-of-band (Negotiated=true, ID=0): the signalling server creates its
// matching end with the same fixed ID rather than through in-band DCEP, so
// both sides open without waiting on a round trip through the data channel
// itself.
func newPeerConnectionForClient(logger logging.Logger, config webrtc.Configuration) (*webrtc.PeerConnection, *webrtc.DataChannel, error) {
	settingEngine := webrtc.SettingEngine{}
	settingEngine.LoggerFactory = newPionLoggerFactory(logger)

	api := webrtc.NewAPI(webrtc.WithSettingEngine(settingEngine))

	pc, err := api.NewPeerConnection(config)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error creating peer connection")
	}

	ordered := true
	negotiated := true
	id := uint16(0)
	dc, err := pc.CreateDataChannel("data", &webrtc.DataChannelInit{
		Ordered:    &ordered,
		Negotiated: &negotiated,
		ID:         &id,
	})
	if err != nil {
		pc.Close()
		return nil, nil, errors.Wrap(err, "error creating data channel")
	}

	return pc, dc, nil
}
