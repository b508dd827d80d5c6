package webrtcpb

import (
	statuspb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/protobuf/proto"

	"go.viam.com/rpc/proto/wire"
)

// ICECandidate mirrors webrtc.ICECandidateInit for wire transmission.
type ICECandidate struct {
	Candidate        string
	SDPMid           *string
	SDPMLineIndex    *uint32
	UsernameFragment *string
}

func (c *ICECandidate) Marshal() ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	var b []byte
	b = wire.AppendString(b, 1, c.Candidate)
	if c.SDPMid != nil {
		b = wire.AppendString(b, 2, *c.SDPMid)
	}
	if c.SDPMLineIndex != nil {
		b = wire.AppendUint32(b, 3, *c.SDPMLineIndex)
	}
	if c.UsernameFragment != nil {
		b = wire.AppendString(b, 4, *c.UsernameFragment)
	}
	return b, nil
}

func (c *ICECandidate) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		switch f.Num {
		case 1:
			c.Candidate = wire.String(f)
		case 2:
			v := wire.String(f)
			c.SDPMid = &v
		case 3:
			v := uint32(f.Varint)
			c.SDPMLineIndex = &v
		case 4:
			v := wire.String(f)
			c.UsernameFragment = &v
		}
		return nil
	})
}

// ICEServer mirrors webrtc.ICEServer.
type ICEServer struct {
	URLs       []string
	Username   string
	Credential string
}

func (s *ICEServer) Marshal() ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	var b []byte
	for _, u := range s.URLs {
		b = wire.AppendString(b, 1, u)
	}
	b = wire.AppendString(b, 2, s.Username)
	b = wire.AppendString(b, 3, s.Credential)
	return b, nil
}

func (s *ICEServer) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		switch f.Num {
		case 1:
			s.URLs = append(s.URLs, wire.String(f))
		case 2:
			s.Username = wire.String(f)
		case 3:
			s.Credential = wire.String(f)
		}
		return nil
	})
}

// WebRTCConfig extends the client's local ICE configuration with
// server-provided ICE servers.
type WebRTCConfig struct {
	AdditionalICEServers []*ICEServer
}

func (c *WebRTCConfig) Marshal() ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	var b []byte
	for _, s := range c.AdditionalICEServers {
		var err error
		if b, err = wire.AppendMessageField(b, 1, s); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (c *WebRTCConfig) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		if f.Num == 1 {
			s := &ICEServer{}
			if err := s.Unmarshal(f.Raw); err != nil {
				return err
			}
			c.AdditionalICEServers = append(c.AdditionalICEServers, s)
		}
		return nil
	})
}

// OptionalWebRTCConfigRequest is the (empty) request for
// SignalingService/OptionalWebRTCConfig.
type OptionalWebRTCConfigRequest struct{}

func (*OptionalWebRTCConfigRequest) Marshal() ([]byte, error) { return nil, nil }
func (*OptionalWebRTCConfigRequest) Unmarshal([]byte) error   { return nil }

// OptionalWebRTCConfigResponse carries the server's extended ICE config.
type OptionalWebRTCConfigResponse struct {
	Config *WebRTCConfig
}

func (r *OptionalWebRTCConfigResponse) Marshal() ([]byte, error) {
	var b []byte
	var err error
	if b, err = wire.AppendMessageField(b, 1, r.Config); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *OptionalWebRTCConfigResponse) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		if f.Num == 1 {
			r.Config = &WebRTCConfig{}
			return r.Config.Unmarshal(f.Raw)
		}
		return nil
	})
}

// CallRequest opens a signalling exchange with a base64(json(sdp)) offer.
type CallRequest struct {
	SDP            string
	DisableTrickle bool
}

func (r *CallRequest) Marshal() ([]byte, error) {
	var b []byte
	b = wire.AppendString(b, 1, r.SDP)
	b = wire.AppendBool(b, 2, r.DisableTrickle)
	return b, nil
}

func (r *CallRequest) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		switch f.Num {
		case 1:
			r.SDP = wire.String(f)
		case 2:
			r.DisableTrickle = wire.Bool(f)
		}
		return nil
	})
}

// CallResponseInitStage is sent exactly once, first, on the Call stream.
type CallResponseInitStage struct {
	SDP string
}

func (s *CallResponseInitStage) Marshal() ([]byte, error) {
	var b []byte
	b = wire.AppendString(b, 1, s.SDP)
	return b, nil
}

func (s *CallResponseInitStage) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		if f.Num == 1 {
			s.SDP = wire.String(f)
		}
		return nil
	})
}

// CallResponseUpdateStage carries a trickled remote ICE candidate.
type CallResponseUpdateStage struct {
	Candidate *ICECandidate
}

func (s *CallResponseUpdateStage) Marshal() ([]byte, error) {
	var b []byte
	var err error
	if b, err = wire.AppendMessageField(b, 1, s.Candidate); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *CallResponseUpdateStage) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		if f.Num == 1 {
			s.Candidate = &ICECandidate{}
			return s.Candidate.Unmarshal(f.Raw)
		}
		return nil
	})
}

// CallResponse is one message of the server-streaming SignalingService/Call
// RPC; Stage is exactly one of Init (first, once) or Update (zero or more).
type CallResponse struct {
	UUID   string
	Init   *CallResponseInitStage
	Update *CallResponseUpdateStage
}

func (r *CallResponse) Marshal() ([]byte, error) {
	var b []byte
	b = wire.AppendString(b, 1, r.UUID)
	var err error
	switch {
	case r.Init != nil:
		if b, err = wire.AppendMessageField(b, 2, r.Init); err != nil {
			return nil, err
		}
	case r.Update != nil:
		if b, err = wire.AppendMessageField(b, 3, r.Update); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (r *CallResponse) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		switch f.Num {
		case 1:
			r.UUID = wire.String(f)
		case 2:
			r.Init = &CallResponseInitStage{}
			return r.Init.Unmarshal(f.Raw)
		case 3:
			r.Update = &CallResponseUpdateStage{}
			return r.Update.Unmarshal(f.Raw)
		}
		return nil
	})
}

// CallUpdateRequest carries a trickled local candidate, or the terminal
// done/error signal, for the negotiation identified by UUID.
type CallUpdateRequest struct {
	UUID      string
	Candidate *ICECandidate
	Done      *bool
	Error     *statuspb.Status
}

func (r *CallUpdateRequest) Marshal() ([]byte, error) {
	var b []byte
	b = wire.AppendString(b, 1, r.UUID)
	var err error
	switch {
	case r.Candidate != nil:
		if b, err = wire.AppendMessageField(b, 2, r.Candidate); err != nil {
			return nil, err
		}
	case r.Done != nil:
		b = wire.AppendBool(b, 3, *r.Done)
	case r.Error != nil:
		inner, err := proto.Marshal(r.Error)
		if err != nil {
			return nil, err
		}
		b = wire.AppendBytes(b, 4, inner)
	}
	return b, nil
}

func (r *CallUpdateRequest) Unmarshal(b []byte) error {
	return wire.Walk(b, func(f wire.Field) error {
		switch f.Num {
		case 1:
			r.UUID = wire.String(f)
		case 2:
			r.Candidate = &ICECandidate{}
			return r.Candidate.Unmarshal(f.Raw)
		case 3:
			v := wire.Bool(f)
			r.Done = &v
		case 4:
			r.Error = &statuspb.Status{}
			return proto.Unmarshal(f.Raw, r.Error)
		}
		return nil
	})
}

// CallUpdateResponse is the (empty) response for SignalingService/CallUpdate.
type CallUpdateResponse struct{}

func (*CallUpdateResponse) Marshal() ([]byte, error) { return nil, nil }
func (*CallUpdateResponse) Unmarshal([]byte) error   { return nil }
