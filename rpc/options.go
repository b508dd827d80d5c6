package rpc

import "github.com/pion/webrtc/v3"

// dialOptions collects the effect of every DialOption applied to a Dial call.
type dialOptions struct {
	insecure               bool
	allowInsecureDowngrade bool
	disableMDNS            bool
	disableWebRTC          bool
	externalAuthAddr       string
	creds                  *entityCredentials
	webrtcConfig           webrtc.Configuration
	disableTrickleICE      bool
}

// DialOption configures a Dial call. Options compose the same way
// grpc.DialOption does: each is a small closure applied in order over a
// zero-valued dialOptions.
type DialOption func(*dialOptions)

// WithInsecure dials without TLS.
func WithInsecure() DialOption {
	return func(o *dialOptions) { o.insecure = true }
}

// WithAllowInsecureDowngrade permits falling back to an insecure connection
// if the initial TLS dial fails. Without it a failed TLS dial is terminal.
func WithAllowInsecureDowngrade() DialOption {
	return func(o *dialOptions) { o.allowInsecureDowngrade = true }
}

// WithDisableMDNS skips the mDNS discovery step entirely, dialing the
// configured address directly.
func WithDisableMDNS() DialOption {
	return func(o *dialOptions) { o.disableMDNS = true }
}

// WithDisableWebRTC skips WebRTC negotiation, always returning a direct
// gRPC connection.
func WithDisableWebRTC() DialOption {
	return func(o *dialOptions) { o.disableWebRTC = true }
}

// WithEntityCredentials authenticates as entity using creds before dialing
// the data-plane connection.
func WithEntityCredentials(entity string, creds Credentials) DialOption {
	return func(o *dialOptions) {
		o.creds = &entityCredentials{Entity: entity, Credentials: creds}
	}
}

// WithCredentials is WithEntityCredentials with the entity defaulted to the
// dial target's authority at Dial time.
func WithCredentials(creds Credentials) DialOption {
	return func(o *dialOptions) {
		o.creds = &entityCredentials{Credentials: creds}
	}
}

// WithExternalAuth directs the auth token exchange at a different address
// than the data-plane target (e.g. a shared auth server fronting several
// robots).
func WithExternalAuth(addr string) DialOption {
	return func(o *dialOptions) { o.externalAuthAddr = addr }
}

// WithWebRTCConfiguration sets additional ICE servers merged with whatever
// the signalling server reports via OptionalWebRTCConfig.
func WithWebRTCConfiguration(config webrtc.Configuration) DialOption {
	return func(o *dialOptions) { o.webrtcConfig = config }
}

// WithDisableTrickleICE forces the non-trickle signalling path, where the
// full local ICE candidate set is gathered before the offer is sent.
func WithDisableTrickleICE() DialOption {
	return func(o *dialOptions) { o.disableTrickleICE = true }
}

func newDialOptions(opts ...DialOption) *dialOptions {
	o := &dialOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
