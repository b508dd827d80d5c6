package rpc

import (
	"weak"

	"github.com/pion/webrtc/v3"
	"go.uber.org/atomic"

	"go.viam.com/rpc/logging"
)

// baseChannel owns a peer connection and its primary data channel, tracking
// close state and any terminal data-channel error. Both the client channel
// and (if this module grew a server side) a server channel would embed one.
//
// The ICE-connection-state and data-channel-error callbacks below close over
// a weak.Pointer to the baseChannel rather than the baseChannel itself: pion
// holds these callbacks for the lifetime of the peer/data channel, and the
// baseChannel holds the peer/data channel in turn, so a strong back-pointer
// would be a reference cycle. A failed upgrade (the channel has already been
// collected) makes the callback a no-op.
type baseChannel struct {
	logger       logging.Logger
	peerConn     *webrtc.PeerConnection
	dataChannel  *webrtc.DataChannel
	closed       atomic.Bool
	closedReason atomic.Error
}

func newBaseChannel(logger logging.Logger, peerConn *webrtc.PeerConnection, dataChannel *webrtc.DataChannel) *baseChannel {
	ch := &baseChannel{
		logger:      logger,
		peerConn:    peerConn,
		dataChannel: dataChannel,
	}

	weakCh := weak.Make(ch)
	peerConn.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		ch := weakCh.Value()
		if ch == nil {
			return
		}
		ch.onICEConnectionStateChange(state)
	})
	dataChannel.OnError(func(err error) {
		ch := weakCh.Value()
		if ch == nil {
			return
		}
		ch.logger.Errorw("data channel error", "error", err)
		ch.closedReason.Store(err)
	})

	return ch
}

func (ch *baseChannel) onICEConnectionStateChange(state webrtc.ICEConnectionState) {
	if state != webrtc.ICEConnectionStateConnected {
		return
	}
	sctp := ch.peerConn.SCTP()
	if sctp == nil {
		return
	}
	transport := sctp.Transport()
	if transport == nil {
		return
	}
	iceTransport := transport.ICETransport()
	if iceTransport == nil {
		return
	}
	pair, err := iceTransport.GetSelectedCandidatePair()
	if err != nil || pair == nil {
		return
	}
	ch.logger.Infow(logCandidateSelected, "pair", pair.String())
}

// close is idempotent: the first call closes the peer connection and the
// atomic closed flag flips false->true exactly once; later calls are no-ops
// that return nil. closedReason remains readable for the channel's
// lifetime regardless of whether close was ever called.
func (ch *baseChannel) close() error {
	if ch.closed.Swap(true) {
		return nil
	}
	ch.logger.Debug("closing base channel")
	return ch.peerConn.Close()
}

func (ch *baseChannel) isClosed() bool {
	return ch.closed.Load()
}

// terminalError returns the error stored by the data-channel error callback,
// if any. It is not cleared by close: a data-channel error does not itself
// trigger a close, so the reason remains inspectable after the caller
// closes the channel.
func (ch *baseChannel) terminalError() error {
	return ch.closedReason.Load()
}
