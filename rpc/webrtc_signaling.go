package rpc

import (
	"context"
	"io"
	"time"

	"github.com/pion/webrtc/v3"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"google.golang.org/grpc/status"

	"go.viam.com/rpc/logging"
	webrtcpb "go.viam.com/rpc/proto/rpc/webrtc/v1"
)

// signalingTimeout bounds how long the whole offer/answer/ICE exchange may
// take before maybeConnectViaWebRTC gives up and Dial falls back to a direct
// connection.
const signalingTimeout = 5 * time.Second

// signalViaWebRTC drives one SignalingService/Call negotiation to
// completion: it creates an offer, exchanges it (and, for trickle ICE,
// candidates) over the Call stream, and waits for the resulting data channel
// to open. On any failure it closes the peer connection it created and
// returns an error.
func signalViaWebRTC(
	ctx context.Context,
	logger logging.Logger,
	signalClient webrtcpb.SignalingServiceClient,
	config webrtc.Configuration,
	disableTrickle bool,
) (*webrtc.PeerConnection, *webrtc.DataChannel, error) {
	ctx, cancel := context.WithTimeout(ctx, signalingTimeout)
	defer cancel()

	pc, dc, err := newPeerConnectionForClient(logger, config)
	if err != nil {
		return nil, nil, err
	}
	success := false
	defer func() {
		if !success {
			pc.Close()
		}
	}()

	var uuid atomic.String
	var remoteDescriptionSet monotonicFlag
	var localCandidatesDone monotonicFlag
	var sentDoneOrError atomic.Bool

	updateErrors := make(chan error, 1)
	sendUpdate := func(req *webrtcpb.CallUpdateRequest) {
		req.UUID = uuid.Load()
		if req.UUID == "" {
			return
		}
		if _, err := signalClient.CallUpdate(ctx, req); err != nil {
			select {
			case updateErrors <- err:
			default:
			}
		}
	}
	signalDoneOnce := func() {
		if sentDoneOrError.Swap(true) {
			return
		}
		done := true
		sendUpdate(&webrtcpb.CallUpdateRequest{Done: &done})
	}
	signalErrorOnce := func(err error) {
		if sentDoneOrError.Swap(true) {
			return
		}
		st, _ := status.FromError(unknownStatus(err))
		sendUpdate(&webrtcpb.CallUpdateRequest{Error: st.Proto()})
	}

	if !disableTrickle {
		pc.OnICECandidate(func(candidate *webrtc.ICECandidate) {
			if candidate == nil {
				localCandidatesDone.Set()
				if remoteDescriptionSet.IsSet() {
					signalDoneOnce()
				}
				return
			}
			init := candidate.ToJSON()
			// Host candidates are gathered as soon as SetLocalDescription runs,
			// well before the Call response carrying the uuid and remote answer
			// arrives. Sending one before then has no session to attach to,
			// so wait for the remote description (bounded by ctx's
			// signalingTimeout) rather than dropping it.
			if err := remoteDescriptionSet.Wait(ctx); err != nil {
				logger.Debugw("dropping local ICE candidate, remote description never set", "error", err)
				return
			}
			sendUpdate(&webrtcpb.CallUpdateRequest{
				Candidate: iceCandidateToProto(init),
			})
		})
	}

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error creating offer")
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		return nil, nil, errors.Wrap(err, "error setting local description")
	}

	if disableTrickle {
		gatherComplete := webrtc.GatheringCompletePromise(pc)
		select {
		case <-gatherComplete:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
		localCandidatesDone.Set()
		offer = *pc.LocalDescription()
	}

	encodedOffer, err := encodeSDP(offer)
	if err != nil {
		return nil, nil, err
	}

	callCtx, cancelCall := context.WithCancel(ctx)
	defer cancelCall()

	call, err := signalClient.Call(callCtx, &webrtcpb.CallRequest{SDP: encodedOffer, DisableTrickle: disableTrickle})
	if err != nil {
		return nil, nil, errors.Wrap(err, "error opening signalling call")
	}

	dataChannelOpen := &monotonicFlag{}
	dc.OnOpen(func() { dataChannelOpen.Set() })

	recvDone := make(chan error, 1)
	go func() {
		recvDone <- recvSignalingResponses(pc, call, &uuid, &remoteDescriptionSet, &localCandidatesDone, signalDoneOnce)
	}()

	select {
	case err := <-recvDone:
		if err != nil && err != io.EOF {
			signalErrorOnce(err)
			return nil, nil, err
		}
	case err := <-updateErrors:
		signalErrorOnce(err)
		return nil, nil, err
	case <-ctx.Done():
		signalErrorOnce(ctx.Err())
		return nil, nil, ctx.Err()
	}

	if err := waitWithTimeout(ctx, dataChannelOpen, signalingTimeout); err != nil {
		return nil, nil, errors.Wrap(err, "timed out waiting for data channel to open")
	}

	success = true
	return pc, dc, nil
}

// recvSignalingResponses consumes the Call stream until it closes, applying
// the remote SDP answer (first message) and any trickled remote ICE
// candidates (subsequent messages) to pc.
func recvSignalingResponses(
	pc *webrtc.PeerConnection,
	call webrtcpb.SignalingService_CallClient,
	uuid *atomic.String,
	remoteDescriptionSet *monotonicFlag,
	localCandidatesDone *monotonicFlag,
	signalDoneOnce func(),
) error {
	for {
		resp, err := call.Recv()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if resp.UUID != "" {
			uuid.Store(resp.UUID)
		}
		switch {
		case resp.Init != nil:
			answer, err := decodeSDP(resp.Init.SDP)
			if err != nil {
				return err
			}
			if err := pc.SetRemoteDescription(answer); err != nil {
				return errors.Wrap(err, "error setting remote description")
			}
			remoteDescriptionSet.Set()
			if localCandidatesDone.IsSet() {
				signalDoneOnce()
			}
		case resp.Update != nil && resp.Update.Candidate != nil:
			if err := pc.AddICECandidate(iceCandidateFromProto(resp.Update.Candidate)); err != nil {
				return errors.Wrap(err, "error adding remote ICE candidate")
			}
		}
	}
}

func iceCandidateToProto(init webrtc.ICECandidateInit) *webrtcpb.ICECandidate {
	c := &webrtcpb.ICECandidate{Candidate: init.Candidate}
	c.SDPMid = init.SDPMid
	if init.SDPMLineIndex != nil {
		v := uint32(*init.SDPMLineIndex)
		c.SDPMLineIndex = &v
	}
	c.UsernameFragment = init.UsernameFragment
	return c
}

func iceCandidateFromProto(c *webrtcpb.ICECandidate) webrtc.ICECandidateInit {
	init := webrtc.ICECandidateInit{Candidate: c.Candidate}
	init.SDPMid = c.SDPMid
	if c.SDPMLineIndex != nil {
		v := uint16(*c.SDPMLineIndex)
		init.SDPMLineIndex = &v
	}
	init.UsernameFragment = c.UsernameFragment
	return init
}
