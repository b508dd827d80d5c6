package rpc

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"go.viam.com/rpc/logging"
	webrtcpb "go.viam.com/rpc/proto/rpc/webrtc/v1"
)

const (
	mdnsTimeout = 5 * time.Second
	authTimeout = 10 * time.Second
)

// Dial establishes a ClientConn to address, transparently substituting a
// WebRTC data channel transport for the underlying gRPC connection when
// negotiation succeeds. Failure to negotiate WebRTC is not fatal: Dial falls
// back to the direct connection it already has.
func Dial(ctx context.Context, address string, logger logging.Logger, opts ...DialOption) (ClientConn, error) {
	o := newDialOptions(opts...)

	target, err := parseTarget(address)
	if err != nil {
		return nil, err
	}
	if o.insecure {
		target.Scheme = SchemePlain
	}

	dialTarget := target
	if !o.disableMDNS && target.IsLocal() {
		logger.Info(logMDNSAttempt)
		mctx, cancel := context.WithTimeout(ctx, mdnsTimeout)
		addr, mdnsErr := resolveViaMDNS(mctx, target.Authority)
		cancel()
		if mdnsErr != nil {
			logger.Debugw("mdns resolution failed", "error", mdnsErr)
		} else if addr != "" {
			logger.Infow(logMDNSFound, "address", addr)
			dialTarget = target.withAuthority(addr, target.Scheme)
		}
	}

	var perRPC credentials.PerRPCCredentials
	if o.creds != nil {
		entity := o.creds.Entity
		if entity == "" {
			entity = target.Authority
		}
		authAddr := dialTarget
		if o.externalAuthAddr != "" {
			authAddr, err = parseTarget(o.externalAuthAddr)
			if err != nil {
				return nil, err
			}
		}

		logger.Info(logAcquiringAuth)
		authConn, err := dialDirect(ctx, authAddr, logger, o, nil)
		if err != nil {
			return nil, errors.Wrap(err, "error dialing for authentication")
		}
		authCtx, cancel := context.WithTimeout(ctx, authTimeout)
		token, err := authenticate(authCtx, authConn, &entityCredentials{Entity: entity, Credentials: o.creds.Credentials})
		cancel()
		authConn.Close()
		if err != nil {
			return nil, errors.Wrap(err, "error authenticating")
		}
		logger.Info(logAcquiredAuth)
		perRPC = &bearerTokenCredentials{accessToken: token, requireTransportSecurity: dialTarget.Scheme == SchemeSecure}
	}

	logger.Infow(logDialing, "address", dialTarget.String())
	conn, err := dialDirect(ctx, dialTarget, logger, o, perRPC)
	if err != nil {
		return nil, err
	}
	if dialTarget.Authority != target.Authority {
		logger.Info(logMDNSConnected)
	}
	logger.Info(logConnectedGRPC)

	if o.disableWebRTC {
		return &directClientConn{conn}, nil
	}

	signalingConn := conn
	if signalAuthority := inferSignalingAddress(dialTarget.Authority); signalAuthority != dialTarget.Authority {
		signalTarget := dialTarget.withAuthority(signalAuthority, dialTarget.Scheme)
		var dialErr error
		signalingConn, dialErr = dialDirect(ctx, signalTarget, logger, o, perRPC)
		if dialErr != nil {
			logger.Debugw("error dialing inferred signalling address, falling back to direct connection", "error", dialErr)
			return &directClientConn{conn}, nil
		}
	}

	channel, err := maybeConnectViaWebRTC(ctx, logger, signalingConn, o)
	if err != nil {
		logger.Debugw("webrtc negotiation failed, continuing with direct connection", "error", err)
		return &directClientConn{conn}, nil
	}
	logger.Info(logConnectedWebRTC)
	// The data channel replaces conn as this ClientConn's transport, but the
	// gRPC connection(s) used to reach SignalingService stay open for the
	// lifetime of the channel and are closed alongside it.
	signalingConns := []*grpc.ClientConn{conn}
	if signalingConn != conn {
		signalingConns = append(signalingConns, signalingConn)
	}
	return &webrtcClientConnWithSignalingConn{webrtcClientConn: webrtcClientConn{channel: channel}, signalingConns: signalingConns}, nil
}

// dialDirect opens a plain (non-WebRTC) grpc.ClientConn to target. If
// allowInsecureDowngrade is set and the TLS dial fails, it retries in
// cleartext.
func dialDirect(ctx context.Context, target *Target, logger logging.Logger, o *dialOptions, perRPC credentials.PerRPCCredentials) (*grpc.ClientConn, error) {
	dialOpts := grpcDialOptions(target, logger, perRPC)

	conn, err := grpc.DialContext(ctx, target.Authority, dialOpts...)
	if err != nil {
		if target.Scheme == SchemeSecure && o.allowInsecureDowngrade {
			logger.Debugw("secure dial failed, retrying insecure", "error", err)
			plain := target.withAuthority(target.Authority, SchemePlain)
			conn, err = grpc.DialContext(ctx, plain.Authority, grpcDialOptions(plain, logger, perRPC)...)
			if err != nil {
				return nil, errors.Wrap(err, "error dialing (after insecure downgrade)")
			}
			return conn, nil
		}
		return nil, errors.Wrap(err, "error dialing")
	}
	return conn, nil
}

func grpcDialOptions(target *Target, logger logging.Logger, perRPC credentials.PerRPCCredentials) []grpc.DialOption {
	var transportCreds credentials.TransportCredentials
	if target.Scheme == SchemeSecure {
		transportCreds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	} else {
		transportCreds = insecure.NewCredentials()
	}

	host := rpcHostFor(target.Authority)
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(transportCreds),
		grpc.WithChainUnaryInterceptor(rpcHostUnaryInterceptor(host)),
		grpc.WithChainStreamInterceptor(rpcHostStreamInterceptor(host)),
		grpc.WithBlock(),
	}
	if perRPC != nil {
		dialOpts = append(dialOpts, grpc.WithPerRPCCredentials(perRPC))
	}
	return dialOpts
}

// maybeConnectViaWebRTC fetches the signalling server's extended ICE
// configuration, negotiates a peer connection over it, and wraps the
// resulting data channel as a clientChannel. Any failure along the way is
// returned uninterpreted; the caller decides whether to fall back.
func maybeConnectViaWebRTC(ctx context.Context, logger logging.Logger, signalingConn grpc.ClientConnInterface, o *dialOptions) (*clientChannel, error) {
	signalClient := webrtcpb.NewSignalingServiceClient(signalingConn)

	cfgCtx, cancel := context.WithTimeout(ctx, signalingTimeout)
	cfgResp, err := signalClient.OptionalWebRTCConfig(cfgCtx, &webrtcpb.OptionalWebRTCConfigRequest{})
	cancel()
	if err != nil {
		return nil, errors.Wrap(err, "error fetching webrtc config")
	}

	config := mergeWebRTCConfig(o.webrtcConfig, cfgResp.Config)

	pc, dc, err := signalViaWebRTC(ctx, logger, signalClient, config, o.disableTrickleICE)
	if err != nil {
		return nil, err
	}

	return newClientChannel(logger, pc, dc), nil
}

// webrtcClientConnWithSignalingConn extends webrtcClientConn so Close also
// tears down the gRPC connection(s) used to negotiate it.
type webrtcClientConnWithSignalingConn struct {
	webrtcClientConn
	signalingConns []*grpc.ClientConn
}

func (c *webrtcClientConnWithSignalingConn) Close() error {
	err := c.webrtcClientConn.Close()
	for _, conn := range c.signalingConns {
		err = multierr.Append(err, conn.Close())
	}
	return err
}
