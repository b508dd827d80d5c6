package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"

	rpcv1 "go.viam.com/rpc/proto/rpc/v1"
)

// rpcHostHeader is the metadata key carrying the logical host a multi-tenant
// signalling/data-plane server should route a request to, distinct from the
// TCP authority actually dialed (which may be an mDNS-resolved IP).
const rpcHostHeader = "rpc-host"

// authenticate exchanges creds for a bearer token against the AuthService
// reachable over cc.
func authenticate(ctx context.Context, cc grpc.ClientConnInterface, ec *entityCredentials) (string, error) {
	client := rpcv1.NewAuthServiceClient(cc)
	resp, err := client.Authenticate(ctx, &rpcv1.AuthenticateRequest{
		Entity: ec.Entity,
		Credentials: &rpcv1.Credentials{
			Type:    ec.Credentials.Type,
			Payload: ec.Credentials.Payload,
		},
	})
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// bearerTokenCredentials implements credentials.PerRPCCredentials, attaching
// the previously acquired access token as a standard "authorization: Bearer"
// header on every outgoing call over the connection it's installed on.
type bearerTokenCredentials struct {
	accessToken        string
	requireTransportSecurity bool
}

var _ credentials.PerRPCCredentials = (*bearerTokenCredentials)(nil)

func (c *bearerTokenCredentials) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{
		"authorization": "Bearer " + c.accessToken,
	}, nil
}

func (c *bearerTokenCredentials) RequireTransportSecurity() bool {
	return c.requireTransportSecurity
}

// rpcHostUnaryInterceptor injects the rpc-host header naming host into every
// unary call's outgoing metadata.
func rpcHostUnaryInterceptor(host string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		return invoker(withRPCHost(ctx, host), method, req, reply, cc, opts...)
	}
}

// rpcHostStreamInterceptor is the streaming analog of
// rpcHostUnaryInterceptor.
func rpcHostStreamInterceptor(host string) grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		return streamer(withRPCHost(ctx, host), desc, cc, method, opts...)
	}
}

func withRPCHost(ctx context.Context, host string) context.Context {
	md, ok := metadata.FromOutgoingContext(ctx)
	if ok {
		md = md.Copy()
	} else {
		md = metadata.MD{}
	}
	md.Set(rpcHostHeader, host)
	return metadata.NewOutgoingContext(ctx, md)
}
