package rpcv1

import (
	"context"

	"google.golang.org/grpc"

	"go.viam.com/rpc/proto/wire"
)

const authServiceName = "proto.rpc.v1.AuthService"

// AuthServiceClient is the client API for AuthService, matching the shape
// protoc-gen-go-grpc would emit for a single-RPC service.
type AuthServiceClient interface {
	Authenticate(ctx context.Context, in *AuthenticateRequest, opts ...grpc.CallOption) (*AuthenticateResponse, error)
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAuthServiceClient returns an AuthServiceClient backed by cc.
func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc}
}

func (c *authServiceClient) Authenticate(ctx context.Context, in *AuthenticateRequest, opts ...grpc.CallOption) (*AuthenticateResponse, error) {
	out := new(AuthenticateResponse)
	opts = append(opts, grpc.ForceCodec(wire.Codec{}))
	if err := c.cc.Invoke(ctx, "/"+authServiceName+"/Authenticate", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
