package webrtcpb

import (
	"context"

	"google.golang.org/grpc"

	"go.viam.com/rpc/proto/wire"
)

const signalingServiceName = "proto.rpc.webrtc.v1.SignalingService"

// SignalingServiceClient is the client API for SignalingService. The server
// side (Answer, and server-side acceptance of Call) is out of scope for this
// module; only the client methods it calls are declared.
type SignalingServiceClient interface {
	OptionalWebRTCConfig(ctx context.Context, in *OptionalWebRTCConfigRequest, opts ...grpc.CallOption) (*OptionalWebRTCConfigResponse, error)
	Call(ctx context.Context, in *CallRequest, opts ...grpc.CallOption) (SignalingService_CallClient, error)
	CallUpdate(ctx context.Context, in *CallUpdateRequest, opts ...grpc.CallOption) (*CallUpdateResponse, error)
}

type signalingServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSignalingServiceClient returns a SignalingServiceClient backed by cc.
func NewSignalingServiceClient(cc grpc.ClientConnInterface) SignalingServiceClient {
	return &signalingServiceClient{cc}
}

func (c *signalingServiceClient) OptionalWebRTCConfig(ctx context.Context, in *OptionalWebRTCConfigRequest, opts ...grpc.CallOption) (*OptionalWebRTCConfigResponse, error) {
	out := new(OptionalWebRTCConfigResponse)
	opts = append(opts, grpc.ForceCodec(wire.Codec{}))
	if err := c.cc.Invoke(ctx, "/"+signalingServiceName+"/OptionalWebRTCConfig", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

var callStreamDesc = &grpc.StreamDesc{
	StreamName:    "Call",
	ServerStreams: true,
}

func (c *signalingServiceClient) Call(ctx context.Context, in *CallRequest, opts ...grpc.CallOption) (SignalingService_CallClient, error) {
	opts = append(opts, grpc.ForceCodec(wire.Codec{}))
	stream, err := c.cc.NewStream(ctx, callStreamDesc, "/"+signalingServiceName+"/Call", opts...)
	if err != nil {
		return nil, err
	}
	cs := &signalingServiceCallClient{stream}
	if err := cs.SendMsg(in); err != nil {
		return nil, err
	}
	if err := cs.CloseSend(); err != nil {
		return nil, err
	}
	return cs, nil
}

// SignalingService_CallClient is the server-streaming response side of Call.
type SignalingService_CallClient interface {
	Recv() (*CallResponse, error)
	grpc.ClientStream
}

type signalingServiceCallClient struct {
	grpc.ClientStream
}

func (x *signalingServiceCallClient) Recv() (*CallResponse, error) {
	m := new(CallResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *signalingServiceClient) CallUpdate(ctx context.Context, in *CallUpdateRequest, opts ...grpc.CallOption) (*CallUpdateResponse, error) {
	out := new(CallUpdateResponse)
	opts = append(opts, grpc.ForceCodec(wire.Codec{}))
	if err := c.cc.Invoke(ctx, "/"+signalingServiceName+"/CallUpdate", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
