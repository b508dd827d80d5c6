package rpc

import (
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Sentinel errors for conditions callers may want to distinguish.
var (
	// ErrNoURI is returned by Dial when no target was configured.
	ErrNoURI = errors.New("rpc: no uri configured")
	// ErrStreamsExhausted is returned when a client channel cannot allocate
	// a new stream (its table or id counter has been exhausted).
	ErrStreamsExhausted = errors.New("rpc: no more streams available")
	// ErrFramingShort is returned by writeMessage when handed fewer than
	// the 5 bytes required to read a gRPC frame header.
	ErrFramingShort = errors.New("rpc: message shorter than a gRPC frame header")
	// ErrProtocolViolation marks an inbound frame sequence violation
	// (headers twice, message before headers).
	ErrProtocolViolation = errors.New("rpc: protocol violation")
	// ErrChannelClosed is returned by sends attempted after Close.
	ErrChannelClosed = errors.New("rpc: channel closed")
)

// unknownStatus synthesizes the grpc-status: unknown outcome required for
// stream protocol violations and transport errors surfaced to a caller
// without a more specific code.
func unknownStatus(err error) error {
	return status.Error(codes.Unknown, err.Error())
}

func resourceExhaustedStatus(err error) error {
	return status.Error(codes.ResourceExhausted, err.Error())
}
