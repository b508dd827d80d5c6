package rpc

import (
	"context"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// pendingBody is the caller-facing half of a client stream: the client
// channel's inbound dispatcher feeds it composed gRPC frames (5-byte header
// + payload) as they're reassembled, and the façade's NewStream/Invoke
// implementation drains it. Ownership passes to the caller once it's handed
// out; nothing else reads from it afterward.
//
// closeWithTrailers and closeWithError can race: a base stream's recv-error
// path and a client stream's trailers-received path each guard their own
// call with an independent atomic flag on a different struct, so both can
// reach pendingBody concurrently. doneOnce makes whichever arrives first
// authoritative and the other a no-op, instead of double-closing done.
type pendingBody struct {
	messages     chan []byte
	headersReady chan struct{}
	headersOnce  sync.Once
	headers      metadata.MD
	done         chan struct{}
	doneOnce     sync.Once
	trailers     metadata.MD
	finalStatus  *status.Status
	err          error
}

func newPendingBody() *pendingBody {
	return &pendingBody{
		// buffered so the dispatcher never blocks waiting for a slow
		// consumer to drain a single in-flight frame.
		messages:     make(chan []byte, 8),
		headersReady: make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// setHeaders records inbound metadata and unblocks any Header() waiter. May
// only be called once; see client_stream.onHeaders.
func (b *pendingBody) setHeaders(md metadata.MD) {
	b.headers = md
	b.headersOnce.Do(func() { close(b.headersReady) })
}

// pushMessage enqueues one composed gRPC frame for the consumer.
func (b *pendingBody) pushMessage(frame []byte) {
	select {
	case b.messages <- frame:
	case <-b.done:
	}
}

// closeWithTrailers terminates the body successfully, recording trailer
// metadata and the final status for Trailer()/recv(). If closeWithError has
// already terminated the body, this is a no-op.
func (b *pendingBody) closeWithTrailers(md metadata.MD, st *status.Status) {
	b.doneOnce.Do(func() {
		b.trailers = md
		b.finalStatus = st
		b.headersOnce.Do(func() { close(b.headersReady) })
		close(b.done)
	})
}

// closeWithError terminates the body with a caller-visible error. If
// closeWithTrailers has already terminated the body, this is a no-op.
func (b *pendingBody) closeWithError(err error) {
	b.doneOnce.Do(func() {
		b.err = err
		b.headersOnce.Do(func() { close(b.headersReady) })
		close(b.done)
	})
}

// header blocks until headers (or a terminal error) arrive.
func (b *pendingBody) header(ctx context.Context) (metadata.MD, error) {
	select {
	case <-b.headersReady:
		return b.headers, nil
	case <-b.done:
		if b.err != nil {
			return nil, b.err
		}
		return b.headers, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// recv returns the next composed gRPC frame, or io.EOF-equivalent
// (nil, nil, false) once done and drained, or the terminal error.
func (b *pendingBody) recv(ctx context.Context) ([]byte, error, bool) {
	select {
	case frame := <-b.messages:
		return frame, nil, true
	default:
	}
	select {
	case frame := <-b.messages:
		return frame, nil, true
	case <-b.done:
		select {
		case frame := <-b.messages:
			return frame, nil, true
		default:
		}
		if b.err != nil {
			return nil, b.err, false
		}
		if b.finalStatus != nil && b.finalStatus.Code() != codes.OK {
			return nil, b.finalStatus.Err(), false
		}
		return nil, nil, false
	case <-ctx.Done():
		return nil, ctx.Err(), false
	}
}
