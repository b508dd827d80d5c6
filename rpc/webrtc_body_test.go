package rpc

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"
	"go.viam.com/test"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// TestMain verifies that no test in this package leaks a goroutine past its
// own completion. webrtc_base_stream.go and webrtc_client_stream.go each
// race a different call path to pendingBody's terminal close, so a leaked
// recv/drain goroutine here is the first symptom of that race regressing.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPendingBodyConcurrentCloseIsFirstWins(t *testing.T) {
	// closeWithTrailers (driven by onTrailers, guarded by
	// clientStream.trailersReceived) and closeWithError (driven by
	// closeWithRecvError, guarded by baseStream.closed) are independent
	// atomics on different structs: nothing stops both from reaching the
	// same pendingBody at once. Exercise that race directly.
	for i := 0; i < 100; i++ {
		b := newPendingBody()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			b.closeWithTrailers(nil, status.New(codes.OK, ""))
		}()
		go func() {
			defer wg.Done()
			b.closeWithError(ErrChannelClosed)
		}()
		wg.Wait()

		_, err, ok := b.recv(context.Background())
		test.That(t, ok, test.ShouldBeFalse)
		// Whichever of the two terminal writers won, the body must report
		// exactly that outcome, not a mix of both.
		if b.err != nil {
			test.That(t, err, test.ShouldEqual, ErrChannelClosed)
		} else {
			test.That(t, err, test.ShouldBeNil)
		}
	}
}

func TestPendingBodyCloseWithTrailersThenErrorIsNoOp(t *testing.T) {
	b := newPendingBody()
	b.closeWithTrailers(nil, status.New(codes.OK, ""))
	b.closeWithError(ErrChannelClosed)

	_, err, ok := b.recv(context.Background())
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, err, test.ShouldBeNil)
}

func TestPendingBodyCloseWithErrorThenTrailersIsNoOp(t *testing.T) {
	b := newPendingBody()
	b.closeWithError(ErrChannelClosed)
	b.closeWithTrailers(nil, status.New(codes.OK, ""))

	_, err, ok := b.recv(context.Background())
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, err, test.ShouldEqual, ErrChannelClosed)
}
