package rpc

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestWaitReadyZeroTimeout(t *testing.T) {
	// Nothing listens here; the point is that a non-positive timeout still
	// performs one attempt and wraps the real dial error.
	_, err := WaitReady(context.Background(), "ws://127.0.0.1:1/jsonrpc", "", 0)
	if err == nil {
		t.Fatal("WaitReady() succeeded against a dead endpoint")
	}
	if errors.Unwrap(err) == nil {
		t.Errorf("WaitReady() error %q wraps nothing", err)
	}
	if strings.Contains(err.Error(), "%!w") {
		t.Errorf("WaitReady() error %q has a malformed wrap verb", err)
	}
}

func TestWaitReadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WaitReady(ctx, "ws://127.0.0.1:1/jsonrpc", "", 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WaitReady() = %v, want context.Canceled", err)
	}
}
