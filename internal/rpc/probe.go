package rpc

import (
	"context"
	"fmt"
	"time"
)

const probeInterval = 250 * time.Millisecond

// WaitReady dials the daemon endpoint and verifies it answers
// aria2.getVersion, retrying until the timeout expires. This replaces the
// historical fixed startup sleep: a daemon that accepted the connection
// but cannot answer RPC yet is not ready.
//
// On success the connected client is returned for further use.
func WaitReady(ctx context.Context, endpoint, secret string, timeout time.Duration) (*Client, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error

	// At least one attempt runs even with a zero or negative timeout.
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		client, err := dialAndProbe(ctx, endpoint, secret)
		if err == nil {
			return client, nil
		}
		lastErr = err

		if !time.Now().Before(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(probeInterval):
		}
	}
	return nil, fmt.Errorf("daemon rpc not ready within %v: %w", timeout, lastErr)
}

func dialAndProbe(ctx context.Context, endpoint, secret string) (*Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, probeInterval*4)
	defer cancel()

	client, err := Dial(dialCtx, endpoint, secret)
	if err != nil {
		return nil, err
	}
	if _, err := client.GetVersion(dialCtx); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
