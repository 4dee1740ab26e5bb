// Package rpc implements the JSON-RPC 2.0 client side of the download
// daemon's aria2-compatible RPC surface. The transport is a WebSocket
// connection so daemon push notifications arrive on the same channel as
// method responses.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("rpc client is closed")

const notifyBuffer = 64

// Client drives the daemon RPC endpoint.
type Client struct {
	cli    *jrpc2.Client
	secret string
	notes  chan Notification

	// mu guards closed. The scheduler and the supervise loop share one
	// client, so calls race Close during daemon restarts.
	mu     sync.Mutex
	closed bool
}

// Dial connects to the daemon WebSocket endpoint and returns a ready
// Client. endpoint is a ws:// URL; secret may be empty.
func Dial(ctx context.Context, endpoint, secret string) (*Client, error) {
	conn, _, err := cws.Dial(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial daemon rpc: %w", err)
	}
	// The channel must outlive the dial context: reads and writes run for
	// the lifetime of the client.
	return NewClient(&wsChannel{conn: conn, ctx: context.Background()}, secret), nil
}

// NewClient wraps an established jrpc2 channel. Used by Dial and directly
// by tests over in-memory pipes.
func NewClient(ch channel.Channel, secret string) *Client {
	c := &Client{
		secret: secret,
		notes:  make(chan Notification, notifyBuffer),
	}
	c.cli = jrpc2.NewClient(ch, &jrpc2.ClientOptions{
		OnNotify: c.onNotify,
	})
	return c
}

// onNotify translates a daemon push into a Notification. Events are
// dropped when the consumer falls behind; the journal records only what
// the launcher managed to observe.
func (c *Client) onNotify(req *jrpc2.Request) {
	var params notifyParams
	if err := req.UnmarshalParams(&params); err != nil || len(params) == 0 {
		return
	}
	n := Notification{Event: req.Method(), GID: params[0].GID}
	select {
	case c.notes <- n:
	default:
	}
}

// Notifications returns the stream of daemon push events. The channel is
// closed when the connection goes away.
func (c *Client) Notifications() <-chan Notification {
	return c.notes
}

// call performs one RPC. The daemon expects positional params with the
// secret token, when set, as the leading "token:<secret>" element.
func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if c.secret != "" {
		params = append([]any{"token:" + c.secret}, params...)
	}
	if result == nil {
		_, err := c.cli.Call(ctx, method, params)
		return err
	}
	return c.cli.CallResult(ctx, method, params, result)
}

// GetVersion returns the daemon version. It doubles as the readiness and
// liveness check.
func (c *Client) GetVersion(ctx context.Context) (*VersionResult, error) {
	var res VersionResult
	if err := c.call(ctx, "aria2.getVersion", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AddURI enqueues a download and returns its GID.
func (c *Client) AddURI(ctx context.Context, uris []string, opts *AddURIOptions) (string, error) {
	params := []any{uris}
	if opts != nil {
		params = append(params, opts)
	}
	var gid string
	if err := c.call(ctx, "aria2.addUri", params, &gid); err != nil {
		return "", err
	}
	return gid, nil
}

// TellStatus returns the status of one download.
func (c *Client) TellStatus(ctx context.Context, gid string) (*DownloadStatus, error) {
	var res DownloadStatus
	if err := c.call(ctx, "aria2.tellStatus", []any{gid}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// TellActive returns all currently downloading items.
func (c *Client) TellActive(ctx context.Context) ([]DownloadStatus, error) {
	var res []DownloadStatus
	if err := c.call(ctx, "aria2.tellActive", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// TellStopped returns up to num finished/failed items starting at offset.
func (c *Client) TellStopped(ctx context.Context, offset, num int) ([]DownloadStatus, error) {
	var res []DownloadStatus
	if err := c.call(ctx, "aria2.tellStopped", []any{offset, num}, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Pause pauses an active download.
func (c *Client) Pause(ctx context.Context, gid string) error {
	return c.call(ctx, "aria2.pause", []any{gid}, nil)
}

// Unpause resumes a paused download.
func (c *Client) Unpause(ctx context.Context, gid string) error {
	return c.call(ctx, "aria2.unpause", []any{gid}, nil)
}

// Remove removes a download from the daemon.
func (c *Client) Remove(ctx context.Context, gid string) error {
	return c.call(ctx, "aria2.remove", []any{gid}, nil)
}

// GlobalStat returns daemon-wide transfer statistics.
func (c *Client) GlobalStat(ctx context.Context) (*GlobalStat, error) {
	var res GlobalStat
	if err := c.call(ctx, "aria2.getGlobalStat", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// PurgeDownloadResult drops completed/error/removed results from the
// daemon's memory.
func (c *Client) PurgeDownloadResult(ctx context.Context) error {
	return c.call(ctx, "aria2.purgeDownloadResult", nil, nil)
}

// SaveSession persists the daemon session to its configured session file.
func (c *Client) SaveSession(ctx context.Context) error {
	return c.call(ctx, "aria2.saveSession", nil, nil)
}

// Shutdown asks the daemon to exit gracefully.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.call(ctx, "aria2.shutdown", nil, nil)
}

// Close tears down the connection and the notification stream. It is safe
// to call concurrently with in-flight calls, which fail with ErrClosed or
// the transport error from the underlying client.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	// jrpc2 fails pending calls on Close and stops dispatching
	// notifications before returning, so the channel close below cannot
	// race onNotify.
	c.cli.Close()
	close(c.notes)
	return nil
}
