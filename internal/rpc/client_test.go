package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
)

// newTestClient wires a Client to a jrpc2 server over io.Pipe channels,
// emulating the daemon RPC endpoint in memory.
func newTestClient(t *testing.T, secret string, methods handler.Map) (*Client, *jrpc2.Server) {
	t.Helper()
	cr, sw := io.Pipe()
	sr, cw := io.Pipe()
	cliCh := channel.Line(cr, cw)
	srvCh := channel.Line(sr, sw)

	srv := jrpc2.NewServer(methods, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(srvCh)

	c := NewClient(cliCh, secret)
	t.Cleanup(func() {
		c.Close()
		srv.Stop()
		_ = srv.Wait()
	})
	return c, srv
}

// rawParams decodes the positional params of a request for assertions.
func rawParams(t *testing.T, req *jrpc2.Request) []json.RawMessage {
	t.Helper()
	var params []json.RawMessage
	if err := req.UnmarshalParams(&params); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	return params
}

func TestGetVersion(t *testing.T) {
	c, _ := newTestClient(t, "", handler.Map{
		"aria2.getVersion": handler.New(func(ctx context.Context, req *jrpc2.Request) (any, error) {
			return &VersionResult{Version: "1.37.0", EnabledFeatures: []string{"WebSocket"}}, nil
		}),
	})

	res, err := c.GetVersion(context.Background())
	if err != nil {
		t.Fatalf("GetVersion() error: %v", err)
	}
	if res.Version != "1.37.0" {
		t.Errorf("Version = %q, want 1.37.0", res.Version)
	}
}

func TestSecretTokenInjection(t *testing.T) {
	c, _ := newTestClient(t, "abc", handler.Map{
		"aria2.getVersion": handler.New(func(ctx context.Context, req *jrpc2.Request) (any, error) {
			params := rawParams(t, req)
			if len(params) == 0 {
				t.Error("expected leading token param")
			} else if string(params[0]) != `"token:abc"` {
				t.Errorf("params[0] = %s, want \"token:abc\"", params[0])
			}
			return &VersionResult{Version: "1.37.0"}, nil
		}),
	})

	if _, err := c.GetVersion(context.Background()); err != nil {
		t.Fatalf("GetVersion() error: %v", err)
	}
}

func TestAddURI(t *testing.T) {
	c, _ := newTestClient(t, "", handler.Map{
		"aria2.addUri": handler.New(func(ctx context.Context, req *jrpc2.Request) (any, error) {
			params := rawParams(t, req)
			if len(params) != 2 {
				t.Errorf("len(params) = %d, want 2", len(params))
			}
			var uris []string
			if err := json.Unmarshal(params[0], &uris); err != nil {
				t.Errorf("uris param: %v", err)
			} else if len(uris) != 1 || uris[0] != "https://example.com/file.mkv" {
				t.Errorf("uris = %v", uris)
			}
			var opts AddURIOptions
			if err := json.Unmarshal(params[1], &opts); err != nil {
				t.Errorf("opts param: %v", err)
			} else if opts.Dir != "/srv/dl" {
				t.Errorf("opts.Dir = %q", opts.Dir)
			}
			return "2089b05ecca3d829", nil
		}),
	})

	gid, err := c.AddURI(context.Background(),
		[]string{"https://example.com/file.mkv"}, &AddURIOptions{Dir: "/srv/dl"})
	if err != nil {
		t.Fatalf("AddURI() error: %v", err)
	}
	if gid != "2089b05ecca3d829" {
		t.Errorf("gid = %q", gid)
	}
}

func TestTellActiveParsesStringSizes(t *testing.T) {
	c, _ := newTestClient(t, "", handler.Map{
		"aria2.tellActive": handler.New(func(ctx context.Context, req *jrpc2.Request) (any, error) {
			// String-encoded numbers, as the real daemon sends them.
			return json.RawMessage(`[{
				"gid": "g1",
				"status": "active",
				"totalLength": "2048",
				"completedLength": "512",
				"downloadSpeed": "100",
				"files": [{"index": "1", "path": "/srv/dl/a.mkv", "length": "2048", "completedLength": "512"}]
			}]`), nil
		}),
	})

	active, err := c.TellActive(context.Background())
	if err != nil {
		t.Fatalf("TellActive() error: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("len(active) = %d, want 1", len(active))
	}
	d := active[0]
	if d.TotalLength != 2048 || d.CompletedLength != 512 || d.DownloadSpeed != 100 {
		t.Errorf("sizes = %d/%d/%d, want 2048/512/100",
			d.TotalLength, d.CompletedLength, d.DownloadSpeed)
	}
	if got := d.Progress(); got != 25 {
		t.Errorf("Progress() = %v, want 25", got)
	}
	if got := d.Name(); got != "/srv/dl/a.mkv" {
		t.Errorf("Name() = %q", got)
	}
}

func TestGlobalStat(t *testing.T) {
	c, _ := newTestClient(t, "", handler.Map{
		"aria2.getGlobalStat": handler.New(func(ctx context.Context, req *jrpc2.Request) (any, error) {
			return json.RawMessage(`{"downloadSpeed":"4096","numActive":"2","numWaiting":"0","numStopped":"7"}`), nil
		}),
	})

	stat, err := c.GlobalStat(context.Background())
	if err != nil {
		t.Fatalf("GlobalStat() error: %v", err)
	}
	if stat.DownloadSpeed != 4096 || stat.NumActive != 2 || stat.NumStopped != 7 {
		t.Errorf("stat = %+v", stat)
	}
}

func TestNotifications(t *testing.T) {
	c, srv := newTestClient(t, "", handler.Map{})

	err := srv.Notify(context.Background(), EventDownloadComplete,
		[]map[string]string{{"gid": "g42"}})
	if err != nil {
		t.Fatalf("Notify() error: %v", err)
	}

	select {
	case n := <-c.Notifications():
		if n.Event != EventDownloadComplete || n.GID != "g42" {
			t.Errorf("notification = %+v", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestCallAfterClose(t *testing.T) {
	c, _ := newTestClient(t, "", handler.Map{})
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := c.GetVersion(context.Background()); err == nil {
		t.Error("GetVersion() after Close succeeded")
	}
	// Close is idempotent.
	if err := c.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

// TestCloseConcurrentWithCalls exercises the shutdown path the supervisor
// hits when the daemon dies while a maintenance call is in flight: many
// callers race one Close. Run with -race.
func TestCloseConcurrentWithCalls(t *testing.T) {
	c, _ := newTestClient(t, "", handler.Map{
		"aria2.getVersion": handler.New(func(ctx context.Context, req *jrpc2.Request) (any, error) {
			return &VersionResult{Version: "1.37.0"}, nil
		}),
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Either a real response or ErrClosed/transport error is
			// acceptable; panics and races are not.
			_, _ = c.GetVersion(context.Background())
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.Close()
	}()
	wg.Wait()

	if _, err := c.GetVersion(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("GetVersion() after Close = %v, want ErrClosed", err)
	}
}

func TestSizeUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    Size
		wantErr bool
	}{
		{`"1024"`, 1024, false},
		{`1024`, 1024, false},
		{`"0"`, 0, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"abc"`, 0, true},
	}
	for _, tt := range tests {
		var s Size
		err := json.Unmarshal([]byte(tt.in), &s)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Unmarshal(%s) succeeded, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unmarshal(%s) error: %v", tt.in, err)
			continue
		}
		if s != tt.want {
			t.Errorf("Unmarshal(%s) = %d, want %d", tt.in, s, tt.want)
		}
	}
}

func TestDownloadStatusNameFallbacks(t *testing.T) {
	d := &DownloadStatus{GID: "g1"}
	if got := d.Name(); got != "g1" {
		t.Errorf("Name() = %q, want gid fallback", got)
	}
	d.Files = []FileInfo{{URIs: []URIInfo{{URI: "https://example.com/f"}}}}
	if got := d.Name(); got != "https://example.com/f" {
		t.Errorf("Name() = %q, want uri fallback", got)
	}
}
