package config

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func newTestConfig(t *testing.T) *Config {
	t.Helper()
	t.Setenv(BaseDirEnv, t.TempDir())
	c, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestNewDefaults(t *testing.T) {
	c := newTestConfig(t)

	if c.DaemonBin != DefaultDaemonBin {
		t.Errorf("DaemonBin = %q, want %q", c.DaemonBin, DefaultDaemonBin)
	}
	if c.RPCPort != DefaultRPCPort {
		t.Errorf("RPCPort = %d, want %d", c.RPCPort, DefaultRPCPort)
	}
	if c.DownloadDir != filepath.Join(c.BaseDir, "downloads") {
		t.Errorf("DownloadDir = %q, want under base dir", c.DownloadDir)
	}
	if c.ConfPath != filepath.Join(c.BaseDir, "daemon.conf") {
		t.Errorf("ConfPath = %q", c.ConfPath)
	}
}

func TestNewEnvOverrides(t *testing.T) {
	t.Setenv(BaseDirEnv, t.TempDir())
	t.Setenv(DaemonBinEnv, "/opt/bin/aria2c")
	t.Setenv(RPCPortEnv, "6801")
	t.Setenv(RPCSecretEnv, "s3cret")
	t.Setenv(BotCmdEnv, "python3 bot.py --verbose")
	t.Setenv(DebugEnv, "1")

	c, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if c.DaemonBin != "/opt/bin/aria2c" {
		t.Errorf("DaemonBin = %q", c.DaemonBin)
	}
	if c.RPCPort != 6801 {
		t.Errorf("RPCPort = %d, want 6801", c.RPCPort)
	}
	if c.RPCSecret != "s3cret" {
		t.Errorf("RPCSecret = %q", c.RPCSecret)
	}
	want := []string{"python3", "bot.py", "--verbose"}
	if !reflect.DeepEqual(c.BotCommand, want) {
		t.Errorf("BotCommand = %v, want %v", c.BotCommand, want)
	}
	if !c.Debug {
		t.Error("Debug = false, want true")
	}
}

func TestNewBadPortEnv(t *testing.T) {
	t.Setenv(BaseDirEnv, t.TempDir())
	t.Setenv(RPCPortEnv, "not-a-port")
	if _, err := New(); err == nil {
		t.Error("New() succeeded with invalid port env")
	}
}

// TestDaemonArgsDefaultFlagSet pins the daemon argv contract: the conf path
// plus exactly the four override flags, in order, when nothing extra is
// configured.
func TestDaemonArgsDefaultFlagSet(t *testing.T) {
	c := newTestConfig(t)

	want := []string{
		"--conf-path=" + c.ConfPath,
		"--enable-rpc",
		"--rpc-listen-all=true",
		"--rpc-allow-origin-all=true",
		"--rpc-secret=",
		"--continue=true",
	}
	if got := c.DaemonArgs(); !reflect.DeepEqual(got, want) {
		t.Errorf("DaemonArgs() = %v, want %v", got, want)
	}
}

func TestDaemonArgsSecretAndExtra(t *testing.T) {
	c := newTestConfig(t)
	c.RPCSecret = "tok"
	c.ExtraDaemonArgs = []string{"--max-connection-per-server=8"}

	got := c.DaemonArgs()
	if got[4] != "--rpc-secret=tok" {
		t.Errorf("args[4] = %q, want --rpc-secret=tok", got[4])
	}
	if got[len(got)-1] != "--max-connection-per-server=8" {
		t.Errorf("extra args not appended last: %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"ok", func(c *Config) { c.BotCommand = []string{"bot"} }, true},
		{"no bot", func(c *Config) {}, false},
		{"bad port", func(c *Config) {
			c.BotCommand = []string{"bot"}
			c.RPCPort = 0
		}, false},
		{"bad cron", func(c *Config) {
			c.BotCommand = []string{"bot"}
			c.PurgeCron = "* * *"
		}, false},
		{"six field cron rejected", func(c *Config) {
			c.BotCommand = []string{"bot"}
			c.SessionCron = "0 * * * * *"
		}, false},
		{"empty cron disables job", func(c *Config) {
			c.BotCommand = []string{"bot"}
			c.PurgeCron = ""
			c.SessionCron = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConfig(t)
			tt.mutate(c)
			err := c.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestEnsureConfFile(t *testing.T) {
	c := newTestConfig(t)
	fs := afero.NewMemMapFs()

	created, err := c.EnsureConfFile(fs)
	if err != nil {
		t.Fatalf("EnsureConfFile() error: %v", err)
	}
	if !created {
		t.Fatal("expected conf file to be created")
	}

	data, err := afero.ReadFile(fs, c.ConfPath)
	if err != nil {
		t.Fatalf("reading conf: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"dir=" + c.DownloadDir,
		"rpc-listen-port=6800",
		"save-session=" + c.SessionPath(),
	} {
		if !strings.Contains(content, want) {
			t.Errorf("conf missing %q:\n%s", want, content)
		}
	}

	// Second call must not clobber an existing conf.
	if err := afero.WriteFile(fs, c.ConfPath, []byte("user-edited"), 0o644); err != nil {
		t.Fatal(err)
	}
	created, err = c.EnsureConfFile(fs)
	if err != nil {
		t.Fatalf("EnsureConfFile() second call error: %v", err)
	}
	if created {
		t.Error("EnsureConfFile overwrote an existing conf")
	}
}

func TestRPCEndpoint(t *testing.T) {
	c := newTestConfig(t)
	if got := c.RPCEndpoint(); got != "ws://127.0.0.1:6800/jsonrpc" {
		t.Errorf("RPCEndpoint() = %q", got)
	}
}
