package config

import (
	"fmt"

	"github.com/spf13/afero"
)

// defaultConfTemplate is written to ConfPath when no daemon configuration
// exists yet. Values the launcher depends on (port, dir, session) are
// filled from the resolved Config; everything else is left to the daemon's
// own defaults.
const defaultConfTemplate = `# subgrab generated daemon configuration
dir=%s
rpc-listen-port=%d
input-file=%s
save-session=%s
save-session-interval=0
max-concurrent-downloads=4
file-allocation=none
`

// EnsureConfFile writes a default daemon conf file if none exists.
// Returns true if a new file was written.
func (c *Config) EnsureConfFile(fs afero.Fs) (bool, error) {
	exists, err := afero.Exists(fs, c.ConfPath)
	if err != nil {
		return false, fmt.Errorf("failed to stat conf file: %w", err)
	}
	if exists {
		return false, nil
	}
	content := fmt.Sprintf(defaultConfTemplate,
		c.DownloadDir, c.RPCPort, c.SessionPath(), c.SessionPath())
	if err := afero.WriteFile(fs, c.ConfPath, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default conf: %w", err)
	}
	return true, nil
}
