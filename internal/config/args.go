package config

import "fmt"

// DaemonArgs builds the daemon argv (without the executable itself).
//
// The flag set is the stack's historical contract with the daemon: the conf
// file path plus four overrides (RPC on all interfaces, all RPC origins
// allowed, the RPC secret, resumption of partial downloads). Anything in
// ExtraDaemonArgs is appended after these so overrides stay last-wins.
func (c *Config) DaemonArgs() []string {
	args := []string{
		fmt.Sprintf("--conf-path=%s", c.ConfPath),
		"--enable-rpc",
		"--rpc-listen-all=true",
		"--rpc-allow-origin-all=true",
		fmt.Sprintf("--rpc-secret=%s", c.RPCSecret),
		"--continue=true",
	}
	return append(args, c.ExtraDaemonArgs...)
}
