package cmd

import (
	"github.com/subgrab/subgrab/internal/config"
	"github.com/subgrab/subgrab/pkg/keyring"
)

// keyringSecret is swapped out by tests.
var keyringSecret = func() (string, error) {
	return keyring.New().GetSecret()
}

// resolveRPCSecret fills in the RPC secret from the system keyring when
// neither flags nor environment supplied one. A stack brought up with
// --secure-rpc stores its secret only there, so client commands must look
// in the same place. A missing keyring entry is not an error: the daemon
// then simply runs without a secret.
func resolveRPCSecret(cfg *config.Config) {
	if cfg.RPCSecret != "" {
		return
	}
	if secret, err := keyringSecret(); err == nil && secret != "" {
		cfg.RPCSecret = secret
	}
}
