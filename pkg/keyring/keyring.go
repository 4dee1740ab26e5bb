// Package keyring stores the daemon RPC secret in the OS credential store.
// The secret is only used when secure RPC mode is enabled; the default
// launcher configuration runs the daemon with an empty secret.
package keyring

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/zalando/go-keyring"
)

// Keyring identifies one secret slot in the OS credential store.
type Keyring struct {
	AppName  string
	KeyField string
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

// New returns the keyring slot holding the subgrab RPC secret.
func New() *Keyring {
	return &Keyring{
		AppName:  "subgrab",
		KeyField: "rpc-secret",
	}
}

// SetSecret generates a fresh 32-byte secret, stores its hex encoding in
// the credential store and returns it.
func (k *Keyring) SetSecret() (string, error) {
	raw := make([]byte, 32)
	if _, err := randRead(raw); err != nil {
		return "", err
	}
	secret := hex.EncodeToString(raw)
	if err := keyringSet(k.AppName, k.KeyField, secret); err != nil {
		return "", err
	}
	return secret, nil
}

// GetSecret fetches the stored secret.
func (k *Keyring) GetSecret() (string, error) {
	return keyringGet(k.AppName, k.KeyField)
}

// DeleteSecret removes the stored secret.
func (k *Keyring) DeleteSecret() error {
	return keyringDelete(k.AppName, k.KeyField)
}

// EnsureSecret returns the stored secret, generating and storing one if the
// slot is empty.
func (k *Keyring) EnsureSecret() (string, error) {
	secret, err := k.GetSecret()
	if err == nil {
		return secret, nil
	}
	return k.SetSecret()
}
