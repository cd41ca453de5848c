package core

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Credential holds the API key and secret used to authenticate upstream calls.
// It is built once at startup and never modified; share it by pointer.
type Credential struct {
	key    string
	secret string
}

// NewCredential returns a Credential or ErrMissingCredentials when either part is empty.
func NewCredential(key, secret string) (*Credential, error) {
	if key == "" || secret == "" {
		return nil, ErrMissingCredentials
	}
	return &Credential{key: key, secret: secret}, nil
}

// Key returns the public API key sent in the X-API-KEY header.
func (c *Credential) Key() string {
	return c.key
}

// Secret returns the signing secret.
func (c *Credential) Secret() string {
	return c.secret
}

// String never prints the secret.
func (c *Credential) String() string {
	return fmt.Sprintf("Credential{Key:%s}", maskKey(c.key))
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (c *Credential) MarshalZerologObject(e *zerolog.Event) {
	e.Str("key", maskKey(c.key))
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
