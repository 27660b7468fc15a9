package system

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/evoteadm/evote/internal/core/ports"
)

type randomTokenSource struct{}

func NewTokenSource() ports.TokenSource {
	return randomTokenSource{}
}

// NewToken returns an opaque url-safe token with 256 bits of entropy.
func (randomTokenSource) NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
