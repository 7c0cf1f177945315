package bls

import (
	"crypto/rand"

	"github.com/pkg/errors"
	blst "github.com/supranational/blst/bindings/go"
)

// SecretKey signs messages. Only the tooling and tests hold secret keys.
type SecretKey struct {
	p *blst.SecretKey
}

// RandKey creates a new secret key from 32 bytes of system randomness.
func RandKey() (*SecretKey, error) {
	var ikm [32]byte
	if _, err := rand.Read(ikm[:]); err != nil {
		return nil, err
	}
	return SecretKeyFromSeed(ikm[:])
}

// SecretKeyFromSeed derives a key deterministically from at least 32 bytes
// of input keying material.
func SecretKeyFromSeed(ikm []byte) (*SecretKey, error) {
	if len(ikm) < 32 {
		return nil, errors.Errorf("seed must be at least 32 bytes, have %d", len(ikm))
	}
	sk := blst.KeyGen(ikm)
	if sk == nil {
		return nil, errors.New("could not derive secret key")
	}
	return &SecretKey{p: sk}, nil
}

func (s *SecretKey) PublicKey() *PublicKey {
	return &PublicKey{p: new(blstPublicKey).From(s.p)}
}

func (s *SecretKey) Sign(msg [32]byte) *Signature {
	return &Signature{s: new(blstSignature).Sign(s.p, msg[:], dst)}
}
