package bls

import (
	"github.com/pkg/errors"
)

var ErrSignatureMismatch = errors.New("aggregate signature does not verify")

// Verifier checks an aggregate signature of the given compressed keys over
// a 32 byte signing root.
type Verifier interface {
	VerifyAggregate(pubkeys [][]byte, msg [32]byte, sig []byte) error
}

// BlstVerifier is the production Verifier.
type BlstVerifier struct{}

func NewVerifier() *BlstVerifier {
	return &BlstVerifier{}
}

func (BlstVerifier) VerifyAggregate(pubkeys [][]byte, msg [32]byte, sig []byte) error {
	if len(pubkeys) == 0 {
		return errors.New("no participating public keys")
	}
	keys, err := PublicKeysFromBytes(pubkeys)
	if err != nil {
		return err
	}
	signature, err := SignatureFromBytes(sig)
	if err != nil {
		return err
	}
	if !signature.FastAggregateVerify(keys, msg) {
		return ErrSignatureMismatch
	}
	return nil
}
