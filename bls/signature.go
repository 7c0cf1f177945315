package bls

import (
	"runtime"

	"github.com/pkg/errors"
	blst "github.com/supranational/blst/bindings/go"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/config"
)

type blstSignature = blst.P2Affine
type blstAggregateSignature = blst.P2Aggregate

// DST is the proof-of-possession ciphersuite used by the beacon chain.
var dst = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

var ErrInvalidSignatureEncoding = errors.New("invalid signature encoding")

type Signature struct {
	s *blstSignature
}

// SignatureFromBytes decompresses a 96 byte signature. The subgroup check
// is deferred to verification.
func SignatureFromBytes(sig []byte) (*Signature, error) {
	if len(sig) != config.BLS_SIGNATURE_LENGTH {
		return nil, errors.Wrapf(ErrInvalidSignatureEncoding, "signature must be %d bytes, have %d", config.BLS_SIGNATURE_LENGTH, len(sig))
	}
	s := new(blstSignature).Uncompress(sig)
	if s == nil {
		return nil, errors.Wrap(ErrInvalidSignatureEncoding, "could not unmarshal bytes into signature")
	}
	return &Signature{s: s}, nil
}

// FastAggregateVerify checks that the signature is the aggregate of all
// keys signing msg.
func (s *Signature) FastAggregateVerify(keys []*PublicKey, msg [32]byte) bool {
	if len(keys) == 0 {
		return false
	}
	raw := make([]*blstPublicKey, len(keys))
	for i, key := range keys {
		raw[i] = key.p
	}
	return s.s.FastAggregateVerify(true, raw, msg[:], dst)
}

func (s *Signature) Marshal() []byte {
	return s.s.Compress()
}

// AggregateSignatures sums signatures over the same message.
func AggregateSignatures(sigs []*Signature) (*Signature, error) {
	if len(sigs) == 0 {
		return nil, errors.New("no signatures to aggregate")
	}
	raw := make([]*blstSignature, len(sigs))
	for i, sig := range sigs {
		raw[i] = sig.s
	}
	agg := new(blstAggregateSignature)
	if !agg.Aggregate(raw, false) {
		return nil, errors.New("could not aggregate signatures")
	}
	return &Signature{s: agg.ToAffine()}, nil
}

func maxWorkers() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}
