package bls

import (
	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"
	blst "github.com/supranational/blst/bindings/go"
	"golang.org/x/sync/errgroup"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/config"
)

type blstPublicKey = blst.P1Affine
type blstAggregatePublicKey = blst.P1Aggregate

var (
	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrInfinitePubKey   = errors.New("received an infinite public key")
)

var maxKeys = int64(100000)
var pubkeyCache, _ = ristretto.NewCache(&ristretto.Config{
	NumCounters: maxKeys,
	MaxCost:     1 << 24, // ~16mb
	BufferItems: 64,
})

// PublicKey is a decompressed, subgroup checked BLS public key. It is never
// mutated after construction so cached instances can be shared.
type PublicKey struct {
	p *blstPublicKey
}

// PublicKeyFromBytes decompresses a 48 byte public key.
func PublicKeyFromBytes(pubKey []byte) (*PublicKey, error) {
	if len(pubKey) != config.BLS_PUBKEY_LENGTH {
		return nil, errors.Wrapf(ErrInvalidPublicKey, "public key must be %d bytes, have %d", config.BLS_PUBKEY_LENGTH, len(pubKey))
	}
	if cv, ok := pubkeyCache.Get(string(pubKey)); ok {
		return cv.(*PublicKey), nil
	}
	p := new(blstPublicKey).Uncompress(pubKey)
	if p == nil {
		return nil, errors.Wrap(ErrInvalidPublicKey, "could not unmarshal bytes into public key")
	}
	if p.Equals(new(blstPublicKey)) {
		return nil, ErrInfinitePubKey
	}
	if !p.KeyValidate() {
		return nil, errors.Wrap(ErrInvalidPublicKey, "public key not in subgroup")
	}
	key := &PublicKey{p: p}
	pubkeyCache.Set(string(pubKey), key, config.BLS_PUBKEY_LENGTH)
	return key, nil
}

// PublicKeysFromBytes decompresses keys in parallel, keeping their order.
func PublicKeysFromBytes(pubKeys [][]byte) ([]*PublicKey, error) {
	keys := make([]*PublicKey, len(pubKeys))
	var g errgroup.Group
	g.SetLimit(maxWorkers())
	for i := range pubKeys {
		i := i
		g.Go(func() error {
			key, err := PublicKeyFromBytes(pubKeys[i])
			if err != nil {
				return errors.Wrapf(err, "pubkey %d", i)
			}
			keys[i] = key
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return keys, nil
}

// AggregatePublicKeys sums keys into a single key.
func AggregatePublicKeys(keys []*PublicKey) (*PublicKey, error) {
	if len(keys) == 0 {
		return nil, errors.New("no public keys to aggregate")
	}
	agg := new(blstAggregatePublicKey)
	for _, key := range keys {
		agg.Add(key.p, false)
	}
	return &PublicKey{p: agg.ToAffine()}, nil
}

// Marshal returns the 48 byte compressed form.
func (p *PublicKey) Marshal() []byte {
	return p.p.Compress()
}

func (p *PublicKey) Equals(other *PublicKey) bool {
	return p.p.Equals(other.p)
}
