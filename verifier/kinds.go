package verifier

import (
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/MariusVanDerWijden/eth2-bridge-lc/core"
	"github.com/MariusVanDerWijden/eth2-bridge-lc/types"
)

// StaticHeaders is a fixed set of trusted execution headers.
type StaticHeaders map[uint64]types.ExecutionHeaderState

func NewStaticHeaders(headers []types.ExecutionHeaderState) StaticHeaders {
	s := make(StaticHeaders, len(headers))
	for _, h := range headers {
		s[h.BlockNumber] = h
	}
	return s
}

func (s StaticHeaders) ExecutionHeader(number uint64) (types.ExecutionHeaderState, bool) {
	h, ok := s[number]
	return h, ok
}

// NewBasic returns a verifier that trusts a static header set.
func NewBasic(headers []types.ExecutionHeaderState) Verifier {
	return &receiptVerifier{source: NewStaticHeaders(headers)}
}

// BeaconClient is the part of the light client the beacon verifier needs.
type BeaconClient interface {
	HeaderSource
	Initialized() bool
}

type beaconVerifier struct {
	client BeaconClient
	receiptVerifier
}

// NewBeacon returns a verifier that trusts the execution headers imported
// by a beacon light client.
func NewBeacon(client BeaconClient) Verifier {
	return &beaconVerifier{client: client, receiptVerifier: receiptVerifier{source: client}}
}

func (v *beaconVerifier) Verify(msg *Message) (*ethtypes.Log, error) {
	if !v.client.Initialized() {
		return nil, core.ErrNotBootstrapped
	}
	return v.receiptVerifier.Verify(msg)
}

// Config selects a verifier variant.
type Config struct {
	Kind           string
	TrustedHeaders []types.ExecutionHeaderState
	Client         BeaconClient
}

// New builds the verifier named by cfg.Kind.
func New(cfg *Config) (Verifier, error) {
	switch cfg.Kind {
	case KindBasic:
		return NewBasic(cfg.TrustedHeaders), nil
	case KindBeacon:
		if cfg.Client == nil {
			return nil, errors.New("beacon verifier needs a light client")
		}
		return NewBeacon(cfg.Client), nil
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "%q", cfg.Kind)
	}
}
