package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type Domain [32]byte

// BLSPubkey is a compressed BLS12-381 G1 public key.
type BLSPubkey [48]byte

func (p BLSPubkey) MarshalText() ([]byte, error) {
	return hexutil.Bytes(p[:]).MarshalText()
}

func (p *BLSPubkey) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("BLSPubkey", input, p[:])
}

func (p BLSPubkey) String() string {
	return hexutil.Encode(p[:])
}

// BLSSignature is a compressed BLS12-381 G2 signature.
type BLSSignature [96]byte

func (s BLSSignature) MarshalText() ([]byte, error) {
	return hexutil.Bytes(s[:]).MarshalText()
}

func (s *BLSSignature) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("BLSSignature", input, s[:])
}

type SigningData struct {
	ObjectRoot common.Hash
	Domain     Domain
}

type ForkData struct {
	CurrentVersion        [4]byte
	GenesisValidatorsRoot common.Hash
}
