package core

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
)

type bitvector interface {
	BitAt(idx uint64) bool
	Len() uint64
}

// DecompressBits unpacks a participation bitvector, least significant bit
// of the first byte first.
func DecompressBits(packed []byte, size uint64) ([]bool, error) {
	if uint64(len(packed))*8 != size {
		return nil, errors.Wrapf(ErrMalformedUpdate, "sync committee bits: have %d bytes, want %d", len(packed), size/8)
	}
	var bv bitvector
	switch size {
	case 32:
		bv = bitfield.Bitvector32(packed)
	case 64:
		bv = bitfield.Bitvector64(packed)
	case 128:
		bv = bitfield.Bitvector128(packed)
	case 512:
		bv = bitfield.Bitvector512(packed)
	default:
		return nil, errors.Wrapf(ErrMalformedUpdate, "unsupported sync committee size %d", size)
	}
	bits := make([]bool, bv.Len())
	for i := range bits {
		bits[i] = bv.BitAt(uint64(i))
	}
	return bits, nil
}

func CountSetBits(bits []bool) uint64 {
	var count uint64
	for _, set := range bits {
		if set {
			count++
		}
	}
	return count
}

// HasQuorum reports whether count signers out of size reach two thirds.
func HasQuorum(count, size uint64) bool {
	return count*3 >= size*2
}
