package store

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

func encode(val interface{}) ([]byte, error) {
	enc, err := rlp.EncodeToBytes(val)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, enc), nil
}

func decode(data []byte, val interface{}) error {
	dec, err := snappy.Decode(nil, data)
	if err != nil {
		return errors.Wrap(err, "snappy decode")
	}
	return rlp.DecodeBytes(dec, val)
}
