package abievent

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ValueDecoder turns an ordered list of ABI types plus raw bytes into the
// matching decoded values. It must produce exactly one value per type,
// consuming a prefix (or all) of the bytes, or fail.
type ValueDecoder interface {
	DecodeValues(types []abi.Type, data []byte) ([]interface{}, error)
}

// DefaultDecoder decodes through go-ethereum's generic ABI unpacker.
var DefaultDecoder ValueDecoder = gethDecoder{}

type gethDecoder struct{}

func (gethDecoder) DecodeValues(types []abi.Type, data []byte) ([]interface{}, error) {
	args := make(abi.Arguments, len(types))
	for i, typ := range types {
		args[i] = abi.Argument{Type: typ}
	}
	return args.UnpackValues(data)
}
