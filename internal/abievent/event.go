package abievent

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Param declares one event input: its ABI type and whether it is carried
// in a topic slot instead of the data payload.
type Param struct {
	Type    abi.Type
	Indexed bool
}

// Event describes an event declaration. Inputs keep the declaration order,
// which is also the order Decode returns values in. An Event carries no
// decode-time state and is safe to share across concurrent Decode calls.
type Event struct {
	// Signature is the canonical form, e.g. "Transfer(address,address,uint256)".
	Signature string
	Inputs    []Param
	Anonymous bool
}

// ID returns the keccak-256 hash of the signature. Non-anonymous logs carry
// it as topic 0.
func (e Event) ID() common.Hash {
	return crypto.Keccak256Hash([]byte(e.Signature))
}

// splitInputs filters Inputs by the indexed flag in a single pass,
// returning the original positions alongside the matching params.
func (e Event) splitInputs(indexed bool) ([]int, []Param) {
	indices := make([]int, 0, len(e.Inputs))
	params := make([]Param, 0, len(e.Inputs))
	for i, p := range e.Inputs {
		if p.Indexed == indexed {
			indices = append(indices, i)
			params = append(params, p)
		}
	}
	return indices, params
}

var bytes32Type = mustNewType("bytes32")

func mustNewType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("abievent: bad builtin type %q: %v", t, err))
	}
	return typ
}

// topicType rewrites a topic-carried type for decoding. Dynamically-sized
// values (and fixed arrays/tuples, which may exceed one slot) are logged as
// the keccak hash of their encoding, so their topic is an opaque 32-byte
// value rather than something structurally decodable.
func topicType(typ abi.Type) abi.Type {
	switch typ.T {
	case abi.StringTy, abi.BytesTy, abi.SliceTy, abi.ArrayTy, abi.TupleTy:
		return bytes32Type
	case abi.IntTy, abi.UintTy, abi.BoolTy, abi.AddressTy,
		abi.FixedBytesTy, abi.HashTy, abi.FixedPointTy, abi.FunctionTy:
		return typ
	default:
		return typ
	}
}

// Decode splits a log into topic-carried and data-carried groups, decodes
// each through the default go-ethereum unpacker, and returns the values in
// declaration order.
func (e Event) Decode(topics []common.Hash, data []byte) ([]interface{}, error) {
	return e.DecodeWith(DefaultDecoder, topics, data)
}

// DecodeWith is Decode with an explicit value decoder.
//
// For a non-anonymous event, topic 0 must equal the signature hash and is
// not decoded; every remaining topic must correspond to one indexed input.
// Decoder failures are returned as-is.
func (e Event) DecodeWith(dec ValueDecoder, topics []common.Hash, data []byte) ([]interface{}, error) {
	topicsLen := len(topics)

	topicIndices, topicParams := e.splitInputs(true)
	dataIndices, dataParams := e.splitInputs(false)

	skip := 0
	if !e.Anonymous {
		if topicsLen == 0 {
			return nil, fmt.Errorf("%w: missing signature topic for %s", ErrInvalidData, e.Signature)
		}
		if topics[0] != e.ID() {
			return nil, fmt.Errorf("%w: signature topic mismatch for %s", ErrInvalidData, e.Signature)
		}
		skip = 1
	}

	topicTypes := make([]abi.Type, len(topicParams))
	for i, p := range topicParams {
		topicTypes[i] = topicType(p.Type)
	}

	flatTopics := make([]byte, 0, (topicsLen-skip)*common.HashLength)
	for _, topic := range topics[skip:] {
		flatTopics = append(flatTopics, topic.Bytes()...)
	}

	topicValues, err := dec.DecodeValues(topicTypes, flatTopics)
	if err != nil {
		return nil, err
	}
	// Each topic encodes exactly one value; a shortfall means the log has
	// more topic slots than the declaration has indexed inputs.
	if len(topicValues) != topicsLen-skip {
		return nil, fmt.Errorf("%w: decoded %d topic values for %d topic slots",
			ErrInvalidData, len(topicValues), topicsLen-skip)
	}

	dataTypes := make([]abi.Type, len(dataParams))
	for i, p := range dataParams {
		dataTypes[i] = p.Type
	}

	dataValues, err := dec.DecodeValues(dataTypes, data)
	if err != nil {
		return nil, err
	}

	// Reassemble both groups into declaration order through a fixed-size
	// arena keyed by original position.
	values := make([]interface{}, len(e.Inputs))
	filled := make([]bool, len(e.Inputs))
	for i, v := range topicValues {
		if i >= len(topicIndices) {
			break
		}
		values[topicIndices[i]] = v
		filled[topicIndices[i]] = true
	}
	for i, v := range dataValues {
		if i >= len(dataIndices) {
			break
		}
		values[dataIndices[i]] = v
		filled[dataIndices[i]] = true
	}
	for i, ok := range filled {
		if !ok {
			return nil, fmt.Errorf("%w: no value for input %d of %s", ErrIncompleteDecode, i, e.Signature)
		}
	}

	return values, nil
}
