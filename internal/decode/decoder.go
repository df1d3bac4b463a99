package decode

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"eventScope/internal/model"
	"eventScope/internal/schema"
)

// Decoder turns raw log records into decoded events using a schema registry.
type Decoder struct {
	registry *schema.Registry
}

// NewDecoder builds a decoder over the given registry.
func NewDecoder(registry *schema.Registry) *Decoder {
	return &Decoder{registry: registry}
}

// CanDecode checks whether topic0 maps to a registered event.
func (d *Decoder) CanDecode(topic0 string) bool {
	raw, err := hexutil.Decode(topic0)
	if err != nil || len(raw) != common.HashLength {
		return false
	}
	_, ok := d.registry.Lookup(common.BytesToHash(raw))
	return ok
}

// Decode resolves the record's topic0 against the registry and decodes the
// log into declaration-order values.
func (d *Decoder) Decode(record model.LogRecord) (*model.DecodedEvent, error) {
	if len(record.Topics) == 0 {
		return nil, fmt.Errorf("missing topic0")
	}

	topics, err := parseTopicHashes(record.Topics)
	if err != nil {
		return nil, err
	}

	entry, ok := d.registry.Lookup(topics[0])
	if !ok {
		return nil, fmt.Errorf("unregistered topic0: %s", record.Topics[0])
	}

	data, err := parseDataHex(record.Data)
	if err != nil {
		return nil, err
	}

	values, err := entry.Event.Decode(topics, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", entry.Name, err)
	}

	rendered := make([]string, len(values))
	for i, v := range values {
		rendered[i] = renderValue(v)
	}

	return &model.DecodedEvent{
		ChainID:     record.ChainID,
		BlockNumber: record.BlockNumber,
		BlockHash:   record.BlockHash,
		TxHash:      record.TxHash,
		LogIndex:    record.LogIndex,
		Address:     record.Address,
		EventName:   entry.Name,
		Signature:   entry.Event.Signature,
		Timestamp:   record.Timestamp,
		Values:      rendered,
		Raw:         &model.RawLogRef{Topic0: record.Topics[0], Data: record.Data},
	}, nil
}

func parseTopicHashes(topics []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(topics))
	for _, topic := range topics {
		raw, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(raw) != common.HashLength {
			return nil, fmt.Errorf("topic length %d", len(raw))
		}
		out = append(out, common.BytesToHash(raw))
	}
	return out, nil
}

func parseDataHex(data string) ([]byte, error) {
	if data == "" {
		return nil, nil
	}
	raw, err := hexutil.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	return raw, nil
}

// renderValue flattens a decoded value into its storage form.
func renderValue(v interface{}) string {
	switch typed := v.(type) {
	case *big.Int:
		return typed.String()
	case common.Address:
		return typed.Hex()
	case common.Hash:
		return typed.Hex()
	case []byte:
		return hexutil.Encode(typed)
	case bool:
		return strconv.FormatBool(typed)
	case string:
		return typed
	}

	// Fixed-size byte arrays ([32]byte from bytes32 topics and fixed-bytes
	// data values) only reach here via reflection.
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		raw := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(raw), rv)
		return hexutil.Encode(raw)
	}

	return fmt.Sprintf("%v", v)
}
