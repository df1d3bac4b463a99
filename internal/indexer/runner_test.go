package indexer

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"eventScope/internal/decode"
	"eventScope/internal/model"
	"eventScope/internal/schema"
)

type memoryEventSink struct {
	events []model.DecodedEvent
	errs   []model.DecodeError
}

func (s *memoryEventSink) PutEventBatch(events []model.DecodedEvent) error {
	s.events = append(s.events, events...)
	return nil
}

func (s *memoryEventSink) PutErrorBatch(errs []model.DecodeError) error {
	s.errs = append(s.errs, errs...)
	return nil
}

func TestRunnerDecodeBatch(t *testing.T) {
	registry := schema.NewRegistry()
	if err := registry.AddBuiltinERC20(); err != nil {
		t.Fatalf("builtin erc20: %v", err)
	}

	erc20, err := schema.ERC20ABI()
	if err != nil {
		t.Fatalf("erc20 abi: %v", err)
	}
	transferID := erc20.Events["Transfer"].ID

	data, err := erc20.Events["Transfer"].Inputs.NonIndexed().Pack(big.NewInt(77))
	if err != nil {
		t.Fatalf("pack value: %v", err)
	}

	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")

	good := model.LogRecord{
		ChainID: 1,
		TxHash:  "0xaaa",
		Topics: []string{
			transferID.Hex(),
			common.BytesToHash(from.Bytes()).Hex(),
			common.BytesToHash(to.Bytes()).Hex(),
		},
		Data: hexutil.Encode(data),
	}

	unknown := model.LogRecord{
		TxHash: "0xbbb",
		Topics: []string{"0x4242424242424242424242424242424242424242424242424242424242424242"},
	}

	// Registered topic0 but missing indexed topics: decodes to an error record.
	broken := model.LogRecord{
		TxHash: "0xccc",
		Topics: []string{transferID.Hex()},
		Data:   hexutil.Encode(data),
	}

	sink := &memoryEventSink{}
	runner := NewRunner(RunConfig{}, nil, nil, nil).
		WithDecoder(decode.NewDecoder(registry), sink)

	decoded, err := runner.decodeBatch([]model.LogRecord{good, unknown, broken})
	if err != nil {
		t.Fatalf("decode batch: %v", err)
	}

	if decoded != 1 || len(sink.events) != 1 {
		t.Fatalf("expected one decoded event, got %d", len(sink.events))
	}
	if sink.events[0].EventName != "Transfer" {
		t.Fatalf("event name mismatch: %s", sink.events[0].EventName)
	}
	if sink.events[0].Values[2] != "77" {
		t.Fatalf("value mismatch: %v", sink.events[0].Values)
	}

	if len(sink.errs) != 1 {
		t.Fatalf("expected one decode error, got %d", len(sink.errs))
	}
	if sink.errs[0].TxHash != "0xccc" {
		t.Fatalf("error record mismatch: %+v", sink.errs[0])
	}
}

func TestRunnerDecodeBatchWithoutDecoder(t *testing.T) {
	runner := NewRunner(RunConfig{}, nil, nil, nil)
	decoded, err := runner.decodeBatch([]model.LogRecord{{TxHash: "0xaaa"}})
	if err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	if decoded != 0 {
		t.Fatalf("expected no decoding without a decoder")
	}
}
