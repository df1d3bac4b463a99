package decode

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"eventScope/internal/model"
	"eventScope/internal/schema"
)

func newERC20Decoder(t *testing.T) *Decoder {
	t.Helper()
	registry := schema.NewRegistry()
	if err := registry.AddBuiltinERC20(); err != nil {
		t.Fatalf("builtin erc20: %v", err)
	}
	return NewDecoder(registry)
}

func TestDecoderERC20Transfer(t *testing.T) {
	decoder := newERC20Decoder(t)

	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")

	erc20, err := schema.ERC20ABI()
	if err != nil {
		t.Fatalf("erc20 abi: %v", err)
	}
	data, err := erc20.Events["Transfer"].Inputs.NonIndexed().Pack(big.NewInt(12345))
	if err != nil {
		t.Fatalf("pack value: %v", err)
	}

	transferID := erc20.Events["Transfer"].ID
	if !decoder.CanDecode(transferID.Hex()) {
		t.Fatalf("transfer topic0 not decodable")
	}

	record := model.LogRecord{
		ChainID:     1,
		BlockNumber: 19000000,
		TxHash:      "0xdef",
		LogIndex:    3,
		Address:     "0x4444444444444444444444444444444444444444",
		Topics: []string{
			transferID.Hex(),
			common.BytesToHash(from.Bytes()).Hex(),
			common.BytesToHash(to.Bytes()).Hex(),
		},
		Data:      hexutil.Encode(data),
		Timestamp: 1700000000,
	}

	event, err := decoder.Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if event.EventName != "Transfer" {
		t.Fatalf("event name mismatch: %s", event.EventName)
	}
	if event.Signature != "Transfer(address,address,uint256)" {
		t.Fatalf("signature mismatch: %s", event.Signature)
	}

	want := []string{from.Hex(), to.Hex(), "12345"}
	if len(event.Values) != len(want) {
		t.Fatalf("value count mismatch: %d", len(event.Values))
	}
	for i, v := range want {
		if event.Values[i] != v {
			t.Fatalf("value %d mismatch: %s != %s", i, event.Values[i], v)
		}
	}
	if event.Raw == nil || event.Raw.Topic0 != transferID.Hex() {
		t.Fatalf("raw reference mismatch")
	}
}

func TestDecoderRejectsUnknownTopic(t *testing.T) {
	decoder := newERC20Decoder(t)

	record := model.LogRecord{
		Topics: []string{"0x4242424242424242424242424242424242424242424242424242424242424242"},
	}
	if _, err := decoder.Decode(record); err == nil {
		t.Fatalf("expected unregistered topic error")
	}
	if decoder.CanDecode(record.Topics[0]) {
		t.Fatalf("unknown topic reported decodable")
	}
}

func TestDecoderRejectsMalformedTopics(t *testing.T) {
	decoder := newERC20Decoder(t)

	record := model.LogRecord{Topics: []string{"0x1234"}}
	if _, err := decoder.Decode(record); err == nil {
		t.Fatalf("expected short topic error")
	}

	record = model.LogRecord{}
	if _, err := decoder.Decode(record); err == nil {
		t.Fatalf("expected missing topic0 error")
	}
}

func TestRenderValue(t *testing.T) {
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	hash := common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222")

	cases := []struct {
		in   interface{}
		want string
	}{
		{big.NewInt(-42), "-42"},
		{addr, addr.Hex()},
		{hash, hash.Hex()},
		{[]byte{0xde, 0xad}, "0xdead"},
		{[32]byte(hash), hash.Hex()},
		{true, "true"},
		{"hello", "hello"},
	}

	for _, tc := range cases {
		if got := renderValue(tc.in); got != tc.want {
			t.Fatalf("render %T: %s != %s", tc.in, got, tc.want)
		}
	}
}
