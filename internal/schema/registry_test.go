package schema

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

func TestRegistryBuiltinERC20Transfer(t *testing.T) {
	registry := NewRegistry()
	if err := registry.AddBuiltinERC20(); err != nil {
		t.Fatalf("builtin erc20: %v", err)
	}
	if registry.Len() != 2 {
		t.Fatalf("expected 2 events, got %d", registry.Len())
	}

	transferID := common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	entry, ok := registry.Lookup(transferID)
	if !ok {
		t.Fatalf("Transfer not registered")
	}
	if entry.Name != "Transfer" {
		t.Fatalf("entry name mismatch: %s", entry.Name)
	}
	if entry.Event.Signature != "Transfer(address,address,uint256)" {
		t.Fatalf("signature mismatch: %s", entry.Event.Signature)
	}

	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")

	erc20, err := ERC20ABI()
	if err != nil {
		t.Fatalf("erc20 abi: %v", err)
	}
	data, err := erc20.Events["Transfer"].Inputs.NonIndexed().Pack(big.NewInt(1000))
	if err != nil {
		t.Fatalf("pack value: %v", err)
	}

	topics := []common.Hash{
		transferID,
		common.BytesToHash(from.Bytes()),
		common.BytesToHash(to.Bytes()),
	}
	values, err := entry.Event.Decode(topics, data)
	if err != nil {
		t.Fatalf("decode transfer: %v", err)
	}

	if got := values[0].(common.Address); got != from {
		t.Fatalf("from mismatch: %s", got.Hex())
	}
	if got := values[1].(common.Address); got != to {
		t.Fatalf("to mismatch: %s", got.Hex())
	}
	if got := values[2].(*big.Int); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("value mismatch: %s", got)
	}
}

func TestRegistrySkipsAnonymousEvents(t *testing.T) {
	const anonABI = `[
	  {
	    "anonymous": true,
	    "inputs": [{"indexed": true, "name": "value", "type": "uint256"}],
	    "name": "Hidden",
	    "type": "event"
	  },
	  {
	    "anonymous": false,
	    "inputs": [{"indexed": false, "name": "value", "type": "uint256"}],
	    "name": "Visible",
	    "type": "event"
	  }
	]`

	registry := NewRegistry()
	if err := registry.AddABIJSON(strings.NewReader(anonABI)); err != nil {
		t.Fatalf("add abi: %v", err)
	}
	if registry.Len() != 1 {
		t.Fatalf("expected only the non-anonymous event, got %d", registry.Len())
	}
}

func TestRegistryRejectsBadJSON(t *testing.T) {
	registry := NewRegistry()
	if err := registry.AddABIJSON(strings.NewReader("{not json")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFromABIEventKeepsDeclarationOrder(t *testing.T) {
	const mixedABI = `[
	  {
	    "anonymous": false,
	    "inputs": [
	      {"indexed": false, "name": "a", "type": "uint256"},
	      {"indexed": true, "name": "b", "type": "address"},
	      {"indexed": false, "name": "c", "type": "bool"}
	    ],
	    "name": "Mixed",
	    "type": "event"
	  }
	]`

	parsed, err := abi.JSON(strings.NewReader(mixedABI))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	event := fromABIEvent(parsed.Events["Mixed"])

	if len(event.Inputs) != 3 {
		t.Fatalf("input count mismatch: %d", len(event.Inputs))
	}
	wantIndexed := []bool{false, true, false}
	for i, p := range event.Inputs {
		if p.Indexed != wantIndexed[i] {
			t.Fatalf("input %d indexed flag mismatch", i)
		}
	}
	if event.Signature != "Mixed(uint256,address,bool)" {
		t.Fatalf("signature mismatch: %s", event.Signature)
	}
}
