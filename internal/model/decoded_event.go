package model

// DecodedEvent is a log decoded against a registered event declaration.
// Values holds one rendered value per declared input, in declaration order,
// regardless of which inputs were topic-carried.
type DecodedEvent struct {
	ChainID     uint64     `json:"chain_id"`
	BlockNumber uint64     `json:"block_number"`
	BlockHash   string     `json:"block_hash"`
	TxHash      string     `json:"tx_hash"`
	LogIndex    uint64     `json:"log_index"`
	Address     string     `json:"address"`
	EventName   string     `json:"event_name"`
	Signature   string     `json:"signature"`
	Timestamp   uint64     `json:"timestamp"`
	Values      []string   `json:"values"`
	Raw         *RawLogRef `json:"raw,omitempty"`
}

// RawLogRef keeps a minimal raw reference for traceability.
type RawLogRef struct {
	Topic0 string `json:"topic0"`
	Data   string `json:"data"`
}
