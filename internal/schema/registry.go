package schema

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"eventScope/internal/abievent"
)

// Entry pairs an event declaration with the name it was registered under.
type Entry struct {
	Name  string
	Event abievent.Event
}

// Registry resolves a log's topic0 to the event declaration that decodes it.
// Anonymous events have no signature topic and are not indexed here.
type Registry struct {
	byTopic map[common.Hash]Entry
}

func NewRegistry() *Registry {
	return &Registry{byTopic: make(map[common.Hash]Entry)}
}

// Register adds a non-anonymous event under its signature hash. Anonymous
// events are ignored: there is no topic0 to match them by.
func (r *Registry) Register(name string, event abievent.Event) {
	if event.Anonymous {
		return
	}
	r.byTopic[event.ID()] = Entry{Name: name, Event: event}
}

// AddABI registers every event of a parsed contract ABI.
func (r *Registry) AddABI(contractABI abi.ABI) {
	for name, ev := range contractABI.Events {
		r.Register(name, fromABIEvent(ev))
	}
}

// AddABIJSON parses contract ABI JSON and registers its events.
func (r *Registry) AddABIJSON(reader io.Reader) error {
	contractABI, err := abi.JSON(reader)
	if err != nil {
		return fmt.Errorf("parse abi: %w", err)
	}
	r.AddABI(contractABI)
	return nil
}

// AddABIFile reads contract ABI JSON from disk and registers its events.
func (r *Registry) AddABIFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open abi file: %w", err)
	}
	defer file.Close()

	if err := r.AddABIJSON(file); err != nil {
		return fmt.Errorf("abi file %s: %w", path, err)
	}
	return nil
}

// Lookup returns the entry registered for topic0, if any.
func (r *Registry) Lookup(topic0 common.Hash) (Entry, bool) {
	entry, ok := r.byTopic[topic0]
	return entry, ok
}

// Len reports the number of registered events.
func (r *Registry) Len() int {
	return len(r.byTopic)
}

// Load builds a registry from ABI files, falling back to the built-in
// ERC-20 events when no files are given.
func Load(paths []string) (*Registry, error) {
	registry := NewRegistry()
	if len(paths) == 0 {
		if err := registry.AddBuiltinERC20(); err != nil {
			return nil, err
		}
		return registry, nil
	}

	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if err := registry.AddABIFile(path); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func fromABIEvent(ev abi.Event) abievent.Event {
	inputs := make([]abievent.Param, len(ev.Inputs))
	for i, in := range ev.Inputs {
		inputs[i] = abievent.Param{Type: in.Type, Indexed: in.Indexed}
	}
	return abievent.Event{
		Signature: ev.Sig,
		Inputs:    inputs,
		Anonymous: ev.Anonymous,
	}
}
