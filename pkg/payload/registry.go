// Package payload maps protocol ids onto payload interpretations. The
// registry keeps the fragmentation engine protocol-agnostic: new ids plug in
// without touching the framing logic.
package payload

import (
	"fmt"
	"unicode/utf8"

	"github.com/moxune/sealscript/pkg/protocol"
)

// Protocol renders a typed value to payload bytes and back. Both directions
// must be total for accepted inputs; rejection is ErrInvalidInput.
type Protocol interface {
	Render(value any) ([]byte, error)
	Interpret(data []byte) (any, error)
}

type Registry struct {
	protocols map[int]Protocol
}

// NewRegistry ships the UTF-8 text protocol at id 2.
func NewRegistry() *Registry {
	return &Registry{protocols: map[int]Protocol{
		protocol.ProtocolText: Text{},
	}}
}

func (r *Registry) Register(id int, p Protocol) error {
	if id < 0 || id > protocol.MaxProtocolID {
		return fmt.Errorf("payload: protocol id %d outside [0, 64): %w", id, protocol.ErrInvalidInput)
	}
	r.protocols[id] = p
	return nil
}

func (r *Registry) Render(id int, value any) ([]byte, error) {
	p, ok := r.protocols[id]
	if !ok {
		return nil, fmt.Errorf("payload: no protocol registered for id %d: %w", id, protocol.ErrUnsupportedProtocol)
	}
	return p.Render(value)
}

func (r *Registry) Interpret(id int, data []byte) (any, error) {
	p, ok := r.protocols[id]
	if !ok {
		return nil, fmt.Errorf("payload: no protocol registered for id %d: %w", id, protocol.ErrUnsupportedProtocol)
	}
	return p.Interpret(data)
}

// Text is protocol id 2: the payload is the UTF-8 encoding of a string.
type Text struct{}

func (Text) Render(value any) ([]byte, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("payload: text protocol expects a string, got %T: %w", value, protocol.ErrInvalidInput)
	}
	return []byte(s), nil
}

func (Text) Interpret(data []byte) (any, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("payload: decrypted bytes are not valid UTF-8: %w", protocol.ErrInvalidInput)
	}
	return string(data), nil
}
