// Package fragment is the top of the codec stack. Encode turns one payload
// into an ordered sequence of fixed-length unit strings; Decode reverses it.
// The whole payload is encrypted as a single CBC stream whose IV derives
// from the terminal unit's obfuscated header, so the cipher chaining spans
// unit boundaries and only the terminal header carries real metadata.
package fragment

import (
	"fmt"

	"github.com/moxune/sealscript/pkg/crypt"
	"github.com/moxune/sealscript/pkg/header"
	"github.com/moxune/sealscript/pkg/payload"
	"github.com/moxune/sealscript/pkg/protocol"
	"github.com/moxune/sealscript/pkg/unit"
)

type Engine struct {
	cipher   *crypt.PayloadCipher
	headers  *header.Codec
	packer   *unit.Packer
	registry *payload.Registry
}

func NewEngine(cipher *crypt.PayloadCipher, headers *header.Codec, packer *unit.Packer, registry *payload.Registry) *Engine {
	return &Engine{cipher: cipher, headers: headers, packer: packer, registry: registry}
}

// NewDefaultEngine wires an engine from a key set with the stock registry
// and crypto/rand as the entropy source.
func NewDefaultEngine(keys *crypt.KeySet) (*Engine, error) {
	payloadCipher, err := crypt.NewPayloadCipher(keys.PayloadKey)
	if err != nil {
		return nil, err
	}
	headerCipher, err := crypt.NewHeaderCipher(keys.HeaderKey)
	if err != nil {
		return nil, err
	}
	rng := crypt.CryptoRandom{}
	return NewEngine(
		payloadCipher,
		header.NewCodec(headerCipher, rng),
		unit.NewPacker(rng),
		payload.NewRegistry(),
	), nil
}

// Encode renders value under protocolID, encrypts it, and splits the
// ciphertext across as many units as it needs. Unit order is significant:
// the terminal unit is always last.
func (e *Engine) Encode(protocolID int, value any) ([]string, error) {
	data, err := e.registry.Render(protocolID, value)
	if err != nil {
		return nil, err
	}
	if len(data) < protocol.ChunkSlotSize {
		return e.encodeSingle(protocolID, data)
	}
	return e.encodeFragments(protocolID, data)
}

// EncodeText is Encode under the stock UTF-8 text protocol.
func (e *Engine) EncodeText(text string) ([]string, error) {
	return e.Encode(protocol.ProtocolText, text)
}

func (e *Engine) encodeSingle(protocolID int, data []byte) ([]string, error) {
	h, err := e.headers.Encode(len(data), protocolID, false)
	if err != nil {
		return nil, err
	}
	ciphertext, err := e.cipher.Encrypt(ivFromHeader(h), data)
	if err != nil {
		return nil, err
	}
	s, err := e.packer.Pack(h, ciphertext)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}

func (e *Engine) encodeFragments(protocolID int, data []byte) ([]string, error) {
	// The terminal header records only the last chunk's plaintext length.
	// When the payload is an exact slot multiple that length is zero and the
	// terminal unit carries nothing but the cipher's final padding block.
	lastLen := len(data) % protocol.ChunkSlotSize
	terminal, err := e.headers.Encode(lastLen, protocolID, false)
	if err != nil {
		return nil, err
	}

	ciphertext, err := e.cipher.Encrypt(ivFromHeader(terminal), data)
	if err != nil {
		return nil, err
	}

	var units []string
	for start := 0; start < len(ciphertext); start += protocol.ChunkSlotSize {
		end := min(start+protocol.ChunkSlotSize, len(ciphertext))
		chunk := ciphertext[start:end]

		h := terminal
		if end < len(ciphertext) {
			if h, err = e.headers.EncodeDummy(); err != nil {
				return nil, err
			}
		}
		s, err := e.packer.Pack(h, chunk)
		if err != nil {
			return nil, err
		}
		units = append(units, s)
	}
	return units, nil
}

// Decode reassembles a unit sequence in the order given. The last element
// must be the terminal unit; Decode does not scan for it.
func (e *Engine) Decode(units []string) (int, any, error) {
	switch len(units) {
	case 0:
		return 0, nil, fmt.Errorf("fragment: empty unit sequence: %w", protocol.ErrProtocolViolation)
	case 1:
		return e.decodeSingle(units[0])
	default:
		return e.decodeFragments(units)
	}
}

// DecodeText is Decode constrained to the stock UTF-8 text protocol.
func (e *Engine) DecodeText(units []string) (string, error) {
	id, value, err := e.Decode(units)
	if err != nil {
		return "", err
	}
	if id != protocol.ProtocolText {
		return "", fmt.Errorf("fragment: expected text protocol, got id %d: %w", id, protocol.ErrUnsupportedProtocol)
	}
	return value.(string), nil
}

func (e *Engine) decodeSingle(s string) (int, any, error) {
	raw, fields, slot, err := e.unpack(s)
	if err != nil {
		return 0, nil, err
	}
	if err := checkTerminal(fields); err != nil {
		return 0, nil, err
	}
	return e.open(raw, fields, slot[:fields.SlotLen])
}

func (e *Engine) decodeFragments(units []string) (int, any, error) {
	last := len(units) - 1
	terminalRaw, fields, terminalSlot, err := e.unpack(units[last])
	if err != nil {
		return 0, nil, err
	}
	if err := checkTerminal(fields); err != nil {
		return 0, nil, err
	}

	ciphertext := make([]byte, 0, last*protocol.ChunkSlotSize+fields.SlotLen)
	for i, s := range units[:last] {
		_, f, slot, err := e.unpack(s)
		if err != nil {
			return 0, nil, err
		}
		if !f.Fragment {
			return 0, nil, fmt.Errorf("fragment: inconsistent fragment sequence: unit %d is not a continuation: %w",
				i, protocol.ErrProtocolViolation)
		}
		ciphertext = append(ciphertext, slot...)
	}
	ciphertext = append(ciphertext, terminalSlot[:fields.SlotLen]...)

	return e.open(terminalRaw, fields, ciphertext)
}

// unpack recovers one unit's header bytes, decoded fields and full slot.
// Field sanity beyond the flag is the caller's concern: continuation units
// carry random junk everywhere but the flag bit.
func (e *Engine) unpack(s string) ([]byte, header.Fields, []byte, error) {
	raw, slot, err := e.packer.Unpack(s)
	if err != nil {
		return nil, header.Fields{}, nil, err
	}
	fields, err := e.headers.Decode(raw)
	if err != nil {
		return nil, header.Fields{}, nil, err
	}
	return raw, fields, slot, nil
}

func checkTerminal(fields header.Fields) error {
	if fields.Fragment {
		return fmt.Errorf("fragment: terminal unit carries the continuation flag: %w", protocol.ErrProtocolViolation)
	}
	// Genuine terminal headers always claim between one cipher block (the
	// block count is never zero) and the full slot.
	if fields.SlotLen < protocol.CipherBlockSize || fields.SlotLen > protocol.ChunkSlotSize {
		return fmt.Errorf("fragment: terminal header claims %d slot bytes outside [%d, %d]: %w",
			fields.SlotLen, protocol.CipherBlockSize, protocol.ChunkSlotSize, protocol.ErrProtocolViolation)
	}
	return nil
}

func (e *Engine) open(headerRaw []byte, fields header.Fields, ciphertext []byte) (int, any, error) {
	plain, err := e.cipher.Decrypt(ivFromHeader(headerRaw), ciphertext)
	if err != nil {
		return 0, nil, err
	}
	value, err := e.registry.Interpret(fields.ProtocolID, plain)
	if err != nil {
		return 0, nil, err
	}
	return fields.ProtocolID, value, nil
}

// ivFromHeader builds the 16-byte CBC IV by repeating the obfuscated header
// bytes, so both sides derive it from wire data alone.
func ivFromHeader(h []byte) []byte {
	iv := make([]byte, protocol.CipherBlockSize)
	copy(iv, h)
	copy(iv[protocol.HeaderSize:], h)
	return iv
}
