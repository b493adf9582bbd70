// Package unit assembles one fixed-length message unit: 8 header bytes, a
// 272-byte ciphertext slot, 280 bytes total, rendered as exactly 140 CJK
// codepoints. Unused slot bytes are filled with random padding so every unit
// looks the same regardless of how much ciphertext it carries.
package unit

import (
	"fmt"

	"github.com/moxune/sealscript/pkg/codec"
	"github.com/moxune/sealscript/pkg/crypt"
	"github.com/moxune/sealscript/pkg/protocol"
)

type Packer struct {
	rng crypt.Random
}

func NewPacker(rng crypt.Random) *Packer {
	return &Packer{rng: rng}
}

// Pack renders header‖chunk‖padding as a unit string.
func (p *Packer) Pack(header, chunk []byte) (string, error) {
	if len(header) != protocol.HeaderSize {
		return "", fmt.Errorf("unit: header must be %d bytes, got %d: %w",
			protocol.HeaderSize, len(header), protocol.ErrInvalidInput)
	}
	if len(chunk) > protocol.ChunkSlotSize {
		return "", fmt.Errorf("unit: chunk length %d exceeds slot size %d: %w",
			len(chunk), protocol.ChunkSlotSize, protocol.ErrInvalidInput)
	}

	padding, err := p.rng.Bytes(protocol.ChunkSlotSize - len(chunk))
	if err != nil {
		return "", err
	}

	buf := make([]byte, 0, protocol.UnitBytes)
	buf = append(buf, header...)
	buf = append(buf, chunk...)
	buf = append(buf, padding...)
	return codec.BytesToString(buf)
}

// Unpack recovers the header bytes and the full 272-byte slot. The caller
// truncates the slot to the length recovered from the decoded header; the
// tail past that point is padding.
func (p *Packer) Unpack(s string) (header, slot []byte, err error) {
	raw, err := codec.StringToBytes(s)
	if err != nil {
		return nil, nil, err
	}
	if len(raw) != protocol.UnitBytes {
		return nil, nil, fmt.Errorf("unit: expected %d codepoints, got %d: %w",
			protocol.UnitRunes, len(raw)/2, protocol.ErrInvalidInput)
	}
	return raw[:protocol.HeaderSize], raw[protocol.HeaderSize:], nil
}
