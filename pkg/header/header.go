// Package header packs unit metadata into an obfuscated 8-byte block.
//
// The block is a big-endian 64-bit value: bits [0,52) are filler (wall-clock
// derived for genuine headers, random for dummies, never read on decode),
// bits [52,58) the protocol id, bits [58,63) the AES block count, and bit 63
// the fragment flag. The encoded bytes are passed through an unchained
// Blowfish block so no field is visible on the wire.
package header

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/moxune/sealscript/pkg/crypt"
	"github.com/moxune/sealscript/pkg/protocol"
)

// Fields is the decoded view of a header. SlotLen is the number of
// ciphertext bytes the unit's chunk slot actually carries.
type Fields struct {
	SlotLen    int
	ProtocolID int
	Fragment   bool
}

type Codec struct {
	cipher *crypt.HeaderCipher
	rng    crypt.Random
}

func NewCodec(cipher *crypt.HeaderCipher, rng crypt.Random) *Codec {
	return &Codec{cipher: cipher, rng: rng}
}

// Encode builds the obfuscated header for a chunk of payloadLen plaintext
// bytes. The stored block count is payloadLen/16 + 1: CBC with PKCS#7 always
// emits one block more than the plaintext fills, including the full padding
// block when payloadLen is a block multiple.
func (c *Codec) Encode(payloadLen, protocolID int, fragment bool) ([]byte, error) {
	if protocolID < 0 || protocolID > protocol.MaxProtocolID {
		return nil, fmt.Errorf("header: protocol id %d outside [0, 64): %w", protocolID, protocol.ErrInvalidInput)
	}
	if payloadLen < 0 {
		return nil, fmt.Errorf("header: negative payload length %d: %w", payloadLen, protocol.ErrInvalidInput)
	}
	blocks := payloadLen/protocol.CipherBlockSize + 1
	if blocks > protocol.MaxBlockCount {
		return nil, fmt.Errorf("header: payload length %d exceeds the block-count field: %w", payloadLen, protocol.ErrInvalidInput)
	}

	filler := uint64(time.Now().UnixNano()) & protocol.FillerMask
	return c.seal(filler, uint64(blocks), uint64(protocolID), fragment)
}

// EncodeDummy builds a continuation header. All fields below the fragment
// flag come from the random source; decode only ever reads the flag.
func (c *Codec) EncodeDummy() ([]byte, error) {
	filler, err := c.rng.Uint64()
	if err != nil {
		return nil, err
	}
	blocks := filler >> protocol.BlockCountShift & protocol.BlockCountMask
	id := filler >> protocol.ProtocolShift & protocol.ProtocolMask
	return c.seal(filler&protocol.FillerMask, blocks, id, true)
}

func (c *Codec) seal(filler, blocks, protocolID uint64, fragment bool) ([]byte, error) {
	v := filler | protocolID<<protocol.ProtocolShift | blocks<<protocol.BlockCountShift
	if fragment {
		v |= 1 << protocol.FragmentShift
	}
	plain := make([]byte, protocol.HeaderSize)
	binary.BigEndian.PutUint64(plain, v)
	return c.cipher.EncryptBlock(plain)
}

// Decode deobfuscates raw and extracts the three meaningful fields. The
// filler is never validated.
func (c *Codec) Decode(raw []byte) (Fields, error) {
	plain, err := c.cipher.DecryptBlock(raw)
	if err != nil {
		return Fields{}, err
	}
	v := binary.BigEndian.Uint64(plain)
	return Fields{
		SlotLen:    int(v>>protocol.BlockCountShift&protocol.BlockCountMask) * protocol.CipherBlockSize,
		ProtocolID: int(v >> protocol.ProtocolShift & protocol.ProtocolMask),
		Fragment:   v>>protocol.FragmentShift == 1,
	}, nil
}
