package crypt

import (
	"fmt"

	"golang.org/x/crypto/blowfish"

	"github.com/moxune/sealscript/pkg/protocol"
)

// HeaderCipher obfuscates the 8-byte unit header with a single unchained
// Blowfish block. This hides the header's bit fields from casual inspection;
// it is not an authentication mechanism.
type HeaderCipher struct {
	block *blowfish.Cipher
}

func NewHeaderCipher(key []byte) (*HeaderCipher, error) {
	block, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &HeaderCipher{block: block}, nil
}

func (c *HeaderCipher) EncryptBlock(src []byte) ([]byte, error) {
	if len(src) != protocol.HeaderSize {
		return nil, fmt.Errorf("crypt: header block must be %d bytes, got %d: %w",
			protocol.HeaderSize, len(src), protocol.ErrInvalidInput)
	}
	dst := make([]byte, protocol.HeaderSize)
	c.block.Encrypt(dst, src)
	return dst, nil
}

func (c *HeaderCipher) DecryptBlock(src []byte) ([]byte, error) {
	if len(src) != protocol.HeaderSize {
		return nil, fmt.Errorf("crypt: header block must be %d bytes, got %d: %w",
			protocol.HeaderSize, len(src), protocol.ErrInvalidInput)
	}
	dst := make([]byte, protocol.HeaderSize)
	c.block.Decrypt(dst, src)
	return dst, nil
}
