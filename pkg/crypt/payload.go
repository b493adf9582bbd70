package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/moxune/sealscript/pkg/protocol"
)

var (
	ErrBadIV      = errors.New("crypt: IV must be one AES block")
	ErrBadPadding = errors.New("crypt: invalid PKCS#7 padding")
)

// PayloadCipher encrypts payloads with AES-256-CBC and PKCS#7 padding.
// PKCS#7 always appends at least one byte and a full block when the
// plaintext length is a block multiple, so the ciphertext of an n-byte
// payload is exactly (n/16 + 1) blocks. The header's block-count field
// depends on that guarantee.
type PayloadCipher struct {
	block cipher.Block
}

func NewPayloadCipher(key []byte) (*PayloadCipher, error) {
	if len(key) != protocol.PayloadKeySize {
		return nil, fmt.Errorf("crypt: payload key must be %d bytes, got %d: %w",
			protocol.PayloadKeySize, len(key), protocol.ErrInvalidInput)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &PayloadCipher{block: block}, nil
}

func (c *PayloadCipher) Encrypt(iv, plaintext []byte) ([]byte, error) {
	if len(iv) != protocol.CipherBlockSize {
		return nil, ErrBadIV
	}
	padded := pkcs7Pad(plaintext, protocol.CipherBlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out, padded)
	return out, nil
}

func (c *PayloadCipher) Decrypt(iv, ciphertext []byte) ([]byte, error) {
	if len(iv) != protocol.CipherBlockSize {
		return nil, ErrBadIV
	}
	if len(ciphertext) == 0 || len(ciphertext)%protocol.CipherBlockSize != 0 {
		return nil, fmt.Errorf("crypt: ciphertext length %d is not a positive block multiple", len(ciphertext))
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(out, ciphertext)
	return pkcs7Unpad(out, protocol.CipherBlockSize)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrBadPadding
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, ErrBadPadding
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrBadPadding
		}
	}
	return data[:len(data)-padLen], nil
}
