// Package crypt supplies the cipher and randomness collaborators the codec
// layers consume: an AES-256-CBC payload cipher with PKCS#7 padding, a
// Blowfish single-block header cipher, a secure random source, and the key
// schedule deriving both cipher keys from one master key.
package crypt

import (
	"crypto/rand"
	"encoding/binary"
)

// Random is the entropy source for padding bytes and header filler. It must
// be safe for concurrent use.
type Random interface {
	Bytes(n int) ([]byte, error)
	Uint64() (uint64, error)
}

// CryptoRandom reads from crypto/rand.
type CryptoRandom struct{}

func (CryptoRandom) Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (CryptoRandom) Uint64() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
