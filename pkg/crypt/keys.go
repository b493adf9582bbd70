package crypt

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/moxune/sealscript/pkg/protocol"
)

var errHkdfTooLong = errors.New("hkdf: output too long")

// KeySet holds the two fixed keys the codec needs: a 32-byte AES key for
// payload confidentiality and a 16-byte Blowfish key for header obfuscation.
type KeySet struct {
	PayloadKey []byte
	HeaderKey  []byte
}

// DeriveKeys expands a 32-byte master key into a KeySet via HKDF-SHA256.
// Both sides of a channel derive identical keys from the shared master.
func DeriveKeys(master []byte) (*KeySet, error) {
	if len(master) != protocol.MasterKeySize {
		return nil, fmt.Errorf("crypt: master key must be %d bytes, got %d: %w",
			protocol.MasterKeySize, len(master), protocol.ErrInvalidInput)
	}

	prk := hkdfExtract([]byte("sealscript-v1"), master)

	payloadKey, err := hkdfExpand(prk, []byte("payload-cbc-key"), protocol.PayloadKeySize)
	if err != nil {
		return nil, err
	}
	headerKey, err := hkdfExpand(prk, []byte("header-block-key"), protocol.HeaderKeySize)
	if err != nil {
		return nil, err
	}

	return &KeySet{PayloadKey: payloadKey, HeaderKey: headerKey}, nil
}

func hkdfExtract(salt, ikm []byte) []byte {
	if len(salt) == 0 {
		salt = make([]byte, sha256.Size)
	}
	hmc := hmac.New(sha256.New, salt)
	hmc.Write(ikm)
	return hmc.Sum(nil)
}

func hkdfExpand(prk, info []byte, length int) ([]byte, error) {
	hashLen := sha256.Size
	n := (length + hashLen - 1) / hashLen
	if n > 255 {
		return nil, errHkdfTooLong
	}
	var okm, prev []byte
	for i := 1; i <= n; i++ {
		hmc := hmac.New(sha256.New, prk)
		hmc.Write(prev)
		hmc.Write(info)
		hmc.Write([]byte{byte(i)})
		prev = hmc.Sum(nil)
		okm = append(okm, prev...)
	}
	return okm[:length], nil
}
