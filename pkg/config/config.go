// Package config loads the key file the CLI feeds into the codec. The file
// is TOML with a single hex-encoded 32-byte master key; both cipher keys are
// derived from it.
package config

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/moxune/sealscript/pkg/crypt"
	"github.com/moxune/sealscript/pkg/protocol"
)

type KeyFile struct {
	MasterKey string `toml:"master_key"`
}

func LoadKeyFile(path string) (*KeyFile, error) {
	var kf KeyFile
	if _, err := toml.DecodeFile(path, &kf); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &kf, nil
}

// KeySet decodes and validates the master key, then derives the cipher keys.
func (kf *KeyFile) KeySet() (*crypt.KeySet, error) {
	master, err := hex.DecodeString(kf.MasterKey)
	if err != nil {
		return nil, fmt.Errorf("config: master_key is not valid hex: %w", protocol.ErrInvalidInput)
	}
	if len(master) != protocol.MasterKeySize {
		return nil, fmt.Errorf("config: master_key must be %d bytes, got %d: %w",
			protocol.MasterKeySize, len(master), protocol.ErrInvalidInput)
	}
	return crypt.DeriveKeys(master)
}

// Demo returns the well-known key file the CLI falls back to when no key
// file is given. It is baked into the source and offers no confidentiality
// against anyone who has read it.
func Demo() *KeyFile {
	// hex of "sealscript-demo-master-key-00001"
	return &KeyFile{MasterKey: "7365616c7363726970742d64656d6f2d6d61737465722d6b65792d3030303031"}
}

// Generate draws a fresh master key from rng.
func Generate(rng crypt.Random) (*KeyFile, error) {
	master, err := rng.Bytes(protocol.MasterKeySize)
	if err != nil {
		return nil, err
	}
	return &KeyFile{MasterKey: hex.EncodeToString(master)}, nil
}

func (kf *KeyFile) WriteFile(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(kf); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
