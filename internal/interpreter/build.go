package interpreter

import (
	"fmt"
	"os"

	"github.com/leefowlercu/mldata/internal/config"
)

// Interpreter kinds.
const (
	KindIdentity      = "identity"
	KindAge           = "age"
	KindAgePassphrase = "age-passphrase"
	KindAEAD          = "aead"
	KindZstd          = "zstd"
	KindLZ4           = "lz4"
	KindNone          = "none"
)

// FromConfig builds the configured pipeline: compression first, then
// encryption. A config selecting neither yields Identity.
func FromConfig(cfg config.InterpreterConfig) (Interpreter, error) {
	compression, err := compressionFor(cfg.Compression)
	if err != nil {
		return nil, err
	}

	encryption, err := encryptionFor(cfg)
	if err != nil {
		return nil, err
	}

	chain := NewChain(compression, encryption)
	switch len(chain) {
	case 0:
		return Identity{}, nil
	case 1:
		return chain[0], nil
	default:
		return chain, nil
	}
}

func compressionFor(name string) (Interpreter, error) {
	switch name {
	case "", KindNone:
		return nil, nil
	case KindZstd:
		return Zstd{}, nil
	case KindLZ4:
		return LZ4{}, nil
	default:
		return nil, fmt.Errorf("%w: compression %q", ErrUnknownKind, name)
	}
}

func encryptionFor(cfg config.InterpreterConfig) (Interpreter, error) {
	switch cfg.Kind {
	case "", KindIdentity:
		return nil, nil

	case KindAge:
		if cfg.AgeIdentityFile == "" {
			return nil, fmt.Errorf("interpreter.age_identity_file is required for kind %q", cfg.Kind)
		}
		return NewAgeFromIdentityFile(config.ExpandHome(cfg.AgeIdentityFile), cfg.AgeRecipients...)

	case KindAgePassphrase:
		passphrase := os.Getenv(cfg.PassphraseEnv)
		if passphrase == "" {
			return nil, fmt.Errorf("environment variable %s must hold the age passphrase", cfg.PassphraseEnv)
		}
		return NewAgePassphrase(passphrase, cfg.ScryptWorkFactor)

	case KindAEAD:
		raw := os.Getenv(cfg.KeyEnv)
		if raw == "" {
			return nil, fmt.Errorf("environment variable %s must hold the aead key", cfg.KeyEnv)
		}
		key, err := ParseKey(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid key in %s; %w", cfg.KeyEnv, err)
		}
		return NewAEAD(key)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}
