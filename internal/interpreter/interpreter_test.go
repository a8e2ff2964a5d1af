package interpreter

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"filippo.io/age"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leefowlercu/mldata/internal/config"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func testInterpreters(t *testing.T) map[string]Interpreter {
	t.Helper()

	id, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	x25519, err := NewAgeX25519(id.String())
	require.NoError(t, err)

	passphrase, err := NewAgePassphrase("correct horse battery staple", 10)
	require.NoError(t, err)

	aead, err := NewAEAD(testKey(t))
	require.NoError(t, err)

	return map[string]Interpreter{
		"identity":       Identity{},
		"age-x25519":     x25519,
		"age-passphrase": passphrase,
		"aead":           aead,
		"zstd":           Zstd{},
		"lz4":            LZ4{},
		"zstd+aead":      NewChain(Zstd{}, aead),
		"lz4+age":        NewChain(LZ4{}, x25519),
	}
}

func TestRoundTrip(t *testing.T) {
	large := bytes.Repeat([]byte("element payload "), 64*1024)
	random := make([]byte, 4096)
	_, err := rand.Read(random)
	require.NoError(t, err)

	inputs := map[string][]byte{
		"empty":  {},
		"short":  []byte("hello"),
		"large":  large,
		"random": random,
	}

	for name, in := range testInterpreters(t) {
		for inputName, input := range inputs {
			t.Run(name+"/"+inputName, func(t *testing.T) {
				stored, err := in.Cipher(input)
				require.NoError(t, err)

				got, err := in.Decipher(stored)
				require.NoError(t, err)
				assert.Equal(t, input, got)
			})
		}
	}
}

func TestIdentity_PassThrough(t *testing.T) {
	in := []byte{0x00, 0xff, 0x10}

	out, err := Identity{}.Cipher(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	out, err = Identity{}.Decipher(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestOrIdentity(t *testing.T) {
	assert.Equal(t, Identity{}, OrIdentity(nil))
	assert.Equal(t, Zstd{}, OrIdentity(Zstd{}))
}

func TestCipher_Transforms(t *testing.T) {
	input := bytes.Repeat([]byte("abc"), 100)
	for name, in := range testInterpreters(t) {
		if name == "identity" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			stored, err := in.Cipher(input)
			require.NoError(t, err)
			assert.NotEqual(t, input, stored)
		})
	}
}

func TestDecipher_DetectsCorruption(t *testing.T) {
	input := []byte("the quick brown fox jumps over the lazy dog")

	for name, in := range testInterpreters(t) {
		switch name {
		case "identity", "zstd", "lz4":
			// Compression formats are covered by the garbage input test below.
			continue
		}
		t.Run(name, func(t *testing.T) {
			stored, err := in.Cipher(input)
			require.NoError(t, err)

			tampered := bytes.Clone(stored)
			tampered[len(tampered)-1] ^= 0x01

			_, err = in.Decipher(tampered)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestDecipher_RejectsGarbage(t *testing.T) {
	payloads := map[string][]byte{
		"text":  []byte("this was never produced by any interpreter"),
		"empty": {},
	}

	for name, in := range testInterpreters(t) {
		if name == "identity" {
			continue
		}
		for kind, payload := range payloads {
			t.Run(name+"/"+kind, func(t *testing.T) {
				_, err := in.Decipher(payload)
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrCorrupt)
			})
		}
	}
}

func TestCompression_EmptyContentIsFramed(t *testing.T) {
	for _, in := range []Interpreter{Zstd{}, LZ4{}} {
		t.Run(in.Name(), func(t *testing.T) {
			stored, err := in.Cipher(nil)
			require.NoError(t, err)
			require.NotEmpty(t, stored)

			out, err := in.Decipher(stored)
			require.NoError(t, err)
			assert.Empty(t, out)
		})
	}
}

func TestAEAD_WrongKey(t *testing.T) {
	a, err := NewAEAD(testKey(t))
	require.NoError(t, err)
	b, err := NewAEAD(testKey(t))
	require.NoError(t, err)

	stored, err := a.Cipher([]byte("secret"))
	require.NoError(t, err)

	_, err = b.Decipher(stored)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestNewAEAD_KeySize(t *testing.T) {
	_, err := NewAEAD(make([]byte, 16))
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	key := testKey(t)

	got, err := ParseKey(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = ParseKey("too-short")
	assert.Error(t, err)
}

func TestChain_Order(t *testing.T) {
	aead, err := NewAEAD(testKey(t))
	require.NoError(t, err)

	chain := NewChain(nil, Identity{}, Zstd{}, aead)
	require.Len(t, chain, 2)
	assert.Equal(t, "zstd+aead", chain.Name())

	input := bytes.Repeat([]byte("z"), 1000)
	stored, err := chain.Cipher(input)
	require.NoError(t, err)

	// The outer layer is the last member, so aead alone must open it and
	// yield a zstd frame.
	inner, err := aead.Decipher(stored)
	require.NoError(t, err)
	plain, err := Zstd{}.Decipher(inner)
	require.NoError(t, err)
	assert.Equal(t, input, plain)
}

func TestChain_Empty(t *testing.T) {
	chain := NewChain()
	assert.Equal(t, KindIdentity, chain.Name())

	out, err := chain.Cipher([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), out)
}

func TestNewAgeFromIdentityFile(t *testing.T) {
	id, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "identity.txt")
	content := "# created: test\n# public key: " + id.Recipient().String() + "\n" + id.String() + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	in, err := NewAgeFromIdentityFile(path)
	require.NoError(t, err)

	stored, err := in.Cipher([]byte("payload"))
	require.NoError(t, err)

	// Any holder of the identity can open it.
	other, err := NewAgeX25519(id.String())
	require.NoError(t, err)
	got, err := other.Decipher(stored)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestNewAgePassphrase_Empty(t *testing.T) {
	_, err := NewAgePassphrase("", 0)
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	key := testKey(t)
	t.Setenv("TEST_MLDATA_KEY", hex.EncodeToString(key))
	t.Setenv("TEST_MLDATA_PASSPHRASE", "hunter2")

	tests := []struct {
		name     string
		cfg      config.InterpreterConfig
		wantName string
		wantErr  error
	}{
		{
			name:     "defaults",
			cfg:      config.InterpreterConfig{},
			wantName: "identity",
		},
		{
			name:     "identity with none compression",
			cfg:      config.InterpreterConfig{Kind: KindIdentity, Compression: KindNone},
			wantName: "identity",
		},
		{
			name:     "compression only",
			cfg:      config.InterpreterConfig{Kind: KindIdentity, Compression: KindLZ4},
			wantName: "lz4",
		},
		{
			name:     "aead with zstd",
			cfg:      config.InterpreterConfig{Kind: KindAEAD, Compression: KindZstd, KeyEnv: "TEST_MLDATA_KEY"},
			wantName: "zstd+aead",
		},
		{
			name:     "age passphrase",
			cfg:      config.InterpreterConfig{Kind: KindAgePassphrase, PassphraseEnv: "TEST_MLDATA_PASSPHRASE", ScryptWorkFactor: 10},
			wantName: "age",
		},
		{
			name:    "unknown kind",
			cfg:     config.InterpreterConfig{Kind: "rot13"},
			wantErr: ErrUnknownKind,
		},
		{
			name:    "unknown compression",
			cfg:     config.InterpreterConfig{Compression: "brotli"},
			wantErr: ErrUnknownKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := FromConfig(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, in.Name())

			stored, err := in.Cipher([]byte("configured"))
			require.NoError(t, err)
			got, err := in.Decipher(stored)
			require.NoError(t, err)
			assert.Equal(t, []byte("configured"), got)
		})
	}
}

func TestFromConfig_MissingSecrets(t *testing.T) {
	t.Setenv("TEST_MLDATA_EMPTY", "")

	_, err := FromConfig(config.InterpreterConfig{Kind: KindAEAD, KeyEnv: "TEST_MLDATA_EMPTY"})
	assert.Error(t, err)

	_, err = FromConfig(config.InterpreterConfig{Kind: KindAgePassphrase, PassphraseEnv: "TEST_MLDATA_EMPTY"})
	assert.Error(t, err)

	_, err = FromConfig(config.InterpreterConfig{Kind: KindAge})
	assert.Error(t, err)
}
