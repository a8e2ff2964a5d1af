package interpreter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"
)

// Age encrypts content with filippo.io/age. Cipher encrypts to every
// recipient; Decipher tries every identity.
type Age struct {
	recipients []age.Recipient
	identities []age.Identity
}

// NewAge creates an Age interpreter from explicit recipients and identities.
// Either side may be empty, in which case the corresponding direction fails.
func NewAge(recipients []age.Recipient, identities []age.Identity) *Age {
	return &Age{recipients: recipients, identities: identities}
}

// NewAgeX25519 creates an Age interpreter from an X25519 identity string
// (AGE-SECRET-KEY-1...) and optional extra recipient public keys (age1...).
// The identity's own recipient is always included.
func NewAgeX25519(identity string, extraRecipients ...string) (*Age, error) {
	id, err := age.ParseX25519Identity(strings.TrimSpace(identity))
	if err != nil {
		return nil, fmt.Errorf("failed to parse age identity; %w", err)
	}

	recipients := []age.Recipient{id.Recipient()}
	for _, key := range extraRecipients {
		r, err := age.ParseX25519Recipient(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("failed to parse age recipient %q; %w", key, err)
		}
		recipients = append(recipients, r)
	}

	return NewAge(recipients, []age.Identity{id}), nil
}

// NewAgeFromIdentityFile reads identities from an age identity file (as
// written by age-keygen) and encrypts to each identity's recipient.
func NewAgeFromIdentityFile(path string, extraRecipients ...string) (*Age, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open age identity file; %w", err)
	}
	defer f.Close()

	identities, err := age.ParseIdentities(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse age identity file %s; %w", path, err)
	}

	var recipients []age.Recipient
	for _, id := range identities {
		if x, ok := id.(*age.X25519Identity); ok {
			recipients = append(recipients, x.Recipient())
		}
	}
	for _, key := range extraRecipients {
		r, err := age.ParseX25519Recipient(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("failed to parse age recipient %q; %w", key, err)
		}
		recipients = append(recipients, r)
	}

	return NewAge(recipients, identities), nil
}

// NewAgePassphrase creates an Age interpreter using scrypt passphrase
// encryption. workFactor is the scrypt log2(N); zero keeps age's default.
func NewAgePassphrase(passphrase string, workFactor int) (*Age, error) {
	if passphrase == "" {
		return nil, errors.New("age passphrase must not be empty")
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to create scrypt recipient; %w", err)
	}
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to create scrypt identity; %w", err)
	}
	if workFactor > 0 {
		recipient.SetWorkFactor(workFactor)
	}

	return NewAge([]age.Recipient{recipient}, []age.Identity{identity}), nil
}

// Name returns "age".
func (a *Age) Name() string { return KindAge }

// Cipher encrypts plaintext to the configured recipients.
func (a *Age) Cipher(plaintext []byte) ([]byte, error) {
	if len(a.recipients) == 0 {
		return nil, errors.New("age interpreter has no recipients")
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, a.recipients...)
	if err != nil {
		return nil, fmt.Errorf("failed to create age encryptor; %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("failed to write to age encryptor; %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize age encryption; %w", err)
	}

	return buf.Bytes(), nil
}

// Decipher decrypts ciphertext with the configured identities. Header,
// MAC and payload failures are reported as ErrCorrupt.
func (a *Age) Decipher(ciphertext []byte) ([]byte, error) {
	if len(a.identities) == 0 {
		return nil, errors.New("age interpreter has no identities")
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), a.identities...)
	if err != nil {
		return nil, fmt.Errorf("%w; age decrypt failed; %w", ErrCorrupt, err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w; age payload unreadable; %w", ErrCorrupt, err)
	}

	return plaintext, nil
}
