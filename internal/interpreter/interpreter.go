// Package interpreter provides the content interpretation pipeline applied to
// element payloads. Bytes are transformed with Cipher before they are uploaded
// and restored with Decipher after they are downloaded.
package interpreter

import (
	"errors"
	"fmt"
)

// ErrCorrupt is returned by Decipher when the input was not produced by the
// matching Cipher or was modified after it was.
var ErrCorrupt = errors.New("content is corrupt or was not produced by this interpreter")

// ErrUnknownKind is returned when an interpreter kind is not recognized.
var ErrUnknownKind = errors.New("unknown interpreter kind")

// Interpreter transforms element content at the write and read boundaries.
// For every input x accepted by Cipher, Decipher(Cipher(x)) must equal x.
type Interpreter interface {
	// Name returns the interpreter name used in configuration and logs.
	Name() string

	// Cipher transforms plaintext into its stored representation.
	Cipher(plaintext []byte) ([]byte, error)

	// Decipher restores plaintext from its stored representation.
	Decipher(ciphertext []byte) ([]byte, error)
}

// Identity passes content through unchanged.
type Identity struct{}

// Name returns "identity".
func (Identity) Name() string { return KindIdentity }

// Cipher returns plaintext unchanged.
func (Identity) Cipher(plaintext []byte) ([]byte, error) { return plaintext, nil }

// Decipher returns ciphertext unchanged.
func (Identity) Decipher(ciphertext []byte) ([]byte, error) { return ciphertext, nil }

// OrIdentity returns in, or Identity when in is nil.
func OrIdentity(in Interpreter) Interpreter {
	if in == nil {
		return Identity{}
	}
	return in
}

// Chain applies its members in order on Cipher and in reverse order on
// Decipher. An empty chain behaves like Identity.
type Chain []Interpreter

// NewChain builds a Chain, dropping nil and Identity members.
func NewChain(members ...Interpreter) Chain {
	chain := make(Chain, 0, len(members))
	for _, m := range members {
		if m == nil {
			continue
		}
		if _, ok := m.(Identity); ok {
			continue
		}
		chain = append(chain, m)
	}
	return chain
}

// Name joins the member names with "+".
func (c Chain) Name() string {
	if len(c) == 0 {
		return KindIdentity
	}
	name := c[0].Name()
	for _, m := range c[1:] {
		name += "+" + m.Name()
	}
	return name
}

// Cipher runs every member's Cipher in order.
func (c Chain) Cipher(plaintext []byte) ([]byte, error) {
	out := plaintext
	for _, m := range c {
		var err error
		out, err = m.Cipher(out)
		if err != nil {
			return nil, fmt.Errorf("%s cipher failed; %w", m.Name(), err)
		}
	}
	return out, nil
}

// Decipher runs every member's Decipher in reverse order.
func (c Chain) Decipher(ciphertext []byte) ([]byte, error) {
	out := ciphertext
	for i := len(c) - 1; i >= 0; i-- {
		var err error
		out, err = c[i].Decipher(out)
		if err != nil {
			return nil, fmt.Errorf("%s decipher failed; %w", c[i].Name(), err)
		}
	}
	return out, nil
}
