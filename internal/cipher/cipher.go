package cipher

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// ErrMalformed is returned by Decode for input that is not in the encoded form.
var ErrMalformed = errors.New("malformed encoded string")

// Transform converts a field between its editable plain form and its at-rest form.
// Decode(Encode(s)) == s for every s.
type Transform interface {
	Encode(plain string) (string, error)
	Decode(encoded string) (string, error)
}

const (
	prefix  = "x1."
	hkdfTag = "folderedit name v1"
)

// XChaCha encodes with XChaCha20-Poly1305 under a key derived by HKDF-SHA256.
type XChaCha struct {
	key  [chacha20poly1305.KeySize]byte
	rand io.Reader
}

// NewXChaCha derives the sealing key from secret. secret must not be empty.
func NewXChaCha(secret []byte) (*XChaCha, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty cipher secret")
	}
	x := &XChaCha{rand: rand.Reader}
	kdf := hkdf.New(sha256.New, secret, nil, []byte(hkdfTag))
	if _, err := io.ReadFull(kdf, x.key[:]); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return x, nil
}

// FromPassphrase is NewXChaCha for a text secret.
func FromPassphrase(passphrase string) (*XChaCha, error) {
	return NewXChaCha([]byte(passphrase))
}

func (x *XChaCha) Encode(plain string) (string, error) {
	aead, err := chacha20poly1305.NewX(x.key[:])
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := io.ReadFull(x.rand, nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return prefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (x *XChaCha) Decode(encoded string) (string, error) {
	if !strings.HasPrefix(encoded, prefix) {
		return "", ErrMalformed
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(encoded, prefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	aead, err := chacha20poly1305.NewX(x.key[:])
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", ErrMalformed
	}
	nonce, ct := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	return string(plain), nil
}
