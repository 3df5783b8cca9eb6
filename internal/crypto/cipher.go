package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const nonceSize = 12

var (
	// ErrMalformedEnvelope is returned when a ciphertext envelope does not
	// have the expected nonce:tag:ciphertext hex encoding.
	ErrMalformedEnvelope = errors.New("malformed ciphertext envelope")
	// ErrIntegrity is returned when authentication of a ciphertext fails.
	// It indicates the stored value was tampered with or corrupted.
	ErrIntegrity = errors.New("ciphertext integrity check failed")
)

// Cipher encrypts and decrypts PII fields at rest and derives
// deterministic lookup hashes for equality queries on encrypted columns.
// The key is derived once from the configured secret; instances are safe
// for concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives an AES-256-GCM key from the secret via SHA-256.
func NewCipher(secret string) (*Cipher, error) {
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt encrypts plaintext into a nonce:tag:ciphertext envelope, all
// lowercase hex. Empty input passes through so optional fields stay empty.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// Seal appends the 16-byte auth tag to the ciphertext.
	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	tagStart := len(sealed) - c.aead.Overhead()
	ciphertext, tag := sealed[:tagStart], sealed[tagStart:]

	return fmt.Sprintf("%s:%s:%s",
		hex.EncodeToString(nonce),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	), nil
}

// Decrypt reverses Encrypt. It returns ErrMalformedEnvelope for envelopes
// that cannot be parsed and ErrIntegrity when the auth tag does not verify.
func (c *Cipher) Decrypt(envelope string) (string, error) {
	if envelope == "" {
		return "", nil
	}

	parts := strings.Split(envelope, ":")
	if len(parts) != 3 {
		return "", ErrMalformedEnvelope
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceSize {
		return "", ErrMalformedEnvelope
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != c.aead.Overhead() {
		return "", ErrMalformedEnvelope
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", ErrMalformedEnvelope
	}

	plaintext, err := c.aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrIntegrity
	}
	return string(plaintext), nil
}

// LookupHash returns a deterministic hex digest of the normalized value,
// used as an equality index for encrypted columns. It is case and
// surrounding-whitespace insensitive. This is a fast digest, never to be
// used for passwords or other secrets that need a slow hash.
func LookupHash(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(value))))
	return hex.EncodeToString(sum[:])
}
