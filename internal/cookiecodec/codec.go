package cookiecodec

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-jose/go-jose/v4"
	"golang.org/x/crypto/hkdf"
)

// Codec encrypts and signs cookie payloads as compact JWE tokens. Direct
// A256GCM gives confidentiality and integrity in one primitive: a tampered or
// forged cookie fails AEAD verification on decode.
type Codec struct {
	key       []byte
	encrypter jose.Encrypter
}

// NewCodec derives a 256-bit content key from the configured signing secret
// and builds the JWE encrypter.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("signing secret is empty")
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, secret, nil, []byte("auth-front cookie key"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive cookie key: %w", err)
	}

	encrypter, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: key},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypter: %w", err)
	}

	return &Codec{key: key, encrypter: encrypter}, nil
}

// Encode marshals v to JSON and returns the encrypted compact serialization
func (c *Codec) Encode(v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cookie payload: %w", err)
	}

	obj, err := c.encrypter.Encrypt(plaintext)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt cookie payload: %w", err)
	}

	return obj.CompactSerialize()
}

// Decode validates and decrypts a token produced by Encode and unmarshals
// the payload into v. Any signature or format problem is an error.
func (c *Codec) Decode(token string, v any) error {
	obj, err := jose.ParseEncrypted(token,
		[]jose.KeyAlgorithm{jose.DIRECT},
		[]jose.ContentEncryption{jose.A256GCM},
	)
	if err != nil {
		return fmt.Errorf("failed to parse cookie: %w", err)
	}

	plaintext, err := obj.Decrypt(c.key)
	if err != nil {
		return fmt.Errorf("failed to decrypt cookie: %w", err)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("failed to unmarshal cookie payload: %w", err)
	}

	return nil
}
