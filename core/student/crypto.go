package student

import (
	"errors"

	"github.com/fernet/fernet-go"
)

var ErrBadCipherKey = errors.New("invalid IC encryption key")

// Cipher encrypts IC numbers at rest with a Fernet key.
type Cipher struct {
	key *fernet.Key
}

// NewCipher decodes a base64 Fernet key. An empty secret yields a nil
// Cipher, which passes values through unchanged.
func NewCipher(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, nil
	}
	keys, err := fernet.DecodeKeys(secret)
	if err != nil {
		return nil, ErrBadCipherKey
	}
	return &Cipher{key: keys[0]}, nil
}

// GenerateKey creates a fresh base64 Fernet key.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", err
	}
	return k.Encode(), nil
}

func (c *Cipher) Encrypt(plain string) (string, error) {
	if c == nil || plain == "" {
		return plain, nil
	}
	tok, err := fernet.EncryptAndSign([]byte(plain), c.key)
	if err != nil {
		return "", err
	}
	return string(tok), nil
}

// Decrypt returns the plaintext, or the input untouched when it is not a
// valid token (legacy rows predating encryption).
func (c *Cipher) Decrypt(enc string) string {
	if c == nil || enc == "" {
		return enc
	}
	msg := fernet.VerifyAndDecrypt([]byte(enc), 0, []*fernet.Key{c.key})
	if msg == nil {
		return enc
	}
	return string(msg)
}
