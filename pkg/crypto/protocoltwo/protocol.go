// Package protocoltwo implements pinUvAuthProtocol 2: HKDF-SHA-256 key
// derivation into separate HMAC and AES keys, AES-256-CBC with a random
// IV prepended to the ciphertext, and untruncated HMAC-SHA-256.
package protocoltwo

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"slices"

	"golang.org/x/crypto/hkdf"
)

func KDF(z []byte) ([]byte, error) {
	// Zero bytes for salt
	salt := make([]byte, 32)

	hmacKey := make([]byte, 32)
	if _, err := io.ReadFull(
		hkdf.New(sha256.New, z, salt, []byte("CTAP2 HMAC key")),
		hmacKey,
	); err != nil {
		return nil, fmt.Errorf("calculating CTAP2 HMAC key using HKDF failed: %w", err)
	}

	aesKey := make([]byte, 32)
	if _, err := io.ReadFull(
		hkdf.New(sha256.New, z, salt, []byte("CTAP2 AES key")),
		aesKey,
	); err != nil {
		return nil, fmt.Errorf("calculating CTAP2 AES key using HKDF failed: %w", err)
	}

	return slices.Concat(hmacKey, aesKey), nil
}

func Encrypt(sharedSecret []byte, demPlaintext []byte) ([]byte, error) {
	if len(sharedSecret) != 64 {
		return nil, fmt.Errorf("invalid shared secret length")
	}
	if len(demPlaintext)%16 != 0 {
		return nil, fmt.Errorf("invalid plaintext length")
	}

	// The second half of the shared secret is the AES key.
	key := sharedSecret[32:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cannot create new AES cipher: %w", err)
	}

	iv := make([]byte, 16)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("cannot generate random iv: %w", err)
	}
	ciphertext := make([]byte, len(demPlaintext))

	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(ciphertext, demPlaintext)

	return slices.Concat(iv, ciphertext), nil
}

func Decrypt(sharedSecret []byte, demCiphertext []byte) ([]byte, error) {
	if len(sharedSecret) != 64 {
		return nil, fmt.Errorf("invalid shared secret length")
	}

	key := sharedSecret[32:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cannot create new AES cipher: %w", err)
	}

	if len(demCiphertext) < block.BlockSize() {
		return nil, errors.New("invalid ciphertext")
	}

	iv := demCiphertext[:16]
	ciphertext := demCiphertext[16:]
	if len(ciphertext) == 0 || len(ciphertext)%16 != 0 {
		return nil, errors.New("invalid ciphertext")
	}

	plaintext := make([]byte, len(ciphertext))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(plaintext, ciphertext)

	return plaintext, nil
}

func Authenticate(key []byte, message []byte) []byte {
	// When the key is the shared secret, only the first half is the
	// HMAC key. A pinUvAuthToken is exactly 32 bytes, so slicing it is
	// a no-op.
	hasher := hmac.New(sha256.New, key[:32])
	hasher.Write(message)
	return hasher.Sum(nil)
}
