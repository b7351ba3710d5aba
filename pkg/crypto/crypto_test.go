package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/pico-keys/commissioner/pkg/crypto/protocolone"
	"github.com/pico-keys/commissioner/pkg/crypto/protocoltwo"
	"github.com/pico-keys/commissioner/pkg/ctaptypes"

	ecdh2 "github.com/ldclabs/cose/key/ecdh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiate(t *testing.T) {
	info := &ctaptypes.AuthenticatorGetInfoResponse{
		PinUvAuthProtocols: []ctaptypes.PinUvAuthProtocol{
			ctaptypes.PinUvAuthProtocolOne,
			ctaptypes.PinUvAuthProtocolTwo,
		},
	}

	protocol, err := Negotiate(info)
	require.NoError(t, err)
	assert.Equal(t, ctaptypes.PinUvAuthProtocolTwo, protocol)
}

func TestNegotiateSingleVersion(t *testing.T) {
	info := &ctaptypes.AuthenticatorGetInfoResponse{
		PinUvAuthProtocols: []ctaptypes.PinUvAuthProtocol{ctaptypes.PinUvAuthProtocolOne},
	}

	protocol, err := Negotiate(info)
	require.NoError(t, err)
	assert.Equal(t, ctaptypes.PinUvAuthProtocolOne, protocol)
}

func TestNegotiateNoMutualVersion(t *testing.T) {
	info := &ctaptypes.AuthenticatorGetInfoResponse{
		PinUvAuthProtocols: []ctaptypes.PinUvAuthProtocol{99},
	}

	_, err := Negotiate(info)
	assert.ErrorIs(t, err, ErrUnsupportedProtocol)
}

func TestNewPinUvAuthProtocolInvalidNumber(t *testing.T) {
	_, err := NewPinUvAuthProtocol(3)
	assert.ErrorIs(t, err, ErrInvalidAuthProtocol)
}

// TestKeyAgreementBothSides plays the device side against Encapsulate
// and checks both ends derive the same secret and can talk.
func TestKeyAgreementBothSides(t *testing.T) {
	for _, number := range []ctaptypes.PinUvAuthProtocol{
		ctaptypes.PinUvAuthProtocolOne,
		ctaptypes.PinUvAuthProtocolTwo,
	} {
		protocol, err := NewPinUvAuthProtocol(number)
		require.NoError(t, err)

		devicePriv, err := ecdh.P256().GenerateKey(rand.Reader)
		require.NoError(t, err)

		deviceCoseKey, err := ecdh2.KeyFromPublic(devicePriv.Public().(*ecdh.PublicKey))
		require.NoError(t, err)

		platformCoseKey, platformSecret, err := protocol.Encapsulate(deviceCoseKey)
		require.NoError(t, err)

		platformPub, err := ecdh2.KeyToPublic(platformCoseKey)
		require.NoError(t, err)

		z, err := devicePriv.ECDH(platformPub)
		require.NoError(t, err)

		deviceSecret, err := protocol.KDF(z)
		require.NoError(t, err)
		assert.Equal(t, platformSecret, deviceSecret)

		plaintext := make([]byte, 32)
		copy(plaintext, "attack at dawn")

		ciphertext, err := protocol.Encrypt(platformSecret, plaintext)
		require.NoError(t, err)

		decrypted, err := protocol.Decrypt(deviceSecret, ciphertext)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestProtocolOneKDF(t *testing.T) {
	// SHA-256("abc")
	expected, err := hex.DecodeString("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	require.NoError(t, err)

	assert.Equal(t, expected, protocolone.KDF([]byte("abc")))
}

func TestProtocolOneAuthenticate(t *testing.T) {
	// RFC 4231 test case 2, truncated to 16 bytes.
	expected, err := hex.DecodeString("5bdcc146bf60754e6a042426089575c7")
	require.NoError(t, err)

	mac := protocolone.Authenticate([]byte("Jefe"), []byte("what do ya want for nothing?"))
	assert.Equal(t, expected, mac)
}

func TestProtocolTwoAuthenticateMatchesUntruncated(t *testing.T) {
	// Protocol 2 keys only differ in length: the first 32 bytes are the
	// HMAC key, and the MAC is the untruncated version of protocol 1's.
	hmacKey := make([]byte, 32)
	copy(hmacKey, "Jefe")
	sharedSecret := make([]byte, 64)
	copy(sharedSecret, hmacKey)

	message := []byte("what do ya want for nothing?")

	full := protocoltwo.Authenticate(sharedSecret, message)
	assert.Len(t, full, 32)
	assert.Equal(t, protocolone.Authenticate(hmacKey, message), full[:16])
}

func TestProtocolOneEncryptInvalidLengths(t *testing.T) {
	secret := make([]byte, 32)

	_, err := protocolone.Encrypt(make([]byte, 16), make([]byte, 16))
	assert.Error(t, err)

	_, err = protocolone.Encrypt(secret, make([]byte, 15))
	assert.Error(t, err)

	_, err = protocolone.Decrypt(secret, make([]byte, 17))
	assert.Error(t, err)
}

func TestProtocolTwoDecryptInvalidLengths(t *testing.T) {
	secret := make([]byte, 64)

	// Too short to contain an IV.
	_, err := protocoltwo.Decrypt(secret, make([]byte, 8))
	assert.Error(t, err)

	// IV only, no ciphertext blocks.
	_, err = protocoltwo.Decrypt(secret, make([]byte, 16))
	assert.Error(t, err)

	_, err = protocoltwo.Decrypt(make([]byte, 32), make([]byte, 32))
	assert.Error(t, err)
}

func TestProtocolTwoEncryptRandomIV(t *testing.T) {
	secret := make([]byte, 64)
	plaintext := make([]byte, 32)

	first, err := protocoltwo.Encrypt(secret, plaintext)
	require.NoError(t, err)

	second, err := protocoltwo.Encrypt(secret, plaintext)
	require.NoError(t, err)

	// 16-byte IV prepended to the ciphertext.
	assert.Len(t, first, 48)
	assert.NotEqual(t, first[:16], second[:16])
}
