// Package crypto implements the CTAP2 pinUvAuthProtocol key agreement
// and per-request authentication. The two protocol versions share one
// interface; the variant is picked once at negotiation time and drives
// KDF, encryption and MAC selection from then on.
package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/pico-keys/commissioner/pkg/crypto/protocolone"
	"github.com/pico-keys/commissioner/pkg/crypto/protocoltwo"
	"github.com/pico-keys/commissioner/pkg/ctaptypes"

	"github.com/ldclabs/cose/iana"
	"github.com/ldclabs/cose/key"
	ecdh2 "github.com/ldclabs/cose/key/ecdh"
)

var (
	ErrInvalidAuthProtocol = errors.New("crypto: invalid pinUvAuthProtocol")

	// ErrUnsupportedProtocol means the device advertises no
	// pinUvAuthProtocol version this client speaks.
	ErrUnsupportedProtocol = errors.New("crypto: no mutually supported pinUvAuthProtocol")
)

// Negotiate picks the highest pinUvAuthProtocol version supported by
// both sides.
func Negotiate(info *ctaptypes.AuthenticatorGetInfoResponse) (ctaptypes.PinUvAuthProtocol, error) {
	var best ctaptypes.PinUvAuthProtocol
	for _, v := range info.PinUvAuthProtocols {
		switch v {
		case ctaptypes.PinUvAuthProtocolOne, ctaptypes.PinUvAuthProtocolTwo:
			if v > best {
				best = v
			}
		}
	}

	if best == 0 {
		return 0, ErrUnsupportedProtocol
	}

	return best, nil
}

// PinUvAuthProtocol holds the platform's ephemeral key pair for one
// key-agreement attempt. It must not be reused across attempts: the
// device rotates its own ephemeral key, so a failed negotiation is
// restarted from a fresh NewPinUvAuthProtocol.
type PinUvAuthProtocol struct {
	Number             ctaptypes.PinUvAuthProtocol
	platformPrivateKey *ecdh.PrivateKey
	platformCoseKey    key.Key
}

func NewPinUvAuthProtocol(number ctaptypes.PinUvAuthProtocol) (*PinUvAuthProtocol, error) {
	if number != ctaptypes.PinUvAuthProtocolOne && number != ctaptypes.PinUvAuthProtocolTwo {
		return nil, ErrInvalidAuthProtocol
	}

	platformPrivkey, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cannot generate platform P-256 keypair: %w", err)
	}

	platformPubkey, err := ecdh2.KeyFromPublic(platformPrivkey.Public().(*ecdh.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("cannot convert platform public key to COSE_Key: %w", err)
	}
	if err := platformPubkey.Set(iana.KeyParameterAlg, -25); err != nil {
		return nil, fmt.Errorf("cannot set alg parameter for COSE_Key: %w", err)
	}

	// The COSE_Key must contain only the required parameters. Some
	// authenticators reject a key with extras.
	delete(platformPubkey, iana.KeyParameterKid)

	return &PinUvAuthProtocol{
		Number:             number,
		platformPrivateKey: platformPrivkey,
		platformCoseKey:    platformPubkey,
	}, nil
}

// ECDH combines our private key with the device's public key and runs
// the protocol KDF over the shared point's x-coordinate.
func (p *PinUvAuthProtocol) ECDH(peerCoseKey key.Key) ([]byte, error) {
	peerPubkey, err := ecdh2.KeyToPublic(peerCoseKey)
	if err != nil {
		return nil, fmt.Errorf("cannot convert peer public key to Go *ecdh.PublicKey: %w", err)
	}

	sharedSecret, err := p.platformPrivateKey.ECDH(peerPubkey)
	if err != nil {
		return nil, fmt.Errorf("cannot derive shared secret: %w", err)
	}

	return p.KDF(sharedSecret)
}

func (p *PinUvAuthProtocol) KDF(z []byte) ([]byte, error) {
	switch p.Number {
	case ctaptypes.PinUvAuthProtocolOne:
		return protocolone.KDF(z), nil
	case ctaptypes.PinUvAuthProtocolTwo:
		return protocoltwo.KDF(z)
	default:
		return nil, ErrInvalidAuthProtocol
	}
}

func (p *PinUvAuthProtocol) Encrypt(sharedSecret []byte, demPlaintext []byte) ([]byte, error) {
	switch p.Number {
	case ctaptypes.PinUvAuthProtocolOne:
		return protocolone.Encrypt(sharedSecret, demPlaintext)
	case ctaptypes.PinUvAuthProtocolTwo:
		return protocoltwo.Encrypt(sharedSecret, demPlaintext)
	default:
		return nil, ErrInvalidAuthProtocol
	}
}

func (p *PinUvAuthProtocol) Decrypt(sharedSecret []byte, demCiphertext []byte) ([]byte, error) {
	switch p.Number {
	case ctaptypes.PinUvAuthProtocolOne:
		return protocolone.Decrypt(sharedSecret, demCiphertext)
	case ctaptypes.PinUvAuthProtocolTwo:
		return protocoltwo.Decrypt(sharedSecret, demCiphertext)
	default:
		return nil, ErrInvalidAuthProtocol
	}
}

// Encapsulate returns the platform COSE_Key to send to the device along
// with the derived shared secret.
func (p *PinUvAuthProtocol) Encapsulate(peerCoseKey key.Key) (key.Key, []byte, error) {
	sharedSecret, err := p.ECDH(peerCoseKey)
	if err != nil {
		return nil, nil, err
	}

	return p.platformCoseKey, sharedSecret, nil
}

// Authenticate computes the pinUvAuthParam MAC over message. The key is
// either a shared secret or a pinUvAuthToken.
func Authenticate(number ctaptypes.PinUvAuthProtocol, key []byte, message []byte) []byte {
	switch number {
	case ctaptypes.PinUvAuthProtocolOne:
		return protocolone.Authenticate(key, message)
	case ctaptypes.PinUvAuthProtocolTwo:
		return protocoltwo.Authenticate(key, message)
	default:
		panic("invalid auth protocol")
	}
}
