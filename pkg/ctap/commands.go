// Package ctap builds authenticatorClientPIN, authenticatorConfig,
// authenticatorGetInfo and authenticatorReset requests, runs them over a
// CTAPHID channel and decodes the responses. Requests are encoded in
// canonical CTAP2 CBOR because the device recomputes pinUvAuthParam MACs
// over the exact bytes we send.
package ctap

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"unicode/utf8"

	"github.com/pico-keys/commissioner/pkg/crypto"
	"github.com/pico-keys/commissioner/pkg/ctaphid"
	"github.com/pico-keys/commissioner/pkg/ctaptypes"
	"github.com/pico-keys/commissioner/pkg/options"

	"github.com/fxamacker/cbor/v2"
	"github.com/ldclabs/cose/key"
)

const (
	// CTAP requires PINs of 4 to 63 bytes of UTF-8.
	minPinLength = 4
	maxPinLength = 63

	paddedPinLength = 64
)

// ErrPinPolicyViolation is returned before any transport call when a
// PIN does not satisfy the protocol's length policy.
var ErrPinPolicyViolation = errors.New("ctap: pin policy violation")

// errNullResponse covers a well-formed CTAP2_OK frame whose body is CBOR
// null (or missing the expected map), which would otherwise decode into a
// nil struct pointer.
var errNullResponse = errors.New("ctap: null response body")

type Client struct {
	logger  *slog.Logger
	encMode cbor.EncMode
	decMode cbor.DecMode
}

func NewClient(opts ...options.Option) *Client {
	oo := options.NewOptions(opts...)

	return &Client{
		logger:  oo.Logger,
		encMode: oo.EncMode,
		decMode: oo.DecMode,
	}
}

func (cl *Client) GetInfo(device io.ReadWriter, cid ctaphid.ChannelID) (*ctaptypes.AuthenticatorGetInfoResponse, error) {
	respRaw, err := ctaphid.CBOR(device, cid, []byte{byte(ctaptypes.AuthenticatorGetInfo)})
	if err != nil {
		return nil, err
	}

	var resp *ctaptypes.AuthenticatorGetInfoResponse
	if err := cl.decMode.Unmarshal(respRaw.Data, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errNullResponse
	}

	return resp, nil
}

func (cl *Client) GetPINRetries(
	device io.ReadWriter,
	cid ctaphid.ChannelID,
	pinUvAuthProtocol ctaptypes.PinUvAuthProtocol,
) (uint, bool, error) {
	req := &ctaptypes.AuthenticatorClientPINRequest{
		// The parameter is formally unnecessary, but some devices
		// insist on it.
		PinUvAuthProtocol: pinUvAuthProtocol,
		SubCommand:        ctaptypes.ClientPINSubCommandGetPINRetries,
	}

	b, err := cl.encMode.Marshal(req)
	if err != nil {
		return 0, false, err
	}
	cl.logger.Debug("getPINRetries CBOR request", "hex", hex.EncodeToString(b))

	respRaw, err := ctaphid.CBOR(device, cid, slices.Concat([]byte{byte(ctaptypes.AuthenticatorClientPIN)}, b))
	if err != nil {
		return 0, false, err
	}
	cl.logger.Debug("getPINRetries CBOR response", "hex", hex.EncodeToString(respRaw.Data))

	var resp *ctaptypes.AuthenticatorClientPINResponse
	if err := cl.decMode.Unmarshal(respRaw.Data, &resp); err != nil {
		return 0, false, err
	}
	if resp == nil {
		return 0, false, errNullResponse
	}

	return resp.PinRetries, resp.PowerCycleState, nil
}

// GetKeyAgreement fetches the device's ephemeral COSE public key. The
// device rotates this key, so every authentication attempt starts here.
func (cl *Client) GetKeyAgreement(
	device io.ReadWriter,
	cid ctaphid.ChannelID,
	pinUvAuthProtocol ctaptypes.PinUvAuthProtocol,
) (key.Key, error) {
	req := &ctaptypes.AuthenticatorClientPINRequest{
		PinUvAuthProtocol: pinUvAuthProtocol,
		SubCommand:        ctaptypes.ClientPINSubCommandGetKeyAgreement,
	}

	b, err := cl.encMode.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal keyAgreement CBOR request: %w", err)
	}
	cl.logger.Debug("getKeyAgreement CBOR request", "hex", hex.EncodeToString(b))

	respRaw, err := ctaphid.CBOR(device, cid, slices.Concat([]byte{byte(ctaptypes.AuthenticatorClientPIN)}, b))
	if err != nil {
		return nil, fmt.Errorf("keyAgreement CBOR request failed: %w", err)
	}
	cl.logger.Debug("getKeyAgreement CBOR response", "hex", hex.EncodeToString(respRaw.Data))

	var resp *ctaptypes.AuthenticatorClientPINResponse
	if err := cl.decMode.Unmarshal(respRaw.Data, &resp); err != nil {
		return nil, fmt.Errorf("cannot unmarshal keyAgreement CBOR response: %w", err)
	}
	if resp == nil {
		return nil, errNullResponse
	}

	return resp.KeyAgreement, nil
}

func checkPinPolicy(pin string) error {
	n := len(pin) // UTF-8 bytes, not runes
	if n < minPinLength || n > maxPinLength || !utf8.ValidString(pin) {
		return ErrPinPolicyViolation
	}
	return nil
}

// padPin zero-pads the PIN to the fixed 64-byte plaintext the protocol
// encrypts.
func padPin(pin string) []byte {
	padded := make([]byte, paddedPinLength)
	copy(padded, pin)
	return padded
}

// hashPin returns the left 16 bytes of SHA-256(pin).
func hashPin(pin string) []byte {
	hasher := sha256.New()
	hasher.Write([]byte(pin))
	return hasher.Sum(nil)[:16]
}

// SetPIN sets the very first PIN on a device without one. The PIN
// policy is checked before anything is sent.
func (cl *Client) SetPIN(
	device io.ReadWriter,
	cid ctaphid.ChannelID,
	pinUvAuthProtocol ctaptypes.PinUvAuthProtocol,
	keyAgreement key.Key,
	pin string,
) error {
	if err := checkPinPolicy(pin); err != nil {
		return err
	}

	protocol, err := crypto.NewPinUvAuthProtocol(pinUvAuthProtocol)
	if err != nil {
		return err
	}

	platformCoseKey, sharedSecret, err := protocol.Encapsulate(keyAgreement)
	if err != nil {
		return err
	}

	newPinEnc, err := protocol.Encrypt(sharedSecret, padPin(pin))
	if err != nil {
		return err
	}

	req := &ctaptypes.AuthenticatorClientPINRequest{
		PinUvAuthProtocol: protocol.Number,
		SubCommand:        ctaptypes.ClientPINSubCommandSetPIN,
		KeyAgreement:      platformCoseKey,
		NewPinEnc:         newPinEnc,
		PinUvAuthParam: crypto.Authenticate(
			pinUvAuthProtocol,
			sharedSecret,
			newPinEnc,
		),
	}

	b, err := cl.encMode.Marshal(req)
	if err != nil {
		return err
	}
	cl.logger.Debug("setPIN CBOR request", "hex", hex.EncodeToString(b))

	if _, err := ctaphid.CBOR(device, cid, slices.Concat([]byte{byte(ctaptypes.AuthenticatorClientPIN)}, b)); err != nil {
		return err
	}

	return nil
}

// ChangePIN replaces an existing PIN. The MAC covers both the new
// encrypted PIN and the current PIN hash.
func (cl *Client) ChangePIN(
	device io.ReadWriter,
	cid ctaphid.ChannelID,
	pinUvAuthProtocol ctaptypes.PinUvAuthProtocol,
	keyAgreement key.Key,
	currentPin string,
	newPin string,
) error {
	if err := checkPinPolicy(newPin); err != nil {
		return err
	}

	protocol, err := crypto.NewPinUvAuthProtocol(pinUvAuthProtocol)
	if err != nil {
		return err
	}

	platformCoseKey, sharedSecret, err := protocol.Encapsulate(keyAgreement)
	if err != nil {
		return err
	}

	pinHashEnc, err := protocol.Encrypt(sharedSecret, hashPin(currentPin))
	if err != nil {
		return err
	}

	newPinEnc, err := protocol.Encrypt(sharedSecret, padPin(newPin))
	if err != nil {
		return err
	}

	req := &ctaptypes.AuthenticatorClientPINRequest{
		PinUvAuthProtocol: protocol.Number,
		SubCommand:        ctaptypes.ClientPINSubCommandChangePIN,
		KeyAgreement:      platformCoseKey,
		PinHashEnc:        pinHashEnc,
		NewPinEnc:         newPinEnc,
		PinUvAuthParam: crypto.Authenticate(
			pinUvAuthProtocol,
			sharedSecret,
			slices.Concat(newPinEnc, pinHashEnc),
		),
	}

	b, err := cl.encMode.Marshal(req)
	if err != nil {
		return err
	}
	cl.logger.Debug("changePIN CBOR request", "hex", hex.EncodeToString(b))

	if _, err := ctaphid.CBOR(device, cid, slices.Concat([]byte{byte(ctaptypes.AuthenticatorClientPIN)}, b)); err != nil {
		return err
	}

	return nil
}

// GetPinToken obtains a pinUvAuthToken on devices predating token
// permissions (kept for FIDO 2.0 compatibility).
func (cl *Client) GetPinToken(
	device io.ReadWriter,
	cid ctaphid.ChannelID,
	pinUvAuthProtocol ctaptypes.PinUvAuthProtocol,
	keyAgreement key.Key,
	pin string,
) ([]byte, error) {
	protocol, err := crypto.NewPinUvAuthProtocol(pinUvAuthProtocol)
	if err != nil {
		return nil, err
	}

	platformCoseKey, sharedSecret, err := protocol.Encapsulate(keyAgreement)
	if err != nil {
		return nil, err
	}

	pinHashEnc, err := protocol.Encrypt(sharedSecret, hashPin(pin))
	if err != nil {
		return nil, err
	}

	req := &ctaptypes.AuthenticatorClientPINRequest{
		PinUvAuthProtocol: protocol.Number,
		SubCommand:        ctaptypes.ClientPINSubCommandGetPinToken,
		KeyAgreement:      platformCoseKey,
		PinHashEnc:        pinHashEnc,
	}

	b, err := cl.encMode.Marshal(req)
	if err != nil {
		return nil, err
	}
	cl.logger.Debug("getPinToken CBOR request", "hex", hex.EncodeToString(b))

	respRaw, err := ctaphid.CBOR(device, cid, slices.Concat([]byte{byte(ctaptypes.AuthenticatorClientPIN)}, b))
	if err != nil {
		return nil, err
	}
	cl.logger.Debug("getPinToken CBOR response", "hex", hex.EncodeToString(respRaw.Data))

	var resp *ctaptypes.AuthenticatorClientPINResponse
	if err := cl.decMode.Unmarshal(respRaw.Data, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errNullResponse
	}

	return protocol.Decrypt(sharedSecret, resp.PinUvAuthToken)
}

// GetPinUvAuthTokenUsingPinWithPermissions obtains a pinUvAuthToken
// scoped to the given permission bits.
func (cl *Client) GetPinUvAuthTokenUsingPinWithPermissions(
	device io.ReadWriter,
	cid ctaphid.ChannelID,
	pinUvAuthProtocol ctaptypes.PinUvAuthProtocol,
	keyAgreement key.Key,
	pin string,
	permissions ctaptypes.Permission,
	rpID string,
) ([]byte, error) {
	protocol, err := crypto.NewPinUvAuthProtocol(pinUvAuthProtocol)
	if err != nil {
		return nil, err
	}

	platformCoseKey, sharedSecret, err := protocol.Encapsulate(keyAgreement)
	if err != nil {
		return nil, err
	}

	pinHashEnc, err := protocol.Encrypt(sharedSecret, hashPin(pin))
	if err != nil {
		return nil, err
	}

	req := &ctaptypes.AuthenticatorClientPINRequest{
		PinUvAuthProtocol: protocol.Number,
		SubCommand:        ctaptypes.ClientPINSubCommandGetPinUvAuthTokenUsingPinWithPermissions,
		KeyAgreement:      platformCoseKey,
		PinHashEnc:        pinHashEnc,
		Permissions:       permissions,
		RPID:              rpID,
	}

	b, err := cl.encMode.Marshal(req)
	if err != nil {
		return nil, err
	}
	cl.logger.Debug("getPinUvAuthTokenUsingPinWithPermissions CBOR request", "hex", hex.EncodeToString(b))

	respRaw, err := ctaphid.CBOR(device, cid, slices.Concat([]byte{byte(ctaptypes.AuthenticatorClientPIN)}, b))
	if err != nil {
		return nil, err
	}
	cl.logger.Debug("getPinUvAuthTokenUsingPinWithPermissions CBOR response", "hex", hex.EncodeToString(respRaw.Data))

	var resp *ctaptypes.AuthenticatorClientPINResponse
	if err := cl.decMode.Unmarshal(respRaw.Data, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errNullResponse
	}

	return protocol.Decrypt(sharedSecret, resp.PinUvAuthToken)
}

// GetPinUvAuthTokenUsingUvWithPermissions obtains a pinUvAuthToken via
// built-in user verification instead of a PIN.
func (cl *Client) GetPinUvAuthTokenUsingUvWithPermissions(
	device io.ReadWriter,
	cid ctaphid.ChannelID,
	pinUvAuthProtocol ctaptypes.PinUvAuthProtocol,
	keyAgreement key.Key,
	permissions ctaptypes.Permission,
	rpID string,
) ([]byte, error) {
	protocol, err := crypto.NewPinUvAuthProtocol(pinUvAuthProtocol)
	if err != nil {
		return nil, err
	}

	platformCoseKey, sharedSecret, err := protocol.Encapsulate(keyAgreement)
	if err != nil {
		return nil, err
	}

	req := &ctaptypes.AuthenticatorClientPINRequest{
		PinUvAuthProtocol: protocol.Number,
		SubCommand:        ctaptypes.ClientPINSubCommandGetPinUvAuthTokenUsingUvWithPermissions,
		KeyAgreement:      platformCoseKey,
		Permissions:       permissions,
		RPID:              rpID,
	}

	b, err := cl.encMode.Marshal(req)
	if err != nil {
		return nil, err
	}
	cl.logger.Debug("getPinUvAuthTokenUsingUvWithPermissions CBOR request", "hex", hex.EncodeToString(b))

	respRaw, err := ctaphid.CBOR(device, cid, slices.Concat([]byte{byte(ctaptypes.AuthenticatorClientPIN)}, b))
	if err != nil {
		return nil, err
	}
	cl.logger.Debug("getPinUvAuthTokenUsingUvWithPermissions CBOR response", "hex", hex.EncodeToString(respRaw.Data))

	var resp *ctaptypes.AuthenticatorClientPINResponse
	if err := cl.decMode.Unmarshal(respRaw.Data, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errNullResponse
	}

	return protocol.Decrypt(sharedSecret, resp.PinUvAuthToken)
}

// Reset performs a factory reset. No local validation happens here: the
// device itself enforces the power-on window and user presence, and a
// CTAP2_ERR_NOT_ALLOWED or CTAP2_ERR_USER_ACTION_TIMEOUT from it is
// surfaced verbatim.
func (cl *Client) Reset(device io.ReadWriter, cid ctaphid.ChannelID) error {
	_, err := ctaphid.CBOR(device, cid, []byte{byte(ctaptypes.AuthenticatorReset)})
	if err != nil {
		return err
	}

	return nil
}

// Selection blocks until the user confirms presence on this device or
// the operation is canceled.
func (cl *Client) Selection(device io.ReadWriter, cid ctaphid.ChannelID) error {
	_, err := ctaphid.CBOR(device, cid, []byte{byte(ctaptypes.AuthenticatorSelection)})
	if err != nil {
		var ctapError *ctaphid.CTAPError
		if !errors.As(err, &ctapError) || ctapError.StatusCode != ctaphid.CTAP2_ERR_KEEPALIVE_CANCEL {
			return err
		}
	}

	return nil
}
