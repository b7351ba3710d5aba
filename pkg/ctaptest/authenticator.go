// Package ctaptest provides an in-memory CTAP2 authenticator speaking
// CTAPHID framing over io.ReadWriteCloser. It implements the real
// device side of the pinUvAuthProtocol key agreement, so clients
// exercise the same code paths as against hardware, including MAC
// verification and fault injection.
package ctaptest

import (
	"crypto/ecdh"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/pico-keys/commissioner/pkg/crypto"
	"github.com/pico-keys/commissioner/pkg/crypto/protocolone"
	"github.com/pico-keys/commissioner/pkg/crypto/protocoltwo"
	"github.com/pico-keys/commissioner/pkg/ctaphid"
	"github.com/pico-keys/commissioner/pkg/ctaptypes"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/ldclabs/cose/iana"
	"github.com/ldclabs/cose/key"
	ecdh2 "github.com/ldclabs/cose/key/ecdh"
)

const (
	reportSize  = 64
	resetWindow = 10 * time.Second
	maxRetries  = 8
)

type Option func(*Authenticator)

// WithPIN boots the authenticator with a PIN already set.
func WithPIN(pin string) Option {
	return func(a *Authenticator) {
		a.pin = pin
	}
}

// WithClock injects the time source used for the power-on reset window.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		a.now = now
		a.bootedAt = now()
	}
}

// WithPinUvAuthProtocols overrides the advertised protocol versions.
func WithPinUvAuthProtocols(protocols ...ctaptypes.PinUvAuthProtocol) Option {
	return func(a *Authenticator) {
		a.protocols = protocols
	}
}

// WithUV boots the authenticator with built-in user verification
// configured; it then issues tokens without a PIN exchange.
func WithUV() Option {
	return func(a *Authenticator) {
		a.uv = true
	}
}

// WithMaxPINLength overrides the advertised maximum PIN length.
func WithMaxPINLength(n uint) Option {
	return func(a *Authenticator) {
		a.maxPinLength = n
	}
}

// Authenticator is a scripted CTAP2 device. Write feeds it request
// reports; Read drains response reports. A Read with nothing queued
// fails with ctaphid.ErrReadTimeout, mimicking a bounded HID read on a
// silent device.
type Authenticator struct {
	mu      sync.Mutex
	encMode cbor.EncMode

	cid ctaphid.ChannelID
	out [][]byte

	// request reassembly
	reqCID   ctaphid.ChannelID
	reqCmd   ctaphid.Command
	reqBuf   []byte
	reqTotal int
	inFlight bool

	// device state
	pin          string
	pinRetries   uint
	minPinLength uint
	maxPinLength uint
	uv           bool
	alwaysUv     bool
	ep           bool
	protocols    []ctaptypes.PinUvAuthProtocol
	settings     map[ctaptypes.VendorCommandID]uint64
	devicePriv   *ecdh.PrivateKey
	token        []byte
	tokenValid   bool
	bootedAt     time.Time
	now          func() time.Time

	// fault injection
	silent  bool
	foreign bool
	closed  bool
}

func New(opts ...Option) *Authenticator {
	encMode, _ := cbor.CTAP2EncOptions().EncMode()
	a := &Authenticator{
		encMode:      encMode,
		cid:          ctaphid.ChannelID{0x00, 0x11, 0x22, 0x33},
		pinRetries:   maxRetries,
		minPinLength: 4,
		maxPinLength: 63,
		protocols:    []ctaptypes.PinUvAuthProtocol{ctaptypes.PinUvAuthProtocolTwo, ctaptypes.PinUvAuthProtocolOne},
		settings:     make(map[ctaptypes.VendorCommandID]uint64),
		now:          time.Now,
	}
	a.bootedAt = a.now()

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// SetSilent makes the device swallow requests without answering.
func (a *Authenticator) SetSilent(silent bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.silent = silent
}

// SetForeignTraffic prepends a report on an unrelated channel to every
// response.
func (a *Authenticator) SetForeignTraffic(foreign bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.foreign = foreign
}

// InvalidateToken expires the issued pinUvAuthToken device-side.
func (a *Authenticator) InvalidateToken() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokenValid = false
}

// PIN returns the currently stored PIN, empty when none is set.
func (a *Authenticator) PIN() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pin
}

// Setting returns a stored vendor knob value.
func (a *Authenticator) Setting(id ctaptypes.VendorCommandID) (uint64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.settings[id]
	return v, ok
}

// AlwaysUV reports the alwaysUv toggle state.
func (a *Authenticator) AlwaysUV() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.alwaysUv
}

// MinPinLength returns the enforced minimum PIN length.
func (a *Authenticator) MinPinLength() uint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.minPinLength
}

// PINRetries returns the remaining PIN attempts.
func (a *Authenticator) PINRetries() uint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pinRetries
}

func (a *Authenticator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

func (a *Authenticator) Read(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return 0, io.ErrClosedPipe
	}
	if len(a.out) == 0 {
		return 0, ctaphid.ErrReadTimeout
	}

	report := a.out[0]
	a.out = a.out[1:]

	return copy(p, report), nil
}

// Write accepts one request report per call, prefixed with the 0x00
// report ID the client writes.
func (a *Authenticator) Write(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return 0, io.ErrClosedPipe
	}
	if len(p) < 6 {
		return 0, io.ErrShortWrite
	}

	report := p[1:] // strip report ID
	cid := ctaphid.ChannelID(report[0:4])
	cmdOrSeq := report[4]

	if cmdOrSeq&ctaphid.INIT_PACKET_BIT != 0 {
		a.reqCID = cid
		a.reqCmd = ctaphid.Command(cmdOrSeq &^ ctaphid.INIT_PACKET_BIT)
		a.reqTotal = int(binary.BigEndian.Uint16(report[5:7]))
		a.reqBuf = append([]byte(nil), report[7:min(len(report), 7+a.reqTotal)]...)
		a.inFlight = true
	} else {
		if !a.inFlight || cid != a.reqCID {
			return len(p), nil
		}
		remaining := a.reqTotal - len(a.reqBuf)
		a.reqBuf = append(a.reqBuf, report[5:min(len(report), 5+remaining)]...)
	}

	if a.inFlight && len(a.reqBuf) >= a.reqTotal {
		a.inFlight = false
		a.dispatch(a.reqCID, a.reqCmd, a.reqBuf)
	}

	return len(p), nil
}

// respond queues one logical message as padded 64-byte reports.
func (a *Authenticator) respond(cid ctaphid.ChannelID, cmd ctaphid.Command, data []byte) {
	if a.silent {
		return
	}

	if a.foreign {
		noise := make([]byte, reportSize)
		copy(noise, []byte{0xde, 0xad, 0xbe, 0xef})
		noise[4] = byte(ctaphid.CTAPHID_KEEPALIVE) | ctaphid.INIT_PACKET_BIT
		noise[6] = 1
		noise[7] = byte(ctaphid.STATUS_PROCESSING)
		a.out = append(a.out, noise)
	}

	first := make([]byte, reportSize)
	copy(first, cid[:])
	first[4] = byte(cmd) | ctaphid.INIT_PACKET_BIT
	binary.BigEndian.PutUint16(first[5:7], uint16(len(data)))
	n := copy(first[7:], data)
	a.out = append(a.out, first)

	var seq byte
	for n < len(data) {
		cont := make([]byte, reportSize)
		copy(cont, cid[:])
		cont[4] = seq
		n += copy(cont[5:], data[n:])
		a.out = append(a.out, cont)
		seq++
	}
}

func (a *Authenticator) respondStatus(cid ctaphid.ChannelID, code ctaphid.StatusCode) {
	a.respond(cid, ctaphid.CTAPHID_CBOR, []byte{byte(code)})
}

func (a *Authenticator) dispatch(cid ctaphid.ChannelID, cmd ctaphid.Command, payload []byte) {
	switch cmd {
	case ctaphid.CTAPHID_INIT:
		if len(payload) != 8 {
			a.respond(cid, ctaphid.CTAPHID_ERROR, []byte{byte(ctaphid.ERR_INVALID_LEN)})
			return
		}
		resp := slices.Concat(
			payload,
			a.cid[:],
			[]byte{2, 1, 0, 0, byte(ctaphid.CAPABILITY_CBOR) | byte(ctaphid.CAPABILITY_WINK)},
		)
		a.respond(cid, ctaphid.CTAPHID_INIT, resp)
	case ctaphid.CTAPHID_PING:
		a.respond(cid, ctaphid.CTAPHID_PING, payload)
	case ctaphid.CTAPHID_WINK:
		a.respond(cid, ctaphid.CTAPHID_WINK, nil)
	case ctaphid.CTAPHID_CANCEL:
		// nothing pending, ignore
	case ctaphid.CTAPHID_LOCK:
		if len(payload) != 1 {
			a.respond(cid, ctaphid.CTAPHID_ERROR, []byte{byte(ctaphid.ERR_INVALID_LEN)})
			return
		}
		a.respond(cid, ctaphid.CTAPHID_LOCK, nil)
	case ctaphid.CTAPHID_CBOR:
		if len(payload) < 1 {
			a.respond(cid, ctaphid.CTAPHID_ERROR, []byte{byte(ctaphid.ERR_INVALID_LEN)})
			return
		}
		a.handleCTAP(cid, ctaptypes.Command(payload[0]), payload[1:])
	default:
		a.respond(cid, ctaphid.CTAPHID_ERROR, []byte{byte(ctaphid.ERR_INVALID_CMD)})
	}
}

func (a *Authenticator) handleCTAP(cid ctaphid.ChannelID, cmd ctaptypes.Command, body []byte) {
	switch cmd {
	case ctaptypes.AuthenticatorGetInfo:
		a.handleGetInfo(cid)
	case ctaptypes.AuthenticatorClientPIN:
		a.handleClientPIN(cid, body)
	case ctaptypes.AuthenticatorConfig:
		a.handleConfig(cid, body)
	case ctaptypes.AuthenticatorReset:
		a.handleReset(cid)
	case ctaptypes.AuthenticatorSelection:
		a.respondStatus(cid, ctaphid.CTAP2_OK)
	default:
		a.respondStatus(cid, ctaphid.CTAP1_ERR_INVALID_COMMAND)
	}
}

func (a *Authenticator) handleGetInfo(cid ctaphid.ChannelID) {
	info := &ctaptypes.AuthenticatorGetInfoResponse{
		Versions: ctaptypes.Versions{ctaptypes.FIDO_2_0, ctaptypes.FIDO_2_1},
		AAGUID:   uuid.MustParse("89b22547-5b21-4743-89f1-d68d0f5acf14"),
		Options: map[ctaptypes.Option]bool{
			ctaptypes.OptionClientPIN:             a.pin != "",
			ctaptypes.OptionUserVerification:      a.uv,
			ctaptypes.OptionPinUvAuthToken:        true,
			ctaptypes.OptionAuthenticatorConfig:   true,
			ctaptypes.OptionSetMinPINLength:       true,
			ctaptypes.OptionAlwaysUv:              a.alwaysUv,
			ctaptypes.OptionEnterpriseAttestation: a.ep,
		},
		MaxMsgSize:         1200,
		PinUvAuthProtocols: a.protocols,
		MinPinLength:       a.minPinLength,
		MaxPINLength:       a.maxPinLength,
		VendorPrototypeConfigCommands: []uint{
			uint(ctaptypes.VendorCommandVidPid),
			uint(ctaptypes.VendorCommandLedBrightness),
			uint(ctaptypes.VendorCommandLedGpio),
			uint(ctaptypes.VendorCommandPhyOptions),
			uint(ctaptypes.VendorCommandButtonTimeout),
		},
	}

	b, err := a.encMode.Marshal(info)
	if err != nil {
		a.respondStatus(cid, ctaphid.CTAP1_ERR_OTHER)
		return
	}

	a.respond(cid, ctaphid.CTAPHID_CBOR, slices.Concat([]byte{byte(ctaphid.CTAP2_OK)}, b))
}

func (a *Authenticator) kdf(number ctaptypes.PinUvAuthProtocol, z []byte) ([]byte, error) {
	switch number {
	case ctaptypes.PinUvAuthProtocolOne:
		return protocolone.KDF(z), nil
	case ctaptypes.PinUvAuthProtocolTwo:
		return protocoltwo.KDF(z)
	}
	return nil, crypto.ErrInvalidAuthProtocol
}

func (a *Authenticator) decrypt(number ctaptypes.PinUvAuthProtocol, sharedSecret, ciphertext []byte) ([]byte, error) {
	switch number {
	case ctaptypes.PinUvAuthProtocolOne:
		return protocolone.Decrypt(sharedSecret, ciphertext)
	case ctaptypes.PinUvAuthProtocolTwo:
		return protocoltwo.Decrypt(sharedSecret, ciphertext)
	}
	return nil, crypto.ErrInvalidAuthProtocol
}

func (a *Authenticator) encrypt(number ctaptypes.PinUvAuthProtocol, sharedSecret, plaintext []byte) ([]byte, error) {
	switch number {
	case ctaptypes.PinUvAuthProtocolOne:
		return protocolone.Encrypt(sharedSecret, plaintext)
	case ctaptypes.PinUvAuthProtocolTwo:
		return protocoltwo.Encrypt(sharedSecret, plaintext)
	}
	return nil, crypto.ErrInvalidAuthProtocol
}

// sharedSecret runs the device side of the key agreement against the
// platform's COSE key.
func (a *Authenticator) sharedSecret(number ctaptypes.PinUvAuthProtocol, platformKey key.Key) ([]byte, error) {
	if a.devicePriv == nil {
		return nil, errors.New("no key agreement in progress")
	}

	platformPub, err := ecdh2.KeyToPublic(platformKey)
	if err != nil {
		return nil, err
	}

	z, err := a.devicePriv.ECDH(platformPub)
	if err != nil {
		return nil, err
	}

	return a.kdf(number, z)
}

func (a *Authenticator) pinHash() []byte {
	sum := sha256.Sum256([]byte(a.pin))
	return sum[:16]
}

func (a *Authenticator) handleClientPIN(cid ctaphid.ChannelID, body []byte) {
	var req ctaptypes.AuthenticatorClientPINRequest
	if err := cbor.Unmarshal(body, &req); err != nil {
		a.respondStatus(cid, ctaphid.CTAP2_ERR_INVALID_CBOR)
		return
	}

	switch req.SubCommand {
	case ctaptypes.ClientPINSubCommandGetPINRetries:
		b, _ := a.encMode.Marshal(&ctaptypes.AuthenticatorClientPINResponse{
			PinRetries: a.pinRetries,
		})
		a.respond(cid, ctaphid.CTAPHID_CBOR, slices.Concat([]byte{byte(ctaphid.CTAP2_OK)}, b))

	case ctaptypes.ClientPINSubCommandGetKeyAgreement:
		priv, err := ecdh.P256().GenerateKey(rand.Reader)
		if err != nil {
			a.respondStatus(cid, ctaphid.CTAP1_ERR_OTHER)
			return
		}
		a.devicePriv = priv

		deviceKey, err := ecdh2.KeyFromPublic(priv.Public().(*ecdh.PublicKey))
		if err != nil {
			a.respondStatus(cid, ctaphid.CTAP1_ERR_OTHER)
			return
		}
		_ = deviceKey.Set(iana.KeyParameterAlg, -25)
		delete(deviceKey, iana.KeyParameterKid)

		b, _ := a.encMode.Marshal(&ctaptypes.AuthenticatorClientPINResponse{
			KeyAgreement: deviceKey,
		})
		a.respond(cid, ctaphid.CTAPHID_CBOR, slices.Concat([]byte{byte(ctaphid.CTAP2_OK)}, b))

	case ctaptypes.ClientPINSubCommandSetPIN:
		if a.pin != "" {
			a.respondStatus(cid, ctaphid.CTAP2_ERR_NOT_ALLOWED)
			return
		}

		ss, err := a.sharedSecret(req.PinUvAuthProtocol, req.KeyAgreement)
		if err != nil {
			a.respondStatus(cid, ctaphid.CTAP1_ERR_OTHER)
			return
		}

		expected := crypto.Authenticate(req.PinUvAuthProtocol, ss, req.NewPinEnc)
		if !hmac.Equal(expected, req.PinUvAuthParam) {
			a.respondStatus(cid, ctaphid.CTAP2_ERR_PIN_AUTH_INVALID)
			return
		}

		padded, err := a.decrypt(req.PinUvAuthProtocol, ss, req.NewPinEnc)
		if err != nil {
			a.respondStatus(cid, ctaphid.CTAP1_ERR_OTHER)
			return
		}

		pin := trimPin(padded)
		if uint(len(pin)) < a.minPinLength || uint(len(pin)) > a.maxPinLength {
			a.respondStatus(cid, ctaphid.CTAP2_ERR_PIN_POLICY_VIOLATION)
			return
		}

		a.pin = pin
		a.pinRetries = maxRetries
		a.respondStatus(cid, ctaphid.CTAP2_OK)

	case ctaptypes.ClientPINSubCommandChangePIN:
		if a.pin == "" {
			a.respondStatus(cid, ctaphid.CTAP2_ERR_PIN_NOT_SET)
			return
		}

		ss, err := a.sharedSecret(req.PinUvAuthProtocol, req.KeyAgreement)
		if err != nil {
			a.respondStatus(cid, ctaphid.CTAP1_ERR_OTHER)
			return
		}

		expected := crypto.Authenticate(req.PinUvAuthProtocol, ss, slices.Concat(req.NewPinEnc, req.PinHashEnc))
		if !hmac.Equal(expected, req.PinUvAuthParam) {
			a.respondStatus(cid, ctaphid.CTAP2_ERR_PIN_AUTH_INVALID)
			return
		}

		if code := a.verifyPinHash(req.PinUvAuthProtocol, ss, req.PinHashEnc); code != ctaphid.CTAP2_OK {
			a.respondStatus(cid, code)
			return
		}

		padded, err := a.decrypt(req.PinUvAuthProtocol, ss, req.NewPinEnc)
		if err != nil {
			a.respondStatus(cid, ctaphid.CTAP1_ERR_OTHER)
			return
		}

		pin := trimPin(padded)
		if uint(len(pin)) < a.minPinLength || uint(len(pin)) > a.maxPinLength {
			a.respondStatus(cid, ctaphid.CTAP2_ERR_PIN_POLICY_VIOLATION)
			return
		}

		a.pin = pin
		a.tokenValid = false
		a.respondStatus(cid, ctaphid.CTAP2_OK)

	case ctaptypes.ClientPINSubCommandGetPinToken,
		ctaptypes.ClientPINSubCommandGetPinUvAuthTokenUsingPinWithPermissions:
		if a.pin == "" {
			a.respondStatus(cid, ctaphid.CTAP2_ERR_PIN_NOT_SET)
			return
		}

		ss, err := a.sharedSecret(req.PinUvAuthProtocol, req.KeyAgreement)
		if err != nil {
			a.respondStatus(cid, ctaphid.CTAP1_ERR_OTHER)
			return
		}

		if code := a.verifyPinHash(req.PinUvAuthProtocol, ss, req.PinHashEnc); code != ctaphid.CTAP2_OK {
			a.respondStatus(cid, code)
			return
		}

		a.pinRetries = maxRetries
		a.issueToken(cid, req.PinUvAuthProtocol, ss)

	case ctaptypes.ClientPINSubCommandGetPinUvAuthTokenUsingUvWithPermissions:
		if !a.uv {
			a.respondStatus(cid, ctaphid.CTAP2_ERR_INVALID_OPTION)
			return
		}

		ss, err := a.sharedSecret(req.PinUvAuthProtocol, req.KeyAgreement)
		if err != nil {
			a.respondStatus(cid, ctaphid.CTAP1_ERR_OTHER)
			return
		}

		a.issueToken(cid, req.PinUvAuthProtocol, ss)

	default:
		a.respondStatus(cid, ctaphid.CTAP2_ERR_INVALID_SUBCOMMAND)
	}
}

// issueToken mints a fresh 32-byte pinUvAuthToken and returns it
// encrypted under the shared secret.
func (a *Authenticator) issueToken(cid ctaphid.ChannelID, number ctaptypes.PinUvAuthProtocol, ss []byte) {
	a.token = make([]byte, 32)
	if _, err := rand.Read(a.token); err != nil {
		a.respondStatus(cid, ctaphid.CTAP1_ERR_OTHER)
		return
	}
	a.tokenValid = true

	tokenEnc, err := a.encrypt(number, ss, a.token)
	if err != nil {
		a.respondStatus(cid, ctaphid.CTAP1_ERR_OTHER)
		return
	}

	b, _ := a.encMode.Marshal(&ctaptypes.AuthenticatorClientPINResponse{
		PinUvAuthToken: tokenEnc,
	})
	a.respond(cid, ctaphid.CTAPHID_CBOR, slices.Concat([]byte{byte(ctaphid.CTAP2_OK)}, b))
}

func (a *Authenticator) verifyPinHash(number ctaptypes.PinUvAuthProtocol, ss, pinHashEnc []byte) ctaphid.StatusCode {
	if a.pinRetries == 0 {
		return ctaphid.CTAP2_ERR_PIN_BLOCKED
	}

	pinHash, err := a.decrypt(number, ss, pinHashEnc)
	if err != nil {
		return ctaphid.CTAP1_ERR_OTHER
	}

	if !hmac.Equal(pinHash, a.pinHash()) {
		a.pinRetries--
		a.devicePriv = nil
		if a.pinRetries == 0 {
			return ctaphid.CTAP2_ERR_PIN_BLOCKED
		}
		return ctaphid.CTAP2_ERR_PIN_INVALID
	}

	return ctaphid.CTAP2_OK
}

// configRequest keeps the subcommand parameters raw so the MAC can be
// verified over the exact bytes the client signed.
type configRequest struct {
	SubCommand        ctaptypes.ConfigSubCommand  `cbor:"1,keyasint"`
	SubCommandParams  cbor.RawMessage             `cbor:"2,keyasint,omitempty"`
	PinUvAuthProtocol ctaptypes.PinUvAuthProtocol `cbor:"3,keyasint,omitempty"`
	PinUvAuthParam    []byte                      `cbor:"4,keyasint,omitempty"`
}

func (a *Authenticator) handleConfig(cid ctaphid.ChannelID, body []byte) {
	var req configRequest
	if err := cbor.Unmarshal(body, &req); err != nil {
		a.respondStatus(cid, ctaphid.CTAP2_ERR_INVALID_CBOR)
		return
	}

	if a.token == nil || !a.tokenValid {
		a.respondStatus(cid, ctaphid.CTAP2_ERR_PIN_AUTH_INVALID)
		return
	}

	message := slices.Concat(
		slices.Repeat([]byte{0xff}, 32),
		[]byte{byte(ctaptypes.AuthenticatorConfig), byte(req.SubCommand)},
		req.SubCommandParams,
	)
	expected := crypto.Authenticate(req.PinUvAuthProtocol, a.token, message)
	if !hmac.Equal(expected, req.PinUvAuthParam) {
		a.respondStatus(cid, ctaphid.CTAP2_ERR_PIN_AUTH_INVALID)
		return
	}

	switch req.SubCommand {
	case ctaptypes.ConfigSubCommandEnableEnterpriseAttestation:
		a.ep = true
		a.respondStatus(cid, ctaphid.CTAP2_OK)

	case ctaptypes.ConfigSubCommandToggleAlwaysUv:
		a.alwaysUv = !a.alwaysUv
		a.respondStatus(cid, ctaphid.CTAP2_OK)

	case ctaptypes.ConfigSubCommandSetMinPINLength:
		var params ctaptypes.SetMinPINLengthConfigSubCommandParams
		if err := cbor.Unmarshal(req.SubCommandParams, &params); err != nil {
			a.respondStatus(cid, ctaphid.CTAP2_ERR_INVALID_CBOR)
			return
		}
		if params.NewMinPINLength > 0 {
			if params.NewMinPINLength < a.minPinLength {
				a.respondStatus(cid, ctaphid.CTAP2_ERR_PIN_POLICY_VIOLATION)
				return
			}
			a.minPinLength = params.NewMinPINLength
		}
		a.respondStatus(cid, ctaphid.CTAP2_OK)

	case ctaptypes.ConfigSubCommandVendorPrototype:
		var params ctaptypes.VendorConfigSubCommandParams
		if err := cbor.Unmarshal(req.SubCommandParams, &params); err != nil {
			a.respondStatus(cid, ctaphid.CTAP2_ERR_INVALID_CBOR)
			return
		}

		switch params.CommandID {
		case ctaptypes.VendorCommandVidPid,
			ctaptypes.VendorCommandLedBrightness,
			ctaptypes.VendorCommandLedGpio,
			ctaptypes.VendorCommandPhyOptions,
			ctaptypes.VendorCommandButtonTimeout:
			a.settings[params.CommandID] = params.Value
			a.respondStatus(cid, ctaphid.CTAP2_OK)
		default:
			a.respondStatus(cid, ctaphid.CTAP1_ERR_INVALID_PARAMETER)
		}

	default:
		a.respondStatus(cid, ctaphid.CTAP2_ERR_INVALID_SUBCOMMAND)
	}
}

func (a *Authenticator) handleReset(cid ctaphid.ChannelID) {
	if opts, ok := a.settings[ctaptypes.VendorCommandPhyOptions]; ok &&
		ctaptypes.PhyOptions(opts).Has(ctaptypes.PhyOptionDisablePowerReset) {
		a.respondStatus(cid, ctaphid.CTAP2_ERR_NOT_ALLOWED)
		return
	}

	if a.now().Sub(a.bootedAt) > resetWindow {
		a.respondStatus(cid, ctaphid.CTAP2_ERR_NOT_ALLOWED)
		return
	}

	a.pin = ""
	a.pinRetries = maxRetries
	a.minPinLength = 4
	a.alwaysUv = false
	a.ep = false
	a.token = nil
	a.tokenValid = false
	a.settings = make(map[ctaptypes.VendorCommandID]uint64)

	a.respondStatus(cid, ctaphid.CTAP2_OK)
}

// trimPin strips the zero padding of a 64-byte PIN plaintext.
func trimPin(padded []byte) string {
	for i, b := range padded {
		if b == 0 {
			return string(padded[:i])
		}
	}
	return string(padded)
}
