// Package device manages one configuration session with a FIDO2
// authenticator: channel setup, PIN/UV authentication and the standard
// and vendor authenticatorConfig operations, serialized behind a single
// lock so one round trip finishes before the next starts.
package device

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/pico-keys/commissioner/pkg/crypto"
	"github.com/pico-keys/commissioner/pkg/ctap"
	"github.com/pico-keys/commissioner/pkg/ctaphid"
	"github.com/pico-keys/commissioner/pkg/ctaptypes"
	"github.com/pico-keys/commissioner/pkg/options"
)

// State is the lifecycle phase of a session.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateInfoFetched
	StateAuthenticated
	StateReady
	StateClosed
	StateFaulted
)

var stateNames = map[State]string{
	StateDisconnected:  "disconnected",
	StateConnected:     "connected",
	StateInfoFetched:   "info-fetched",
	StateAuthenticated: "authenticated",
	StateReady:         "ready",
	StateClosed:        "closed",
	StateFaulted:       "faulted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Device is a single authenticator session. All methods are safe for
// concurrent use; a method holds the session lock for its whole round
// trip.
type Device struct {
	Path string

	mu         sync.Mutex
	conn       io.ReadWriteCloser
	cid        ctaphid.ChannelID
	info       *ctaptypes.AuthenticatorGetInfoResponse
	state      State
	protocol   ctaptypes.PinUvAuthProtocol
	token      []byte
	inFlight   bool
	ctapClient *ctap.Client
	logger     *slog.Logger
}

// New opens the HID device at path, allocates a CTAPHID channel and
// fetches the device info snapshot.
func New(path string, opts ...options.Option) (*Device, error) {
	oo := options.NewOptions(opts...)

	ctx := context.WithValue(oo.Context, CtxKeyUseNamedPipe, oo.UseNamedPipe)
	rwc, err := OpenPath(ctx, path)
	if err != nil {
		return nil, err
	}

	return newDevice(path, newConn(rwc, oo.ReadTimeout), oo, opts...)
}

// NewFromReadWriter runs a session over an already-open transport, e.g.
// a virtual authenticator. The path is only used for the in-process
// busy registry.
func NewFromReadWriter(path string, rwc io.ReadWriteCloser, opts ...options.Option) (*Device, error) {
	oo := options.NewOptions(opts...)
	return newDevice(path, rwc, oo, opts...)
}

func newDevice(path string, rwc io.ReadWriteCloser, oo *options.Options, opts ...options.Option) (*Device, error) {
	if err := claimPath(path); err != nil {
		_ = rwc.Close()
		return nil, err
	}

	d := &Device{
		Path:       path,
		conn:       rwc,
		state:      StateConnected,
		ctapClient: ctap.NewClient(opts...),
		logger:     oo.Logger,
	}

	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		d.teardown()
		return nil, err
	}

	msg, err := ctaphid.Init(d.conn, ctaphid.BROADCAST_CID, nonce)
	if err != nil {
		d.teardown()
		return nil, err
	}
	d.cid = msg.CID

	info, err := d.ctapClient.GetInfo(d.conn, d.cid)
	if err != nil {
		d.teardown()
		return nil, err
	}
	d.info = info
	d.state = StateInfoFetched

	d.logger.Debug("session established",
		"path", path,
		"cid", d.cid,
		"versions", info.Versions,
	)

	return d, nil
}

func (d *Device) teardown() {
	_ = d.conn.Close()
	releasePath(d.Path)
}

// Close releases the HID handle and the busy-registry claim. It is safe
// to call more than once and in any state.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == StateClosed {
		return nil
	}

	err := d.conn.Close()
	releasePath(d.Path)
	d.token = nil
	d.state = StateClosed

	return err
}

// State returns the current lifecycle phase.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.state
}

// GetInfo returns the info snapshot fetched at session start (or after
// the last reset or PIN set).
func (d *Device) GetInfo() *ctaptypes.AuthenticatorGetInfoResponse {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.info
}

// live rejects calls on a session that can no longer talk to the
// device, or that already has a request on the wire (Selection releases
// the lock while it waits for the user). Callers must hold d.mu.
func (d *Device) live() error {
	switch d.state {
	case StateClosed:
		return ErrClosed
	case StateFaulted:
		return ErrFaulted
	}

	if d.inFlight {
		return ErrDeviceBusy
	}

	return nil
}

// observe classifies an operation error. A CTAP status is the device
// speaking, so the session survives; a rejected or expired token
// additionally drops back to the unauthenticated phase. Anything below
// the CTAP layer except a CTAPHID_ERROR report means the transport is
// gone. Callers must hold d.mu.
func (d *Device) observe(err error) error {
	if err == nil {
		return nil
	}

	var ctapErr *ctaphid.CTAPError
	if errors.As(err, &ctapErr) {
		switch ctapErr.StatusCode {
		case ctaphid.CTAP2_ERR_PIN_AUTH_INVALID, ctaphid.CTAP2_ERR_PUAT_REQUIRED:
			if d.state == StateAuthenticated || d.state == StateReady {
				d.token = nil
				d.state = StateInfoFetched
			}
		}
		return err
	}

	var hidErr *ctaphid.HidError
	if errors.As(err, &hidErr) {
		return err
	}

	if d.state != StateClosed {
		d.state = StateFaulted
	}
	return err
}

// Ping sends a ping message to the device and verifies the echo.
func (d *Device) Ping(ping []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.live(); err != nil {
		return err
	}

	pong, err := ctaphid.Ping(d.conn, d.cid, ping)
	if err != nil {
		return d.observe(err)
	}

	if !bytes.Equal(ping, pong.Bytes) {
		return ErrPingPongMismatch
	}

	return nil
}

// Wink asks the device to blink, signaling its physical location.
func (d *Device) Wink() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.live(); err != nil {
		return err
	}

	return d.observe(ctaphid.Wink(d.conn, d.cid))
}

// GetPINRetries reports how many PIN attempts remain and whether the
// device wants a power cycle before the next one.
func (d *Device) GetPINRetries() (uint, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.live(); err != nil {
		return 0, false, err
	}

	clientPin, ok := d.info.Options[ctaptypes.OptionClientPIN]
	if !ok {
		return 0, false, newErrorMessage(ErrNotSupported, "device doesn't support clientPin option")
	}
	if !clientPin {
		return 0, false, newErrorMessage(ErrPinNotSet, "please set PIN first")
	}

	protocol, err := crypto.Negotiate(d.info)
	if err != nil {
		return 0, false, err
	}

	retries, powerCycle, err := d.ctapClient.GetPINRetries(d.conn, d.cid, protocol)
	return retries, powerCycle, d.observe(err)
}

// SetPIN sets the first PIN on a device without one. The info snapshot
// is refreshed afterwards so the clientPin option reflects the new
// state.
func (d *Device) SetPIN(pin string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.live(); err != nil {
		return err
	}

	clientPin, ok := d.info.Options[ctaptypes.OptionClientPIN]
	if !ok {
		return newErrorMessage(ErrNotSupported, "device doesn't support clientPin option")
	}
	if clientPin {
		return newErrorMessage(ErrPinAlreadySet, "pin already set, use changePin instead")
	}

	if err := d.checkPinBounds(pin); err != nil {
		return err
	}

	protocol, err := crypto.Negotiate(d.info)
	if err != nil {
		return err
	}

	keyAgreement, err := d.ctapClient.GetKeyAgreement(d.conn, d.cid, protocol)
	if err != nil {
		return d.observe(err)
	}

	if err := d.ctapClient.SetPIN(d.conn, d.cid, protocol, keyAgreement, pin); err != nil {
		return d.observe(err)
	}

	return d.refreshInfo()
}

// ChangePIN replaces the current PIN.
func (d *Device) ChangePIN(currentPin, newPin string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.live(); err != nil {
		return err
	}

	clientPin, ok := d.info.Options[ctaptypes.OptionClientPIN]
	if !ok {
		return newErrorMessage(ErrNotSupported, "device doesn't support clientPin option")
	}
	if !clientPin {
		return newErrorMessage(ErrPinNotSet, "please set PIN first")
	}

	if err := d.checkPinBounds(newPin); err != nil {
		return err
	}

	protocol, err := crypto.Negotiate(d.info)
	if err != nil {
		return err
	}

	keyAgreement, err := d.ctapClient.GetKeyAgreement(d.conn, d.cid, protocol)
	if err != nil {
		return d.observe(err)
	}

	err = d.ctapClient.ChangePIN(d.conn, d.cid, protocol, keyAgreement, currentPin, newPin)
	if err != nil {
		return d.observe(err)
	}

	// A PIN change invalidates outstanding tokens device-side.
	if d.state == StateAuthenticated || d.state == StateReady {
		d.token = nil
		d.state = StateInfoFetched
	}

	return nil
}

// checkPinBounds enforces the device-advertised minimum and maximum on
// top of the protocol's own 4..63 byte policy. Callers must hold d.mu.
func (d *Device) checkPinBounds(pin string) error {
	if d.info.MinPinLength > 0 && uint(len(pin)) < d.info.MinPinLength {
		return ctap.ErrPinPolicyViolation
	}
	if d.info.MaxPINLength > 0 && uint(len(pin)) > d.info.MaxPINLength {
		return ctap.ErrPinPolicyViolation
	}
	return nil
}

// Authenticate performs key agreement with the device and obtains a
// pinUvAuthToken scoped to authenticator configuration. On success the
// session is ready for config operations.
func (d *Device) Authenticate(pin string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.live(); err != nil {
		return err
	}

	clientPin, ok := d.info.Options[ctaptypes.OptionClientPIN]
	if !ok {
		return newErrorMessage(ErrNotSupported, "device doesn't support clientPin option")
	}
	if !clientPin {
		return newErrorMessage(ErrPinNotSet, "please set PIN first")
	}

	protocol, err := crypto.Negotiate(d.info)
	if err != nil {
		return err
	}

	// Each attempt starts from a fresh key agreement; the device's
	// ephemeral key may have rotated since the last one.
	keyAgreement, err := d.ctapClient.GetKeyAgreement(d.conn, d.cid, protocol)
	if err != nil {
		return d.observe(err)
	}

	var token []byte
	if tokenOpt, ok := d.info.Options[ctaptypes.OptionPinUvAuthToken]; ok && tokenOpt {
		token, err = d.ctapClient.GetPinUvAuthTokenUsingPinWithPermissions(
			d.conn,
			d.cid,
			protocol,
			keyAgreement,
			pin,
			ctaptypes.PermissionAuthenticatorConfiguration,
			"",
		)
	} else {
		token, err = d.ctapClient.GetPinToken(d.conn, d.cid, protocol, keyAgreement, pin)
	}
	if err != nil {
		return d.observe(err)
	}

	d.protocol = protocol
	d.token = token
	d.state = StateReady

	return nil
}

// AuthenticateUV obtains a pinUvAuthToken through the device's built-in
// user verification instead of a PIN. The device must advertise uv and
// have it configured.
func (d *Device) AuthenticateUV() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.live(); err != nil {
		return err
	}

	if tokenOpt, ok := d.info.Options[ctaptypes.OptionPinUvAuthToken]; !ok || !tokenOpt {
		return newErrorMessage(ErrNotSupported, "device doesn't support pinUvAuthToken option")
	}

	uv, ok := d.info.Options[ctaptypes.OptionUserVerification]
	if !ok {
		return newErrorMessage(ErrNotSupported, "device doesn't support uv option")
	}
	if !uv {
		return newErrorMessage(ErrUvNotConfigured, "configure built-in user verification first")
	}

	protocol, err := crypto.Negotiate(d.info)
	if err != nil {
		return err
	}

	keyAgreement, err := d.ctapClient.GetKeyAgreement(d.conn, d.cid, protocol)
	if err != nil {
		return d.observe(err)
	}

	token, err := d.ctapClient.GetPinUvAuthTokenUsingUvWithPermissions(
		d.conn,
		d.cid,
		protocol,
		keyAgreement,
		ctaptypes.PermissionAuthenticatorConfiguration,
		"",
	)
	if err != nil {
		return d.observe(err)
	}

	d.protocol = protocol
	d.token = token
	d.state = StateReady

	return nil
}

// config gates one authenticatorConfig operation on an authenticated
// session. Callers must hold d.mu.
func (d *Device) config(fn func() error) error {
	if err := d.live(); err != nil {
		return err
	}

	if d.state != StateReady || d.token == nil {
		return ErrPinUvAuthTokenRequired
	}

	return d.observe(fn())
}

// EnableEnterpriseAttestation turns the ep option on.
func (d *Device) EnableEnterpriseAttestation() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.info.Options[ctaptypes.OptionEnterpriseAttestation]; !ok {
		return newErrorMessage(ErrNotSupported, "device doesn't support ep")
	}

	return d.config(func() error {
		return d.ctapClient.EnableEnterpriseAttestation(d.conn, d.cid, d.protocol, d.token)
	})
}

// ToggleAlwaysUV toggles the alwaysUv option.
func (d *Device) ToggleAlwaysUV() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.info.Options[ctaptypes.OptionAlwaysUv]; !ok {
		return newErrorMessage(ErrNotSupported, "device doesn't support alwaysUv")
	}

	return d.config(func() error {
		return d.ctapClient.ToggleAlwaysUV(d.conn, d.cid, d.protocol, d.token)
	})
}

// SetMinPINLength raises the minimum PIN length and optionally forces a
// PIN change on next use.
func (d *Device) SetMinPINLength(newMinPinLength uint, minPinLengthRPIDs []string, forceChangePin bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if setMinPIN, ok := d.info.Options[ctaptypes.OptionSetMinPINLength]; !ok || !setMinPIN {
		return newErrorMessage(ErrNotSupported, "device doesn't support setMinPINLength")
	}

	return d.config(func() error {
		return d.ctapClient.SetMinPINLength(d.conn, d.cid, d.protocol, d.token,
			&ctaptypes.SetMinPINLengthConfigSubCommandParams{
				NewMinPINLength:   newMinPinLength,
				MinPinLengthRPIDs: minPinLengthRPIDs,
				ForceChangePin:    forceChangePin,
			})
	})
}

// vendorConfig sends one vendorPrototype knob. Local validation happens
// in the typed setters; by the time we get here only the session state
// can still reject the call.
func (d *Device) vendorConfig(commandID ctaptypes.VendorCommandID, value uint64) error {
	if !d.info.SupportsVendorConfig() {
		return newErrorMessage(ErrNotSupported, "device doesn't support authnrCfg")
	}

	return d.config(func() error {
		return d.ctapClient.VendorConfig(d.conn, d.cid, d.protocol, d.token, commandID, value)
	})
}

// SetVidPid reprograms the USB vendor and product IDs. Takes effect
// after the device is replugged.
func (d *Device) SetVidPid(vid, pid uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.vendorConfig(ctaptypes.VendorCommandVidPid, uint64(vid)<<16|uint64(pid))
}

// SetLedBrightness sets the status LED brightness, 0 to 255.
func (d *Device) SetLedBrightness(level int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if level < 0 || level > 255 {
		return newErrorMessage(ErrInvalidParameter, "brightness must be between 0 and 255")
	}

	return d.vendorConfig(ctaptypes.VendorCommandLedBrightness, uint64(level))
}

// SetLedGpio moves the status LED to another GPIO pin.
func (d *Device) SetLedGpio(pin int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pin < 0 || pin > ctaptypes.MaxLedGpio {
		return newErrorMessage(ErrInvalidParameter, "GPIO pin must be between 0 and 29")
	}

	return d.vendorConfig(ctaptypes.VendorCommandLedGpio, uint64(pin))
}

// SetPhyOptions replaces the PHY flag set. Unknown bits are rejected
// before anything is sent.
func (d *Device) SetPhyOptions(opts ctaptypes.PhyOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !opts.Valid() {
		return newErrorMessage(ErrInvalidParameter, "unknown PHY option bits")
	}

	return d.vendorConfig(ctaptypes.VendorCommandPhyOptions, uint64(opts))
}

// SetButtonTimeout sets how many seconds the device waits for a button
// press before failing with a user-action timeout. Zero disables the
// button confirmation entirely.
func (d *Device) SetButtonTimeout(seconds int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if seconds < 0 || seconds > 255 {
		return newErrorMessage(ErrInvalidParameter, "timeout must be between 0 and 255 seconds")
	}

	return d.vendorConfig(ctaptypes.VendorCommandButtonTimeout, uint64(seconds))
}

// Reset performs a factory reset. Devices accept it only within a short
// window after power-on and with the button pressed; outside of that the
// CTAP2_ERR_NOT_ALLOWED or CTAP2_ERR_USER_ACTION_TIMEOUT status is
// returned as-is. On success all session credentials are gone, so the
// info snapshot is refetched and authentication starts over.
func (d *Device) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.live(); err != nil {
		return err
	}

	if err := d.ctapClient.Reset(d.conn, d.cid); err != nil {
		return d.observe(err)
	}

	d.token = nil
	d.protocol = 0

	return d.refreshInfo()
}

// refreshInfo refetches the info snapshot and drops back to the
// unauthenticated phase. Callers must hold d.mu.
func (d *Device) refreshInfo() error {
	info, err := d.ctapClient.GetInfo(d.conn, d.cid)
	if err != nil {
		return d.observe(err)
	}

	d.info = info
	if d.state != StateClosed && d.state != StateFaulted {
		d.state = StateInfoFetched
	}

	return nil
}

// Selection blocks until the user taps this device, or the context is
// canceled, in which case the pending request is canceled on-channel.
// The session lock is released while the request is on the wire, but
// the in-flight marker keeps every other operation out until it
// settles.
func (d *Device) Selection(ctx context.Context) error {
	d.mu.Lock()
	if err := d.live(); err != nil {
		d.mu.Unlock()
		return err
	}
	d.inFlight = true
	conn, cid := d.conn, d.cid
	d.mu.Unlock()

	errc := make(chan error, 1)
	go func() {
		errc <- d.ctapClient.Selection(conn, cid)
	}()

	var err error
	select {
	case <-ctx.Done():
		if cancelErr := ctaphid.Cancel(conn, cid); cancelErr != nil {
			err = errors.Join(cancelErr, <-errc)
		} else {
			err = <-errc
		}
	case err = <-errc:
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight = false

	return d.observe(err)
}

// Lock takes the CTAPHID channel lock for up to seconds (0 releases it),
// keeping other channels from interleaving with a sensitive exchange.
func (d *Device) Lock(seconds uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.live(); err != nil {
		return err
	}

	return d.observe(ctaphid.Lock(d.conn, d.cid, seconds))
}
