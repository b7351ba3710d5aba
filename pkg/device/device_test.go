package device

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pico-keys/commissioner/pkg/ctap"
	"github.com/pico-keys/commissioner/pkg/ctaphid"
	"github.com/pico-keys/commissioner/pkg/ctaptest"
	"github.com/pico-keys/commissioner/pkg/ctaptypes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestDevice(t *testing.T, opts ...ctaptest.Option) (*Device, *ctaptest.Authenticator) {
	t.Helper()

	auth := ctaptest.New(opts...)

	dev, err := NewFromReadWriter(t.Name(), auth)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = dev.Close()
	})

	return dev, auth
}

func requireStatus(t *testing.T, err error, code ctaphid.StatusCode) {
	t.Helper()

	var ctapErr *ctaphid.CTAPError
	require.ErrorAs(t, err, &ctapErr)
	assert.Equal(t, code, ctapErr.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	dev, _ := newTestDevice(t)

	assert.Equal(t, StateInfoFetched, dev.State())

	info := dev.GetInfo()
	require.NotNil(t, info)
	assert.False(t, info.Options[ctaptypes.OptionClientPIN])
	assert.True(t, info.SupportsVendorConfig())
}

func TestSetPINThenAuthenticate(t *testing.T) {
	dev, auth := newTestDevice(t)

	require.NoError(t, dev.SetPIN("123456"))
	assert.Equal(t, "123456", auth.PIN())

	// The info snapshot is refreshed; a second set must be refused.
	assert.True(t, dev.GetInfo().Options[ctaptypes.OptionClientPIN])
	assert.ErrorIs(t, dev.SetPIN("654321"), ErrPinAlreadySet)

	require.NoError(t, dev.Authenticate("123456"))
	assert.Equal(t, StateReady, dev.State())
}

func TestSetPINTooShortNeverSent(t *testing.T) {
	dev, auth := newTestDevice(t)

	assert.ErrorIs(t, dev.SetPIN("123"), ctap.ErrPinPolicyViolation)
	assert.Empty(t, auth.PIN())
}

func TestAuthenticateWithoutPIN(t *testing.T) {
	dev, _ := newTestDevice(t)

	assert.ErrorIs(t, dev.Authenticate("123456"), ErrPinNotSet)
}

func TestAuthenticateWrongPIN(t *testing.T) {
	dev, auth := newTestDevice(t, ctaptest.WithPIN("123456"))

	before := auth.PINRetries()

	err := dev.Authenticate("999999")
	requireStatus(t, err, ctaphid.CTAP2_ERR_PIN_INVALID)
	assert.Equal(t, before-1, auth.PINRetries())
	assert.Equal(t, StateInfoFetched, dev.State())

	// A fresh attempt with the right PIN recovers.
	require.NoError(t, dev.Authenticate("123456"))
	assert.Equal(t, StateReady, dev.State())
}

func TestVendorSetterRequiresToken(t *testing.T) {
	dev, auth := newTestDevice(t, ctaptest.WithPIN("123456"))

	assert.ErrorIs(t, dev.SetButtonTimeout(30), ErrPinUvAuthTokenRequired)

	_, ok := auth.Setting(ctaptypes.VendorCommandButtonTimeout)
	assert.False(t, ok)
}

func TestVendorSetters(t *testing.T) {
	dev, auth := newTestDevice(t, ctaptest.WithPIN("123456"))
	require.NoError(t, dev.Authenticate("123456"))

	require.NoError(t, dev.SetButtonTimeout(30))
	v, ok := auth.Setting(ctaptypes.VendorCommandButtonTimeout)
	require.True(t, ok)
	assert.Equal(t, uint64(30), v)

	require.NoError(t, dev.SetLedGpio(25))
	v, _ = auth.Setting(ctaptypes.VendorCommandLedGpio)
	assert.Equal(t, uint64(25), v)

	require.NoError(t, dev.SetLedBrightness(128))
	// Repeating the same value is fine; the knob is absolute.
	require.NoError(t, dev.SetLedBrightness(128))
	v, _ = auth.Setting(ctaptypes.VendorCommandLedBrightness)
	assert.Equal(t, uint64(128), v)

	require.NoError(t, dev.SetPhyOptions(ctaptypes.PhyOptions(ctaptypes.PhyOptionDimLed|ctaptypes.PhyOptionLedSteady)))
	v, _ = auth.Setting(ctaptypes.VendorCommandPhyOptions)
	assert.Equal(t, uint64(0x0a), v)

	require.NoError(t, dev.SetVidPid(0x2e8a, 0x10fe))
	v, _ = auth.Setting(ctaptypes.VendorCommandVidPid)
	assert.Equal(t, uint64(0x2e8a)<<16|uint64(0x10fe), v)
}

func TestVendorSetterValidation(t *testing.T) {
	dev, auth := newTestDevice(t, ctaptest.WithPIN("123456"))
	require.NoError(t, dev.Authenticate("123456"))

	assert.ErrorIs(t, dev.SetButtonTimeout(-1), ErrInvalidParameter)
	assert.ErrorIs(t, dev.SetButtonTimeout(256), ErrInvalidParameter)
	assert.ErrorIs(t, dev.SetLedGpio(30), ErrInvalidParameter)
	assert.ErrorIs(t, dev.SetLedBrightness(300), ErrInvalidParameter)
	assert.ErrorIs(t, dev.SetPhyOptions(ctaptypes.PhyOptions(0x10)), ErrInvalidParameter)

	// Nothing reached the device and the session is still usable.
	_, ok := auth.Setting(ctaptypes.VendorCommandButtonTimeout)
	assert.False(t, ok)
	assert.Equal(t, StateReady, dev.State())
}

func TestStandardConfig(t *testing.T) {
	dev, auth := newTestDevice(t, ctaptest.WithPIN("123456"))
	require.NoError(t, dev.Authenticate("123456"))

	require.NoError(t, dev.ToggleAlwaysUV())
	assert.True(t, auth.AlwaysUV())

	require.NoError(t, dev.SetMinPINLength(6, nil, false))
	assert.Equal(t, uint(6), auth.MinPinLength())

	require.NoError(t, dev.EnableEnterpriseAttestation())
}

func TestTokenInvalidation(t *testing.T) {
	dev, auth := newTestDevice(t, ctaptest.WithPIN("123456"))
	require.NoError(t, dev.Authenticate("123456"))

	auth.InvalidateToken()

	err := dev.SetLedBrightness(64)
	requireStatus(t, err, ctaphid.CTAP2_ERR_PIN_AUTH_INVALID)
	assert.Equal(t, StateInfoFetched, dev.State())

	// Re-authenticating mints a new token and the knob applies.
	require.NoError(t, dev.Authenticate("123456"))
	require.NoError(t, dev.SetLedBrightness(64))
}

func TestChangePIN(t *testing.T) {
	dev, auth := newTestDevice(t, ctaptest.WithPIN("123456"))

	err := dev.ChangePIN("999999", "abcdef")
	requireStatus(t, err, ctaphid.CTAP2_ERR_PIN_INVALID)
	assert.Equal(t, "123456", auth.PIN())

	assert.ErrorIs(t, dev.ChangePIN("123456", "abc"), ctap.ErrPinPolicyViolation)

	require.NoError(t, dev.ChangePIN("123456", "abcdef"))
	assert.Equal(t, "abcdef", auth.PIN())
}

func TestChangePINDropsToken(t *testing.T) {
	dev, _ := newTestDevice(t, ctaptest.WithPIN("123456"))
	require.NoError(t, dev.Authenticate("123456"))

	require.NoError(t, dev.ChangePIN("123456", "abcdef"))
	assert.Equal(t, StateInfoFetched, dev.State())

	assert.ErrorIs(t, dev.SetLedBrightness(64), ErrPinUvAuthTokenRequired)
}

func TestGetPINRetries(t *testing.T) {
	dev, _ := newTestDevice(t, ctaptest.WithPIN("123456"))

	retries, powerCycle, err := dev.GetPINRetries()
	require.NoError(t, err)
	assert.Equal(t, uint(8), retries)
	assert.False(t, powerCycle)
}

func TestGetPINRetriesWithoutPIN(t *testing.T) {
	dev, _ := newTestDevice(t)

	_, _, err := dev.GetPINRetries()
	assert.ErrorIs(t, err, ErrPinNotSet)
}

func TestResetInsideWindow(t *testing.T) {
	clock := newFakeClock()
	dev, auth := newTestDevice(t, ctaptest.WithPIN("123456"), ctaptest.WithClock(clock.Now))
	require.NoError(t, dev.Authenticate("123456"))
	require.NoError(t, dev.SetLedBrightness(200))

	clock.Advance(5 * time.Second)

	require.NoError(t, dev.Reset())
	assert.Equal(t, StateInfoFetched, dev.State())
	assert.Empty(t, auth.PIN())
	assert.False(t, dev.GetInfo().Options[ctaptypes.OptionClientPIN])

	_, ok := auth.Setting(ctaptypes.VendorCommandLedBrightness)
	assert.False(t, ok)
}

func TestResetOutsideWindow(t *testing.T) {
	clock := newFakeClock()
	dev, auth := newTestDevice(t, ctaptest.WithPIN("123456"), ctaptest.WithClock(clock.Now))

	clock.Advance(11 * time.Second)

	requireStatus(t, dev.Reset(), ctaphid.CTAP2_ERR_NOT_ALLOWED)
	assert.Equal(t, "123456", auth.PIN())
	// A refused reset does not hurt the session.
	assert.Equal(t, StateInfoFetched, dev.State())
}

func TestResetDisabledByPhyOption(t *testing.T) {
	dev, _ := newTestDevice(t, ctaptest.WithPIN("123456"))
	require.NoError(t, dev.Authenticate("123456"))

	require.NoError(t, dev.SetPhyOptions(ctaptypes.PhyOptions(ctaptypes.PhyOptionDisablePowerReset)))

	requireStatus(t, dev.Reset(), ctaphid.CTAP2_ERR_NOT_ALLOWED)
}

func TestSilentDeviceFaultsSession(t *testing.T) {
	dev, auth := newTestDevice(t, ctaptest.WithPIN("123456"))

	auth.SetSilent(true)

	_, _, err := dev.GetPINRetries()
	assert.ErrorIs(t, err, ctaphid.ErrReadTimeout)
	assert.Equal(t, StateFaulted, dev.State())

	// Once faulted, nothing goes out anymore.
	auth.SetSilent(false)
	_, _, err = dev.GetPINRetries()
	assert.ErrorIs(t, err, ErrFaulted)
}

func TestForeignTrafficIgnored(t *testing.T) {
	dev, auth := newTestDevice(t, ctaptest.WithPIN("123456"))

	auth.SetForeignTraffic(true)

	retries, _, err := dev.GetPINRetries()
	require.NoError(t, err)
	assert.Equal(t, uint(8), retries)
}

func TestProtocolOneOnlyDevice(t *testing.T) {
	dev, auth := newTestDevice(t,
		ctaptest.WithPIN("123456"),
		ctaptest.WithPinUvAuthProtocols(ctaptypes.PinUvAuthProtocolOne),
	)

	require.NoError(t, dev.Authenticate("123456"))
	require.NoError(t, dev.SetButtonTimeout(15))

	v, _ := auth.Setting(ctaptypes.VendorCommandButtonTimeout)
	assert.Equal(t, uint64(15), v)
}

func TestBusyRegistry(t *testing.T) {
	dev, _ := newTestDevice(t)

	_, err := NewFromReadWriter(t.Name(), ctaptest.New())
	assert.ErrorIs(t, err, ErrDeviceBusy)

	require.NoError(t, dev.Close())

	dev2, err := NewFromReadWriter(t.Name(), ctaptest.New())
	require.NoError(t, err)
	_ = dev2.Close()
}

func TestCloseIdempotent(t *testing.T) {
	dev, _ := newTestDevice(t)

	require.NoError(t, dev.Close())
	require.NoError(t, dev.Close())
	assert.Equal(t, StateClosed, dev.State())

	assert.ErrorIs(t, dev.SetButtonTimeout(30), ErrClosed)
}

func TestPINLongerThanDeviceMaxNeverSent(t *testing.T) {
	dev, auth := newTestDevice(t, ctaptest.WithMaxPINLength(8))

	assert.ErrorIs(t, dev.SetPIN("123456789"), ctap.ErrPinPolicyViolation)
	assert.Empty(t, auth.PIN())
}

func TestChangePINLongerThanDeviceMaxNeverSent(t *testing.T) {
	dev, auth := newTestDevice(t, ctaptest.WithPIN("123456"), ctaptest.WithMaxPINLength(8))

	assert.ErrorIs(t, dev.ChangePIN("123456", "123456789"), ctap.ErrPinPolicyViolation)
	assert.Equal(t, "123456", auth.PIN())
}

func TestAuthenticateUV(t *testing.T) {
	dev, auth := newTestDevice(t, ctaptest.WithUV())

	require.NoError(t, dev.AuthenticateUV())
	assert.Equal(t, StateReady, dev.State())

	require.NoError(t, dev.SetButtonTimeout(20))
	v, ok := auth.Setting(ctaptypes.VendorCommandButtonTimeout)
	require.True(t, ok)
	assert.Equal(t, uint64(20), v)
}

func TestAuthenticateUVNotConfigured(t *testing.T) {
	dev, _ := newTestDevice(t)

	assert.ErrorIs(t, dev.AuthenticateUV(), ErrUvNotConfigured)
}

func TestLockRoundTrip(t *testing.T) {
	dev, _ := newTestDevice(t)

	require.NoError(t, dev.Lock(10))
	require.NoError(t, dev.Lock(0))

	require.NoError(t, dev.Close())
	assert.ErrorIs(t, dev.Lock(10), ErrClosed)
}

func TestSelection(t *testing.T) {
	dev, _ := newTestDevice(t)

	require.NoError(t, dev.Selection(context.Background()))
	assert.Equal(t, StateInfoFetched, dev.State())
}

func TestSelectionAfterClose(t *testing.T) {
	dev, _ := newTestDevice(t)

	require.NoError(t, dev.Close())
	assert.ErrorIs(t, dev.Selection(context.Background()), ErrClosed)
}

func TestSelectionFaultsOnSilentDevice(t *testing.T) {
	dev, auth := newTestDevice(t)

	auth.SetSilent(true)
	assert.ErrorIs(t, dev.Selection(context.Background()), ctaphid.ErrReadTimeout)
	assert.Equal(t, StateFaulted, dev.State())
}

func TestOperationsRejectedWhileSelectionPending(t *testing.T) {
	dev, _ := newTestDevice(t)

	dev.mu.Lock()
	dev.inFlight = true
	dev.mu.Unlock()

	assert.ErrorIs(t, dev.Wink(), ErrDeviceBusy)
	assert.ErrorIs(t, dev.Selection(context.Background()), ErrDeviceBusy)

	dev.mu.Lock()
	dev.inFlight = false
	dev.mu.Unlock()

	require.NoError(t, dev.Wink())
}
