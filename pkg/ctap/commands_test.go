package ctap

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/pico-keys/commissioner/pkg/ctaphid"
	"github.com/pico-keys/commissioner/pkg/ctaptypes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silentRW counts writes and never answers. Validation failures must
// never reach it.
type silentRW struct {
	writes int
}

func (s *silentRW) Write(p []byte) (int, error) {
	s.writes++
	return len(p), nil
}

func (s *silentRW) Read(p []byte) (int, error) {
	return 0, ctaphid.ErrReadTimeout
}

var testChannel = ctaphid.ChannelID{0x01, 0x02, 0x03, 0x04}

func TestSetPINPolicyRejectedBeforeTransport(t *testing.T) {
	cl := NewClient()
	rw := &silentRW{}

	for _, pin := range []string{
		"",
		"123",
		strings.Repeat("a", 64),
		"12\xff5", // invalid UTF-8
	} {
		err := cl.SetPIN(rw, testChannel, ctaptypes.PinUvAuthProtocolTwo, nil, pin)
		assert.ErrorIs(t, err, ErrPinPolicyViolation, "pin %q", pin)
	}

	assert.Zero(t, rw.writes)
}

func TestChangePINPolicyRejectedBeforeTransport(t *testing.T) {
	cl := NewClient()
	rw := &silentRW{}

	err := cl.ChangePIN(rw, testChannel, ctaptypes.PinUvAuthProtocolOne, nil, "oldpin", "abc")
	assert.ErrorIs(t, err, ErrPinPolicyViolation)
	assert.Zero(t, rw.writes)
}

func TestPadPin(t *testing.T) {
	padded := padPin("1234")
	assert.Len(t, padded, 64)
	assert.Equal(t, []byte("1234"), padded[:4])
	for _, b := range padded[4:] {
		assert.Zero(t, b)
	}
}

func TestHashPin(t *testing.T) {
	// Left half of SHA-256("1234").
	assert.Equal(t,
		[]byte{0x03, 0xac, 0x67, 0x42, 0x16, 0xf3, 0xe1, 0x5c, 0x76, 0x1e, 0xe1, 0xa5, 0xe2, 0x55, 0xf0, 0x67},
		hashPin("1234"),
	)
}

// Devices speak canonical CTAP2 CBOR only; anything indefinite-length
// or with repeated map keys is malformed and must not decode.
func TestGetInfoRejectsNonCanonicalCBOR(t *testing.T) {
	cl := NewClient()

	for name, body := range map[string]string{
		"indefinite length": "bf019f684649444f5f325f30ffff", // {_ 1: [_ "FIDO_2_0"]}
		"duplicate map key": "a201800180",                   // {1: [], 1: []}
	} {
		raw, err := hex.DecodeString(body)
		require.NoError(t, err)

		rw := &okRW{
			cid:      testChannel,
			response: append([]byte{byte(ctaphid.CTAP2_OK)}, raw...),
		}

		info, err := cl.GetInfo(rw, testChannel)
		assert.Error(t, err, name)
		assert.Nil(t, info, name)
	}
}

func TestGetPINRetriesRejectsDuplicateMapKeys(t *testing.T) {
	cl := NewClient()
	rw := &okRW{
		cid:      testChannel,
		response: []byte{byte(ctaphid.CTAP2_OK), 0xa2, 0x03, 0x04, 0x03, 0x04}, // {3: 4, 3: 4}
	}

	_, _, err := cl.GetPINRetries(rw, testChannel, ctaptypes.PinUvAuthProtocolTwo)
	assert.Error(t, err)
}

// A CTAP2_OK frame with a null body must come back as an error, not a
// nil dereference.
func TestNullResponseBody(t *testing.T) {
	cl := NewClient()
	null := []byte{byte(ctaphid.CTAP2_OK), 0xf6}

	info, err := cl.GetInfo(&okRW{cid: testChannel, response: null}, testChannel)
	assert.ErrorIs(t, err, errNullResponse)
	assert.Nil(t, info)

	_, _, err = cl.GetPINRetries(&okRW{cid: testChannel, response: null}, testChannel, ctaptypes.PinUvAuthProtocolTwo)
	assert.ErrorIs(t, err, errNullResponse)

	_, err = cl.GetKeyAgreement(&okRW{cid: testChannel, response: null}, testChannel, ctaptypes.PinUvAuthProtocolTwo)
	assert.ErrorIs(t, err, errNullResponse)
}
