package ctap

import (
	"crypto/hmac"
	"encoding/binary"
	"testing"

	"github.com/pico-keys/commissioner/pkg/crypto"
	"github.com/pico-keys/commissioner/pkg/ctaphid"
	"github.com/pico-keys/commissioner/pkg/ctaptypes"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// okRW records the request payload and answers every round trip with a
// canned response (a bare CTAP2_OK unless one is set).
type okRW struct {
	cid      ctaphid.ChannelID
	response []byte
	payload  []byte
	total    int
	pending  bool
}

func (rw *okRW) Write(p []byte) (int, error) {
	report := p[1:] // report ID

	cmdOrSeq := report[4]
	if cmdOrSeq&0x80 != 0 {
		rw.payload = nil
		rw.total = int(binary.BigEndian.Uint16(report[5:7]))
		rw.payload = append(rw.payload, report[7:]...)
	} else {
		rw.payload = append(rw.payload, report[5:]...)
	}

	if len(rw.payload) >= rw.total {
		rw.payload = rw.payload[:rw.total]
		rw.pending = true
	}

	return len(p), nil
}

func (rw *okRW) Read(p []byte) (int, error) {
	if !rw.pending {
		return 0, ctaphid.ErrReadTimeout
	}
	rw.pending = false

	response := rw.response
	if response == nil {
		response = []byte{byte(ctaphid.CTAP2_OK)}
	}

	report := make([]byte, 64)
	copy(report, rw.cid[:])
	report[4] = byte(ctaphid.CTAPHID_CBOR) | 0x80
	binary.BigEndian.PutUint16(report[5:7], uint16(len(response)))
	copy(report[7:], response)

	return copy(p, report), nil
}

type rawConfigRequest struct {
	SubCommand        ctaptypes.ConfigSubCommand  `cbor:"1,keyasint"`
	SubCommandParams  cbor.RawMessage             `cbor:"2,keyasint,omitempty"`
	PinUvAuthProtocol ctaptypes.PinUvAuthProtocol `cbor:"3,keyasint,omitempty"`
	PinUvAuthParam    []byte                      `cbor:"4,keyasint,omitempty"`
}

func TestVendorConfigEnvelope(t *testing.T) {
	cl := NewClient()
	rw := &okRW{cid: testChannel}

	token := make([]byte, 32)
	for i := range token {
		token[i] = byte(i)
	}

	err := cl.VendorConfig(
		rw, testChannel,
		ctaptypes.PinUvAuthProtocolTwo, token,
		ctaptypes.VendorCommandButtonTimeout, 30,
	)
	require.NoError(t, err)

	require.NotEmpty(t, rw.payload)
	assert.Equal(t, byte(ctaptypes.AuthenticatorConfig), rw.payload[0])

	var req rawConfigRequest
	require.NoError(t, cbor.Unmarshal(rw.payload[1:], &req))

	assert.Equal(t, ctaptypes.ConfigSubCommandVendorPrototype, req.SubCommand)
	assert.Equal(t, ctaptypes.PinUvAuthProtocolTwo, req.PinUvAuthProtocol)

	var params ctaptypes.VendorConfigSubCommandParams
	require.NoError(t, cbor.Unmarshal(req.SubCommandParams, &params))
	assert.Equal(t, ctaptypes.VendorCommandButtonTimeout, params.CommandID)
	assert.Equal(t, uint64(30), params.Value)

	// The MAC covers 32 bytes of 0xff, the command byte, the subcommand
	// byte and the raw parameter bytes.
	message := make([]byte, 0, 34+len(req.SubCommandParams))
	for range 32 {
		message = append(message, 0xff)
	}
	message = append(message, byte(ctaptypes.AuthenticatorConfig), byte(ctaptypes.ConfigSubCommandVendorPrototype))
	message = append(message, req.SubCommandParams...)

	expected := crypto.Authenticate(ctaptypes.PinUvAuthProtocolTwo, token, message)
	assert.True(t, hmac.Equal(expected, req.PinUvAuthParam))
}

func TestToggleAlwaysUVEnvelopeWithoutParams(t *testing.T) {
	cl := NewClient()
	rw := &okRW{cid: testChannel}

	token := make([]byte, 32)

	require.NoError(t, cl.ToggleAlwaysUV(rw, testChannel, ctaptypes.PinUvAuthProtocolOne, token))

	var req rawConfigRequest
	require.NoError(t, cbor.Unmarshal(rw.payload[1:], &req))

	assert.Equal(t, ctaptypes.ConfigSubCommandToggleAlwaysUv, req.SubCommand)
	assert.Empty(t, req.SubCommandParams)

	message := make([]byte, 0, 34)
	for range 32 {
		message = append(message, 0xff)
	}
	message = append(message, byte(ctaptypes.AuthenticatorConfig), byte(ctaptypes.ConfigSubCommandToggleAlwaysUv))

	expected := crypto.Authenticate(ctaptypes.PinUvAuthProtocolOne, token, message)
	assert.True(t, hmac.Equal(expected, req.PinUvAuthParam))
}
