package ctap

import (
	"encoding/hex"
	"io"
	"slices"

	"github.com/pico-keys/commissioner/pkg/crypto"
	"github.com/pico-keys/commissioner/pkg/ctaphid"
	"github.com/pico-keys/commissioner/pkg/ctaptypes"

	"github.com/fxamacker/cbor/v2"
)

// configAuthPrefix is the fixed preamble of every authenticatorConfig
// pinUvAuthParam: 32 bytes of 0xff followed by the command byte 0x0d.
var configAuthPrefix = slices.Concat(
	slices.Repeat([]byte{0xff}, 32),
	[]byte{byte(ctaptypes.AuthenticatorConfig)},
)

// config authenticates and sends one authenticatorConfig request. The
// MAC covers the fixed preamble, the subcommand byte and the canonical
// encoding of the subcommand parameters, so params must be marshaled
// exactly once and the same bytes placed into the request.
func (cl *Client) config(
	device io.ReadWriter,
	cid ctaphid.ChannelID,
	pinUvAuthProtocol ctaptypes.PinUvAuthProtocol,
	pinUvAuthToken []byte,
	subCommand ctaptypes.ConfigSubCommand,
	params any,
) error {
	message := slices.Concat(configAuthPrefix, []byte{byte(subCommand)})

	var rawParams []byte
	if params != nil {
		b, err := cl.encMode.Marshal(params)
		if err != nil {
			return err
		}

		rawParams = b
		message = slices.Concat(message, rawParams)
	}

	req := &ctaptypes.AuthenticatorConfigRequest{
		SubCommand:        subCommand,
		PinUvAuthProtocol: pinUvAuthProtocol,
		PinUvAuthParam:    crypto.Authenticate(pinUvAuthProtocol, pinUvAuthToken, message),
	}
	if rawParams != nil {
		req.SubCommandParams = cbor.RawMessage(rawParams)
	}

	b, err := cl.encMode.Marshal(req)
	if err != nil {
		return err
	}
	cl.logger.Debug("authenticatorConfig CBOR request", "hex", hex.EncodeToString(b))

	if _, err := ctaphid.CBOR(device, cid, slices.Concat([]byte{byte(ctaptypes.AuthenticatorConfig)}, b)); err != nil {
		return err
	}

	return nil
}

// EnableEnterpriseAttestation turns the ep option on. There is no
// subcommand to turn it off again short of a reset.
func (cl *Client) EnableEnterpriseAttestation(
	device io.ReadWriter,
	cid ctaphid.ChannelID,
	pinUvAuthProtocol ctaptypes.PinUvAuthProtocol,
	pinUvAuthToken []byte,
) error {
	return cl.config(
		device, cid, pinUvAuthProtocol, pinUvAuthToken,
		ctaptypes.ConfigSubCommandEnableEnterpriseAttestation, nil,
	)
}

func (cl *Client) ToggleAlwaysUV(
	device io.ReadWriter,
	cid ctaphid.ChannelID,
	pinUvAuthProtocol ctaptypes.PinUvAuthProtocol,
	pinUvAuthToken []byte,
) error {
	return cl.config(
		device, cid, pinUvAuthProtocol, pinUvAuthToken,
		ctaptypes.ConfigSubCommandToggleAlwaysUv, nil,
	)
}

func (cl *Client) SetMinPINLength(
	device io.ReadWriter,
	cid ctaphid.ChannelID,
	pinUvAuthProtocol ctaptypes.PinUvAuthProtocol,
	pinUvAuthToken []byte,
	params *ctaptypes.SetMinPINLengthConfigSubCommandParams,
) error {
	return cl.config(
		device, cid, pinUvAuthProtocol, pinUvAuthToken,
		ctaptypes.ConfigSubCommandSetMinPINLength, params,
	)
}

// VendorConfig sends one Pico FIDO vendorPrototype subcommand. The
// firmware expects the parameter map {1: commandID, 3: value} and
// verifies the same MAC construction as the standard subcommands.
func (cl *Client) VendorConfig(
	device io.ReadWriter,
	cid ctaphid.ChannelID,
	pinUvAuthProtocol ctaptypes.PinUvAuthProtocol,
	pinUvAuthToken []byte,
	commandID ctaptypes.VendorCommandID,
	value uint64,
) error {
	return cl.config(
		device, cid, pinUvAuthProtocol, pinUvAuthToken,
		ctaptypes.ConfigSubCommandVendorPrototype,
		&ctaptypes.VendorConfigSubCommandParams{
			CommandID: commandID,
			Value:     value,
		},
	)
}
