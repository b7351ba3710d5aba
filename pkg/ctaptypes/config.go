package ctaptypes

type AuthenticatorConfigRequest struct {
	SubCommand        ConfigSubCommand  `cbor:"1,keyasint"`
	SubCommandParams  any               `cbor:"2,keyasint,omitzero"`
	PinUvAuthProtocol PinUvAuthProtocol `cbor:"3,keyasint,omitempty"`
	PinUvAuthParam    []byte            `cbor:"4,keyasint,omitempty"`
}

type SetMinPINLengthConfigSubCommandParams struct {
	NewMinPINLength   uint     `cbor:"1,keyasint,omitempty"`
	MinPinLengthRPIDs []string `cbor:"2,keyasint,omitempty"`
	ForceChangePin    bool     `cbor:"3,keyasint,omitempty"`
}

// VendorConfigSubCommandParams is the parameter map of a Pico FIDO
// vendorPrototype config command: key 1 carries the 64-bit command
// identifier, key 3 the single integer value.
type VendorConfigSubCommandParams struct {
	CommandID VendorCommandID `cbor:"1,keyasint"`
	Value     uint64          `cbor:"3,keyasint"`
}
