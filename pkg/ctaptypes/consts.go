//go:generate stringer -type=Command,ClientPINSubCommand,ConfigSubCommand,Permission -output=consts_string.go
package ctaptypes

// Command is a CTAP2 command code, sent as the first byte of a
// CTAPHID_CBOR payload.
type Command byte

const (
	AuthenticatorGetInfo   Command = 0x04
	AuthenticatorClientPIN Command = 0x06
	AuthenticatorReset     Command = 0x07
	AuthenticatorSelection Command = 0x0b
	AuthenticatorConfig    Command = 0x0d
)

type ClientPINSubCommand byte

const (
	ClientPINSubCommandGetPINRetries ClientPINSubCommand = iota + 1
	ClientPINSubCommandGetKeyAgreement
	ClientPINSubCommandSetPIN
	ClientPINSubCommandChangePIN
	ClientPINSubCommandGetPinToken
	ClientPINSubCommandGetPinUvAuthTokenUsingUvWithPermissions
	ClientPINSubCommandGetUVRetries
	_
	ClientPINSubCommandGetPinUvAuthTokenUsingPinWithPermissions
)

type ConfigSubCommand byte

const (
	ConfigSubCommandEnableEnterpriseAttestation ConfigSubCommand = iota + 1
	ConfigSubCommandToggleAlwaysUv
	ConfigSubCommandSetMinPINLength
	ConfigSubCommandVendorPrototype ConfigSubCommand = 0xff
)

type Option string

const (
	OptionPlatformDevice                 Option = "plat"
	OptionResidentKeys                   Option = "rk"
	OptionClientPIN                      Option = "clientPin"
	OptionUserPresence                   Option = "up"
	OptionUserVerification               Option = "uv"
	OptionPinUvAuthToken                 Option = "pinUvAuthToken"
	OptionNoMcGaPermissionsWithClientPin Option = "noMcGaPermissionsWithClientPin"
	OptionAuthenticatorConfig            Option = "authnrCfg"
	OptionUvAcfg                         Option = "uvAcfg"
	OptionSetMinPINLength                Option = "setMinPINLength"
	OptionAlwaysUv                       Option = "alwaysUv"
	OptionEnterpriseAttestation          Option = "ep"
)

// Permission bits scope a pinUvAuthToken to specific command groups.
type Permission byte

const (
	PermissionNone                       Permission = 0x00
	PermissionMakeCredential             Permission = 0x01
	PermissionGetAssertion               Permission = 0x02
	PermissionCredentialManagement       Permission = 0x04
	PermissionBioEnrollment              Permission = 0x08
	PermissionLargeBlobWrite             Permission = 0x10
	PermissionAuthenticatorConfiguration Permission = 0x20
)
