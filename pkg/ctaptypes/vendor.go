package ctaptypes

// VendorCommandID identifies one Pico FIDO vendor configuration knob.
// The identifiers are 64-bit constants baked into the firmware; they are
// a locally-defined schema, not portable to other vendors' CTAP2
// extensions.
type VendorCommandID uint64

const (
	VendorCommandVidPid        VendorCommandID = 0x6fcb19b0cbe3acfa
	VendorCommandLedBrightness VendorCommandID = 0x76a85945985d02fd
	VendorCommandLedGpio       VendorCommandID = 0x7b392a394de9f948
	VendorCommandPhyOptions    VendorCommandID = 0x269f3b09eceb805f
	VendorCommandButtonTimeout VendorCommandID = 0x1a2b3c4d5e6f7890
)

// PhyOption is a bit in the PHY options set.
type PhyOption byte

const (
	// PhyOptionWCID enables the WebCCID interface.
	PhyOptionWCID PhyOption = 0x1
	// PhyOptionDimLed dims the status LED.
	PhyOptionDimLed PhyOption = 0x2
	// PhyOptionDisablePowerReset closes the 10-second power-on window
	// during which authenticatorReset is accepted.
	PhyOptionDisablePowerReset PhyOption = 0x4
	// PhyOptionLedSteady keeps the LED lit instead of blinking.
	PhyOptionLedSteady PhyOption = 0x8

	phyOptionsKnown = PhyOptionWCID | PhyOptionDimLed | PhyOptionDisablePowerReset | PhyOptionLedSteady
)

// PhyOptions is the full PHY flag set.
type PhyOptions byte

// Valid reports whether only known bits are set. Unknown bits are
// rejected client-side so a typo cannot flip firmware behavior we
// cannot name.
func (o PhyOptions) Valid() bool {
	return o&^PhyOptions(phyOptionsKnown) == 0
}

func (o PhyOptions) Has(opt PhyOption) bool {
	return byte(o)&byte(opt) != 0
}

// GPIO pins on the RP2040/RP2350 run 0 through 29.
const MaxLedGpio = 29
