package device

type ctxKey int

const (
	// CtxKeyUseNamedPipe routes HID access through the local elevated
	// proxy pipe instead of opening the device directly (Windows only).
	CtxKeyUseNamedPipe ctxKey = iota
	// CtxKeyUseCgoFreeHID selects the pure-Go HID backend (Windows
	// only).
	CtxKeyUseCgoFreeHID
)

// FIDO authenticators expose the FIDO alliance usage page.
const (
	FIDOUsagePage = 0xf1d0
	FIDOUsage     = 0x01
)
