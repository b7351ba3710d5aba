package ctaphid

// Message is a sequence of packets carrying one logical CTAPHID frame.
type Message []*packet

// packet represents a single 64-byte CTAPHID report.
type packet struct {
	cid          ChannelID
	command      Command
	sequence     byte
	length       uint16
	data         []byte
	continuation bool
}

// ChannelID represents a CTAPHID channel ID.
type ChannelID [4]byte

// BROADCAST_CID is the channel used for CTAPHID_INIT before a channel
// has been allocated.
var BROADCAST_CID = ChannelID{0xff, 0xff, 0xff, 0xff}

// CBORResponse represents a CTAPHID_CBOR (0x10) command response.
type CBORResponse struct {
	StatusCode StatusCode
	Data       []byte
}

// InitResponse represents a CTAPHID_INIT (0x06) command response.
type InitResponse struct {
	Nonce                            []byte
	CID                              ChannelID
	CTAPHIDProtocolVersionIdentifier byte
	MajorDeviceVersion               byte
	MinorDeviceVersion               byte
	BuildDeviceVersion               byte
	CapabilityFlags                  byte
}

func (r *InitResponse) ImplementsWink() bool {
	return r.CapabilityFlags&byte(CAPABILITY_WINK) != 0
}

func (r *InitResponse) ImplementsCBOR() bool {
	return r.CapabilityFlags&byte(CAPABILITY_CBOR) != 0
}

func (r *InitResponse) NotImplementsMSG() bool {
	return r.CapabilityFlags&byte(CAPABILITY_NMSG) != 0
}

// PingResponse represents a CTAPHID_PING command response.
type PingResponse struct {
	Bytes []byte
}
