package ctaphid

import (
	"crypto/subtle"
	"errors"
	"io"

	"github.com/pico-keys/commissioner/pkg/ctaptypes"
)

// CBOR performs one CTAPHID_CBOR request/response round trip. The first
// byte of data is the CTAP command code, the rest is the canonical CBOR
// parameter map. Keepalive messages are skipped; any non-OK CTAP status
// is returned as a *CTAPError carrying the device's code verbatim.
func CBOR(dev io.ReadWriter, cid ChannelID, data []byte) (*CBORResponse, error) {
	msg, err := NewMessage(cid, CTAPHID_CBOR, data)
	if err != nil {
		return nil, err
	}

	if _, err := msg.WriteTo(dev); err != nil {
		return nil, err
	}

	for {
		respMsg, err := readMessage(dev, cid)
		if err != nil {
			return nil, err
		}

		respData := respMsg.payload()
		if len(respData) < 1 {
			return nil, ErrInvalidResponseMessage
		}

		switch respMsg[0].command {
		case CTAPHID_CBOR:
			command := ctaptypes.Command(data[0])
			code := StatusCode(respData[0])
			if code != CTAP2_OK {
				return nil, newCTAPError(command, code)
			}

			return &CBORResponse{
				StatusCode: code,
				Data:       respData[1:],
			}, nil
		case CTAPHID_ERROR:
			return nil, &HidError{Code: Error(respData[0])}
		case CTAPHID_KEEPALIVE:
			continue
		default:
			return nil, ErrUnexpectedCommand
		}
	}
}

// Init allocates a channel. It is sent on BROADCAST_CID with a fresh
// 8-byte nonce; the device echoes the nonce and assigns the channel ID
// used for the rest of the session.
func Init(dev io.ReadWriter, cid ChannelID, nonce []byte) (*InitResponse, error) {
	msg, err := NewMessage(cid, CTAPHID_INIT, nonce)
	if err != nil {
		return nil, err
	}

	if _, err := msg.WriteTo(dev); err != nil {
		return nil, err
	}

	for {
		respMsg, err := readMessage(dev, cid)
		if err != nil {
			return nil, err
		}

		p := respMsg[0]

		switch p.command {
		case CTAPHID_INIT:
			if len(p.data) < 17 {
				return nil, ErrInvalidResponseMessage
			}
			if subtle.ConstantTimeCompare(p.data[:8], nonce) != 1 {
				return nil, errors.New("ctaphid: init nonce mismatch")
			}

			return &InitResponse{
				Nonce:                            p.data[:8],
				CID:                              ChannelID(p.data[8 : 8+4]),
				CTAPHIDProtocolVersionIdentifier: p.data[12],
				MajorDeviceVersion:               p.data[13],
				MinorDeviceVersion:               p.data[14],
				BuildDeviceVersion:               p.data[15],
				CapabilityFlags:                  p.data[16],
			}, nil
		case CTAPHID_ERROR:
			return nil, &HidError{Code: Error(p.data[0])}
		case CTAPHID_KEEPALIVE:
			continue
		default:
			return nil, ErrUnexpectedCommand
		}
	}
}

// Ping echoes arbitrary bytes off the device.
func Ping(dev io.ReadWriter, cid ChannelID, ping []byte) (*PingResponse, error) {
	msg, err := NewMessage(cid, CTAPHID_PING, ping)
	if err != nil {
		return nil, err
	}

	if _, err := msg.WriteTo(dev); err != nil {
		return nil, err
	}

	for {
		respMsg, err := readMessage(dev, cid)
		if err != nil {
			return nil, err
		}

		switch respMsg[0].command {
		case CTAPHID_PING:
			return &PingResponse{Bytes: respMsg.payload()}, nil
		case CTAPHID_ERROR:
			return nil, &HidError{Code: Error(respMsg[0].data[0])}
		case CTAPHID_KEEPALIVE:
			continue
		default:
			return nil, ErrUnexpectedCommand
		}
	}
}

// Cancel aborts an outstanding request on the channel. No response is
// expected; the canceled request fails with CTAP2_ERR_KEEPALIVE_CANCEL.
func Cancel(dev io.ReadWriter, cid ChannelID) error {
	msg, err := NewMessage(cid, CTAPHID_CANCEL, nil)
	if err != nil {
		return err
	}

	if _, err := msg.WriteTo(dev); err != nil {
		return err
	}

	return nil
}

// Wink asks the device to blink, signaling its physical location.
func Wink(dev io.ReadWriter, cid ChannelID) error {
	msg, err := NewMessage(cid, CTAPHID_WINK, nil)
	if err != nil {
		return err
	}

	if _, err := msg.WriteTo(dev); err != nil {
		return err
	}

	for {
		respMsg, err := readMessage(dev, cid)
		if err != nil {
			return err
		}

		switch respMsg[0].command {
		case CTAPHID_WINK:
			return nil
		case CTAPHID_ERROR:
			return &HidError{Code: Error(respMsg[0].data[0])}
		case CTAPHID_KEEPALIVE:
			continue
		default:
			return ErrUnexpectedCommand
		}
	}
}

// Lock places an exclusive lock on the channel for up to 10 seconds.
// Send 0 seconds to release it.
func Lock(dev io.ReadWriter, cid ChannelID, seconds uint8) error {
	msg, err := NewMessage(cid, CTAPHID_LOCK, []byte{seconds})
	if err != nil {
		return err
	}

	if _, err := msg.WriteTo(dev); err != nil {
		return err
	}

	for {
		respMsg, err := readMessage(dev, cid)
		if err != nil {
			return err
		}

		switch respMsg[0].command {
		case CTAPHID_LOCK:
			return nil
		case CTAPHID_ERROR:
			return &HidError{Code: Error(respMsg[0].data[0])}
		case CTAPHID_KEEPALIVE:
			continue
		default:
			return ErrUnexpectedCommand
		}
	}
}
