package ctaphid

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCID = ChannelID{0x01, 0x02, 0x03, 0x04}

func TestNewMessageSinglePacket(t *testing.T) {
	data := []byte{0xde, 0xad, 0xbe, 0xef}

	msg, err := NewMessage(testCID, CTAPHID_CBOR, data)
	require.NoError(t, err)
	require.Len(t, msg, 1)

	p := msg[0]
	assert.Equal(t, testCID, p.cid)
	assert.Equal(t, CTAPHID_CBOR, p.command)
	assert.Equal(t, uint16(4), p.length)
	assert.False(t, p.continuation)
	assert.Equal(t, data, p.data)
}

func TestNewMessageFragmentation(t *testing.T) {
	// 57 bytes fit the init packet; the rest spills into continuations
	// of 59 bytes each.
	data := make([]byte, 57+59+10)
	for i := range data {
		data[i] = byte(i)
	}

	msg, err := NewMessage(testCID, CTAPHID_CBOR, data)
	require.NoError(t, err)
	require.Len(t, msg, 3)

	assert.False(t, msg[0].continuation)
	assert.Equal(t, uint16(len(data)), msg[0].length)
	assert.Equal(t, data[:57], msg[0].data)

	assert.True(t, msg[1].continuation)
	assert.Equal(t, byte(0), msg[1].sequence)
	assert.Equal(t, data[57:57+59], msg[1].data)

	assert.True(t, msg[2].continuation)
	assert.Equal(t, byte(1), msg[2].sequence)
	assert.Equal(t, data[57+59:], msg[2].data)
}

func TestNewMessageTooLarge(t *testing.T) {
	_, err := NewMessage(testCID, CTAPHID_CBOR, make([]byte, maxPayloadSize+1))
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestMessageWriteTo(t *testing.T) {
	data := []byte{0xaa, 0xbb}

	msg, err := NewMessage(testCID, CTAPHID_PING, data)
	require.NoError(t, err)

	buf := bytes.NewBuffer(nil)
	_, err = msg.WriteTo(buf)
	require.NoError(t, err)

	report := buf.Bytes()
	// report ID, CID, CMD with the init bit, BCNT, DATA
	assert.Equal(t, byte(0x00), report[0])
	assert.Equal(t, testCID[:], report[1:5])
	assert.Equal(t, byte(CTAPHID_PING)|INIT_PACKET_BIT, report[5])
	assert.Equal(t, uint16(2), binary.BigEndian.Uint16(report[6:8]))
	assert.Equal(t, data, report[8:10])
}
