package ctaphid

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reportQueue feeds canned 64-byte reports to readMessage and times out
// once drained, like a bounded HID read on a silent device.
type reportQueue struct {
	reports [][]byte
}

func (q *reportQueue) Read(p []byte) (int, error) {
	if len(q.reports) == 0 {
		return 0, ErrReadTimeout
	}

	report := q.reports[0]
	q.reports = q.reports[1:]

	return copy(p, report), nil
}

func deviceReports(cid ChannelID, cmd Command, data []byte) [][]byte {
	reports := make([][]byte, 0)

	first := make([]byte, reportSize)
	copy(first, cid[:])
	first[4] = byte(cmd) | INIT_PACKET_BIT
	binary.BigEndian.PutUint16(first[5:7], uint16(len(data)))
	n := copy(first[7:], data)
	reports = append(reports, first)

	var seq byte
	for n < len(data) {
		cont := make([]byte, reportSize)
		copy(cont, cid[:])
		cont[4] = seq
		n += copy(cont[5:], data[n:])
		reports = append(reports, cont)
		seq++
	}

	return reports
}

func TestReadMessageRoundTrip(t *testing.T) {
	data := make([]byte, 150)
	for i := range data {
		data[i] = byte(i * 3)
	}

	q := &reportQueue{reports: deviceReports(testCID, CTAPHID_CBOR, data)}

	msg, err := readMessage(q, testCID)
	require.NoError(t, err)
	assert.Equal(t, CTAPHID_CBOR, msg[0].command)
	assert.Equal(t, data, msg.payload())
}

func TestReadMessageSkipsForeignChannel(t *testing.T) {
	foreign := ChannelID{0xde, 0xad, 0xbe, 0xef}

	reports := deviceReports(foreign, CTAPHID_KEEPALIVE, []byte{byte(STATUS_PROCESSING)})
	reports = append(reports, deviceReports(testCID, CTAPHID_CBOR, []byte{byte(CTAP2_OK)})...)

	q := &reportQueue{reports: reports}

	msg, err := readMessage(q, testCID)
	require.NoError(t, err)
	assert.Equal(t, []byte{byte(CTAP2_OK)}, msg.payload())
}

func TestReadMessageForeignOnlyTimesOut(t *testing.T) {
	foreign := ChannelID{0xde, 0xad, 0xbe, 0xef}

	q := &reportQueue{reports: deviceReports(foreign, CTAPHID_CBOR, []byte{byte(CTAP2_OK)})}

	_, err := readMessage(q, testCID)
	assert.ErrorIs(t, err, ErrReadTimeout)
}

func TestReadMessageOutOfOrderSequence(t *testing.T) {
	data := make([]byte, 57+59+59)
	reports := deviceReports(testCID, CTAPHID_CBOR, data)
	// Swap the two continuation packets.
	reports[1], reports[2] = reports[2], reports[1]

	q := &reportQueue{reports: reports}

	_, err := readMessage(q, testCID)
	assert.ErrorIs(t, err, ErrUnexpectedSequence)
}

func TestReadMessageInitDuringReassembly(t *testing.T) {
	data := make([]byte, 57+59)
	reports := deviceReports(testCID, CTAPHID_CBOR, data)
	// Replace the continuation with a fresh init packet.
	reports[1] = deviceReports(testCID, CTAPHID_CBOR, []byte{0x00})[0]

	q := &reportQueue{reports: reports}

	_, err := readMessage(q, testCID)
	assert.ErrorIs(t, err, ErrInvalidResponseMessage)
}

func TestReadMessageContinuationWithoutInit(t *testing.T) {
	cont := make([]byte, reportSize)
	copy(cont, testCID[:])
	cont[4] = 0 // sequence number, no init bit

	q := &reportQueue{reports: [][]byte{cont}}

	_, err := readMessage(q, testCID)
	assert.ErrorIs(t, err, ErrInvalidResponseMessage)
}
