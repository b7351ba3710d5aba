package ctaphid

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/samber/lo"
)

const (
	reportSize     = 64
	initDataSize   = reportSize - 7
	contDataSize   = reportSize - 5
	maxPayloadSize = initDataSize + 128*contDataSize // 7609 bytes per the CTAPHID spec
)

// NewMessage fragments data into an init packet plus continuation
// packets with increasing sequence numbers.
func NewMessage(cid ChannelID, cmd Command, data []byte) (Message, error) {
	if len(data) > maxPayloadSize {
		return nil, ErrMessageTooLarge
	}

	msg := make(Message, 0)
	msg = append(msg, &packet{
		cid:     cid,
		command: cmd,
		length:  uint16(len(data)),
		// DATA starts from offset 7
		data: lo.Slice(data, 0, initDataSize),
	})

	if len(data) > initDataSize {
		chunks := lo.Chunk(data[initDataSize:], contDataSize)
		for i, chunk := range chunks {
			msg = append(msg, &packet{
				cid:          cid,
				sequence:     byte(i),
				data:         chunk,
				continuation: true,
			})
		}
	}

	return msg, nil
}

// WriteTo writes the message to the device, one report per packet.
func (m Message) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, p := range m {
		// Every write must be a single HID report, so stage each packet
		// in its own buffer.
		buf := bufio.NewWriterSize(w, reportSize+1)

		// Report ID in our case is always 0.
		if err := buf.WriteByte(0x00); err != nil {
			return 0, err
		}
		total += 1

		n, err := p.WriteTo(buf)
		if err != nil {
			return 0, err
		}
		total += n

		if err := buf.Flush(); err != nil {
			return 0, err
		}
	}

	return total, nil
}

// WriteTo writes the packet to the writer e.g., a buffer.
func (p *packet) WriteTo(w io.Writer) (int64, error) {
	// CID: offset 0; length 4
	cidCnt, err := w.Write(p.cid[:])
	if err != nil {
		return 0, err
	}

	// CMD or SEQ: offset 4; length 1
	cmdOrSeqCnt := 0
	if !p.continuation {
		cmdCnt, err := w.Write([]byte{byte(p.command) | INIT_PACKET_BIT})
		if err != nil {
			return 0, err
		}
		cmdOrSeqCnt = cmdCnt
	} else {
		seqCnt, err := w.Write([]byte{p.sequence})
		if err != nil {
			return 0, err
		}
		cmdOrSeqCnt = seqCnt
	}

	// BCNTH and BCNTL: offset 5; length 2
	// Only present in an init packet.
	dataLenCnt := 0
	if !p.continuation {
		dataLen := make([]byte, 2)
		binary.BigEndian.PutUint16(dataLen, p.length)
		cnt, err := w.Write(dataLen)
		if err != nil {
			return 0, err
		}
		dataLenCnt = cnt
	}

	// DATA:
	//   Init packet offset 7; length 57
	//   Continuation packet offset 5; length 59
	dataCnt, err := w.Write(p.data)
	if err != nil {
		return 0, err
	}

	return int64(cidCnt + cmdOrSeqCnt + dataLenCnt + dataCnt), nil
}
