package ctaphid

import (
	"encoding/binary"
	"io"
)

// readMessage reassembles one logical message addressed to cid.
// Reports carrying a foreign channel ID are discarded without
// disturbing reassembly; if the device never answers on our channel,
// the read deadline of the underlying transport surfaces instead.
func readMessage(dev io.Reader, cid ChannelID) (Message, error) {
	msg := make(Message, 0)

	total := -1
	var seq byte
	for total != 0 {
		report := make([]byte, reportSize)
		n, err := dev.Read(report)
		if err != nil {
			return nil, err
		}
		if n < 5 {
			return nil, ErrInvalidResponseMessage
		}

		var p packet
		p.cid = ChannelID(report[0:4])
		if p.cid != cid {
			// Foreign channel, not ours to interpret.
			continue
		}

		cmdOrSeq := report[4]
		if (cmdOrSeq & INIT_PACKET_BIT) != 0 {
			if total != -1 {
				// A fresh init packet in the middle of reassembly means
				// the device abandoned the previous frame.
				return nil, ErrInvalidResponseMessage
			}

			p.command = Command(cmdOrSeq &^ INIT_PACKET_BIT)
			p.length = binary.BigEndian.Uint16(report[5:7])
			total = int(p.length)

			take := min(total, initDataSize)
			p.data = report[7 : 7+take]
			total -= take
			seq = 0
		} else {
			if total == -1 {
				return nil, ErrInvalidResponseMessage
			}
			if cmdOrSeq != seq {
				return nil, ErrUnexpectedSequence
			}
			seq++
			p.continuation = true
			p.sequence = cmdOrSeq

			take := min(total, contDataSize)
			p.data = report[5 : 5+take]
			total -= take
		}

		msg = append(msg, &p)
	}

	if len(msg) == 0 {
		return nil, ErrInvalidResponseMessage
	}

	return msg, nil
}

// payload concatenates the data of all packets of a message.
func (m Message) payload() []byte {
	var data []byte
	for _, p := range m {
		data = append(data, p.data...)
	}
	return data
}
