package protocol

import "errors"

// Bridge link framing, host <-> USB-I2C bridge adapter:
//
//	[length][op][payload...][crc hi][crc lo][sync]
//
// length counts the whole frame including header and trailer. The sync
// byte terminates every frame and is what a desynchronized receiver scans
// for.
const (
	LinkHeaderSize  = 2
	LinkTrailerSize = 3
	LinkLengthMin   = LinkHeaderSize + LinkTrailerSize
	LinkLengthMax   = 64
	LinkSync        = 0x7E
)

// Link operations.
const (
	// OpWrite requests a master-write session. Payload: target address
	// followed by the bytes to send before STOP.
	OpWrite byte = 0x01
	// OpRead requests a master-read session. Payload: target address, read
	// length.
	OpRead byte = 0x02
	// OpData is the bridge's success reply. Payload: bytes read from the
	// target (empty for a write).
	OpData byte = 0x03
	// OpNak is the bridge's failure reply; the target did not acknowledge.
	OpNak byte = 0x04
)

var (
	ErrFrameTooLarge = errors.New("link frame too large")
	ErrShortFrame    = errors.New("incomplete link frame")
	ErrBadFrame      = errors.New("malformed link frame")
	ErrBadCRC        = errors.New("link frame CRC mismatch")
)

// EncodeFrame builds one framed message.
func EncodeFrame(op byte, payload []byte) ([]byte, error) {
	total := LinkLengthMin + len(payload)
	if total > LinkLengthMax {
		return nil, ErrFrameTooLarge
	}
	msg := make([]byte, 0, total)
	msg = append(msg, byte(total), op)
	msg = append(msg, payload...)
	crc := CRC16(msg)
	msg = append(msg, byte(crc>>8), byte(crc), LinkSync)
	return msg, nil
}

// DecodeFrame extracts the next frame from *data, advancing past consumed
// bytes. ErrShortFrame means more bytes are needed and nothing was
// consumed beyond leading sync bytes. On framing damage the input is
// discarded up to the next sync byte so the caller can retry. The payload
// aliases *data's backing array; copy it before the bytes are reused.
func DecodeFrame(data *[]byte) (op byte, payload []byte, err error) {
	d := *data
	for len(d) > 0 && d[0] == LinkSync {
		d = d[1:]
	}
	if len(d) < LinkLengthMin {
		*data = d
		return 0, nil, ErrShortFrame
	}
	msgLen := int(d[0])
	if msgLen < LinkLengthMin || msgLen > LinkLengthMax {
		*data = discardToSync(d[1:])
		return 0, nil, ErrBadFrame
	}
	if len(d) < msgLen {
		*data = d
		return 0, nil, ErrShortFrame
	}
	if d[msgLen-1] != LinkSync {
		*data = discardToSync(d[1:])
		return 0, nil, ErrBadFrame
	}
	frameCRC := uint16(d[msgLen-LinkTrailerSize])<<8 | uint16(d[msgLen-LinkTrailerSize+1])
	if frameCRC != CRC16(d[:msgLen-LinkTrailerSize]) {
		*data = d[msgLen:]
		return 0, nil, ErrBadCRC
	}
	op = d[1]
	payload = d[LinkHeaderSize : msgLen-LinkTrailerSize]
	*data = d[msgLen:]
	return op, payload, nil
}

func discardToSync(d []byte) []byte {
	for i, b := range d {
		if b == LinkSync {
			return d[i+1:]
		}
	}
	return d[len(d):]
}
