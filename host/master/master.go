// Package master drives register transactions against a remote target
// through a serial-attached USB-I2C bridge adapter speaking the link
// framing from the protocol package.
package master

import (
	"errors"
	"time"

	"i2creg/host/serial"
	"i2creg/protocol"
)

var (
	// ErrNak reports that the target did not acknowledge its address.
	ErrNak = errors.New("target did not acknowledge")
	// ErrTimeout reports that the bridge never produced a reply frame.
	ErrTimeout = errors.New("timed out waiting for bridge reply")
	// ErrBadReply reports a reply that does not match the request.
	ErrBadReply = errors.New("unexpected bridge reply")
)

// Master issues bus sessions through the bridge. One Master owns its port;
// requests are strictly sequential, mirroring the half-duplex bus.
type Master struct {
	port    serial.Port
	fifo    *protocol.FifoBuffer
	scratch [64]byte
	timeout time.Duration
}

// New creates a Master over an open port.
func New(port serial.Port) *Master {
	return &Master{
		port:    port,
		fifo:    protocol.NewFifoBuffer(256),
		timeout: time.Second,
	}
}

// SetTimeout adjusts how long to wait for a bridge reply.
func (m *Master) SetTimeout(d time.Duration) {
	m.timeout = d
}

// WriteTo runs one master-write session: address the target, send data,
// STOP.
func (m *Master) WriteTo(addr uint8, data []byte) error {
	payload := make([]byte, 0, 1+len(data))
	payload = append(payload, addr)
	payload = append(payload, data...)

	op, _, err := m.roundTrip(protocol.OpWrite, payload)
	if err != nil {
		return err
	}
	switch op {
	case protocol.OpData:
		return nil
	case protocol.OpNak:
		return ErrNak
	default:
		return ErrBadReply
	}
}

// ReadFrom runs one master-read session of n bytes.
func (m *Master) ReadFrom(addr uint8, n int) ([]byte, error) {
	op, reply, err := m.roundTrip(protocol.OpRead, []byte{addr, byte(n)})
	if err != nil {
		return nil, err
	}
	switch op {
	case protocol.OpData:
		if len(reply) != n {
			return nil, ErrBadReply
		}
		return reply, nil
	case protocol.OpNak:
		return nil, ErrNak
	default:
		return nil, ErrBadReply
	}
}

// SetRegister writes a 16-bit value in a single session:
// [reg, hi, lo, STOP].
func (m *Master) SetRegister(addr, reg uint8, v uint16) error {
	return m.WriteTo(addr, []byte{reg, byte(v >> 8), byte(v)})
}

// GetRegister runs the documented two-phase get: a one-byte write session
// selects the register, then a read session fetches the big-endian value.
// An unknown or unselected register reads as the target's sentinel 0xFFFF.
func (m *Master) GetRegister(addr, reg uint8) (uint16, error) {
	if err := m.WriteTo(addr, []byte{reg}); err != nil {
		return 0, err
	}
	b, err := m.ReadFrom(addr, 2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// roundTrip sends one framed request and waits for the bridge's reply
// frame, tolerating noise on the line.
func (m *Master) roundTrip(op byte, payload []byte) (byte, []byte, error) {
	frame, err := protocol.EncodeFrame(op, payload)
	if err != nil {
		return 0, nil, err
	}
	if _, err := m.port.Write(frame); err != nil {
		return 0, nil, err
	}
	if err := m.port.Flush(); err != nil {
		return 0, nil, err
	}

	deadline := time.Now().Add(m.timeout)
	for {
		buf := m.fifo.Data()
		rest := buf
		rop, rpayload, derr := protocol.DecodeFrame(&rest)
		consumed := len(buf) - len(rest)
		if derr == nil {
			reply := append([]byte(nil), rpayload...)
			m.fifo.Pop(consumed)
			return rop, reply, nil
		}
		m.fifo.Pop(consumed)
		if derr != protocol.ErrShortFrame {
			// Damaged frame; whatever follows may still decode.
			continue
		}

		if time.Now().After(deadline) {
			return 0, nil, ErrTimeout
		}
		n, rerr := m.port.Read(m.scratch[:])
		if n > 0 {
			m.fifo.Write(m.scratch[:n])
		}
		if rerr != nil {
			return 0, nil, rerr
		}
	}
}
