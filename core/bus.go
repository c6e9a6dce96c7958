// Package core implements the target side of a single-byte-addressed
// register interface on a two-wire bus: a state machine that turns
// address-match, byte-completion and session-end events into get/set
// register transactions.
package core

// Direction of a session as announced by the address match, from the
// master's point of view.
type Direction uint8

const (
	// MasterWrites: the master sends bytes to us; our role is to receive.
	MasterWrites Direction = iota
	// MasterReads: the master clocks bytes out of us; our role is to
	// transmit.
	MasterReads
)

// EventKind enumerates the bus-layer notifications delivered to the
// controller.
type EventKind uint8

const (
	// AddressMatched: the master addressed us; Dir carries the transfer
	// direction.
	AddressMatched EventKind = iota
	// ByteReceived: the armed receive slot has been filled.
	ByteReceived
	// ByteTransmitted: the armed transmit completed.
	ByteTransmitted
	// SessionEnded: STOP observed; the session is over.
	SessionEnded
	// BusError: the bus layer gave up on the session.
	BusError
)

// Event is one bus-layer notification. Dir is meaningful only for
// AddressMatched.
type Event struct {
	Kind EventKind
	Dir  Direction
}

// TargetBus is the byte-sequencing service the controller drives. It
// clocks individual bytes on and off the wire and reports completions
// back through Controller.Handle. The bus never re-arms itself; every
// operation is requested explicitly.
type TargetBus interface {
	// ArmReceive requests that the next incoming byte be stored in dst.
	ArmReceive(dst []byte) error

	// ArmTransmit requests that data be clocked out to the master.
	// endOfSession marks the data as the final frame of the session.
	ArmTransmit(data []byte, endOfSession bool) error

	// ResumeListening re-arms address-match detection.
	ResumeListening() error
}
