package core

import (
	"i2creg/protocol"
)

// Mode tracks which phase of a session the controller believes it is in.
type Mode uint8

const (
	// Listening: idle, an address match is expected next.
	Listening Mode = iota
	// Receiving: the master is writing bytes to us.
	Receiving
	// Transmitting: we are clocking bytes out to the master.
	Transmitting
)

// Controller is the register target's protocol state machine.
//
// The wire protocol is asymmetric. A get is two sessions: a one-byte
// write selects the register, then a read-direction session fetches two
// bytes, most significant first. A set is one session: register byte
// followed by the big-endian 16-bit value. The bus layer delivers bytes
// one at a time with no length field, so a session's meaning is resolved
// only at STOP, from the fill count.
//
// Handlers run to completion on the bus layer's event context and are
// never re-entered: the bus is half-duplex and strictly sequential per
// session. No other code may touch the buffers, mode or pending register.
type Controller struct {
	bus  TargetBus
	regs *File

	mode    Mode
	rx      protocol.RxBuffer
	tx      protocol.TxBuffer
	pending uint8

	debug DebugWriter
}

// NewController creates a controller over bus serving regs. Call Start to
// arm address-match detection.
func NewController(bus TargetBus, regs *File) *Controller {
	return &Controller{
		bus:   bus,
		regs:  regs,
		mode:  Listening,
		debug: nopDebug,
	}
}

// SetDebugWriter routes the controller's event traces. Writers run on the
// bus event context and must be cheap.
func (c *Controller) SetDebugWriter(w DebugWriter) {
	if w == nil {
		w = nopDebug
	}
	c.debug = w
}

// Start arms the bus layer for the first address match.
func (c *Controller) Start() error {
	c.mode = Listening
	c.pending = 0
	return c.bus.ResumeListening()
}

// Mode reports the current operating mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Handle applies one bus event to the state machine. This is the single
// transition function; concrete targets translate their hardware
// notifications into Events and feed them here in bus order.
func (c *Controller) Handle(ev Event) {
	switch ev.Kind {
	case AddressMatched:
		if ev.Dir == MasterReads {
			c.beginTransmit()
		} else {
			c.beginReceive()
		}
	case ByteReceived:
		c.byteReceived()
	case ByteTransmitted:
		c.debug("tx complete")
		c.tx.Reset()
	case SessionEnded:
		c.sessionEnded()
	case BusError:
		// Fail open: abandon whatever was in flight and resynchronize to
		// idle. No partial recovery is attempted.
		c.debug("bus error, resuming listen")
		if err := c.bus.ResumeListening(); err != nil {
			c.debug("resume listening failed")
		}
	}
}

// beginTransmit stages the response for a read-direction session. The
// answer must be ready before the first clock edge of the read, so the
// register lookup happens here, not at STOP time.
func (c *Controller) beginTransmit() {
	c.mode = Transmitting
	c.debug("addr match, master reads reg 0x" + htoa(c.pending))

	c.tx.Reset()
	c.tx.PutUint16(c.regs.Load(c.pending))

	if err := c.bus.ArmTransmit(c.tx.Result(), true); err != nil {
		c.debug("arm transmit failed")
	}
	// Consume the selection now so a stale register cannot leak into the
	// next transaction.
	c.pending = 0
}

// beginReceive arms the first byte of a write-direction session.
func (c *Controller) beginReceive() {
	c.mode = Receiving
	c.debug("addr match, master writes")

	slot := c.rx.Slot()
	if slot == nil {
		// Already at capacity; drop the rest of the session.
		c.debug("rx buffer full, not arming")
		return
	}
	if err := c.bus.ArmReceive(slot); err != nil {
		c.debug("arm receive failed")
	}
}

// byteReceived commits the landed byte and re-arms for the next one,
// bounded by buffer capacity.
func (c *Controller) byteReceived() {
	if slot := c.rx.Slot(); slot != nil {
		c.debug("rx byte 0x" + htoa(slot[0]))
	}
	c.rx.Commit()

	if c.mode != Receiving {
		return
	}
	slot := c.rx.Slot()
	if slot == nil {
		c.debug("rx buffer full")
		return
	}
	if err := c.bus.ArmReceive(slot); err != nil {
		c.debug("arm receive failed")
	}
}

// sessionEnded resolves the session's meaning from the fill count, clears
// session state and returns to listening. This runs for every session,
// well-formed or not; the bus layer never re-arms itself.
func (c *Controller) sessionEnded() {
	b := c.rx.Bytes()
	switch {
	case len(b) == 0:
		// Read-phase STOP or an empty write; nothing to resolve.
	case len(b) == 1:
		// Register selection only. The value travels in a following
		// read-direction session.
		c.pending = b[0]
		c.debug("reg 0x" + htoa(c.pending) + " selected")
	default:
		// [reg, hi, lo, ...]: fixed-width decode. Bytes past index 2 were
		// accepted into the buffer but carry no meaning. A session that
		// ends after the high byte decodes with a zero low byte, matching
		// the cleared-buffer semantics of the session boundary.
		c.pending = b[0]
		hi := b[1]
		lo := byte(0)
		if len(b) > 2 {
			lo = b[2]
		}
		v := uint16(hi)<<8 | uint16(lo)
		if c.regs.Store(c.pending, v) {
			c.debug("reg 0x" + htoa(c.pending) + " set to " + itoa(int(v)))
		} else {
			c.debug("reg 0x" + htoa(c.pending) + " not writable, value dropped")
		}
	}

	c.rx.Reset()
	c.mode = Listening
	if err := c.bus.ResumeListening(); err != nil {
		c.debug("resume listening failed")
	}
}
