//go:build rp2040 || rp2350

package main

import (
	"machine"

	"i2creg/core"
)

// hwBus adapts TinyGo's I2C target mode to core.TargetBus. The peripheral
// buffers inbound bytes itself, so ArmReceive only records where the event
// loop should deposit the next byte; transmit goes straight to the
// hardware reply FIFO.
type hwBus struct {
	i2c *machine.I2C
	dst []byte
}

var _ core.TargetBus = (*hwBus)(nil)

func newHWBus(i2c *machine.I2C) *hwBus {
	return &hwBus{i2c: i2c}
}

func (b *hwBus) ArmReceive(dst []byte) error {
	b.dst = dst
	return nil
}

func (b *hwBus) ArmTransmit(data []byte, endOfSession bool) error {
	// The RP2040 target-mode FIFO always ends the session after the reply,
	// so endOfSession carries no extra work here.
	return b.i2c.Reply(data)
}

func (b *hwBus) ResumeListening() error {
	// Listen persists on this part; just drop any stale arm.
	b.dst = nil
	return nil
}

// deliver stores one received byte into the armed slot. Reports whether
// the byte was accepted; unarmed bytes are dropped, which is how the
// capacity bound manifests at the hardware boundary.
func (b *hwBus) deliver(by byte) bool {
	if b.dst == nil {
		return false
	}
	b.dst[0] = by
	b.dst = nil
	return true
}
