//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"i2creg/core"
)

// Bus address the target answers to.
const targetAddr = 0x2A

// Initial voltage value served before anything writes the register.
const initialVoltage = 3542

func main() {
	i2c := machine.I2C0
	err := i2c.Configure(machine.I2CConfig{
		Mode: machine.I2CModeTarget,
		// SDA/SCL default to GP4/GP5 for I2C0
	})
	if err != nil {
		for {
			println("i2c configure failed")
			time.Sleep(time.Second)
		}
	}

	bus := newHWBus(i2c)
	regs, _ := core.NewVoltageFile(initialVoltage)
	ctrl := core.NewController(bus, regs)
	ctrl.SetDebugWriter(func(s string) {
		println("[i2creg] " + s)
	})

	initStrobe()

	if err := ctrl.Start(); err != nil {
		println("controller start failed")
	}
	if err := i2c.Listen(targetAddr); err != nil {
		for {
			println("i2c listen failed")
			time.Sleep(time.Second)
		}
	}

	// The hardware batches a session's received bytes; the loop below
	// replays them as the byte-at-a-time events the controller expects,
	// preserving bus order: address match, byte completions, session end.
	buf := make([]byte, 16)
	inWrite := false
	for {
		evt, n, err := i2c.WaitForEvent(buf)
		if err != nil {
			ctrl.Handle(core.Event{Kind: core.BusError})
			inWrite = false
			continue
		}

		switch evt {
		case machine.I2CReceive:
			if !inWrite {
				inWrite = true
				ctrl.Handle(core.Event{Kind: core.AddressMatched, Dir: core.MasterWrites})
			}
			for i := 0; i < n; i++ {
				if bus.deliver(buf[i]) {
					ctrl.Handle(core.Event{Kind: core.ByteReceived})
				}
				// Bytes past the controller's armed window are dropped.
			}

		case machine.I2CRequest:
			// ArmTransmit replies from inside the handler; the answer must
			// be staged before the master clocks the first byte.
			ctrl.Handle(core.Event{Kind: core.AddressMatched, Dir: core.MasterReads})
			ctrl.Handle(core.Event{Kind: core.ByteTransmitted})

		case machine.I2CFinish:
			ctrl.Handle(core.Event{Kind: core.SessionEnded})
			inWrite = false
			strobeSession()
		}
	}
}
