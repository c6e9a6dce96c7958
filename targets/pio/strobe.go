//go:build rp2040

package pio

// PIO session strobe: emits one fixed-width pulse per FIFO push, for
// logic-analyzer triggering on completed bus sessions. The pulse is
// hardware-timed, so pushing from an event handler costs one FIFO write.

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// buildStrobeProgram creates the strobe PIO program using AssemblerV0
//
// Program flow:
//  1. Pull a word from the FIFO (blocks until one arrives)
//  2. Drive the pin high, stretched by the delay field
//  3. Drive the pin low and wrap back to the pull
func buildStrobeProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),                    // 0: pull block
		asm.Set(rp2pio.SetDestPins, 1).Delay(31).Encode(), // 1: set pins, 1 [31]
		asm.Set(rp2pio.SetDestPins, 0).Encode(),           // 2: set pins, 0
		// .wrap
	}
}

const strobePIOOrigin = 0 // Load at offset 0 for correct wrap addresses

// SessionStrobe drives a pin pulse from a PIO state machine.
type SessionStrobe struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	offset uint8
}

// NewSessionStrobe creates a strobe on the given PIO block and state
// machine.
// pioNum: 0 for PIO0, 1 for PIO1
// smNum: 0-3 for state machine number
func NewSessionStrobe(pioNum, smNum uint8) *SessionStrobe {
	var pioHW *rp2pio.PIO
	if pioNum == 0 {
		pioHW = rp2pio.PIO0
	} else {
		pioHW = rp2pio.PIO1
	}

	return &SessionStrobe{
		pio: pioHW,
		sm:  pioHW.StateMachine(smNum),
	}
}

// Init loads the program and starts the state machine on pin.
func (s *SessionStrobe) Init(pin uint8) error {
	s.pin = machine.Pin(pin)

	s.sm.TryClaim()

	program := buildStrobeProgram()
	offset, err := s.pio.AddProgram(program, strobePIOOrigin)
	if err != nil {
		return err
	}
	s.offset = offset

	s.pin.Configure(machine.PinConfig{Mode: s.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(s.pin, 1)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)

	// Slow clock so the 32-cycle pulse is wide enough to see on a cheap
	// analyzer (~17ms at 125MHz/65535)
	cfg.SetClkDivIntFrac(65535, 0)

	s.sm.Init(offset, cfg)
	s.sm.SetPindirsConsecutive(s.pin, 1, true)
	s.sm.SetPinsConsecutive(s.pin, 1, false)
	s.sm.SetEnabled(true)

	return nil
}

// Pulse queues one strobe pulse. Non-blocking: if the FIFO is full the
// pulse is dropped rather than stalling the caller, which may be an event
// handler.
func (s *SessionStrobe) Pulse() {
	if s.sm.IsTxFIFOFull() {
		return
	}
	s.sm.TxPut(1)
}

// Stop halts the state machine and clears pending pulses.
func (s *SessionStrobe) Stop() {
	s.sm.SetEnabled(false)
	s.sm.ClearFIFOs()
	s.sm.Restart()
}
