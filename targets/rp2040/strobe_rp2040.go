//go:build rp2040

package main

import (
	tpio "i2creg/targets/pio"
)

// Pin pulsed once per completed session, for bus debugging.
const strobePin = 15

var strobe *tpio.SessionStrobe

func initStrobe() {
	s := tpio.NewSessionStrobe(0, 0)
	if err := s.Init(strobePin); err != nil {
		println("session strobe init failed")
		return
	}
	strobe = s
}

func strobeSession() {
	if strobe != nil {
		strobe.Pulse()
	}
}
