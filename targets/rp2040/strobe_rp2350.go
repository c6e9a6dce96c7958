//go:build rp2350

package main

// The PIO strobe backend is rp2040-only for now; the RP2350 build runs
// without it.

func initStrobe() {}

func strobeSession() {}
