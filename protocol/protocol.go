// Package protocol holds the byte-level plumbing shared by the firmware
// core and the host tooling: fixed-capacity session buffers for the
// register target and the framing used on the serial link to a USB-I2C
// bridge adapter.
package protocol

// Version identifies the firmware build.
const Version = "0.1.0"

// SessionMax bounds how many bytes one bus session may deposit in a
// session buffer. A register transaction needs at most three bytes
// (register, value high, value low); the rest is slack for masters that
// send trailing bytes.
const SessionMax = 5
