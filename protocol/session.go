package protocol

// RxBuffer accumulates bytes received from the master during a single
// session. The bus layer is armed with one-byte slots handed out by Slot;
// Commit makes the landed byte visible. Contents are only meaningful
// between one listening boundary and the next.
type RxBuffer struct {
	buf [SessionMax]byte
	n   int
}

// Slot returns the next free one-byte slot for the bus layer to write
// into, or nil when the buffer is at capacity.
func (b *RxBuffer) Slot() []byte {
	if b.n >= len(b.buf) {
		return nil
	}
	return b.buf[b.n : b.n+1]
}

// Commit records that the byte in the current slot has arrived. Committing
// at capacity is a no-op; the fill count never exceeds SessionMax.
func (b *RxBuffer) Commit() {
	if b.n < len(b.buf) {
		b.n++
	}
}

// Len returns the fill count.
func (b *RxBuffer) Len() int {
	return b.n
}

// Full reports whether the buffer can accept another byte.
func (b *RxBuffer) Full() bool {
	return b.n == len(b.buf)
}

// Bytes returns the received bytes.
func (b *RxBuffer) Bytes() []byte {
	return b.buf[:b.n]
}

// Reset zeroes the buffer and clears the fill count.
func (b *RxBuffer) Reset() {
	for i := range b.buf {
		b.buf[i] = 0
	}
	b.n = 0
}

// TxBuffer holds the response being clocked out to the master.
type TxBuffer struct {
	buf [SessionMax]byte
	n   int
}

// Output appends data, truncating at capacity.
func (b *TxBuffer) Output(data []byte) {
	n := copy(b.buf[b.n:], data)
	b.n += n
}

// PutUint16 appends v most significant byte first.
func (b *TxBuffer) PutUint16(v uint16) {
	b.Output([]byte{byte(v >> 8), byte(v)})
}

// Len returns the valid length.
func (b *TxBuffer) Len() int {
	return b.n
}

// Result returns the staged response.
func (b *TxBuffer) Result() []byte {
	return b.buf[:b.n]
}

// Reset invalidates the staged response.
func (b *TxBuffer) Reset() {
	b.n = 0
}
