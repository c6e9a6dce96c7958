package protocol

import "testing"

func TestCRC16Empty(t *testing.T) {
	if crc := CRC16(nil); crc != 0xFFFF {
		t.Errorf("CRC16(nil) = %#04x, want 0xFFFF", crc)
	}
}

func TestCRC16Consistency(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	if CRC16(data) != CRC16(data) {
		t.Error("CRC16 not deterministic")
	}
}

func TestCRC16DetectsSingleBitFlip(t *testing.T) {
	data := []byte{0x05, 0x10, 0x08, 0x04, 0xD2}
	base := CRC16(data)

	for i := range data {
		for bit := 0; bit < 8; bit++ {
			mutated := append([]byte(nil), data...)
			mutated[i] ^= 1 << bit
			if CRC16(mutated) == base {
				t.Errorf("flip of byte %d bit %d not detected", i, bit)
			}
		}
	}
}
