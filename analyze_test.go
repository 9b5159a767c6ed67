// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

import "testing"

func TestCksum1(t *testing.T) {
	buf := []byte{0x10, 0x22, 0x10, 0x0B}
	got := cksum1(6, buf, len(buf))
	want := byte(6 + 0x10 + 0x22 + 0x10 + 0x0B)
	if got != want {
		t.Fatalf("cksum1 = %#x, want %#x", got, want)
	}
}

func TestXorAll(t *testing.T) {
	got := xorAll([]byte{0x01, 0x02, 0x03})
	if got != 0x00 {
		t.Fatalf("xorAll = %#x, want 0x00", got)
	}
}

func TestEvenParity(t *testing.T) {
	cases := map[byte]bool{
		0x00: true,
		0x01: false,
		0x03: true,
		0xFF: true,
		0x0F: true,
		0x07: false,
	}
	for v, want := range cases {
		if got := evenParity(v); got != want {
			t.Errorf("evenParity(%#x) = %v, want %v", v, got, want)
		}
	}
}

func TestParityOK(t *testing.T) {
	if !parityOK(0x00, 0) {
		t.Error("0x00 has even parity, parity bit 0 should check out")
	}
	if parityOK(0x00, 1) {
		t.Error("0x00 has even parity, parity bit 1 should fail")
	}
	if !parityOK(0x01, 1) {
		t.Error("0x01 has odd parity, parity bit 1 should check out")
	}
}

// buildParityFramed packs each byte of payload as 8 MSB-first data bits plus
// a trailing even-parity bit into a fresh bucket, mirroring how the bit
// demodulator (demod.go) would have filled it.
func buildParityFramed(payload []byte) *Bucket {
	b := &Bucket{BitIdx: 7}
	for _, v := range payload {
		for k := 7; k >= 0; k-- {
			b.addBit(int((v >> uint(k)) & 1))
		}
		bit := 0
		if !evenParity(v) {
			bit = 1
		}
		b.addBit(bit)
	}
	return b
}

func TestExtractParityFramedRoundTrip(t *testing.T) {
	payload := []byte{0x10, 0x22, 0x10, 0x0B, 0x53}
	b := buildParityFramed(payload)

	got, ok := extractParityFramed(b, len(payload))
	if !ok {
		t.Fatal("extractParityFramed reported no bytes extracted")
	}
	if len(got) != len(payload) {
		t.Fatalf("got %d bytes, want %d", len(got), len(payload))
	}
	for i := range payload {
		if got[i] != payload[i] {
			t.Errorf("byte %d: got %#x, want %#x", i, got[i], payload[i])
		}
	}
}

func TestExtractParityFramedStopsOnBadParity(t *testing.T) {
	b := buildParityFramed([]byte{0x10, 0x22})
	// Flip the parity bit that follows the first byte (bit index 8).
	flipBitAt(b, 8)

	got, ok := extractParityFramed(b, 2)
	if ok || len(got) != 0 {
		t.Fatalf("expected extraction to stop before the first byte, got %v ok=%v", got, ok)
	}
}

// flipBitAt flips raw bit n (0 = MSB of Data[0]) in place, for tests that
// need to corrupt a single framing bit.
func flipBitAt(b *Bucket, n int) {
	byteIdx := n / 8
	bitIdx := 7 - (n % 8)
	b.Data[byteIdx] ^= 1 << uint(bitIdx)
}
