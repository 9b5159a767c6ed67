// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

import "testing"

func newTestReceiver() *Receiver {
	r := New()
	r.ticks = func() uint32 { return 0 }
	return r
}

func testFS20Frame(payload ...byte) Frame {
	f := Frame{Type: TypeFS20}
	f.OBy = copy(f.OBuf[:], payload)
	return f
}

func testITFrame(payload ...byte) Frame {
	f := Frame{Type: TypeITV1}
	f.OBy = copy(f.OBuf[:], payload)
	return f
}

func TestDedupSimpleRepeatSuppressed(t *testing.T) {
	r := newTestReceiver()
	f := testFS20Frame(0x10, 0x22, 0x10, 0x0B)

	if !r.dedupAccept(f) {
		t.Fatal("first FS20 frame should be accepted")
	}
	if r.dedupAccept(f) {
		t.Fatal("identical FS20 frame within REPTIME should be suppressed")
	}

	r.ticks = func() uint32 { return REPTIME + 1 }
	if !r.dedupAccept(f) {
		t.Fatal("FS20 frame after REPTIME elapses should be accepted again")
	}
}

func TestDedupIntertechnoTwoCopyRequirement(t *testing.T) {
	r := newTestReceiver()
	f := testITFrame(0xAA, 0xBB, 0xCC)

	if r.dedupAccept(f) {
		t.Fatal("first IT copy must be dropped pending a second confirming copy")
	}
	if !r.dedupAccept(f) {
		t.Fatal("second identical IT copy within REPTIME must be accepted")
	}
	if r.dedupAccept(f) {
		t.Fatal("third identical IT copy must be dropped until Reset")
	}

	r.Reset()
	if !r.dedupAccept(f) {
		t.Fatal("after Reset, the next IT copy should again need only itself to latch")
	}
}

func TestDedupDistinctFramesBothAccepted(t *testing.T) {
	r := newTestReceiver()
	a := testFS20Frame(0x10, 0x22, 0x10, 0x0B)
	b := testFS20Frame(0x11, 0x22, 0x10, 0x0B)

	if !r.dedupAccept(a) {
		t.Fatal("frame a should be accepted")
	}
	if !r.dedupAccept(b) {
		t.Fatal("frame b differs from a and should be accepted")
	}
}

func TestDedupFHTSyntheticRepeat(t *testing.T) {
	r := newTestReceiver()
	f := Frame{Type: TypeFHT}
	f.OBy = copy(f.OBuf[:], []byte{0x01, 0x02, fhtAck, 0x00})

	if r.dedupAccept(f) {
		t.Fatal("an FHT ack control frame is a synthetic repeat and should be suppressed by default")
	}

	r2 := newTestReceiver()
	r2.txReport |= RepFHTProto
	if !r2.dedupAccept(f) {
		t.Fatal("with RepFHTProto set, the FHT synthetic-repeat heuristic should be disabled")
	}
}
