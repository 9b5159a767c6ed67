// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

import "testing"

func TestRingCommitRelease(t *testing.T) {
	r := NewRing()
	if r.Ready() {
		t.Fatal("new ring should not be ready")
	}

	r.Current().Data[0] = 0x42
	if overflow := r.Commit(); overflow {
		t.Fatal("commit on an empty ring should not overflow")
	}
	if !r.Ready() || r.Used() != 1 {
		t.Fatalf("expected one ready bucket, got used=%d ready=%v", r.Used(), r.Ready())
	}
	if got := r.Peek().Data[0]; got != 0x42 {
		t.Fatalf("peek returned wrong bucket: got %#x", got)
	}

	r.Release()
	if r.Ready() {
		t.Fatal("ring should be empty after release")
	}
	if r.buckets[0].Data[0] != 0 {
		t.Fatal("released bucket should have been reset")
	}
}

func TestRingOverflow(t *testing.T) {
	r := NewRing()
	for i := 0; i < RingSize; i++ {
		if overflow := r.Commit(); overflow {
			t.Fatalf("commit %d should not overflow a fresh ring", i)
		}
	}
	if !r.Full() {
		t.Fatal("ring should be full after RingSize commits")
	}
	r.Current().Data[0] = 0xFF
	if overflow := r.Commit(); !overflow {
		t.Fatal("commit on a full ring should report overflow")
	}
	if r.Current().Data[0] != 0 {
		t.Fatal("overflowed bucket should have been reset in place")
	}
	if r.Used() != RingSize {
		t.Fatalf("overflow must not change the used count, got %d", r.Used())
	}
}

func TestRingFIFOOrder(t *testing.T) {
	r := NewRing()
	for i := 0; i < 3; i++ {
		r.Current().Data[0] = byte(i + 1)
		r.Commit()
	}
	for i := 0; i < 3; i++ {
		if got := r.Peek().Data[0]; got != byte(i+1) {
			t.Fatalf("bucket %d: got %#x, want %#x (FIFO order)", i, got, i+1)
		}
		r.Release()
	}
}
