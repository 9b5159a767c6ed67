// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

import "testing"

func TestWaveEqualsTolerance(t *testing.T) {
	ref := Wave{High: 100, Low: 40}
	cases := []struct {
		name    string
		h, l    int16
		state   State
		matches bool
	}{
		{"exact", 100, 40, StateCollect, true},
		{"within tolerance", 100 + TDiff - 1, 40, StateCollect, true},
		{"at tolerance boundary", 100 + TDiff, 40, StateCollect, false},
		{"outside tolerance", 100 + TDiff + 5, 40, StateCollect, false},
		{"IT gets a wider tolerance", 100 + TDiff + 5, 40, StateIT, true},
	}
	for _, c := range cases {
		if got := waveEquals(ref, c.h, c.l, c.state); got != c.matches {
			t.Errorf("%s: waveEquals(%v, %d, %d, %v) = %v, want %v",
				c.name, ref, c.h, c.l, c.state, got, c.matches)
		}
	}
}

func TestMakeAvgConverges(t *testing.T) {
	ref := Wave{High: 0, Low: 0}
	for i := 0; i < 20; i++ {
		ref = makeAvg(ref, 100, 40)
	}
	if ref.High != 100 || ref.Low != 40 {
		t.Fatalf("makeAvg did not converge: got %+v, want {100 40}", ref)
	}
}

func TestMakeAvgWeighting(t *testing.T) {
	ref := Wave{High: 100, Low: 100}
	got := makeAvg(ref, 0, 0)
	if got.High != 75 || got.Low != 75 {
		t.Fatalf("makeAvg should weight the prior value 3:1, got %+v", got)
	}
}
