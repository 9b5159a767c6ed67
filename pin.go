// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpioreg"
	"periph.io/x/host/v3"
)

// PinClock is the production Clock: a free-running microsecond counter
// derived from the Go runtime's monotonic clock, truncated to 16 bits the
// same way the source firmware's hardware timer wraps (SPEC_FULL.md §4.1).
type PinClock struct {
	t0 time.Time
}

// NewPinClock returns a PinClock zeroed at the current instant.
func NewPinClock() *PinClock { return &PinClock{t0: time.Now()} }

// Now returns the elapsed microseconds since the clock was created, wrapped
// into a uint16 exactly like the firmware's hardware counter.
func (c *PinClock) Now() uint16 { return uint16(time.Since(c.t0).Microseconds()) }

// EdgePin drives a Receiver from a single GPIO input wired to a radio chip's
// data-slicer output, replacing the teacher driver's kidoman/embd-backed
// shim with periph.io/x/conn/v3 + periph.io/x/host/v3 (DESIGN.md). A single
// goroutine waits on the pin's WaitForEdge and serializes calls
// into Receiver.HandleEdge, satisfying the producer-context non-reentrancy
// requirement of SPEC_FULL.md §5.
type EdgePin struct {
	pin   gpio.PinIO
	clock Clock
	recv  *Receiver
	stop  chan struct{}
}

// OpenEdgePin initializes periph's host drivers (idempotent, safe to call
// more than once per process) and looks up name (e.g. "GPIO17") as a
// both-edges interrupt source.
func OpenEdgePin(name string, recv *Receiver, clock Clock) (*EdgePin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("culrecv: periph host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("culrecv: no such gpio pin %q", name)
	}
	if err := p.In(gpio.PullNoChange, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("culrecv: %s: %w", name, err)
	}
	if clock == nil {
		clock = NewPinClock()
	}
	ep := &EdgePin{pin: p, clock: clock, recv: recv, stop: make(chan struct{})}
	go ep.loop()
	return ep, nil
}

// loop is the producer goroutine: it blocks on the pin's edge notification
// and forwards each one to HandleEdge with a freshly sampled counter value.
func (e *EdgePin) loop() {
	for {
		select {
		case <-e.stop:
			return
		default:
		}
		if !e.pin.WaitForEdge(100 * time.Millisecond) {
			continue
		}
		edge := EdgeRising
		if e.pin.Read() == gpio.Low {
			edge = EdgeFalling
		}
		e.recv.HandleEdge(edge, e.clock.Now())
	}
}

// Close stops the producer goroutine.
func (e *EdgePin) Close() { close(e.stop) }
