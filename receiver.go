// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// Package culrecv implements the receive-side demodulator and protocol
// classifier for a sub-GHz home-automation radio: an edge-triggered pulse
// capture (C1), a lock-free SPSC ring of receive buckets (C2), a sync
// detector and bit demodulator that speculate between FS20/FHT, HMS, EM,
// KS300, ESA, TX3, Revolt, Intertechno V1/V3, TCM97001 and Hörmann pulse
// encodings (C3/C4), a silence-timeout frame commit (C5), per-protocol frame
// analyzers with checksum/parity validation (C6), a retransmission
// deduplicator (C7), and a hex-line emitter (C8). See SPEC_FULL.md.
package culrecv

import (
	"io"
	"time"

	"github.com/dclawin/culrecv/monitor"
)

// LogPrintf is the logging hook used throughout this package, mirroring the
// teacher driver's own callback-based logging convention; production code
// wires this to a github.com/charmbracelet/log logger (see cmd/culrecv).
type LogPrintf func(format string, v ...interface{})

// Report bits, mirroring the firmware's tx_report bitfield (SPEC_FULL.md §6).
const (
	RepKnown byte = 1 << iota
	RepRepeated
	RepFHTProto
	RepRSSI
	RepBits
	RepMonitor
	RepBinTime
	RepLCDMon
)

// Capabilities enables or disables individual protocol analyzers, replacing
// the source firmware's compile-time feature gates (Design Notes §9).
type Capabilities struct {
	FS20        bool
	HMS         bool
	EM          bool
	KS300       bool
	ESA         bool
	TX3         bool
	Revolt      bool
	Intertechno bool
	TCM97001    bool
	Hormann     bool
}

// DefaultCapabilities enables every protocol except Hörmann, whose decoder
// the source firmware itself flags as "not yet understood" and which this
// reimplementation keeps gated behind an explicit opt-in (Design Notes §9b).
func DefaultCapabilities() Capabilities {
	return Capabilities{
		FS20: true, HMS: true, EM: true, KS300: true, ESA: true,
		TX3: true, Revolt: true, Intertechno: true, TCM97001: true,
		Hormann: false,
	}
}

// Clock supplies the monotonic microsecond counter sampled on each edge
// (SPEC_FULL.md §4.1). Tests use a fake counter; production code wires a
// periph.io/x/conn/v3 backed pin (see pin.go).
type Clock interface {
	Now() uint16
}

// RadioCollaborator is the out-of-scope transmit/radio-configuration peer
// referenced in SPEC_FULL.md §6; satisfied in production by the adapted
// sx1231 driver (see sx1231/sx1231.go).
type RadioCollaborator interface {
	SetOOKMode(enable bool)
	ReadRSSI() byte
}

// Receiver owns all of the process-wide scratch state that the source
// firmware keeps as file-scope globals: the bucket ring, the repeat filter,
// the report-flag bitfield, and the output buffer (Design Notes §9).
//
// No mutex guards any of this (SPEC_FULL.md §5, §9 Design Notes): the ring
// itself is the only thing shared between the producer and consumer
// goroutines, and it is kept safe purely by `nrUsed`'s atomic updates plus
// each side only ever touching its own end of the ring (ring.go). Every
// other field below is either producer-only scratch (timerZero/pendingHi/
// havePendingHi/silenceUS), consumer-only scratch (dedup), or — hightime/
// lowtime, per §5's "Shared resources outside the ring" — written by the
// producer and read opportunistically by the consumer for the debug
// monitor, tolerating a torn read exactly as the spec calls for. HandleEdge,
// SilenceTimeout and Reset are all producer-context entry points and must
// be invoked from the same serialized caller (never concurrently with one
// another); they race with the consumer only at the ring boundary.
type Receiver struct {
	caps Capabilities

	ring *Ring

	clock         Clock
	timerZero     uint16 // raw counter value at the last rising-edge reset
	pendingHi     int16  // scaled hightime captured at the last falling edge
	havePendingHi bool

	hightime int16 // most recent scaled hightime; producer writes, consumer reads opportunistically
	lowtime  int16 // most recent scaled lowtime; producer writes, consumer reads opportunistically

	silenceUS uint16 // current silence compare value, reloaded per state; producer-owned

	txReport byte
	radio    RadioCollaborator

	dedup dedupState

	sink io.Writer
	mon  *monitor.Buffer

	metrics *metricsSet

	fhtHook      func(payload []byte)
	rfRouterHook func(b *Bucket)

	log LogPrintf

	ticks func() uint32
}

// Option configures a Receiver at construction time.
type Option func(*Receiver)

// WithCapabilities overrides the default protocol capability set.
func WithCapabilities(c Capabilities) Option { return func(r *Receiver) { r.caps = c } }

// WithClock stores a microsecond clock on the Receiver. The Receiver itself
// does not read it: edge timing arrives through HandleEdge's counter argument
// and repeat-filter timestamps come from Ticks.
func WithClock(c Clock) Option { return func(r *Receiver) { r.clock = c } }

// WithRadio wires the out-of-scope transmit/radio-configuration collaborator.
func WithRadio(rc RadioCollaborator) Option { return func(r *Receiver) { r.radio = rc } }

// WithSink sets the byte sink that accepted frames are hex-encoded onto.
func WithSink(w io.Writer) Option { return func(r *Receiver) { r.sink = w } }

// WithMonitor wires a debug/monitor side channel (REP_MONITOR/REP_BITS/etc).
func WithMonitor(m *monitor.Buffer) Option { return func(r *Receiver) { r.mon = m } }

// WithMetrics wires a Prometheus-backed metrics set.
func WithMetrics(m *metricsSet) Option { return func(r *Receiver) { r.metrics = m } }

// WithLogger overrides the logging hook.
func WithLogger(l LogPrintf) Option { return func(r *Receiver) { r.log = l } }

// WithFHTHook wires the higher-level FHT session collaborator (SPEC_FULL §6).
func WithFHTHook(f func(payload []byte)) Option { return func(r *Receiver) { r.fhtHook = f } }

// WithRFRouterHook wires the RF-router hand-off collaborator (SPEC_FULL §4.3/§6).
func WithRFRouterHook(f func(b *Bucket)) Option { return func(r *Receiver) { r.rfRouterHook = f } }

// New builds a Receiver ready to accept edges via HandleEdge.
func New(opts ...Option) *Receiver {
	r := &Receiver{
		caps:      DefaultCapabilities(),
		ring:      NewRing(),
		silenceUS: SilenceDefault,
		txReport:  RepKnown,
		log:       func(string, ...interface{}) {},
		ticks:     func() uint32 { return uint32(time.Now().UnixMilli()) },
	}
	for _, o := range opts {
		o(r)
	}
	if r.sink == nil {
		r.sink = io.Discard
	}
	if r.mon == nil {
		r.mon = monitor.New(256)
	}
	return r
}

// debugLine pushes a debug event to the monitor buffer and, if REP_MONITOR
// is set in the current report flags, writes it to the byte sink as well
// (SPEC_FULL.md §4.8).
func (r *Receiver) debugLine(txt string) {
	r.mon.Push(txt)
	if r.txReport&RepMonitor != 0 {
		io.WriteString(r.sink, txt+"\r\n")
	}
}

// Configure sets the report-flag bitfield and, if a radio collaborator is
// wired, triggers a radio reconfiguration through it (SPEC_FULL.md §6). Like
// the producer-context entry points, it must not be called concurrently with
// them; production callers configure once before starting Run.
func (r *Receiver) Configure(txReport byte) {
	r.txReport = txReport
	if r.radio != nil {
		r.radio.SetOOKMode(true)
	}
}

// Reset forces the producer bucket back to RESET and clears the per-protocol
// isNotRep latch, as happens when the input channel is re-entered for
// transmit or mbus takeover (SPEC_FULL.md §5 Cancellation). It is itself a
// producer-context entry point and must be serialized with HandleEdge and
// SilenceTimeout the same way they are serialized with each other.
func (r *Receiver) Reset() {
	r.ring.Current().reset()
	r.dedup.isNotRep = false
	r.havePendingHi = false
}

// Ticks returns the monotonic tick counter used for repeat-window timing.
func (r *Receiver) Ticks() uint32 { return r.ticks() }

// ReadRSSI delegates to the wired radio collaborator, or returns 0 if none is
// configured.
func (r *Receiver) ReadRSSI() byte {
	if r.radio == nil {
		return 0
	}
	return r.radio.ReadRSSI()
}
