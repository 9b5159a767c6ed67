// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package culrecv

import (
	"bytes"
	"fmt"

	"github.com/dclawin/culrecv/varint"
)

const hexDigits = "0123456789ABCDEF"

func writeHex2(buf *bytes.Buffer, v byte) {
	buf.WriteByte(' ')
	buf.WriteByte(hexDigits[v>>4])
	buf.WriteByte(hexDigits[v&0x0F])
}

func writeHex1(buf *bytes.Buffer, v byte) {
	buf.WriteByte(' ')
	buf.WriteByte(hexDigits[v&0x0F])
}

// emitFrame is the C8 emitter: if packageOK and REP_KNOWN is set, it writes
// the type tag, each payload byte as two hex digits, an optional trailing
// nibble, and an optional RSSI byte, terminated by a CRLF, to the wired byte
// sink (SPEC_FULL.md §4.8).
func (r *Receiver) emitFrame(f Frame) {
	if r.txReport&RepKnown == 0 {
		return
	}
	var buf bytes.Buffer
	buf.WriteByte(f.Type)
	for i := 0; i < f.OBy; i++ {
		writeHex2(&buf, f.OBuf[i])
	}
	if f.Nibble {
		writeHex1(&buf, f.OBuf[f.OBy])
	}
	if r.txReport&RepRSSI != 0 {
		writeHex2(&buf, r.ReadRSSI())
	}
	buf.WriteString("\r\n")
	if _, err := r.sink.Write(buf.Bytes()); err != nil {
		r.log("culrecv: sink write failed: %v", err)
	}
	if r.metrics != nil {
		r.metrics.framesEmitted.Inc()
		r.metrics.framesClassified.WithLabelValues(string(rune(f.Type))).Inc()
	}
}

// emitDebug pushes the optional debug side channels gated on tx_report bits
// (SPEC_FULL.md §4.8): the bucket's state and write cursor (REP_BITS), an LCD-oriented summary
// (REP_LCDMON), and a varint-packed (hightime, lowtime) trace (REP_BINTIME).
func (r *Receiver) emitDebug(b *Bucket) {
	if r.txReport&RepBits != 0 {
		r.debugLine(fmt.Sprintf("bits state=%s byteIdx=%d bitIdx=%d", b.State, b.ByteIdx, b.BitIdx))
	}
	if r.txReport&RepLCDMon != 0 {
		r.debugLine(fmt.Sprintf("lcd state=%s len=%d", b.State, b.bitLen()))
	}
	if r.txReport&RepBinTime != 0 {
		enc := varint.Encode([]int{int(r.hightime), int(r.lowtime)})
		r.debugLine(fmt.Sprintf("bintime % x", enc))
	}
}
