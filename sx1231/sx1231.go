// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// The SX1231 package interfaces with a HopeRF RFM69 radio connected to an SPI bus.
//
// The RFM69 modules use a Semtech SX1231 or SX1231H radio chip and this
// package should work fine with other radio modules using the same chip. The only real
// difference will be the power output section where different modules use different output stage
// configurations.
//
// Unlike the packet-mode driver this is adapted from, this package never switches the radio
// into its own packet/FIFO receive path: culrecv demodulates OOK pulses itself from the data
// pin's edges (see ../pin.go), so this driver is reduced to what a collaborator radio needs to
// do on culrecv's behalf — hold the carrier on frequency and rate, switch the data-slicer
// between FSK and OOK, and report RSSI. The original interrupt-driven RX/TX worker, its tx/rx
// channels and the JeeLabs packet framing are gone; see DESIGN.md for why.
//
// The methods on the Radio object are not concurrency safe. Since they all deal with
// configuration this should not pose difficulties for a single collaborator goroutine.
//
// Notes about the sx1231
//
// There are some 20 settings that all interact in undocumented ways, so getting to a robust
// driver is tricky. If AFC is disabled, then the chip performs no FEI measurement, this makes
// it impossible to automatically tune the carrier frequency. If AFC is enabled and the AFC
// low-beta offset is also enabled, then the FEI measurement seems bogus and the reported AFC
// value includes the low-beta offset.
package sx1231

import (
	"errors"
	"fmt"
	"sync"
)

// SPI is the minimal bus interface this driver needs; culrecv wires it to whatever transport
// the host platform actually uses (e.g. a periph.io/x/conn/v3/spi.Conn adapter).
type SPI interface {
	Tx(w, r []byte) error
	Speed(hz int64) error
	Configure(mode int, bits int) error
	Close() error
}

const (
	SPIMode0 = 0x0 // CPOL=0, CPHA=0
	SPIMode1 = 0x1
	SPIMode2 = 0x2
	SPIMode3 = 0x3
)

// Radio represents a Semtech SX1231 radio as used in HopeRF's RFM69 modules, configured here as
// culrecv's OOK-mode transmit/receive collaborator rather than as a standalone packet radio.
type Radio struct {
	spi     SPI    // SPI device to access the radio
	sync    []byte // sync bytes
	freq    uint32 // center frequency
	rate    uint32 // bit rate from table
	paBoost bool   // true: use PA1+PA2 power amp, else PA0
	power   byte   // output power in dBm

	mu   sync.Mutex // guard concurrent register access
	mode byte       // current operation mode
	err  error      // persistent error
	log  LogPrintf  // function to use for logging
}

// RadioOpts contains options used when initializing a Radio.
type RadioOpts struct {
	Sync    []byte    // RF sync bytes
	Freq    uint32    // frequency in Hz, Khz, or Mhz
	Rate    uint32    // data bitrate in bits per second, must exist in Rates table
	PABoost bool      // true: use PA1+PA2, false: use PA0
	Logger  LogPrintf // function to use for logging
}

// Rate describes the SX1231 configuration to achieve a specific bit rate.
//
// The datasheet is somewhat confused and confusing about what Fdev and RxBw really mean.
// Fdev is defined as the deviation between the center freq and the modulated freq, while
// conventionally the frequency deviation fdev is the difference between the 0 and 1 freq's,
// thus the conventional fdev is Fdev*2.
type Rate struct {
	Fdev    int  // TX frequency deviation in Hz
	Shaping byte // 0:none, 1:gaussian BT=1, 2:gaussian BT=0.5, 3:gaussian BT=0.3
	RxBw    byte // value for rxBw register (0x19)
	AfcBw   byte // value for afcBw register (0x1A)
}

// Rates is the table of supported bit rates and their corresponding register settings. The map
// key is the bit rate in bits per second. In order to operate at a new bit rate the table can be
// extended by the client.
var Rates = map[uint32]Rate{
	49230: {45000, 0, 0x4A, 0x42},
	49231: {180000, 0, 0x49, 0x49},
	49232: {45000, 0, 0x52, 0x4A},
	49233: {51660, 0, 0x52, 0x4A},
	50000: {90000, 0, 0x42, 0x42},
}

// New initializes an sx1231 Radio given an SPI device, synchronizes communication with the
// chip, and programs the sync bytes, frequency, rate and power. It leaves the radio in standby:
// culrecv's own Receiver drives the actual OOK/FSK mode switch via SetOOKMode and reads the
// demodulated data off the dedicated data pin, not through this driver's FIFO.
//
// The SPI bus must be set to 4Mhz and mode 0.
func New(dev SPI, opts RadioOpts) (*Radio, error) {
	r := &Radio{
		spi:     dev,
		mode:    255,
		paBoost: opts.PABoost,
		err:     fmt.Errorf("sx1231 is not initialized"),
		log:     func(format string, v ...interface{}) {},
	}
	if opts.Logger != nil {
		r.log = func(format string, v ...interface{}) {
			opts.Logger("sx1231: "+format, v...)
		}
	}

	if err := dev.Speed(4 * 1000 * 1000); err != nil {
		return nil, fmt.Errorf("sx1231: cannot set speed, %v", err)
	}
	if err := dev.Configure(SPIMode0, 8); err != nil {
		return nil, fmt.Errorf("sx1231: cannot set mode, %v", err)
	}

	// Try to synchronize communication with the sx1231.
	sync := func(pattern byte) error {
		for n := 10; n > 0; n-- {
			r.writeReg(REG_SYNCVALUE1, pattern)
			v := r.readReg(REG_SYNCVALUE1)
			if v == pattern {
				return nil
			}
		}
		return errors.New("sx1231: cannot sync with chip")
	}
	if err := sync(0xaa); err != nil {
		return nil, err
	}
	if err := sync(0x55); err != nil {
		return nil, err
	}

	r.setMode(MODE_SLEEP)
	r.setMode(MODE_STANDBY)

	r.log("SX1231/SX1231 version %#x", r.readReg(REG_VERSION))

	for i := 0; i < len(configRegs)-1; i += 2 {
		r.writeReg(configRegs[i], configRegs[i+1])
	}
	r.setMode(MODE_STANDBY)

	r.SetRate(opts.Rate)
	r.SetFrequency(opts.Freq)
	r.SetPower(13)

	if len(opts.Sync) < 1 || len(opts.Sync) > 8 {
		return nil, fmt.Errorf("sx1231: invalid number of sync bytes: %d, must be 1..8",
			len(opts.Sync))
	}
	r.sync = opts.Sync
	wBuf := make([]byte, len(r.sync)+2)
	rBuf := make([]byte, len(r.sync)+2)
	wBuf[0] = REG_SYNCCONFIG | 0x80
	wBuf[1] = byte(0x80 + ((len(r.sync) - 1) << 3))
	copy(wBuf[2:], r.sync)
	r.spi.Tx(wBuf, rBuf)

	r.err = nil
	r.logRegs()
	return r, nil
}

// SetFrequency changes the center frequency at which the radio transmits and receives. The
// frequency can be specified at any scale (hz, khz, mhz). The frequency value is not checked
// and invalid values will simply cause the radio not to work particularly well.
func (r *Radio) SetFrequency(freq uint32) {
	for freq > 0 && freq < 100000000 {
		freq = freq * 10
	}
	r.log("SetFrequency: %dHz", freq)

	mode := r.mode
	r.setMode(MODE_STANDBY)
	frf := (freq << 2) / (32000000 >> 11)
	r.writeReg(REG_FRFMSB, byte(frf>>10), byte(frf>>2), byte(frf<<6))
	r.setMode(mode)
}

// SetRate sets the bit rate according to the Rates table. The rate requested must use one of
// the values from the Rates table. If it is not, nothing is changed.
func (r *Radio) SetRate(rate uint32) {
	params, found := Rates[rate]
	if !found {
		return
	}
	r.log("SetRate %dbps, Fdev:%dHz, RxBw:%#x, AfcBw:%#x", rate, params.Fdev, params.RxBw,
		params.AfcBw)

	r.rate = rate
	mode := r.mode
	r.setMode(MODE_STANDBY)
	var rateVal uint32 = (32000000 + rate/2) / rate
	r.writeReg(REG_BITRATEMSB, byte(rateVal>>8), byte(rateVal&0xff))
	var fStep float64 = 32000000.0 / 524288
	fdevVal := uint32((float64(params.Fdev) + fStep/2) / fStep)
	r.writeReg(REG_FDEVMSB, byte(fdevVal>>8), byte(fdevVal&0xFF))
	// Preserve the modulation-type bits (FSK/OOK) already programmed by SetOOKMode; only the
	// Gaussian shaping bits are this call's business.
	r.writeReg(REG_DATAMODUL, (r.readReg(REG_DATAMODUL)&^dataModulShapingMask)|(params.Shaping&0x3))
	r.writeReg(REG_RXBW, params.RxBw, params.AfcBw)
	r.writeReg(REG_TESTAFC, byte(params.Fdev/10/488))
	if r.readReg(REG_AFCCTRL) != 0x00 {
		r.setMode(MODE_FS)
		r.writeReg(REG_AFCCTRL, 0x00)
	}
	r.setMode(mode)
}

// SetPower configures the radio for the specified output power in dBm.
func (r *Radio) SetPower(dbm byte) {
	mode := r.mode
	r.setMode(MODE_STANDBY)

	if r.paBoost {
		if dbm > 20 {
			dbm = 20
		}
		switch {
		case dbm <= 13:
			r.writeReg(REG_PALEVEL, 0x40+18+dbm)
		case dbm <= 17:
			r.writeReg(REG_PALEVEL, 0x60+14+dbm)
		default:
			r.writeReg(REG_PALEVEL, 0x60+11+dbm)
		}
	} else {
		if dbm > 13 {
			dbm = 13
		}
		r.writeReg(REG_PALEVEL, 0x80+18+dbm)
	}
	r.writeReg(REG_TESTPA1, 0x55)
	r.writeReg(REG_TESTPA2, 0x70)
	r.log("SetPower %ddBm", dbm)
	r.power = dbm

	r.setMode(mode)
}

// dataModulShapingMask isolates REG_DATAMODUL's two low shaping bits, so SetOOKMode can flip
// the modulation-type bits above it without disturbing whatever shaping SetRate programmed.
const dataModulShapingMask = 0x03

// SetOOKMode switches the data-slicer between continuous OOK (the home-automation protocols
// this module demodulates all use) and FSK, satisfying the RadioCollaborator interface the
// Receiver expects (DESIGN.md). REG_DATAMODUL bits 4:3 select the modulation type; bits 6:5
// select packet vs. continuous framing, which OOK reception here always wants off so the
// slicer output tracks the raw carrier envelope edge-for-edge on the data pin. Enabling OOK
// also puts the chip into MODE_RECEIVE, since that is what drives the data pin at all; disabling
// it drops back to MODE_STANDBY.
func (r *Radio) SetOOKMode(enable bool) {
	r.setMode(MODE_STANDBY)
	v := r.readReg(REG_DATAMODUL) &^ (dataModulTypeMask | dataModulFramingMask)
	if enable {
		v |= dataModulTypeOOK | dataModulContinuous
	}
	r.writeReg(REG_DATAMODUL, v)
	r.log("SetOOKMode %v", enable)
	if enable {
		r.setMode(MODE_RECEIVE)
	} else {
		r.setMode(MODE_STANDBY)
	}
}

// ReadRSSI samples the current RSSI register in raw chip units, as the RadioCollaborator
// interface requires; the caller is responsible for whatever dBm conversion it needs.
func (r *Radio) ReadRSSI() byte {
	return r.readReg(REG_RSSIVALUE)
}

// LogPrintf is a function used by the driver to print logging info.
type LogPrintf func(format string, v ...interface{})

// SetLogger sets a logging function, nil may be used to disable logging, which is the default.
func (r *Radio) SetLogger(l LogPrintf) {
	if l != nil {
		r.log = l
	} else {
		r.log = func(format string, v ...interface{}) {}
	}
}

// Error returns any persistent error that may have been encountered.
func (r *Radio) Error() error { return r.err }

// setMode changes the radio's operating mode and waits for the new mode to be reached.
func (r *Radio) setMode(mode byte) {
	mode = mode & 0x1c
	if r.mode == mode {
		return
	}
	r.writeReg(REG_OPMODE, mode)
	for i := 0; i < 1000; i++ {
		if val := r.readReg(REG_IRQFLAGS1); val&IRQ1_MODEREADY != 0 {
			r.mode = mode
			return
		}
	}
	r.err = errors.New("sx1231: timeout switching modes")
}

// logRegs is a debug helper function to print almost all the sx1231's registers.
func (r *Radio) logRegs() {
	var buf, regs [0x60]byte
	buf[0] = 1
	r.spi.Tx(buf[:], regs[:])
	regs[0] = 0
	r.log("     0  1  2  3  4  5  6  7  8  9  A  B  C  D  E  F")
	for i := 0; i < len(regs); i += 16 {
		line := fmt.Sprintf("%02x:", i)
		for j := 0; j < 16 && i+j < len(regs); j++ {
			line += fmt.Sprintf(" %02x", regs[i+j])
		}
		r.log(line)
	}
}

// writeReg writes one or multiple registers starting at addr, the sx1231 auto-increments (except
// for the FIFO register where that wouldn't be desirable).
func (r *Radio) writeReg(addr byte, data ...byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wBuf := make([]byte, len(data)+1)
	rBuf := make([]byte, len(data)+1)
	wBuf[0] = addr | 0x80
	copy(wBuf[1:], data)
	r.spi.Tx(wBuf, rBuf)
}

// readReg reads one register and returns its value.
func (r *Radio) readReg(addr byte) byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	var buf [2]byte
	r.spi.Tx([]byte{addr & 0x7f, 0}, buf[:])
	return buf[1]
}
