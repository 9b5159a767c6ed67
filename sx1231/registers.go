// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package sx1231

// Register set trimmed to what this driver actually touches now that it configures the chip
// rather than running its own packet RX/TX state machine: the AFC/FEI measurement registers,
// the FIFO/packet-framing registers and the IRQ2/DIO bits that used to gate the interrupt-driven
// worker are gone along with that worker (DESIGN.md).
const (
	REG_OPMODE     = 0x01
	REG_DATAMODUL  = 0x02
	REG_BITRATEMSB = 0x03
	REG_FDEVMSB    = 0x05
	REG_FRFMSB     = 0x07
	REG_AFCCTRL    = 0x0B
	REG_VERSION    = 0x10
	REG_PALEVEL    = 0x11
	REG_RXBW       = 0x19
	REG_RSSIVALUE  = 0x24
	REG_IRQFLAGS1  = 0x27
	REG_SYNCCONFIG = 0x2E
	REG_SYNCVALUE1 = 0x2F
	REG_TESTPA1    = 0x5A
	REG_TESTPA2    = 0x5C
	REG_TESTAFC    = 0x71

	MODE_SLEEP   = 0 << 2
	MODE_STANDBY = 1 << 2
	MODE_FS      = 2 << 2
	MODE_RECEIVE = 4 << 2

	IRQ1_MODEREADY = 1 << 7

	DIO_MAPPING = 0x31

	// REG_DATAMODUL bit fields used by SetOOKMode: bits 6:5 select packet vs. continuous
	// framing, bits 4:3 select FSK vs. OOK modulation.
	dataModulTypeMask    = 0x18
	dataModulTypeOOK     = 0x08
	dataModulFramingMask = 0x60
	dataModulContinuous  = 0x60 // continuous mode, no bit synchronizer
)

// register values to initialize the chip, this array has pairs of <address, data>
var configRegs = []byte{
	0x01, 0x00, // OpMode = sleep
	0x11, 0x9F, // power output
	0x12, 0x09, // Pa ramp in 40us
	0x1E, 0x0C, // AfcAutoclearOn, AfcAutoOn
	0x25, DIO_MAPPING, // DioMapping1
	0x26, 0x07, // disable clkout
	0x29, 0xA8, // RssiThresh (A0=-80dB, B4=-90dB, B8=-92dB)
	0x2A, 0x00, // disable RxStart timeout
	0x2B, 0x40, // RssiTimeout after 2*64=128 bytes
	0x2D, 0x05, // PreambleSize = 5
	0x6F, 0x30, // RegTestDagc 20->improve AFC w/low-beta, 30->w/out low-beta offset

	// The settings below are now done dynamically in SetRate, SetFrequency and the sync bytes.
	//0x02, 0x00, // DataModul = packet mode, fsk
	//0x03, 0x02, // BitRateMsb, data rate = 49,261 khz
	//0x04, 0x8A, // BitRateLsb, divider = 32 MHz / 650
	//0x05, 0x02, // FdevMsb = 45 KHz
	//0x06, 0xE1, // FdevLsb = 45 KHz
	//0x19, 0x4A, // RxBw 100 KHz
	//0x1A, 0x42, // AfcBw 125 KHz
	//0x2E, 0x88, // SyncConfig = sync on, sync size = 2
	//0x2F, 0x2D, // SyncValue1 = 0x2D
	//0x71, 0x02, // RegTestAfc: low-beta opt

	// PacketConfig1/PayloadLength/FifoThresh/PacketConfig2 (0x37, 0x38, 0x3C, 0x3D) are gone:
	// they configured the chip's own FIFO-based packet framing, which this driver no longer
	// uses (culrecv reads the data pin directly, see pin.go).
}
