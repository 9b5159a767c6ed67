// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package main

import (
	fdevspi "github.com/daedaluz/goserial/spi"
)

// spiAdapter satisfies sx1231.SPI on top of daedaluz/fdev's ioctl-based SPI
// device, whose Tx signature (returns the read buffer rather than filling
// one supplied by the caller) differs from the teacher's own spi shim.
// Speed and Configure are fixed once at Open time via fdevspi.Config, so
// here they only record the requested values; they neither check them
// against the opened device nor re-program anything.
type spiAdapter struct {
	dev   *fdevspi.Device
	speed int64
	mode  int
	bits  int
}

func (a *spiAdapter) Tx(w, r []byte) error {
	read, err := a.dev.Tx(w)
	if err != nil {
		return err
	}
	copy(r, read)
	return nil
}

func (a *spiAdapter) Speed(hz int64) error {
	a.speed = hz
	return nil
}

func (a *spiAdapter) Configure(mode, bits int) error {
	a.mode, a.bits = mode, bits
	return nil
}

func (a *spiAdapter) Close() error { return a.dev.Close() }
