// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// Package config loads cmd/culrecv's TOML configuration file, adapted from
// the teacher command's Config/RadioConfig/ModuleConfig structs
// (cmd/mqttradio/main.go) to this module's own domain: one radio
// collaborator, one serial output sink, an optional MQTT debug fan-out, and
// the report-flag set passed to Receiver.Configure (SPEC_FULL.md §6). The
// protocol capability set is not part of the file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the root of culrecv's TOML configuration file.
type Config struct {
	Debug   bool
	Serial  SerialConfig
	Mqtt    MqttConfig
	Radio   RadioConfig
	Reports ReportConfig
}

// SerialConfig names the UART the hex-line frames are written to.
type SerialConfig struct {
	Port string
	Baud int
}

// MqttConfig is left with a zero Host to mean "no MQTT debug fan-out"; the
// broker is optional, unlike the teacher command's mandatory connection.
type MqttConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Topic    string
}

// RadioConfig describes the SPI bus and sx1231 register settings for the
// one radio collaborator cmd/culrecv drives (SPEC_FULL.md §6).
type RadioConfig struct {
	SpiDev  string `toml:"spi_dev"`
	Freq    uint32
	Sync    string
	Rate    uint32
	Power   int
	PABoost bool `toml:"pa_boost"`
	DataPin string `toml:"data_pin"`
}

// ReportConfig mirrors the tx_report bitfield at config-file granularity,
// one bool per bit (SPEC_FULL.md §6); cmd/culrecv ORs these into the byte
// Receiver.Configure expects.
type ReportConfig struct {
	Known    bool
	Repeated bool
	FHTProto bool
	RSSI     bool
	Bits     bool
	Monitor  bool
	BinTime  bool
	LCDMon   bool
}

// Load reads and parses a TOML config file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}
	c := &Config{}
	if err := toml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("config: cannot parse %s: %w", path, err)
	}
	return c, nil
}
