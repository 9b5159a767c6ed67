// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// Command culrecv polls a sub-GHz radio's OOK data-slicer pin for
// home-automation pulse trains, classifies them into FS20/FHT, HMS, EM,
// KS300, ESA, TX3, Revolt, Intertechno and TCM97001 frames, and writes
// deduplicated hex lines to a serial port, replacing the teacher command
// cmd/mqttradio's JeeLabs/LoRa packet-routing daemon (DESIGN.md).
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	fdevspi "github.com/daedaluz/goserial/spi"
	serial "github.com/daedaluz/goserial"

	"github.com/dclawin/culrecv"
	"github.com/dclawin/culrecv/config"
	"github.com/dclawin/culrecv/monitor"
	"github.com/dclawin/culrecv/sx1231"
)

func main() {
	configFile := flag.String("config", "culrecv.toml", "path to config file")
	metricsAddr := flag.String("metrics", "", "if set, serve Prometheus metrics on this address")
	flag.Parse()

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{ReportTimestamp: true})

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatal("cannot load config", "err", err)
	}
	if cfg.Debug {
		logger.SetLevel(charmlog.DebugLevel)
	}

	sink, err := serial.Open(cfg.Serial.Port, serial.NewOptions())
	if err != nil {
		logger.Fatal("cannot open serial sink", "port", cfg.Serial.Port, "err", err)
	}
	defer sink.Close()

	mon := monitor.New(256)
	if cfg.Mqtt.Host != "" {
		opts := mqtt.NewClientOptions().
			AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Mqtt.Host, cfg.Mqtt.Port)).
			SetClientID("culrecv").
			SetUsername(cfg.Mqtt.User).
			SetPassword(cfg.Mqtt.Password)
		client := mqtt.NewClient(opts)
		if token := client.Connect(); token.WaitTimeout(10*time.Second) && token.Error() != nil {
			logger.Fatal("cannot connect to MQTT broker", "err", token.Error())
		}
		mon = mon.WithMQTT(client, cfg.Mqtt.Topic)
		logger.Info("MQTT debug fan-out connected", "host", cfg.Mqtt.Host, "topic", cfg.Mqtt.Topic)
	}

	reg := prometheus.NewRegistry()
	metrics := culrecv.NewMetrics(reg)
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", "err", err)
			}
		}()
	}

	radio, err := openRadio(cfg.Radio, logger)
	if err != nil {
		logger.Fatal("cannot configure radio", "err", err)
	}

	recv := culrecv.New(
		culrecv.WithSink(sink),
		culrecv.WithMonitor(mon),
		culrecv.WithMetrics(metrics),
		culrecv.WithRadio(radio),
		culrecv.WithLogger(func(format string, v ...interface{}) {
			logger.Infof(format, v...)
		}),
	)
	recv.Configure(reportFlags(cfg.Reports))

	pin, err := culrecv.OpenEdgePin(cfg.Radio.DataPin, recv, nil)
	if err != nil {
		logger.Fatal("cannot open data pin", "pin", cfg.Radio.DataPin, "err", err)
	}
	defer pin.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("culrecv ready")
	if err := recv.RunRealtime(ctx, 5*time.Millisecond); err != nil && err != context.Canceled {
		logger.Error("receive loop stopped", "err", err)
	}
}

// openRadio opens the SPI device and brings up the sx1231 collaborator at
// the configured frequency, rate and sync bytes. The configured power is not
// applied; sx1231.New sets its own fixed output power.
func openRadio(rc config.RadioConfig, logger *charmlog.Logger) (*sx1231.Radio, error) {
	dev, err := fdevspi.Open(rc.SpiDev, &fdevspi.Config{
		Mode:  fdevspi.Mode(sx1231.SPIMode0),
		Bits:  8,
		Speed: 4000000,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open spi device %s: %w", rc.SpiDev, err)
	}

	rate := rc.Rate
	if _, ok := sx1231.Rates[rate]; !ok {
		rate = 50000
	}
	return sx1231.New(&spiAdapter{dev: dev}, sx1231.RadioOpts{
		Sync:    []byte(rc.Sync),
		Freq:    rc.Freq,
		Rate:    rate,
		PABoost: rc.PABoost,
		Logger: func(format string, v ...interface{}) {
			logger.Debugf(format, v...)
		},
	})
}

// reportFlags ORs the config file's per-bit report booleans into the
// tx_report byte Receiver.Configure expects (SPEC_FULL.md §6).
func reportFlags(rc config.ReportConfig) byte {
	var f byte
	if rc.Known {
		f |= culrecv.RepKnown
	}
	if rc.Repeated {
		f |= culrecv.RepRepeated
	}
	if rc.FHTProto {
		f |= culrecv.RepFHTProto
	}
	if rc.RSSI {
		f |= culrecv.RepRSSI
	}
	if rc.Bits {
		f |= culrecv.RepBits
	}
	if rc.Monitor {
		f |= culrecv.RepMonitor
	}
	if rc.BinTime {
		f |= culrecv.RepBinTime
	}
	if rc.LCDMon {
		f |= culrecv.RepLCDMon
	}
	return f
}
