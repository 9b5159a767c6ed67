// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// Package monitor implements a bounded, timestamped debug-event buffer,
// generalized from a single debug-radio event log into the receiver's
// REP_MONITOR/REP_BITS/REP_LCDMON side channel (SPEC_FULL.md §4.8). Events
// can optionally be fanned out to an MQTT broker as they are pushed.
package monitor

import (
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type event struct {
	at  time.Time
	txt string
}

// Buffer retains recent debug lines and, if WithMQTT was called, fans each
// one out to a broker topic as it is pushed.
type Buffer struct {
	mu     sync.Mutex
	events []event
	cap    int

	mqttClient mqtt.Client
	mqttTopic  string
}

// New builds a Buffer that retains at most capacity events before the
// oldest are dropped.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 256
	}
	return &Buffer{cap: capacity}
}

// WithMQTT fans every pushed line out to topic on client, in addition to
// buffering it locally (SPEC_FULL.md §4.8 "REP_MONITOR may additionally fan
// debug lines out over MQTT").
func (b *Buffer) WithMQTT(client mqtt.Client, topic string) *Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mqttClient = client
	b.mqttTopic = topic
	return b
}

// Push appends txt to the buffer, timestamped now, and fans it out if an
// MQTT client is configured.
func (b *Buffer) Push(txt string) { b.PushAt(time.Now(), txt) }

// PushAt appends txt timestamped at, for callers replaying recorded events.
func (b *Buffer) PushAt(at time.Time, txt string) {
	b.mu.Lock()
	b.events = append(b.events, event{at, txt})
	if len(b.events) > b.cap {
		b.events = b.events[len(b.events)-b.cap:]
	}
	client, topic := b.mqttClient, b.mqttTopic
	b.mu.Unlock()

	if client != nil && client.IsConnected() {
		client.Publish(topic, 0, false, txt)
	}
}

// Lines renders every buffered event as "<seconds-since-first>s: <text>" and
// clears the buffer, mirroring the teacher's one-shot debug dump.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.events) == 0 {
		return nil
	}
	t0 := b.events[0].at
	out := make([]string, len(b.events))
	for i, ev := range b.events {
		out[i] = fmt.Sprintf("%.6fs: %s", ev.at.Sub(t0).Seconds(), ev.txt)
	}
	b.events = nil
	return out
}
