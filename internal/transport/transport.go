// SPDX-License-Identifier: MIT

// Package transport delivers analysis results to whatever is visualising
// them. Everything that leaves the process goes through a Transport; the
// concrete implementations decide whether that means a log line or a
// WebSocket frame.
package transport

import (
	"errors"
	"time"
)

// ErrClosed is returned by Send once a transport has been closed.
var ErrClosed = errors.New("transport: closed")

// Message kinds sent by the command line tools.
const (
	KindReport   = "report"
	KindResponse = "response"
	KindSpectrum = "spectrum"
	KindResult   = "result"
)

// Transport sends arbitrary JSON-serialisable values.
type Transport interface {
	Send(data any) error
	Close() error
}

// Message is the envelope every transport payload travels in.
type Message struct {
	Kind      string    `json:"kind"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewMessage wraps payload in an envelope stamped with the current time.
func NewMessage(kind, source string, payload any) Message {
	return Message{
		Kind:      kind,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// Multi fans a message out to several transports. Every transport is tried;
// the returned error joins all failures.
type Multi []Transport

func (m Multi) Send(data any) error {
	var errs []error
	for _, t := range m {
		if err := t.Send(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, t := range m {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Transport = Multi(nil)
	_ Transport = (*LoggingTransport)(nil)
	_ Transport = (*WebSocketTransport)(nil)
)
