// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"fmt"
	"sync"

	"eqlab/internal/log"
)

// LoggingTransport writes a one-line summary of every message to the log.
// It is the fallback when no network transport is configured.
type LoggingTransport struct {
	mu     sync.Mutex
	sent   int
	closed bool
}

func NewLoggingTransport() *LoggingTransport {
	return &LoggingTransport{}
}

func (lt *LoggingTransport) Send(data any) error {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	if lt.closed {
		return ErrClosed
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("transport: encode message: %w", err)
	}
	lt.sent++

	kind := fmt.Sprintf("%T", data)
	if msg, ok := data.(Message); ok {
		kind = msg.Kind
	}
	log.Debugf("LoggingTransport: message %d kind=%s size=%d bytes", lt.sent, kind, len(encoded))
	return nil
}

// Sent reports how many messages have been accepted.
func (lt *LoggingTransport) Sent() int {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return lt.sent
}

func (lt *LoggingTransport) Close() error {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	if !lt.closed {
		lt.closed = true
		log.Debugf("LoggingTransport: closed after %d messages", lt.sent)
	}
	return nil
}
