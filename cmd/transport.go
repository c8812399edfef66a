// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"errors"

	"eqlab/internal/log"
	"eqlab/internal/transport"

	"github.com/spf13/cobra"
)

// openTransport returns the logging transport, joined by a WebSocket
// broadcaster when an address is configured.
func (a *app) openTransport() (transport.Transport, *transport.WebSocketTransport, error) {
	logging := transport.NewLoggingTransport()
	if a.cfg.Transport.WSAddress == "" {
		return logging, nil, nil
	}

	ws, err := transport.NewWebSocketTransport(a.cfg.Transport.WSAddress)
	if err != nil {
		logging.Close()
		return nil, nil, err
	}
	return transport.Multi{logging, ws}, ws, nil
}

// publish delivers msgs through the configured transports. With a WebSocket
// address set it first waits up to --wait for a client to connect.
func (a *app) publish(cmd *cobra.Command, msgs ...transport.Message) error {
	t, ws, err := a.openTransport()
	if err != nil {
		return err
	}
	defer t.Close()

	if ws != nil && a.wait > 0 {
		ctx, cancel := context.WithTimeout(cmd.Context(), a.wait)
		err := ws.WaitForClients(ctx, 1)
		cancel()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Warnf("CLI: no WebSocket client after %s, sending anyway", a.wait)
		}
	}

	for _, msg := range msgs {
		if err := t.Send(msg); err != nil {
			return err
		}
	}
	return nil
}
