// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// HTTPHandler returns the App as an http.Handler, wrapped for cleartext
// HTTP/2 when h2c is enabled.
func (a *App) HTTPHandler() http.Handler {
	if a.h2c {
		return h2c.NewHandler(a, &http2.Server{
			IdleTimeout: a.settings.Server.IdleTimeout,
		})
	}
	return a
}

// Run listens on server.addr and serves until ctx is cancelled.
// Signal handling is left to the caller, typically via signal.NotifyContext.
func (a *App) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", a.settings.Server.Addr)
	if err != nil {
		return fmt.Errorf("app: listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve starts the App, serves ln until ctx is cancelled or the server
// fails, then shuts down gracefully within server.shutdowntimeout.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	if err := a.Start(ctx); err != nil {
		_ = ln.Close()
		return err
	}

	cfg := a.settings.Server
	server := &http.Server{
		Handler:           a.HTTPHandler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(a.logger.Handler(), slog.LevelWarn),
	}

	protocol := "HTTP/1.1"
	if a.h2c {
		protocol = "h2c"
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.InfoContext(ctx, "server listening",
			"address", ln.Addr().String(),
			"protocol", protocol,
		)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var errs []error
	select {
	case err := <-serverErr:
		errs = append(errs, fmt.Errorf("app: serve: %w", err))
	case <-ctx.Done():
		a.logger.InfoContext(ctx, "server shutting down", "reason", context.Cause(ctx))
	}

	// ctx is already done here, so shutdown gets a fresh deadline.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("app: server shutdown: %w", err))
	}
	if err := a.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
