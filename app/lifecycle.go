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
	"slices"
	"sync"
)

// ErrAlreadyStarted is returned by Start on an App that was started before.
var ErrAlreadyStarted = errors.New("app: already started")

type hooks struct {
	mu         sync.Mutex
	onStart    []func(context.Context) error
	onShutdown []func(context.Context)
}

// OnStart registers a hook run by Start before Startup is fired. Hooks run
// in registration order and the first error aborts startup. Registering
// after Start panics.
//
//	a.OnStart(func(ctx context.Context) error {
//	    return db.PingContext(ctx)
//	})
func (a *App) OnStart(fn func(context.Context) error) {
	if a.started.Load() {
		panic("app: cannot register hooks after start")
	}
	a.hooks.mu.Lock()
	defer a.hooks.mu.Unlock()
	a.hooks.onStart = append(a.hooks.onStart, fn)
}

// OnShutdown registers a hook run by Shutdown. Hooks run in reverse
// registration order and receive the shutdown context.
func (a *App) OnShutdown(fn func(context.Context)) {
	a.hooks.mu.Lock()
	defer a.hooks.mu.Unlock()
	a.hooks.onShutdown = append(a.hooks.onShutdown, fn)
}

// Start runs the OnStart hooks and fires Startup.
func (a *App) Start(ctx context.Context) error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	a.hooks.mu.Lock()
	startHooks := slices.Clone(a.hooks.onStart)
	a.hooks.mu.Unlock()

	for i, hook := range startHooks {
		if err := hook(ctx); err != nil {
			return fmt.Errorf("app: OnStart hook %d failed: %w", i, err)
		}
	}

	a.fire(ctx, Startup{})
	a.logger.InfoContext(ctx, "application started",
		"service", a.settings.Service.Name,
		"version", a.settings.Service.Version,
		"environment", a.settings.Service.Environment,
	)
	return nil
}

// Shutdown fires Shutdown, runs the OnShutdown hooks and stops what the
// App created itself. Only the first call has an effect.
func (a *App) Shutdown(ctx context.Context) error {
	if !a.stopped.CompareAndSwap(false, true) {
		return nil
	}

	a.fire(ctx, Shutdown{})

	a.hooks.mu.Lock()
	shutdownHooks := slices.Clone(a.hooks.onShutdown)
	a.hooks.mu.Unlock()

	for i := len(shutdownHooks) - 1; i >= 0; i-- {
		shutdownHooks[i](ctx)
	}

	a.logger.InfoContext(ctx, "application stopped")
	return a.closeOwned(ctx)
}

func (a *App) closeOwned(ctx context.Context) error {
	var errs []error
	if a.ownTracer && a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.logging != nil {
		if err := a.logging.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
