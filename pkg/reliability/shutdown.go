// Copyright 2025 The axfor Authors
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

package reliability

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"pollStore/pkg/log"
)

// ShutdownHook is run during one shutdown phase
type ShutdownHook func(ctx context.Context) error

// ShutdownPhase orders shutdown hooks
type ShutdownPhase int

const (
	// PhaseStopAccepting stops the listeners
	PhaseStopAccepting ShutdownPhase = iota
	// PhaseDrainConnections closes live connections and waits for their workers
	PhaseDrainConnections
	// PhasePersistState flushes anything still buffered
	PhasePersistState
	// PhaseCloseResources releases the rest
	PhaseCloseResources
)

// GracefulShutdown runs registered hooks phase by phase on SIGINT/SIGTERM
type GracefulShutdown struct {
	mu      sync.RWMutex
	hooks   map[ShutdownPhase][]ShutdownHook
	timeout time.Duration
	done    chan struct{}
	signals chan os.Signal
}

// NewGracefulShutdown creates a shutdown manager and subscribes to signals
func NewGracefulShutdown(timeout time.Duration) *GracefulShutdown {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	gs := &GracefulShutdown{
		hooks:   make(map[ShutdownPhase][]ShutdownHook),
		timeout: timeout,
		done:    make(chan struct{}),
		signals: make(chan os.Signal, 1),
	}

	signal.Notify(gs.signals, syscall.SIGTERM, syscall.SIGINT)

	return gs
}

// RegisterHook adds a hook to a phase
func (gs *GracefulShutdown) RegisterHook(phase ShutdownPhase, hook ShutdownHook) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	gs.hooks[phase] = append(gs.hooks[phase], hook)
}

// Wait blocks until a signal arrives or Shutdown is called elsewhere, then
// runs the shutdown if it has not run yet
func (gs *GracefulShutdown) Wait() {
	select {
	case sig := <-gs.signals:
		log.Info("Received shutdown signal",
			log.String("signal", sig.String()),
			log.Component("shutdown"))
		gs.Shutdown()
	case <-gs.done:
	}
	signal.Stop(gs.signals)
}

// Shutdown runs every phase in order. Hooks of one phase run concurrently;
// a failing phase does not stop later ones. It returns the combined errors.
func (gs *GracefulShutdown) Shutdown() error {
	gs.mu.Lock()
	select {
	case <-gs.done:
		gs.mu.Unlock()
		return nil
	default:
		close(gs.done)
	}
	gs.mu.Unlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), gs.timeout)
	defer cancel()

	phases := []ShutdownPhase{
		PhaseStopAccepting,
		PhaseDrainConnections,
		PhasePersistState,
		PhaseCloseResources,
	}

	var errs error
	for _, phase := range phases {
		phaseName := gs.phaseName(phase)
		log.Info("Shutdown phase started",
			log.Phase(phaseName),
			log.Component("shutdown"))

		gs.mu.RLock()
		hooks := gs.hooks[phase]
		gs.mu.RUnlock()

		if err := gs.executeHooks(ctx, hooks, phaseName); err != nil {
			log.Error("Shutdown phase failed",
				log.Phase(phaseName),
				log.Err(err),
				log.Component("shutdown"))
			errs = multierr.Append(errs, err)
		}
	}

	log.Info("Graceful shutdown completed",
		log.Duration("elapsed", time.Since(start)),
		log.Component("shutdown"))
	return errs
}

func (gs *GracefulShutdown) executeHooks(ctx context.Context, hooks []ShutdownHook, phaseName string) error {
	if len(hooks) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(hooks))

	for i, hook := range hooks {
		wg.Add(1)
		go func(idx int, h ShutdownHook) {
			defer wg.Done()
			defer RecoverPanicWith(fmt.Sprintf("shutdown-hook-%s-%d", phaseName, idx), func() {
				errChan <- fmt.Errorf("phase %s: hook %d panicked", phaseName, idx)
			})

			if err := h(ctx); err != nil {
				errChan <- fmt.Errorf("phase %s: hook %d: %w", phaseName, idx, err)
			}
		}(i, hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		close(errChan)
		var errs error
		for err := range errChan {
			errs = multierr.Append(errs, err)
		}
		return errs

	case <-ctx.Done():
		return fmt.Errorf("phase %s timeout: %w", phaseName, ctx.Err())
	}
}

func (gs *GracefulShutdown) phaseName(phase ShutdownPhase) string {
	switch phase {
	case PhaseStopAccepting:
		return "Stop Accepting"
	case PhaseDrainConnections:
		return "Drain Connections"
	case PhasePersistState:
		return "Persist State"
	case PhaseCloseResources:
		return "Close Resources"
	default:
		return fmt.Sprintf("Unknown Phase %d", phase)
	}
}

// Done is closed once shutdown has started
func (gs *GracefulShutdown) Done() <-chan struct{} {
	return gs.done
}

// IsShuttingDown reports whether shutdown has started
func (gs *GracefulShutdown) IsShuttingDown() bool {
	select {
	case <-gs.done:
		return true
	default:
		return false
	}
}
