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

// Package app wires the record store, its files, the text server and the
// monitoring endpoints into one process.
package app

import (
	"context"
	"fmt"
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"pollStore/api/text"
	"pollStore/internal/filestore"
	"pollStore/internal/poll"
	"pollStore/internal/store"
	"pollStore/pkg/config"
	"pollStore/pkg/health"
	"pollStore/pkg/log"
	"pollStore/pkg/metrics"
	"pollStore/pkg/reliability"
)

// App is a configured poll server.
type App struct {
	cfg *config.Config

	files   *filestore.FileStore
	store   *store.Store
	handler *text.Handler
	server  *text.Server

	registry      *prometheus.Registry
	metrics       *metrics.Metrics
	health        *health.HealthServer
	metricsServer *metrics.MetricsServer
}

// New opens the data directory and loads every record. Unreadable records
// are logged and skipped.
func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.New(a.registry)

	files, err := filestore.Open(cfg.Server.DataDir, filestore.Options{Fsync: cfg.Server.Persistence.Fsync})
	if err != nil {
		return nil, fmt.Errorf("failed to open data dir: %w", err)
	}
	a.files = files

	a.store = store.New(files, store.Options{
		StrictWrites: cfg.Server.Persistence.StrictWrites,
		Metrics:      a.metrics,
	})
	loaded, err := a.store.Restore(files)
	if err != nil {
		for _, e := range multierr.Errors(err) {
			log.Warn("Record not loaded", log.Err(e), log.Component("app"))
		}
	}
	log.Info("Store ready",
		log.Count(loaded),
		log.String("data_dir", cfg.Server.DataDir),
		log.Bool("strict_writes", cfg.Server.Persistence.StrictWrites),
		log.Component("app"))

	a.handler = text.NewHandler(a.store, a.metrics)
	a.server, err = text.NewServer(text.ServerConfig{
		Handler:        a.handler,
		Address:        cfg.Server.ListenAddress,
		MaxMessageSize: cfg.Server.Limits.MaxMessageSize,
		RateLimitQPS:   cfg.Server.Limits.RateLimitQPS,
		RateLimitBurst: cfg.Server.Limits.RateLimitBurst,
		Metrics:        a.metrics,
	})
	if err != nil {
		return nil, err
	}

	a.health = health.NewHealthServer(log.GetLogger().Zap(), 0)
	a.health.RegisterChecker(health.NewStoreChecker("store", func(ctx context.Context) (string, error) {
		return fmt.Sprintf("%d surveys, %d votes",
			a.store.Count(poll.KindSurvey), a.store.Count(poll.KindVote)), nil
	}))
	for _, kind := range poll.Kinds {
		a.health.RegisterChecker(health.NewWritableDirChecker(kind.String()+"_dir", files.Dir(kind)))
	}
	a.health.RegisterChecker(health.NewDiskSpaceChecker("disk", files.DataDir(), 0, 95))

	return a, nil
}

// Start begins serving clients and, when enabled, the monitoring endpoints.
func (a *App) Start() error {
	if err := a.server.Start(); err != nil {
		return err
	}
	if a.cfg.Server.Monitoring.EnablePrometheus {
		a.metricsServer = metrics.ServeMetrics(a.cfg.Server.Monitoring.PrometheusAddress, a.registry, a.health, log.GetLogger().Zap())
	}
	return nil
}

// Addr is the bound client address.
func (a *App) Addr() net.Addr {
	return a.server.Addr()
}

// Store exposes the record store.
func (a *App) Store() *store.Store {
	return a.store
}

// Health exposes the health report source.
func (a *App) Health() *health.HealthServer {
	return a.health
}

// RegisterShutdown attaches the app's teardown to the shutdown phases.
func (a *App) RegisterShutdown(gs *reliability.GracefulShutdown) {
	gs.RegisterHook(reliability.PhaseStopAccepting, func(ctx context.Context) error {
		return a.server.StopAccepting()
	})
	gs.RegisterHook(reliability.PhaseDrainConnections, func(ctx context.Context) error {
		return a.server.Stop()
	})
	gs.RegisterHook(reliability.PhaseCloseResources, func(ctx context.Context) error {
		if a.metricsServer == nil {
			return nil
		}
		return a.metricsServer.Shutdown(ctx)
	})
	gs.RegisterHook(reliability.PhaseCloseResources, func(ctx context.Context) error {
		// stdout/stderr cannot be synced on some platforms
		log.Sync()
		return nil
	})
}

// Stop shuts everything down without going through signal handling.
func (a *App) Stop(ctx context.Context) error {
	err := a.server.Stop()
	if a.metricsServer != nil {
		err = multierr.Append(err, a.metricsServer.Shutdown(ctx))
	}
	return err
}
