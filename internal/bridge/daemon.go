// Copyright 2025 Arion Yau
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

package bridge

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"zapper/internal"
	"zapper/internal/config"
	"zapper/internal/logger"
)

// historyRetention is how long processed actions stay in the database
const historyRetention = 30 * 24 * time.Hour

// Daemon runs the bridge: device registry, history database and HTTP API
type Daemon struct {
	config   *config.Config
	registry *Registry
	database *Database
	api      *APIServer
	logger   zerolog.Logger
	running  bool
	mutex    sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	debug    bool
	test     bool
}

// NewDaemon creates a bridge daemon from a loaded configuration
func NewDaemon(cfg *config.Config, opts *internal.FnModeOptions) (*Daemon, error) {
	if opts == nil {
		opts = internal.NewModeOptions()
	}

	if cfg.Bridge.Auth.PasswordHash != "" && cfg.Bridge.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("bridge.auth.jwt_secret is required when a password hash is set")
	}

	ctx, cancel := context.WithCancel(context.Background())

	daemon := &Daemon{
		config: cfg,
		logger: logger.New(),
		ctx:    ctx,
		cancel: cancel,
		debug:  opts.Debug,
		test:   opts.Test,
	}

	daemon.registry = NewRegistry(cfg, opts)

	return daemon, nil
}

// Start brings the bridge up and blocks until a shutdown signal arrives
func (d *Daemon) Start() error {
	d.mutex.Lock()
	if d.running {
		d.mutex.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.running = true
	d.mutex.Unlock()

	d.logger.Info().
		Bool("debug", d.debug).
		Bool("test_mode", d.test).
		Msg("Starting bridge daemon")

	initCtx, cancel := context.WithTimeout(d.ctx, 30*time.Second)
	defer cancel()
	if err := d.registry.Initialize(initCtx); err != nil {
		return fmt.Errorf("failed to initialize devices: %w", err)
	}

	database, err := NewDatabase(d.config.Bridge.Database)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	d.database = database

	d.api = NewAPIServer(d.config, d.registry, d.database)

	errChan := make(chan error, 1)
	go func() {
		if err := d.api.Start(d.config.Bridge.Listen); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	go d.startMaintenance()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	d.logger.Info().
		Str("listen", d.config.Bridge.Listen).
		Int("device_count", d.registry.Count()).
		Msg("Bridge daemon started successfully")

	select {
	case sig := <-sigChan:
		d.logger.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		return d.Stop()
	case err := <-errChan:
		d.Stop()
		return fmt.Errorf("API server failed: %w", err)
	case <-d.ctx.Done():
		return d.Stop()
	}
}

// Stop shuts the bridge down gracefully
func (d *Daemon) Stop() error {
	d.mutex.Lock()
	if !d.running {
		d.mutex.Unlock()
		return nil
	}
	d.running = false
	d.mutex.Unlock()

	d.logger.Info().Msg("Stopping bridge daemon")

	d.cancel()

	if d.api != nil {
		if err := d.api.Stop(); err != nil {
			d.logger.Error().Err(err).Msg("Error stopping API server")
		}
	}

	d.registry.Shutdown()

	if d.database != nil {
		if err := d.database.Close(); err != nil {
			d.logger.Error().Err(err).Msg("Error closing history database")
		}
	}

	d.logger.Info().Msg("Bridge daemon stopped")
	return nil
}

// IsRunning returns whether the daemon is currently running
func (d *Daemon) IsRunning() bool {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.running
}

// startMaintenance purges old history entries once a day
func (d *Daemon) startMaintenance() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			purged, err := d.database.PurgeBefore(time.Now().Add(-historyRetention))
			if err != nil {
				d.logger.Warn().Err(err).Msg("History purge failed")
				continue
			}
			if purged > 0 {
				d.logger.Info().
					Int64("purged", purged).
					Msg("Purged old history entries")
			}
		case <-d.ctx.Done():
			return
		}
	}
}
