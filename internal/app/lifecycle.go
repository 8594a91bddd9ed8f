package app

import (
	"context"
	"time"

	"github.com/dshills/keystrike/internal/observability"
)

// shutdownTimeout bounds metric collection at shutdown.
const shutdownTimeout = 5 * time.Second

// Shutdown stops Run, waits for the current cycle to finish and releases every resource in reverse
// initialization order. It is safe to call more than once.
func (app *Application) Shutdown() {
	app.closeMu.Lock()
	defer app.closeMu.Unlock()
	if !app.closed.CompareAndSwap(false, true) {
		return
	}
	close(app.done)
	app.loop.Wait()

	logger := app.logger
	if logger == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// 1. Stop watching the config file
	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			logger.Warn("closing config watcher", "error", err)
		}
	}

	// 2. Release every held key on the host
	if app.runtime != nil {
		app.runtime.ReleaseAll()
		observability.LogRunComplete(logger, app.runtime.Stats().Snapshot())
	}

	// 3. Close the behavior script
	if app.script != nil {
		if err := app.script.Close(); err != nil {
			logger.Warn("closing multitap script", "error", err)
		}
	}

	// 4. Metrics
	app.metrics.shutdown(ctx, logger)

	// 5. Storage, dropping uncommitted values
	if app.store != nil {
		if err := app.store.Close(); err != nil {
			logger.Warn("closing settings store", "error", err)
		}
	}

	if app.settings != nil {
		app.settings.Notifier().Close()
	}
}
