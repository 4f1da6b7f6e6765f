// Command tillsync runs the offline-sync core of a point-of-sale register.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/tillsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tillsync/internal/adapters/driven/connectivity"
	"github.com/custodia-labs/tillsync/internal/adapters/driven/metrics"
	"github.com/custodia-labs/tillsync/internal/adapters/driven/remote"
	"github.com/custodia-labs/tillsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tillsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/tillsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/tillsync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
	"github.com/custodia-labs/tillsync/internal/core/services"
	"github.com/custodia-labs/tillsync/internal/logger"
)

// version is set at build time.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "tillsync: config: %v\n", err)
		return 1
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tillsync: settings: %v\n", err)
		return 1
	}

	var (
		store     driven.OfflineStore
		replayLog driven.ReplayLog
	)
	if db, err := sqlite.Open(settings.DataDir); err != nil {
		logger.Error("storage unavailable, running in memory: %v", err)
		store = memory.NewStore()
	} else {
		store = db
		replayLog = db.ReplayLog()
	}
	defer store.Close()

	var api driven.RemoteAPI
	client, err := remote.NewClient(remote.Config{
		BaseURL:           settings.API.BaseURL,
		Token:             settings.API.Token,
		Timeout:           settings.API.Timeout,
		RequestsPerSecond: settings.API.RequestsPerSecond,
		Burst:             settings.API.Burst,
	})
	if err != nil {
		logger.Error("remote API disabled, sales will queue: %v", err)
	} else {
		api = client
	}

	source, err := connectivity.New(settings.Connectivity)
	if err != nil {
		logger.Error("connectivity source: %v, assuming always online", err)
		source = connectivity.NewNoop()
	}
	if c, ok := source.(io.Closer); ok {
		defer c.Close()
	}

	prom := metrics.NewPrometheus()

	offline := services.NewOfflineService(services.OfflineDeps{
		Store:           store,
		API:             api,
		Source:          source,
		Metrics:         prom,
		OnlineNoticeTTL: settings.OnlineNoticeTTL,
	})
	if err := offline.Open(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "tillsync: %v\n", err)
		return 1
	}
	defer offline.Close()

	svcs := cli.Services{
		Offline:         offline,
		Settings:        settingsService,
		SchedulerConfig: settings.Scheduler,
		Metrics:         prom.Handler(),
		ServerAddr:      settings.ServerAddr,
	}
	if replayLog != nil {
		svcs.Scheduler = services.NewScheduler(settings.Scheduler, replayLog, offline.Syncer())
	}
	if toggle, ok := source.(httpapi.ConnectivityToggle); ok {
		svcs.Toggle = toggle
	}
	cli.SetServices(svcs)

	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}
