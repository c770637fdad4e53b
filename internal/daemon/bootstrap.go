package daemon

import (
	"fmt"

	"log/slog"

	"fileforge/internal/audit"
	"fileforge/internal/config"
	"fileforge/internal/convert"
	"fileforge/internal/detect"
	"fileforge/internal/formats"
	"fileforge/internal/manager"
	"fileforge/internal/notifications"
	"fileforge/internal/queue"
	"fileforge/internal/security"
	"fileforge/internal/services/archiver"
	"fileforge/internal/services/ffmpeg"
	"fileforge/internal/services/meshconv"
	"fileforge/internal/services/soffice"
)

// Bootstrap wires a full daemon from configuration: stores, scanner,
// converter registry with external tool clients, manager, and API server.
func Bootstrap(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap requires config")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}

	var ledger *audit.Log
	if cfg.Audit.Enabled {
		ledger, err = audit.Open(cfg)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("open audit ledger: %w", err)
		}
	}
	recorder := audit.NewRecorder(ledger, cfg.Audit.Enabled, logger)

	converters, err := buildConverters(cfg)
	if err != nil {
		if ledger != nil {
			ledger.Close()
		}
		store.Close()
		return nil, err
	}

	registry := formats.NewRegistry()
	mgr := manager.New(cfg, manager.Deps{
		Store:    store,
		Registry: registry,
		Detector: detect.New(registry),
		Scanner: security.NewScanner(security.Config{
			Enabled:       cfg.Security.Enabled,
			FlagArchives:  cfg.Security.FlagArchives,
			MinConfidence: float64(cfg.Security.MinConfidence) / 100,
		}),
		Converters: converters,
		Recorder:   recorder,
		Bus:        notifications.NewBus(cfg.Notifications.BufferCapacity),
		Logger:     logger,
	})

	return New(cfg, Components{
		Store:    store,
		Ledger:   ledger,
		Recorder: recorder,
		Registry: registry,
		Manager:  mgr,
		Logger:   logger,
	})
}

func buildConverters(cfg *config.Config) (*convert.Registry, error) {
	timeout := cfg.Workers.JobTimeout

	sofficeClient, err := soffice.New(cfg.Tools.Soffice, timeout)
	if err != nil {
		return nil, err
	}
	ffmpegClient, err := ffmpeg.New(cfg.Tools.FFmpeg, timeout)
	if err != nil {
		return nil, err
	}
	archiverClient, err := archiver.New(cfg.Tools.Zip, cfg.Tools.Unzip, cfg.Tools.Tar, timeout)
	if err != nil {
		return nil, err
	}
	meshClient, err := meshconv.New(cfg.Tools.Assimp, timeout)
	if err != nil {
		return nil, err
	}

	registry := convert.NewRegistry()
	registry.Register(convert.NewDocumentConverter(sofficeClient))
	registry.Register(convert.NewImageConverter())
	registry.Register(convert.NewMediaConverter(ffmpegClient))
	registry.Register(convert.NewArchiveConverter(archiverClient))
	registry.Register(convert.NewDataConverter())
	registry.Register(convert.NewModelConverter(meshClient))
	return registry, nil
}
