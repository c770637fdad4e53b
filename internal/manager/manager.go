package manager

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fileforge/internal/audit"
	"fileforge/internal/config"
	"fileforge/internal/convert"
	"fileforge/internal/detect"
	"fileforge/internal/formats"
	"fileforge/internal/logging"
	"fileforge/internal/notifications"
	"fileforge/internal/queue"
	"fileforge/internal/security"
)

// Manager orchestrates job submission, validation ordering, concurrent
// execution, state transitions, and progress reporting.
type Manager struct {
	cfg        *config.Config
	store      *queue.Store
	registry   *formats.Registry
	detector   *detect.Detector
	scanner    security.Scanner
	converters *convert.Registry
	recorder   *audit.Recorder
	bus        *notifications.Bus
	logger     *slog.Logger

	pollInterval time.Duration
	jobTimeout   time.Duration
	workerCount  int

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Deps bundles the manager's collaborators.
type Deps struct {
	Store      *queue.Store
	Registry   *formats.Registry
	Detector   *detect.Detector
	Scanner    security.Scanner
	Converters *convert.Registry
	Recorder   *audit.Recorder
	Bus        *notifications.Bus
	Logger     *slog.Logger
}

// New constructs a job manager.
func New(cfg *config.Config, deps Deps) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	workerCount := cfg.Workers.Count
	if workerCount < 1 {
		workerCount = 1
	}
	return &Manager{
		cfg:          cfg,
		store:        deps.Store,
		registry:     deps.Registry,
		detector:     deps.Detector,
		scanner:      deps.Scanner,
		converters:   deps.Converters,
		recorder:     deps.Recorder,
		bus:          deps.Bus,
		logger:       logging.NewComponentLogger(logger, "manager"),
		pollInterval: time.Duration(cfg.Workers.QueuePollInterval) * time.Second,
		jobTimeout:   time.Duration(cfg.Workers.JobTimeout) * time.Second,
		workerCount:  workerCount,
	}
}

// Start launches the worker pool. Starting an already running manager is a
// no-op.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.running = true

	for i := 0; i < m.workerCount; i++ {
		m.wg.Add(1)
		go m.workerLoop(ctx, i)
	}
	m.logger.Info("worker pool started", logging.Int("workers", m.workerCount))
}

// Stop cancels the workers and waits for in-flight conversions to settle.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.logger.Info("worker pool stopped")
}

// Running reports whether the worker pool is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Bus exposes the notification bus for API wiring.
func (m *Manager) Bus() *notifications.Bus {
	return m.bus
}
