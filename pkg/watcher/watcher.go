// Package watcher polls external folders and starts workflows for newly
// detected files.
package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/validoc/validoc/pkg/eventbus"
	"github.com/validoc/validoc/pkg/events"
	"github.com/validoc/validoc/pkg/models"
	"github.com/validoc/validoc/pkg/persistence"
	"github.com/validoc/validoc/pkg/protocol"
)

const (
	defaultPollInterval = 30 * time.Second

	// maxConsecutiveErrors is the failure budget before a watcher stops
	// itself rather than hammering an unreachable backend.
	maxConsecutiveErrors = 10
)

// Config describes one polling loop.
type Config struct {
	PollInterval         time.Duration
	FolderID             string
	WorkflowDefinitionID string
	ProjectID            string
	FileExtensions       []string
}

// Starter is the slice of the engine the watcher needs.
type Starter interface {
	StartWorkflow(ctx context.Context, definitionID string, doc *models.ValidationDocument) (*models.WorkflowInstance, error)
}

// Manager owns the registry of running watchers. Each watcher polls
// independently; one watcher's failure never affects the others.
type Manager struct {
	engine      Starter
	files       protocol.FileService
	documents   protocol.DocumentService
	notifier    protocol.Notifier
	definitions persistence.DefinitionRepository
	eventBus    eventbus.EventPublisher
	logger      *slog.Logger

	mu       sync.Mutex
	watchers map[string]*watcher
}

type watcher struct {
	id     string
	config Config
	cancel context.CancelFunc
	done   chan struct{}

	// known and consecutiveErrors are only touched by the poll goroutine.
	known             map[string]bool
	consecutiveErrors int
}

func NewManager(engine Starter, files protocol.FileService, documents protocol.DocumentService, notifier protocol.Notifier, definitions persistence.DefinitionRepository, eventBus eventbus.EventPublisher, logger *slog.Logger) *Manager {
	return &Manager{
		engine:      engine,
		files:       files,
		documents:   documents,
		notifier:    notifier,
		definitions: definitions,
		eventBus:    eventBus,
		logger:      logger.With("module", "folder_watcher"),
		watchers:    make(map[string]*watcher),
	}
}

// Start performs the initial scan, marking every file already present as
// known without triggering workflows, then begins polling. Returns the
// generated watcher id.
func (m *Manager) Start(ctx context.Context, config Config) (string, error) {
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}

	items, err := m.files.ListFolderItems(ctx, config.FolderID)
	if err != nil {
		return "", err
	}

	known := make(map[string]bool, len(items))
	for _, item := range items {
		known[item.ID] = true
	}

	watchCtx, cancel := context.WithCancel(context.Background())

	w := &watcher{
		id:     uuid.New().String(),
		config: config,
		cancel: cancel,
		done:   make(chan struct{}),
		known:  known,
	}

	m.mu.Lock()
	m.watchers[w.id] = w
	m.mu.Unlock()

	m.logger.Info("Watcher started",
		"watcher_id", w.id,
		"folder_id", config.FolderID,
		"definition_id", config.WorkflowDefinitionID,
		"poll_interval", config.PollInterval,
		"known_files", len(known),
	)

	go m.run(watchCtx, w)

	return w.id, nil
}

// Stop cancels the watcher's polling loop and discards its state.
func (m *Manager) Stop(watcherID string) {
	m.mu.Lock()
	w, ok := m.watchers[watcherID]

	if ok {
		delete(m.watchers, watcherID)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	w.cancel()
	<-w.done

	m.logger.Info("Watcher stopped", "watcher_id", watcherID)
}

// StopAll stops every watcher; used on process shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.watchers))

	for id := range m.watchers {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Stop(id)
	}
}

// Running reports whether the watcher id is still registered.
func (m *Manager) Running(watcherID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.watchers[watcherID]

	return ok
}

// StartForActiveWorkflows bulk-starts a watcher for every active definition
// with auto-start enabled and a source folder configured.
func (m *Manager) StartForActiveWorkflows(ctx context.Context) ([]string, error) {
	definitions, err := m.definitions.Definitions(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0)

	for _, definition := range definitions {
		if definition.State != models.DefinitionStateActive {
			continue
		}

		if !definition.Settings.AutoStartOnUpload || definition.Settings.SourceFolderID == "" {
			continue
		}

		id, err := m.Start(ctx, Config{
			FolderID:             definition.Settings.SourceFolderID,
			WorkflowDefinitionID: definition.ID,
			ProjectID:            definition.ProjectID,
		})
		if err != nil {
			// One definition's unreachable folder must not block the rest.
			m.logger.Error("Failed to start watcher for definition",
				"definition_id", definition.ID,
				"folder_id", definition.Settings.SourceFolderID,
				"error", err,
			)

			continue
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// run is the poll loop. Cycles for the same watcher never overlap: the next
// tick is only consumed after the previous poll returns.
func (m *Manager) run(ctx context.Context, w *watcher) {
	defer close(w.done)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if stopped := m.poll(ctx, w); stopped {
				return
			}
		}
	}
}

// poll executes one cycle and reports whether the watcher stopped itself.
func (m *Manager) poll(ctx context.Context, w *watcher) bool {
	logger := m.logger.With("watcher_id", w.id, "folder_id", w.config.FolderID)

	items, err := m.files.ListFolderItems(ctx, w.config.FolderID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}

		w.consecutiveErrors++
		logger.Error("Poll failed", "error", err, "consecutive_errors", w.consecutiveErrors)

		m.publish(ctx, w.id, events.WatcherError{
			BaseEvent:         events.NewBaseEvent(events.WatcherErrorEvent, "", w.config.WorkflowDefinitionID),
			WatcherID:         w.id,
			FolderID:          w.config.FolderID,
			Error:             err.Error(),
			ConsecutiveErrors: w.consecutiveErrors,
		})

		if w.consecutiveErrors >= maxConsecutiveErrors {
			logger.Error("Too many consecutive poll failures, stopping watcher")

			m.mu.Lock()
			delete(m.watchers, w.id)
			m.mu.Unlock()

			m.publish(ctx, w.id, events.WatcherStopped{
				BaseEvent: events.NewBaseEvent(events.WatcherStoppedEvent, "", w.config.WorkflowDefinitionID),
				WatcherID: w.id,
				FolderID:  w.config.FolderID,
				Reason:    "consecutive poll failures",
			})

			return true
		}

		return false
	}

	w.consecutiveErrors = 0

	for _, item := range items {
		if w.known[item.ID] {
			continue
		}

		if !m.matchesExtension(w.config.FileExtensions, item.Extension) {
			continue
		}

		// Mark before processing so a failed start is not retried forever.
		w.known[item.ID] = true

		m.handleNewFile(ctx, logger, w, item)
	}

	return false
}

func (m *Manager) matchesExtension(extensions []string, extension string) bool {
	if len(extensions) == 0 {
		return true
	}

	for _, allowed := range extensions {
		if allowed == extension {
			return true
		}
	}

	return false
}

func (m *Manager) handleNewFile(ctx context.Context, logger *slog.Logger, w *watcher, item *models.FolderItem) {
	logger.Info("New file detected", "file_id", item.ID, "file_name", item.Name)

	doc := &models.ValidationDocument{
		ID:         uuid.New().String(),
		ProjectID:  w.config.ProjectID,
		FileID:     item.ID,
		FileName:   item.Name,
		Extension:  item.Extension,
		Size:       item.Size,
		FolderID:   w.config.FolderID,
		Status:     models.DocumentStatusPending,
		UploadedBy: item.UploadedBy,
		UploadedAt: item.UploadedAt,
	}

	if err := m.documents.CreateDocument(ctx, doc); err != nil {
		logger.Error("Failed to create document record", "file_id", item.ID, "error", err)

		return
	}

	if m.notifier != nil {
		err := m.notifier.Notify(ctx, protocol.Notification{
			UserID:  item.UploadedBy,
			Title:   "Validation started",
			Message: item.Name + " entered validation",
			Data:    map[string]any{"document_id": doc.ID},
		})
		if err != nil {
			logger.Warn("Failed to deliver notification", "error", err)
		}
	}

	m.publish(ctx, w.id, events.WatcherFileDetected{
		BaseEvent:  events.NewBaseEvent(events.WatcherFileDetectedEvent, "", w.config.WorkflowDefinitionID),
		WatcherID:  w.id,
		FolderID:   w.config.FolderID,
		FileID:     item.ID,
		FileName:   item.Name,
		DocumentID: doc.ID,
	})

	if _, err := m.engine.StartWorkflow(ctx, w.config.WorkflowDefinitionID, doc); err != nil {
		logger.Error("Failed to start workflow for file", "file_id", item.ID, "error", err)
	}
}

func (m *Manager) publish(ctx context.Context, key string, event eventbus.Event) {
	if m.eventBus == nil {
		return
	}

	if err := m.eventBus.Publish(ctx, key, event); err != nil {
		m.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
