package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"notepad/internal/notepad/ports/storage"
	"notepad/pkg/logger"
	"notepad/pkg/resilience"
)

// Ошибки запуска рабочего пространства.
var (
	ErrNoStore = errors.New("store is required")
	ErrStartup = errors.New("workspace startup failed")
)

// Options - параметры рабочего пространства.
type Options struct {
	// SeedWelcome создает приветственную заметку, если заметок нет.
	SeedWelcome bool
	// ShareBaseURL - адрес, к которому добавляется ?share=<id>.
	ShareBaseURL string
	// OpenShareID открывает общую заметку сразу после запуска.
	OpenShareID    string
	AutoSaveDelay  time.Duration
	MaxImportBytes int64
	StartupRetry   resilience.RetryConfig
}

// Workspace связывает реестры, согласование, импорт и автосохранение над одним хранилищем.
// Все операции реестров выполняются под одной общей блокировкой.
type Workspace struct {
	Notes      *NoteRegistry
	Folders    *FolderRegistry
	Reconciler *Reconciler
	Importer   *Importer
	AutoSave   *AutoSaver

	core      *core
	closeOnce sync.Once
	closeErr  error
}

// New создает рабочее пространство и загружает состояние: согласование коллекций с повторами,
// словарь тегов, приветственная заметка для пустого хранилища, выбор самой свежей заметки
// и, если задано, открытие общей заметки.
func New(ctx context.Context, deps Dependencies, opts Options) (*Workspace, error) {
	if deps.Store == nil {
		return nil, ErrNoStore
	}

	c := newCore(deps)
	c.shareBaseURL = opts.ShareBaseURL

	reconciler := &Reconciler{core: c}
	notes := &NoteRegistry{core: c}
	ws := &Workspace{
		Notes:      notes,
		Folders:    &FolderRegistry{core: c, reconciler: reconciler},
		Reconciler: reconciler,
		Importer:   NewImporter(notes, opts.MaxImportBytes),
		AutoSave:   NewAutoSaver(opts.AutoSaveDelay, notes.Save),
		core:       c,
	}

	if err := ws.start(ctx, opts); err != nil {
		return nil, err
	}
	return ws, nil
}

func (ws *Workspace) start(ctx context.Context, opts Options) error {
	log := logger.Log(ctx).With(zap.String("component", "workspace"))

	retry := resilience.NewRetry("workspace-startup", opts.StartupRetry)
	err := retry.Execute(ctx, func(ctx context.Context) error {
		ws.core.mu.Lock()
		defer ws.core.mu.Unlock()

		if _, err := ws.Reconciler.runLocked(ctx); err != nil {
			return err
		}
		return ws.Notes.loadTagsLocked(ctx)
	})
	if err != nil {
		log.Error(ctx, "workspace startup failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}

	ws.core.mu.Lock()
	if len(ws.core.notes) == 0 && opts.SeedWelcome {
		ws.Notes.seedWelcomeLocked(ctx)
	}
	if latest := ws.Notes.mostRecentLocked(); latest != nil {
		ws.Notes.selectLocked(ctx, latest)
	}
	noteCount, folderCount := len(ws.core.notes), len(ws.core.folders)
	ws.core.mu.Unlock()

	if opts.OpenShareID != "" {
		ws.Notes.OpenShared(ctx, opts.OpenShareID)
	}

	log.Info(ctx, "workspace ready", zap.Int("notes", noteCount), zap.Int("folders", folderCount))
	return nil
}

// loadTagsLocked читает словарь тегов и дополняет его тегами заметок. Ничего не записывает.
func (r *NoteRegistry) loadTagsLocked(ctx context.Context) error {
	data, err := r.store.Get(ctx, storage.KeyAllTags)
	if err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	tags, err := decodeTags(data)
	if err != nil {
		logger.Log(ctx).Warn(ctx, "stored tag vocabulary ignored", zap.Error(err))
		tags = nil
	}
	r.allTags = tags
	for _, n := range r.notes {
		r.addToVocabularyLocked(n.Tags...)
	}
	return nil
}

// Close выполняет отложенное автосохранение, запрещает новые и закрывает хранилище.
func (ws *Workspace) Close(ctx context.Context) error {
	ws.closeOnce.Do(func() {
		ws.closeErr = multierr.Combine(
			ws.AutoSave.Close(ctx),
			ws.core.store.Close(),
		)
		releaseShared(ws)
	})
	return ws.closeErr
}

var (
	sharedMu sync.Mutex
	shared   *Workspace
)

// Open возвращает общее для процесса рабочее пространство, создавая его при первом вызове.
// Последующие вызовы возвращают тот же экземпляр и игнорируют аргументы.
func Open(ctx context.Context, deps Dependencies, opts Options) (*Workspace, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		return shared, nil
	}
	ws, err := New(ctx, deps, opts)
	if err != nil {
		return nil, err
	}
	shared = ws
	return ws, nil
}

func releaseShared(ws *Workspace) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared == ws {
		shared = nil
	}
}
