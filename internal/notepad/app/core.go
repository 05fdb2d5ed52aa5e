package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"notepad/internal/notepad/domain/entities"
	"notepad/internal/notepad/ports/editor"
	"notepad/internal/notepad/ports/presenter"
	"notepad/internal/notepad/ports/storage"
	"notepad/pkg/logger"
)

// Dependencies - внешние зависимости рабочего пространства.
type Dependencies struct {
	Store     storage.Store
	Presenter presenter.Presenter
	// Document может быть nil: тогда выбор заметки только меняет текущую, а Save возвращает ErrEditorMissing.
	Document editor.Document
	// Clock и RandIntN подменяются в тестах.
	Clock    func() time.Time
	RandIntN func(n int) int
}

// core - общее состояние обоих реестров. Все поля защищены mu;
// методы с суффиксом Locked ожидают, что mu уже захвачен.
type core struct {
	mu sync.Mutex

	store     storage.Store
	presenter presenter.Presenter
	doc       editor.Document
	now       func() time.Time
	randIntN  func(n int) int

	shareBaseURL string

	noteIDs   *idAllocator
	folderIDs *idAllocator
	codec     *collectionCodec

	// notes хранятся в порядке вставки: новые в начале.
	notes   []*entities.Note
	folders []*entities.Folder
	allTags []string

	currentNote   *entities.Note
	currentFolder *int64
	// injectedHeading - заголовок, добавленный в редактор при выборе текущей заметки.
	injectedHeading string

	// alerted подавляет повторные уведомления до следующей успешной записи.
	alerted bool
}

func newCore(deps Dependencies) *core {
	c := &core{
		store:     deps.Store,
		presenter: deps.Presenter,
		doc:       deps.Document,
		now:       deps.Clock,
		randIntN:  deps.RandIntN,
	}
	if c.presenter == nil {
		c.presenter = presenter.Nop{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.randIntN == nil {
		c.randIntN = rand.IntN
	}
	c.noteIDs = newIDAllocator(c.now)
	c.folderIDs = newIDAllocator(c.now)
	c.codec = &collectionCodec{notesIDs: c.noteIDs, folderIDs: c.folderIDs, now: c.now}
	return c
}

func (c *core) nowMillis() int64 {
	return c.now().UnixMilli()
}

func (c *core) findNoteLocked(id int64) (int, *entities.Note) {
	for i, n := range c.notes {
		if n.ID == id {
			return i, n
		}
	}
	return -1, nil
}

func (c *core) findFolderLocked(id int64) (int, *entities.Folder) {
	for i, f := range c.folders {
		if f.ID == id {
			return i, f
		}
	}
	return -1, nil
}

// sortedNotesLocked возвращает копии заметок по убыванию lastModified,
// при равенстве сохраняется порядок вставки.
func (c *core) sortedNotesLocked() []entities.Note {
	out := make([]entities.Note, len(c.notes))
	for i, n := range c.notes {
		out[i] = n.Clone()
	}
	slices.SortStableFunc(out, func(a, b entities.Note) int {
		switch {
		case a.LastModified > b.LastModified:
			return -1
		case a.LastModified < b.LastModified:
			return 1
		default:
			return 0
		}
	})
	return out
}

func (c *core) foldersSnapshotLocked() []entities.Folder {
	out := make([]entities.Folder, len(c.folders))
	for i, f := range c.folders {
		out[i] = *f
	}
	return out
}

func (c *core) persistNotesLocked(ctx context.Context) error {
	data, err := encodeNotes(c.notes)
	if err == nil {
		err = c.store.Set(ctx, storage.KeyNotes, data)
	}
	if err != nil {
		return c.persistFailedLocked(ctx, storage.KeyNotes, err)
	}
	c.alerted = false
	c.presenter.OnNotesChanged(ctx, c.sortedNotesLocked())
	return nil
}

func (c *core) persistFoldersLocked(ctx context.Context) error {
	data, err := encodeFolders(c.folders)
	if err == nil {
		err = c.store.Set(ctx, storage.KeyFolders, data)
	}
	if err != nil {
		return c.persistFailedLocked(ctx, storage.KeyFolders, err)
	}
	c.alerted = false
	c.presenter.OnFoldersChanged(ctx, c.foldersSnapshotLocked())
	return nil
}

func (c *core) persistTagsLocked(ctx context.Context) error {
	data, err := encodeTags(c.allTags)
	if err == nil {
		err = c.store.Set(ctx, storage.KeyAllTags, data)
	}
	if err != nil {
		return c.persistFailedLocked(ctx, storage.KeyAllTags, err)
	}
	c.alerted = false
	return nil
}

// persistFailedLocked логирует ошибку записи и один раз за серию сбоев уведомляет пользователя.
// Состояние в памяти не откатывается.
func (c *core) persistFailedLocked(ctx context.Context, key string, err error) error {
	logger.Log(ctx).Error(ctx, LogPersistFailed, zap.String("key", key), zap.Error(err))
	if !c.alerted {
		c.alerted = true
		c.presenter.Notify(ctx, MsgPersistFailed, presenter.SeverityError)
	}
	return fmt.Errorf("%w %q: %w", ErrPersist, key, err)
}

// refreshFoldersLocked просит перерисовать папки без записи, например после изменения счетчиков.
func (c *core) refreshFoldersLocked(ctx context.Context) {
	c.presenter.OnFoldersChanged(ctx, c.foldersSnapshotLocked())
}

func (c *core) notify(ctx context.Context, message string, severity presenter.Severity) {
	c.presenter.Notify(ctx, message, severity)
}
