package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notepad/internal/notepad/domain/entities"
	"notepad/internal/notepad/ports/storage"
	"notepad/pkg/logger"
)

// duplicateIDSpread - разброс случайного смещения при выдаче нового id дубликату папки.
const duplicateIDSpread = 1000

// ReconcileReport - итог прохода согласования.
type ReconcileReport struct {
	Scanned        int `json:"scanned"`
	Coerced        int `json:"coerced"`
	Dangling       int `json:"dangling"`
	Duplicates     int `json:"duplicates"`
	NotesWritten   int `json:"notesWritten"`
	FoldersWritten int `json:"foldersWritten"`
}

// Writes возвращает число записей в хранилище за проход.
func (r ReconcileReport) Writes() int {
	return r.NotesWritten + r.FoldersWritten
}

// Reconciler загружает обе коллекции и восстанавливает ссылочную целостность между ними.
type Reconciler struct {
	*core
}

// Run читает заметки и папки из хранилища, приводит типы, обнуляет ссылки на
// несуществующие папки и переназначает повторяющиеся id папок. Каждая коллекция
// записывается не более одного раза и только если что-то изменилось, поэтому
// повторный запуск без внешних изменений ничего не пишет.
func (r *Reconciler) Run(ctx context.Context) (ReconcileReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runLocked(ctx)
}

func (r *Reconciler) runLocked(ctx context.Context) (ReconcileReport, error) {
	log := logger.Log(ctx).With(zap.String("component", "reconciler"))
	var report ReconcileReport

	notes, noteCoercions, err := r.loadNotesLocked(ctx)
	if err != nil {
		return report, err
	}
	folders, folderCoercions, err := r.loadFoldersLocked(ctx)
	if err != nil {
		return report, err
	}

	report.Scanned = len(notes)
	report.Coerced = len(noteCoercions) + len(folderCoercions)
	for _, c := range append(noteCoercions, folderCoercions...) {
		logCoercion(ctx, log, c)
	}
	notesDirty := len(noteCoercions) > 0
	foldersDirty := len(folderCoercions) > 0

	// Новые id сверяются со всеми загруженными, иначе дубликат может занять id
	// папки, стоящей дальше в списке, и ее заметки молча сменят владельца.
	known := make(map[int64]struct{}, len(folders))
	for _, f := range folders {
		known[f.ID] = struct{}{}
	}
	first := make(map[int64]struct{}, len(folders))
	for _, f := range folders {
		if _, dup := first[f.ID]; !dup {
			first[f.ID] = struct{}{}
			continue
		}
		oldID := f.ID
		f.ID = r.mintFolderIDLocked(known)
		known[f.ID] = struct{}{}
		first[f.ID] = struct{}{}
		report.Duplicates++
		foldersDirty = true
		log.Warn(ctx, LogDuplicateFolder,
			zap.Int64("old_id", oldID),
			zap.Int64("new_id", f.ID),
			zap.String("name", f.Name))
	}

	for _, n := range notes {
		if n.FolderID == nil {
			continue
		}
		if _, ok := known[*n.FolderID]; !ok {
			log.Warn(ctx, LogDanglingFolderID,
				zap.Int64("note_id", n.ID),
				zap.Int64("folder_id", *n.FolderID))
			n.FolderID = nil
			report.Dangling++
			notesDirty = true
		}
	}

	r.installLocked(notes, folders)

	if notesDirty {
		if err := r.persistNotesLocked(ctx); err != nil {
			return report, err
		}
		report.NotesWritten = 1
	} else {
		r.presenter.OnNotesChanged(ctx, r.sortedNotesLocked())
	}

	if foldersDirty {
		if err := r.persistFoldersLocked(ctx); err != nil {
			return report, err
		}
		report.FoldersWritten = 1
	} else {
		r.refreshFoldersLocked(ctx)
	}

	log.Info(ctx, LogReconciled,
		zap.Int("scanned", report.Scanned),
		zap.Int("coerced", report.Coerced),
		zap.Int("dangling", report.Dangling),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("writes", report.Writes()))

	return report, nil
}

func (r *Reconciler) loadNotesLocked(ctx context.Context) ([]*entities.Note, []Coercion, error) {
	data, err := r.store.Get(ctx, storage.KeyNotes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load notes: %w", err)
	}
	notes, coercions, err := r.codec.decodeNotes(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	return notes, coercions, nil
}

func (r *Reconciler) loadFoldersLocked(ctx context.Context) ([]*entities.Folder, []Coercion, error) {
	data, err := r.store.Get(ctx, storage.KeyFolders)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load folders: %w", err)
	}
	folders, coercions, err := r.codec.decodeFolders(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode folders: %w", err)
	}
	return folders, coercions, nil
}

// mintFolderIDLocked выдает id вида now + случайное смещение, не занятый другими папками.
func (r *Reconciler) mintFolderIDLocked(taken map[int64]struct{}) int64 {
	id := r.nowMillis() + int64(r.randIntN(duplicateIDSpread))
	for {
		if _, busy := taken[id]; !busy {
			break
		}
		id++
	}
	r.folderIDs.observe(id)
	return id
}

// installLocked заменяет коллекции и переносит выбор на новые экземпляры.
func (r *Reconciler) installLocked(notes []*entities.Note, folders []*entities.Folder) {
	r.notes = notes
	r.folders = folders

	if r.currentNote != nil {
		_, r.currentNote = r.findNoteLocked(r.currentNote.ID)
		if r.currentNote == nil {
			r.injectedHeading = ""
		}
	}
	if r.currentFolder != nil {
		if _, f := r.findFolderLocked(*r.currentFolder); f == nil {
			r.currentFolder = nil
		}
	}
}

func logCoercion(ctx context.Context, log *logger.Logger, c Coercion) {
	fields := []zap.Field{
		zap.String("collection", c.Collection),
		zap.Int64("id", c.EntityID),
		zap.String("field", c.Field),
		zap.String("from", c.From),
		zap.String("to", c.To),
	}
	switch c.Field {
	case "folderId":
		log.Warn(ctx, LogFolderIDCoerced, fields...)
	case fieldEntry:
		log.Warn(ctx, LogEntryDropped, fields...)
	default:
		log.Info(ctx, LogFieldCoerced, fields...)
	}
}
