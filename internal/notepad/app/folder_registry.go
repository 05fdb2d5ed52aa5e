package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"notepad/internal/notepad/domain/entities"
	"notepad/internal/notepad/ports/presenter"
	"notepad/pkg/logger"
)

// DefaultFolderName подставляется для сохраненных папок без имени.
const DefaultFolderName = "Untitled Folder"

const exportContentType = "application/json"

// folderPalette - цвета папок, индекс выбирается хешем идентификатора.
var folderPalette = [...]string{
	"#4285F4", "#34A853", "#FBBC05", "#EA4335", "#9C27B0",
	"#E91E63", "#00BCD4", "#FF9800", "#607D8B", "#795548",
}

// FolderRegistry владеет папками и их операциями.
type FolderRegistry struct {
	*core
	reconciler *Reconciler
}

// Reload перечитывает обе коллекции после внешнего изменения хранилища и согласует их.
func (r *FolderRegistry) Reload(ctx context.Context) (ReconcileReport, error) {
	return r.reconciler.Run(ctx)
}

// Create создает папку. Пустое после обрезки имя игнорируется: возвращается nil без ошибки.
func (r *FolderRegistry) Create(ctx context.Context, name string) (*entities.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	folder := &entities.Folder{
		ID:      r.folderIDs.next(),
		Name:    name,
		Created: formatISO(r.now()),
	}
	r.folders = append(r.folders, folder)
	id := folder.ID
	r.currentFolder = &id

	logger.Log(ctx).Debug(ctx, "folder created", zap.Int64("folder_id", folder.ID))

	created := *folder
	if err := r.persistFoldersLocked(ctx); err != nil {
		return &created, err
	}
	r.notify(ctx, MsgFolderCreated, presenter.SeveritySuccess)
	return &created, nil
}

// Rename переименовывает папку. Пустое или прежнее имя ничего не меняет.
func (r *FolderRegistry) Rename(ctx context.Context, id int64, newName string) error {
	newName = strings.TrimSpace(newName)

	r.mu.Lock()
	defer r.mu.Unlock()

	_, folder := r.findFolderLocked(id)
	if folder == nil {
		return ErrFolderNotFound
	}
	if newName == "" || newName == folder.Name {
		return nil
	}

	folder.Name = newName
	if err := r.persistFoldersLocked(ctx); err != nil {
		return err
	}
	r.notify(ctx, MsgFolderRenamed, presenter.SeveritySuccess)
	return nil
}

// Delete удаляет папку. Заметки папки становятся заметками без папки; они сохраняются
// до удаления самой папки, и при ошибке этой записи ничего не меняется.
func (r *FolderRegistry) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, folder := r.findFolderLocked(id)
	if folder == nil {
		return ErrFolderNotFound
	}

	var released []*entities.Note
	for _, n := range r.notes {
		if n.InFolder(id) {
			n.FolderID = nil
			released = append(released, n)
		}
	}
	if len(released) > 0 {
		if err := r.persistNotesLocked(ctx); err != nil {
			for _, n := range released {
				folderID := id
				n.FolderID = &folderID
			}
			return err
		}
	}

	r.folders = append(r.folders[:idx], r.folders[idx+1:]...)
	if r.currentFolder != nil && *r.currentFolder == id {
		r.currentFolder = nil
	}

	logger.Log(ctx).Info(ctx, "folder deleted",
		zap.Int64("folder_id", id),
		zap.Int("released_notes", len(released)))

	if err := r.persistFoldersLocked(ctx); err != nil {
		return err
	}
	r.notify(ctx, MsgFolderDeleted, presenter.SeverityDelete)
	return nil
}

// Export сериализует папку и ее заметки в JSON с отступом в два пробела.
func (r *FolderRegistry) Export(ctx context.Context, id int64) (entities.File, error) {
	r.mu.Lock()
	_, folder := r.findFolderLocked(id)
	var doc entities.FolderExport
	if folder != nil {
		doc = entities.FolderExport{
			Folder:     *folder,
			Notes:      make([]entities.Note, 0),
			ExportDate: formatISO(r.now()),
		}
		for _, n := range r.notes {
			if n.InFolder(id) {
				doc.Notes = append(doc.Notes, n.Clone())
			}
		}
	}
	r.mu.Unlock()

	if folder == nil {
		return entities.File{}, ErrFolderNotFound
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return entities.File{}, fmt.Errorf("failed to encode folder export: %w", err)
	}

	r.notify(ctx, MsgFolderExported, presenter.SeveritySuccess)
	return entities.File{
		Name:        SanitizeFileName(doc.Folder.Name) + "_export.json",
		ContentType: exportContentType,
		Data:        data,
	}, nil
}

// NoteCount возвращает число заметок в папке.
func (r *FolderRegistry) NoteCount(id int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, n := range r.notes {
		if n.InFolder(id) {
			count++
		}
	}
	return count
}

// TotalNoteCount возвращает общее число заметок.
func (r *FolderRegistry) TotalNoteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

// Select делает папку текущей.
func (r *FolderRegistry) Select(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, f := r.findFolderLocked(id); f == nil {
		return ErrFolderNotFound
	}
	r.currentFolder = &id
	return nil
}

// SelectAll сбрасывает текущую папку: отображаются все заметки.
func (r *FolderRegistry) SelectAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentFolder = nil
}

// Current возвращает текущую папку.
func (r *FolderRegistry) Current() (entities.Folder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentFolder == nil {
		return entities.Folder{}, false
	}
	_, f := r.findFolderLocked(*r.currentFolder)
	if f == nil {
		return entities.Folder{}, false
	}
	return *f, true
}

// List возвращает папки в порядке создания.
func (r *FolderRegistry) List() []entities.Folder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.foldersSnapshotLocked()
}

// Get возвращает папку по идентификатору.
func (r *FolderRegistry) Get(id int64) (entities.Folder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, f := r.findFolderLocked(id)
	if f == nil {
		return entities.Folder{}, false
	}
	return *f, true
}

// Color возвращает постоянный цвет папки.
func Color(id int64) string {
	var hash int32
	for _, ch := range strconv.FormatInt(id, 10) {
		hash = (hash << 5) - hash + ch
	}
	idx := int(hash) % len(folderPalette)
	if idx < 0 {
		idx = -idx
	}
	return folderPalette[idx]
}
