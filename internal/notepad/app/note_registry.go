package app

import (
	"context"
	"html"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"notepad/internal/notepad/domain/entities"
	"notepad/internal/notepad/ports/presenter"
	"notepad/pkg/logger"
)

// tagPrefix переключает поиск на точное совпадение одного тега.
const tagPrefix = "tag:"

// NoteRegistry владеет заметками текущей сессии.
type NoteRegistry struct {
	*core
}

// Create добавляет заметку в начало списка, сохраняет коллекцию и выбирает заметку.
// При ошибке записи заметка остается в памяти и возвращается вместе с ErrPersist.
func (r *NoteRegistry) Create(ctx context.Context, title, content string) (*entities.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note := r.newNoteLocked(title, content)
	r.notes = slices.Insert(r.notes, 0, note)

	logger.Log(ctx).Debug(ctx, "note created", zap.Int64("note_id", note.ID))

	err := r.persistNotesLocked(ctx)
	r.selectLocked(ctx, note)

	created := note.Clone()
	return &created, err
}

func (r *NoteRegistry) newNoteLocked(title, content string) *entities.Note {
	title = strings.TrimSpace(title)
	if title == "" {
		title = entities.DefaultNoteTitle
	}
	return &entities.Note{
		ID:           r.noteIDs.next(),
		Title:        title,
		Content:      content,
		LastModified: r.nowMillis(),
		Tags:         []string{},
	}
}

// Select делает заметку текущей и переносит ее в редактор.
func (r *NoteRegistry) Select(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, note := r.findNoteLocked(id)
	if note == nil {
		return ErrNoteNotFound
	}
	r.selectLocked(ctx, note)
	return nil
}

func (r *NoteRegistry) selectLocked(ctx context.Context, note *entities.Note) {
	r.currentNote = note
	r.injectedHeading = ""
	if r.doc == nil {
		logger.Log(ctx).Warn(ctx, LogEditorMissing, zap.Int64("note_id", note.ID))
		return
	}
	display, heading := withHeading(note.Title, note.Content)
	r.injectedHeading = heading
	r.doc.SetTitle(note.Title)
	r.doc.SetHTML(display)
}

var leadingHeading = regexp.MustCompile(`(?is)^\s*<h1(?:\s[^>]*)?>(.*?)</h1>`)

// withHeading добавляет заголовок h1 с названием заметки в начало содержимого, если
// содержимое не начинается с такого же заголовка, и возвращает добавленный фрагмент.
// Результат зависит только от сохраненных данных, поэтому повторный выбор ничего не дублирует.
func withHeading(title, content string) (string, string) {
	if m := leadingHeading.FindStringSubmatch(content); m != nil &&
		strings.TrimSpace(html.UnescapeString(m[1])) == strings.TrimSpace(title) {
		return content, ""
	}
	heading := "<h1>" + html.EscapeString(title) + "</h1>"
	return heading + content, heading
}

// Save переносит заголовок и содержимое редактора в текущую заметку и сохраняет коллекцию.
func (r *NoteRegistry) Save(ctx context.Context, silent bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := logger.Log(ctx)
	if r.currentNote == nil {
		log.Error(ctx, LogNoCurrentNote)
		return ErrNoCurrentNote
	}
	if r.doc == nil {
		log.Error(ctx, LogEditorMissing, zap.Int64("note_id", r.currentNote.ID))
		return ErrEditorMissing
	}

	title := strings.TrimSpace(r.doc.Title())
	if title == "" {
		title = entities.DefaultNoteTitle
	}
	// Заголовок, добавленный только для отображения, в заметку не попадает.
	content := r.doc.HTML()
	if r.injectedHeading != "" {
		content = strings.TrimPrefix(content, r.injectedHeading)
	}

	r.currentNote.Title = title
	r.currentNote.Content = content
	r.currentNote.LastModified = r.nowMillis()

	if err := r.persistNotesLocked(ctx); err != nil {
		return err
	}
	if !silent {
		r.notify(ctx, MsgNoteSaved, presenter.SeveritySuccess)
	}
	return nil
}

// Delete удаляет заметку. Если она была текущей, редактор очищается
// и выбирается самая свежая из оставшихся.
func (r *NoteRegistry) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, note := r.findNoteLocked(id)
	if note == nil {
		return ErrNoteNotFound
	}
	r.notes = slices.Delete(r.notes, idx, idx+1)

	err := r.persistNotesLocked(ctx)

	if r.currentNote == note {
		r.currentNote = nil
		r.injectedHeading = ""
		if r.doc != nil {
			r.doc.Clear()
		}
		if next := r.mostRecentLocked(); next != nil {
			r.selectLocked(ctx, next)
		}
	}
	if err != nil {
		return err
	}

	r.notify(ctx, MsgNoteDeleted, presenter.SeverityDelete)
	return nil
}

func (r *NoteRegistry) mostRecentLocked() *entities.Note {
	var best *entities.Note
	for _, n := range r.notes {
		if best == nil || n.LastModified > best.LastModified {
			best = n
		}
	}
	return best
}

// MoveToFolder - единственная точка изменения папки заметки. nil убирает заметку из папки.
func (r *NoteRegistry) MoveToFolder(ctx context.Context, id int64, folderID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, note := r.findNoteLocked(id)
	if note == nil {
		return ErrNoteNotFound
	}
	if folderID != nil {
		if _, f := r.findFolderLocked(*folderID); f == nil {
			return ErrFolderNotFound
		}
	}
	if sameFolder(note.FolderID, folderID) {
		return nil
	}

	if folderID != nil {
		target := *folderID
		note.FolderID = &target
	} else {
		note.FolderID = nil
	}

	if err := r.persistNotesLocked(ctx); err != nil {
		return err
	}
	r.refreshFoldersLocked(ctx)
	return nil
}

func sameFolder(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Search ищет подстроку без учета регистра в заголовке, содержимом и тегах.
// Запрос вида "tag:<name>" возвращает заметки с точно таким тегом.
func (r *NoteRegistry) Search(term string) []entities.Note {
	term = strings.TrimSpace(term)

	if len(term) >= len(tagPrefix) && strings.EqualFold(term[:len(tagPrefix)], tagPrefix) {
		if tag := strings.TrimSpace(term[len(tagPrefix):]); tag != "" {
			return r.FilterByTag(tag)
		}
	}

	needle := strings.ToLower(term)

	r.mu.Lock()
	defer r.mu.Unlock()

	if needle == "" {
		return r.sortedNotesLocked()
	}
	return r.filterLocked(func(n *entities.Note) bool {
		if strings.Contains(strings.ToLower(n.Title), needle) ||
			strings.Contains(strings.ToLower(n.Content), needle) {
			return true
		}
		for _, t := range n.Tags {
			if strings.Contains(strings.ToLower(t), needle) {
				return true
			}
		}
		return false
	})
}

// FilterByFolder возвращает заметки папки. Для несуществующей папки список пуст.
func (r *NoteRegistry) FilterByFolder(folderID int64) []entities.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filterLocked(func(n *entities.Note) bool { return n.InFolder(folderID) })
}

// Unfiled возвращает заметки без папки.
func (r *NoteRegistry) Unfiled() []entities.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filterLocked(func(n *entities.Note) bool { return n.FolderID == nil })
}

func (r *NoteRegistry) filterLocked(keep func(n *entities.Note) bool) []entities.Note {
	out := make([]entities.Note, 0)
	for _, n := range r.sortedNotesLocked() {
		if keep(&n) {
			out = append(out, n)
		}
	}
	return out
}

// List возвращает все заметки в порядке отображения.
func (r *NoteRegistry) List() []entities.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedNotesLocked()
}

// Get возвращает копию заметки.
func (r *NoteRegistry) Get(id int64) (entities.Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, note := r.findNoteLocked(id)
	if note == nil {
		return entities.Note{}, false
	}
	return note.Clone(), true
}

// Current возвращает текущую заметку.
func (r *NoteRegistry) Current() (entities.Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentNote == nil {
		return entities.Note{}, false
	}
	return r.currentNote.Clone(), true
}
