package app

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"notepad/internal/notepad/domain/entities"
)

// DefaultPopularTags - размер списка популярных тегов по умолчанию.
const DefaultPopularTags = 10

// TagCount - тег и количество заметок с ним.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// normalizeTags обрезает пробелы, убирает пустые значения и повторы, сохраняя порядок.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

// addToVocabularyLocked добавляет новые теги в словарь и сообщает, изменился ли он.
func (c *core) addToVocabularyLocked(tags ...string) bool {
	changed := false
	for _, t := range tags {
		if !slices.Contains(c.allTags, t) {
			c.allTags = append(c.allTags, t)
			changed = true
		}
	}
	return changed
}

// AddTag добавляет тег заметке. Пустой тег или уже имеющийся игнорируются.
func (r *NoteRegistry) AddTag(ctx context.Context, noteID int64, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, note := r.findNoteLocked(noteID)
	if note == nil {
		return ErrNoteNotFound
	}
	if note.HasTag(tag) {
		return nil
	}

	note.Tags = append(note.Tags, tag)
	return r.persistTagChangeLocked(ctx, tag)
}

// RemoveTag убирает тег у заметки. Словарь тегов не меняется.
func (r *NoteRegistry) RemoveTag(ctx context.Context, noteID int64, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, note := r.findNoteLocked(noteID)
	if note == nil {
		return ErrNoteNotFound
	}
	idx := slices.Index(note.Tags, tag)
	if idx < 0 {
		return nil
	}

	note.Tags = slices.Delete(note.Tags, idx, idx+1)
	return r.persistNotesLocked(ctx)
}

// SetTags заменяет теги заметки.
func (r *NoteRegistry) SetTags(ctx context.Context, noteID int64, tags []string) error {
	tags = normalizeTags(tags)

	r.mu.Lock()
	defer r.mu.Unlock()

	_, note := r.findNoteLocked(noteID)
	if note == nil {
		return ErrNoteNotFound
	}
	if slices.Equal(note.Tags, tags) {
		return nil
	}

	note.Tags = tags
	return r.persistTagChangeLocked(ctx, tags...)
}

func (r *NoteRegistry) persistTagChangeLocked(ctx context.Context, tags ...string) error {
	if err := r.persistNotesLocked(ctx); err != nil {
		return err
	}
	if r.addToVocabularyLocked(tags...) {
		return r.persistTagsLocked(ctx)
	}
	return nil
}

// AllTags возвращает словарь тегов.
func (r *NoteRegistry) AllTags() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.allTags)
}

// PopularTags возвращает самые используемые теги. При равенстве теги идут по алфавиту.
func (r *NoteRegistry) PopularTags(limit int) []TagCount {
	if limit <= 0 {
		limit = DefaultPopularTags
	}

	r.mu.Lock()
	counts := make(map[string]int)
	for _, n := range r.notes {
		for _, t := range n.Tags {
			counts[t]++
		}
	}
	r.mu.Unlock()

	out := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		out = append(out, TagCount{Tag: tag, Count: count})
	}
	slices.SortFunc(out, func(a, b TagCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Tag, b.Tag)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FilterByTag возвращает заметки с точным совпадением тега.
func (r *NoteRegistry) FilterByTag(tag string) []entities.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filterLocked(func(n *entities.Note) bool { return n.HasTag(tag) })
}
