package app

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"notepad/internal/notepad/domain/entities"
	"notepad/internal/notepad/ports/presenter"
	"notepad/pkg/logger"
)

// ShareQueryParam - параметр ссылки с идентификатором общей заметки.
const ShareQueryParam = "share"

const (
	shareIDPrefix     = "note-"
	shareSuffixLength = 9
	base36Alphabet    = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// ShareLink - ссылка на заметку.
type ShareLink struct {
	ShareID string `json:"shareId"`
	URL     string `json:"url"`
}

// Share выдает заметке постоянный shareId при первом вызове и возвращает ссылку на нее.
func (r *NoteRegistry) Share(ctx context.Context, id int64) (ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, note := r.findNoteLocked(id)
	if note == nil {
		return ShareLink{}, ErrNoteNotFound
	}

	if note.ShareID == nil {
		shareID := r.newShareIDLocked()
		note.ShareID = &shareID
		if err := r.persistNotesLocked(ctx); err != nil {
			return ShareLink{}, err
		}
		logger.Log(ctx).Info(ctx, "share id assigned", zap.Int64("note_id", id), zap.String("share_id", shareID))
	}

	link, err := BuildShareURL(r.shareBaseURL, *note.ShareID)
	if err != nil {
		return ShareLink{}, err
	}
	r.notify(ctx, MsgShareReady, presenter.SeveritySuccess)
	return ShareLink{ShareID: *note.ShareID, URL: link}, nil
}

func (r *NoteRegistry) newShareIDLocked() string {
	var suffix strings.Builder
	suffix.Grow(shareSuffixLength)
	for range shareSuffixLength {
		suffix.WriteByte(base36Alphabet[r.randIntN(len(base36Alphabet))])
	}
	return shareIDPrefix + strconv.FormatInt(r.nowMillis(), 10) + "-" + suffix.String()
}

// BuildShareURL добавляет ?share=<id> к базовому адресу, сохраняя остальные параметры.
func BuildShareURL(base, shareID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid share base url: %w", err)
	}
	q := u.Query()
	q.Set(ShareQueryParam, shareID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FindShared ищет заметку по shareId.
func (r *NoteRegistry) FindShared(shareID string) (entities.Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if note := r.findSharedLocked(shareID); note != nil {
		return note.Clone(), true
	}
	return entities.Note{}, false
}

func (r *NoteRegistry) findSharedLocked(shareID string) *entities.Note {
	if shareID == "" {
		return nil
	}
	for _, n := range r.notes {
		if n.ShareID != nil && *n.ShareID == shareID {
			return n
		}
	}
	return nil
}

// OpenShared выбирает общую заметку. Отсутствие заметки - не ошибка:
// пользователь получает информационное уведомление.
func (r *NoteRegistry) OpenShared(ctx context.Context, shareID string) (entities.Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note := r.findSharedLocked(shareID)
	if note == nil {
		logger.Log(ctx).Info(ctx, "shared note not found", zap.String("share_id", shareID))
		r.notify(ctx, MsgSharedNotFound, presenter.SeverityInfo)
		return entities.Note{}, false
	}
	r.selectLocked(ctx, note)
	return note.Clone(), true
}
