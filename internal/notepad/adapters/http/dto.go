package http

import (
	"notepad/internal/notepad/app"
	"notepad/internal/notepad/domain/entities"
)

// CreateNoteRequest содержит данные для создания заметки.
type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateNoteRequest содержит новые заголовок и содержимое заметки.
type UpdateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// MoveNoteRequest переносит заметку в папку. Пустой folderId - вынести из папки.
type MoveNoteRequest struct {
	FolderID *int64 `json:"folderId"`
}

// TagRequest содержит один тег.
type TagRequest struct {
	Tag string `json:"tag"`
}

// SetTagsRequest заменяет теги заметки.
type SetTagsRequest struct {
	Tags []string `json:"tags"`
}

// EditorRequest - содержимое редактора.
type EditorRequest struct {
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// FolderRequest содержит имя папки.
type FolderRequest struct {
	Name string `json:"name"`
}

// NoteResponse - заметка с текстовым превью.
type NoteResponse struct {
	entities.Note
	Preview string `json:"preview"`
}

// ListNotesResponse содержит список заметок.
type ListNotesResponse struct {
	Notes      []NoteResponse `json:"notes"`
	TotalCount int            `json:"totalCount"`
}

// EditorResponse - состояние редактора.
type EditorResponse struct {
	Title           string `json:"title"`
	HTML            string `json:"html"`
	NoteID          *int64 `json:"noteId"`
	AutoSavePending bool   `json:"autoSavePending"`
}

// FolderResponse - папка со счетчиком заметок и цветом.
type FolderResponse struct {
	entities.Folder
	NoteCount int    `json:"noteCount"`
	Color     string `json:"color"`
}

// ListFoldersResponse содержит папки и общие счетчики.
type ListFoldersResponse struct {
	Folders        []FolderResponse `json:"folders"`
	CurrentFolder  *int64           `json:"currentFolder"`
	TotalNoteCount int              `json:"totalNoteCount"`
	UnfiledCount   int              `json:"unfiledCount"`
}

// PopularTagsResponse содержит самые используемые теги.
type PopularTagsResponse struct {
	Tags []app.TagCount `json:"tags"`
}

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

func toNoteResponse(n entities.Note) NoteResponse {
	return NoteResponse{Note: n, Preview: app.Preview(n.Content)}
}

func toNoteList(notes []entities.Note) ListNotesResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	return ListNotesResponse{Notes: out, TotalCount: len(out)}
}
