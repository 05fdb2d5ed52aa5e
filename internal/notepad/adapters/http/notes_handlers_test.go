package http_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notepadhttp "notepad/internal/notepad/adapters/http"
	"notepad/internal/notepad/ports/storage"
)

func createNote(t *testing.T, s *testServer, title, content string) notepadhttp.NoteResponse {
	t.Helper()
	resp, body := s.do(t, http.MethodPost, "/api/v1/notes", notepadhttp.CreateNoteRequest{Title: title, Content: content})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decode[notepadhttp.NoteResponse](t, body)
}

func TestNotesCRUD(t *testing.T) {
	s := newTestServer(t)

	created := createNote(t, s, "First", "<p>hello world</p>")
	assert.Equal(t, "First", created.Title)
	assert.Equal(t, "hello world", created.Preview)
	assert.Empty(t, created.Tags)

	path := fmt.Sprintf("/api/v1/notes/%d", created.ID)

	resp, body := s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<p>hello world</p>", decode[notepadhttp.NoteResponse](t, body).Content)

	resp, body = s.do(t, http.MethodPut, path, notepadhttp.UpdateNoteRequest{Title: "Renamed", Content: "<p>changed</p>"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	updated := decode[notepadhttp.NoteResponse](t, body)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "<p>changed</p>", updated.Content)

	stored, err := s.store.Get(t.Context(), storage.KeyNotes)
	require.NoError(t, err)
	assert.Contains(t, string(stored), "Renamed")

	resp, body = s.do(t, http.MethodGet, "/api/v1/notes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[notepadhttp.ListNotesResponse](t, body)
	assert.Equal(t, 1, list.TotalCount)
	assert.Contains(t, string(body), `"totalCount":1`)

	resp, _ = s.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateNoteWithoutBody(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/v1/notes", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, "Untitled Note", decode[notepadhttp.NoteResponse](t, body).Title)

	resp, body = s.do(t, http.MethodGet, "/api/v1/notes/current", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Untitled Note", decode[notepadhttp.NoteResponse](t, body).Title)
}

func TestInvalidNoteID(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/api/v1/notes/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, notepadhttp.ErrMsgInvalidNoteID, decode[notepadhttp.ErrorResponse](t, body).Error)
}

func TestSearchAndTags(t *testing.T) {
	s := newTestServer(t)

	work := createNote(t, s, "Plan", "<p>quarterly plan</p>")
	createNote(t, s, "Groceries", "<p>milk</p>")

	resp, body := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/notes/%d/tags", work.ID), notepadhttp.TagRequest{Tag: "work"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, []string{"work"}, decode[notepadhttp.NoteResponse](t, body).Tags)

	resp, body = s.do(t, http.MethodGet, "/api/v1/notes?q=tag:work", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[notepadhttp.ListNotesResponse](t, body)
	require.Len(t, list.Notes, 1)
	assert.Equal(t, work.ID, list.Notes[0].ID)

	resp, body = s.do(t, http.MethodGet, "/api/v1/notes?q=MILK", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[notepadhttp.ListNotesResponse](t, body).Notes, 1)

	resp, body = s.do(t, http.MethodGet, "/api/v1/notes?tag=work", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[notepadhttp.ListNotesResponse](t, body).Notes, 1)

	resp, body = s.do(t, http.MethodGet, "/api/v1/tags", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"tags":["work"]}`, string(body))

	resp, body = s.do(t, http.MethodGet, "/api/v1/tags/popular?limit=5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"tags":[{"tag":"work","count":1}]}`, string(body))

	resp, body = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/notes/%d/tags/work", work.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[notepadhttp.NoteResponse](t, body).Tags)

	resp, body = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/notes/%d/tags", work.ID),
		notepadhttp.SetTagsRequest{Tags: []string{"b", " a ", "b"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, []string{"b", "a"}, decode[notepadhttp.NoteResponse](t, body).Tags)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/tags/popular?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestShareAndSharedLookup(t *testing.T) {
	s := newTestServer(t)
	note := createNote(t, s, "Shared", "<p>body</p>")

	resp, body := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/notes/%d/share", note.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	link := decode[struct {
		ShareID string `json:"shareId"`
		URL     string `json:"url"`
	}](t, body)
	assert.True(t, strings.HasPrefix(link.ShareID, "note-"))
	assert.Equal(t, "http://127.0.0.1:8080/?share="+link.ShareID, link.URL)

	resp, body = s.do(t, http.MethodGet, "/api/v1/shared/"+link.ShareID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, note.ID, decode[notepadhttp.NoteResponse](t, body).ID)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/shared/"+link.ShareID+"/open", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/shared/note-0-missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDownloadNote(t *testing.T) {
	s := newTestServer(t)
	note := createNote(t, s, "Trip: plan", "<p>pack bags</p>")

	resp, body := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/notes/%d/download", note.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".txt")
	assert.True(t, strings.HasPrefix(string(body), "Trip: plan\n"))
	assert.Contains(t, string(body), "pack bags")
}

func importRequest(t *testing.T, fileName, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes/import", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestImportNote(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.send(t, importRequest(t, "ideas.md", "# Ideas\n\n- **bold** move\n"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	note := decode[notepadhttp.NoteResponse](t, body)
	assert.Equal(t, "Ideas", note.Title)
	assert.Contains(t, note.Content, "<strong>bold</strong>")

	resp, _ = s.send(t, importRequest(t, "scan.pdf", "%PDF"))
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/notes/import", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEditorAutoSaveAndSave(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodPut, "/api/v1/editor", notepadhttp.EditorRequest{Title: "x", HTML: "y"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	note := createNote(t, s, "Draft", "<p>v1</p>")

	resp, body := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/notes/%d/select", note.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[notepadhttp.EditorResponse](t, body)
	require.NotNil(t, state.NoteID)
	assert.Equal(t, note.ID, *state.NoteID)
	assert.Equal(t, "Draft", state.Title)

	resp, _ = s.do(t, http.MethodPut, "/api/v1/editor", notepadhttp.EditorRequest{Title: "Draft", HTML: "<p>v2</p>"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.True(t, s.ws.AutoSave.Pending())

	resp, body = s.do(t, http.MethodPost, "/api/v1/editor/save", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "<p>v2</p>", decode[notepadhttp.NoteResponse](t, body).Content)
	assert.False(t, s.ws.AutoSave.Pending())

	resp, body = s.do(t, http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Note saved")
}
