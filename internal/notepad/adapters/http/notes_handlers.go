package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notepad/internal/notepad/domain/entities"
	"notepad/pkg/logger"
)

// Константы для логирования обработчиков заметок.
const (
	LogHandlerCreateNote = "handling create note request"
	LogHandlerUpdateNote = "handling update note request"
	LogHandlerDeleteNote = "handling delete note request"
	LogHandlerImportNote = "handling import note request"

	unfiledFolder = "unfiled"
)

// ListNotes возвращает заметки: по папке (?folder=<id>|unfiled), по тегу (?tag=)
// или по строке поиска (?q=, поддерживает префикс tag:).
func (h *Handler) ListNotes(c fiber.Ctx) error {
	var notes []entities.Note

	switch folder, tag := c.Query("folder"), c.Query("tag"); {
	case folder == unfiledFolder:
		notes = h.ws.Notes.Unfiled()
	case folder != "":
		id, err := strconv.ParseInt(folder, 10, 64)
		if err != nil {
			return handleError(c, fiber.NewError(fiber.StatusBadRequest, ErrMsgInvalidFolderID))
		}
		notes = h.ws.Notes.FilterByFolder(id)
	case tag != "":
		notes = h.ws.Notes.FilterByTag(tag)
	default:
		notes = h.ws.Notes.Search(c.Query("q"))
	}

	return sendJSON(c, fiber.StatusOK, toNoteList(notes))
}

// CreateNote создает заметку и делает ее текущей.
func (h *Handler) CreateNote(c fiber.Ctx) error {
	ctx := requestContext(c)
	log := logger.Log(ctx).With(zap.String("handler", "Handler.CreateNote"))
	log.Debug(ctx, LogHandlerCreateNote)

	var req CreateNoteRequest
	if len(c.Body()) > 0 {
		if err := bindBody(c, &req); err != nil {
			return handleError(c, err)
		}
	}

	note, err := h.ws.Notes.Create(ctx, req.Title, req.Content)
	if err != nil {
		return handleError(c, err)
	}
	return sendJSON(c, fiber.StatusCreated, toNoteResponse(*note))
}

// GetNote возвращает заметку по id.
func (h *Handler) GetNote(c fiber.Ctx) error {
	id, err := parseNoteID(c)
	if err != nil {
		return handleError(c, err)
	}
	note, ok := h.ws.Notes.Get(id)
	if !ok {
		return handleError(c, fiber.NewError(fiber.StatusNotFound, "note not found"))
	}
	return sendJSON(c, fiber.StatusOK, toNoteResponse(note))
}

// CurrentNote возвращает выбранную заметку.
func (h *Handler) CurrentNote(c fiber.Ctx) error {
	note, ok := h.ws.Notes.Current()
	if !ok {
		return handleError(c, fiber.NewError(fiber.StatusNotFound, "no note selected"))
	}
	return sendJSON(c, fiber.StatusOK, toNoteResponse(note))
}

// UpdateNote выбирает заметку, переносит данные в редактор и сохраняет ее.
func (h *Handler) UpdateNote(c fiber.Ctx) error {
	ctx := requestContext(c)
	log := logger.Log(ctx).With(zap.String("handler", "Handler.UpdateNote"))
	log.Debug(ctx, LogHandlerUpdateNote)

	id, err := parseNoteID(c)
	if err != nil {
		return handleError(c, err)
	}
	var req UpdateNoteRequest
	if err := bindBody(c, &req); err != nil {
		return handleError(c, err)
	}

	if err := h.ws.Notes.Select(ctx, id); err != nil {
		return handleError(c, err)
	}
	h.editor.Replace(req.Title, req.Content)
	h.ws.AutoSave.Stop()
	if err := h.ws.Notes.Save(ctx, false); err != nil {
		return handleError(c, err)
	}

	note, _ := h.ws.Notes.Get(id)
	return sendJSON(c, fiber.StatusOK, toNoteResponse(note))
}

// DeleteNote удаляет заметку.
func (h *Handler) DeleteNote(c fiber.Ctx) error {
	ctx := requestContext(c)
	logger.Log(ctx).Debug(ctx, LogHandlerDeleteNote)

	id, err := parseNoteID(c)
	if err != nil {
		return handleError(c, err)
	}
	if err := h.ws.Notes.Delete(ctx, id); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SelectNote делает заметку текущей и возвращает состояние редактора.
func (h *Handler) SelectNote(c fiber.Ctx) error {
	id, err := parseNoteID(c)
	if err != nil {
		return handleError(c, err)
	}
	if err := h.ws.Notes.Select(requestContext(c), id); err != nil {
		return handleError(c, err)
	}
	return h.GetEditor(c)
}

// MoveNote переносит заметку в папку или выносит из нее.
func (h *Handler) MoveNote(c fiber.Ctx) error {
	id, err := parseNoteID(c)
	if err != nil {
		return handleError(c, err)
	}
	var req MoveNoteRequest
	if err := bindBody(c, &req); err != nil {
		return handleError(c, err)
	}
	if err := h.ws.Notes.MoveToFolder(requestContext(c), id, req.FolderID); err != nil {
		return handleError(c, err)
	}
	note, _ := h.ws.Notes.Get(id)
	return sendJSON(c, fiber.StatusOK, toNoteResponse(note))
}

// AddTag добавляет тег заметке.
func (h *Handler) AddTag(c fiber.Ctx) error {
	id, err := parseNoteID(c)
	if err != nil {
		return handleError(c, err)
	}
	var req TagRequest
	if err := bindBody(c, &req); err != nil {
		return handleError(c, err)
	}
	if err := h.ws.Notes.AddTag(requestContext(c), id, req.Tag); err != nil {
		return handleError(c, err)
	}
	note, _ := h.ws.Notes.Get(id)
	return sendJSON(c, fiber.StatusOK, toNoteResponse(note))
}

// RemoveTag удаляет тег у заметки.
func (h *Handler) RemoveTag(c fiber.Ctx) error {
	id, err := parseNoteID(c)
	if err != nil {
		return handleError(c, err)
	}
	if err := h.ws.Notes.RemoveTag(requestContext(c), id, c.Params("tag")); err != nil {
		return handleError(c, err)
	}
	note, _ := h.ws.Notes.Get(id)
	return sendJSON(c, fiber.StatusOK, toNoteResponse(note))
}

// SetTags заменяет теги заметки.
func (h *Handler) SetTags(c fiber.Ctx) error {
	id, err := parseNoteID(c)
	if err != nil {
		return handleError(c, err)
	}
	var req SetTagsRequest
	if err := bindBody(c, &req); err != nil {
		return handleError(c, err)
	}
	if err := h.ws.Notes.SetTags(requestContext(c), id, req.Tags); err != nil {
		return handleError(c, err)
	}
	note, _ := h.ws.Notes.Get(id)
	return sendJSON(c, fiber.StatusOK, toNoteResponse(note))
}

// ShareNote выдает ссылку на заметку.
func (h *Handler) ShareNote(c fiber.Ctx) error {
	id, err := parseNoteID(c)
	if err != nil {
		return handleError(c, err)
	}
	link, err := h.ws.Notes.Share(requestContext(c), id)
	if err != nil {
		return handleError(c, err)
	}
	return sendJSON(c, fiber.StatusOK, link)
}

// DownloadNote отдает заметку текстовым файлом.
func (h *Handler) DownloadNote(c fiber.Ctx) error {
	id, err := parseNoteID(c)
	if err != nil {
		return handleError(c, err)
	}
	file, err := h.ws.Notes.Download(requestContext(c), id)
	if err != nil {
		return handleError(c, err)
	}
	return sendFile(c, file)
}

// ImportNote создает заметку из загруженного файла (поле формы "file").
func (h *Handler) ImportNote(c fiber.Ctx) error {
	ctx := requestContext(c)
	log := logger.Log(ctx).With(zap.String("handler", "Handler.ImportNote"))
	log.Debug(ctx, LogHandlerImportNote)

	header, err := c.FormFile("file")
	if err != nil {
		return handleError(c, fiber.NewError(fiber.StatusBadRequest, ErrMsgMissingFile))
	}
	file, err := header.Open()
	if err != nil {
		return handleError(c, fmt.Errorf("failed to open uploaded file: %w", err))
	}
	defer file.Close()

	note, err := h.ws.Importer.Import(ctx, header.Filename, file)
	if err != nil {
		log.Warn(ctx, "import failed", zap.String("file", header.Filename), zap.Error(err))
		return handleError(c, err)
	}
	return sendJSON(c, fiber.StatusCreated, toNoteResponse(*note))
}

// GetShared возвращает заметку по shareId, не меняя текущую.
func (h *Handler) GetShared(c fiber.Ctx) error {
	note, ok := h.ws.Notes.FindShared(c.Params("shareId"))
	if !ok {
		return handleError(c, fiber.NewError(fiber.StatusNotFound, "shared note not found"))
	}
	return sendJSON(c, fiber.StatusOK, toNoteResponse(note))
}

// OpenShared делает общую заметку текущей.
func (h *Handler) OpenShared(c fiber.Ctx) error {
	note, ok := h.ws.Notes.OpenShared(requestContext(c), c.Params("shareId"))
	if !ok {
		return handleError(c, fiber.NewError(fiber.StatusNotFound, "shared note not found"))
	}
	return sendJSON(c, fiber.StatusOK, toNoteResponse(note))
}
