package http

import (
	"github.com/gofiber/fiber/v3"

	"notepad/internal/notepad/app"
)

// ListFolders возвращает папки со счетчиками и цветами.
func (h *Handler) ListFolders(c fiber.Ctx) error {
	folders := h.ws.Folders.List()

	resp := ListFoldersResponse{
		Folders:        make([]FolderResponse, 0, len(folders)),
		TotalNoteCount: h.ws.Folders.TotalNoteCount(),
		UnfiledCount:   len(h.ws.Notes.Unfiled()),
	}
	for _, f := range folders {
		resp.Folders = append(resp.Folders, FolderResponse{
			Folder:    f,
			NoteCount: h.ws.Folders.NoteCount(f.ID),
			Color:     app.Color(f.ID),
		})
	}
	if current, ok := h.ws.Folders.Current(); ok {
		resp.CurrentFolder = &current.ID
	}

	return sendJSON(c, fiber.StatusOK, resp)
}

// CreateFolder создает папку. Пустое имя игнорируется: ответ 204 без тела.
func (h *Handler) CreateFolder(c fiber.Ctx) error {
	var req FolderRequest
	if err := bindBody(c, &req); err != nil {
		return handleError(c, err)
	}

	folder, err := h.ws.Folders.Create(requestContext(c), req.Name)
	if err != nil {
		return handleError(c, err)
	}
	if folder == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return sendJSON(c, fiber.StatusCreated, FolderResponse{Folder: *folder, Color: app.Color(folder.ID)})
}

// RenameFolder переименовывает папку.
func (h *Handler) RenameFolder(c fiber.Ctx) error {
	id, err := parseFolderID(c)
	if err != nil {
		return handleError(c, err)
	}
	var req FolderRequest
	if err := bindBody(c, &req); err != nil {
		return handleError(c, err)
	}
	if err := h.ws.Folders.Rename(requestContext(c), id, req.Name); err != nil {
		return handleError(c, err)
	}

	folder, ok := h.ws.Folders.Get(id)
	if !ok {
		return handleError(c, app.ErrFolderNotFound)
	}
	return sendJSON(c, fiber.StatusOK, FolderResponse{
		Folder:    folder,
		NoteCount: h.ws.Folders.NoteCount(id),
		Color:     app.Color(id),
	})
}

// DeleteFolder удаляет папку, ее заметки становятся без папки.
func (h *Handler) DeleteFolder(c fiber.Ctx) error {
	id, err := parseFolderID(c)
	if err != nil {
		return handleError(c, err)
	}
	if err := h.ws.Folders.Delete(requestContext(c), id); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// FolderNotes возвращает заметки папки.
func (h *Handler) FolderNotes(c fiber.Ctx) error {
	id, err := parseFolderID(c)
	if err != nil {
		return handleError(c, err)
	}
	if _, ok := h.ws.Folders.Get(id); !ok {
		return handleError(c, app.ErrFolderNotFound)
	}
	return sendJSON(c, fiber.StatusOK, toNoteList(h.ws.Notes.FilterByFolder(id)))
}

// ExportFolder отдает папку и ее заметки JSON-файлом.
func (h *Handler) ExportFolder(c fiber.Ctx) error {
	id, err := parseFolderID(c)
	if err != nil {
		return handleError(c, err)
	}
	file, err := h.ws.Folders.Export(requestContext(c), id)
	if err != nil {
		return handleError(c, err)
	}
	return sendFile(c, file)
}

// SelectFolder делает папку текущей.
func (h *Handler) SelectFolder(c fiber.Ctx) error {
	id, err := parseFolderID(c)
	if err != nil {
		return handleError(c, err)
	}
	if err := h.ws.Folders.Select(id); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SelectAllFolders сбрасывает текущую папку.
func (h *Handler) SelectAllFolders(c fiber.Ctx) error {
	h.ws.Folders.SelectAll()
	return c.SendStatus(fiber.StatusNoContent)
}
