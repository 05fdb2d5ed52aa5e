package http

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	storageadapter "notepad/internal/notepad/adapters/storage"
	"notepad/internal/notepad/ports/storage"
	"notepad/pkg/logger"
	"notepad/pkg/resilience"
)

// GetEditor возвращает содержимое редактора и текущую заметку.
func (h *Handler) GetEditor(c fiber.Ctx) error {
	title, html := h.editor.Snapshot()
	resp := EditorResponse{
		Title:           title,
		HTML:            html,
		AutoSavePending: h.ws.AutoSave.Pending(),
	}
	if note, ok := h.ws.Notes.Current(); ok {
		resp.NoteID = &note.ID
	}
	return sendJSON(c, fiber.StatusOK, resp)
}

// PutEditor обновляет содержимое редактора и планирует автосохранение.
func (h *Handler) PutEditor(c fiber.Ctx) error {
	var req EditorRequest
	if err := bindBody(c, &req); err != nil {
		return handleError(c, err)
	}
	if _, ok := h.ws.Notes.Current(); !ok {
		return handleError(c, fiber.NewError(fiber.StatusConflict, "no note selected"))
	}

	h.editor.Replace(req.Title, req.HTML)
	if err := h.ws.AutoSave.Touch(requestContext(c)); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// SaveEditor сохраняет текущую заметку немедленно.
func (h *Handler) SaveEditor(c fiber.Ctx) error {
	h.ws.AutoSave.Stop()
	if err := h.ws.Notes.Save(requestContext(c), false); err != nil {
		return handleError(c, err)
	}
	note, _ := h.ws.Notes.Current()
	return sendJSON(c, fiber.StatusOK, toNoteResponse(note))
}

// ListTags возвращает словарь тегов.
func (h *Handler) ListTags(c fiber.Ctx) error {
	return sendJSON(c, fiber.StatusOK, fiber.Map{"tags": h.ws.Notes.AllTags()})
}

// PopularTags возвращает самые используемые теги (?limit=).
func (h *Handler) PopularTags(c fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "0"))
	if err != nil || limit < 0 {
		return handleError(c, fiber.NewError(fiber.StatusBadRequest, "invalid limit"))
	}
	return sendJSON(c, fiber.StatusOK, PopularTagsResponse{Tags: h.ws.Notes.PopularTags(limit)})
}

// Notifications возвращает уведомления с номером больше ?after=.
func (h *Handler) Notifications(c fiber.Ctx) error {
	after, err := strconv.ParseInt(c.Query("after", "0"), 10, 64)
	if err != nil {
		return handleError(c, fiber.NewError(fiber.StatusBadRequest, "invalid after"))
	}
	return sendJSON(c, fiber.StatusOK, fiber.Map{"notifications": h.hub.Recent(after)})
}

// Reconcile перечитывает хранилище и восстанавливает ссылочную целостность.
func (h *Handler) Reconcile(c fiber.Ctx) error {
	ctx := requestContext(c)
	report, err := h.ws.Folders.Reload(ctx)
	if err != nil {
		logger.Log(ctx).Error(ctx, "reconcile failed", zap.Error(err))
		return handleError(c, err)
	}
	return sendJSON(c, fiber.StatusOK, report)
}

// Health проверяет доступность хранилища.
func (h *Handler) Health(c fiber.Ctx) error {
	ctx := requestContext(c)
	if err := h.health.Ping(ctx); err != nil {
		logger.Log(ctx).Warn(ctx, "health check failed", zap.Error(err))
		return sendJSON(c, fiber.StatusServiceUnavailable, fiber.Map{"status": "unavailable"})
	}
	resp := fiber.Map{"status": "ok"}
	if store, ok := h.health.(storage.Store); ok {
		if state, wrapped := storageadapter.BreakerState(store); wrapped {
			resp["circuit"] = state.String()
			if state == resilience.StateOpen {
				resp["status"] = "degraded"
			}
		}
	}
	return sendJSON(c, fiber.StatusOK, resp)
}
