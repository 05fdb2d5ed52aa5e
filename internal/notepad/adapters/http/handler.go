// Package http содержит HTTP адаптер notepad на fiber.
package http

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	editoradapter "notepad/internal/notepad/adapters/editor"
	presenteradapter "notepad/internal/notepad/adapters/presenter"
	"notepad/internal/notepad/app"
	"notepad/internal/notepad/domain/entities"
	"notepad/pkg/logger"
	"notepad/pkg/resilience"
)

// Сообщения об ошибках запросов.
const (
	ErrMsgInvalidNoteID      = "invalid note id"
	ErrMsgInvalidFolderID    = "invalid folder id"
	ErrMsgInvalidRequestBody = "invalid request body"
	ErrMsgMissingFile        = "file is required"
	ErrMsgUnavailable        = "storage unavailable"
)

// HealthChecker проверяет доступность хранилища.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler обрабатывает HTTP-запросы поверх рабочего пространства.
type Handler struct {
	ws     *app.Workspace
	editor *editoradapter.Buffer
	hub    *presenteradapter.Hub
	health HealthChecker
}

// NewHandler создает обработчик. editor и hub должны быть теми же, что переданы в рабочее пространство.
func NewHandler(ws *app.Workspace, editor *editoradapter.Buffer, hub *presenteradapter.Hub, health HealthChecker) *Handler {
	return &Handler{ws: ws, editor: editor, hub: hub, health: health}
}

func parseNoteID(c fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, ErrMsgInvalidNoteID)
	}
	return id, nil
}

func parseFolderID(c fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, ErrMsgInvalidFolderID)
	}
	return id, nil
}

func bindBody(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, ErrMsgInvalidRequestBody)
	}
	return nil
}

// statusFor сопоставляет ошибки бизнес-логики с HTTP статусами.
func statusFor(err error) (int, string) {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.Is(err, app.ErrNoteNotFound), errors.Is(err, app.ErrFolderNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, app.ErrNoCurrentNote), errors.Is(err, app.ErrEditorMissing):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, app.ErrUnsupportedFileType):
		return fiber.StatusUnsupportedMediaType, err.Error()
	case errors.Is(err, app.ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, app.ErrPersist), errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, app.ErrWorkspaceClosed):
		return fiber.StatusServiceUnavailable, ErrMsgUnavailable
	default:
		return fiber.StatusInternalServerError, ErrMsgInternal
	}
}

// handleError отправляет ответ с ошибкой и логирует серверные ошибки.
func handleError(c fiber.Ctx, err error) error {
	code, message := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		ctx := requestContext(c)
		logger.Log(ctx).Error(ctx, "request error", zap.String("path", c.Path()), zap.Error(err))
	}
	if sendErr := c.Status(code).JSON(ErrorResponse{Error: message}); sendErr != nil {
		return fmt.Errorf("error sending error response: %w", sendErr)
	}
	return nil
}

func sendJSON(c fiber.Ctx, status int, body any) error {
	if err := c.Status(status).JSON(body); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

func sendFile(c fiber.Ctx, file entities.File) error {
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	if err := c.Status(fiber.StatusOK).Send(file.Data); err != nil {
		return fmt.Errorf("error sending file: %w", err)
	}
	return nil
}
