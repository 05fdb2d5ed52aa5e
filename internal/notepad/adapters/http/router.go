package http

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions - параметры маршрутизации.
type RouterOptions struct {
	// BaseContext - родительский контекст запросов, несет логгер.
	BaseContext context.Context
	// Gatherer - источник метрик для /metrics, nil отключает маршрут.
	Gatherer prometheus.Gatherer
	// RateLimit - запросов в секунду с одного IP, 0 отключает ограничение.
	RateLimit float64
	RateBurst int
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, h *Handler, opts RouterOptions) {
	base := opts.BaseContext
	if base == nil {
		base = context.Background()
	}

	// Middleware для всех запросов.
	app.Use(NewRequestContextMiddleware(base))
	app.Use(NewLoggerMiddleware())
	app.Use(NewRecoveryMiddleware())

	app.Get("/healthz", h.Health)
	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// API версии 1.
	apiV1 := app.Group("/api/v1")
	if opts.RateLimit > 0 {
		apiV1.Use(NewRateLimitMiddleware(NewRateLimiter(opts.RateLimit, opts.RateBurst)))
	}

	notes := apiV1.Group("/notes")
	notes.Get("/", h.ListNotes)
	notes.Post("/", h.CreateNote)
	notes.Get("/current", h.CurrentNote)
	notes.Post("/import", h.ImportNote)
	notes.Get("/:id", h.GetNote)
	notes.Put("/:id", h.UpdateNote)
	notes.Delete("/:id", h.DeleteNote)
	notes.Post("/:id/select", h.SelectNote)
	notes.Put("/:id/folder", h.MoveNote)
	notes.Post("/:id/tags", h.AddTag)
	notes.Put("/:id/tags", h.SetTags)
	notes.Delete("/:id/tags/:tag", h.RemoveTag)
	notes.Post("/:id/share", h.ShareNote)
	notes.Get("/:id/download", h.DownloadNote)

	shared := apiV1.Group("/shared")
	shared.Get("/:shareId", h.GetShared)
	shared.Post("/:shareId/open", h.OpenShared)

	editor := apiV1.Group("/editor")
	editor.Get("/", h.GetEditor)
	editor.Put("/", h.PutEditor)
	editor.Post("/save", h.SaveEditor)

	folders := apiV1.Group("/folders")
	folders.Get("/", h.ListFolders)
	folders.Post("/", h.CreateFolder)
	folders.Post("/unselect", h.SelectAllFolders)
	folders.Put("/:id", h.RenameFolder)
	folders.Delete("/:id", h.DeleteFolder)
	folders.Get("/:id/notes", h.FolderNotes)
	folders.Get("/:id/export", h.ExportFolder)
	folders.Post("/:id/select", h.SelectFolder)

	tags := apiV1.Group("/tags")
	tags.Get("/", h.ListTags)
	tags.Get("/popular", h.PopularTags)

	apiV1.Get("/notifications", h.Notifications)
	apiV1.Get("/events", h.Events)
	apiV1.Post("/reconcile", h.Reconcile)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "route not found"})
	})
}
