// Package presenter описывает односторонний порт уведомлений интерфейса.
package presenter

import (
	"context"

	"notepad/internal/notepad/domain/entities"
)

// Severity - тип уведомления.
type Severity string

// Типы уведомлений.
const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityDelete  Severity = "delete"
)

// Presenter получает снимки коллекций после каждой записи и уведомления.
// Реализации не должны блокировать вызывающего.
type Presenter interface {
	OnNotesChanged(ctx context.Context, notes []entities.Note)
	OnFoldersChanged(ctx context.Context, folders []entities.Folder)
	Notify(ctx context.Context, message string, severity Severity)
}

// Nop игнорирует все события.
type Nop struct{}

func (Nop) OnNotesChanged(context.Context, []entities.Note)     {}
func (Nop) OnFoldersChanged(context.Context, []entities.Folder) {}
func (Nop) Notify(context.Context, string, Severity)            {}
