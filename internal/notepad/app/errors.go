// Package app implements the note and folder registries of the notepad service.
package app

import "errors"

// Ошибки уровня бизнес-логики.
var (
	ErrNoteNotFound        = errors.New("note not found")
	ErrFolderNotFound      = errors.New("folder not found")
	ErrNoCurrentNote       = errors.New("no note selected")
	ErrEditorMissing       = errors.New("editor document is not attached")
	ErrPersist             = errors.New("failed to persist collection")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrCorruptCollection   = errors.New("stored collection is not a JSON array")
	ErrWorkspaceClosed     = errors.New("workspace is closed")
)

// Сообщения для логов и уведомлений.
const (
	LogNoCurrentNote    = "save requested without a selected note"
	LogEditorMissing    = "editor document is not attached"
	LogPersistFailed    = "failed to persist collection"
	LogFolderIDCoerced  = "folder id coerced"
	LogDanglingFolderID = "dangling folder reference cleared"
	LogDuplicateFolder  = "duplicate folder id reassigned"
	LogFieldCoerced     = "stored field coerced"
	LogEntryDropped     = "unreadable stored entry dropped"
	LogReconciled       = "reconciliation finished"
	LogAutoSaveClosed   = "edit ignored, workspace is closed"

	MsgNoteSaved      = "Note saved"
	MsgNoteDeleted    = "Note deleted"
	MsgFolderCreated  = "Folder created"
	MsgFolderRenamed  = "Folder renamed"
	MsgFolderDeleted  = "Folder deleted"
	MsgFolderExported = "Folder exported"
	MsgShareReady     = "Share link ready"
	MsgSharedNotFound = "Shared note not found"
	MsgNoteImported   = "File imported"
	MsgPersistFailed  = "Could not save your changes. Storage may be full or unavailable."
)
