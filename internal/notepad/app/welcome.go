package app

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"notepad/pkg/logger"
)

// WelcomeTitle - заголовок заметки, создаваемой для пустого хранилища.
const WelcomeTitle = "Welcome to NotePad!"

var welcomeTags = []string{"welcome", "tutorial"}

const welcomeContent = `<h1>Welcome to NotePad!</h1>
<p>This is your first note. Here is how to get started:</p>
<h2>Key Features</h2>
<ul>
    <li><strong>Text formatting</strong> - style your text with bold, <em>italic</em>, <u>underline</u> and more</li>
    <li><strong>Folders</strong> - keep related notes together</li>
    <li><strong>Tags</strong> - tag notes and search with <code>tag:name</code></li>
    <li><strong>Sharing</strong> - every note can get a permanent share link</li>
    <li><strong>Auto-save</strong> - notes are saved shortly after you stop typing</li>
</ul>
<h2>Import and export</h2>
<p>Upload .txt or .md files to turn them into notes, download a note as text, or export a whole folder as JSON.</p>
<p>Now create your first note with the "+" button.</p>
`

// seedWelcomeLocked создает приветственную заметку. Ошибка записи не прерывает запуск.
func (r *NoteRegistry) seedWelcomeLocked(ctx context.Context) {
	note := r.newNoteLocked(WelcomeTitle, welcomeContent)
	note.Tags = slices.Clone(welcomeTags)
	r.notes = slices.Insert(r.notes, 0, note)

	if err := r.persistTagChangeLocked(ctx, note.Tags...); err != nil {
		logger.Log(ctx).Warn(ctx, "welcome note kept in memory only", zap.Error(err))
		return
	}
	logger.Log(ctx).Info(ctx, "welcome note created", zap.Int64("note_id", note.ID))
}
