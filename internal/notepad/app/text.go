package app

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"notepad/internal/notepad/domain/entities"
)

const (
	previewLength   = 50
	textContentType = "text/plain; charset=utf-8"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// blockElements начинают новую строку в текстовом представлении.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Ul: true, atom.Ol: true, atom.Hr: true,
}

// PlainText переводит HTML содержимое заметки в текст, разделяя блоки переводами строк.
func PlainText(content string) string {
	var buf bytes.Buffer
	z := html.NewTokenizer(strings.NewReader(content))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			text := blankLines.ReplaceAllString(buf.String(), "\n\n")
			return strings.TrimSpace(text)
		case html.TextToken:
			if skip == 0 {
				buf.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == atom.Script || a == atom.Style {
				skip++
			}
			if blockElements[a] && buf.Len() > 0 {
				buf.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if (a == atom.Script || a == atom.Style) && skip > 0 {
				skip--
			}
			if blockElements[a] {
				buf.WriteByte('\n')
			}
		}
	}
}

// Preview возвращает первые 50 символов текста заметки.
func Preview(content string) string {
	text := strings.Join(strings.Fields(PlainText(content)), " ")
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewLength]) + "..."
}

// SanitizeFileName заменяет все символы кроме латинских букв и цифр на "_" и приводит к нижнему регистру.
func SanitizeFileName(name string) string {
	return strings.ToLower(nonAlphanumeric.ReplaceAllString(name, "_"))
}

// Download формирует текстовый файл заметки: заголовок, подчеркивание из "=" и текст.
func (r *NoteRegistry) Download(_ context.Context, id int64) (entities.File, error) {
	r.mu.Lock()
	_, note := r.findNoteLocked(id)
	var title, content string
	if note != nil {
		title, content = note.Title, note.Content
	}
	r.mu.Unlock()

	if note == nil {
		return entities.File{}, ErrNoteNotFound
	}
	if title == "" {
		title = entities.DefaultNoteTitle
	}

	body := title + "\n" + strings.Repeat("=", utf8.RuneCountInString(title)) + "\n\n" + PlainText(content)
	return entities.File{
		Name:        SanitizeFileName(title) + ".txt",
		ContentType: textContentType,
		Data:        []byte(body),
	}, nil
}
