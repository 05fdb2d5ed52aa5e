package app

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"notepad/internal/notepad/domain/entities"
	"notepad/internal/notepad/ports/presenter"
	"notepad/pkg/logger"
)

// DefaultMaxImportBytes - ограничение размера импортируемого файла по умолчанию.
const DefaultMaxImportBytes = 5 << 20

// maxTitleLineLength - первая строка длиннее этого значения не считается заголовком.
const maxTitleLineLength = 100

var (
	markdownExtensions = []string{"md", "markdown"}
	textExtensions     = []string{"txt", "doc", "docx"}

	headingMarker  = regexp.MustCompile(`^#\s*`)
	frontMatterSep = []byte("---")
)

type frontMatter struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
}

// Importer создает заметки из загруженных текстовых и markdown файлов.
type Importer struct {
	notes    *NoteRegistry
	maxBytes int64
	markdown goldmark.Markdown
}

// NewImporter создает импорт поверх реестра заметок.
func NewImporter(notes *NoteRegistry, maxBytes int64) *Importer {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImportBytes
	}
	return &Importer{notes: notes, maxBytes: maxBytes, markdown: goldmark.New()}
}

// SupportedExtension сообщает, принимается ли файл с таким именем.
func SupportedExtension(fileName string) bool {
	ext := extension(fileName)
	return slices.Contains(markdownExtensions, ext) || slices.Contains(textExtensions, ext)
}

func extension(fileName string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
}

// Import читает файл, создает из него заметку в начале списка и выбирает ее.
func (i *Importer) Import(ctx context.Context, fileName string, r io.Reader) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("file", fileName))

	if !SupportedExtension(fileName) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, fileName)
	}

	data, err := io.ReadAll(io.LimitReader(r, i.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fileName, err)
	}
	if int64(len(data)) > i.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, i.maxBytes)
	}

	text := strings.ReplaceAll(string(bytes.TrimPrefix(data, []byte("\ufeff"))), "\r", "")
	meta, body := splitFrontMatter(ctx, text)

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title, body = titleFromFirstLine(body)
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	}

	content, err := i.render(fileName, body)
	if err != nil {
		return nil, err
	}

	note, err := i.notes.insertImported(ctx, title, content, normalizeTags(meta.Tags))
	if note != nil {
		log.Info(ctx, "file imported", zap.Int64("note_id", note.ID), zap.Int("bytes", len(data)))
	}
	return note, err
}

func (i *Importer) render(fileName, body string) (string, error) {
	if slices.Contains(markdownExtensions, extension(fileName)) {
		var buf bytes.Buffer
		if err := i.markdown.Convert([]byte(body), &buf); err != nil {
			return "", fmt.Errorf("failed to render markdown: %w", err)
		}
		return strings.TrimSpace(buf.String()), nil
	}
	return strings.ReplaceAll(html.EscapeString(body), "\n", "<br>"), nil
}

// splitFrontMatter отделяет YAML блок между строками "---" в начале файла.
func splitFrontMatter(ctx context.Context, text string) (frontMatter, string) {
	var meta frontMatter
	if !strings.HasPrefix(text, "---\n") {
		return meta, text
	}
	parts := bytes.SplitN([]byte(text), frontMatterSep, 3)
	if len(parts) < 3 {
		return meta, text
	}
	if err := yaml.Unmarshal(parts[1], &meta); err != nil {
		logger.Log(ctx).Debug(ctx, "front matter ignored", zap.Error(err))
		return frontMatter{}, text
	}
	return meta, strings.TrimSpace(string(parts[2]))
}

// titleFromFirstLine берет заголовок из короткой непустой первой строки, убирая "#".
func titleFromFirstLine(body string) (string, string) {
	first, rest, _ := strings.Cut(body, "\n")
	if strings.TrimSpace(first) == "" || len(first) >= maxTitleLineLength {
		return "", body
	}
	title := strings.TrimSpace(headingMarker.ReplaceAllString(strings.TrimSpace(first), ""))
	if title == "" {
		return "", body
	}
	return title, strings.TrimSpace(rest)
}

func (r *NoteRegistry) insertImported(ctx context.Context, title, content string, tags []string) (*entities.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note := r.newNoteLocked(title, content)
	note.Tags = tags
	r.notes = slices.Insert(r.notes, 0, note)

	err := r.persistTagChangeLocked(ctx, tags...)
	r.selectLocked(ctx, note)

	imported := note.Clone()
	if err != nil {
		return &imported, err
	}
	r.notify(ctx, MsgNoteImported, presenter.SeveritySuccess)
	return &imported, nil
}
