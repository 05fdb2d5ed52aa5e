package app_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notepad/internal/notepad/app"
	"notepad/internal/notepad/ports/storage"
)

func TestImport(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		file        string
		body        string
		wantTitle   string
		wantContent string
		wantTags    []string
	}{
		{
			name:        "text file uses short first line as title",
			file:        "todo.txt",
			body:        "Groceries\r\nmilk\neggs <fresh>",
			wantTitle:   "Groceries",
			wantContent: "milk<br>eggs &lt;fresh&gt;",
			wantTags:    []string{},
		},
		{
			name:        "markdown heading marker is stripped",
			file:        "notes.md",
			body:        "# Plan\n\n- one\n- two\n",
			wantTitle:   "Plan",
			wantContent: "<ul>\n<li>one</li>\n<li>two</li>\n</ul>",
			wantTags:    []string{},
		},
		{
			name:        "front matter wins",
			file:        "post.markdown",
			body:        "---\ntitle: From Meta\ntags: [blog, draft]\n---\n# Heading\n\nText",
			wantTitle:   "From Meta",
			wantContent: "<h1>Heading</h1>\n<p>Text</p>",
			wantTags:    []string{"blog", "draft"},
		},
		{
			name:        "long first line falls back to file name",
			file:        "Long Story.TXT",
			body:        strings.Repeat("x", 120),
			wantTitle:   "Long Story",
			wantContent: strings.Repeat("x", 120),
			wantTags:    []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)

			note, err := f.ws.Importer.Import(ctx, tt.file, strings.NewReader(tt.body))
			require.NoError(t, err)

			assert.Equal(t, tt.wantTitle, note.Title)
			assert.Equal(t, tt.wantContent, note.Content)
			assert.Equal(t, tt.wantTags, note.Tags)

			current, ok := f.ws.Notes.Current()
			require.True(t, ok)
			assert.Equal(t, note.ID, current.ID)
			assert.Equal(t, 1, f.store.writesTo(storage.KeyNotes))
			for _, tag := range tt.wantTags {
				assert.Contains(t, f.ws.Notes.AllTags(), tag)
			}
		})
	}
}

func TestImportRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, withOptions(func(o *app.Options) { o.MaxImportBytes = 8 }))

	_, err := f.ws.Importer.Import(ctx, "image.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, app.ErrUnsupportedFileType)

	_, err = f.ws.Importer.Import(ctx, "big.txt", strings.NewReader("123456789"))
	assert.ErrorIs(t, err, app.ErrFileTooLarge)

	assert.Empty(t, f.ws.Notes.List())
	assert.Zero(t, f.store.totalWrites())
}

func TestSupportedExtension(t *testing.T) {
	for _, name := range []string{"a.txt", "b.MD", "c.markdown", "d.doc", "e.docx"} {
		assert.True(t, app.SupportedExtension(name), name)
	}
	for _, name := range []string{"a.pdf", "noext", "b.md.bak"} {
		assert.False(t, app.SupportedExtension(name), name)
	}
}
