package app_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notepad/internal/notepad/app"
	"notepad/internal/notepad/domain/entities"
	"notepad/internal/notepad/ports/presenter"
	"notepad/internal/notepad/ports/storage"
)

func TestCreateSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	note, err := f.ws.Notes.Create(ctx, "T", "C")
	require.NoError(t, err)
	require.NoError(t, f.ws.Notes.Save(ctx, false))

	reloaded := newFixture(t, f.store)
	got, ok := reloaded.ws.Notes.Get(note.ID)
	require.True(t, ok)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "C", got.Content)
	assert.Equal(t, note.ID, got.ID)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts at the front and selects", func(t *testing.T) {
		f := newFixture(t, nil)

		first, err := f.ws.Notes.Create(ctx, "First", "")
		require.NoError(t, err)
		f.clock.Set(2000)
		second, err := f.ws.Notes.Create(ctx, "", "body")
		require.NoError(t, err)

		assert.Equal(t, int64(1000), first.ID)
		assert.Equal(t, int64(2000), second.ID)
		assert.Equal(t, entities.DefaultNoteTitle, second.Title)
		assert.Equal(t, []string{}, second.Tags)
		assert.Equal(t, []int64{2000, 1000}, noteIDs(f.ws.Notes.List()))

		current, ok := f.ws.Notes.Current()
		require.True(t, ok)
		assert.Equal(t, second.ID, current.ID)
		assert.Equal(t, 2, f.store.writesTo(storage.KeyNotes))
	})

	t.Run("ids stay unique within the same millisecond", func(t *testing.T) {
		f := newFixture(t, nil)

		a, _ := f.ws.Notes.Create(ctx, "a", "")
		b, _ := f.ws.Notes.Create(ctx, "b", "")

		assert.Equal(t, int64(1000), a.ID)
		assert.Equal(t, int64(1001), b.ID)
		assert.Equal(t, []int64{1001, 1000}, noteIDs(f.ws.Notes.List()))
	})
}

func TestSelectInjectsHeadingOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	note, err := f.ws.Notes.Create(ctx, "A & B", "<p>body</p>")
	require.NoError(t, err)

	require.NoError(t, f.ws.Notes.Select(ctx, note.ID))
	require.NoError(t, f.ws.Notes.Select(ctx, note.ID))

	assert.Equal(t, "A & B", f.doc.Title())
	assert.Equal(t, "<h1>A &amp; B</h1><p>body</p>", f.doc.HTML())

	t.Run("content with a matching heading is left alone", func(t *testing.T) {
		withHeading, err := f.ws.Notes.Create(ctx, "X & Y", `<h1 class="t">X &amp; Y</h1><p>y</p>`)
		require.NoError(t, err)
		require.NoError(t, f.ws.Notes.Select(ctx, withHeading.ID))
		assert.Equal(t, `<h1 class="t">X &amp; Y</h1><p>y</p>`, f.doc.HTML())
	})

	t.Run("heading with another title gets the note title on top", func(t *testing.T) {
		other, err := f.ws.Notes.Create(ctx, "X", "<h1>Own</h1><p>y</p>")
		require.NoError(t, err)
		require.NoError(t, f.ws.Notes.Select(ctx, other.ID))
		require.NoError(t, f.ws.Notes.Select(ctx, other.ID))
		assert.Equal(t, "<h1>X</h1><h1>Own</h1><p>y</p>", f.doc.HTML())

		require.NoError(t, f.ws.Notes.Save(ctx, true))
		got, _ := f.ws.Notes.Get(other.ID)
		assert.Equal(t, "<h1>Own</h1><p>y</p>", got.Content)
	})

	t.Run("unknown note", func(t *testing.T) {
		assert.ErrorIs(t, f.ws.Notes.Select(ctx, 42), app.ErrNoteNotFound)
	})
}

func TestSave(t *testing.T) {
	ctx := context.Background()

	t.Run("without a selected note", func(t *testing.T) {
		f := newFixture(t, nil)
		err := f.ws.Notes.Save(ctx, false)
		require.ErrorIs(t, err, app.ErrNoCurrentNote)
		assert.Zero(t, f.store.totalWrites())
	})

	t.Run("copies the editor and stamps lastModified", func(t *testing.T) {
		f := newFixture(t, nil)
		note, _ := f.ws.Notes.Create(ctx, "Old", "")

		f.clock.Set(5000)
		f.doc.SetTitle("  New  ")
		f.doc.SetHTML("<h1>Old</h1><p>edited</p>")
		require.NoError(t, f.ws.Notes.Save(ctx, false))

		got, _ := f.ws.Notes.Get(note.ID)
		assert.Equal(t, "New", got.Title)
		assert.Equal(t, "<p>edited</p>", got.Content)
		assert.Equal(t, int64(5000), got.LastModified)
		assert.Equal(t, notification{Message: app.MsgNoteSaved, Severity: presenter.SeveritySuccess}, f.rec.last())
	})

	t.Run("silent save does not notify", func(t *testing.T) {
		f := newFixture(t, nil)
		_, _ = f.ws.Notes.Create(ctx, "N", "")
		before := len(f.rec.notifications)

		require.NoError(t, f.ws.Notes.Save(ctx, true))
		assert.Len(t, f.rec.notifications, before)
	})

	t.Run("blank editor title falls back to default", func(t *testing.T) {
		f := newFixture(t, nil)
		note, _ := f.ws.Notes.Create(ctx, "N", "")
		f.doc.SetTitle("   ")
		require.NoError(t, f.ws.Notes.Save(ctx, true))

		got, _ := f.ws.Notes.Get(note.ID)
		assert.Equal(t, entities.DefaultNoteTitle, got.Title)
	})

	t.Run("missing editor degrades", func(t *testing.T) {
		f := newFixture(t, nil, withoutEditor())
		note, err := f.ws.Notes.Create(ctx, "N", "")
		require.NoError(t, err)

		current, ok := f.ws.Notes.Current()
		require.True(t, ok)
		assert.Equal(t, note.ID, current.ID)
		assert.ErrorIs(t, f.ws.Notes.Save(ctx, false), app.ErrEditorMissing)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	a, _ := f.ws.Notes.Create(ctx, "A", "")
	f.clock.Set(2000)
	b, _ := f.ws.Notes.Create(ctx, "B", "")
	f.clock.Set(3000)
	c, _ := f.ws.Notes.Create(ctx, "C", "")

	require.NoError(t, f.ws.Notes.Delete(ctx, c.ID))

	current, ok := f.ws.Notes.Current()
	require.True(t, ok)
	assert.Equal(t, b.ID, current.ID)
	assert.Equal(t, "B", f.doc.Title())
	assert.Equal(t, []int64{b.ID, a.ID}, noteIDs(f.ws.Notes.List()))
	assert.Equal(t, presenter.SeverityDelete, f.rec.last().Severity)

	require.NoError(t, f.ws.Notes.Delete(ctx, a.ID))
	current, _ = f.ws.Notes.Current()
	assert.Equal(t, b.ID, current.ID)

	require.NoError(t, f.ws.Notes.Delete(ctx, b.ID))
	_, ok = f.ws.Notes.Current()
	assert.False(t, ok)
	assert.Empty(t, f.doc.Title())
	assert.Empty(t, f.doc.HTML())

	assert.ErrorIs(t, f.ws.Notes.Delete(ctx, b.ID), app.ErrNoteNotFound)
	assert.JSONEq(t, `[]`, f.store.raw(storage.KeyNotes))
}

func TestMoveAndFilterScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	work, err := f.ws.Folders.Create(ctx, "Work")
	require.NoError(t, err)
	require.Equal(t, int64(1000), work.ID)

	f.clock.Set(2000)
	report, err := f.ws.Notes.Create(ctx, "Report", "")
	require.NoError(t, err)
	require.Equal(t, int64(2000), report.ID)

	rendersBefore := f.rec.folderRenders
	require.NoError(t, f.ws.Notes.MoveToFolder(ctx, 2000, int64Ptr(1000)))

	assert.Equal(t, []int64{2000}, noteIDs(f.ws.Notes.FilterByFolder(1000)))
	assert.Empty(t, f.ws.Notes.FilterByFolder(9999))
	assert.Equal(t, 1, f.ws.Folders.NoteCount(1000))
	assert.Equal(t, rendersBefore+1, f.rec.folderRenders)

	t.Run("unknown folder is rejected", func(t *testing.T) {
		assert.ErrorIs(t, f.ws.Notes.MoveToFolder(ctx, 2000, int64Ptr(9999)), app.ErrFolderNotFound)
		got, _ := f.ws.Notes.Get(2000)
		assert.Equal(t, int64(1000), *got.FolderID)
	})

	t.Run("moving to the same folder writes nothing", func(t *testing.T) {
		writes := f.store.writesTo(storage.KeyNotes)
		require.NoError(t, f.ws.Notes.MoveToFolder(ctx, 2000, int64Ptr(1000)))
		assert.Equal(t, writes, f.store.writesTo(storage.KeyNotes))
	})

	t.Run("nil unfiles the note", func(t *testing.T) {
		require.NoError(t, f.ws.Notes.MoveToFolder(ctx, 2000, nil))
		assert.Empty(t, f.ws.Notes.FilterByFolder(1000))
		assert.Equal(t, []int64{2000}, noteIDs(f.ws.Notes.Unfiled()))
	})

	t.Run("unknown note", func(t *testing.T) {
		assert.ErrorIs(t, f.ws.Notes.MoveToFolder(ctx, 1, nil), app.ErrNoteNotFound)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	a, _ := f.ws.Notes.Create(ctx, "Alpha", "<p>Shopping list</p>")
	require.NoError(t, f.ws.Notes.SetTags(ctx, a.ID, []string{"x", "y"}))
	f.clock.Set(2000)
	b, _ := f.ws.Notes.Create(ctx, "Beta", "<p>meeting</p>")
	require.NoError(t, f.ws.Notes.SetTags(ctx, b.ID, []string{"y"}))

	tests := []struct {
		name string
		term string
		want []int64
	}{
		{"tag filter", "tag:x", []int64{a.ID}},
		{"tag filter is exact", "tag:X", []int64{}},
		{"tag prefix is case-insensitive", "TAG: y", []int64{b.ID, a.ID}},
		{"title substring ignores case", "alp", []int64{a.ID}},
		{"content substring", "MEETING", []int64{b.ID}},
		{"tag substring", "y", []int64{b.ID, a.ID}},
		{"blank term returns everything", "  ", []int64{b.ID, a.ID}},
		{"empty tag name searches text", "tag:", []int64{}},
		{"no match", "zzz", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, noteIDs(f.ws.Notes.Search(tt.term)))
		})
	}
}

func TestOrderingIsStableOnTies(t *testing.T) {
	store := newCountingStore()
	store.seed(storage.KeyNotes, `[
		{"id":1,"title":"a","content":"","lastModified":50,"tags":[],"shareId":null,"folderId":null},
		{"id":2,"title":"b","content":"","lastModified":90,"tags":[],"shareId":null,"folderId":null},
		{"id":3,"title":"c","content":"","lastModified":50,"tags":[],"shareId":null,"folderId":null}
	]`)
	f := newFixture(t, store)

	assert.Equal(t, []int64{2, 1, 3}, noteIDs(f.ws.Notes.List()))
	current, ok := f.ws.Notes.Current()
	require.True(t, ok)
	assert.Equal(t, int64(2), current.ID)
	assert.Zero(t, store.totalWrites())
}

func TestPersistFailureAlertsOncePerStreak(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.store.setFailure(storage.KeyNotes, errQuota)

	note, err := f.ws.Notes.Create(ctx, "A", "")
	require.ErrorIs(t, err, app.ErrPersist)
	require.ErrorIs(t, err, errQuota)
	require.NotNil(t, note)
	_, err = f.ws.Notes.Create(ctx, "B", "")
	require.ErrorIs(t, err, app.ErrPersist)

	assert.Equal(t, 1, f.rec.countSeverity(presenter.SeverityError))
	assert.Len(t, f.ws.Notes.List(), 2, "in-memory state is kept")

	f.store.setFailure(storage.KeyNotes, nil)
	require.NoError(t, f.ws.Notes.Save(ctx, true))

	var stored []entities.Note
	require.NoError(t, json.Unmarshal([]byte(f.store.raw(storage.KeyNotes)), &stored))
	assert.Len(t, stored, 2)

	f.store.setFailure(storage.KeyNotes, errQuota)
	require.ErrorIs(t, f.ws.Notes.Save(ctx, true), app.ErrPersist)
	assert.Equal(t, 2, f.rec.countSeverity(presenter.SeverityError))
}
