package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"notepad/internal/notepad/domain/entities"
)

func TestNoteClone(t *testing.T) {
	share := "note-1-abc"
	folder := int64(7)
	n := entities.Note{ID: 1, Tags: []string{"a"}, ShareID: &share, FolderID: &folder}

	c := n.Clone()
	c.Tags[0] = "b"
	*c.FolderID = 8
	*c.ShareID = "other"

	assert.Equal(t, []string{"a"}, n.Tags)
	assert.Equal(t, int64(7), *n.FolderID)
	assert.Equal(t, "note-1-abc", *n.ShareID)
}

func TestNoteHelpers(t *testing.T) {
	folder := int64(3)
	n := entities.Note{Tags: []string{"x", "y"}, FolderID: &folder}

	assert.True(t, n.InFolder(3))
	assert.False(t, n.InFolder(4))
	assert.True(t, n.HasTag("x"))
	assert.False(t, n.HasTag("X"))

	unfiled := entities.Note{}
	assert.False(t, unfiled.InFolder(0))
}
