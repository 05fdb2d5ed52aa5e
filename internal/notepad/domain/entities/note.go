// Package entities defines the domain entities for the notepad service.
package entities

// DefaultNoteTitle используется, когда заголовок не задан.
const DefaultNoteTitle = "Untitled Note"

// Note представляет собой заметку пользователя.
type Note struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	LastModified int64    `json:"lastModified"`
	Tags         []string `json:"tags"`
	ShareID      *string  `json:"shareId"`
	FolderID     *int64   `json:"folderId"`
}

// Clone возвращает копию заметки, не разделяющую срезы и указатели с оригиналом.
func (n *Note) Clone() Note {
	c := *n
	c.Tags = append([]string{}, n.Tags...)
	if n.ShareID != nil {
		s := *n.ShareID
		c.ShareID = &s
	}
	if n.FolderID != nil {
		f := *n.FolderID
		c.FolderID = &f
	}
	return c
}

// InFolder сообщает, лежит ли заметка в папке id.
func (n *Note) InFolder(id int64) bool {
	return n.FolderID != nil && *n.FolderID == id
}

// HasTag проверяет точное совпадение тега.
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
