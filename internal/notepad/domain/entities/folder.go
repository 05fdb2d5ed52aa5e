package entities

// Folder - именованная группа заметок.
type Folder struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Created string `json:"created"`
}
