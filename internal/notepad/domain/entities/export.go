package entities

// FolderExport - содержимое файла экспорта папки.
type FolderExport struct {
	Folder     Folder `json:"folder"`
	Notes      []Note `json:"notes"`
	ExportDate string `json:"exportDate"`
}

// File - готовый к скачиванию файл.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}
