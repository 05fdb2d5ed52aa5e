// Package editor описывает порт редактируемого документа.
package editor

// Document - поверхность редактирования: заголовок и HTML содержимое.
type Document interface {
	Title() string
	SetTitle(title string)
	HTML() string
	SetHTML(html string)
	Clear()
}
