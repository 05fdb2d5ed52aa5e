// Package editor содержит редактируемый документ в памяти.
package editor

import "sync"

// Buffer хранит заголовок и HTML текущего документа. Безопасен для конкурентного доступа.
type Buffer struct {
	mu    sync.RWMutex
	title string
	html  string
}

// NewBuffer создает пустой документ.
func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Title() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.title
}

func (b *Buffer) SetTitle(title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.title = title
}

func (b *Buffer) HTML() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.html
}

func (b *Buffer) SetHTML(html string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.html = html
}

// Clear очищает документ.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.title, b.html = "", ""
}

// Snapshot возвращает заголовок и содержимое одним чтением.
func (b *Buffer) Snapshot() (string, string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.title, b.html
}

// Replace записывает заголовок и содержимое одной операцией.
func (b *Buffer) Replace(title, html string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.title, b.html = title, html
}
