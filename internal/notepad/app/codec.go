package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"notepad/internal/notepad/domain/entities"
)

// Coercion описывает одно исправление, сделанное при чтении коллекции.
type Coercion struct {
	Collection string
	EntityID   int64
	Field      string
	From       string
	To         string
}

// fieldEntry помечает запись, которую не удалось разобрать целиком.
const fieldEntry = "entry"

var trailingDigits = regexp.MustCompile(`(\d+)$`)

type rawNote struct {
	ID           json.RawMessage `json:"id"`
	Title        json.RawMessage `json:"title"`
	Content      json.RawMessage `json:"content"`
	LastModified json.RawMessage `json:"lastModified"`
	Tags         json.RawMessage `json:"tags"`
	ShareID      json.RawMessage `json:"shareId"`
	FolderID     json.RawMessage `json:"folderId"`
}

type rawFolder struct {
	ID      json.RawMessage `json:"id"`
	Name    json.RawMessage `json:"name"`
	Created json.RawMessage `json:"created"`
}

// collectionCodec приводит сохраненные коллекции к каноническим типам.
// Все идентификаторы становятся int64 прямо здесь и больше нигде не приводятся.
type collectionCodec struct {
	notesIDs  *idAllocator
	folderIDs *idAllocator
	now       func() time.Time
}

func splitArray(data []byte) ([]json.RawMessage, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptCollection, err)
	}
	return items, nil
}

// decodeNotes разбирает коллекцию заметок. Записи, не являющиеся объектами, отбрасываются.
func (c *collectionCodec) decodeNotes(data []byte) ([]*entities.Note, []Coercion, error) {
	items, err := splitArray(data)
	if err != nil {
		return nil, nil, err
	}

	notes := make([]*entities.Note, 0, len(items))
	var coercions []Coercion
	for i, item := range items {
		var raw rawNote
		if err := json.Unmarshal(item, &raw); err != nil {
			coercions = append(coercions, Coercion{
				Collection: "notes", Field: fieldEntry, From: fmt.Sprintf("#%d %s", i, item), To: "dropped",
			})
			continue
		}
		note, cs := c.decodeNote(raw)
		notes = append(notes, note)
		coercions = append(coercions, cs...)
	}
	return notes, coercions, nil
}

func (c *collectionCodec) decodeNote(raw rawNote) (*entities.Note, []Coercion) {
	var cs []Coercion
	note := &entities.Note{}

	id, ok, changed := coerceInt(raw.ID)
	if !ok {
		id = c.notesIDs.next()
		changed = true
	} else {
		c.notesIDs.observe(id)
	}
	note.ID = id
	if changed {
		cs = append(cs, Coercion{Collection: "notes", EntityID: id, Field: "id", From: string(raw.ID), To: strconv.FormatInt(id, 10)})
	}

	title, _ := coerceString(raw.Title)
	if strings.TrimSpace(title) == "" {
		title = entities.DefaultNoteTitle
		cs = append(cs, Coercion{Collection: "notes", EntityID: id, Field: "title", From: string(raw.Title), To: title})
	}
	note.Title = title
	note.Content, _ = coerceString(raw.Content)

	if lm, ok, changed := coerceTimestamp(raw.LastModified); ok {
		note.LastModified = lm
		if changed {
			cs = append(cs, Coercion{Collection: "notes", EntityID: id, Field: "lastModified", From: string(raw.LastModified), To: strconv.FormatInt(lm, 10)})
		}
	} else {
		note.LastModified = id
		cs = append(cs, Coercion{Collection: "notes", EntityID: id, Field: "lastModified", From: string(raw.LastModified), To: strconv.FormatInt(id, 10)})
	}

	tags, changed := coerceTags(raw.Tags)
	note.Tags = tags
	if changed {
		cs = append(cs, Coercion{Collection: "notes", EntityID: id, Field: "tags", From: string(raw.Tags), To: fmt.Sprint(tags)})
	}

	if share, isString := coerceString(raw.ShareID); isString && share != "" {
		note.ShareID = &share
	}

	folderID, c2 := coerceFolderRef(raw.FolderID)
	note.FolderID = folderID
	if c2 != nil {
		c2.EntityID = id
		cs = append(cs, *c2)
	}

	return note, cs
}

// decodeFolders разбирает коллекцию папок. Дубликаты идентификаторов здесь не исправляются.
func (c *collectionCodec) decodeFolders(data []byte) ([]*entities.Folder, []Coercion, error) {
	items, err := splitArray(data)
	if err != nil {
		return nil, nil, err
	}

	folders := make([]*entities.Folder, 0, len(items))
	var coercions []Coercion
	for i, item := range items {
		var raw rawFolder
		if err := json.Unmarshal(item, &raw); err != nil {
			coercions = append(coercions, Coercion{
				Collection: "folders", Field: fieldEntry, From: fmt.Sprintf("#%d %s", i, item), To: "dropped",
			})
			continue
		}

		folder := &entities.Folder{}
		id, ok, changed := coerceInt(raw.ID)
		if !ok {
			id = c.folderIDs.next()
			changed = true
		} else {
			c.folderIDs.observe(id)
		}
		folder.ID = id
		if changed {
			coercions = append(coercions, Coercion{Collection: "folders", EntityID: id, Field: "id", From: string(raw.ID), To: strconv.FormatInt(id, 10)})
		}

		name, _ := coerceString(raw.Name)
		folder.Name = strings.TrimSpace(name)
		if folder.Name == "" {
			folder.Name = DefaultFolderName
			coercions = append(coercions, Coercion{Collection: "folders", EntityID: id, Field: "name", From: string(raw.Name), To: folder.Name})
		}

		created, isString := coerceString(raw.Created)
		if !isString || created == "" {
			created = formatISO(c.now())
			coercions = append(coercions, Coercion{Collection: "folders", EntityID: id, Field: "created", From: string(raw.Created), To: created})
		}
		folder.Created = created

		folders = append(folders, folder)
	}
	return folders, coercions, nil
}

// decodeTags разбирает словарь тегов. Нестроковые и пустые значения пропускаются.
func decodeTags(data []byte) ([]string, error) {
	items, err := splitArray(data)
	if err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := coerceString(item); ok {
			tags = append(tags, s)
		}
	}
	return normalizeTags(tags), nil
}

func decodeValue(raw json.RawMessage) (any, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, v != nil
}

// coerceInt возвращает (значение, пригодно, было приведено).
func coerceInt(raw json.RawMessage) (int64, bool, bool) {
	v, ok := decodeValue(raw)
	if !ok {
		return 0, false, false
	}
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true, false
		}
		if f, err := t.Float64(); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return int64(f), true, true
		}
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true, true
		}
		if m := trailingDigits.FindString(s); m != "" {
			if n, err := strconv.ParseInt(m, 10, 64); err == nil {
				return n, true, true
			}
		}
	}
	return 0, false, false
}

func coerceString(raw json.RawMessage) (string, bool) {
	v, ok := decodeValue(raw)
	if !ok {
		return "", false
	}
	s, isString := v.(string)
	return s, isString
}

// coerceFolderRef приводит folderId: null остается null, целое в виде дроби (1000.0, 1e3)
// или числовая строка становятся числом, прочие значения сбрасываются в null.
func coerceFolderRef(raw json.RawMessage) (*int64, *Coercion) {
	v, ok := decodeValue(raw)
	if !ok {
		return nil, nil
	}
	if n, isNumber := v.(json.Number); isNumber {
		if id, err := n.Int64(); err == nil {
			return &id, nil
		}
		if f, err := n.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
			id := int64(f)
			return &id, &Coercion{Collection: "notes", Field: "folderId", From: string(raw), To: strconv.FormatInt(id, 10)}
		}
	}
	if s, isString := v.(string); isString {
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return &id, &Coercion{Collection: "notes", Field: "folderId", From: string(raw), To: strconv.FormatInt(id, 10)}
		}
	}
	return nil, &Coercion{Collection: "notes", Field: "folderId", From: string(raw), To: "null"}
}

// coerceTimestamp принимает миллисекунды числом, строкой или ISO-8601 датой.
func coerceTimestamp(raw json.RawMessage) (int64, bool, bool) {
	v, ok := decodeValue(raw)
	if !ok {
		return 0, false, false
	}
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true, false
		}
		if f, err := t.Float64(); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return int64(f), true, true
		}
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true, true
		}
		for _, layout := range []string{time.RFC3339Nano, isoMillis, "2006-01-02"} {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UnixMilli(), true, true
			}
		}
	}
	return 0, false, false
}

// coerceTags возвращает очищенный список тегов и признак того, что он отличается от сохраненного.
func coerceTags(raw json.RawMessage) ([]string, bool) {
	v, ok := decodeValue(raw)
	if !ok {
		return []string{}, true
	}
	list, isList := v.([]any)
	if !isList {
		return []string{}, true
	}
	tags := make([]string, 0, len(list))
	for _, item := range list {
		if s, isString := item.(string); isString {
			tags = append(tags, s)
		}
	}
	normalized := normalizeTags(tags)
	changed := len(normalized) != len(list)
	for i := 0; !changed && i < len(normalized); i++ {
		changed = normalized[i] != list[i]
	}
	return normalized, changed
}

func encodeNotes(notes []*entities.Note) ([]byte, error) {
	out := make([]entities.Note, len(notes))
	for i, n := range notes {
		out[i] = *n
		if out[i].Tags == nil {
			out[i].Tags = []string{}
		}
	}
	return json.Marshal(out)
}

func encodeFolders(folders []*entities.Folder) ([]byte, error) {
	out := make([]entities.Folder, len(folders))
	for i, f := range folders {
		out[i] = *f
	}
	return json.Marshal(out)
}
