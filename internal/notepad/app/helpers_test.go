package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"notepad/internal/notepad/adapters/editor"
	"notepad/internal/notepad/app"
	"notepad/internal/notepad/domain/entities"
	"notepad/internal/notepad/ports/presenter"
	"notepad/pkg/resilience"
)

var errQuota = errors.New("quota exceeded")

// countingStore - хранилище в памяти, считающее успешные записи по ключам.
type countingStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	writes  map[string]int
	gets    int
	failSet map[string]error
	failGet error
	closed  bool
}

func newCountingStore() *countingStore {
	return &countingStore{
		data:    make(map[string][]byte),
		writes:  make(map[string]int),
		failSet: make(map[string]error),
	}
}

func (s *countingStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.failGet != nil {
		return nil, s.failGet
	}
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *countingStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failSet[key]; err != nil {
		return err
	}
	s.data[key] = append([]byte(nil), value...)
	s.writes[key]++
	return nil
}

func (s *countingStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *countingStore) Ping(context.Context) error { return nil }

func (s *countingStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *countingStore) seed(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = []byte(value)
}

func (s *countingStore) raw(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.data[key])
}

func (s *countingStore) writesTo(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[key]
}

func (s *countingStore) totalWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.writes {
		total += n
	}
	return total
}

func (s *countingStore) resetWrites() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = make(map[string]int)
}

func (s *countingStore) setFailure(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failSet, key)
		return
	}
	s.failSet[key] = err
}

type notification struct {
	Message  string
	Severity presenter.Severity
}

// recorder запоминает все события презентации.
type recorder struct {
	mu            sync.Mutex
	notesRenders  int
	folderRenders int
	lastNotes     []entities.Note
	lastFolders   []entities.Folder
	notifications []notification
}

func (r *recorder) OnNotesChanged(_ context.Context, notes []entities.Note) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notesRenders++
	r.lastNotes = notes
}

func (r *recorder) OnFoldersChanged(_ context.Context, folders []entities.Folder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.folderRenders++
	r.lastFolders = folders
}

func (r *recorder) Notify(_ context.Context, message string, severity presenter.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, notification{Message: message, Severity: severity})
}

func (r *recorder) countSeverity(s presenter.Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.notifications {
		if item.Severity == s {
			n++
		}
	}
	return n
}

func (r *recorder) last() notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return notification{}
	}
	return r.notifications[len(r.notifications)-1]
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(ms int64) *fakeClock {
	return &fakeClock{t: time.UnixMilli(ms).UTC()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = time.UnixMilli(ms).UTC()
}

type fixture struct {
	ws    *app.Workspace
	store *countingStore
	doc   *editor.Buffer
	rec   *recorder
	clock *fakeClock
}

type fixtureOption func(*app.Dependencies, *app.Options)

func withoutEditor() fixtureOption {
	return func(d *app.Dependencies, _ *app.Options) { d.Document = nil }
}

func withOptions(fn func(*app.Options)) fixtureOption {
	return func(_ *app.Dependencies, o *app.Options) { fn(o) }
}

func newFixture(t *testing.T, store *countingStore, opts ...fixtureOption) *fixture {
	t.Helper()

	if store == nil {
		store = newCountingStore()
	}
	f := &fixture{
		store: store,
		doc:   editor.NewBuffer(),
		rec:   &recorder{},
		clock: newFakeClock(1000),
	}

	deps := app.Dependencies{
		Store:     store,
		Presenter: f.rec,
		Document:  f.doc,
		Clock:     f.clock.Now,
		RandIntN:  func(int) int { return 7 },
	}
	options := app.Options{
		ShareBaseURL:  "https://notes.example/app",
		AutoSaveDelay: time.Hour,
		StartupRetry:  resilience.RetryConfig{MaxAttempts: 1},
	}
	for _, opt := range opts {
		opt(&deps, &options)
	}
	if deps.Document == nil {
		f.doc = nil
	}

	ws, err := app.New(context.Background(), deps, options)
	require.NoError(t, err)
	f.ws = ws
	t.Cleanup(func() { ws.AutoSave.Stop() })
	return f
}

func int64Ptr(v int64) *int64 { return &v }

func noteIDs(notes []entities.Note) []int64 {
	ids := make([]int64, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	return ids
}
