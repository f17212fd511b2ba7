package notes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"swipetodo/internal/swipe"
)

// Service owns the state of the list screen: the notes, the add-note input,
// the loading flag, the last persistence error and the swipe state of each
// row. Every mutation is saved before the next one starts.
type Service struct {
	store *Store
	log   *slog.Logger
	md    goldmark.Markdown

	// opMu serializes mutations, including their save.
	opMu sync.Mutex

	mu         sync.Mutex
	notes      []Note
	input      string
	loading    bool
	loaded     bool
	loadFailed bool // writes wait until the record has been read
	dirty      bool
	lastErr    error
	rows       map[int]*swipe.Row
}

// Snapshot is a consistent copy of the screen state. LoadFailed means the
// stored list has not been read yet and changes are refused until a retry
// succeeds.
type Snapshot struct {
	Notes      []Note
	Input      string
	CanAdd     bool
	Loading    bool
	Dirty      bool
	LoadFailed bool
	Err        error
}

// Empty reports whether the loaded list has no notes.
func (s Snapshot) Empty() bool { return !s.Loading && len(s.Notes) == 0 }

func NewService(store *Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store: store,
		log:   log,
		md:    goldmark.New(),
		notes: []Note{},
		rows:  make(map[int]*swipe.Row),
	}
}

// Mount performs the initial load. A failed load is logged and recorded as
// the current error; the screen continues with an empty list. When the
// record could not be read at all, writes stay blocked until a retry reads
// it, so the stored notes are never replaced by the empty list.
func (s *Service) Mount(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.mu.Unlock()

	list, err := s.store.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.loaded = true
	if err != nil {
		s.applyLoadErrorLocked(err)
		s.log.Error("failed to load notes", "key", s.store.Key(), "error", err)
		return err
	}
	s.notes = list
	s.log.Info("notes loaded", "key", s.store.Key(), "count", len(list))
	return nil
}

// applyLoadErrorLocked records a load failure. Caller holds mu.
func (s *Service) applyLoadErrorLocked(err error) {
	s.notes = []Note{}
	switch {
	case errors.Is(err, ErrRecordNotCreated):
		// nothing stored yet; the empty list is written by the next save
		s.loadFailed = false
		s.dirty = true
		s.lastErr = err
	case errors.Is(err, ErrCorruptRecord):
		s.loadFailed = false
		s.lastErr = err
	default:
		s.loadFailed = true
		s.lastErr = fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}
}

// ensureLoaded retries a failed initial load before a write. Caller holds
// opMu.
func (s *Service) ensureLoaded(ctx context.Context) error {
	s.mu.Lock()
	failed := s.loadFailed
	s.mu.Unlock()
	if !failed {
		return nil
	}

	list, err := s.store.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.applyLoadErrorLocked(err)
		if s.loadFailed {
			s.log.Warn("notes still not loaded", "key", s.store.Key(), "error", err)
			return s.lastErr
		}
		return nil
	}
	s.notes = list
	s.loadFailed = false
	s.lastErr = nil
	s.rows = make(map[int]*swipe.Row)
	s.log.Info("notes loaded on retry", "key", s.store.Key(), "count", len(list))
	return nil
}

// Snapshot returns the current state. Notes is a copy.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Notes:      append([]Note(nil), s.notes...),
		Input:      s.input,
		CanAdd:     canAdd(s.input),
		Loading:    s.loading || !s.loaded,
		Dirty:      s.dirty,
		LoadFailed: s.loadFailed,
		Err:        s.lastErr,
	}
}

// Notes returns a copy of the current list
func (s *Service) Notes() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Note(nil), s.notes...)
}

func (s *Service) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

func (s *Service) SetInput(text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()
}

// CanAdd reports whether the add affordance is enabled.
func (s *Service) CanAdd() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return canAdd(s.input)
}

func canAdd(text string) bool {
	return strings.TrimSpace(text) != ""
}

// Add appends the current input as a new note and clears the input. It is a
// no-op, reporting added=false, when the input is blank. A save failure is
// returned but the note stays in the list. While the stored list has not
// been read, nothing is added and the input is kept.
func (s *Service) Add(ctx context.Context) (n Note, added bool, err error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if !s.CanAdd() {
		return Note{}, false, nil
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return Note{}, false, err
	}

	s.mu.Lock()
	if !canAdd(s.input) {
		s.mu.Unlock()
		return Note{}, false, nil
	}
	next, n := Append(s.notes, s.input)
	s.input = ""
	s.mu.Unlock()

	return n, true, s.commit(ctx, next)
}

// AddText appends text as a new note without touching the input field.
func (s *Service) AddText(ctx context.Context, text string) (Note, error) {
	if !canAdd(text) {
		return Note{}, ErrEmptyNote
	}
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Note{}, err
	}

	s.mu.Lock()
	next, n := Append(s.notes, text)
	s.mu.Unlock()

	return n, s.commit(ctx, next)
}

// Remove deletes the note with the given id.
func (s *Service) Remove(ctx context.Context, id int) (Note, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Note{}, err
	}

	s.mu.Lock()
	next, n, err := s.removeLocked(id)
	s.mu.Unlock()
	if err != nil {
		return Note{}, err
	}
	return n, s.commit(ctx, next)
}

// RemoveAt deletes the note at position i.
func (s *Service) RemoveAt(ctx context.Context, i int) (Note, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Note{}, err
	}

	s.mu.Lock()
	next, n, err := RemoveAt(s.notes, i)
	s.mu.Unlock()
	if err != nil {
		return Note{}, err
	}
	return n, s.commit(ctx, next)
}

// removeLocked translates id to its current position. Caller holds mu.
func (s *Service) removeLocked(id int) ([]Note, Note, error) {
	i := IndexOf(s.notes, id)
	if i < 0 {
		return nil, Note{}, fmt.Errorf("remove note %d: %w", id, ErrNoteNotFound)
	}
	return RemoveAt(s.notes, i)
}

// Flush retries a failed load, then the save of a list whose last save
// failed.
func (s *Service) Flush(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	cur := append([]Note(nil), s.notes...)
	s.mu.Unlock()

	return s.commit(ctx, cur)
}

// commit saves next and then makes it the displayed list. On failure the
// list is still applied in memory and marked dirty. Caller holds opMu.
func (s *Service) commit(ctx context.Context, next []Note) error {
	err := s.store.Save(ctx, next)

	s.mu.Lock()
	s.notes = next
	for id := range s.rows {
		if IndexOf(next, id) < 0 {
			delete(s.rows, id)
		}
	}
	if err != nil {
		s.dirty = true
		s.lastErr = err
	} else {
		s.dirty = false
		s.lastErr = nil
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error("failed to save notes", "count", len(next), "error", err)
		return err
	}
	s.log.Debug("notes saved", "count", len(next))
	return nil
}

// --- Swipe gestures ---

// BeginDrag starts a drag on the row of note id.
func (s *Service) BeginDrag(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if IndexOf(s.notes, id) < 0 {
		return fmt.Errorf("drag note %d: %w", id, ErrNoteNotFound)
	}
	row, ok := s.rows[id]
	if !ok {
		row = &swipe.Row{}
		s.rows[id] = row
	}
	return row.Start()
}

// Drag updates the displacement of a dragging row.
func (s *Service) Drag(id int, dx float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return fmt.Errorf("drag note %d: %w", id, swipe.ErrInvalidTransition)
	}
	return row.Move(dx)
}

// Release ends the drag on note id. A Dismissing result means the caller
// runs the exit animation and then calls Dismissed.
func (s *Service) Release(id int) (swipe.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return swipe.Idle, fmt.Errorf("release note %d: %w", id, swipe.ErrInvalidTransition)
	}
	st, err := row.Release()
	if err != nil {
		return st, err
	}
	if st == swipe.Idle {
		delete(s.rows, id)
	}
	return st, nil
}

// Dismissed completes the removal of a dismissing row.
func (s *Service) Dismissed(ctx context.Context, id int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	row, ok := s.rows[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("dismiss note %d: %w", id, swipe.ErrInvalidTransition)
	}
	if err := row.Finish(); err != nil {
		s.mu.Unlock()
		return err
	}
	next, _, err := s.removeLocked(id)
	if err != nil {
		delete(s.rows, id)
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	return s.commit(ctx, next)
}

// Swipe runs a whole gesture released at dx, with no exit animation.
func (s *Service) Swipe(ctx context.Context, id int, dx float64) (SwipeResult, error) {
	res := SwipeResult{ID: id, State: swipe.Idle.String()}
	if err := s.BeginDrag(id); err != nil {
		return res, err
	}
	if err := s.Drag(id, dx); err != nil {
		return res, err
	}
	st, err := s.Release(id)
	if err != nil {
		return res, err
	}
	res.State = st.String()
	if st != swipe.Dismissing {
		return res, nil
	}
	err = s.Dismissed(ctx, id)
	// a failed save still removes the note from memory
	if IndexOf(s.Notes(), id) < 0 {
		res.State = swipe.Removed.String()
		res.Removed = true
	}
	return res, err
}

// RowState returns the gesture state of note id. Rows without a gesture
// in progress are Idle.
func (s *Service) RowState(id int) swipe.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		return row.State()
	}
	return swipe.Idle
}

// RowOffset returns the drag displacement of note id.
func (s *Service) RowOffset(id int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		return row.Offset()
	}
	return 0
}

// RenderMarkdown converts note text to HTML. It reports false when the
// rendered HTML would hide part of the text, such as raw HTML, images or
// link reference definitions; callers then show the text as typed.
func (s *Service) RenderMarkdown(content string) (string, bool) {
	src := []byte(content)
	pc := parser.NewContext()
	doc := s.md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))
	if len(pc.References()) > 0 || hidesText(doc) {
		return "", false
	}
	var buf bytes.Buffer
	if err := s.md.Renderer().Render(&buf, src, doc); err != nil {
		return "", false
	}
	return buf.String(), true
}

func hidesText(doc ast.Node) bool {
	hidden := false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindRawHTML, ast.KindHTMLBlock, ast.KindImage:
			hidden = true
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return hidden
}
