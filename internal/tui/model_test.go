package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipetodo/internal/notes"
	"swipetodo/internal/swipe"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// brokenKV fails every write once broken is set.
type brokenKV struct {
	*notes.MemoryKV
	broken bool
}

func (b *brokenKV) Set(ctx context.Context, key string, value []byte) error {
	if b.broken {
		return errors.New("disk full")
	}
	return b.MemoryKV.Set(ctx, key, value)
}

func newModel(t *testing.T) (Model, *notes.Service, *brokenKV) {
	t.Helper()
	kv := &brokenKV{MemoryKV: notes.NewMemoryKV()}
	svc := notes.NewService(notes.NewStore(kv, "todo"), nil)
	m := New(context.Background(), svc, Options{})
	m.now = func() time.Time { return t0 }
	return m, svc, kv
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		u, _ := m.Update(msg)
		m = u.(Model)
	}
	return m
}

func mountModel(t *testing.T, m Model) Model {
	t.Helper()
	return send(m, m.mount()())
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func addNote(m Model, text string) Model {
	return send(typeText(m, text), key(tea.KeyEnter))
}

func TestModel_LoadingThenEmpty(t *testing.T) {
	m, _, _ := newModel(t)
	assert.Contains(t, m.View(), "Loading")

	// keys are ignored while loading
	m = send(m, runeKey('x'))
	assert.Equal(t, "", m.input.Value())

	m = mountModel(t, m)
	view := m.View()
	assert.NotContains(t, view, "Loading")
	assert.Contains(t, view, "Todo list")
	assert.Contains(t, view, "Currently, there are no TODOs.")
	assert.Contains(t, view, "Add note")
}

func TestModel_AddNote(t *testing.T) {
	m, svc, kv := newModel(t)
	m = mountModel(t, m)

	m = typeText(m, "buy milk")
	assert.Equal(t, "buy milk", svc.Input())
	assert.True(t, svc.CanAdd())

	m = send(m, key(tea.KeyEnter))
	assert.Equal(t, []notes.Note{{ID: 0, Text: "buy milk"}}, svc.Notes())
	assert.Equal(t, "", m.input.Value())

	raw, ok, err := kv.Get(context.Background(), "todo")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"notes":[{"note":"buy milk","id":0}]}`, string(raw))

	m.now = func() time.Time { return t0.Add(time.Second) }
	assert.Contains(t, m.View(), "Todo list: 1 note")
	assert.Contains(t, m.View(), "buy milk")
}

func TestModel_BlankInputDoesNothing(t *testing.T) {
	m, svc, _ := newModel(t)
	m = mountModel(t, m)

	m = send(typeText(m, "   "), key(tea.KeyEnter))
	assert.Empty(t, svc.Notes())
	assert.False(t, svc.CanAdd())
}

func TestModel_KeyboardDragBelowThreshold(t *testing.T) {
	m, svc, _ := newModel(t)
	m = addNote(mountModel(t, m), "a")

	m = send(m, key(tea.KeyTab), key(tea.KeyLeft), key(tea.KeyLeft))
	assert.Equal(t, swipe.Dragging, svc.RowState(0))
	assert.Equal(t, -80.0, svc.RowOffset(0))

	m = send(m, key(tea.KeyEnter))
	assert.Equal(t, swipe.Idle, svc.RowState(0))
	assert.Len(t, svc.Notes(), 1)
	require.Contains(t, m.anims, 0)
	assert.Equal(t, animSpring, m.anims[0].kind)

	// the spring settles back to rest
	for i := 0; i < 600 && len(m.anims) > 0; i++ {
		m = send(m, frameMsg(t0.Add(time.Duration(i)*time.Second/fps)))
	}
	assert.Empty(t, m.anims)
	assert.Len(t, svc.Notes(), 1)
}

func TestModel_KeyboardDragBeyondThreshold(t *testing.T) {
	m, svc, _ := newModel(t)
	m = addNote(mountModel(t, m), "a")

	m = send(m, key(tea.KeyTab), key(tea.KeyLeft), key(tea.KeyLeft), key(tea.KeyLeft), key(tea.KeyLeft))
	assert.Equal(t, -160.0, svc.RowOffset(0))

	m = send(m, key(tea.KeyEnter))
	assert.Equal(t, swipe.Dismissing, svc.RowState(0))
	assert.Len(t, svc.Notes(), 1, "note stays until the exit animation ends")

	m = send(m, frameMsg(t0.Add(swipe.DismissDuration/2)))
	assert.Len(t, svc.Notes(), 1)

	m = send(m, frameMsg(t0.Add(swipe.DismissDuration)))
	assert.Empty(t, svc.Notes())
	assert.Contains(t, m.View(), "Currently, there are no TODOs.")
}

func TestModel_EscCancelsDrag(t *testing.T) {
	m, svc, _ := newModel(t)
	m = addNote(mountModel(t, m), "a")

	m = send(m, key(tea.KeyTab), key(tea.KeyLeft), key(tea.KeyLeft), key(tea.KeyLeft), key(tea.KeyLeft), key(tea.KeyEsc))
	assert.Equal(t, swipe.Idle, svc.RowState(0))
	assert.Len(t, svc.Notes(), 1)
}

func TestModel_DeleteKeySwipesAway(t *testing.T) {
	m, svc, _ := newModel(t)
	m = mountModel(t, m)
	m = addNote(m, "a")
	m = addNote(m, "b")
	m = addNote(m, "c")

	m = send(m, key(tea.KeyTab), key(tea.KeyDown), runeKey('d'))
	assert.Equal(t, swipe.Dismissing, svc.RowState(1))

	m = send(m, frameMsg(t0.Add(time.Second)))
	assert.Equal(t, []notes.Note{{ID: 0, Text: "a"}, {ID: 2, Text: "c"}}, svc.Notes())
	assert.Equal(t, 1, m.cursor)
}

func TestModel_MouseSwipe(t *testing.T) {
	m, svc, _ := newModel(t)
	m = send(m, tea.WindowSizeMsg{Width: 80, Height: 40})
	m = addNote(mountModel(t, m), "a")

	y := m.layout().rowY[0]
	press := tea.MouseMsg{X: 40, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}

	t.Run("short drag springs back", func(t *testing.T) {
		m := send(m,
			press,
			tea.MouseMsg{X: 32, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
		)
		assert.Equal(t, -80.0, svc.RowOffset(0))
		m = send(m, tea.MouseMsg{X: 32, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
		assert.Equal(t, swipe.Idle, svc.RowState(0))
		assert.Nil(t, m.drag)
		assert.Len(t, svc.Notes(), 1)
	})

	t.Run("long drag dismisses", func(t *testing.T) {
		m := send(m,
			press,
			tea.MouseMsg{X: 25, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
			tea.MouseMsg{X: 25, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft},
		)
		assert.Equal(t, swipe.Dismissing, svc.RowState(0))

		send(m, frameMsg(t0.Add(swipe.DismissDuration)))
		assert.Empty(t, svc.Notes())
	})
}

func TestModel_ClickAddButton(t *testing.T) {
	m, svc, _ := newModel(t)
	m = typeText(mountModel(t, m), "from mouse")

	l := m.layout()
	m = send(m, tea.MouseMsg{X: 40, Y: l.buttonY, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, []notes.Note{{ID: 0, Text: "from mouse"}}, svc.Notes())
}

func TestModel_Sequence(t *testing.T) {
	m, svc, _ := newModel(t)
	m = mountModel(t, m)

	m = addNote(m, "a")
	m = addNote(m, "b")
	m = send(m, key(tea.KeyTab), runeKey('d'), frameMsg(t0.Add(time.Second)), key(tea.KeyTab))
	m = addNote(m, "c")

	assert.Equal(t, []notes.Note{{ID: 1, Text: "b"}, {ID: 2, Text: "c"}}, svc.Notes())
}

func TestModel_SaveErrorIsShownAndRetried(t *testing.T) {
	m, svc, kv := newModel(t)
	m = mountModel(t, m)

	kv.broken = true
	m = addNote(m, "a")
	assert.Len(t, svc.Notes(), 1)
	assert.Contains(t, m.View(), "Storage error: ")
	assert.Contains(t, m.View(), "ctrl+s to retry")

	kv.broken = false
	m = send(m, key(tea.KeyCtrlS))
	assert.False(t, strings.Contains(m.View(), "Storage error"))
	assert.False(t, svc.Snapshot().Dirty)
}

func TestModel_LoadErrorDoesNotBlock(t *testing.T) {
	kv := &brokenKV{MemoryKV: notes.NewMemoryKV(), broken: true}
	svc := notes.NewService(notes.NewStore(kv, "todo"), nil)
	m := New(context.Background(), svc, Options{})

	m = mountModel(t, m)
	view := m.View()
	assert.NotContains(t, view, "Loading")
	assert.Contains(t, view, "Storage error")
	assert.Contains(t, view, "Currently, there are no TODOs.")
}

func TestModel_LongNoteIsTruncated(t *testing.T) {
	m, _, _ := newModel(t)
	m = send(m, tea.WindowSizeMsg{Width: 40, Height: 30})
	m = addNote(mountModel(t, m), strings.Repeat("word ", 20)+"tail")
	m.now = func() time.Time { return t0.Add(time.Second) }

	view := m.View()
	assert.Contains(t, view, "…")
	assert.NotContains(t, view, "tail")
}

func TestModel_ScrollKeepsCursorVisible(t *testing.T) {
	m, _, _ := newModel(t)
	m = send(m, tea.WindowSizeMsg{Width: 80, Height: 17})
	m = mountModel(t, m)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		m = addNote(m, s)
	}
	m = send(m, key(tea.KeyTab))
	for i := 0; i < 4; i++ {
		m = send(m, key(tea.KeyDown))
	}

	l := m.layout()
	assert.Equal(t, -1, l.rowY[0], "first row scrolled out")
	assert.GreaterOrEqual(t, l.rowY[4], 0, "cursor row visible")
}

func TestResolveDark(t *testing.T) {
	assert.True(t, ResolveDark("dark"))
	assert.False(t, ResolveDark("light"))
}
