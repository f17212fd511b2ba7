// Package tui is the terminal front end of the todo list: one screen with
// the notes, an input to add a note and swipe-to-dismiss rows driven by
// mouse drags or the arrow keys.
package tui

import (
	"context"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"swipetodo/internal/config"
	"swipetodo/internal/notes"
	"swipetodo/internal/swipe"
	"swipetodo/views/models"
)

const (
	fps = 60
	// cellUnits is how many logical units one terminal column is worth.
	cellUnits = 10.0
	// keyStep is how far one arrow key press drags a row.
	keyStep = 40.0
)

type focus int

const (
	focusInput focus = iota
	focusList
)

type animKind int

const (
	animAppear animKind = iota
	animDismiss
	animSpring
)

type rowAnim struct {
	kind  animKind
	start time.Time
	pos   float64
	vel   float64
}

type mouseDrag struct {
	id     int
	startX int
}

type loadedMsg struct{ err error }

type frameMsg time.Time

// Options configure the screen.
type Options struct {
	Dark    bool
	Timeout time.Duration
	Logger  *slog.Logger
}

type Model struct {
	ctx     context.Context
	svc     *notes.Service
	log     *slog.Logger
	timeout time.Duration

	input   textinput.Model
	spinner spinner.Model
	styles  styles
	spring  harmonica.Spring

	focus   focus
	cursor  int
	width   int
	height  int
	drag    *mouseDrag
	anims   map[int]*rowAnim
	ticking bool

	now func() time.Time
}

// ResolveDark turns a configured theme into the single dark/light switch.
// "auto" asks the terminal.
func ResolveDark(theme string) bool {
	switch theme {
	case config.ThemeDark:
		return true
	case config.ThemeLight:
		return false
	default:
		return lipgloss.HasDarkBackground()
	}
}

func New(ctx context.Context, svc *notes.Service, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	st := newStyles(opts.Dark)

	ti := textinput.New()
	ti.Placeholder = models.InputHint
	ti.CharLimit = 1024
	ti.Width = 40
	ti.Prompt = ""
	ti.TextStyle = st.inputText
	ti.PlaceholderStyle = st.muted

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.title

	return Model{
		ctx:     ctx,
		svc:     svc,
		log:     opts.Logger,
		timeout: opts.Timeout,
		input:   ti,
		spinner: sp,
		styles:  st,
		spring:  harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0),
		focus:   focusInput,
		anims:   make(map[int]*rowAnim),
		now:     time.Now,
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, svc *notes.Service, opts Options) error {
	p := tea.NewProgram(New(ctx, svc, opts),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.mount(), textinput.Blink)
}

func (m Model) mount() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		defer cancel()
		return loadedMsg{err: m.svc.Mount(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(10, msg.Width*7/10-2)
		return m, nil
	case spinner.TickMsg:
		if !m.svc.Snapshot().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case loadedMsg:
		if msg.err != nil {
			m.log.Warn("starting with an empty list", "error", msg.err)
		}
		return m, m.input.Focus()
	case frameMsg:
		return m.advance(time.Time(msg))
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.svc.Snapshot().Loading {
		return m, nil
	}
	switch key {
	case "tab", "shift+tab":
		return m.toggleFocus()
	case "ctrl+s":
		ctx, cancel := m.opContext()
		defer cancel()
		_ = m.svc.Flush(ctx)
		return m, nil
	}
	if m.focus == focusInput {
		return m.updateInput(msg)
	}
	return m.updateList(key)
}

func (m Model) toggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusInput {
		m.focus = focusList
		m.input.Blur()
		m.cursor = clampCursor(m.cursor, len(m.svc.Notes()))
		return m, nil
	}
	m.focus = focusInput
	return m, m.input.Focus()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		return m.add()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.svc.SetInput(m.input.Value())
	return m, cmd
}

// add runs the save inline so the next key is handled against the
// updated list.
func (m Model) add() (tea.Model, tea.Cmd) {
	ctx, cancel := m.opContext()
	defer cancel()
	n, added, _ := m.svc.Add(ctx)
	if !added {
		return m, nil
	}
	m.input.SetValue("")
	m.anims[n.ID] = &rowAnim{kind: animAppear, start: m.now()}
	return m, m.startFrames()
}

func (m Model) updateList(key string) (tea.Model, tea.Cmd) {
	list := m.svc.Notes()
	if key == "q" {
		return m, tea.Quit
	}
	if len(list) == 0 {
		return m, nil
	}
	m.cursor = clampCursor(m.cursor, len(list))
	id := list[m.cursor].ID

	switch key {
	case "up", "k":
		m.cursor = clampCursor(m.cursor-1, len(list))
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(list))
	case "left", "h":
		m.nudge(id, -keyStep)
	case "right", "l":
		m.nudge(id, keyStep)
	case "enter", " ":
		return m.release(id)
	case "esc":
		return m.cancelDrag(id)
	case "d", "delete", "backspace":
		return m.swipeAway(id)
	}
	return m, nil
}

func (m *Model) nudge(id int, delta float64) {
	if m.svc.RowState(id) == swipe.Idle {
		if err := m.svc.BeginDrag(id); err != nil {
			return
		}
		delete(m.anims, id)
	}
	if m.svc.RowState(id) != swipe.Dragging {
		return
	}
	_ = m.svc.Drag(id, m.svc.RowOffset(id)+delta)
}

func (m Model) release(id int) (tea.Model, tea.Cmd) {
	if m.svc.RowState(id) != swipe.Dragging {
		return m, nil
	}
	from := m.svc.RowOffset(id)
	st, err := m.svc.Release(id)
	if err != nil {
		return m, nil
	}
	if st == swipe.Dismissing {
		m.anims[id] = &rowAnim{kind: animDismiss, start: m.now()}
	} else {
		m.anims[id] = &rowAnim{kind: animSpring, start: m.now(), pos: from}
	}
	return m, m.startFrames()
}

func (m Model) cancelDrag(id int) (tea.Model, tea.Cmd) {
	if m.svc.RowState(id) != swipe.Dragging {
		return m, nil
	}
	from := m.svc.RowOffset(id)
	_ = m.svc.Drag(id, 0)
	if _, err := m.svc.Release(id); err != nil {
		return m, nil
	}
	m.anims[id] = &rowAnim{kind: animSpring, start: m.now(), pos: from}
	return m, m.startFrames()
}

// swipeAway drags the row just past the threshold and lets go.
func (m Model) swipeAway(id int) (tea.Model, tea.Cmd) {
	if m.svc.RowState(id) == swipe.Idle {
		if err := m.svc.BeginDrag(id); err != nil {
			return m, nil
		}
	}
	if err := m.svc.Drag(id, -(swipe.Threshold + keyStep)); err != nil {
		return m, nil
	}
	return m.release(id)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.svc.Snapshot().Loading {
		return m, nil
	}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		l := m.layout()
		switch {
		case msg.Y == l.buttonY:
			return m.add()
		case msg.Y == l.inputY:
			m.focus = focusInput
			return m, m.input.Focus()
		}
		idx, ok := l.rowAt(msg.Y)
		if !ok {
			return m, nil
		}
		id := l.ids[idx]
		if m.svc.RowState(id) != swipe.Idle {
			return m, nil
		}
		if err := m.svc.BeginDrag(id); err != nil {
			return m, nil
		}
		delete(m.anims, id)
		m.drag = &mouseDrag{id: id, startX: msg.X}
		m.focus = focusList
		m.input.Blur()
		m.cursor = idx
	case tea.MouseActionMotion:
		if m.drag == nil {
			return m, nil
		}
		_ = m.svc.Drag(m.drag.id, float64(msg.X-m.drag.startX)*cellUnits)
	case tea.MouseActionRelease:
		if m.drag == nil {
			return m, nil
		}
		id := m.drag.id
		m.drag = nil
		return m.release(id)
	}
	return m, nil
}

// advance steps every running row animation to now. A finished dismissal
// removes its note.
func (m Model) advance(now time.Time) (tea.Model, tea.Cmd) {
	m.ticking = false
	for id, a := range m.anims {
		switch a.kind {
		case animDismiss:
			if now.Sub(a.start) >= swipe.DismissDuration {
				delete(m.anims, id)
				m.dismissed(id)
			}
		case animSpring:
			a.pos, a.vel = m.spring.Update(a.pos, a.vel, 0)
			if math.Abs(a.pos) < 0.5 && math.Abs(a.vel) < 0.5 {
				delete(m.anims, id)
			}
		case animAppear:
			if now.Sub(a.start) >= swipe.AppearDuration {
				delete(m.anims, id)
			}
		}
	}
	if len(m.anims) == 0 {
		return m, nil
	}
	return m, m.startFrames()
}

func (m *Model) dismissed(id int) {
	ctx, cancel := m.opContext()
	defer cancel()
	if err := m.svc.Dismissed(ctx, id); err != nil {
		m.log.Debug("dismiss finished with error", "id", id, "error", err)
	}
	m.cursor = clampCursor(m.cursor, len(m.svc.Notes()))
}

func (m *Model) startFrames() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.ctx, m.timeout)
}

func clampCursor(c, n int) int {
	if n == 0 || c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}
