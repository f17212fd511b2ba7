package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"swipetodo/internal/notes"
	"swipetodo/internal/swipe"
	"swipetodo/internal/theme"
	"swipetodo/views/models"
)

type styles struct {
	palette     theme.Palette
	title       lipgloss.Style
	card        lipgloss.Style
	cardFocused lipgloss.Style
	empty       lipgloss.Style
	inputBox    lipgloss.Style
	inputText   lipgloss.Style
	button      lipgloss.Style
	buttonOff   lipgloss.Style
	errorLine   lipgloss.Style
	muted       lipgloss.Style
}

func newStyles(dark bool) styles {
	p := theme.For(dark)
	fg := lipgloss.Color(p.Text)
	card := lipgloss.NewStyle().
		Foreground(fg).
		Background(lipgloss.Color(p.Card)).
		Padding(0, 1).
		Align(lipgloss.Center).
		MaxHeight(1)
	button := lipgloss.NewStyle().
		Foreground(fg).
		Background(lipgloss.Color(p.Button)).
		Bold(true).
		Padding(0, 2)
	return styles{
		palette:     p,
		title:       lipgloss.NewStyle().Foreground(fg).Bold(true),
		card:        card,
		cardFocused: card.Bold(true).Underline(true),
		empty: lipgloss.NewStyle().
			Foreground(fg).
			Background(lipgloss.Color(p.Empty)).
			Bold(true).
			Padding(0, 2),
		inputBox: lipgloss.NewStyle().
			Background(lipgloss.Color(p.Input)).
			Padding(0, 1),
		inputText: lipgloss.NewStyle().Foreground(fg),
		button:    button,
		buttonOff: button.Faint(true).Foreground(lipgloss.Color(p.Muted)),
		errorLine: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Error)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)),
	}
}

// Fixed lines above the list: title, blank, status, blank.
const listTop = 4

// screenLayout is the rendered screen plus the line of each hit target.
type screenLayout struct {
	lines   []string
	ids     []int // note ids in display order
	rowY    []int // line of each row; -1 when scrolled out
	inputY  int
	buttonY int
}

func (l screenLayout) rowAt(y int) (int, bool) {
	for i, ry := range l.rowY {
		if ry >= 0 && ry == y {
			return i, true
		}
	}
	return 0, false
}

func (m Model) View() string {
	snap := m.svc.Snapshot()
	if snap.Loading {
		return m.loadingView()
	}
	return strings.Join(m.layoutFrom(snap).lines, "\n")
}

func (m Model) loadingView() string {
	w := m.screenWidth()
	line := m.spinner.View() + " " + m.styles.title.Render(models.LoadingText)
	var b strings.Builder
	for i := 0; i < m.height/2; i++ {
		b.WriteString("\n")
	}
	b.WriteString(center(line, w))
	return b.String()
}

func (m Model) layout() screenLayout {
	return m.layoutFrom(m.svc.Snapshot())
}

func (m Model) layoutFrom(snap notes.Snapshot) screenLayout {
	w := m.screenWidth()
	l := screenLayout{}

	l.lines = append(l.lines,
		center(m.styles.title.Render(models.Title(len(snap.Notes))), w),
		"",
		center(m.statusLine(snap), w),
		"",
	)

	if snap.Empty() {
		l.lines = append(l.lines, center(m.styles.empty.Render(models.EmptyText), w), "")
	}

	first, last := m.visibleRows(len(snap.Notes))
	for i, n := range snap.Notes {
		l.ids = append(l.ids, n.ID)
		if i < first || i >= last {
			l.rowY = append(l.rowY, -1)
			continue
		}
		l.rowY = append(l.rowY, len(l.lines))
		selected := m.focus == focusList && i == m.cursor
		l.lines = append(l.lines, m.renderRow(n, selected, w), "")
	}
	if first > 0 || last < len(snap.Notes) {
		l.lines = append(l.lines, center(m.styles.muted.Render(
			strings.Repeat("↑", min(first, 1))+" scroll "+strings.Repeat("↓", min(len(snap.Notes)-last, 1))), w), "")
	}

	l.inputY = len(l.lines)
	l.lines = append(l.lines, center(m.styles.inputBox.Render(m.input.View()), w), "")

	l.buttonY = len(l.lines)
	btn := m.styles.buttonOff
	if snap.CanAdd {
		btn = m.styles.button
	}
	l.lines = append(l.lines, center(btn.Render(models.AddLabel), w), "")

	l.lines = append(l.lines, center(m.styles.muted.Render(m.help()), w))
	return l
}

func (m Model) statusLine(snap notes.Snapshot) string {
	if snap.Err == nil {
		return ""
	}
	msg := models.StorageErrorLabel + ": " + snap.Err.Error()
	if snap.Dirty || snap.LoadFailed {
		msg += " (ctrl+s to retry)"
	}
	return m.styles.errorLine.Render(msg)
}

func (m Model) help() string {
	if m.focus == focusInput {
		return "enter add • tab list • ctrl+c quit"
	}
	return "←/→ drag • enter release • esc cancel • d swipe away • tab input • q quit"
}

// visibleRows returns the half-open range of rows that fit the terminal,
// keeping the cursor in view.
func (m Model) visibleRows(n int) (int, int) {
	if m.height <= 0 {
		return 0, n
	}
	fit := max(1, (m.height-listTop-7)/2)
	if n <= fit {
		return 0, n
	}
	first := 0
	if m.cursor >= fit {
		first = m.cursor - fit + 1
	}
	first = min(first, n-fit)
	return first, first + fit
}

// renderRow draws a note card shifted by its drag offset and shrunk by its
// appear or dismiss animation.
func (m Model) renderRow(n notes.Note, selected bool, width int) string {
	base := max(4, width*8/10)
	offset := m.svc.RowOffset(n.ID)
	scale := 1.0
	faint := false

	if a, ok := m.anims[n.ID]; ok {
		switch a.kind {
		case animDismiss:
			opacity, s := swipe.Fade(m.now().Sub(a.start))
			scale = s
			faint = opacity < 0.5
		case animSpring:
			offset = a.pos
		case animAppear:
			scale = swipe.Progress(m.now().Sub(a.start), swipe.AppearDuration)
		}
	}

	w := int(float64(base) * scale)
	margin := (width-w)/2 + int(math.Round(offset/cellUnits))
	if margin < 0 {
		w += margin
		margin = 0
	}
	if w < 1 {
		return ""
	}

	st := m.styles.card
	if selected {
		st = m.styles.cardFocused
	}
	st = st.Width(w).Faint(faint)
	// cards are one line tall; long notes end in an ellipsis
	text := xansi.Truncate(strings.ReplaceAll(n.Text, "\n", " "), max(1, w-2), "…")
	return strings.Repeat(" ", margin) + st.Render(text)
}

func (m Model) screenWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func center(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
