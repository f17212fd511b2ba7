package models

import "swipetodo/internal/theme"

// NoteView represents a note row for rendering
type NoteView struct {
	ID   int
	Text string
	HTML string // rendered markdown, empty when the row shows Text
}

// ScreenView is everything the list screen renders
type ScreenView struct {
	Notes   []NoteView
	CanAdd  bool
	Loading bool
	Dark    bool
	Error   string
	Retry   bool // a failed load or save can be retried
}

// Empty reports whether the empty-state placeholder replaces the list.
func (s ScreenView) Empty() bool { return !s.Loading && len(s.Notes) == 0 }

// Title is the screen header, with a counter once there are notes.
func (s ScreenView) Title() string {
	return Title(len(s.Notes))
}

// Palette returns the colors for the screen's mode.
func (s ScreenView) Palette() theme.Palette { return theme.For(s.Dark) }

// Scheme is the CSS color-scheme of the screen.
func (s ScreenView) Scheme() string {
	if s.Dark {
		return "dark"
	}
	return "light"
}
