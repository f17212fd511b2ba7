package notes

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"swipetodo/internal/swipe"
	"swipetodo/views/components"
	"swipetodo/views/models"
	"swipetodo/views/pages"
)

// ViewOptions configures how the web screen renders.
type ViewOptions struct {
	Theme    string // auto, light or dark
	Markdown bool   // render rows as Markdown when no text would be lost
}

type Handler struct {
	svc  *Service
	log  *slog.Logger
	opts ViewOptions
}

// NewHandler serves svc over HTTP. A nil log discards handler logging.
func NewHandler(svc *Service, log *slog.Logger, opts ViewOptions) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{svc: svc, log: log, opts: opts}
}

// Register mounts the REST API and the HTMX screen on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	// REST API endpoints
	mux.HandleFunc("GET /api/notes", h.ListNotes)
	mux.HandleFunc("POST /api/notes", h.CreateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", h.DeleteNote)
	mux.HandleFunc("POST /api/notes/{id}/swipe", h.SwipeNote)

	// HTMX Web UI
	mux.HandleFunc("GET /", h.HomePage)
	mux.HandleFunc("GET /fragments/notes", h.NotesFragment)
	mux.HandleFunc("POST /fragments/notes", h.AddFragment)
	mux.HandleFunc("POST /fragments/notes/{id}/release", h.ReleaseFragment)
	mux.HandleFunc("POST /fragments/flush", h.FlushFragment)
}

// --- REST API Handlers ---

// ListNotes handles GET /api/notes
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, Record{Notes: h.svc.Notes()}, http.StatusOK)
}

// CreateNote handles POST /api/notes
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var input AddNoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	note, err := h.svc.AddText(r.Context(), input.Note)
	if errors.Is(err, ErrEmptyNote) {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, ErrNotLoaded) {
		h.jsonError(w, "stored notes could not be read", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		h.jsonError(w, "note kept in memory but not saved", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, note, http.StatusCreated)
}

// DeleteNote handles DELETE /api/notes/{id}
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	_, err := h.svc.Remove(r.Context(), id)
	if errors.Is(err, ErrNotLoaded) {
		h.jsonError(w, "stored notes could not be read", http.StatusServiceUnavailable)
		return
	}
	if errors.Is(err, ErrNoteNotFound) {
		h.jsonError(w, "note not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.jsonError(w, "note removed in memory but not saved", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SwipeNote handles POST /api/notes/{id}/swipe
func (h *Handler) SwipeNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var input SwipeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Swipe(r.Context(), id, input.DX)
	switch {
	case errors.Is(err, ErrNotLoaded):
		h.jsonError(w, "stored notes could not be read", http.StatusServiceUnavailable)
	case errors.Is(err, ErrNoteNotFound):
		h.jsonError(w, "note not found", http.StatusNotFound)
	case errors.Is(err, swipe.ErrInvalidTransition):
		h.jsonError(w, err.Error(), http.StatusConflict)
	case err != nil:
		h.jsonError(w, "note removed in memory but not saved", http.StatusInternalServerError)
	default:
		h.jsonResponse(w, res, http.StatusOK)
	}
}

// --- Helper methods ---

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.jsonError(w, "note ID must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// isDark picks the palette: an explicit ?theme= wins, then the browser's
// color scheme hint, then the configured theme.
func (h *Handler) isDark(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("theme")) {
	case "dark":
		return true
	case "light":
		return false
	}
	switch strings.Trim(strings.ToLower(r.Header.Get("Sec-CH-Prefers-Color-Scheme")), `"`) {
	case "dark":
		return true
	case "light":
		return false
	}
	return h.opts.Theme == "dark"
}

// --- View model converters ---

func (h *Handler) screenView(r *http.Request) models.ScreenView {
	snap := h.svc.Snapshot()
	v := models.ScreenView{
		Notes:   h.notesToViews(snap.Notes),
		CanAdd:  snap.CanAdd,
		Loading: snap.Loading,
		Dark:    h.isDark(r),
		Retry:   snap.Dirty || snap.LoadFailed,
	}
	if snap.Err != nil {
		v.Error = snap.Err.Error()
	}
	return v
}

func (h *Handler) notesToViews(list []Note) []models.NoteView {
	views := make([]models.NoteView, len(list))
	for i, n := range list {
		views[i] = models.NoteView{ID: n.ID, Text: n.Text}
		if h.opts.Markdown {
			if html, ok := h.svc.RenderMarkdown(n.Text); ok {
				views[i].HTML = html
			}
		}
	}
	return views
}

// --- HTMX Web Handlers ---

// HomePage handles GET /
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Accept-CH", "Sec-CH-Prefers-Color-Scheme")
	w.Header().Set("Vary", "Sec-CH-Prefers-Color-Scheme")
	pages.HomePage(h.screenView(r)).Render(r.Context(), w)
}

// NotesFragment handles GET /fragments/notes (HTMX partial)
func (h *Handler) NotesFragment(w http.ResponseWriter, r *http.Request) {
	h.renderScreen(w, r)
}

// AddFragment handles POST /fragments/notes (HTMX partial). A blank note
// re-renders the screen unchanged.
func (h *Handler) AddFragment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	text := r.PostFormValue("note")
	if canAdd(text) {
		// save failures surface through the screen's error banner
		_, _ = h.svc.AddText(r.Context(), text)
	}
	h.renderScreen(w, r)
}

// ReleaseFragment handles POST /fragments/notes/{id}/release (HTMX partial)
func (h *Handler) ReleaseFragment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "note ID must be an integer", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	dx, err := strconv.ParseFloat(r.PostFormValue("dx"), 64)
	if err != nil {
		http.Error(w, "dx must be a number", http.StatusBadRequest)
		return
	}

	if _, err := h.svc.Swipe(r.Context(), id, dx); err != nil && !errors.Is(err, ErrNoteNotFound) {
		h.log.Warn("swipe release failed", "id", id, "dx", dx, "error", err)
	}
	h.renderScreen(w, r)
}

// FlushFragment handles POST /fragments/flush (HTMX partial)
func (h *Handler) FlushFragment(w http.ResponseWriter, r *http.Request) {
	_ = h.svc.Flush(r.Context())
	h.renderScreen(w, r)
}

func (h *Handler) renderScreen(w http.ResponseWriter, r *http.Request) {
	v := h.screenView(r)
	if v.Loading {
		components.LoadingOverlay(v).Render(r.Context(), w)
		return
	}
	components.Screen(v).Render(r.Context(), w)
}
