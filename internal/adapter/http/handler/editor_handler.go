package handler

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/dashfin/finmirror/internal/adapter/http/dto"
	"github.com/dashfin/finmirror/internal/domain"
	"github.com/dashfin/finmirror/internal/usecase"
)

// EditorHandler exposes the edit session over HTTP. The session is
// single-owner state for one form surface, so every request serializes
// on the handler mutex.
type EditorHandler struct {
	mu      sync.Mutex
	session *usecase.EditSession
	store   *usecase.SnapshotStore
}

// NewEditorHandler creates a new EditorHandler.
func NewEditorHandler(session *usecase.EditSession, store *usecase.SnapshotStore) *EditorHandler {
	return &EditorHandler{
		session: session,
		store:   store,
	}
}

// State returns the current session state and draft.
func (h *EditorHandler) State(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.writeSession(w, http.StatusOK)
}

// OpenCreate opens the session for a new record with default values.
// An already open session is silently replaced, last open wins.
func (h *EditorHandler) OpenCreate(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.session.OpenCreate()
	h.writeSession(w, http.StatusOK)
}

// OpenEdit opens the session seeded from the snapshot's copy of the
// record.
func (h *EditorHandler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing record ID", "")
		return
	}

	record, ok := h.findRecord(id)
	if !ok {
		writeError(w, http.StatusNotFound, "record not found", id)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.session.OpenEdit(record)
	h.writeSession(w, http.StatusOK)
}

// SetField updates one draft field.
func (h *EditorHandler) SetField(w http.ResponseWriter, r *http.Request) {
	var req dto.SetFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.session.SetField(req.Field, req.Value); err != nil {
		writeError(w, mapDomainError(err), "failed to set field", err.Error())
		return
	}

	h.writeSession(w, http.StatusOK)
}

// Submit validates the draft and dispatches it to the remote store. A
// failed submit leaves the session open with the draft and error
// intact, so the response body always reflects where the user stands.
func (h *EditorHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.session.Submit(r.Context()); err != nil {
		h.writeSession(w, mapDomainError(err))
		return
	}

	h.writeSession(w, http.StatusOK)
}

// Cancel closes the session, discarding the draft.
func (h *EditorHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.session.Cancel()
	h.writeSession(w, http.StatusOK)
}

func (h *EditorHandler) writeSession(w http.ResponseWriter, status int) {
	writeJSON(w, status, dto.SessionFromState(
		h.session.Mode(),
		h.session.TargetID(),
		h.session.Draft(),
		h.session.Err(),
	))
}

func (h *EditorHandler) findRecord(id string) (domain.Record, bool) {
	for _, record := range h.store.Records() {
		if record.ID == id {
			return record, true
		}
	}
	return domain.Record{}, false
}
