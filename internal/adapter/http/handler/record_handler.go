package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dashfin/finmirror/internal/adapter/http/dto"
	"github.com/dashfin/finmirror/internal/adapter/http/middleware"
	"github.com/dashfin/finmirror/internal/domain"
	"github.com/dashfin/finmirror/internal/usecase"
)

// RecordHandler handles record-related HTTP requests. Reads come from
// the local snapshot mirror; writes go to the remote store and show up
// in reads only after the subscription redelivers.
type RecordHandler struct {
	store      *usecase.SnapshotStore
	mutationUC *usecase.MutationUseCase
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(store *usecase.SnapshotStore, mutationUC *usecase.MutationUseCase) *RecordHandler {
	return &RecordHandler{
		store:      store,
		mutationUC: mutationUC,
	}
}

// List returns the current snapshot with its delivery state. A snapshot
// still loading or carrying a delivery error is a 200: both are data.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	records, loading, err := h.store.State()

	resp := dto.SnapshotResponse{
		Loading: loading,
		Records: dto.RecordsFromDomain(records),
	}
	if err != nil {
		resp.Error = err.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create inserts a new record into the remote store.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	fields := req.ToFields()
	fields.Owner = middleware.IdentityFromContext(r.Context())

	if err := domain.ValidateFields(fields); err != nil {
		writeError(w, mapDomainError(err), "invalid record", err.Error())
		return
	}

	record, err := h.mutationUC.Create(r.Context(), fields)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create record", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.RecordFromDomain(*record))
}

// Update replaces the editable fields of a record.
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing record ID", "")
		return
	}

	var req dto.RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	fields := req.ToFields()
	fields.Owner = middleware.IdentityFromContext(r.Context())

	if err := domain.ValidateFields(fields); err != nil {
		writeError(w, mapDomainError(err), "invalid record", err.Error())
		return
	}

	if err := h.mutationUC.Update(r.Context(), id, fields); err != nil {
		writeError(w, mapDomainError(err), "failed to update record", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a record.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing record ID", "")
		return
	}

	if err := h.mutationUC.Delete(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete record", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
