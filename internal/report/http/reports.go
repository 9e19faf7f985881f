package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fieldops/salesreport/internal/report/service"
	"github.com/fieldops/salesreport/internal/report/store"
	"github.com/fieldops/salesreport/pkg/httpx"
	"github.com/fieldops/salesreport/pkg/idx"
	"github.com/fieldops/salesreport/pkg/jwtx"
)

// ReportsHandler serves daily-report CRUD. Every method runs inside
// RequireAuth, so the identity is always present.
type ReportsHandler struct {
	ReportService *service.ReportService
}

func (h *ReportsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	who, _ := httpx.IdentityFromContext(r.Context())

	reports, err := h.ReportService.List(r.Context(), who)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, reports)
}

func (h *ReportsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	who, _ := httpx.IdentityFromContext(r.Context())

	var in service.ReportInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.WriteValidationError(w, "malformed request body", nil)
		return
	}

	rep, err := h.ReportService.Create(r.Context(), who, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rep)
}

func (h *ReportsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	who, id, ok := reportRequest(w, r)
	if !ok {
		return
	}
	rep, err := h.ReportService.Get(r.Context(), who, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rep)
}

func (h *ReportsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	who, id, ok := reportRequest(w, r)
	if !ok {
		return
	}

	var in service.ReportInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.WriteValidationError(w, "malformed request body", nil)
		return
	}

	rep, err := h.ReportService.Update(r.Context(), who, id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rep)
}

func (h *ReportsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	who, id, ok := reportRequest(w, r)
	if !ok {
		return
	}
	if err := h.ReportService.Delete(r.Context(), who, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reportRequest pulls the identity and the path id, writing the error
// response itself when the id is malformed.
func reportRequest(w http.ResponseWriter, r *http.Request) (jwtx.Identity, idx.ID, bool) {
	who, _ := httpx.IdentityFromContext(r.Context())
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		httpx.WriteValidationError(w, "invalid report id", nil)
		return jwtx.Identity{}, idx.Zero, false
	}
	return who, id, true
}

// writeServiceError maps service-layer errors onto the HTTP taxonomy.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteValidationError(w, "invalid input", verr.Fields)
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, httpx.CodeForbidden, "not allowed")
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, httpx.CodeNotFound, "not found")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternalError, "internal error")
	}
}
