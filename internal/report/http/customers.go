package http

import (
	"encoding/json"
	"net/http"

	"github.com/fieldops/salesreport/internal/report/service"
	"github.com/fieldops/salesreport/pkg/httpx"
	"github.com/fieldops/salesreport/pkg/idx"
)

// CustomersHandler serves customer CRUD. Reads run inside RequireAuth;
// mutations additionally require the manager role.
type CustomersHandler struct {
	CustomerService *service.CustomerService
}

func (h *CustomersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	customers, err := h.CustomerService.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, customers)
}

func (h *CustomersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		httpx.WriteValidationError(w, "invalid customer id", nil)
		return
	}
	c, err := h.CustomerService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *CustomersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	who, _ := httpx.IdentityFromContext(r.Context())

	var in service.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.WriteValidationError(w, "malformed request body", nil)
		return
	}

	c, err := h.CustomerService.Create(r.Context(), who, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

func (h *CustomersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		httpx.WriteValidationError(w, "invalid customer id", nil)
		return
	}

	var in service.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.WriteValidationError(w, "malformed request body", nil)
		return
	}

	c, err := h.CustomerService.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *CustomersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		httpx.WriteValidationError(w, "invalid customer id", nil)
		return
	}
	if err := h.CustomerService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
