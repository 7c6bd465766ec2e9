package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/atvirokodosprendimai/employees/internal/core/domain"
	"github.com/atvirokodosprendimai/employees/internal/core/usecase"
	"github.com/atvirokodosprendimai/employees/internal/core/validation"
)

const (
	maxJSONBodySize = 1 << 20

	msgInvalidBody = "Request body must be a single JSON object."
	msgInternal    = "internal server error"
)

type Handler struct {
	employees *usecase.EmployeeService
	log       logrus.FieldLogger
}

func NewHandler(employees *usecase.EmployeeService, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{employees: employees, log: log}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/healthz", h.healthz)
	r.Get("/openapi.json", h.openapi)

	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.listEmployees)
		r.Post("/", h.createEmployee)
		r.Get("/{id}", h.getEmployee)
		r.Put("/{id}", h.replaceEmployee)
		r.Delete("/{id}", h.deleteEmployee)
	})

	return r
}

type employeeResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	HireDate  string `json:"hireDate"`
	Role      string `json:"role"`
	Quote     string `json:"quote"`
	Joke      string `json:"joke"`
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employees.List(r.Context())
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}

	result := make([]employeeResponse, 0, len(employees))
	for _, emp := range employees {
		result = append(result, toEmployeeResponse(emp))
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.employees.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toEmployeeResponse(emp))
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	emp, err := h.employees.Create(r.Context(), rec)
	if err != nil {
		h.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/employees/"+emp.ID)
	h.writeJSON(w, http.StatusCreated, toEmployeeResponse(emp))
}

func (h *Handler) replaceEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// Unknown ids answer 404 even when the body is broken.
	if _, err := h.employees.Get(r.Context(), id); err != nil {
		h.handleDomainError(w, r, err)
		return
	}

	rec, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	if _, err := h.employees.Replace(r.Context(), id, rec); err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.employees.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) openapi(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, openapiSpec())
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, "Not found")
}

// decodeRecord reads a single JSON object. Keys explicitly set to null stay
// present in the returned record.
func (h *Handler) decodeRecord(w http.ResponseWriter, r *http.Request) (validation.Record, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	decoder := json.NewDecoder(r.Body)

	var rec validation.Record
	if err := decoder.Decode(&rec); err != nil || rec == nil {
		h.writeResult(w, http.StatusBadRequest, msgInvalidBody)
		return nil, false
	}
	if err := ensureEOF(decoder); err != nil {
		h.writeResult(w, http.StatusBadRequest, msgInvalidBody)
		return nil, false
	}
	return rec, true
}

func toEmployeeResponse(emp domain.Employee) employeeResponse {
	return employeeResponse{
		ID:        emp.ID,
		FirstName: emp.FirstName,
		LastName:  emp.LastName,
		HireDate:  emp.HireDate,
		Role:      emp.Role,
		Quote:     emp.Quote,
		Joke:      emp.Joke,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		h.log.WithError(err).Error("encode json response")
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		h.log.WithError(err).Warn("write response")
	}
}

func (h *Handler) writeResult(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"result": message})
}

func (h *Handler) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var violation *validation.Violation
	switch {
	case errors.As(err, &violation):
		h.writeResult(w, http.StatusBadRequest, violation.Message)
	case errors.Is(err, domain.ErrNotFound):
		h.writeResult(w, http.StatusNotFound, fmt.Sprintf("Resource with id [%s] not found.", chi.URLParam(r, "id")))
	default:
		h.log.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"error":      err,
		}).Error("request failed")
		h.writeResult(w, http.StatusInternalServerError, msgInternal)
	}
}

func ensureEOF(decoder *json.Decoder) error {
	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return errors.New("extra json tokens")
}
