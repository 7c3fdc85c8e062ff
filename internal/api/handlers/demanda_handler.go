package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/St1cky1/demanda-service/internal/entity"
	"github.com/St1cky1/demanda-service/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type DemandaHandler struct {
	demandaService *usecase.DemandaService
}

func NewDemandaHandler(demandaService *usecase.DemandaService) *DemandaHandler {
	return &DemandaHandler{
		demandaService: demandaService,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// writeServiceError раскладывает ошибки сервиса по HTTP-кодам.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrDemandaNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entity.ErrInvalidDemandaID),
		errors.Is(err, entity.ErrInvalidDemandaData),
		errors.Is(err, entity.ErrInvalidEmployeeID),
		errors.Is(err, entity.ErrMissingStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("❌ Ошибка хранилища: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// список всех демандов, новые сверху
func (h *DemandaHandler) ListDemandas(w http.ResponseWriter, r *http.Request) {
	demandas, err := h.demandaService.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, demandas)
}

// создаем новую деманду
func (h *DemandaHandler) CreateDemanda(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateDemandaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	demanda, err := h.demandaService.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "task": demanda})
}

func (h *DemandaHandler) UpdateDemanda(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid demanda id")
		return
	}

	var req entity.UpdateDemandaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	demanda, err := h.demandaService.Update(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "task": demanda})
}

func (h *DemandaHandler) DeleteDemanda(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid demanda id")
		return
	}

	if err := h.demandaService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *DemandaHandler) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.Atoi(chi.URLParam(r, "employeeId"))
	if err != nil || employeeID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid employee id")
		return
	}

	demandas, err := h.demandaService.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, demandas)
}

func (h *DemandaHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := chi.URLParam(r, "status")

	demandas, err := h.demandaService.ListByStatus(r.Context(), status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, demandas)
}

func (h *DemandaHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.demandaService.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

func (h *DemandaHandler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.demandaService.Count(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "demandas": count})
}

// NotFound - структурный ответ для незнакомых роутов API.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "route not found")
}
