package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"architecture-risk-engine/pkg/graph"
	"architecture-risk-engine/pkg/logger"
	"architecture-risk-engine/pkg/simulation"
	"architecture-risk-engine/pkg/storage"
)

type DiagramsHandler struct {
	Service *simulation.Service
}

func (h *DiagramsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/diagrams", func(r chi.Router) {
		r.Post("/", h.SaveDiagram)
		r.Get("/", h.ListDiagrams)
		r.Get("/{id}", h.GetDiagram)
		r.Delete("/{id}", h.DeleteDiagram)
		r.Post("/{id}/analyze", h.AnalyzeDiagram)
	})
}

type saveDiagramRequest struct {
	Name  string       `json:"name" validate:"required,max=200"`
	Nodes []graph.Node `json:"nodes" validate:"required"`
	Edges []graph.Edge `json:"edges" validate:"required"`
}

type analyzeStoredRequest struct {
	EntryNode string `json:"entryNode,omitempty"`
}

func handleStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, simulation.ErrStorageDisabled):
		respondError(w, http.StatusServiceUnavailable, "Diagram store not available. Check SQLite configuration.")
	case errors.Is(err, storage.ErrDiagramNotFound):
		respondError(w, http.StatusNotFound, "Diagram not found")
	default:
		logger.Error("Diagram store error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// SaveDiagram godoc
// @Summary Save a diagram
// @Description Stores a named diagram so it can be analyzed later by id
// @Tags diagrams
// @Accept json
// @Produce json
// @Param request body saveDiagramRequest true "Diagram"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/diagrams [post]
func (h *DiagramsHandler) SaveDiagram(w http.ResponseWriter, r *http.Request) {
	var req saveDiagramRequest
	if !decodeJSON(w, r, &req, respondError) {
		return
	}
	if err := validateStruct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.Service.SaveDiagram(r.Context(), req.Name, graph.Diagram{Nodes: req.Nodes, Edges: req.Edges})
	if err != nil {
		handleStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":        saved.ID,
		"name":      saved.Name,
		"createdAt": saved.CreatedAt,
	})
}

// ListDiagrams godoc
// @Summary List saved diagrams
// @Tags diagrams
// @Produce json
// @Param limit query int false "Limit number of records" default(50)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]string
// @Router /api/diagrams [get]
func (h *DiagramsHandler) ListDiagrams(w http.ResponseWriter, r *http.Request) {
	limit := storage.DefaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			limit = v
		}
	}

	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil {
			offset = v
		}
	}

	diagrams, applied, total, err := h.Service.ListDiagrams(r.Context(), storage.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		handleStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"diagrams": diagrams,
		"pagination": map[string]interface{}{
			"limit":  applied.Limit,
			"offset": applied.Offset,
			"total":  total,
		},
	})
}

// GetDiagram godoc
// @Summary Get a saved diagram
// @Tags diagrams
// @Produce json
// @Param id path string true "Diagram id"
// @Success 200 {object} storage.DiagramRecord
// @Failure 404 {object} map[string]string
// @Router /api/diagrams/{id} [get]
func (h *DiagramsHandler) GetDiagram(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.GetDiagram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// DeleteDiagram godoc
// @Summary Delete a saved diagram
// @Tags diagrams
// @Param id path string true "Diagram id"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/diagrams/{id} [delete]
func (h *DiagramsHandler) DeleteDiagram(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteDiagram(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AnalyzeDiagram godoc
// @Summary Analyze a saved diagram
// @Tags diagrams
// @Accept json
// @Produce json
// @Param id path string true "Diagram id"
// @Success 200 {object} analyzeResponse
// @Failure 404 {object} map[string]string
// @Router /api/diagrams/{id}/analyze [post]
func (h *DiagramsHandler) AnalyzeDiagram(w http.ResponseWriter, r *http.Request) {
	// The body is optional; it only carries an entry override.
	var req analyzeStoredRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req, respondError) {
		return
	}

	result, err := h.Service.AnalyzeStored(r.Context(), chi.URLParam(r, "id"), req.EntryNode)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, analyzeResponse{Success: true, AnalysisResult: result})
}
