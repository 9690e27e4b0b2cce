package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"architecture-risk-engine/pkg/config"
	"architecture-risk-engine/pkg/graph"
	"architecture-risk-engine/pkg/simulation"
)

const maxBodyBytes = 5 << 20

type Handler struct {
	Config            *config.Config
	SimulationService *simulation.Service
	StartTime         time.Time
}

func NewHandler(cfg *config.Config, simService *simulation.Service) *Handler {
	return &Handler{
		Config:            cfg,
		SimulationService: simService,
		StartTime:         time.Now(),
	}
}

type diagramRequest struct {
	Nodes     []graph.Node `json:"nodes" validate:"required"`
	Edges     []graph.Edge `json:"edges" validate:"required"`
	EntryNode string       `json:"entryNode,omitempty"`
}

type nodesRequest struct {
	Nodes []graph.Node `json:"nodes" validate:"required"`
}

type analyzeResponse struct {
	Success bool `json:"success"`
	*simulation.AnalysisResult
}

// errorWriter renders a 400 in the calling endpoint's error shape.
type errorWriter func(w http.ResponseWriter, status int, message string)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, fail errorWriter) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		fail(w, http.StatusBadRequest, bodyErrorMessage(err))
		return false
	}
	return true
}

// bodyErrorMessage names the offending field when a diagram collection has
// the wrong JSON type.
func bodyErrorMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		switch typeErr.Field {
		case "nodes", "edges", "traffic_steps":
			return typeErr.Field + " must be an array"
		}
	}
	return "Invalid request body"
}

// HealthHandler godoc
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	uptimeSeconds := time.Since(h.StartTime).Seconds()
	uptimeSeconds = float64(int(uptimeSeconds*10)) / 10.0

	advisorStatus := h.SimulationService.AdvisorStatus()

	status := "ok"
	if advisorStatus.State == "open" {
		status = "degraded"
	}

	resp := map[string]interface{}{
		"status":        status,
		"uptimeSeconds": uptimeSeconds,
		"advisor":       advisorStatus,
		"storage": map[string]interface{}{
			"enabled": h.SimulationService.StorageEnabled(),
		},
		"config": map[string]interface{}{
			"defaultEdgeLatencyMs": h.Config.Analysis.DefaultEdgeLatencyMs,
			"latencyEntryNode":     h.Config.Analysis.LatencyEntryNode,
			"maxVisitsPerNode":     h.Config.Traffic.MaxVisitsPerNode,
		},
	}

	respondJSON(w, http.StatusOK, resp)
}

// AnalyzeHandler godoc
// @Summary Analyze an architecture diagram
// @Description Runs bottleneck, SPOF, latency, risk score and weak point analysis, then attaches advisory suggestions
// @Tags analysis
// @Accept json
// @Produce json
// @Param request body diagramRequest true "Diagram"
// @Success 200 {object} analyzeResponse
// @Failure 400 {object} map[string]string
// @Router /api/analyze [post]
func (h *Handler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	var req diagramRequest
	if !decodeJSON(w, r, &req, respondError) {
		return
	}
	if err := validateStruct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Nodes and edges are required")
		return
	}

	result := h.SimulationService.Analyze(r.Context(), graph.Diagram{Nodes: req.Nodes, Edges: req.Edges}, req.EntryNode)
	respondJSON(w, http.StatusOK, analyzeResponse{Success: true, AnalysisResult: result})
}

// CascadeHandler godoc
// @Summary Cascade failure analysis
// @Description Fails each service in turn and lists the services that depend on it
// @Tags analysis
// @Accept json
// @Produce json
// @Param request body diagramRequest true "Diagram"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/analyze/cascade [post]
func (h *Handler) CascadeHandler(w http.ResponseWriter, r *http.Request) {
	var req diagramRequest
	if !decodeJSON(w, r, &req, respondError) {
		return
	}
	if err := validateStruct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Nodes and edges are required")
		return
	}

	result := h.SimulationService.Cascade(r.Context(), graph.Diagram{Nodes: req.Nodes, Edges: req.Edges})
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"cascadeResult": result,
	})
}

// StressHandler godoc
// @Summary Stress test
// @Description Scales every load by 20%, 50% and 100% and reports the first crashed service per level
// @Tags analysis
// @Accept json
// @Produce json
// @Param request body nodesRequest true "Nodes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/analyze/stress [post]
func (h *Handler) StressHandler(w http.ResponseWriter, r *http.Request) {
	var req nodesRequest
	if !decodeJSON(w, r, &req, respondError) {
		return
	}
	if err := validateStruct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Nodes are required")
		return
	}

	result := h.SimulationService.Stress(r.Context(), graph.Diagram{Nodes: req.Nodes})
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"stressResult": result,
	})
}

// WeakPointHandler godoc
// @Summary Weakest service
// @Description Finds the service with the least remaining capacity
// @Tags analysis
// @Accept json
// @Produce json
// @Param request body nodesRequest true "Nodes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/analyze/weakpoint [post]
func (h *Handler) WeakPointHandler(w http.ResponseWriter, r *http.Request) {
	var req nodesRequest
	if !decodeJSON(w, r, &req, respondError) {
		return
	}
	if err := validateStruct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Nodes are required")
		return
	}

	result := h.SimulationService.WeakPoint(r.Context(), graph.Diagram{Nodes: req.Nodes})
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"weakestPoint": result,
	})
}
