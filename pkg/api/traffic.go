package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"architecture-risk-engine/pkg/graph"
	"architecture-risk-engine/pkg/logger"
	"architecture-risk-engine/pkg/simulation"
)

// Both snake_case and camelCase keys are accepted; snake_case wins.
type trafficRequest struct {
	TotalTraffic      json.RawMessage `json:"total_traffic"`
	TotalTrafficCamel json.RawMessage `json:"totalTraffic"`
	EntryNode         string          `json:"entry_node"`
	EntryNodeCamel    string          `json:"entryNode"`
	Nodes             []graph.Node    `json:"nodes"`
	Edges             []graph.Edge    `json:"edges"`
	MaxVisitsPerNode  int             `json:"maxVisitsPerNode" validate:"gte=0,lte=100"`
}

type timelineRequest struct {
	TrafficSteps     []simulation.TrafficStep `json:"traffic_steps"`
	EntryNode        string                   `json:"entry_node"`
	EntryNodeCamel   string                   `json:"entryNode"`
	Nodes            []graph.Node             `json:"nodes"`
	Edges            []graph.Edge             `json:"edges"`
	MaxVisitsPerNode int                      `json:"maxVisitsPerNode" validate:"gte=0,lte=100"`
	TimeoutMs        float64                  `json:"timeout_ms"`
	RetryRate        *float64                 `json:"retry_rate"`
	FailureRate      *float64                 `json:"failure_rate"`
}

type trafficNodeResult struct {
	ID              string  `json:"id"`
	IncomingTraffic float64 `json:"incoming_traffic"`
	Capacity        float64 `json:"capacity"`
	Utilization     float64 `json:"utilization"`
	Status          string  `json:"status"`
	Queue           float64 `json:"queue"`
	Latency         float64 `json:"latency"`
}

type trafficResponse struct {
	Success     bool                `json:"success"`
	NodeResults []trafficNodeResult `json:"node_results"`
}

type timelineResponse struct {
	Success bool `json:"success"`
	*simulation.TimelineResult
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// totalTraffic must be a JSON number; a missing value means zero.
func totalTraffic(values ...json.RawMessage) (float64, error) {
	for _, raw := range values {
		if isNull(raw) {
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0, &simulation.ValidationError{
				Field:   "totalTraffic",
				Message: "totalTraffic must be a non-negative number",
			}
		}
		return v, nil
	}
	return 0, nil
}

func respondTrafficError(w http.ResponseWriter, status int, message string) {
	respondSimulationError(w, status, "Invalid traffic request", message)
}

func handleTrafficError(w http.ResponseWriter, err error) {
	var verr *simulation.ValidationError
	if errors.As(err, &verr) {
		respondTrafficError(w, http.StatusBadRequest, verr.Message)
		return
	}
	logger.Error("Traffic simulation error", err)
	respondSimulationError(w, http.StatusInternalServerError, "Server Error", err.Error())
}

// TrafficHandler godoc
// @Summary Single-shot traffic propagation
// @Description Distributes total_traffic from entry_node along edge percentages and reports per-node load
// @Tags traffic
// @Accept json
// @Produce json
// @Param request body trafficRequest true "Traffic scenario"
// @Success 200 {object} trafficResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/traffic [post]
func (h *Handler) TrafficHandler(w http.ResponseWriter, r *http.Request) {
	var req trafficRequest
	if !decodeJSON(w, r, &req, respondTrafficError) {
		return
	}
	if err := validateStruct(req); err != nil {
		respondTrafficError(w, http.StatusBadRequest, err.Error())
		return
	}

	traffic, err := totalTraffic(req.TotalTraffic, req.TotalTrafficCamel)
	if err != nil {
		handleTrafficError(w, err)
		return
	}

	result, err := h.SimulationService.RunTraffic(r.Context(), simulation.TrafficRequest{
		TotalTraffic:     traffic,
		EntryNode:        firstString(req.EntryNode, req.EntryNodeCamel),
		Nodes:            req.Nodes,
		Edges:            req.Edges,
		MaxVisitsPerNode: req.MaxVisitsPerNode,
	})
	if err != nil {
		handleTrafficError(w, err)
		return
	}

	nodeResults := make([]trafficNodeResult, 0, len(result.NodeSummaries))
	for _, n := range result.NodeSummaries {
		nodeResults = append(nodeResults, trafficNodeResult{
			ID:              n.ID,
			IncomingTraffic: n.Load,
			Capacity:        n.Capacity,
			Utilization:     n.Utilization,
			Status:          n.Status,
			Queue:           n.Queue,
			Latency:         n.Latency,
		})
	}

	respondJSON(w, http.StatusOK, trafficResponse{Success: true, NodeResults: nodeResults})
}

// TimelineHandler godoc
// @Summary Time-stepped traffic propagation
// @Description Runs propagation for each traffic step, accumulating queues and retry traffic
// @Tags traffic
// @Accept json
// @Produce json
// @Param request body timelineRequest true "Timeline scenario"
// @Success 200 {object} timelineResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/traffic/timeline [post]
func (h *Handler) TimelineHandler(w http.ResponseWriter, r *http.Request) {
	var req timelineRequest
	if !decodeJSON(w, r, &req, respondTrafficError) {
		return
	}
	if err := validateStruct(req); err != nil {
		respondTrafficError(w, http.StatusBadRequest, err.Error())
		return
	}

	retryRate := h.Config.Traffic.RetryRate
	if req.RetryRate != nil {
		retryRate = *req.RetryRate
	}
	failureRate := h.Config.Traffic.FailureRate
	if req.FailureRate != nil {
		failureRate = *req.FailureRate
	}

	result, err := h.SimulationService.RunTimeline(r.Context(), simulation.TimelineRequest{
		Steps:            req.TrafficSteps,
		EntryNode:        firstString(req.EntryNode, req.EntryNodeCamel),
		Nodes:            req.Nodes,
		Edges:            req.Edges,
		MaxVisitsPerNode: req.MaxVisitsPerNode,
		TimeoutMs:        req.TimeoutMs,
		RetryRate:        retryRate,
		FailureRate:      failureRate,
	})
	if err != nil {
		handleTrafficError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, timelineResponse{Success: true, TimelineResult: result})
}
