package simulation

import (
	"context"
	"errors"
	"time"

	"architecture-risk-engine/pkg/advisor"
	"architecture-risk-engine/pkg/analysis"
	"architecture-risk-engine/pkg/common"
	"architecture-risk-engine/pkg/config"
	"architecture-risk-engine/pkg/graph"
	"architecture-risk-engine/pkg/logger"
	"architecture-risk-engine/pkg/metrics"
	"architecture-risk-engine/pkg/storage"
)

var ErrStorageDisabled = errors.New("diagram storage is not enabled")

// AnalysisResult is the combined report plus advisory enrichment.
type AnalysisResult struct {
	analysis.Report
	AISuggestions advisor.Advice `json:"aiSuggestions"`
}

type Service struct {
	config   *config.Config
	advisor  advisor.Advisor
	diagrams *storage.DiagramStore
}

// NewService wires the engines to their collaborators. diagrams may be nil,
// in which case the diagram library operations return ErrStorageDisabled.
func NewService(cfg *config.Config, adv advisor.Advisor, diagrams *storage.DiagramStore) *Service {
	return &Service{
		config:   cfg,
		advisor:  adv,
		diagrams: diagrams,
	}
}

func (s *Service) StorageEnabled() bool {
	return s.diagrams != nil
}

func (s *Service) AdvisorStatus() advisor.Status {
	if s.advisor == nil {
		return advisor.Status{Enabled: false, State: "disabled"}
	}
	return s.advisor.Status()
}

func (s *Service) options(entry string) analysis.Options {
	latency := s.config.Analysis.DefaultEdgeLatencyMs
	return analysis.Options{
		EntryNodeID:           entry,
		PreferredLatencyEntry: s.config.Analysis.LatencyEntryNode,
		DefaultEdgeLatency:    &latency,
	}
}

// Analyze runs the structural engines over d, then asks the advisor to review
// the report. Advisor failures only change the aiSuggestions block.
func (s *Service) Analyze(ctx context.Context, d graph.Diagram, entry string) *AnalysisResult {
	start := time.Now()
	report := analysis.Analyze(d, s.options(entry))
	metrics.ObserveEngine("analyze", "ok", start)
	metrics.GraphSize.Observe(float64(len(d.Nodes)))
	metrics.RiskScore.Observe(float64(report.OverallRisk.RiskScore))

	logger.Info("analysis_complete", map[string]interface{}{
		"correlationId": common.GetCorrelationID(ctx),
		"nodes":         len(d.Nodes),
		"edges":         len(d.Edges),
		"riskScore":     report.OverallRisk.RiskScore,
		"overallRisk":   report.OverallRisk.OverallRisk,
		"durationMs":    time.Since(start).Milliseconds(),
	})

	advice := advisor.Advice{Enabled: false, Message: "AI temporarily disabled", Suggestions: []advisor.Suggestion{}}
	if s.advisor != nil {
		advice = s.advisor.Advise(ctx, &report)
	}

	return &AnalysisResult{Report: report, AISuggestions: advice}
}

func (s *Service) Cascade(ctx context.Context, d graph.Diagram) []analysis.CascadeEntry {
	start := time.Now()
	result := analysis.RunCascadeAnalysis(d.Nodes, d.Edges)
	metrics.ObserveEngine("cascade", "ok", start)
	logger.Debug("cascade_complete", map[string]interface{}{
		"correlationId": common.GetCorrelationID(ctx),
		"nodes":         len(d.Nodes),
	})
	return result
}

func (s *Service) Stress(ctx context.Context, d graph.Diagram) []analysis.StressResult {
	start := time.Now()
	result := analysis.RunStressTests(d.Nodes)
	metrics.ObserveEngine("stress", "ok", start)
	logger.Debug("stress_complete", map[string]interface{}{
		"correlationId": common.GetCorrelationID(ctx),
		"nodes":         len(d.Nodes),
	})
	return result
}

func (s *Service) WeakPoint(ctx context.Context, d graph.Diagram) *analysis.WeakPoint {
	start := time.Now()
	result := analysis.FindWeakestService(d.Nodes)
	metrics.ObserveEngine("weakpoint", "ok", start)
	return result
}

// RunTraffic fills MaxVisitsPerNode from configuration when the caller left
// it unset.
func (s *Service) RunTraffic(ctx context.Context, req TrafficRequest) (*TrafficResult, error) {
	start := time.Now()
	if req.MaxVisitsPerNode <= 0 {
		req.MaxVisitsPerNode = s.config.Traffic.MaxVisitsPerNode
	}

	result, err := SimulateTraffic(req)
	if err != nil {
		metrics.ObserveEngine("traffic", outcome(err), start)
		return nil, err
	}
	metrics.ObserveEngine("traffic", "ok", start)

	logger.Info("traffic_complete", map[string]interface{}{
		"correlationId": common.GetCorrelationID(ctx),
		"entryNode":     req.EntryNode,
		"totalTraffic":  req.TotalTraffic,
		"nodes":         len(req.Nodes),
	})
	return result, nil
}

func (s *Service) RunTimeline(ctx context.Context, req TimelineRequest) (*TimelineResult, error) {
	start := time.Now()
	if req.MaxVisitsPerNode <= 0 {
		req.MaxVisitsPerNode = s.config.Traffic.MaxVisitsPerNode
	}
	if req.TimeoutMs <= 0 {
		req.TimeoutMs = s.config.Traffic.TimeoutMs
	}

	result, err := SimulateTrafficOverTime(req)
	if err != nil {
		metrics.ObserveEngine("timeline", outcome(err), start)
		return nil, err
	}
	metrics.ObserveEngine("timeline", "ok", start)

	fields := map[string]interface{}{
		"correlationId": common.GetCorrelationID(ctx),
		"entryNode":     req.EntryNode,
		"steps":         len(req.Steps),
	}
	if result.FirstFailure != nil {
		fields["firstFailure"] = result.FirstFailure.NodeID
		fields["reason"] = result.FirstFailure.Reason
	}
	logger.Info("timeline_complete", fields)
	return result, nil
}

func outcome(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return "invalid"
	}
	return "error"
}

func (s *Service) SaveDiagram(ctx context.Context, name string, d graph.Diagram) (*storage.DiagramSummary, error) {
	if s.diagrams == nil {
		return nil, ErrStorageDisabled
	}
	saved, err := s.diagrams.SaveDiagram(ctx, storage.SaveDiagramInput{
		Name:          name,
		Diagram:       d,
		CorrelationID: common.GetCorrelationID(ctx),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("diagram_saved", map[string]interface{}{
		"correlationId": common.GetCorrelationID(ctx),
		"diagramId":     saved.ID,
		"nodes":         saved.NodeCount,
	})
	return saved, nil
}

func (s *Service) ListDiagrams(ctx context.Context, opts storage.ListOptions) ([]storage.DiagramSummary, storage.ListOptions, int, error) {
	if s.diagrams == nil {
		return nil, opts, 0, ErrStorageDisabled
	}
	list, applied, err := s.diagrams.ListDiagrams(ctx, opts)
	if err != nil {
		return nil, applied, 0, err
	}
	total, err := s.diagrams.Count(ctx)
	if err != nil {
		return nil, applied, 0, err
	}
	return list, applied, total, nil
}

func (s *Service) GetDiagram(ctx context.Context, id string) (*storage.DiagramRecord, error) {
	if s.diagrams == nil {
		return nil, ErrStorageDisabled
	}
	return s.diagrams.GetDiagram(ctx, id)
}

func (s *Service) DeleteDiagram(ctx context.Context, id string) error {
	if s.diagrams == nil {
		return ErrStorageDisabled
	}
	return s.diagrams.DeleteDiagram(ctx, id)
}

// AnalyzeStored loads a saved diagram and runs Analyze over it.
func (s *Service) AnalyzeStored(ctx context.Context, id, entry string) (*AnalysisResult, error) {
	record, err := s.GetDiagram(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, record.Diagram(), entry), nil
}
