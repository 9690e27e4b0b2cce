package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"architecture-risk-engine/pkg/graph"
	"architecture-risk-engine/pkg/simulation"
)

// scenario is the union of every field any command reads from a file.
type scenario struct {
	Nodes            []graph.Node             `json:"nodes"`
	Edges            []graph.Edge             `json:"edges"`
	EntryNode        string                   `json:"entry_node"`
	EntryNodeCamel   string                   `json:"entryNode"`
	TotalTraffic     *float64                 `json:"total_traffic"`
	TotalTrafficAlt  *float64                 `json:"totalTraffic"`
	MaxVisitsPerNode int                      `json:"maxVisitsPerNode"`
	TrafficSteps     []simulation.TrafficStep `json:"traffic_steps"`
	TimeoutMs        float64                  `json:"timeout_ms"`
	RetryRate        *float64                 `json:"retry_rate"`
	FailureRate      *float64                 `json:"failure_rate"`
}

func (s *scenario) diagram() graph.Diagram {
	return graph.Diagram{Nodes: s.Nodes, Edges: s.Edges}
}

func (s *scenario) entry(override string) string {
	switch {
	case override != "":
		return override
	case s.EntryNode != "":
		return s.EntryNode
	default:
		return s.EntryNodeCamel
	}
}

func (s *scenario) traffic() float64 {
	switch {
	case s.TotalTraffic != nil:
		return *s.TotalTraffic
	case s.TotalTrafficAlt != nil:
		return *s.TotalTrafficAlt
	default:
		return 0
	}
}

func loadScenario(path string) (*scenario, error) {
	if path == "" {
		return nil, errors.New("a diagram file is required (-f)")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = yamlToJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	var s scenario
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &s, nil
}

// yamlToJSON re-encodes a YAML document so the JSON decoders on the model
// types (loose numbers, edge shapes) apply to YAML input as well.
func yamlToJSON(raw []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(normalizeYAML(doc))
}

func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}
