package graph

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a float that decodes from loosely typed JSON: numbers, numeric
// strings, booleans and null. Anything unparseable or non-finite becomes 0.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number(parseLoose(data))
	return nil
}

func (n Number) Float() float64 {
	return float64(n)
}

func parseLoose(data []byte) float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}

	var v float64
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		v = f
	case 't':
		return 1
	case 'f', 'n', '{', '[':
		return 0
	default:
		if err := json.Unmarshal(data, &v); err != nil {
			return 0
		}
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Node is a service with a sustainable capacity and its current load.
type Node struct {
	ID          string `json:"id"`
	Capacity    Number `json:"capacity"`
	Load        Number `json:"load"`
	BaseLatency Number `json:"base_latency,omitempty"`
}

// Edge is a directed call from Source to Target. Latency is nil when the
// caller did not provide one so builders can apply their own default.
type Edge struct {
	Source     string
	Target     string
	Latency    *float64
	Percentage float64
}

type edgeWire struct {
	Source     string          `json:"source,omitempty"`
	Target     string          `json:"target,omitempty"`
	From       string          `json:"from,omitempty"`
	To         string          `json:"to,omitempty"`
	Latency    json.RawMessage `json:"latency,omitempty"`
	Percentage json.RawMessage `json:"percentage,omitempty"`
	Data       *struct {
		Percentage json.RawMessage `json:"percentage,omitempty"`
	} `json:"data,omitempty"`
}

// UnmarshalJSON accepts {source,target} or {from,to}, and a percentage either
// at the top level or nested under data.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var w edgeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	e.Source = firstNonEmpty(w.Source, w.From)
	e.Target = firstNonEmpty(w.Target, w.To)

	e.Latency = nil
	if present(w.Latency) {
		l := parseLoose(w.Latency)
		e.Latency = &l
	}

	rawPct := w.Percentage
	if !present(rawPct) && w.Data != nil {
		rawPct = w.Data.Percentage
	}
	e.Percentage = 0
	if present(rawPct) {
		e.Percentage = math.Max(0, parseLoose(rawPct))
	}
	return nil
}

func (e Edge) MarshalJSON() ([]byte, error) {
	out := struct {
		Source     string   `json:"source"`
		Target     string   `json:"target"`
		Latency    *float64 `json:"latency,omitempty"`
		Percentage float64  `json:"percentage,omitempty"`
	}{e.Source, e.Target, e.Latency, e.Percentage}
	return json.Marshal(out)
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Diagram is the nodes+edges description every engine consumes.
type Diagram struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Utilization is load/capacity, or 0 when capacity is not positive. Ratios
// past the float range are pinned to math.MaxFloat64.
func Utilization(load, capacity float64) float64 {
	if capacity <= 0 {
		return 0
	}
	u := load / capacity
	if math.IsInf(u, 1) {
		return math.MaxFloat64
	}
	return u
}

// Contains reports whether a node with the given id exists.
func Contains(nodes []Node, id string) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}
