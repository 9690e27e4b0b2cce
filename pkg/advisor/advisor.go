package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"architecture-risk-engine/pkg/analysis"
	"architecture-risk-engine/pkg/config"
	"architecture-risk-engine/pkg/logger"
	"architecture-risk-engine/pkg/metrics"
)

const MaxSuggestions = 4

const (
	msgMissingKey  = "Set GROQ_API_KEY to enable AI suggestions"
	msgDisabled    = "AI temporarily disabled"
	msgRateLimited = "AI rate limit reached. Please try again in a moment."
	msgUnavailable = "AI temporarily unavailable"
	msgDefaultErr  = "AI unavailable"
)

// Suggestion is one structured improvement returned by the model.
type Suggestion struct {
	Title    string `json:"title"`
	Severity string `json:"severity"`
	Problem  string `json:"problem"`
	Risk     string `json:"risk"`
	Solution string `json:"solution"`
}

// Advice is always a complete value; failures are reported through Enabled
// and Message rather than as errors.
type Advice struct {
	Enabled     bool         `json:"enabled"`
	Message     string       `json:"message,omitempty"`
	Suggestions []Suggestion `json:"suggestions"`
}

type Status struct {
	Enabled bool   `json:"enabled"`
	State   string `json:"state"`
	Model   string `json:"model,omitempty"`
}

type Advisor interface {
	Advise(ctx context.Context, report *analysis.Report) Advice
	Status() Status
}

func disabled(msg string) Advice {
	return Advice{Enabled: false, Message: msg, Suggestions: []Suggestion{}}
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client asks an OpenAI-compatible chat endpoint for architecture advice.
type Client struct {
	cfg        config.AdvisorConfig
	completer  chatCompleter
	breaker    *gobreaker.CircuitBreaker
	disabledAs string
}

func NewClient(cfg config.AdvisorConfig) *Client {
	var completer chatCompleter
	if cfg.APIKey != "" {
		oc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		completer = openai.NewClientWithConfig(oc)
	}
	return newClient(cfg, completer)
}

func newClient(cfg config.AdvisorConfig, completer chatCompleter) *Client {
	c := &Client{cfg: cfg, completer: completer}

	switch {
	case completer == nil:
		c.disabledAs = msgMissingKey
	case !cfg.Enabled:
		c.disabledAs = msgDisabled
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "advisor",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})
	return c
}

func (c *Client) Status() Status {
	if c.disabledAs != "" {
		return Status{Enabled: false, State: "disabled"}
	}
	return Status{Enabled: true, State: c.breaker.State().String(), Model: c.cfg.Model}
}

// Advise never returns an error: timeouts, rate limits and malformed replies
// all collapse into a disabled Advice or a fallback suggestion.
func (c *Client) Advise(ctx context.Context, report *analysis.Report) Advice {
	if c.disabledAs != "" {
		metrics.AdvisorCalls.WithLabelValues("disabled").Inc()
		return disabled(c.disabledAs)
	}
	if report == nil {
		metrics.AdvisorCalls.WithLabelValues("disabled").Inc()
		return disabled("No analysis to review")
	}

	timeout := time.Duration(c.cfg.TimeoutMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, BuildPrompt(report))
	})
	if err != nil {
		return c.failure(err)
	}

	suggestions, parsed := ParseSuggestions(out.(string))
	if parsed {
		metrics.AdvisorCalls.WithLabelValues("ok").Inc()
	} else {
		metrics.AdvisorCalls.WithLabelValues("unparsed").Inc()
	}
	return Advice{Enabled: true, Suggestions: suggestions}
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(c.cfg.Temperature),
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("advisor returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) failure(err error) Advice {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.AdvisorCalls.WithLabelValues("breaker_open").Inc()
		return disabled(msgUnavailable)
	case isRateLimited(err):
		metrics.AdvisorCalls.WithLabelValues("rate_limited").Inc()
		logger.Warn("advisor rate limited", map[string]interface{}{"error": err.Error()})
		return disabled(msgRateLimited)
	}

	metrics.AdvisorCalls.WithLabelValues("error").Inc()
	logger.Error("advisor call failed", err)
	msg := err.Error()
	if msg == "" {
		msg = msgDefaultErr
	}
	return disabled(msg)
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate") || strings.Contains(msg, "429")
}

var fencePattern = regexp.MustCompile("```(?:json)?\\n?")

// ParseSuggestions decodes the model reply. Code fences are stripped; a single
// object is accepted as a one-element list; anything else becomes one fallback
// suggestion carrying the start of the reply. The bool reports a clean parse.
func ParseSuggestions(reply string) ([]Suggestion, bool) {
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(reply, ""))

	var list []Suggestion
	if err := json.Unmarshal([]byte(cleaned), &list); err == nil {
		if len(list) > MaxSuggestions {
			list = list[:MaxSuggestions]
		}
		if list == nil {
			list = []Suggestion{}
		}
		return list, true
	}

	var single Suggestion
	if err := json.Unmarshal([]byte(cleaned), &single); err == nil {
		return []Suggestion{single}, true
	}

	logger.Warn("failed to parse advisor reply", map[string]interface{}{"reply": truncate(reply, 200)})
	return []Suggestion{{
		Title:    "AI Analysis",
		Severity: "medium",
		Problem:  "See details",
		Risk:     "Review needed",
		Solution: truncate(reply, 200),
	}}, false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// BuildPrompt renders the analysis into the review request sent to the model.
func BuildPrompt(report *analysis.Report) string {
	var services []string
	for _, b := range report.BottleneckResult {
		services = append(services, fmt.Sprintf("%s: %s (%s)", b.Service, b.Utilization, b.Status))
	}
	serviceDetails := "No services"
	if len(services) > 0 {
		serviceDetails = strings.Join(services, ", ")
	}

	var spofs []string
	for _, s := range report.SpofResult {
		if s.Risk == analysis.RiskCritical || s.Risk == analysis.RiskHigh {
			spofs = append(spofs, s.Service)
		}
	}
	spofDetails := "None"
	if len(spofs) > 0 {
		spofDetails = strings.Join(spofs, ", ")
	}

	weakest, weakUtil, weakRemaining, weakRisk := "None", "N/A", "N/A", "Unknown"
	if w := report.WeakestPoint; w != nil {
		weakest = w.WeakestService
		weakUtil = w.Utilization
		weakRemaining = fmt.Sprintf("%g", w.RemainingCapacity)
		weakRisk = w.Risk
	}

	var b strings.Builder
	b.WriteString("You are a senior system architect reviewing a microservices architecture. ")
	b.WriteString("Analyze this detailed risk report and provide 4 specific, actionable improvements.\n\n")
	b.WriteString("## Architecture Risk Report\n\n")
	fmt.Fprintf(&b, "**Overall Risk Score:** %d/100 (%s)\n\n", report.OverallRisk.RiskScore, report.OverallRisk.OverallRisk)
	fmt.Fprintf(&b, "**Weakest Service:** %s\n", weakest)
	fmt.Fprintf(&b, "- Utilization: %s\n", weakUtil)
	fmt.Fprintf(&b, "- Remaining Capacity: %s\n", weakRemaining)
	fmt.Fprintf(&b, "- Risk Level: %s\n\n", weakRisk)
	fmt.Fprintf(&b, "**All Services (with utilization):**\n%s\n\n", serviceDetails)
	fmt.Fprintf(&b, "**Single Points of Failure (High Risk):** %s\n\n", spofDetails)
	fmt.Fprintf(&b, "**Critical Path Latency:** %gms (%s risk)\n\n",
		report.LatencyRiskResult.CriticalPathLatency, report.LatencyRiskResult.Risk)
	b.WriteString("## Instructions\n")
	b.WriteString("Provide exactly 4 architecture improvement suggestions. Focus on:\n")
	b.WriteString("1. The weakest/most overloaded service specifically\n")
	b.WriteString("2. High-utilization services (>80%) that need attention\n")
	b.WriteString("3. Single points of failure\n")
	b.WriteString("4. Overall architecture resilience\n\n")
	b.WriteString("Return ONLY a valid JSON array with exactly 4 objects. Each object must have:\n")
	b.WriteString("- \"title\": Short title (e.g., \"Scale PostgreSQL Database\")\n")
	b.WriteString("- \"severity\": \"critical\", \"high\", \"medium\", or \"low\"\n")
	b.WriteString("- \"problem\": Brief description of the issue\n")
	b.WriteString("- \"risk\": What could go wrong if not addressed\n")
	b.WriteString("- \"solution\": Specific actionable fix\n\n")
	b.WriteString("No markdown formatting, no code blocks, no explanation. Just the raw JSON array.")
	return b.String()
}
