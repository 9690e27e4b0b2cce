package advisor

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"architecture-risk-engine/pkg/analysis"
	"architecture-risk-engine/pkg/config"
	"architecture-risk-engine/pkg/graph"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
	last  openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.reply}},
		},
	}, nil
}

func testConfig() config.AdvisorConfig {
	cfg := config.Default().Advisor
	cfg.APIKey = "test-key"
	return cfg
}

func sampleReport() *analysis.Report {
	report := analysis.Analyze(graph.Diagram{
		Nodes: []graph.Node{
			{ID: "api-gateway", Capacity: 100, Load: 95},
			{ID: "db", Capacity: 100, Load: 30},
		},
		Edges: []graph.Edge{{Source: "api-gateway", Target: "db"}},
	}, analysis.Options{})
	return &report
}

const fourSuggestions = `[
 {"title":"Scale gateway","severity":"critical","problem":"p","risk":"r","solution":"s"},
 {"title":"Add replica","severity":"high","problem":"p","risk":"r","solution":"s"},
 {"title":"Cache","severity":"medium","problem":"p","risk":"r","solution":"s"},
 {"title":"Timeouts","severity":"low","problem":"p","risk":"r","solution":"s"},
 {"title":"Extra","severity":"low","problem":"p","risk":"r","solution":"s"}
]`

func TestParseSuggestions_ArrayIsCapped(t *testing.T) {
	got, ok := ParseSuggestions(fourSuggestions)
	assert.True(t, ok)
	require.Len(t, got, MaxSuggestions)
	assert.Equal(t, "Scale gateway", got[0].Title)
	assert.Equal(t, "critical", got[0].Severity)
}

func TestParseSuggestions_StripsCodeFences(t *testing.T) {
	reply := "```json\n[{\"title\":\"A\",\"severity\":\"low\",\"problem\":\"p\",\"risk\":\"r\",\"solution\":\"s\"}]\n```"
	got, ok := ParseSuggestions(reply)
	assert.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Title)
}

func TestParseSuggestions_WrapsSingleObject(t *testing.T) {
	got, ok := ParseSuggestions(`{"title":"Only","severity":"high","problem":"p","risk":"r","solution":"s"}`)
	assert.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Only", got[0].Title)
}

func TestParseSuggestions_FallbackOnGarbage(t *testing.T) {
	reply := strings.Repeat("x", 300)
	got, ok := ParseSuggestions(reply)
	assert.False(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "AI Analysis", got[0].Title)
	assert.Len(t, got[0].Solution, 200)
}

func TestBuildPrompt_SummarisesReport(t *testing.T) {
	prompt := BuildPrompt(sampleReport())

	assert.Contains(t, prompt, "**Weakest Service:** api-gateway")
	assert.Contains(t, prompt, "api-gateway: 95.0% (danger)")
	assert.Contains(t, prompt, "**Single Points of Failure (High Risk):** api-gateway")
	assert.Contains(t, prompt, "Critical Path Latency:** 10ms")
	assert.Contains(t, prompt, "exactly 4")
}

func TestClient_DisabledWithoutKey(t *testing.T) {
	c := NewClient(config.Default().Advisor)

	advice := c.Advise(context.Background(), sampleReport())
	assert.False(t, advice.Enabled)
	assert.Equal(t, "Set GROQ_API_KEY to enable AI suggestions", advice.Message)
	assert.NotNil(t, advice.Suggestions)
	assert.Empty(t, advice.Suggestions)
	assert.Equal(t, "disabled", c.Status().State)
}

func TestClient_DisabledBySwitch(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	fake := &fakeCompleter{reply: fourSuggestions}
	c := newClient(cfg, fake)

	advice := c.Advise(context.Background(), sampleReport())
	assert.False(t, advice.Enabled)
	assert.Equal(t, "AI temporarily disabled", advice.Message)
	assert.Zero(t, fake.calls)
}

func TestClient_Success(t *testing.T) {
	fake := &fakeCompleter{reply: fourSuggestions}
	c := newClient(testConfig(), fake)

	advice := c.Advise(context.Background(), sampleReport())
	assert.True(t, advice.Enabled)
	assert.Len(t, advice.Suggestions, MaxSuggestions)
	assert.Equal(t, "llama-3.3-70b-versatile", fake.last.Model)
	assert.Equal(t, 1500, fake.last.MaxTokens)
	require.Len(t, fake.last.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleUser, fake.last.Messages[0].Role)

	status := c.Status()
	assert.True(t, status.Enabled)
	assert.Equal(t, "closed", status.State)
}

func TestClient_RateLimited(t *testing.T) {
	fake := &fakeCompleter{err: &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"}}
	c := newClient(testConfig(), fake)

	advice := c.Advise(context.Background(), sampleReport())
	assert.False(t, advice.Enabled)
	assert.Equal(t, "AI rate limit reached. Please try again in a moment.", advice.Message)
}

func TestClient_ErrorTextSurfaces(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("connection reset")}
	c := newClient(testConfig(), fake)

	advice := c.Advise(context.Background(), sampleReport())
	assert.False(t, advice.Enabled)
	assert.Equal(t, "connection reset", advice.Message)
}

func TestClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("upstream down")}
	c := newClient(testConfig(), fake)

	for i := 0; i < 3; i++ {
		c.Advise(context.Background(), sampleReport())
	}
	assert.Equal(t, 3, fake.calls)

	advice := c.Advise(context.Background(), sampleReport())
	assert.Equal(t, "AI temporarily unavailable", advice.Message)
	assert.Equal(t, 3, fake.calls)
	assert.Equal(t, "open", c.Status().State)
}
