package completion

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, value := range []string{"graph", "data_requirements", "insights"} {
		kind, err := ParseKind(value)
		require.NoError(t, err)
		assert.Equal(t, Kind(value), kind)
	}
	_, err := ParseKind("poem")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestBuildPromptsGraph(t *testing.T) {
	system, user, err := BuildPrompts(Request{
		Kind:   KindGraph,
		Prompt: "肉厚の推移",
		Data:   map[string]any{"equipment": []string{"EQ001"}},
	})
	require.NoError(t, err)
	assert.Contains(t, system, "```json")
	assert.Contains(t, system, "risk_matrix")
	assert.Contains(t, user, `{"equipment":["EQ001"]}`)
	assert.Contains(t, user, "肉厚の推移")
}

func TestBuildPromptsDataRequirementsPrefersSchema(t *testing.T) {
	_, user, err := BuildPrompts(Request{
		Kind:   KindDataRequirements,
		Prompt: "コスト推移",
		Data:   map[string]any{"ignored": true},
		Schema: json.RawMessage(`{"category":"回転機"}`),
	})
	require.NoError(t, err)
	assert.Contains(t, user, `Data schema: {"category":"回転機"}`)
	assert.NotContains(t, user, "ignored")
	assert.Contains(t, user, "anomaly_severity")
}

func TestBuildPromptsInsights(t *testing.T) {
	system, user, err := BuildPrompts(Request{Kind: KindInsights, Prompt: "傾向は？", Data: []int{1}})
	require.NoError(t, err)
	assert.Contains(t, system, "inspection expert")
	assert.Equal(t, "Analyze this inspection data: [1]\n\n傾向は？", user)
}

func TestBuildPromptsValidation(t *testing.T) {
	_, _, err := BuildPrompts(Request{Kind: KindGraph, Prompt: "  "})
	require.ErrorIs(t, err, ErrMissingPrompt)

	_, _, err = BuildPrompts(Request{Kind: "haiku", Prompt: "x"})
	require.ErrorIs(t, err, ErrUnknownKind)
}

type stubProvider struct {
	calls        int
	system, user string
	result       Result
	err          error
}

func (s *stubProvider) Complete(_ context.Context, system, user string) (Result, error) {
	s.calls++
	s.system, s.user = system, user
	return s.result, s.err
}

func TestServiceRun(t *testing.T) {
	stub := &stubProvider{result: Result{Text: "ok", Usage: &Usage{TotalTokens: 3}}}
	svc := NewService(stub, nil)

	result, err := svc.Run(context.Background(), Request{Kind: KindInsights, Prompt: "p", Data: nil})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, insightsSystemPrompt, stub.system)

	_, err = svc.Run(context.Background(), Request{Kind: KindGraph})
	require.ErrorIs(t, err, ErrMissingPrompt)
	assert.Equal(t, 1, stub.calls, "invalid requests never reach the provider")

	stub.err = ErrRateLimited
	_, err = svc.Run(context.Background(), Request{Kind: KindGraph, Prompt: "p"})
	assert.True(t, errors.Is(err, ErrRateLimited))
}
