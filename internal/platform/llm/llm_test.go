package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type flaky struct {
	fails  []error
	calls  int
	chunks []string
}

func (f *flaky) Model() string { return "m" }

func (f *flaky) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.calls++
	if f.calls <= len(f.fails) {
		return nil, f.fails[f.calls-1]
	}
	return map[string]any{"ok": true}, nil
}

func (f *flaky) StreamText(ctx context.Context, system, user string, onDelta func(string)) (string, error) {
	f.calls++
	for _, c := range f.chunks {
		onDelta(c)
	}
	if f.calls <= len(f.fails) {
		return "", f.fails[f.calls-1]
	}
	return "done", nil
}

func newRetrying(next Client, n int) *retrying {
	r := WithRetry(logger.NewNop(), next, n).(*retrying)
	r.sleep = func(context.Context, time.Duration) error { return nil }
	return r
}

func TestRetryRecoversFromTransientStatus(t *testing.T) {
	f := &flaky{fails: []error{
		&StatusError{Provider: "openai", StatusCode: 429},
		&StatusError{Provider: "openai", StatusCode: 503},
	}}
	out, err := newRetrying(f, 3).GenerateJSON(context.Background(), "s", "u", "x", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, 3, f.calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	f := &flaky{fails: []error{&StatusError{Provider: "openai", StatusCode: 400}}}
	_, err := newRetrying(f, 3).GenerateJSON(context.Background(), "s", "u", "x", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, 1, f.calls)
}

func TestRetryGivesUpAfterMax(t *testing.T) {
	boom := &StatusError{Provider: "ollama", StatusCode: 500}
	f := &flaky{fails: []error{boom, boom, boom, boom}}
	_, err := newRetrying(f, 2).GenerateJSON(context.Background(), "s", "u", "x", map[string]any{})
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 3, f.calls)
}

func TestStreamNotRetriedAfterDeltaForwarded(t *testing.T) {
	f := &flaky{fails: []error{&StatusError{StatusCode: 502}}, chunks: []string{"a"}}
	var got []string
	_, err := newRetrying(f, 3).StreamText(context.Background(), "s", "u", func(d string) { got = append(got, d) })
	require.Error(t, err)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, []string{"a"}, got)
}

func TestWithRetryZeroReturnsBase(t *testing.T) {
	f := &flaky{}
	assert.Same(t, Client(f), WithRetry(logger.NewNop(), f, 0))
}

func TestParseObjectStripsFence(t *testing.T) {
	obj, err := parseObject("```json\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.EqualValues(t, 1, obj["a"])

	_, err = parseObject("   ")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = parseObject("not json")
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	var out struct {
		Beats []struct {
			Title string `json:"title"`
		} `json:"beats"`
	}
	err := Decode(map[string]any{"beats": []any{map[string]any{"title": "Opening Image"}}}, &out)
	require.NoError(t, err)
	require.Len(t, out.Beats, 1)
	assert.Equal(t, "Opening Image", out.Beats[0].Title)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens("gpt-4o-mini", ""))
	assert.Positive(t, EstimateTokens("gpt-4o-mini", "INT. DINER - NIGHT"))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, "success", statusOf(nil))
	assert.Equal(t, "429", statusOf(&StatusError{StatusCode: 429}))
	assert.Equal(t, "error", statusOf(errors.New("x")))
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(logger.NewNop(), Config{Provider: "bard"})
	assert.Error(t, err)
	_, err = New(logger.NewNop(), Config{Provider: ProviderOpenAI})
	assert.Error(t, err, "missing api key")
}
