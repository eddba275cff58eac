package views

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	omnidim "github.com/ryu-ryuk/omnidim-go"
)

type fakeGetter struct {
	calls   []int
	at      []time.Time
	details map[int]map[string]any
}

func (f *fakeGetter) Get(_ context.Context, id int) (*omnidim.Response, error) {
	f.calls = append(f.calls, id)
	f.at = append(f.at, time.Now())
	d, ok := f.details[id]
	if !ok {
		return nil, &omnidim.APIError{StatusCode: 404, Message: "not found"}
	}
	return &omnidim.Response{Status: 200, JSON: d}, nil
}

func TestVoice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  map[string]any
		want string
	}{
		{name: "short id", row: map[string]any{"voice_provider": "eleven_labs", "voice_external_id": "abc"}, want: "eleven_labs (abc)"},
		{name: "long id", row: map[string]any{"voice_provider": "rime", "voice_external_id": "abcdefghij"}, want: "rime (abcdef...)"},
		{name: "false id", row: map[string]any{"voice_provider": "deepgram", "voice_external_id": false}, want: "deepgram"},
		{name: "nothing", row: map[string]any{}, want: "None"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Voice(tt.row))
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	row := map[string]any{}
	Summarize(row, map[string]any{
		"enable_web_search": true,
		"asr_service":       "deepgram",
		"context_breakdown": []any{
			map[string]any{"title": "a", "is_enabled": true},
			map[string]any{"title": "b", "is_enabled": false},
			map[string]any{"title": "c"},
		},
		"attach_file_ids": []any{float64(1), float64(2)},
		"integrations":    []any{map[string]any{"id": float64(3)}},
		"integration_ids": []any{float64(4)},
		"welcome_message": false,
	})

	assert.Equal(t, "Web(default)", row[KeyFeatures])
	assert.Equal(t, "deepgram", row[KeyASR])
	assert.Equal(t, "2/3", row[KeyContexts])
	assert.Equal(t, "2", row[KeyFiles])
	assert.Equal(t, "2", row[KeyIntegrations])
	assert.Equal(t, "Not set", row[KeyWelcome])

	basic := map[string]any{}
	Summarize(basic, map[string]any{"welcome_message": "Hello and welcome to the front desk"})
	assert.Equal(t, "Basic", basic[KeyFeatures])
	assert.Equal(t, "Unknown", basic[KeyASR])
	assert.Equal(t, "0", basic[KeyContexts])
	assert.Equal(t, "Hello and welcome t...", basic[KeyWelcome])
}

func TestEnrichThrottlesAndMarksFailures(t *testing.T) {
	t.Parallel()

	getter := &fakeGetter{details: map[int]map[string]any{
		1: {"asr_service": "deepgram"},
		3: {"asr_service": "cartesia"},
	}}
	rows := []map[string]any{
		{"id": float64(1)},
		{"id": float64(2)},
		{"name": "no id"},
		{"id": float64(3)},
	}
	limiter := rate.NewLimiter(rate.Every(20*time.Millisecond), 1)

	failures, err := Enrich(context.Background(), getter, limiter, rows)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, getter.calls)
	require.Len(t, failures, 1)
	var apiErr *omnidim.APIError
	assert.True(t, errors.As(failures[0], &apiErr))

	assert.Equal(t, "deepgram", rows[0][KeyASR])
	assert.Equal(t, "Error fetching", rows[1][KeyWelcome])
	assert.NotContains(t, rows[2], KeyASR)
	assert.Equal(t, "cartesia", rows[3][KeyASR])

	for i := 1; i < len(getter.at); i++ {
		assert.GreaterOrEqual(t, getter.at[i].Sub(getter.at[i-1]), 15*time.Millisecond)
	}
}

func TestEnrichStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	getter := &fakeGetter{}
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	limiter.Allow()

	_, err := Enrich(ctx, getter, limiter, []map[string]any{{"id": float64(1)}})
	require.Error(t, err)
	assert.Empty(t, getter.calls)
}

func TestAgentColumns(t *testing.T) {
	t.Parallel()

	assert.Len(t, AgentColumns(false), 5)
	assert.Len(t, AgentColumns(true), 11)
}

func TestResourceColumns(t *testing.T) {
	t.Parallel()

	call := map[string]any{"id": float64(9), "agent_id": float64(2), "call_duration": float64(42), "created_at": "2025-03-01T10:00:00Z"}
	cols := CallColumns()
	assert.Equal(t, "2", cols[1].Value(call))
	assert.Equal(t, "42s", cols[4].Value(call))
	assert.Equal(t, "2025-03-01", cols[5].Value(call))
	assert.Equal(t, "N/A", cols[4].Value(map[string]any{}))

	file := map[string]any{"file_size": float64(2048 + 512), "mime_type": "application/pdf", "upload_status": "uploaded"}
	fcols := FileColumns()
	assert.Equal(t, "2.5 KB", fcols[2].Value(file))
	assert.Equal(t, "PDF", fcols[3].Value(file))
	assert.Equal(t, "OK", fcols[4].Value(file))
	assert.Equal(t, "MSWO", fileType("application/mswordx"))
}
