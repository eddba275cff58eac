// Package views defines how API resources are laid out as tables. Agent
// rows can be enriched with details fetched under a rate limit.
package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	omnidim "github.com/ryu-ryuk/omnidim-go"
	"github.com/ryu-ryuk/omnidim-go/internal/output"
)

// DetailInterval is the minimum gap between two detail requests.
const DetailInterval = 200 * time.Millisecond

// Detail keys added to a row by Enrich.
const (
	KeyFeatures     = "_features"
	KeyASR          = "_asr"
	KeyContexts     = "_contexts"
	KeyFiles        = "_files"
	KeyIntegrations = "_integrations"
	KeyWelcome      = "_welcome"
	KeyDetailError  = "_detail_error"
)

// AgentListKeys are the response fields that may hold the agent list.
var AgentListKeys = []string{"bots", "agents", "data"}

// Getter fetches a single agent.
type Getter interface {
	Get(ctx context.Context, agentID int) (*omnidim.Response, error)
}

// NewLimiter returns the limiter used for detail fetches.
func NewLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(DetailInterval), 1)
}

// AgentColumns returns the agent table layout; details adds the enriched columns.
func AgentColumns(details bool) []output.Column {
	cols := []output.Column{
		output.Field("ID", "id"),
		output.Field("Name", "name"),
		output.Field("Model", "llm_service"),
		{Header: "Voice", Value: Voice},
		output.Field("Status", "status_of_building_flow"),
	}
	if !details {
		return cols
	}
	return append(cols,
		output.Field("Features", KeyFeatures),
		output.Field("ASR", KeyASR),
		output.Field("Context", KeyContexts),
		output.Field("Files", KeyFiles),
		output.Field("Integrations", KeyIntegrations),
		output.Field("Welcome", KeyWelcome),
	)
}

// Voice formats the provider and voice id of an agent row.
func Voice(row map[string]any) string {
	provider := output.Text(row["voice_provider"])
	voiceID := output.Text(row["voice_external_id"])
	if voiceID == "" {
		voiceID = output.Text(row["voice"])
	}
	if voiceID == "" || voiceID == "no" {
		if provider == "" {
			return "None"
		}
		return provider
	}
	if len(voiceID) > 8 {
		voiceID = voiceID[:6] + "..."
	}
	return fmt.Sprintf("%s (%s)", provider, voiceID)
}

// Enrich fetches each agent's details, waiting on limiter between requests,
// and adds the summary keys to its row in place. A failed fetch marks the
// row instead of aborting the listing; the failures are returned.
func Enrich(ctx context.Context, getter Getter, limiter *rate.Limiter, rows []map[string]any) ([]error, error) {
	var failures []error
	for _, row := range rows {
		id, ok := output.ExtractID(row, "id")
		if !ok {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return failures, fmt.Errorf("waiting for rate limiter: %w", err)
		}
		resp, err := getter.Get(ctx, id)
		if err != nil {
			markFailed(row, err)
			failures = append(failures, fmt.Errorf("agent %d: %w", id, err))
			continue
		}
		Summarize(row, resp.Object())
	}
	return failures, nil
}

func markFailed(row map[string]any, err error) {
	row[KeyFeatures] = "Error"
	row[KeyASR] = "Error"
	row[KeyContexts] = "?"
	row[KeyFiles] = "?"
	row[KeyIntegrations] = "?"
	row[KeyWelcome] = "Error fetching"
	row[KeyDetailError] = err.Error()
}

// Summarize condenses an agent detail body into the row's summary keys.
func Summarize(row, detail map[string]any) {
	if detail == nil {
		row[KeyWelcome] = "Error parsing"
		return
	}
	row[KeyFeatures] = output.Truncate(features(detail), 18)
	row[KeyASR] = output.Truncate(asr(detail), 10)
	row[KeyContexts] = contexts(detail)
	row[KeyFiles] = fmt.Sprint(listLen(detail["attach_file_ids"]))
	row[KeyIntegrations] = fmt.Sprint(listLen(detail["integrations"]) + listLen(detail["integration_ids"]))

	welcome := output.Text(detail["welcome_message"])
	if welcome == "" || welcome == "no" || welcome == "false" {
		welcome = "Not set"
	}
	row[KeyWelcome] = output.Truncate(welcome, 22)
}

func features(d map[string]any) string {
	var out []string
	if truthy(d["enable_web_search"]) {
		engine := output.Text(d["web_search_engine"])
		if engine == "" {
			engine = "default"
		}
		out = append(out, fmt.Sprintf("Web(%s)", engine))
	}
	if truthy(d["filler_enable"]) || truthy(d["is_filler_enable"]) {
		delay := output.Text(d["filler_after_sec"])
		if delay == "" {
			delay = "0"
		}
		out = append(out, fmt.Sprintf("Filler(%ss)", delay))
	}
	if truthy(d["is_transfer_enabled"]) {
		out = append(out, fmt.Sprintf("Transfer(%d)", listLen(d["transfer_options"])))
	}
	if truthy(d["is_end_call_enabled"]) {
		out = append(out, "EndCall")
	}
	if truthy(d["should_apply_noise_reduction"]) {
		out = append(out, "NoiseRed")
	}
	if len(out) == 0 {
		return "Basic"
	}
	return strings.Join(out, " • ")
}

func asr(d map[string]any) string {
	service := output.Text(d["asr_service"])
	if service == "" {
		service = "Unknown"
	}
	lang := output.Text(d["asr_deepgram_language"])
	if lang == "" {
		lang = output.Text(d["asr_cartesia_language"])
	}
	if lang == "" {
		return service
	}
	return fmt.Sprintf("%s (%s)", service, lang)
}

func contexts(d map[string]any) string {
	sections, _ := d["context_breakdown"].([]any)
	if len(sections) == 0 {
		return "0"
	}
	active := 0
	for _, s := range sections {
		m, _ := s.(map[string]any)
		if enabled, ok := m["is_enabled"].(bool); !ok || enabled {
			active++
		}
	}
	return fmt.Sprintf("%d/%d", active, len(sections))
}

func truthy(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func listLen(v any) int {
	l, _ := v.([]any)
	return len(l)
}
