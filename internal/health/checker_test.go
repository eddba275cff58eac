package health

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ryu-ryuk/omnidim-go/internal/config"
)

func init() {
	color.NoColor = true
}

func findCheck(t *testing.T, result *HealthResult, name string) Check {
	t.Helper()
	for _, c := range result.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found", name)
	return Check{}
}

func TestRunAllFailsWithoutAPIKey(t *testing.T) {
	t.Parallel()

	checker := NewChecker(false, Options{
		Settings:   config.Settings{BaseURL: "https://backend.omnidim.io/api/v1", BaseURLSource: config.SourceDefault},
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
	})
	result, err := checker.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}

	if got := findCheck(t, result, "API key").Status; got != StatusFail {
		t.Fatalf("API key status = %s, want fail", got)
	}
	if got := findCheck(t, result, "API connectivity").Status; got != StatusInfo {
		t.Fatalf("connectivity status = %s, want info", got)
	}
	if got := findCheck(t, result, "Config file").Status; got != StatusInfo {
		t.Fatalf("config status = %s, want info", got)
	}
	if result.ExitCode() != 2 {
		t.Fatalf("ExitCode() = %d, want 2", result.ExitCode())
	}
	if result.TotalCount != 4 {
		t.Fatalf("TotalCount = %d, want 4", result.TotalCount)
	}
}

func TestRunAllPassesAgainstReachableAPI(t *testing.T) {
	t.Parallel()

	auth := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case auth <- r.Header.Get("Authorization"):
		default:
		}
		_, _ = w.Write([]byte(`{"bots": []}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.SaveTo(path, &config.Config{APIKey: "sk-test-12345678"}); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	var logs, progress bytes.Buffer
	checker := NewChecker(true, Options{
		Settings: config.Settings{
			APIKey:        "sk-test-12345678",
			APIKeySource:  config.SourceFile,
			BaseURL:       srv.URL,
			BaseURLSource: config.SourceFlag,
		},
		ConfigPath: path,
		HTTPClient: srv.Client(),
		Logger:     slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Progress:   &progress,
	})
	result, err := checker.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}

	if got := findCheck(t, result, "API connectivity").Status; got != StatusPass {
		t.Fatalf("connectivity status = %s, want pass", got)
	}
	if got := findCheck(t, result, "Config file").Status; got != StatusPass {
		t.Fatalf("config status = %s, want pass", got)
	}
	if got := findCheck(t, result, "Base URL").Status; got != StatusWarn {
		t.Fatalf("base URL status = %s, want warn for plain http", got)
	}
	if gotAuth := <-auth; gotAuth != "Bearer sk-test-12345678" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if result.ExitCode() != 1 {
		t.Fatalf("ExitCode() = %d, want 1", result.ExitCode())
	}
	if !strings.Contains(progress.String(), "[4/4] API connectivity: pass") {
		t.Fatalf("progress = %q, want a line per check", progress.String())
	}
	if !strings.Contains(logs.String(), "omnidim request") {
		t.Fatalf("logs = %q, want the connectivity request logged", logs.String())
	}
}

func TestQuietCheckerWritesNoProgress(t *testing.T) {
	t.Parallel()

	var progress bytes.Buffer
	checker := NewChecker(false, Options{
		Settings:   config.Settings{BaseURL: "https://backend.omnidim.io/api/v1"},
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Progress:   &progress,
	})
	if _, err := checker.RunAll(context.Background()); err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}
	if progress.Len() != 0 {
		t.Fatalf("progress = %q, want nothing without verbose", progress.String())
	}
}

func TestConnectivityReportsRejectedKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid token"}`))
	}))
	defer srv.Close()

	checker := NewChecker(false, Options{
		Settings:   config.Settings{APIKey: "sk-test-12345678", BaseURL: srv.URL},
		HTTPClient: srv.Client(),
	})
	check := checker.checkConnectivity(context.Background())
	if check.Status != StatusFail {
		t.Fatalf("status = %s, want fail", check.Status)
	}
	if check.Details != "invalid token" {
		t.Fatalf("details = %q", check.Details)
	}
}

func TestConfigFileChecks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	loose := filepath.Join(dir, "loose.toml")
	if err := os.WriteFile(loose, []byte(""), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(loose, 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewChecker(false, Options{ConfigPath: loose})
	if got := c.checkConfigFile(context.Background()).Status; got != StatusWarn {
		t.Fatalf("world readable config status = %s, want warn", got)
	}

	c = NewChecker(false, Options{ConfigPath: loose, ConfigErr: errors.New("parsing config: bad")})
	if got := c.checkConfigFile(context.Background()).Status; got != StatusFail {
		t.Fatalf("broken config status = %s, want fail", got)
	}
}

func TestOutputTextAndJSON(t *testing.T) {
	t.Parallel()

	result := &HealthResult{
		Checks: []Check{
			{Name: "API key", Status: StatusFail, Message: "API key not configured", Remediation: "set it"},
			{Name: "Base URL", Status: StatusPass, Message: "https://backend.omnidim.io/api/v1"},
		},
		PassCount:     1,
		CriticalCount: 1,
		TotalCount:    2,
	}

	var text bytes.Buffer
	result.OutputText(&text)
	out := text.String()
	for _, want := range []string{"❌ API key: API key not configured", "→ set it", "1 passed", "1 failed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("text output missing %q:\n%s", want, out)
		}
	}

	var js bytes.Buffer
	if err := result.OutputJSON(&js); err != nil {
		t.Fatalf("OutputJSON() error = %v", err)
	}
	var decoded HealthResult
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if decoded.CriticalCount != 1 || len(decoded.Checks) != 2 {
		t.Fatalf("decoded = %+v", decoded)
	}
}
