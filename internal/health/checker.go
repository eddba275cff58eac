package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/ryu-ryuk/omnidim-go/internal/config"
)

type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
	StatusInfo CheckStatus = "info"
)

type Check struct {
	Name        string      `json:"name"`
	Status      CheckStatus `json:"status"`
	Message     string      `json:"message"`
	Details     string      `json:"details,omitempty"`
	Remediation string      `json:"remediation,omitempty"`
}

type HealthResult struct {
	Timestamp     time.Time `json:"timestamp"`
	Checks        []Check   `json:"checks"`
	PassCount     int       `json:"pass_count"`
	WarnCount     int       `json:"warn_count"`
	CriticalCount int       `json:"critical_count"`
	InfoCount     int       `json:"info_count"`
	TotalCount    int       `json:"total_count"`
}

// Options describes the environment under inspection.
type Options struct {
	Settings   config.Settings
	ConfigPath string
	// ConfigErr is the error returned while loading the config file, if any.
	ConfigErr  error
	HTTPClient *http.Client
	Logger     *slog.Logger
	// Progress receives one line per check in verbose mode. Defaults to stderr.
	Progress io.Writer
}

type Checker struct {
	verbose bool
	opts    Options
	logger  *slog.Logger
}

func NewChecker(verbose bool, opts Options) *Checker {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Progress == nil {
		opts.Progress = os.Stderr
	}
	return &Checker{verbose: verbose, opts: opts, logger: logger}
}

func (c *Checker) RunAll(ctx context.Context) (*HealthResult, error) {
	result := &HealthResult{
		Timestamp: time.Now(),
		Checks:    make([]Check, 0),
	}

	checks := []func(context.Context) Check{
		c.checkConfigFile,
		c.checkAPIKey,
		c.checkBaseURL,
		c.checkConnectivity,
	}

	for i, checkFn := range checks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		check := checkFn(ctx)
		if c.verbose {
			fmt.Fprintf(c.opts.Progress, "[%d/%d] %s: %s\n", i+1, len(checks), check.Name, check.Status)
		}
		result.Checks = append(result.Checks, check)

		switch check.Status {
		case StatusPass:
			result.PassCount++
		case StatusWarn:
			result.WarnCount++
		case StatusFail:
			result.CriticalCount++
		case StatusInfo:
			result.InfoCount++
		}
	}

	result.TotalCount = len(result.Checks)
	return result, nil
}

// ExitCode is 2 when any check failed, 1 for warnings and 0 otherwise.
func (r *HealthResult) ExitCode() int {
	switch {
	case r.CriticalCount > 0:
		return 2
	case r.WarnCount > 0:
		return 1
	default:
		return 0
	}
}

func (r *HealthResult) OutputJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding health result: %w", err)
	}
	return nil
}

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgBlue)
)

func (r *HealthResult) OutputText(w io.Writer) {
	fmt.Fprintln(w, "OmniDimension CLI health check")
	fmt.Fprintln(w)

	for _, check := range r.Checks {
		switch check.Status {
		case StatusPass:
			successColor.Fprintf(w, "✅ %s: %s\n", check.Name, check.Message)
		case StatusWarn:
			warningColor.Fprintf(w, "⚠️  %s: %s\n", check.Name, check.Message)
		case StatusFail:
			errorColor.Fprintf(w, "❌ %s: %s\n", check.Name, check.Message)
		default:
			infoColor.Fprintf(w, "ℹ️  %s: %s\n", check.Name, check.Message)
		}
		if check.Details != "" {
			fmt.Fprintf(w, "   %s\n", check.Details)
		}
		if check.Remediation != "" && check.Status != StatusPass {
			fmt.Fprintf(w, "   → %s\n", check.Remediation)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d failed, %d info (%d total)\n",
		r.PassCount, r.WarnCount, r.CriticalCount, r.InfoCount, r.TotalCount)
}
