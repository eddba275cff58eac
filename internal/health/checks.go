package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	omnidim "github.com/ryu-ryuk/omnidim-go"
	"github.com/ryu-ryuk/omnidim-go/internal/config"
)

const apiKeyRemediation = "Run: omnidim config --set-key <key>, or export OMNIDIM_API_KEY"

func (c *Checker) checkConfigFile(context.Context) Check {
	path := c.opts.ConfigPath
	if c.opts.ConfigErr != nil {
		return Check{
			Name:        "Config file",
			Status:      StatusFail,
			Message:     "Config file could not be read",
			Details:     c.opts.ConfigErr.Error(),
			Remediation: fmt.Sprintf("Fix or remove %s", path),
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		return Check{
			Name:    "Config file",
			Status:  StatusInfo,
			Message: "No config file, using environment and defaults",
			Details: path,
		}
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return Check{
			Name:        "Config file",
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Config file is readable by other users (%#o)", perm),
			Details:     path,
			Remediation: fmt.Sprintf("Run: chmod 600 %s", path),
		}
	}
	return Check{
		Name:    "Config file",
		Status:  StatusPass,
		Message: "Config file loaded",
		Details: path,
	}
}

func (c *Checker) checkAPIKey(context.Context) Check {
	s := c.opts.Settings
	if s.APIKey == "" {
		return Check{
			Name:        "API key",
			Status:      StatusFail,
			Message:     "API key not configured",
			Remediation: apiKeyRemediation,
		}
	}
	if _, err := omnidim.NewClient(s.APIKey); err != nil {
		return Check{
			Name:        "API key",
			Status:      StatusFail,
			Message:     "API key looks invalid",
			Details:     err.Error(),
			Remediation: apiKeyRemediation,
		}
	}
	return Check{
		Name:    "API key",
		Status:  StatusPass,
		Message: fmt.Sprintf("API key set from %s (%s)", s.APIKeySource, config.MaskKey(s.APIKey)),
	}
}

func (c *Checker) checkBaseURL(context.Context) Check {
	s := c.opts.Settings
	if !strings.HasPrefix(s.BaseURL, "https://") {
		return Check{
			Name:        "Base URL",
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Base URL is not HTTPS: %s", s.BaseURL),
			Details:     fmt.Sprintf("source: %s", s.BaseURLSource),
			Remediation: "Use an https:// endpoint outside local development",
		}
	}
	if strings.TrimSuffix(s.BaseURL, "/") != omnidim.DefaultBaseURL {
		return Check{
			Name:    "Base URL",
			Status:  StatusInfo,
			Message: fmt.Sprintf("Using custom base URL %s", s.BaseURL),
			Details: fmt.Sprintf("source: %s", s.BaseURLSource),
		}
	}
	return Check{
		Name:    "Base URL",
		Status:  StatusPass,
		Message: s.BaseURL,
	}
}

func (c *Checker) checkConnectivity(ctx context.Context) Check {
	s := c.opts.Settings
	if s.APIKey == "" {
		return Check{
			Name:    "API connectivity",
			Status:  StatusInfo,
			Message: "Skipped, no API key",
		}
	}

	opts := append(s.ClientOptions(), omnidim.WithLogger(c.logger))
	if c.opts.HTTPClient != nil {
		opts = append(opts, omnidim.WithHTTPClient(c.opts.HTTPClient))
	}
	client, err := omnidim.NewClient(s.APIKey, opts...)
	if err != nil {
		return Check{
			Name:    "API connectivity",
			Status:  StatusInfo,
			Message: "Skipped, client could not be configured",
			Details: err.Error(),
		}
	}

	start := time.Now()
	_, err = client.Agent.List(ctx, 1, 1)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err == nil {
		return Check{
			Name:    "API connectivity",
			Status:  StatusPass,
			Message: fmt.Sprintf("API reachable (%s)", elapsed),
		}
	}

	var apiErr *omnidim.APIError
	if !errors.As(err, &apiErr) {
		return Check{Name: "API connectivity", Status: StatusFail, Message: "Request failed", Details: err.Error()}
	}
	switch {
	case apiErr.IsNetworkError():
		return Check{
			Name:        "API connectivity",
			Status:      StatusFail,
			Message:     "Cannot reach the API",
			Details:     apiErr.Message,
			Remediation: "Check network access and the base URL",
		}
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		return Check{
			Name:        "API connectivity",
			Status:      StatusFail,
			Message:     fmt.Sprintf("API rejected the key (%d)", apiErr.StatusCode),
			Details:     apiErr.Message,
			Remediation: apiKeyRemediation,
		}
	default:
		return Check{
			Name:    "API connectivity",
			Status:  StatusWarn,
			Message: fmt.Sprintf("API answered with status %d", apiErr.StatusCode),
			Details: apiErr.Message,
		}
	}
}
