// Package release checks GitHub for newer CLI releases.
package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// Repo is the GitHub repository that publishes CLI releases.
	Repo = "ryu-ryuk/omnidim-go"

	defaultAPIBase = "https://api.github.com"
)

// Checker looks up the latest published release tag.
type Checker struct {
	HTTPClient *http.Client
	// APIBase overrides the GitHub API root, mainly for tests.
	APIBase   string
	UserAgent string
}

// LatestTag returns the tag_name of the latest release of repo.
func (c *Checker) LatestTag(ctx context.Context, repo string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	base := c.APIBase
	if base == "" {
		base = defaultAPIBase
	}
	url := fmt.Sprintf("%s/repos/%s/releases/latest", strings.TrimSuffix(base, "/"), repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	ua := c.UserAgent
	if ua == "" {
		ua = "omnidim-cli"
	}
	req.Header.Set("User-Agent", ua)

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var payload struct {
		TagName string `json:"tag_name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}
	tag := strings.TrimSpace(payload.TagName)
	if tag == "" {
		return "", errors.New("missing tag_name in response")
	}
	return tag, nil
}

// Compare orders two semantic versions, ignoring a leading "v" and any
// pre-release suffix. Unparseable versions compare equal.
func Compare(a, b string) int {
	amaj, amin, apat, okA := parse(a)
	bmaj, bmin, bpat, okB := parse(b)
	if !okA || !okB {
		return 0
	}
	for _, pair := range [][2]int{{amaj, bmaj}, {amin, bmin}, {apat, bpat}} {
		if pair[0] < pair[1] {
			return -1
		}
		if pair[0] > pair[1] {
			return 1
		}
	}
	return 0
}

// Valid reports whether v parses as major.minor.patch.
func Valid(v string) bool {
	_, _, _, ok := parse(v)
	return ok
}

func parse(v string) (major, minor, patch int, ok bool) {
	v = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v)), "v")
	if v == "" {
		return 0, 0, 0, false
	}
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	if len(parts) < 3 {
		return 0, 0, 0, false
	}
	nums := make([]int, 3)
	for i := range nums {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, 0, 0, false
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], true
}
