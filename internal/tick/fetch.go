// Package tick watches the external tick endpoint and publishes every change
// of the current tick on the tick bus.
package tick

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"bgswatch/internal/fault"
)

const (
	DefaultPath    = "0.time"
	DefaultTimeout = 10 * time.Second

	maxBody = 1 << 20
)

// Fetcher reads the current tick value from a JSON endpoint.
type Fetcher struct {
	url     string
	path    string
	timeout time.Duration
	http    *http.Client
}

func NewFetcher(httpClient *http.Client, url, path string, timeout time.Duration) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if path == "" {
		path = DefaultPath
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{url: url, path: path, timeout: timeout, http: httpClient}
}

// Fetch returns the tick string found at the configured path. A transport
// failure or non-2xx status is a network fault; a body that is not JSON or
// lacks a non-empty string at the path is a decode fault.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", fault.Network("building tick request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return "", fault.Network("fetching tick", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fault.Network("fetching tick", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fault.Network("reading tick response", err)
	}
	if !gjson.ValidBytes(body) {
		return "", fault.Decode("decoding tick response", errors.New("body is not valid JSON"))
	}

	value := gjson.GetBytes(body, f.path)
	if !value.Exists() {
		return "", fault.Decode("decoding tick response", fmt.Errorf("no value at %q", f.path))
	}
	if value.Type != gjson.String {
		return "", fault.Decode("decoding tick response", fmt.Errorf("value at %q is %s, want string", f.path, value.Type))
	}
	tick := strings.TrimSpace(value.String())
	if tick == "" {
		return "", fault.Decode("decoding tick response", fmt.Errorf("empty value at %q", f.path))
	}
	return tick, nil
}
