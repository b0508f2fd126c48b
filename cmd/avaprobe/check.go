package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/vyrodovalexey/avaprobe/internal/health"
)

// maxCheckBody bounds how much of the response check prints.
const maxCheckBody = 64 << 10

type checkOptions struct {
	addr    string
	prefix  string
	probe   string
	token   string
	timeout time.Duration
}

// probeURL builds the probe endpoint URL. addr may carry a scheme.
func probeURL(opts checkOptions) (string, error) {
	base := opts.addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", opts.addr, err)
	}
	u.Path = path.Join("/", u.Path, opts.prefix, opts.probe)
	return u.String(), nil
}

// runCheck performs one probe request and fails unless it answers 2xx.
func runCheck(ctx context.Context, out io.Writer, opts checkOptions) error {
	target, err := probeURL(opts)
	if err != nil {
		return err
	}

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if opts.token != "" {
		req.Header.Set(health.HeaderHealthToken, opts.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", opts.probe, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxCheckBody))
	_, _ = fmt.Fprintf(out, "%s %d %s\n", opts.probe, resp.StatusCode, strings.TrimSpace(string(body)))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("probe %s returned %s", opts.probe, resp.Status)
	}
	return nil
}
