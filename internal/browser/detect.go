// Package browser answers one question: does Chrome appear to be running?
// The answer is advisory only. Nothing here attaches to or mutates a live
// browser; the reconstructor just warns the operator that a restart is
// needed before its changes take effect.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"time"
)

// processNames are the binaries we look for, matching the launch candidates
// Chrome installs under on Linux and macOS.
var processNames = []string{"chrome", "chromium", "chromium-browser"}

// DetectRunning reports whether a Chrome/Chromium instance appears to be
// running, either as a visible process or as a reachable CDP endpoint.
// False negatives are acceptable; this is a courtesy check.
func DetectRunning(ctx context.Context, cdpAddress string, cdpPort int) bool {
	if ProcessRunning(ctx) {
		return true
	}
	return CDPReachable(ctx, cdpAddress, cdpPort)
}

// ProcessRunning scans the process table with pgrep. Hosts without pgrep
// report false.
func ProcessRunning(ctx context.Context) bool {
	pgrep, err := exec.LookPath("pgrep")
	if err != nil {
		slog.Debug("pgrep not available, skipping process check")
		return false
	}
	for _, name := range processNames {
		if exec.CommandContext(ctx, pgrep, name).Run() == nil {
			return true
		}
	}
	return false
}

// CDPReachable probes the DevTools /json/version endpoint.
func CDPReachable(ctx context.Context, address string, port int) bool {
	url := fmt.Sprintf("http://%s:%d/json/version", address, port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	client := &http.Client{Timeout: time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
