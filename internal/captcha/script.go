package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/litescript/ls-rarbg-cli/internal/cookies"
)

// ScriptResolver runs an external helper program with the challenge URL
// as its argument. The helper owns the browser automation and OCR; this
// side only cares about its stdout, which must be either a JSON object
// of cookies or a Cookie header string.
type ScriptResolver struct {
	script  string
	timeout time.Duration
}

// NewScriptResolver creates a resolver for the given helper script.
func NewScriptResolver(script string) *ScriptResolver {
	return &ScriptResolver{
		script: script,
		// Headless browser startup plus OCR plus the challenge's own
		// delays; generous but bounded.
		timeout: 3 * time.Minute,
	}
}

// Resolve runs the helper and parses its output into a jar.
func (r *ScriptResolver) Resolve(ctx context.Context, challengeURL string) (cookies.Jar, error) {
	if r.script == "" {
		return nil, fmt.Errorf("no solver script configured")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "/bin/sh", r.script, challengeURL)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("solver script failed: %w", err)
	}

	jar, err := parseScriptOutput(string(output))
	if err != nil {
		return nil, err
	}
	return jar, nil
}

// parseScriptOutput accepts either a JSON cookie object or a Cookie
// header line.
func parseScriptOutput(output string) (cookies.Jar, error) {
	output = strings.TrimSpace(output)

	if strings.HasPrefix(output, "{") {
		var jar cookies.Jar
		if err := json.Unmarshal([]byte(output), &jar); err != nil {
			return nil, fmt.Errorf("solver script printed invalid JSON: %w", err)
		}
		if len(jar) == 0 {
			return nil, fmt.Errorf("solver script returned no cookies")
		}
		return jar, nil
	}

	jar := cookies.ParseHeader(output)
	if len(jar) == 0 {
		return nil, fmt.Errorf("solver script returned no cookies")
	}
	return jar, nil
}
