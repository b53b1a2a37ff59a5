// Package captcha resolves the site's threat-defence challenge.
// The automated path shells out to an environment-specific helper
// (headless browser plus OCR); the manual path walks the user through
// solving the challenge in their own browser and pasting the session
// cookies back. Both produce a cookie jar the fetcher persists and
// retries with.
package captcha

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/litescript/ls-rarbg-cli/internal/cookies"
)

// Resolver solves a challenge URL into session cookies.
type Resolver interface {
	Resolve(ctx context.Context, challengeURL string) (cookies.Jar, error)
}

// ResolutionError reports that every available resolver failed. It
// aborts the run; pagination cannot continue without fresh cookies.
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("challenge resolution failed: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Chain tries resolvers in order, falling back on failure. The usual
// arrangement is the automated script first, then the manual prompt
// when a terminal is attached.
type Chain struct {
	resolvers []Resolver
}

// NewChain builds a fallback chain. At least one resolver is required.
func NewChain(resolvers ...Resolver) *Chain {
	return &Chain{resolvers: resolvers}
}

// Resolve returns the first successful resolver's jar.
func (c *Chain) Resolve(ctx context.Context, challengeURL string) (cookies.Jar, error) {
	var lastErr error
	for _, r := range c.resolvers {
		jar, err := r.Resolve(ctx, challengeURL)
		if err == nil {
			return jar, nil
		}
		lastErr = err
		log.Warn().Err(err).Msg("captcha: resolver failed, trying next")

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no resolvers configured")
	}
	return nil, &ResolutionError{Err: lastErr}
}
