// Package fetch issues page requests with the persisted session
// cookies and drives the threat-defence resolution loop. When the site
// answers with its bot-defence interstitial instead of results, the
// fetcher hands the challenge URL to a Resolver, persists whatever
// cookies come back, and retries the original request.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go"
	"github.com/rs/zerolog/log"

	"github.com/litescript/ls-rarbg-cli/internal/cookies"
)

// userAgent is sent on every request. The site serves different markup
// to clients it doesn't recognize as browsers.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/81.0.4044.122 Safari/537.36"

// challengeMarker identifies the bot-defence interstitial by the URL
// the response was ultimately served from.
const challengeMarker = "threat_defence.php"

// Resolver solves a threat-defence challenge and returns the session
// cookies that unlock the site.
type Resolver interface {
	Resolve(ctx context.Context, challengeURL string) (cookies.Jar, error)
}

// StatusError reports a non-200 response for a page that was served
// normally (not a challenge). It is terminal for that page and is
// never retried.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.Code, e.URL)
}

// Fetcher performs GETs with the persisted cookie jar.
type Fetcher struct {
	client   *http.Client
	store    *cookies.Store
	resolver Resolver

	mu  sync.Mutex
	jar cookies.Jar
}

// New creates a fetcher. The jar is loaded from the store up front;
// skipCookies starts the session with an empty jar instead (a fresh
// challenge will be served and resolved on first fetch).
func New(store *cookies.Store, resolver Resolver, skipCookies bool) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		store:    store,
		resolver: resolver,
		jar:      store.Load(skipCookies),
	}
}

// SetJar replaces the in-memory jar. The cookie-file watcher calls this
// when another process rewrites the persisted jar.
func (f *Fetcher) SetJar(jar cookies.Jar) {
	f.mu.Lock()
	f.jar = jar
	f.mu.Unlock()
}

func (f *Fetcher) cookieHeader() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jar.Header()
}

// Get fetches a URL, resolving threat-defence challenges as they
// appear. The resolve-and-retry loop has no iteration bound; it ends
// when the challenge stops being served or ctx is done.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, finalURL, status, err := f.do(ctx, url)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}

		if strings.Contains(finalURL, challengeMarker) {
			log.Info().Str("url", finalURL).Msg("fetch: threat defence detected, resolving challenge")

			jar, err := f.resolver.Resolve(ctx, finalURL)
			if err != nil {
				return nil, fmt.Errorf("challenge at %s: %w", finalURL, err)
			}
			if err := f.store.Save(jar); err != nil {
				log.Warn().Err(err).Msg("fetch: failed to persist refreshed cookies")
			}
			f.SetJar(jar)
			continue
		}

		if status != http.StatusOK {
			return nil, &StatusError{URL: url, Code: status}
		}

		log.Debug().Str("url", url).Msg("fetch: page fetched")
		return body, nil
	}
}

// GetDocument fetches a URL and parses the body as HTML.
func (f *Fetcher) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	return doc, nil
}

// do performs one GET, following redirects, retrying only transport
// failures (refused connections, resets). Response status is returned
// as data, not error, so the caller decides what is terminal.
func (f *Fetcher) do(ctx context.Context, url string) (body []byte, finalURL string, status int, err error) {
	err = retry.Do(
		func() error {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if reqErr != nil {
				return retry.Unrecoverable(reqErr)
			}
			req.Header.Set("User-Agent", userAgent)
			if header := f.cookieHeader(); header != "" {
				req.Header.Set("Cookie", header)
			}

			resp, doErr := f.client.Do(req)
			if doErr != nil {
				if ctx.Err() != nil {
					return retry.Unrecoverable(doErr)
				}
				return doErr
			}
			defer resp.Body.Close()

			data, readErr := io.ReadAll(resp.Body)
			if readErr != nil {
				return readErr
			}

			body = data
			finalURL = resp.Request.URL.String()
			status = resp.StatusCode
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, "", 0, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	return body, finalURL, status, nil
}
