package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/litescript/ls-rarbg-cli/internal/captcha"
	"github.com/litescript/ls-rarbg-cli/internal/fetch"
	"github.com/litescript/ls-rarbg-cli/internal/history"
	"github.com/litescript/ls-rarbg-cli/internal/scrape"
)

// Getter fetches one page as a parsed document.
type Getter interface {
	GetDocument(ctx context.Context, url string) (*goquery.Document, error)
}

// Choice is what the interactive selection collaborator returns for a
// page of records.
type Choice struct {
	Index    int // selected record, valid when Selected
	Selected bool
	Next     bool // advance to the next page
	Quit     bool // stop the whole session
}

// Selector is the interactive menu collaborator. It is only consulted
// in interactive mode.
type Selector interface {
	Select(ctx context.Context, records []scrape.Record) (Choice, error)
}

// ErrQuit is returned by Run when the user quits the interactive menu.
var ErrQuit = errors.New("session ended by user")

// Session owns one search: its signature, its cache, and the
// aggregation state across pages.
type Session struct {
	opts    Options
	fetcher Getter
	store   *history.Store

	selector Selector
	onSelect func(ctx context.Context, record scrape.Record) error

	signature string
}

// New creates a session. selector and onSelect are only used in
// interactive mode; onSelect receives the record the user picked.
func New(opts Options, fetcher Getter, store *history.Store, selector Selector, onSelect func(context.Context, scrape.Record) error) *Session {
	return &Session{
		opts:      opts,
		fetcher:   fetcher,
		store:     store,
		selector:  selector,
		onSelect:  onSelect,
		signature: history.Signature(opts.Search, opts.Category, opts.Order, opts.Descending, opts.Limit),
	}
}

// Signature returns the session's cache key.
func (s *Session) Signature() string {
	return s.signature
}

// pageURL builds the query URL for one result page.
func (s *Session) pageURL(page int) string {
	direction := "ASC"
	if s.opts.Descending {
		direction = "DESC"
	}
	return fmt.Sprintf("https://%s/torrents.php?search=%s&order=%s&category=%s&page=%d&by=%s",
		s.opts.Domain,
		url.QueryEscape(s.opts.Search),
		s.opts.Order,
		scrape.QueryCodes(s.opts.Category),
		page,
		direction,
	)
}

// Run walks result pages until a stop condition fires and returns the
// deduplicated union of freshly fetched records and the cached set.
// Stop conditions, in order: a transport failure or non-200 page
// (terminal for pagination, not for the run: what was aggregated so far
// is still returned); a page with zero extracted records; the
// cumulative fresh count reaching the limit.
func (s *Session) Run(ctx context.Context) ([]scrape.Record, error) {
	cached := s.store.Load(s.signature, !s.opts.NoCache)
	if len(cached) > 0 {
		log.Debug().Int("records", len(cached)).Str("signature", s.signature).Msg("search: loaded cached results")
	}

	var fresh []scrape.Record
	merged := cached

	for page := 1; ; page++ {
		pageURL := s.pageURL(page)
		log.Info().Int("page", page).Str("url", pageURL).Msg("search: fetching page")

		doc, err := s.fetcher.GetDocument(ctx, pageURL)
		if err != nil {
			var resolution *captcha.ResolutionError
			if errors.As(err, &resolution) {
				// No cookies means no more pages; everything after
				// this would hit the same wall.
				return merged, err
			}
			if ctx.Err() != nil {
				return merged, ctx.Err()
			}

			var status *fetch.StatusError
			if errors.As(err, &status) {
				log.Error().Int("status", status.Code).Str("url", pageURL).Msg("search: page not served, stopping")
			} else {
				log.Error().Err(err).Str("url", pageURL).Msg("search: transport failure, stopping")
			}
			break
		}

		records := scrape.ExtractPage(doc, s.opts.Domain)
		log.Info().Int("page", page).Int("records", len(records)).Msg("search: extracted records")
		if len(records) == 0 {
			break
		}

		fresh = append(fresh, records...)

		merged, err = s.store.Merge(s.signature, fresh, cached)
		if err != nil {
			log.Warn().Err(err).Msg("search: failed to persist history")
		}

		if s.opts.Interactive && s.selector != nil {
			if err := s.interact(ctx, records); err != nil {
				return merged, err
			}
		}

		if s.opts.Limit > 0 && len(fresh) >= s.opts.Limit {
			log.Info().Int("limit", s.opts.Limit).Msg("search: limit reached, stopping")
			break
		}
	}

	return merged, nil
}

// interact hands one page's records to the selection menu. A selection
// triggers onSelect for that record and re-prompts; "next" resumes
// pagination; quitting ends the session.
func (s *Session) interact(ctx context.Context, records []scrape.Record) error {
	for {
		choice, err := s.selector.Select(ctx, records)
		if err != nil {
			return fmt.Errorf("selection menu failed: %w", err)
		}

		switch {
		case choice.Quit:
			return ErrQuit
		case choice.Next:
			return nil
		case choice.Selected:
			if s.onSelect != nil {
				if err := s.onSelect(ctx, records[choice.Index]); err != nil {
					log.Error().Err(err).Str("title", records[choice.Index].Title).Msg("search: failed to present selection")
				}
			}
		default:
			// No selection: prompt again.
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
