package search

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/litescript/ls-rarbg-cli/internal/scrape"
)

// ResolveMagnets fills in empty magnets by visiting each record's
// detail page: the first magnet-scheme anchor supplies the magnet, the
// first download-script anchor supplies a fresh torrent-file URL.
// Records are resolved one at a time; a failure is logged for that
// record and resolution moves on. The input slice is not modified.
func (s *Session) ResolveMagnets(ctx context.Context, records []scrape.Record) []scrape.Record {
	out := make([]scrape.Record, len(records))
	copy(out, records)

	for i := range out {
		if out[i].Magnet != "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		log.Info().Str("title", out[i].Title).Msg("search: fetching magnet link")

		doc, err := s.fetcher.GetDocument(ctx, out[i].DetailURL)
		if err != nil {
			log.Error().Err(err).Str("url", out[i].DetailURL).Msg("search: failed to fetch detail page")
			continue
		}

		if magnet, ok := doc.Find(`a[href^="magnet:"]`).First().Attr("href"); ok {
			out[i].Magnet = magnet
		} else {
			log.Warn().Str("title", out[i].Title).Msg("search: detail page has no magnet link")
		}
		if download, ok := doc.Find(`a[href^="/download.php"]`).First().Attr("href"); ok {
			out[i].TorrentURL = "https://" + s.opts.Domain + download
		}
	}

	return out
}

// PersistResolved merges resolved records back into the signature's
// history, ahead of whatever is already stored, so the next identical
// search starts from them.
func (s *Session) PersistResolved(resolved []scrape.Record) []scrape.Record {
	merged, err := s.store.Merge(s.signature, resolved, s.store.Load(s.signature, true))
	if err != nil {
		log.Warn().Err(err).Msg("search: failed to persist resolved records")
	}
	return merged
}
