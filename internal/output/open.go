package output

import (
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
)

// Opener hands URLs to the platform's default handler.
type Opener struct {
	open  func(string) error
	sleep func(time.Duration)
}

// NewOpener creates an opener backed by the system browser.
func NewOpener() *Opener {
	return &Opener{
		open:  browser.OpenURL,
		sleep: time.Sleep,
	}
}

// OpenAll opens every URL in order. With more than 5 URLs queued, a
// short delay paces the openings so the browser isn't flooded.
// Failures are logged per URL and don't stop the rest.
func (o *Opener) OpenAll(urls []string) {
	paced := len(urls) > 5
	for _, u := range urls {
		if u == "" {
			continue
		}
		log.Info().Str("url", u).Msg("output: opening in browser")
		if err := o.open(u); err != nil {
			log.Error().Err(err).Str("url", u).Msg("output: failed to open URL")
		}
		if paced {
			o.sleep(500 * time.Millisecond)
		}
	}
}
