// Package output renders the final aggregate: post-fetch sorting and
// limiting, magnet-only or JSON output, and optionally handing every
// URL to the platform browser.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/litescript/ls-rarbg-cli/internal/scrape"
	"github.com/litescript/ls-rarbg-cli/internal/units"
)

// SortRecords sorts in place by the given key, descending. Post-fetch
// sort is descending only; the pre-fetch order option is the one that
// supports both directions.
func SortRecords(records []scrape.Record, key string) {
	if key == "" {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch key {
		case "title":
			return a.Title > b.Title
		case "date":
			return a.Date > b.Date
		case "size":
			return a.SizeBytes > b.SizeBytes
		case "seeders":
			return a.Seeders > b.Seeders
		case "leechers":
			return a.Leechers > b.Leechers
		}
		return false
	})
}

// Project applies the presentation transforms: sort first, then limit.
func Project(records []scrape.Record, sortKey string, limit int) []scrape.Record {
	out := make([]scrape.Record, len(records))
	copy(out, records)

	SortRecords(out, sortKey)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Presenter writes the final record set.
type Presenter struct {
	Out        io.Writer
	Unit       string // fixed display unit, "" picks automatically
	MagnetOnly bool
}

// recordView is the JSON output shape: the stored record plus the
// human-readable size.
type recordView struct {
	scrape.Record
	Size string `json:"size"`
}

// Render prints the records: one magnet per line in magnet-only mode,
// otherwise the full structured list as indented JSON.
func (p *Presenter) Render(records []scrape.Record) error {
	if p.MagnetOnly {
		for _, r := range records {
			if _, err := fmt.Fprintln(p.Out, r.Magnet); err != nil {
				return err
			}
		}
		return nil
	}

	views := make([]recordView, len(records))
	for i, r := range records {
		views[i] = recordView{Record: r, Size: units.FormatSize(r.SizeBytes, p.Unit)}
	}

	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}
