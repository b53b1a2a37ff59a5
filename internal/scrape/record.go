// Package scrape turns fetched result pages into torrent records.
// It knows the site's one page template: tr.lista2 rows with fixed
// column positions, a category icon in the first cell, and a thumbnail
// path that leaks the info hash for magnet synthesis.
package scrape

// Record is one search result row.
type Record struct {
	Title      string   `json:"title"`
	TorrentURL string   `json:"torrent_url"`
	DetailURL  string   `json:"detail_url"`
	Date       int64    `json:"date"` // unix seconds
	Category   Category `json:"category"`
	SizeBytes  uint64   `json:"size_bytes"`
	Seeders    int      `json:"seeders"`
	Leechers   int      `json:"leechers"`
	Uploader   string   `json:"uploader"`

	// Magnet is empty until resolved, either from the listing row's
	// thumbnail hash or lazily from the detail page. Two records that
	// differ only in Magnet are distinct for deduplication purposes.
	Magnet string `json:"magnet"`
}

// Dedup removes duplicate records by full-field equality, keeping the
// first occurrence of each and preserving order.
func Dedup(records []Record) []Record {
	seen := make(map[Record]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
