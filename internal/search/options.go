// Package search drives the fetch, extract, merge loop across result
// pages and owns the per-search session state. Pages are walked
// strictly in order; the dedup and caching semantics assume page
// numbers only ever increase.
package search

import (
	"fmt"
	"slices"

	"github.com/litescript/ls-rarbg-cli/internal/scrape"
	"github.com/litescript/ls-rarbg-cli/internal/units"
)

// OrderKeys are the pre-fetch orderings the site itself supports. These
// are sent with the query and work in both directions.
var OrderKeys = []string{"data", "filename", "leechers", "seeders", "size"}

// SortKeys are the post-fetch sort fields. Post-fetch sorting is
// descending only; see output.SortRecords.
var SortKeys = []string{"title", "date", "size", "seeders", "leechers"}

// Options is the full search request.
type Options struct {
	Search     string
	Category   string
	Domain     string
	Order      string // pre-fetch ordering, sent with the query
	Descending bool
	Limit      int    // 0 means unbounded
	Sort       string // post-fetch sort key
	Unit       string // fixed display unit, "" picks automatically

	Interactive bool
	NoCache     bool
	NoCookie    bool
}

// Validate checks the option combination before any network activity.
func (o Options) Validate() error {
	if o.Search == "" {
		return fmt.Errorf("a search term is required")
	}
	if o.Domain == "" {
		return fmt.Errorf("a domain is required")
	}
	if o.Limit < 0 {
		return fmt.Errorf("--limit must be at least 1")
	}
	if !scrape.ValidCategory(o.Category) {
		return fmt.Errorf("unknown category %q (valid: %v)", o.Category, scrape.CategoryNames())
	}
	if o.Order != "" && !slices.Contains(OrderKeys, o.Order) {
		return fmt.Errorf("unknown order key %q (valid: %v)", o.Order, OrderKeys)
	}
	if o.Descending && o.Order == "" {
		return fmt.Errorf("--descending requires --order")
	}
	if o.Sort != "" && !slices.Contains(SortKeys, o.Sort) {
		return fmt.Errorf("unknown sort key %q (valid: %v)", o.Sort, SortKeys)
	}
	if o.Unit != "" && !units.Valid(o.Unit) {
		return fmt.Errorf("unknown size unit %q (valid: %v)", o.Unit, units.Names)
	}
	return nil
}
