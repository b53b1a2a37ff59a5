// Package history persists search results across runs. Each search is
// keyed by a signature over the parameters that affect which results
// come back; re-running the same search merges fresh rows into the
// stored set instead of starting over.
package history

import (
	"fmt"
	"strings"
)

// Signature canonicalizes the content-affecting query parameters into a
// stable cache key. Presentation-only options (post-fetch sort, output
// format, what to do with the results) are deliberately excluded: they
// change how results are shown, not which results exist.
func Signature(search, category, order string, descending bool, limit int) string {
	limitText := "inf"
	if limit > 0 {
		limitText = fmt.Sprintf("%d", limit)
	}

	// Keys in fixed (sorted) order so equal searches always collide.
	pairs := []string{
		"category=" + clean(category),
		fmt.Sprintf("descending=%t", descending),
		"limit=" + limitText,
		"order=" + clean(order),
		"search=" + clean(search),
	}
	return strings.Join(pairs, ",")
}

// clean strips the characters the signature format itself uses.
func clean(v string) string {
	v = strings.ReplaceAll(v, `"`, "")
	v = strings.ReplaceAll(v, ",", "")
	return v
}

// filename turns a signature into a safe history file name.
func filename(signature string) string {
	sanitize := func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '<', '>', '|', 0:
			return '_'
		}
		return r
	}
	return strings.Map(sanitize, signature) + ".json"
}
